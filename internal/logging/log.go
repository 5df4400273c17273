// Package logging hands out per-module loggers that share one level and output.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// EnvLogLevel overrides the configured level when set (debug, info, warn, error).
const EnvLogLevel = "HOMESCREEN_LOG"

var (
	mu      sync.Mutex
	loggers = map[string]*log.Logger{}
	level   = log.WarnLevel
	output  io.Writer = os.Stderr
)

// GetLogger returns the logger for module, creating it on first use.
func GetLogger(module string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()

	if lg, ok := loggers[module]; ok {
		return lg
	}

	opts := log.Options{Level: level}
	if module != "" {
		opts.Prefix = fmt.Sprintf("[%.6s]", strings.ToLower(module))
	}
	lg := log.NewWithOptions(output, opts)
	loggers[module] = lg
	return lg
}

// ParseLevel maps a level name to a log level. Unknown names map to warn.
func ParseLevel(name string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return log.WarnLevel
	}
	return lvl
}

// SetLevel changes the level of every existing and future logger.
func SetLevel(lvl log.Level) {
	mu.Lock()
	defer mu.Unlock()

	level = lvl
	for _, lg := range loggers {
		lg.SetLevel(lvl)
	}
}

// SetOutput redirects every logger. The TUI points this at a file so log
// lines don't tear the alt screen.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	output = w
	for _, lg := range loggers {
		lg.SetOutput(w)
	}
}

// OpenFile opens (appending) a log file and makes it the shared output.
func OpenFile(path string) (io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	SetOutput(f)
	return f, nil
}

func init() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		level = ParseLevel(v)
	}
}
