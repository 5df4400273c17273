// Package config loads the homescreen TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DirName  = "homescreen"
	FileName = "config.toml"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
	BackendMemory = "memory"
)

// Config holds application configuration.
type Config struct {
	LogLevel string        `toml:"log_level"`
	Storage  StorageConfig `toml:"storage"`
	Server   ServerConfig  `toml:"server"`
	Favicon  FaviconConfig `toml:"favicon"`
	Backup   BackupConfig  `toml:"backup"`
}

// StorageConfig selects the key-value backend.
type StorageConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// ServerConfig configures the web dashboard.
type ServerConfig struct {
	Listen string `toml:"listen"`
}

// FaviconConfig tunes favicon fetching.
type FaviconConfig struct {
	Timeout      Duration `toml:"timeout"`
	Workers      int      `toml:"workers"`
	RatePerSec   float64  `toml:"rate_per_sec"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
}

// BackupConfig holds the OAuth client used for Drive backups.
type BackupConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectPort int    `toml:"redirect_port"`
}

// Duration lets TOML carry "10s" style values.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns the default configuration. The storage path is
// relative to the config directory when not absolute.
func DefaultConfig() Config {
	return Config{
		LogLevel: "warn",
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Path:    "homescreen.db",
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:8765",
		},
		Favicon: FaviconConfig{
			Timeout:      Duration{10 * time.Second},
			Workers:      4,
			RatePerSec:   8,
			MaxBodyBytes: 2 << 20,
		},
		Backup: BackupConfig{
			RedirectPort: 8766,
		},
	}
}

// Load reads config from path. The file is created with defaults if it
// doesn't exist. Environment overrides win over file values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		// Non-fatal: defaults still apply if the file can't be written
		_ = Save(path, &cfg)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if !filepath.IsAbs(cfg.Storage.Path) && cfg.Storage.Backend != BackendMemory {
		cfg.Storage.Path = filepath.Join(filepath.Dir(path), cfg.Storage.Path)
	}

	return &cfg, nil
}

// Save writes config as TOML, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}
	if c.Storage.Path == "" {
		c.Storage.Path = defaults.Storage.Path
	}
	if c.Storage.Backend == BackendJSON && c.Storage.Path == defaults.Storage.Path {
		c.Storage.Path = "homescreen.json"
	}
	if c.Server.Listen == "" {
		c.Server.Listen = defaults.Server.Listen
	}
	if c.Favicon.Timeout.Duration <= 0 {
		c.Favicon.Timeout = defaults.Favicon.Timeout
	}
	if c.Favicon.Workers <= 0 {
		c.Favicon.Workers = defaults.Favicon.Workers
	}
	if c.Favicon.RatePerSec <= 0 {
		c.Favicon.RatePerSec = defaults.Favicon.RatePerSec
	}
	if c.Favicon.MaxBodyBytes <= 0 {
		c.Favicon.MaxBodyBytes = defaults.Favicon.MaxBodyBytes
	}
	if c.Backup.RedirectPort == 0 {
		c.Backup.RedirectPort = defaults.Backup.RedirectPort
	}
}

// applyEnv loads a .env file from the working directory (if any) and lets
// HOMESCREEN_* variables override file values.
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("HOMESCREEN_LOG"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("HOMESCREEN_STORAGE"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("HOMESCREEN_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("HOMESCREEN_LISTEN"); v != "" {
		c.Server.Listen = v
	}
	if v := os.Getenv("HOMESCREEN_GOOGLE_CLIENT_ID"); v != "" {
		c.Backup.ClientID = v
	}
	if v := os.Getenv("HOMESCREEN_GOOGLE_CLIENT_SECRET"); v != "" {
		c.Backup.ClientSecret = v
	}
	if v := os.Getenv("HOMESCREEN_FAVICON_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Favicon.Workers = n
		}
	}
}

// Dir returns the default config directory: ~/.config/homescreen
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get config dir: %w", err)
	}
	return filepath.Join(dir, DirName), nil
}

// DefaultPath returns the default config file path.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}
