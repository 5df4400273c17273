package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/nikbrunner/homescreen/internal/backup"
	"github.com/nikbrunner/homescreen/internal/config"
	"github.com/nikbrunner/homescreen/internal/favicon"
	"github.com/nikbrunner/homescreen/internal/logging"
	"github.com/nikbrunner/homescreen/internal/storage"
)

var log = logging.GetLogger("main")

// errCancelled ends a command the user backed out of without an error
// message.
var errCancelled = errors.New("cancelled")

// environment is what every command needs: configuration and the opened
// store.
type environment struct {
	cfg     *config.Config
	cfgPath string
	kv      storage.KV
	store   *storage.Accessor
}

type envKey struct{}

func envFrom(ctx context.Context) *environment {
	e, _ := ctx.Value(envKey{}).(*environment)
	return e
}

// setup loads configuration, sets the log level and opens the store.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return ctx, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return ctx, fmt.Errorf("load config: %w", err)
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	logging.SetLevel(logging.ParseLevel(cfg.LogLevel))

	if cmd.Bool("ephemeral") {
		cfg.Storage.Backend = config.BackendMemory
	}
	kv, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return ctx, fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}
	log.Debug("Opened store", "backend", cfg.Storage.Backend, "path", cfg.Storage.Path)

	e := &environment{
		cfg:     cfg,
		cfgPath: path,
		kv:      kv,
		store:   storage.NewAccessor(kv),
	}
	return context.WithValue(ctx, envKey{}, e), nil
}

func teardown(ctx context.Context, cmd *cli.Command) error {
	if e := envFrom(ctx); e != nil {
		return e.kv.Close()
	}
	return nil
}

// logPath is where the terminal dashboard writes its log.
func (e *environment) logPath() string {
	return filepath.Join(filepath.Dir(e.cfgPath), "homescreen.log")
}

func (e *environment) favicons() *favicon.Resolver {
	return favicon.NewResolver(favicon.NewResolverParams{
		Cache:        e.store,
		Timeout:      e.cfg.Favicon.Timeout.Duration,
		RatePerSec:   e.cfg.Favicon.RatePerSec,
		MaxBodyBytes: e.cfg.Favicon.MaxBodyBytes,
		Complex:      e.store.ComplexFallback,
	})
}

// backupService builds a loaded backup service reporting status through
// onStatus.
func (e *environment) backupService(onStatus backup.StatusFunc) (*backup.Service, error) {
	auth := backup.NewLoopbackAuth(backup.NewLoopbackAuthParams{
		ClientID:     e.cfg.Backup.ClientID,
		ClientSecret: e.cfg.Backup.ClientSecret,
		Port:         e.cfg.Backup.RedirectPort,
	})
	svc := backup.NewService(backup.NewServiceParams{
		Auth:     auth,
		State:    e.store,
		Data:     e.store,
		OnStatus: onStatus,
	})
	if err := svc.Load(); err != nil {
		return nil, err
	}
	return svc, nil
}
