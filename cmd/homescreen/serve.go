package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/nikbrunner/homescreen/internal/backup"
	"github.com/nikbrunner/homescreen/internal/favicon"
	"github.com/nikbrunner/homescreen/internal/server"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the dashboard over HTTP",
		Description: `Serves the dashboard and its JSON API. Favicons of every bookmark are
fetched in the background. When a backup client is configured the daily
Drive backup runs while the server is up.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "listen",
				Aliases: []string{"l"},
				Usage:   "address to listen on (overrides [server] listen)",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "don't log requests",
			},
			&cli.BoolFlag{
				Name:  "no-prefetch",
				Usage: "skip warming the favicon cache at startup",
			},
		},
		Action: serve,
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	e := envFrom(ctx)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := e.cfg.Server.Listen
	if v := cmd.String("listen"); v != "" {
		addr = v
	}

	icons := e.favicons()
	srv, err := server.NewServer(server.NewServerParams{
		Addr:        addr,
		Storage:     e.store,
		Favicons:    icons,
		LogRequests: !cmd.Bool("quiet"),
	})
	if err != nil {
		return err
	}

	if !cmd.Bool("no-prefetch") {
		go prefetchFavicons(ctx, e, icons)
	}
	if e.cfg.Backup.ClientID != "" {
		go runBackupScheduler(ctx, e)
	}

	fmt.Printf("✓ Serving homescreen on http://%s\n", srv.Addr())
	return srv.Run(ctx)
}

func prefetchFavicons(ctx context.Context, e *environment, icons *favicon.Resolver) {
	store, err := e.store.Load()
	if err != nil {
		log.Warn("Favicon prefetch skipped", "error", err)
		return
	}

	var urls []string
	for _, f := range store.Folders {
		for _, b := range f.Bookmarks {
			if b.URL != "" {
				urls = append(urls, b.URL)
			}
		}
	}

	results := icons.Prefetch(ctx, urls, e.cfg.Favicon.Workers, func(completed, total int) {
		log.Debug("Prefetching favicons", "done", completed, "total", total)
	})
	fallbacks := 0
	for _, r := range results {
		if r.Error != "" {
			fallbacks++
			log.Debug("Favicon fallback", "url", r.URL, "reason", r.Error)
		}
	}
	log.Info("Favicons prefetched", "total", len(results), "fallbacks", fallbacks)
}

func runBackupScheduler(ctx context.Context, e *environment) {
	svc, err := e.backupService(func(st backup.Status) {
		if st.Message == "" {
			return
		}
		switch st.Kind {
		case backup.StatusError:
			log.Error(st.Message)
		default:
			log.Info(st.Message)
		}
	})
	if err != nil {
		log.Error("Backup scheduler not started", "error", err)
		return
	}
	if err := svc.RunScheduler(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Backup scheduler stopped", "error", err)
	}
}
