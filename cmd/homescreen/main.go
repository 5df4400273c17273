package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "homescreen",
		Usage: "bookmark dashboard for the terminal and the browser's new tab",
		Description: `homescreen keeps bookmarks in folders with favorite and read flags,
a to-do list and display settings. Run without a command to open the
terminal dashboard, or use "serve" to open it in a browser.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file (default ~/.config/homescreen/config.toml)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.BoolFlag{
				Name:  "ephemeral",
				Usage: "keep state in memory only, nothing is written to disk",
			},
		},
		Before: setup,
		After:  teardown,
		Action: runTUI,
		Commands: []*cli.Command{
			tuiCommand(),
			serveCommand(),
			importCommand(),
			exportCommand(),
			searchCommand(),
			backupCommand(),
			todoCommand(),
			settingsCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, errCancelled) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}
