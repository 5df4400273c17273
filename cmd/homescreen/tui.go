package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/nikbrunner/homescreen/internal/logging"
	"github.com/nikbrunner/homescreen/internal/model"
	"github.com/nikbrunner/homescreen/internal/storage"
	"github.com/nikbrunner/homescreen/internal/tui"
)

func tuiCommand() *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "open the terminal dashboard (default)",
		Action: runTUI,
	}
}

// watchedKeys are reloaded into a running dashboard when another process
// writes them.
func watchedKeys() []string {
	keys := []string{
		storage.KeyFolders,
		storage.KeyCurrentFolder,
		storage.KeyPinnedFolders,
		storage.KeyToDoList,
	}
	return append(keys, model.WatchedSettingKeys...)
}

func runTUI(ctx context.Context, cmd *cli.Command) error {
	e := envFrom(ctx)

	// Log lines would tear the alt screen
	logFile, err := logging.OpenFile(e.logPath())
	if err != nil {
		return err
	}
	defer logFile.Close()

	store, err := e.store.Load()
	if err != nil {
		return fmt.Errorf("load bookmarks: %w", err)
	}

	app := tui.NewApp(tui.AppParams{
		Store:   store,
		Storage: e.store,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	go forwardChanges(ctx, e.kv, p)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}

// forwardChanges turns store writes from other processes into reload
// messages. Stores without a backing file are never watched.
func forwardChanges(ctx context.Context, kv storage.KV, p *tea.Program) {
	w, err := storage.NewWatcher(kv, watchedKeys()...)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFileBacked) {
			log.Warn("Not watching store", "error", err)
		}
		return
	}

	go func() {
		for change := range w.Changes() {
			p.Send(tui.ReloadMsg{Key: change.Key})
		}
	}()
	if err := w.Run(ctx); err != nil {
		log.Warn("Watcher stopped", "error", err)
	}
}
