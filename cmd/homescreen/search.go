package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/skratchdot/open-golang/open"
	"github.com/urfave/cli/v3"

	"github.com/nikbrunner/homescreen/internal/picker"
	"github.com/nikbrunner/homescreen/internal/search"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Aliases:   []string{"s"},
		Usage:     "search all folders and open the chosen bookmark",
		ArgsUsage: "<query...>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "filter",
				Usage: "starred, notstarred, unread or read",
			},
			&cli.BoolFlag{
				Name:    "print",
				Aliases: []string{"p"},
				Usage:   "print matches instead of opening one",
			},
		},
		Action: runSearch,
	}
}

func runSearch(ctx context.Context, cmd *cli.Command) error {
	mode, err := search.ParseMode(cmd.String("filter"))
	if err != nil {
		return err
	}
	q := search.Query{
		Mode:       mode,
		Text:       strings.TrimSpace(strings.Join(cmd.Args().Slice(), " ")),
		AllFolders: true,
	}
	if q.Text == "" && q.Mode == search.ModeNone {
		return fmt.Errorf("nothing to search for")
	}

	store, err := envFrom(ctx).store.Load()
	if err != nil {
		return err
	}
	results := search.Run(store.Folders, store.CurrentFolder, q)

	if cmd.Bool("print") {
		for _, r := range results {
			fmt.Printf("%s\t%s\t%s\n", r.FolderName, r.Bookmark.Label, r.Bookmark.URL)
		}
		return nil
	}

	var chosen search.Result
	switch len(results) {
	case 0:
		fmt.Printf("No bookmarks found for %q\n", q.Text)
		return nil
	case 1:
		chosen = results[0]
	default:
		final, err := tea.NewProgram(picker.ForResults(results, q.Text), tea.WithContext(ctx)).Run()
		if err != nil {
			return err
		}
		p := final.(picker.Picker)
		i, ok := p.Selected()
		if p.Cancelled() || !ok {
			return errCancelled
		}
		chosen = results[i]
	}

	fmt.Printf("Opening: %s\n", chosen.Bookmark.URL)
	return open.Run(chosen.Bookmark.URL)
}
