package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/nikbrunner/homescreen/internal/exporter"
	"github.com/nikbrunner/homescreen/internal/importer"
	"github.com/nikbrunner/homescreen/internal/model"
)

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "import bookmarks from a JSON export or a browser HTML file",
		ArgsUsage: "<file>",
		Description: `JSON files made by "export" are merged folder by folder. Browser
HTML exports go into one folder, or keep their folder tree with
--keep-folders. Bookmarks with the same label and URL as one already in
the target folder are skipped.`,
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:   "path",
				Config: cli.StringConfig{TrimSpace: true},
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "folder",
				Aliases: []string{"f"},
				Usage:   "folder that receives HTML imports",
				Value:   model.ImportedFolderName,
			},
			&cli.BoolFlag{
				Name:    "keep-folders",
				Aliases: []string{"k"},
				Usage:   "recreate the HTML file's folders instead of flattening",
			},
		},
		Action: runImport,
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "export bookmarks as JSON, CSV or HTML",
		ArgsUsage: "[path|-]",
		Description: `Writes every folder to path, or to stdout when path is "-". Without
a path the file goes to ~/Downloads/home-screen-export-<time>.<format>.`,
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:   "path",
				Config: cli.StringConfig{TrimSpace: true},
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "json, csv or html",
				Value: string(exporter.FormatJSON),
			},
		},
		Action: runExport,
	}
}

// isJSON sniffs the first non-space byte of an import file.
func isJSON(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func runImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("missing import file")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	e := envFrom(ctx)
	store, err := e.store.Load()
	if err != nil {
		return err
	}

	var (
		added, duplicates int
		target            string
	)
	switch {
	case isJSON(data) || strings.EqualFold(filepath.Ext(path), ".json"):
		folders, err := importer.ParseJSON(data)
		if err != nil {
			return err
		}
		added, duplicates = store.MergeFolders(folders)
		target = fmt.Sprintf("%d folders", len(folders))

	case cmd.Bool("keep-folders"):
		folders, err := importer.ParseHTMLFolders(bytes.NewReader(data), cmd.String("folder"))
		if err != nil {
			return err
		}
		added, duplicates = store.MergeFolders(folders)
		target = fmt.Sprintf("%d folders", len(folders))

	default:
		bookmarks, err := importer.ParseHTML(bytes.NewReader(data))
		if err != nil {
			return err
		}
		target = cmd.String("folder")
		added, duplicates = store.ImportBookmarks(target, bookmarks)
	}

	if err := e.store.Save(store); err != nil {
		return err
	}
	fmt.Printf("✓ %s\n", importer.Summary(added, duplicates, target))
	return nil
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	format, err := exporter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	e := envFrom(ctx)
	folders, err := e.store.Folders()
	if err != nil {
		return err
	}

	path := cmd.StringArg("path")
	if path == "-" {
		return exporter.Write(os.Stdout, format, folders)
	}
	if path == "" {
		if path, err = exporter.DefaultExportPath(format, time.Now()); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeAndClose(f, format, folders); err != nil {
		return err
	}

	n := 0
	for _, folder := range folders {
		n += len(folder.Bookmarks)
	}
	fmt.Printf("✓ Exported %d bookmarks in %d folders to %s\n", n, len(folders), path)
	return nil
}

func writeAndClose(w io.WriteCloser, format exporter.Format, folders []model.Folder) error {
	if err := exporter.Write(w, format, folders); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
