// Package exporter writes the folder list as JSON, CSV or Netscape
// bookmark HTML.
package exporter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/homescreen/internal/model"
)

// ErrUnsupportedFormat is returned for an unknown export format.
var ErrUnsupportedFormat = errors.New("Unsupported export format.")

// Format is an export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatHTML:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	}
	return "text/html"
}

// Filename returns home-screen-export-YYYY-MM-DD-HH-MM.<ext> for t.
func Filename(f Format, t time.Time) string {
	return fmt.Sprintf("home-screen-export-%s.%s", t.Format("2006-01-02-15-04"), f)
}

// DefaultExportPath returns the export file path in ~/Downloads.
func DefaultExportPath(f Format, t time.Time) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Downloads", Filename(f, t)), nil
}

// Write encodes folders in format f to w.
func Write(w io.Writer, f Format, folders []model.Folder) error {
	var data []byte
	switch f {
	case FormatJSON:
		var err error
		if data, err = JSON(folders); err != nil {
			return err
		}
	case FormatCSV:
		data = []byte(CSV(folders))
	case FormatHTML:
		data = []byte(HTML(folders))
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	_, err := w.Write(data)
	return err
}

// JSON returns folders as a two-space indented array.
func JSON(folders []model.Folder) ([]byte, error) {
	if folders == nil {
		folders = []model.Folder{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(folders); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// CSV returns one quoted Folder,Label,URL row per bookmark.
func CSV(folders []model.Folder) string {
	rows := []string{"Folder,Label,URL"}
	for _, f := range folders {
		for _, b := range f.Bookmarks {
			rows = append(rows, quote(f.Name)+","+quote(b.Label)+","+quote(b.URL))
		}
	}
	return strings.Join(rows, "\n")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// HTML returns folders in Netscape bookmark format, one <H3> per folder.
func HTML(folders []model.Folder) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	for _, f := range folders {
		fmt.Fprintf(&b, "<DT><H3>%s</H3>\n", html.EscapeString(f.Name))
		b.WriteString("<DL><p>\n")
		for _, bm := range f.Bookmarks {
			fmt.Fprintf(&b, "<DT><A HREF=\"%s\">%s</A>\n",
				html.EscapeString(bm.URL),
				html.EscapeString(bm.Label),
			)
		}
		b.WriteString("</DL><p>\n")
	}

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}
