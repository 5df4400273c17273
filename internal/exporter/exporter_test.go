package exporter

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/golden"

	"github.com/nikbrunner/homescreen/internal/importer"
	"github.com/nikbrunner/homescreen/internal/model"
)

func fixture() []model.Folder {
	work := model.NewFolder("Work")
	work.Bookmarks = append(work.Bookmarks,
		model.Bookmark{Label: "Go", URL: "https://go.dev", Flags: 1},
		model.Bookmark{Label: `Say "hi"`, URL: "https://a.test/?q=1&b=2"},
	)
	return []model.Folder{work, model.NewFolder("Empty")}
}

func TestJSON_Golden(t *testing.T) {
	data, err := JSON(fixture())
	assert.NilError(t, err)
	golden.Assert(t, string(data), "folders.json.golden")
}

func TestCSV_Golden(t *testing.T) {
	golden.Assert(t, CSV(fixture()), "folders.csv.golden")
}

func TestHTML_Golden(t *testing.T) {
	golden.Assert(t, HTML(fixture()), "folders.html.golden")
}

func TestCSV_Empty(t *testing.T) {
	assert.Equal(t, CSV(nil), "Folder,Label,URL")
}

func TestJSON_Empty(t *testing.T) {
	data, err := JSON(nil)
	assert.NilError(t, err)
	assert.Equal(t, string(data), "[]")
}

func TestJSON_RoundTrip(t *testing.T) {
	data, err := JSON(fixture())
	assert.NilError(t, err)

	folders, err := importer.ParseJSON(data)
	assert.NilError(t, err)
	assert.DeepEqual(t, folders, fixture())

	// Importing an export back into the same store changes nothing.
	store := model.NewStore()
	store.Folders = fixture()
	added, duplicates := store.MergeFolders(folders)
	assert.Equal(t, added, 0)
	assert.Equal(t, duplicates, model.CountBookmarks(fixture()))
	assert.DeepEqual(t, store.Folders, fixture())
}

func TestHTML_ImportsBack(t *testing.T) {
	bookmarks, err := importer.ParseHTML(strings.NewReader(HTML(fixture())))
	assert.NilError(t, err)
	assert.Equal(t, len(bookmarks), 2)
	assert.Equal(t, bookmarks[1].Label, `Say "hi"`)
	assert.Equal(t, bookmarks[1].URL, "https://a.test/?q=1&b=2")
}

func TestFilename(t *testing.T) {
	ts := time.Date(2024, 3, 7, 9, 5, 0, 0, time.UTC)

	tests := []struct {
		format Format
		want   string
	}{
		{FormatJSON, "home-screen-export-2024-03-07-09-05.json"},
		{FormatCSV, "home-screen-export-2024-03-07-09-05.csv"},
		{FormatHTML, "home-screen-export-2024-03-07-09-05.html"},
	}
	for _, tt := range tests {
		assert.Equal(t, Filename(tt.format, ts), tt.want)
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" HTML ")
	assert.NilError(t, err)
	assert.Equal(t, f, FormatHTML)

	_, err = ParseFormat("xml")
	assert.Assert(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	assert.NilError(t, Write(&buf, FormatCSV, fixture()))
	assert.Equal(t, buf.String(), CSV(fixture()))

	err := Write(&buf, Format("xml"), nil)
	assert.Assert(t, errors.Is(err, ErrUnsupportedFormat))
}
