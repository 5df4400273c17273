package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikbrunner/homescreen/internal/model"
	"github.com/nikbrunner/homescreen/internal/storage"
)

const importFile = `[
  {"name": "Work", "bookmarks": [
    {"label": "Go", "url": "https://go.dev", "flags": 1},
    {"label": "Docs", "url": "https://pkg.go.dev"}
  ]}
]`

const browserFile = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
  <DT><A HREF="https://example.com">Example</A>
  <DT><A HREF="https://go.dev">Go</A>
</DL>`

// workspace is a config dir with a JSON store so every run sees the
// previous run's writes.
func workspace(t *testing.T) (cfgPath string, acc func() *storage.Accessor) {
	t.Helper()
	dir := t.TempDir()
	cfgPath = filepath.Join(dir, "config.toml")
	cfg := "[storage]\nbackend = \"json\"\npath = \"state.json\"\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	return cfgPath, func() *storage.Accessor {
		return storage.NewAccessor(storage.NewJSONKV(filepath.Join(dir, "state.json")))
	}
}

func run(t *testing.T, cfgPath string, args ...string) error {
	t.Helper()
	argv := append([]string{"homescreen", "--config", cfgPath}, args...)
	return newApp().Run(context.Background(), argv)
}

func TestImportAndExport(t *testing.T) {
	cfgPath, acc := workspace(t)
	dir := filepath.Dir(cfgPath)

	jsonPath := filepath.Join(dir, "in.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(importFile), 0644))
	require.NoError(t, run(t, cfgPath, "import", jsonPath))

	htmlPath := filepath.Join(dir, "browser.html")
	require.NoError(t, os.WriteFile(htmlPath, []byte(browserFile), 0644))
	require.NoError(t, run(t, cfgPath, "import", "--folder", "Browser", htmlPath))
	// Same file again only finds duplicates
	require.NoError(t, run(t, cfgPath, "import", "--folder", "Browser", htmlPath))

	store, err := acc().Load()
	require.NoError(t, err)
	work := store.Folder("Work")
	require.NotNil(t, work)
	assert.Len(t, work.Bookmarks, 2)
	assert.True(t, work.Bookmarks[0].IsFavorite())
	browser := store.Folder("Browser")
	require.NotNil(t, browser)
	assert.Len(t, browser.Bookmarks, 2)

	out := filepath.Join(dir, "exports", "all.csv")
	require.NoError(t, run(t, cfgPath, "export", "--format", "csv", out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Work","Go","https://go.dev"`)

	assert.Error(t, run(t, cfgPath, "export", "--format", "xml", out))
}

func TestToDoCommands(t *testing.T) {
	cfgPath, acc := workspace(t)

	require.NoError(t, run(t, cfgPath, "todo", "add", "buy", "milk"))
	require.NoError(t, run(t, cfgPath, "todo", "add", "call mom"))
	require.NoError(t, run(t, cfgPath, "todo", "done", "1"))
	require.NoError(t, run(t, cfgPath, "todo", "mv", "2", "1"))

	items, err := acc().ToDoList()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "call mom", items[0].Text)
	assert.Equal(t, "buy milk", items[1].Text)
	assert.True(t, items[1].Checked)

	require.NoError(t, run(t, cfgPath, "todo", "clear"))
	items, err = acc().ToDoList()
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, run(t, cfgPath, "todo", "restore"))
	items, err = acc().ToDoList()
	require.NoError(t, err)
	assert.Len(t, items, 2)

	assert.Error(t, run(t, cfgPath, "todo", "done", "0"))
	assert.Error(t, run(t, cfgPath, "todo", "rm", "9"))
	assert.Error(t, run(t, cfgPath, "todo", "add", "   "))
}

func TestSettingsCommands(t *testing.T) {
	cfgPath, acc := workspace(t)

	require.NoError(t, run(t, cfgPath, "settings", "set", "darkModeEnabled", "true"))
	require.NoError(t, run(t, cfgPath, "settings", "set", "bookmarksPerRow", "6"))
	assert.Error(t, run(t, cfgPath, "settings", "set", "noSuchKey", "1"))
	assert.Error(t, run(t, cfgPath, "settings", "set", "darkModeEnabled"))

	settings, err := acc().Settings()
	require.NoError(t, err)
	assert.True(t, settings.DarkModeEnabled)
	assert.Equal(t, "6", settings.BookmarksPerRow)

	require.NoError(t, run(t, cfgPath, "settings", "get", "bookmarksPerRow"))
	require.NoError(t, run(t, cfgPath, "settings", "reset"))
	settings, err = acc().Settings()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), settings)
}

func TestSearchPrint(t *testing.T) {
	cfgPath, _ := workspace(t)
	require.NoError(t, run(t, cfgPath, "search", "--print", "anything"))
	assert.Error(t, run(t, cfgPath, "search"))
	assert.Error(t, run(t, cfgPath, "search", "--filter", "bogus", "x"))
}

func TestBackupNeedsClient(t *testing.T) {
	cfgPath, _ := workspace(t)
	t.Setenv("HOMESCREEN_GOOGLE_CLIENT_ID", "")
	assert.ErrorContains(t, run(t, cfgPath, "backup", "list"), "client_id")
}

func TestIsJSON(t *testing.T) {
	assert.True(t, isJSON([]byte("  \n[{}]")))
	assert.False(t, isJSON([]byte("<!DOCTYPE NETSCAPE-Bookmark-file-1>")))
	assert.False(t, isJSON(nil))
}

func TestWatchedKeys(t *testing.T) {
	keys := watchedKeys()
	assert.Contains(t, keys, storage.KeyFolders)
	for _, k := range model.WatchedSettingKeys {
		assert.Contains(t, keys, k)
	}
}
