package storage_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nikbrunner/homescreen/internal/model"
	"github.com/nikbrunner/homescreen/internal/storage"
)

// backends returns a fresh KV of every kind.
func backends(t *testing.T) map[string]storage.KV {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := storage.NewSQLiteKV(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]storage.KV{
		"memory": storage.NewMemoryKV(),
		"json":   storage.NewJSONKV(filepath.Join(dir, "test.json")),
		"sqlite": sqlite,
	}
}

func TestKV_GetSetDelete(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := kv.Get("missing"); err != nil || ok {
				t.Fatalf("Get(missing) = %v, %v", ok, err)
			}

			if err := kv.Set("a", []byte(`"one"`)); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := kv.Set("a", []byte(`"two"`)); err != nil {
				t.Fatalf("Set: %v", err)
			}
			v, ok, err := kv.Get("a")
			if err != nil || !ok || string(v) != `"two"` {
				t.Errorf("Get(a) = %s, %v, %v", v, ok, err)
			}

			if err := kv.Delete("a"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, ok, _ := kv.Get("a"); ok {
				t.Error("key should be gone after Delete")
			}
		})
	}
}

func TestKV_SetMany(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := kv.Set("gone", []byte(`1`)); err != nil {
				t.Fatalf("Set: %v", err)
			}
			err := kv.SetMany(map[string][]byte{
				"b":    []byte(`true`),
				"a":    []byte(`[1,2]`),
				"gone": nil,
			})
			if err != nil {
				t.Fatalf("SetMany: %v", err)
			}

			keys, err := kv.Keys()
			if err != nil {
				t.Fatalf("Keys: %v", err)
			}
			if diff := cmp.Diff([]string{"a", "b"}, keys); diff != "" {
				t.Errorf("Keys mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	kv, err := storage.Open("json", filepath.Join(dir, "s.json"))
	if err != nil {
		t.Fatalf("Open(json): %v", err)
	}
	if fb, ok := kv.(storage.FileBacked); !ok || fb.Path() == "" {
		t.Error("json backend should be file backed")
	}

	if _, err := storage.Open("redis", ""); !errors.Is(err, storage.ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestJSONKV_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "store.json")
	kv := storage.NewJSONKV(path)

	if err := kv.Set("x", []byte(`1`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file was not created: %v", err)
	}
}

func TestJSONKV_RejectsInvalidJSON(t *testing.T) {
	kv := storage.NewJSONKV(filepath.Join(t.TempDir(), "s.json"))
	if err := kv.Set("x", []byte(`{not json`)); err == nil {
		t.Error("expected error for invalid JSON value")
	}
}

func TestAccessor_SaveAndLoad(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			acc := storage.NewAccessor(kv)

			store := model.NewStore()
			if err := store.AddFolder("Work"); err != nil {
				t.Fatal(err)
			}
			if _, err := store.AddBookmark("Work", "Go", "https://go.dev"); err != nil {
				t.Fatal(err)
			}
			store.CurrentFolder = "Work"
			store.TogglePin("Work")
			store.AddToDo("write tests")
			store.Settings.DarkModeEnabled = true
			store.Settings.ContentMargin = 48

			if err := acc.Save(store); err != nil {
				t.Fatalf("Save: %v", err)
			}

			loaded, err := acc.Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if diff := cmp.Diff(store, loaded); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAccessor_LoadSeedsFirstRun(t *testing.T) {
	acc := storage.NewAccessor(storage.NewMemoryKV())

	store, err := acc.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if store.CurrentFolder != model.SeedFolderName {
		t.Errorf("current = %q, want %q", store.CurrentFolder, model.SeedFolderName)
	}
	if !store.IsPinned(model.SeedFolderName) {
		t.Error("seed folder should be pinned")
	}

	// Once folders are stored, even an empty list is not re-seeded.
	if err := acc.SetFolders([]model.Folder{}); err != nil {
		t.Fatal(err)
	}
	store, err = acc.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(store.Folders) != 0 {
		t.Errorf("expected no folders, got %d", len(store.Folders))
	}
}

func TestAccessor_Defaults(t *testing.T) {
	acc := storage.NewAccessor(storage.NewMemoryKV())

	current, err := acc.CurrentFolder()
	if err != nil || current != model.DefaultFolderName {
		t.Errorf("CurrentFolder = %q, %v", current, err)
	}
	pinned, err := acc.PinnedFolders()
	if err != nil || pinned == nil || len(pinned) != 0 {
		t.Errorf("PinnedFolders = %#v, %v", pinned, err)
	}
	s, err := acc.Settings()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(model.DefaultSettings(), s); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestAccessor_SettingsAsStrings(t *testing.T) {
	kv := storage.NewMemoryKV()
	kv.Set("openInNewTab", []byte(`"false"`))
	kv.Set("contentMargin", []byte(`"40"`))
	kv.Set("bookmarkSize", []byte(`null`))

	s, err := storage.NewAccessor(kv).Settings()
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if s.OpenInNewTab {
		t.Error("openInNewTab should be false")
	}
	if s.ContentMargin != 40 {
		t.Errorf("contentMargin = %d, want 40", s.ContentMargin)
	}
	if s.BookmarkSize != "medium" {
		t.Errorf("null should keep default, got %q", s.BookmarkSize)
	}
}

func TestAccessor_SetSetting(t *testing.T) {
	kv := storage.NewMemoryKV()
	acc := storage.NewAccessor(kv)

	if _, err := acc.SetSetting("textSize", "lg"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	raw, _, _ := kv.Get("textSize")
	if string(raw) != `"lg"` {
		t.Errorf("stored textSize = %s", raw)
	}

	if _, err := acc.SetSetting("textSize", "huge"); !errors.Is(err, model.ErrInvalidSetting) {
		t.Errorf("expected ErrInvalidSetting, got %v", err)
	}
	v, _ := acc.Setting("textSize")
	if v != "lg" {
		t.Errorf("failed set must keep old value, got %v", v)
	}
}

func TestAccessor_LastClearedRemovedWhenEmpty(t *testing.T) {
	kv := storage.NewMemoryKV()
	acc := storage.NewAccessor(kv)

	store := model.NewStore()
	store.AddToDo("one")
	store.ClearToDoList()
	if err := acc.Save(store); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := kv.Get(storage.KeyLastCleared); !ok {
		t.Fatal("lastClearedToDoList should be stored")
	}

	if err := store.RestoreToDoList(); err != nil {
		t.Fatal(err)
	}
	if err := acc.Save(store); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := kv.Get(storage.KeyLastCleared); ok {
		t.Error("lastClearedToDoList should be removed once restored")
	}
}

func TestAccessor_FaviconCache(t *testing.T) {
	kv := storage.NewMemoryKV()
	acc := storage.NewAccessor(kv)

	if _, ok, _ := acc.Favicon("https://a.test"); ok {
		t.Error("unexpected cache hit")
	}
	if err := acc.SetFavicon("https://a.test", "data:image/png;base64,AA=="); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := kv.Get("faviconCache:https://a.test"); !ok {
		t.Error("favicon should be stored under faviconCache:<url>")
	}

	acc.SetTabColor("https://a.test", "#112233")
	acc.SetTabColor("https://b.test", "#445566")
	c, ok, err := acc.TabColor("https://a.test")
	if err != nil || !ok || c != "#112233" {
		t.Errorf("TabColor = %q, %v, %v", c, ok, err)
	}

	four := []string{"#000000", "#111111", "#222222", "#333333"}
	acc.SetFallbackColors("https://a.test", four)
	got, ok, _ := acc.FallbackColors("https://a.test")
	if !ok || !cmp.Equal(four, got) {
		t.Errorf("FallbackColors = %v, %v", got, ok)
	}
}
