package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nikbrunner/homescreen/internal/storage"
)

func TestWatcher_RequiresFile(t *testing.T) {
	if _, err := storage.NewWatcher(storage.NewMemoryKV(), "darkModeEnabled"); !errors.Is(err, storage.ErrNotFileBacked) {
		t.Errorf("expected ErrNotFileBacked, got %v", err)
	}
}

func TestWatcher_EmitsChangedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	kv := storage.NewJSONKV(path)
	if err := kv.Set("darkModeEnabled", []byte(`false`)); err != nil {
		t.Fatal(err)
	}

	w, err := storage.NewWatcher(kv, "darkModeEnabled", "selectedBackground")
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go w.Run(ctx)

	// Another process writes an unwatched key and a watched one.
	other := storage.NewJSONKV(path)
	if err := other.SetMany(map[string][]byte{
		"textSize":        []byte(`"lg"`),
		"darkModeEnabled": []byte(`true`),
	}); err != nil {
		t.Fatal(err)
	}

	select {
	case ch := <-w.Changes():
		if ch.Key != "darkModeEnabled" || string(ch.Value) != "true" {
			t.Errorf("change = %s=%s", ch.Key, ch.Value)
		}
	case <-ctx.Done():
		t.Fatal("no change received")
	}
}
