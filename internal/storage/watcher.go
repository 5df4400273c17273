package storage

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrNotFileBacked is returned when watching a store that has no backing file.
var ErrNotFileBacked = errors.New("store is not file backed")

// DebounceInterval groups bursts of file events into one re-read.
const DebounceInterval = 150 * time.Millisecond

// Change reports a watched key whose stored value differs from the last
// value the watcher saw.
type Change struct {
	Key   string
	Value []byte
}

// Watcher follows writes to a file-backed KV made by any process and emits
// a Change for each watched key whose value moved.
type Watcher struct {
	kv       KV
	keys     []string
	dir      string
	base     string
	fs       *fsnotify.Watcher
	snapshot map[string][]byte
	changes  chan Change
}

// NewWatcher watches the directory holding kv's file. The kv must implement
// FileBacked.
func NewWatcher(kv KV, keys ...string) (*Watcher, error) {
	fb, ok := kv.(FileBacked)
	if !ok {
		return nil, ErrNotFileBacked
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	path := fb.Path()
	w := &Watcher{
		kv:       kv,
		keys:     keys,
		dir:      filepath.Dir(path),
		base:     filepath.Base(path),
		fs:       fsw,
		snapshot: map[string][]byte{},
		changes:  make(chan Change, len(keys)+1),
	}

	// The directory is watched, not the file: atomic renames and sqlite
	// -wal files would otherwise be missed.
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w.refresh(context.Background(), false)
	return w, nil
}

// Changes delivers key changes. It is closed when Run returns.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Run processes file events until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.changes)
	defer w.fs.Close()

	log.Info("Watching", "dir", w.dir, "file", w.base)

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(DebounceInterval)
			} else {
				timer.Reset(DebounceInterval)
			}
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			w.refresh(ctx, true)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			log.Error("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return strings.HasPrefix(filepath.Base(ev.Name), w.base)
}

// refresh re-reads the watched keys and, when emit is set, reports those
// that changed since the last snapshot.
func (w *Watcher) refresh(ctx context.Context, emit bool) {
	for _, key := range w.keys {
		value, _, err := w.kv.Get(key)
		if err != nil {
			log.Warn("Re-read failed", "key", key, "error", err)
			continue
		}
		prev, seen := w.snapshot[key]
		w.snapshot[key] = value
		if !emit || (seen && bytes.Equal(prev, value)) {
			continue
		}
		if !seen && value == nil {
			continue
		}
		select {
		case w.changes <- Change{Key: key, Value: value}:
		case <-ctx.Done():
			return
		}
	}
}
