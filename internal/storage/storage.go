package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/nikbrunner/homescreen/internal/model"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// KV is a flat key-value store. Values are JSON documents. Implementations
// are safe for concurrent use; concurrent writers to the same key are
// last-write-wins.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	// SetMany writes several keys at once. A nil value deletes the key.
	SetMany(values map[string][]byte) error
	Delete(key string) error
	Keys() ([]string, error)
	Close() error
}

// FileBacked is implemented by stores that live in a single file.
type FileBacked interface {
	Path() string
}

// Storage defines the interface for persisting the whole application state.
type Storage interface {
	Load() (*model.Store, error)
	Save(store *model.Store) error
}

// Open opens the KV for backend at path.
func Open(backend, path string) (KV, error) {
	switch backend {
	case "sqlite", "":
		return NewSQLiteKV(path)
	case "json":
		return NewJSONKV(path), nil
	case "memory":
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// MemoryKV implements KV in process memory.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: map[string][]byte{}}
}

func (m *MemoryKV) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryKV) SetMany(values map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		if v == nil {
			delete(m.values, k)
			continue
		}
		m.values[k] = v
	}
	return nil
}

func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryKV) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedKeys(m.values), nil
}

func (m *MemoryKV) Close() error { return nil }

// JSONKV implements KV as one JSON object file. Every write rewrites the
// whole file.
type JSONKV struct {
	mu   sync.Mutex
	path string
}

// NewJSONKV creates a new JSONKV with the given file path.
func NewJSONKV(path string) *JSONKV {
	return &JSONKV{path: path}
}

// Path returns the storage file path.
func (s *JSONKV) Path() string {
	return s.path
}

// read loads the file. A missing file is an empty store.
func (s *JSONKV) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, err
	}

	values := map[string]json.RawMessage{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return values, nil
}

// write replaces the file through a temp file so readers never see a
// half-written document.
func (s *JSONKV) write(values map[string]json.RawMessage) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".homescreen-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *JSONKV) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return nil, false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (s *JSONKV) Set(key string, value []byte) error {
	return s.SetMany(map[string][]byte{key: value})
}

func (s *JSONKV) SetMany(updates map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	for k, v := range updates {
		if v == nil {
			delete(values, k)
			continue
		}
		if !json.Valid(v) {
			return fmt.Errorf("value for %q is not JSON", k)
		}
		values[k] = json.RawMessage(v)
	}
	return s.write(values)
}

func (s *JSONKV) Delete(key string) error {
	return s.SetMany(map[string][]byte{key: nil})
}

func (s *JSONKV) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return nil, err
	}
	return sortedKeys(values), nil
}

func (s *JSONKV) Close() error { return nil }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
