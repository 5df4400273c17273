package storage

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nikbrunner/homescreen/internal/logging"
	"github.com/nikbrunner/homescreen/internal/model"
)

var log = logging.GetLogger("storage")

// Persisted keys.
const (
	KeyFolders         = "folders"
	KeyCurrentFolder   = "currentFolder"
	KeyPinnedFolders   = "pinnedFolders"
	KeyToDoList        = "toDoList"
	KeyLastCleared     = "lastClearedToDoList"
	KeyTabColors       = "tabColors"
	KeyFallbackColors  = "bookmarkFallbackColors"
	KeyCustomFilters   = "customFilters"
	faviconCachePrefix = "faviconCache:"
)

// FaviconKey is the key a resolved favicon is cached under.
func FaviconKey(url string) string {
	return faviconCachePrefix + url
}

// Accessor reads and writes typed values on top of a KV. Values are stored
// as JSON documents, one per key.
type Accessor struct {
	kv KV
	// mu serializes read-modify-write of map-valued keys.
	mu sync.Mutex
}

// NewAccessor wraps kv.
func NewAccessor(kv KV) *Accessor {
	return &Accessor{kv: kv}
}

// KV returns the underlying store.
func (a *Accessor) KV() KV {
	return a.kv
}

// GetJSON decodes the value at key into v. It reports false when the key is
// missing, leaving v untouched.
func (a *Accessor) GetJSON(key string, v any) (bool, error) {
	data, ok, err := a.kv.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it at key.
func (a *Accessor) SetJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return a.kv.Set(key, data)
}

func (a *Accessor) Folders() ([]model.Folder, error) {
	folders := []model.Folder{}
	if _, err := a.GetJSON(KeyFolders, &folders); err != nil {
		return nil, err
	}
	for i := range folders {
		if folders[i].Bookmarks == nil {
			folders[i].Bookmarks = []model.Bookmark{}
		}
		if folders[i].Children == nil {
			folders[i].Children = []model.Folder{}
		}
	}
	return folders, nil
}

func (a *Accessor) SetFolders(folders []model.Folder) error {
	return a.SetJSON(KeyFolders, folders)
}

// CurrentFolder returns the selected folder name, "Default" when unset.
func (a *Accessor) CurrentFolder() (string, error) {
	name := model.DefaultFolderName
	if _, err := a.GetJSON(KeyCurrentFolder, &name); err != nil {
		return "", err
	}
	return name, nil
}

func (a *Accessor) SetCurrentFolder(name string) error {
	return a.SetJSON(KeyCurrentFolder, name)
}

// PinnedFolders returns the pinned folder names in display order. Names of
// folders that no longer exist are kept.
func (a *Accessor) PinnedFolders() ([]string, error) {
	pinned := []string{}
	if _, err := a.GetJSON(KeyPinnedFolders, &pinned); err != nil {
		return nil, err
	}
	return pinned, nil
}

func (a *Accessor) SetPinnedFolders(names []string) error {
	return a.SetJSON(KeyPinnedFolders, names)
}

func (a *Accessor) ToDoList() ([]model.ToDoItem, error) {
	items := []model.ToDoItem{}
	if _, err := a.GetJSON(KeyToDoList, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (a *Accessor) SetToDoList(items []model.ToDoItem) error {
	return a.SetJSON(KeyToDoList, items)
}

func (a *Accessor) LastClearedToDoList() ([]model.ToDoItem, error) {
	var items []model.ToDoItem
	if _, err := a.GetJSON(KeyLastCleared, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SetLastClearedToDoList stores items; an empty list removes the key.
func (a *Accessor) SetLastClearedToDoList(items []model.ToDoItem) error {
	if len(items) == 0 {
		return a.kv.Delete(KeyLastCleared)
	}
	return a.SetJSON(KeyLastCleared, items)
}

func (a *Accessor) CustomFilters() ([]model.CustomFilter, error) {
	filters := []model.CustomFilter{}
	if _, err := a.GetJSON(KeyCustomFilters, &filters); err != nil {
		return nil, err
	}
	return filters, nil
}

func (a *Accessor) SetCustomFilters(filters []model.CustomFilter) error {
	return a.SetJSON(KeyCustomFilters, filters)
}

// rawSettings reads every settings key that is present.
func (a *Accessor) rawSettings() (map[string]any, error) {
	raw := map[string]any{}
	for _, key := range model.SettingKeys() {
		var v any
		ok, err := a.GetJSON(key, &v)
		if err != nil {
			return nil, err
		}
		if ok {
			raw[key] = v
		}
	}
	return raw, nil
}

// Settings reads each settings key over the defaults. Values written as
// strings by older versions are converted.
func (a *Accessor) Settings() (model.Settings, error) {
	raw, err := a.rawSettings()
	if err != nil {
		return model.DefaultSettings(), err
	}
	s, err := model.DecodeSettings(raw)
	if err != nil {
		log.Warn("Ignoring stored settings", "error", err)
		return model.DefaultSettings(), nil
	}
	return s, nil
}

// SetSettings writes every setting under its own key in one batch.
func (a *Accessor) SetSettings(s model.Settings) error {
	values, err := encodeMap(s.Map())
	if err != nil {
		return err
	}
	return a.kv.SetMany(values)
}

// SetSetting parses and validates value for key, then stores it.
func (a *Accessor) SetSetting(key, value string) (model.Settings, error) {
	s, err := a.Settings()
	if err != nil {
		return s, err
	}
	if err := s.Set(key, value); err != nil {
		return s, err
	}
	v, err := s.Get(key)
	if err != nil {
		return s, err
	}
	return s, a.SetJSON(key, v)
}

// Setting returns the stored value of one settings key, or its default.
func (a *Accessor) Setting(key string) (any, error) {
	s, err := a.Settings()
	if err != nil {
		return nil, err
	}
	return s.Get(key)
}

// TabColor returns the simple fallback colour remembered for url.
func (a *Accessor) TabColor(url string) (string, bool, error) {
	colors := map[string]string{}
	if _, err := a.GetJSON(KeyTabColors, &colors); err != nil {
		return "", false, err
	}
	c, ok := colors[url]
	return c, ok, nil
}

func (a *Accessor) SetTabColor(url, color string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	colors := map[string]string{}
	if _, err := a.GetJSON(KeyTabColors, &colors); err != nil {
		return err
	}
	colors[url] = color
	return a.SetJSON(KeyTabColors, colors)
}

// FallbackColors returns the four complex fallback colours for url.
func (a *Accessor) FallbackColors(url string) ([]string, bool, error) {
	colors := map[string][]string{}
	if _, err := a.GetJSON(KeyFallbackColors, &colors); err != nil {
		return nil, false, err
	}
	c, ok := colors[url]
	return c, ok, nil
}

func (a *Accessor) SetFallbackColors(url string, c []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	colors := map[string][]string{}
	if _, err := a.GetJSON(KeyFallbackColors, &colors); err != nil {
		return err
	}
	colors[url] = c
	return a.SetJSON(KeyFallbackColors, colors)
}

// Favicon returns the cached data URL for url.
func (a *Accessor) Favicon(url string) (string, bool, error) {
	var icon string
	ok, err := a.GetJSON(FaviconKey(url), &icon)
	return icon, ok, err
}

func (a *Accessor) SetFavicon(url, icon string) error {
	return a.SetJSON(FaviconKey(url), icon)
}

// ComplexFallback reports the current complexFallback setting.
func (a *Accessor) ComplexFallback() bool {
	s, err := a.Settings()
	if err != nil {
		return model.DefaultSettings().ComplexFallback
	}
	return s.ComplexFallback
}

// FirstRun reports whether no folders have ever been stored.
func (a *Accessor) FirstRun() (bool, error) {
	_, ok, err := a.kv.Get(KeyFolders)
	return !ok, err
}

// Load assembles the whole application state. On first run the store is
// seeded with the starter folder.
func (a *Accessor) Load() (*model.Store, error) {
	first, err := a.FirstRun()
	if err != nil {
		return nil, err
	}

	store := model.NewStore()
	if store.Folders, err = a.Folders(); err != nil {
		return nil, err
	}
	if store.CurrentFolder, err = a.CurrentFolder(); err != nil {
		return nil, err
	}
	if store.PinnedFolders, err = a.PinnedFolders(); err != nil {
		return nil, err
	}
	if store.ToDoList, err = a.ToDoList(); err != nil {
		return nil, err
	}
	if store.LastCleared, err = a.LastClearedToDoList(); err != nil {
		return nil, err
	}
	if store.CustomFilters, err = a.CustomFilters(); err != nil {
		return nil, err
	}
	if store.Settings, err = a.Settings(); err != nil {
		return nil, err
	}

	if first && store.Seed() {
		log.Info("Seeded starter bookmarks", "folder", model.SeedFolderName)
	}
	return store, nil
}

// Save writes the whole application state in one batch.
func (a *Accessor) Save(store *model.Store) error {
	values, err := encodeMap(map[string]any{
		KeyFolders:       nonNil(store.Folders),
		KeyCurrentFolder: store.CurrentFolder,
		KeyPinnedFolders: nonNil(store.PinnedFolders),
		KeyToDoList:      nonNil(store.ToDoList),
		KeyCustomFilters: nonNil(store.CustomFilters),
	})
	if err != nil {
		return err
	}

	if len(store.LastCleared) == 0 {
		values[KeyLastCleared] = nil
	} else if values[KeyLastCleared], err = json.Marshal(store.LastCleared); err != nil {
		return err
	}

	settings, err := encodeMap(store.Settings.Map())
	if err != nil {
		return err
	}
	for k, v := range settings {
		values[k] = v
	}

	return a.kv.SetMany(values)
}

func encodeMap(m map[string]any) (map[string][]byte, error) {
	out := make(map[string][]byte, len(m))
	for k, v := range m {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		out[k] = data
	}
	return out, nil
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
