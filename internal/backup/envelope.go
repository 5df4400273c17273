package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nikbrunner/homescreen/internal/model"
)

const (
	EnvelopeVersion = "1.0"
	CreatedBy       = "HomeScreen Dashboard Extension"
)

// ErrInvalidBackup is returned when a downloaded file is not a backup.
var ErrInvalidBackup = errors.New("Invalid backup data format")

// EnvelopeSettingKeys is the settings subset carried in a backup.
var EnvelopeSettingKeys = []string{
	"buttonColor",
	"textSize",
	"backgroundChoice",
	"bookmarkSize",
	"bookmarksPerRow",
	"showIndicators",
	"openInNewTab",
	"hideTextMuted",
	"hideToDoList",
}

// envelopeKeyAlias maps envelope keys onto settings keys where they differ.
var envelopeKeyAlias = map[string]string{
	"backgroundChoice": "selectedBackground",
}

// Envelope is the JSON document stored on Drive.
type Envelope struct {
	Version       string         `json:"version"`
	Timestamp     string         `json:"timestamp"`
	Folders       []model.Folder `json:"folders"`
	CurrentFolder string         `json:"currentFolder"`
	// Settings values are strings, or null when unset.
	Settings map[string]any `json:"settings"`
	Metadata Metadata       `json:"metadata"`
}

// Metadata summarises the backup.
type Metadata struct {
	TotalBookmarks int    `json:"totalBookmarks"`
	TotalFolders   int    `json:"totalFolders"`
	CreatedBy      string `json:"createdBy"`
}

// ISOTime formats t like JavaScript's toISOString.
func ISOTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// FileName is the Drive file name for a backup taken at t.
func FileName(t time.Time) string {
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(ISOTime(t))
	return FilePrefix + "-" + stamp + ".json"
}

// NewEnvelope captures store at now.
func NewEnvelope(store *model.Store, now time.Time) Envelope {
	folders := store.Folders
	if folders == nil {
		folders = []model.Folder{}
	}

	values := store.Settings.Map()
	settings := make(map[string]any, len(EnvelopeSettingKeys))
	for _, key := range EnvelopeSettingKeys {
		source := key
		if alias, ok := envelopeKeyAlias[key]; ok {
			source = alias
		}
		if v, ok := values[source]; ok {
			settings[key] = fmt.Sprint(v)
		} else {
			settings[key] = nil
		}
	}

	return Envelope{
		Version:       EnvelopeVersion,
		Timestamp:     ISOTime(now),
		Folders:       folders,
		CurrentFolder: store.CurrentFolder,
		Settings:      settings,
		Metadata: Metadata{
			TotalBookmarks: model.CountBookmarks(folders),
			TotalFolders:   len(folders),
			CreatedBy:      CreatedBy,
		},
	}
}

// Marshal encodes the envelope the way it is uploaded.
func (e Envelope) Marshal() ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}

// ParseEnvelope decodes data and checks that version and timestamp are
// non-empty strings and folders is an array.
func ParseEnvelope(data []byte) (Envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	for _, required := range []string{"version", "timestamp"} {
		var v string
		raw, ok := fields[required]
		if !ok || json.Unmarshal(raw, &v) != nil || strings.TrimSpace(v) == "" {
			return Envelope{}, fmt.Errorf("%w: missing %s", ErrInvalidBackup, required)
		}
	}
	if raw := bytes.TrimSpace(fields["folders"]); len(raw) == 0 || raw[0] != '[' {
		return Envelope{}, fmt.Errorf("%w: folders is not a list", ErrInvalidBackup)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	return env, nil
}

// Apply replaces the store's folders with the backup's, selects the saved
// current folder when it exists, and applies every non-null setting.
// Settings that fail validation are skipped and returned by key.
func (e Envelope) Apply(store *model.Store) []string {
	folders := e.Folders
	if folders == nil {
		folders = []model.Folder{}
	}
	for i := range folders {
		if folders[i].Bookmarks == nil {
			folders[i].Bookmarks = []model.Bookmark{}
		}
		if folders[i].Children == nil {
			folders[i].Children = []model.Folder{}
		}
	}
	store.Folders = folders

	if e.CurrentFolder != "" && store.Folder(e.CurrentFolder) != nil {
		store.CurrentFolder = e.CurrentFolder
	}

	var skipped []string
	for _, key := range EnvelopeSettingKeys {
		v, ok := e.Settings[key]
		if !ok || v == nil {
			continue
		}
		target := key
		if alias, ok := envelopeKeyAlias[key]; ok {
			target = alias
		}
		if err := store.Settings.Set(target, fmt.Sprint(v)); err != nil {
			log.Warn("Skipping restored setting", "key", key, "value", v, "error", err)
			skipped = append(skipped, key)
		}
	}
	return skipped
}
