// Package importer parses bookmark files into folders ready to merge.
package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nikbrunner/homescreen/internal/model"
)

// User-facing import errors.
var (
	ErrInvalidFile      = errors.New("Invalid bookmarks file.")
	ErrInvalidStructure = errors.New("Invalid bookmarks file structure.")
)

// ParseJSON reads an exported bookmarks file. Two shapes are accepted: a
// list of folders, or the older flat list of bookmarks which is wrapped in
// a folder named "Imported". The shape is decided by the first element.
func ParseJSON(data []byte) ([]model.Folder, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil || items == nil {
		return nil, ErrInvalidFile
	}
	if len(items) == 0 {
		return nil, ErrInvalidStructure
	}

	var first map[string]json.RawMessage
	if err := json.Unmarshal(items[0], &first); err != nil {
		return nil, ErrInvalidStructure
	}

	switch {
	case truthy(first["label"]) && truthy(first["url"]):
		var bookmarks []model.Bookmark
		if err := json.Unmarshal(data, &bookmarks); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidStructure, err)
		}
		f := model.NewFolder(model.ImportedFolderName)
		f.Bookmarks = append(f.Bookmarks, bookmarks...)
		return []model.Folder{f}, nil

	case truthy(first["name"]) && truthy(first["bookmarks"]):
		var folders []model.Folder
		if err := json.Unmarshal(data, &folders); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidStructure, err)
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

	return nil, ErrInvalidStructure
}

// truthy mirrors loose truthiness: missing, null, false, 0 and "" are not.
func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}

// Summary is the message shown after an import into one folder. The count
// covers every bookmark read from the file, duplicates included.
func Summary(added, duplicates int, folder string) string {
	dupes := ", no duplicates found"
	if duplicates > 0 {
		dupes = fmt.Sprintf(", %d duplicates ignored", duplicates)
	}
	return fmt.Sprintf("Imported %d bookmarks to %q%s", added+duplicates, folder, dupes)
}
