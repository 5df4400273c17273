// Package search narrows bookmarks by flag filter, custom filter and
// substring search.
package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nikbrunner/homescreen/internal/model"
)

// ErrUnknownMode is returned by ParseMode.
var ErrUnknownMode = errors.New("unknown filter")

// Mode is one of the mutually exclusive flag filters.
type Mode int

const (
	ModeNone Mode = iota
	ModeStarred
	ModeNotStarred
	ModeUnread
	ModeRead
)

var modeNames = map[Mode]string{
	ModeNone:       "",
	ModeStarred:    "starred",
	ModeNotStarred: "notstarred",
	ModeUnread:     "eye",
	ModeRead:       "book",
}

func (m Mode) String() string {
	return modeNames[m]
}

// Label is the human-readable name of the filter.
func (m Mode) Label() string {
	switch m {
	case ModeStarred:
		return "favorites"
	case ModeNotStarred:
		return "not favorites"
	case ModeUnread:
		return "unread"
	case ModeRead:
		return "read"
	}
	return "all"
}

// Toggle returns ModeNone when m is already active, else m. Picking the
// active filter again clears it.
func (m Mode) Toggle(active Mode) Mode {
	if m == active {
		return ModeNone
	}
	return m
}

// ParseMode accepts the filter control names plus "unread" and "read".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "all":
		return ModeNone, nil
	case "starred", "favorite", "favorites":
		return ModeStarred, nil
	case "notstarred":
		return ModeNotStarred, nil
	case "eye", "unread":
		return ModeUnread, nil
	case "book", "read":
		return ModeRead, nil
	}
	return ModeNone, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Match reports whether flags pass the filter.
func (m Mode) Match(flags int) bool {
	switch m {
	case ModeStarred:
		return model.HasBit(flags, model.BitFavorite)
	case ModeNotStarred:
		return !model.HasBit(flags, model.BitFavorite)
	case ModeUnread:
		return !model.HasBit(flags, model.BitRead)
	case ModeRead:
		return model.HasBit(flags, model.BitRead)
	}
	return true
}

// Query describes what to show.
type Query struct {
	Mode Mode
	Text string
	// AllFolders widens the scope beyond the current folder. A non-empty
	// Text always searches all folders.
	AllFolders bool
	// CustomFilter restricts to bookmarks carrying that filter bit.
	CustomFilter *int
}

// Active reports whether q narrows anything.
func (q Query) Active() bool {
	return q.Mode != ModeNone || q.Text != "" || q.AllFolders || q.CustomFilter != nil
}

// Result is one matching bookmark and where it lives.
type Result struct {
	Bookmark   model.Bookmark
	FolderName string
	// Index is the bookmark's position inside its folder.
	Index int
}

// Ref identifies the result's bookmark for store mutations.
func (r Result) Ref() model.Ref {
	return model.RefTo(r.FolderName, r.Bookmark)
}

// Run applies q to folders. Results keep storage order.
func Run(folders []model.Folder, currentFolder string, q Query) []Result {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	all := q.AllFolders || text != ""

	results := []Result{}
	for _, f := range folders {
		if !all && f.Name != currentFolder {
			continue
		}
		for i, b := range f.Bookmarks {
			if !q.Mode.Match(b.Flags) {
				continue
			}
			if q.CustomFilter != nil && !b.InFilter(*q.CustomFilter) {
				continue
			}
			if text != "" && !contains(b, text) {
				continue
			}
			results = append(results, Result{Bookmark: b, FolderName: f.Name, Index: i})
		}
	}
	return results
}

func contains(b model.Bookmark, lowered string) bool {
	return strings.Contains(strings.ToLower(b.Label), lowered) ||
		strings.Contains(strings.ToLower(b.URL), lowered)
}
