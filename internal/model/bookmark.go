package model

import "strings"

// Flag bits packed into Bookmark.Flags.
const (
	BitFavorite = 0
	BitRead     = 1
	// BitPinned is reserved. Nothing reads or writes it.
	BitPinned = 2
)

// NoLabel replaces an empty label when bookmarks are listed.
const NoLabel = "No Label"

// Bookmark is a saved URL inside a folder. A bookmark has no stable id;
// it is identified by its (URL, Label) pair.
type Bookmark struct {
	Label      string `json:"label"`
	URL        string `json:"url"`
	Flags      int    `json:"flags"`
	Favicon    string `json:"favicon,omitempty"`
	FilterMask int    `json:"filterMask"`
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	Label   string
	URL     string
	Favicon string
}

// NewBookmark creates a Bookmark with cleared flags and filter mask.
func NewBookmark(params NewBookmarkParams) Bookmark {
	return Bookmark{
		Label:   strings.TrimSpace(params.Label),
		URL:     strings.TrimSpace(params.URL),
		Favicon: params.Favicon,
	}
}

// Same reports whether b and o share identity.
func (b Bookmark) Same(o Bookmark) bool {
	return b.URL == o.URL && b.Label == o.Label
}

// IsFavorite reports whether the favorite bit is set.
func (b Bookmark) IsFavorite() bool {
	return HasBit(b.Flags, BitFavorite)
}

// IsRead reports whether the read bit is set.
func (b Bookmark) IsRead() bool {
	return HasBit(b.Flags, BitRead)
}

// InFilter reports whether the bookmark is assigned to custom filter id.
func (b Bookmark) InFilter(id int) bool {
	return HasBit(b.FilterMask, id)
}

// Ref locates a bookmark. An empty Folder means the current folder.
type Ref struct {
	Folder string `json:"folderName,omitempty"`
	URL    string `json:"url"`
	Label  string `json:"label"`
}

// RefTo builds a Ref for b inside folder.
func RefTo(folder string, b Bookmark) Ref {
	return Ref{Folder: folder, URL: b.URL, Label: b.Label}
}

// SetBit returns mask with bit set.
func SetBit(mask, bit int) int {
	return mask | 1<<bit
}

// ClearBit returns mask with bit cleared.
func ClearBit(mask, bit int) int {
	return mask &^ (1 << bit)
}

// HasBit reports whether bit is set in mask.
func HasBit(mask, bit int) bool {
	return mask&(1<<bit) != 0
}

// ToggleBit flips bit in mask.
func ToggleBit(mask, bit int) int {
	return mask ^ 1<<bit
}
