package model

// Folder is a named, ordered collection of bookmarks. Names are unique
// across the folder list.
type Folder struct {
	Name      string     `json:"name"`
	Bookmarks []Bookmark `json:"bookmarks"`
	// Children is persisted for compatibility but never populated.
	Children []Folder `json:"children"`
}

// NewFolder creates an empty folder.
func NewFolder(name string) Folder {
	return Folder{
		Name:      name,
		Bookmarks: []Bookmark{},
		Children:  []Folder{},
	}
}

// indexOf returns the position of b in the folder, or -1.
func (f *Folder) indexOf(url, label string) int {
	for i, b := range f.Bookmarks {
		if b.URL == url && b.Label == label {
			return i
		}
	}
	return -1
}

// Has reports whether the folder already holds a bookmark with b's identity.
func (f *Folder) Has(b Bookmark) bool {
	return f.indexOf(b.URL, b.Label) >= 0
}

// CountBookmarks totals bookmarks across folders.
func CountBookmarks(folders []Folder) int {
	n := 0
	for _, f := range folders {
		n += len(f.Bookmarks)
	}
	return n
}
