package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nikbrunner/homescreen/internal/reorder"
)

// DefaultFolderName is the current folder when nothing is stored.
const DefaultFolderName = "Default"

// ImportedFolderName receives bookmarks from legacy flat JSON imports.
const ImportedFolderName = "Imported"

var (
	ErrEmptyName        = errors.New("folder name cannot be empty")
	ErrFolderExists     = errors.New("a folder with this name already exists")
	ErrFolderNotFound   = errors.New("folder not found")
	ErrBookmarkNotFound = errors.New("bookmark not found")
	ErrMissingField     = errors.New("label and URL are required")
	ErrNothingToRestore = errors.New("No recently cleared to-do list found")
	ErrFilterNotFound   = errors.New("custom filter not found")
	ErrFilterLimit      = errors.New("no free custom filter slot")
)

// MaxCustomFilters bounds filter ids so they fit the filterMask bits.
const MaxCustomFilters = 31

// CustomFilter is a user-named tag backed by one bit of Bookmark.FilterMask.
type CustomFilter struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Store is the full application state. Front ends load it, mutate it
// through the methods below, and save it back.
type Store struct {
	Folders       []Folder       `json:"folders"`
	CurrentFolder string         `json:"currentFolder"`
	PinnedFolders []string       `json:"pinnedFolders"`
	ToDoList      []ToDoItem     `json:"toDoList"`
	LastCleared   []ToDoItem     `json:"lastClearedToDoList,omitempty"`
	CustomFilters []CustomFilter `json:"customFilters"`
	Settings      Settings       `json:"settings"`
}

// NewStore creates an empty Store with initialized slices.
func NewStore() *Store {
	return &Store{
		Folders:       []Folder{},
		CurrentFolder: DefaultFolderName,
		PinnedFolders: []string{},
		ToDoList:      []ToDoItem{},
		CustomFilters: []CustomFilter{},
		Settings:      DefaultSettings(),
	}
}

// Folder finds a folder by name, returns nil if not found.
func (s *Store) Folder(name string) *Folder {
	for i := range s.Folders {
		if s.Folders[i].Name == name {
			return &s.Folders[i]
		}
	}
	return nil
}

// FolderNames returns folder names in storage order.
func (s *Store) FolderNames() []string {
	names := make([]string, len(s.Folders))
	for i, f := range s.Folders {
		names[i] = f.Name
	}
	return names
}

func (s *Store) folderIndex(name string) int {
	for i := range s.Folders {
		if s.Folders[i].Name == name {
			return i
		}
	}
	return -1
}

// ensureFolder returns the named folder, appending it when missing.
func (s *Store) ensureFolder(name string) *Folder {
	if f := s.Folder(name); f != nil {
		return f
	}
	s.Folders = append(s.Folders, NewFolder(name))
	return &s.Folders[len(s.Folders)-1]
}

// AddFolder appends an empty folder.
func (s *Store) AddFolder(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if s.Folder(name) != nil {
		return fmt.Errorf("%w: %s", ErrFolderExists, name)
	}
	s.Folders = append(s.Folders, NewFolder(name))
	return nil
}

// DeleteFolder removes a folder and its pin. When it was current, the
// current folder falls back to DefaultFolderName.
func (s *Store) DeleteFolder(name string) error {
	i := s.folderIndex(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrFolderNotFound, name)
	}
	s.Folders = append(s.Folders[:i], s.Folders[i+1:]...)
	s.unpin(name)
	if s.CurrentFolder == name {
		s.CurrentFolder = DefaultFolderName
	}
	return nil
}

// RenameFolder renames a folder, carrying the current pointer and its pin.
func (s *Store) RenameFolder(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrEmptyName
	}
	f := s.Folder(oldName)
	if f == nil {
		return fmt.Errorf("%w: %s", ErrFolderNotFound, oldName)
	}
	if newName == oldName {
		return nil
	}
	if s.Folder(newName) != nil {
		return fmt.Errorf("%w: %s", ErrFolderExists, newName)
	}

	f.Name = newName
	if s.CurrentFolder == oldName {
		s.CurrentFolder = newName
	}
	for i, p := range s.PinnedFolders {
		if p == oldName {
			s.PinnedFolders[i] = newName
		}
	}
	return nil
}

// MoveFolder reorders the folder list.
func (s *Store) MoveFolder(from, to int) error {
	return reorderIn(&s.Folders, func(l *reorder.List[Folder]) error {
		return l.Move(from, to)
	})
}

// DropFolder applies a pointer drop in the folder list.
func (s *Store) DropFolder(dragged, target int, below bool) error {
	return reorderIn(&s.Folders, func(l *reorder.List[Folder]) error {
		return l.Drop(dragged, target, below)
	})
}

// IsPinned reports whether name is in the pinned strip.
func (s *Store) IsPinned(name string) bool {
	for _, p := range s.PinnedFolders {
		if p == name {
			return true
		}
	}
	return false
}

// TogglePin pins or unpins a folder and reports the new state. Only the
// pinned list changes; the folder list is untouched.
func (s *Store) TogglePin(name string) bool {
	if s.IsPinned(name) {
		s.unpin(name)
		return false
	}
	s.PinnedFolders = append(s.PinnedFolders, name)
	return true
}

func (s *Store) unpin(name string) {
	kept := s.PinnedFolders[:0]
	for _, p := range s.PinnedFolders {
		if p != name {
			kept = append(kept, p)
		}
	}
	s.PinnedFolders = kept
}

// PinAll pins every folder in folder order.
func (s *Store) PinAll() {
	s.PinnedFolders = s.FolderNames()
}

// UnpinAll clears the pinned strip.
func (s *Store) UnpinAll() {
	s.PinnedFolders = []string{}
}

// MovePinnedFolder reorders the pinned strip.
func (s *Store) MovePinnedFolder(from, to int) error {
	return reorderIn(&s.PinnedFolders, func(l *reorder.List[string]) error {
		return l.Move(from, to)
	})
}

// DropPinnedFolder applies a pointer drop in the pinned strip.
func (s *Store) DropPinnedFolder(dragged, target int, below bool) error {
	return reorderIn(&s.PinnedFolders, func(l *reorder.List[string]) error {
		return l.Drop(dragged, target, below)
	})
}

// CurrentBookmarks returns a copy of the current folder's bookmarks ready
// for display: empty labels become NoLabel and entries without a URL are
// dropped. A missing DefaultFolderName is created when it is current.
func (s *Store) CurrentBookmarks() []Bookmark {
	f := s.Folder(s.CurrentFolder)
	if f == nil {
		if s.CurrentFolder != DefaultFolderName {
			return []Bookmark{}
		}
		f = s.ensureFolder(DefaultFolderName)
	}

	out := make([]Bookmark, 0, len(f.Bookmarks))
	for _, b := range f.Bookmarks {
		if b.URL == "" {
			continue
		}
		if b.Label == "" {
			b.Label = NoLabel
		}
		out = append(out, b)
	}
	return out
}

// AddBookmark appends a bookmark to folder (the current folder when empty),
// creating the folder when missing. Duplicates are allowed here.
func (s *Store) AddBookmark(folder, label, url string) (Bookmark, error) {
	b := NewBookmark(NewBookmarkParams{Label: label, URL: url})
	if b.Label == "" || b.URL == "" {
		return Bookmark{}, ErrMissingField
	}
	if folder == "" {
		folder = s.CurrentFolder
	}
	f := s.ensureFolder(folder)
	f.Bookmarks = append(f.Bookmarks, b)
	return b, nil
}

// locate resolves a Ref to its folder and index.
func (s *Store) locate(ref Ref) (*Folder, int, error) {
	name := ref.Folder
	if name == "" {
		name = s.CurrentFolder
	}
	f := s.Folder(name)
	if f == nil {
		return nil, -1, fmt.Errorf("%w: %s", ErrFolderNotFound, name)
	}
	i := f.indexOf(ref.URL, ref.Label)
	if i < 0 {
		return nil, -1, fmt.Errorf("%w: %s (%s)", ErrBookmarkNotFound, ref.Label, ref.URL)
	}
	return f, i, nil
}

// Bookmark returns a copy of the referenced bookmark.
func (s *Store) Bookmark(ref Ref) (Bookmark, error) {
	f, i, err := s.locate(ref)
	if err != nil {
		return Bookmark{}, err
	}
	return f.Bookmarks[i], nil
}

// DeleteBookmark removes the referenced bookmark.
func (s *Store) DeleteBookmark(ref Ref) error {
	f, i, err := s.locate(ref)
	if err != nil {
		return err
	}
	f.Bookmarks = append(f.Bookmarks[:i], f.Bookmarks[i+1:]...)
	return nil
}

// EditBookmark replaces label and url, keeping flags and favicon.
func (s *Store) EditBookmark(ref Ref, label, url string) error {
	label = strings.TrimSpace(label)
	url = strings.TrimSpace(url)
	if label == "" || url == "" {
		return ErrMissingField
	}
	f, i, err := s.locate(ref)
	if err != nil {
		return err
	}
	if f.Bookmarks[i].URL != url {
		f.Bookmarks[i].Favicon = ""
	}
	f.Bookmarks[i].Label = label
	f.Bookmarks[i].URL = url
	return nil
}

// SetFavicon stores a resolved icon on the bookmark.
func (s *Store) SetFavicon(ref Ref, icon string) error {
	f, i, err := s.locate(ref)
	if err != nil {
		return err
	}
	f.Bookmarks[i].Favicon = icon
	return nil
}

// toggleFlag flips one flag bit and returns the new flags.
func (s *Store) toggleFlag(ref Ref, bit int) (int, error) {
	f, i, err := s.locate(ref)
	if err != nil {
		return 0, err
	}
	f.Bookmarks[i].Flags = ToggleBit(f.Bookmarks[i].Flags, bit)
	return f.Bookmarks[i].Flags, nil
}

// ToggleFavorite flips the favorite bit.
func (s *Store) ToggleFavorite(ref Ref) (int, error) {
	return s.toggleFlag(ref, BitFavorite)
}

// ToggleRead flips the read bit.
func (s *Store) ToggleRead(ref Ref) (int, error) {
	return s.toggleFlag(ref, BitRead)
}

// MoveBookmark reorders a bookmark within its folder.
func (s *Store) MoveBookmark(folder string, from, to int) error {
	f := s.Folder(folder)
	if f == nil {
		return fmt.Errorf("%w: %s", ErrFolderNotFound, folder)
	}
	return reorderIn(&f.Bookmarks, func(l *reorder.List[Bookmark]) error {
		return l.Move(from, to)
	})
}

// DropBookmark applies a pointer drop of dragged onto target.
func (s *Store) DropBookmark(folder string, dragged, target int, below bool) error {
	f := s.Folder(folder)
	if f == nil {
		return fmt.Errorf("%w: %s", ErrFolderNotFound, folder)
	}
	return reorderIn(&f.Bookmarks, func(l *reorder.List[Bookmark]) error {
		return l.Drop(dragged, target, below)
	})
}

// reorderIn runs fn over a List view of items and keeps the result. items
// is left untouched when fn fails.
func reorderIn[T any](items *[]T, fn func(*reorder.List[T]) error) error {
	l := reorder.List[T]{Items: *items}
	if err := fn(&l); err != nil {
		return err
	}
	*items = l.Items
	return nil
}

// MoveBookmarks moves bookmarks into target, creating it when missing.
// Bookmarks already present in target are left where they are. It returns
// how many moved.
func (s *Store) MoveBookmarks(refs []Ref, target string) (int, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return 0, ErrEmptyName
	}
	s.ensureFolder(target)

	moved := 0
	for _, ref := range refs {
		src, i, err := s.locate(ref)
		if err != nil {
			return moved, err
		}
		if src.Name == target {
			continue
		}
		b := src.Bookmarks[i]
		dst := s.Folder(target)
		if dst.Has(b) {
			continue
		}
		src.Bookmarks = append(src.Bookmarks[:i], src.Bookmarks[i+1:]...)
		dst.Bookmarks = append(dst.Bookmarks, b)
		moved++
	}
	return moved, nil
}

// MergeFolders merges incoming folders by name. Bookmarks already present
// (same label and url) are skipped.
func (s *Store) MergeFolders(incoming []Folder) (added, duplicates int) {
	for _, in := range incoming {
		f := s.ensureFolder(in.Name)
		for _, b := range in.Bookmarks {
			if f.Has(b) {
				duplicates++
				continue
			}
			f.Bookmarks = append(f.Bookmarks, b)
			added++
		}
	}
	return added, duplicates
}

// ImportBookmarks merges bookmarks into one folder with the same dedup rule.
func (s *Store) ImportBookmarks(folder string, bookmarks []Bookmark) (added, duplicates int) {
	return s.MergeFolders([]Folder{{Name: folder, Bookmarks: bookmarks}})
}

// ClearAllBookmarks drops every folder and pin.
func (s *Store) ClearAllBookmarks() {
	s.Folders = []Folder{}
	s.PinnedFolders = []string{}
	s.CurrentFolder = DefaultFolderName
}

// AddCustomFilter registers a named filter on the lowest free bit.
func (s *Store) AddCustomFilter(name string) (CustomFilter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return CustomFilter{}, ErrEmptyName
	}
	used := map[int]bool{}
	for _, cf := range s.CustomFilters {
		used[cf.ID] = true
	}
	for id := 0; id < MaxCustomFilters; id++ {
		if !used[id] {
			cf := CustomFilter{ID: id, Name: name}
			s.CustomFilters = append(s.CustomFilters, cf)
			return cf, nil
		}
	}
	return CustomFilter{}, ErrFilterLimit
}

// DeleteCustomFilter removes a filter and clears its bit everywhere.
func (s *Store) DeleteCustomFilter(id int) error {
	i := -1
	for j, cf := range s.CustomFilters {
		if cf.ID == id {
			i = j
		}
	}
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrFilterNotFound, id)
	}
	s.CustomFilters = append(s.CustomFilters[:i], s.CustomFilters[i+1:]...)
	for fi := range s.Folders {
		for bi := range s.Folders[fi].Bookmarks {
			b := &s.Folders[fi].Bookmarks[bi]
			b.FilterMask = ClearBit(b.FilterMask, id)
		}
	}
	return nil
}

// AssignCustomFilter sets or clears filter id on a bookmark.
func (s *Store) AssignCustomFilter(ref Ref, id int, on bool) error {
	if id < 0 || id >= MaxCustomFilters {
		return fmt.Errorf("%w: %d", ErrFilterNotFound, id)
	}
	f, i, err := s.locate(ref)
	if err != nil {
		return err
	}
	if on {
		f.Bookmarks[i].FilterMask = SetBit(f.Bookmarks[i].FilterMask, id)
	} else {
		f.Bookmarks[i].FilterMask = ClearBit(f.Bookmarks[i].FilterMask, id)
	}
	return nil
}
