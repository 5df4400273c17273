package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nikbrunner/homescreen/internal/exporter"
	"github.com/nikbrunner/homescreen/internal/importer"
	"github.com/nikbrunner/homescreen/internal/model"
	"github.com/nikbrunner/homescreen/internal/reorder"
	"github.com/nikbrunner/homescreen/internal/search"
)

// maxImportBytes bounds uploaded import files.
const maxImportBytes = 10 << 20

var (
	errBadRequest  = errors.New("malformed request")
	errUnknownList = errors.New("unknown list")
	errUnknownFlag = errors.New("unknown flag")
	errUnknownOp   = errors.New("unknown action")
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("Encoding response failed", "error", err)
	}
}

// writeError maps err to a status code and reports it as {"error": ...}.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrFolderNotFound),
		errors.Is(err, model.ErrBookmarkNotFound),
		errors.Is(err, model.ErrFilterNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrFolderExists):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, errUnknownList),
		errors.Is(err, errUnknownFlag),
		errors.Is(err, errUnknownOp),
		errors.Is(err, model.ErrEmptyName),
		errors.Is(err, model.ErrMissingField),
		errors.Is(err, model.ErrNothingToRestore),
		errors.Is(err, model.ErrUnknownSetting),
		errors.Is(err, model.ErrInvalidSetting),
		errors.Is(err, reorder.ErrIndexOutOfRange),
		errors.Is(err, search.ErrUnknownMode),
		errors.Is(err, exporter.ErrUnsupportedFormat),
		errors.Is(err, importer.ErrInvalidFile),
		errors.Is(err, importer.ErrInvalidStructure):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

type foldersResponse struct {
	Folders       []model.Folder `json:"folders"`
	CurrentFolder string         `json:"currentFolder"`
	PinnedFolders []string       `json:"pinnedFolders"`
}

func newFoldersResponse(store *model.Store) foldersResponse {
	return foldersResponse{
		Folders:       store.Folders,
		CurrentFolder: store.CurrentFolder,
		PinnedFolders: store.PinnedFolders,
	}
}

func (s *Server) apiGetFolders(w http.ResponseWriter, r *http.Request) {
	store, err := s.load()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newFoldersResponse(store))
}

// apiSelectFolder makes {"currentFolder": name} the displayed folder.
func (s *Server) apiSelectFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentFolder string `json:"currentFolder"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	store, err := s.update(func(store *model.Store) error {
		if store.Folder(req.CurrentFolder) == nil {
			return fmt.Errorf("%w: %s", model.ErrFolderNotFound, req.CurrentFolder)
		}
		store.CurrentFolder = req.CurrentFolder
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newFoldersResponse(store))
}

func (s *Server) apiAddFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	store, err := s.update(func(store *model.Store) error {
		return store.AddFolder(req.Name)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newFoldersResponse(store))
}

func (s *Server) apiDeleteFolder(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, err := s.update(func(store *model.Store) error {
		return store.DeleteFolder(name)
	}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiRenameFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	old := chi.URLParam(r, "name")
	store, err := s.update(func(store *model.Store) error {
		return store.RenameFolder(old, req.Name)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newFoldersResponse(store))
}

func (s *Server) apiTogglePin(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var pinned bool
	store, err := s.update(func(store *model.Store) error {
		if store.Folder(name) == nil {
			return fmt.Errorf("%w: %s", model.ErrFolderNotFound, name)
		}
		pinned = store.TogglePin(name)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pinned":        pinned,
		"pinnedFolders": store.PinnedFolders,
	})
}

type resultJSON struct {
	model.Bookmark
	Folder string `json:"folderName"`
	Index  int    `json:"index"`
}

// apiGetBookmarks runs a query given as ?filter=&q=&all=&custom=.
func (s *Server) apiGetBookmarks(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	store, err := s.load()
	if err != nil {
		writeError(w, err)
		return
	}

	results := search.Run(store.Folders, store.CurrentFolder, q)
	out := make([]resultJSON, len(results))
	for i, res := range results {
		out[i] = resultJSON{Bookmark: res.Bookmark, Folder: res.FolderName, Index: res.Index}
	}
	writeJSON(w, http.StatusOK, out)
}

type bookmarkRequest struct {
	Folder string `json:"folderName"`
	Label  string `json:"label"`
	URL    string `json:"url"`
}

func (s *Server) apiAddBookmark(w http.ResponseWriter, r *http.Request) {
	var req bookmarkRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var added model.Bookmark
	if _, err := s.update(func(store *model.Store) error {
		var err error
		added, err = store.AddBookmark(req.Folder, req.Label, model.EnsureHTTPScheme(req.URL))
		return err
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// apiEditBookmark takes {"ref": {...}, "label": ..., "url": ...}.
func (s *Server) apiEditBookmark(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ref   model.Ref `json:"ref"`
		Label string    `json:"label"`
		URL   string    `json:"url"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var edited model.Bookmark
	if _, err := s.update(func(store *model.Store) error {
		url := model.EnsureHTTPScheme(req.URL)
		if err := store.EditBookmark(req.Ref, req.Label, url); err != nil {
			return err
		}
		var err error
		edited, err = store.Bookmark(model.Ref{Folder: req.Ref.Folder, URL: url, Label: strings.TrimSpace(req.Label)})
		return err
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, edited)
}

// apiDeleteBookmark identifies the bookmark by ?folder=&url=&label=.
func (s *Server) apiDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	ref := model.Ref{
		Folder: query.Get("folder"),
		URL:    query.Get("url"),
		Label:  query.Get("label"),
	}
	if _, err := s.update(func(store *model.Store) error {
		return store.DeleteBookmark(ref)
	}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiToggleFlag flips "favorite" or "read" on {"ref": {...}, "flag": ...}.
func (s *Server) apiToggleFlag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ref  model.Ref `json:"ref"`
		Flag string    `json:"flag"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var flags int
	if _, err := s.update(func(store *model.Store) error {
		var err error
		switch req.Flag {
		case "favorite":
			flags, err = store.ToggleFavorite(req.Ref)
		case "read":
			flags, err = store.ToggleRead(req.Ref)
		default:
			err = fmt.Errorf("%w: %q", errUnknownFlag, req.Flag)
		}
		return err
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"flags":    flags,
		"favorite": model.HasBit(flags, model.BitFavorite),
		"read":     model.HasBit(flags, model.BitRead),
	})
}

// apiMoveBookmarks moves {"refs": [...]} into {"target": name}.
func (s *Server) apiMoveBookmarks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Refs   []model.Ref `json:"refs"`
		Target string      `json:"target"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var moved int
	if _, err := s.update(func(store *model.Store) error {
		var err error
		moved, err = store.MoveBookmarks(req.Refs, req.Target)
		return err
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"moved":   moved,
		"skipped": len(req.Refs) - moved,
	})
}

type reorderRequest struct {
	// List is one of bookmarks, folders, pinned or todos.
	List    string `json:"list"`
	Folder  string `json:"folderName"`
	Dragged int    `json:"dragged"`
	Target  int    `json:"target"`
	Below   bool   `json:"below"`
}

// apiReorder applies a drop of the dragged item onto the target item.
func (s *Server) apiReorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	store, err := s.update(func(store *model.Store) error {
		switch req.List {
		case "bookmarks":
			folder := req.Folder
			if folder == "" {
				folder = store.CurrentFolder
			}
			return store.DropBookmark(folder, req.Dragged, req.Target, req.Below)
		case "folders":
			return store.DropFolder(req.Dragged, req.Target, req.Below)
		case "pinned":
			return store.DropPinnedFolder(req.Dragged, req.Target, req.Below)
		case "todos":
			return store.DropToDo(req.Dragged, req.Target, req.Below)
		}
		return fmt.Errorf("%w: %q", errUnknownList, req.List)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newFoldersResponse(store))
}

type toDoResponse struct {
	Items      []model.ToDoItem `json:"items"`
	CanRestore bool             `json:"canRestore"`
}

func newToDoResponse(store *model.Store) toDoResponse {
	items := store.ToDoList
	if items == nil {
		items = []model.ToDoItem{}
	}
	return toDoResponse{Items: items, CanRestore: len(store.LastCleared) > 0}
}

func (s *Server) apiGetToDos(w http.ResponseWriter, r *http.Request) {
	store, err := s.load()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newToDoResponse(store))
}

// apiToDoAction takes {"action": add|toggle|delete|clear|restore} with
// "text" for add and "index" for toggle and delete.
func (s *Server) apiToDoAction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
		Text   string `json:"text"`
		Index  int    `json:"index"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	store, err := s.update(func(store *model.Store) error {
		switch req.Action {
		case "add":
			if !store.AddToDo(req.Text) {
				return fmt.Errorf("%w: empty to-do", errBadRequest)
			}
			return nil
		case "toggle":
			return store.ToggleToDo(req.Index)
		case "delete":
			return store.DeleteToDo(req.Index)
		case "clear":
			store.ClearToDoList()
			return nil
		case "restore":
			return store.RestoreToDoList()
		}
		return fmt.Errorf("%w: %q", errUnknownOp, req.Action)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newToDoResponse(store))
}

func (s *Server) apiGetSettings(w http.ResponseWriter, r *http.Request) {
	store, err := s.load()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, store.Settings)
}

// apiSetSettings applies a partial settings object. Either every key is
// applied or none.
func (s *Server) apiSetSettings(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := decode(r, &raw); err != nil {
		writeError(w, err)
		return
	}

	store, err := s.update(func(store *model.Store) error {
		for key := range raw {
			if !model.IsSettingKey(key) {
				return fmt.Errorf("%w: %s", model.ErrUnknownSetting, key)
			}
		}
		next := store.Settings
		if err := next.Apply(raw); err != nil {
			return err
		}
		if err := next.Validate(); err != nil {
			return err
		}
		store.Settings = next
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, store.Settings)
}

// apiExport downloads every folder as json, csv or html.
func (s *Server) apiExport(w http.ResponseWriter, r *http.Request) {
	format, err := exporter.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, err)
		return
	}
	store, err := s.load()
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := exporter.Write(&buf, format, store.Folders); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exporter.Filename(format, s.now())))
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Warn("Writing export failed", "error", err)
	}
}

// apiImport merges the request body, a JSON export or a Netscape HTML
// file chosen by ?format=. HTML links outside any folder land in ?folder=.
func (s *Server) apiImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	var folders []model.Folder
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		folders, err = importer.ParseJSON(data)
	case "html":
		root := strings.TrimSpace(r.URL.Query().Get("folder"))
		if root == "" {
			root = model.ImportedFolderName
		}
		folders, err = importer.ParseHTMLFolders(bytes.NewReader(data), root)
		if err == nil && len(folders) == 0 {
			err = importer.ErrInvalidStructure
		}
	default:
		err = fmt.Errorf("%w: %q", exporter.ErrUnsupportedFormat, format)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	var added, duplicates int
	if _, err := s.update(func(store *model.Store) error {
		added, duplicates = store.MergeFolders(folders)
		return nil
	}); err != nil {
		writeError(w, err)
		return
	}
	log.Info("Imported bookmarks", "added", added, "duplicates", duplicates)
	writeJSON(w, http.StatusOK, map[string]int{
		"added":      added,
		"duplicates": duplicates,
	})
}
