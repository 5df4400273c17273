package server

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/nikbrunner/homescreen/internal/model"
	"github.com/nikbrunner/homescreen/internal/search"
)

var templateFuncs = template.FuncMap{
	"domain": model.Domain,
	"inc":    func(i int) int { return i + 1 },
}

// filterOrder is the order of the filter controls on the page.
var filterOrder = []search.Mode{
	search.ModeStarred,
	search.ModeNotStarred,
	search.ModeUnread,
	search.ModeRead,
}

type folderView struct {
	Name    string
	Count   int
	Current bool
	Pinned  bool
}

type filterView struct {
	Name   string
	Label  string
	Active bool
}

type bookmarkView struct {
	Label      string
	URL        string
	Folder     string
	Index      int
	Favorite   bool
	Read       bool
	ShowFolder bool
}

type toDoView struct {
	Index   int
	Text    string
	Checked bool
}

type pageData struct {
	Current    string
	Folders    []folderView
	Pinned     []string
	Filters    []filterView
	Custom     []model.CustomFilter
	Query      search.Query
	Scope      string
	Bookmarks  []bookmarkView
	ToDos      []toDoView
	CanRestore bool
	Settings   model.Settings
	Vars       cssVars
	Background template.URL
}

// cssVars are the settings-derived custom properties set on <body>.
type cssVars struct {
	ButtonColor      string
	ButtonHover      string
	TextSize         string
	BookmarkTextSize string
	Background       string
	ContentMargin    string
	SidebarWidth     string
	Columns          string
}

func newCSSVars(s model.Settings) cssVars {
	button, err := model.AdjustColor(s.ButtonColor, 0)
	if err != nil {
		button, _ = model.AdjustColor(model.DefaultSettings().ButtonColor, 0)
	}
	hover, err := model.AdjustColor(button, -20)
	if err != nil {
		hover = button
	}

	vars := cssVars{
		ButtonColor:      button,
		ButtonHover:      hover,
		TextSize:         fmt.Sprintf("%dpx", s.TextSizePx()),
		BookmarkTextSize: strconv.FormatFloat(s.BookmarkTextRem(), 'f', -1, 64) + "rem",
		Background:       s.BackgroundColor(),
		ContentMargin:    fmt.Sprintf("%dpx", s.ContentMargin),
		Columns:          "auto-fill",
	}
	if vars.Background == "" {
		vars.Background = "transparent"
	}
	if s.SidebarWidth > 0 {
		vars.SidebarWidth = fmt.Sprintf("%dpx", s.SidebarWidth)
	}
	if n, err := s.Columns(); err == nil && n > 0 {
		vars.Columns = strconv.Itoa(n)
	}
	return vars
}

// parseQuery reads ?filter=&q=&all=&custom= into a search query.
func parseQuery(r *http.Request) (search.Query, error) {
	values := r.URL.Query()
	mode, err := search.ParseMode(values.Get("filter"))
	if err != nil {
		return search.Query{}, err
	}

	q := search.Query{
		Mode:       mode,
		Text:       strings.TrimSpace(values.Get("q")),
		AllFolders: values.Get("all") != "",
	}
	if raw := values.Get("custom"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 0 || id >= model.MaxCustomFilters {
			return search.Query{}, fmt.Errorf("%w: custom filter %q", errBadRequest, raw)
		}
		q.CustomFilter = &id
	}
	return q, nil
}

func newPageData(store *model.Store, q search.Query) pageData {
	data := pageData{
		Current:    store.CurrentFolder,
		Pinned:     store.PinnedFolders,
		Query:      q,
		Scope:      store.CurrentFolder,
		CanRestore: len(store.LastCleared) > 0,
		Settings:   store.Settings,
		Vars:       newCSSVars(store.Settings),
	}
	if q.AllFolders || q.Text != "" {
		data.Scope = "all folders"
	}
	if bg := store.Settings.CustomBackground; store.Settings.SelectedBackground == "custom" && strings.HasPrefix(bg, "data:image/") {
		data.Background = template.URL(bg)
	}
	if store.Settings.EnableCustomFilters {
		data.Custom = store.CustomFilters
	}

	for _, f := range store.Folders {
		data.Folders = append(data.Folders, folderView{
			Name:    f.Name,
			Count:   len(f.Bookmarks),
			Current: f.Name == store.CurrentFolder,
			Pinned:  store.IsPinned(f.Name),
		})
	}
	for _, m := range filterOrder {
		data.Filters = append(data.Filters, filterView{
			Name:   m.String(),
			Label:  m.Label(),
			Active: m == q.Mode,
		})
	}

	for _, res := range search.Run(store.Folders, store.CurrentFolder, q) {
		b := res.Bookmark
		if b.URL == "" {
			continue
		}
		label := b.Label
		if label == "" {
			label = model.NoLabel
		}
		data.Bookmarks = append(data.Bookmarks, bookmarkView{
			Label:      label,
			URL:        b.URL,
			Folder:     res.FolderName,
			Index:      res.Index,
			Favorite:   b.IsFavorite(),
			Read:       b.IsRead(),
			ShowFolder: res.FolderName != store.CurrentFolder,
		})
	}

	if !store.Settings.HideToDoList {
		for i, item := range store.ToDoList {
			data.ToDos = append(data.ToDos, toDoView{Index: i, Text: item.Display(), Checked: item.Checked})
		}
	}
	return data
}

// indexView renders the dashboard for the current folder and query.
func (s *Server) indexView(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	store, err := s.load()
	if err != nil {
		log.Error("Loading dashboard failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, newPageData(store, q)); err != nil {
		log.Error("Rendering dashboard failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Warn("Writing dashboard failed", "error", err)
	}
}

// faviconView serves the icon for ?url= as image bytes. A generated tile
// is served when the site has no usable icon.
func (s *Server) faviconView(w http.ResponseWriter, r *http.Request) {
	pageURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if pageURL == "" || s.favicons == nil {
		http.NotFound(w, r)
		return
	}

	icon, err := s.favicons.Resolve(r.Context(), pageURL)
	if err != nil {
		log.Debug("Serving fallback icon", "url", pageURL, "reason", err)
	}
	contentType, body, err := icon.Decode()
	if err != nil {
		log.Warn("Undecodable icon", "url", pageURL, "error", err)
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", contentType)
	if !icon.Fallback {
		w.Header().Set("Cache-Control", "max-age=86400")
	}
	if _, err := w.Write(body); err != nil {
		log.Warn("Writing icon failed", "error", err)
	}
}
