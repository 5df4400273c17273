package tui

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/skratchdot/open-golang/open"

	"github.com/nikbrunner/homescreen/internal/logging"
	"github.com/nikbrunner/homescreen/internal/model"
	"github.com/nikbrunner/homescreen/internal/picker"
	"github.com/nikbrunner/homescreen/internal/search"
	"github.com/nikbrunner/homescreen/internal/storage"
	"github.com/nikbrunner/homescreen/internal/tui/layout"
)

var log = logging.GetLogger("tui")

var errEmptyToDo = errors.New("to-do text is empty")

// App is the main bubbletea model for the dashboard.
type App struct {
	store        *model.Store
	storage      storage.Storage
	keys         KeyMap
	styles       Styles
	fixedStyles  bool
	layoutConfig layout.LayoutConfig
	open         func(string) error
	copy         func(string) error

	mode  Mode
	focus Focus

	// Navigation state
	folderCursor int    // index into store.Folders
	cursor       int    // index into items
	todoCursor   int    // index into store.ToDoList
	items        []Item // bookmarks after the active query

	query       search.Query
	searchInput textinput.Model

	modal   ModalState
	confirm ConfirmState
	move    picker.Picker

	messageText string
	messageType MessageType

	// For gg command
	lastKeyWasG bool

	// Window dimensions
	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Store        *model.Store
	Storage      storage.Storage      // optional, changes are not persisted if nil
	Keys         *KeyMap              // optional, uses default if nil
	Styles       *Styles              // optional, uses default if nil
	LayoutConfig *layout.LayoutConfig // optional, uses default if nil
	Open         func(string) error   // optional, opens URLs in the browser
	Copy         func(string) error   // optional, writes the system clipboard
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}


	cfg := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		cfg = *params.LayoutConfig
	}

	store := params.Store
	if store == nil {
		store = model.NewStore()
	}

	// Styles follow the stored settings unless the caller fixes them
	styles := NewStyles(store.Settings)
	if params.Styles != nil {
		styles = *params.Styles
	}

	openURL := params.Open
	if openURL == nil {
		openURL = open.Run
	}
	copyText := params.Copy
	if copyText == nil {
		copyText = clipboard.WriteAll
	}

	searchInput := textinput.New()
	searchInput.Placeholder = "Search all folders..."
	searchInput.Prompt = "/"
	searchInput.CharLimit = cfg.Input.SearchCharLimit
	searchInput.Width = cfg.Input.SearchWidth

	app := App{
		store:        store,
		storage:      params.Storage,
		keys:         keys,
		styles:       styles,
		fixedStyles:  params.Styles != nil,
		layoutConfig: cfg,
		open:         openURL,
		copy:         copyText,
		searchInput:  searchInput,
		modal:        NewModalState(cfg),
		width:        80,
		height:       24,
	}

	for i, f := range store.Folders {
		if f.Name == store.CurrentFolder {
			app.folderCursor = i
		}
	}
	app.refreshItems()
	return app
}

// WithDimensions returns a copy sized as if a WindowSizeMsg had arrived.
func (a App) WithDimensions(width, height int) App {
	a.width = width
	a.height = height
	return a
}

// refreshItems reruns the query against the store and clamps cursors.
func (a *App) refreshItems() {
	a.items = itemsFrom(search.Run(a.store.Folders, a.store.CurrentFolder, a.query))
	a.cursor = clampIndex(a.cursor, len(a.items))
	a.folderCursor = clampIndex(a.folderCursor, len(a.store.Folders))
	a.todoCursor = clampIndex(a.todoCursor, len(a.store.ToDoList))
}

// gridDown returns the cell below cursor in a grid of n cells. From the
// row above a short last row it lands on the last cell.
func gridDown(cursor, n, cols int) int {
	if n == 0 {
		return 0
	}
	if next := cursor + cols; next < n {
		return next
	}
	if cursor/cols < (n-1)/cols {
		return n - 1
	}
	return cursor
}

func clampIndex(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		return 0
	}
	return i
}

// Cursor returns the bookmark cursor position.
func (a App) Cursor() int {
	return a.cursor
}

// FolderCursor returns the sidebar cursor position.
func (a App) FolderCursor() int {
	return a.folderCursor
}

// ToDoCursor returns the to-do cursor position.
func (a App) ToDoCursor() int {
	return a.todoCursor
}

// Items returns the bookmarks currently shown in the grid.
func (a App) Items() []Item {
	return a.items
}

// Mode returns the current interaction mode.
func (a App) Mode() Mode {
	return a.mode
}

// Focus returns the focused pane.
func (a App) Focus() Focus {
	return a.focus
}

// Query returns the active filter and search.
func (a App) Query() search.Query {
	return a.query
}

// Message returns the status message text.
func (a App) Message() string {
	return a.messageText
}

// Store returns the underlying store.
func (a App) Store() *model.Store {
	return a.store
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// ReloadMsg asks the app to re-read its state from storage, typically
// after another process wrote Key.
type ReloadMsg struct {
	Key string
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case ReloadMsg:
		return a.reload(msg.Key), nil

	case tea.KeyMsg:
		switch a.mode {
		case ModeSearch:
			return a.updateSearch(msg)
		case ModeAddBookmark, ModeEditBookmark:
			return a.updateBookmarkForm(msg)
		case ModeAddFolder, ModeRenameFolder, ModeAddToDo:
			return a.updateNameForm(msg)
		case ModeConfirm:
			return a.updateConfirm(msg)
		case ModeMove:
			return a.updateMove(msg)
		case ModeHelp:
			if msg.Type == tea.KeyEsc || key.Matches(msg, a.keys.Help) || key.Matches(msg, a.keys.Quit) {
				a.mode = ModeNormal
			}
			return a, nil
		}
		return a.updateNormal(msg)
	}

	return a, nil
}

// reload replaces the store with the stored state. Open dialogs keep the
// state they were started on.
func (a App) reload(key string) App {
	if a.storage == nil || a.mode != ModeNormal {
		return a
	}
	store, err := a.storage.Load()
	if err != nil {
		log.Warn("Reload failed", "key", key, "error", err)
		a.setMessage(MessageWarning, "Reload failed: "+err.Error())
		return a
	}
	log.Debug("Reloaded state", "key", key)
	a.store = store
	if !a.fixedStyles {
		a.styles = NewStyles(store.Settings)
	}
	a.refreshItems()
	return a
}

func (a App) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle gg sequence
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.lastKeyWasG = false
			a.setCursor(0)
			return a, nil
		}
		a.lastKeyWasG = true
		return a, nil
	}
	a.lastKeyWasG = false

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case msg.Type == tea.KeyEsc:
		a.clearMessage()
		if a.query.Text != "" {
			a.query.Text = ""
			a.searchInput.Reset()
			a.refreshItems()
		}

	case key.Matches(msg, a.keys.Help):
		a.mode = ModeHelp

	case key.Matches(msg, a.keys.NextPane):
		a.cycleFocus()

	case key.Matches(msg, a.keys.Down):
		if a.focus == FocusBookmarks {
			a.setCursor(gridDown(a.cursor, len(a.items), a.columns()))
		} else {
			a.setCursor(a.activeCursor() + 1)
		}

	case key.Matches(msg, a.keys.Up):
		if a.focus == FocusBookmarks {
			if a.cursor-a.columns() >= 0 {
				a.setCursor(a.cursor - a.columns())
			}
		} else {
			a.setCursor(a.activeCursor() - 1)
		}

	case key.Matches(msg, a.keys.Left):
		if a.focus == FocusBookmarks {
			a.setCursor(a.cursor - 1)
		}

	case key.Matches(msg, a.keys.Right):
		switch a.focus {
		case FocusBookmarks:
			a.setCursor(a.cursor + 1)
		case FocusFolders:
			a.selectFolder()
		}

	case key.Matches(msg, a.keys.Bottom):
		a.setCursor(a.activeLen() - 1)

	case key.Matches(msg, a.keys.Select):
		switch a.focus {
		case FocusFolders:
			a.selectFolder()
		case FocusToDo:
			a.toggleToDo()
		default:
			a.openSelected()
		}

	case key.Matches(msg, a.keys.Open):
		a.openSelected()

	case key.Matches(msg, a.keys.Favorite):
		a.toggleFlag(model.BitFavorite)

	case key.Matches(msg, a.keys.Read):
		a.toggleFlag(model.BitRead)

	case key.Matches(msg, a.keys.FilterStarred):
		a.setFilter(search.ModeStarred)
	case key.Matches(msg, a.keys.FilterPlain):
		a.setFilter(search.ModeNotStarred)
	case key.Matches(msg, a.keys.FilterUnread):
		a.setFilter(search.ModeUnread)
	case key.Matches(msg, a.keys.FilterRead):
		a.setFilter(search.ModeRead)
	case key.Matches(msg, a.keys.ClearFilter):
		a.setFilter(search.ModeNone)

	case key.Matches(msg, a.keys.Search):
		a.mode = ModeSearch
		a.searchInput.SetValue(a.query.Text)
		a.searchInput.CursorEnd()
		return a, a.searchInput.Focus()

	case key.Matches(msg, a.keys.AllFolders):
		a.query.AllFolders = !a.query.AllFolders
		a.cursor = 0
		a.refreshItems()

	case key.Matches(msg, a.keys.Add):
		if a.focus == FocusToDo {
			return a.openNameForm(ModeAddToDo, "")
		}
		return a.openBookmarkForm(ModeAddBookmark)

	case key.Matches(msg, a.keys.Edit):
		if a.focus == FocusFolders {
			return a.openRenameFolder()
		}
		return a.openBookmarkForm(ModeEditBookmark)

	case key.Matches(msg, a.keys.Delete):
		switch a.focus {
		case FocusFolders:
			a.confirmDeleteFolder()
		case FocusToDo:
			a.confirmDeleteToDo()
		default:
			a.confirmDeleteBookmark()
		}

	case key.Matches(msg, a.keys.AddFolder):
		return a.openNameForm(ModeAddFolder, "")

	case key.Matches(msg, a.keys.RenameFolder):
		return a.openRenameFolder()

	case key.Matches(msg, a.keys.DeleteFolder):
		a.confirmDeleteFolder()

	case key.Matches(msg, a.keys.Pin):
		a.togglePin()

	case key.Matches(msg, a.keys.MoveDown):
		a.moveItem(1)

	case key.Matches(msg, a.keys.MoveUp):
		a.moveItem(-1)

	case key.Matches(msg, a.keys.Move):
		a.openMove()

	case key.Matches(msg, a.keys.ToDo):
		if a.store.Settings.HideToDoList {
			a.setMessage(MessageWarning, "To-do list is hidden (hideToDoList)")
		} else {
			a.focus = FocusToDo
		}

	case key.Matches(msg, a.keys.ToggleToDo):
		a.toggleToDo()

	case key.Matches(msg, a.keys.ClearToDo):
		if len(a.store.ToDoList) > 0 {
			a.ask(ConfirmState{
				Prompt: "Clear the to-do list?",
				Action: func(a *App) error {
					a.store.ClearToDoList()
					return nil
				},
				Done: "To-do list cleared",
			})
		}

	case key.Matches(msg, a.keys.RestoreToDo):
		if err := a.store.RestoreToDoList(); err != nil {
			a.setMessage(MessageWarning, err.Error())
		} else {
			a.afterChange("To-do list restored")
		}

	case key.Matches(msg, a.keys.YankURL):
		if item, ok := a.selectedItem(); ok {
			if err := a.copy(item.URL()); err != nil {
				a.setMessage(MessageError, "Copy failed: "+err.Error())
			} else {
				a.setMessage(MessageSuccess, "Copied "+item.URL())
			}
		}
	}

	return a, nil
}

// columns is the bookmark grid's cells per row at the current size.
func (a App) columns() int {
	panes := a.panes()
	fixed, err := a.store.Settings.Columns()
	if err != nil {
		fixed = 0
	}
	content := panes.GridWidth - a.layoutConfig.Pane.BorderWidth
	return layout.CalculateGridColumns(content, fixed, a.store.Settings.BookmarkSize, a.layoutConfig.Grid)
}

func (a App) panes() layout.PaneLayout {
	return layout.CalculatePanes(a.width, a.store.Settings.SidebarWidth, !a.store.Settings.HideToDoList, a.layoutConfig.Pane)
}

func (a *App) cycleFocus() {
	switch a.focus {
	case FocusBookmarks:
		a.focus = FocusFolders
	case FocusFolders:
		a.focus = FocusToDo
		if a.store.Settings.HideToDoList || a.panes().ToDoWidth == 0 {
			a.focus = FocusBookmarks
		}
	default:
		a.focus = FocusBookmarks
	}
}

func (a App) activeCursor() int {
	switch a.focus {
	case FocusFolders:
		return a.folderCursor
	case FocusToDo:
		return a.todoCursor
	}
	return a.cursor
}

func (a App) activeLen() int {
	switch a.focus {
	case FocusFolders:
		return len(a.store.Folders)
	case FocusToDo:
		return len(a.store.ToDoList)
	}
	return len(a.items)
}

// setCursor moves the focused pane's cursor, clamped to its list.
func (a *App) setCursor(i int) {
	i = clampIndex(i, a.activeLen())
	switch a.focus {
	case FocusFolders:
		a.folderCursor = i
	case FocusToDo:
		a.todoCursor = i
	default:
		a.cursor = i
	}
}

func (a App) selectedItem() (Item, bool) {
	if a.cursor < 0 || a.cursor >= len(a.items) {
		return Item{}, false
	}
	return a.items[a.cursor], true
}

func (a App) selectedFolder() (string, bool) {
	if a.folderCursor < 0 || a.folderCursor >= len(a.store.Folders) {
		return "", false
	}
	return a.store.Folders[a.folderCursor].Name, true
}

func (a *App) selectFolder() {
	name, ok := a.selectedFolder()
	if !ok {
		return
	}
	a.store.CurrentFolder = name
	a.cursor = 0
	a.focus = FocusBookmarks
	a.refreshItems()
	a.saveStore()
}

func (a *App) openSelected() {
	item, ok := a.selectedItem()
	if !ok {
		return
	}
	url := model.EnsureHTTPScheme(item.URL())
	if err := a.open(url); err != nil {
		log.Warn("open failed", "url", url, "err", err)
		a.setMessage(MessageError, "Could not open "+url)
		return
	}
	a.setMessage(MessageInfo, "Opened "+url)
}

func (a *App) toggleFlag(bit int) {
	item, ok := a.selectedItem()
	if !ok {
		return
	}

	var flags int
	var err error
	if bit == model.BitFavorite {
		flags, err = a.store.ToggleFavorite(item.Ref())
	} else {
		flags, err = a.store.ToggleRead(item.Ref())
	}
	if err != nil {
		a.setMessage(MessageError, err.Error())
		return
	}

	state := "off"
	if model.HasBit(flags, bit) {
		state = "on"
	}
	name := "Favorite"
	if bit == model.BitRead {
		name = "Read"
	}
	a.afterChange(fmt.Sprintf("%s %s: %s", name, state, item.Title()))
}

func (a *App) setFilter(m search.Mode) {
	if m == search.ModeNone {
		a.query.Mode = search.ModeNone
	} else {
		a.query.Mode = m.Toggle(a.query.Mode)
	}
	a.cursor = 0
	a.refreshItems()
	a.setMessage(MessageInfo, "Showing "+a.query.Mode.Label())
}

func (a *App) togglePin() {
	name := a.store.CurrentFolder
	if a.focus == FocusFolders {
		if n, ok := a.selectedFolder(); ok {
			name = n
		}
	}
	if a.store.Folder(name) == nil {
		return
	}
	if a.store.TogglePin(name) {
		a.afterChange("Pinned " + name)
	} else {
		a.afterChange("Unpinned " + name)
	}
}

// moveItem shifts the focused item one place up (delta -1) or down.
func (a *App) moveItem(delta int) {
	switch a.focus {
	case FocusFolders:
		to := a.folderCursor + delta
		if to < 0 || to >= len(a.store.Folders) {
			return
		}
		if err := a.store.MoveFolder(a.folderCursor, to); err != nil {
			a.setMessage(MessageError, err.Error())
			return
		}
		a.folderCursor = to

	case FocusToDo:
		to := a.todoCursor + delta
		if to < 0 || to >= len(a.store.ToDoList) {
			return
		}
		if err := a.store.MoveToDo(a.todoCursor, to); err != nil {
			a.setMessage(MessageError, err.Error())
			return
		}
		a.todoCursor = to

	default:
		if a.query.Active() {
			a.setMessage(MessageWarning, "Clear the filter to reorder bookmarks")
			return
		}
		to := a.cursor + delta
		if to < 0 || to >= len(a.items) {
			return
		}
		if err := a.store.MoveBookmark(a.store.CurrentFolder, a.items[a.cursor].Index, a.items[to].Index); err != nil {
			a.setMessage(MessageError, err.Error())
			return
		}
		a.cursor = to
	}
	a.afterChange("")
}

func (a *App) toggleToDo() {
	if len(a.store.ToDoList) == 0 {
		return
	}
	if err := a.store.ToggleToDo(a.todoCursor); err != nil {
		a.setMessage(MessageError, err.Error())
		return
	}
	a.afterChange("")
}

func (a *App) confirmDeleteBookmark() {
	item, ok := a.selectedItem()
	if !ok {
		return
	}
	ref := item.Ref()
	a.ask(ConfirmState{
		Prompt: fmt.Sprintf("Delete bookmark %q?", item.Title()),
		Action: func(a *App) error {
			return a.store.DeleteBookmark(ref)
		},
		Done: "Deleted " + item.Title(),
	})
}

func (a *App) confirmDeleteFolder() {
	name, ok := a.selectedFolder()
	if a.focus != FocusFolders || !ok {
		name = a.store.CurrentFolder
	}
	if a.store.Folder(name) == nil {
		return
	}
	a.ask(ConfirmState{
		Prompt: fmt.Sprintf("Delete folder %q and its bookmarks?", name),
		Action: func(a *App) error {
			return a.store.DeleteFolder(name)
		},
		Done: "Deleted folder " + name,
	})
}

func (a *App) confirmDeleteToDo() {
	if a.todoCursor >= len(a.store.ToDoList) {
		return
	}
	i := a.todoCursor
	a.ask(ConfirmState{
		Prompt: fmt.Sprintf("Delete to-do %q?", a.store.ToDoList[i].Display()),
		Action: func(a *App) error {
			return a.store.DeleteToDo(i)
		},
		Done: "To-do deleted",
	})
}

func (a *App) ask(c ConfirmState) {
	a.confirm = c
	a.mode = ModeConfirm
}

func (a App) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		a.mode = ModeNormal
		if err := a.confirm.Action(&a); err != nil {
			a.setMessage(MessageError, err.Error())
		} else {
			a.afterChange(a.confirm.Done)
		}
		a.confirm = ConfirmState{}
	case "n", "N", "esc", "q":
		a.mode = ModeNormal
		a.confirm = ConfirmState{}
	}
	return a, nil
}

func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.mode = ModeNormal
		a.searchInput.Blur()
		a.searchInput.Reset()
		a.query.Text = ""
		a.cursor = 0
		a.refreshItems()
		return a, nil

	case tea.KeyEnter:
		a.mode = ModeNormal
		a.searchInput.Blur()
		a.focus = FocusBookmarks
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	if a.query.Text != a.searchInput.Value() {
		a.query.Text = a.searchInput.Value()
		a.cursor = 0
		a.refreshItems()
	}
	return a, cmd
}

func (a App) openBookmarkForm(mode Mode) (tea.Model, tea.Cmd) {
	a.modal.Reset()
	if mode == ModeEditBookmark {
		item, ok := a.selectedItem()
		if !ok {
			return a, nil
		}
		a.modal.EditRef = editTarget{folder: item.FolderName, url: item.Bookmark.URL, label: item.Bookmark.Label}
		a.modal.LabelInput.SetValue(item.Bookmark.Label)
		a.modal.URLInput.SetValue(item.Bookmark.URL)
	}
	a.mode = mode
	return a, a.modal.LabelInput.Focus()
}

func (a App) updateBookmarkForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.mode = ModeNormal
		a.modal.Reset()
		return a, nil

	case tea.KeyTab, tea.KeyShiftTab:
		a.modal.FocusURL = !a.modal.FocusURL
		if a.modal.FocusURL {
			a.modal.LabelInput.Blur()
			return a, a.modal.URLInput.Focus()
		}
		a.modal.URLInput.Blur()
		return a, a.modal.LabelInput.Focus()

	case tea.KeyEnter:
		a.saveBookmarkForm()
		return a, nil
	}

	var cmd tea.Cmd
	if a.modal.FocusURL {
		a.modal.URLInput, cmd = a.modal.URLInput.Update(msg)
	} else {
		a.modal.LabelInput, cmd = a.modal.LabelInput.Update(msg)
	}
	return a, cmd
}

func (a *App) saveBookmarkForm() {
	label := a.modal.LabelInput.Value()
	url := a.modal.URLInput.Value()
	if url != "" && label == "" {
		label = model.TruncateURL(url)
	}
	url = model.EnsureHTTPScheme(url)

	var err error
	var done string
	if a.mode == ModeEditBookmark {
		t := a.modal.EditRef
		err = a.store.EditBookmark(model.Ref{Folder: t.folder, URL: t.url, Label: t.label}, label, url)
		done = "Bookmark updated"
	} else {
		_, err = a.store.AddBookmark(a.store.CurrentFolder, label, url)
		done = "Bookmark added"
	}
	if err != nil {
		a.setMessage(MessageError, err.Error())
		return
	}

	added := a.mode == ModeAddBookmark
	a.mode = ModeNormal
	a.modal.Reset()
	a.afterChange(done)
	if added {
		a.cursor = clampIndex(len(a.items)-1, len(a.items))
	}
}

func (a App) openRenameFolder() (tea.Model, tea.Cmd) {
	name := a.store.CurrentFolder
	if a.focus == FocusFolders {
		if n, ok := a.selectedFolder(); ok {
			name = n
		}
	}
	if a.store.Folder(name) == nil {
		return a, nil
	}
	return a.openNameForm(ModeRenameFolder, name)
}

func (a App) openNameForm(mode Mode, value string) (tea.Model, tea.Cmd) {
	a.modal.Reset()
	a.modal.NameInput.SetValue(value)
	a.modal.NameInput.CursorEnd()
	a.modal.EditRef = editTarget{folder: value}
	if mode == ModeAddToDo {
		a.modal.NameInput.Placeholder = "What needs doing?"
	} else {
		a.modal.NameInput.Placeholder = "Folder name"
	}
	a.mode = mode
	return a, a.modal.NameInput.Focus()
}

func (a App) updateNameForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.mode = ModeNormal
		a.modal.Reset()
		return a, nil

	case tea.KeyEnter:
		a.saveNameForm()
		return a, nil
	}

	var cmd tea.Cmd
	a.modal.NameInput, cmd = a.modal.NameInput.Update(msg)
	return a, cmd
}

func (a *App) saveNameForm() {
	value := a.modal.NameInput.Value()

	var err error
	var done string
	switch a.mode {
	case ModeAddFolder:
		err = a.store.AddFolder(value)
		done = "Folder added"
	case ModeRenameFolder:
		err = a.store.RenameFolder(a.modal.EditRef.folder, value)
		done = "Folder renamed"
	case ModeAddToDo:
		if !a.store.AddToDo(value) {
			err = errEmptyToDo
		}
		done = "To-do added"
	}
	if err != nil {
		a.setMessage(MessageError, err.Error())
		return
	}

	mode := a.mode
	a.mode = ModeNormal
	a.modal.Reset()
	a.afterChange(done)
	switch mode {
	case ModeAddFolder:
		a.folderCursor = len(a.store.Folders) - 1
	case ModeAddToDo:
		a.todoCursor = len(a.store.ToDoList) - 1
	}
}

func (a *App) openMove() {
	item, ok := a.selectedItem()
	if !ok {
		return
	}
	if len(a.store.Folders) < 2 {
		a.setMessage(MessageWarning, "No other folder to move to")
		return
	}
	a.move = picker.ForFolders(a.store.FolderNames(), item.FolderName).
		WithMaxVisible(a.layoutConfig.Modal.MoveMaxVisible).
		Embedded()
	a.mode = ModeMove
}

func (a App) updateMove(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m, cmd := a.move.Update(msg)
	a.move = m.(picker.Picker)
	if !a.move.Done() {
		return a, cmd
	}

	a.mode = ModeNormal
	target, ok := a.move.SelectedItem()
	if !ok {
		return a, nil
	}
	item, ok := a.selectedItem()
	if !ok {
		return a, nil
	}
	moved, err := a.store.MoveBookmarks([]model.Ref{item.Ref()}, target.Title)
	if err != nil {
		a.setMessage(MessageError, err.Error())
		return a, nil
	}
	if moved == 0 {
		a.setMessage(MessageWarning, "Already in "+target.Title)
		return a, nil
	}
	a.afterChange(fmt.Sprintf("Moved %s to %s", item.Title(), target.Title))
	return a, nil
}

// afterChange refreshes derived state, persists the store and shows msg
// when non-empty.
func (a *App) afterChange(msg string) {
	a.refreshItems()
	if msg != "" {
		a.setMessage(MessageSuccess, msg)
	}
	a.saveStore()
}

func (a *App) setMessage(t MessageType, text string) {
	a.messageType = t
	a.messageText = text
}

func (a *App) clearMessage() {
	a.messageText = ""
	a.messageType = MessageInfo
}

// saveStore persists the current store to storage (if storage is configured).
// This should be called after any mutation to the store.
func (a *App) saveStore() {
	if a.storage == nil {
		return
	}
	if err := a.storage.Save(a.store); err != nil {
		log.Error("save failed", "err", err)
		a.setMessage(MessageError, "Save failed: "+err.Error())
	}
}
