package tui_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/homescreen/internal/model"
	"github.com/nikbrunner/homescreen/internal/search"
	"github.com/nikbrunner/homescreen/internal/storage"
	"github.com/nikbrunner/homescreen/internal/tui"
)

// testStore creates a sample store: three bookmarks in Dev (Go is a
// favorite, Docs is read), one in News and two to-dos.
func testStore() *model.Store {
	s := model.NewStore()
	s.Folders = []model.Folder{
		{Name: "Dev", Bookmarks: []model.Bookmark{
			{Label: "GitHub", URL: "https://github.com"},
			{Label: "Go", URL: "https://go.dev", Flags: 1},
			{Label: "Docs", URL: "https://pkg.go.dev", Flags: 2},
		}},
		{Name: "News", Bookmarks: []model.Bookmark{
			{Label: "HN", URL: "https://news.ycombinator.com"},
		}},
	}
	s.CurrentFolder = "Dev"
	s.ToDoList = []model.ToDoItem{{Text: "write tests"}, {Text: "ship"}}
	s.Settings.BookmarksPerRow = "2"
	return s
}

func newTestApp(t *testing.T) (tui.App, *storage.Accessor) {
	t.Helper()
	acc := storage.NewAccessor(storage.NewMemoryKV())
	app := tui.NewApp(tui.AppParams{
		Store:   testStore(),
		Storage: acc,
		Open:    func(string) error { return nil },
		Copy:    func(string) error { return nil },
	})
	return app.WithDimensions(120, 30), acc
}

func press(app tui.App, keys ...string) tui.App {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := app.Update(msg)
		app = updated.(tui.App)
	}
	return app
}

func labels(items []tui.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title()
	}
	return out
}

func TestApp_GridNavigation(t *testing.T) {
	app, _ := newTestApp(t)

	if app.Cursor() != 0 {
		t.Fatalf("expected initial cursor 0, got %d", app.Cursor())
	}

	app = press(app, "l")
	if app.Cursor() != 1 {
		t.Errorf("after l, expected cursor 1, got %d", app.Cursor())
	}

	// Row below is short: j lands on the last cell.
	app = press(app, "j")
	if app.Cursor() != 2 {
		t.Errorf("after j, expected cursor 2, got %d", app.Cursor())
	}

	app = press(app, "k")
	if app.Cursor() != 0 {
		t.Errorf("after k, expected cursor 0, got %d", app.Cursor())
	}

	app = press(app, "h")
	if app.Cursor() != 0 {
		t.Errorf("h at start should stay at 0, got %d", app.Cursor())
	}

	app = press(app, "G")
	if app.Cursor() != 2 {
		t.Errorf("after G, expected cursor 2, got %d", app.Cursor())
	}

	app = press(app, "g", "g")
	if app.Cursor() != 0 {
		t.Errorf("after gg, expected cursor 0, got %d", app.Cursor())
	}
}

func TestApp_ToggleFavoritePersists(t *testing.T) {
	app, acc := newTestApp(t)

	app = press(app, "f")

	if !app.Store().Folders[0].Bookmarks[0].IsFavorite() {
		t.Fatal("expected GitHub to be a favorite")
	}
	if app.Message() != "Favorite on: GitHub" {
		t.Errorf("unexpected message %q", app.Message())
	}

	saved, err := acc.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !saved.Folders[0].Bookmarks[0].IsFavorite() {
		t.Error("expected favorite flag to be saved")
	}

	app = press(app, "r", "r")
	if app.Store().Folders[0].Bookmarks[0].IsRead() {
		t.Error("expected read to toggle back off")
	}
}

func TestApp_FlagFilters(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		key  string
		mode search.Mode
		want []string
	}{
		{"1", search.ModeStarred, []string{"Go"}},
		{"1", search.ModeNone, []string{"GitHub", "Go", "Docs"}}, // same key again clears
		{"2", search.ModeNotStarred, []string{"GitHub", "Docs"}},
		{"3", search.ModeUnread, []string{"GitHub", "Go"}},
		{"4", search.ModeRead, []string{"Docs"}},
		{"0", search.ModeNone, []string{"GitHub", "Go", "Docs"}},
	}

	for _, tt := range tests {
		app = press(app, tt.key)
		if app.Query().Mode != tt.mode {
			t.Errorf("after %s: expected mode %v, got %v", tt.key, tt.mode, app.Query().Mode)
		}
		got := labels(app.Items())
		if len(got) != len(tt.want) {
			t.Errorf("after %s: expected %v, got %v", tt.key, tt.want, got)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("after %s: expected %v, got %v", tt.key, tt.want, got)
				break
			}
		}
	}
}

func TestApp_SearchAllFolders(t *testing.T) {
	app, _ := newTestApp(t)

	app = press(app, "/")
	if app.Mode() != tui.ModeSearch {
		t.Fatalf("expected ModeSearch, got %v", app.Mode())
	}

	app = press(app, "h", "n")
	got := labels(app.Items())
	if len(got) != 1 || got[0] != "HN" {
		t.Errorf("expected HN from News, got %v", got)
	}

	app = press(app, "enter")
	if app.Mode() != tui.ModeNormal || app.Query().Text != "hn" {
		t.Errorf("expected search kept after Enter, got mode %v text %q", app.Mode(), app.Query().Text)
	}

	app = press(app, "esc")
	if app.Query().Text != "" || len(app.Items()) != 3 {
		t.Errorf("expected Esc to clear the search, got %q with %d items", app.Query().Text, len(app.Items()))
	}
}

func TestApp_AllFoldersScope(t *testing.T) {
	app, _ := newTestApp(t)

	app = press(app, "A")
	if len(app.Items()) != 4 {
		t.Errorf("expected 4 bookmarks across folders, got %d", len(app.Items()))
	}

	app = press(app, "A")
	if len(app.Items()) != 3 {
		t.Errorf("expected 3 bookmarks in Dev, got %d", len(app.Items()))
	}
}

func TestApp_DeleteBookmarkAsks(t *testing.T) {
	app, _ := newTestApp(t)

	app = press(app, "d")
	if app.Mode() != tui.ModeConfirm {
		t.Fatalf("expected ModeConfirm, got %v", app.Mode())
	}

	app = press(app, "n")
	if app.Mode() != tui.ModeNormal || len(app.Items()) != 3 {
		t.Fatalf("expected nothing deleted after n, got %d items", len(app.Items()))
	}

	app = press(app, "d", "y")
	if len(app.Items()) != 2 {
		t.Errorf("expected 2 items after delete, got %d", len(app.Items()))
	}
	if app.Message() != "Deleted GitHub" {
		t.Errorf("unexpected message %q", app.Message())
	}
}

func TestApp_AddBookmark(t *testing.T) {
	app, acc := newTestApp(t)

	app = press(app, "a")
	if app.Mode() != tui.ModeAddBookmark {
		t.Fatalf("expected ModeAddBookmark, got %v", app.Mode())
	}

	app = press(app, "Example", "tab", "example.com", "enter")
	if app.Mode() != tui.ModeNormal {
		t.Fatalf("expected form to close, still in %v (%s)", app.Mode(), app.Message())
	}

	dev := app.Store().Folder("Dev")
	last := dev.Bookmarks[len(dev.Bookmarks)-1]
	if last.Label != "Example" || last.URL != "https://example.com" {
		t.Errorf("unexpected bookmark %+v", last)
	}
	if app.Cursor() != 3 {
		t.Errorf("expected cursor on the new bookmark, got %d", app.Cursor())
	}

	saved, _ := acc.Load()
	if len(saved.Folder("Dev").Bookmarks) != 4 {
		t.Error("expected new bookmark to be saved")
	}
}

func TestApp_AddBookmarkRequiresURL(t *testing.T) {
	app, _ := newTestApp(t)

	app = press(app, "a", "Only label", "enter")
	if app.Mode() != tui.ModeAddBookmark {
		t.Errorf("expected form to stay open, got %v", app.Mode())
	}
	if app.Message() == "" {
		t.Error("expected an error message")
	}
}

func TestApp_EditBookmark(t *testing.T) {
	app, _ := newTestApp(t)

	app = press(app, "l", "e", "backspace", "backspace", "Golang", "enter")

	b := app.Store().Folder("Dev").Bookmarks[1]
	if b.Label != "Golang" || b.URL != "https://go.dev" || !b.IsFavorite() {
		t.Errorf("expected relabelled favorite, got %+v", b)
	}
}

func TestApp_SelectFolder(t *testing.T) {
	app, _ := newTestApp(t)

	app = press(app, "tab")
	if app.Focus() != tui.FocusFolders {
		t.Fatalf("expected folder focus, got %v", app.Focus())
	}

	app = press(app, "j", "enter")
	if app.Store().CurrentFolder != "News" {
		t.Errorf("expected News current, got %q", app.Store().CurrentFolder)
	}
	if app.Focus() != tui.FocusBookmarks {
		t.Errorf("expected focus back on bookmarks, got %v", app.Focus())
	}
	if got := labels(app.Items()); len(got) != 1 || got[0] != "HN" {
		t.Errorf("expected HN, got %v", got)
	}
}

func TestApp_FolderCRUD(t *testing.T) {
	app, _ := newTestApp(t)

	app = press(app, "N", "Reading", "enter")
	if app.Store().Folder("Reading") == nil {
		t.Fatal("expected Reading folder")
	}

	app = press(app, "R", "backspace", "backspace", "backspace", "Code", "enter")
	if app.Store().Folder("Code") == nil || app.Store().CurrentFolder != "Code" {
		t.Fatalf("expected Dev renamed to Code, got %v", app.Store().FolderNames())
	}

	app = press(app, "N", "News", "enter")
	if app.Mode() != tui.ModeAddFolder {
		t.Error("expected duplicate folder name to keep the form open")
	}
	app = press(app, "esc")

	app = press(app, "D", "y")
	if app.Store().Folder("Code") != nil {
		t.Error("expected current folder deleted")
	}
	if app.Store().CurrentFolder != model.DefaultFolderName {
		t.Errorf("expected fallback to %q, got %q", model.DefaultFolderName, app.Store().CurrentFolder)
	}
}

func TestApp_PinFolder(t *testing.T) {
	app, _ := newTestApp(t)

	app = press(app, "*")
	if !app.Store().IsPinned("Dev") {
		t.Fatal("expected Dev pinned")
	}

	app = press(app, "tab", "j", "*")
	if !app.Store().IsPinned("News") {
		t.Error("expected News pinned from the sidebar")
	}

	app = press(app, "k", "*")
	if app.Store().IsPinned("Dev") {
		t.Error("expected Dev unpinned")
	}
}

func TestApp_MoveItems(t *testing.T) {
	app, _ := newTestApp(t)

	app = press(app, "J")
	if got := labels(app.Items()); got[0] != "Go" || got[1] != "GitHub" {
		t.Errorf("expected GitHub moved down, got %v", got)
	}
	if app.Cursor() != 1 {
		t.Errorf("expected cursor to follow, got %d", app.Cursor())
	}

	app = press(app, "tab", "J")
	if names := app.Store().FolderNames(); names[0] != "News" || names[1] != "Dev" {
		t.Errorf("expected Dev moved down, got %v", names)
	}
	if app.FolderCursor() != 1 {
		t.Errorf("expected folder cursor 1, got %d", app.FolderCursor())
	}
}

func TestApp_MoveRefusedWhileFiltered(t *testing.T) {
	app, _ := newTestApp(t)

	app = press(app, "3", "J")
	if app.Store().Folder("Dev").Bookmarks[0].Label != "GitHub" {
		t.Error("expected no reorder while a filter is active")
	}
	if app.Message() != "Clear the filter to reorder bookmarks" {
		t.Errorf("unexpected message %q", app.Message())
	}
}

func TestApp_MoveToFolder(t *testing.T) {
	app, _ := newTestApp(t)

	app = press(app, "m")
	if app.Mode() != tui.ModeMove {
		t.Fatalf("expected ModeMove, got %v", app.Mode())
	}

	app = press(app, "n", "w", "enter")
	if app.Mode() != tui.ModeNormal {
		t.Fatalf("expected picker closed, got %v", app.Mode())
	}
	if len(app.Store().Folder("News").Bookmarks) != 2 {
		t.Errorf("expected GitHub moved to News")
	}
	if len(app.Items()) != 2 {
		t.Errorf("expected 2 bookmarks left in Dev, got %d", len(app.Items()))
	}
	if app.Message() != "Moved GitHub to News" {
		t.Errorf("unexpected message %q", app.Message())
	}
}

func TestApp_MoveToFolderCancelled(t *testing.T) {
	app, _ := newTestApp(t)

	app = press(app, "m", "esc")
	if app.Mode() != tui.ModeNormal || len(app.Items()) != 3 {
		t.Errorf("expected nothing moved, mode %v items %d", app.Mode(), len(app.Items()))
	}
}

func TestApp_ToDoList(t *testing.T) {
	app, _ := newTestApp(t)

	app = press(app, "t")
	if app.Focus() != tui.FocusToDo {
		t.Fatalf("expected to-do focus, got %v", app.Focus())
	}

	app = press(app, "x")
	if !app.Store().ToDoList[0].Checked {
		t.Error("expected first to-do checked")
	}

	app = press(app, "a", "buy milk", "enter")
	if len(app.Store().ToDoList) != 3 || app.Store().ToDoList[2].Text != "buy milk" {
		t.Fatalf("expected new to-do appended, got %+v", app.Store().ToDoList)
	}
	if app.ToDoCursor() != 2 {
		t.Errorf("expected cursor on new to-do, got %d", app.ToDoCursor())
	}

	app = press(app, "K")
	if app.Store().ToDoList[1].Text != "buy milk" {
		t.Errorf("expected to-do moved up, got %+v", app.Store().ToDoList)
	}

	app = press(app, "C", "y")
	if len(app.Store().ToDoList) != 0 {
		t.Fatal("expected list cleared")
	}

	app = press(app, "U")
	if len(app.Store().ToDoList) != 3 {
		t.Errorf("expected list restored, got %d items", len(app.Store().ToDoList))
	}

	app = press(app, "U")
	if app.Message() != model.ErrNothingToRestore.Error() {
		t.Errorf("unexpected message %q", app.Message())
	}
}

func TestApp_ToDoHidden(t *testing.T) {
	app, _ := newTestApp(t)
	app.Store().Settings.HideToDoList = true

	app = press(app, "t")
	if app.Focus() == tui.FocusToDo {
		t.Error("expected hidden to-do pane not to take focus")
	}

	app = press(app, "tab", "tab")
	if app.Focus() != tui.FocusBookmarks {
		t.Errorf("expected focus to skip the hidden pane, got %v", app.Focus())
	}
}

func TestApp_ReloadPicksUpExternalWrites(t *testing.T) {
	app, acc := newTestApp(t)

	other := testStore()
	if _, err := other.AddBookmark("Dev", "Issues", "https://github.com/issues"); err != nil {
		t.Fatal(err)
	}
	if err := acc.Save(other); err != nil {
		t.Fatal(err)
	}

	next, _ := app.Update(tui.ReloadMsg{Key: "folders"})
	app = next.(tui.App)
	if got := labels(app.Items()); len(got) != 4 || got[3] != "Issues" {
		t.Errorf("expected reloaded bookmarks, got %v", got)
	}
}

func TestApp_ReloadWaitsForOpenDialog(t *testing.T) {
	app, acc := newTestApp(t)
	if err := acc.Save(testStore()); err != nil {
		t.Fatal(err)
	}

	app = press(app, "a")
	before := app.Store()
	next, _ := app.Update(tui.ReloadMsg{Key: "folders"})
	app = next.(tui.App)
	if app.Store() != before {
		t.Error("expected store untouched while a dialog is open")
	}
}

func TestApp_OpenAndCopy(t *testing.T) {
	var opened, copied string
	app := tui.NewApp(tui.AppParams{
		Store: testStore(),
		Open:  func(url string) error { opened = url; return nil },
		Copy:  func(text string) error { copied = text; return nil },
	}).WithDimensions(120, 30)

	app = press(app, "o")
	if opened != "https://github.com" {
		t.Errorf("expected github opened, got %q", opened)
	}

	app = press(app, "l", "Y")
	if copied != "https://go.dev" {
		t.Errorf("expected go.dev copied, got %q", copied)
	}

	press(app, "enter")
	if opened != "https://go.dev" {
		t.Errorf("expected Enter to open go.dev, got %q", opened)
	}
}

func TestApp_HelpAndQuit(t *testing.T) {
	app, _ := newTestApp(t)

	app = press(app, "?")
	if app.Mode() != tui.ModeHelp {
		t.Fatalf("expected ModeHelp, got %v", app.Mode())
	}
	app = press(app, "esc")
	if app.Mode() != tui.ModeNormal {
		t.Errorf("expected help closed, got %v", app.Mode())
	}

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Error("expected quit command")
	}
}

func TestItem_Title(t *testing.T) {
	item := tui.Item{Result: search.Result{Bookmark: model.Bookmark{URL: "https://x.dev", Flags: 3}}}

	if item.Title() != model.NoLabel {
		t.Errorf("expected %q, got %q", model.NoLabel, item.Title())
	}
	if item.Indicators() != "★✓" {
		t.Errorf("expected both indicators, got %q", item.Indicators())
	}
}
