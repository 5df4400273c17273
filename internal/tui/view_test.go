package tui_test

import (
	"strings"
	"testing"

	"github.com/nikbrunner/homescreen/internal/tui"
	"github.com/nikbrunner/homescreen/internal/tui/layout"
)

// render returns the app's view without ANSI codes.
func render(app tui.App) string {
	return layout.Strip(app.View())
}

func assertContains(t *testing.T, view string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(view, w) {
			t.Errorf("expected view to contain %q, got:\n%s", w, view)
		}
	}
}

func TestView_NormalMode_120x30(t *testing.T) {
	app, _ := newTestApp(t)

	assertContains(t, render(app),
		"homescreen / Dev",
		"Folders",
		"▸ Dev",
		"Dev (3)",
		"GitHub",
		"★ Go",
		"✓ Docs",
		"https://github.com",
		"To-do (2)",
		"[ ] write tests",
		"[show:all] [scope:folder]",
		"?:help",
	)
}

func TestView_NarrowTerminalDropsToDo(t *testing.T) {
	app, _ := newTestApp(t)
	view := render(app.WithDimensions(80, 24))

	if strings.Contains(view, "To-do") {
		t.Errorf("expected to-do pane dropped at 80 columns, got:\n%s", view)
	}
	assertContains(t, view, "GitHub", "Folders")
}

func TestView_IndicatorsHidden(t *testing.T) {
	app, _ := newTestApp(t)
	app.Store().Settings.ShowIndicators = false

	view := render(app)
	if strings.Contains(view, "★") {
		t.Errorf("expected no favorite marker, got:\n%s", view)
	}
}

func TestView_PinnedStrip(t *testing.T) {
	app, _ := newTestApp(t)
	app = press(app, "*")

	assertContains(t, render(app), "[1] Dev", "Dev *")
}

func TestView_FilterStatus(t *testing.T) {
	app, _ := newTestApp(t)
	app = press(app, "1")

	assertContains(t, render(app), "[show:favorites]", "Dev (1)", "Showing favorites")
}

func TestView_EmptyFilterResult(t *testing.T) {
	app, _ := newTestApp(t)
	app = press(app, "tab", "j", "enter", "1")

	assertContains(t, render(app), "No bookmarks match.")
}

func TestView_SearchAcrossFolders(t *testing.T) {
	app, _ := newTestApp(t)
	app = press(app, "/", "hn", "enter")

	assertContains(t, render(app),
		"homescreen / all folders",
		"Search: hn (1)",
		"[search:hn]",
		"[News]",
	)
}

func TestView_ConfirmModal(t *testing.T) {
	app, _ := newTestApp(t)
	app = press(app, "d")

	assertContains(t, render(app), `Delete bookmark "GitHub"?`, "y confirm", "n cancel")
}

func TestView_AddBookmarkModal(t *testing.T) {
	app, _ := newTestApp(t)
	app = press(app, "a")

	assertContains(t, render(app), "Add Bookmark to Dev", "Label:", "URL:", "Tab:next")
}

func TestView_MoveModal(t *testing.T) {
	app, _ := newTestApp(t)
	app = press(app, "m")

	view := render(app)
	assertContains(t, view, "Move to folder", "News")
}

func TestView_HelpOverlay(t *testing.T) {
	app, _ := newTestApp(t)
	app = press(app, "?")

	assertContains(t, render(app), "filter", "toggle favorite", "move to folder", "[?/esc] close")
}
