package tui_test

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/homescreen/internal/model"
	"github.com/nikbrunner/homescreen/internal/tui"
)

func TestNewStyles_AccentFollowsButtonColor(t *testing.T) {
	s := model.DefaultSettings()
	s.ButtonColor = "#1a2b3c"

	styles := tui.NewStyles(s)
	if got := styles.Title.GetForeground(); got != lipgloss.Color("#1A2B3C") {
		t.Errorf("title colour = %v, want #1A2B3C", got)
	}
	if got := styles.PaneActive.GetBorderTopForeground(); got != lipgloss.Color("#1A2B3C") {
		t.Errorf("active border = %v, want #1A2B3C", got)
	}
}

func TestNewStyles_InvalidButtonColorFallsBack(t *testing.T) {
	s := model.DefaultSettings()
	s.ButtonColor = "orange"

	if got := tui.NewStyles(s).Title.GetForeground(); got != lipgloss.Color("#DB772A") {
		t.Errorf("title colour = %v, want the default accent", got)
	}
}

func TestNewStyles_DarkModePinsDarkPalette(t *testing.T) {
	s := model.DefaultSettings()

	if _, ok := tui.NewStyles(s).Item.GetForeground().(lipgloss.AdaptiveColor); !ok {
		t.Error("expected adaptive colours without dark mode")
	}

	s.DarkModeEnabled = true
	if got := tui.NewStyles(s).Item.GetForeground(); got != lipgloss.Color("#A0A0A0") {
		t.Errorf("item colour = %v, want dark variant", got)
	}
}
