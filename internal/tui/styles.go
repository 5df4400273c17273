package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/homescreen/internal/model"
)

// Styles holds all lipgloss styles for the TUI.
type Styles struct {
	App          lipgloss.Style
	Pane         lipgloss.Style
	PaneActive   lipgloss.Style
	Modal        lipgloss.Style
	Title        lipgloss.Style
	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	Folder       lipgloss.Style
	Current      lipgloss.Style // Current folder in the sidebar
	Pinned       lipgloss.Style
	Bookmark     lipgloss.Style
	Indicator    lipgloss.Style // ★ and ✓ flags on bookmark cells
	URL          lipgloss.Style
	Checked      lipgloss.Style // Completed to-do items
	Help         lipgloss.Style
	Empty        lipgloss.Style
	Status       lipgloss.Style
	HintKey      lipgloss.Style // Key portion of hints (e.g., "Enter", "j/k")
	HintDesc     lipgloss.Style // Description portion of hints (e.g., "confirm", "move")
	HintLabel    lipgloss.Style // Row label in front of hints
	Header       lipgloss.Style // Folder line above the panes

	// Message line, one per MessageType
	Info    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

type palette struct {
	text    lipgloss.TerminalColor
	muted   lipgloss.TerminalColor
	border  lipgloss.TerminalColor
	accent  lipgloss.TerminalColor
	star    lipgloss.TerminalColor
	success lipgloss.TerminalColor
	warning lipgloss.TerminalColor
	failure lipgloss.TerminalColor
}

// newPalette takes the accent from buttonColor. With darkModeEnabled the
// dark variants are used whatever the terminal background is.
func newPalette(s model.Settings) palette {
	pick := func(light, dark string) lipgloss.TerminalColor {
		if s.DarkModeEnabled {
			return lipgloss.Color(dark)
		}
		return lipgloss.AdaptiveColor{Light: light, Dark: dark}
	}

	accent, err := model.AdjustColor(s.ButtonColor, 0)
	if err != nil {
		accent, _ = model.AdjustColor(model.DefaultSettings().ButtonColor, 0)
	}

	return palette{
		text:    pick("#505050", "#A0A0A0"),
		muted:   pick("#888888", "#606060"),
		border:  pick("#888888", "#505050"),
		accent:  lipgloss.Color(accent),
		star:    pick("#B8860B", "#E0B040"),
		success: pick("#338833", "#66CC66"),
		warning: pick("#CC8800", "#FFAA00"),
		failure: pick("#CC3333", "#FF6666"),
	}
}

// NewStyles builds the dashboard styles for the given settings.
func NewStyles(s model.Settings) Styles {
	p := newPalette(s)
	fg := func(c lipgloss.TerminalColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	boxed := func(c lipgloss.TerminalColor) lipgloss.Style {
		return lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(c).
			Padding(0, 1)
	}

	return Styles{
		App:        lipgloss.NewStyle().Padding(1, 2, 0, 2),
		Pane:       boxed(p.border),
		PaneActive: boxed(p.accent),
		Modal:      boxed(p.accent).Padding(1, 2),
		Title:      fg(p.accent).Bold(true),

		Item: fg(p.text),
		ItemSelected: lipgloss.NewStyle().
			Background(p.accent).
			Foreground(lipgloss.Color("#1A1A1A")),

		Folder:    fg(p.text),
		Current:   fg(p.accent).Bold(true),
		Pinned:    fg(p.accent),
		Bookmark:  fg(p.text),
		Indicator: fg(p.star),
		URL:       fg(p.muted),
		Checked:   fg(p.muted).Strikethrough(true),

		Help:      fg(p.muted),
		Empty:     fg(p.muted),
		Status:    fg(p.text),
		HintKey:   fg(p.muted),
		HintDesc:  fg(p.muted),
		HintLabel: fg(p.accent),
		Header:    fg(p.muted).PaddingLeft(1),

		Info:    fg(p.accent).Bold(true),
		Success: fg(p.success).Bold(true),
		Warning: fg(p.warning).Bold(true),
		Error:   fg(p.failure).Bold(true),
	}
}

// DefaultStyles returns the styles for default settings.
func DefaultStyles() Styles {
	return NewStyles(model.DefaultSettings())
}
