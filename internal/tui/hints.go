package tui

import "strings"

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string // Display key (e.g., "j/k", "Enter")
	Desc string // Short description (e.g., "move", "open")
}

// renderHint renders a single hint as "key:desc" with styling.
func (a App) renderHint(h Hint) string {
	return a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
}

// renderHints renders hints in horizontal format for bottom bar: "j/k:move f:fav a:add"
func (a App) renderHints(hints HintSet) string {
	allHints := hints.All()
	if len(allHints) == 0 {
		return ""
	}

	parts := make([]string, len(allHints))
	for i, h := range allHints {
		parts[i] = a.renderHint(h)
	}
	return strings.Join(parts, " ")
}

// renderHintsInline renders hints in inline format for modals: "Enter confirm  Esc cancel"
func (a App) renderHintsInline(hints []Hint) string {
	if len(hints) == 0 {
		return ""
	}

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.styles.HintKey.Render(h.Key) + " " + a.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, "  ")
}

// HintSet is an ordered collection of hints by group.
type HintSet struct {
	Nav    []Hint // Navigation hints (j/k, h/l, etc.)
	Edit   []Hint // Edit hints (a, e, d, etc.)
	Action []Hint // Action hints (Enter, f, r, etc.)
	System []Hint // System hints (?, q, Esc)
}

// All returns all hints flattened in display order: Nav + Action + Edit + System.
func (h HintSet) All() []Hint {
	result := make([]Hint, 0, len(h.Nav)+len(h.Action)+len(h.Edit)+len(h.System))
	result = append(result, h.Nav...)
	result = append(result, h.Action...)
	result = append(result, h.Edit...)
	result = append(result, h.System...)
	return result
}

var systemHints = []Hint{
	{Key: "?", Desc: "help"},
	{Key: "q", Desc: "quit"},
}

// getContextualHints returns the appropriate hints for the current mode.
func (a App) getContextualHints() HintSet {
	switch a.mode {
	case ModeNormal:
		switch a.focus {
		case FocusFolders:
			return a.getFolderHints()
		case FocusToDo:
			return a.getToDoHints()
		}
		return a.getBookmarkHints()
	case ModeSearch:
		return HintSet{
			Nav:    []Hint{{Key: "type", Desc: "search"}},
			Action: []Hint{{Key: "Enter", Desc: "keep"}},
			System: []Hint{{Key: "Esc", Desc: "clear"}},
		}
	case ModeAddBookmark, ModeEditBookmark:
		return HintSet{
			Nav:    []Hint{{Key: "Tab", Desc: "next"}},
			Action: []Hint{{Key: "Enter", Desc: "save"}},
			System: []Hint{{Key: "Esc", Desc: "cancel"}},
		}
	case ModeAddFolder, ModeRenameFolder, ModeAddToDo:
		return HintSet{
			Action: []Hint{{Key: "Enter", Desc: "save"}},
			System: []Hint{{Key: "Esc", Desc: "cancel"}},
		}
	case ModeMove:
		return HintSet{
			Nav: []Hint{
				{Key: "↑/↓", Desc: "nav"},
				{Key: "type", Desc: "filter"},
			},
			Action: []Hint{{Key: "Enter", Desc: "move"}},
			System: []Hint{{Key: "Esc", Desc: "cancel"}},
		}
	case ModeHelp:
		return HintSet{
			System: []Hint{{Key: "?/q/Esc", Desc: "close"}},
		}
	}
	// ModeConfirm shows its hints inside the modal.
	return HintSet{}
}

func (a App) getBookmarkHints() HintSet {
	return HintSet{
		Nav: []Hint{
			{Key: "hjkl", Desc: "move"},
			{Key: "tab", Desc: "pane"},
		},
		Action: []Hint{
			{Key: "o", Desc: "open"},
			{Key: "f", Desc: "fav"},
			{Key: "r", Desc: "read"},
			{Key: "/", Desc: "search"},
		},
		Edit: []Hint{
			{Key: "a", Desc: "add"},
			{Key: "e", Desc: "edit"},
			{Key: "d", Desc: "del"},
			{Key: "m", Desc: "move"},
		},
		System: systemHints,
	}
}

func (a App) getFolderHints() HintSet {
	return HintSet{
		Nav: []Hint{
			{Key: "j/k", Desc: "move"},
			{Key: "tab", Desc: "pane"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "open"},
			{Key: "*", Desc: "pin"},
		},
		Edit: []Hint{
			{Key: "N", Desc: "new"},
			{Key: "R", Desc: "rename"},
			{Key: "D", Desc: "del"},
			{Key: "J/K", Desc: "reorder"},
		},
		System: systemHints,
	}
}

func (a App) getToDoHints() HintSet {
	return HintSet{
		Nav: []Hint{
			{Key: "j/k", Desc: "move"},
			{Key: "tab", Desc: "pane"},
		},
		Action: []Hint{
			{Key: "x", Desc: "check"},
		},
		Edit: []Hint{
			{Key: "a", Desc: "add"},
			{Key: "d", Desc: "del"},
			{Key: "C", Desc: "clear"},
			{Key: "U", Desc: "restore"},
		},
		System: systemHints,
	}
}
