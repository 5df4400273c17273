package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/homescreen/internal/tui/layout"
)

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}

// renderView creates the sidebar | grid | to-do view.
func (a App) renderView() string {
	switch a.mode {
	case ModeHelp:
		return a.renderHelpOverlay()
	case ModeAddBookmark, ModeEditBookmark, ModeAddFolder, ModeRenameFolder, ModeAddToDo, ModeConfirm, ModeMove:
		return a.renderModal()
	}

	paneHeight := layout.CalculatePaneHeight(a.height, a.layoutConfig.Pane)
	panes := a.panes()

	columns := []string{
		a.renderSidebar(panes.SidebarWidth, paneHeight),
		a.renderGrid(panes.GridWidth, paneHeight),
	}
	if panes.ToDoWidth > 0 {
		columns = append(columns, a.renderToDo(panes.ToDoWidth, paneHeight))
	}

	content := a.styles.App.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			a.renderHeader(),
			lipgloss.JoinHorizontal(lipgloss.Top, columns...),
			a.renderHelpBar(),
		),
	)

	// Use Place to ensure exact terminal dimensions and prevent overflow
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

// renderHeader renders the line above the panes.
func (a App) renderHeader() string {
	line := "homescreen / " + a.store.CurrentFolder
	if a.query.AllFolders || a.query.Text != "" {
		line = "homescreen / all folders"
	}
	line, _ = layout.TruncateText(line, a.width-4, a.layoutConfig.Text)
	return a.styles.Header.Render(line)
}

// pane wraps content in the focused or unfocused pane border. width is
// the outer width including the border.
func (a App) pane(content string, width, height int, focused bool) string {
	style := a.styles.Pane
	if focused {
		style = a.styles.PaneActive
	}
	return style.
		Width(width - 2).
		Height(height).
		Render(strings.TrimRight(content, "\n"))
}

// renderSidebar renders the pinned strip above the folder list.
func (a App) renderSidebar(width, height int) string {
	var content strings.Builder
	itemWidth := layout.CalculateItemWidth(width, a.layoutConfig.Pane)

	content.WriteString(a.styles.Title.Render("Folders") + "\n")
	header := 1

	if len(a.store.PinnedFolders) > 0 {
		for i, name := range a.store.PinnedFolders {
			line, _ := layout.TruncateWithPrefix(name, itemWidth, fmt.Sprintf("[%d] ", i+1), a.layoutConfig.Text)
			content.WriteString(a.styles.Pinned.Render(line) + "\n")
		}
		content.WriteString("──\n")
		header += len(a.store.PinnedFolders) + 1
	}

	if len(a.store.Folders) == 0 {
		content.WriteString(a.styles.Empty.Render("(no folders)"))
		return a.pane(content.String(), width, height, a.focus == FocusFolders)
	}

	visible := layout.CalculateVisibleHeight(height, header)
	offset := layout.CalculateViewportOffset(a.folderCursor, len(a.store.Folders), visible)

	for i, f := range a.store.Folders {
		if i < offset {
			continue
		}
		if i >= offset+visible {
			break
		}

		prefix := "  "
		if f.Name == a.store.CurrentFolder {
			prefix = "▸ "
		}
		name := f.Name
		if a.store.IsPinned(f.Name) {
			name += " *"
		}
		line, _ := layout.TruncateWithPrefix(name, itemWidth, prefix, a.layoutConfig.Text)

		switch {
		case a.focus == FocusFolders && i == a.folderCursor:
			line = a.styles.ItemSelected.Render(layout.PadRight(line, itemWidth))
		case f.Name == a.store.CurrentFolder:
			line = a.styles.Current.Render(line)
		default:
			line = a.styles.Folder.Render(line)
		}
		content.WriteString(line + "\n")
	}

	return a.pane(content.String(), width, height, a.focus == FocusFolders)
}

// gridTitle describes what the grid shows.
func (a App) gridTitle() string {
	var title string
	switch {
	case a.query.Text != "":
		title = fmt.Sprintf("Search: %s", a.query.Text)
	case a.query.AllFolders:
		title = "All folders"
	default:
		title = a.store.CurrentFolder
	}
	return fmt.Sprintf("%s (%d)", title, len(a.items))
}

// renderGrid renders the bookmark cells row by row.
func (a App) renderGrid(width, height int) string {
	var content strings.Builder
	focused := a.focus == FocusBookmarks
	contentWidth := width - a.layoutConfig.Pane.BorderWidth

	title, _ := layout.TruncateText(a.gridTitle(), contentWidth, a.layoutConfig.Text)
	content.WriteString(a.styles.Title.Render(title) + "\n")

	if len(a.items) == 0 {
		msg := "No bookmarks yet. Press a to add one."
		if a.query.Active() {
			msg = "No bookmarks match."
		}
		content.WriteString(a.styles.Empty.Render(msg))
		return a.pane(content.String(), width, height, focused)
	}

	cols := a.columns()
	cellWidth := layout.CalculateCellWidth(contentWidth, cols, a.layoutConfig.Grid)
	gap := strings.Repeat(" ", a.layoutConfig.Grid.CellGap)

	// title + detail line
	header := 1
	if !a.store.Settings.HideTextMuted {
		header++
	}
	rows := (len(a.items) + cols - 1) / cols
	visible := layout.CalculateVisibleHeight(height, header)
	offset := layout.CalculateViewportOffset(a.cursor/cols, rows, visible)

	for row := offset; row < rows && row < offset+visible; row++ {
		cells := make([]string, 0, cols)
		for col := 0; col < cols; col++ {
			i := row*cols + col
			if i >= len(a.items) {
				break
			}
			cells = append(cells, a.renderCell(a.items[i], i == a.cursor, focused, cellWidth))
		}
		content.WriteString(strings.Join(cells, gap) + "\n")
	}

	if !a.store.Settings.HideTextMuted {
		if item, ok := a.selectedItem(); ok {
			detail := item.URL()
			if item.FolderName != a.store.CurrentFolder {
				detail += "  [" + item.FolderName + "]"
			}
			detail, _ = layout.TruncateText(detail, contentWidth, a.layoutConfig.Text)
			content.WriteString(a.styles.URL.Render(detail))
		}
	}

	return a.pane(content.String(), width, height, focused)
}

// renderCell renders one bookmark padded to width.
func (a App) renderCell(item Item, isCursor, focused bool, width int) string {
	prefix := ""
	if a.store.Settings.ShowIndicators {
		if marks := item.Indicators(); marks != "" {
			prefix = marks + " "
		}
	}
	text, _ := layout.TruncateWithPrefix(item.Title(), width, prefix, a.layoutConfig.Text)
	text = layout.PadRight(text, width)

	switch {
	case isCursor && focused:
		return a.styles.ItemSelected.Render(text)
	case isCursor:
		return a.styles.Current.Render(text)
	case prefix != "":
		label := strings.TrimPrefix(text, prefix)
		return a.styles.Indicator.Render(prefix) + a.styles.Bookmark.Render(label)
	}
	return a.styles.Bookmark.Render(text)
}

// renderToDo renders the to-do list pane.
func (a App) renderToDo(width, height int) string {
	var content strings.Builder
	focused := a.focus == FocusToDo
	itemWidth := layout.CalculateItemWidth(width, a.layoutConfig.Pane)

	content.WriteString(a.styles.Title.Render("To-do ("+strconv.Itoa(len(a.store.ToDoList))+")") + "\n")

	if len(a.store.ToDoList) == 0 {
		content.WriteString(a.styles.Empty.Render("Nothing to do"))
		return a.pane(content.String(), width, height, focused)
	}

	visible := layout.CalculateVisibleHeight(height, 1)
	offset := layout.CalculateViewportOffset(a.todoCursor, len(a.store.ToDoList), visible)

	for i, item := range a.store.ToDoList {
		if i < offset {
			continue
		}
		if i >= offset+visible {
			break
		}

		box := "[ ] "
		if item.Checked {
			box = "[x] "
		}
		line, _ := layout.TruncateWithPrefix(item.Display(), itemWidth, box, a.layoutConfig.Text)

		switch {
		case focused && i == a.todoCursor:
			line = a.styles.ItemSelected.Render(layout.PadRight(line, itemWidth))
		case item.Checked:
			line = a.styles.Checked.Render(line)
		default:
			line = a.styles.Item.Render(line)
		}
		content.WriteString(line + "\n")
	}

	return a.pane(content.String(), width, height, focused)
}

// renderHelpBar renders message, status and hint lines below the panes.
func (a App) renderHelpBar() string {
	var lines []string

	// Line 1: Empty spacer OR message (message replaces the gap)
	if a.messageText != "" {
		lines = append(lines, a.renderMessageLine())
	} else {
		lines = append(lines, "")
	}

	// Line 2: Filter and search state
	lines = append(lines, a.renderStatusLine())

	// Line 3: Contextual keyboard hints
	if hints := a.renderHints(a.getContextualHints()); hints != "" {
		lines = append(lines, hints)
	}

	return strings.Join(lines, "\n")
}

// renderStatusLine shows the active filter, scope and search.
func (a App) renderStatusLine() string {
	if a.mode == ModeSearch {
		return a.searchInput.View()
	}

	var status strings.Builder
	status.WriteString(a.styles.HintLabel.Render("Filter "))
	status.WriteString(a.styles.HintKey.Render("1-4") + ":" + a.styles.HintDesc.Render("flags") + " ")
	status.WriteString(a.styles.HintKey.Render("A") + ":" + a.styles.HintDesc.Render("scope") + "  ")

	status.WriteString(a.styles.Status.Render("[show:" + a.query.Mode.Label() + "]"))
	scope := "folder"
	if a.query.AllFolders || a.query.Text != "" {
		scope = "all"
	}
	status.WriteString(a.styles.Status.Render(" [scope:" + scope + "]"))
	if a.query.Text != "" {
		status.WriteString(a.styles.Status.Render(" [search:" + a.query.Text + "]"))
	}
	return status.String()
}

// renderMessageLine renders the styled message with prefix icon based on type.
func (a App) renderMessageLine() string {
	switch a.messageType {
	case MessageError:
		return a.styles.Error.Render("✗ " + a.messageText)
	case MessageWarning:
		return a.styles.Warning.Render("⚠ " + a.messageText)
	case MessageSuccess:
		return a.styles.Success.Render("✓ " + a.messageText)
	}
	return a.styles.Info.Render(a.messageText)
}

// renderModal renders the current modal dialog.
func (a App) renderModal() string {
	var title, content strings.Builder

	modalStyle := a.styles.Modal.Width(layout.ModalWidth(a.width, a.layoutConfig.Modal))

	switch a.mode {
	case ModeAddBookmark, ModeEditBookmark:
		if a.mode == ModeAddBookmark {
			title.WriteString("Add Bookmark to " + a.store.CurrentFolder + "\n\n")
		} else {
			title.WriteString("Edit Bookmark\n\n")
		}
		content.WriteString("Label:\n")
		content.WriteString(a.modal.LabelInput.View())
		content.WriteString("\n\n")
		content.WriteString("URL:\n")
		content.WriteString(a.modal.URLInput.View())

	case ModeAddFolder:
		title.WriteString("Add Folder\n\n")
		content.WriteString("Name:\n")
		content.WriteString(a.modal.NameInput.View())

	case ModeRenameFolder:
		title.WriteString("Rename Folder " + a.modal.EditRef.folder + "\n\n")
		content.WriteString("Name:\n")
		content.WriteString(a.modal.NameInput.View())

	case ModeAddToDo:
		title.WriteString("Add To-do\n\n")
		content.WriteString(a.modal.NameInput.View())

	case ModeConfirm:
		title.WriteString(a.confirm.Prompt + "\n\n")
		content.WriteString(a.styles.Help.Render("This action cannot be undone.") + "\n\n")
		content.WriteString(a.renderHintsInline([]Hint{
			{Key: "y", Desc: "confirm"},
			{Key: "n", Desc: "cancel"},
		}))

	case ModeMove:
		content.WriteString(a.move.View())
	}

	modal := lipgloss.Place(
		a.width,
		a.height-3,
		lipgloss.Center,
		lipgloss.Center,
		modalStyle.Render(a.styles.Title.Render(title.String())+content.String()),
	)

	return lipgloss.JoinVertical(lipgloss.Left, modal, a.renderHelpBar())
}

// renderHelpOverlay renders every binding grouped in two columns.
func (a App) renderHelpOverlay() string {
	groups := a.keys.helpGroups()
	half := (len(groups) + 1) / 2
	keyWidth := a.layoutConfig.Modal.HelpKeyColumnWidth

	column := func(groups []helpGroup) string {
		var b strings.Builder
		for i, g := range groups {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(a.styles.Title.Render(g.title) + "\n")
			for _, binding := range g.bindings {
				h := binding.Help()
				b.WriteString(layout.PadRight(h.Key, keyWidth) + h.Desc + "\n")
			}
		}
		return b.String()
	}

	left := column(groups[:half])
	right := column(groups[half:]) + "\n" + a.styles.Help.Render("[?/esc] close")

	cols := lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right)

	// Top-left aligned, brutalist style
	return lipgloss.Place(
		a.width,
		a.height,
		lipgloss.Left,
		lipgloss.Top,
		lipgloss.NewStyle().Padding(1, 2).Render(cols),
	)
}
