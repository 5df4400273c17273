package layout

// PaneLayout holds the outer widths of the three panes. ToDoWidth is zero
// when the to-do pane is hidden.
type PaneLayout struct {
	SidebarWidth int
	GridWidth    int
	ToDoWidth    int
}

// CalculatePaneHeight computes the content height for panes.
// Returns at least MinHeight.
func CalculatePaneHeight(terminalHeight int, cfg PaneConfig) int {
	height := terminalHeight - cfg.HeightReduction
	if height < cfg.MinHeight {
		return cfg.MinHeight
	}
	return height
}

// CalculatePanes splits the terminal width between the folder sidebar,
// the bookmark grid and the to-do pane.
// sidebarSetting: the sidebarWidth setting, 0 for the default
// showToDo: whether the to-do pane is wanted
func CalculatePanes(terminalWidth, sidebarSetting int, showToDo bool, cfg PaneConfig) PaneLayout {
	sidebar := cfg.SidebarWidth
	if sidebarSetting > 0 {
		sidebar = min(max(sidebarSetting, cfg.MinSidebarWidth), cfg.MaxSidebarWidth)
	}

	// app padding left + right
	available := terminalWidth - 4

	todo := 0
	if showToDo && available-sidebar-cfg.ToDoWidth >= cfg.MinGridWidth {
		todo = cfg.ToDoWidth
	}

	grid := available - sidebar - todo
	if grid < cfg.MinGridWidth {
		grid = cfg.MinGridWidth
	}

	return PaneLayout{
		SidebarWidth: sidebar,
		GridWidth:    grid,
		ToDoWidth:    todo,
	}
}

// CalculateItemWidth computes the width available for item content.
func CalculateItemWidth(paneWidth int, cfg PaneConfig) int {
	return paneWidth - cfg.ContentPadding
}

// CalculateVisibleHeight computes the visible item count in a pane.
func CalculateVisibleHeight(paneHeight, headerLines int) int {
	height := paneHeight - headerLines
	if height < 1 {
		return 1
	}
	return height
}

// CalculateGridColumns returns how many bookmark cells fit on a row.
// A positive fixed count (the bookmarksPerRow setting) wins.
func CalculateGridColumns(contentWidth, fixed int, size string, cfg GridConfig) int {
	if fixed > 0 {
		return fixed
	}
	cell, ok := cfg.CellWidths[size]
	if !ok {
		cell = cfg.CellWidths[cfg.DefaultSize]
	}
	if cell <= 0 {
		return 1
	}
	cols := (contentWidth + cfg.CellGap) / (cell + cfg.CellGap)
	if cols < 1 {
		return 1
	}
	return cols
}

// CalculateCellWidth divides contentWidth into cols cells separated by gap.
func CalculateCellWidth(contentWidth, cols int, cfg GridConfig) int {
	if cols < 1 {
		cols = 1
	}
	width := (contentWidth - cfg.CellGap*(cols-1)) / cols
	if width < 1 {
		return 1
	}
	return width
}

// CalculateViewportOffset calculates the scroll offset needed to keep the
// selected row visible within the viewport.
func CalculateViewportOffset(selected, total, viewportHeight int) int {
	if total <= viewportHeight {
		return 0
	}

	// Keep selection roughly centered, but clamp to valid range
	offset := selected - viewportHeight/2
	if offset < 0 {
		offset = 0
	}

	maxOffset := total - viewportHeight
	if offset > maxOffset {
		offset = maxOffset
	}

	return offset
}
