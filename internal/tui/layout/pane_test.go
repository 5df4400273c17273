package layout

import "testing"

func TestCalculatePaneHeight(t *testing.T) {
	cfg := DefaultConfig().Pane

	tests := []struct {
		name           string
		terminalHeight int
		want           int
	}{
		{"normal terminal", 24, 17},               // 24 - 7 = 17
		{"large terminal", 50, 43},                // 50 - 7 = 43
		{"small terminal enforces min", 8, 5},     // 8 - 7 = 1, min is 5
		{"exactly at reduction", 7, 5},            // 7 - 7 = 0, min is 5
		{"terminal smaller than reduction", 4, 5}, // negative clamps to min
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePaneHeight(tt.terminalHeight, cfg)
			if got != tt.want {
				t.Errorf("CalculatePaneHeight(%d) = %d, want %d",
					tt.terminalHeight, got, tt.want)
			}
		})
	}
}

func TestCalculatePanes(t *testing.T) {
	cfg := DefaultConfig().Pane

	tests := []struct {
		name          string
		terminalWidth int
		sidebar       int
		showToDo      bool
		want          PaneLayout
	}{
		{"wide with to-do", 120, 0, true, PaneLayout{24, 62, 30}}, // 116 - 24 - 30 = 62
		{"to-do dropped when grid too narrow", 80, 0, true, PaneLayout{24, 52, 0}},
		{"to-do hidden", 120, 0, false, PaneLayout{24, 92, 0}},
		{"sidebar setting clamps to min", 120, 10, true, PaneLayout{16, 70, 30}},
		{"sidebar setting clamps to max", 120, 100, true, PaneLayout{48, 38, 30}},
		{"tiny terminal keeps min grid", 40, 0, true, PaneLayout{24, 30, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePanes(tt.terminalWidth, tt.sidebar, tt.showToDo, cfg)
			if got != tt.want {
				t.Errorf("CalculatePanes(%d, %d, %v) = %+v, want %+v",
					tt.terminalWidth, tt.sidebar, tt.showToDo, got, tt.want)
			}
		})
	}
}

func TestCalculateGridColumns(t *testing.T) {
	cfg := DefaultConfig().Grid

	tests := []struct {
		name         string
		contentWidth int
		fixed        int
		size         string
		want         int
	}{
		{"medium cells", 100, 0, "medium", 4}, // 101 / 25
		{"minimal cells", 100, 0, "minimal", 6},
		{"large cells", 100, 0, "large", 3},
		{"fixed count wins", 100, 3, "medium", 3},
		{"unknown size uses default", 100, 0, "huge", 4},
		{"too narrow still one column", 10, 0, "medium", 1},
		{"gap counted once per cell", 49, 0, "medium", 2}, // 24 + 1 + 24
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateGridColumns(tt.contentWidth, tt.fixed, tt.size, cfg)
			if got != tt.want {
				t.Errorf("CalculateGridColumns(%d, %d, %q) = %d, want %d",
					tt.contentWidth, tt.fixed, tt.size, got, tt.want)
			}
		})
	}
}

func TestCalculateCellWidth(t *testing.T) {
	cfg := DefaultConfig().Grid

	tests := []struct {
		name         string
		contentWidth int
		cols         int
		want         int
	}{
		{"four columns", 100, 4, 24}, // (100 - 3) / 4
		{"two columns", 49, 2, 24},
		{"zero columns treated as one", 10, 0, 10},
		{"clamps to 1", 2, 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateCellWidth(tt.contentWidth, tt.cols, cfg)
			if got != tt.want {
				t.Errorf("CalculateCellWidth(%d, %d) = %d, want %d",
					tt.contentWidth, tt.cols, got, tt.want)
			}
		})
	}
}

func TestCalculateItemWidth(t *testing.T) {
	cfg := DefaultConfig().Pane

	tests := []struct {
		name      string
		paneWidth int
		want      int
	}{
		{"normal pane", 24, 20}, // 24 - 4 = 20
		{"wide pane", 40, 36},   // 40 - 4 = 36
		{"narrow pane", 15, 11}, // 15 - 4 = 11
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateItemWidth(tt.paneWidth, cfg)
			if got != tt.want {
				t.Errorf("CalculateItemWidth(%d) = %d, want %d",
					tt.paneWidth, got, tt.want)
			}
		})
	}
}

func TestCalculateVisibleHeight(t *testing.T) {
	tests := []struct {
		name        string
		paneHeight  int
		headerLines int
		want        int
	}{
		{"normal with header", 18, 4, 14},
		{"no header", 18, 0, 18},
		{"header equals height", 10, 10, 1}, // clamps to 1
		{"header exceeds height", 5, 10, 1}, // clamps to 1
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateVisibleHeight(tt.paneHeight, tt.headerLines)
			if got != tt.want {
				t.Errorf("CalculateVisibleHeight(%d, %d) = %d, want %d",
					tt.paneHeight, tt.headerLines, got, tt.want)
			}
		})
	}
}

func TestCalculateViewportOffset(t *testing.T) {
	tests := []struct {
		name           string
		selected       int
		total          int
		viewportHeight int
		want           int
	}{
		{"no scroll needed", 2, 5, 10, 0},
		{"selection near start", 1, 20, 10, 0},
		{"selection in middle", 10, 20, 10, 5}, // 10 - 10/2 = 5
		{"selection near end", 18, 20, 10, 10}, // max offset = 20-10 = 10
		{"selection at end", 19, 20, 10, 10},
		{"all items visible", 5, 8, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateViewportOffset(tt.selected, tt.total, tt.viewportHeight)
			if got != tt.want {
				t.Errorf("CalculateViewportOffset(%d, %d, %d) = %d, want %d",
					tt.selected, tt.total, tt.viewportHeight, got, tt.want)
			}
		})
	}
}
