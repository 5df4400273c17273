package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Pane  PaneConfig
	Grid  GridConfig
	Modal ModalConfig
	Input InputConfig
	Text  TextConfig
}

// PaneConfig holds pane dimension configuration.
type PaneConfig struct {
	// HeightReduction is subtracted from terminal height for pane content.
	// Accounts for: app padding (1) + header (1) + pane borders (2) + status bar (3) = 7
	HeightReduction int

	// MinHeight is the minimum pane height.
	MinHeight int

	// SidebarWidth is the folder pane width when the sidebarWidth setting
	// is unset.
	SidebarWidth int

	// MinSidebarWidth and MaxSidebarWidth clamp a configured sidebar width.
	MinSidebarWidth int
	MaxSidebarWidth int

	// ToDoWidth is the width of the to-do pane.
	ToDoWidth int

	// MinGridWidth is the narrowest bookmark grid before the to-do pane
	// is dropped.
	MinGridWidth int

	// BorderWidth is the horizontal space a pane's border and padding take.
	BorderWidth int

	// ContentPadding is subtracted from pane width for item rendering.
	ContentPadding int

	// PinnedHeaderReduction accounts for header lines above the folder list.
	PinnedHeaderReduction int
}

// GridConfig sizes bookmark grid cells per bookmarkSize setting.
type GridConfig struct {
	CellWidths map[string]int
	// CellGap is the blank space between cells on a row.
	CellGap int
	// DefaultSize is used for unknown bookmarkSize values.
	DefaultSize string
}

// ModalConfig holds modal dialog configuration.
type ModalConfig struct {
	// DefaultWidthPercent is the standard modal width as percentage of terminal width.
	DefaultWidthPercent int

	// MinWidth is the minimum modal width in characters.
	MinWidth int

	// MaxWidth is the maximum modal width in characters.
	MaxWidth int

	// MoveMaxVisible: max folders shown in the move picker.
	MoveMaxVisible int

	// HelpKeyColumnWidth: width of the key column in the help overlay.
	HelpKeyColumnWidth int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	// Character limits
	LabelCharLimit  int
	URLCharLimit    int
	SearchCharLimit int
	ToDoCharLimit   int

	// Display widths
	StandardWidth int // Used for label, URL, folder name, to-do
	SearchWidth   int // Used for the inline search box
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Pane: PaneConfig{
			HeightReduction:       7, // app padding (1) + header (1) + pane borders (2) + status bar (3)
			MinHeight:             5,
			SidebarWidth:          24,
			MinSidebarWidth:       16,
			MaxSidebarWidth:       48,
			ToDoWidth:             30,
			MinGridWidth:          30,
			BorderWidth:           4,
			ContentPadding:        4,
			PinnedHeaderReduction: 2,
		},
		Grid: GridConfig{
			CellWidths: map[string]int{
				"minimal": 14,
				"small":   18,
				"medium":  24,
				"large":   32,
			},
			CellGap:     1,
			DefaultSize: "medium",
		},
		Modal: ModalConfig{
			DefaultWidthPercent: 40,
			MinWidth:            50,
			MaxWidth:            80,
			MoveMaxVisible:      8,
			HelpKeyColumnWidth:  12,
		},
		Input: InputConfig{
			LabelCharLimit:  200,
			URLCharLimit:    2000,
			SearchCharLimit: 100,
			ToDoCharLimit:   500,
			StandardWidth:   40,
			SearchWidth:     30,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
