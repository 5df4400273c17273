package layout

// ModalWidth sizes the add/edit/rename dialogs: DefaultWidthPercent of the
// terminal, clamped to MinWidth..MaxWidth, and never wider than the
// terminal minus the app padding.
func ModalWidth(terminalWidth int, cfg ModalConfig) int {
	width := terminalWidth * cfg.DefaultWidthPercent / 100
	width = min(max(width, cfg.MinWidth), cfg.MaxWidth, terminalWidth-4)
	return max(width, 1)
}
