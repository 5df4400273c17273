package layout

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Strip removes escape sequences, leaving the text a user sees.
func Strip(s string) string {
	return ansi.Strip(s)
}

// Width is the number of terminal cells s occupies. Escape sequences take
// none and wide runes take two.
func Width(s string) int {
	return ansi.StringWidth(s)
}

// TruncateText fits text into maxWidth cells, ending in cfg.Ellipsis when
// cut. It reports whether anything was cut.
func TruncateText(text string, maxWidth int, cfg TextConfig) (string, bool) {
	if maxWidth <= 0 {
		return "", true
	}
	if Width(text) <= maxWidth {
		return text, false
	}
	if maxWidth <= Width(cfg.Ellipsis) {
		return ansi.Truncate(cfg.Ellipsis, maxWidth, ""), true
	}
	return ansi.Truncate(text, maxWidth, cfg.Ellipsis), true
}

// TruncateWithPrefix fits prefix+text into maxWidth, cutting text and
// keeping the prefix (a cursor or pin mark) whole.
func TruncateWithPrefix(text string, maxWidth int, prefix string, cfg TextConfig) (string, bool) {
	if maxWidth <= 0 {
		return "", true
	}

	prefixWidth := Width(prefix)
	if prefixWidth >= maxWidth {
		return TruncateText(prefix+text, maxWidth, cfg)
	}

	rest, truncated := TruncateText(text, maxWidth-prefixWidth, cfg)
	return prefix + rest, truncated
}

// PadRight pads s with spaces to width cells.
func PadRight(s string, width int) string {
	n := Width(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
