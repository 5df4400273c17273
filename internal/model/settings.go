package model

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/structs"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mitchellh/mapstructure"
)

// WatchedSettingKeys trigger a full settings re-apply when changed by
// another process.
var WatchedSettingKeys = []string{"darkModeEnabled", "selectedBackground", "customBackground"}

// Errors returned by settings validation.
var (
	ErrUnknownSetting  = errors.New("unknown setting")
	ErrInvalidSetting  = errors.New("invalid setting value")
	ErrBackgroundImage = errors.New("Image is too big or format is wrong. Please try again with a BMP, PNG, JPEG, or GIF file under 3.8MB.")
)

// MaxBackgroundBytes is the largest accepted custom background image,
// the whole-byte floor of 3.67 MiB.
const MaxBackgroundBytes int64 = 3848273

// Settings are the user's display options. Every field is persisted under
// its own key; the structs/mapstructure tags carry that key.
type Settings struct {
	ButtonColor          string `structs:"buttonColor" mapstructure:"buttonColor" json:"buttonColor"`
	TextSize             string `structs:"textSize" mapstructure:"textSize" json:"textSize"`
	BookmarkTextSize     string `structs:"bookmarkTextSize" mapstructure:"bookmarkTextSize" json:"bookmarkTextSize"`
	OpenInNewTab         bool   `structs:"openInNewTab" mapstructure:"openInNewTab" json:"openInNewTab"`
	HideTextMuted        bool   `structs:"hideTextMuted" mapstructure:"hideTextMuted" json:"hideTextMuted"`
	HideToDoList         bool   `structs:"hideToDoList" mapstructure:"hideToDoList" json:"hideToDoList"`
	SelectedBackground   string `structs:"selectedBackground" mapstructure:"selectedBackground" json:"selectedBackground"`
	CustomBackground     string `structs:"customBackground" mapstructure:"customBackground" json:"customBackground"`
	ComplexFallback      bool   `structs:"complexFallback" mapstructure:"complexFallback" json:"complexFallback"`
	BookmarksPerRow      string `structs:"bookmarksPerRow" mapstructure:"bookmarksPerRow" json:"bookmarksPerRow"`
	ContentMargin        int    `structs:"contentMargin" mapstructure:"contentMargin" json:"contentMargin"`
	BookmarkSize         string `structs:"bookmarkSize" mapstructure:"bookmarkSize" json:"bookmarkSize"`
	ShowIndicators       bool   `structs:"showIndicators" mapstructure:"showIndicators" json:"showIndicators"`
	ShowURLTooltip       bool   `structs:"showUrlTooltip" mapstructure:"showUrlTooltip" json:"showUrlTooltip"`
	HideMoveButton       bool   `structs:"hideMoveButton" mapstructure:"hideMoveButton" json:"hideMoveButton"`
	SidebarWidth         int    `structs:"sidebarWidth" mapstructure:"sidebarWidth" json:"sidebarWidth"`
	SelectedTheme        string `structs:"selectedTheme" mapstructure:"selectedTheme" json:"selectedTheme"`
	DarkModeEnabled      bool   `structs:"darkModeEnabled" mapstructure:"darkModeEnabled" json:"darkModeEnabled"`
	EnableHoverAnimation bool   `structs:"enableHoverAnimation" mapstructure:"enableHoverAnimation" json:"enableHoverAnimation"`
	EnableCustomFilters  bool   `structs:"enableCustomFilters" mapstructure:"enableCustomFilters" json:"enableCustomFilters"`
}

// DefaultSettings returns the value of every option when nothing is stored.
func DefaultSettings() Settings {
	return Settings{
		ButtonColor:          "#db772a",
		TextSize:             "xs",
		BookmarkTextSize:     "small",
		OpenInNewTab:         true,
		SelectedBackground:   "default",
		ComplexFallback:      true,
		BookmarksPerRow:      "auto",
		ContentMargin:        32,
		BookmarkSize:         "medium",
		ShowIndicators:       true,
		ShowURLTooltip:       true,
		SelectedTheme:        "theme-default",
		EnableHoverAnimation: true,
	}
}

var settingEnums = map[string][]string{
	"textSize":           {"xs", "sm", "md", "lg", "xl"},
	"bookmarkTextSize":   {"extra-small", "small", "medium", "large"},
	"selectedBackground": {"default", "dark", "light", "custom"},
	"bookmarkSize":       {"minimal", "small", "medium", "large"},
	"selectedTheme":      {"theme-default", "theme-light", "theme-legacy"},
}

var textSizePx = map[string]int{"xs": 12, "sm": 14, "md": 16, "lg": 18, "xl": 20}

var bookmarkTextRem = map[string]float64{"extra-small": 0.5, "small": 0.75, "medium": 1, "large": 1.5}

var backgroundColors = map[string]string{"dark": "#000000", "light": "#ffffff", "default": "#f0f0f0"}

// Map returns the settings keyed by their persisted names.
func (s Settings) Map() map[string]any {
	return structs.Map(s)
}

// SettingKeys lists every persisted settings key in declaration order.
func SettingKeys() []string {
	fields := structs.Fields(Settings{})
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Tag("structs"))
	}
	return keys
}

// IsSettingKey reports whether key names a setting.
func IsSettingKey(key string) bool {
	for _, k := range SettingKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// DecodeSettings overlays raw values (as read back from storage, possibly
// strings or float64s) onto the defaults.
func DecodeSettings(raw map[string]any) (Settings, error) {
	s := DefaultSettings()
	if err := s.Apply(raw); err != nil {
		return DefaultSettings(), err
	}
	return s, nil
}

// Apply decodes raw values onto s. Nil values are skipped.
func (s *Settings) Apply(raw map[string]any) error {
	clean := make(map[string]any, len(raw))
	for k, v := range raw {
		if v != nil {
			clean[k] = v
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           s,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(clean); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSetting, err)
	}
	return nil
}

// Set assigns one setting from its string form after validating it.
func (s *Settings) Set(key, value string) error {
	if !IsSettingKey(key) {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	next := *s
	if err := next.Apply(map[string]any{key: value}); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*s = next
	return nil
}

// Get returns one setting by key.
func (s Settings) Get(key string) (any, error) {
	f, ok := fieldByTag(s, key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	return f.Value(), nil
}

func fieldByTag(s Settings, key string) (*structs.Field, bool) {
	for _, f := range structs.New(s).Fields() {
		if f.Tag("structs") == key {
			return f, true
		}
	}
	return nil, false
}

// Validate checks enum options, the colour and the per-row count.
func (s Settings) Validate() error {
	values := s.Map()
	for key, allowed := range settingEnums {
		v, _ := values[key].(string)
		if !contains(allowed, v) {
			return fmt.Errorf("%w: %s=%q", ErrInvalidSetting, key, v)
		}
	}
	if _, err := parseHex(s.ButtonColor); err != nil {
		return fmt.Errorf("%w: buttonColor=%q", ErrInvalidSetting, s.ButtonColor)
	}
	if _, err := s.Columns(); err != nil {
		return err
	}
	if s.ContentMargin < 0 || s.SidebarWidth < 0 {
		return fmt.Errorf("%w: negative size", ErrInvalidSetting)
	}
	return nil
}

// Columns returns the fixed number of bookmarks per row, or 0 for "auto".
func (s Settings) Columns() (int, error) {
	if s.BookmarksPerRow == "" || s.BookmarksPerRow == "auto" {
		return 0, nil
	}
	n, err := strconv.Atoi(s.BookmarksPerRow)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: bookmarksPerRow=%q", ErrInvalidSetting, s.BookmarksPerRow)
	}
	return n, nil
}

// TextSizePx maps the text size option to pixels.
func (s Settings) TextSizePx() int {
	if px, ok := textSizePx[s.TextSize]; ok {
		return px
	}
	return textSizePx["xs"]
}

// BookmarkTextRem maps the bookmark text size option to rem.
func (s Settings) BookmarkTextRem() float64 {
	if rem, ok := bookmarkTextRem[s.BookmarkTextSize]; ok {
		return rem
	}
	return bookmarkTextRem["small"]
}

// BackgroundColor returns the solid colour for the selected background.
// Custom backgrounds have none.
func (s Settings) BackgroundColor() string {
	if s.DarkModeEnabled && s.SelectedBackground == "default" {
		return backgroundColors["dark"]
	}
	return backgroundColors[s.SelectedBackground]
}

// ButtonHoverColor is the button colour darkened for hover states.
func (s Settings) ButtonHoverColor() string {
	c, err := AdjustColor(s.ButtonColor, -20)
	if err != nil {
		return s.ButtonColor
	}
	return c
}

// AdjustColor shifts every channel of hex by round(2.55*percent), clamped to
// 0..255. Short #RGB input is expanded. The result is uppercase #RRGGBB.
func AdjustColor(hex string, percent float64) (string, error) {
	c, err := parseHex(hex)
	if err != nil {
		return "", err
	}

	amt := int(math.Round(2.55 * percent))
	cr, cg, cb := c.RGB255()
	r := clamp(int(cr)+amt, 0, 255)
	g := clamp(int(cg)+amt, 0, 255)
	b := clamp(int(cb)+amt, 0, 255)

	return fmt.Sprintf("#%02X%02X%02X", r, g, b), nil
}

// parseHex accepts #RGB and #RRGGBB, with or without the leading #.
func parseHex(hex string) (colorful.Color, error) {
	h := "#" + strings.TrimPrefix(hex, "#")
	if len(h) != 4 && len(h) != 7 {
		return colorful.Color{}, fmt.Errorf("%w: colour %q", ErrInvalidSetting, hex)
	}
	c, err := colorful.Hex(h)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w: colour %q", ErrInvalidSetting, hex)
	}
	return c, nil
}

// ValidateBackgroundImage checks a custom background upload by size and
// file extension.
func ValidateBackgroundImage(name string, size int64) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch ext {
	case "jpeg", "jpg", "png", "gif", "bmp":
	default:
		return ErrBackgroundImage
	}
	if size > MaxBackgroundBytes {
		return ErrBackgroundImage
	}
	return nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
