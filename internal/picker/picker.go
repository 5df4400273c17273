package picker

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/homescreen/internal/search"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Underline(true)

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true).
			MarginBottom(1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// Item is one choice in the list.
type Item struct {
	Title  string
	Detail string
}

type items []Item

func (it items) String(i int) string { return it[i].Title }
func (it items) Len() int            { return len(it) }

// row is a visible item with the title runes that matched the filter.
type row struct {
	index   int
	matched []int
}

// Picker is a small list chooser. It runs standalone (quitting the
// program on Enter or Esc) or embedded in another model.
type Picker struct {
	title      string
	items      items
	rows       []row
	filter     string
	filterable bool
	embedded   bool
	cursor     int
	selected   bool
	cancelled  bool
	maxVisible int // 0 shows every row
	width      int
	height     int
}

// New creates a Picker over items. j/k move the cursor.
func New(title string, list []Item) Picker {
	p := Picker{
		title:  title,
		items:  list,
		width:  80,
		height: 24,
	}
	p.refilter()
	return p
}

// NewFiltered creates a Picker whose typed runes narrow the list by fuzzy
// matching on the item titles.
func NewFiltered(title string, list []Item) Picker {
	p := New(title, list)
	p.filterable = true
	return p
}

// ForResults lists search results, one row per bookmark.
func ForResults(results []search.Result, query string) Picker {
	list := make([]Item, len(results))
	for i, r := range results {
		list[i] = Item{
			Title:  r.Bookmark.Label,
			Detail: fmt.Sprintf("%s  [%s]", r.Bookmark.URL, r.FolderName),
		}
	}
	return New(fmt.Sprintf("Search: %s (%d results)", query, len(results)), list)
}

// ForFolders lists folder names other than exclude, narrowed as the user
// types.
func ForFolders(names []string, exclude string) Picker {
	list := make([]Item, 0, len(names))
	for _, name := range names {
		if name != exclude {
			list = append(list, Item{Title: name})
		}
	}
	return NewFiltered("Move to folder", list)
}

// WithMaxVisible returns a copy that shows at most n rows, scrolling to
// keep the cursor in view.
func (p Picker) WithMaxVisible(n int) Picker {
	p.maxVisible = n
	return p
}

// Embedded returns a copy that reports completion through Done instead of
// quitting the program.
func (p Picker) Embedded() Picker {
	p.embedded = true
	return p
}

func (p *Picker) refilter() {
	rows := make([]row, 0, len(p.items))
	if p.filter == "" {
		for i := range p.items {
			rows = append(rows, row{index: i})
		}
	} else {
		for _, m := range fuzzy.FindFrom(p.filter, p.items) {
			rows = append(rows, row{index: m.Index, matched: m.MatchedIndexes})
		}
	}
	p.rows = rows
	if p.cursor >= len(p.rows) {
		p.cursor = max(0, len(p.rows)-1)
	}
}

func (p Picker) finish() (tea.Model, tea.Cmd) {
	if p.embedded {
		return p, nil
	}
	return p, tea.Quit
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			p.cancelled = true
			return p.finish()

		case tea.KeyEnter:
			if len(p.rows) == 0 {
				return p, nil
			}
			p.selected = true
			return p.finish()

		case tea.KeyDown, tea.KeyCtrlN:
			if p.cursor < len(p.rows)-1 {
				p.cursor++
			}
			return p, nil

		case tea.KeyUp, tea.KeyCtrlP:
			if p.cursor > 0 {
				p.cursor--
			}
			return p, nil

		case tea.KeyBackspace:
			if p.filterable && p.filter != "" {
				r := []rune(p.filter)
				p.filter = string(r[:len(r)-1])
				p.refilter()
			}
			return p, nil
		}

		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			if p.filterable {
				text := string(msg.Runes)
				if msg.Type == tea.KeySpace {
					text = " "
				}
				p.filter += text
				p.cursor = 0
				p.refilter()
				return p, nil
			}

			switch string(msg.Runes) {
			case "j":
				if p.cursor < len(p.rows)-1 {
					p.cursor++
				}
			case "k":
				if p.cursor > 0 {
					p.cursor--
				}
			case "q":
				p.cancelled = true
				return p.finish()
			}
		}
	}

	return p, nil
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(p.title))
	b.WriteString("\n")
	if p.filterable {
		b.WriteString("> " + p.filter + "█\n")
	}
	b.WriteString("\n")

	if len(p.rows) == 0 {
		b.WriteString(detailStyle.Render("  No matches"))
		b.WriteString("\n")
	}

	start, end := 0, len(p.rows)
	if p.maxVisible > 0 {
		start, end = window(p.maxVisible, p.cursor, len(p.rows))
	}

	for i := start; i < end; i++ {
		r := p.rows[i]
		cursor := "  "
		style := normalStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}

		item := p.items[r.index]
		b.WriteString(cursor + highlight(item.Title, r.matched, style) + "\n")
		if item.Detail != "" {
			b.WriteString("   " + detailStyle.Render(item.Detail) + "\n")
		}
	}

	b.WriteString("\n")
	help := "j/k: move  Enter: select  q/Esc: cancel"
	if p.filterable {
		help = "type to filter  ↑/↓: move  Enter: select  Esc: cancel"
	}
	b.WriteString(footerStyle.Render(help))

	return b.String()
}

// highlight renders title with the fuzzy-matched runes picked out.
func highlight(title string, matched []int, style lipgloss.Style) string {
	if len(matched) == 0 {
		return style.Render(title)
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}

	var b strings.Builder
	for i, r := range title {
		if hit[i] {
			b.WriteString(matchStyle.Render(string(r)))
		} else {
			b.WriteString(style.Render(string(r)))
		}
	}
	return b.String()
}

// window returns the rows [start, end) to draw so that cursor stays on
// the last visible line once it scrolls past size.
func window(size, cursor, total int) (start, end int) {
	if total <= size {
		return 0, total
	}
	if cursor >= size {
		start = cursor - size + 1
	}
	return start, min(start+size, total)
}

// Filter returns the typed filter text.
func (p Picker) Filter() string {
	return p.filter
}

// Visible returns the items currently shown, in display order.
func (p Picker) Visible() []Item {
	out := make([]Item, len(p.rows))
	for i, r := range p.rows {
		out[i] = p.items[r.index]
	}
	return out
}

// Selected returns the index (into the original list) of the chosen item.
func (p Picker) Selected() (int, bool) {
	if p.cancelled || !p.selected || p.cursor >= len(p.rows) {
		return -1, false
	}
	return p.rows[p.cursor].index, true
}

// SelectedItem returns the chosen item.
func (p Picker) SelectedItem() (Item, bool) {
	i, ok := p.Selected()
	if !ok {
		return Item{}, false
	}
	return p.items[i], true
}

// Done reports whether the user picked an item or cancelled.
func (p Picker) Done() bool {
	return p.selected || p.cancelled
}

// Cancelled returns true if the user cancelled the selection.
func (p Picker) Cancelled() bool {
	return p.cancelled
}
