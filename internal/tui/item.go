package tui

import (
	"github.com/nikbrunner/homescreen/internal/model"
	"github.com/nikbrunner/homescreen/internal/search"
)

// Item is one bookmark cell of the grid.
type Item struct {
	search.Result
}

// Title returns the display label.
func (i Item) Title() string {
	if i.Bookmark.Label == "" {
		return model.NoLabel
	}
	return i.Bookmark.Label
}

// URL returns the bookmark URL.
func (i Item) URL() string {
	return i.Bookmark.URL
}

// Indicators returns the favorite and read markers, or "" when neither
// flag is set.
func (i Item) Indicators() string {
	var out string
	if i.Bookmark.IsFavorite() {
		out += "★"
	}
	if i.Bookmark.IsRead() {
		out += "✓"
	}
	return out
}

// itemsFrom wraps search results, dropping entries without a URL.
func itemsFrom(results []search.Result) []Item {
	items := make([]Item, 0, len(results))
	for _, r := range results {
		if r.Bookmark.URL == "" {
			continue
		}
		items = append(items, Item{Result: r})
	}
	return items
}
