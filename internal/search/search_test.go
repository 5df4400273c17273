package search

import (
	"errors"
	"testing"

	"github.com/nikbrunner/homescreen/internal/model"
)

func fixture() []model.Folder {
	return []model.Folder{
		{Name: "Dev", Bookmarks: []model.Bookmark{
			{Label: "GitHub", URL: "https://github.com", Flags: 1},
			{Label: "Go", URL: "https://go.dev", Flags: 2},
			{Label: "MDN", URL: "https://developer.mozilla.org", Flags: 3, FilterMask: 1 << 4},
		}},
		{Name: "News", Bookmarks: []model.Bookmark{
			{Label: "Hacker News", URL: "https://news.ycombinator.com"},
			{Label: "Lobsters", URL: "https://lobste.rs", Flags: 1},
		}},
	}
}

func labels(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Bookmark.Label
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRun_Modes(t *testing.T) {
	tests := []struct {
		mode Mode
		want []string
	}{
		{ModeNone, []string{"GitHub", "Go", "MDN"}},
		{ModeStarred, []string{"GitHub", "MDN"}},
		{ModeNotStarred, []string{"Go"}},
		{ModeUnread, []string{"GitHub"}},
		{ModeRead, []string{"Go", "MDN"}},
	}

	for _, tt := range tests {
		t.Run(tt.mode.Label(), func(t *testing.T) {
			got := labels(Run(fixture(), "Dev", Query{Mode: tt.mode}))
			if !equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRun_TextSearchesAllFolders(t *testing.T) {
	results := Run(fixture(), "Dev", Query{Text: "  NEWS "})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].FolderName != "News" || results[0].Index != 0 {
		t.Errorf("unexpected result %+v", results[0])
	}
}

func TestRun_TextMatchesURL(t *testing.T) {
	got := labels(Run(fixture(), "Dev", Query{Text: "lobste.rs"}))
	if !equal(got, []string{"Lobsters"}) {
		t.Errorf("got %v", got)
	}
}

func TestRun_AllFoldersWithMode(t *testing.T) {
	got := labels(Run(fixture(), "Dev", Query{Mode: ModeStarred, AllFolders: true}))
	want := []string{"GitHub", "MDN", "Lobsters"}
	if !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRun_CustomFilter(t *testing.T) {
	id := 4
	got := labels(Run(fixture(), "Dev", Query{CustomFilter: &id}))
	if !equal(got, []string{"MDN"}) {
		t.Errorf("got %v", got)
	}
}

func TestRun_MissingFolder(t *testing.T) {
	if got := Run(fixture(), "Nope", Query{}); len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"", ModeNone},
		{"starred", ModeStarred},
		{"notstarred", ModeNotStarred},
		{"eye", ModeUnread},
		{"unread", ModeUnread},
		{"book", ModeRead},
		{"READ", ModeRead},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v", tt.in, got, err)
		}
	}

	if _, err := ParseMode("pinned"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
}

func TestMode_Toggle(t *testing.T) {
	if got := ModeRead.Toggle(ModeRead); got != ModeNone {
		t.Errorf("toggling active filter should clear it, got %v", got)
	}
	if got := ModeRead.Toggle(ModeStarred); got != ModeRead {
		t.Errorf("got %v, want read", got)
	}
}
