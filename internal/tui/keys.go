package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application.
type KeyMap struct {
	Up            key.Binding
	Down          key.Binding
	Left          key.Binding
	Right         key.Binding
	Top           key.Binding
	Bottom        key.Binding
	NextPane      key.Binding
	Select        key.Binding
	Open          key.Binding
	Favorite      key.Binding
	Read          key.Binding
	FilterStarred key.Binding
	FilterPlain   key.Binding
	FilterUnread  key.Binding
	FilterRead    key.Binding
	ClearFilter   key.Binding
	Search        key.Binding
	AllFolders    key.Binding
	Add           key.Binding
	Edit          key.Binding
	Delete        key.Binding
	AddFolder     key.Binding
	RenameFolder  key.Binding
	DeleteFolder  key.Binding
	Pin           key.Binding
	MoveDown      key.Binding
	MoveUp        key.Binding
	Move          key.Binding
	ToDo          key.Binding
	ToggleToDo    key.Binding
	ClearToDo     key.Binding
	RestoreToDo   key.Binding
	YankURL       key.Binding
	Help          key.Binding
	Quit          key.Binding
}

// DefaultKeyMap returns the default vim-style key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "move down"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/left", "move left"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/right", "move right"),
		),
		Top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("gg", "go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "go to bottom"),
		),
		NextPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next pane"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select/open"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open url"),
		),
		Favorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "toggle favorite"),
		),
		Read: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "toggle read"),
		),
		FilterStarred: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "favorites"),
		),
		FilterPlain: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "not favorites"),
		),
		FilterUnread: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "unread"),
		),
		FilterRead: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "read"),
		),
		ClearFilter: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "clear filter"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		AllFolders: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "all folders"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		AddFolder: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "new folder"),
		),
		RenameFolder: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "rename folder"),
		),
		DeleteFolder: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete folder"),
		),
		Pin: key.NewBinding(
			key.WithKeys("*"),
			key.WithHelp("*", "pin/unpin"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "move item down"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "move item up"),
		),
		Move: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "move to folder"),
		),
		ToDo: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "to-do list"),
		),
		ToggleToDo: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "check to-do"),
		),
		ClearToDo: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear to-dos"),
		),
		RestoreToDo: key.NewBinding(
			key.WithKeys("U"),
			key.WithHelp("U", "restore to-dos"),
		),
		YankURL: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", "copy URL"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// helpGroups returns the bindings shown in the help overlay, by section.
func (k KeyMap) helpGroups() []helpGroup {
	return []helpGroup{
		{"nav", []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Top, k.Bottom, k.NextPane, k.Select}},
		{"filter", []key.Binding{k.FilterStarred, k.FilterPlain, k.FilterUnread, k.FilterRead, k.ClearFilter, k.Search, k.AllFolders}},
		{"bookmark", []key.Binding{k.Open, k.Favorite, k.Read, k.Add, k.Edit, k.Delete, k.Move, k.YankURL}},
		{"folder", []key.Binding{k.AddFolder, k.RenameFolder, k.DeleteFolder, k.Pin, k.MoveUp, k.MoveDown}},
		{"to-do", []key.Binding{k.ToDo, k.ToggleToDo, k.ClearToDo, k.RestoreToDo}},
		{"app", []key.Binding{k.Help, k.Quit}},
	}
}

type helpGroup struct {
	title    string
	bindings []key.Binding
}
