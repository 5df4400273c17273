package tui

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/nikbrunner/homescreen/internal/tui/layout"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeAddBookmark
	ModeEditBookmark
	ModeAddFolder
	ModeRenameFolder
	ModeAddToDo
	ModeConfirm
	ModeMove
	ModeHelp
)

// Focus is the pane receiving navigation keys.
type Focus int

const (
	FocusBookmarks Focus = iota
	FocusFolders
	FocusToDo
)

// MessageType represents the type of status message.
type MessageType int

const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageWarning
	MessageError
)

// ModalState holds the inputs of the add/edit dialogs.
type ModalState struct {
	LabelInput textinput.Model
	URLInput   textinput.Model
	NameInput  textinput.Model // Folder name and to-do text
	FocusURL   bool            // URL input has focus in the bookmark form
	EditRef    editTarget      // Bookmark or folder being edited
}

// editTarget remembers what an edit dialog will change.
type editTarget struct {
	folder string
	url    string
	label  string
}

// NewModalState creates a ModalState with initialized inputs.
func NewModalState(cfg layout.LayoutConfig) ModalState {
	label := textinput.New()
	label.Placeholder = "Label"
	label.CharLimit = cfg.Input.LabelCharLimit
	label.Width = cfg.Input.StandardWidth

	url := textinput.New()
	url.Placeholder = "https://..."
	url.CharLimit = cfg.Input.URLCharLimit
	url.Width = cfg.Input.StandardWidth

	name := textinput.New()
	name.CharLimit = cfg.Input.ToDoCharLimit
	name.Width = cfg.Input.StandardWidth

	return ModalState{
		LabelInput: label,
		URLInput:   url,
		NameInput:  name,
	}
}

// Reset clears every input for a new dialog.
func (m *ModalState) Reset() {
	m.LabelInput.Reset()
	m.URLInput.Reset()
	m.NameInput.Reset()
	m.LabelInput.Blur()
	m.URLInput.Blur()
	m.NameInput.Blur()
	m.FocusURL = false
	m.EditRef = editTarget{}
}

// ConfirmState holds a pending y/n question.
type ConfirmState struct {
	Prompt string
	// Action runs on "y". A nil error shows Done as a success message.
	Action func(a *App) error
	Done   string
}
