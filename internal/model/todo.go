package model

import (
	"fmt"
	"strings"

	"github.com/nikbrunner/homescreen/internal/reorder"
)

// ToDoDisplayLimit is the number of runes shown before a to-do is elided.
const ToDoDisplayLimit = 75

// ToDoItem is one entry of the to-do list.
type ToDoItem struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// Display returns the text cut to ToDoDisplayLimit runes.
func (t ToDoItem) Display() string {
	r := []rune(t.Text)
	if len(r) <= ToDoDisplayLimit {
		return t.Text
	}
	return string(r[:ToDoDisplayLimit]) + "..."
}

// AddToDo appends an unchecked item. Blank text is ignored.
func (s *Store) AddToDo(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	s.ToDoList = append(s.ToDoList, ToDoItem{Text: text})
	return true
}

// ToggleToDo flips the checked state of item i.
func (s *Store) ToggleToDo(i int) error {
	if i < 0 || i >= len(s.ToDoList) {
		return fmt.Errorf("to-do %d: %w", i, reorder.ErrIndexOutOfRange)
	}
	s.ToDoList[i].Checked = !s.ToDoList[i].Checked
	return nil
}

// DeleteToDo removes item i.
func (s *Store) DeleteToDo(i int) error {
	if i < 0 || i >= len(s.ToDoList) {
		return fmt.Errorf("to-do %d: %w", i, reorder.ErrIndexOutOfRange)
	}
	s.ToDoList = append(s.ToDoList[:i], s.ToDoList[i+1:]...)
	return nil
}

// MoveToDo reorders the to-do list.
func (s *Store) MoveToDo(from, to int) error {
	return reorderIn(&s.ToDoList, func(l *reorder.List[ToDoItem]) error {
		return l.Move(from, to)
	})
}

// DropToDo applies a pointer drop in the to-do list.
func (s *Store) DropToDo(dragged, target int, below bool) error {
	return reorderIn(&s.ToDoList, func(l *reorder.List[ToDoItem]) error {
		return l.Drop(dragged, target, below)
	})
}

// ClearToDoList empties the list, keeping it for RestoreToDoList.
func (s *Store) ClearToDoList() {
	if len(s.ToDoList) > 0 {
		s.LastCleared = s.ToDoList
	}
	s.ToDoList = []ToDoItem{}
}

// RestoreToDoList brings back the last cleared list.
func (s *Store) RestoreToDoList() error {
	if len(s.LastCleared) == 0 {
		return ErrNothingToRestore
	}
	s.ToDoList = s.LastCleared
	s.LastCleared = nil
	return nil
}
