// Package reorder implements the index arithmetic shared by every
// reorderable list: bookmarks in a folder, folders, pinned folders and
// to-do items.
package reorder

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned when an origin or target index does not
// address the list.
var ErrIndexOutOfRange = errors.New("index out of range")

// DropIndex converts a drop onto the item at target into the index the
// dragged item ends up at. below reports whether the pointer was past the
// target's vertical midpoint.
//
// Removing the dragged item first shortens the list, so a drag from above
// the target lands one slot earlier than the raw position.
func DropIndex(dragged, target int, below bool) int {
	n := target
	if below {
		n = target + 1
	}
	if dragged < target {
		n--
	}
	return n
}

// Move returns items with the element at from relocated to index to. The
// input slice is not modified.
func Move[T any](items []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(items) {
		return nil, fmt.Errorf("move from %d in list of %d: %w", from, len(items), ErrIndexOutOfRange)
	}
	if to < 0 || to >= len(items) {
		return nil, fmt.Errorf("move to %d in list of %d: %w", to, len(items), ErrIndexOutOfRange)
	}

	out := make([]T, 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)

	moved := items[from]
	out = append(out, moved)
	copy(out[to+1:], out[to:len(out)-1])
	out[to] = moved

	return out, nil
}

// Drop moves dragged to the slot implied by dropping it on target.
func Drop[T any](items []T, dragged, target int, below bool) ([]T, error) {
	if target < 0 || target >= len(items) {
		return nil, fmt.Errorf("drop on %d in list of %d: %w", target, len(items), ErrIndexOutOfRange)
	}
	if dragged == target {
		// Dropping an item on itself is a no-op.
		return Move(items, dragged, dragged)
	}
	return Move(items, dragged, DropIndex(dragged, target, below))
}

// List wraps a slice so callers can reorder it in place.
type List[T any] struct {
	Items []T
}

// Move relocates one element; the list is left untouched on error.
func (l *List[T]) Move(from, to int) error {
	out, err := Move(l.Items, from, to)
	if err != nil {
		return err
	}
	l.Items = out
	return nil
}

// Drop applies a pointer drop onto target.
func (l *List[T]) Drop(dragged, target int, below bool) error {
	out, err := Drop(l.Items, dragged, target, below)
	if err != nil {
		return err
	}
	l.Items = out
	return nil
}
