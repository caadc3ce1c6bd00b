package tui

import (
	"github.com/mmcdole/swingset/internal/actions"
	"github.com/mmcdole/swingset/internal/undo"
)

// Message types for the TUI

// ToastMsg carries a notification from the action layer
type ToastMsg struct {
	Toast actions.Toast
}

// ClearToastMsg expires the toast with ID
type ClearToastMsg struct {
	ID int
}

// PlaygroundsLoadedMsg signals that a reload finished
type PlaygroundsLoadedMsg struct {
	Err error
}

// PlaygroundChangedMsg signals that a mutation finished and views need refreshing
type PlaygroundChangedMsg struct {
	Err error
}

// PlaygroundDeletedMsg signals that a delete finished
type PlaygroundDeletedMsg struct {
	Action undo.Action
	Err    error
}

// RetriedMsg signals that a toast's retry action finished
type RetriedMsg struct{}

// UndoneMsg signals that an undo attempt finished
type UndoneMsg struct {
	Ran bool
	Err error
}

// UndoExpiredMsg ends the undo window opened by a delete
type UndoExpiredMsg struct {
	Gen int
}

// SavedMsg signals that a forced save finished
type SavedMsg struct {
	Err error
}
