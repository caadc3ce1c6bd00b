package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/swingset/internal/actions"
	"github.com/mmcdole/swingset/internal/domain"
)

// Saver flushes the store on demand. *lifecycle.Service satisfies it.
type Saver interface {
	ForceSave(ctx context.Context) error
}

// commandTimeout bounds a single store operation started from the UI
const commandTimeout = 10 * time.Second

// WaitForToastCmd reads one toast from ch. The model re-issues it after every
// ToastMsg so the channel is pumped for the life of the program.
func WaitForToastCmd(ch <-chan actions.Toast) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		t, ok := <-ch
		if !ok {
			return nil
		}
		return ToastMsg{Toast: t}
	}
}

// ClearToastCmd returns a command that clears the toast after a delay
func ClearToastCmd(id int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ClearToastMsg{ID: id}
	})
}

// UndoExpiryCmd closes the undo window after delay
func UndoExpiryCmd(gen int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return UndoExpiredMsg{Gen: gen}
	})
}

// LoadPlaygroundsCmd reloads the store from storage
func LoadPlaygroundsCmd(acts *actions.Actions) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return PlaygroundsLoadedMsg{Err: acts.Reload(ctx)}
	}
}

// DeletePlaygroundCmd deletes the playground with id
func DeletePlaygroundCmd(acts *actions.Actions, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		action, err := acts.Delete(ctx, id)
		return PlaygroundDeletedMsg{Action: action, Err: err}
	}
}

// UndoCmd applies the pending undo
func UndoCmd(acts *actions.Actions) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		ran, err := acts.Undo(ctx)
		return UndoneMsg{Ran: ran, Err: err}
	}
}

// SetRatingCmd changes the rating of the playground with id
func SetRatingCmd(acts *actions.Actions, id string, rating int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		_, err := acts.Update(ctx, id, domain.Patch{Rating: &rating})
		return PlaygroundChangedMsg{Err: err}
	}
}

// SetNotesCmd replaces the notes of the playground with id
func SetNotesCmd(acts *actions.Actions, id, notes string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		_, err := acts.Update(ctx, id, domain.Patch{Notes: &notes})
		return PlaygroundChangedMsg{Err: err}
	}
}

// SaveCmd forces a flush
func SaveCmd(saver Saver) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return SavedMsg{Err: saver.ForceSave(ctx)}
	}
}

// RetryCmd runs a toast's retry action off the UI goroutine
func RetryCmd(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return RetriedMsg{}
	}
}
