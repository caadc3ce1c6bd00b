// Package undo keeps the single pending undoable action.
//
// Actions are plain values tagged by Kind and interpreted by ExecuteUndo, so a
// pending entry never holds on to closures or store references.
package undo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmcdole/swingset/internal/domain"
)

// Kind tags what an Action undoes
type Kind int

const (
	KindNone Kind = iota
	// KindRestore re-inserts a deleted playground
	KindRestore
)

func (k Kind) String() string {
	switch k {
	case KindRestore:
		return "restore"
	default:
		return "none"
	}
}

// Action is one undoable step
type Action struct {
	Kind     Kind
	Snapshot domain.Playground
	Label    string
}

// Executor applies undo actions. *playground.Store satisfies it.
type Executor interface {
	RestorePlayground(ctx context.Context, snapshot domain.Playground) error
}

// Registry holds at most one pending action. Registering a new one replaces it.
type Registry struct {
	exec   Executor
	logger *slog.Logger

	mu      sync.Mutex
	pending *Action
}

// NewRegistry creates an empty registry that applies actions through exec.
func NewRegistry(exec Executor, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{exec: exec, logger: logger}
}

// RegisterDeletion records that snapshot was deleted and can be restored.
func (r *Registry) RegisterDeletion(snapshot domain.Playground) Action {
	a := Action{
		Kind:     KindRestore,
		Snapshot: snapshot.Clone(),
		Label:    "Deleted " + snapshot.Name,
	}

	r.mu.Lock()
	if r.pending != nil {
		r.logger.Debug("replacing pending undo", "label", r.pending.Label)
	}
	stored := a
	r.pending = &stored
	r.mu.Unlock()

	return a
}

// Pending returns the action that ExecuteUndo would apply.
func (r *Registry) Pending() (Action, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil {
		return Action{}, false
	}
	a := *r.pending
	a.Snapshot = a.Snapshot.Clone()
	return a, true
}

// ExecuteUndo applies and clears the pending action. It returns false when
// nothing was pending. The slot is cleared even when applying fails.
func (r *Registry) ExecuteUndo(ctx context.Context) (bool, error) {
	r.mu.Lock()
	a := r.pending
	r.pending = nil
	r.mu.Unlock()

	if a == nil {
		return false, nil
	}

	switch a.Kind {
	case KindRestore:
		if err := r.exec.RestorePlayground(ctx, a.Snapshot); err != nil {
			r.logger.Warn("undo failed", "label", a.Label, "error", err)
			return true, err
		}
	default:
		return true, fmt.Errorf("undo: unsupported action kind %s", a.Kind)
	}

	r.logger.Info("undo applied", "label", a.Label)
	return true, nil
}

// Clear drops the pending action, if any.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.pending = nil
	r.mu.Unlock()
}
