// Package actions ties user intents to the playground store, the undo
// registry and a notifier.
package actions

import (
	"context"
	"log/slog"

	"github.com/mmcdole/swingset/internal/domain"
	"github.com/mmcdole/swingset/internal/playground"
	"github.com/mmcdole/swingset/internal/undo"
)

// Actions runs store operations and reports their outcome through a Notifier.
// Errors are reported and also returned to the caller.
type Actions struct {
	store  *playground.Store
	undo   *undo.Registry
	notify Notifier
	logger *slog.Logger
}

// New creates the action set
func New(store *playground.Store, registry *undo.Registry, notify Notifier, logger *slog.Logger) *Actions {
	if logger == nil {
		logger = slog.Default()
	}
	if notify == nil {
		notify = LogNotifier{Logger: logger}
	}
	return &Actions{store: store, undo: registry, notify: notify, logger: logger}
}

// Add creates a playground from draft
func (a *Actions) Add(ctx context.Context, draft domain.Draft) (domain.Playground, error) {
	p, err := a.store.AddPlayground(ctx, draft)
	if err != nil {
		a.report(err, func() { _, _ = a.Add(context.WithoutCancel(ctx), draft) })
		return domain.Playground{}, err
	}
	a.notify.ShowSuccess("Playground added", p.Name)
	return p, nil
}

// Update applies patch to the playground with id
func (a *Actions) Update(ctx context.Context, id string, patch domain.Patch) (domain.Playground, error) {
	p, err := a.store.UpdatePlayground(ctx, id, patch)
	if err != nil {
		a.report(err, func() { _, _ = a.Update(context.WithoutCancel(ctx), id, patch) })
		return domain.Playground{}, err
	}
	a.notify.ShowSuccess("Playground updated", p.Name)
	return p, nil
}

// Delete removes the playground with id and registers an undo for it
func (a *Actions) Delete(ctx context.Context, id string) (undo.Action, error) {
	removed, err := a.store.DeletePlaygroundWithUndo(ctx, id)
	if err != nil {
		a.report(err, func() { _, _ = a.Delete(context.WithoutCancel(ctx), id) })
		return undo.Action{}, err
	}
	action := a.undo.RegisterDeletion(removed)
	a.notify.ShowSuccess(action.Label, "Press u to undo", WithDuration(UndoWindow))
	return action, nil
}

// Undo applies the pending undo action. It returns false when nothing was pending.
func (a *Actions) Undo(ctx context.Context) (bool, error) {
	pending, _ := a.undo.Pending()
	ran, err := a.undo.ExecuteUndo(ctx)
	if err != nil {
		// The action is spent; retrying the restore is not offered
		a.report(err, nil)
		return ran, err
	}
	if ran {
		a.notify.ShowSuccess("Playground restored", pending.Snapshot.Name)
	}
	return ran, nil
}

// Reload replaces the in-memory list with what storage holds
func (a *Actions) Reload(ctx context.Context) error {
	if err := a.store.LoadPlaygrounds(ctx); err != nil {
		a.report(err, func() { _ = a.Reload(context.WithoutCancel(ctx)) })
		return err
	}
	return nil
}

// PendingUndo returns the undo that Undo would apply
func (a *Actions) PendingUndo() (undo.Action, bool) {
	return a.undo.Pending()
}

// DismissUndo drops the pending undo (the toast offering it went away)
func (a *Actions) DismissUndo() {
	a.undo.Clear()
}

func (a *Actions) report(err error, retry func()) {
	if !domain.KindOf(err).Retryable() {
		retry = nil
	}
	a.logger.Debug("action failed", "kind", domain.KindOf(err).String(), "error", err)
	a.notify.ShowAppError(err, retry)
}
