package actions

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mmcdole/swingset/internal/domain"
	"github.com/mmcdole/swingset/internal/playground"
	"github.com/mmcdole/swingset/internal/store"
	"github.com/mmcdole/swingset/internal/undo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shownError struct {
	err      error
	hasRetry bool
}

type recordingNotifier struct {
	successes []string
	errors    []shownError
	retry     func()
}

func (n *recordingNotifier) ShowSuccess(title, _ string, _ ...ToastOption) {
	n.successes = append(n.successes, title)
}

func (n *recordingNotifier) ShowError(string, string, ...ToastOption) {}

func (n *recordingNotifier) ShowAppError(err error, retry func()) {
	n.errors = append(n.errors, shownError{err: err, hasRetry: retry != nil})
	n.retry = retry
}

type harness struct {
	actions *Actions
	store   *playground.Store
	storage *store.MemoryStore
	notify  *recordingNotifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	storage := store.NewMemoryStore()
	s := playground.NewStore(storage, nil)
	require.NoError(t, s.LoadPlaygrounds(context.Background()))
	n := &recordingNotifier{}
	return &harness{
		actions: New(s, undo.NewRegistry(s, nil), n, nil),
		store:   s,
		storage: storage,
		notify:  n,
	}
}

func TestAdd(t *testing.T) {
	h := newHarness(t)

	p, err := h.actions.Add(context.Background(), domain.Draft{Name: "Oak", Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, "Oak", p.Name)
	assert.Equal(t, []string{"Playground added"}, h.notify.successes)
	assert.Empty(t, h.notify.errors)
}

func TestAdd_ValidationHasNoRetry(t *testing.T) {
	h := newHarness(t)

	_, err := h.actions.Add(context.Background(), domain.Draft{Name: "", Rating: 4})
	require.ErrorIs(t, err, domain.ErrValidation)
	require.Len(t, h.notify.errors, 1)
	assert.False(t, h.notify.errors[0].hasRetry)
}

func TestAdd_StorageFailureOffersRetry(t *testing.T) {
	h := newHarness(t)
	h.storage.FailSaves(errors.New("disk full"))

	_, err := h.actions.Add(context.Background(), domain.Draft{Name: "Oak", Rating: 4})
	require.ErrorIs(t, err, domain.ErrStorage)
	require.Len(t, h.notify.errors, 1)
	assert.True(t, h.notify.errors[0].hasRetry)
	assert.Zero(t, h.store.Len())

	h.storage.FailSaves(nil)
	h.notify.retry()
	assert.Equal(t, 1, h.store.Len())
}

func TestDeleteAndUndo(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	p, err := h.actions.Add(ctx, domain.Draft{Name: "Oak", Rating: 4})
	require.NoError(t, err)

	action, err := h.actions.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, undo.KindRestore, action.Kind)
	assert.Equal(t, "Deleted Oak", action.Label)
	assert.Zero(t, h.store.Len())

	ran, err := h.actions.Undo(ctx)
	require.NoError(t, err)
	assert.True(t, ran)

	got, ok := h.store.Get(p.ID)
	require.True(t, ok)
	assert.Equal(t, p, got)
	assert.Equal(t, []string{"Playground added", "Deleted Oak", "Playground restored"}, h.notify.successes)

	ran, err = h.actions.Undo(ctx)
	require.NoError(t, err)
	assert.False(t, ran)
}

func TestDelete_NotFound(t *testing.T) {
	h := newHarness(t)

	_, err := h.actions.Delete(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Len(t, h.notify.errors, 1)
	assert.False(t, h.notify.errors[0].hasRetry)
}

func TestDismissUndo(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	p, err := h.actions.Add(ctx, domain.Draft{Name: "Oak", Rating: 4})
	require.NoError(t, err)
	_, err = h.actions.Delete(ctx, p.ID)
	require.NoError(t, err)

	h.actions.DismissUndo()
	ran, err := h.actions.Undo(ctx)
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Zero(t, h.store.Len())
}

func TestUpdate_NotFound(t *testing.T) {
	h := newHarness(t)
	rating := 2

	_, err := h.actions.Update(context.Background(), "missing", domain.Patch{Rating: &rating})
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Len(t, h.notify.errors, 1)
}

func TestReload_Failure(t *testing.T) {
	h := newHarness(t)
	h.storage.FailLoads(errors.New("io"))

	err := h.actions.Reload(context.Background())
	require.ErrorIs(t, err, domain.ErrStorage)
	require.Len(t, h.notify.errors, 1)
	assert.True(t, h.notify.errors[0].hasRetry)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err   error
		title string
	}{
		{nil, ""},
		{fmt.Errorf("%w: name is required", domain.ErrValidation), "Invalid playground"},
		{fmt.Errorf("%w: x", domain.ErrNotFound), "Playground not found"},
		{fmt.Errorf("%w: x", domain.ErrStorage), "Could not save"},
		{errors.New("weird"), "Something went wrong"},
	}
	for _, tt := range tests {
		title, _ := Describe(tt.err)
		assert.Equal(t, tt.title, title)
	}

	_, msg := Describe(fmt.Errorf("%w: name is required", domain.ErrValidation))
	assert.Equal(t, "name is required", msg)
}

func TestNewToast(t *testing.T) {
	called := false
	toast := NewToast("Could not save", "disk", true, WithAction("Retry", func() { called = true }))
	assert.Equal(t, DefaultToastDuration, toast.Duration)
	assert.Equal(t, "Retry", toast.ActionLabel)
	toast.OnAction()
	assert.True(t, called)
}
