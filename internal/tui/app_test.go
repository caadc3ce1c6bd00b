package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/swingset/internal/actions"
	"github.com/mmcdole/swingset/internal/domain"
	"github.com/mmcdole/swingset/internal/playground"
	"github.com/mmcdole/swingset/internal/store"
	"github.com/mmcdole/swingset/internal/undo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	model   Model
	store   *playground.Store
	storage *store.MemoryStore
	toasts  chan actions.Toast
}

func newTestApp(t *testing.T, names ...string) *testApp {
	t.Helper()
	ctx := context.Background()
	storage := store.NewMemoryStore()
	s := playground.NewStore(storage, nil)
	require.NoError(t, s.LoadPlaygrounds(ctx))
	for i, name := range names {
		_, err := s.AddPlayground(ctx, domain.Draft{Name: name, Rating: i%domain.MaxRating + 1})
		require.NoError(t, err)
	}

	toasts := make(chan actions.Toast, 16)
	acts := actions.New(s, undo.NewRegistry(s, nil), NewChannelNotifier(toasts), nil)
	m := NewModel(Options{Store: s, Actions: acts, Toasts: toasts})

	app := &testApp{model: m, store: s, storage: storage, toasts: toasts}
	app.send(tea.WindowSizeMsg{Width: 100, Height: 30})
	app.send(PlaygroundsLoadedMsg{})
	return app
}

// send feeds msg to the model and returns the resulting command
func (a *testApp) send(msg tea.Msg) tea.Cmd {
	next, cmd := a.model.Update(msg)
	a.model = next.(Model)
	return cmd
}

func keyMsg(keys string) tea.KeyMsg {
	switch keys {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
}

// typeKey sends a key without running the returned command (cursor blinks)
func (a *testApp) typeKey(keys string) {
	a.send(keyMsg(keys))
}

// press sends a key and runs the returned command once, feeding its message back
func (a *testApp) press(t *testing.T, keys string) {
	t.Helper()
	if cmd := a.send(keyMsg(keys)); cmd != nil {
		if out := cmd(); out != nil {
			if _, isBatch := out.(tea.BatchMsg); !isBatch {
				a.send(out)
			}
		}
	}
}

func (a *testApp) visibleNames() []string {
	var names []string
	for _, p := range a.store.View(nil) {
		names = append(names, p.Name)
	}
	return names
}

func TestSortCycle(t *testing.T) {
	app := newTestApp(t, "Cedar", "Alder", "Birch")
	assert.Equal(t, domain.SortByDateAdded, app.store.SortBy())
	before, ok := app.model.List.Selected()
	require.True(t, ok)

	app.press(t, "s")
	assert.Equal(t, domain.SortByName, app.store.SortBy())
	assert.Equal(t, []string{"Alder", "Birch", "Cedar"}, app.visibleNames())
	assert.True(t, app.store.Dirty())

	after, ok := app.model.List.Selected()
	require.True(t, ok)
	assert.Equal(t, before.ID, after.ID, "cursor stays on the same playground")
}

func TestRatingFilterCycle(t *testing.T) {
	assert.Equal(t, []int{5}, nextRatingFilter(nil))
	assert.Equal(t, []int{4, 5}, nextRatingFilter([]int{5}))
	assert.Equal(t, []int{2, 3, 4, 5}, nextRatingFilter([]int{3, 4, 5}))
	assert.Nil(t, nextRatingFilter([]int{2, 3, 4, 5}))

	app := newTestApp(t, "One", "Two", "Three", "Four", "Five")
	app.press(t, "f")
	assert.Equal(t, []string{"Five"}, app.visibleNames())
	assert.Equal(t, 1, app.model.List.Len())
}

func TestPhotosFilterCycle(t *testing.T) {
	v := nextPhotosFilter(nil)
	require.NotNil(t, v)
	assert.True(t, *v)
	v = nextPhotosFilter(v)
	require.NotNil(t, v)
	assert.False(t, *v)
	assert.Nil(t, nextPhotosFilter(v))
}

func TestSearch(t *testing.T) {
	app := newTestApp(t, "Central Park", "Riverside", "Cedar Grove")

	app.typeKey("/")
	require.True(t, app.model.List.IsSearchTyping())
	app.typeKey("c")
	app.typeKey("p")
	assert.Equal(t, "cp", app.store.FilterBy().Search)
	assert.Equal(t, 1, app.model.List.Len())

	app.typeKey("esc")
	assert.False(t, app.model.List.IsSearching())
	assert.Empty(t, app.store.FilterBy().Search)
	assert.Equal(t, 3, app.model.List.Len())
}

func TestDeleteConfirmAndUndo(t *testing.T) {
	app := newTestApp(t, "Alder", "Birch")

	app.press(t, "x")
	require.Equal(t, StateConfirmDelete, app.model.State)
	app.press(t, "y")
	assert.Equal(t, StateBrowsing, app.model.State)
	assert.Equal(t, 1, app.store.Len())
	assert.Equal(t, 1, app.model.List.Len())

	toast := <-app.toasts
	assert.Contains(t, toast.Title, "Deleted")
	assert.Equal(t, UndoWindow, toast.Duration, "undo hint stays up for the whole window")

	app.press(t, "u")
	assert.Equal(t, 2, app.store.Len())
	assert.Equal(t, 2, app.model.List.Len())
}

func TestDeleteDenied(t *testing.T) {
	app := newTestApp(t, "Alder")

	app.press(t, "x")
	app.press(t, "n")
	assert.Equal(t, StateBrowsing, app.model.State)
	assert.Equal(t, 1, app.store.Len())
}

func TestUndoExpiryDismissesUndo(t *testing.T) {
	app := newTestApp(t, "Alder")

	app.press(t, "x")
	app.press(t, "y")
	require.Zero(t, app.store.Len())

	app.send(UndoExpiredMsg{Gen: app.model.undoGen})
	app.press(t, "u")
	assert.Zero(t, app.store.Len())
}

func TestRatingKeys(t *testing.T) {
	app := newTestApp(t, "Alder") // rating 1

	app.press(t, "-")
	p := app.store.Playgrounds()[0]
	assert.Equal(t, 1, p.Rating)

	app.press(t, "+")
	p = app.store.Playgrounds()[0]
	assert.Equal(t, 2, p.Rating)
}

func TestToastLifecycle(t *testing.T) {
	app := newTestApp(t)

	cmd := app.send(ToastMsg{Toast: actions.NewToast("Could not save", "disk", true)})
	assert.NotNil(t, cmd)
	require.NotNil(t, app.model.Toast)
	assert.Contains(t, app.model.View(), "Could not save")

	app.send(ClearToastMsg{ID: app.model.toastID - 1})
	assert.NotNil(t, app.model.Toast, "stale expiry is ignored")

	app.send(ClearToastMsg{ID: app.model.toastID})
	assert.Nil(t, app.model.Toast)
}

func TestRetryFromToast(t *testing.T) {
	app := newTestApp(t)
	app.storage.FailSaves(errors.New("disk full"))

	_, err := app.model.Actions.Add(context.Background(), domain.Draft{Name: "Oak", Rating: 3})
	require.Error(t, err)
	toast := <-app.toasts
	require.NotNil(t, toast.OnAction)
	app.send(ToastMsg{Toast: toast})

	app.storage.FailSaves(nil)
	app.press(t, "t")
	assert.Equal(t, 1, app.store.Len())
	assert.Equal(t, 1, app.model.List.Len())
}

func TestRetriedDeleteOpensUndoWindow(t *testing.T) {
	app := newTestApp(t, "Alder", "Birch")
	app.storage.FailSaves(errors.New("disk full"))

	app.press(t, "x")
	app.press(t, "y")
	require.Equal(t, 2, app.store.Len())
	assert.Zero(t, app.model.undoGen)

	toast := <-app.toasts
	require.NotNil(t, toast.OnAction)
	app.send(ToastMsg{Toast: toast})

	app.storage.FailSaves(nil)
	app.press(t, "t")
	require.Equal(t, 1, app.store.Len())
	assert.Equal(t, 1, app.model.undoGen)
	pending, ok := app.model.Actions.PendingUndo()
	require.True(t, ok)
	assert.Equal(t, pending.Snapshot.ID, app.model.undoID)

	app.send(UndoExpiredMsg{Gen: app.model.undoGen})
	_, ok = app.model.Actions.PendingUndo()
	assert.False(t, ok)
	app.press(t, "u")
	assert.Equal(t, 1, app.store.Len())
}

func TestRetryWithoutDeleteKeepsUndoWindow(t *testing.T) {
	app := newTestApp(t, "Alder", "Birch")

	app.press(t, "x")
	app.press(t, "y")
	<-app.toasts
	gen := app.model.undoGen
	require.Equal(t, 1, gen)

	app.storage.FailSaves(errors.New("disk full"))
	_, err := app.model.Actions.Add(context.Background(), domain.Draft{Name: "Oak", Rating: 3})
	require.Error(t, err)
	app.send(ToastMsg{Toast: <-app.toasts})

	app.storage.FailSaves(nil)
	app.press(t, "t")
	assert.Equal(t, 2, app.store.Len())
	assert.Equal(t, gen, app.model.undoGen, "pending undo from the earlier delete keeps its timer")
}

func TestViewRenders(t *testing.T) {
	app := newTestApp(t, "Alder", "Birch")
	view := app.model.View()
	assert.Contains(t, view, "swingset")
	assert.Contains(t, view, "Alder")

	app.press(t, "?")
	assert.Equal(t, StateHelp, app.model.State)
	assert.Contains(t, app.model.View(), "Keys")
	app.press(t, "q")
	assert.Equal(t, StateBrowsing, app.model.State)
}

func TestDescribeFilter(t *testing.T) {
	yes := true
	assert.Empty(t, describeFilter(domain.Filter{}))
	assert.Equal(t, "5★", describeFilter(domain.Filter{Ratings: []int{5}}))
	assert.Equal(t, "3★+, with photos", describeFilter(domain.Filter{Ratings: []int{3, 4, 5}, HasPhotos: &yes}))
	assert.Equal(t, `"oak"`, describeFilter(domain.Filter{Search: "oak"}))
}

func TestEditNotes(t *testing.T) {
	app := newTestApp(t, "Alder")

	app.typeKey("n")
	require.Equal(t, StateEditNotes, app.model.State)
	for _, r := range "shady" {
		app.typeKey(string(r))
	}
	app.press(t, "enter")

	assert.Equal(t, StateBrowsing, app.model.State)
	assert.Equal(t, "shady", app.store.Playgrounds()[0].Notes)
}

func TestEditNotesCancel(t *testing.T) {
	app := newTestApp(t, "Alder")

	app.typeKey("n")
	app.typeKey("x")
	app.press(t, "esc")

	assert.Equal(t, StateBrowsing, app.model.State)
	assert.Empty(t, app.store.Playgrounds()[0].Notes)
	assert.Equal(t, []string{"Alder"}, app.visibleNames())
}
