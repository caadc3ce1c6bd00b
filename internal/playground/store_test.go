package playground

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/swingset/internal/domain"
	"github.com/mmcdole/swingset/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDisk = errors.New("disk full")

type fixture struct {
	store   *Store
	storage *store.MemoryStore
	clock   *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	var (
		mu  sync.Mutex
		seq int
	)
	ids := func() string {
		mu.Lock()
		defer mu.Unlock()
		seq++
		return fmt.Sprintf("pg-%d", seq)
	}
	storage := store.NewMemoryStore()
	opts = append([]Option{WithClock(clock.Now), WithIDGenerator(ids)}, opts...)
	s := NewStore(storage, nil, opts...)
	require.NoError(t, s.LoadPlaygrounds(context.Background()))
	return &fixture{store: s, storage: storage, clock: clock}
}

func draft(name string, rating int) domain.Draft {
	return domain.Draft{
		Name:     name,
		Location: domain.Location{Address: name + " Street"},
		Rating:   rating,
	}
}

func TestAddPlayground(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.store.AddPlayground(ctx, domain.Draft{
		Name:     "  Riverside  ",
		Location: domain.Location{Address: "1 River Rd", Coordinates: &domain.Coordinates{Latitude: 51.5, Longitude: -0.1}},
		Rating:   4,
		Photos:   []string{"a.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pg-1", p.ID)
	assert.Equal(t, "Riverside", p.Name)
	assert.Equal(t, f.clock.Now(), p.DateAdded)
	assert.Equal(t, p.DateAdded, p.DateModified)
	assert.Equal(t, 1, f.store.Len())

	// Round trip through storage
	reloaded := NewStore(f.storage, nil)
	require.NoError(t, reloaded.LoadPlaygrounds(ctx))
	got, ok := reloaded.Get(p.ID)
	require.True(t, ok)
	assert.Equal(t, p, got)
}

func TestAddPlayground_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		draft domain.Draft
	}{
		{"empty name", draft("   ", 3)},
		{"rating too low", draft("Park", 0)},
		{"rating too high", draft("Park", 6)},
		{"bad coordinates", domain.Draft{
			Name:     "Park",
			Rating:   3,
			Location: domain.Location{Coordinates: &domain.Coordinates{Latitude: 91}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.store.AddPlayground(ctx, tt.draft)
			require.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, domain.ErrorKindValidation, f.store.State().ErrKind)
		})
	}
	assert.Zero(t, f.store.Len())
	assert.Zero(t, f.storage.Saves())
}

func TestAddPlayground_RollsBackOnSaveFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.AddPlayground(ctx, draft("Kept", 3))
	require.NoError(t, err)
	before := f.store.Playgrounds()

	f.storage.FailSaves(errDisk)
	_, err = f.store.AddPlayground(ctx, draft("Lost", 5))
	require.ErrorIs(t, err, domain.ErrStorage)

	assert.Equal(t, before, f.store.Playgrounds())
	state := f.store.State()
	assert.Equal(t, domain.ErrorKindStorage, state.ErrKind)
	assert.ErrorIs(t, state.Err, domain.ErrStorage)

	f.storage.FailSaves(nil)
	persisted, err := f.storage.LoadPlaygrounds(ctx)
	require.NoError(t, err)
	assert.Len(t, persisted, 1)
}

func TestMutations_RollBackOnSaveFailure(t *testing.T) {
	rating := 1
	tests := []struct {
		name string
		// setup runs with working storage and returns the failing mutation
		setup func(t *testing.T, f *fixture) func(context.Context) error
	}{
		{"update", func(t *testing.T, f *fixture) func(context.Context) error {
			return func(ctx context.Context) error {
				_, err := f.store.UpdatePlayground(ctx, "pg-1", domain.Patch{Rating: &rating})
				return err
			}
		}},
		{"delete", func(t *testing.T, f *fixture) func(context.Context) error {
			return func(ctx context.Context) error {
				_, err := f.store.DeletePlaygroundWithUndo(ctx, "pg-1")
				return err
			}
		}},
		{"restore", func(t *testing.T, f *fixture) func(context.Context) error {
			removed, err := f.store.DeletePlaygroundWithUndo(context.Background(), "pg-2")
			require.NoError(t, err)
			return func(ctx context.Context) error {
				return f.store.RestorePlayground(ctx, removed)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			for _, name := range []string{"Alder", "Birch", "Cedar"} {
				_, err := f.store.AddPlayground(ctx, draft(name, 4))
				require.NoError(t, err)
			}
			run := tt.setup(t, f)

			before := f.store.Playgrounds()
			f.store.mu.RLock()
			lastBefore := f.store.lastRemoved
			f.store.mu.RUnlock()
			persistedBefore, err := f.storage.LoadPlaygrounds(ctx)
			require.NoError(t, err)

			f.storage.FailSaves(errDisk)
			err = run(ctx)
			require.ErrorIs(t, err, domain.ErrStorage)

			assert.Equal(t, before, f.store.Playgrounds())
			assert.Equal(t, domain.ErrorKindStorage, f.store.State().ErrKind)
			f.store.mu.RLock()
			assert.Equal(t, lastBefore, f.store.lastRemoved, "failed mutation leaves the restore position alone")
			f.store.mu.RUnlock()

			f.storage.FailSaves(nil)
			persisted, err := f.storage.LoadPlaygrounds(ctx)
			require.NoError(t, err)
			assert.Equal(t, persistedBefore, persisted)
		})
	}
}

func TestDeletePlayground_FailedSaveDoesNotRecordPosition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, name := range []string{"Alder", "Birch"} {
		_, err := f.store.AddPlayground(ctx, draft(name, 4))
		require.NoError(t, err)
	}

	f.storage.FailSaves(errDisk)
	_, err := f.store.DeletePlaygroundWithUndo(ctx, "pg-1")
	require.ErrorIs(t, err, domain.ErrStorage)

	f.store.mu.RLock()
	assert.Equal(t, removal{}, f.store.lastRemoved)
	f.store.mu.RUnlock()
}

func TestUpdatePlayground(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.store.AddPlayground(ctx, draft("Oak Park", 3))
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	name, rating := "Oak Park North", 5
	updated, err := f.store.UpdatePlayground(ctx, p.ID, domain.Patch{Name: &name, Rating: &rating})
	require.NoError(t, err)

	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, rating, updated.Rating)
	assert.Equal(t, p.Location, updated.Location)
	assert.Equal(t, p.DateAdded, updated.DateAdded)
	assert.Equal(t, p.DateAdded.Add(time.Hour), updated.DateModified)
}

func TestUpdatePlayground_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.AddPlayground(ctx, draft("Oak Park", 3))
	require.NoError(t, err)
	before := f.store.Playgrounds()
	saves := f.storage.Saves()

	rating := 1
	_, err = f.store.UpdatePlayground(ctx, "missing", domain.Patch{Rating: &rating})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, domain.ErrorKindNotFound, f.store.State().ErrKind)
	assert.Equal(t, before, f.store.Playgrounds())
	assert.Equal(t, saves, f.storage.Saves())
}

func TestUpdatePlayground_InvalidPatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.store.AddPlayground(ctx, draft("Oak Park", 3))
	require.NoError(t, err)

	rating := 9
	_, err = f.store.UpdatePlayground(ctx, p.ID, domain.Patch{Rating: &rating})
	require.ErrorIs(t, err, domain.ErrValidation)

	got, ok := f.store.Get(p.ID)
	require.True(t, ok)
	assert.Equal(t, 3, got.Rating)
}

func TestDeleteThenRestore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"A", "B", "C"} {
		p, err := f.store.AddPlayground(ctx, draft(name, 3))
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	before := f.store.Playgrounds()

	removed, err := f.store.DeletePlaygroundWithUndo(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, before[1], removed)
	assert.Equal(t, 2, f.store.Len())
	_, ok := f.store.Get(ids[1])
	assert.False(t, ok)

	require.NoError(t, f.store.RestorePlayground(ctx, removed))
	assert.Equal(t, before, f.store.Playgrounds())

	// Restored data is durable
	reloaded := NewStore(f.storage, nil)
	require.NoError(t, reloaded.LoadPlaygrounds(ctx))
	assert.Equal(t, before, reloaded.Playgrounds())
}

func TestRestorePlayground_AppendsWhenNotLastDeletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.store.AddPlayground(ctx, draft("A", 3))
	require.NoError(t, err)
	b, err := f.store.AddPlayground(ctx, draft("B", 3))
	require.NoError(t, err)
	_, err = f.store.AddPlayground(ctx, draft("C", 3))
	require.NoError(t, err)

	removedA, err := f.store.DeletePlaygroundWithUndo(ctx, a.ID)
	require.NoError(t, err)
	_, err = f.store.DeletePlaygroundWithUndo(ctx, b.ID)
	require.NoError(t, err)

	require.NoError(t, f.store.RestorePlayground(ctx, removedA))
	list := f.store.Playgrounds()
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[1].ID)
}

func TestRestorePlayground_Duplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.store.AddPlayground(ctx, draft("A", 3))
	require.NoError(t, err)

	err = f.store.RestorePlayground(ctx, p)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 1, f.store.Len())
}

func TestRestorePlayground_Invalid(t *testing.T) {
	f := newFixture(t)
	err := f.store.RestorePlayground(context.Background(), domain.Playground{Name: "no id", Rating: 3})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, f.store.Len())
}

func TestDeletePlayground_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.DeletePlaygroundWithUndo(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeletePlayground_Concurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.store.AddPlayground(ctx, draft("A", 3))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.store.DeletePlaygroundWithUndo(ctx, p.ID)
		}(i)
	}
	wg.Wait()

	var ok, notFound int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrNotFound):
			notFound++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, notFound)
	assert.Zero(t, f.store.Len())
}

func TestLoadPlaygrounds_FailureKeepsState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.AddPlayground(ctx, draft("A", 3))
	require.NoError(t, err)
	before := f.store.Playgrounds()

	f.storage.FailLoads(errDisk)
	err = f.store.LoadPlaygrounds(ctx)
	require.ErrorIs(t, err, domain.ErrStorage)

	state := f.store.State()
	assert.Equal(t, before, state.Playgrounds)
	assert.False(t, state.Loading)
	assert.Equal(t, domain.ErrorKindStorage, state.ErrKind)

	f.store.ClearError()
	state = f.store.State()
	assert.NoError(t, state.Err)
	assert.Equal(t, domain.ErrorKindNone, state.ErrKind)
	assert.Equal(t, before, state.Playgrounds)
}

func TestLoadPlaygrounds_RestoresPreferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	yes := true
	require.NoError(t, f.store.SetSortBy(domain.SortByRating))
	require.NoError(t, f.store.SetFilterBy(domain.Filter{Ratings: []int{4, 5}, HasPhotos: &yes}))
	require.NoError(t, f.store.Flush(ctx))

	reloaded := NewStore(f.storage, nil)
	require.NoError(t, reloaded.LoadPlaygrounds(ctx))
	assert.Equal(t, domain.SortByRating, reloaded.SortBy())
	assert.Equal(t, []int{4, 5}, reloaded.FilterBy().Ratings)
	require.NotNil(t, reloaded.FilterBy().HasPhotos)
	assert.True(t, *reloaded.FilterBy().HasPhotos)
}

func TestSetSortBy_Unknown(t *testing.T) {
	f := newFixture(t)
	err := f.store.SetSortBy(domain.SortKey("colour"))
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.SortByDateAdded, f.store.SortBy())
	assert.False(t, f.store.Dirty())
}

func TestFlush_ClearsDirty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.False(t, f.store.Dirty())
	require.NoError(t, f.store.SetSortBy(domain.SortByName))
	assert.True(t, f.store.Dirty())

	require.NoError(t, f.store.Flush(ctx))
	assert.False(t, f.store.Dirty())

	// Flushing a clean store is harmless
	require.NoError(t, f.store.Flush(ctx))
	assert.False(t, f.store.Dirty())
}

func TestFlush_FailureKeepsDirty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.SetSortBy(domain.SortByName))
	f.storage.FailSaves(errDisk)
	require.ErrorIs(t, f.store.Flush(ctx), domain.ErrStorage)
	assert.True(t, f.store.Dirty())
}

func TestTryFlush_BusyWriter(t *testing.T) {
	f := newFixture(t)

	f.store.writeMu.Lock()
	err := f.store.TryFlush(context.Background())
	f.store.writeMu.Unlock()
	require.ErrorIs(t, err, domain.ErrSaveInProgress)

	require.NoError(t, f.store.TryFlush(context.Background()))
}

func TestView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i, rating := range []int{2, 5, 4} {
		_, err := f.store.AddPlayground(ctx, draft(fmt.Sprintf("P%d", i), rating))
		require.NoError(t, err)
	}
	require.NoError(t, f.store.SetSortBy(domain.SortByRating))
	require.NoError(t, f.store.SetFilterBy(domain.Filter{Ratings: []int{4, 5}}))

	view := f.store.View(nil)
	require.Len(t, view, 2)
	assert.Equal(t, 5, view[0].Rating)
	assert.Equal(t, 4, view[1].Rating)

	// Mutating the view does not reach the store
	view[0].Name = "changed"
	got, ok := f.store.Get(view[1].ID)
	require.True(t, ok)
	assert.NotEqual(t, "changed", got.Name)
}

func TestState_IsDeepCopy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.store.AddPlayground(ctx, domain.Draft{Name: "A", Rating: 3, Photos: []string{"x.jpg"}})
	require.NoError(t, err)

	state := f.store.State()
	state.Playgrounds[0].Photos[0] = "mutated"

	got, ok := f.store.Get(p.ID)
	require.True(t, ok)
	assert.Equal(t, []string{"x.jpg"}, got.Photos)
}

func TestMaintain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.AddPlayground(ctx, draft("A", 3))
	require.NoError(t, err)
	assert.NoError(t, f.store.Maintain(ctx))
	assert.Equal(t, 1, f.store.Len())
}
