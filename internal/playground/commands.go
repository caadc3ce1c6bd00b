package playground

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mmcdole/swingset/internal/domain"
)

// Operation names used in logs and metrics
const (
	OpAdd     = "add"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpRestore = "restore"
	OpLoad    = "load"
	OpFlush   = "flush"
)

// AddPlayground validates draft, assigns an ID and timestamps, appends it and
// persists the collection.
func (s *Store) AddPlayground(ctx context.Context, draft domain.Draft) (domain.Playground, error) {
	if err := draft.Validate(); err != nil {
		return domain.Playground{}, s.fail(OpAdd, err)
	}

	now := s.now()
	p := domain.Playground{
		ID:           s.newID(),
		Name:         strings.TrimSpace(draft.Name),
		Location:     draft.Location.Clone(),
		Rating:       draft.Rating,
		Notes:        draft.Notes,
		Photos:       append([]string{}, draft.Photos...),
		DateAdded:    now,
		DateModified: now,
	}

	err := s.mutate(ctx, OpAdd, func(list []domain.Playground) ([]domain.Playground, error) {
		if indexOf(list, p.ID) >= 0 {
			return nil, fmt.Errorf("%w: id %s already in use", domain.ErrValidation, p.ID)
		}
		return append(list, p), nil
	})
	if err != nil {
		return domain.Playground{}, err
	}

	s.logger.Info("added playground", "id", p.ID, "name", p.Name)
	return p.Clone(), nil
}

// UpdatePlayground merges patch into the playground with id and bumps DateModified.
func (s *Store) UpdatePlayground(ctx context.Context, id string, patch domain.Patch) (domain.Playground, error) {
	var updated domain.Playground
	err := s.mutate(ctx, OpUpdate, func(list []domain.Playground) ([]domain.Playground, error) {
		i := indexOf(list, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		updated = patch.Apply(list[i])
		updated.DateModified = s.now()
		if updated.DateModified.Before(updated.DateAdded) {
			updated.DateModified = updated.DateAdded
		}
		if err := updated.Validate(); err != nil {
			return nil, err
		}
		list[i] = updated
		return list, nil
	})
	if err != nil {
		return domain.Playground{}, err
	}

	s.logger.Info("updated playground", "id", id)
	return updated.Clone(), nil
}

// DeletePlaygroundWithUndo removes the playground with id and returns the
// removed record so the caller can offer an undo. It is not restored automatically.
func (s *Store) DeletePlaygroundWithUndo(ctx context.Context, id string) (domain.Playground, error) {
	var (
		removed domain.Playground
		at      int
	)
	err := s.mutate(ctx, OpDelete, func(list []domain.Playground) ([]domain.Playground, error) {
		at = indexOf(list, id)
		if at < 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		removed = list[at]
		return slices.Delete(list, at, at+1), nil
	})
	if err != nil {
		return domain.Playground{}, err
	}

	s.mu.Lock()
	s.lastRemoved = removal{id: id, index: at}
	s.mu.Unlock()

	s.logger.Info("deleted playground", "id", id, "name", removed.Name)
	return removed.Clone(), nil
}

// RestorePlayground re-inserts a previously deleted snapshot, keeping its ID
// and timestamps. If it was the most recent deletion it goes back to its old
// position; otherwise it is appended.
func (s *Store) RestorePlayground(ctx context.Context, snapshot domain.Playground) error {
	if err := snapshot.Validate(); err != nil {
		return s.fail(OpRestore, err)
	}
	p := snapshot.Clone()

	err := s.mutate(ctx, OpRestore, func(list []domain.Playground) ([]domain.Playground, error) {
		if indexOf(list, p.ID) >= 0 {
			return nil, fmt.Errorf("%w: playground %s already exists", domain.ErrValidation, p.ID)
		}
		s.mu.RLock()
		last := s.lastRemoved
		s.mu.RUnlock()
		if last.id == p.ID && last.index <= len(list) {
			return slices.Insert(list, last.index, p), nil
		}
		return append(list, p), nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.lastRemoved.id == p.ID {
		s.lastRemoved = removal{}
	}
	s.mu.Unlock()

	s.logger.Info("restored playground", "id", p.ID, "name", p.Name)
	return nil
}

// LoadPlaygrounds replaces the in-memory list (and saved view preferences)
// with what storage holds. On failure the previous state is kept.
func (s *Store) LoadPlaygrounds(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.loading = true
	s.err = nil
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	list, err := s.storage.LoadPlaygrounds(ctx)
	if err != nil {
		return s.fail(OpLoad, wrapStorage(err))
	}
	if list == nil {
		list = []domain.Playground{}
	}

	prefs, havePrefs, prefsErr := s.storage.LoadPreferences(ctx)
	if prefsErr != nil {
		// View preferences are cosmetic; keep the current ones
		s.logger.Warn("failed to load view preferences", "error", prefsErr)
		havePrefs = false
	}

	s.mu.Lock()
	s.playgrounds = list
	s.lastRemoved = removal{}
	if havePrefs {
		if slices.Contains(domain.SortKeys(), prefs.SortBy) {
			s.sortBy = prefs.SortBy
		}
		if prefs.FilterBy.Validate() == nil {
			s.filterBy = prefs.FilterBy
		}
	}
	s.mu.Unlock()

	s.recorder.ObserveMutation(OpLoad, nil)
	s.recorder.SetCollectionSize(len(list))
	s.logger.Debug("loaded playgrounds", "count", len(list))
	return nil
}

// ClearError resets the recorded error. Nothing else changes.
func (s *Store) ClearError() {
	s.setErr(nil)
}

// SetSortBy changes the sort key of derived views. The choice is saved on the
// next flush.
func (s *Store) SetSortBy(key domain.SortKey) error {
	if !slices.Contains(domain.SortKeys(), key) {
		return fmt.Errorf("%w: unknown sort key %q", domain.ErrValidation, key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sortBy != key {
		s.sortBy = key
		s.markDirtyLocked()
	}
	return nil
}

// SetFilterBy changes the filter of derived views. The choice is saved on the
// next flush.
func (s *Store) SetFilterBy(filter domain.Filter) error {
	if err := filter.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filterBy = filter.Clone()
	s.markDirtyLocked()
	return nil
}

// Flush writes the list and view preferences to storage, waiting for any
// in-flight mutation to finish first. Flushing a clean store rewrites the same
// data, so repeated calls are harmless.
func (s *Store) Flush(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.flushLocked(ctx)
}

// TryFlush is Flush for background callers: if a mutation or another flush is
// writing right now it returns ErrSaveInProgress instead of waiting.
func (s *Store) TryFlush(ctx context.Context) error {
	if !s.writeMu.TryLock() {
		return domain.ErrSaveInProgress
	}
	defer s.writeMu.Unlock()
	return s.flushLocked(ctx)
}

func (s *Store) flushLocked(ctx context.Context) error {
	s.mu.RLock()
	list := slices.Clone(s.playgrounds)
	prefs := domain.Preferences{SortBy: s.sortBy, FilterBy: s.filterBy.Clone()}
	gen := s.dirtyGen
	s.mu.RUnlock()

	if err := s.savePlaygrounds(ctx, list); err != nil {
		return s.fail(OpFlush, err)
	}
	if err := s.storage.SavePreferences(ctx, prefs); err != nil {
		return s.fail(OpFlush, wrapStorage(err))
	}

	s.mu.Lock()
	// Preferences changed while writing stay dirty for the next flush
	if s.dirtyGen == gen {
		s.dirty = false
	}
	s.mu.Unlock()

	s.recorder.ObserveMutation(OpFlush, nil)
	s.logger.Debug("flushed playgrounds", "count", len(list))
	return nil
}

// Maintain checks record invariants, reports the collection size and runs
// storage housekeeping when the backend supports it. Violations are logged,
// never repaired.
func (s *Store) Maintain(ctx context.Context) error {
	list := s.snapshot()
	seen := make(map[string]bool, len(list))
	for _, p := range list {
		if seen[p.ID] {
			s.logger.Warn("duplicate playground id", "id", p.ID)
		}
		seen[p.ID] = true
		if err := p.Validate(); err != nil {
			s.logger.Warn("playground violates invariants", "id", p.ID, "error", err)
		}
	}
	s.recorder.SetCollectionSize(len(list))

	if m, ok := s.storage.(domain.Maintainer); ok {
		if err := m.Maintain(ctx); err != nil {
			return wrapStorage(err)
		}
	}
	return nil
}

// mutate runs fn against a copy of the list, persists the result and only
// then publishes it.
func (s *Store) mutate(ctx context.Context, op string, fn func([]domain.Playground) ([]domain.Playground, error)) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next, err := fn(s.snapshot())
	if err != nil {
		return s.fail(op, err)
	}
	if err := s.savePlaygrounds(ctx, next); err != nil {
		return s.fail(op, err)
	}

	s.mu.Lock()
	s.playgrounds = next
	s.err = nil
	s.mu.Unlock()

	s.recorder.ObserveMutation(op, nil)
	s.recorder.SetCollectionSize(len(next))
	return nil
}

// wrapStorage tags persistence errors with ErrStorage unless they already carry it
func wrapStorage(err error) error {
	if err == nil || errors.Is(err, domain.ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrStorage, err)
}
