package playground

import (
	"github.com/mmcdole/swingset/internal/domain"
	"github.com/mmcdole/swingset/internal/query"
)

// State returns a deep copy of the store state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Playgrounds: cloneAll(s.playgrounds),
		Loading:     s.loading,
		Err:         s.err,
		ErrKind:     domain.KindOf(s.err),
		SortBy:      s.sortBy,
		FilterBy:    s.filterBy.Clone(),
		Dirty:       s.dirty,
	}
}

// Playgrounds returns the canonical list in insertion order.
func (s *Store) Playgrounds() []domain.Playground {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.playgrounds)
}

// View returns the list filtered and sorted by the current query parameters.
// ref is the reference point for distance sorting and may be nil.
func (s *Store) View(ref *domain.Coordinates) []domain.Playground {
	s.mu.RLock()
	list, key, filter := s.playgrounds, s.sortBy, s.filterBy
	s.mu.RUnlock()
	// query never mutates its input and returns deep copies
	return query.Query(list, key, filter, ref)
}

// Get returns the playground with id.
func (s *Store) Get(id string) (domain.Playground, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.playgrounds, id); i >= 0 {
		return s.playgrounds[i].Clone(), true
	}
	return domain.Playground{}, false
}

// Len returns the number of playgrounds held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.playgrounds)
}

// SortBy returns the current sort key.
func (s *Store) SortBy() domain.SortKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortBy
}

// FilterBy returns the current filter.
func (s *Store) FilterBy() domain.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterBy.Clone()
}

// Dirty reports whether view state changed since the last successful flush.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Err returns the error recorded by the last failed operation, if any.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}
