// Package playground holds the canonical in-memory playground list and keeps
// it in step with device storage.
//
// Mutations are all-or-nothing: the new list is written to storage first and
// only swapped in after the write succeeds, so a failed write leaves both the
// list and storage as they were. Mutations are serialized; readers always get
// deep copies.
package playground

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/swingset/internal/domain"
)

// State is a point-in-time copy of the store
type State struct {
	Playgrounds []domain.Playground
	Loading     bool
	Err         error
	ErrKind     domain.ErrorKind
	SortBy      domain.SortKey
	FilterBy    domain.Filter
	Dirty       bool
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides time.Now (tests)
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the UUID generator (tests)
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithRecorder attaches an instrumentation sink
func WithRecorder(r domain.Recorder) Option {
	return func(s *Store) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithDefaultSort sets the sort key used until preferences are loaded
func WithDefaultSort(key domain.SortKey) Option {
	return func(s *Store) {
		if slices.Contains(domain.SortKeys(), key) {
			s.sortBy = key
		}
	}
}

// Store is the single writer of the playground list and of storage.
type Store struct {
	storage  domain.Storage
	logger   *slog.Logger
	recorder domain.Recorder
	now      func() time.Time
	newID    func() string

	// writeMu serializes mutations, loads and flushes (held across storage I/O)
	writeMu sync.Mutex

	mu          sync.RWMutex // Protects the fields below
	playgrounds []domain.Playground
	loading     bool
	err         error
	sortBy      domain.SortKey
	filterBy    domain.Filter
	dirty       bool
	dirtyGen    uint64
	lastRemoved removal
}

// removal remembers where the most recent deletion sat so a restore can put it back
type removal struct {
	id    string
	index int
}

// NewStore creates an empty store over storage. Call LoadPlaygrounds to populate it.
func NewStore(storage domain.Storage, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		storage:     storage,
		logger:      logger,
		recorder:    domain.NoOpRecorder{},
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
		playgrounds: []domain.Playground{},
		sortBy:      domain.SortByDateAdded,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Storage returns the backing storage collaborator
func (s *Store) Storage() domain.Storage {
	return s.storage
}

// --- Private helpers ---

// snapshot returns a shallow copy of the list; elements are never mutated in place
func (s *Store) snapshot() []domain.Playground {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.playgrounds)
}

// markDirtyLocked flags unsaved view state. Caller holds mu.
func (s *Store) markDirtyLocked() {
	s.dirty = true
	s.dirtyGen++
}

func (s *Store) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// fail records err as the store error and reports the failed operation
func (s *Store) fail(op string, err error) error {
	s.setErr(err)
	s.recorder.ObserveMutation(op, err)
	level := slog.LevelError
	if kind := domain.KindOf(err); kind == domain.ErrorKindValidation || kind == domain.ErrorKindNotFound {
		level = slog.LevelWarn
	}
	s.logger.Log(context.Background(), level, "playground operation failed", "op", op, "error", err)
	return err
}

func (s *Store) savePlaygrounds(ctx context.Context, list []domain.Playground) error {
	start := time.Now()
	err := s.storage.SavePlaygrounds(ctx, list)
	s.recorder.ObservePersist(time.Since(start), err)
	return wrapStorage(err)
}

func indexOf(list []domain.Playground, id string) int {
	return slices.IndexFunc(list, func(p domain.Playground) bool { return p.ID == id })
}

func cloneAll(list []domain.Playground) []domain.Playground {
	out := make([]domain.Playground, len(list))
	for i, p := range list {
		out[i] = p.Clone()
	}
	return out
}
