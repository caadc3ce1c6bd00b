package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mmcdole/swingset/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketPlaygrounds = []byte("playgrounds")
	bucketPrefs       = []byte("prefs")
)

// Keys within buckets
const (
	keyList  = "list"
	keyPrefs = "view"
)

// BoltStore implements domain.Storage using BoltDB.
type BoltStore struct {
	db     *bolt.DB
	logger *slog.Logger
	mu     sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

var (
	_ domain.Storage    = (*BoltStore)(nil)
	_ domain.Maintainer = (*BoltStore)(nil)
)

// NewBoltStore opens (or creates) the database at path.
// An empty path runs in memory-only mode with no persistence.
func NewBoltStore(path string, logger *slog.Logger) (*BoltStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		return &BoltStore{logger: logger, cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: create data directory: %v", domain.ErrStorage, err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: open bolt db: %v", domain.ErrStorage, err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketPlaygrounds, bucketPrefs} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create buckets: %v", domain.ErrStorage, err)
	}

	return &BoltStore{db: db, logger: logger, cache: make(map[string][]byte)}, nil
}

func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *BoltStore) get(bucket []byte, key string, dest any) (bool, error) {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return true, json.Unmarshal(data, dest)
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false, nil
	}

	// Read from BoltDB
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if data == nil {
		return false, nil
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return true, json.Unmarshal(data, dest)
}

func (s *BoltStore) set(bucket []byte, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if s.db != nil {
		// Write to BoltDB first so a failed write never reaches the cache
		err := s.db.Update(func(tx *bolt.Tx) error {
			b := tx.Bucket(bucket)
			return b.Put([]byte(key), data)
		})
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.cache[string(bucket)+":"+key] = data
	s.mu.Unlock()
	return nil
}

// === Playgrounds ===

func (s *BoltStore) LoadPlaygrounds(ctx context.Context) ([]domain.Playground, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	var playgrounds []domain.Playground
	if _, err := s.get(bucketPlaygrounds, keyList, &playgrounds); err != nil {
		return nil, fmt.Errorf("%w: read playgrounds: %v", domain.ErrStorage, err)
	}
	if playgrounds == nil {
		playgrounds = []domain.Playground{}
	}
	return playgrounds, nil
}

func (s *BoltStore) SavePlaygrounds(ctx context.Context, playgrounds []domain.Playground) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	if playgrounds == nil {
		playgrounds = []domain.Playground{}
	}
	if err := s.set(bucketPlaygrounds, keyList, playgrounds); err != nil {
		return fmt.Errorf("%w: write playgrounds: %v", domain.ErrStorage, err)
	}
	return nil
}

// === Preferences ===

func (s *BoltStore) LoadPreferences(ctx context.Context) (domain.Preferences, bool, error) {
	var prefs domain.Preferences
	ok, err := s.get(bucketPrefs, keyPrefs, &prefs)
	if err != nil {
		return domain.Preferences{}, false, fmt.Errorf("%w: read preferences: %v", domain.ErrStorage, err)
	}
	return prefs, ok, nil
}

func (s *BoltStore) SavePreferences(ctx context.Context, prefs domain.Preferences) error {
	if err := s.set(bucketPrefs, keyPrefs, prefs); err != nil {
		return fmt.Errorf("%w: write preferences: %v", domain.ErrStorage, err)
	}
	return nil
}

// === Maintenance ===

// Maintain drops the read cache (it is rebuilt on the next access) and
// logs database statistics.
func (s *BoltStore) Maintain(ctx context.Context) error {
	if s.db == nil {
		// Memory-only mode: the cache is the data
		return nil
	}

	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	stats := s.db.Stats()
	var size int64
	err := s.db.View(func(tx *bolt.Tx) error {
		size = tx.Size()
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: inspect bolt db: %v", domain.ErrStorage, err)
	}
	s.logger.Debug("bolt maintenance",
		"path", s.db.Path(),
		"sizeBytes", size,
		"freePages", stats.FreePageN,
		"openTx", stats.OpenTxN,
	)
	return nil
}
