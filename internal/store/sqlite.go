package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/mmcdole/swingset/internal/domain"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLiteStore persists each bucket as a single JSON blob in one table.
// Every save replaces the whole bucket inside a transaction.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

var (
	_ domain.Storage    = (*SQLiteStore)(nil)
	_ domain.Maintainer = (*SQLiteStore)(nil)
)

// NewSQLiteStore opens (or creates) the database file at path.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		return nil, fmt.Errorf("%w: sqlite path is required", domain.ErrStorage)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("%w: create dirs: %v", domain.ErrStorage, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", domain.ErrStorage, err)
	}
	// One writer; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: create state table: %v", domain.ErrStorage, err)
	}
	return &SQLiteStore{db: db, path: path, logger: logger}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) load(ctx context.Context, bucket string, dest any) (bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = ?`, bucket).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("select %s: %w", bucket, err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", bucket, err)
	}
	return true, nil
}

func (s *SQLiteStore) persist(ctx context.Context, bucket string, value any) (retErr error) {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", bucket, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO state(bucket, payload) VALUES(?, ?)
		 ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload`,
		bucket, data,
	); err != nil {
		return fmt.Errorf("upsert %s: %w", bucket, err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadPlaygrounds(ctx context.Context) ([]domain.Playground, error) {
	var playgrounds []domain.Playground
	if _, err := s.load(ctx, "playgrounds", &playgrounds); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	if playgrounds == nil {
		playgrounds = []domain.Playground{}
	}
	return playgrounds, nil
}

func (s *SQLiteStore) SavePlaygrounds(ctx context.Context, playgrounds []domain.Playground) error {
	if playgrounds == nil {
		playgrounds = []domain.Playground{}
	}
	if err := s.persist(ctx, "playgrounds", playgrounds); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return nil
}

func (s *SQLiteStore) LoadPreferences(ctx context.Context) (domain.Preferences, bool, error) {
	var prefs domain.Preferences
	ok, err := s.load(ctx, "prefs", &prefs)
	if err != nil {
		return domain.Preferences{}, false, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return prefs, ok, nil
}

func (s *SQLiteStore) SavePreferences(ctx context.Context, prefs domain.Preferences) error {
	if err := s.persist(ctx, "prefs", prefs); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return nil
}

// Maintain lets sqlite refresh its query planner statistics.
func (s *SQLiteStore) Maintain(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `PRAGMA optimize`); err != nil {
		return fmt.Errorf("%w: optimize: %v", domain.ErrStorage, err)
	}
	s.logger.Debug("sqlite maintenance", "path", s.path)
	return nil
}
