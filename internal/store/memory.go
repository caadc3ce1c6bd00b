package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mmcdole/swingset/internal/domain"
)

// MemoryStore is an in-process domain.Storage for tests and ephemeral runs.
// Values round-trip through JSON so it behaves like the on-disk drivers.
type MemoryStore struct {
	mu          sync.Mutex
	playgrounds []byte
	prefs       []byte

	loadErr error
	saveErr error
	saves   int
}

var _ domain.Storage = (*MemoryStore)(nil)

// NewMemoryStore returns an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// FailLoads makes subsequent loads return err (nil restores normal behaviour).
func (m *MemoryStore) FailLoads(err error) {
	m.mu.Lock()
	m.loadErr = err
	m.mu.Unlock()
}

// FailSaves makes subsequent saves return err (nil restores normal behaviour).
func (m *MemoryStore) FailSaves(err error) {
	m.mu.Lock()
	m.saveErr = err
	m.mu.Unlock()
}

// Saves returns how many successful playground/preference writes happened.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *MemoryStore) LoadPlaygrounds(ctx context.Context) ([]domain.Playground, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, m.loadErr)
	}
	out := []domain.Playground{}
	if m.playgrounds == nil {
		return out, nil
	}
	if err := json.Unmarshal(m.playgrounds, &out); err != nil {
		return nil, fmt.Errorf("%w: decode playgrounds: %v", domain.ErrStorage, err)
	}
	if out == nil {
		out = []domain.Playground{}
	}
	return out, nil
}

func (m *MemoryStore) SavePlaygrounds(ctx context.Context, playgrounds []domain.Playground) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, m.saveErr)
	}
	data, err := json.Marshal(playgrounds)
	if err != nil {
		return fmt.Errorf("%w: encode playgrounds: %v", domain.ErrStorage, err)
	}
	m.playgrounds = data
	m.saves++
	return nil
}

func (m *MemoryStore) LoadPreferences(ctx context.Context) (domain.Preferences, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return domain.Preferences{}, false, fmt.Errorf("%w: %v", domain.ErrStorage, m.loadErr)
	}
	if m.prefs == nil {
		return domain.Preferences{}, false, nil
	}
	var prefs domain.Preferences
	if err := json.Unmarshal(m.prefs, &prefs); err != nil {
		return domain.Preferences{}, false, fmt.Errorf("%w: decode preferences: %v", domain.ErrStorage, err)
	}
	return prefs, true, nil
}

func (m *MemoryStore) SavePreferences(ctx context.Context, prefs domain.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, m.saveErr)
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("%w: encode preferences: %v", domain.ErrStorage, err)
	}
	m.prefs = data
	m.saves++
	return nil
}

func (m *MemoryStore) Close() error { return nil }
