package store

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/swingset/internal/domain"
)

// Driver identifies a storage backend
type Driver string

const (
	DriverBolt   Driver = "bolt"
	DriverSQLite Driver = "sqlite"
	DriverMemory Driver = "memory"
)

// ParseDriver accepts a driver name case-insensitively; empty means bolt.
func ParseDriver(s string) (Driver, error) {
	switch Driver(strings.ToLower(strings.TrimSpace(s))) {
	case "", DriverBolt:
		return DriverBolt, nil
	case DriverSQLite:
		return DriverSQLite, nil
	case DriverMemory:
		return DriverMemory, nil
	default:
		return "", fmt.Errorf("unknown storage driver %q", s)
	}
}

// Open returns the storage backend for driver rooted at path.
func Open(driver Driver, path string, logger *slog.Logger) (domain.Storage, error) {
	switch driver {
	case DriverBolt, "":
		return NewBoltStore(path, logger)
	case DriverSQLite:
		return NewSQLiteStore(path, logger)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
