package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mmcdole/swingset/internal/adapter"
	"github.com/mmcdole/swingset/internal/domain"
	"github.com/mmcdole/swingset/internal/metrics"
	"github.com/mmcdole/swingset/internal/playground"
	"github.com/mmcdole/swingset/internal/store"
)

// app holds the services shared by every command
type app struct {
	cfg      *adapter.Config
	logger   *slog.Logger
	storage  domain.Storage
	store    *playground.Store
	metrics  *metrics.Recorder
	recorder domain.Recorder
	home     *domain.Coordinates

	closers []io.Closer
}

// openApp opens storage and loads the playground list
func openApp(ctx context.Context, cfg *adapter.Config, logger *slog.Logger) (*app, error) {
	driver, err := store.ParseDriver(cfg.Storage.Driver)
	if err != nil {
		return nil, err
	}
	sortKey, err := cfg.SortKey()
	if err != nil {
		return nil, err
	}
	home, err := cfg.HomePoint()
	if err != nil {
		return nil, err
	}

	path, err := adapter.ExpandPath(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	storage, err := store.Open(driver, path, logger)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		storage:  storage,
		recorder: domain.NoOpRecorder{},
		home:     home,
		closers:  []io.Closer{storage},
	}
	if cfg.Metrics.Listen != "" {
		a.metrics = metrics.NewRecorder()
		a.recorder = a.metrics
	}

	a.store = playground.NewStore(storage, logger,
		playground.WithRecorder(a.recorder),
		playground.WithDefaultSort(sortKey),
	)
	if err := a.store.LoadPlaygrounds(ctx); err != nil {
		a.Close()
		return nil, err
	}

	logger.Info("storage opened", "driver", driver, "playgrounds", a.store.Len())
	return a, nil
}

// Close releases storage and any other resources in reverse order
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// resolveID accepts a full ID or a unique prefix of one
func (a *app) resolveID(prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("%w: playground id is required", domain.ErrValidation)
	}
	if _, ok := a.store.Get(prefix); ok {
		return prefix, nil
	}
	var found []string
	for _, p := range a.store.Playgrounds() {
		if strings.HasPrefix(p.ID, prefix) {
			found = append(found, p.ID)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w: %s", domain.ErrNotFound, prefix)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%w: id prefix %q matches %d playgrounds", domain.ErrValidation, prefix, len(found))
	}
}
