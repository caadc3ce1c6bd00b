// Package lifecycle runs the background maintenance and auto-save loops for
// a playground store.
package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/swingset/internal/domain"
)

// Default intervals
const (
	DefaultMaintenanceInterval = 5 * time.Minute
	DefaultAutoSaveInterval    = 30 * time.Second
)

// ErrStopped is returned by ForceSave after Stop
var ErrStopped = errors.New("lifecycle service stopped")

// Target is the store surface the service drives. *playground.Store satisfies it.
type Target interface {
	Maintain(ctx context.Context) error
	Dirty() bool
	Flush(ctx context.Context) error
	TryFlush(ctx context.Context) error
}

// Options configures the loop intervals. Zero values use the defaults.
type Options struct {
	MaintenanceInterval time.Duration
	AutoSaveInterval    time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaintenanceInterval <= 0 {
		o.MaintenanceInterval = DefaultMaintenanceInterval
	}
	if o.AutoSaveInterval <= 0 {
		o.AutoSaveInterval = DefaultAutoSaveInterval
	}
	return o
}

// Service owns the maintenance and auto-save timers.
type Service struct {
	opts     Options
	logger   *slog.Logger
	recorder domain.Recorder

	mu      sync.Mutex
	target  Target
	started bool
	cancel  context.CancelFunc

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a service for target. Nothing runs until Start.
func New(target Target, opts Options, logger *slog.Logger, recorder domain.Recorder) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = domain.NoOpRecorder{}
	}
	return &Service{
		opts:     opts.withDefaults(),
		logger:   logger,
		recorder: recorder,
		target:   target,
	}
}

// Start runs one maintenance pass, then starts both loops. The loops end when
// ctx is cancelled or Stop is called. Later calls do nothing.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.target == nil {
		s.mu.Unlock()
		return
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	target := s.target
	s.mu.Unlock()

	s.maintain(ctx, target)

	s.wg.Add(2)
	go s.loop(ctx, s.opts.MaintenanceInterval, func() { s.maintain(ctx, target) })
	go s.loop(ctx, s.opts.AutoSaveInterval, func() { s.autoSave(ctx, target) })

	s.logger.Debug("lifecycle started",
		"maintenanceInterval", s.opts.MaintenanceInterval,
		"autoSaveInterval", s.opts.AutoSaveInterval,
	)
}

// ShouldAutoSave reports whether the store has unsaved changes.
func (s *Service) ShouldAutoSave() bool {
	target := s.current()
	return target != nil && target.Dirty()
}

// ForceSave flushes the store whether or not it is dirty.
func (s *Service) ForceSave(ctx context.Context) error {
	target := s.current()
	if target == nil {
		return ErrStopped
	}
	if err := target.Flush(ctx); err != nil {
		s.logger.Error("force save failed", "error", err)
		return err
	}
	return nil
}

// Stop cancels both loops, waits for them to return and drops the store.
// It is safe to call more than once.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		cancel := s.cancel
		s.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		s.wg.Wait()

		s.mu.Lock()
		s.target = nil
		s.mu.Unlock()
		s.logger.Debug("lifecycle stopped")
	})
}

func (s *Service) current() Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

func (s *Service) loop(ctx context.Context, every time.Duration, tick func()) {
	defer s.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			tick()
		case <-ctx.Done():
			return
		}
	}
}

func (s *Service) maintain(ctx context.Context, target Target) {
	err := target.Maintain(ctx)
	s.recorder.ObserveMaintenance(err)
	if err != nil {
		s.logger.Warn("maintenance failed", "error", err)
	}
}

func (s *Service) autoSave(ctx context.Context, target Target) {
	if !target.Dirty() {
		s.recorder.ObserveAutoSave(false, nil)
		return
	}

	err := target.TryFlush(ctx)
	switch {
	case errors.Is(err, domain.ErrSaveInProgress):
		s.logger.Debug("auto-save skipped", "reason", err)
		s.recorder.ObserveAutoSave(false, nil)
	case err != nil:
		s.logger.Warn("auto-save failed", "error", err)
		s.recorder.ObserveAutoSave(false, err)
	default:
		s.recorder.ObserveAutoSave(true, nil)
	}
}
