package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/swingset/internal/actions"
	"github.com/mmcdole/swingset/internal/lifecycle"
	"github.com/mmcdole/swingset/internal/tui"
	"github.com/mmcdole/swingset/internal/undo"
)

// toastBuffer bounds queued notifications; extra ones are dropped
const toastBuffer = 16

// runTUI starts background maintenance and runs the interactive browser
// until the user quits. The list is flushed once more on the way out.
func runTUI(ctx context.Context, a *app) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	toasts := make(chan actions.Toast, toastBuffer)
	registry := undo.NewRegistry(a.store, a.logger)
	acts := actions.New(a.store, registry, tui.NewChannelNotifier(toasts), a.logger)

	svc := lifecycle.New(a.store, a.cfg.LifecycleOptions(), a.logger, a.recorder)
	svc.Start(ctx)

	if a.metrics != nil {
		srv := startMetricsServer(a)
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			srv.Shutdown(shutdownCtx)
		}()
	}

	model := tui.NewModel(tui.Options{
		Store:   a.store,
		Actions: acts,
		Saver:   svc,
		Home:    a.home,
		Toasts:  toasts,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, runErr := p.Run()

	saveErr := svc.ForceSave(context.WithoutCancel(ctx))
	svc.Stop()
	if saveErr != nil {
		a.logger.Error("final save failed", "error", saveErr)
		saveErr = fmt.Errorf("failed to save playgrounds: %w", saveErr)
	}
	if runErr != nil {
		return fmt.Errorf("error running program: %w", runErr)
	}
	return saveErr
}

// startMetricsServer serves the Prometheus registry on the configured address
func startMetricsServer(a *app) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	srv := &http.Server{
		Addr:              a.cfg.Metrics.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server stopped", "addr", srv.Addr, "error", err)
		}
	}()
	a.logger.Info("serving metrics", "addr", srv.Addr)
	return srv
}
