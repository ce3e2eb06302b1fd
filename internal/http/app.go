// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"map_explorer/internal/events"
	"map_explorer/platform/config"
	"map_explorer/platform/logger"
)

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	Config config.HTTPConfig
	Logger *logger.Logger
	// Health is used for readiness checks (e.g. Redis ping). Optional.
	Health HealthChecker
	// EventBus carries domain events between modules. Async handlers are
	// waited for during Drain when the bus supports it.
	EventBus events.Bus
	Modules  []Module
}

// CloseStreams asks every Drainer module to end its open connections.
func (a *App) CloseStreams() {
	for _, m := range a.Modules {
		if d, ok := m.(Drainer); ok {
			d.CloseStreams()
		}
	}
}

// Drain waits for module background work and async event handlers.
// It returns ctx.Err() if ctx ends first; the work keeps running.
func (a *App) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, m := range a.Modules {
			if d, ok := m.(Drainer); ok {
				d.Drain()
			}
		}
		if w, ok := a.EventBus.(interface{ Wait() }); ok {
			w.Wait()
		}
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
