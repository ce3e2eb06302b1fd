package http

import (
	"context"
	"errors"
	"testing"
	"time"

	"map_explorer/internal/events"
)

type plainModule struct{}

func (plainModule) Name() string                  { return "plain" }
func (plainModule) RegisterRoutes(*RouterContext) {}

type drainingModule struct {
	plainModule
	closed  bool
	release chan struct{}
}

func (m *drainingModule) CloseStreams() { m.closed = true }
func (m *drainingModule) Drain()        { <-m.release }

func TestAppCloseStreamsSkipsPlainModules(t *testing.T) {
	d := &drainingModule{release: make(chan struct{})}
	app := &App{Modules: []Module{plainModule{}, d}}

	app.CloseStreams()
	if !d.closed {
		t.Fatal("expected draining module streams to be closed")
	}
}

func TestAppDrainWaitsForModulesAndBus(t *testing.T) {
	d := &drainingModule{release: make(chan struct{})}
	bus := events.NewInMemoryBus(nil)
	app := &App{EventBus: bus, Modules: []Module{d}}

	close(d.release)
	if err := app.Drain(context.Background()); err != nil {
		t.Fatalf("expected drain to finish, got %v", err)
	}
}

func TestAppDrainHonoursDeadline(t *testing.T) {
	d := &drainingModule{release: make(chan struct{})}
	defer close(d.release)
	app := &App{Modules: []Module{d}}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := app.Drain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}
