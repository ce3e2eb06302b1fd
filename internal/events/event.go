// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"map_explorer/internal/explorer/state"
	"map_explorer/platform/events"
	"map_explorer/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates the process-local bus the explorer publishes on.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Explorer Domain Events
// =============================================================================

const (
	ExplorerViewUpdated    = "explorer.view.updated"
	ExplorerFetchFailed    = "explorer.fetch.failed"
	ExplorerSessionDeleted = "explorer.session.deleted"
)

// ViewUpdated is published after every applied transition, in order per session.
type ViewUpdated struct {
	BaseEvent
	SessionID uuid.UUID   `json:"sessionId"`
	State     state.State `json:"state"`
}

func (e ViewUpdated) EventName() string { return ExplorerViewUpdated }

// FetchFailed is published when an upstream call fails. It is informational only.
type FetchFailed struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	Operation string    `json:"operation"`
	Message   string    `json:"message"`
}

func (e FetchFailed) EventName() string { return ExplorerFetchFailed }

// SessionDeleted is published when a session is discarded.
type SessionDeleted struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
}

func (e SessionDeleted) EventName() string { return ExplorerSessionDeleted }
