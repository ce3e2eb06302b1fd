// Package stream pushes explorer view updates to browsers over Server-Sent Events.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"map_explorer/internal/events"
	"map_explorer/internal/explorer/render"
	"map_explorer/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventType is the SSE event name.
type EventType string

const (
	EventConnected   EventType = "connected"
	EventView        EventType = "view"
	EventFetchFailed EventType = "fetch_failed"

	clientBuffer      = 32
	heartbeatInterval = 25 * time.Second
)

// Event is one SSE payload.
type Event struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// FetchFailure is the payload of a fetch_failed event.
type FetchFailure struct {
	Operation string `json:"operation"`
	Message   string `json:"message"`
}

type client struct {
	sessionID uuid.UUID
	events    chan Event
}

// Hub fans session events out to connected browsers.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID][]*client
	theme   *render.Theme
	log     *logger.Logger
}

// NewHub creates a hub that renders views with theme.
func NewHub(theme *render.Theme, log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID][]*client),
		theme:   theme,
		log:     log,
	}
}

// Subscribe registers the hub on the session event bus.
func (h *Hub) Subscribe(bus events.Bus) {
	bus.Subscribe(events.ExplorerViewUpdated, events.HandlerFunc(func(_ context.Context, e events.Event) error {
		ev := e.(events.ViewUpdated)
		h.Publish(ev.SessionID, Event{Type: EventView, Data: render.Build(ev.State, h.theme)})
		return nil
	}))
	bus.Subscribe(events.ExplorerFetchFailed, events.HandlerFunc(func(_ context.Context, e events.Event) error {
		ev := e.(events.FetchFailed)
		h.Publish(ev.SessionID, Event{Type: EventFetchFailed, Data: FetchFailure{Operation: ev.Operation, Message: ev.Message}})
		return nil
	}))
	bus.Subscribe(events.ExplorerSessionDeleted, events.HandlerFunc(func(_ context.Context, e events.Event) error {
		h.CloseSession(e.(events.SessionDeleted).SessionID)
		return nil
	}))
}

func (h *Hub) addClient(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.sessionID] = append(h.clients[c.sessionID], c)
}

// removeClient unregisters c. It reports false if the client was already closed.
func (h *Hub) removeClient(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[c.sessionID]
	for i, cl := range clients {
		if cl == c {
			h.clients[c.sessionID] = append(clients[:i], clients[i+1:]...)
			if len(h.clients[c.sessionID]) == 0 {
				delete(h.clients, c.sessionID)
			}
			close(c.events)
			return true
		}
	}
	return false
}

// Publish sends an event to every browser watching the session. Slow clients miss events.
func (h *Hub) Publish(sessionID uuid.UUID, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients[sessionID] {
		select {
		case c.events <- event:
		default:
			h.log.Warn("sse buffer full", "session_id", sessionID.String(), "event", string(event.Type))
		}
	}
}

// Clients returns the number of connections for a session.
func (h *Hub) Clients(sessionID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// CloseSession disconnects every browser watching the session.
func (h *Hub) CloseSession(sessionID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.clients[sessionID] {
		close(c.events)
	}
	delete(h.clients, sessionID)
}

// InitialView loads the view sent when a browser connects.
type InitialView func(ctx context.Context) (render.View, error)

// Serve streams events for sessionID until the client goes away or the session closes.
// The client is registered before load runs, so no transition is lost in between.
// An error from load is returned before anything is written.
func (h *Hub) Serve(c *gin.Context, sessionID uuid.UUID, load InitialView) error {
	cl := &client{
		sessionID: sessionID,
		events:    make(chan Event, clientBuffer),
	}
	h.addClient(cl)
	defer h.removeClient(cl)

	initial, err := load(c.Request.Context())
	if err != nil {
		return err
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent(string(EventConnected), gin.H{"sessionId": sessionID})
	h.write(c, Event{Type: EventView, Data: initial})

	log := h.log.WithContext(logger.WithSessionIDContext(c.Request.Context(), sessionID.String()))
	log.Debug("sse client connected")

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			log.Debug("sse client disconnected")
			return nil
		case <-heartbeat.C:
			_, _ = c.Writer.WriteString(": keepalive\n\n")
			c.Writer.Flush()
		case event, ok := <-cl.events:
			if !ok {
				return nil
			}
			h.write(c, event)
		}
	}
}

func (h *Hub) write(c *gin.Context, event Event) {
	data, err := json.Marshal(event.Data)
	if err != nil {
		h.log.Error("sse encode failed", "event", string(event.Type), "error", err)
		return
	}
	c.SSEvent(string(event.Type), string(data))
	c.Writer.Flush()
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for _, c := range clients {
			close(c.events)
		}
	}
	h.clients = make(map[uuid.UUID][]*client)
}
