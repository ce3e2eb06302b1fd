package session

import (
	"context"
	"sync"
	"time"

	"map_explorer/internal/explorer/state"

	"github.com/google/uuid"
)

type memoryEntry struct {
	state     state.State
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory with a sliding TTL.
type MemoryStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryStore creates an in-memory store. Sessions idle for ttl are dropped.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		items: make(map[uuid.UUID]memoryEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, id uuid.UUID) (state.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.items[id]
	now := m.now()
	if !ok || !now.Before(entry.expiresAt) {
		delete(m.items, id)
		return state.State{}, errSessionNotFound()
	}
	entry.expiresAt = now.Add(m.ttl)
	m.items[id] = entry
	return entry.state, nil
}

func (m *MemoryStore) Put(_ context.Context, id uuid.UUID, s state.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = memoryEntry{state: s, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return errSessionNotFound()
	}
	delete(m.items, id)
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Sweep removes expired sessions and returns how many were dropped.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, entry := range m.items {
		if !now.Before(entry.expiresAt) {
			delete(m.items, id)
			removed++
		}
	}
	return removed
}

// Run sweeps on every interval until ctx is done.
func (m *MemoryStore) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Sweep()
		}
	}
}
