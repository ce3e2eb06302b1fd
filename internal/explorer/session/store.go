// Package session runs explorer sessions: it serialises events per session,
// persists state and executes the fetches the state machine asks for.
package session

import (
	"context"

	"map_explorer/internal/explorer/state"
	"map_explorer/platform/apperr"

	"github.com/google/uuid"
)

// Store persists explorer state by session ID.
type Store interface {
	// Get returns apperr.KindNotFound for unknown or expired sessions.
	Get(ctx context.Context, id uuid.UUID) (state.State, error)
	Put(ctx context.Context, id uuid.UUID, s state.State) error
	Delete(ctx context.Context, id uuid.UUID) error
}

func errSessionNotFound() error {
	return apperr.NotFound("explorer session not found")
}
