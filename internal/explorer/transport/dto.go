// Package transport defines the request and response bodies of the explorer API.
package transport

import (
	"map_explorer/internal/explorer/render"

	"github.com/google/uuid"
)

// UpdateQueryRequest is a keystroke in the search box.
type UpdateQueryRequest struct {
	Query string `json:"query" validate:"max=256"`
}

// UpdateAmenityRequest is a change of the amenity dropdown. Empty clears the selection.
type UpdateAmenityRequest struct {
	Amenity string `json:"amenity" validate:"amenity"`
}

// SessionResponse is returned when a session is created.
type SessionResponse struct {
	SessionID uuid.UUID   `json:"sessionId"`
	View      render.View `json:"view"`
}

// ViewResponse wraps the view right after a transition.
// Fetch results arrive later on the event stream.
type ViewResponse struct {
	View render.View `json:"view"`
}
