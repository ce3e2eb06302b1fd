// Package http provides HTTP server infrastructure including the Module interface
// that all domain modules must implement for route registration.
package http

import (
	"github.com/gin-gonic/gin"
)

// Module represents a bounded context that can register its HTTP routes.
type Module interface {
	// Name returns the module's identifier for logging purposes.
	Name() string
	// RegisterRoutes mounts the module's routes on the provided router group.
	RegisterRoutes(ctx *RouterContext)
}

// Drainer is implemented by modules that keep connections open or run
// work in the background after a request has returned.
type Drainer interface {
	// CloseStreams ends connections that never finish on their own.
	// It runs before the server stops accepting requests.
	CloseStreams()
	// Drain blocks until background work has finished.
	Drain()
}

// RouterContext provides shared dependencies for module route registration.
type RouterContext struct {
	// Engine is the root Gin engine for page and static routes.
	Engine *gin.Engine
	// V1 is the rate-limited /api/v1 route group.
	V1 *gin.RouterGroup
}
