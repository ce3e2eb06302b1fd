// Package explorer provides the map explorer bounded context module.
// This file defines the module that encapsulates all explorer setup.
package explorer

import (
	"fmt"

	"map_explorer/internal/events"
	"map_explorer/internal/explorer/handler"
	"map_explorer/internal/explorer/render"
	"map_explorer/internal/explorer/session"
	"map_explorer/internal/explorer/state"
	"map_explorer/internal/explorer/stream"
	geoclient "map_explorer/internal/geocoding/client"
	apphttp "map_explorer/internal/http"
	poiclient "map_explorer/internal/poi/client"
	"map_explorer/platform/config"
	"map_explorer/platform/logger"
	"map_explorer/platform/validator"
)

// Config combines the config interfaces the explorer module needs.
type Config interface {
	config.ExplorerConfig
	config.GeocodingConfig
	config.POIConfig
}

// Module is the map explorer bounded context module.
type Module struct {
	handler *handler.Handler
	manager *session.Manager
	hub     *stream.Hub
}

// NewModule wires the explorer: upstream clients, session manager, SSE hub and handlers.
func NewModule(cfg Config, store session.Store, bus events.Bus, val *validator.Validator, log *logger.Logger) (*Module, error) {
	theme, err := render.LoadTheme(cfg.GetIconThemePath())
	if err != nil {
		return nil, fmt.Errorf("load icon theme: %w", err)
	}
	if err := val.RegisterStringSet("amenity", state.AmenityValues()); err != nil {
		return nil, fmt.Errorf("register amenity validation: %w", err)
	}

	geocoder := geocoderAdapter{client: geoclient.New(cfg, log)}
	places := placesAdapter{client: poiclient.New(cfg, log)}
	manager := session.NewManager(store, geocoder, places, bus, cfg, log)

	hub := stream.NewHub(theme, log)
	hub.Subscribe(bus)

	lat, lon := cfg.GetDefaultCenter()
	h := handler.New(manager, hub, theme, val, state.Coordinate{Lat: lat, Lon: lon})

	log.Info("explorer module initialized", "discard_stale", cfg.GetDiscardStaleResponses())

	return &Module{
		handler: h,
		manager: manager,
		hub:     hub,
	}, nil
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "explorer"
}

// RegisterRoutes mounts the page, icons and session API.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterPage(ctx.Engine)
	m.handler.RegisterRoutes(ctx.V1.Group("/explorer/sessions"))
}

// CloseStreams disconnects every browser event stream.
func (m *Module) CloseStreams() {
	m.hub.Close()
}

// Drain waits for in-flight fetches to finish and apply their results.
func (m *Module) Drain() {
	m.manager.Drain()
}

// Compile-time checks that Module implements the http module contracts
var (
	_ apphttp.Module  = (*Module)(nil)
	_ apphttp.Drainer = (*Module)(nil)
)
