// Package handler serves the explorer page, its JSON API and the event stream.
package handler

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"map_explorer/internal/explorer/render"
	"map_explorer/internal/explorer/state"
	"map_explorer/internal/explorer/stream"
	"map_explorer/internal/explorer/transport"
	"map_explorer/platform/apperr"
	"map_explorer/platform/httpkit"
	"map_explorer/platform/logger"
	"map_explorer/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"

	// APIBase is where the session routes are mounted.
	APIBase = "/api/v1/explorer/sessions"
)

//go:embed templates/page.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html.tmpl"))

// Sessions is the session manager as seen by the HTTP layer.
type Sessions interface {
	Create(ctx context.Context) (uuid.UUID, state.State, error)
	Get(ctx context.Context, id uuid.UUID) (state.State, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Dispatch(ctx context.Context, id uuid.UUID, ev state.Event) (state.State, error)
}

// Streamer serves the per-session event stream.
type Streamer interface {
	Serve(c *gin.Context, sessionID uuid.UUID, load stream.InitialView) error
}

type Handler struct {
	sessions Sessions
	stream   Streamer
	theme    *render.Theme
	val      *validator.Validator
	center   state.Coordinate
}

func New(sessions Sessions, stream Streamer, theme *render.Theme, val *validator.Validator, center state.Coordinate) *Handler {
	return &Handler{
		sessions: sessions,
		stream:   stream,
		theme:    theme,
		val:      val,
		center:   center,
	}
}

// RegisterPage mounts the HTML page and marker icons.
func (h *Handler) RegisterPage(engine *gin.Engine) {
	engine.GET("/", h.Page)
	engine.GET(render.IconBasePath+":name", h.Icon)
}

// RegisterRoutes mounts the session API.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.DELETE("/:id", h.Delete)
	rg.PUT("/:id/query", h.UpdateQuery)
	rg.POST("/:id/suggestions/:index/select", h.SelectSuggestion)
	rg.PUT("/:id/amenity", h.UpdateAmenity)
	rg.GET("/:id/events", h.Events)
}

func (h *Handler) Page(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	err := pageTemplate.Execute(c.Writer, struct {
		Lat, Lon float64
		Zoom     int
		APIBase  string
		Options  []render.Option
	}{h.center.Lat, h.center.Lon, render.Zoom, APIBase, render.AmenityOptions()})
	if err != nil {
		_ = c.Error(err)
	}
}

func (h *Handler) Icon(c *gin.Context) {
	name, ok := strings.CutSuffix(c.Param("name"), ".svg")
	if !ok {
		httpkit.Error(c, http.StatusNotFound, "icon not found", nil)
		return
	}
	svg, ok := h.theme.SVG(name)
	if !ok {
		httpkit.Error(c, http.StatusNotFound, "icon not found", nil)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/svg+xml", svg)
}

func (h *Handler) Create(c *gin.Context) {
	id, s, err := h.sessions.Create(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, transport.SessionResponse{SessionID: id, View: render.Build(s, h.theme)})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	s, err := h.sessions.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ViewResponse{View: render.Build(s, h.theme)})
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.sessions.Delete(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) UpdateQuery(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.UpdateQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(validator.Describe(err)))
		return
	}
	h.dispatch(c, id, state.QueryChanged{Query: req.Query})
}

func (h *Handler) SelectSuggestion(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest).WithDetails("index must be an integer"))
		return
	}
	h.dispatch(c, id, state.SuggestionSelected{Index: index})
}

func (h *Handler) UpdateAmenity(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.UpdateAmenityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(validator.Describe(err)))
		return
	}
	amenity, err := state.ParseAmenity(req.Amenity)
	if err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}
	h.dispatch(c, id, state.AmenityChanged{Amenity: amenity})
}

func (h *Handler) Events(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	err := h.stream.Serve(c, id, func(ctx context.Context) (render.View, error) {
		s, err := h.sessions.Get(ctx, id)
		if err != nil {
			return render.View{}, err
		}
		return render.Build(s, h.theme), nil
	})
	httpkit.HandleError(c, err)
}

func (h *Handler) dispatch(c *gin.Context, id uuid.UUID, ev state.Event) {
	s, err := h.sessions.Dispatch(c.Request.Context(), id, ev)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Accepted(c, transport.ViewResponse{View: render.Build(s, h.theme)})
}

// parseID reads the session id and tags the request context with it for logging.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest).WithDetails("session id must be a UUID"))
		return uuid.Nil, false
	}
	c.Request = c.Request.WithContext(logger.WithSessionIDContext(c.Request.Context(), id.String()))
	return id, true
}
