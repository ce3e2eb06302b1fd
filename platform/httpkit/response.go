// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"errors"
	"net/http"

	"map_explorer/platform/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error response format.
// RequestID echoes the X-Request-ID header so browser errors can be matched to log lines.
type ErrorResponse struct {
	Error     string      `json:"error"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
}

func errorResponse(c *gin.Context, message string, details interface{}) ErrorResponse {
	return ErrorResponse{Error: message, Details: details, RequestID: c.GetString(ContextRequestIDKey)}
}

// Error sends an error response with the given status code and message.
func Error(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, errorResponse(c, message, details))
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// Created sends a 201 Created response with the given payload.
func Created(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusCreated, payload)
}

// Accepted sends a 202 Accepted response with the given payload.
// Used when the request started work that completes asynchronously.
func Accepted(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusAccepted, payload)
}

// HandleError maps domain errors to HTTP responses.
// A typed *apperr.Error picks the status from its Kind; anything else is a 400.
// The error is attached to the gin context so RequestLogger reports it.
// Returns true if an error was handled, false otherwise.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		_ = c.Error(err)
		c.JSON(domainErr.HTTPStatus(), errorResponse(c, domainErr.Message, domainErr.Details))
		return true
	}

	// Fallback for non-typed errors
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, errorResponse(c, err.Error(), nil))
	return true
}
