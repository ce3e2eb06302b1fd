package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindValidation, http.StatusBadRequest},
		{KindBadRequest, http.StatusBadRequest},
		{KindInternal, http.StatusInternalServerError},
		{KindUnavailable, http.StatusBadGateway},
		{KindUnknown, http.StatusBadRequest},
	}

	for _, tt := range tests {
		if got := New(tt.kind, "x").HTTPStatus(); got != tt.want {
			t.Fatalf("kind %d: expected status %d, got %d", tt.kind, tt.want, got)
		}
	}
}

func TestGetKindUnwrapsWrappedErrors(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("fetch suggestions: %w", Unavailable("geocoding request failed", cause))

	if !Is(err, KindUnavailable) {
		t.Fatalf("expected wrapped error to be KindUnavailable, got %d", GetKind(err))
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected underlying cause to be reachable through errors.Is")
	}
	if GetKind(cause) != KindUnknown {
		t.Fatal("expected plain error to have unknown kind")
	}
}

func TestErrorMessageIncludesOp(t *testing.T) {
	err := NotFound("session not found").WithOp("session.Load")
	if err.Error() != "session.Load: session not found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestDetailsAreKept(t *testing.T) {
	err := BadRequest("invalid request").WithDetails("index must be an integer")
	if err.HTTPStatus() != http.StatusBadRequest || err.Details != "index must be an integer" {
		t.Fatalf("unexpected error %+v", err)
	}
}
