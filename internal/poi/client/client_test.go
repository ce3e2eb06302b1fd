package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"map_explorer/platform/apperr"
	"map_explorer/platform/logger"
)

type testConfig struct {
	url string
}

func (c testConfig) GetUpstreamUserAgent() string       { return "map-explorer-test/1.0" }
func (c testConfig) GetUpstreamTimeout() time.Duration { return 0 }
func (c testConfig) GetOverpassURL() string             { return c.url }

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(testConfig{url: srv.URL}, logger.New("development"))
}

func TestQuery(t *testing.T) {
	got := Query(28.6, 77.2, "hospital")
	want := "[out:json];node(around:2000,28.6,77.2)[amenity=hospital];out;"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestNearbyMapsElements(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/interpreter" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("data"); got != Query(28.6, 77.2, "cafe") {
			t.Errorf("unexpected data %q", got)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a user agent")
		}
		_, _ = w.Write([]byte(`{"version":0.6,"elements":[
			{"type":"node","id":1,"lat":1,"lon":2,"tags":{"amenity":"cafe","name":" <i>X</i>\n"}},
			{"type":"node","id":2,"lat":3,"lon":4,"tags":{"amenity":"cafe"}},
			{"type":"node","id":3,"lat":5,"lon":6}
		]}`))
	})

	features, err := c.Nearby(context.Background(), 28.6, 77.2, "cafe")
	if err != nil {
		t.Fatalf("Nearby returned error: %v", err)
	}
	if len(features) != 3 {
		t.Fatalf("expected 3 features, got %d", len(features))
	}
	if features[0] != (Feature{Name: "X", Lat: 1, Lon: 2, Amenity: "cafe"}) {
		t.Fatalf("unexpected first feature %+v", features[0])
	}
	if features[1].Name != "" || features[1].Amenity != "cafe" {
		t.Fatalf("expected unnamed feature, got %+v", features[1])
	}
	if features[2].Amenity != "" {
		t.Fatalf("expected missing tags to yield empty amenity, got %+v", features[2])
	}
}

func TestNearbyEmptyResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"elements":[]}`))
	})
	features, err := c.Nearby(context.Background(), 0, 0, "cinema")
	if err != nil {
		t.Fatalf("Nearby returned error: %v", err)
	}
	if features == nil || len(features) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", features)
	}
}

func TestNearbyFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"gateway timeout", http.StatusGatewayTimeout, ``},
		{"bad request", http.StatusBadRequest, `<html>syntax error</html>`},
		{"malformed json", http.StatusOK, `{"elements":[`},
		{"missing elements", http.StatusOK, `{"remark":"runtime error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			if _, err := c.Nearby(context.Background(), 1, 1, "bank"); !apperr.Is(err, apperr.KindUnavailable) {
				t.Fatalf("expected KindUnavailable, got %v", err)
			}
		})
	}
}
