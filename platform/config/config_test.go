package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	lat, lon := cfg.GetDefaultCenter()
	if lat != 28.6139 || lon != 77.209 {
		t.Fatalf("expected default center (28.6139, 77.209), got (%v, %v)", lat, lon)
	}
	if cfg.GetNominatimURL() != "https://nominatim.openstreetmap.org" {
		t.Fatalf("unexpected nominatim url %q", cfg.GetNominatimURL())
	}
	if cfg.GetOverpassURL() != "https://overpass-api.de/api" {
		t.Fatalf("unexpected overpass url %q", cfg.GetOverpassURL())
	}
	if cfg.GetUpstreamTimeout() != 0 {
		t.Fatalf("expected no upstream timeout by default, got %s", cfg.GetUpstreamTimeout())
	}
	if cfg.GetDiscardStaleResponses() {
		t.Fatal("expected stale responses to be applied by default")
	}
	if cfg.GetSessionTTL() != 24*time.Hour {
		t.Fatalf("expected 24h session ttl, got %s", cfg.GetSessionTTL())
	}
	if cfg.IsRedisEnabled() {
		t.Fatal("expected redis to be disabled without REDIS_URL")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("NOMINATIM_URL", "http://localhost:9000/")
	t.Setenv("EXPLORER_DEFAULT_LAT", "52.37")
	t.Setenv("EXPLORER_DEFAULT_LON", "4.89")
	t.Setenv("EXPLORER_DISCARD_STALE", "TRUE")
	t.Setenv("UPSTREAM_TIMEOUT", "5s")
	t.Setenv("CORS_ORIGINS", "https://a.example, *")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.GetNominatimURL() != "http://localhost:9000" {
		t.Fatalf("expected trailing slash to be trimmed, got %q", cfg.GetNominatimURL())
	}
	if lat, lon := cfg.GetDefaultCenter(); lat != 52.37 || lon != 4.89 {
		t.Fatalf("unexpected center (%v, %v)", lat, lon)
	}
	if !cfg.GetDiscardStaleResponses() {
		t.Fatal("expected stale discard to be enabled")
	}
	if cfg.GetUpstreamTimeout() != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %s", cfg.GetUpstreamTimeout())
	}
	if !cfg.GetCORSAllowAll() {
		t.Fatal("expected wildcard origin to enable allow-all")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"latitude out of range", "EXPLORER_DEFAULT_LAT", "91"},
		{"longitude out of range", "EXPLORER_DEFAULT_LON", "-181"},
		{"relative nominatim url", "NOMINATIM_URL", "nominatim.local"},
		{"non-http overpass url", "OVERPASS_URL", "ftp://overpass.local"},
		{"zero session ttl", "SESSION_TTL", "0s"},
		{"negative timeout", "UPSTREAM_TIMEOUT", "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected %s=%q to be rejected", tt.key, tt.value)
			}
		})
	}
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"EXPLORER_DEFAULT_LAT", "28,61"},
		{"EXPLORER_DEFAULT_LON", "east"},
		{"API_RATE_LIMIT_RPS", "fast"},
		{"API_RATE_LIMIT_BURST", "4.5"},
		{"NOMINATIM_RPS", "NaN"},
		{"SESSION_TTL", "1 day"},
		{"UPSTREAM_TIMEOUT", "5"},
		{"EXPLORER_DISCARD_STALE", "yes"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil {
				t.Fatalf("expected %s=%q to be rejected", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Fatalf("expected error to name %s, got %v", tt.key, err)
			}
		})
	}
}
