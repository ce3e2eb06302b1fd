// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetAPIRateLimit() float64
	GetAPIRateBurst() int
}

// UpstreamConfig provides settings shared by all outbound API clients.
type UpstreamConfig interface {
	GetUpstreamUserAgent() string
	GetUpstreamTimeout() time.Duration
}

// GeocodingConfig provides settings for the Nominatim geocoding client.
type GeocodingConfig interface {
	UpstreamConfig
	GetNominatimURL() string
	GetNominatimRPS() float64
}

// POIConfig provides settings for the Overpass feature-query client.
type POIConfig interface {
	UpstreamConfig
	GetOverpassURL() string
}

// ExplorerConfig provides settings for the map explorer state machine.
type ExplorerConfig interface {
	GetDefaultCenter() (lat, lon float64)
	GetDiscardStaleResponses() bool
	GetIconThemePath() string
}

// SessionStoreConfig provides settings for explorer session storage.
type SessionStoreConfig interface {
	GetRedisURL() string
	GetSessionTTL() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	CORSAllowAll          bool
	CORSOrigins           []string
	APIRateLimit          float64
	APIRateBurst          int
	UpstreamUserAgent     string
	UpstreamTimeout       time.Duration
	NominatimURL          string
	NominatimRPS          float64
	OverpassURL           string
	DefaultLat            float64
	DefaultLon            float64
	DiscardStaleResponses bool
	IconThemePath         string
	RedisURL              string
	SessionTTL            time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetAPIRateLimit() float64 { return c.APIRateLimit }
func (c *Config) GetAPIRateBurst() int     { return c.APIRateBurst }

// UpstreamConfig implementation
func (c *Config) GetUpstreamUserAgent() string       { return c.UpstreamUserAgent }
func (c *Config) GetUpstreamTimeout() time.Duration { return c.UpstreamTimeout }

// GeocodingConfig implementation
func (c *Config) GetNominatimURL() string  { return c.NominatimURL }
func (c *Config) GetNominatimRPS() float64 { return c.NominatimRPS }

// POIConfig implementation
func (c *Config) GetOverpassURL() string { return c.OverpassURL }

// ExplorerConfig implementation
func (c *Config) GetDefaultCenter() (float64, float64) { return c.DefaultLat, c.DefaultLon }
func (c *Config) GetDiscardStaleResponses() bool       { return c.DiscardStaleResponses }
func (c *Config) GetIconThemePath() string             { return c.IconThemePath }

// SessionStoreConfig implementation
func (c *Config) GetRedisURL() string           { return c.RedisURL }
func (c *Config) GetSessionTTL() time.Duration { return c.SessionTTL }

// IsRedisEnabled reports whether sessions are kept in Redis instead of memory.
func (c *Config) IsRedisEnabled() bool { return c.RedisURL != "" }

// =============================================================================
// Loading
// =============================================================================

// Load reads configuration from the environment, optionally seeded by a .env file.
// Malformed numeric, duration and boolean values are reported, never replaced by zero.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := &envReader{}
	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:8080"))
	corsAllowAll := env.boolValue("CORS_ALLOW_ALL", "false")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		APIRateLimit:          env.floatValue("API_RATE_LIMIT_RPS", "20"),
		APIRateBurst:          int(env.intValue("API_RATE_LIMIT_BURST", "40")),
		UpstreamUserAgent:     getEnv("UPSTREAM_USER_AGENT", "map-explorer/1.0"),
		UpstreamTimeout:       env.durationValue("UPSTREAM_TIMEOUT", "0s"),
		NominatimURL:          strings.TrimRight(getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"), "/"),
		NominatimRPS:          env.floatValue("NOMINATIM_RPS", "1"),
		OverpassURL:           strings.TrimRight(getEnv("OVERPASS_URL", "https://overpass-api.de/api"), "/"),
		DefaultLat:            env.floatValue("EXPLORER_DEFAULT_LAT", "28.6139"),
		DefaultLon:            env.floatValue("EXPLORER_DEFAULT_LON", "77.209"),
		DiscardStaleResponses: env.boolValue("EXPLORER_DISCARD_STALE", "false"),
		IconThemePath:         getEnv("ICON_THEME_PATH", ""),
		RedisURL:              getEnv("REDIS_URL", ""),
		SessionTTL:            env.durationValue("SESSION_TTL", "24h"),
	}

	if err := errors.Join(env.errs...); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DefaultLat < -90 || c.DefaultLat > 90 {
		return fmt.Errorf("EXPLORER_DEFAULT_LAT must be within [-90, 90], got %v", c.DefaultLat)
	}
	if c.DefaultLon < -180 || c.DefaultLon > 180 {
		return fmt.Errorf("EXPLORER_DEFAULT_LON must be within [-180, 180], got %v", c.DefaultLon)
	}
	if err := requireHTTPURL("NOMINATIM_URL", c.NominatimURL); err != nil {
		return err
	}
	if err := requireHTTPURL("OVERPASS_URL", c.OverpassURL); err != nil {
		return err
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be a positive duration")
	}
	if c.UpstreamTimeout < 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT cannot be negative")
	}
	return nil
}

func requireHTTPURL(key, value string) error {
	parsed, err := url.Parse(value)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", key, value)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

// envReader parses typed env values and collects every malformed one.
type envReader struct {
	errs []error
}

func (r *envReader) fail(key, value, kind string) {
	r.errs = append(r.errs, fmt.Errorf("%s must be a valid %s, got %q", key, kind, value))
}

func (r *envReader) durationValue(key, fallback string) time.Duration {
	value := strings.TrimSpace(getEnv(key, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		r.fail(key, value, "duration")
		return 0
	}
	return d
}

func (r *envReader) intValue(key, fallback string) int64 {
	value := strings.TrimSpace(getEnv(key, fallback))
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		r.fail(key, value, "integer")
		return 0
	}
	return result
}

func (r *envReader) floatValue(key, fallback string) float64 {
	value := strings.TrimSpace(getEnv(key, fallback))
	result, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(result) || math.IsInf(result, 0) {
		r.fail(key, value, "number")
		return 0
	}
	return result
}

func (r *envReader) boolValue(key, fallback string) bool {
	value := strings.TrimSpace(getEnv(key, fallback))
	result, err := strconv.ParseBool(value)
	if err != nil {
		r.fail(key, value, "boolean")
		return false
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
