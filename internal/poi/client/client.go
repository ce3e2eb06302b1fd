// Package client provides the HTTP client for the Overpass interpreter API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"map_explorer/platform/apperr"
	"map_explorer/platform/config"
	"map_explorer/platform/logger"
	"map_explorer/platform/sanitize"
)

const (
	serviceName = "overpass"
	// RadiusMeters is the search radius around the center coordinate.
	RadiusMeters = 2000
)

// Feature is a point of interest. Name is empty when the node carries no name tag.
type Feature struct {
	Name    string
	Lat     float64
	Lon     float64
	Amenity string
}

// Client is the HTTP client for Overpass.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	log        *logger.Logger
}

// New creates an Overpass client.
func New(cfg config.POIConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.GetUpstreamTimeout()},
		baseURL:    cfg.GetOverpassURL(),
		userAgent:  cfg.GetUpstreamUserAgent(),
		log:        log,
	}
}

// Query builds the Overpass QL selecting amenity nodes around (lat, lon).
func Query(lat, lon float64, amenity string) string {
	return fmt.Sprintf("[out:json];node(around:%d,%s,%s)[amenity=%s];out;",
		RadiusMeters,
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lon, 'f', -1, 64),
		amenity,
	)
}

// Nearby returns amenity nodes within RadiusMeters of (lat, lon).
func (c *Client) Nearby(ctx context.Context, lat, lon float64, amenity string) ([]Feature, error) {
	reqURL := fmt.Sprintf("%s/interpreter?%s", c.baseURL, url.Values{"data": {Query(lat, lon, amenity)}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, c.fail("create request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail("http request", err)
	}
	defer resp.Body.Close()

	c.log.UpstreamCall(serviceName, http.MethodGet, reqURL, resp.StatusCode, float64(time.Since(start).Milliseconds()))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail("interpreter", fmt.Errorf("upstream error: status %d", resp.StatusCode))
	}

	var payload overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, c.fail("decode response", err)
	}
	if payload.Elements == nil {
		return nil, c.fail("decode response", fmt.Errorf("missing elements"))
	}

	features := make([]Feature, 0, len(payload.Elements))
	for _, el := range payload.Elements {
		features = append(features, Feature{
			Name:    sanitize.Text(el.Tags["name"]),
			Lat:     el.Lat,
			Lon:     el.Lon,
			Amenity: el.Tags["amenity"],
		})
	}
	return features, nil
}

func (c *Client) fail(op string, err error) error {
	return apperr.Unavailable("feature query service unavailable", fmt.Errorf("%s: %w", op, err)).WithOp("overpass.Nearby")
}

type overpassElement struct {
	Type string            `json:"type"`
	ID   int64             `json:"id"`
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}
