// Package client provides the HTTP client for the Nominatim search API.
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

	"golang.org/x/time/rate"
)

const (
	serviceName = "nominatim"
	// DefaultLimit is the number of candidates requested per lookup.
	DefaultLimit = 5
	limiterBurst = 5
)

// Address is the subset of Nominatim address details the explorer keeps.
type Address struct {
	Road        string
	HouseNumber string
	City        string
	Postcode    string
	Country     string
}

// Result is one geocoding candidate in service relevance order.
type Result struct {
	DisplayName string
	Lat         float64
	Lon         float64
	Address     Address
}

// Client is the HTTP client for Nominatim.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	log        *logger.Logger
}

// New creates a Nominatim client. Calls are throttled to the configured rate.
func New(cfg config.GeocodingConfig, log *logger.Logger) *Client {
	limit := rate.Inf
	if rps := cfg.GetNominatimRPS(); rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.GetUpstreamTimeout()},
		baseURL:    cfg.GetNominatimURL(),
		userAgent:  cfg.GetUpstreamUserAgent(),
		limiter:    rate.NewLimiter(limit, limiterBurst),
		log:        log,
	}
}

// Search looks up free text and returns at most limit candidates.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.fail("throttle", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(limit))
	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

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
		return nil, c.fail("search", fmt.Errorf("upstream error: status %d", resp.StatusCode))
	}

	var raw []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, c.fail("decode response", err)
	}

	results := make([]Result, 0, len(raw))
	for i, r := range raw {
		result, err := r.toResult()
		if err != nil {
			return nil, c.fail("decode response", fmt.Errorf("result %d: %w", i, err))
		}
		results = append(results, result)
	}
	return results, nil
}

func (c *Client) fail(op string, err error) error {
	return apperr.Unavailable("geocoding service unavailable", fmt.Errorf("%s: %w", op, err)).WithOp("nominatim.Search")
}

type nominatimAddress struct {
	Road         string `json:"road"`
	HouseNumber  string `json:"house_number"`
	Postcode     string `json:"postcode"`
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
	Hamlet       string `json:"hamlet"`
	Country      string `json:"country"`
}

// nominatimResult mirrors the relevant parts of the OSM search payload.
// Coordinates arrive as strings.
type nominatimResult struct {
	DisplayName string           `json:"display_name"`
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	Address     nominatimAddress `json:"address"`
}

func (r nominatimResult) toResult() (Result, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil || lat < -90 || lat > 90 {
		return Result{}, fmt.Errorf("invalid lat %q", r.Lat)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil || lon < -180 || lon > 180 {
		return Result{}, fmt.Errorf("invalid lon %q", r.Lon)
	}

	return Result{
		DisplayName: r.DisplayName,
		Lat:         lat,
		Lon:         lon,
		Address: Address{
			Road:        r.Address.Road,
			HouseNumber: r.Address.HouseNumber,
			City:        pickCity(r.Address),
			Postcode:    r.Address.Postcode,
			Country:     r.Address.Country,
		},
	}, nil
}

func pickCity(address nominatimAddress) string {
	if address.City != "" {
		return address.City
	}
	if address.Town != "" {
		return address.Town
	}
	if address.Village != "" {
		return address.Village
	}
	if address.Municipality != "" {
		return address.Municipality
	}
	return address.Hamlet
}
