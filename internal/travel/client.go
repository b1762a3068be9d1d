package travel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	defaultSerpBaseURL   = "https://serpapi.com/search.json"
	defaultPlacesBaseURL = "https://maps.googleapis.com/maps/api/place/textsearch/json"

	cacheDefaultTTL   = 10 * time.Minute
	cacheSweepEvery   = 15 * time.Minute
	maxResultsPerCall = 8
)

// Client implements Gateway against SerpAPI (flights, hotels, activities,
// events) and the Google Places text search API. Responses are cached
// in-process since providers charge per request and itinerary patching
// re-queries single providers.
type Client struct {
	httpClient *http.Client
	cache      *cache.Cache

	serpAPIKey    string
	placesAPIKey  string
	serpBaseURL   string
	placesBaseURL string
	timeout       time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURLs overrides the provider endpoints. Used by tests.
func WithBaseURLs(serp, places string) Option {
	return func(c *Client) {
		c.serpBaseURL = serp
		c.placesBaseURL = places
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a provider gateway with a bounded per-call timeout.
func NewClient(serpAPIKey, placesAPIKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient:    &http.Client{},
		cache:         cache.New(cacheDefaultTTL, cacheSweepEvery),
		serpAPIKey:    serpAPIKey,
		placesAPIKey:  placesAPIKey,
		serpBaseURL:   defaultSerpBaseURL,
		placesBaseURL: defaultPlacesBaseURL,
		timeout:       timeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON performs a GET with the per-call timeout and decodes the response
// body into out. Errors are wrapped as ProviderError by the callers.
func (c *Client) getJSON(ctx context.Context, baseURL string, params url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// cached wraps a fetch with the response cache.
func cached[T any](c *Client, key string, fetch func() ([]T, error)) ([]T, error) {
	if hit, ok := c.cache.Get(key); ok {
		if results, ok := hit.([]T); ok {
			return results, nil
		}
	}
	results, err := fetch()
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, results, cache.DefaultExpiration)
	return results, nil
}

var _ Gateway = (*Client)(nil)
