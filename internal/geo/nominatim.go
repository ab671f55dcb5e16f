// Package geo resolves city names to coordinates using a local city table,
// a shared cross-computation cache and a rate-limited external geocoding
// provider.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Coordinates is a decimal latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Provider geocodes a city name. A nil result with nil error means the
// provider found no match.
type Provider interface {
	Geocode(ctx context.Context, name, countryCode string) (*Coordinates, error)
}

// NominatimClient queries a Nominatim-style search endpoint. 429/503
// responses are retried with exponential backoff; any other failure is
// reported immediately.
type NominatimClient struct {
	baseURL     string
	userAgent   string
	httpClient  *http.Client
	maxAttempts int
	backoffBase time.Duration
}

func NewNominatimClient(baseURL, userAgent string, timeout time.Duration) *NominatimClient {
	return &NominatimClient{
		baseURL:     baseURL,
		userAgent:   userAgent,
		httpClient:  &http.Client{Timeout: timeout},
		maxAttempts: 3,
		backoffBase: 500 * time.Millisecond,
	}
}

func (c *NominatimClient) Geocode(ctx context.Context, name, countryCode string) (*Coordinates, error) {
	query := name
	if countryCode != "" {
		query = name + ", " + countryCode
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, c.backoffBase<<(attempt-1)); err != nil {
				return nil, err
			}
		}
		coords, retryable, err := c.search(ctx, query)
		if err == nil {
			return coords, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *NominatimClient) search(ctx context.Context, query string) (coords *Coordinates, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search", nil)
	if err != nil {
		return nil, false, err
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("addressdetails", "0")
	q.Set("limit", "1")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return nil, true, fmt.Errorf("geocoder: rate limited: %s", resp.Status)
	default:
		return nil, false, fmt.Errorf("geocoder: bad status: %s", resp.Status)
	}

	// Nominatim encodes lat/lon as strings.
	var hits []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return nil, false, fmt.Errorf("geocoder: decode: %w", err)
	}
	if len(hits) == 0 {
		return nil, false, nil
	}
	lat, latErr := strconv.ParseFloat(hits[0].Lat, 64)
	lng, lngErr := strconv.ParseFloat(hits[0].Lon, 64)
	if latErr != nil || lngErr != nil {
		return nil, false, fmt.Errorf("geocoder: malformed coordinates %q,%q", hits[0].Lat, hits[0].Lon)
	}
	return &Coordinates{Lat: lat, Lng: lng}, false, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
