package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *NominatimClient {
	c := NewNominatimClient(baseURL, "test-agent/1.0", 2*time.Second)
	c.backoffBase = time.Millisecond
	return c
}

func TestGeocodeParsesNominatimResponse(t *testing.T) {
	var gotQuery, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`[{"lat":"48.8566","lon":"2.3522"}]`))
	}))
	defer srv.Close()

	coords, err := newTestClient(srv.URL).Geocode(context.Background(), "paris", "FR")
	require.NoError(t, err)
	require.NotNil(t, coords)
	assert.InDelta(t, 48.8566, coords.Lat, 1e-9)
	assert.InDelta(t, 2.3522, coords.Lng, 1e-9)
	assert.Equal(t, "paris, FR", gotQuery)
	assert.Equal(t, "test-agent/1.0", gotAgent)
}

func TestGeocodeNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	coords, err := newTestClient(srv.URL).Geocode(context.Background(), "atlantis", "FR")
	require.NoError(t, err)
	assert.Nil(t, coords)
}

func TestGeocodeRetriesOnRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[{"lat":"50.63","lon":"3.06"}]`))
	}))
	defer srv.Close()

	coords, err := newTestClient(srv.URL).Geocode(context.Background(), "lille", "FR")
	require.NoError(t, err)
	require.NotNil(t, coords)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestGeocodeGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Geocode(context.Background(), "lille", "FR")
	require.Error(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestGeocodeDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Geocode(context.Background(), "lille", "FR")
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestGeocodeMalformedCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"lat":"not-a-number","lon":"3.06"}]`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Geocode(context.Background(), "lille", "FR")
	assert.Error(t, err)
}
