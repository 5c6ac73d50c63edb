package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/iwvelando/auto-loan-calc/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orlandoResponse = `[{
  "lat": "28.5421",
  "lon": "-81.3790",
  "display_name": "Orlando, Orange County, Florida, 32801, United States",
  "address": {
    "city": "Orlando",
    "county": "Orange County",
    "state": "Florida",
    "ISO3166-2-lvl4": "US-FL",
    "postcode": "32801"
  }
}]`

func TestNominatimClientGeocode(t *testing.T) {
	var gotQuery, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotAgent = r.Header.Get("User-Agent")
		assert.Equal(t, "1", r.URL.Query().Get("addressdetails"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(orlandoResponse))
	}))
	defer srv.Close()

	client := NewNominatimClient(nil, srv.URL, "test-agent", 0)
	loc, err := client.Geocode(context.Background(), "  Orlando, FL ")
	require.NoError(t, err)

	assert.Equal(t, "Orlando, FL", gotQuery)
	assert.Equal(t, "test-agent", gotAgent)
	assert.Equal(t, "Orlando", loc.City)
	assert.Equal(t, "Orange", loc.County)
	assert.Equal(t, "FL", loc.StateCode)
	assert.Equal(t, "32801", loc.Zip)
	require.True(t, loc.HasCoordinates())
	assert.InDelta(t, 28.5421, *loc.Lat, 1e-9)
	assert.Equal(t, "Orlando, FL 32801", loc.Normalized())
}

func TestNominatimClientErrors(t *testing.T) {
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer empty.Close()
	_, err := NewNominatimClient(nil, empty.URL, "", 0).Geocode(context.Background(), "nowhere")
	assert.True(t, IsNoMatch(err))

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer failing.Close()
	_, err = NewNominatimClient(nil, failing.URL, "", 0).Geocode(context.Background(), "Orlando")
	assert.Error(t, err)
	assert.False(t, IsNoMatch(err))

	_, err = NewNominatimClient(nil, failing.URL, "", 0).Geocode(context.Background(), " ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

type stubGeocoder struct {
	calls atomic.Int32
	loc   Location
	err   error
}

func (s *stubGeocoder) Geocode(_ context.Context, _ string) (Location, error) {
	s.calls.Add(1)
	return s.loc, s.err
}

func TestFallbackGeocoder(t *testing.T) {
	ctx := context.Background()

	ok := &stubGeocoder{loc: Location{City: "Orlando", County: "Orange", StateCode: "FL"}}
	loc, err := NewFallbackGeocoder(nil, ok).Geocode(ctx, "Orlando, FL")
	require.NoError(t, err)
	assert.Equal(t, "Orange", loc.County)

	down := &stubGeocoder{err: errors.New("connection refused")}
	loc, err = NewFallbackGeocoder(nil, down).Geocode(ctx, "Sanford, FL 32771")
	require.NoError(t, err)
	assert.Equal(t, "Sanford", loc.City)
	assert.Equal(t, "32771", loc.Zip)
	assert.Empty(t, loc.County)

	loc, err = NewFallbackGeocoder(nil, nil).Geocode(ctx, "Ocala, FL")
	require.NoError(t, err)
	assert.Equal(t, "FL", loc.StateCode)

	_, err = NewFallbackGeocoder(nil, ok).Geocode(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestCachingGeocoder(t *testing.T) {
	ctx := context.Background()
	next := &stubGeocoder{loc: Location{City: "Orlando", County: "Orange", StateCode: "FL"}}
	g := NewCachingGeocoder(nil, next, store.NewMemoryCache(), 0)

	first, err := g.Geocode(ctx, "Orlando,  FL")
	require.NoError(t, err)
	second, err := g.Geocode(ctx, "orlando, fl")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), next.calls.Load(), "equivalent queries share a cache entry")

	failing := &stubGeocoder{err: ErrNoMatch}
	g = NewCachingGeocoder(nil, failing, store.NewMemoryCache(), 0)
	_, err = g.Geocode(ctx, "nowhere")
	assert.ErrorIs(t, err, ErrNoMatch)
	_, _ = g.Geocode(ctx, "nowhere")
	assert.Equal(t, int32(2), failing.calls.Load(), "failures are not cached")
}
