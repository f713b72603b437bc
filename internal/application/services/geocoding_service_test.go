package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/providermatch/internal/adapters/providers/geolocation"
	"github.com/zatekoja/providermatch/internal/domain/entities"
	"github.com/zatekoja/providermatch/internal/domain/providers"
)

var fairfaxQuery = providers.AddressQuery{Street: "3300 Gallows Rd", City: "Fairfax", State: "VA", PostalCode: "22031"}

func newTestGeocoding(t *testing.T, geocoder providers.GeolocationProvider, shared providers.CacheProvider, opts GeocodingOptions) *GeocodingService {
	t.Helper()
	svc, err := NewGeocodingService(geocoder, shared, geolocation.DefaultFallbackTable(), opts)
	require.NoError(t, err)
	return svc
}

func TestAddressKey_Normalizes(t *testing.T) {
	a := AddressKey(providers.AddressQuery{Street: "3300  Gallows Rd", City: "FAIRFAX", State: "va", PostalCode: "22031"})
	b := AddressKey(providers.AddressQuery{Street: "3300 gallows rd ", City: " Fairfax", State: "VA", PostalCode: "22031"})
	assert.Equal(t, "3300 gallows rd, fairfax, va 22031", a)
	assert.Equal(t, a, b)
}

func TestGeocodingService_CachesExternalResult(t *testing.T) {
	geo := &countingGeocoder{coords: &entities.Coordinates{Lat: 38.85, Lng: -77.22}}
	svc := newTestGeocoding(t, geo, nil, GeocodingOptions{})

	first := svc.Resolve(context.Background(), fairfaxQuery)
	second := svc.Resolve(context.Background(), fairfaxQuery)

	assert.Equal(t, entities.GeocodeEntry{Lat: 38.85, Lng: -77.22, ResolvedVia: entities.ResolvedViaExternal}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), geo.calls.Load())
	assert.Equal(t, 1, svc.CachedEntries())
}

func TestGeocodingService_CoalescesConcurrentMisses(t *testing.T) {
	geo := &countingGeocoder{coords: &entities.Coordinates{Lat: 1, Lng: 1}, delay: 50 * time.Millisecond}
	svc := newTestGeocoding(t, geo, nil, GeocodingOptions{})

	var wg sync.WaitGroup
	results := make([]entities.GeocodeEntry, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.Resolve(context.Background(), fairfaxQuery)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), geo.calls.Load())
	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}

func TestGeocodingService_FallbackOnFailure(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		query providers.AddressQuery
		want  entities.Coordinates
	}{
		{
			name:  "unknown address gets the hard default",
			err:   providers.ErrGeocodeNotFound,
			query: providers.AddressQuery{Street: "123 Unknown St", City: "Nowhere", State: "ZZ"},
			want:  entities.Coordinates{Lat: 39.8283, Lng: -98.5795},
		},
		{
			name:  "transport error uses the metro table",
			err:   errors.New("connection refused"),
			query: fairfaxQuery,
			want:  entities.Coordinates{Lat: 38.8462, Lng: -77.3064},
		},
		{
			name:  "state centroid",
			err:   providers.ErrGeocodeNotFound,
			query: providers.AddressQuery{Street: "1 Main St", City: "Vienna", State: "VA"},
			want:  entities.Coordinates{Lat: 37.4316, Lng: -78.6569},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geo := &countingGeocoder{err: tt.err}
			svc := newTestGeocoding(t, geo, nil, GeocodingOptions{})

			got := svc.Resolve(context.Background(), tt.query)
			assert.Equal(t, entities.ResolvedViaFallback, got.ResolvedVia)
			assert.Equal(t, tt.want, got.Coordinates())

			// the fallback is cached so the failing address is not retried
			again := svc.Resolve(context.Background(), tt.query)
			assert.Equal(t, got, again)
			assert.Equal(t, int32(1), geo.calls.Load())
		})
	}
}

func TestGeocodingService_TimeoutFallsBack(t *testing.T) {
	geo := &countingGeocoder{coords: &entities.Coordinates{Lat: 1, Lng: 1}, delay: time.Second}
	svc := newTestGeocoding(t, geo, nil, GeocodingOptions{Timeout: 20 * time.Millisecond})

	got := svc.Resolve(context.Background(), fairfaxQuery)
	assert.Equal(t, entities.ResolvedViaFallback, got.ResolvedVia)
}

func TestGeocodingService_StaticModeNeverCallsOut(t *testing.T) {
	svc := newTestGeocoding(t, nil, nil, GeocodingOptions{})

	got := svc.Resolve(context.Background(), providers.AddressQuery{City: "Boston", State: "MA"})
	assert.Equal(t, entities.GeocodeEntry{Lat: 42.3601, Lng: -71.0589, ResolvedVia: entities.ResolvedViaFallback}, got)
}

func TestGeocodingService_SharedCacheHoldsExternalResultsOnly(t *testing.T) {
	shared := newMemoryCache()

	failing := newTestGeocoding(t, &countingGeocoder{err: providers.ErrGeocodeNotFound}, shared, GeocodingOptions{SharedTTL: time.Hour})
	failing.Resolve(context.Background(), fairfaxQuery)
	assert.Equal(t, 0, shared.len())

	geo := &countingGeocoder{coords: &entities.Coordinates{Lat: 38.85, Lng: -77.22}}
	writer := newTestGeocoding(t, geo, shared, GeocodingOptions{SharedTTL: time.Hour})
	writer.Resolve(context.Background(), fairfaxQuery)
	assert.Equal(t, 1, shared.len())

	// a second process reads the shared entry without calling out
	otherGeo := &countingGeocoder{err: errors.New("should not be called")}
	reader := newTestGeocoding(t, otherGeo, shared, GeocodingOptions{})
	got := reader.Resolve(context.Background(), fairfaxQuery)
	assert.Equal(t, entities.ResolvedViaExternal, got.ResolvedVia)
	assert.Equal(t, int32(0), otherGeo.calls.Load())
}

func TestGeocodingService_ReplacesUnreadableSharedEntry(t *testing.T) {
	shared := newMemoryCache()
	key := geocodeCacheKeyPrefix + AddressKey(fairfaxQuery)
	require.NoError(t, shared.Set(context.Background(), key, []byte("not json"), 0))

	geo := &countingGeocoder{coords: &entities.Coordinates{Lat: 38.85, Lng: -77.22}}
	svc := newTestGeocoding(t, geo, shared, GeocodingOptions{SharedTTL: time.Hour})

	got := svc.Resolve(context.Background(), fairfaxQuery)
	assert.Equal(t, entities.ResolvedViaExternal, got.ResolvedVia)
	assert.Equal(t, int32(1), geo.calls.Load())

	data, err := shared.Get(context.Background(), key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"lat":38.85,"lng":-77.22,"resolved_via":"external"}`, string(data))
}

func TestGeocodingService_SpacesExternalCalls(t *testing.T) {
	geo := &countingGeocoder{coords: &entities.Coordinates{Lat: 1, Lng: 1}}
	svc := newTestGeocoding(t, geo, nil, GeocodingOptions{MinInterval: 60 * time.Millisecond})

	start := time.Now()
	for _, city := range []string{"Fairfax", "Vienna", "Reston"} {
		svc.Resolve(context.Background(), providers.AddressQuery{City: city, State: "VA"})
	}

	assert.Equal(t, int32(3), geo.calls.Load())
	assert.GreaterOrEqual(t, time.Since(start), 110*time.Millisecond)
}

func TestGeocodingService_CallerCancellationDoesNotAbortLookup(t *testing.T) {
	geo := &countingGeocoder{coords: &entities.Coordinates{Lat: 5, Lng: 6}}
	svc := newTestGeocoding(t, geo, nil, GeocodingOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := svc.Resolve(ctx, fairfaxQuery)
	assert.Equal(t, entities.ResolvedViaExternal, got.ResolvedVia)
}

func TestNewGeocodingService_RequiresFallback(t *testing.T) {
	_, err := NewGeocodingService(nil, nil, nil, GeocodingOptions{})
	assert.Error(t, err)
}
