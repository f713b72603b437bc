package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/providermatch/internal/domain/entities"
	"github.com/zatekoja/providermatch/internal/domain/providers"
	"github.com/zatekoja/providermatch/internal/infrastructure/observability"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const geocodeCacheKeyPrefix = "geo:v1:"

// FallbackLocator answers with an approximate coordinate for any city and state
type FallbackLocator interface {
	Lookup(city, state string) (entities.Coordinates, string)
}

// GeocodingOptions tunes the geocoding service
type GeocodingOptions struct {
	// CacheSize bounds the in-process cache
	CacheSize int
	// MinInterval is the minimum spacing between outbound calls, process wide
	MinInterval time.Duration
	// Timeout bounds each outbound call
	Timeout time.Duration
	// SharedTTL is the expiry of entries in the shared cache
	SharedTTL time.Duration
	Metrics   *observability.Metrics
}

// GeocodingService resolves addresses to coordinates. Lookups go through an
// in-process LRU, then the optional shared cache, then the rate-limited
// external geocoder, and finally the static fallback table. Resolve never fails.
type GeocodingService struct {
	geocoder providers.GeolocationProvider
	shared   providers.CacheProvider
	fallback FallbackLocator
	local    *lru.Cache[string, entities.GeocodeEntry]
	limiter  *rate.Limiter
	inflight singleflight.Group
	timeout  time.Duration
	ttl      time.Duration
	metrics  *observability.Metrics
}

// NewGeocodingService creates a geocoding service. A nil geocoder resolves
// every address from the fallback table; a nil shared cache disables that tier.
func NewGeocodingService(geocoder providers.GeolocationProvider, shared providers.CacheProvider, fallback FallbackLocator, opts GeocodingOptions) (*GeocodingService, error) {
	if fallback == nil {
		return nil, errors.New("geocoding fallback table is required")
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 10000
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}

	local, err := lru.New[string, entities.GeocodeEntry](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocode cache: %w", err)
	}

	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}

	return &GeocodingService{
		geocoder: geocoder,
		shared:   shared,
		fallback: fallback,
		local:    local,
		limiter:  rate.NewLimiter(limit, 1),
		timeout:  opts.Timeout,
		ttl:      opts.SharedTTL,
		metrics:  opts.Metrics,
	}, nil
}

// AddressKey normalizes an address into its cache key
func AddressKey(query providers.AddressQuery) string {
	return strings.ToLower(strings.Join(strings.Fields(query.OneLine()), " "))
}

// Resolve returns a coordinate for the address. Concurrent misses for the
// same address share one outbound call.
func (s *GeocodingService) Resolve(ctx context.Context, query providers.AddressQuery) entities.GeocodeEntry {
	ctx, span := observability.StartSpan(ctx, "GeocodingService.Resolve")
	defer span.End()

	key := AddressKey(query)
	if entry, ok := s.local.Get(key); ok {
		observability.RecordGeocodeCacheHit(ctx, s.metrics, "memory")
		span.SetAttributes(attribute.String("geocode.source", "memory"))
		return entry
	}

	// detached: a waiter must not inherit another caller's cancellation
	v, _, _ := s.inflight.Do(key, func() (interface{}, error) {
		return s.resolveMiss(context.WithoutCancel(ctx), key, query), nil
	})
	entry := v.(entities.GeocodeEntry)
	span.SetAttributes(attribute.String("geocode.resolved_via", entry.ResolvedVia))
	return entry
}

func (s *GeocodingService) resolveMiss(ctx context.Context, key string, query providers.AddressQuery) entities.GeocodeEntry {
	if entry, ok := s.local.Get(key); ok {
		observability.RecordGeocodeCacheHit(ctx, s.metrics, "memory")
		return entry
	}
	if entry, ok := s.readShared(ctx, key); ok {
		observability.RecordGeocodeCacheHit(ctx, s.metrics, "shared")
		s.local.Add(key, entry)
		return entry
	}
	observability.RecordGeocodeCacheMiss(ctx, s.metrics)

	if s.geocoder != nil {
		coords, err := s.callExternal(ctx, query)
		if err == nil {
			entry := entities.GeocodeEntry{Lat: coords.Lat, Lng: coords.Lng, ResolvedVia: entities.ResolvedViaExternal}
			s.local.Add(key, entry)
			s.writeShared(ctx, key, entry)
			return entry
		}
		log.Warn().Err(err).Str("address", key).Str("geocoder", s.geocoder.Name()).Msg("Geocoding failed, using fallback coordinates")
	}

	coords, precision := s.fallback.Lookup(query.City, query.State)
	observability.RecordGeocodeFallback(ctx, s.metrics, precision)
	entry := entities.GeocodeEntry{Lat: coords.Lat, Lng: coords.Lng, ResolvedVia: entities.ResolvedViaFallback}
	s.local.Add(key, entry)
	return entry
}

func (s *GeocodingService) callExternal(ctx context.Context, query providers.AddressQuery) (*entities.Coordinates, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("geocode rate limiter: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	coords, err := s.geocoder.Geocode(callCtx, query)
	switch {
	case err == nil:
		observability.RecordGeocodeExternalCall(ctx, s.metrics, "success")
	case errors.Is(err, providers.ErrGeocodeNotFound):
		observability.RecordGeocodeExternalCall(ctx, s.metrics, "not_found")
	default:
		observability.RecordGeocodeExternalCall(ctx, s.metrics, "error")
	}
	if err != nil {
		return nil, err
	}
	if coords == nil {
		return nil, providers.ErrGeocodeNotFound
	}
	return coords, nil
}

func (s *GeocodingService) readShared(ctx context.Context, key string) (entities.GeocodeEntry, bool) {
	if s.shared == nil {
		return entities.GeocodeEntry{}, false
	}
	data, err := s.shared.Get(ctx, geocodeCacheKeyPrefix+key)
	if err != nil {
		if !errors.Is(err, providers.ErrCacheMiss) {
			log.Warn().Err(err).Msg("Shared geocode cache read failed")
		}
		return entities.GeocodeEntry{}, false
	}
	var entry entities.GeocodeEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		log.Warn().Err(err).Str("address", key).Msg("Discarding unreadable shared geocode entry")
		if err := s.shared.Delete(ctx, geocodeCacheKeyPrefix+key); err != nil {
			log.Warn().Err(err).Msg("Shared geocode cache delete failed")
		}
		return entities.GeocodeEntry{}, false
	}
	return entry, true
}

// writeShared stores external resolutions only
func (s *GeocodingService) writeShared(ctx context.Context, key string, entry entities.GeocodeEntry) {
	if s.shared == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := s.shared.Set(ctx, geocodeCacheKeyPrefix+key, data, int(s.ttl/time.Second)); err != nil {
		log.Warn().Err(err).Msg("Shared geocode cache write failed")
	}
}

// CachedEntries reports the number of addresses held in process
func (s *GeocodingService) CachedEntries() int {
	return s.local.Len()
}
