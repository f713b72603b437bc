// Package bootstrap wires the matching pipeline from configuration. It is
// shared by the HTTP server and the command line client.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/providermatch/internal/adapters/cache"
	"github.com/zatekoja/providermatch/internal/adapters/providers/geolocation"
	"github.com/zatekoja/providermatch/internal/adapters/registry"
	"github.com/zatekoja/providermatch/internal/application/services"
	"github.com/zatekoja/providermatch/internal/domain/providers"
	"github.com/zatekoja/providermatch/internal/domain/repositories"
	"github.com/zatekoja/providermatch/internal/domain/specialties"
	"github.com/zatekoja/providermatch/internal/infrastructure/clients/anthropic"
	"github.com/zatekoja/providermatch/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/providermatch/internal/infrastructure/clients/redis"
	"github.com/zatekoja/providermatch/internal/infrastructure/observability"
	"github.com/zatekoja/providermatch/pkg/config"
)

// App holds the wired pipeline and the resources that must be released on shutdown
type App struct {
	Match     *services.MatchService
	Geocoding *services.GeocodingService
	Registry  *services.RegistryService

	closers []func() error
}

// Close releases database and cache connections
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build creates every pipeline stage. Redis and the recommender are optional
// and degrade to disabled with a warning when they cannot be reached.
func Build(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (*App, error) {
	app := &App{}

	source, err := buildRegistrySource(ctx, cfg, app)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	var shared providers.CacheProvider
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, shared geocode cache disabled")
		} else {
			app.closers = append(app.closers, redisClient.Close)
			shared = cache.NewRedisAdapter(redisClient, "providermatch:")
		}
	}

	geocoding, err := services.NewGeocodingService(
		buildGeocoder(&cfg.Geocoder),
		shared,
		geolocation.DefaultFallbackTable(),
		services.GeocodingOptions{
			CacheSize:   cfg.Geocoder.CacheSize,
			MinInterval: cfg.Geocoder.MinInterval,
			Timeout:     cfg.Geocoder.Timeout,
			SharedTTL:   cfg.Geocoder.CacheTTL,
			Metrics:     metrics,
		},
	)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	var recommender providers.SpecialtyRecommender
	if cfg.Recommender.APIKey != "" {
		rec, err := anthropic.NewRecommender(&cfg.Recommender)
		if err != nil {
			log.Warn().Err(err).Msg("Specialty recommender disabled")
		} else {
			recommender = rec
		}
	}

	catalog := specialties.Default()
	app.Registry = services.NewRegistryService(source)
	app.Geocoding = geocoding
	app.Match = services.NewMatchService(services.MatchServiceDeps{
		Registry:    app.Registry,
		Filter:      services.NewEligibilityFilter(catalog),
		Locations:   services.NewLocationMatcher(),
		Scorer:      services.NewRelevanceScorer(catalog),
		Geocoding:   geocoding,
		Recommender: recommender,
		Limits:      cfg.Search,
		Metrics:     metrics,
	})

	log.Info().
		Str("registry", source.Describe()).
		Str("geocoder", cfg.Geocoder.Provider).
		Bool("shared_cache", shared != nil).
		Bool("recommender", recommender != nil).
		Msg("Matching pipeline initialized")

	return app, nil
}

func buildRegistrySource(ctx context.Context, cfg *config.Config, app *App) (repositories.RegistrySource, error) {
	switch cfg.Registry.Source {
	case config.RegistrySourcePostgres:
		pgClient, err := postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize registry database: %w", err)
		}
		app.closers = append(app.closers, pgClient.Close)
		return registry.NewPostgresSource(pgClient.DB(), cfg.Registry.Table), nil
	default:
		return registry.NewCSVSource(cfg.Registry.Path), nil
	}
}

// buildGeocoder returns nil for the static provider, which resolves from the fallback table only
func buildGeocoder(cfg *config.GeocoderConfig) providers.GeolocationProvider {
	opts := []geolocation.Option{
		geolocation.WithTimeout(cfg.Timeout),
		geolocation.WithUserAgent(cfg.UserAgent),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, geolocation.WithBaseURL(cfg.BaseURL))
	}

	switch cfg.Provider {
	case config.GeocoderGoogle:
		return geolocation.NewGoogleGeolocationProvider(cfg.APIKey, opts...)
	case config.GeocoderNominatim:
		return geolocation.NewNominatimProvider(opts...)
	default:
		return nil
	}
}
