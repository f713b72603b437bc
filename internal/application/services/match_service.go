package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/providermatch/internal/domain/entities"
	"github.com/zatekoja/providermatch/internal/domain/providers"
	"github.com/zatekoja/providermatch/internal/infrastructure/observability"
	"github.com/zatekoja/providermatch/pkg/config"
	apperrors "github.com/zatekoja/providermatch/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

const maxAge = 130

// MatchService runs the provider matching pipeline:
// filter, location match, dedupe, score, sort, truncate, geocode.
type MatchService struct {
	registry    *RegistryService
	filter      *EligibilityFilter
	locations   *LocationMatcher
	scorer      *RelevanceScorer
	geocoding   *GeocodingService
	recommender providers.SpecialtyRecommender
	limits      config.SearchConfig
	metrics     *observability.Metrics
	now         func() time.Time
}

// MatchServiceDeps wires the pipeline stages. Recommender and Metrics are optional.
type MatchServiceDeps struct {
	Registry    *RegistryService
	Filter      *EligibilityFilter
	Locations   *LocationMatcher
	Scorer      *RelevanceScorer
	Geocoding   *GeocodingService
	Recommender providers.SpecialtyRecommender
	Limits      config.SearchConfig
	Metrics     *observability.Metrics
}

// NewMatchService creates the orchestrator
func NewMatchService(deps MatchServiceDeps) *MatchService {
	if deps.Locations == nil {
		deps.Locations = NewLocationMatcher()
	}
	if deps.Limits.DefaultLimit <= 0 {
		deps.Limits.DefaultLimit = 20
	}
	if deps.Limits.MaxLimit < deps.Limits.DefaultLimit {
		deps.Limits.MaxLimit = deps.Limits.DefaultLimit
	}
	return &MatchService{
		registry:    deps.Registry,
		filter:      deps.Filter,
		locations:   deps.Locations,
		scorer:      deps.Scorer,
		geocoding:   deps.Geocoding,
		recommender: deps.Recommender,
		limits:      deps.Limits,
		metrics:     deps.Metrics,
		now:         time.Now,
	}
}

// Search returns ranked, geocoded providers for the criteria. Zero matches is
// a successful result; only a registry failure is returned as an error.
func (s *MatchService) Search(ctx context.Context, criteria entities.SearchCriteria) (*entities.SearchResult, error) {
	ctx, span := observability.StartSpan(ctx, "MatchService.Search")
	defer span.End()

	criteria = s.normalizeCriteria(criteria)
	if err := validateCriteria(criteria); err != nil {
		return nil, err
	}

	all, err := s.registry.Providers(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	specialty := criteria.Specialty
	recommended := false
	if specialty == "" {
		specialty = s.recommend(ctx, criteria)
		recommended = specialty != ""
	}

	candidates := s.filter.Filter(all, specialty, criteria.Age, criteria.SymptomsText)
	if recommended && len(candidates) == 0 && criteria.IsMinor() {
		// a recommendation outside the child allow-list falls back to the age rules
		observability.LoggerFromContext(ctx).Debug().Str("specialty", specialty).Msg("Recommended specialty not admissible for a minor")
		specialty = ""
		candidates = s.filter.Filter(all, "", criteria.Age, criteria.SymptomsText)
	}
	candidates = s.locations.Filter(candidates, ParseLocation(criteria.Location))
	candidates = Deduplicate(candidates)

	ranked := s.scorer.Rank(candidates, criteria.SymptomsText, criteria.Age)
	if len(ranked) > criteria.ResultLimit {
		ranked = ranked[:criteria.ResultLimit]
	}

	matches := s.enrich(ctx, ranked)

	observability.SetSpanAttributes(span,
		attribute.Int("search.candidates", len(candidates)),
		attribute.Int("search.matches", len(matches)),
		attribute.String("search.specialty", specialty),
	)
	observability.RecordSearchResults(ctx, s.metrics, len(matches))

	observability.LoggerFromContext(ctx).Debug().
		Str("location", criteria.Location).
		Str("specialty", specialty).
		Int("candidates", len(candidates)).
		Int("matches", len(matches)).
		Msg("Search completed")

	return &entities.SearchResult{
		SearchID:          uuid.NewString(),
		Matches:           matches,
		TotalMatches:      len(matches),
		TotalCandidates:   len(candidates),
		ResolvedSpecialty: specialty,
		Criteria:          criteria,
		Timestamp:         s.now().UTC(),
	}, nil
}

// Specialties lists the distinct specialty labels in the registry
func (s *MatchService) Specialties(ctx context.Context) ([]string, error) {
	return s.registry.Specialties(ctx)
}

// Geocode resolves one address through the shared geocoding cache
func (s *MatchService) Geocode(ctx context.Context, query providers.AddressQuery) entities.GeocodeEntry {
	return s.geocoding.Resolve(ctx, query)
}

// RegistryLoaded reports whether the registry has been read
func (s *MatchService) RegistryLoaded() bool {
	return s.registry.Loaded()
}

func (s *MatchService) normalizeCriteria(c entities.SearchCriteria) entities.SearchCriteria {
	c.Location = strings.TrimSpace(c.Location)
	c.Specialty = strings.ToUpper(strings.Join(strings.Fields(c.Specialty), " "))
	c.SymptomsText = strings.TrimSpace(c.SymptomsText)
	c.Gender = strings.TrimSpace(c.Gender)

	switch {
	case c.ResultLimit <= 0:
		c.ResultLimit = s.limits.DefaultLimit
	case c.ResultLimit > s.limits.MaxLimit:
		c.ResultLimit = s.limits.MaxLimit
	}
	return c
}

func validateCriteria(c entities.SearchCriteria) error {
	if c.Age != nil && (*c.Age < 0 || *c.Age > maxAge) {
		return apperrors.NewValidationError("age must be between 0 and 130")
	}
	return nil
}

// recommend asks the recommender for a specialty. Any failure counts as no specialty.
func (s *MatchService) recommend(ctx context.Context, c entities.SearchCriteria) string {
	if s.recommender == nil || c.SymptomsText == "" {
		return ""
	}
	label, err := s.recommender.RecommendSpecialty(ctx, providers.SpecialtyRequest{
		Symptoms: c.SymptomsText,
		Age:      c.Age,
		Gender:   c.Gender,
	})
	if err != nil {
		err = apperrors.NewExternalError("specialty recommendation failed", err)
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Using age and symptom rules")
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(label))
}

// enrich resolves one coordinate per unique address, serially, then builds the output records
func (s *MatchService) enrich(ctx context.Context, ranked []ScoredProvider) []entities.MatchedProvider {
	resolved := make(map[string]entities.GeocodeEntry)
	matches := make([]entities.MatchedProvider, 0, len(ranked))

	for _, sp := range ranked {
		p := sp.Provider
		query := addressQueryFor(p)
		key := AddressKey(query)

		entry, ok := resolved[key]
		if !ok {
			entry = s.geocoding.Resolve(ctx, query)
			resolved[key] = entry
		}
		coords := entry.Coordinates()

		matches = append(matches, entities.MatchedProvider{
			ProviderRecord:    *p,
			MatchPercentage:   sp.Score,
			ScoringReasons:    sp.Reasons,
			Coordinates:       &coords,
			ResolvedVia:       entry.ResolvedVia,
			SubSpecialtyLabel: SubSpecialtyLabel(p),
			YearsExperience:   sp.YearsExperience,
		})
	}
	return matches
}

// addressQueryFor leaves out synthesized street lines, which are facility names
func addressQueryFor(p *entities.ProviderRecord) providers.AddressQuery {
	q := providers.AddressQuery{
		City:       p.City,
		State:      p.State,
		PostalCode: p.PostalCode,
	}
	if !p.AddressIsSynthesized {
		q.Street = p.AddressLine1
	}
	return q
}
