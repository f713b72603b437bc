package services

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/providermatch/internal/domain/entities"
	"github.com/zatekoja/providermatch/internal/domain/repositories"
	apperrors "github.com/zatekoja/providermatch/pkg/errors"
)

// RegistryService owns the in-memory provider registry. The registry is read
// from its source on first use and kept for the life of the process.
type RegistryService struct {
	source repositories.RegistrySource

	mu          sync.Mutex
	loaded      atomic.Bool
	providers   []*entities.ProviderRecord
	specialties []string
}

// NewRegistryService creates a registry service over a source
func NewRegistryService(source repositories.RegistrySource) *RegistryService {
	return &RegistryService{source: source}
}

// Providers returns the loaded registry, reading the source on first call.
// Concurrent first calls share one read. A failed read is not memoized, so the
// next call reads the source again; nothing retries in the background.
func (s *RegistryService) Providers(ctx context.Context) ([]*entities.ProviderRecord, error) {
	if s.loaded.Load() {
		return s.providers, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded.Load() {
		return s.providers, nil
	}

	start := time.Now()
	providers, err := s.source.LoadProviders(ctx)
	if err != nil {
		log.Error().Err(err).Str("source", s.source.Describe()).Msg("Failed to load provider registry")
		return nil, apperrors.NewSourceUnavailableError("provider registry is unavailable", err)
	}

	s.providers = providers
	s.specialties = distinctSpecialties(providers)
	s.loaded.Store(true)

	log.Info().
		Str("source", s.source.Describe()).
		Int("providers", len(providers)).
		Int("specialties", len(s.specialties)).
		Dur("duration", time.Since(start)).
		Msg("Provider registry loaded")
	return s.providers, nil
}

// Specialties returns the distinct, sorted specialty labels in the registry
func (s *RegistryService) Specialties(ctx context.Context) ([]string, error) {
	if _, err := s.Providers(ctx); err != nil {
		return nil, err
	}
	out := make([]string, len(s.specialties))
	copy(out, s.specialties)
	return out, nil
}

// Loaded reports whether the registry has been read successfully
func (s *RegistryService) Loaded() bool {
	return s.loaded.Load()
}

func distinctSpecialties(providers []*entities.ProviderRecord) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range providers {
		if _, ok := seen[p.PrimarySpecialty]; ok {
			continue
		}
		seen[p.PrimarySpecialty] = struct{}{}
		out = append(out, p.PrimarySpecialty)
	}
	sort.Strings(out)
	return out
}
