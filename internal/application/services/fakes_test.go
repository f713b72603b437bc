package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/providermatch/internal/domain/entities"
	"github.com/zatekoja/providermatch/internal/domain/providers"
)

type stubSource struct {
	providers []*entities.ProviderRecord
	err       error
	delay     time.Duration
	calls     atomic.Int32
}

func (s *stubSource) LoadProviders(ctx context.Context) ([]*entities.ProviderRecord, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.providers, nil
}

func (s *stubSource) Describe() string { return "stub" }

type countingGeocoder struct {
	calls  atomic.Int32
	delay  time.Duration
	coords *entities.Coordinates
	err    error
}

func (g *countingGeocoder) Geocode(ctx context.Context, q providers.AddressQuery) (*entities.Coordinates, error) {
	g.calls.Add(1)
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if g.err != nil {
		return nil, g.err
	}
	return g.coords, nil
}

func (g *countingGeocoder) Name() string { return "counting" }

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memoryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

type MockRecommender struct {
	mock.Mock
}

func (m *MockRecommender) RecommendSpecialty(ctx context.Context, req providers.SpecialtyRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type fixedFallback struct{}

func (fixedFallback) Lookup(city, state string) (entities.Coordinates, string) {
	return entities.Coordinates{Lat: 1, Lng: 2}, "default"
}

func newProvider(id, first, last, specialty, facility, address, city, state string) *entities.ProviderRecord {
	p := &entities.ProviderRecord{
		NationalID:       id,
		FirstName:        first,
		LastName:         last,
		PrimarySpecialty: specialty,
		FacilityName:     facility,
		AddressLine1:     address,
		City:             city,
		State:            state,
		PostalCode:       "22031",
	}
	p.Normalize()
	return p
}

func intPtr(v int) *int { return &v }

func specialtiesOf(ps []*entities.ProviderRecord) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.PrimarySpecialty)
	}
	return out
}
