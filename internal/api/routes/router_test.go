package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/providermatch/internal/api/handlers"
	"github.com/zatekoja/providermatch/internal/domain/entities"
	"github.com/zatekoja/providermatch/internal/domain/providers"
)

type stubService struct{}

func (stubService) Search(_ context.Context, criteria entities.SearchCriteria) (*entities.SearchResult, error) {
	return &entities.SearchResult{SearchID: "s", Matches: []entities.MatchedProvider{}, Criteria: criteria}, nil
}

func (stubService) Specialties(context.Context) ([]string, error) {
	return []string{"CARDIOLOGY"}, nil
}

func (stubService) Geocode(context.Context, providers.AddressQuery) entities.GeocodeEntry {
	return entities.GeocodeEntry{Lat: 1, Lng: 2, ResolvedVia: entities.ResolvedViaFallback}
}

func (stubService) RegistryLoaded() bool { return true }

func newTestHandler() http.Handler {
	svc := stubService{}
	return NewRouter(handlers.NewMatchHandler(svc), handlers.NewGeolocationHandler(svc), []string{"*"}, nil).SetupRoutes()
}

func TestRouter_Routes(t *testing.T) {
	h := newTestHandler()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/specialties", http.StatusOK},
		{http.MethodGet, "/api/providers/search?location=Fairfax,%20VA", http.StatusOK},
		{http.MethodGet, "/api/geocode?city=Fairfax&state=VA", http.StatusOK},
		{http.MethodDelete, "/api/specialties", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/facilities", http.StatusNotFound},
		{http.MethodOptions, "/api/providers/search", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRouter_HealthBody(t *testing.T) {
	w := httptest.NewRecorder()
	newTestHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["registry_loaded"])
}
