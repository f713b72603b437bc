package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/zatekoja/providermatch/internal/domain/entities"
	"github.com/zatekoja/providermatch/internal/domain/providers"
	apperrors "github.com/zatekoja/providermatch/pkg/errors"
)

const maxSearchBodyBytes = 64 << 10

// MatchService is the pipeline surface the HTTP layer depends on
type MatchService interface {
	Search(ctx context.Context, criteria entities.SearchCriteria) (*entities.SearchResult, error)
	Specialties(ctx context.Context) ([]string, error)
	Geocode(ctx context.Context, query providers.AddressQuery) entities.GeocodeEntry
	RegistryLoaded() bool
}

// MatchHandler handles provider search requests
type MatchHandler struct {
	service MatchService
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(service MatchService) *MatchHandler {
	return &MatchHandler{service: service}
}

// SearchProviders handles GET /api/providers/search?location=&specialty=&symptoms=&age=&gender=&limit=
// and POST /api/providers/search with a JSON SearchCriteria body
func (h *MatchHandler) SearchProviders(w http.ResponseWriter, r *http.Request) {
	var (
		criteria entities.SearchCriteria
		err      error
	)
	if r.Method == http.MethodPost {
		criteria, err = decodeCriteria(w, r)
	} else {
		criteria, err = criteriaFromQuery(r)
	}
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	result, err := h.service.Search(r.Context(), criteria)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// ListSpecialties handles GET /api/specialties
func (h *MatchHandler) ListSpecialties(w http.ResponseWriter, r *http.Request) {
	specialties, err := h.service.Specialties(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"specialties": specialties,
		"count":       len(specialties),
	})
}

// Health handles GET /health
func (h *MatchHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "ok",
		"registry_loaded": h.service.RegistryLoaded(),
	})
}

func decodeCriteria(w http.ResponseWriter, r *http.Request) (entities.SearchCriteria, error) {
	var criteria entities.SearchCriteria
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSearchBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&criteria); err != nil {
		return criteria, apperrors.NewValidationError("invalid search request body")
	}
	return criteria, nil
}

func criteriaFromQuery(r *http.Request) (entities.SearchCriteria, error) {
	q := r.URL.Query()
	criteria := entities.SearchCriteria{
		Location:     q.Get("location"),
		Specialty:    q.Get("specialty"),
		SymptomsText: q.Get("symptoms"),
		Gender:       q.Get("gender"),
	}

	if raw := strings.TrimSpace(q.Get("age")); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil {
			return criteria, apperrors.NewValidationError("invalid age parameter")
		}
		criteria.Age = &age
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return criteria, apperrors.NewValidationError("invalid limit parameter")
		}
		criteria.ResultLimit = limit
	}
	return criteria, nil
}
