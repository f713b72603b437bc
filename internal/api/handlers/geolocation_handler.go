package handlers

import (
	"net/http"
	"strings"

	"github.com/zatekoja/providermatch/internal/domain/providers"
)

// GeolocationHandler exposes the geocoding cache
type GeolocationHandler struct {
	service MatchService
}

// NewGeolocationHandler creates a new geolocation handler
func NewGeolocationHandler(service MatchService) *GeolocationHandler {
	return &GeolocationHandler{service: service}
}

// Geocode handles GET /api/geocode?address=&city=&state=&zip=
func (h *GeolocationHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := providers.AddressQuery{
		Street:     strings.TrimSpace(q.Get("address")),
		City:       strings.TrimSpace(q.Get("city")),
		State:      strings.ToUpper(strings.TrimSpace(q.Get("state"))),
		PostalCode: strings.TrimSpace(q.Get("zip")),
	}
	if query.Street == "" && query.City == "" && query.State == "" && query.PostalCode == "" {
		respondWithError(w, http.StatusBadRequest, "address, city, state or zip parameter is required")
		return
	}

	entry := h.service.Geocode(r.Context(), query)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"address":      query.OneLine(),
		"lat":          entry.Lat,
		"lng":          entry.Lng,
		"resolved_via": entry.ResolvedVia,
	})
}
