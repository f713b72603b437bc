package providers

import (
	"context"
	"errors"
	"strings"

	"github.com/zatekoja/providermatch/internal/domain/entities"
)

// ErrGeocodeNotFound is returned when the geocoder answers without a usable match
var ErrGeocodeNotFound = errors.New("address not found")

// AddressQuery is a postal address to resolve
type AddressQuery struct {
	Street     string
	City       string
	State      string
	PostalCode string
}

// OneLine renders the address as a single free-text line, skipping blank parts
func (q AddressQuery) OneLine() string {
	parts := make([]string, 0, 3)
	if s := strings.TrimSpace(q.Street); s != "" {
		parts = append(parts, s)
	}
	if c := strings.TrimSpace(q.City); c != "" {
		parts = append(parts, c)
	}
	stateZip := strings.TrimSpace(strings.TrimSpace(q.State) + " " + strings.TrimSpace(q.PostalCode))
	if stateZip != "" {
		parts = append(parts, stateZip)
	}
	return strings.Join(parts, ", ")
}

// GeolocationProvider resolves postal addresses through an external service.
// Any non-success answer or empty result set must be reported as ErrGeocodeNotFound.
type GeolocationProvider interface {
	// Geocode converts an address to coordinates
	Geocode(ctx context.Context, query AddressQuery) (*entities.Coordinates, error)

	// Name identifies the provider in logs and metrics
	Name() string
}
