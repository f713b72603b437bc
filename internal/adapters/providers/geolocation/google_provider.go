package geolocation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/zatekoja/providermatch/internal/domain/entities"
	"github.com/zatekoja/providermatch/internal/domain/providers"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleGeolocationProvider resolves addresses with the Google Geocoding API
type GoogleGeolocationProvider struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewGoogleGeolocationProvider creates a new Google geolocation provider
func NewGoogleGeolocationProvider(apiKey string, opts ...Option) providers.GeolocationProvider {
	o := applyOptions(googleGeocodeURL, opts)
	return &GoogleGeolocationProvider{
		apiKey:     apiKey,
		httpClient: o.httpClient,
		baseURL:    o.baseURL,
	}
}

// Name identifies the provider
func (g *GoogleGeolocationProvider) Name() string {
	return "google"
}

// Geocode converts an address to coordinates
func (g *GoogleGeolocationProvider) Geocode(ctx context.Context, query providers.AddressQuery) (*entities.Coordinates, error) {
	address := query.OneLine()
	if address == "" {
		return nil, fmt.Errorf("address is required")
	}
	if g.apiKey == "" {
		return nil, fmt.Errorf("google maps api key is required")
	}

	params := url.Values{}
	params.Set("address", address)
	params.Set("components", "country:US")
	params.Set("key", g.apiKey)
	reqURL := fmt.Sprintf("%s?%s", g.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: geocode request returned status %d", providers.ErrGeocodeNotFound, resp.StatusCode)
	}

	var payload googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}

	switch payload.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, providers.ErrGeocodeNotFound
	default:
		if payload.ErrorMessage != "" {
			return nil, fmt.Errorf("geocode request failed: %s - %s", payload.Status, payload.ErrorMessage)
		}
		return nil, fmt.Errorf("geocode request failed: %s", payload.Status)
	}
	if len(payload.Results) == 0 {
		return nil, providers.ErrGeocodeNotFound
	}

	loc := payload.Results[0].Geometry.Location
	return &entities.Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
}

type googleGeocodeResponse struct {
	Status       string                `json:"status"`
	ErrorMessage string                `json:"error_message,omitempty"`
	Results      []googleGeocodeResult `json:"results"`
}

type googleGeocodeResult struct {
	FormattedAddress string         `json:"formatted_address"`
	Geometry         googleGeometry `json:"geometry"`
}

type googleGeometry struct {
	Location googleLocation `json:"location"`
}

type googleLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func trimBaseURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}
