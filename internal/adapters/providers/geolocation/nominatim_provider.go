package geolocation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/zatekoja/providermatch/internal/domain/entities"
	"github.com/zatekoja/providermatch/internal/domain/providers"
)

// Nominatim's usage policy allows at most one request per second per client;
// callers space requests through the geocoding service limiter.
const nominatimURL = "https://nominatim.openstreetmap.org"

// NominatimProvider resolves addresses with an OpenStreetMap Nominatim server
type NominatimProvider struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewNominatimProvider creates a Nominatim geolocation provider
func NewNominatimProvider(opts ...Option) providers.GeolocationProvider {
	o := applyOptions(nominatimURL, opts)
	return &NominatimProvider{
		baseURL:    o.baseURL,
		userAgent:  o.userAgent,
		httpClient: o.httpClient,
	}
}

// Name identifies the provider
func (n *NominatimProvider) Name() string {
	return "nominatim"
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode converts an address to the best matching coordinates
func (n *NominatimProvider) Geocode(ctx context.Context, query providers.AddressQuery) (*entities.Coordinates, error) {
	address := query.OneLine()
	if address == "" {
		return nil, fmt.Errorf("address is required")
	}

	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", "us")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: geocode request returned status %d", providers.ErrGeocodeNotFound, resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return nil, providers.ErrGeocodeNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", results[0].Lon, err)
	}
	return &entities.Coordinates{Lat: lat, Lng: lng}, nil
}
