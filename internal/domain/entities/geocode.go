package entities

// Geocode resolution sources
const (
	ResolvedViaExternal = "external"
	ResolvedViaFallback = "fallback"
)

// Coordinates represents geographical coordinates
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GeocodeEntry is a cached resolution of one normalized address
type GeocodeEntry struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	ResolvedVia string  `json:"resolved_via"`
}

// Coordinates returns the entry's point
func (e GeocodeEntry) Coordinates() Coordinates {
	return Coordinates{Lat: e.Lat, Lng: e.Lng}
}
