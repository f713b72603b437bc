package geolocation

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/zatekoja/providermatch/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

// Fallback precision levels, coarsest last
const (
	PrecisionMetro   = "metro"
	PrecisionState   = "state"
	PrecisionDefault = "default"
)

//go:embed fallback_coordinates.yaml
var fallbackYAML []byte

// FallbackTable maps cities and states to approximate coordinates
type FallbackTable struct {
	Metros  map[string]entities.Coordinates `yaml:"metros"`
	States  map[string]entities.Coordinates `yaml:"states"`
	Default entities.Coordinates            `yaml:"default"`
}

var (
	fallbackOnce  sync.Once
	fallbackTable *FallbackTable
)

// DefaultFallbackTable returns the embedded table
func DefaultFallbackTable() *FallbackTable {
	fallbackOnce.Do(func() {
		t, err := ParseFallbackTable(fallbackYAML)
		if err != nil {
			panic(fmt.Sprintf("geolocation: embedded fallback table is invalid: %v", err))
		}
		fallbackTable = t
	})
	return fallbackTable
}

// ParseFallbackTable decodes a fallback table document, normalizing keys to uppercase
func ParseFallbackTable(data []byte) (*FallbackTable, error) {
	var raw FallbackTable
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode fallback table: %w", err)
	}

	t := &FallbackTable{
		Metros:  make(map[string]entities.Coordinates, len(raw.Metros)),
		States:  make(map[string]entities.Coordinates, len(raw.States)),
		Default: raw.Default,
	}
	for k, v := range raw.Metros {
		t.Metros[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	for k, v := range raw.States {
		t.States[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return t, nil
}

// Lookup returns the most precise known coordinate for a city and state. It never fails.
func (t *FallbackTable) Lookup(city, state string) (entities.Coordinates, string) {
	city = strings.ToUpper(strings.Join(strings.Fields(city), " "))
	state = strings.ToUpper(strings.TrimSpace(state))

	if city != "" && state != "" {
		if c, ok := t.Metros[city+", "+state]; ok {
			return c, PrecisionMetro
		}
	}
	if c, ok := t.States[state]; ok {
		return c, PrecisionState
	}
	return t.Default, PrecisionDefault
}
