package geolocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/providermatch/internal/domain/entities"
)

func TestFallbackTable_Lookup(t *testing.T) {
	table := DefaultFallbackTable()
	require.GreaterOrEqual(t, len(table.Metros), 25)

	tests := []struct {
		name      string
		city      string
		state     string
		want      entities.Coordinates
		precision string
	}{
		{"metro", "fairfax", "va", entities.Coordinates{Lat: 38.8462, Lng: -77.3064}, PrecisionMetro},
		{"metro with extra spaces", " new   york ", "NY", entities.Coordinates{Lat: 40.7128, Lng: -74.0060}, PrecisionMetro},
		{"state centroid", "Vienna", "VA", entities.Coordinates{Lat: 37.4316, Lng: -78.6569}, PrecisionState},
		{"hard default", "Nowhere", "ZZ", entities.Coordinates{Lat: 39.8283, Lng: -98.5795}, PrecisionDefault},
		{"blank", "", "", entities.Coordinates{Lat: 39.8283, Lng: -98.5795}, PrecisionDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, precision := table.Lookup(tt.city, tt.state)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.precision, precision)
		})
	}
}

func TestParseFallbackTable_Invalid(t *testing.T) {
	_, err := ParseFallbackTable([]byte("metros: [not, a, map]"))
	assert.Error(t, err)
}
