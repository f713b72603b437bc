package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zatekoja/providermatch/internal/domain/entities"
)

func TestDeduplicate_KeepsFirstOccurrence(t *testing.T) {
	first := newProvider("1", "Ada", "Lovelace", "CARDIOLOGY", "Inova", "3300 Gallows Rd", "Fairfax", "VA")
	dup := newProvider("1", "Ada", "Lovelace", "INTERNAL MEDICINE", "Inova", "3301 Gallows Rd", "Fairfax", "VA")
	otherCity := newProvider("1", "Ada", "Lovelace", "CARDIOLOGY", "Inova", "1 Main St", "Vienna", "VA")
	other := newProvider("2", "Grace", "Hopper", "CARDIOLOGY", "Inova", "3300 Gallows Rd", "Fairfax", "VA")

	got := Deduplicate([]*entities.ProviderRecord{first, dup, otherCity, other, dup})

	assert.Equal(t, []*entities.ProviderRecord{first, otherCity, other}, got)

	seen := map[string]bool{}
	for _, p := range got {
		assert.False(t, seen[p.UniqueKey()])
		seen[p.UniqueKey()] = true
	}
}

func TestDeduplicate_Empty(t *testing.T) {
	assert.Empty(t, Deduplicate(nil))
}
