package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zatekoja/providermatch/internal/domain/entities"
	"github.com/zatekoja/providermatch/internal/domain/specialties"
)

func eligibilityFixture() []*entities.ProviderRecord {
	labels := []string{
		"CARDIOLOGY",
		"CARDIOVASCULAR DISEASE (CARDIOLOGY)",
		"INTERVENTIONAL CARDIOLOGY",
		"PEDIATRICS",
		"PEDIATRIC CARDIOLOGY",
		"FAMILY PRACTICE",
		"FAMILY MEDICINE",
		"GENERAL PRACTICE",
		"OTOLARYNGOLOGY",
		"DERMATOLOGY",
		"INTERNAL MEDICINE",
	}
	out := make([]*entities.ProviderRecord, 0, len(labels))
	for i, label := range labels {
		out = append(out, newProvider(string(rune('a'+i)), "F", "L", label, "", "1 Main St", "Fairfax", "VA"))
	}
	return out
}

func TestEligibilityFilter_ExplicitSpecialty(t *testing.T) {
	f := NewEligibilityFilter(specialties.Default())
	all := eligibilityFixture()

	tests := []struct {
		name   string
		target string
		age    *int
		want   []string
	}{
		{
			name:   "adult cardiology excludes pediatric-only",
			target: "cardiology",
			age:    intPtr(45),
			want:   []string{"CARDIOLOGY", "CARDIOVASCULAR DISEASE (CARDIOLOGY)", "INTERVENTIONAL CARDIOLOGY"},
		},
		{
			name:   "unknown age keeps every containment match",
			target: "CARDIOLOGY",
			want:   []string{"CARDIOLOGY", "CARDIOVASCULAR DISEASE (CARDIOLOGY)", "INTERVENTIONAL CARDIOLOGY", "PEDIATRIC CARDIOLOGY"},
		},
		{
			name:   "minor cardiology stays inside the child allow-list",
			target: "CARDIOLOGY",
			age:    intPtr(8),
			want:   []string{},
		},
		{
			name:   "minor ENT stays inside the child allow-list",
			target: "OTOLARYNGOLOGY",
			age:    intPtr(10),
			want:   []string{},
		},
		{
			name:   "minor family practice",
			target: "FAMILY",
			age:    intPtr(10),
			want:   []string{"FAMILY PRACTICE", "FAMILY MEDICINE"},
		},
		{
			name:   "minor pediatrics",
			target: "PEDIATRICS",
			age:    intPtr(10),
			want:   []string{"PEDIATRICS"},
		},
		{
			name:   "target longer than label still matches",
			target: "DERMATOLOGY AND COSMETIC SURGERY",
			age:    intPtr(30),
			want:   []string{"DERMATOLOGY"},
		},
		{
			name:   "adult asking for pediatrics gets nothing",
			target: "PEDIATRICS",
			age:    intPtr(30),
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Filter(all, tt.target, tt.age, "")
			assert.Equal(t, tt.want, specialtiesOf(got))
		})
	}
}

func TestEligibilityFilter_MinorAllowListIgnoresSymptoms(t *testing.T) {
	f := NewEligibilityFilter(specialties.Default())
	all := eligibilityFixture()
	want := []string{"PEDIATRICS", "FAMILY PRACTICE", "FAMILY MEDICINE"}

	for _, symptoms := range []string{"", "sore throat", "ear infection", "fever", "chest pain", "rash"} {
		for _, age := range []int{0, 10, 17} {
			got := f.Filter(all, "", intPtr(age), symptoms)
			assert.Equal(t, want, specialtiesOf(got), "age=%d symptoms=%q", age, symptoms)
		}
	}
}

func TestEligibilityFilter_AdultDenylist(t *testing.T) {
	f := NewEligibilityFilter(specialties.Default())
	all := eligibilityFixture()

	for _, age := range []*int{nil, intPtr(18), intPtr(70)} {
		got := specialtiesOf(f.Filter(all, "", age, "sore throat"))
		assert.NotContains(t, got, "PEDIATRICS")
		assert.NotContains(t, got, "PEDIATRIC CARDIOLOGY")
		assert.Contains(t, got, "OTOLARYNGOLOGY")
		assert.Len(t, got, len(all)-2)
	}
}
