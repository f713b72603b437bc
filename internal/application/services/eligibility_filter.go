package services

import (
	"strings"

	"github.com/zatekoja/providermatch/internal/domain/entities"
	"github.com/zatekoja/providermatch/internal/domain/specialties"
)

// EligibilityFilter applies the age and specialty safety rules
type EligibilityFilter struct {
	catalog *specialties.Catalog
}

// NewEligibilityFilter creates a filter over a specialty catalog
func NewEligibilityFilter(catalog *specialties.Catalog) *EligibilityFilter {
	return &EligibilityFilter{catalog: catalog}
}

// Filter returns the admissible providers in input order.
//
// With a target specialty, a provider is admitted when either label contains
// the other. Adults never see pediatric-only labels, and minors only see
// matches that are also in the child allow-list.
//
// Without a target, minors are limited to the child allow-list (symptom rules
// may only narrow it) and everyone else sees all but pediatric-only labels.
func (f *EligibilityFilter) Filter(providers []*entities.ProviderRecord, target string, age *int, symptoms string) []*entities.ProviderRecord {
	admit := f.predicate(strings.TrimSpace(target), age, symptoms)

	out := make([]*entities.ProviderRecord, 0, len(providers))
	for _, p := range providers {
		if admit(p.PrimarySpecialty) {
			out = append(out, p)
		}
	}
	return out
}

func (f *EligibilityFilter) predicate(target string, age *int, symptoms string) func(string) bool {
	minor := age != nil && *age < entities.AgeOfMajority
	adult := age != nil && *age >= entities.AgeOfMajority

	if target != "" {
		return func(specialty string) bool {
			if !specialties.MatchesTarget(specialty, target) {
				return false
			}
			switch {
			case adult:
				return !f.catalog.IsPediatricOnly(specialty)
			case minor:
				return anyMatches(f.catalog.AllowedForMinor(""), specialty)
			default:
				return true
			}
		}
	}

	if minor {
		allowed := f.catalog.AllowedForMinor(symptoms)
		return func(specialty string) bool {
			return anyMatches(allowed, specialty)
		}
	}

	return func(specialty string) bool {
		return !f.catalog.IsPediatricOnly(specialty)
	}
}

func anyMatches(disciplines []specialties.Discipline, specialty string) bool {
	for _, d := range disciplines {
		if d.Matches(specialty) {
			return true
		}
	}
	return false
}
