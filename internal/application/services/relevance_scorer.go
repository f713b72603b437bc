package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zatekoja/providermatch/internal/domain/entities"
	"github.com/zatekoja/providermatch/internal/domain/specialties"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Score bounds. Every scored provider already passed eligibility, so none
// is presented as a poor match.
const (
	MinMatchPercentage = 85
	MaxMatchPercentage = 98

	baseScore         = 85
	specialtyBonus    = 5
	symptomGroupBonus = 10
)

var trustMarkers = []string{
	"Accepts new patients",
	"Verified provider registry listing",
}

// ScoredProvider is a provider with its match percentage and the reasons behind it
type ScoredProvider struct {
	Provider        *entities.ProviderRecord
	Score           int
	Reasons         []string
	YearsExperience *int
}

// RelevanceScorer assigns bounded match percentages
type RelevanceScorer struct {
	catalog *specialties.Catalog
	now     func() time.Time
}

// NewRelevanceScorer creates a scorer over a specialty catalog
func NewRelevanceScorer(catalog *specialties.Catalog) *RelevanceScorer {
	return &RelevanceScorer{catalog: catalog, now: time.Now}
}

// Score computes one provider's match percentage. It is deterministic for a given clock.
func (s *RelevanceScorer) Score(p *entities.ProviderRecord, symptoms string, age *int) ScoredProvider {
	score := baseScore
	reasons := make([]string, 0, 6)

	if p.PrimarySpecialty != "" {
		score += specialtyBonus
		reasons = append(reasons, "Specializes in "+DisplayLabel(p.PrimarySpecialty))
	}

	for _, group := range s.catalog.MatchingSymptomGroups(symptoms) {
		d, ok := s.catalog.Discipline(group.Discipline)
		if ok && d.Matches(p.PrimarySpecialty) {
			score += symptomGroupBonus
			reasons = append(reasons, group.Reason)
		}
	}

	if age != nil && *age < entities.AgeOfMajority {
		for _, bonus := range s.catalog.MinorBonuses {
			d, ok := s.catalog.Discipline(bonus.Discipline)
			if ok && d.Matches(p.PrimarySpecialty) {
				score += bonus.Points
				reasons = append(reasons, bonus.Reason)
				break
			}
		}
	}

	scored := ScoredProvider{Provider: p}
	if years, ok := p.YearsExperience(s.now().Year()); ok {
		scored.YearsExperience = &years
		if years > 0 {
			reasons = append(reasons, fmt.Sprintf("%d+ years experience", years))
		}
	}

	scored.Score = clamp(score, MinMatchPercentage, MaxMatchPercentage)
	scored.Reasons = append(reasons, trustMarkers...)
	return scored
}

// Rank scores every provider and sorts by score descending. Ties keep input order.
func (s *RelevanceScorer) Rank(providers []*entities.ProviderRecord, symptoms string, age *int) []ScoredProvider {
	if len(providers) == 0 {
		return nil
	}

	scored := make([]ScoredProvider, len(providers))
	for i, p := range providers {
		scored[i] = s.Score(p, symptoms, age)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// DisplayLabel renders an uppercase registry label for people, "CARDIOLOGY" -> "Cardiology"
func DisplayLabel(label string) string {
	// casers carry state and are not shared between goroutines
	return cases.Title(language.AmericanEnglish).String(strings.ToLower(strings.TrimSpace(label)))
}

// SubSpecialtyLabel combines the display specialty with the provider's credential
func SubSpecialtyLabel(p *entities.ProviderRecord) string {
	label := DisplayLabel(p.PrimarySpecialty)
	if p.Credentials == "" {
		return label
	}
	return fmt.Sprintf("%s (%s)", label, strings.ToUpper(p.Credentials))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
