package entities

import "time"

// SearchCriteria is the per-request input of a provider search
type SearchCriteria struct {
	Location     string `json:"location"`
	Specialty    string `json:"specialty,omitempty"`
	SymptomsText string `json:"symptoms,omitempty"`
	Age          *int   `json:"age,omitempty"`
	Gender       string `json:"gender,omitempty"`
	ResultLimit  int    `json:"limit,omitempty"`
}

// IsMinor reports whether the patient is under the age of majority.
// An unspecified age is treated as adult.
func (c SearchCriteria) IsMinor() bool {
	return c.Age != nil && *c.Age < AgeOfMajority
}

// AgeOfMajority separates pediatric from adult eligibility rules
const AgeOfMajority = 18

// MatchedProvider is a ranked, enriched search hit
type MatchedProvider struct {
	ProviderRecord
	MatchPercentage   int          `json:"match_percentage"`
	ScoringReasons    []string     `json:"scoring_reasons"`
	Coordinates       *Coordinates `json:"coordinates,omitempty"`
	ResolvedVia       string       `json:"resolved_via,omitempty"`
	SubSpecialtyLabel string       `json:"sub_specialty_label"`
	YearsExperience   *int         `json:"years_experience,omitempty"`
}

// SearchResult is the outbound search contract. An empty Matches slice is a
// successful search with zero hits, never an error.
type SearchResult struct {
	SearchID          string            `json:"search_id"`
	Matches           []MatchedProvider `json:"matches"`
	TotalMatches      int               `json:"total_matches"`
	TotalCandidates   int               `json:"total_candidates"`
	ResolvedSpecialty string            `json:"resolved_specialty,omitempty"`
	Criteria          SearchCriteria    `json:"criteria"`
	Timestamp         time.Time         `json:"timestamp"`
}
