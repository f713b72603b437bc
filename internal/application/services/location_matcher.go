package services

import (
	"strings"
	"unicode"

	"github.com/zatekoja/providermatch/internal/domain/entities"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stateCodes = map[string]string{
	"ALABAMA": "AL", "ALASKA": "AK", "ARIZONA": "AZ", "ARKANSAS": "AR",
	"CALIFORNIA": "CA", "COLORADO": "CO", "CONNECTICUT": "CT", "DELAWARE": "DE",
	"DISTRICT OF COLUMBIA": "DC", "FLORIDA": "FL", "GEORGIA": "GA", "HAWAII": "HI",
	"IDAHO": "ID", "ILLINOIS": "IL", "INDIANA": "IN", "IOWA": "IA",
	"KANSAS": "KS", "KENTUCKY": "KY", "LOUISIANA": "LA", "MAINE": "ME",
	"MARYLAND": "MD", "MASSACHUSETTS": "MA", "MICHIGAN": "MI", "MINNESOTA": "MN",
	"MISSISSIPPI": "MS", "MISSOURI": "MO", "MONTANA": "MT", "NEBRASKA": "NE",
	"NEVADA": "NV", "NEW HAMPSHIRE": "NH", "NEW JERSEY": "NJ", "NEW MEXICO": "NM",
	"NEW YORK": "NY", "NORTH CAROLINA": "NC", "NORTH DAKOTA": "ND", "OHIO": "OH",
	"OKLAHOMA": "OK", "OREGON": "OR", "PENNSYLVANIA": "PA", "RHODE ISLAND": "RI",
	"SOUTH CAROLINA": "SC", "SOUTH DAKOTA": "SD", "TENNESSEE": "TN", "TEXAS": "TX",
	"UTAH": "UT", "VERMONT": "VT", "VIRGINIA": "VA", "WASHINGTON": "WA",
	"WEST VIRGINIA": "WV", "WISCONSIN": "WI", "WYOMING": "WY",
}

var cityAbbreviations = map[string]string{
	"st.": "saint", "st": "saint",
	"ft.": "fort", "ft": "fort",
	"mt.": "mount", "mt": "mount",
}

// LocationQuery is a parsed free-text location
type LocationQuery struct {
	City  string
	State string
}

// Empty reports whether the query constrains nothing
func (q LocationQuery) Empty() bool {
	return q.City == "" && q.State == ""
}

// ParseLocation splits "City, ST" on the first comma. Without a comma the whole
// input is a city, so "New York" never widens to the state; a state-only
// search is written ", NY".
func ParseLocation(location string) LocationQuery {
	location = strings.TrimSpace(location)
	if location == "" {
		return LocationQuery{}
	}

	cityPart, statePart, _ := strings.Cut(location, ",")
	return LocationQuery{
		City:  NormalizeCity(cityPart),
		State: normalizeState(statePart),
	}
}

func normalizeState(raw string) string {
	state := strings.ToUpper(strings.Join(strings.Fields(raw), " "))
	if len(state) <= 2 {
		return state
	}
	if code, ok := stateCodes[state]; ok {
		return code
	}
	// "VA 22031" and similar keep their leading code
	return state[:2]
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeCity lowercases, strips diacritics, collapses whitespace and expands
// the St./Ft./Mt. abbreviations.
func NormalizeCity(city string) string {
	folded, _, err := transform.String(stripMarks, city)
	if err != nil {
		folded = city
	}
	words := strings.Fields(strings.ToLower(folded))
	for i, w := range words {
		if full, ok := cityAbbreviations[w]; ok {
			words[i] = full
		}
	}
	return strings.Join(words, " ")
}

// LocationMatcher narrows providers to a city and state
type LocationMatcher struct{}

// NewLocationMatcher creates a location matcher
func NewLocationMatcher() *LocationMatcher {
	return &LocationMatcher{}
}

// Filter keeps providers whose city and state satisfy the query. An empty
// result is returned as-is; it is never widened.
func (m *LocationMatcher) Filter(providers []*entities.ProviderRecord, query LocationQuery) []*entities.ProviderRecord {
	if query.Empty() {
		return providers
	}
	out := make([]*entities.ProviderRecord, 0, len(providers))
	for _, p := range providers {
		if m.Matches(p, query) {
			out = append(out, p)
		}
	}
	return out
}

// Matches reports whether one provider satisfies the query
func (m *LocationMatcher) Matches(p *entities.ProviderRecord, query LocationQuery) bool {
	if query.State != "" && !strings.EqualFold(p.State, query.State) {
		return false
	}
	if query.City == "" {
		return true
	}
	city := NormalizeCity(p.City)
	if city == "" {
		return false
	}
	return city == query.City || strings.Contains(city, query.City) || strings.Contains(query.City, city)
}
