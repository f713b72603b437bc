// Package specialties holds the auditable specialty rules used for eligibility
// and scoring: canonical disciplines with their free-text aliases, the adult
// denylist, the pediatric allow-list and the symptom keyword groups.
package specialties

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Discipline is a canonical specialty key with the registry labels it covers
type Discipline struct {
	Key     string   `yaml:"key"`
	Label   string   `yaml:"label"`
	Aliases []string `yaml:"aliases"`
}

// Matches reports whether a registry specialty belongs to the discipline
func (d Discipline) Matches(specialty string) bool {
	upper := strings.ToUpper(specialty)
	for _, alias := range d.Aliases {
		if strings.Contains(upper, alias) {
			return true
		}
	}
	return false
}

// SymptomGroup ties symptom keywords to the discipline that treats them
type SymptomGroup struct {
	Name       string   `yaml:"name"`
	Keywords   []string `yaml:"keywords"`
	Discipline string   `yaml:"discipline"`
	Reason     string   `yaml:"reason"`
}

// PediatricRule narrows the child allow-list for a family of symptoms
type PediatricRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Allow    []string `yaml:"allow"`
}

// MinorBonus adds points for disciplines suited to minors
type MinorBonus struct {
	Discipline string `yaml:"discipline"`
	Points     int    `yaml:"points"`
	Reason     string `yaml:"reason"`
}

// Catalog is the parsed rule table
type Catalog struct {
	Disciplines           []Discipline    `yaml:"disciplines"`
	PediatricOnly         []string        `yaml:"pediatric_only"`
	ChildAllowList        []string        `yaml:"child_allow_list"`
	PediatricSymptomRules []PediatricRule `yaml:"pediatric_symptom_rules"`
	SymptomGroups         []SymptomGroup  `yaml:"symptom_groups"`
	MinorBonuses          []MinorBonus    `yaml:"minor_bonuses"`

	byKey         map[string]Discipline
	pediatricOnly map[string]struct{}
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded catalog
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultCatalogYAML)
		if err != nil {
			panic(fmt.Sprintf("specialties: embedded catalog is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Parse decodes and validates a catalog document
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode specialty catalog: %w", err)
	}

	c.byKey = make(map[string]Discipline, len(c.Disciplines))
	for _, d := range c.Disciplines {
		if d.Key == "" || len(d.Aliases) == 0 {
			return nil, fmt.Errorf("discipline %q must have a key and at least one alias", d.Key)
		}
		for i, alias := range d.Aliases {
			d.Aliases[i] = strings.ToUpper(strings.TrimSpace(alias))
		}
		c.byKey[d.Key] = d
	}

	c.pediatricOnly = make(map[string]struct{}, len(c.PediatricOnly))
	for _, label := range c.PediatricOnly {
		c.pediatricOnly[strings.ToUpper(strings.TrimSpace(label))] = struct{}{}
	}

	refs := append([]string{}, c.ChildAllowList...)
	for _, rule := range c.PediatricSymptomRules {
		refs = append(refs, rule.Allow...)
	}
	for _, group := range c.SymptomGroups {
		refs = append(refs, group.Discipline)
	}
	for _, bonus := range c.MinorBonuses {
		refs = append(refs, bonus.Discipline)
	}
	for _, key := range refs {
		if _, ok := c.byKey[key]; !ok {
			return nil, fmt.Errorf("unknown discipline %q referenced in catalog", key)
		}
	}

	return &c, nil
}

// Discipline looks up a discipline by canonical key
func (c *Catalog) Discipline(key string) (Discipline, bool) {
	d, ok := c.byKey[key]
	return d, ok
}

// IsPediatricOnly reports whether the specialty is reserved for children
func (c *Catalog) IsPediatricOnly(specialty string) bool {
	_, ok := c.pediatricOnly[strings.ToUpper(strings.TrimSpace(specialty))]
	return ok
}

// AllowedForMinor returns the disciplines admissible for a minor with the
// given symptoms. Symptom rules can only narrow within the base allow-list.
func (c *Catalog) AllowedForMinor(symptoms string) []Discipline {
	allowed := c.ChildAllowList
	for _, rule := range c.PediatricSymptomRules {
		if MentionsAny(symptoms, rule.Keywords) {
			allowed = intersect(allowed, rule.Allow)
		}
	}

	out := make([]Discipline, 0, len(allowed))
	for _, key := range allowed {
		out = append(out, c.byKey[key])
	}
	return out
}

// MatchingSymptomGroups returns the keyword groups mentioned in the text, in catalog order
func (c *Catalog) MatchingSymptomGroups(symptoms string) []SymptomGroup {
	var out []SymptomGroup
	for _, group := range c.SymptomGroups {
		if MentionsAny(symptoms, group.Keywords) {
			out = append(out, group)
		}
	}
	return out
}

// MatchesTarget implements the explicit-specialty rule: either label contains the other
func MatchesTarget(specialty, target string) bool {
	s := strings.ToUpper(strings.TrimSpace(specialty))
	t := strings.ToUpper(strings.TrimSpace(target))
	if s == "" || t == "" {
		return false
	}
	return strings.Contains(s, t) || strings.Contains(t, s)
}

// MentionsAny reports whether text contains any keyword, ignoring case.
// Matching is plain substring containment, so "hearing" mentions "ear".
func MentionsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return false
	}
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func intersect(base, narrow []string) []string {
	keep := make(map[string]struct{}, len(narrow))
	for _, k := range narrow {
		keep[k] = struct{}{}
	}
	out := make([]string, 0, len(base))
	for _, k := range base {
		if _, ok := keep[k]; ok {
			out = append(out, k)
		}
	}
	return out
}
