package services

import "github.com/zatekoja/providermatch/internal/domain/entities"

// Deduplicate keeps the first provider per unique key, preserving order
func Deduplicate(providers []*entities.ProviderRecord) []*entities.ProviderRecord {
	seen := make(map[string]struct{}, len(providers))
	out := make([]*entities.ProviderRecord, 0, len(providers))
	for _, p := range providers {
		key := p.UniqueKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}
