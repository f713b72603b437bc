package repositories

import (
	"context"

	"github.com/zatekoja/providermatch/internal/domain/entities"
)

// RegistrySource reads the full provider registry.
// Implementations return normalized, validated records only; malformed rows are skipped.
type RegistrySource interface {
	// LoadProviders reads every valid registry row in source order
	LoadProviders(ctx context.Context) ([]*entities.ProviderRecord, error)

	// Describe names the source for logs
	Describe() string
}
