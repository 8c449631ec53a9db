package port

import (
	"context"

	"github.com/rl1809/car-build/internal/core/domain"
)

type CatalogCache interface {
	// GetParts returns the cached parts for a model and whether the key was present
	GetParts(ctx context.Context, model string) ([]domain.Part, bool, error)

	// SetParts stores the parts for a model with the adapter's TTL
	SetParts(ctx context.Context, model string, parts []domain.Part) error
}
