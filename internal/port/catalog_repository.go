package port

import (
	"context"

	"github.com/rl1809/car-build/internal/core/domain"
)

type CatalogRepository interface {
	// LookupParts returns the parts compatible with a vehicle model, ordered by
	// name. The model match is case-insensitive; no match yields an empty slice.
	LookupParts(ctx context.Context, model string) ([]domain.Part, error)
}
