package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rl1809/car-build/internal/core/domain"
	"github.com/rl1809/car-build/internal/port"
)

type CatalogService struct {
	repo   port.CatalogRepository
	cache  port.CatalogCache
	logger zerolog.Logger
}

// NewCatalogService builds a cache-aside catalog lookup. cache may be nil.
func NewCatalogService(repo port.CatalogRepository, cache port.CatalogCache, logger zerolog.Logger) *CatalogService {
	return &CatalogService{repo: repo, cache: cache, logger: logger}
}

func (s *CatalogService) LookupParts(ctx context.Context, model string) ([]domain.Part, error) {
	model = strings.ToLower(strings.TrimSpace(model))
	if model == "" {
		return []domain.Part{}, nil
	}

	if s.cache != nil {
		parts, ok, err := s.cache.GetParts(ctx, model)
		if err != nil {
			s.logger.Warn().Err(err).Str("model", model).Msg("catalog cache read failed")
		} else if ok {
			return parts, nil
		}
	}

	parts, err := s.repo.LookupParts(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("lookup parts for %q: %w", model, err)
	}
	if parts == nil {
		parts = []domain.Part{}
	}

	if s.cache != nil {
		if err := s.cache.SetParts(ctx, model, parts); err != nil {
			s.logger.Warn().Err(err).Str("model", model).Msg("catalog cache write failed")
		}
	}

	return parts, nil
}
