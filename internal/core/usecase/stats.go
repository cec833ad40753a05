package usecase

import (
	"context"
	"fmt"

	"github.com/hazref/hazsearch/internal/core/domain"
	"github.com/hazref/hazsearch/internal/core/ports"
)

// CatalogStatsUseCase reports catalog and vector-index counts.
type CatalogStatsUseCase struct {
	repo  ports.SubstanceRepository
	index ports.VectorIndex
}

func NewCatalogStatsUseCase(repo ports.SubstanceRepository, index ports.VectorIndex) *CatalogStatsUseCase {
	return &CatalogStatsUseCase{repo: repo, index: index}
}

func (uc *CatalogStatsUseCase) Statistics(ctx context.Context) (domain.CatalogStats, error) {
	stats, err := uc.repo.Statistics(ctx)
	if err != nil {
		return domain.CatalogStats{}, fmt.Errorf("catalog statistics: %w", err)
	}

	stats.VectorAvailable = uc.index.Available(ctx)
	if stats.VectorAvailable {
		if count, err := uc.index.Count(ctx); err == nil {
			stats.VectorPoints = count
		}
	}
	return stats, nil
}
