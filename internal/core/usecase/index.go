package usecase

import (
	"context"
	"fmt"

	"github.com/hazref/hazsearch/internal/core/ports"
)

// IndexSubstanceUseCase re-embeds one catalog record and upserts its
// point in the vector index. Driven by catalog-updated events.
type IndexSubstanceUseCase struct {
	repo     ports.SubstanceRepository
	embedder ports.Embedder
	index    ports.VectorIndex
}

func NewIndexSubstanceUseCase(repo ports.SubstanceRepository, embedder ports.Embedder, index ports.VectorIndex) *IndexSubstanceUseCase {
	return &IndexSubstanceUseCase{repo: repo, embedder: embedder, index: index}
}

func (uc *IndexSubstanceUseCase) IndexByNumber(ctx context.Context, unNumber int) error {
	record, err := uc.repo.LookupByNumber(ctx, unNumber)
	if err != nil {
		return fmt.Errorf("fetch substance by un number: %w", err)
	}

	vector, err := uc.embedder.EmbedQuery(ctx, record.SearchText())
	if err != nil {
		return fmt.Errorf("embed substance text: %w", err)
	}

	if err := uc.index.UpsertSubstance(ctx, *record, vector); err != nil {
		return fmt.Errorf("upsert vector point: %w", err)
	}
	return nil
}
