package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hazref/hazsearch/internal/core/domain"
	"github.com/hazref/hazsearch/internal/core/ports"
)

// ImportCatalogUseCase batch-upserts catalog records and publishes one
// catalog-updated event per record so the index worker re-embeds them.
type ImportCatalogUseCase struct {
	repo   ports.SubstanceRepository
	queue  ports.MessageQueue
	logger *slog.Logger
}

func NewImportCatalogUseCase(repo ports.SubstanceRepository, queue ports.MessageQueue, logger *slog.Logger) *ImportCatalogUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportCatalogUseCase{repo: repo, queue: queue, logger: logger}
}

func (uc *ImportCatalogUseCase) Import(ctx context.Context, records []domain.SubstanceRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	n, err := uc.repo.BatchUpsert(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("batch upsert catalog: %w", err)
	}

	// Indexing events are best-effort; a missed event is repaired by the
	// next full import.
	published := 0
	for _, record := range records {
		if err := uc.queue.PublishCatalogUpdated(ctx, record.UNNumber); err != nil {
			uc.logger.Warn("publish catalog-updated event failed", "un_number", record.UNNumber, "error", err)
			continue
		}
		published++
	}
	uc.logger.Info("catalog import finished", "upserted", n, "events_published", published)
	return n, nil
}
