package ports

import (
	"context"

	"github.com/hazref/hazsearch/internal/core/domain"
)

// SubstanceRepository reads and writes the relational catalog.
type SubstanceRepository interface {
	LookupByNumber(ctx context.Context, unNumber int) (*domain.SubstanceRecord, error)
	SearchByName(ctx context.Context, substring string, limit int) ([]domain.SubstanceRecord, error)
	Statistics(ctx context.Context) (domain.CatalogStats, error)
	BatchUpsert(ctx context.Context, records []domain.SubstanceRecord) (int, error)
}

// Embedder builds vectors for catalog text and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex performs nearest-neighbor search over substance embeddings.
type VectorIndex interface {
	Search(ctx context.Context, queryVector []float32, k int) ([]domain.SemanticHit, error)
	UpsertSubstance(ctx context.Context, record domain.SubstanceRecord, vector []float32) error
	Available(ctx context.Context) bool
	Count(ctx context.Context) (int, error)
}

// MessageQueue publishes/consumes catalog-updated events.
type MessageQueue interface {
	PublishCatalogUpdated(ctx context.Context, unNumber int) error
	SubscribeCatalogUpdated(ctx context.Context, handler func(context.Context, int) error) error
}
