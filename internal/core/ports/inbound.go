package ports

import (
	"context"

	"github.com/hazref/hazsearch/internal/core/domain"
)

// SubstanceRetriever is the inbound contract for hybrid substance lookup.
type SubstanceRetriever interface {
	Retrieve(ctx context.Context, query domain.Query) (*domain.RetrievalResult, error)
	ConfirmFullResults(ctx context.Context, token string) (*domain.RetrievalResult, error)
}

// CatalogReader is the inbound read model for catalog statistics.
type CatalogReader interface {
	Statistics(ctx context.Context) (domain.CatalogStats, error)
}

// SubstanceIndexer is the inbound contract for asynchronous vector indexing.
type SubstanceIndexer interface {
	IndexByNumber(ctx context.Context, unNumber int) error
}
