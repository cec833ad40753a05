package usecase

import (
	"context"
	"fmt"

	"github.com/hazref/hazsearch/internal/core/domain"
	"github.com/hazref/hazsearch/internal/core/ports"
)

// semanticMatcher embeds each query variant and retrieves nearest
// neighbors from the vector index, merging across variants.
type semanticMatcher struct {
	embedder  ports.Embedder
	index     ports.VectorIndex
	threshold float64
}

func newSemanticMatcher(embedder ports.Embedder, index ports.VectorIndex, threshold float64) *semanticMatcher {
	if threshold < 0 || threshold >= 1 {
		threshold = 0.1
	}
	return &semanticMatcher{embedder: embedder, index: index, threshold: threshold}
}

// match merges hits across variants keeping the highest score seen per UN
// number, drops hits below the similarity threshold and returns at most
// limit matches, score descending, UN number ascending on ties. Semantic
// scores are clamped below 1.0, which stays reserved for identifier
// matches.
func (m *semanticMatcher) match(ctx context.Context, variants []string, limit int) ([]domain.SubstanceMatch, error) {
	if !m.index.Available(ctx) {
		return nil, domain.WrapError(domain.ErrTemporary, "semantic search", fmt.Errorf("vector index unavailable"))
	}

	best := make(map[int]domain.SubstanceMatch)
	for _, variant := range variants {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		vector, err := m.embedder.EmbedQuery(ctx, variant)
		if err != nil {
			return nil, fmt.Errorf("embed query variant: %w", err)
		}
		hits, err := m.index.Search(ctx, vector, limit)
		if err != nil {
			return nil, fmt.Errorf("vector search: %w", err)
		}

		for _, hit := range hits {
			score := clampSemanticScore(hit.Score)
			if score < m.threshold {
				continue
			}
			keepBest(best, domain.SubstanceMatch{
				Record:      hit.Record,
				Score:       score,
				Source:      domain.SourceSemantic,
				MatchedTerm: variant,
			})
		}
	}

	out := make([]domain.SubstanceMatch, 0, len(best))
	for _, match := range best {
		out = append(out, match)
	}
	sortMatches(out)
	return trimMatches(out, limit), nil
}

func clampSemanticScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	// 1.0 is reserved for exact identifier matches.
	if score >= 1 {
		return 0.999
	}
	return score
}
