package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/hazref/hazsearch/internal/core/domain"
	"github.com/hazref/hazsearch/internal/core/ports"
)

// exactMatcher runs identifier and name lookups against the relational
// catalog for every query variant, unioning the results.
type exactMatcher struct {
	repo    ports.SubstanceRepository
	weights ScoringWeights
}

func newExactMatcher(repo ports.SubstanceRepository, weights ScoringWeights) *exactMatcher {
	return &exactMatcher{repo: repo, weights: weights.normalize()}
}

// match returns at most limit records, highest score first, UN number
// ascending on ties. Identifier matches score exactly 1.0; name matches
// score via nameMatchScore. Records are deduplicated by UN number keeping
// the best score.
func (m *exactMatcher) match(ctx context.Context, variants []string, limit int) ([]domain.SubstanceMatch, error) {
	best := make(map[int]domain.SubstanceMatch)

	for _, variant := range variants {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if un, ok := parseUNNumber(variant); ok {
			record, err := m.repo.LookupByNumber(ctx, un)
			if err != nil {
				if domain.IsKind(err, domain.ErrSubstanceNotFound) {
					continue
				}
				return nil, fmt.Errorf("lookup by un number: %w", err)
			}
			keepBest(best, domain.SubstanceMatch{
				Record:      *record,
				Score:       1.0,
				Source:      domain.SourceStructured,
				MatchedTerm: variant,
			})
			continue
		}

		records, err := m.repo.SearchByName(ctx, variant, limit)
		if err != nil {
			return nil, fmt.Errorf("search by name: %w", err)
		}
		for _, record := range records {
			score := nameMatchScore(variant, record.Name, m.weights)
			if enScore := nameMatchScore(variant, record.NameEN, m.weights); enScore > score {
				score = enScore
			}
			if score <= 0 {
				continue
			}
			keepBest(best, domain.SubstanceMatch{
				Record:      record,
				Score:       score,
				Source:      domain.SourceStructured,
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

func keepBest(best map[int]domain.SubstanceMatch, candidate domain.SubstanceMatch) {
	current, ok := best[candidate.Record.UNNumber]
	if !ok || candidate.Score > current.Score {
		best[candidate.Record.UNNumber] = candidate
	}
}

func sortMatches(matches []domain.SubstanceMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Record.UNNumber < matches[j].Record.UNNumber
	})
}

func trimMatches(matches []domain.SubstanceMatch, limit int) []domain.SubstanceMatch {
	if limit <= 0 || len(matches) <= limit {
		return matches
	}
	return matches[:limit]
}
