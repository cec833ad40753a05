package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/hazref/hazsearch/internal/core/domain"
)

// CrossReferencer associates regulation clauses with substance records.
// The clause corpus is immutable after construction, so lookups are safe
// for unsynchronized concurrent reads. Per-substance matching across a
// result set runs on a small shared worker pool so large results do not
// fan out unboundedly.
type CrossReferencer struct {
	clauses         []domain.RegulationClause
	weights         ScoringWeights
	perSubstanceCap int
	pool            *ants.Pool
}

func NewCrossReferencer(clauses []domain.RegulationClause, weights ScoringWeights, perSubstanceCap, poolSize int) (*CrossReferencer, error) {
	if perSubstanceCap <= 0 {
		perSubstanceCap = 3
	}
	if poolSize <= 0 {
		poolSize = 4
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("create crossref pool: %w", err)
	}
	return &CrossReferencer{
		clauses:         clauses,
		weights:         weights.normalize(),
		perSubstanceCap: perSubstanceCap,
		pool:            pool,
	}, nil
}

func (c *CrossReferencer) Close() {
	c.pool.Release()
}

// CrossReference scores every clause against one record in two passes,
// keeping the maximum per clause: a special-provision pass and a keyword
// overlap pass. Zero-score clauses are excluded; order is score
// descending, clause number ascending.
func (c *CrossReferencer) CrossReference(record domain.SubstanceRecord) []domain.ClauseMatch {
	codes := record.ProvisionCodes()
	out := make([]domain.ClauseMatch, 0, c.perSubstanceCap)

	for _, clause := range c.clauses {
		score, matchedOn := 0.0, ""
		for _, code := range codes {
			if s := provisionMatchScore(code, clause, c.weights); s > score {
				score, matchedOn = s, "provision:"+code
			}
		}
		if s := keywordOverlapScore(record, clause); s > score {
			score, matchedOn = s, "keywords"
		}
		if score <= 0 {
			continue
		}
		out = append(out, domain.ClauseMatch{Clause: clause, Score: score, MatchedOn: matchedOn})
	}

	sortClauseMatches(out)
	if len(out) > c.perSubstanceCap {
		out = out[:c.perSubstanceCap]
	}
	return out
}

// CrossReferenceAll cross-references every record concurrently and merges
// the per-substance clause lists into one deduplicated, re-ranked list
// for the whole result.
func (c *CrossReferencer) CrossReferenceAll(ctx context.Context, records []domain.SubstanceRecord) ([]domain.ClauseMatch, error) {
	if len(records) == 0 {
		return nil, nil
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		merged = make(map[string]domain.ClauseMatch)
	)

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			break
		}
		record := record
		wg.Add(1)
		err := c.pool.Submit(func() {
			defer wg.Done()
			matches := c.CrossReference(record)
			mu.Lock()
			for _, match := range matches {
				current, ok := merged[match.Clause.Number]
				if !ok || match.Score > current.Score {
					merged[match.Clause.Number] = match
				}
			}
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			return nil, fmt.Errorf("submit crossref task: %w", err)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.ClauseMatch, 0, len(merged))
	for _, match := range merged {
		out = append(out, match)
	}
	sortClauseMatches(out)
	return out, nil
}

func sortClauseMatches(matches []domain.ClauseMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Clause.Number < matches[j].Clause.Number
	})
}
