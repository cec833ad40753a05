package usecase

import (
	"sort"

	"github.com/hazref/hazsearch/internal/core/domain"
)

// fuseMatches merges the exact and semantic result sets into one list
// with no duplicate UN numbers. When both sources matched a record the
// structured entry wins and the semantic score is retained as a
// tiebreaker only; it never raises the structured score. The final order
// is total and deterministic: score descending, structured before
// semantic, semantic tiebreak descending, UN number ascending.
func fuseMatches(exact, semantic []domain.SubstanceMatch) []domain.SubstanceMatch {
	fused := make(map[int]domain.SubstanceMatch, len(exact)+len(semantic))
	for _, match := range exact {
		keepBest(fused, match)
	}
	for _, match := range semantic {
		if current, ok := fused[match.Record.UNNumber]; ok {
			// Structured matches are authoritative when both sources agree.
			fused[match.Record.UNNumber] = current.WithSemanticTieBreak(match.Score)
			continue
		}
		fused[match.Record.UNNumber] = match
	}

	out := make([]domain.SubstanceMatch, 0, len(fused))
	for _, match := range fused {
		out = append(out, match)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if ri, rj := sourceRank(out[i].Source), sourceRank(out[j].Source); ri != rj {
			return ri < rj
		}
		if out[i].SemanticTieBreak() != out[j].SemanticTieBreak() {
			return out[i].SemanticTieBreak() > out[j].SemanticTieBreak()
		}
		return out[i].Record.UNNumber < out[j].Record.UNNumber
	})
	return out
}

func sourceRank(source domain.MatchSource) int {
	if source == domain.SourceStructured {
		return 0
	}
	return 1
}
