package usecase

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hazref/hazsearch/internal/core/domain"
)

// ScoringWeights are the tunable constants of the match scorers. A score
// of exactly 1.0 stays reserved for identifier matches.
type ScoringWeights struct {
	ExactSubstring   float64 // case-sensitive substring name match
	PartialBase      float64 // upper bound for case-insensitive partial matches
	PartialMin       float64 // lower bound for case-insensitive partial matches
	ProvisionPenalty float64 // deducted per extra provision bound to a clause
	ProvisionFloor   float64 // lowest score a provision match can reach
}

func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		ExactSubstring:   0.9,
		PartialBase:      0.75,
		PartialMin:       0.3,
		ProvisionPenalty: 0.05,
		ProvisionFloor:   0.5,
	}
}

func (w ScoringWeights) normalize() ScoringWeights {
	def := DefaultScoringWeights()
	if w.ExactSubstring <= 0 || w.ExactSubstring >= 1 {
		w.ExactSubstring = def.ExactSubstring
	}
	if w.PartialBase <= 0 || w.PartialBase > w.ExactSubstring {
		w.PartialBase = def.PartialBase
	}
	if w.PartialMin <= 0 || w.PartialMin > w.PartialBase {
		w.PartialMin = def.PartialMin
	}
	if w.ProvisionPenalty <= 0 || w.ProvisionPenalty >= 1 {
		w.ProvisionPenalty = def.ProvisionPenalty
	}
	if w.ProvisionFloor <= 0 || w.ProvisionFloor >= 1 {
		w.ProvisionFloor = def.ProvisionFloor
	}
	return w
}

// nameMatchScore scores a name lookup. Exact substring presence scores the
// full name weight; a case-insensitive hit scores lower, scaled by the
// ratio of matched length to name length.
func nameMatchScore(term, name string, w ScoringWeights) float64 {
	term = strings.TrimSpace(term)
	if term == "" || name == "" {
		return 0
	}
	if strings.Contains(name, term) {
		return w.ExactSubstring
	}
	lowerName := strings.ToLower(name)
	lowerTerm := strings.ToLower(term)
	if !strings.Contains(lowerName, lowerTerm) {
		return 0
	}
	ratio := float64(utf8.RuneCountInString(lowerTerm)) / float64(utf8.RuneCountInString(lowerName))
	score := w.PartialBase * ratio
	if score < w.PartialMin {
		return w.PartialMin
	}
	if score > w.PartialBase {
		return w.PartialBase
	}
	return score
}

// provisionMatchScore scores a clause against one special-provision code:
// full marks for a clause bound to exactly that provision, minus a small
// penalty per additional unrelated provision on the clause.
func provisionMatchScore(code string, clause domain.RegulationClause, w ScoringWeights) float64 {
	bound := false
	for _, p := range clause.Provisions {
		if p == code {
			bound = true
			break
		}
	}
	if !bound {
		return 0
	}
	score := 1.0 - w.ProvisionPenalty*float64(len(clause.Provisions)-1)
	if score < w.ProvisionFloor {
		return w.ProvisionFloor
	}
	return score
}

// keywordOverlapScore is the fraction of a clause's trigger keywords that
// occur in the substance's name or hazard class. Keywords count as present
// on token equality or substring containment, so unsegmented scripts match
// without a tokenizer.
func keywordOverlapScore(record domain.SubstanceRecord, clause domain.RegulationClause) float64 {
	if len(clause.Keywords) == 0 {
		return 0
	}
	haystack := strings.ToLower(record.Name + " " + record.NameEN + " " + record.HazardClass)
	tokens := toTokenSet(haystack)
	matched := 0
	for _, kw := range clause.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, ok := tokens[kw]; ok {
			matched++
			continue
		}
		if strings.Contains(haystack, kw) {
			matched++
		}
	}
	return float64(matched) / float64(len(clause.Keywords))
}

func toTokenSet(s string) map[string]struct{} {
	tokens := splitAlphaNumLower(s)
	out := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		out[token] = struct{}{}
	}
	return out
}

func splitAlphaNumLower(s string) []string {
	if s == "" {
		return nil
	}

	tokens := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || unicode.Is(unicode.Han, r) {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}
