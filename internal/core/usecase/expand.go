package usecase

import (
	"strings"

	"github.com/hazref/hazsearch/internal/core/domain"
)

type expansionRule struct {
	trigger string
	terms   []string
}

// ExpansionTable expands a query into related search terms using curated
// trigger→terms rules. Matching is case-insensitive and substring-based.
// Each rule fires at most once per call and firing continues only until
// no rule matches the accumulated term set, so expansion reaches a fixed
// point and never grows unboundedly.
type ExpansionTable struct {
	rules []expansionRule
}

func NewExpansionTable(rules []domain.ExpansionRule) *ExpansionTable {
	compiled := make([]expansionRule, 0, len(rules))
	for _, r := range rules {
		trigger := strings.ToLower(strings.TrimSpace(r.Trigger))
		if trigger == "" || len(r.Terms) == 0 {
			continue
		}
		compiled = append(compiled, expansionRule{trigger: trigger, terms: r.Terms})
	}
	return &ExpansionTable{rules: compiled}
}

// Expand returns the query followed by its related terms, insertion order
// preserved, duplicates removed. Expanding an already-expanded set yields
// no new terms.
func (t *ExpansionTable) Expand(query string) []string {
	out := make([]string, 0, 1+len(t.rules))
	seen := make(map[string]struct{}, 1+len(t.rules))

	add := func(term string) bool {
		key := strings.ToLower(strings.TrimSpace(term))
		if key == "" {
			return false
		}
		if _, ok := seen[key]; ok {
			return false
		}
		seen[key] = struct{}{}
		out = append(out, term)
		return true
	}
	add(query)

	fired := make([]bool, len(t.rules))
	for {
		progressed := false
		for i, rule := range t.rules {
			if fired[i] {
				continue
			}
			if !triggerMatches(rule.trigger, out) {
				continue
			}
			fired[i] = true
			for _, term := range rule.terms {
				if add(term) {
					progressed = true
				}
			}
		}
		if !progressed {
			return out
		}
	}
}

func triggerMatches(trigger string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(strings.ToLower(term), trigger) {
			return true
		}
	}
	return false
}
