package reference

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hazref/hazsearch/internal/core/domain"
)

type corpusFile struct {
	Clauses []struct {
		Number     string   `yaml:"number"`
		Text       string   `yaml:"text"`
		Provisions []string `yaml:"provisions"`
		Keywords   []string `yaml:"keywords"`
	} `yaml:"clauses"`
}

// LoadRegulationCorpus reads the special-provisions clause corpus from
// YAML. The returned slice is treated as immutable by every consumer.
func LoadRegulationCorpus(path string) ([]domain.RegulationClause, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read regulation corpus: %w", err)
	}

	var file corpusFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse regulation corpus: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Clauses))
	out := make([]domain.RegulationClause, 0, len(file.Clauses))
	for i, clause := range file.Clauses {
		if clause.Number == "" {
			return nil, fmt.Errorf("clause %d: number is required", i)
		}
		if _, ok := seen[clause.Number]; ok {
			return nil, fmt.Errorf("clause %d: duplicate number %q", i, clause.Number)
		}
		seen[clause.Number] = struct{}{}

		provisions := clause.Provisions
		if len(provisions) == 0 {
			provisions = []string{clause.Number}
		}
		out = append(out, domain.RegulationClause{
			Number:     clause.Number,
			Text:       clause.Text,
			Provisions: provisions,
			Keywords:   clause.Keywords,
		})
	}
	return out, nil
}
