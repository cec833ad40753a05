package reference

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hazref/hazsearch/internal/core/domain"
)

type expansionFile struct {
	Rules []struct {
		Trigger string   `yaml:"trigger"`
		Terms   []string `yaml:"terms"`
	} `yaml:"rules"`
}

// LoadExpansionRules reads a curated trigger→terms table from YAML.
func LoadExpansionRules(path string) ([]domain.ExpansionRule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read expansion table: %w", err)
	}

	var file expansionFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse expansion table: %w", err)
	}

	out := make([]domain.ExpansionRule, 0, len(file.Rules))
	for i, rule := range file.Rules {
		if rule.Trigger == "" {
			return nil, fmt.Errorf("expansion rule %d: trigger is required", i)
		}
		if len(rule.Terms) == 0 {
			return nil, fmt.Errorf("expansion rule %d (%q): terms are required", i, rule.Trigger)
		}
		out = append(out, domain.ExpansionRule{Trigger: rule.Trigger, Terms: rule.Terms})
	}
	return out, nil
}

// DefaultExpansionRules is the built-in table used when no file is
// configured. Entries mirror the curated battery and hazard-class
// synonym groups of the source catalog.
func DefaultExpansionRules() []domain.ExpansionRule {
	return []domain.ExpansionRule{
		{Trigger: "锂电池", Terms: []string{"锂离子电池", "锂金属电池", "锂合金电池"}},
		{Trigger: "电池", Terms: []string{"锂离子电池", "锂金属电池", "电池"}},
		{Trigger: "lithium battery", Terms: []string{"lithium ion battery", "lithium metal battery"}},
		{Trigger: "battery", Terms: []string{"lithium ion battery", "lithium metal battery"}},
		{Trigger: "易燃", Terms: []string{"易燃液体", "易燃固体", "易燃气体"}},
		{Trigger: "flammable", Terms: []string{"flammable liquid", "flammable solid", "flammable gas"}},
		{Trigger: "腐蚀", Terms: []string{"腐蚀性物质", "腐蚀性液体"}},
		{Trigger: "corrosive", Terms: []string{"corrosive substance", "corrosive liquid"}},
		{Trigger: "有毒", Terms: []string{"有毒物质", "毒性物质"}},
		{Trigger: "toxic", Terms: []string{"toxic substance", "poisonous substance"}},
	}
}
