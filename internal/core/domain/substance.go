package domain

import (
	"fmt"
	"strings"
	"time"
)

// SubstanceRecord is one entry of the regulated-substances catalog.
// The UN number is the natural key; the catalog holds at most one
// canonical record per number.
type SubstanceRecord struct {
	UNNumber           int       `json:"un_number"`
	Name               string    `json:"name"`
	NameEN             string    `json:"name_en"`
	HazardClass        string    `json:"hazard_class"`
	SecondaryHazard    string    `json:"secondary_hazard"`
	PackingGroup       string    `json:"packing_group"`
	SpecialProvisions  string    `json:"special_provisions"`
	LimitedQuantity    string    `json:"limited_quantity"`
	ExceptedQuantity   string    `json:"excepted_quantity"`
	PackingInstruction string    `json:"packing_instruction"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ProvisionCodes splits the space-separated special-provision field into
// individual codes, dropping anything that is not a bare number.
func (s SubstanceRecord) ProvisionCodes() []string {
	fields := strings.Fields(s.SpecialProvisions)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if isDigits(f) {
			out = append(out, f)
		}
	}
	return out
}

// SearchText renders the record as the field-labelled text that is
// embedded into the vector index and shown to callers. Missing values
// render as "null" so every record exposes the same field set.
func (s SubstanceRecord) SearchText() string {
	pairs := []struct {
		label string
		value string
	}{
		{"UN number", fmt.Sprintf("%d", s.UNNumber)},
		{"Name and description", s.Name},
		{"English name and description", s.NameEN},
		{"Class or division", s.HazardClass},
		{"Subsidiary hazard", s.SecondaryHazard},
		{"Packing group", s.PackingGroup},
		{"Special provisions", s.SpecialProvisions},
		{"Limited quantity", s.LimitedQuantity},
		{"Excepted quantity", s.ExceptedQuantity},
		{"Packing instruction", s.PackingInstruction},
	}

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('\n')
		}
		v := strings.TrimSpace(p.value)
		if v == "" {
			v = "null"
		}
		b.WriteString(p.label)
		b.WriteString(": ")
		b.WriteString(v)
	}
	return b.String()
}

// CatalogStats summarizes the relational catalog.
type CatalogStats struct {
	TotalSubstances int            `json:"total_substances"`
	ByHazardClass   map[string]int `json:"by_hazard_class"`
	ByPackingGroup  map[string]int `json:"by_packing_group"`
	VectorPoints    int            `json:"vector_points"`
	VectorAvailable bool           `json:"vector_available"`
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
