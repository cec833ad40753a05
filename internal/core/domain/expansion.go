package domain

// ExpansionRule maps a trigger substring to related search terms. Rules
// are curated reference data, loaded once and shared read-only.
type ExpansionRule struct {
	Trigger string   `json:"trigger"`
	Terms   []string `json:"terms"`
}
