package domain

// RegulationClause is one numbered clause of the special-provisions
// appendix. The corpus is loaded once at startup and never mutated, so
// clause values may be shared across concurrent queries without locking.
type RegulationClause struct {
	Number     string   `json:"number"`
	Text       string   `json:"text"`
	Provisions []string `json:"provisions"`
	Keywords   []string `json:"keywords"`
}

// ClauseMatch is a regulation clause scored against one query result.
type ClauseMatch struct {
	Clause    RegulationClause `json:"clause"`
	Score     float64          `json:"score"`
	MatchedOn string           `json:"matched_on"`
}
