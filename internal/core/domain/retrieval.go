package domain

// Strategy is the closed set of retrieval modes. Override tokens that do
// not map onto a strategy fall back to automatic classification.
type Strategy int

const (
	StrategyAuto Strategy = iota
	StrategyExactIdentifier
	StrategyNameOrKeyword
	StrategyFreeText
	StrategySemanticOnly
	StrategyHybrid
)

func (s Strategy) String() string {
	switch s {
	case StrategyExactIdentifier:
		return "exact_identifier"
	case StrategyNameOrKeyword:
		return "name_or_keyword"
	case StrategyFreeText:
		return "free_text"
	case StrategySemanticOnly:
		return "semantic"
	case StrategyHybrid:
		return "hybrid"
	default:
		return "auto"
	}
}

// MatchSource tags which adapter produced a match.
type MatchSource string

const (
	SourceStructured MatchSource = "structured"
	SourceSemantic   MatchSource = "semantic"
)

// Query is one retrieval request. Immutable once issued.
type Query struct {
	Text             string
	StrategyOverride string
	TopK             int
	Limit            int
	Verbose          bool
}

// SubstanceMatch is a substance record scored by one adapter.
// Score is always within [0,1]; exactly 1.0 is reserved for an exact
// identifier match.
type SubstanceMatch struct {
	Record      SubstanceRecord `json:"record"`
	Score       float64         `json:"score"`
	Source      MatchSource     `json:"source"`
	MatchedTerm string          `json:"matched_term"`

	// semanticScore carries the semantic adapter's score for records that
	// matched both sources; it breaks ties during fusion only and never
	// raises Score.
	semanticScore float64
}

// SemanticTieBreak reports the retained semantic score used as a fusion
// tiebreaker.
func (m SubstanceMatch) SemanticTieBreak() float64 { return m.semanticScore }

// WithSemanticTieBreak returns a copy carrying the semantic tiebreak score.
func (m SubstanceMatch) WithSemanticTieBreak(score float64) SubstanceMatch {
	m.semanticScore = score
	return m
}

// SemanticHit is one nearest-neighbor result from the vector index. The
// record is reconstructed from the denormalized point payload, so semantic
// results stay usable while the relational store is degraded.
type SemanticHit struct {
	Record SubstanceRecord
	Score  float64
}

// Pagination describes how much of the full match set is being shown.
type Pagination struct {
	Total     int  `json:"total"`
	Shown     int  `json:"shown"`
	Truncated bool `json:"truncated"`
}

// RetrievalResult is the output of one retrieve call.
type RetrievalResult struct {
	Query       string           `json:"query"`
	Strategy    string           `json:"strategy"`
	Substances  []SubstanceMatch `json:"substances"`
	Regulations []ClauseMatch    `json:"regulations"`
	Pagination  Pagination       `json:"pagination"`

	// Escalated reports that the exact pass found nothing and the engine
	// automatically fell through to semantic search.
	Escalated bool `json:"escalated"`

	// Degraded is set when an adapter timed out or a backend was
	// unreachable and the result covers only the remaining sources.
	Degraded        bool     `json:"degraded"`
	DegradedSources []string `json:"degraded_sources,omitempty"`

	// ContinuationToken is present when the result was truncated at the
	// default display cap; passing it to ConfirmFullResults releases the
	// full set up to the hard ceiling.
	ContinuationToken string `json:"continuation_token,omitempty"`
}
