package usecase

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/hazref/hazsearch/internal/core/domain"
)

// Recognized override tokens for the strategy parameter.
const (
	OverrideAuto     = "auto"
	OverrideExact    = "exact"
	OverrideSemantic = "semantic"
	OverrideHybrid   = "hybrid"
)

var unNumberPattern = regexp.MustCompile(`^(?:[Uu][Nn])?\s*(\d{1,4})$`)

// sentence-like punctuation that disqualifies a short query from
// name/keyword classification, ASCII and full-width.
const sentencePunctuation = ".?!,;:。？！，；："

const nameTokenThreshold = 3

// resolveStrategy maps an override token and the query surface form onto
// a retrieval strategy. Escalation (exact first, semantic on empty) is
// enabled only for automatic classification. Unrecognized overrides are
// logged and fall back to automatic classification; resolution never fails.
func resolveStrategy(query, override string, logger *slog.Logger) (domain.Strategy, bool) {
	switch strings.ToLower(strings.TrimSpace(override)) {
	case OverrideExact:
		if _, ok := parseUNNumber(query); ok {
			return domain.StrategyExactIdentifier, false
		}
		return domain.StrategyNameOrKeyword, false
	case OverrideSemantic:
		return domain.StrategySemanticOnly, false
	case OverrideHybrid:
		return domain.StrategyHybrid, false
	case "", OverrideAuto:
	default:
		if logger != nil {
			logger.Warn("unrecognized strategy override, falling back to auto", "override", override)
		}
	}
	return classifyQuery(query), true
}

// classifyQuery inspects the surface form only: a bare UN number (with or
// without the "UN" prefix) is an identifier lookup, a short phrase without
// sentence punctuation is a name/keyword search, everything else is
// free text.
func classifyQuery(query string) domain.Strategy {
	if _, ok := parseUNNumber(query); ok {
		return domain.StrategyExactIdentifier
	}
	if len(strings.Fields(query)) <= nameTokenThreshold && !strings.ContainsAny(query, sentencePunctuation) {
		return domain.StrategyNameOrKeyword
	}
	return domain.StrategyFreeText
}

// parseUNNumber accepts queries consisting solely of digits, optionally
// prefixed by "UN".
func parseUNNumber(query string) (int, bool) {
	m := unNumberPattern.FindStringSubmatch(strings.TrimSpace(query))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// dispatchPlan is the adapter-invocation plan derived from a strategy.
type dispatchPlan struct {
	useExact    bool
	useSemantic bool
	expand      bool
}

func planFor(strategy domain.Strategy) dispatchPlan {
	switch strategy {
	case domain.StrategyExactIdentifier:
		return dispatchPlan{useExact: true}
	case domain.StrategyNameOrKeyword:
		return dispatchPlan{useExact: true, expand: true}
	case domain.StrategySemanticOnly:
		return dispatchPlan{useSemantic: true, expand: true}
	case domain.StrategyHybrid, domain.StrategyFreeText:
		return dispatchPlan{useExact: true, useSemantic: true, expand: true}
	default:
		return dispatchPlan{useExact: true, useSemantic: true, expand: true}
	}
}
