package usecase

import "github.com/hazref/hazsearch/internal/core/domain"

// paginationPolicy governs controlled disclosure of large result sets:
// a default display cap until the caller confirms wanting the full set,
// and a hard ceiling that is never exceeded.
type paginationPolicy struct {
	defaultShown int
	hardCeiling  int
}

func newPaginationPolicy(defaultShown, hardCeiling int) paginationPolicy {
	if defaultShown <= 0 {
		defaultShown = 10
	}
	if hardCeiling < defaultShown {
		hardCeiling = 50
	}
	return paginationPolicy{defaultShown: defaultShown, hardCeiling: hardCeiling}
}

// paginate returns the visible slice and its metadata. requestedLimit
// further caps the shown count but never raises it beyond the active cap.
func (p paginationPolicy) paginate(matches []domain.SubstanceMatch, requestedLimit int, confirmed bool) ([]domain.SubstanceMatch, domain.Pagination) {
	total := len(matches)

	cap := p.defaultShown
	if confirmed {
		cap = p.hardCeiling
	}
	if requestedLimit > 0 && requestedLimit < cap {
		cap = requestedLimit
	}

	shown := total
	if shown > cap {
		shown = cap
	}

	return matches[:shown], domain.Pagination{
		Total:     total,
		Shown:     shown,
		Truncated: shown < total,
	}
}
