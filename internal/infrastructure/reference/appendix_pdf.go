package reference

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/hazref/hazsearch/internal/core/domain"
)

// clauseHeading matches the start of a numbered special-provision entry
// in the appendix text, e.g. "188 Lithium cells and batteries ...".
var clauseHeading = regexp.MustCompile(`(?m)^\s*(\d{2,4})\s+`)

// ExtractClausesFromPDF pulls numbered special-provision clauses out of
// a regulation appendix PDF. Extraction is best effort: the text layer
// of scanned appendices varies, so callers treat failures as a missing
// supplement rather than a fatal error.
func ExtractClausesFromPDF(path string) ([]domain.RegulationClause, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open appendix pdf: %w", err)
	}
	defer f.Close()

	textReader, err := r.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract appendix text: %w", err)
	}
	raw, err := io.ReadAll(textReader)
	if err != nil {
		return nil, fmt.Errorf("read appendix text: %w", err)
	}

	clauses := parseClauses(string(raw))
	if len(clauses) == 0 {
		return nil, fmt.Errorf("appendix %s yielded no clauses", path)
	}
	return clauses, nil
}

func parseClauses(text string) []domain.RegulationClause {
	headings := clauseHeading.FindAllStringSubmatchIndex(text, -1)
	if len(headings) == 0 {
		return nil
	}

	byNumber := make(map[string]domain.RegulationClause, len(headings))
	for i, loc := range headings {
		number := text[loc[2]:loc[3]]
		end := len(text)
		if i+1 < len(headings) {
			end = headings[i+1][0]
		}
		body := strings.TrimSpace(text[loc[1]:end])
		if body == "" {
			continue
		}
		// Duplicate headings happen when a clause spans a page break;
		// keep the longer body.
		if existing, ok := byNumber[number]; ok && len(existing.Text) >= len(body) {
			continue
		}
		byNumber[number] = domain.RegulationClause{
			Number:     number,
			Text:       body,
			Provisions: []string{number},
		}
	}

	out := make([]domain.RegulationClause, 0, len(byNumber))
	for _, clause := range byNumber {
		out = append(out, clause)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// MergeClauses combines a curated corpus with extracted clauses. Curated
// entries win on number collisions since they carry hand-picked keywords.
func MergeClauses(curated, extracted []domain.RegulationClause) []domain.RegulationClause {
	seen := make(map[string]struct{}, len(curated))
	out := make([]domain.RegulationClause, 0, len(curated)+len(extracted))
	for _, clause := range curated {
		seen[clause.Number] = struct{}{}
		out = append(out, clause)
	}
	for _, clause := range extracted {
		if _, ok := seen[clause.Number]; ok {
			continue
		}
		out = append(out, clause)
	}
	return out
}
