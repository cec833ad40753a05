package usecase

import (
	"context"
	"testing"

	"github.com/hazref/hazsearch/internal/core/domain"
)

func testClauses() []domain.RegulationClause {
	return []domain.RegulationClause{
		{Number: "188", Text: "Cells and batteries offered for transport...", Provisions: []string{"188"}},
		{Number: "230", Text: "Lithium cells and batteries...", Provisions: []string{"230", "310"}},
		{Number: "640", Text: "Viscous flammable liquids...", Provisions: []string{"640"}, Keywords: []string{"flammable", "viscous"}},
	}
}

func newTestCrossReferencer(t *testing.T, perSubstanceCap int) *CrossReferencer {
	t.Helper()
	c, err := NewCrossReferencer(testClauses(), DefaultScoringWeights(), perSubstanceCap, 2)
	if err != nil {
		t.Fatalf("NewCrossReferencer: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestCrossReferenceProvisionMatch(t *testing.T) {
	c := newTestCrossReferencer(t, 3)

	record := domain.SubstanceRecord{
		UNNumber:          3480,
		Name:              "锂离子电池",
		NameEN:            "LITHIUM ION BATTERIES",
		SpecialProvisions: "188 230",
	}
	matches := c.CrossReference(record)
	if len(matches) != 2 {
		t.Fatalf("expected 2 clause matches, got %d: %v", len(matches), matches)
	}
	// Clause 188 is bound to exactly one provision and must outrank 230,
	// which carries an extra provision penalty.
	if matches[0].Clause.Number != "188" || matches[0].Score != 1.0 {
		t.Fatalf("first match = %s score %v, want 188 at 1.0", matches[0].Clause.Number, matches[0].Score)
	}
	if matches[0].MatchedOn != "provision:188" {
		t.Fatalf("matched-on = %q", matches[0].MatchedOn)
	}
	if matches[1].Clause.Number != "230" || matches[1].Score >= 1.0 {
		t.Fatalf("second match = %s score %v", matches[1].Clause.Number, matches[1].Score)
	}
}

func TestCrossReferenceKeywordMatch(t *testing.T) {
	c := newTestCrossReferencer(t, 3)

	record := domain.SubstanceRecord{
		UNNumber:    1090,
		NameEN:      "ACETONE",
		HazardClass: "flammable liquid",
	}
	matches := c.CrossReference(record)
	if len(matches) != 1 || matches[0].Clause.Number != "640" {
		t.Fatalf("expected keyword match on clause 640, got %v", matches)
	}
	if matches[0].MatchedOn != "keywords" {
		t.Fatalf("matched-on = %q", matches[0].MatchedOn)
	}
	if matches[0].Score != 0.5 {
		t.Fatalf("one of two keywords matched, score = %v, want 0.5", matches[0].Score)
	}
}

func TestCrossReferenceScoresStayInRange(t *testing.T) {
	c := newTestCrossReferencer(t, 10)

	record := domain.SubstanceRecord{
		UNNumber:          1,
		NameEN:            "VISCOUS FLAMMABLE TEST",
		SpecialProvisions: "188 230 640",
	}
	for _, match := range c.CrossReference(record) {
		if match.Score <= 0 || match.Score > 1 {
			t.Fatalf("clause %s score %v out of (0,1]", match.Clause.Number, match.Score)
		}
	}
}

func TestCrossReferencePerSubstanceCap(t *testing.T) {
	c := newTestCrossReferencer(t, 1)

	record := domain.SubstanceRecord{
		UNNumber:          1,
		SpecialProvisions: "188 230 640",
	}
	matches := c.CrossReference(record)
	if len(matches) != 1 {
		t.Fatalf("per-substance cap not applied, got %d matches", len(matches))
	}
	if matches[0].Clause.Number != "188" {
		t.Fatalf("cap must keep the best clause, got %s", matches[0].Clause.Number)
	}
}

func TestCrossReferenceAllMergesAndDeduplicates(t *testing.T) {
	c := newTestCrossReferencer(t, 3)

	records := []domain.SubstanceRecord{
		{UNNumber: 3480, SpecialProvisions: "188"},
		{UNNumber: 3481, SpecialProvisions: "188 230"},
	}
	matches, err := c.CrossReferenceAll(context.Background(), records)
	if err != nil {
		t.Fatalf("CrossReferenceAll: %v", err)
	}

	seen := make(map[string]bool)
	for _, match := range matches {
		if seen[match.Clause.Number] {
			t.Fatalf("duplicate clause %s in merged result", match.Clause.Number)
		}
		seen[match.Clause.Number] = true
	}
	if !seen["188"] || !seen["230"] {
		t.Fatalf("expected clauses 188 and 230, got %v", matches)
	}
}

func TestCrossReferenceAllCanceledContext(t *testing.T) {
	c := newTestCrossReferencer(t, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.CrossReferenceAll(ctx, []domain.SubstanceRecord{{UNNumber: 1}}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestCrossReferenceAllEmptyInput(t *testing.T) {
	c := newTestCrossReferencer(t, 3)
	matches, err := c.CrossReferenceAll(context.Background(), nil)
	if err != nil || matches != nil {
		t.Fatalf("empty input: matches=%v err=%v", matches, err)
	}
}
