package usecase

import (
	"context"
	"errors"
	"testing"
)

func TestExactMatchIdentifierScoresFull(t *testing.T) {
	repo := newFakeRepo(testRecord(1133, "粘合剂", "ADHESIVES"))
	m := newExactMatcher(repo, DefaultScoringWeights())

	matches, err := m.match(context.Background(), []string{"UN1133"}, 10)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Score != 1.0 {
		t.Fatalf("identifier match score = %v, want 1.0", matches[0].Score)
	}
	if matches[0].Record.UNNumber != 1133 {
		t.Fatalf("wrong record: %+v", matches[0].Record)
	}
}

func TestExactMatchUnknownIdentifierIsEmptyNotError(t *testing.T) {
	repo := newFakeRepo()
	m := newExactMatcher(repo, DefaultScoringWeights())

	matches, err := m.match(context.Background(), []string{"9999"}, 10)
	if err != nil {
		t.Fatalf("missing substance must not fail the pass: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %v", matches)
	}
}

func TestExactMatchNameScoresBothLanguages(t *testing.T) {
	repo := newFakeRepo(
		testRecord(1090, "丙酮", "ACETONE"),
		testRecord(1133, "粘合剂", "ADHESIVES"),
	)
	m := newExactMatcher(repo, DefaultScoringWeights())

	matches, err := m.match(context.Background(), []string{"ACETONE"}, 10)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(matches) != 1 || matches[0].Record.UNNumber != 1090 {
		t.Fatalf("expected the acetone record, got %v", matches)
	}
	if matches[0].Score != 0.9 {
		t.Fatalf("english exact substring score = %v, want 0.9", matches[0].Score)
	}
}

func TestExactMatchDeduplicatesAcrossVariants(t *testing.T) {
	repo := newFakeRepo(testRecord(3480, "锂离子电池", "LITHIUM ION BATTERIES"))
	m := newExactMatcher(repo, DefaultScoringWeights())

	matches, err := m.match(context.Background(), []string{"锂离子电池", "锂电池"}, 10)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("variants matching the same record must merge, got %d", len(matches))
	}
	// The full-name variant is the exact substring and must win.
	if matches[0].Score != 0.9 {
		t.Fatalf("kept score = %v, want the best variant's 0.9", matches[0].Score)
	}
}

func TestExactMatchRepositoryErrorPropagates(t *testing.T) {
	repo := newFakeRepo()
	repo.searchErr = errors.New("connection refused")
	m := newExactMatcher(repo, DefaultScoringWeights())

	if _, err := m.match(context.Background(), []string{"acetone"}, 10); err == nil {
		t.Fatalf("expected repository error to propagate")
	}
}

func TestExactMatchRespectsLimit(t *testing.T) {
	repo := newFakeRepo(
		testRecord(1, "test one", "TEST ONE"),
		testRecord(2, "test two", "TEST TWO"),
		testRecord(3, "test three", "TEST THREE"),
	)
	m := newExactMatcher(repo, DefaultScoringWeights())

	matches, err := m.match(context.Background(), []string{"test"}, 2)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(matches) > 2 {
		t.Fatalf("limit not honored, got %d matches", len(matches))
	}
}
