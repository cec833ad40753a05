package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.APIPort != "8080" {
		t.Fatalf("APIPort = %q", cfg.APIPort)
	}
	if cfg.NATSSubject != "catalog.updated" {
		t.Fatalf("NATSSubject = %q", cfg.NATSSubject)
	}
	if cfg.RetrievalTopK != 50 {
		t.Fatalf("RetrievalTopK = %d", cfg.RetrievalTopK)
	}
	if cfg.SimilarityThreshold != 0.1 {
		t.Fatalf("SimilarityThreshold = %v", cfg.SimilarityThreshold)
	}
	if cfg.DefaultShown != 10 || cfg.HardCeiling != 50 {
		t.Fatalf("pagination defaults = %d/%d", cfg.DefaultShown, cfg.HardCeiling)
	}
	if cfg.ScoreExactSubstring != 0.9 || cfg.ScoreProvisionFloor != 0.5 {
		t.Fatalf("score defaults = %v/%v", cfg.ScoreExactSubstring, cfg.ScoreProvisionFloor)
	}
	if cfg.CrossRefDepth != 5 || cfg.CrossRefPerSubstance != 3 || cfg.CrossRefPoolSize != 4 {
		t.Fatalf("crossref defaults = %d/%d/%d", cfg.CrossRefDepth, cfg.CrossRefPerSubstance, cfg.CrossRefPoolSize)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RETRIEVAL_TOP_K", "20")
	t.Setenv("SIMILARITY_THRESHOLD", "0.25")
	t.Setenv("QDRANT_COLLECTION", "substances_test")
	t.Setenv("API_RATE_LIMIT_RPS", "5")

	cfg := Load()
	if cfg.RetrievalTopK != 20 {
		t.Fatalf("RetrievalTopK = %d", cfg.RetrievalTopK)
	}
	if cfg.SimilarityThreshold != 0.25 {
		t.Fatalf("SimilarityThreshold = %v", cfg.SimilarityThreshold)
	}
	if cfg.QdrantCollection != "substances_test" {
		t.Fatalf("QdrantCollection = %q", cfg.QdrantCollection)
	}
	if cfg.APIRateLimitRPS != 5 {
		t.Fatalf("APIRateLimitRPS = %d", cfg.APIRateLimitRPS)
	}
}

func TestLoadMalformedValuesFallBack(t *testing.T) {
	t.Setenv("RETRIEVAL_TOP_K", "plenty")
	t.Setenv("SIMILARITY_THRESHOLD", "lots")

	cfg := Load()
	if cfg.RetrievalTopK != 50 {
		t.Fatalf("malformed int must fall back, got %d", cfg.RetrievalTopK)
	}
	if cfg.SimilarityThreshold != 0.1 {
		t.Fatalf("malformed float must fall back, got %v", cfg.SimilarityThreshold)
	}
}
