package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazref/hazsearch/internal/config"
	"github.com/hazref/hazsearch/internal/core/domain"
	"github.com/hazref/hazsearch/internal/core/ports"
	"github.com/hazref/hazsearch/internal/core/usecase"
	"github.com/hazref/hazsearch/internal/infrastructure/llm/ollama"
	"github.com/hazref/hazsearch/internal/infrastructure/queue/nats"
	"github.com/hazref/hazsearch/internal/infrastructure/reference"
	"github.com/hazref/hazsearch/internal/infrastructure/repository/postgres"
	"github.com/hazref/hazsearch/internal/infrastructure/resilience"
	"github.com/hazref/hazsearch/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Repo      ports.SubstanceRepository
	Retriever ports.SubstanceRetriever
	Catalog   ports.CatalogReader
	Indexer   ports.SubstanceIndexer
	ImportUC  *usecase.ImportCatalogUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewSubstanceRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	embedder := ollama.NewEmbedder(cfg.OllamaURL, cfg.OllamaEmbedModel, executor)
	vectorIndex := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)

	expansionRules, err := loadExpansionRules(cfg, logger)
	if err != nil {
		return nil, err
	}
	clauses, err := loadRegulationCorpus(cfg, logger)
	if err != nil {
		return nil, err
	}

	weights := usecase.ScoringWeights{
		ExactSubstring:   cfg.ScoreExactSubstring,
		PartialBase:      cfg.ScorePartialBase,
		PartialMin:       cfg.ScorePartialMin,
		ProvisionPenalty: cfg.ScoreProvisionPenalty,
		ProvisionFloor:   cfg.ScoreProvisionFloor,
	}

	crossRef, err := usecase.NewCrossReferencer(clauses, weights, cfg.CrossRefPerSubstance, cfg.CrossRefPoolSize)
	if err != nil {
		return nil, fmt.Errorf("init cross-referencer: %w", err)
	}

	retriever := usecase.NewHybridRetriever(
		repo,
		embedder,
		vectorIndex,
		usecase.NewExpansionTable(expansionRules),
		crossRef,
		usecase.Config{
			TopK:                 cfg.RetrievalTopK,
			SimilarityThreshold:  cfg.SimilarityThreshold,
			AdapterTimeout:       time.Duration(cfg.AdapterTimeoutSecs) * time.Second,
			CrossRefDepth:        cfg.CrossRefDepth,
			CrossRefPerSubstance: cfg.CrossRefPerSubstance,
			CrossRefPoolSize:     cfg.CrossRefPoolSize,
			DefaultShown:         cfg.DefaultShown,
			HardCeiling:          cfg.HardCeiling,
			TokenTTL:             time.Duration(cfg.TokenTTLSecs) * time.Second,
			Weights:              weights,
		},
		logger,
	)

	return &App{
		Config: cfg,

		Queue:     queue,
		Repo:      repo,
		Retriever: retriever,
		Catalog:   usecase.NewCatalogStatsUseCase(repo, vectorIndex),
		Indexer:   usecase.NewIndexSubstanceUseCase(repo, embedder, vectorIndex),
		ImportUC:  usecase.NewImportCatalogUseCase(repo, queue, logger),

		closeFn: func() {
			crossRef.Close()
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func loadExpansionRules(cfg config.Config, logger *slog.Logger) ([]domain.ExpansionRule, error) {
	if cfg.ExpansionTablePath == "" {
		return reference.DefaultExpansionRules(), nil
	}
	rules, err := reference.LoadExpansionRules(cfg.ExpansionTablePath)
	if err != nil {
		return nil, fmt.Errorf("load expansion table: %w", err)
	}
	logger.Info("expansion table loaded", "path", cfg.ExpansionTablePath, "rules", len(rules))
	return rules, nil
}

func loadRegulationCorpus(cfg config.Config, logger *slog.Logger) ([]domain.RegulationClause, error) {
	clauses, err := reference.LoadRegulationCorpus(cfg.RegulationCorpusPath)
	if err != nil {
		return nil, fmt.Errorf("load regulation corpus: %w", err)
	}
	if cfg.RegulationAppendixPDF != "" {
		extracted, err := reference.ExtractClausesFromPDF(cfg.RegulationAppendixPDF)
		if err != nil {
			// The YAML corpus keeps the engine usable without the appendix.
			logger.Warn("regulation appendix skipped", "path", cfg.RegulationAppendixPDF, "error", err)
		} else {
			clauses = reference.MergeClauses(clauses, extracted)
			logger.Info("regulation appendix merged", "path", cfg.RegulationAppendixPDF, "clauses", len(extracted))
		}
	}
	logger.Info("regulation corpus ready", "clauses", len(clauses))
	return clauses, nil
}
