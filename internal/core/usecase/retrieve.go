package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hazref/hazsearch/internal/core/domain"
	"github.com/hazref/hazsearch/internal/core/ports"
)

// Config holds the retrieval engine tunables. Zero values fall back to
// defaults.
type Config struct {
	TopK                 int
	SimilarityThreshold  float64
	AdapterTimeout       time.Duration
	CrossRefDepth        int
	CrossRefPerSubstance int
	CrossRefPoolSize     int
	DefaultShown         int
	HardCeiling          int
	TokenTTL             time.Duration
	Weights              ScoringWeights
}

func (c Config) normalize() Config {
	if c.TopK <= 0 {
		c.TopK = 50
	}
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = 0.1
	}
	if c.AdapterTimeout <= 0 {
		c.AdapterTimeout = 5 * time.Second
	}
	if c.CrossRefDepth <= 0 {
		c.CrossRefDepth = 5
	}
	c.Weights = c.Weights.normalize()
	return c
}

// HybridRetriever owns the end-to-end retrieve operation:
// classify → expand → dispatch → fuse → cross-reference → paginate.
type HybridRetriever struct {
	exact      *exactMatcher
	semantic   *semanticMatcher
	expander   *ExpansionTable
	crossRef   *CrossReferencer
	pagination paginationPolicy
	pending    *continuationStore
	cfg        Config
	logger     *slog.Logger
}

func NewHybridRetriever(
	repo ports.SubstanceRepository,
	embedder ports.Embedder,
	index ports.VectorIndex,
	expander *ExpansionTable,
	crossRef *CrossReferencer,
	cfg Config,
	logger *slog.Logger,
) *HybridRetriever {
	cfg = cfg.normalize()
	if logger == nil {
		logger = slog.Default()
	}
	return &HybridRetriever{
		exact:      newExactMatcher(repo, cfg.Weights),
		semantic:   newSemanticMatcher(embedder, index, cfg.SimilarityThreshold),
		expander:   expander,
		crossRef:   crossRef,
		pagination: newPaginationPolicy(cfg.DefaultShown, cfg.HardCeiling),
		pending:    newContinuationStore(cfg.TokenTTL),
		cfg:        cfg,
		logger:     logger,
	}
}

// Retrieve answers one lookup query. Adapter failures degrade the result
// to the remaining sources; the call fails only on invalid input, caller
// cancellation, or when every dispatched backend is unavailable.
func (rt *HybridRetriever) Retrieve(ctx context.Context, query domain.Query) (*domain.RetrievalResult, error) {
	start := time.Now()

	text := strings.TrimSpace(query.Text)
	if text == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate query", errors.New("query is empty or whitespace-only"))
	}

	strategy, escalate := resolveStrategy(text, query.StrategyOverride, rt.logger)
	plan := planFor(strategy)

	variants := []string{text}
	if plan.expand && rt.expander != nil {
		variants = rt.expander.Expand(text)
	}

	topK := query.TopK
	if topK <= 0 {
		topK = rt.cfg.TopK
	}

	exactMatches, semanticMatches, failures := rt.dispatch(ctx, plan, variants, topK)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Auto strategies try exact first and escalate to semantic before
	// returning an empty result.
	escalated := false
	if escalate && !plan.useSemantic && len(exactMatches) == 0 {
		matches, err := rt.runSemantic(ctx, variants, topK)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failures[domain.SourceSemantic] = err
			rt.logger.Warn("semantic escalation failed", "query", text, "error", err)
		} else {
			semanticMatches = matches
			escalated = true
		}
	}

	attempted := attemptedSources(plan, escalate && len(exactMatches) == 0)
	if len(failures) >= attempted {
		return nil, domain.WrapError(domain.ErrNoBackendAvailable, "retrieve", joinFailures(failures))
	}

	fused := fuseMatches(exactMatches, semanticMatches)

	regulations, err := rt.crossReferenceTop(ctx, fused)
	if err != nil {
		return nil, err
	}

	shown, meta := rt.pagination.paginate(fused, query.Limit, false)

	result := &domain.RetrievalResult{
		Query:       text,
		Strategy:    strategy.String(),
		Substances:  shown,
		Regulations: regulations,
		Pagination:  meta,
		Escalated:   escalated,
	}
	for source := range failures {
		result.Degraded = true
		result.DegradedSources = append(result.DegradedSources, string(source))
	}
	if meta.Truncated {
		result.ContinuationToken = rt.pending.put(pendingResult{
			query:       query,
			strategy:    strategy,
			substances:  fused,
			regulations: regulations,
			escalated:   escalated,
			degraded:    result.Degraded,
			degradedSrc: result.DegradedSources,
		})
	}

	rt.logger.Info("retrieve completed",
		"query", text,
		"strategy", strategy.String(),
		"variants", len(variants),
		"substances_total", meta.Total,
		"substances_shown", meta.Shown,
		"regulations", len(regulations),
		"escalated", escalated,
		"degraded", result.Degraded,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// ConfirmFullResults releases the full match set behind a continuation
// token, up to the hard ceiling. Tokens are single-use and expire.
func (rt *HybridRetriever) ConfirmFullResults(ctx context.Context, token string) (*domain.RetrievalResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "confirm full results", errors.New("continuation token is required"))
	}

	entry, ok := rt.pending.take(token)
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "confirm full results", errors.New("unknown or expired continuation token"))
	}

	shown, meta := rt.pagination.paginate(entry.substances, entry.query.Limit, true)
	return &domain.RetrievalResult{
		Query:           strings.TrimSpace(entry.query.Text),
		Strategy:        entry.strategy.String(),
		Substances:      shown,
		Regulations:     entry.regulations,
		Pagination:      meta,
		Escalated:       entry.escalated,
		Degraded:        entry.degraded,
		DegradedSources: entry.degradedSrc,
	}, nil
}

// dispatch fans the query variants out to the adapters the plan requires.
// When both are required they run concurrently; neither depends on the
// other's output. A failed adapter contributes an empty set plus a
// failure entry instead of failing the query.
func (rt *HybridRetriever) dispatch(
	ctx context.Context,
	plan dispatchPlan,
	variants []string,
	topK int,
) (exact, semantic []domain.SubstanceMatch, failures map[domain.MatchSource]error) {
	failures = make(map[domain.MatchSource]error)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	run := func(source domain.MatchSource, fn func(context.Context, []string, int) ([]domain.SubstanceMatch, error), dst *[]domain.SubstanceMatch) {
		defer wg.Done()
		matches, err := fn(ctx, variants, topK)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			if ctx.Err() == nil {
				failures[source] = err
				rt.logger.Warn("adapter degraded", "source", source, "error", err)
			}
			return
		}
		*dst = matches
	}

	if plan.useExact {
		wg.Add(1)
		go run(domain.SourceStructured, rt.runExact, &exact)
	}
	if plan.useSemantic {
		wg.Add(1)
		go run(domain.SourceSemantic, rt.runSemantic, &semantic)
	}
	wg.Wait()
	return exact, semantic, failures
}

func (rt *HybridRetriever) runExact(ctx context.Context, variants []string, topK int) ([]domain.SubstanceMatch, error) {
	cctx, cancel := context.WithTimeout(ctx, rt.cfg.AdapterTimeout)
	defer cancel()
	return rt.exact.match(cctx, variants, topK)
}

func (rt *HybridRetriever) runSemantic(ctx context.Context, variants []string, topK int) ([]domain.SubstanceMatch, error) {
	cctx, cancel := context.WithTimeout(ctx, rt.cfg.AdapterTimeout)
	defer cancel()
	return rt.semantic.match(cctx, variants, topK)
}

func (rt *HybridRetriever) crossReferenceTop(ctx context.Context, fused []domain.SubstanceMatch) ([]domain.ClauseMatch, error) {
	if rt.crossRef == nil || len(fused) == 0 {
		return nil, nil
	}
	depth := rt.cfg.CrossRefDepth
	if depth > len(fused) {
		depth = len(fused)
	}
	records := make([]domain.SubstanceRecord, 0, depth)
	for _, match := range fused[:depth] {
		records = append(records, match.Record)
	}
	return rt.crossRef.CrossReferenceAll(ctx, records)
}

func attemptedSources(plan dispatchPlan, escalated bool) int {
	n := 0
	if plan.useExact {
		n++
	}
	if plan.useSemantic || escalated {
		n++
	}
	return n
}

func joinFailures(failures map[domain.MatchSource]error) error {
	parts := make([]string, 0, len(failures))
	for source, err := range failures {
		parts = append(parts, fmt.Sprintf("%s: %v", source, err))
	}
	return errors.New(strings.Join(parts, "; "))
}
