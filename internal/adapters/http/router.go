package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hazref/hazsearch/internal/core/domain"
	"github.com/hazref/hazsearch/internal/core/ports"
	"github.com/hazref/hazsearch/internal/observability/metrics"
)

const serviceName = "api"

// TrafficControl tunes the shared ingress gates.
type TrafficControl struct {
	RateLimitRPS      int
	RateLimitBurst    int
	MaxInFlight       int
	InFlightQueueWait time.Duration
}

type Router struct {
	retriever ports.SubstanceRetriever
	catalog   ports.CatalogReader
	metrics   *metrics.HTTPServerMetrics
	traffic   TrafficControl
}

func NewRouter(
	retriever ports.SubstanceRetriever,
	catalog ports.CatalogReader,
	serverMetrics *metrics.HTTPServerMetrics,
	traffic TrafficControl,
) *Router {
	if traffic.InFlightQueueWait <= 0 {
		traffic.InFlightQueueWait = 100 * time.Millisecond
	}
	return &Router{
		retriever: retriever,
		catalog:   catalog,
		metrics:   serverMetrics,
		traffic:   traffic,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/retrieve", rt.retrieve)
	mux.HandleFunc("/v1/retrieve/confirm", rt.confirm)
	mux.HandleFunc("/v1/stats", rt.stats)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = backpressureMiddleware(handler, rt.traffic.MaxInFlight, rt.traffic.InFlightQueueWait)
	handler = rateLimitMiddleware(handler, rt.traffic.RateLimitRPS, rt.traffic.RateLimitBurst)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type retrieveRequest struct {
	Query    string `json:"query"`
	Strategy string `json:"strategy"`
	TopK     int    `json:"top_k"`
	Limit    int    `json:"limit"`
	Verbose  bool   `json:"verbose"`
}

func (rt *Router) retrieve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req retrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	start := time.Now()
	result, err := rt.retriever.Retrieve(r.Context(), domain.Query{
		Text:             req.Query,
		StrategyOverride: req.Strategy,
		TopK:             req.TopK,
		Limit:            req.Limit,
		Verbose:          req.Verbose,
	})
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		if status >= 500 {
			slog.Error("retrieve failed",
				"request_id", requestIDFromContext(r.Context()),
				"error", err,
			)
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordRetrieval(
			serviceName,
			result.Strategy,
			result.Pagination.Shown,
			len(result.Regulations),
			result.Escalated,
			result.DegradedSources,
			time.Since(start),
		)
	}
	writeJSON(w, http.StatusOK, result)
}

type confirmRequest struct {
	ContinuationToken string `json:"continuation_token"`
}

func (rt *Router) confirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.ContinuationToken) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "continuation_token is required"})
		return
	}

	result, err := rt.retriever.ConfirmFullResults(r.Context(), req.ContinuationToken)
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordConfirm(serviceName, "rejected")
		}
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordConfirm(serviceName, "ok")
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	stats, err := rt.catalog.Statistics(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
