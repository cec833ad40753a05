package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	retrievalTotal       *prometheus.CounterVec
	retrievalDuration    *prometheus.HistogramVec
	retrievalShown       *prometheus.HistogramVec
	escalationsTotal     *prometheus.CounterVec
	degradedTotal        *prometheus.CounterVec
	confirmTotal         *prometheus.CounterVec
	crossRefClausesTotal *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hazsearch",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hazsearch",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hazsearch",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	retrievalTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hazsearch",
			Subsystem: "retrieval",
			Name:      "requests_total",
			Help:      "Total completed retrievals by resolved strategy.",
		},
		[]string{"service", "strategy"},
	)
	retrievalDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hazsearch",
			Subsystem: "retrieval",
			Name:      "duration_seconds",
			Help:      "Retrieval execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "strategy"},
	)
	retrievalShown := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hazsearch",
			Subsystem: "retrieval",
			Name:      "shown_results",
			Help:      "Distribution of shown results per retrieval.",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50},
		},
		[]string{"service"},
	)
	escalationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hazsearch",
			Subsystem: "retrieval",
			Name:      "escalations_total",
			Help:      "Total retrievals escalated from exact to semantic search.",
		},
		[]string{"service"},
	)
	degradedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hazsearch",
			Subsystem: "retrieval",
			Name:      "degraded_total",
			Help:      "Total retrievals that lost a backend and served partial results.",
		},
		[]string{"service", "source"},
	)
	confirmTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hazsearch",
			Subsystem: "retrieval",
			Name:      "confirm_total",
			Help:      "Total full-result confirmations by outcome.",
		},
		[]string{"service", "status"},
	)
	crossRefClausesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hazsearch",
			Subsystem: "regulation",
			Name:      "clauses_total",
			Help:      "Total regulation clauses attached to retrieval results.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		retrievalTotal,
		retrievalDuration,
		retrievalShown,
		escalationsTotal,
		degradedTotal,
		confirmTotal,
		crossRefClausesTotal,
	)

	return &HTTPServerMetrics{
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		retrievalTotal:       retrievalTotal,
		retrievalDuration:    retrievalDuration,
		retrievalShown:       retrievalShown,
		escalationsTotal:     escalationsTotal,
		degradedTotal:        degradedTotal,
		confirmTotal:         confirmTotal,
		crossRefClausesTotal: crossRefClausesTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/substances/"):
		return "/v1/substances/{un_number}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordRetrieval(service, strategy string, shown, clauses int, escalated bool, degradedSources []string, duration time.Duration) {
	if strategy == "" {
		strategy = "unknown"
	}
	m.retrievalTotal.WithLabelValues(service, strategy).Inc()
	m.retrievalDuration.WithLabelValues(service, strategy).Observe(duration.Seconds())
	m.retrievalShown.WithLabelValues(service).Observe(float64(shown))
	if clauses > 0 {
		m.crossRefClausesTotal.WithLabelValues(service).Add(float64(clauses))
	}
	if escalated {
		m.escalationsTotal.WithLabelValues(service).Inc()
	}
	for _, source := range degradedSources {
		m.degradedTotal.WithLabelValues(service, source).Inc()
	}
}

func (m *HTTPServerMetrics) RecordConfirm(service, status string) {
	if status == "" {
		status = "unknown"
	}
	m.confirmTotal.WithLabelValues(service, status).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
