// Package metrics exposes Prometheus collectors for the analysis pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pageFetchesTotal           *prometheus.CounterVec
	searchAttemptsTotal        *prometheus.CounterVec
	extractionsTotal           *prometheus.CounterVec
	corpusPages                prometheus.Histogram
	stageDurationSeconds       *prometheus.HistogramVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		pageFetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analyzer_page_fetches_total",
				Help: "Page fetch attempts, labeled by candidate label and outcome.",
			},
			[]string{"label", "outcome"},
		)

		searchAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analyzer_search_attempts_total",
				Help: "Search strategy attempts, labeled by strategy and outcome.",
			},
			[]string{"strategy", "outcome"},
		)

		extractionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analyzer_extractions_total",
				Help: "Structured extraction attempts, labeled by provider and outcome.",
			},
			[]string{"provider", "outcome"},
		)

		corpusPages = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "analyzer_corpus_pages",
				Help:    "Number of pages accepted into a crawled corpus.",
				Buckets: []float64{0, 1, 2, 4, 8, 16, 27},
			},
		)

		stageDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "analyzer_stage_duration_seconds",
				Help:    "Duration of pipeline stages.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
			},
			[]string{"stage"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// ObservePageFetch counts one page fetch attempt.
func ObservePageFetch(label, outcome string) {
	Init()
	pageFetchesTotal.WithLabelValues(label, outcome).Inc()
}

// ObserveSearch counts one search strategy attempt.
func ObserveSearch(strategy, outcome string) {
	Init()
	searchAttemptsTotal.WithLabelValues(strategy, outcome).Inc()
}

// ObserveExtraction counts one extraction attempt.
func ObserveExtraction(provider, outcome string) {
	Init()
	extractionsTotal.WithLabelValues(provider, outcome).Inc()
}

// ObserveCorpus records how many pages a crawl kept.
func ObserveCorpus(pages int) {
	Init()
	corpusPages.Observe(float64(pages))
}

// ObserveStage records the duration of a pipeline stage.
func ObserveStage(stage string, duration time.Duration) {
	Init()
	stageDurationSeconds.WithLabelValues(stage).Observe(duration.Seconds())
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Middleware records request counts and latencies per chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		ObserveHTTPRequest(r.Method, route, rec.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working behind the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
