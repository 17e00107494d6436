// Package metrics defines the Prometheus collectors for scans, searches and
// the HTTP API, and exposes a handler for scraping them.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stormlightlabs/linedex/internal/indexer"
)

const namespace = "linedex"

// Metrics holds the collectors. Each instance owns its registry so several
// can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	ScansTotal          *prometheus.CounterVec
	ScanDuration        prometheus.Histogram
	FilesTotal          *prometheus.CounterVec
	PostingsTotal       prometheus.Counter
	ScanInProgress      prometheus.Gauge
	SearchQueriesTotal  *prometheus.CounterVec
	SearchLatency       *prometheus.HistogramVec
	SearchResultsCount  *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all collectors along with the Go and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ScansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scans_total",
				Help:      "Completed scans by outcome (ok, error).",
			},
			[]string{"status"},
		),
		ScanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scan_duration_seconds",
				Help:      "Wall time of a directory scan.",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
			},
		),
		FilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_total",
				Help:      "Files visited by scans, by result (indexed, skipped, failed).",
			},
			[]string{"result"},
		),
		PostingsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "postings_written_total",
				Help:      "Posting rows written by scans.",
			},
		),
		ScanInProgress: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "scan_in_progress",
				Help:      "1 while a scan is running.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_queries_total",
				Help:      "Search queries by mode and result type (hit, zero_result, error).",
			},
			[]string{"mode", "result_type"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_latency_seconds",
				Help:      "Search latency in seconds.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5},
			},
			[]string{"mode"},
		),
		SearchResultsCount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_results_count",
				Help:      "Number of matches returned per search.",
				Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 500},
			},
			[]string{"mode"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route, and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ScansTotal,
		m.ScanDuration,
		m.FilesTotal,
		m.PostingsTotal,
		m.ScanInProgress,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// Handler returns the scrape handler for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ScanObserver returns an indexer.Observer that feeds the scan collectors.
func (m *Metrics) ScanObserver() indexer.Observer {
	return scanObserver{m: m}
}

type scanObserver struct{ m *Metrics }

func (o scanObserver) ScanStarted(int) { o.m.ScanInProgress.Set(1) }

func (o scanObserver) Progress(int, int) {}

func (o scanObserver) ScanFinished(sum indexer.Summary) {
	o.m.ScanInProgress.Set(0)
	o.m.ScanDuration.Observe(sum.Duration.Seconds())
	o.m.FilesTotal.WithLabelValues("indexed").Add(float64(sum.Indexed))
	o.m.FilesTotal.WithLabelValues("skipped").Add(float64(sum.Skipped))
	o.m.FilesTotal.WithLabelValues("failed").Add(float64(sum.Failed))
	o.m.PostingsTotal.Add(float64(sum.Postings))
	status := "ok"
	if sum.Errors > 0 {
		status = "error"
	}
	o.m.ScansTotal.WithLabelValues(status).Inc()
}

// ObserveSearch records one completed search.
func (m *Metrics) ObserveSearch(mode string, results int, elapsed time.Duration, err error) {
	result := "hit"
	switch {
	case err != nil:
		result = "error"
	case results == 0:
		result = "zero_result"
	}
	m.SearchQueriesTotal.WithLabelValues(mode, result).Inc()
	m.SearchLatency.WithLabelValues(mode).Observe(elapsed.Seconds())
	m.SearchResultsCount.WithLabelValues(mode).Observe(float64(results))
}

// Middleware records request count and latency under the given route name.
func (m *Metrics) Middleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.wroteHeader {
		sw.status = code
		sw.wroteHeader = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	sw.wroteHeader = true
	return sw.ResponseWriter.Write(b)
}
