// Package web serves the JSON API over the index: search, scan and clear
// jobs, statistics, health and Prometheus metrics.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/gzhttp"

	"github.com/stormlightlabs/linedex/internal/db"
	"github.com/stormlightlabs/linedex/internal/indexer"
	"github.com/stormlightlabs/linedex/internal/metrics"
	"github.com/stormlightlabs/linedex/internal/search"
)

// Searcher runs queries; *search.Engine satisfies it.
type Searcher interface {
	Search(ctx context.Context, q search.Query) ([]search.Match, error)
}

// StatsSource reports index counters; *db.Store satisfies it.
type StatsSource interface {
	Stats(ctx context.Context) (db.Stats, error)
}

// Jobs queues index mutations; *indexer.Worker satisfies it.
type Jobs interface {
	SubmitScan(req indexer.Request) (indexer.Job, error)
	SubmitClear() (indexer.Job, error)
	Job(id string) (indexer.Job, bool)
}

// Options tunes the server.
type Options struct {
	Addr          string
	DefaultLimit  int
	CaseSensitive bool
	// Masks and Encoding fill in scan requests that omit them.
	Masks    []string
	Encoding string
	Metrics  *metrics.Metrics
}

// Server represents the HTTP API server.
type Server struct {
	searcher Searcher
	stats    StatsSource
	jobs     Jobs
	opts     Options
	router   *http.ServeMux
}

// NewServer creates a new instance of the API server.
func NewServer(searcher Searcher, stats StatsSource, jobs Jobs, opts Options) *Server {
	s := &Server{
		searcher: searcher,
		stats:    stats,
		jobs:     jobs,
		opts:     opts,
		router:   http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.handle("GET /api/search", "search", s.handleSearch)
	s.handle("POST /api/scan", "scan", s.handleScan)
	s.handle("GET /api/jobs/{id}", "job", s.handleJob)
	s.handle("POST /api/clear", "clear", s.handleClear)
	s.handle("GET /api/stats", "stats", s.handleStats)
	s.handle("GET /healthz", "healthz", s.handleHealth)
	if s.opts.Metrics != nil {
		s.router.Handle("GET /metrics", s.opts.Metrics.Handler())
	}
}

func (s *Server) handle(pattern, route string, fn http.HandlerFunc) {
	var h http.Handler = fn
	if s.opts.Metrics != nil {
		h = s.opts.Metrics.Middleware(route, h)
	}
	s.router.Handle(pattern, h)
}

// Handler returns the router wrapped in gzip response compression.
func (s *Server) Handler() http.Handler {
	return gzhttp.GzipHandler(s.router)
}

// Start runs the HTTP server until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "err", err)
		}
	}()

	log.Info("api listening", "addr", "http://"+s.opts.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
