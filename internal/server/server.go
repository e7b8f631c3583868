// Package server exposes the diagram pipeline and the background solver over
// HTTP.
//
// Diagrams are computed synchronously per request. Solve requests go to one
// shared [worker.Worker]: a second request while one is running is rejected
// with 409, and the latest best order can be polled at any time. Finished
// solves are written to the run store.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/gutterview/pkg/pipeline"
	"github.com/matzehuels/gutterview/pkg/solver/worker"
	"github.com/matzehuels/gutterview/pkg/store"
)

// Config holds HTTP server configuration.
type Config struct {
	Addr            string
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration

	Runner   *pipeline.Runner
	Options  pipeline.Options // Defaults applied to every request
	Store    store.Store
	Gatherer prometheus.Gatherer // Defaults to the global registry
	Logger   *log.Logger
}

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	server *http.Server
	cfg    Config
	logger *log.Logger
	worker *worker.Worker

	mu          sync.Mutex
	pending     map[string]store.Run // Accepted solve requests by request ID
	stopCollect context.CancelFunc
	wg          sync.WaitGroup
}

// New creates a server. Call [Server.Start] to serve, or use
// [Server.Handler] with [Server.StartWorker] in tests.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Store == nil {
		cfg.Store = store.NewMemory()
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 8 << 20
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		cfg:     cfg,
		logger:  cfg.Logger,
		worker:  worker.New(cfg.Logger.WithPrefix("worker")),
		pending: make(map[string]store.Run),
	}
	s.router = s.routes()
	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(httpHooks)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/diagram", s.handleDiagram)
		r.Post("/solve", s.handleSubmitSolve)
		r.Get("/solve", s.handleSolveStatus)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// StartWorker starts the solver worker and the goroutine that records its
// results. Both stop when ctx is cancelled or [Server.Shutdown] is called.
func (s *Server) StartWorker(ctx context.Context) {
	s.worker.Start(ctx)

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.stopCollect = cancel
	s.mu.Unlock()
	s.wg.Add(1)
	go s.collect(ctx)
}

// Start starts the worker and serves until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.StartWorker(ctx)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer stop()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops accepting requests, waits for in-flight requests and
// stops the worker.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	err := s.server.Shutdown(ctx)
	s.worker.Stop()
	s.mu.Lock()
	if s.stopCollect != nil {
		s.stopCollect()
	}
	s.mu.Unlock()
	s.wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	s.logger.Info("HTTP server shut down complete")
	return nil
}

// collect saves every worker result as a run.
func (s *Server) collect(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case res := <-s.worker.Results():
			s.record(context.WithoutCancel(ctx), res)
		}
	}
}

func (s *Server) record(ctx context.Context, res worker.Result) {
	s.mu.Lock()
	run, ok := s.pending[res.RequestID]
	delete(s.pending, res.RequestID)
	s.mu.Unlock()
	if !ok {
		run = store.Run{ID: res.RequestID, GraphHash: res.Snapshot.GraphHash, CreatedAt: time.Now().UTC()}
	}

	snap := res.Snapshot
	run.Cost = snap.Cost
	run.Order = snap.Order
	run.Batches = snap.Batches
	run.Elapsed = snap.Elapsed
	if res.Chains > 0 {
		run.Chains = res.Chains
	}
	if res.Err != nil {
		run.Error = res.Err.Error()
	}

	if err := s.cfg.Store.Save(ctx, run); err != nil {
		s.logger.Error("failed to save run", "run", run.ID, "err", err)
		return
	}
	s.logger.Info("solve finished", "run", run.ID, "cost", run.Cost, "batches", run.Batches,
		"elapsed", run.Elapsed, "resumed", res.Resumed)
}

func (s *Server) addPending(run store.Run) {
	s.mu.Lock()
	s.pending[run.ID] = run
	s.mu.Unlock()
}

func (s *Server) dropPending(id string) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}
