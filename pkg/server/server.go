// Package server exposes the engine pool over HTTP.
//
// The wire contract mirrors the asynchronous boundary: one envelope per
// request carrying an operation type, a correlation id, and the event
// payload; one envelope per response, either Success with a result or
// Error with a message, always echoing the id. A response cache in
// front of the pool memoizes identical batches when configured.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/daygrid/daygrid/pkg/buildinfo"
	"github.com/daygrid/daygrid/pkg/cache"
	"github.com/daygrid/daygrid/pkg/engine"
	apperrors "github.com/daygrid/daygrid/pkg/errors"
)

// DefaultShutdownGrace is how long in-flight requests get to finish on
// shutdown.
const DefaultShutdownGrace = 10 * time.Second

// Config carries server construction options.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Engine is the pool configuration; its geometry and thresholds
	// also feed the cache keys.
	Engine engine.Config

	// Workers is the pool size. Defaults to 1.
	Workers int

	// Cache memoizes responses when non-nil. Layout and conflict
	// results only; optimize passes are cheap enough to always run.
	Cache cache.Cache

	// Namespace prefixes every cache key, so deployments sharing one
	// backend never read each other's entries. Empty means no prefix.
	Namespace string

	// Logger receives request logs. Defaults to the engine's logger.
	Logger *log.Logger
}

// Server is the HTTP frontend over an engine pool.
type Server struct {
	cfg   Config
	pool  *engine.Pool
	cache cache.Cache
	keyer cache.Keyer
	log   *log.Logger
	http  *http.Server
}

// New creates a server and its engine pool. Nothing runs until Run.
func New(cfg Config) *Server {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	keyer := cache.NewDefaultKeyer()
	if cfg.Namespace != "" {
		keyer = cache.NewScopedKeyer(keyer, cfg.Namespace+":")
	}
	s := &Server{
		cfg:   cfg,
		pool:  engine.NewPool(cfg.Workers, cfg.Engine),
		cache: cfg.Cache,
		keyer: keyer,
		log:   cfg.Logger,
	}
	s.http = &http.Server{
		Addr:    cfg.Addr,
		Handler: s.Handler(),
	}
	return s
}

// Handler builds the route tree. Exposed separately for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/compute", s.handleCompute)
		r.Post("/layout", s.handleOp(engine.OpComputeLayout))
		r.Post("/conflicts", s.handleOp(engine.OpDetectConflicts))
		r.Post("/optimize", s.handleOp(engine.OpOptimizePositions))
	})
	return r
}

// Start launches the engine pool without binding the listener, for
// embedding Handler in another mux or in tests.
func (s *Server) Start(ctx context.Context) error {
	s.pool.Start(ctx)
	return s.pool.Ready(ctx)
}

// Stop shuts down the engine pool.
func (s *Server) Stop() {
	s.pool.Stop()
}

// Run starts the pool and serves until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	s.log.Info("listening", "addr", s.cfg.Addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Stop()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownGrace)
	defer cancel()
	err := s.http.Shutdown(shutdownCtx)
	s.Stop()
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"built":   buildinfo.Date,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case apperrors.IsValidation(err):
		return http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrCodeDuplicateEvent),
		apperrors.Is(err, apperrors.ErrCodeInvalidEvent):
		return http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrCodeNotFound),
		apperrors.Is(err, apperrors.ErrCodeFeedNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
