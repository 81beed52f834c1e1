// Package server implements the spidermap HTTP API.
//
// # Endpoints
//
//	GET  /healthz        liveness probe
//	GET  /api/layout     spider placements for n members
//	POST /api/spider     open one cluster of a FeatureCollection
//
// Every request gets an X-Request-ID (taken from the request when present)
// and a request-scoped logger. Errors are returned as JSON with the code from
// pkg/errors mapped to an HTTP status.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/spidermap/pkg/config"
	"github.com/matzehuels/spidermap/pkg/pipeline"
)

// Server limits.
const (
	// MaxBodyBytes bounds the size of a POST /api/spider body.
	MaxBodyBytes = 8 << 20

	// MaxLayoutMembers bounds n for GET /api/layout.
	MaxLayoutMembers = 10000

	shutdownTimeout = 10 * time.Second
)

// Server serves the HTTP API.
type Server struct {
	cfg    config.Config
	runner *pipeline.Runner
	logger *log.Logger
}

// New creates a server. cfg supplies the layout and connector defaults that
// requests override.
func New(cfg config.Config, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	return &Server{cfg: cfg, runner: runner, logger: logger}
}

// Router returns the HTTP handler with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/layout", s.handleLayout)
		r.Post("/spider", s.handleSpider)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
