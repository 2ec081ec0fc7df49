// Package server exposes the scoring engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/build-flow-labs/apiscore/ruleset"
	"github.com/build-flow-labs/apiscore/scoring"
)

// DefaultMaxBodyBytes bounds score request bodies when Config leaves it unset.
const DefaultMaxBodyBytes = 10 << 20

// Config holds HTTP server configuration.
type Config struct {
	Addr         string
	MaxBodyBytes int64
}

// Scorer computes a score report from a raw description.
type Scorer interface {
	Compute(ctx context.Context, text string) (*scoring.Report, error)
}

// Server is the scoring HTTP server.
type Server struct {
	cfg    Config
	scorer Scorer
	lister ruleset.Lister
	logger *slog.Logger
	mux    *http.ServeMux

	reportsScored atomic.Int64
	failures      atomic.Int64
	lastScoredAt  atomic.Value // time.Time
}

// NewServer creates a configured server. lister may be nil, in which case
// GET /rulesets returns an empty list.
func NewServer(cfg Config, scorer Scorer, lister ruleset.Lister, logger *slog.Logger) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	s := &Server{
		cfg:    cfg,
		scorer: scorer,
		lister: lister,
		logger: logger,
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /engine/score", s.handleScore)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /status", s.handleStatus)
	s.mux.HandleFunc("GET /rulesets", s.handleRuleSets)
	s.mux.HandleFunc("/", s.handleNotFound)

	return s
}

// Handler returns the server's routes wrapped in request-id middleware.
func (s *Server) Handler() http.Handler {
	return withRequestID(s.mux)
}

// Start begins listening. Blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("score server starting",
			"addr", s.cfg.Addr,
			"max_body_bytes", s.cfg.MaxBodyBytes,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down score server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
