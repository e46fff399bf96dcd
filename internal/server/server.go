// Package server exposes reconciliation over HTTP.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/fieldeval/internal/server/cache"
	"github.com/agentstation/fieldeval/internal/server/handlers"
	"github.com/agentstation/fieldeval/pkg/constants"
	"github.com/agentstation/fieldeval/pkg/errors"
	"github.com/agentstation/fieldeval/pkg/reconcile"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	reconciler reconcile.Reconciler
	runs       handlers.RunLister
	cache      *cache.Cache
	logger     *zerolog.Logger
	config     Config
	version    string
	startTime  time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithRunHistory serves stored runs under /runs.
func WithRunHistory(runs handlers.RunLister) Option {
	return func(s *Server) { s.runs = runs }
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// New creates a new server instance with the given configuration.
func New(rec reconcile.Reconciler, logger *zerolog.Logger, cfg Config, opts ...Option) (*Server, error) {
	if rec == nil {
		return nil, errors.NewConfigError("server", "reconciler is required", nil)
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}
	if cfg.AuthEnabled && cfg.APIKey == "" {
		return nil, errors.NewConfigError("server", "authentication enabled without an API key", nil)
	}

	s := &Server{
		reconciler: rec,
		cache:      cache.New(cfg.CacheTTL, cfg.CacheTTL*2),
		logger:     logger,
		config:     cfg,
		version:    "dev",
		startTime:  time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns the configured http.Handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Cache returns the server's response cache.
func (s *Server) Cache() *cache.Cache {
	return s.cache
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info().Msg("Server stopped")
	return nil
}
