// Package handlers implements the API's HTTP handlers.
package handlers

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/fieldeval/internal/server/cache"
	"github.com/agentstation/fieldeval/internal/store"
	"github.com/agentstation/fieldeval/pkg/reconcile"
)

// RunLister reads stored run history.
type RunLister interface {
	List(ctx context.Context, f store.Filter) ([]*store.Run, error)
	Get(ctx context.Context, id string) (*store.Run, error)
}

// Handlers provides HTTP handlers for the API.
type Handlers struct {
	reconciler   reconcile.Reconciler
	cache        *cache.Cache
	runs         RunLister
	logger       *zerolog.Logger
	version      string
	maxBodyBytes int64
	startTime    time.Time
}

// Option configures Handlers.
type Option func(*Handlers)

// WithRuns enables the run history endpoints.
func WithRuns(runs RunLister) Option {
	return func(h *Handlers) { h.runs = runs }
}

// WithVersion sets the reported service version.
func WithVersion(v string) Option {
	return func(h *Handlers) { h.version = v }
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handlers) { h.maxBodyBytes = n }
}

// WithStartTime sets the time uptime is measured from.
func WithStartTime(t time.Time) Option {
	return func(h *Handlers) { h.startTime = t }
}

// New creates a new Handlers instance.
func New(rec reconcile.Reconciler, c *cache.Cache, logger *zerolog.Logger, opts ...Option) *Handlers {
	h := &Handlers{
		reconciler:   rec,
		cache:        c,
		logger:       logger,
		version:      "dev",
		maxBodyBytes: 10 << 20,
		startTime:    time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
