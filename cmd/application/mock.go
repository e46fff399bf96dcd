package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/fieldeval/internal/pipeline"
	"github.com/agentstation/fieldeval/internal/server"
	"github.com/agentstation/fieldeval/internal/source"
	"github.com/agentstation/fieldeval/internal/store"
	"github.com/agentstation/fieldeval/pkg/errors"
	"github.com/agentstation/fieldeval/pkg/reconcile"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default value. Pipeline
// and History have no usable default and return a ConfigError instead.
//
// Example Usage:
//
//	mock := &application.Mock{
//	    ReconcilerFunc: func(context.Context) (reconcile.Reconciler, error) {
//	        return reconcile.New()
//	    },
//	}
//	cmd := compare.NewCommand(mock)
type Mock struct {
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
	FilesFunc        func() *source.Store
	ReconcilerFunc   func(ctx context.Context) (reconcile.Reconciler, error)
	PipelineFunc     func(ctx context.Context) (*pipeline.Runner, error)
	HistoryFunc      func(ctx context.Context) (*store.Store, error)
	ServerConfigFunc func() server.Config
}

var _ Application = (*Mock)(nil)

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns the version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns the commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns the build date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns the builder using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Files returns the file store using the mock function or an OS-backed store.
func (m *Mock) Files() *source.Store {
	if m.FilesFunc != nil {
		return m.FilesFunc()
	}
	return source.New()
}

// Reconciler returns a reconciler using the mock function or a default one.
func (m *Mock) Reconciler(ctx context.Context) (reconcile.Reconciler, error) {
	if m.ReconcilerFunc != nil {
		return m.ReconcilerFunc(ctx)
	}
	return reconcile.New()
}

// Pipeline returns a runner using the mock function or a ConfigError.
func (m *Mock) Pipeline(ctx context.Context) (*pipeline.Runner, error) {
	if m.PipelineFunc != nil {
		return m.PipelineFunc(ctx)
	}
	return nil, errors.NewConfigError("pipeline", "mock has no PipelineFunc", nil)
}

// History returns a store using the mock function or a ConfigError.
func (m *Mock) History(ctx context.Context) (*store.Store, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx)
	}
	return nil, errors.NewConfigError("history", "mock has no HistoryFunc", nil)
}

// ServerConfig returns the server config using the mock function or the defaults.
func (m *Mock) ServerConfig() server.Config {
	if m.ServerConfigFunc != nil {
		return m.ServerConfigFunc()
	}
	return server.DefaultConfig()
}
