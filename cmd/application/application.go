// Package application provides the application interface for fieldeval commands.
//
// The Application interface is the contract between the CLI composition root
// (cmd/fieldeval/app) and the command packages. Commands accept it instead of
// the concrete App so they can be tested with Mock.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            rec, err := app.Reconciler(cmd.Context())
//	            if err != nil {
//	                return err
//	            }
//	            // ... use rec
//	            return nil
//	        },
//	    }
//	}
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/fieldeval/internal/pipeline"
	"github.com/agentstation/fieldeval/internal/server"
	"github.com/agentstation/fieldeval/internal/source"
	"github.com/agentstation/fieldeval/internal/store"
	"github.com/agentstation/fieldeval/pkg/reconcile"
)

// Application provides what commands need from the running CLI.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, wide).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string

	// Files returns the file store used for inputs and reports.
	Files() *source.Store

	// Reconciler returns the configured reconciler. It is created lazily and
	// shared; the semantic judge is attached when enabled in configuration.
	Reconciler(ctx context.Context) (reconcile.Reconciler, error)

	// Pipeline returns a runner for the per-account pipeline.
	Pipeline(ctx context.Context) (*pipeline.Runner, error)

	// History returns the run history store, or nil when history is disabled.
	History(ctx context.Context) (*store.Store, error)

	// ServerConfig returns the HTTP API configuration.
	ServerConfig() server.Config
}
