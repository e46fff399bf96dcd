// Package serve implements the serve command, which exposes reconciliation
// over HTTP.
package serve

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/fieldeval/cmd/application"
	"github.com/agentstation/fieldeval/internal/server"
)

// Flags holds the serve command flags.
type Flags struct {
	Addr        string
	APIKey      string
	CORSOrigins []string
	RateLimit   int
}

// NewCommand creates the serve command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "serve",
		GroupID: "core",
		Short:   "Serve the reconciliation HTTP API",
		Long: `Serve starts an HTTP server exposing:

  GET  /health
  POST /api/v1/reconcile
  GET  /api/v1/stats
  GET  /api/v1/runs
  GET  /api/v1/runs/:id

The server shuts down gracefully on SIGINT or SIGTERM.`,
		Example: `  fieldeval serve
  fieldeval serve --addr :9000 --api-key secret
  fieldeval serve --cors-origins https://app.example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := Config(app.ServerConfig(), flags)
			if err != nil {
				return err
			}

			srv, err := New(ctx, app, cfg)
			if err != nil {
				return err
			}
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&flags.Addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&flags.APIKey, "api-key", "", "require this key in the X-API-Key header")
	cmd.Flags().StringSliceVar(&flags.CORSOrigins, "cors-origins", nil, "enable CORS for these origins")
	cmd.Flags().IntVar(&flags.RateLimit, "rate-limit", -1, "requests per minute per client (0 disables)")

	return cmd
}

// Config applies flags on top of base.
func Config(base server.Config, flags *Flags) (server.Config, error) {
	cfg := base
	if flags.Addr != "" {
		host, port, err := server.ParseAddr(flags.Addr)
		if err != nil {
			return cfg, err
		}
		cfg.Host, cfg.Port = host, port
	}
	if flags.APIKey != "" {
		cfg.AuthEnabled = true
		cfg.APIKey = flags.APIKey
	}
	if len(flags.CORSOrigins) > 0 {
		cfg.CORSEnabled = true
		cfg.CORSOrigins = flags.CORSOrigins
	}
	if flags.RateLimit >= 0 {
		cfg.RateLimit = flags.RateLimit
	}
	return cfg, nil
}

// New builds the server from the application's reconciler and run history.
func New(ctx context.Context, app application.Application, cfg server.Config) (*server.Server, error) {
	rec, err := app.Reconciler(ctx)
	if err != nil {
		return nil, err
	}

	opts := []server.Option{server.WithVersion(app.Version())}
	history, err := app.History(ctx)
	if err != nil {
		app.Logger().Warn().Err(err).Msg("Run history unavailable; /runs disabled")
	} else if history != nil {
		opts = append(opts, server.WithRunHistory(history))
	}

	return server.New(rec, app.Logger(), cfg, opts...)
}
