// Package app provides the application context and dependency management
// for the fieldeval CLI. It centralizes configuration, dependency wiring,
// and lifecycle management.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/fieldeval/cmd/application"
	"github.com/agentstation/fieldeval/internal/pipeline"
	"github.com/agentstation/fieldeval/internal/predict"
	"github.com/agentstation/fieldeval/internal/server"
	"github.com/agentstation/fieldeval/internal/source"
	"github.com/agentstation/fieldeval/internal/store"
	"github.com/agentstation/fieldeval/internal/transport"
	"github.com/agentstation/fieldeval/pkg/constants"
	"github.com/agentstation/fieldeval/pkg/errors"
	"github.com/agentstation/fieldeval/pkg/judge"
	"github.com/agentstation/fieldeval/pkg/reconcile"
	"github.com/agentstation/fieldeval/pkg/record"
)

// App represents the fieldeval application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
	files  *source.Store

	// Lazily created, shared by all commands.
	mu         sync.Mutex
	reconciler reconcile.Reconciler
	history    *store.Store
}

var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		files:   source.New(),
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.config == nil {
		config, err := LoadConfig("")
		if err != nil {
			return nil, errors.WrapResource("load", "config", "", err)
		}
		app.config = config
	}

	if app.logger == nil {
		logger := NewLogger(app.config)
		app.logger = &logger
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string { return a.config.Format }

// Files returns the file store.
func (a *App) Files() *source.Store { return a.files }

// Reconciler returns the shared reconciler, creating it on first use.
func (a *App) Reconciler(ctx context.Context) (reconcile.Reconciler, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.reconciler != nil {
		return a.reconciler, nil
	}

	opts, err := a.reconcileOptions(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := reconcile.New(opts...)
	if err != nil {
		return nil, errors.WrapResource("create", "reconciler", "", err)
	}
	a.reconciler = rec
	return rec, nil
}

func (a *App) reconcileOptions(ctx context.Context) ([]reconcile.Option, error) {
	rc := a.config.Reconcile
	opts := []reconcile.Option{
		reconcile.WithConcurrency(rc.Concurrency),
		reconcile.WithTogglePrefix(rc.TogglePrefix),
	}
	if len(rc.IgnoredFields) > 0 {
		opts = append(opts, reconcile.WithIgnored(record.NewFieldSet(rc.IgnoredFields...)))
	}
	if len(rc.MatchLabels) > 0 {
		opts = append(opts, reconcile.WithMatchLabels(rc.MatchLabels...))
	}

	if !a.config.Judge.Enabled {
		a.logger.Debug().Msg("Semantic judge disabled")
		return opts, nil
	}

	j, err := judge.NewGemini(ctx, a.judgeConfig())
	if err != nil {
		return nil, err
	}
	a.logger.Debug().
		Str("backend", a.config.Judge.Backend).
		Str("model", a.config.Judge.Model).
		Msg("Semantic judge enabled")
	return append(opts, reconcile.WithJudge(j)), nil
}

func (a *App) judgeConfig() judge.Config {
	jc := a.config.Judge
	cfg := judge.DefaultConfig()
	if backend, ok := judge.ParseBackend(jc.Backend); ok {
		cfg.Backend = backend
	}
	if jc.Model != "" {
		cfg.Model = jc.Model
	}
	if jc.Location != "" {
		cfg.Location = jc.Location
	}
	if jc.Burst > 0 {
		cfg.Burst = jc.Burst
	}
	if jc.Timeout > 0 {
		cfg.Timeout = jc.Timeout
	}
	cfg.APIKey = jc.APIKey
	cfg.Project = jc.Project
	cfg.Rate = jc.Rate
	return cfg
}

// History returns the run history store, opening it on first use. It
// returns nil when store.path is empty.
func (a *App) History(ctx context.Context) (*store.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.history != nil || a.config.StorePath == "" {
		return a.history, nil
	}
	s, err := store.Open(ctx, a.config.StorePath)
	if err != nil {
		return nil, err
	}
	a.history = s
	return s, nil
}

// Pipeline builds a runner from the prediction, path and history settings.
func (a *App) Pipeline(ctx context.Context) (*pipeline.Runner, error) {
	pc := a.config.Prediction
	if pc.Endpoint == "" {
		return nil, errors.NewConfigError("prediction", "prediction.endpoint is not set", nil)
	}

	rec, err := a.Reconciler(ctx)
	if err != nil {
		return nil, err
	}

	remote := predict.New(a.httpClient("prediction"),
		predict.WithEndpoint(pc.Endpoint),
		predict.WithUploadEndpoint(pc.UploadEndpoint),
	)

	var opts []pipeline.Option
	if pc.LocalEndpoint != "" {
		opts = append(opts, pipeline.WithLocalPredictor(
			predict.New(a.httpClient("local-prediction"), predict.WithEndpoint(pc.LocalEndpoint)),
		))
	}
	if pc.UploadEndpoint != "" {
		opts = append(opts, pipeline.WithUploader(remote, pc.Bucket, pc.UploadPrefix))
	}

	history, err := a.History(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Run history unavailable")
	} else if history != nil {
		opts = append(opts, pipeline.WithRunStore(history))
	}

	return pipeline.NewRunner(a.files, rec, remote, a.Paths(), opts...), nil
}

func (a *App) httpClient(service string) *transport.Client {
	pc := a.config.Prediction
	return transport.New(service,
		transport.WithTimeout(pc.Timeout),
		transport.WithToken(pc.Token),
		transport.WithAuth(transport.ForToken(pc.Token)),
		transport.WithRate(constants.DefaultPredictRPS, 1),
	)
}

// Paths returns the pipeline locations from configuration.
func (a *App) Paths() pipeline.Paths {
	p := a.config.Paths
	return pipeline.Paths{
		InstancesRoot: p.Instances,
		AccountsCSV:   p.AccountsCSV,
		TenantInfo:    p.TenantInfo,
		Output:        p.Output,
		TimingLog:     p.TimingLog,
	}
}

// ServerConfig returns the HTTP API configuration with server.addr applied.
func (a *App) ServerConfig() server.Config {
	cfg := server.DefaultConfig()
	if host, port, err := server.ParseAddr(a.config.ServerAddr); err == nil {
		cfg.Host, cfg.Port = host, port
	} else {
		a.logger.Warn().Err(err).Str("addr", a.config.ServerAddr).Msg("Ignoring invalid server.addr")
	}
	return cfg
}


// Shutdown releases resources held by the application.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.history != nil {
		if err := a.history.Close(); err != nil {
			return err
		}
		a.history = nil
	}
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithFiles sets the file store (useful for testing).
func WithFiles(files *source.Store) Option {
	return func(a *App) error {
		a.files = files
		return nil
	}
}

// WithReconciler sets a prebuilt reconciler (useful for testing).
func WithReconciler(rec reconcile.Reconciler) Option {
	return func(a *App) error {
		a.reconciler = rec
		return nil
	}
}
