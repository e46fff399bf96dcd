// Package pipeline runs the per-account evaluation workflow: upload each
// account structure file, request a prediction, reconcile it against the
// tenant's ground truth and write the coverage reports.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/fieldeval/internal/predict"
	"github.com/agentstation/fieldeval/internal/source"
	"github.com/agentstation/fieldeval/internal/store"
	"github.com/agentstation/fieldeval/pkg/constants"
	"github.com/agentstation/fieldeval/pkg/errors"
	"github.com/agentstation/fieldeval/pkg/logging"
	"github.com/agentstation/fieldeval/pkg/reconcile"
	"github.com/agentstation/fieldeval/pkg/report"
)

// Predictor requests a prediction for one account.
type Predictor interface {
	Predict(ctx context.Context, req predict.Request) (*predict.Response, error)
}

// Uploader stores an account structure file where the predictor can read it.
type Uploader interface {
	Upload(ctx context.Context, u predict.Upload) error
}

// RunStore records finished runs.
type RunStore interface {
	Save(ctx context.Context, r *store.Run) error
}

// Paths locates the inputs and outputs of a run.
type Paths struct {
	InstancesRoot string // holds <fileTypeId>/instances.json and the account files
	AccountsCSV   string
	TenantInfo    string
	Output        string
	TimingLog     string
}

// Plan is one invocation of the pipeline.
type Plan struct {
	FileTypeID     string
	IntegrationIDs []string
	Local          bool // also call the local endpoint for its logs
}

// Account is the outcome for one account structure file.
type Account struct {
	File          string            `json:"file"`
	IntegrationID string            `json:"integration_id"`
	TenantID      string            `json:"tenant_id,omitempty"`
	Report        string            `json:"report,omitempty"`
	Result        *reconcile.Result `json:"-"`
	Err           error             `json:"-"`
}

// Skipped reports whether the account failed before producing a report.
func (a *Account) Skipped() bool { return a.Err != nil }

// Summary describes a finished pipeline run.
type Summary struct {
	BatchID      string        `json:"batch_id"`
	FileTypeID   string        `json:"file_type_id"`
	Accounts     []*Account    `json:"accounts"`
	Consolidated string        `json:"consolidated,omitempty"`
	Duration     time.Duration `json:"duration"`
}

// Processed counts accounts that produced a report.
func (s *Summary) Processed() int {
	n := 0
	for _, a := range s.Accounts {
		if !a.Skipped() {
			n++
		}
	}
	return n
}

// Runner executes plans.
type Runner struct {
	files      *source.Store
	reconciler reconcile.Reconciler
	predictor  Predictor
	local      Predictor
	uploader   Uploader
	runs       RunStore
	paths      Paths
	bucket     string
	prefix     string
}

// Option configures a Runner.
type Option func(*Runner)

// WithLocalPredictor sets the predictor used when a plan asks for a local run.
func WithLocalPredictor(p Predictor) Option {
	return func(r *Runner) { r.local = p }
}

// WithUploader sets the upload client. Without one, uploads are skipped.
func WithUploader(u Uploader, bucket, prefix string) Option {
	return func(r *Runner) {
		r.uploader = u
		r.bucket = bucket
		r.prefix = prefix
	}
}

// WithRunStore records each account's metrics.
func WithRunStore(s RunStore) Option {
	return func(r *Runner) { r.runs = s }
}

// NewRunner creates a Runner.
func NewRunner(files *source.Store, rec reconcile.Reconciler, p Predictor, paths Paths, opts ...Option) *Runner {
	r := &Runner{
		files:      files,
		reconciler: rec,
		predictor:  p,
		paths:      paths,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes plan. Per-account failures are logged and recorded on the
// account; only invalid plans and unreadable inputs fail the whole run.
func (r *Runner) Run(ctx context.Context, plan Plan) (*Summary, error) {
	start := time.Now()
	batch := uuid.NewString()
	ctx = logging.WithRun(ctx, batch)
	logger := logging.FromContext(ctx)

	typeDir := filepath.Join(r.paths.InstancesRoot, plan.FileTypeID)
	files, err := r.files.DiscoverAccounts(typeDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.NewValidationError("file_type", plan.FileTypeID, "no account structure files found in "+typeDir)
	}
	if len(files) != len(plan.IntegrationIDs) {
		return nil, errors.NewValidationError("integration_ids", plan.IntegrationIDs,
			fmt.Sprintf("found %d account files but %d integration IDs", len(files), len(plan.IntegrationIDs)))
	}

	instances, err := r.files.LoadInstances(filepath.Join(typeDir, constants.InstancesFile))
	if err != nil {
		return nil, err
	}
	catalogue := instances.Catalogue()
	if len(catalogue) == 0 {
		return nil, errors.NewValidationError("instances", typeDir, "no fields found in instances")
	}

	logger.Info().
		Str("file_type", plan.FileTypeID).
		Int("accounts", len(files)).
		Int("catalogue", len(catalogue)).
		Msg("Starting pipeline")

	summary := &Summary{BatchID: batch, FileTypeID: plan.FileTypeID}
	var sections []report.Section
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, errors.NewResourceError("run", "pipeline", batch, err)
		}
		acct := &Account{File: file, IntegrationID: plan.IntegrationIDs[i]}
		summary.Accounts = append(summary.Accounts, acct)

		r.account(ctx, plan, batch, instances, acct)
		if acct.Err != nil {
			logger.Warn().Err(acct.Err).Str("file", file).Msg("Skipping account")
			continue
		}
		sections = append(sections, report.Section{
			TenantID:    acct.TenantID,
			AccountFile: acct.File,
			Rows:        acct.Result.Rows,
		})
	}

	if len(sections) > 0 {
		outDir := filepath.Join(r.paths.Output, plan.FileTypeID)
		path := filepath.Join(outDir, constants.ConsolidatedReport)
		if err := r.writeConsolidated(path, sections); err != nil {
			return summary, err
		}
		summary.Consolidated = path
		if err := r.writeMarkdown(filepath.Join(outDir, constants.SummaryFile), plan.FileTypeID, summary); err != nil {
			logger.Warn().Err(err).Msg("Failed to write markdown summary")
		}
	} else {
		logger.Warn().Msg("No reports were generated")
	}

	summary.Duration = time.Since(start)
	logger.Info().
		Int("processed", summary.Processed()).
		Int("skipped", len(summary.Accounts)-summary.Processed()).
		Dur("duration", summary.Duration).
		Msg("Pipeline finished")
	return summary, nil
}
