// Package reconcile drives field-by-field reconciliation of one reference
// record against one or more candidate records.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/agentstation/fieldeval/pkg/classify"
	"github.com/agentstation/fieldeval/pkg/constants"
	"github.com/agentstation/fieldeval/pkg/errors"
	"github.com/agentstation/fieldeval/pkg/judge"
	"github.com/agentstation/fieldeval/pkg/logging"
	"github.com/agentstation/fieldeval/pkg/record"
	"github.com/agentstation/fieldeval/pkg/universe"
)

// Reconciler is the main interface for reconciling a reference record
// against candidate records.
type Reconciler interface {
	// Reconcile classifies every field of fields against each candidate and
	// returns one row per field, in order.
	Reconcile(ctx context.Context, reference *record.Record, candidates []*record.Record, fields []record.FieldName) ([]Row, error)

	// Run resolves the field universe for in, reconciles it and summarises
	// the outcome per candidate version.
	Run(ctx context.Context, in Input) (*Result, error)
}

// Input is everything one reconciliation run needs.
type Input struct {
	Reference  *record.Record
	Candidates []*record.Record
	Catalogue  record.FieldSet
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	judge        classify.Judge
	ignored      record.FieldSet
	concurrency  int
	memoTTL      time.Duration
	classifyOpts []classify.Option
}

// Option configures a Reconciler.
type Option func(*reconciler) error

// New creates a Reconciler. Without options it uses the default ignored
// fields, no judge and sequential classification.
func New(opts ...Option) (Reconciler, error) {
	r := &reconciler{
		ignored:     universe.DefaultIgnored(),
		concurrency: constants.DefaultConcurrency,
		memoTTL:     constants.JudgeMemoTTL,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	// Surface classifier option errors at construction.
	if _, err := r.classifier(nil); err != nil {
		return nil, err
	}
	return r, nil
}

// classifier builds the per-run classifier around j.
func (r *reconciler) classifier(j classify.Judge) (*classify.Classifier, error) {
	opts := append([]classify.Option{}, r.classifyOpts...)
	if j != nil {
		opts = append(opts, classify.WithJudge(j))
	}
	return classify.New(opts...)
}

// Reconcile implements Reconciler.
func (r *reconciler) Reconcile(ctx context.Context, reference *record.Record, candidates []*record.Record, fields []record.FieldName) ([]Row, error) {
	rows, _, err := r.reconcile(ctx, reference, candidates, fields)
	return rows, err
}

func (r *reconciler) reconcile(ctx context.Context, reference *record.Record, candidates []*record.Record, fields []record.FieldName) ([]Row, *judge.Memo, error) {
	if err := validate(reference, candidates); err != nil {
		return nil, nil, err
	}

	var memo *judge.Memo
	var j classify.Judge
	if r.judge != nil {
		memo = judge.NewMemo(r.judge, r.memoTTL)
		j = memo
	}
	c, err := r.classifier(j)
	if err != nil {
		return nil, nil, err
	}

	rows := make([]Row, len(fields))
	p := pool.New().WithMaxGoroutines(r.concurrency)
	for i, field := range fields {
		p.Go(func() {
			rows[i] = r.row(ctx, c, field, reference, candidates)
		})
	}
	p.Wait()

	return rows, memo, nil
}

// row classifies one field against every candidate.
func (r *reconciler) row(ctx context.Context, c *classify.Classifier, field record.FieldName, reference *record.Record, candidates []*record.Record) Row {
	ref := reference.Lookup(field)
	row := Row{
		Field:            field,
		Reference:        ref.Value.Render(),
		ReferencePresent: ref.Present,
		Cells:            make([]Cell, len(candidates)),
	}
	for i, cand := range candidates {
		entry := cand.Lookup(field)
		out := r.classify(ctx, c, field, ref, entry)
		row.Cells[i] = Cell{
			Value:   entry.Value.Render(),
			Present: entry.Present && !out.CandidateAbsent(),
			Outcome: out,
		}
	}
	return row
}

// classify runs one classification, degrading a panic to the fail-closed outcome.
func (r *reconciler) classify(ctx context.Context, c *classify.Classifier, field record.FieldName, ref, cand record.Entry) (out classify.Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			logging.FromContext(ctx).Warn().
				Str("field", field.String()).
				Str("panic", fmt.Sprint(rec)).
				Msg("Recovered while classifying field")
			out = classify.FailClosed
		}
	}()

	out = c.Classify(ctx, field, ref, cand)
	logging.FromContext(ctx).Debug().
		Str("field", field.String()).
		Str("status", out.Status.String()).
		Str("subtype", out.Subtype).
		Msg("Classified field")
	return out
}

// Run implements Reconciler.
func (r *reconciler) Run(ctx context.Context, in Input) (*Result, error) {
	if err := validate(in.Reference, in.Candidates); err != nil {
		return nil, err
	}

	b := NewResultBuilder().WithCandidates(len(in.Candidates))

	fields := universe.Resolve(in.Catalogue, in.Reference, in.Candidates, r.ignored)
	logging.FromContext(ctx).Info().
		Int("fields", len(fields)).
		Int("candidates", len(in.Candidates)).
		Bool("judge", r.judge != nil).
		Msg("Reconciling record")

	rows, memo, err := r.reconcile(ctx, in.Reference, in.Candidates, fields)
	if err != nil {
		return nil, err
	}
	if memo != nil {
		b.WithJudgeStats(memo.Calls(), memo.Hits())
	}
	return b.WithRows(rows).Build(), nil
}

func validate(reference *record.Record, candidates []*record.Record) error {
	if reference.IsEmpty() {
		return errors.NewReferenceMissingError("", "reference record is empty")
	}
	if len(candidates) == 0 {
		return errors.NewValidationError("candidates", 0, "at least one candidate record is required")
	}
	return nil
}
