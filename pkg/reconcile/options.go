package reconcile

import (
	"time"

	"github.com/agentstation/fieldeval/pkg/classify"
	"github.com/agentstation/fieldeval/pkg/constants"
	"github.com/agentstation/fieldeval/pkg/errors"
	"github.com/agentstation/fieldeval/pkg/record"
)

// WithJudge sets the semantic judge. Each run wraps it in a fresh memo.
func WithJudge(j classify.Judge) Option {
	return func(r *reconciler) error {
		r.judge = j
		return nil
	}
}

// WithIgnored replaces the ignored-field set.
func WithIgnored(ignored record.FieldSet) Option {
	return func(r *reconciler) error {
		r.ignored = make(record.FieldSet, len(ignored))
		for f := range ignored {
			r.ignored.Add(f)
		}
		return nil
	}
}

// WithConcurrency sets how many fields are classified in parallel.
func WithConcurrency(n int) Option {
	return func(r *reconciler) error {
		if n < 1 || n > constants.MaxConcurrency {
			return errors.NewValidationError("concurrency", n, "must be between 1 and 64")
		}
		r.concurrency = n
		return nil
	}
}

// WithTogglePrefix sets the toggle-field name prefix.
func WithTogglePrefix(prefix string) Option {
	return func(r *reconciler) error {
		r.classifyOpts = append(r.classifyOpts, classify.WithTogglePrefix(prefix))
		return nil
	}
}

// WithMatchLabels sets the judge labels counted as a match.
func WithMatchLabels(labels ...string) Option {
	return func(r *reconciler) error {
		r.classifyOpts = append(r.classifyOpts, classify.WithMatchLabels(labels...))
		return nil
	}
}

// WithMemoTTL sets how long judge verdicts are remembered within a run.
func WithMemoTTL(ttl time.Duration) Option {
	return func(r *reconciler) error {
		r.memoTTL = ttl
		return nil
	}
}
