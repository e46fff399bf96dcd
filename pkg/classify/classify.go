// Package classify assigns a match outcome to one field of a reference
// record against one candidate, using a deterministic cascade with an
// optional semantic judge as the last resort.
package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentstation/fieldeval/pkg/constants"
	"github.com/agentstation/fieldeval/pkg/errors"
	"github.com/agentstation/fieldeval/pkg/logging"
	"github.com/agentstation/fieldeval/pkg/record"
	"github.com/agentstation/fieldeval/pkg/value"
)

// Classifier runs the match cascade. It holds no mutable state and is safe
// for concurrent use.
type Classifier struct {
	togglePrefix string
	matchLabels  map[string]struct{}
	judge        Judge
}

// Option configures a Classifier.
type Option func(*Classifier) error

// WithJudge sets the semantic judge. A nil judge leaves the fallback absent.
func WithJudge(j Judge) Option {
	return func(c *Classifier) error {
		c.judge = j
		return nil
	}
}

// WithTogglePrefix sets the field-name prefix that marks toggle fields.
func WithTogglePrefix(prefix string) Option {
	return func(c *Classifier) error {
		if strings.TrimSpace(prefix) == "" {
			return errors.NewValidationError("toggle_prefix", prefix, "must not be empty")
		}
		c.togglePrefix = strings.ToLower(prefix)
		return nil
	}
}

// WithMatchLabels sets the judge labels that count as a match.
func WithMatchLabels(labels ...string) Option {
	return func(c *Classifier) error {
		if len(labels) == 0 {
			return errors.NewValidationError("match_labels", labels, "at least one label is required")
		}
		c.matchLabels = make(map[string]struct{}, len(labels))
		for _, l := range labels {
			c.matchLabels[normalizeLabel(l)] = struct{}{}
		}
		return nil
	}
}

// New creates a Classifier.
func New(opts ...Option) (*Classifier, error) {
	c := &Classifier{togglePrefix: constants.TogglePrefix}
	if err := WithMatchLabels(DefaultMatchLabels...)(c); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// HasJudge reports whether a semantic judge is configured.
func (c *Classifier) HasJudge() bool { return c.judge != nil }

// Classify returns the outcome for field given the reference and candidate
// entries. A candidate that renders to the literal "none" counts as absent.
func (c *Classifier) Classify(ctx context.Context, field record.FieldName, ref, cand record.Entry) Outcome {
	if cand.Present && strings.TrimSpace(cand.Value.Render()) == constants.NoneSentinel {
		cand = record.Entry{}
	}

	switch {
	case !ref.Present && !cand.Present:
		return Outcome{Status: StatusBothAbsent, Subtype: SubtypeNone}
	case !ref.Present:
		return Outcome{Status: StatusReferenceAbsent, Subtype: SubtypeNone}
	case !cand.Present:
		if c.isToggle(field) {
			if hidden, ok := hiddenFlag(ref.Value); ok {
				if b, isBool := hidden.AsBool(); isBool && b {
					return Outcome{Status: StatusCandidateAbsent, Subtype: SubtypeAbsentAsHidden}
				}
			}
		}
		return Outcome{Status: StatusCandidateAbsent, Subtype: SubtypeNone}
	}

	return c.resolve(ctx, field, ref.Value, cand.Value)
}

// resolve runs the sub-cascade for a field present on both sides.
func (c *Classifier) resolve(ctx context.Context, field record.FieldName, refVal, candVal value.Value) Outcome {
	refText := strings.TrimSpace(refVal.Render())
	candText := strings.TrimSpace(candVal.Render())

	if refText == candText {
		return Outcome{Status: StatusMatch, Subtype: SubtypeExactMatch}
	}

	refJSON, refOK := value.Parse(refText)
	candJSON, candOK := value.Parse(candText)

	if refOK && candOK {
		if c.isToggle(field) {
			refHidden, ok1 := refJSON.Get(constants.HiddenKey)
			candHidden, ok2 := candJSON.Get(constants.HiddenKey)
			if ok1 && ok2 {
				if value.Equal(refHidden, candHidden) {
					return Outcome{Status: StatusMatch, Subtype: SubtypeToggleHiddenMatch}
				}
				return Outcome{Status: StatusMismatch, Subtype: SubtypeToggleHiddenMismatch}
			}
		}
		if value.Equivalent(refJSON, candJSON) {
			return Outcome{Status: StatusMatch, Subtype: SubtypeJSONPartialMatch}
		}
	}

	return c.askJudge(ctx, field, refText, candText)
}

func (c *Classifier) askJudge(ctx context.Context, field record.FieldName, refText, candText string) Outcome {
	if c.judge == nil {
		return FailClosed
	}

	label, err := c.callJudge(ctx, field, refText, candText)
	if err != nil {
		logging.FromContext(ctx).Warn().
			Err(err).
			Str("field", field.String()).
			Msg("Judge call failed, marking field incorrect")
		return FailClosed
	}

	label = normalizeLabel(label)
	if label == "" {
		return FailClosed
	}
	if _, ok := c.matchLabels[label]; ok {
		return Outcome{Status: StatusMatch, Subtype: label}
	}
	return Outcome{Status: StatusMismatch, Subtype: label}
}

func (c *Classifier) callJudge(ctx context.Context, field record.FieldName, refText, candText string) (label string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewJudgeError("panic", field.String(), fmt.Errorf("%v", r))
		}
	}()
	return c.judge.Judge(ctx, field, refText, candText)
}

func (c *Classifier) isToggle(field record.FieldName) bool {
	return field.HasPrefix(c.togglePrefix)
}

// hiddenFlag returns the hidden entry of a reference value that is, or
// renders to, a JSON mapping.
func hiddenFlag(v value.Value) (value.Value, bool) {
	parsed, ok := value.Parse(v.Render())
	if !ok {
		return value.Value{}, false
	}
	return parsed.Get(constants.HiddenKey)
}

func normalizeLabel(l string) string {
	return strings.ToLower(strings.TrimSpace(l))
}
