package classify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/fieldeval/pkg/classify"
	"github.com/agentstation/fieldeval/pkg/logging"
	"github.com/agentstation/fieldeval/pkg/record"
	"github.com/agentstation/fieldeval/pkg/value"
)

func present(t *testing.T, raw any) record.Entry {
	t.Helper()
	return record.Entry{Value: value.FromAny(raw), Present: true}
}

func jsonEntry(t *testing.T, s string) record.Entry {
	t.Helper()
	v, err := value.Decode([]byte(s))
	require.NoError(t, err)
	return record.Entry{Value: v, Present: true}
}

var absent = record.Entry{}

func newClassifier(t *testing.T, opts ...classify.Option) *classify.Classifier {
	t.Helper()
	c, err := classify.New(opts...)
	require.NoError(t, err)
	return c
}

func TestPresenceBranches(t *testing.T) {
	c := newClassifier(t)
	ctx := context.Background()

	tests := []struct {
		name string
		ref  record.Entry
		cand record.Entry
		want classify.Outcome
	}{
		{"both absent", absent, absent, classify.Outcome{Status: classify.StatusBothAbsent, Subtype: "N/A"}},
		{"reference absent", absent, present(t, "x"), classify.Outcome{Status: classify.StatusReferenceAbsent, Subtype: "N/A"}},
		{"candidate absent", present(t, "x"), absent, classify.Outcome{Status: classify.StatusCandidateAbsent, Subtype: "N/A"}},
		{"none sentinel is absent", present(t, "x"), present(t, " none "), classify.Outcome{Status: classify.StatusCandidateAbsent, Subtype: "N/A"}},
		{"none sentinel without reference", absent, present(t, "none"), classify.Outcome{Status: classify.StatusBothAbsent, Subtype: "N/A"}},
		{"None is a value", present(t, "x"), present(t, "None"), classify.FailClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(ctx, "planname", tt.ref, tt.cand))
		})
	}
}

func TestToggleAbsentAsHidden(t *testing.T) {
	c := newClassifier(t)
	ctx := context.Background()

	got := c.Classify(ctx, "toggle-x", present(t, `{"hidden": true}`), absent)
	assert.Equal(t, classify.Outcome{Status: classify.StatusCandidateAbsent, Subtype: classify.SubtypeAbsentAsHidden}, got)

	got = c.Classify(ctx, "toggle-x", jsonEntry(t, `{"hidden": true, "label": "X"}`), absent)
	assert.Equal(t, classify.SubtypeAbsentAsHidden, got.Subtype, "mapping values qualify too")

	for _, ref := range []string{`{"hidden": false}`, `{"hidden": "true"}`, `{"hidden": 1}`, `not json`} {
		got = c.Classify(ctx, "toggle-x", present(t, ref), absent)
		assert.Equal(t, classify.SubtypeNone, got.Subtype, ref)
	}

	got = c.Classify(ctx, "other", present(t, `{"hidden": true}`), absent)
	assert.Equal(t, classify.SubtypeNone, got.Subtype, "non-toggle fields never qualify")
}

func TestResolveCascade(t *testing.T) {
	c := newClassifier(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		field record.FieldName
		ref   record.Entry
		cand  record.Entry
		want  classify.Outcome
	}{
		{
			name: "exact after trim", field: "planname",
			ref: present(t, "ACME_A"), cand: present(t, "  ACME_A\n"),
			want: classify.Outcome{Status: classify.StatusMatch, Subtype: classify.SubtypeExactMatch},
		},
		{
			name: "exact across number and string", field: "retries",
			ref: present(t, 3), cand: present(t, "3"),
			want: classify.Outcome{Status: classify.StatusMatch, Subtype: classify.SubtypeExactMatch},
		},
		{
			name: "toggle hidden equal ignores other keys", field: "toggle-header",
			ref: present(t, `{"hidden": false, "label": "A"}`), cand: present(t, `{"hidden": false, "label": "B"}`),
			want: classify.Outcome{Status: classify.StatusMatch, Subtype: classify.SubtypeToggleHiddenMatch},
		},
		{
			name: "toggle hidden differs", field: "toggle-header",
			ref: present(t, `{"hidden": true}`), cand: present(t, `{"hidden": false, "x": 1}`),
			want: classify.Outcome{Status: classify.StatusMismatch, Subtype: classify.SubtypeToggleHiddenMismatch},
		},
		{
			name: "toggle without hidden falls through to json", field: "toggle-header",
			ref: present(t, `{"a": 1, "b": 2}`), cand: present(t, `{"b": 2, "a": 1}`),
			want: classify.Outcome{Status: classify.StatusMatch, Subtype: classify.SubtypeJSONPartialMatch},
		},
		{
			name: "json sequence order", field: "rules",
			ref: jsonEntry(t, `[{"a":1},{"a":2}]`), cand: jsonEntry(t, `[{"a":2},{"a":1}]`),
			want: classify.Outcome{Status: classify.StatusMatch, Subtype: classify.SubtypeJSONPartialMatch},
		},
		{
			name: "json sequence duplicates", field: "rules",
			ref: present(t, `["x","y","x"]`), cand: present(t, `["y","x"]`),
			want: classify.Outcome{Status: classify.StatusMatch, Subtype: classify.SubtypeJSONPartialMatch},
		},
		{
			name: "json mapping key order", field: "mapping",
			ref: present(t, `{"a": 1, "b": 2}`), cand: present(t, `{"b": 2, "a": 1}`),
			want: classify.Outcome{Status: classify.StatusMatch, Subtype: classify.SubtypeJSONPartialMatch},
		},
		{
			name: "json mismatch without judge", field: "rules",
			ref: present(t, `["x"]`), cand: present(t, `["y"]`),
			want: classify.FailClosed,
		},
		{
			name: "plain mismatch without judge", field: "planname",
			ref: present(t, "ACME_A"), cand: present(t, "ACME_B"),
			want: classify.FailClosed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(ctx, tt.field, tt.ref, tt.cand))
		})
	}
}

func TestJudgeFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("match label", func(t *testing.T) {
		var gotField record.FieldName
		var gotRef, gotCand string
		j := classify.JudgeFunc(func(_ context.Context, f record.FieldName, ref, cand string) (string, error) {
			gotField, gotRef, gotCand = f, ref, cand
			return "  Default_Match\n", nil
		})
		c := newClassifier(t, classify.WithJudge(j))

		got := c.Classify(ctx, "planname", present(t, " ACME_A "), present(t, "ACME"))

		assert.Equal(t, classify.Outcome{Status: classify.StatusMatch, Subtype: classify.LabelDefaultMatch}, got)
		assert.Equal(t, record.FieldName("planname"), gotField)
		assert.Equal(t, "ACME_A", gotRef)
		assert.Equal(t, "ACME", gotCand)
	})

	t.Run("non match label", func(t *testing.T) {
		j := classify.JudgeFunc(func(context.Context, record.FieldName, string, string) (string, error) {
			return classify.LabelGenuinePrediction, nil
		})
		c := newClassifier(t, classify.WithJudge(j))
		got := c.Classify(ctx, "planname", present(t, "a"), present(t, "b"))
		assert.Equal(t, classify.Outcome{Status: classify.StatusMismatch, Subtype: classify.LabelGenuinePrediction}, got)
	})

	t.Run("custom match labels", func(t *testing.T) {
		j := classify.JudgeFunc(func(context.Context, record.FieldName, string, string) (string, error) {
			return classify.LabelGenuinePrediction, nil
		})
		c := newClassifier(t, classify.WithJudge(j), classify.WithMatchLabels("genuine_prediction"))
		assert.True(t, c.Classify(ctx, "f", present(t, "a"), present(t, "b")).IsMatch())
	})

	t.Run("error fails closed", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		lctx := logging.WithLogger(ctx, tl.Logger)
		j := classify.JudgeFunc(func(context.Context, record.FieldName, string, string) (string, error) {
			return "", errors.New("quota")
		})
		c := newClassifier(t, classify.WithJudge(j))
		assert.Equal(t, classify.FailClosed, c.Classify(lctx, "planname", present(t, "a"), present(t, "b")))
		tl.AssertContains(t, "quota")
	})

	t.Run("panic fails closed", func(t *testing.T) {
		j := classify.JudgeFunc(func(context.Context, record.FieldName, string, string) (string, error) {
			panic("boom")
		})
		c := newClassifier(t, classify.WithJudge(j))
		assert.Equal(t, classify.FailClosed, c.Classify(ctx, "planname", present(t, "a"), present(t, "b")))
	})

	t.Run("empty label fails closed", func(t *testing.T) {
		j := classify.JudgeFunc(func(context.Context, record.FieldName, string, string) (string, error) {
			return "   ", nil
		})
		c := newClassifier(t, classify.WithJudge(j))
		assert.Equal(t, classify.FailClosed, c.Classify(ctx, "planname", present(t, "a"), present(t, "b")))
	})

	t.Run("never consulted when deterministic rules match", func(t *testing.T) {
		j := classify.JudgeFunc(func(context.Context, record.FieldName, string, string) (string, error) {
			t.Fatal("judge should not be called")
			return "", nil
		})
		c := newClassifier(t, classify.WithJudge(j))
		assert.True(t, c.Classify(ctx, "rules", present(t, `[1,2]`), present(t, `[2,1]`)).IsMatch())
	})
}

func TestOptions(t *testing.T) {
	_, err := classify.New(classify.WithTogglePrefix(" "))
	assert.Error(t, err)

	_, err = classify.New(classify.WithMatchLabels())
	assert.Error(t, err)

	c := newClassifier(t, classify.WithTogglePrefix("SWITCH_"))
	got := c.Classify(context.Background(), "switch_banner", present(t, `{"hidden": true}`), absent)
	assert.Equal(t, classify.SubtypeAbsentAsHidden, got.Subtype)
	assert.False(t, c.HasJudge())
}

func TestParseStatus(t *testing.T) {
	for _, s := range classify.Statuses {
		got, ok := classify.ParseStatus(s.String())
		assert.True(t, ok)
		assert.Equal(t, s, got)
	}
	_, ok := classify.ParseStatus("unknown")
	assert.False(t, ok)
}
