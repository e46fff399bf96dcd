package reconcile

import (
	"fmt"
	"time"

	"github.com/agentstation/fieldeval/pkg/classify"
	"github.com/agentstation/fieldeval/pkg/metrics"
	"github.com/agentstation/fieldeval/pkg/record"
)

// Cell is one candidate's rendered value and outcome for a field.
type Cell struct {
	Value   string           `json:"value" yaml:"value"`
	Present bool             `json:"present" yaml:"present"`
	Outcome classify.Outcome `json:"outcome" yaml:"outcome"`
}

// Row is the reconciliation of one field: the reference rendering plus one
// cell per candidate version, in candidate order.
type Row struct {
	Field            record.FieldName `json:"field" yaml:"field"`
	Reference        string           `json:"reference" yaml:"reference"`
	ReferencePresent bool             `json:"reference_present" yaml:"reference_present"`
	Cells            []Cell           `json:"cells" yaml:"cells"`
}

// VersionLabel names candidate i (zero-based) as "v1", "v2", ...
func VersionLabel(i int) string {
	return fmt.Sprintf("v%d", i+1)
}

// Summarize computes metrics for every candidate version present in rows.
func Summarize(rows []Row) []metrics.Summary {
	versions := 0
	for _, row := range rows {
		if len(row.Cells) > versions {
			versions = len(row.Cells)
		}
	}
	tallies := make([]metrics.Tally, versions)
	for _, row := range rows {
		for i, cell := range row.Cells {
			tallies[i].Add(row.Field, cell.Outcome.Status)
		}
	}
	out := make([]metrics.Summary, versions)
	for i := range tallies {
		out[i] = tallies[i].Summary(VersionLabel(i))
	}
	return out
}

// Result is the outcome of one reconciliation run.
type Result struct {
	Rows     []Row             `json:"rows" yaml:"rows"`
	Metrics  []metrics.Summary `json:"metrics" yaml:"metrics"`
	Metadata ResultMetadata    `json:"metadata" yaml:"metadata"`
}

// ResultMetadata describes how a run went.
type ResultMetadata struct {
	StartTime  time.Time     `json:"start_time" yaml:"start_time"`
	EndTime    time.Time     `json:"end_time" yaml:"end_time"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	Fields     int           `json:"fields" yaml:"fields"`
	Candidates int           `json:"candidates" yaml:"candidates"`
	JudgeCalls int64         `json:"judge_calls" yaml:"judge_calls"`
	JudgeHits  int64         `json:"judge_hits" yaml:"judge_hits"`
}

// Fields returns the field names in row order.
func (r *Result) Fields() []record.FieldName {
	out := make([]record.FieldName, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Field
	}
	return out
}

// Summary returns a one-line description of the run.
func (r *Result) Summary() string {
	s := fmt.Sprintf("Reconciled %d fields across %d candidate(s) in %s",
		r.Metadata.Fields, r.Metadata.Candidates, r.Metadata.Duration.Round(time.Millisecond))
	for _, m := range r.Metrics {
		s += fmt.Sprintf("; %s coverage %s accuracy %s", m.Label, metrics.Percent(m.Coverage), metrics.Percent(m.Accuracy))
	}
	return s
}

// ResultBuilder helps construct Result objects.
type ResultBuilder struct {
	result *Result
}

// NewResultBuilder starts a result timed from now.
func NewResultBuilder() *ResultBuilder {
	return &ResultBuilder{
		result: &Result{
			Rows:     []Row{},
			Metadata: ResultMetadata{StartTime: time.Now()},
		},
	}
}

// WithRows sets the rows.
func (b *ResultBuilder) WithRows(rows []Row) *ResultBuilder {
	b.result.Rows = rows
	return b
}

// WithCandidates records how many candidates were compared.
func (b *ResultBuilder) WithCandidates(n int) *ResultBuilder {
	b.result.Metadata.Candidates = n
	return b
}

// WithJudgeStats records judge usage.
func (b *ResultBuilder) WithJudgeStats(calls, hits int64) *ResultBuilder {
	b.result.Metadata.JudgeCalls = calls
	b.result.Metadata.JudgeHits = hits
	return b
}

// Build finalizes and returns the Result.
func (b *ResultBuilder) Build() *Result {
	b.result.Metadata.EndTime = time.Now()
	b.result.Metadata.Duration = b.result.Metadata.EndTime.Sub(b.result.Metadata.StartTime)
	b.result.Metadata.Fields = len(b.result.Rows)
	ms := Summarize(b.result.Rows)
	for i := len(ms); i < b.result.Metadata.Candidates; i++ {
		var empty metrics.Tally
		ms = append(ms, empty.Summary(VersionLabel(i)))
	}
	b.result.Metrics = ms
	return b.result
}
