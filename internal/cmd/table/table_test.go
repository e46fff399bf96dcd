package table

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/fieldeval/internal/pipeline"
	"github.com/agentstation/fieldeval/internal/store"
	"github.com/agentstation/fieldeval/pkg/classify"
	"github.com/agentstation/fieldeval/pkg/metrics"
	"github.com/agentstation/fieldeval/pkg/reconcile"
)

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Toggle Hidden Match", Humanize("toggle_hidden_match"))
	assert.Equal(t, "Json Partial Match", Humanize("json_partial_match"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "héllo", Truncate("héllo", 5))
}

func testRows() []reconcile.Row {
	return []reconcile.Row{
		{
			Field: "delimiter", Reference: ",", ReferencePresent: true,
			Cells: []reconcile.Cell{
				{Value: ",", Present: true, Outcome: classify.Outcome{Status: classify.StatusMatch, Subtype: classify.SubtypeExactMatch}},
				{Value: ";", Present: true, Outcome: classify.Outcome{Status: classify.StatusMismatch, Subtype: classify.SubtypeIncorrect}},
			},
		},
		{
			Field: "quote",
			Cells: []reconcile.Cell{
				{Outcome: classify.Outcome{Status: classify.StatusBothAbsent, Subtype: classify.SubtypeNone}},
			},
		},
	}
}

func TestRowsToTableData(t *testing.T) {
	data := RowsToTableData(testRows(), false)
	assert.Equal(t, []string{"Field", "Ground Truth",
		"Predicted v1", "Status v1", "Match Type v1",
		"Predicted v2", "Status v2", "Match Type v2"}, data.Headers)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, []string{"delimiter", ",", ",", "match", "Exact Match", ";", "mismatch", "Incorrect"}, data.Rows[0])
	assert.Equal(t, []string{"quote", "-", "-", "absent", "N/A", "-", "-", "-"}, data.Rows[1])

	wide := RowsToTableData(testRows(), true)
	assert.Equal(t, string(classify.StatusMatch), wide.Rows[0][3])
	assert.Equal(t, classify.SubtypeExactMatch, wide.Rows[0][4])
}

func TestMetricsToTableData(t *testing.T) {
	data := MetricsToTableData([]metrics.Summary{{
		Label: "v1", TotalFields: 10, Match: 6, Mismatch: 2, CandidateAbsent: 1,
		Coverage: 0.8888, Accuracy: 0.75, ExtraFields: 1, ExtraFieldNames: []string{"quote"},
	}}, true)
	require.Len(t, data.Rows, 1)
	assert.Equal(t, []string{"v1", "10", "6", "2", "1", "1", "88.88%", "75.00%", "quote"}, data.Rows[0])
	assert.Len(t, data.ColumnAlignment, len(data.Headers))
}

func TestRunsToTableData(t *testing.T) {
	data := RunsToTableData([]*store.Run{{
		ID: "r1", TenantID: "t1", StartedAt: time.Now(), Duration: 1500 * time.Millisecond, Fields: 3,
		Metrics: []metrics.Summary{{Coverage: 1, Accuracy: 0.5}},
	}})
	require.Len(t, data.Rows, 1)
	assert.Equal(t, "100.00%", data.Rows[0][6])
	assert.Equal(t, "50.00%", data.Rows[0][7])
	assert.Equal(t, "1.5s", data.Rows[0][8])
}

func TestAccountsToTableData(t *testing.T) {
	s := &pipeline.Summary{Accounts: []*pipeline.Account{
		{File: "a.csv", IntegrationID: "i1", TenantID: "t1", Report: "out/a.csv",
			Result: &reconcile.Result{Metrics: []metrics.Summary{{Coverage: 1, Accuracy: 1}}}},
		{File: "b.csv", IntegrationID: "i2", Err: errors.New("no tenant")},
	}}
	data := AccountsToTableData(s)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "out/a.csv", data.Rows[0][6])
	assert.Equal(t, "skipped: no tenant", data.Rows[1][6])
}
