package report_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/fieldeval/pkg/classify"
	"github.com/agentstation/fieldeval/pkg/metrics"
	"github.com/agentstation/fieldeval/pkg/reconcile"
	"github.com/agentstation/fieldeval/pkg/report"
)

func sampleRows() []reconcile.Row {
	return []reconcile.Row{
		{
			Field: "planname", Reference: "ACME_A", ReferencePresent: true,
			Cells: []reconcile.Cell{{Value: "ACME_A", Present: true, Outcome: classify.Outcome{Status: classify.StatusMatch, Subtype: "exact_match"}}},
		},
		{
			Field: "rules", Reference: `[{"a":1}]`, ReferencePresent: true,
			Cells: []reconcile.Cell{{Value: "", Outcome: classify.Outcome{Status: classify.StatusCandidateAbsent, Subtype: "N/A"}}},
		},
		{
			Field: "extra", Reference: "",
			Cells: []reconcile.Cell{{Value: "x", Present: true, Outcome: classify.Outcome{Status: classify.StatusReferenceAbsent, Subtype: "N/A"}}},
		},
	}
}

func TestWriteWide(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteWide(&buf, sampleRows()))

	want := strings.Join([]string{
		"FieldName,Ground_Truth_Value,Predicted_Value_v1,Status_v1,Match_Type_v1",
		"planname,ACME_A,ACME_A,GT Present PR Present and match,exact_match",
		`rules,"[{""a"":1}]",,GT Present PR Absent,N/A`,
		"extra,,x,GT Absent PR Present,N/A",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())

	buf.Reset()
	require.NoError(t, report.WriteWide(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestConsolidatedRoundTripMetrics(t *testing.T) {
	twoVersions := []reconcile.Row{{
		Field: "planname", Reference: "A", ReferencePresent: true,
		Cells: []reconcile.Cell{
			{Value: "B", Present: true, Outcome: classify.FailClosed},
			{Value: "A", Present: true, Outcome: classify.Outcome{Status: classify.StatusMatch, Subtype: "exact_match"}},
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, report.WriteConsolidated(&buf, []report.Section{
		{TenantID: "t2", AccountFile: "beta.csv", Rows: twoVersions},
		{TenantID: "t1", AccountFile: "acme.xlsx", Rows: sampleRows()},
	}))

	table, err := report.Read(&buf, "consolidated_report.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"tenantId", "accountStructureFile", "FieldName", "Ground_Truth_Value",
		"Predicted_Value_v1", "Status_v1", "Match_Type_v1",
		"Predicted_Value_v2", "Status_v2", "Match_Type_v2"}, table.Header)
	assert.Len(t, table.Rows, 4)
	assert.Equal(t, "", table.Get(1, "Status_v2"), "short sections are padded")

	summaries, err := report.MetricsByTenant(table, 1, "all")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	t1 := summaries[0]
	assert.Equal(t, "t1", t1.Label)
	assert.InDelta(t, 0.5, t1.Coverage, 1e-9)
	assert.InDelta(t, 1.0, t1.Accuracy, 1e-9)
	assert.Equal(t, 1, t1.ExtraFields)

	t2 := summaries[1]
	assert.InDelta(t, 0.0, t2.Accuracy, 1e-9)

	_, err = report.MetricsByTenant(table, 3, "all")
	assert.Error(t, err)
}

func TestMetricsWithoutTenantColumn(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteWide(&buf, sampleRows()))
	table, err := report.Read(&buf, "coverage_report_t1.csv")
	require.NoError(t, err)

	summaries, err := report.MetricsByTenant(table, 1, "t1")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "t1", summaries[0].Label)

	var out bytes.Buffer
	require.NoError(t, report.WriteMetrics(&out, summaries))
	assert.Equal(t, "tenantId,Coverage,Accuracy,Extra Fields\nt1,50.00%,100.00%,1\n", out.String())
}

func TestReadEmpty(t *testing.T) {
	_, err := report.Read(strings.NewReader(""), "empty.csv")
	assert.Error(t, err)
}

func TestTimingLog(t *testing.T) {
	fs := afero.NewMemMapFs()
	log := report.NewTimingLog(fs, "/out/prediction_timing.csv")
	require.NoError(t, fs.MkdirAll("/out", 0o755))

	at := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, log.Record(report.Timing{At: at, FileTypeID: "834", TenantID: "t1", Duration: 1500 * time.Millisecond}))
	require.NoError(t, log.Record(report.Timing{At: at, FileTypeID: "834", TenantID: "t2", Duration: 250 * time.Millisecond}))

	data, err := afero.ReadFile(fs, "/out/prediction_timing.csv")
	require.NoError(t, err)
	assert.Equal(t, "Timestamp,FileTypeID,TenantID,PredictionTimeSeconds\n"+
		"2025-03-01 09:30:00,834,t1,1.5000\n"+
		"2025-03-01 09:30:00,834,t2,0.2500\n", string(data))
}

func TestMarkdown(t *testing.T) {
	var tally metrics.Tally
	tally.Add("planname", classify.StatusMatch)
	tally.Add("extra", classify.StatusReferenceAbsent)

	var buf bytes.Buffer
	require.NoError(t, report.Markdown(&buf, "Evaluation 834", []metrics.Summary{tally.Summary("t1")}))

	out := buf.String()
	assert.Contains(t, out, "# Evaluation 834")
	assert.Contains(t, out, "Coverage")
	assert.Contains(t, out, "100.00%")
	assert.Contains(t, out, "## Extra fields: t1")
	assert.Contains(t, out, "`extra`")

	buf.Reset()
	require.NoError(t, report.Markdown(&buf, "Empty", nil))
	assert.Contains(t, buf.String(), "No results.")
}
