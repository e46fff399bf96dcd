package metrics

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/fieldeval/cmd/application"
	"github.com/agentstation/fieldeval/internal/source"
	"github.com/agentstation/fieldeval/pkg/errors"
	metricspkg "github.com/agentstation/fieldeval/pkg/metrics"
)

const consolidated = `tenantId,accountStructureFile,FieldName,Ground_Truth_Value,Predicted_Value_v1,Status_v1,Match_Type_v1
t1,acme.csv,delimiter,",",",",GT Present PR Present and match,exact_match
t1,acme.csv,encoding,utf8,,GT Present PR Absent,N/A
t2,globex.csv,delimiter,;,",",GT Present PR Present but mismatch,incorrect
t2,globex.csv,quote,,',GT Absent PR Present,N/A
`

const single = `FieldName,Ground_Truth_Value,Predicted_Value_v1,Status_v1,Match_Type_v1
delimiter,",",",",GT Present PR Present and match,exact_match
`

func newMock(t *testing.T, format string) *application.Mock {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/out/consolidated_report.csv", []byte(consolidated), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/out/coverage_report_t9.csv", []byte(single), 0o644))
	store := source.New(source.WithFs(fs))
	return &application.Mock{
		FilesFunc:        func() *source.Store { return store },
		OutputFormatFunc: func() string { return format },
	}
}

func TestMetricsPerTenant(t *testing.T) {
	var out bytes.Buffer
	err := Execute(context.Background(), newMock(t, "json"), "/out/consolidated_report.csv", &Flags{Candidate: 1}, &out)
	require.NoError(t, err)

	var got []metricspkg.Summary
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 2)

	assert.Equal(t, "t1", got[0].Label)
	assert.Equal(t, 1, got[0].Match)
	assert.Equal(t, 1, got[0].CandidateAbsent)
	assert.InDelta(t, 0.5, got[0].Coverage, 1e-9)
	assert.InDelta(t, 1.0, got[0].Accuracy, 1e-9)

	assert.Equal(t, "t2", got[1].Label)
	assert.Equal(t, 1, got[1].Mismatch)
	assert.Equal(t, 1, got[1].ExtraFields)
	assert.Equal(t, []string{"quote"}, got[1].ExtraFieldNames)
}

func TestMetricsWithoutTenantColumn(t *testing.T) {
	var out bytes.Buffer
	err := Execute(context.Background(), newMock(t, "json"), "/out/coverage_report_t9.csv", &Flags{Candidate: 1}, &out)
	require.NoError(t, err)

	var got []metricspkg.Summary
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "coverage_report_t9", got[0].Label)
}

func TestMetricsMarkdown(t *testing.T) {
	var out bytes.Buffer
	err := Execute(context.Background(), newMock(t, "table"), "/out/consolidated_report.csv", &Flags{Candidate: 1, Markdown: true}, &out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.String(), "# Metrics: consolidated_report.csv"))
	assert.Contains(t, out.String(), "| t1")
}

func TestMetricsErrors(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer

	err := Execute(ctx, newMock(t, "json"), "/out/consolidated_report.csv", &Flags{Candidate: 0}, &out)
	assert.True(t, errors.IsValidationError(err))

	err = Execute(ctx, newMock(t, "json"), "/out/consolidated_report.csv", &Flags{Candidate: 2}, &out)
	assert.True(t, errors.IsValidationError(err), "no Status_v2 column")

	err = Execute(ctx, newMock(t, "json"), "/out/missing.csv", &Flags{Candidate: 1}, &out)
	assert.Error(t, err)
}
