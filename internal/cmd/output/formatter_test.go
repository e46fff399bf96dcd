package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/fieldeval/internal/cmd/table"
)

type sample struct {
	Field  string `json:"field" yaml:"field"`
	Status string `json:"status" yaml:"status"`
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "JSON", "yaml", "wide", ""} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, sample{Field: "a<b", Status: "ok"}))
	assert.JSONEq(t, `{"field":"a<b","status":"ok"}`, buf.String())
	assert.Contains(t, buf.String(), "a<b")
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, []sample{{Field: "delimiter", Status: "match"}}))
	assert.Contains(t, buf.String(), "field: delimiter")
	assert.Contains(t, buf.String(), "status: match")
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	data := table.Data{
		Headers:         []string{"Field", "Status"},
		Rows:            [][]string{{"delimiter", "match"}, {"encoding", "missing"}},
		ColumnAlignment: []table.Align{table.AlignLeft, table.AlignRight},
	}
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, data))
	out := buf.String()
	assert.Contains(t, out, "delimiter")
	assert.Contains(t, out, "missing")
}

func TestNewFormatterTableFormats(t *testing.T) {
	for _, f := range []Format{FormatTable, FormatWide, ""} {
		assert.IsType(t, &TableFormatter{}, NewFormatter(f), string(f))
	}
}

func TestTableFormatterFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, map[string]int{"a": 1}))
	assert.JSONEq(t, `{"a":1}`, buf.String())
}

func TestPrint(t *testing.T) {
	raw := []sample{{Field: "delimiter", Status: "match"}}
	var calls []bool
	tabular := func(wide bool) table.Data {
		calls = append(calls, wide)
		return table.Data{Headers: []string{"Field"}, Rows: [][]string{{"delimiter"}}}
	}

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, FormatWide, tabular, raw))
	assert.Equal(t, []bool{true}, calls)

	buf.Reset()
	require.NoError(t, Print(&buf, FormatJSON, tabular, raw))
	assert.Len(t, calls, 1)
	assert.JSONEq(t, `[{"field":"delimiter","status":"match"}]`, buf.String())
}
