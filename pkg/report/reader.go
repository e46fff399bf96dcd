package report

import (
	"encoding/csv"
	"io"
	"sort"

	"github.com/agentstation/fieldeval/pkg/classify"
	"github.com/agentstation/fieldeval/pkg/errors"
	"github.com/agentstation/fieldeval/pkg/metrics"
	"github.com/agentstation/fieldeval/pkg/record"
)

// Table is a parsed CSV report addressed by column name.
type Table struct {
	Header []string
	Rows   [][]string
	index  map[string]int
}

// Read parses a CSV report with a header row.
func Read(r io.Reader, name string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	all, err := cr.ReadAll()
	if err != nil {
		return nil, errors.WrapParse("csv", name, err)
	}
	if len(all) == 0 {
		return nil, errors.NewParseError("csv", name, "missing header row", nil)
	}
	t := &Table{Header: all[0], Rows: all[1:], index: make(map[string]int, len(all[0]))}
	for i, h := range t.Header {
		t.index[h] = i
	}
	return t, nil
}

// Has reports whether the table has column col.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Get returns the cell of row i in column col, or "" when missing.
func (t *Table) Get(i int, col string) string {
	j, ok := t.index[col]
	if !ok || j >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][j]
}

// MetricsByTenant scores version n (1-based) of a report per tenant, sorted
// by tenant. A report without a tenant column is scored as a single group
// labelled fallback.
func MetricsByTenant(t *Table, n int, fallback string) ([]metrics.Summary, error) {
	status := StatusColumn(n)
	if !t.Has(status) {
		return nil, errors.NewValidationError(status, nil, "report has no such status column")
	}

	tallies := make(map[string]*metrics.Tally)
	for i := range t.Rows {
		tenant := fallback
		if t.Has(ColTenant) {
			tenant = t.Get(i, ColTenant)
		}
		tally, ok := tallies[tenant]
		if !ok {
			tally = &metrics.Tally{}
			tallies[tenant] = tally
		}
		st, ok := classify.ParseStatus(t.Get(i, status))
		if !ok {
			continue
		}
		tally.Add(record.Name(t.Get(i, ColField)), st)
	}

	tenants := make([]string, 0, len(tallies))
	for k := range tallies {
		tenants = append(tenants, k)
	}
	sort.Strings(tenants)

	out := make([]metrics.Summary, 0, len(tenants))
	for _, k := range tenants {
		out = append(out, tallies[k].Summary(k))
	}
	return out, nil
}

// WriteMetrics writes per-tenant scores as CSV: tenantId, Coverage,
// Accuracy, Extra Fields.
func WriteMetrics(w io.Writer, summaries []metrics.Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColTenant, "Coverage", "Accuracy", "Extra Fields"}); err != nil {
		return err
	}
	for _, s := range summaries {
		rec := []string{s.Label, metrics.Percent(s.Coverage), metrics.Percent(s.Accuracy), itoa(s.ExtraFields)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
