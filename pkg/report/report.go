// Package report renders reconciliation rows and metrics into the files the
// evaluation pipeline produces: wide per-tenant CSV reports, the consolidated
// report, prediction timing logs, metrics summaries and markdown digests.
package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/agentstation/fieldeval/pkg/errors"
	"github.com/agentstation/fieldeval/pkg/reconcile"
)

// Column names of the wide report.
const (
	ColField        = "FieldName"
	ColReference    = "Ground_Truth_Value"
	ColTenant       = "tenantId"
	ColAccountFile  = "accountStructureFile"
	colPredictedFmt = "Predicted_Value_v%d"
	colStatusFmt    = "Status_v%d"
	colMatchTypeFmt = "Match_Type_v%d"
)

// StatusColumn returns the status column name for 1-based version n.
func StatusColumn(n int) string { return fmt.Sprintf(colStatusFmt, n) }

// Header returns the wide report header for the given number of versions.
func Header(versions int) []string {
	h := []string{ColField, ColReference}
	for v := 1; v <= versions; v++ {
		h = append(h, fmt.Sprintf(colPredictedFmt, v), StatusColumn(v), fmt.Sprintf(colMatchTypeFmt, v))
	}
	return h
}

// Record flattens one row into wide report cells.
func Record(row reconcile.Row) []string {
	out := []string{row.Field.String(), row.Reference}
	for _, c := range row.Cells {
		out = append(out, c.Value, c.Outcome.Status.String(), c.Outcome.Subtype)
	}
	return out
}

func versions(rows []reconcile.Row) int {
	n := 0
	for _, r := range rows {
		if len(r.Cells) > n {
			n = len(r.Cells)
		}
	}
	return n
}

// WriteWide writes rows as a wide CSV report. Nothing is written for no rows.
func WriteWide(w io.Writer, rows []reconcile.Row) error {
	if len(rows) == 0 {
		return nil
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(versions(rows))); err != nil {
		return errors.WrapIO("write", "report header", err)
	}
	for _, row := range rows {
		if err := cw.Write(Record(row)); err != nil {
			return errors.WrapIO("write", "report row "+row.Field.String(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Section is one tenant's rows within a consolidated report.
type Section struct {
	TenantID    string
	AccountFile string
	Rows        []reconcile.Row
}

// WriteConsolidated writes every section into one CSV whose rows are
// prefixed with the tenant and account file.
func WriteConsolidated(w io.Writer, sections []Section) error {
	n := 0
	for _, s := range sections {
		if v := versions(s.Rows); v > n {
			n = v
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{ColTenant, ColAccountFile}, Header(n)...)); err != nil {
		return errors.WrapIO("write", "consolidated header", err)
	}
	for _, s := range sections {
		for _, row := range s.Rows {
			rec := append([]string{s.TenantID, s.AccountFile}, Record(row)...)
			for len(rec) < 4+3*n {
				rec = append(rec, "")
			}
			if err := cw.Write(rec); err != nil {
				return errors.WrapIO("write", "consolidated row", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
