package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/fieldeval/internal/pipeline"
	"github.com/agentstation/fieldeval/internal/store"
	"github.com/agentstation/fieldeval/pkg/classify"
	"github.com/agentstation/fieldeval/pkg/metrics"
	"github.com/agentstation/fieldeval/pkg/reconcile"
)

// shortStatus labels outcomes compactly for terminals.
var shortStatus = map[classify.Status]string{
	classify.StatusMatch:           "match",
	classify.StatusMismatch:        "mismatch",
	classify.StatusCandidateAbsent: "missing",
	classify.StatusReferenceAbsent: "extra",
	classify.StatusBothAbsent:      "absent",
}

// RowsToTableData converts reconciliation rows. The wide form shows full
// values and the complete status strings.
func RowsToTableData(rows []reconcile.Row, wide bool) Data {
	versions := 0
	for _, row := range rows {
		if len(row.Cells) > versions {
			versions = len(row.Cells)
		}
	}

	headers := []string{"Field", "Ground Truth"}
	for i := 0; i < versions; i++ {
		v := reconcile.VersionLabel(i)
		headers = append(headers, "Predicted "+v, "Status "+v, "Match Type "+v)
	}

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		rec := []string{string(row.Field), cellValue(row.Reference, wide)}
		for _, cell := range row.Cells {
			status := string(cell.Outcome.Status)
			subtype := cell.Outcome.Subtype
			if !wide {
				status = shortStatus[cell.Outcome.Status]
				if subtype != classify.SubtypeNone {
					subtype = Humanize(subtype)
				}
			}
			rec = append(rec, cellValue(cell.Value, wide), status, subtype)
		}
		for len(rec) < len(headers) {
			rec = append(rec, "-")
		}
		out = append(out, rec)
	}
	return Data{Headers: headers, Rows: out}
}

func cellValue(s string, wide bool) string {
	if !wide {
		s = Truncate(s, DefaultValueWidth)
	}
	return dash(s)
}

// MetricsToTableData converts per-version or per-tenant summaries.
func MetricsToTableData(summaries []metrics.Summary, wide bool) Data {
	headers := []string{"Label", "Fields", "Match", "Mismatch", "Missing", "Extra", "Coverage", "Accuracy"}
	if wide {
		headers = append(headers, "Extra Field Names")
	}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		row := []string{
			s.Label,
			strconv.Itoa(s.TotalFields),
			strconv.Itoa(s.Match),
			strconv.Itoa(s.Mismatch),
			strconv.Itoa(s.CandidateAbsent),
			strconv.Itoa(s.ExtraFields),
			metrics.Percent(s.Coverage),
			metrics.Percent(s.Accuracy),
		}
		if wide {
			row = append(row, dash(strings.Join(s.ExtraFieldNames, ", ")))
		}
		rows = append(rows, row)
	}
	align := []Align{AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight}
	if wide {
		align = append(align, AlignLeft)
	}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// RunsToTableData converts stored run history.
func RunsToTableData(runs []*store.Run) Data {
	headers := []string{"ID", "Started", "Tenant", "File Type", "Account", "Fields", "Coverage", "Accuracy", "Duration"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		coverage, accuracy := "-", "-"
		if len(r.Metrics) > 0 {
			coverage = metrics.Percent(r.Metrics[0].Coverage)
			accuracy = metrics.Percent(r.Metrics[0].Accuracy)
		}
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			r.TenantID,
			dash(r.FileTypeID),
			dash(r.AccountFile),
			strconv.Itoa(r.Fields),
			coverage,
			accuracy,
			r.Duration.Round(time.Millisecond).String(),
		})
	}
	return Data{Headers: headers, Rows: rows}
}

// AccountsToTableData converts the per-account outcome of a pipeline run.
func AccountsToTableData(s *pipeline.Summary) Data {
	headers := []string{"Account File", "Integration", "Tenant", "Coverage", "Accuracy", "Extra", "Result"}
	rows := make([][]string, 0, len(s.Accounts))
	for _, a := range s.Accounts {
		row := []string{a.File, a.IntegrationID, dash(a.TenantID)}
		if a.Skipped() {
			row = append(row, "-", "-", "-", fmt.Sprintf("skipped: %v", a.Err))
		} else if len(a.Result.Metrics) > 0 {
			m := a.Result.Metrics[0]
			row = append(row, metrics.Percent(m.Coverage), metrics.Percent(m.Accuracy), strconv.Itoa(m.ExtraFields), a.Report)
		} else {
			row = append(row, "-", "-", "-", a.Report)
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows}
}
