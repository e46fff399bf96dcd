package pipeline

import (
	"github.com/agentstation/fieldeval/pkg/metrics"
	"github.com/agentstation/fieldeval/pkg/reconcile"
	"github.com/agentstation/fieldeval/pkg/report"
)

func (r *Runner) writeReport(path string, result *reconcile.Result) error {
	f, err := r.files.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteWide(f, result.Rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (r *Runner) writeConsolidated(path string, sections []report.Section) error {
	f, err := r.files.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteConsolidated(f, sections); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// writeMarkdown renders one metrics row per evaluated tenant.
func (r *Runner) writeMarkdown(path, fileType string, s *Summary) error {
	var rows []metrics.Summary
	for _, a := range s.Accounts {
		if a.Skipped() || len(a.Result.Metrics) == 0 {
			continue
		}
		m := a.Result.Metrics[0]
		m.Label = a.TenantID
		rows = append(rows, m)
	}
	f, err := r.files.Create(path)
	if err != nil {
		return err
	}
	if err := report.Markdown(f, "File type "+fileType, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
