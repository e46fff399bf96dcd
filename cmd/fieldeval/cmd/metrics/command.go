// Package metrics implements the metrics command, which scores an existing
// coverage or consolidated report per tenant.
package metrics

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/fieldeval/cmd/application"
	"github.com/agentstation/fieldeval/internal/cmd/output"
	"github.com/agentstation/fieldeval/internal/cmd/table"
	"github.com/agentstation/fieldeval/pkg/errors"
	"github.com/agentstation/fieldeval/pkg/report"
)

// Flags holds the metrics command flags.
type Flags struct {
	Candidate int
	Markdown  bool
}

// NewCommand creates the metrics command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "metrics REPORT.csv",
		GroupID: "core",
		Short:   "Compute coverage and accuracy from a report",
		Long: `Metrics reads a coverage report or a consolidated report and computes,
per tenant, the status totals, coverage, accuracy and extra fields of one
prediction version. A report without a tenantId column is scored as a
single group named after the file.`,
		Example: `  fieldeval metrics output/42/consolidated_report.csv
  fieldeval metrics coverage_report_t1.csv --candidate 2
  fieldeval metrics output/42/consolidated_report.csv --markdown > summary.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Execute(cmd.Context(), app, args[0], flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&flags.Candidate, "candidate", 1, "prediction version to score (1-based)")
	cmd.Flags().BoolVar(&flags.Markdown, "markdown", false, "render a markdown summary")

	return cmd
}

// Execute scores the report at path and writes the summaries to w.
func Execute(_ context.Context, app application.Application, path string, flags *Flags, w io.Writer) error {
	if flags.Candidate < 1 {
		return errors.NewValidationError("candidate", flags.Candidate, "must be at least 1")
	}

	f, err := app.Files().Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	t, err := report.Read(f, path)
	if err != nil {
		return err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	summaries, err := report.MetricsByTenant(t, flags.Candidate, name)
	if err != nil {
		return err
	}

	if flags.Markdown {
		return report.Markdown(w, "Metrics: "+filepath.Base(path), summaries)
	}
	return output.Print(w, output.DetectFormat(app.OutputFormat()), func(wide bool) table.Data {
		return table.MetricsToTableData(summaries, wide)
	}, summaries)
}
