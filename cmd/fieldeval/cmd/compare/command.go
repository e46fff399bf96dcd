// Package compare implements the compare command, which reconciles a
// ground-truth file against one or more prediction files.
package compare

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/fieldeval/cmd/application"
	"github.com/agentstation/fieldeval/internal/cmd/output"
	"github.com/agentstation/fieldeval/internal/cmd/table"
	"github.com/agentstation/fieldeval/pkg/errors"
	"github.com/agentstation/fieldeval/pkg/record"
	"github.com/agentstation/fieldeval/pkg/reconcile"
	"github.com/agentstation/fieldeval/pkg/report"
)

// Flags holds the compare command flags.
type Flags struct {
	Reference   string
	Predictions []string
	Instances   string
	CSV         string
}

// NewCommand creates the compare command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "compare",
		GroupID: "core",
		Short:   "Reconcile a ground truth file against predictions",
		Long: `Compare normalises a ground truth record and one or more prediction
records, reconciles every field and prints the per-field classification
followed by coverage and accuracy for each prediction version.

Predictions are numbered v1, v2, ... in the order they are given.`,
		Example: `  fieldeval compare --reference gt.json --prediction iter1.json
  fieldeval compare --reference gt.json --prediction a.json --prediction b.json -o wide
  fieldeval compare --reference gt.json --prediction iter1.json --instances instances.json --csv report.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd.Context(), app, flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&flags.Reference, "reference", "", "ground truth JSON file")
	cmd.Flags().StringArrayVar(&flags.Predictions, "prediction", nil, "prediction JSON file (repeatable)")
	cmd.Flags().StringVar(&flags.Instances, "instances", "", "instances.json supplying the field catalogue")
	cmd.Flags().StringVar(&flags.CSV, "csv", "", "also write the wide CSV report to this path")
	_ = cmd.MarkFlagRequired("reference")
	_ = cmd.MarkFlagRequired("prediction")

	return cmd
}

// Execute runs the comparison and writes the result to w.
func Execute(ctx context.Context, app application.Application, flags *Flags, w io.Writer) error {
	if len(flags.Predictions) == 0 {
		return errors.NewValidationError("prediction", nil, "at least one prediction file is required")
	}

	files := app.Files()
	logger := app.Logger()

	reference, err := files.LoadReference(flags.Reference)
	if err != nil {
		return err
	}

	candidates := make([]*record.Record, 0, len(flags.Predictions))
	for _, path := range flags.Predictions {
		c, err := files.LoadCandidate(path)
		if err != nil {
			return err
		}
		candidates = append(candidates, c)
	}

	var catalogue record.FieldSet
	if flags.Instances != "" {
		instances, err := files.LoadInstances(flags.Instances)
		if err != nil {
			return err
		}
		catalogue = instances.Catalogue()
	}

	rec, err := app.Reconciler(ctx)
	if err != nil {
		return err
	}

	result, err := rec.Run(ctx, reconcile.Input{
		Reference:  reference,
		Candidates: candidates,
		Catalogue:  catalogue,
	})
	if err != nil {
		return err
	}
	logger.Debug().Str("summary", result.Summary()).Msg("Reconciliation finished")

	if flags.CSV != "" {
		if err := writeCSV(app, flags.CSV, result); err != nil {
			return err
		}
		logger.Info().Str("path", flags.CSV).Msg("Report written")
	}

	return printResult(w, output.DetectFormat(app.OutputFormat()), result)
}

func writeCSV(app application.Application, path string, result *reconcile.Result) error {
	f, err := app.Files().Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteWide(f, result.Rows); err != nil {
		_ = f.Close()
		return errors.WrapIO("write", path, err)
	}
	return errors.WrapIO("close", path, f.Close())
}

func printResult(w io.Writer, format output.Format, result *reconcile.Result) error {
	switch format {
	case output.FormatTable, output.FormatWide:
		wide := format == output.FormatWide
		formatter := output.NewFormatter(format)
		if err := formatter.Format(w, table.RowsToTableData(result.Rows, wide)); err != nil {
			return err
		}
		fmt.Fprintln(w)
		return formatter.Format(w, table.MetricsToTableData(result.Metrics, wide))
	default:
		return output.NewFormatter(format).Format(w, result)
	}
}
