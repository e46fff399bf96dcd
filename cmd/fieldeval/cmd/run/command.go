// Package run implements the run command, which drives the per-account
// prediction pipeline for one file type.
package run

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/fieldeval/cmd/application"
	"github.com/agentstation/fieldeval/internal/cmd/output"
	"github.com/agentstation/fieldeval/internal/cmd/table"
	"github.com/agentstation/fieldeval/internal/pipeline"
	"github.com/agentstation/fieldeval/pkg/constants"
	"github.com/agentstation/fieldeval/pkg/errors"
)

// Flags holds the run command flags.
type Flags struct {
	FileType       string
	IntegrationIDs []string
	Local          bool
}

// NewCommand creates the run command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "run",
		GroupID: "core",
		Short:   "Run the prediction pipeline for every account of a file type",
		Long: `Run discovers the account structure files of a file type, pairs them
in sorted order with the given integration IDs, and for each account:

• looks up the tenant and writes its ground truth
• uploads the account file and requests a prediction
• reconciles the prediction and writes coverage_report_<tenant>.csv

A failing account is logged and skipped. A consolidated report and a
markdown summary are written once all accounts have run.`,
		Example: `  fieldeval run --file-type 42 --integration-ids 7,8,9
  fieldeval run --file-type 42 --integration-ids 7 --local`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd.Context(), app, flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&flags.FileType, "file-type", "", "file type ID")
	cmd.Flags().StringSliceVar(&flags.IntegrationIDs, "integration-ids", nil, "integration IDs, one per account file in sorted order")
	cmd.Flags().BoolVar(&flags.Local, "local", false, "also call the local prediction endpoint")
	_ = cmd.MarkFlagRequired("file-type")
	_ = cmd.MarkFlagRequired("integration-ids")

	return cmd
}

// Execute runs the pipeline and writes the per-account summary to w.
func Execute(ctx context.Context, app application.Application, flags *Flags, w io.Writer) error {
	if flags.FileType == "" {
		return errors.NewValidationError("file-type", nil, "file type ID is required")
	}

	runner, err := app.Pipeline(ctx)
	if err != nil {
		return err
	}
	if runner == nil {
		return errors.NewConfigError("pipeline", "no pipeline configured", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RunTimeout)
	defer cancel()

	summary, err := runner.Run(ctx, pipeline.Plan{
		FileTypeID:     flags.FileType,
		IntegrationIDs: flags.IntegrationIDs,
		Local:          flags.Local,
	})
	if err != nil {
		return err
	}

	app.Logger().Info().
		Str("batch", summary.BatchID).
		Int("processed", summary.Processed()).
		Int("accounts", len(summary.Accounts)).
		Dur("duration", summary.Duration).
		Msg("Pipeline finished")

	return output.Print(w, output.DetectFormat(app.OutputFormat()), func(bool) table.Data {
		return table.AccountsToTableData(summary)
	}, summary)
}
