// Package history implements the history command, which lists stored runs.
package history

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/fieldeval/cmd/application"
	"github.com/agentstation/fieldeval/internal/cmd/output"
	"github.com/agentstation/fieldeval/internal/cmd/table"
	"github.com/agentstation/fieldeval/internal/store"
	"github.com/agentstation/fieldeval/pkg/errors"
)

// NewCommand creates the history command using app context.
func NewCommand(app application.Application) *cobra.Command {
	filter := store.Filter{}

	cmd := &cobra.Command{
		Use:     "history [run-id]",
		GroupID: "management",
		Short:   "List recorded pipeline runs",
		Long: `History lists the runs recorded by the pipeline, newest first. With a
run ID it shows the metrics recorded for that run.`,
		Example: `  fieldeval history
  fieldeval history --tenant t1 --limit 5
  fieldeval history 3f2a9c1e-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return Execute(cmd.Context(), app, id, filter, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&filter.TenantID, "tenant", "", "only runs for this tenant")
	cmd.Flags().StringVar(&filter.FileTypeID, "file-type", "", "only runs for this file type")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "maximum number of runs (default 20)")

	return cmd
}

// Execute lists runs matching filter, or shows run id when set.
func Execute(ctx context.Context, app application.Application, id string, filter store.Filter, w io.Writer) error {
	runs, err := app.History(ctx)
	if err != nil {
		return err
	}
	if runs == nil {
		return errors.NewConfigError("history", "run history is disabled (store.path is empty)", nil)
	}

	format := output.DetectFormat(app.OutputFormat())

	if id != "" {
		run, err := runs.Get(ctx, id)
		if err != nil {
			return err
		}
		return output.Print(w, format, func(wide bool) table.Data {
			return table.MetricsToTableData(run.Metrics, wide)
		}, run)
	}

	list, err := runs.List(ctx, filter)
	if err != nil {
		return err
	}
	return output.Print(w, format, func(bool) table.Data {
		return table.RunsToTableData(list)
	}, list)
}
