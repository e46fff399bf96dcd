package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/fieldeval/cmd/fieldeval/cmd/compare"
	"github.com/agentstation/fieldeval/cmd/fieldeval/cmd/history"
	"github.com/agentstation/fieldeval/cmd/fieldeval/cmd/metrics"
	"github.com/agentstation/fieldeval/cmd/fieldeval/cmd/run"
	"github.com/agentstation/fieldeval/cmd/fieldeval/cmd/serve"
	"github.com/agentstation/fieldeval/cmd/fieldeval/cmd/version"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(compare.NewCommand(a))
	rootCmd.AddCommand(run.NewCommand(a))
	rootCmd.AddCommand(metrics.NewCommand(a))
	rootCmd.AddCommand(serve.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(history.NewCommand(a))
	rootCmd.AddCommand(version.NewCommand(a))
}
