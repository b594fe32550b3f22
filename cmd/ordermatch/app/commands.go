package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/ordermatch/cmd/ordermatch/cmd/assign"
	"github.com/agentstation/ordermatch/cmd/ordermatch/cmd/auto"
	"github.com/agentstation/ordermatch/cmd/ordermatch/cmd/pending"
	"github.com/agentstation/ordermatch/cmd/ordermatch/cmd/search"
	"github.com/agentstation/ordermatch/cmd/ordermatch/cmd/strip"
	"github.com/agentstation/ordermatch/cmd/ordermatch/cmd/thumb"
	"github.com/agentstation/ordermatch/cmd/ordermatch/cmd/version"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Matching commands
	rootCmd.AddCommand(auto.NewCommand(a))
	rootCmd.AddCommand(pending.NewCommand(a))
	rootCmd.AddCommand(search.NewCommand(a))
	rootCmd.AddCommand(assign.NewCommand(a))

	// Workbook tools
	rootCmd.AddCommand(strip.NewCommand(a))
	rootCmd.AddCommand(thumb.NewCommand(a))

	rootCmd.AddCommand(version.NewCommand(a))
}
