package app

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/agentstation/ordermatch/pkg/logging"
)

// Execute runs the ordermatch CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ordermatch",
		Short:   "Match order lines to catalog products",
		Version: a.version,
		Long: `ordermatch reconciles free-text order lines in a matching ledger
(a Google Sheet or a local workbook) against a product catalog workbook.

It can auto-match orders by exact product name or model name, rank
candidates for manual review, and write the chosen products, prices and
match methods back to the ledger in one batch.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "Matching Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "tools", Title: "Workbook Tools:"})

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default is $HOME/.ordermatch.yaml)")
	pf.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	pf.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	pf.Bool("no-color", false, "disable colored output")
	pf.StringP("format", "o", "", "output format: table, json, yaml, wide")
	pf.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	pf.String("catalog", "", "catalog workbook (.xlsx)")
	pf.String("ledger", "", "ledger backend: sheets or xlsx")
	pf.String("ledger-file", "", "ledger workbook for the xlsx backend")
	pf.String("spreadsheet", "", "spreadsheet ID for the sheets backend (default: look up by title)")
	pf.String("worksheet", "", "ledger worksheet name")
	pf.String("credentials", "", "service-account JSON file")

	rootCmd.SetVersionTemplate("ordermatch {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	if flags.Changed("config") {
		config, err := LoadConfig(mustGetString(cmd, "config"))
		if err != nil {
			return err
		}
		a.config = config
	}

	a.config.UpdateFromFlags(
		mustGetBool(cmd, "verbose"),
		mustGetBool(cmd, "quiet"),
		mustGetBool(cmd, "no-color"),
		mustGetString(cmd, "format"),
		mustGetString(cmd, "log-level"),
	)
	a.applyFlags(flags)

	if err := a.config.Validate(); err != nil {
		return err
	}

	logger := NewLogger(a.config)
	a.logger = &logger
	logging.SetDefault(logger)
	cmd.SetContext(logging.WithLogger(cmd.Context(), a.logger))
	return nil
}

// applyFlags copies explicitly set domain flags over the loaded configuration.
func (a *App) applyFlags(flags *pflag.FlagSet) {
	targets := map[string]*string{
		"catalog":     &a.config.CatalogFile,
		"ledger":      &a.config.Ledger,
		"ledger-file": &a.config.LedgerFile,
		"spreadsheet": &a.config.SpreadsheetID,
		"worksheet":   &a.config.Worksheet,
		"credentials": &a.config.CredentialsFile,
	}
	flags.Visit(func(f *pflag.Flag) {
		if target, ok := targets[f.Name]; ok {
			*target = f.Value.String()
		}
	})
	a.config.Ledger = strings.ToLower(a.config.Ledger)
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
