// Package auto implements the auto command, which matches every pending
// order line by exact product name or model name and commits the matches.
package auto

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/ordermatch/internal/appcontext"
	"github.com/agentstation/ordermatch/internal/cmd/output"
	"github.com/agentstation/ordermatch/pkg/logging"
	"github.com/agentstation/ordermatch/pkg/match"
	"github.com/agentstation/ordermatch/pkg/orders"
	"github.com/agentstation/ordermatch/pkg/reconciler"
)

// Flags holds the auto command flags.
type Flags struct {
	DryRun   bool
	NoFormat bool
}

// NewCommand creates the auto command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "auto",
		GroupID: "core",
		Short:   "Auto-match pending orders and commit the matches",
		Args:    cobra.NoArgs,
		Long: `Auto reads every pending order line of the ledger and looks for a
catalog product whose name equals the order text, or whose model name
appears in it. Matched rows are written back in one batch; rows from a
sold-out table are highlighted.

Lines without an automatic match are left for the search and assign
commands.`,
		Example: `  ordermatch auto                  # Match and commit
  ordermatch auto --dry-run        # Preview the matches
  ordermatch auto -o json          # Match log as JSON`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd, app, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "show the matches without writing them")
	cmd.Flags().BoolVar(&flags.NoFormat, "no-format", false, "skip sold-out highlighting")

	return cmd
}

// Execute runs auto-match over the pending lines and commits the result.
func Execute(cmd *cobra.Command, app appcontext.Interface, flags *Flags) error {
	logger := app.Logger()
	ctx := logging.WithLogger(cmd.Context(), logger)
	settings := app.Settings()

	l, err := app.Ledger(ctx)
	if err != nil {
		return err
	}
	lines, err := orders.Pending(ctx, l)
	if err != nil {
		return err
	}
	cat, err := app.Catalog(ctx)
	if err != nil {
		return err
	}

	decisions := make([]match.Decision, 0, len(lines))
	for _, line := range lines {
		rowCtx := logging.WithRow(ctx, line.Row)
		d := match.Decide(rowCtx, line.Row, line.Text, cat)
		if !d.Matched() {
			logging.FromContext(rowCtx).Debug().Str("order", line.Text).Msg("No automatic match")
			continue
		}
		decisions = append(decisions, d)
	}
	logger.Info().
		Int("pending", len(lines)).
		Int("matched", len(decisions)).
		Msg("Auto-match finished")

	w, err := reconciler.New(l,
		reconciler.WithDryRun(flags.DryRun),
		reconciler.WithFormatting(!flags.NoFormat),
		reconciler.WithSoldOutMarker(settings.SoldOutMarker),
		reconciler.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	commitCtx, cancel := context.WithTimeout(ctx, settings.CommitTimeout)
	defer cancel()
	res, err := w.Reconcile(commitCtx, decisions)
	if err != nil {
		return err
	}

	format := output.DetectFormat(app.OutputFormat())
	out := cmd.OutOrStdout()
	if err := output.Write(out, format, output.EntriesData(res.Entries), res.Entries); err != nil {
		return err
	}
	return output.Summary(out, format, res)
}
