// Package assign implements the assign command, which commits a candidate
// chosen from the search ranking to one ledger row.
package assign

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/ordermatch/internal/appcontext"
	"github.com/agentstation/ordermatch/internal/cmd/cmdutil"
	"github.com/agentstation/ordermatch/internal/cmd/output"
	"github.com/agentstation/ordermatch/pkg/errors"
	"github.com/agentstation/ordermatch/pkg/match"
	"github.com/agentstation/ordermatch/pkg/reconciler"
)

// Flags holds the assign command flags.
type Flags struct {
	Row    string
	Pick   int
	Query  string
	DryRun bool
}

// NewCommand creates the assign command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}
	var rank *cmdutil.RankFlags

	cmd := &cobra.Command{
		Use:     "assign",
		GroupID: "core",
		Short:   "Commit a ranked candidate to a ledger row",
		Args:    cobra.NoArgs,
		Long: `Assign ranks the catalog against the order text of --row, the same way
search does, and commits candidate number --pick as a manual match.

Use the same --threshold, --top and --query values as the search you
picked from so the numbering agrees.`,
		Example: `  ordermatch search --row 7
  ordermatch assign --row 7 --pick 2
  ordermatch assign --row 7 --query "냉장고 500" --pick 1`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd, app, flags, rank)
		},
	}

	cmd.Flags().StringVarP(&flags.Row, "row", "r", "", "ledger row to assign (required)")
	cmd.Flags().IntVarP(&flags.Pick, "pick", "p", 0, "1-based candidate number from the ranking (required)")
	cmd.Flags().StringVar(&flags.Query, "query", "", "rank against this text instead of the row's order text")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "show the match without writing it")
	_ = cmd.MarkFlagRequired("row")
	_ = cmd.MarkFlagRequired("pick")
	rank = cmdutil.AddRankFlags(cmd)

	return cmd
}

// Execute ranks candidates for the row and commits the picked one.
func Execute(cmd *cobra.Command, app appcontext.Interface, flags *Flags, rank *cmdutil.RankFlags) error {
	ctx := cmd.Context()
	logger := app.Logger()
	settings := app.Settings()

	row, err := cmdutil.ParseRow(flags.Row)
	if err != nil {
		return err
	}
	threshold, top, err := rank.Resolve(cmd, settings)
	if err != nil {
		return err
	}

	l, line, err := cmdutil.OrderLine(ctx, app, row)
	if err != nil {
		return err
	}
	if !line.Pending() {
		logger.Warn().Int("row", row).Str("matched", line.Matched).Msg("Row is already matched")
	}
	query := line.Text
	if flags.Query != "" {
		query = flags.Query
	}

	cat, err := app.Catalog(ctx)
	if err != nil {
		return err
	}
	cands := match.FindMatches(query, cat, threshold, top)
	if flags.Pick < 1 || flags.Pick > len(cands) {
		return errors.NewValidationError("pick", flags.Pick,
			"must be between 1 and "+strconv.Itoa(len(cands))+" candidates")
	}
	decision := match.Manual(row, cands[flags.Pick-1])

	w, err := reconciler.New(l,
		reconciler.WithDryRun(flags.DryRun),
		reconciler.WithSoldOutMarker(settings.SoldOutMarker),
		reconciler.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	commitCtx, cancel := context.WithTimeout(ctx, settings.CommitTimeout)
	defer cancel()
	res, err := w.Reconcile(commitCtx, []match.Decision{decision})
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
