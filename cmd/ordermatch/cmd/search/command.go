// Package search implements the search command, which ranks catalog
// products against an order text for manual review.
package search

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/ordermatch/internal/appcontext"
	"github.com/agentstation/ordermatch/internal/cmd/cmdutil"
	"github.com/agentstation/ordermatch/internal/cmd/output"
	"github.com/agentstation/ordermatch/pkg/errors"
	"github.com/agentstation/ordermatch/pkg/match"
)

// NewCommand creates the search command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var row string
	var rank *cmdutil.RankFlags

	cmd := &cobra.Command{
		Use:     "search [text]",
		GroupID: "core",
		Short:   "Rank catalog products against an order",
		Args:    cobra.MaximumNArgs(1),
		Long: `Search scores every catalog product against the order text with a
token-set similarity and lists the best candidates. The text is either
given as an argument or read from a ledger row with --row.

Candidate numbers in the output are the --pick values of the assign
command.`,
		Example: `  ordermatch search "쿨 냉장고 500L"
  ordermatch search --row 7 --top 10
  ordermatch search --row 7 --wide`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			query, err := resolveQuery(cmd, app, args, row)
			if err != nil {
				return err
			}
			threshold, top, err := rank.Resolve(cmd, app.Settings())
			if err != nil {
				return err
			}

			cat, err := app.Catalog(ctx)
			if err != nil {
				return err
			}
			cands := match.FindMatches(query, cat, threshold, top)
			app.Logger().Debug().
				Str("query", query).
				Float64("threshold", threshold).
				Int("candidates", len(cands)).
				Msg("Search finished")

			format := output.DetectFormat(app.OutputFormat())
			wide := rank.Wide || format == output.FormatWide
			return output.Write(cmd.OutOrStdout(), format, output.CandidatesData(cands, wide), cands)
		},
	}

	cmd.Flags().StringVarP(&row, "row", "r", "", "ledger row to read the order text from")
	rank = cmdutil.AddRankFlags(cmd)

	return cmd
}

func resolveQuery(cmd *cobra.Command, app appcontext.Interface, args []string, row string) (string, error) {
	switch {
	case len(args) == 1 && row != "":
		return "", errors.NewValidationError("row", row, "cannot be combined with a search text")
	case len(args) == 1:
		return strings.TrimSpace(args[0]), nil
	case row != "":
		n, err := cmdutil.ParseRow(row)
		if err != nil {
			return "", err
		}
		_, line, err := cmdutil.OrderLine(cmd.Context(), app, n)
		if err != nil {
			return "", err
		}
		return line.Text, nil
	}
	return "", errors.NewValidationError("text", "", "give a search text or --row")
}
