// Package pending implements the pending command.
package pending

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/ordermatch/internal/appcontext"
	"github.com/agentstation/ordermatch/internal/cmd/output"
	"github.com/agentstation/ordermatch/pkg/orders"
)

// NewCommand creates the pending command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "pending",
		GroupID: "core",
		Short:   "List order lines without a committed match",
		Args:    cobra.NoArgs,
		Example: `  ordermatch pending               # Lines still to match
  ordermatch pending --all         # Every order line
  ordermatch pending -o yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			l, err := app.Ledger(ctx)
			if err != nil {
				return err
			}

			var lines []orders.Line
			if all {
				lines, err = orders.Load(ctx, l)
			} else {
				lines, err = orders.Pending(ctx, l)
			}
			if err != nil {
				return err
			}

			format := output.DetectFormat(app.OutputFormat())
			return output.Write(cmd.OutOrStdout(), format, output.LinesData(lines), lines)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include lines that are already matched")

	return cmd
}
