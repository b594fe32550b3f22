// Package strip implements the strip command, which removes embedded
// images from a catalog workbook so it loads faster.
package strip

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/ordermatch/internal/appcontext"
	"github.com/agentstation/ordermatch/internal/cmd/emoji"
	"github.com/agentstation/ordermatch/internal/cmd/output"
	"github.com/agentstation/ordermatch/pkg/catalogs/workbook"
)

// Report is the structured output of a strip run.
type Report struct {
	Source  string   `json:"source" yaml:"source"`
	Target  string   `json:"target" yaml:"target"`
	Removed []string `json:"removed" yaml:"removed"`
	Before  int64    `json:"bytes_before" yaml:"bytes_before"`
	After   int64    `json:"bytes_after" yaml:"bytes_after"`
}

// NewCommand creates the strip command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var keepDrawings bool

	cmd := &cobra.Command{
		Use:     "strip <workbook> <output>",
		GroupID: "tools",
		Short:   "Remove embedded images from a workbook",
		Args:    cobra.ExactArgs(2),
		Long: `Strip copies an .xlsx or .xlsm workbook without its embedded media
(xl/media) and, unless --keep-drawings is set, its drawing parts
(xl/drawings). Cell values are unchanged.`,
		Example: `  ordermatch strip catalog.xlsx catalog-light.xlsx
  ordermatch strip catalog.xlsx out.xlsx --keep-drawings`,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := workbook.StripFile(args[0], args[1], !keepDrawings)
			if err != nil {
				return err
			}
			app.Logger().Debug().
				Int("entries", stats.EntriesTotal).
				Int("removed", len(stats.Removed)).
				Msg("Workbook stripped")

			report := Report{
				Source:  args[0],
				Target:  args[1],
				Removed: stats.Removed,
				Before:  stats.BytesBefore,
				After:   stats.BytesAfter,
			}
			format := output.DetectFormat(app.OutputFormat())
			out := cmd.OutOrStdout()
			if !format.Tabular() {
				return output.NewFormatter(format).Format(out, report)
			}
			_, err = fmt.Fprintf(out, "%s Removed %d parts from %s (%d → %d bytes, saved %d)\n",
				emoji.Success, len(stats.Removed), args[0], stats.BytesBefore, stats.BytesAfter, stats.Saved())
			return err
		},
	}

	cmd.Flags().BoolVar(&keepDrawings, "keep-drawings", false, "keep xl/drawings parts")

	return cmd
}
