// Package thumb implements the thumb command.
package thumb

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/ordermatch/internal/appcontext"
	"github.com/agentstation/ordermatch/internal/cmd/emoji"
	"github.com/agentstation/ordermatch/internal/cmd/output"
	"github.com/agentstation/ordermatch/pkg/constants"
	"github.com/agentstation/ordermatch/pkg/errors"
	"github.com/agentstation/ordermatch/pkg/images"
)

// NewCommand creates the thumb command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var (
		out  string
		size int
	)

	cmd := &cobra.Command{
		Use:     "thumb <url>",
		GroupID: "tools",
		Short:   "Download a product image as a JPEG thumbnail",
		Args:    cobra.ExactArgs(1),
		Example: `  ordermatch thumb https://example.com/p/123.png
  ordermatch thumb https://example.com/p/123.png --size 200 --out p123.jpg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := args[0]
			if !images.Valid(ref) {
				return errors.NewValidationError("url", ref, "must be an http or https URL")
			}

			fetcher, err := app.Images()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("size") {
				fetcher, err = images.New(images.WithSize(size), images.WithLogger(app.Logger()))
				if err != nil {
					return err
				}
			}

			thumb, err := fetcher.Thumbnail(cmd.Context(), ref)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, thumb.Data, constants.FilePermissions); err != nil {
				return errors.WrapIO("write", out, err)
			}

			format := output.DetectFormat(app.OutputFormat())
			w := cmd.OutOrStdout()
			if !format.Tabular() {
				return output.NewFormatter(format).Format(w, thumb)
			}
			_, err = fmt.Fprintf(w, "%s Wrote %dx%d thumbnail to %s (%d bytes)\n",
				emoji.Success, thumb.Width, thumb.Height, out, thumb.Bytes)
			return err
		},
	}

	cmd.Flags().StringVarP(&out, "out", "O", "thumbnail.jpg", "output file")
	cmd.Flags().IntVarP(&size, "size", "s", constants.ThumbnailSize, "bounding box in pixels")

	return cmd
}
