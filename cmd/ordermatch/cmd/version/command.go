// Package version implements the version command.
package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/ordermatch/internal/appcontext"
	"github.com/agentstation/ordermatch/internal/cmd/output"
)

// Info is the structured version output.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	BuiltBy   string `json:"built_by" yaml:"built_by"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// NewCommand creates the version command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Show version information for the ordermatch CLI.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := Info{
				Version:   app.Version(),
				Commit:    app.Commit(),
				Date:      app.Date(),
				BuiltBy:   app.BuiltBy(),
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}

			format := output.DetectFormat(app.OutputFormat())
			w := cmd.OutOrStdout()
			if !format.Tabular() {
				return output.NewFormatter(format).Format(w, info)
			}
			fmt.Fprintf(w, "ordermatch version %s\n", info.Version)
			fmt.Fprintf(w, "commit: %s\n", info.Commit)
			fmt.Fprintf(w, "built: %s\n", info.Date)
			fmt.Fprintf(w, "built by: %s\n", info.BuiltBy)
			fmt.Fprintf(w, "go version: %s\n", info.GoVersion)
			fmt.Fprintf(w, "platform: %s\n", info.Platform)
			return nil
		},
	}
}
