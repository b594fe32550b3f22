// Package cmdutil provides shared flags and lookups for ordermatch commands.
package cmdutil

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/ordermatch/internal/appcontext"
	"github.com/agentstation/ordermatch/pkg/constants"
	"github.com/agentstation/ordermatch/pkg/errors"
	"github.com/agentstation/ordermatch/pkg/ledger"
	"github.com/agentstation/ordermatch/pkg/orders"
)

// RankFlags holds the candidate ranking flags.
type RankFlags struct {
	Threshold float64
	Top       int
	Wide      bool
}

// AddRankFlags adds ranking flags to a command. Zero values fall back to
// the configured settings.
func AddRankFlags(cmd *cobra.Command) *RankFlags {
	flags := &RankFlags{}

	cmd.Flags().Float64VarP(&flags.Threshold, "threshold", "t", 0,
		"minimum similarity score 0-100 (default from config)")
	cmd.Flags().IntVarP(&flags.Top, "top", "n", 0,
		"maximum number of candidates (default from config)")
	cmd.Flags().BoolVarP(&flags.Wide, "wide", "w", false,
		"show model, vendor, margin and supply column")

	return flags
}

// Resolve returns the effective threshold and limit.
func (f *RankFlags) Resolve(cmd *cobra.Command, settings appcontext.Settings) (float64, int, error) {
	threshold, top := settings.Threshold, settings.TopN
	if cmd.Flags().Changed("threshold") {
		if f.Threshold < 0 || f.Threshold > 100 {
			return 0, 0, errors.NewValidationError("threshold", f.Threshold, "must be within [0, 100]")
		}
		threshold = f.Threshold
	}
	if cmd.Flags().Changed("top") {
		if f.Top < 0 {
			return 0, 0, errors.NewValidationError("top", f.Top, "cannot be negative")
		}
		top = f.Top
	}
	return threshold, top, nil
}

// ParseRow parses a 1-based ledger row argument.
func ParseRow(s string) (int, error) {
	row, err := strconv.Atoi(s)
	if err != nil || row < constants.FirstDataRow {
		return 0, errors.NewValidationError("row", s, "must be a data row number (2 or greater)")
	}
	return row, nil
}

// OrderLine opens the ledger and returns the order line at row.
func OrderLine(ctx context.Context, app appcontext.Interface, row int) (ledger.Ledger, orders.Line, error) {
	l, err := app.Ledger(ctx)
	if err != nil {
		return nil, orders.Line{}, err
	}
	lines, err := orders.Load(ctx, l)
	if err != nil {
		return nil, orders.Line{}, err
	}
	line, ok := orders.Find(lines, row)
	if !ok {
		return nil, orders.Line{}, errors.NewNotFoundError("order row", strconv.Itoa(row))
	}
	return l, line, nil
}
