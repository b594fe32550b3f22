// Package orders reads order lines from the ledger.
package orders

import (
	"context"
	"strings"

	"github.com/agentstation/ordermatch/pkg/constants"
	"github.com/agentstation/ordermatch/pkg/errors"
	"github.com/agentstation/ordermatch/pkg/ledger"
)

// Line is one order line of the ledger.
type Line struct {
	// Row is the 1-based ledger row; the first order line is row 2.
	Row int `json:"row" yaml:"row"`
	// Text is the free-text order description from the 상품명 column.
	Text string `json:"text" yaml:"text"`
	// Matched is the committed product name, empty while unreconciled.
	Matched string `json:"matched,omitempty" yaml:"matched,omitempty"`
}

// Pending reports whether the line has no committed match.
func (l Line) Pending() bool {
	return l.Matched == ""
}

// Load reads every order line. The ledger must have a 상품명 column.
func Load(ctx context.Context, l ledger.Ledger) ([]Line, error) {
	header, err := l.Header(ctx)
	if err != nil {
		return nil, err
	}
	nameCol := ledger.ColumnIndex(header, constants.OrderNameColumn)
	if nameCol == 0 {
		return nil, errors.NewValidationError("header", header, "missing "+constants.OrderNameColumn+" column")
	}
	matchedCol := ledger.ColumnIndex(header, ledger.ColumnMatchedName)

	rows, err := l.Rows(ctx)
	if err != nil {
		return nil, err
	}
	lines := make([]Line, 0, len(rows))
	for i, r := range rows {
		line := Line{
			Row:  i + constants.FirstDataRow,
			Text: strings.TrimSpace(ledger.Cell(r, nameCol)),
		}
		if matchedCol > 0 {
			line.Matched = strings.TrimSpace(ledger.Cell(r, matchedCol))
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Pending reads the order lines that have order text and no committed match.
func Pending(ctx context.Context, l ledger.Ledger) ([]Line, error) {
	all, err := Load(ctx, l)
	if err != nil {
		return nil, err
	}
	pending := make([]Line, 0, len(all))
	for _, line := range all {
		if line.Pending() && line.Text != "" {
			pending = append(pending, line)
		}
	}
	return pending, nil
}

// Find returns the line at a ledger row.
func Find(lines []Line, row int) (Line, bool) {
	for _, l := range lines {
		if l.Row == row {
			return l, true
		}
	}
	return Line{}, false
}
