// Package ledger defines the row-oriented store that holds order lines and
// their match results.
//
// Addressing follows the spreadsheet convention: rows and columns are 1-based,
// the header occupies row 1 and the first order line is row 2. Implementations
// live in subpackages: memory (tests), xlsx (a local workbook) and sheets
// (Google Sheets).
package ledger

import (
	"context"

	"github.com/xuri/excelize/v2"
)

// Ledger is an authenticated handle to the order ledger.
type Ledger interface {
	// Header returns the header row.
	Header(ctx context.Context) ([]string, error)

	// SetHeader replaces the header row. Callers only ever append names.
	SetHeader(ctx context.Context, header []string) error

	// Rows returns every row below the header. Rows[i] is ledger row i+2.
	Rows(ctx context.Context) ([][]string, error)

	// WriteCells writes all updates as one batch.
	WriteCells(ctx context.Context, updates []CellUpdate) error

	// ApplyFormats applies all formats as one batch.
	ApplyFormats(ctx context.Context, formats []Format) error
}

// Locator is implemented by ledgers that can be opened in a browser.
type Locator interface {
	URL() string
}

// CellUpdate sets one cell. Row and Column are 1-based.
type CellUpdate struct {
	Row    int
	Column int
	Value  string
}

// Color is an RGB color with components in [0, 1].
type Color struct {
	Red   float64
	Green float64
	Blue  float64
}

// Common colors.
var (
	White    = Color{Red: 1, Green: 1, Blue: 1}
	Red      = Color{Red: 1}
	LightRed = Color{Red: 1, Green: 0.8, Blue: 0.8}
)

// Hex renders the color as RRGGBB.
func (c Color) Hex() string {
	const digits = "0123456789ABCDEF"
	out := make([]byte, 0, 6)
	for _, v := range []float64{c.Red, c.Green, c.Blue} {
		b := int(v*255 + 0.5)
		b = max(0, min(255, b))
		out = append(out, digits[b>>4], digits[b&0x0F])
	}
	return string(out)
}

// Format styles the cells of one row from StartColumn to EndColumn inclusive.
// A nil Foreground leaves the text color unchanged.
type Format struct {
	Row         int
	StartColumn int
	EndColumn   int
	Background  Color
	Foreground  *Color
	Bold        bool
}

// ColumnName converts a 1-based column number to its letter name.
func ColumnName(column int) (string, error) {
	return excelize.ColumnNumberToName(column)
}

// CellName converts 1-based coordinates to an A1 reference.
func CellName(row, column int) (string, error) {
	return excelize.CoordinatesToCellName(column, row)
}

// ColumnIndex returns the 1-based position of name in header, or 0.
func ColumnIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i + 1
		}
	}
	return 0
}

// Cell returns the value of a 1-based column in row, or "" when the row is short.
func Cell(row []string, column int) string {
	if column < 1 || column > len(row) {
		return ""
	}
	return row[column-1]
}
