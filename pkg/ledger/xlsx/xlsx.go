// Package xlsx implements a ledger backed by a local Excel workbook.
//
// Each batch is staged in memory and persisted with a single save. When a
// batch fails the workbook is reloaded from disk so that no staged cell leaks
// into a later save.
package xlsx

import (
	"context"
	"fmt"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/agentstation/ordermatch/pkg/constants"
	"github.com/agentstation/ordermatch/pkg/errors"
	"github.com/agentstation/ordermatch/pkg/ledger"
)

var (
	_ ledger.Ledger  = (*Ledger)(nil)
	_ ledger.Locator = (*Ledger)(nil)
)

// Ledger reads and writes one worksheet of a workbook file.
type Ledger struct {
	mu    sync.Mutex
	path  string
	sheet string
	file  *excelize.File
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithSheet selects the worksheet. The default is constants.DefaultWorksheet.
func WithSheet(sheet string) Option {
	return func(l *Ledger) {
		if sheet != "" {
			l.sheet = sheet
		}
	}
}

// Open opens the workbook at path. The worksheet must exist.
func Open(path string, opts ...Option) (*Ledger, error) {
	l := &Ledger{path: path, sheet: constants.DefaultWorksheet}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.reload(); err != nil {
		return nil, err
	}
	idx, err := l.file.GetSheetIndex(l.sheet)
	if err != nil || idx < 0 {
		_ = l.file.Close()
		return nil, errors.NewNotFoundError("worksheet", l.sheet)
	}
	return l, nil
}

// Close releases the workbook.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// URL returns the workbook path.
func (l *Ledger) URL() string {
	return l.path
}

// Header implements ledger.Ledger.
func (l *Ledger) Header(_ context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rows, err := l.file.GetRows(l.sheet)
	if err != nil {
		return nil, errors.WrapResource("read", "worksheet", l.sheet, err)
	}
	if len(rows) == 0 {
		return []string{}, nil
	}
	return rows[0], nil
}

// SetHeader implements ledger.Ledger.
func (l *Ledger) SetHeader(_ context.Context, header []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := l.file.SetSheetRow(l.sheet, "A1", &row); err != nil {
		return l.abort("write", err)
	}
	return l.save()
}

// Rows implements ledger.Ledger. Rows are padded to the header width.
func (l *Ledger) Rows(_ context.Context) ([][]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rows, err := l.file.GetRows(l.sheet)
	if err != nil {
		return nil, errors.WrapResource("read", "worksheet", l.sheet, err)
	}
	if len(rows) <= 1 {
		return [][]string{}, nil
	}
	width := len(rows[0])
	body := rows[1:]
	for i, r := range body {
		for len(r) < width {
			r = append(r, "")
		}
		body[i] = r
	}
	return body, nil
}

// WriteCells implements ledger.Ledger.
func (l *Ledger) WriteCells(_ context.Context, updates []ledger.CellUpdate) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cells := make([]string, len(updates))
	for i, u := range updates {
		name, err := ledger.CellName(u.Row, u.Column)
		if err != nil {
			return errors.WrapValidation("cell", err)
		}
		cells[i] = name
	}
	for i, u := range updates {
		if err := l.file.SetCellValue(l.sheet, cells[i], u.Value); err != nil {
			return l.abort("write", err)
		}
	}
	return l.save()
}

// ApplyFormats implements ledger.Ledger. Formats sharing a style reuse one style id.
func (l *Ledger) ApplyFormats(_ context.Context, formats []ledger.Format) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	styles := make(map[string]int)
	for _, f := range formats {
		key := styleKey(f)
		id, ok := styles[key]
		if !ok {
			var err error
			id, err = l.file.NewStyle(toStyle(f))
			if err != nil {
				return l.abort("format", err)
			}
			styles[key] = id
		}
		start, err := ledger.CellName(f.Row, f.StartColumn)
		if err != nil {
			return l.abort("format", err)
		}
		end, err := ledger.CellName(f.Row, f.EndColumn)
		if err != nil {
			return l.abort("format", err)
		}
		if err := l.file.SetCellStyle(l.sheet, start, end, id); err != nil {
			return l.abort("format", err)
		}
	}
	return l.save()
}

// StyleAt returns the fill and font colors and boldness of a cell, for inspection.
func (l *Ledger) StyleAt(row, column int) (fill string, font string, bold bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cell, err := ledger.CellName(row, column)
	if err != nil {
		return "", "", false, err
	}
	id, err := l.file.GetCellStyle(l.sheet, cell)
	if err != nil {
		return "", "", false, err
	}
	style, err := l.file.GetStyle(id)
	if err != nil || style == nil {
		return "", "", false, err
	}
	if len(style.Fill.Color) > 0 {
		fill = style.Fill.Color[0]
	}
	if style.Font != nil {
		font = style.Font.Color
		bold = style.Font.Bold
	}
	return fill, font, bold, nil
}

func toStyle(f ledger.Format) *excelize.Style {
	s := &excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{f.Background.Hex()}},
	}
	if f.Foreground != nil || f.Bold {
		s.Font = &excelize.Font{Bold: f.Bold}
		if f.Foreground != nil {
			s.Font.Color = f.Foreground.Hex()
		}
	}
	return s
}

func styleKey(f ledger.Format) string {
	key := f.Background.Hex()
	if f.Foreground != nil {
		key += "/" + f.Foreground.Hex()
	}
	if f.Bold {
		key += "/b"
	}
	return key
}

func (l *Ledger) save() error {
	if err := l.file.Save(); err != nil {
		return l.abort("save", err)
	}
	return nil
}

// abort discards staged changes by reloading the workbook and returns err wrapped.
func (l *Ledger) abort(op string, err error) error {
	if rerr := l.reload(); rerr != nil {
		return errors.WrapIO(op, l.path, fmt.Errorf("%w; reload: %v", err, rerr))
	}
	return errors.WrapIO(op, l.path, err)
}

func (l *Ledger) reload() error {
	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return errors.WrapIO("open", l.path, err)
	}
	if l.file != nil {
		_ = l.file.Close()
	}
	l.file = f
	return nil
}
