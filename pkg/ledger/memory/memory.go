// Package memory provides an in-memory ledger for tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/agentstation/ordermatch/pkg/ledger"
)

var _ ledger.Ledger = (*Ledger)(nil)

// Ledger is a thread-safe in-memory ledger. Errors set on WriteErr, FormatErr
// or ReadErr are returned by the matching operations.
type Ledger struct {
	mu      sync.RWMutex
	grid    [][]string
	formats []ledger.Format

	WriteErr  error
	FormatErr error
	ReadErr   error

	// Calls counts invocations per operation name.
	Calls map[string]int
}

// New creates a ledger with header in row 1 followed by rows.
func New(header []string, rows ...[]string) *Ledger {
	grid := make([][]string, 0, len(rows)+1)
	grid = append(grid, slices.Clone(header))
	for _, r := range rows {
		grid = append(grid, slices.Clone(r))
	}
	return &Ledger{grid: grid, Calls: make(map[string]int)}
}

// Header implements ledger.Ledger.
func (l *Ledger) Header(_ context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Calls["header"]++
	if l.ReadErr != nil {
		return nil, l.ReadErr
	}
	return slices.Clone(l.grid[0]), nil
}

// SetHeader implements ledger.Ledger.
func (l *Ledger) SetHeader(_ context.Context, header []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Calls["set_header"]++
	if l.WriteErr != nil {
		return l.WriteErr
	}
	l.grid[0] = slices.Clone(header)
	return nil
}

// Rows implements ledger.Ledger.
func (l *Ledger) Rows(_ context.Context) ([][]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Calls["rows"]++
	if l.ReadErr != nil {
		return nil, l.ReadErr
	}
	out := make([][]string, 0, len(l.grid)-1)
	for _, r := range l.grid[1:] {
		out = append(out, slices.Clone(r))
	}
	return out, nil
}

// WriteCells implements ledger.Ledger. The batch is validated before any cell
// is written.
func (l *Ledger) WriteCells(_ context.Context, updates []ledger.CellUpdate) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Calls["write_cells"]++
	if l.WriteErr != nil {
		return l.WriteErr
	}
	for _, u := range updates {
		if u.Row < 1 || u.Column < 1 {
			return fmt.Errorf("invalid cell %d,%d", u.Row, u.Column)
		}
	}
	for _, u := range updates {
		for len(l.grid) < u.Row {
			l.grid = append(l.grid, nil)
		}
		row := l.grid[u.Row-1]
		for len(row) < u.Column {
			row = append(row, "")
		}
		row[u.Column-1] = u.Value
		l.grid[u.Row-1] = row
	}
	return nil
}

// ApplyFormats implements ledger.Ledger.
func (l *Ledger) ApplyFormats(_ context.Context, formats []ledger.Format) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Calls["apply_formats"]++
	if l.FormatErr != nil {
		return l.FormatErr
	}
	l.formats = append(l.formats, formats...)
	return nil
}

// Cell returns the value at 1-based coordinates, or "".
func (l *Ledger) Cell(row, column int) string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if row < 1 || row > len(l.grid) {
		return ""
	}
	return ledger.Cell(l.grid[row-1], column)
}

// Formats returns every format applied so far.
func (l *Ledger) Formats() []ledger.Format {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.formats)
}

// CallCount returns how many times an operation ran.
func (l *Ledger) CallCount(op string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.Calls[op]
}
