// Package reconciler commits match decisions to the ledger.
//
// A commit is idempotent per row: rows whose matched-product cell is already
// filled are never written again, so a pass can be repeated after a partial
// failure. All cell writes of a commit go out as one batch and all formats as
// a second batch. Appending missing result columns to the header is the only
// other write and happens only when the header is incomplete.
package reconciler

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/ordermatch/pkg/constants"
	"github.com/agentstation/ordermatch/pkg/errors"
	"github.com/agentstation/ordermatch/pkg/ledger"
	"github.com/agentstation/ordermatch/pkg/logging"
	"github.com/agentstation/ordermatch/pkg/match"
)

// Writer commits decisions to a ledger.
type Writer interface {
	// Commit writes decisions and returns the number of rows written. A failed
	// write batch returns 0 and a *errors.CommitError.
	Commit(ctx context.Context, decisions []match.Decision) (int, error)

	// Reconcile is Commit with a detailed result.
	Reconcile(ctx context.Context, decisions []match.Decision) (*Result, error)
}

type writer struct {
	ledger  ledger.Ledger
	options *options
}

// New creates a Writer for l.
func New(l ledger.Ledger, opts ...Option) (Writer, error) {
	if l == nil {
		return nil, &errors.ValidationError{Field: "ledger", Message: "cannot be nil"}
	}
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &writer{ledger: l, options: o}, nil
}

// Commit implements Writer.
func (w *writer) Commit(ctx context.Context, decisions []match.Decision) (int, error) {
	result, err := w.Reconcile(ctx, decisions)
	if err != nil {
		return 0, err
	}
	return result.Count(), nil
}

// layout is the 1-based position of each result column in the extended header.
type layout struct {
	width  int
	name   int
	buy    int
	sell   int
	vendor int
	table  int
	method int
}

func newLayout(header []string) layout {
	return layout{
		width:  len(header),
		name:   ledger.ColumnIndex(header, ledger.ColumnMatchedName),
		buy:    ledger.ColumnIndex(header, ledger.ColumnPurchasePrice),
		sell:   ledger.ColumnIndex(header, ledger.ColumnSupplyPrice),
		vendor: ledger.ColumnIndex(header, ledger.ColumnVendor),
		table:  ledger.ColumnIndex(header, ledger.ColumnTable),
		method: ledger.ColumnIndex(header, ledger.ColumnMethod),
	}
}

// Reconcile implements Writer.
func (w *writer) Reconcile(ctx context.Context, decisions []match.Decision) (*Result, error) {
	logger := w.logger(ctx)
	ctx = logging.WithLogger(ctx, logger)
	result := NewResult()
	result.Metadata.DryRun = w.options.dryRun
	defer result.Finalize()

	matched := make([]match.Decision, 0, len(decisions))
	for _, d := range decisions {
		if !d.Matched() {
			result.Ignored = append(result.Ignored, d.Row)
			continue
		}
		matched = append(matched, d)
	}
	if len(matched) == 0 {
		return result, nil
	}

	// Step 1: ensure result columns
	header, err := w.ledger.Header(ctx)
	if err != nil {
		return nil, errors.WrapResource("read", "ledger", "header", err)
	}
	header, changed := ledger.EnsureColumns(header, ledger.ResultColumns()...)
	if changed && !w.options.dryRun {
		if err := w.ledger.SetHeader(ctx, header); err != nil {
			return nil, errors.NewCommitError(nil, err)
		}
		logger.Info().Strs("columns", header).Msg("Ledger header extended")
	}
	result.HeaderExtended = changed
	cols := newLayout(header)

	// Step 2: rows already reconciled
	reconciled, err := w.reconciledRows(ctx, cols)
	if err != nil {
		return nil, err
	}

	// Steps 3-5: stage writes and formats
	var (
		updates []ledger.CellUpdate
		formats []ledger.Format
		seen    = make(map[int]bool, len(matched))
	)
	for _, d := range matched {
		rowLogger := logging.FromContext(logging.WithRow(ctx, d.Row))
		switch {
		case d.Row < constants.FirstDataRow:
			rowLogger.Warn().Msg("Ignoring decision for non-data row")
			result.Ignored = append(result.Ignored, d.Row)
			continue
		case seen[d.Row]:
			rowLogger.Debug().Msg("Ignoring repeated decision")
			result.Ignored = append(result.Ignored, d.Row)
			continue
		case reconciled[d.Row]:
			rowLogger.Debug().Msg("Row already matched, skipping")
			result.Skipped = append(result.Skipped, d.Row)
			seen[d.Row] = true
			continue
		}
		seen[d.Row] = true

		updates = append(updates, stage(d, cols)...)
		result.Committed = append(result.Committed, d.Row)
		result.Entries = append(result.Entries, Entry{
			Row:        d.Row,
			Product:    d.Candidate.Name,
			Table:      d.Candidate.Table,
			Method:     d.Method,
			SupplyTier: d.Candidate.SupplyTier(),
		})

		if strings.Contains(d.Candidate.Table, w.options.soldOutMarker) {
			result.SoldOut = append(result.SoldOut, d.Row)
			formats = append(formats, soldOutFormats(d.Row, cols)...)
		}
	}

	if len(updates) == 0 || w.options.dryRun {
		return result, nil
	}

	// Step 6: one write batch, then one format batch
	if err := w.ledger.WriteCells(ctx, updates); err != nil {
		rows := result.Committed
		logger.Error().Err(err).Ints("rows", rows).Msg("Commit failed")
		return nil, errors.NewCommitError(rows, err)
	}

	if w.options.formatting && len(formats) > 0 {
		if err := w.ledger.ApplyFormats(ctx, formats); err != nil {
			ferr := &errors.FormattingError{Rows: result.SoldOut, Err: err}
			result.FormattingErr = ferr
			logger.Warn().Err(ferr).Msg("Sold-out formatting failed")
		}
	}

	logger.Info().
		Int("committed", len(result.Committed)).
		Int("skipped", len(result.Skipped)).
		Int("sold_out", len(result.SoldOut)).
		Msg("Matches committed")
	return result, nil
}

func (w *writer) reconciledRows(ctx context.Context, cols layout) (map[int]bool, error) {
	rows, err := w.ledger.Rows(ctx)
	if err != nil {
		return nil, errors.WrapResource("read", "ledger", "rows", err)
	}
	done := make(map[int]bool)
	for i, r := range rows {
		if strings.TrimSpace(ledger.Cell(r, cols.name)) != "" {
			done[i+constants.FirstDataRow] = true
		}
	}
	return done, nil
}

func stage(d match.Decision, cols layout) []ledger.CellUpdate {
	p := d.Candidate.Product
	name := d.Candidate.Name
	if name == "" {
		name = p.Name
	}
	return []ledger.CellUpdate{
		{Row: d.Row, Column: cols.name, Value: name},
		{Row: d.Row, Column: cols.buy, Value: p.PurchasePrice},
		{Row: d.Row, Column: cols.sell, Value: p.SupplyPrice},
		{Row: d.Row, Column: cols.vendor, Value: p.Vendor},
		{Row: d.Row, Column: cols.table, Value: d.Candidate.Table},
		{Row: d.Row, Column: cols.method, Value: d.Method.Label()},
	}
}

func soldOutFormats(row int, cols layout) []ledger.Format {
	return []ledger.Format{
		{Row: row, StartColumn: 1, EndColumn: cols.width, Background: ledger.LightRed},
		{Row: row, StartColumn: cols.table, EndColumn: cols.table, Background: ledger.Red, Foreground: &ledger.White, Bold: true},
	}
}

func (w *writer) logger(ctx context.Context) *zerolog.Logger {
	if w.options.logger != nil {
		return w.options.logger
	}
	return logging.FromContext(ctx)
}
