// Package workbook loads a product catalog from an Excel workbook.
//
// Every tab becomes a catalogs.Table in workbook order, except tabs matching
// the exclusion patterns (by default the month-end stock tab). The first row
// of a tab is its header and the remaining non-blank rows are records. Tabs
// without records are dropped.
//
// Catalog workbooks often embed one product photo per row, which makes them
// slow to parse. Load strips the embedded media first and falls back to the
// untouched bytes if the stripped archive cannot be read.
package workbook

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/agentstation/ordermatch/internal/matcher"
	"github.com/agentstation/ordermatch/pkg/catalogs"
	"github.com/agentstation/ordermatch/pkg/errors"
	"github.com/agentstation/ordermatch/pkg/logging"
)

// Load reads the workbook at path.
func Load(ctx context.Context, path string, opts ...Option) (*catalogs.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("workbook", path)
		}
		return nil, errors.WrapIO("read", path, err)
	}
	return Parse(ctx, filepath.Base(path), data, opts...)
}

// Read loads a workbook from r. name is used for logging and for deciding
// whether image stripping applies.
func Read(ctx context.Context, name string, r io.Reader, opts ...Option) (*catalogs.Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapIO("read", name, err)
	}
	return Parse(ctx, name, data, opts...)
}

// Parse loads a workbook from its raw bytes.
func Parse(ctx context.Context, name string, data []byte, opts ...Option) (*catalogs.Catalog, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	logger := o.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}
	exclude, err := matcher.NewMultiMatcher(o.exclude, nil)
	if err != nil {
		return nil, errors.WrapValidation("exclude_tabs", err)
	}

	f, err := open(name, data, o, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.Debug().Err(cerr).Str("workbook", name).Msg("close workbook")
		}
	}()

	var tables []*catalogs.Table
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if m := exclude.MatchedBy(sheet); m != nil {
			logger.Debug().
				Str("table", sheet).
				Str("pattern", m.Pattern()).
				Msg("Excluding tab")
			continue
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, errors.WrapParse("xlsx", name+"!"+sheet, err)
		}
		table := buildTable(sheet, rows)
		if table == nil || (table.Len() == 0 && !o.keepEmpty) {
			logger.Debug().Str("table", sheet).Msg("Skipping empty tab")
			continue
		}
		tables = append(tables, table)
	}

	cat := catalogs.New(tables...)
	logger.Info().
		Str("workbook", name).
		Int("tables", len(tables)).
		Int("records", cat.Len()).
		Msg("Loaded catalog")
	return cat, nil
}

func open(name string, data []byte, o *options, logger *zerolog.Logger) (*excelize.File, error) {
	if o.stripImages && Supported(name) {
		stripped, stats, err := Strip(data, o.stripDrawings)
		if err != nil {
			logger.Warn().Err(err).Str("workbook", name).Msg("Image stripping failed, using original file")
		} else if f, err := excelize.OpenReader(bytes.NewReader(stripped)); err != nil {
			logger.Warn().Err(err).Str("workbook", name).Msg("Stripped workbook unreadable, using original file")
		} else {
			logger.Debug().
				Str("workbook", name).
				Int("removed", len(stats.Removed)).
				Int64("saved_bytes", stats.Saved()).
				Msg("Stripped embedded images")
			return f, nil
		}
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WrapParse("xlsx", name, err)
	}
	return f, nil
}

// buildTable turns raw sheet rows into a table. It returns nil for a tab
// without a header.
func buildTable(name string, rows [][]string) *catalogs.Table {
	if len(rows) == 0 || blank(rows[0]) {
		return nil
	}
	header := rows[0]
	body := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		body = append(body, row)
	}
	return catalogs.NewTable(name, header, body)
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
