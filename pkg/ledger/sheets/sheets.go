// Package sheets implements a ledger backed by a Google Sheets worksheet.
//
// Cell writes go through one values:batchUpdate call and formats through one
// spreadsheets:batchUpdate call. Ranges are written in A1 notation with the
// worksheet title quoted, for example '시트1'!F2.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/agentstation/ordermatch/pkg/constants"
	"github.com/agentstation/ordermatch/pkg/errors"
	"github.com/agentstation/ordermatch/pkg/ledger"
	"github.com/agentstation/ordermatch/pkg/logging"
)

var (
	_ ledger.Ledger  = (*Ledger)(nil)
	_ ledger.Locator = (*Ledger)(nil)
)

const (
	valueInputOption = "RAW"
	formatFields     = "userEnteredFormat(backgroundColor,textFormat)"
	spreadsheetMime  = "application/vnd.google-apps.spreadsheet"
)

// Config selects the spreadsheet and worksheet. When SpreadsheetID is empty the
// spreadsheet is looked up on Drive by Title.
type Config struct {
	SpreadsheetID string
	Title         string
	Worksheet     string
}

// Ledger is one worksheet of a Google spreadsheet.
type Ledger struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	worksheet     string
	sheetID       int64
	columnCount   int64
}

// Open creates the Sheets client from opts, resolves the spreadsheet and
// returns a ledger over the configured worksheet.
func Open(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Ledger, error) {
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.NewConfigError("sheets", "create client", err)
	}

	id := cfg.SpreadsheetID
	if id == "" {
		title := cfg.Title
		if title == "" {
			title = constants.DefaultSpreadsheetTitle
		}
		drv, err := drive.NewService(ctx, opts...)
		if err != nil {
			return nil, errors.NewConfigError("drive", "create client", err)
		}
		if id, err = FindSpreadsheet(ctx, drv, title); err != nil {
			return nil, err
		}
	}

	return New(ctx, svc, id, cfg.Worksheet)
}

// New returns a ledger over worksheet of an already opened spreadsheet.
func New(ctx context.Context, svc *sheetsapi.Service, spreadsheetID, worksheet string) (*Ledger, error) {
	if worksheet == "" {
		worksheet = constants.DefaultWorksheet
	}
	l := &Ledger{svc: svc, spreadsheetID: spreadsheetID, worksheet: worksheet}

	ss, err := svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return nil, l.wrap("read", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties == nil || s.Properties.Title != worksheet {
			continue
		}
		l.sheetID = s.Properties.SheetId
		if s.Properties.GridProperties != nil {
			l.columnCount = s.Properties.GridProperties.ColumnCount
		}
		return l, nil
	}
	return nil, errors.NewNotFoundError("worksheet", worksheet)
}

// FindSpreadsheet returns the id of the first non-trashed spreadsheet named title.
func FindSpreadsheet(ctx context.Context, drv *drive.Service, title string) (string, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(title, "'", `\'`), spreadsheetMime)
	list, err := drv.Files.List().
		Q(q).
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", wrapAPI("drive", "list", "spreadsheet", title, err)
	}
	if len(list.Files) == 0 {
		return "", errors.NewNotFoundError("spreadsheet", title)
	}
	return list.Files[0].Id, nil
}

// URL returns the browser URL of the spreadsheet.
func (l *Ledger) URL() string {
	return "https://docs.google.com/spreadsheets/d/" + l.spreadsheetID
}

// Header implements ledger.Ledger.
func (l *Ledger) Header(ctx context.Context) ([]string, error) {
	vr, err := l.svc.Spreadsheets.Values.Get(l.spreadsheetID, l.a1("1:1")).Context(ctx).Do()
	if err != nil {
		return nil, l.wrap("read", err)
	}
	if len(vr.Values) == 0 {
		return []string{}, nil
	}
	return toStrings(vr.Values[0]), nil
}

// SetHeader implements ledger.Ledger. The grid is widened first when the new
// header has more columns than the worksheet.
func (l *Ledger) SetHeader(ctx context.Context, header []string) error {
	if extra := int64(len(header)) - l.columnCount; extra > 0 && l.columnCount > 0 {
		req := &sheetsapi.BatchUpdateSpreadsheetRequest{
			Requests: []*sheetsapi.Request{{
				AppendDimension: &sheetsapi.AppendDimensionRequest{
					SheetId:         l.sheetID,
					Dimension:       "COLUMNS",
					Length:          extra,
					ForceSendFields: []string{"SheetId"},
				},
			}},
		}
		if _, err := l.svc.Spreadsheets.BatchUpdate(l.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return l.wrap("resize", err)
		}
		l.columnCount += extra
	}

	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	vr := &sheetsapi.ValueRange{Values: [][]any{row}}
	_, err := l.svc.Spreadsheets.Values.Update(l.spreadsheetID, l.a1("A1"), vr).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return l.wrap("write", err)
	}
	return nil
}

// Rows implements ledger.Ledger.
func (l *Ledger) Rows(ctx context.Context) ([][]string, error) {
	vr, err := l.svc.Spreadsheets.Values.Get(l.spreadsheetID, l.a1("")).Context(ctx).Do()
	if err != nil {
		return nil, l.wrap("read", err)
	}
	if len(vr.Values) <= 1 {
		return [][]string{}, nil
	}
	rows := make([][]string, 0, len(vr.Values)-1)
	for _, r := range vr.Values[1:] {
		rows = append(rows, toStrings(r))
	}
	return rows, nil
}

// WriteCells implements ledger.Ledger.
func (l *Ledger) WriteCells(ctx context.Context, updates []ledger.CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	data := make([]*sheetsapi.ValueRange, 0, len(updates))
	for _, u := range updates {
		cell, err := ledger.CellName(u.Row, u.Column)
		if err != nil {
			return errors.WrapValidation("cell", err)
		}
		data = append(data, &sheetsapi.ValueRange{
			Range:  l.a1(cell),
			Values: [][]any{{u.Value}},
		})
	}

	req := &sheetsapi.BatchUpdateValuesRequest{
		ValueInputOption: valueInputOption,
		Data:             data,
	}
	resp, err := l.svc.Spreadsheets.Values.BatchUpdate(l.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return l.wrap("write", err)
	}
	logging.FromContext(ctx).Debug().
		Int64("cells", resp.TotalUpdatedCells).
		Str("spreadsheet", l.spreadsheetID).
		Msg("Cells written")
	return nil
}

// ApplyFormats implements ledger.Ledger.
func (l *Ledger) ApplyFormats(ctx context.Context, formats []ledger.Format) error {
	if len(formats) == 0 {
		return nil
	}
	requests := make([]*sheetsapi.Request, 0, len(formats))
	for _, f := range formats {
		requests = append(requests, &sheetsapi.Request{RepeatCell: l.repeatCell(f)})
	}
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{Requests: requests}
	if _, err := l.svc.Spreadsheets.BatchUpdate(l.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return l.wrap("format", err)
	}
	return nil
}

// repeatCell converts a 1-based inclusive format to a 0-based half-open grid range.
func (l *Ledger) repeatCell(f ledger.Format) *sheetsapi.RepeatCellRequest {
	format := &sheetsapi.CellFormat{
		BackgroundColor: toColor(f.Background),
	}
	if f.Foreground != nil || f.Bold {
		format.TextFormat = &sheetsapi.TextFormat{Bold: f.Bold}
		if f.Foreground != nil {
			format.TextFormat.ForegroundColor = toColor(*f.Foreground)
		}
	}
	return &sheetsapi.RepeatCellRequest{
		Range: &sheetsapi.GridRange{
			SheetId:          l.sheetID,
			StartRowIndex:    int64(f.Row - 1),
			EndRowIndex:      int64(f.Row),
			StartColumnIndex: int64(f.StartColumn - 1),
			EndColumnIndex:   int64(f.EndColumn),
			ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
		},
		Cell:   &sheetsapi.CellData{UserEnteredFormat: format},
		Fields: formatFields,
	}
}

// a1 prefixes a range with the quoted worksheet title.
func (l *Ledger) a1(rng string) string {
	title := "'" + strings.ReplaceAll(l.worksheet, "'", "''") + "'"
	if rng == "" {
		return title
	}
	return title + "!" + rng
}

func (l *Ledger) wrap(op string, err error) error {
	return wrapAPI("sheets", op, "spreadsheet", l.spreadsheetID, err)
}

func wrapAPI(service, op, resource, id string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &errors.APIError{
			Service:    service,
			StatusCode: gerr.Code,
			Message:    fmt.Sprintf("%s %s %s: %s", op, resource, id, gerr.Message),
			Err:        err,
		}
	}
	return errors.WrapResource(op, resource, id, err)
}

func toColor(c ledger.Color) *sheetsapi.Color {
	return &sheetsapi.Color{
		Red:             c.Red,
		Green:           c.Green,
		Blue:            c.Blue,
		ForceSendFields: []string{"Red", "Green", "Blue"},
	}
}

func toStrings(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}
