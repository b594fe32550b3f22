package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/agentstation/ordermatch/pkg/match"
	"github.com/agentstation/ordermatch/pkg/orders"
	"github.com/agentstation/ordermatch/pkg/reconciler"
)

const empty = "-"

func orDash(s string) string {
	if s == "" {
		return empty
	}
	return s
}

// CandidatesData renders ranked candidates. Wide output adds the model,
// vendor, margin and the tier that resolved the supply price.
func CandidatesData(cands []match.Candidate, wide bool) Data {
	headers := []string{"#", "Table", "Product", "Similarity", "Purchase", "Supply"}
	align := []Align{AlignRight, AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight}
	if wide {
		headers = append(headers, "Model", "Vendor", "Margin", "Supply Column")
		align = append(align, AlignLeft, AlignLeft, AlignRight, AlignLeft)
	}

	rows := make([][]string, 0, len(cands))
	for i := range cands {
		c := &cands[i]
		row := []string{
			strconv.Itoa(i + 1),
			c.Table,
			c.Name,
			strconv.FormatFloat(c.Similarity, 'f', 1, 64),
			orDash(c.Product.PurchasePrice),
			orDash(c.Product.SupplyPrice),
		}
		if wide {
			margin := empty
			if m, ok := c.Product.Margin(); ok {
				margin = m.StringFixed(0)
			}
			row = append(row, orDash(c.Product.Model), orDash(c.Product.Vendor), margin, c.SupplyTier())
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// LinesData renders order lines.
func LinesData(lines []orders.Line) Data {
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []string{strconv.Itoa(l.Row), l.Text, orDash(l.Matched)})
	}
	return Data{
		Headers:         []string{"Row", "Order", "Matched"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft},
	}
}

// EntriesData renders the match log of a commit.
func EntriesData(entries []reconciler.Entry) Data {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(e.Row),
			e.Product,
			e.Table,
			e.Method.Label(),
			e.SupplyTier,
		})
	}
	return Data{
		Headers:         []string{"Row", "Product", "Table", "Method", "Supply Column"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight},
	}
}

// Write renders data in format. tableData is used for tabular formats and
// raw for the structured ones.
func Write(w io.Writer, format Format, tableData Data, raw any) error {
	if format.Tabular() {
		return NewFormatter(format).Format(w, tableData)
	}
	return NewFormatter(format).Format(w, raw)
}

// Summary prints a one-line result summary for tabular output.
func Summary(w io.Writer, format Format, res *reconciler.Result) error {
	if !format.Tabular() || res == nil {
		return nil
	}
	_, err := fmt.Fprintln(w, res.Summary())
	return err
}
