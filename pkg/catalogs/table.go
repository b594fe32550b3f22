package catalogs

import (
	"strings"
	"sync"

	"github.com/agentstation/ordermatch/pkg/columns"
)

// Record is one catalog row. Values are positional against the table header.
type Record struct {
	columns []string
	values  []string
}

// NewRecord creates a record over header. values shorter than header are padded
// with empty cells; extra values are dropped.
func NewRecord(header []string, values []string) Record {
	v := make([]string, len(header))
	copy(v, values)
	return Record{columns: header, values: v}
}

// Get returns the value of the first column named column, or "".
func (r Record) Get(column string) string {
	for i, c := range r.columns {
		if c == column {
			return r.values[i]
		}
	}
	return ""
}

// At returns the value at a zero-based column index, or "" when out of range.
func (r Record) At(index int) string {
	if index < 0 || index >= len(r.values) {
		return ""
	}
	return r.values[index]
}

// Values returns the raw cell values.
func (r Record) Values() []string {
	return r.values
}

// Map returns the record as column→value; on duplicate headers the first column wins.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r.columns))
	for i, c := range r.columns {
		if _, exists := m[c]; !exists {
			m[c] = r.values[i]
		}
	}
	return m
}

// Table is a named tab of records sharing one header.
type Table struct {
	Name    string
	Columns []string

	records []Record

	once    sync.Once
	resolve map[string]columns.Resolution
}

// NewTable creates a table from a header and raw rows. Rows are padded to the
// header width.
func NewTable(name string, header []string, rows [][]string) *Table {
	t := &Table{
		Name:    name,
		Columns: header,
		records: make([]Record, 0, len(rows)),
	}
	for _, row := range rows {
		t.records = append(t.records, NewRecord(header, row))
	}
	return t
}

// Records returns the records in row order.
func (t *Table) Records() []Record {
	return t.records
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Resolution returns the cached resolution of a logical field for this table's header.
func (t *Table) Resolution(f columns.Field) columns.Resolution {
	t.once.Do(func() {
		t.resolve = make(map[string]columns.Resolution)
		for _, field := range columns.Fields() {
			t.resolve[field.Key] = field.Resolve(t.Columns)
		}
	})
	if res, ok := t.resolve[f.Key]; ok {
		return res
	}
	return f.Resolve(t.Columns)
}

// Value returns the trimmed value of a logical field in r, or "" when the
// field does not resolve in this table.
func (t *Table) Value(r Record, f columns.Field) string {
	res := t.Resolution(f)
	if !res.Found() {
		return ""
	}
	return strings.TrimSpace(r.At(res.Index))
}

// Product resolves every logical field of r.
func (t *Table) Product(r Record) Product {
	return Product{
		Table:         t.Name,
		Name:          t.Value(r, columns.ProductName),
		Model:         t.Value(r, columns.Model),
		PurchasePrice: t.Value(r, columns.PurchasePrice),
		SupplyPrice:   t.Value(r, columns.SupplyPrice),
		Vendor:        t.Value(r, columns.Vendor),
		Image:         t.Value(r, columns.Image),
		Option:        t.Value(r, columns.Option),
	}
}
