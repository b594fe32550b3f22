// Package catalogs holds the product catalog snapshot matched against order lines.
//
// A Catalog is an ordered set of named tables, one per workbook tab. Each table
// carries its own header, and the logical product fields are resolved per table
// through the columns package because headers drift between tabs. A snapshot is
// built once per session and is read-only afterwards.
//
// Example usage:
//
//	cat := catalogs.New(
//	    catalogs.NewTable("가전", []string{"상품명", "공급가"}, rows),
//	)
//	for _, t := range cat.Tables() {
//	    for _, r := range t.Records() {
//	        p := t.Product(r)
//	        fmt.Println(p.Name, p.SupplyPrice)
//	    }
//	}
package catalogs

// Catalog is an ordered, immutable set of tables. Declaration order is the
// tie-break order used by matching.
type Catalog struct {
	tables []*Table
	byName map[string]*Table
}

// New creates a catalog from tables in declaration order. Nil tables are ignored;
// when two tables share a name the first is reachable through Table.
func New(tables ...*Table) *Catalog {
	c := &Catalog{
		tables: make([]*Table, 0, len(tables)),
		byName: make(map[string]*Table, len(tables)),
	}
	for _, t := range tables {
		if t == nil {
			continue
		}
		c.tables = append(c.tables, t)
		if _, exists := c.byName[t.Name]; !exists {
			c.byName[t.Name] = t
		}
	}
	return c
}

// Tables returns the tables in declaration order.
func (c *Catalog) Tables() []*Table {
	if c == nil {
		return nil
	}
	return c.tables
}

// Table returns a table by name and whether it exists.
func (c *Catalog) Table(name string) (*Table, bool) {
	if c == nil {
		return nil, false
	}
	t, ok := c.byName[name]
	return t, ok
}

// Names returns the table names in declaration order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Tables()))
	for _, t := range c.Tables() {
		names = append(names, t.Name)
	}
	return names
}

// Len returns the total number of records across all tables.
func (c *Catalog) Len() int {
	n := 0
	for _, t := range c.Tables() {
		n += t.Len()
	}
	return n
}

// Products resolves every record with a non-empty product name, in table and row order.
func (c *Catalog) Products() []Product {
	var out []Product
	for _, t := range c.Tables() {
		for _, r := range t.Records() {
			if p := t.Product(r); p.Name != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
