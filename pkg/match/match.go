// Package match decides which catalog product an order line refers to.
//
// Two paths are provided and they deliberately use different primitives.
// AutoMatch is high precision: it only accepts an exact product name or a
// model name contained in the order text. FindMatches is high recall: it ranks
// every product by token-set similarity for a human to choose from.
//
// Both paths traverse tables in catalog declaration order and rows in row
// order. AutoMatch is greedy: the first satisfying row wins.
package match

import (
	"context"

	"github.com/agentstation/ordermatch/pkg/catalogs"
	"github.com/agentstation/ordermatch/pkg/columns"
)

// Method records how a decision was reached.
type Method string

// Match methods.
const (
	MethodExactName      Method = "exact-name"
	MethodModelSubstring Method = "exact-model-substring"
	MethodManual         Method = "manual"
	MethodNone           Method = "none"
)

// Label returns the text written to the ledger's method column.
func (m Method) Label() string {
	switch m {
	case MethodExactName:
		return "100%일치"
	case MethodModelSubstring:
		return "모델명100%일치"
	case MethodManual:
		return "수동매칭"
	default:
		return ""
	}
}

// Automatic reports whether the method is produced without human input.
func (m Method) Automatic() bool {
	return m == MethodExactName || m == MethodModelSubstring
}

// Trace records which tier resolved each traced field, keyed by columns.Field.Key.
type Trace map[string]columns.Resolution

// Candidate is one product proposed for an order line.
type Candidate struct {
	Table      string           `json:"table" yaml:"table"`
	Name       string           `json:"name" yaml:"name"`
	Similarity float64          `json:"similarity" yaml:"similarity"`
	Product    catalogs.Product `json:"product" yaml:"product"`
	Trace      Trace            `json:"-" yaml:"-"`
}

// SupplyTier returns the label of the tier that resolved the supply price, or "none".
func (c *Candidate) SupplyTier() string {
	if c == nil {
		return columns.TierNone.String()
	}
	return c.Trace[columns.SupplyPrice.Key].Label()
}

// Decision is the outcome of matching one ledger row.
type Decision struct {
	Row       int
	Candidate *Candidate
	Method    Method
	Trace     Trace
}

// Matched reports whether the decision carries a product to commit.
func (d Decision) Matched() bool {
	return d.Candidate != nil && d.Method != MethodNone
}

// Decide runs AutoMatch for the order text of one ledger row.
func Decide(ctx context.Context, row int, query string, cat *catalogs.Catalog) Decision {
	c, method := AutoMatchContext(ctx, query, cat)
	d := Decision{Row: row, Candidate: c, Method: method}
	if c != nil {
		d.Trace = c.Trace
	}
	return d
}

// Manual turns a chosen candidate into a decision for row.
func Manual(row int, c Candidate) Decision {
	return Decision{Row: row, Candidate: &c, Method: MethodManual, Trace: c.Trace}
}

func newCandidate(t *catalogs.Table, r catalogs.Record, similarity float64) *Candidate {
	p := t.Product(r)
	return &Candidate{
		Table:      t.Name,
		Name:       p.Name,
		Similarity: similarity,
		Product:    p,
		Trace: Trace{
			columns.SupplyPrice.Key: t.Resolution(columns.SupplyPrice),
		},
	}
}
