package match

import (
	"context"
	"strings"

	"github.com/agentstation/ordermatch/pkg/catalogs"
	"github.com/agentstation/ordermatch/pkg/columns"
	"github.com/agentstation/ordermatch/pkg/logging"
	"github.com/agentstation/ordermatch/pkg/normalize"
)

// AutoMatch decides whether query unambiguously names a catalog row.
//
// The exact tier accepts a row whose trimmed product name equals the trimmed
// query, case-sensitively. The model tier accepts a row whose normalized model
// name is a non-empty substring of the normalized query. The exact tier is
// checked across the whole catalog before the model tier, so an exact name
// always wins over a model hit in an earlier table. Tables without a product
// name column are skipped. A nil candidate is returned with MethodNone when
// nothing qualifies.
func AutoMatch(query string, cat *catalogs.Catalog) (*Candidate, Method) {
	return AutoMatchContext(context.Background(), query, cat)
}

// AutoMatchContext is AutoMatch logging through the context logger.
func AutoMatchContext(ctx context.Context, query string, cat *catalogs.Catalog) (*Candidate, Method) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, MethodNone
	}

	if c := scan(ctx, cat, func(_ *catalogs.Table, _ catalogs.Record, name string) bool {
		return name == q
	}); c != nil {
		return c, MethodExactName
	}

	nq := normalize.String(q)
	if nq == "" {
		return nil, MethodNone
	}
	if c := scan(ctx, cat, func(t *catalogs.Table, r catalogs.Record, _ string) bool {
		model := normalize.String(t.Value(r, columns.Model))
		return model != "" && strings.Contains(nq, model)
	}); c != nil {
		return c, MethodModelSubstring
	}

	return nil, MethodNone
}

// scan returns the first row, in declaration order, with a product name that
// satisfies accept.
func scan(ctx context.Context, cat *catalogs.Catalog, accept func(*catalogs.Table, catalogs.Record, string) bool) *Candidate {
	for _, t := range cat.Tables() {
		if !t.Resolution(columns.ProductName).Found() {
			logging.FromContext(logging.WithTable(ctx, t.Name)).Debug().Msg("Skipping table without product name column")
			continue
		}
		for _, r := range t.Records() {
			name := t.Value(r, columns.ProductName)
			if name == "" {
				continue
			}
			if accept(t, r, name) {
				return newCandidate(t, r, 100)
			}
		}
	}
	return nil
}
