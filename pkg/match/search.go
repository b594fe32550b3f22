package match

import (
	"strings"

	"github.com/agentstation/ordermatch/pkg/catalogs"
	"github.com/agentstation/ordermatch/pkg/columns"
	"github.com/agentstation/ordermatch/pkg/constants"
	"github.com/agentstation/ordermatch/pkg/orders"
	"github.com/agentstation/ordermatch/pkg/similarity"
)

type entry struct {
	table  *catalogs.Table
	record catalogs.Record
}

// FindMatches ranks every named product in cat against query by token-set
// similarity. Candidates scoring below threshold are dropped, the rest are
// sorted by score descending with ties in catalog order, and at most topN are
// returned (topN <= 0 means all). Similarity is rounded to one decimal.
func FindMatches(query string, cat *catalogs.Catalog, threshold float64, topN int) []Candidate {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	var (
		entries []entry
		names   []string
	)
	for _, t := range cat.Tables() {
		if !t.Resolution(columns.ProductName).Found() {
			continue
		}
		for _, r := range t.Records() {
			name := t.Value(r, columns.ProductName)
			if name == "" {
				continue
			}
			entries = append(entries, entry{table: t, record: r})
			names = append(names, name)
		}
	}

	ranked := similarity.Rank(query, names, threshold, topN)
	out := make([]Candidate, 0, len(ranked))
	for _, rk := range ranked {
		e := entries[rk.Index]
		out = append(out, *newCandidate(e.table, e.record, rk.Score))
	}
	return out
}

// Best returns the single highest ranked candidate scoring at least threshold.
func Best(query string, cat *catalogs.Catalog, threshold float64) (*Candidate, bool) {
	found := FindMatches(query, cat, threshold, 1)
	if len(found) == 0 {
		return nil, false
	}
	return &found[0], true
}

// BestDefault is Best with the default best-match threshold.
func BestDefault(query string, cat *catalogs.Catalog) (*Candidate, bool) {
	return Best(query, cat, constants.BestMatchThreshold)
}

// FindAll ranks candidates for every order line, keyed by ledger row.
func FindAll(lines []orders.Line, cat *catalogs.Catalog, threshold float64, topN int) map[int][]Candidate {
	out := make(map[int][]Candidate, len(lines))
	for _, l := range lines {
		out[l.Row] = FindMatches(l.Text, cat, threshold, topN)
	}
	return out
}
