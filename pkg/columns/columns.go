// Package columns resolves logical catalog fields to physical column names.
//
// Catalog tabs are maintained independently and their headers drift, so a
// logical field such as "supply price" is described by a list of aliases and
// resolved against each table's header in three tiers: exact name, normalized
// name and, for fields that opt in, fuzzy name.
package columns

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agentstation/ordermatch/pkg/constants"
	"github.com/agentstation/ordermatch/pkg/normalize"
	"github.com/agentstation/ordermatch/pkg/similarity"
)

// Tier identifies the strategy that resolved a column.
type Tier int

// Resolution tiers, in evaluation order.
const (
	TierNone Tier = iota
	TierExact
	TierNormalized
	TierFuzzy
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierNormalized:
		return "normalized"
	case TierFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// Resolution is the outcome of resolving one logical field against a schema.
// Index is the zero-based position of Column in the schema, or -1.
type Resolution struct {
	Column string
	Index  int
	Tier   Tier
	Ratio  float64
}

// Found reports whether a column was resolved.
func (r Resolution) Found() bool {
	return r.Tier != TierNone
}

// Label renders the tier for traces and logs; fuzzy tiers carry the integer ratio.
func (r Resolution) Label() string {
	if r.Tier == TierFuzzy {
		return fmt.Sprintf("%s:%d", r.Tier, int(r.Ratio))
	}
	return r.Tier.String()
}

var none = Resolution{Index: -1}

// minPartialRunes keeps one-syllable aliases from matching any header that contains them.
const minPartialRunes = 2

// qualifiers turn a header into a different figure when appended to an alias:
// 매출원가 is cost of sales, not sales.
var qualifiers = []string{"원가", "매입", "입고"}

type step struct {
	tier  Tier
	match func(column string, normColumn string) (bool, float64)
}

// Resolve finds the column of schema that supplies a field known by aliases.
// Tiers are evaluated in order and within a tier the first schema column wins.
// Tier 3 is attempted only when useFuzzy is set and accepts a column whose best
// header score against any alias is at least 95. Header score is the larger of
// the full-string ratio and, when the alias starts the column name and the
// rest of the name carries no qualifier such as 원가, the best aligned-substring
// ratio of the normalized names.
func Resolve(schema []string, aliases []string, useFuzzy bool) Resolution {
	if len(schema) == 0 || len(aliases) == 0 {
		return none
	}

	literal := make(map[string]struct{}, len(aliases))
	normalized := make([]string, 0, len(aliases))
	for _, a := range aliases {
		literal[a] = struct{}{}
		if n := normalize.String(a); n != "" {
			normalized = append(normalized, n)
		}
	}

	steps := []step{
		{TierExact, func(column, _ string) (bool, float64) {
			_, ok := literal[column]
			return ok, 100
		}},
		{TierNormalized, func(_, normColumn string) (bool, float64) {
			if normColumn == "" {
				return false, 0
			}
			for _, n := range normalized {
				if n == normColumn {
					return true, 100
				}
			}
			return false, 0
		}},
	}
	if useFuzzy {
		steps = append(steps, step{TierFuzzy, func(_, normColumn string) (bool, float64) {
			if normColumn == "" {
				return false, 0
			}
			best := 0.0
			for _, n := range normalized {
				best = max(best, headerScore(normColumn, n))
			}
			return best >= constants.FuzzyColumnThreshold, best
		}})
	}

	normSchema := make([]string, len(schema))
	for i, col := range schema {
		normSchema[i] = normalize.String(col)
	}

	for _, s := range steps {
		for i, col := range schema {
			if ok, ratio := s.match(col, normSchema[i]); ok {
				return Resolution{Column: col, Index: i, Tier: s.tier, Ratio: ratio}
			}
		}
	}
	return none
}

func headerScore(column, alias string) float64 {
	score := similarity.Ratio(column, alias)
	if partialAllowed(column, alias) {
		score = max(score, similarity.PartialRatio(column, alias))
	}
	return score
}

func partialAllowed(column, alias string) bool {
	if min(utf8.RuneCountInString(column), utf8.RuneCountInString(alias)) < minPartialRunes {
		return false
	}
	rest, ok := strings.CutPrefix(column, alias)
	if !ok {
		return false
	}
	for _, q := range qualifiers {
		if strings.Contains(rest, q) {
			return false
		}
	}
	return true
}
