// Package similarity scores free text against free text.
//
// Two primitives are provided. Ratio is a strict full-string edit-distance
// ratio used for header resolution. TokenSet ignores token order and
// repetition and is used to rank catalog products against order text.
// All scores are in [0, 100].
package similarity

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Ratio returns 100 * (1 - d/max(len(a), len(b))) where d is the Levenshtein
// distance between a and b, measured in runes. Two empty strings score 100.
func Ratio(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(d)/float64(longest))
}

// PartialRatio returns the best Ratio between the shorter string and every
// window of the longer string having the shorter string's length.
func PartialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		if len(long) == 0 {
			return 100
		}
		return 0
	}

	s := string(short)
	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		r := Ratio(s, string(long[i:i+len(short)]))
		if r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

// TokenSet compares the token sets of a and b. Tokens are runs of letters and
// digits, compared case-insensitively. When one set contains the other the
// score is 100; otherwise the best ratio among the sorted intersection and the
// intersection joined with each remainder is returned. The result is symmetric.
func TokenSet(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var sect, onlyA, onlyB []string
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			sect = append(sect, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range tb {
		if _, ok := ta[tok]; !ok {
			onlyB = append(onlyB, tok)
		}
	}

	if len(sect) > 0 && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 100
	}

	sortedSect := joinSorted(sect)
	diffA := joinSorted(onlyA)
	diffB := joinSorted(onlyB)
	if sortedSect == "" {
		return Ratio(diffA, diffB)
	}

	combinedA := sortedSect + " " + diffA
	combinedB := sortedSect + " " + diffB
	return max(
		Ratio(combinedA, combinedB),
		Ratio(sortedSect, combinedA),
		Ratio(sortedSect, combinedB),
	)
}

// Round rounds a score to one decimal place.
func Round(score float64) float64 {
	return math.Round(score*10) / 10
}

// Ranked is one entry of a ranking: the index of the candidate in the input
// slice and its score rounded to one decimal.
type Ranked struct {
	Index int
	Score float64
}

// Rank scores every candidate against query with TokenSet, drops candidates
// scoring below threshold, sorts by score descending with ties kept in input
// order, and truncates to topN. A topN of zero or less means no limit.
// The threshold is applied to the unrounded score.
func Rank(query string, candidates []string, threshold float64, topN int) []Ranked {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	type scored struct {
		index int
		raw   float64
	}
	kept := make([]scored, 0, len(candidates))
	for i, c := range candidates {
		s := TokenSet(query, c)
		if s < threshold {
			continue
		}
		kept = append(kept, scored{index: i, raw: s})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].raw > kept[j].raw
	})
	if topN > 0 && len(kept) > topN {
		kept = kept[:topN]
	}

	out := make([]Ranked, len(kept))
	for i, k := range kept {
		out[i] = Ranked{Index: k.index, Score: Round(k.raw)}
	}
	return out
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func joinSorted(tokens []string) string {
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
