// Package matcher matches workbook tab names against exclusion patterns.
//
// Patterns are globs by default ("월말재고현황", "*_백업", "재고?월"). A pattern
// prefixed with "re:" is compiled as a regular expression ("re:^임시").
// A pattern always matches a name equal to it, so tab names containing glob
// metacharacters such as "[품절]가전" can be excluded literally.
package matcher

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/agentstation/ordermatch/pkg/errors"
)

// RegexPrefix marks a pattern as a regular expression.
const RegexPrefix = "re:"

// PatternType represents the type of pattern matching.
type PatternType int

const (
	// Glob uses shell glob patterns (*, ?, [...]).
	Glob PatternType = iota
	// Regex uses regular expressions.
	Regex
)

// String returns the pattern type name.
func (p PatternType) String() string {
	if p == Regex {
		return "regex"
	}
	return "glob"
}

// Matcher reports whether a tab name matches a pattern.
type Matcher interface {
	Match(name string) bool
	Pattern() string
	Type() PatternType
}

// Options configures matching behavior.
type Options struct {
	// CaseInsensitive folds case before comparing. Only Latin tab names are affected.
	CaseInsensitive bool
}

type matcher struct {
	pattern     string
	patternType PatternType
	opts        Options
	regex       *regexp.Regexp
}

// New creates a matcher for a pattern of the given type.
func New(patternType PatternType, pattern string, opts *Options) (Matcher, error) {
	m := &matcher{
		pattern:     pattern,
		patternType: patternType,
	}
	if opts != nil {
		m.opts = *opts
	}
	if err := m.compile(); err != nil {
		return nil, err
	}
	return m, nil
}

// Parse creates a matcher from a configured pattern, honoring the "re:" prefix.
func Parse(pattern string, opts *Options) (Matcher, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, &errors.ValidationError{Field: "pattern", Message: "empty pattern"}
	}
	if rest, ok := strings.CutPrefix(pattern, RegexPrefix); ok {
		return New(Regex, rest, opts)
	}
	return New(Glob, pattern, opts)
}

func (m *matcher) compile() error {
	switch m.patternType {
	case Regex:
		expr := m.pattern
		if m.opts.CaseInsensitive {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return &errors.ValidationError{
				Field:   "pattern",
				Value:   m.pattern,
				Message: fmt.Sprintf("invalid regex: %v", err),
			}
		}
		m.regex = re
	case Glob:
		if _, err := path.Match(m.fold(m.pattern), ""); err != nil {
			return &errors.ValidationError{
				Field:   "pattern",
				Value:   m.pattern,
				Message: fmt.Sprintf("invalid glob: %v", err),
			}
		}
	default:
		return &errors.ValidationError{Field: "type", Value: m.patternType, Message: "unknown pattern type"}
	}
	return nil
}

func (m *matcher) fold(s string) string {
	if m.opts.CaseInsensitive {
		return strings.ToLower(s)
	}
	return s
}

// Match reports whether name matches the pattern.
func (m *matcher) Match(name string) bool {
	if m.patternType == Regex {
		return m.regex.MatchString(name)
	}
	name, pattern := m.fold(name), m.fold(m.pattern)
	if name == pattern {
		return true
	}
	ok, _ := path.Match(pattern, name)
	return ok
}

func (m *matcher) Pattern() string   { return m.pattern }
func (m *matcher) Type() PatternType { return m.patternType }

// MultiMatcher matches a name against several patterns.
type MultiMatcher struct {
	matchers []Matcher
}

// NewMultiMatcher parses every pattern. An empty list yields a matcher that matches nothing.
func NewMultiMatcher(patterns []string, opts *Options) (*MultiMatcher, error) {
	mm := &MultiMatcher{matchers: make([]Matcher, 0, len(patterns))}
	for _, p := range patterns {
		m, err := Parse(p, opts)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		mm.matchers = append(mm.matchers, m)
	}
	return mm, nil
}

// Match reports whether name matches any pattern.
func (mm *MultiMatcher) Match(name string) bool {
	return mm.MatchedBy(name) != nil
}

// MatchedBy returns the first matcher that matches name, or nil.
func (mm *MultiMatcher) MatchedBy(name string) Matcher {
	if mm == nil {
		return nil
	}
	for _, m := range mm.matchers {
		if m.Match(name) {
			return m
		}
	}
	return nil
}

// Len returns the number of patterns.
func (mm *MultiMatcher) Len() int {
	if mm == nil {
		return 0
	}
	return len(mm.matchers)
}

// Filter splits names into those kept and those excluded, preserving order.
func (mm *MultiMatcher) Filter(names []string) (kept, excluded []string) {
	for _, name := range names {
		if mm.Match(name) {
			excluded = append(excluded, name)
			continue
		}
		kept = append(kept, name)
	}
	return kept, excluded
}
