package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ordermatch/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		patternType PatternType
		opts        *Options
		wantErr     bool
	}{
		{name: "valid glob", pattern: "*_백업", patternType: Glob},
		{name: "valid regex", pattern: "^임시", patternType: Regex},
		{name: "invalid regex", pattern: "(unclosed", patternType: Regex, wantErr: true},
		{name: "invalid glob", pattern: "[unclosed", patternType: Glob, wantErr: true},
		{name: "case insensitive", pattern: "Archive*", patternType: Glob, opts: &Options{CaseInsensitive: true}},
		{name: "unknown type", pattern: "x", patternType: PatternType(9), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.patternType, tt.pattern, tt.opts)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.pattern, m.Pattern())
			assert.Equal(t, tt.patternType, m.Type())
		})
	}
}

func TestMatcher_Match(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		patternType PatternType
		opts        *Options
		input       string
		want        bool
	}{
		{name: "exact tab name", pattern: "월말재고현황", patternType: Glob, input: "월말재고현황", want: true},
		{name: "different tab name", pattern: "월말재고현황", patternType: Glob, input: "가전", want: false},
		{name: "suffix glob", pattern: "*_백업", patternType: Glob, input: "가전_백업", want: true},
		{name: "suffix glob miss", pattern: "*_백업", patternType: Glob, input: "가전", want: false},
		{name: "single rune wildcard", pattern: "재고?월", patternType: Glob, input: "재고3월", want: true},
		{name: "literal brackets", pattern: "[품절]가전", patternType: Glob, input: "[품절]가전", want: true},
		{name: "case sensitive by default", pattern: "Archive", patternType: Glob, input: "archive", want: false},
		{name: "case insensitive glob", pattern: "Archive*", patternType: Glob, opts: &Options{CaseInsensitive: true}, input: "archive 2024", want: true},
		{name: "regex prefix anchor", pattern: "^임시", patternType: Regex, input: "임시탭", want: true},
		{name: "regex anchored miss", pattern: "^임시", patternType: Regex, input: "가전임시", want: false},
		{name: "case insensitive regex", pattern: "^old", patternType: Regex, opts: &Options{CaseInsensitive: true}, input: "OLD stock", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.patternType, tt.pattern, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Match(tt.input))
		})
	}
}

func TestParse(t *testing.T) {
	t.Run("glob by default", func(t *testing.T) {
		m, err := Parse("  월말*  ", nil)
		require.NoError(t, err)
		assert.Equal(t, Glob, m.Type())
		assert.Equal(t, "월말*", m.Pattern())
		assert.True(t, m.Match("월말재고현황"))
	})

	t.Run("regex prefix", func(t *testing.T) {
		m, err := Parse("re:\\d{4}$", nil)
		require.NoError(t, err)
		assert.Equal(t, Regex, m.Type())
		assert.True(t, m.Match("재고2024"))
		assert.False(t, m.Match("재고"))
	})

	t.Run("empty pattern", func(t *testing.T) {
		_, err := Parse("   ", nil)
		assert.True(t, errors.IsValidationError(err))
	})
}

func TestMultiMatcher(t *testing.T) {
	mm, err := NewMultiMatcher([]string{"월말재고현황", "*_백업", "re:^임시"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, mm.Len())

	tests := []struct {
		input string
		want  bool
	}{
		{"월말재고현황", true},
		{"주방_백업", true},
		{"임시", true},
		{"가전", false},
		{"주방", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, mm.Match(tt.input))
		})
	}

	t.Run("matched by reports the pattern", func(t *testing.T) {
		m := mm.MatchedBy("주방_백업")
		require.NotNil(t, m)
		assert.Equal(t, "*_백업", m.Pattern())
		assert.Nil(t, mm.MatchedBy("가전"))
	})

	t.Run("filter keeps order", func(t *testing.T) {
		kept, excluded := mm.Filter([]string{"가전", "월말재고현황", "주방", "주방_백업"})
		assert.Equal(t, []string{"가전", "주방"}, kept)
		assert.Equal(t, []string{"월말재고현황", "주방_백업"}, excluded)
	})

	t.Run("invalid pattern names the pattern", func(t *testing.T) {
		_, err := NewMultiMatcher([]string{"가전", "re:("}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"re:("`)
	})

	t.Run("empty and nil matchers match nothing", func(t *testing.T) {
		empty, err := NewMultiMatcher(nil, nil)
		require.NoError(t, err)
		assert.False(t, empty.Match("월말재고현황"))

		var none *MultiMatcher
		assert.False(t, none.Match("월말재고현황"))
		assert.Equal(t, 0, none.Len())
	})
}

func TestPatternTypeString(t *testing.T) {
	assert.Equal(t, "glob", Glob.String())
	assert.Equal(t, "regex", Regex.String())
}
