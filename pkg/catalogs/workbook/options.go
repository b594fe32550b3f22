package workbook

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/ordermatch/internal/matcher"
	"github.com/agentstation/ordermatch/pkg/constants"
	"github.com/agentstation/ordermatch/pkg/errors"
)

// options configures a workbook load.
type options struct {
	exclude       []string
	stripImages   bool
	stripDrawings bool
	keepEmpty     bool
	logger        *zerolog.Logger
}

func defaultOptions() *options {
	return &options{
		exclude:       []string{constants.MonthEndStockTab},
		stripImages:   true,
		stripDrawings: true,
	}
}

// Option is a function that configures a load.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithExclude replaces the tab exclusion patterns. Patterns are globs; prefix a
// pattern with "re:" for a regular expression. No patterns excludes nothing.
func WithExclude(patterns ...string) Option {
	return func(o *options) error {
		if _, err := matcher.NewMultiMatcher(patterns, nil); err != nil {
			return &errors.ValidationError{
				Field:   "exclude_tabs",
				Value:   patterns,
				Message: err.Error(),
			}
		}
		o.exclude = patterns
		return nil
	}
}

// WithImageStripping toggles removing embedded media before parsing.
func WithImageStripping(enabled bool) Option {
	return func(o *options) error {
		o.stripImages = enabled
		return nil
	}
}

// WithDrawingStripping toggles removing drawing parts along with the media.
func WithDrawingStripping(enabled bool) Option {
	return func(o *options) error {
		o.stripDrawings = enabled
		return nil
	}
}

// WithEmptyTables keeps tabs that have a header but no data rows.
func WithEmptyTables(keep bool) Option {
	return func(o *options) error {
		o.keepEmpty = keep
		return nil
	}
}

// WithLogger sets the logger. By default the logger is taken from the context.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}
