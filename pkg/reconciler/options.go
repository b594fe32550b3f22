package reconciler

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/ordermatch/pkg/constants"
	"github.com/agentstation/ordermatch/pkg/errors"
)

// options configures a Writer.
type options struct {
	soldOutMarker string
	formatting    bool
	dryRun        bool
	logger        *zerolog.Logger
}

func defaultOptions() *options {
	return &options{
		soldOutMarker: constants.SoldOutMarker,
		formatting:    true,
	}
}

// Option is a function that configures a Writer.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// newOptions returns writer options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithSoldOutMarker sets the substring of a table name that triggers sold-out formatting.
func WithSoldOutMarker(marker string) Option {
	return func(o *options) error {
		if marker == "" {
			return &errors.ValidationError{
				Field:   "sold_out_marker",
				Message: "cannot be empty",
			}
		}
		o.soldOutMarker = marker
		return nil
	}
}

// WithFormatting enables or disables the sold-out formatting batch.
func WithFormatting(enabled bool) Option {
	return func(o *options) error {
		o.formatting = enabled
		return nil
	}
}

// WithDryRun stages the commit and reports it without touching the ledger beyond reads.
func WithDryRun(enabled bool) Option {
	return func(o *options) error {
		o.dryRun = enabled
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
