package images

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/ordermatch/pkg/constants"
	"github.com/agentstation/ordermatch/pkg/errors"
)

type options struct {
	client   *http.Client
	timeout  time.Duration
	size     int
	quality  int
	maxBytes int64
	cacheTTL time.Duration
	logger   *zerolog.Logger
}

func defaultOptions() *options {
	return &options{
		timeout:  constants.ImageFetchTimeout,
		size:     constants.ThumbnailSize,
		quality:  constants.ThumbnailQuality,
		maxBytes: constants.MaxImageBytes,
		cacheTTL: constants.ImageCacheTTL,
	}
}

// Option is a function that configures a Fetcher.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.client == nil {
		o.client = &http.Client{Timeout: o.timeout}
	}
	return o, nil
}

func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithHTTPClient sets the client used for downloads. The client's own timeout applies.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) error {
		o.client = client
		return nil
	}
}

// WithTimeout sets the download timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return &errors.ValidationError{Field: "timeout", Value: d, Message: "must be positive"}
		}
		o.timeout = d
		return nil
	}
}

// WithSize sets the edge of the square box thumbnails are fitted into.
func WithSize(px int) Option {
	return func(o *options) error {
		if px <= 0 {
			return &errors.ValidationError{Field: "size", Value: px, Message: "must be positive"}
		}
		o.size = px
		return nil
	}
}

// WithQuality sets the JPEG quality, 1 through 100.
func WithQuality(q int) Option {
	return func(o *options) error {
		if q < 1 || q > 100 {
			return &errors.ValidationError{Field: "quality", Value: q, Message: "must be within [1, 100]"}
		}
		o.quality = q
		return nil
	}
}

// WithMaxBytes caps the downloaded image size.
func WithMaxBytes(n int64) Option {
	return func(o *options) error {
		if n <= 0 {
			return &errors.ValidationError{Field: "max_bytes", Value: n, Message: "must be positive"}
		}
		o.maxBytes = n
		return nil
	}
}

// WithCacheTTL sets how long thumbnails are cached. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) error {
		if ttl < 0 {
			return &errors.ValidationError{Field: "image_cache_ttl", Value: ttl, Message: "cannot be negative"}
		}
		o.cacheTTL = ttl
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
