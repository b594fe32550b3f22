// Package images downloads product images referenced by the catalog and turns
// them into small JPEG thumbnails for display next to match candidates.
//
// Example usage:
//
//	f, err := images.New(images.WithSize(100))
//	if err != nil {
//	    return err
//	}
//	if images.Valid(p.Image) {
//	    thumb, err := f.Thumbnail(ctx, p.Image)
//	    ...
//	}
package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"github.com/agentstation/ordermatch/pkg/errors"
	"github.com/agentstation/ordermatch/pkg/logging"
)

// Thumbnail is an encoded JPEG thumbnail.
type Thumbnail struct {
	Source string `json:"source" yaml:"source"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
	Bytes  int    `json:"bytes" yaml:"bytes"`
	Data   []byte `json:"-" yaml:"-"`
}

// Fetcher produces thumbnails for image references.
type Fetcher interface {
	// Thumbnail downloads ref and fits it into the configured box.
	Thumbnail(ctx context.Context, ref string) (*Thumbnail, error)
	// Stats reports cache usage.
	Stats() CacheStats
	// Purge drops every cached thumbnail.
	Purge()
}

// Valid reports whether ref looks like a downloadable image reference.
func Valid(ref string) bool {
	return strings.HasPrefix(strings.TrimSpace(ref), "http")
}

// Formula returns a spreadsheet formula that renders ref inside a cell.
func Formula(ref string) string {
	return fmt.Sprintf("=IMAGE(%q, 1)", strings.TrimSpace(ref))
}

type fetcher struct {
	opts  *options
	cache *cache
}

// New creates a Fetcher.
func New(opts ...Option) (Fetcher, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &fetcher{opts: o, cache: newCache(o.cacheTTL)}, nil
}

func (f *fetcher) logger(ctx context.Context) *zerolog.Logger {
	if f.opts.logger != nil {
		return f.opts.logger
	}
	return logging.FromContext(ctx)
}

// Thumbnail implements Fetcher.
func (f *fetcher) Thumbnail(ctx context.Context, ref string) (*Thumbnail, error) {
	ref = strings.TrimSpace(ref)
	if !Valid(ref) {
		return nil, &errors.ValidationError{
			Field:   "image",
			Value:   ref,
			Message: "reference must start with http",
		}
	}

	key := fmt.Sprintf("%d:%d:%s", f.opts.size, f.opts.quality, ref)
	if t, ok := f.cache.get(key); ok {
		return t, nil
	}

	data, err := f.download(ctx, ref)
	if err != nil {
		f.logger(ctx).Debug().Err(err).Str("image", ref).Msg("Image download failed")
		return nil, err
	}

	t, err := Encode(data, f.opts.size, f.opts.quality)
	if err != nil {
		return nil, errors.WrapParse("image", ref, err)
	}
	t.Source = ref
	f.cache.set(key, t)
	return t, nil
}

func (f *fetcher) download(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, errors.WrapValidation("image", err)
	}
	resp, err := f.opts.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrCanceled, ctx.Err())
		}
		return nil, errors.WrapResource("fetch", "image", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAPIError("image", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.maxBytes+1))
	if err != nil {
		return nil, errors.WrapResource("read", "image", ref, err)
	}
	if int64(len(data)) > f.opts.maxBytes {
		return nil, &errors.ValidationError{
			Field:   "image",
			Value:   ref,
			Message: fmt.Sprintf("exceeds %d bytes", f.opts.maxBytes),
		}
	}
	return data, nil
}

func (f *fetcher) Stats() CacheStats { return f.cache.stats() }

func (f *fetcher) Purge() { f.cache.clear() }

// Encode decodes an image, fits it into a size×size box keeping its aspect
// ratio and re-encodes it as JPEG. Images already inside the box are not
// enlarged. Transparent areas are flattened onto white.
func Encode(data []byte, size, quality int) (*Thumbnail, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}

	fitted := imaging.Fit(img, size, size, imaging.Lanczos)
	b := fitted.Bounds()
	flat := imaging.New(b.Dx(), b.Dy(), color.White)
	flat = imaging.Overlay(flat, fitted, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return &Thumbnail{
		Width:  b.Dx(),
		Height: b.Dy(),
		Bytes:  buf.Len(),
		Data:   buf.Bytes(),
	}, nil
}
