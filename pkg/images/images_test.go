package images

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ordermatch/pkg/errors"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func imageServer(t *testing.T, body []byte) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/photo.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(body)
		case "/text":
			_, _ = w.Write([]byte("not an image"))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write(body)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestValid(t *testing.T) {
	tests := []struct {
		ref  string
		want bool
	}{
		{"https://cdn.example.com/a.jpg", true},
		{"http://cdn.example.com/a", true},
		{"  https://cdn.example.com/a.png", true},
		{"ftp://cdn.example.com/a.png", false},
		{"a.jpg", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(tt.ref))
		})
	}
}

func TestFormula(t *testing.T) {
	assert.Equal(t, `=IMAGE("https://cdn.example.com/a.jpg", 1)`, Formula(" https://cdn.example.com/a.jpg "))
}

func TestEncode(t *testing.T) {
	t.Run("fits into box keeping aspect", func(t *testing.T) {
		thumb, err := Encode(encodePNG(t, 400, 200), 100, 85)
		require.NoError(t, err)
		assert.Equal(t, 100, thumb.Width)
		assert.Equal(t, 50, thumb.Height)
		assert.Equal(t, len(thumb.Data), thumb.Bytes)

		cfg, err := jpeg.DecodeConfig(bytes.NewReader(thumb.Data))
		require.NoError(t, err)
		assert.Equal(t, 100, cfg.Width)
		assert.Equal(t, 50, cfg.Height)
	})

	t.Run("small images are not enlarged", func(t *testing.T) {
		thumb, err := Encode(encodePNG(t, 40, 30), 100, 85)
		require.NoError(t, err)
		assert.Equal(t, 40, thumb.Width)
		assert.Equal(t, 30, thumb.Height)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := Encode([]byte("nope"), 100, 85)
		assert.Error(t, err)
	})
}

func TestFetcherThumbnail(t *testing.T) {
	ctx := context.Background()
	srv, hits := imageServer(t, encodePNG(t, 300, 300))

	f, err := New()
	require.NoError(t, err)

	thumb, err := f.Thumbnail(ctx, srv.URL+"/photo.png")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/photo.png", thumb.Source)
	assert.Equal(t, 100, thumb.Width)
	assert.Equal(t, 100, thumb.Height)

	again, err := f.Thumbnail(ctx, srv.URL+"/photo.png")
	require.NoError(t, err)
	assert.Same(t, thumb, again)
	assert.Equal(t, int32(1), hits.Load(), "second call is served from cache")
	assert.Equal(t, CacheStats{Items: 1, Hits: 1, Misses: 1}, f.Stats())

	f.Purge()
	assert.Equal(t, 0, f.Stats().Items)
}

func TestFetcherErrors(t *testing.T) {
	ctx := context.Background()
	srv, _ := imageServer(t, encodePNG(t, 50, 50))

	t.Run("invalid reference", func(t *testing.T) {
		f, err := New()
		require.NoError(t, err)
		_, err = f.Thumbnail(ctx, "photo.png")
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("not found", func(t *testing.T) {
		f, err := New()
		require.NoError(t, err)
		_, err = f.Thumbnail(ctx, srv.URL+"/missing.png")
		assert.True(t, errors.IsNotFound(err))
		var apiErr *errors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	})

	t.Run("not an image", func(t *testing.T) {
		f, err := New()
		require.NoError(t, err)
		_, err = f.Thumbnail(ctx, srv.URL+"/text")
		var parseErr *errors.ParseError
		assert.ErrorAs(t, err, &parseErr)
	})

	t.Run("too large", func(t *testing.T) {
		f, err := New(WithMaxBytes(16))
		require.NoError(t, err)
		_, err = f.Thumbnail(ctx, srv.URL+"/photo.png")
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("timeout", func(t *testing.T) {
		f, err := New(WithTimeout(20 * time.Millisecond))
		require.NoError(t, err)
		_, err = f.Thumbnail(ctx, srv.URL+"/slow")
		var resErr *errors.ResourceError
		assert.ErrorAs(t, err, &resErr)
	})

	t.Run("canceled context", func(t *testing.T) {
		f, err := New()
		require.NoError(t, err)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err = f.Thumbnail(cctx, srv.URL+"/photo.png")
		assert.True(t, errors.IsCanceled(err))
	})

	t.Run("failures are not cached", func(t *testing.T) {
		f, err := New()
		require.NoError(t, err)
		_, _ = f.Thumbnail(ctx, srv.URL+"/missing.png")
		assert.Equal(t, 0, f.Stats().Items)
	})
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"zero size", WithSize(0)},
		{"quality too high", WithQuality(101)},
		{"zero timeout", WithTimeout(0)},
		{"negative ttl", WithCacheTTL(-time.Second)},
		{"zero max bytes", WithMaxBytes(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opt)
			assert.True(t, errors.IsValidationError(err))
		})
	}

	t.Run("cache disabled", func(t *testing.T) {
		srv, hits := imageServer(t, encodePNG(t, 20, 20))
		f, err := New(WithCacheTTL(0), WithSize(10))
		require.NoError(t, err)
		for i := 0; i < 2; i++ {
			thumb, err := f.Thumbnail(context.Background(), srv.URL+"/photo.png")
			require.NoError(t, err)
			assert.Equal(t, 10, thumb.Width)
		}
		assert.Equal(t, int32(2), hits.Load())
		assert.Equal(t, CacheStats{}, f.Stats())
	})
}
