package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeResult(t *testing.T, uri string) image.Config {
	t.Helper()
	raw, mediaType, err := DecodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mediaType)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	return cfg
}

func TestFit(t *testing.T) {
	cases := []struct {
		w, h, wantW, wantH int
	}{
		{400, 300, 400, 300},
		{800, 800, 800, 800},
		{1600, 1200, 800, 600},
		{1200, 1600, 600, 800},
		{5000, 10, 800, 1},
	}
	for _, tc := range cases {
		w, h := Fit(tc.w, tc.h, 800)
		assert.Equal(t, tc.wantW, w, "%dx%d", tc.w, tc.h)
		assert.Equal(t, tc.wantH, h, "%dx%d", tc.w, tc.h)
	}
}

func TestNormalizeScalesLandscape(t *testing.T) {
	n := NewNormalizer(Options{})

	uri, err := n.Normalize(encodePNG(t, 1000, 500), "image/png")
	require.NoError(t, err)

	cfg := decodeResult(t, uri)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 400, cfg.Height)
}

func TestNormalizeKeepsSmallImages(t *testing.T) {
	n := NewNormalizer(Options{})

	uri, err := n.Normalize(encodePNG(t, 120, 90), "image/png")
	require.NoError(t, err)

	cfg := decodeResult(t, uri)
	assert.Equal(t, 120, cfg.Width)
	assert.Equal(t, 90, cfg.Height)
}

func TestNormalizeRejects(t *testing.T) {
	n := NewNormalizer(Options{MaxBytes: 1024})

	_, err := n.Normalize([]byte("%PDF-1.4"), "application/pdf")
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = n.Normalize(bytes.Repeat([]byte{1}, 2048), "image/jpeg")
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = n.Normalize([]byte("not really a png"), "image/png")
	assert.ErrorIs(t, err, ErrUndecoded)
}

func TestDecodeDataURI(t *testing.T) {
	_, _, err := DecodeDataURI("https://example.com/logo.png")
	assert.Error(t, err)

	_, _, err = DecodeDataURI("data:image/png,plain")
	assert.Error(t, err)

	raw, mediaType, err := DecodeDataURI("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mediaType)
	assert.Equal(t, "hello", string(raw))
}
