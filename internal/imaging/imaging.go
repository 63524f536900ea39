// Package imaging turns uploaded pictures into the small inline JPEGs stored on
// items and used as the store logo.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Defaults applied when Options leaves a field zero
const (
	DefaultMaxBytes     = 5 * 1024 * 1024
	DefaultMaxDimension = 800
	DefaultQuality      = 80
)

var (
	ErrTooLarge  = errors.New("image size should be less than 5MB")
	ErrNotImage  = errors.New("please select a valid image file")
	ErrUndecoded = errors.New("could not read image")
)

// Options bounds the accepted input and shapes the output
type Options struct {
	MaxBytes     int64
	MaxDimension int
	Quality      int
}

func (o Options) withDefaults() Options {
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	if o.MaxDimension <= 0 {
		o.MaxDimension = DefaultMaxDimension
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultQuality
	}
	return o
}

// Normalizer applies one set of Options
type Normalizer struct {
	opts Options
}

func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{opts: opts.withDefaults()}
}

// Normalize checks the declared type and size, scales the image so that neither
// side exceeds the maximum, and returns it as a JPEG data URI.
func (n *Normalizer) Normalize(data []byte, declaredType string) (string, error) {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(declaredType)), "image/") {
		return "", ErrNotImage
	}
	if int64(len(data)) > n.opts.MaxBytes {
		return "", ErrTooLarge
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUndecoded, err)
	}

	dst := n.scale(src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: n.opts.Quality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// scale fits src inside the bounding square and flattens transparency onto white
func (n *Normalizer) scale(src image.Image) image.Image {
	b := src.Bounds()
	w, h := Fit(b.Dx(), b.Dy(), n.opts.MaxDimension)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// Fit returns the size of a w×h image scaled down so that neither side exceeds
// limit. Images already inside the limit keep their size.
func Fit(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}

// DecodeDataURI returns the raw bytes and media type of a base64 data URI
func DecodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", errors.New("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, "", errors.New("data URI is not base64 encoded")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode data URI: %w", err)
	}
	return raw, strings.TrimSuffix(meta, ";base64"), nil
}
