// Package imaging turns downloaded images into the JPEG artifacts the bots
// upload.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// MimeType is the content type of every artifact.
	MimeType = "image/jpeg"

	// DefaultQuality is the JPEG quality used when none is configured.
	DefaultQuality = 85
)

// ErrDecode is returned when the input bytes are not a supported image.
var ErrDecode = errors.New("decode image")

// Options controls normalization.
type Options struct {
	Quality      int // JPEG quality 1-100, defaults to DefaultQuality
	MaxDimension int // longest side limit in pixels, 0 disables scaling
}

// Artifact is a normalized image ready for upload.
type Artifact struct {
	Data   []byte
	Width  int
	Height int
	Format string // format of the source image
}

// Normalize decodes r, flattens it onto an opaque RGB canvas, optionally
// scales it down and re-encodes it as JPEG.
func Normalize(r io.Reader, opts Options) (*Artifact, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	bounds := src.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}

	w, h := fitWithin(bounds.Dx(), bounds.Dy(), opts.MaxDimension)
	dst := flatten(src, w, h)

	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return &Artifact{
		Data:   buf.Bytes(),
		Width:  w,
		Height: h,
		Format: format,
	}, nil
}

// flatten draws src onto a white w×h RGBA canvas. Transparent pixels become
// white and the result carries no alpha.
func flatten(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	if w == src.Bounds().Dx() && h == src.Bounds().Dy() {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	}
	return dst
}

// fitWithin scales w×h so the longest side is at most limit, keeping the
// aspect ratio. Both results are at least 1.
func fitWithin(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}

// Save writes the artifact to path, replacing any previous file.
func (a *Artifact) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(a.Data); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename artifact: %w", err)
	}
	return nil
}
