// Package imaging implements driven.ImageCompressor with the standard
// decoders plus golang.org/x/image for WebP input and high quality resampling.
package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/custodia-labs/kycup/internal/core/domain"
	"github.com/custodia-labs/kycup/internal/core/ports/driven"
	"github.com/custodia-labs/kycup/internal/logger"
)

// Ensure Compressor implements the interface.
var _ driven.ImageCompressor = (*Compressor)(nil)

const (
	defaultIterations = 10
	minQuality        = 0.3
	qualityStep       = 0.1
	minDimension      = 320
)

// Compressor re-encodes images as JPEG within size and dimension bounds.
type Compressor struct {
	scaler draw.Scaler
}

// NewCompressor creates a compressor using Catmull-Rom resampling.
func NewCompressor() *Compressor {
	return &Compressor{scaler: draw.CatmullRom}
}

// Compress decodes file, fits it within opts.MaxDimension and lowers quality,
// then dimensions, until the output fits opts.MaxBytes. If the iteration
// budget runs out the smallest encoding produced is returned.
func (c *Compressor) Compress(ctx context.Context, file domain.ImageFile, opts domain.CompressionOptions) (domain.ImageFile, error) {
	if opts.Format != "" && opts.Format != domain.MIMEJPEG {
		return domain.ImageFile{}, fmt.Errorf("unsupported output format %q", opts.Format)
	}
	if err := ctx.Err(); err != nil {
		return domain.ImageFile{}, err
	}

	src, format, err := image.Decode(bytes.NewReader(file.Data))
	if err != nil {
		return domain.ImageFile{}, fmt.Errorf("decode %s: %w", file.Name, err)
	}
	logger.Debug("decoded %s as %s %dx%d", file.Name, format, src.Bounds().Dx(), src.Bounds().Dy())

	iterations := opts.MaxIterations
	if iterations <= 0 {
		iterations = defaultIterations
	}
	maxDim := opts.MaxDimension
	quality := opts.Quality

	var best []byte
	for i := 0; i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			return domain.ImageFile{}, err
		}

		out, err := c.encode(src, maxDim, quality)
		if err != nil {
			return domain.ImageFile{}, fmt.Errorf("encode %s: %w", file.Name, err)
		}
		if best == nil || len(out) < len(best) {
			best = out
		}
		if opts.MaxBytes <= 0 || int64(len(out)) <= opts.MaxBytes {
			break
		}

		if quality-qualityStep >= minQuality {
			quality -= qualityStep
		} else if maxDim*3/4 >= minDimension {
			maxDim = maxDim * 3 / 4
		} else {
			break
		}
	}

	return domain.ImageFile{
		Name:     jpegName(file.Name),
		MIMEType: domain.MIMEJPEG,
		Data:     best,
	}, nil
}

// encode scales src to fit maxDim, flattens transparency onto white and
// encodes JPEG at quality in (0, 1].
func (c *Compressor) encode(src image.Image, maxDim int, quality float64) ([]byte, error) {
	w, h := fit(src.Bounds().Dx(), src.Bounds().Dy(), maxDim)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	c.scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	q := int(quality*100 + 0.5)
	q = max(1, min(q, 100))

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: q}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fit returns dimensions no larger than maxDim on either side, keeping aspect ratio.
func fit(w, h, maxDim int) (int, int) {
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return w, h
	}
	if w >= h {
		return maxDim, max(1, h*maxDim/w)
	}
	return max(1, w*maxDim/h), maxDim
}

func jpegName(name string) string {
	if name == "" {
		return "image.jpg"
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"
}
