// Package resizer bounds an upload's pixel dimensions and searches a JPEG
// quality level that fits the target byte ceiling.
package resizer

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"

	"studioshot/internal/domain"
	"studioshot/internal/pipeline/codec"
)

// Defaults applied when a caller passes zero values.
const (
	DefaultMaxDimension = 2048
	DefaultTargetBytes  = 5 << 20
)

// Quality ladder: one attempt at the ceiling, then descending steps until
// the floor. The floor result is returned even when it misses the target,
// which bounds the search at 45 encode attempts.
const (
	qualityCeiling = 98
	qualityRetry   = 96
	qualityFloor   = 10
	qualityStep    = 2
)

// Engine scales images down to a bounding dimension and compresses them
// toward a byte ceiling. Unlike the orientation corrector it fails closed:
// callers structurally depend on receiving a usably-sized result, so decode
// and surface failures surface as classified errors.
type Engine struct {
	codec codec.Codec
}

// NewEngine builds an Engine over the given codec.
func NewEngine(c codec.Codec) *Engine {
	return &Engine{codec: c}
}

// Process decodes data, scales it uniformly so the larger side does not
// exceed maxDimension (never upscaling), and encodes JPEG at descending
// quality until the result fits targetBytes. The returned dimensions
// describe the encoded output.
func (e *Engine) Process(data []byte, maxDimension int, targetBytes int64) ([]byte, domain.Dimensions, error) {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	if targetBytes <= 0 {
		targetBytes = DefaultTargetBytes
	}

	src, _, err := e.codec.Decode(data)
	if err != nil {
		return nil, domain.Dimensions{}, fmt.Errorf("resizer: %w", err)
	}

	dims := fitWithin(src.Bounds().Dx(), src.Bounds().Dy(), maxDimension)
	if dims.Width <= 0 || dims.Height <= 0 {
		return nil, domain.Dimensions{}, fmt.Errorf("resizer: empty source image: %w", domain.ErrDecodeFailure)
	}

	flat, err := e.flatten(src, dims)
	if err != nil {
		return nil, domain.Dimensions{}, fmt.Errorf("resizer: %w", err)
	}

	out, err := e.codec.Encode(flat, codec.FormatJPEG, qualityCeiling)
	if err != nil {
		return nil, domain.Dimensions{}, fmt.Errorf("resizer: %w", err)
	}
	if int64(len(out)) <= targetBytes {
		return out, dims, nil
	}

	for q := qualityRetry; q >= qualityFloor; q -= qualityStep {
		out, err = e.codec.Encode(flat, codec.FormatJPEG, q)
		if err != nil {
			return nil, domain.Dimensions{}, fmt.Errorf("resizer: %w", err)
		}
		if int64(len(out)) <= targetBytes {
			return out, dims, nil
		}
	}
	// Nothing in the ladder fit; the floor-quality result is still usable.
	return out, dims, nil
}

// flatten renders the scaled source onto an opaque white surface so that
// transparent inputs survive the trip to JPEG.
func (e *Engine) flatten(src image.Image, dims domain.Dimensions) (*image.NRGBA, error) {
	scaled := src
	if dims.Width != src.Bounds().Dx() || dims.Height != src.Bounds().Dy() {
		scaled = imaging.Resize(src, dims.Width, dims.Height, imaging.Lanczos)
	}

	surface, err := e.codec.NewSurface(dims.Width, dims.Height)
	if err != nil {
		return nil, err
	}
	draw.Draw(surface, surface.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(surface, surface.Bounds(), scaled, scaled.Bounds().Min, draw.Over)
	return surface, nil
}

// fitWithin computes the uniform downscale so max(w,h) <= maxDim. Images
// already inside the bound keep their native resolution.
func fitWithin(w, h, maxDim int) domain.Dimensions {
	if w <= maxDim && h <= maxDim {
		return domain.Dimensions{Width: w, Height: h}
	}
	if w >= h {
		nh := h * maxDim / w
		if nh < 1 {
			nh = 1
		}
		return domain.Dimensions{Width: maxDim, Height: nh}
	}
	nw := w * maxDim / h
	if nw < 1 {
		nw = 1
	}
	return domain.Dimensions{Width: nw, Height: maxDim}
}
