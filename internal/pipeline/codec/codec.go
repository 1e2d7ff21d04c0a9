// Package codec abstracts image decode, encode, and working-surface
// acquisition so the transform logic stays portable between runtimes (a
// server-side rasterizer today, anything that satisfies Codec tomorrow).
package codec

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"github.com/chai2010/webp"

	"studioshot/internal/domain"
)

// Encoded-image format names, matching what image.Decode reports.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
	FormatGIF  = "gif"
	FormatWebP = "webp"
)

// Surfaces larger than this are refused rather than risking an allocation
// that takes down a memory-constrained process.
const maxSurfacePixels = 1 << 27

// Codec is the capability contract every transform depends on.
type Codec interface {
	// Decode turns encoded bytes into a pixel image and reports the
	// detected format name.
	Decode(data []byte) (image.Image, string, error)
	// Encode flattens a pixel image back to encoded bytes. Quality is a
	// 1-100 value; formats without a quality knob ignore it.
	Encode(img image.Image, format string, quality int) ([]byte, error)
	// NewSurface allocates a transparent working surface.
	NewSurface(width, height int) (*image.NRGBA, error)
}

// Std is the standard-rasterizer Codec backed by the Go image registry plus
// a webp fallback.
type Std struct{}

// NewStd returns the standard Codec.
func NewStd() Std {
	return Std{}
}

// Decode implements Codec.
func (Std) Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		return img, format, nil
	}
	// webp does not self-register; try it explicitly before giving up.
	if img, werr := webp.Decode(bytes.NewReader(data)); werr == nil {
		return img, FormatWebP, nil
	}
	return nil, "", fmt.Errorf("codec: decode: %v: %w", err, domain.ErrDecodeFailure)
}

// Encode implements Codec.
func (Std) Encode(img image.Image, format string, quality int) ([]byte, error) {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}

	buf := &bytes.Buffer{}
	switch format {
	case FormatJPEG:
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("codec: encode jpeg: %v: %w", err, domain.ErrEncodeFailure)
		}
	case FormatPNG:
		if err := png.Encode(buf, img); err != nil {
			return nil, fmt.Errorf("codec: encode png: %v: %w", err, domain.ErrEncodeFailure)
		}
	case FormatWebP:
		if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
			return nil, fmt.Errorf("codec: encode webp: %v: %w", err, domain.ErrEncodeFailure)
		}
	default:
		return nil, fmt.Errorf("codec: encode %q: %w", format, domain.ErrUnsupportedMedia)
	}
	return buf.Bytes(), nil
}

// NewSurface implements Codec.
func (Std) NewSurface(width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("codec: surface %dx%d: %w", width, height, domain.ErrSurfaceUnavailable)
	}
	if int64(width)*int64(height) > maxSurfacePixels {
		return nil, fmt.Errorf("codec: surface %dx%d exceeds pixel budget: %w", width, height, domain.ErrSurfaceUnavailable)
	}
	return image.NewNRGBA(image.Rect(0, 0, width, height)), nil
}

// Reencodable reports whether the corrector can write the format back out.
func Reencodable(format string) bool {
	switch format {
	case FormatJPEG, FormatPNG, FormatWebP:
		return true
	default:
		return false
	}
}

// MIMEForFormat maps a format name to its media type. Unknown formats map to
// PNG, the corrector's fallback encoding.
func MIMEForFormat(format string) string {
	switch format {
	case FormatJPEG:
		return domain.MIMEJPEG
	case FormatGIF:
		return domain.MIMEGIF
	case FormatWebP:
		return domain.MIMEWebP
	default:
		return domain.MIMEPNG
	}
}
