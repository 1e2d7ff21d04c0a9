// Package orient rewrites JPEG pixel data so images display upright without
// relying on the EXIF orientation flag.
package orient

import (
	"image"

	"github.com/disintegration/imaging"

	"studioshot/internal/domain"
	"studioshot/internal/infra"
	"studioshot/internal/pipeline/codec"
)

// Corrector applies the geometric transform an EXIF orientation flag calls
// for and strips the reliance on metadata by re-encoding the pixels.
type Corrector struct {
	codec  codec.Codec
	logger infra.Logger
}

// NewCorrector builds a Corrector over the given codec.
func NewCorrector(c codec.Codec, logger infra.Logger) *Corrector {
	return &Corrector{codec: c, logger: logger}
}

// Correct returns a new image whose pixels are stored upright. It fails
// open: a non-JPEG input, missing or corrupt metadata, or any decode or
// encode failure yields the input unchanged, because guessing wrong about
// orientation is worse than doing nothing. The input buffer is never
// mutated, and an image that needs no correction is returned byte-identical
// so it suffers no generational loss.
func (c *Corrector) Correct(img domain.RawImage) domain.RawImage {
	o := ReadOrientation(img.Data)
	if o == Normal {
		return img
	}

	decoded, format, err := c.codec.Decode(img.Data)
	if err != nil {
		c.logger.Warn().Err(err).Str("name", img.Name).Msg("orient: undecodable image left as-is")
		return img
	}

	outFormat := format
	if !codec.Reencodable(format) {
		outFormat = codec.FormatPNG
	}

	data, err := c.codec.Encode(Apply(decoded, o), outFormat, 100)
	if err != nil {
		c.logger.Warn().Err(err).Str("name", img.Name).Msg("orient: re-encode failed, image left as-is")
		return img
	}

	return domain.RawImage{
		Name: img.Name,
		MIME: codec.MIMEForFormat(outFormat),
		Data: data,
	}
}

// Apply performs the orientation-specific affine transform. Orientations
// 5-8 swap the output dimensions relative to the source.
func Apply(img image.Image, o Orientation) image.Image {
	switch o {
	case FlipH:
		return imaging.FlipH(img)
	case Rotate180:
		return imaging.Rotate180(img)
	case FlipV:
		return imaging.FlipV(img)
	case Transpose:
		return imaging.Transpose(img)
	case Rotate270:
		return imaging.Rotate270(img)
	case Transverse:
		return imaging.Transverse(img)
	case Rotate90:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
