// Package reflection synthesizes the mirrored floor-reflection strip that
// gets composited beneath an isolated product photo.
package reflection

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"studioshot/internal/domain"
	"studioshot/internal/infra"
	"studioshot/internal/pipeline/codec"
)

// Options tune one reflection rendering. The zero value is not useful; start
// from DefaultOptions. Every invocation gets its own copy, so options are
// never shared mutable state across concurrent batch items.
type Options struct {
	// Intensity is how much opacity the fade removes at the strip's first
	// row: 0 leaves the mirrored pixels at full strength, values near 1
	// make the strip start nearly transparent.
	Intensity float64
	// Height is the strip height as a ratio of the subject height.
	Height float64
	// Blur is the gaussian radius in pixels applied after the fade.
	Blur float64
	// FadeStrength is the position (0..1) of the middle gradient stop,
	// where the removed opacity eases to 30% of Intensity before the
	// fade runs out to fully transparent.
	FadeStrength float64
	// OffsetPX is the vertical gap the compositor should leave between
	// subject and strip. It does not affect the strip's pixels.
	OffsetPX int
}

// DefaultOptions returns the tuning used by the product-photo flow.
func DefaultOptions() Options {
	return Options{
		Intensity:    0.35,
		Height:       0.4,
		Blur:         2,
		FadeStrength: 0.5,
	}
}

// normalized clamps every ratio into its valid range.
func (o Options) normalized() Options {
	o.Intensity = clamp01(o.Intensity)
	o.Height = clamp01(o.Height)
	o.FadeStrength = clamp01(o.FadeStrength)
	if o.Blur < 0 {
		o.Blur = 0
	}
	if o.OffsetPX < 0 {
		o.OffsetPX = 0
	}
	return o
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Result pairs one synthesized strip with the subject it was made from.
type Result struct {
	Source     string
	Reflection domain.RawImage
	OffsetPX   int
}

// Synthesizer renders reflection strips. It fails closed: a reflection
// cannot be approximated by passing the input through, so decode, surface,
// and encode failures surface as classified errors.
type Synthesizer struct {
	codec  codec.Codec
	logger infra.Logger
}

// NewSynthesizer builds a Synthesizer over the given codec.
func NewSynthesizer(c codec.Codec, logger infra.Logger) *Synthesizer {
	return &Synthesizer{codec: c, logger: logger}
}

// Generate renders the reflection strip for one transparent-background
// subject. The output is a separate PNG of width x floor(height*opts.Height)
// containing only the mirrored, faded, blurred strip.
func (s *Synthesizer) Generate(subject domain.RawImage, opts Options) (domain.RawImage, error) {
	opts = opts.normalized()

	src, _, err := s.codec.Decode(subject.Data)
	if err != nil {
		return domain.RawImage{}, fmt.Errorf("reflection: %w", err)
	}

	w := src.Bounds().Dx()
	stripH := int(float64(src.Bounds().Dy()) * opts.Height)
	if w <= 0 || stripH <= 0 {
		return domain.RawImage{}, fmt.Errorf("reflection: strip %dx%d for %q is empty: %w",
			w, stripH, subject.Name, domain.ErrSurfaceUnavailable)
	}

	surface, err := s.codec.NewSurface(w, stripH)
	if err != nil {
		return domain.RawImage{}, fmt.Errorf("reflection: %w", err)
	}

	// The top stripH rows of the subject, mirrored left-right. The strip is
	// not flipped vertically: seen along the camera axis the floor shows
	// the subject's base closest, which the gradient below encodes.
	top := imaging.Crop(src, image.Rect(src.Bounds().Min.X, src.Bounds().Min.Y,
		src.Bounds().Min.X+w, src.Bounds().Min.Y+stripH))
	draw.Draw(surface, surface.Bounds(), imaging.FlipH(top), image.Point{}, draw.Src)

	applyFade(surface, opts.Intensity, opts.FadeStrength)

	strip := image.Image(surface)
	if opts.Blur > 0 {
		// Blur after the fade; blurring first would bleed edge opacity
		// back into rows the gradient already cleared.
		strip = imaging.Blur(surface, opts.Blur)
	}

	data, err := s.codec.Encode(strip, codec.FormatPNG, 100)
	if err != nil {
		return domain.RawImage{}, fmt.Errorf("reflection: %w", err)
	}

	s.logger.Debug().
		Str("subject", subject.Name).
		Int("width", w).
		Int("height", stripH).
		Msg("reflection strip rendered")

	return domain.RawImage{
		Name: reflectionName(subject.Name),
		MIME: domain.MIMEPNG,
		Data: data,
	}, nil
}

// GenerateBatch renders strips for independent subjects concurrently. Each
// subject gets its own surface; nothing is shared between items. The batch
// is all-or-nothing: the first failure cancels the remaining work and fails
// the whole call, so callers never see a partially reflected set.
func (s *Synthesizer) GenerateBatch(ctx context.Context, subjects []domain.RawImage, opts Options) ([]Result, error) {
	results := make([]Result, len(subjects))
	g, ctx := errgroup.WithContext(ctx)
	for i, subject := range subjects {
		i, subject := i, subject
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			refl, err := s.Generate(subject, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", subject.Name, err)
			}
			results[i] = Result{Source: subject.Name, Reflection: refl, OffsetPX: opts.OffsetPX}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// applyFade scales the strip's alpha by a three-stop vertical gradient:
// 1-intensity kept at the first row, 1-intensity*0.3 at the fade stop, and
// nothing at the last row.
func applyFade(surface *image.NRGBA, intensity, fade float64) {
	h := surface.Rect.Dy()
	denom := float64(h - 1)
	if denom <= 0 {
		denom = 1
	}
	for y := 0; y < h; y++ {
		keep := 1 - eraseAt(float64(y)/denom, intensity, fade)
		row := surface.Pix[y*surface.Stride : y*surface.Stride+surface.Rect.Dx()*4]
		for x := 3; x < len(row); x += 4 {
			row[x] = uint8(float64(row[x])*keep + 0.5)
		}
	}
}

// eraseAt interpolates the removed-opacity fraction at position t in [0,1]
// across the stops (0, intensity), (fade, intensity*0.3), (1, 1).
func eraseAt(t, intensity, fade float64) float64 {
	mid := intensity * 0.3
	if fade <= 0 {
		return mid + (1-mid)*t
	}
	if t <= fade {
		return intensity + (mid-intensity)*(t/fade)
	}
	if fade >= 1 {
		return mid
	}
	return mid + (1-mid)*((t-fade)/(1-fade))
}

// reflectionName derives the output name from the subject's.
func reflectionName(name string) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	if base == "" {
		base = "subject"
	}
	return base + "-reflection.png"
}
