// Package pipeline wires the per-upload transform sequence: orientation
// correction followed by bounded resize and compression. Background removal
// and generative compositing happen elsewhere; this package only guarantees
// the bytes that reach them are upright and usably sized.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"studioshot/internal/domain"
	"studioshot/internal/infra"
	"studioshot/internal/pipeline/codec"
	"studioshot/internal/pipeline/orient"
	"studioshot/internal/pipeline/resizer"
)

// Pipeline prepares one uploaded product photo for downstream steps.
type Pipeline struct {
	corrector *orient.Corrector
	engine    *resizer.Engine
	logger    infra.Logger
}

// New builds a Pipeline over the given codec.
func New(c codec.Codec, logger infra.Logger) *Pipeline {
	return &Pipeline{
		corrector: orient.NewCorrector(c, logger),
		engine:    resizer.NewEngine(c),
		logger:    logger,
	}
}

// Process runs orient -> resize/compress for a single upload. The steps are
// strictly sequential because each consumes the previous step's output;
// different uploads carry no shared state and may run concurrently. The
// result is always JPEG, with its dimensions reported for the caller to
// persist.
func (p *Pipeline) Process(ctx context.Context, img domain.RawImage, maxDimension int, targetBytes int64) (domain.ProcessedImage, error) {
	if err := ctx.Err(); err != nil {
		return domain.ProcessedImage{}, err
	}

	start := time.Now()
	corrected := p.corrector.Correct(img)

	if err := ctx.Err(); err != nil {
		return domain.ProcessedImage{}, err
	}

	data, dims, err := p.engine.Process(corrected.Data, maxDimension, targetBytes)
	if err != nil {
		return domain.ProcessedImage{}, fmt.Errorf("pipeline: %s: %w", img.Name, err)
	}

	p.logger.Debug().
		Str("name", img.Name).
		Int("width", dims.Width).
		Int("height", dims.Height).
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("upload processed")

	return domain.ProcessedImage{
		RawImage: domain.RawImage{
			Name: img.Name,
			MIME: domain.MIMEJPEG,
			Data: data,
		},
		Dimensions: dims,
	}, nil
}
