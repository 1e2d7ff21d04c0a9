package orient

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/rs/zerolog"

	"studioshot/internal/domain"
	"studioshot/internal/pipeline/codec"
)

// testPattern is a 2x3 image with six distinct pixels so any misapplied
// transform is visible.
func testPattern() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, patternColor(x, y))
		}
	}
	return img
}

func patternColor(x, y int) color.NRGBA {
	return color.NRGBA{R: uint8(40*y + 20*x), G: uint8(10 + x), B: uint8(10 + y), A: 255}
}

func TestApplyTransformTable(t *testing.T) {
	src := testPattern()
	// srcAt maps an output coordinate back to the source pixel it must
	// carry, per the documented orientation transforms.
	tests := []struct {
		o     Orientation
		w, h  int
		srcAt func(x, y int) (int, int)
	}{
		{Normal, 2, 3, func(x, y int) (int, int) { return x, y }},
		{FlipH, 2, 3, func(x, y int) (int, int) { return 1 - x, y }},
		{Rotate180, 2, 3, func(x, y int) (int, int) { return 1 - x, 2 - y }},
		{FlipV, 2, 3, func(x, y int) (int, int) { return x, 2 - y }},
		{Transpose, 3, 2, func(x, y int) (int, int) { return y, x }},
		{Rotate270, 3, 2, func(x, y int) (int, int) { return y, 2 - x }},
		{Transverse, 3, 2, func(x, y int) (int, int) { return 1 - y, 2 - x }},
		{Rotate90, 3, 2, func(x, y int) (int, int) { return 1 - y, x }},
	}
	for _, tt := range tests {
		out := Apply(src, tt.o)
		b := out.Bounds()
		if b.Dx() != tt.w || b.Dy() != tt.h {
			t.Fatalf("orientation %d: dimensions %dx%d, want %dx%d", tt.o, b.Dx(), b.Dy(), tt.w, tt.h)
		}
		for y := 0; y < tt.h; y++ {
			for x := 0; x < tt.w; x++ {
				sx, sy := tt.srcAt(x, y)
				want := patternColor(sx, sy)
				r, g, bb, a := out.At(b.Min.X+x, b.Min.Y+y).RGBA()
				got := color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bb >> 8), A: uint8(a >> 8)}
				if got != want {
					t.Fatalf("orientation %d: pixel (%d,%d) = %v, want %v (src %d,%d)", tt.o, x, y, got, want, sx, sy)
				}
			}
		}
	}
}

func TestOrientationSwapsDimensions(t *testing.T) {
	for o := Normal; o <= Rotate90; o++ {
		want := o >= Transpose
		if got := o.SwapsDimensions(); got != want {
			t.Fatalf("orientation %d: SwapsDimensions = %v, want %v", o, got, want)
		}
	}
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func newCorrector() *Corrector {
	return NewCorrector(codec.NewStd(), zerolog.Nop())
}

func TestCorrectDimensionSwap(t *testing.T) {
	data := withEXIF(t, encodeJPEG(t, 40, 20), 6, true)
	out := newCorrector().Correct(domain.RawImage{Name: "shot.jpg", MIME: domain.MIMEJPEG, Data: data})

	if out.MIME != domain.MIMEJPEG {
		t.Fatalf("MIME = %q, want %q", out.MIME, domain.MIMEJPEG)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out.Data))
	if err != nil {
		t.Fatalf("decode corrected output: %v", err)
	}
	if cfg.Width != 20 || cfg.Height != 40 {
		t.Fatalf("corrected dimensions %dx%d, want 20x40", cfg.Width, cfg.Height)
	}
}

func TestCorrectNoopPaths(t *testing.T) {
	plain := encodeJPEG(t, 8, 8)
	tests := []struct {
		name string
		img  domain.RawImage
	}{
		{"orientation one", domain.RawImage{Name: "a.jpg", MIME: domain.MIMEJPEG, Data: withEXIF(t, plain, 1, false)}},
		{"no exif segment", domain.RawImage{Name: "b.jpg", MIME: domain.MIMEJPEG, Data: plain}},
		{"not a jpeg", domain.RawImage{Name: "c.png", MIME: domain.MIMEPNG, Data: []byte("\x89PNG\r\n\x1a\nnot really")}},
		{"garbage", domain.RawImage{Name: "d.bin", MIME: "application/octet-stream", Data: []byte{1, 2, 3}}},
	}
	c := newCorrector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := c.Correct(tt.img)
			if !bytes.Equal(out.Data, tt.img.Data) {
				t.Fatal("output not byte-identical to input")
			}
		})
	}
}

func TestCorrectFailOpenOnUndecodableBody(t *testing.T) {
	// Valid EXIF claiming a rotation, but no decodable pixel data behind it.
	data := exifJPEGHeader(6, true)
	img := domain.RawImage{Name: "broken.jpg", MIME: domain.MIMEJPEG, Data: data}
	out := newCorrector().Correct(img)
	if !bytes.Equal(out.Data, data) {
		t.Fatal("undecodable image was not returned unchanged")
	}
}

func TestCorrectIdempotent(t *testing.T) {
	data := withEXIF(t, encodeJPEG(t, 16, 24), 3, false)
	c := newCorrector()

	first := c.Correct(domain.RawImage{Name: "x.jpg", MIME: domain.MIMEJPEG, Data: data})
	if bytes.Equal(first.Data, data) {
		t.Fatal("first pass should have re-encoded")
	}
	second := c.Correct(first)
	if !bytes.Equal(second.Data, first.Data) {
		t.Fatal("second pass is not a byte-identical no-op")
	}
}
