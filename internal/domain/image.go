package domain

// Media types the pipeline understands.
const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
	MIMEGIF  = "image/gif"
	MIMEWebP = "image/webp"
)

// RawImage is an encoded image buffer together with its declared media type
// and file name. Buffers are owned by the caller: no transform mutates one
// in place, every step returns a fresh RawImage.
type RawImage struct {
	Name string
	MIME string
	Data []byte
}

// Size returns the encoded byte count.
func (r RawImage) Size() int64 {
	return int64(len(r.Data))
}

// Dimensions is a width/height pair in pixels.
type Dimensions struct {
	Width  int
	Height int
}

// Swapped returns the pair with width and height exchanged, as happens when
// a 90-degree rotation is applied.
func (d Dimensions) Swapped() Dimensions {
	return Dimensions{Width: d.Height, Height: d.Width}
}

// ProcessedImage is the output of the upload pipeline: the re-encoded bytes
// plus the side products a persistence layer records alongside them.
type ProcessedImage struct {
	RawImage
	Dimensions Dimensions
}
