package orient

// Orientation is the EXIF flag recording how a camera sensor was held.
// Values 2-8 encode the transform needed to display the pixels upright;
// Normal (1) means no correction.
type Orientation int

const (
	Normal     Orientation = 1
	FlipH      Orientation = 2
	Rotate180  Orientation = 3
	FlipV      Orientation = 4
	Transpose  Orientation = 5
	Rotate270  Orientation = 6 // 90 degrees clockwise
	Transverse Orientation = 7
	Rotate90   Orientation = 8 // 90 degrees counter-clockwise
)

// SwapsDimensions reports whether applying the orientation exchanges width
// and height.
func (o Orientation) SwapsDimensions() bool {
	switch o {
	case Transpose, Rotate270, Transverse, Rotate90:
		return true
	default:
		return false
	}
}

const (
	markerSOI  = 0xFFD8
	markerTEM  = 0xFF01
	markerRST0 = 0xFFD0
	markerEOI  = 0xFFD9
	markerSOS  = 0xFFDA
	markerAPP1 = 0xFFE1

	tagOrientation = 0x0112
)

// ReadOrientation extracts the EXIF orientation flag from a JPEG byte
// stream. Absent, truncated, or corrupt metadata is not an error: the
// result is Normal, meaning "display as stored". The buffer is never
// modified.
func ReadOrientation(data []byte) Orientation {
	if len(data) < 2 || be16(data, 0) != markerSOI {
		return Normal
	}

	off := 2
	for off+1 < len(data) {
		marker := be16(data, off)
		// Standalone markers carry no length field.
		if marker == markerTEM || (marker >= markerRST0 && marker <= markerEOI) {
			off += 2
			continue
		}
		if marker&0xFF00 != 0xFF00 {
			return Normal
		}
		if marker == markerSOS {
			// Entropy-coded data follows; EXIF always precedes it.
			return Normal
		}
		if off+3 >= len(data) {
			return Normal
		}
		length := int(be16(data, off+2))
		if length < 2 || off+2+length > len(data) {
			return Normal
		}
		if marker == markerAPP1 {
			o, ok := parseAPP1(data[off+4 : off+2+length])
			if ok {
				return o
			}
			// Not an EXIF APP1 (e.g. XMP); keep scanning.
		}
		off += 2 + length
	}
	return Normal
}

// parseAPP1 inspects one APP1 payload (the bytes after the segment length).
// ok is false only when the payload is not EXIF at all, so the caller keeps
// walking; a recognized but corrupt EXIF block resolves to Normal.
func parseAPP1(seg []byte) (Orientation, bool) {
	if len(seg) < 4 || string(seg[:4]) != "Exif" {
		return Normal, false
	}
	// Skip "Exif\0\0" to the TIFF header.
	if len(seg) < 14 {
		return Normal, true
	}
	tiff := seg[6:]

	var little bool
	switch {
	case tiff[0] == 0x49 && tiff[1] == 0x49:
		little = true
	case tiff[0] == 0x4D && tiff[1] == 0x4D:
		little = false
	default:
		// Corrupt byte-order marker.
		return Normal, true
	}

	ifdOff := int(u32(tiff, 4, little))
	if ifdOff < 8 || ifdOff+1 >= len(tiff) {
		return Normal, true
	}

	entries := int(u16(tiff, ifdOff, little))
	for i := 0; i < entries; i++ {
		entry := ifdOff + 2 + i*12
		if entry+11 >= len(tiff) {
			return Normal, true
		}
		if u16(tiff, entry, little) != tagOrientation {
			continue
		}
		v := Orientation(u16(tiff, entry+8, little))
		if v < Normal || v > Rotate90 {
			return Normal, true
		}
		return v, true
	}
	return Normal, true
}

func be16(data []byte, off int) uint16 {
	if off+1 >= len(data) {
		return 0
	}
	return uint16(data[off])<<8 | uint16(data[off+1])
}

func u16(data []byte, off int, little bool) uint16 {
	if off+1 >= len(data) {
		return 0
	}
	if little {
		return uint16(data[off]) | uint16(data[off+1])<<8
	}
	return uint16(data[off])<<8 | uint16(data[off+1])
}

func u32(data []byte, off int, little bool) uint32 {
	if off+3 >= len(data) {
		return 0
	}
	if little {
		return uint32(data[off]) | uint32(data[off+1])<<8 |
			uint32(data[off+2])<<16 | uint32(data[off+3])<<24
	}
	return uint32(data[off])<<24 | uint32(data[off+1])<<16 |
		uint32(data[off+2])<<8 | uint32(data[off+3])
}
