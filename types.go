package png

import (
	"encoding/binary"

	"github.com/PhilipLudington/go-png/internal/pixel"
)

// ColorType is the IHDR color_type byte: it selects how many samples
// make up one pixel and whether those samples index a palette.
type ColorType byte

const (
	Grayscale      ColorType = 0
	Rgb            ColorType = 2
	Indexed        ColorType = 3
	GrayscaleAlpha ColorType = 4
	Rgba           ColorType = 6
)

// SampleCount returns the number of channels one pixel of this color
// type carries (1, 3, 1, 2, 4 respectively; Indexed pixels carry one
// palette index, not three color samples).
func (c ColorType) SampleCount() int {
	switch c {
	case Grayscale, Indexed:
		return 1
	case Rgb:
		return 3
	case GrayscaleAlpha:
		return 2
	case Rgba:
		return 4
	default:
		return 0
	}
}

func (c ColorType) valid() bool {
	switch c {
	case Grayscale, Rgb, Indexed, GrayscaleAlpha, Rgba:
		return true
	default:
		return false
	}
}

func (c ColorType) String() string {
	switch c {
	case Grayscale:
		return "Grayscale"
	case Rgb:
		return "Rgb"
	case Indexed:
		return "Indexed"
	case GrayscaleAlpha:
		return "GrayscaleAlpha"
	case Rgba:
		return "Rgba"
	default:
		return "Unknown"
	}
}

// validBitDepths maps each color type to the bit depths the format
// allows it to carry, spec.md §3.
var validBitDepths = map[ColorType][]byte{
	Grayscale:      {1, 2, 4, 8, 16},
	Rgb:            {8, 16},
	Indexed:        {1, 2, 4, 8},
	GrayscaleAlpha: {8, 16},
	Rgba:           {8, 16},
}

func bitDepthValid(ct ColorType, bitDepth byte) bool {
	for _, d := range validBitDepths[ct] {
		if d == bitDepth {
			return true
		}
	}
	return false
}

// maxDimensionPixels bounds width*height to preclude overflow in
// downstream row-byte and buffer-size arithmetic, spec.md §3.
const maxDimensionPixels = 1 << 30

// maxDimension is the wire-format bound on a single width or height
// field (u32, 1..2^31-1).
const maxDimension = 1<<31 - 1

// headerSize is the byte length of an IHDR chunk's payload.
const headerSize = 13

// Header is the decoded IHDR: image dimensions and the pixel encoding
// that follows in IDAT.
type Header struct {
	Width             uint32
	Height            uint32
	BitDepth          byte
	ColorType         ColorType
	CompressionMethod byte
	FilterMethod      byte
	InterlaceMethod   byte
}

// ParseHeader decodes and validates a 13-byte IHDR payload.
func ParseHeader(data []byte) (Header, error) {
	if len(data) != headerSize {
		return Header{}, ErrInvalidIhdrLength
	}

	h := Header{
		Width:             binary.BigEndian.Uint32(data[0:4]),
		Height:            binary.BigEndian.Uint32(data[4:8]),
		BitDepth:          data[8],
		ColorType:         ColorType(data[9]),
		CompressionMethod: data[10],
		FilterMethod:      data[11],
		InterlaceMethod:   data[12],
	}
	if err := h.Validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// Validate checks every IHDR field against spec.md §3's invariants.
func (h Header) Validate() error {
	if h.Width == 0 || h.Width > maxDimension {
		return ErrInvalidWidth
	}
	if h.Height == 0 || h.Height > maxDimension {
		return ErrInvalidHeight
	}
	if !h.ColorType.valid() {
		return ErrInvalidColorType
	}
	if !bitDepthValid(h.ColorType, h.BitDepth) {
		switch h.BitDepth {
		case 1, 2, 4, 8, 16:
			return ErrInvalidColorBitDepthCombo
		}
		return ErrInvalidBitDepth
	}
	if h.CompressionMethod != 0 {
		return ErrInvalidCompressionMethod
	}
	if h.FilterMethod != 0 {
		return ErrInvalidFilterMethod
	}
	if h.InterlaceMethod != 0 && h.InterlaceMethod != 1 {
		return ErrInvalidInterlaceMethod
	}
	if uint64(h.Width)*uint64(h.Height) > maxDimensionPixels {
		return ErrDimensionsOverflow
	}
	return nil
}

// Encode returns the 13-byte IHDR payload for h. Callers are expected
// to have already validated h (e.g. via Validate or ParseHeader).
func (h Header) Encode() []byte {
	buf := make([]byte, headerSize)
	binary.BigEndian.PutUint32(buf[0:4], h.Width)
	binary.BigEndian.PutUint32(buf[4:8], h.Height)
	buf[8] = h.BitDepth
	buf[9] = byte(h.ColorType)
	buf[10] = h.CompressionMethod
	buf[11] = h.FilterMethod
	buf[12] = h.InterlaceMethod
	return buf
}

// Interlaced reports whether h specifies Adam7 interlacing.
func (h Header) Interlaced() bool {
	return h.InterlaceMethod == 1
}

// SampleCount is h.ColorType.SampleCount().
func (h Header) SampleCount() int {
	return h.ColorType.SampleCount()
}

// BytesPerPixel returns the byte footprint of one pixel, valid only
// when BitDepth >= 8 (sub-byte depths pack multiple pixels per byte).
func (h Header) BytesPerPixel() int {
	return pixel.BytesPerPixel(int(h.BitDepth), h.SampleCount())
}

// RowBytes returns the tightly-packed byte length of one scanline.
func (h Header) RowBytes() int {
	return pixel.RowBytes(int(h.Width), int(h.BitDepth), h.SampleCount())
}

// FilterUnit returns the "bpp" the scanline filters predict across.
func (h Header) FilterUnit() int {
	return pixel.FilterUnit(int(h.BitDepth), h.SampleCount())
}

// PaletteEntry is one RGB triple of a PLTE chunk.
type PaletteEntry struct {
	R, G, B byte
}

// Palette is the ordered list of colors an Indexed image's samples
// index into; spec.md §3 bounds it to 1..256 entries.
type Palette []PaletteEntry

const (
	minPaletteEntries = 1
	maxPaletteEntries = 256
)

// ParsePalette decodes a PLTE chunk's payload (a flat sequence of RGB
// triples) into a Palette.
func ParsePalette(data []byte) (Palette, error) {
	if len(data) == 0 || len(data)%3 != 0 {
		return nil, ErrInvalidPaletteSize
	}
	n := len(data) / 3
	if n < minPaletteEntries || n > maxPaletteEntries {
		return nil, ErrInvalidPaletteSize
	}
	p := make(Palette, n)
	for i := range p {
		p[i] = PaletteEntry{R: data[i*3], G: data[i*3+1], B: data[i*3+2]}
	}
	return p, nil
}

// Encode returns p's wire encoding: a flat sequence of RGB triples.
func (p Palette) Encode() []byte {
	buf := make([]byte, len(p)*3)
	for i, e := range p {
		buf[i*3] = e.R
		buf[i*3+1] = e.G
		buf[i*3+2] = e.B
	}
	return buf
}

// Image is a fully decoded PNG: its header, the tightly-packed pixel
// buffer (row-major, sub-byte samples packed high-bit-first, see
// internal/pixel), and a palette when ColorType is Indexed.
type Image struct {
	Header  Header
	Pixels  []byte
	Palette Palette
}

// RowBytes is a convenience forward to Header.RowBytes.
func (img *Image) RowBytes() int {
	return img.Header.RowBytes()
}

// Row returns the y'th scanline as a slice into img.Pixels.
func (img *Image) Row(y int) []byte {
	rb := img.RowBytes()
	return img.Pixels[y*rb : (y+1)*rb]
}
