package png

import (
	"bytes"

	"github.com/PhilipLudington/go-png/internal/adam7"
	"github.com/PhilipLudington/go-png/internal/chunk"
	"github.com/PhilipLudington/go-png/internal/filter"
	"github.com/PhilipLudington/go-png/internal/flate"
	"github.com/PhilipLudington/go-png/internal/zlib"
)

// DecodeHeader peeks at a PNG stream's signature and IHDR without
// inflating any IDAT data -- useful for callers that only need
// dimensions or color information. It reads no chunk after IHDR, so a
// PLTE chunk is neither parsed nor returned.
func DecodeHeader(data []byte) (Header, error) {
	n, err := chunk.ReadSignature(data)
	if err != nil {
		return Header{}, translateChunkErr(err)
	}
	data = data[n:]

	c, consumed, _, err := chunk.ReadChunk(data)
	if err != nil {
		return Header{}, translateChunkErr(err)
	}
	if c.Type != "IHDR" {
		return Header{}, ErrMissingIhdr
	}
	_ = consumed
	return ParseHeader(c.Data)
}

// Decode parses a complete PNG stream into an Image.
func Decode(data []byte) (*Image, error) {
	n, err := chunk.ReadSignature(data)
	if err != nil {
		return nil, translateChunkErr(err)
	}
	data = data[n:]

	var (
		chunks  []chunk.Chunk
		idat    bytes.Buffer
		header  Header
		palette Palette
		haveHdr bool
		sawIdat bool
	)

	for {
		c, consumed, skipped, err := chunk.ReadChunk(data)
		if err != nil {
			return nil, translateChunkErr(err)
		}
		data = data[consumed:]
		if skipped {
			if len(data) == 0 {
				return nil, ErrPrematureEnd
			}
			continue
		}

		chunks = append(chunks, c)

		switch c.Type {
		case "IHDR":
			header, err = ParseHeader(c.Data)
			if err != nil {
				return nil, err
			}
			haveHdr = true
		case "PLTE":
			if !haveHdr {
				return nil, ErrMissingIhdr
			}
			if sawIdat {
				return nil, ErrPlteAfterIdat
			}
			if header.ColorType != Indexed && header.ColorType != Rgb && header.ColorType != Rgba {
				return nil, ErrPlteForNonIndexed
			}
			palette, err = ParsePalette(c.Data)
			if err != nil {
				return nil, err
			}
		case "IDAT":
			sawIdat = true
			idat.Write(c.Data)
		}

		if c.Type == "IEND" {
			break
		}
		if len(data) == 0 {
			return nil, ErrPrematureEnd
		}
	}

	if err := chunk.ValidateOrder(chunks); err != nil {
		return nil, translateChunkErr(err)
	}
	if !haveHdr {
		return nil, ErrMissingIhdr
	}
	if header.ColorType == Indexed && palette == nil {
		return nil, ErrMissingPlteForIndexed
	}
	if idat.Len() == 0 {
		return nil, ErrMissingIdat
	}

	raw, err := zlib.Unwrap(idat.Bytes(), maxDecompressedSize(header))
	if err != nil {
		return nil, translateZlibErr(err)
	}

	pixels, err := reconstructPixels(header, raw)
	if err != nil {
		return nil, err
	}

	return &Image{Header: header, Pixels: pixels, Palette: palette}, nil
}

// maxDecompressedSize bounds the inflate output to the exact size the
// filtered scanlines (one leading filter-type byte per row) occupy, so
// a corrupt or adversarial IDAT stream cannot force unbounded
// allocation (spec.md §5).
func maxDecompressedSize(h Header) int {
	rowBytes := h.RowBytes()
	if !h.Interlaced() {
		return (rowBytes + 1) * int(h.Height)
	}
	total := 0
	for pass := 0; pass < adam7.NumPasses; pass++ {
		pw, ph := adam7.PassDimensions(int(h.Width), int(h.Height), pass)
		if pw == 0 || ph == 0 {
			continue
		}
		passRowBytes := rowBytesFor(h, pw)
		total += (passRowBytes + 1) * ph
	}
	return total
}

func rowBytesFor(h Header, width int) int {
	tmp := h
	tmp.Width = uint32(width)
	return tmp.RowBytes()
}

// reconstructPixels undoes scanline filtering (and, if interlaced, the
// Adam7 pass layout) over the inflated IDAT stream, returning the flat
// tightly-packed pixel buffer described by h.
func reconstructPixels(h Header, raw []byte) ([]byte, error) {
	bpp := h.FilterUnit()

	if !h.Interlaced() {
		return unfilterPlane(raw, int(h.Height), h.RowBytes(), bpp)
	}

	full := make([]byte, int(h.Height)*h.RowBytes())
	pos := 0
	for pass := 0; pass < adam7.NumPasses; pass++ {
		pw, ph := adam7.PassDimensions(int(h.Width), int(h.Height), pass)
		if pw == 0 || ph == 0 {
			continue
		}
		passRowBytes := rowBytesFor(h, pw)
		passFilterUnit := bpp
		need := (passRowBytes + 1) * ph
		if pos+need > len(raw) {
			return nil, ErrUnexpectedEndOfStream
		}
		passPixels, err := unfilterPlane(raw[pos:pos+need], ph, passRowBytes, passFilterUnit)
		if err != nil {
			return nil, err
		}
		pos += need
		adam7.Scatter(full, h.RowBytes(), passPixels, passRowBytes, pass, int(h.Width), int(h.Height), int(h.BitDepth), h.SampleCount())
	}
	return full, nil
}

// unfilterPlane reverses per-row filtering over height rows of rowBytes
// each, where raw is framed as one leading filter-type byte followed by
// rowBytes of filtered data, repeated height times.
func unfilterPlane(raw []byte, height, rowBytes, bpp int) ([]byte, error) {
	out := make([]byte, height*rowBytes)
	pos := 0
	var prev []byte
	for y := 0; y < height; y++ {
		if pos >= len(raw) {
			return nil, ErrUnexpectedEndOfStream
		}
		typ := filter.Type(raw[pos])
		pos++
		if pos+rowBytes > len(raw) {
			return nil, ErrUnexpectedEndOfStream
		}
		row := out[y*rowBytes : (y+1)*rowBytes]
		copy(row, raw[pos:pos+rowBytes])
		pos += rowBytes

		if err := filter.Unfilter(typ, row, prev, bpp); err != nil {
			return nil, ErrInvalidFilterType
		}
		prev = row
	}
	return out, nil
}

func translateChunkErr(err error) error {
	switch err {
	case chunk.ErrShortSignature, chunk.ErrBadSignature:
		return ErrInvalidSignature
	case chunk.ErrTruncated:
		return ErrPrematureEnd
	case chunk.ErrLengthTooLarge:
		return ErrChunkTooLarge
	case chunk.ErrBadType:
		return ErrInvalidChunkType
	case chunk.ErrCRCMismatch:
		return ErrInvalidChunkCRC
	case chunk.ErrFirstNotIHDR:
		return ErrMissingIhdr
	case chunk.ErrLastNotIEND:
		return ErrMissingIend
	case chunk.ErrIENDNotEmpty:
		return ErrPrematureEnd
	case chunk.ErrIDATNotContig:
		return ErrChunkOrderViolation
	case chunk.ErrDuplicateIHDR:
		return ErrDuplicateIhdr
	default:
		return err
	}
}

func translateZlibErr(err error) error {
	switch err {
	case zlib.ErrHeaderTooShort, zlib.ErrInvalidHeader:
		return ErrInvalidZlibHeader
	case zlib.ErrUnsupportedCM:
		return ErrInvalidZlibHeader
	case zlib.ErrPresetDictionary:
		return ErrDictNotSupported
	case zlib.ErrTrailerTruncated:
		return ErrUnexpectedEndOfStream
	case zlib.ErrChecksumMismatch:
		return ErrInvalidZlibChecksum
	default:
		return translateFlateErr(err)
	}
}

func translateFlateErr(err error) error {
	switch err {
	case flate.ErrUnexpectedEnd:
		return ErrUnexpectedEndOfStream
	case flate.ErrInvalidBlockType:
		return ErrInvalidBlockType
	case flate.ErrInvalidStoredLen:
		return ErrInvalidStoredLength
	case flate.ErrInvalidCode:
		return ErrInvalidHuffmanCode
	case flate.ErrInvalidDistance:
		return ErrInvalidDistance
	case flate.ErrInvalidLengthCode:
		return ErrInvalidLengthCode
	case flate.ErrTooManyLitLen, flate.ErrTooManyDist,
		flate.ErrOversubscribed, flate.ErrEmptyCodeLengths, flate.ErrCodeTooLong:
		return ErrIncompleteTree
	case flate.ErrOutputTooLarge:
		return ErrOutputBufferFull
	default:
		return err
	}
}
