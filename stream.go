package png

import (
	"io"

	"github.com/PhilipLudington/go-png/internal/chunk"
	"github.com/PhilipLudington/go-png/internal/filter"
	"github.com/PhilipLudington/go-png/internal/pool"
	"github.com/PhilipLudington/go-png/internal/zlib"
)

type decodeState int

const (
	stateAwaitingSignature decodeState = iota
	stateAwaitingIhdr
	stateInChunks
	stateFinished
)

// StreamDecoder incrementally parses a byte-fed PNG stream, expressed
// as an explicit state machine (spec.md §4.11): the caller appends
// bytes via Feed and drains completed rows via NextRow between feeds.
// Interlaced streams are rejected as soon as IHDR is parsed; callers
// must fall back to Decode for those.
type StreamDecoder struct {
	state   decodeState
	buf     []byte
	chunks  []chunk.Chunk
	header  Header
	palette Palette
	idat    []byte
	sawIdat bool
	rows    [][]byte
	rowPos  int
	done    bool
}

// NewStreamDecoder returns a decoder in the AwaitingSignature state.
func NewStreamDecoder() *StreamDecoder {
	return &StreamDecoder{state: stateAwaitingSignature}
}

// Header returns the parsed IHDR, available once the decoder has moved
// past AwaitingIhdr.
func (d *StreamDecoder) Header() (Header, bool) {
	return d.header, d.state != stateAwaitingSignature && d.state != stateAwaitingIhdr
}

// Feed appends data to the decoder's input buffer and drives the state
// machine as far as the buffered input allows, queuing any newly
// completed rows for NextRow. It returns as soon as more input is
// needed; that is not an error.
func (d *StreamDecoder) Feed(data []byte) error {
	d.buf = append(d.buf, data...)

	for {
		switch d.state {
		case stateAwaitingSignature:
			n, err := chunk.ReadSignature(d.buf)
			if err == chunk.ErrShortSignature {
				return nil
			}
			if err != nil {
				return translateChunkErr(err)
			}
			d.buf = d.buf[n:]
			d.state = stateAwaitingIhdr

		case stateAwaitingIhdr, stateInChunks:
			c, consumed, skipped, err := chunk.ReadChunk(d.buf)
			if err == chunk.ErrTruncated {
				return nil
			}
			if err != nil {
				return translateChunkErr(err)
			}
			d.buf = d.buf[consumed:]
			if skipped {
				continue
			}

			if d.state == stateAwaitingIhdr && c.Type != "IHDR" {
				return ErrMissingIhdr
			}
			d.chunks = append(d.chunks, c)

			switch c.Type {
			case "IHDR":
				h, err := ParseHeader(c.Data)
				if err != nil {
					return err
				}
				if h.Interlaced() {
					return ErrInterlacedNotSupported
				}
				d.header = h
				d.state = stateInChunks
			case "PLTE":
				if d.sawIdat {
					return ErrPlteAfterIdat
				}
				if d.header.ColorType != Indexed && d.header.ColorType != Rgb && d.header.ColorType != Rgba {
					return ErrPlteForNonIndexed
				}
				pal, err := ParsePalette(c.Data)
				if err != nil {
					return err
				}
				d.palette = pal
			case "IDAT":
				if len(d.idat)+len(c.Data) > idatAccumLimit(d.header) {
					return ErrOutOfMemory
				}
				d.sawIdat = true
				d.idat = append(d.idat, c.Data...)
			case "IEND":
				if err := d.finalize(); err != nil {
					return err
				}
				d.state = stateFinished
				return nil
			}

		case stateFinished:
			return nil
		}
	}
}

// idatAccumSlack allows compressed data a little room over the
// decompressed size before idatAccumLimit gives up: stored (BTYPE=00)
// blocks add up to 5 bytes of overhead per 65535-byte block, and a
// pathological dynamic-Huffman encoding can still expand small inputs.
const idatAccumSlack = 4096

// idatAccumLimit bounds how many IDAT bytes Feed will accumulate before
// IEND, so a stream that never terminates its image data can't grow
// the input buffer without bound (spec.md §5's resource-acquisition
// guard, surfaced as ErrOutOfMemory).
func idatAccumLimit(h Header) int {
	return maxDecompressedSize(h)*2 + idatAccumSlack
}

// finalize runs once IEND is reached: it inflates the accumulated IDAT
// payload, unfilters every scanline, and queues the rows for NextRow
// (the bulk-on-IEND baseline strategy, spec.md §4.11).
func (d *StreamDecoder) finalize() error {
	if err := chunk.ValidateOrder(d.chunks); err != nil {
		return translateChunkErr(err)
	}
	if d.header.ColorType == Indexed && d.palette == nil {
		return ErrMissingPlteForIndexed
	}
	if len(d.idat) == 0 {
		return ErrMissingIdat
	}

	raw, err := zlib.Unwrap(d.idat, maxDecompressedSize(d.header))
	if err != nil {
		return translateZlibErr(err)
	}

	rowBytes := d.header.RowBytes()
	bpp := d.header.FilterUnit()
	pos := 0
	var prev []byte
	for y := 0; y < int(d.header.Height); y++ {
		if pos >= len(raw) {
			return ErrUnexpectedEndOfStream
		}
		typ := filter.Type(raw[pos])
		pos++
		if pos+rowBytes > len(raw) {
			return ErrUnexpectedEndOfStream
		}
		row := append([]byte(nil), raw[pos:pos+rowBytes]...)
		pos += rowBytes
		if err := filter.Unfilter(typ, row, prev, bpp); err != nil {
			return ErrInvalidFilterType
		}
		d.rows = append(d.rows, row)
		prev = row
	}
	return nil
}

// NextRow returns the next unfiltered scanline and true, or (nil,
// false) if none is currently available.
func (d *StreamDecoder) NextRow() ([]byte, bool) {
	if d.rowPos >= len(d.rows) {
		return nil, false
	}
	row := d.rows[d.rowPos]
	d.rowPos++
	return row, true
}

// Finish requires that IEND has been reached and returns the fully
// assembled Image.
func (d *StreamDecoder) Finish() (*Image, error) {
	if d.done {
		return nil, ErrAlreadyFinished
	}
	if d.state != stateFinished {
		return nil, ErrPrematureEnd
	}
	d.done = true

	pixels := make([]byte, 0, int(d.header.Height)*d.header.RowBytes())
	for _, row := range d.rows {
		pixels = append(pixels, row...)
	}
	return &Image{Header: d.header, Pixels: pixels, Palette: d.palette}, nil
}

// StreamEncoder incrementally encodes a row-fed PNG stream (spec.md
// §4.12): construction emits the signature, IHDR, and (if present)
// PLTE immediately, WriteRow buffers one filtered scanline at a time,
// and Finish compresses and emits the IDAT/IEND trailer.
type StreamEncoder struct {
	header  Header
	opts    EncoderOptions
	out     io.Writer
	buf     []byte
	prev    []byte
	scratch []byte
	rows    int
	done    bool
}

// NewStreamEncoder validates h and opts, writes the signature/IHDR/PLTE
// preamble to out, and returns a StreamEncoder ready for WriteRow.
// Interlacing is not supported in streaming mode.
func NewStreamEncoder(h Header, palette Palette, opts *EncoderOptions, out io.Writer) (*StreamEncoder, error) {
	if opts == nil {
		opts = DefaultEncoderOptions()
	}
	if opts.Interlace {
		return nil, ErrInterlacedNotSupported
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	if h.ColorType == Indexed && len(palette) == 0 {
		return nil, ErrMissingPlteForIndexed
	}
	if h.ColorType != Indexed && h.ColorType != Rgb && h.ColorType != Rgba && len(palette) != 0 {
		return nil, ErrPlteForNonIndexed
	}
	h.InterlaceMethod = 0

	preamble := append([]byte(nil), chunk.Signature[:]...)
	preamble = chunk.WriteChunk(preamble, "IHDR", h.Encode())
	if len(palette) != 0 {
		preamble = chunk.WriteChunk(preamble, "PLTE", palette.Encode())
	}
	if _, err := out.Write(preamble); err != nil {
		return nil, err
	}

	rowBytes := h.RowBytes()
	buf := pool.Get((rowBytes + 1) * int(h.Height))
	return &StreamEncoder{
		header:  h,
		opts:    *opts,
		out:     out,
		buf:     buf[:0],
		scratch: pool.Get(rowBytes),
	}, nil
}

// WriteRow validates pixels' length against the configured row size,
// chooses a filter, and appends the filtered row to the internal
// buffer that Finish will compress.
func (e *StreamEncoder) WriteRow(pixels []byte) error {
	if e.done {
		return ErrAlreadyFinished
	}
	rowBytes := e.header.RowBytes()
	if len(pixels) != rowBytes {
		return ErrDimensionsOverflow
	}
	bpp := e.header.FilterUnit()

	var typ filter.Type
	var row []byte
	switch e.opts.FilterStrategy {
	case FilterNone:
		typ, row = filter.None, pixels
	case FilterFixed:
		filter.Filter(e.opts.FixedFilter, e.scratch, pixels, e.prev, bpp)
		typ, row = e.opts.FixedFilter, e.scratch
	default:
		typ, row = filter.SelectAdaptive(pixels, e.prev, bpp, e.scratch)
	}

	e.buf = append(e.buf, byte(typ))
	e.buf = append(e.buf, row...)
	e.prev = append(e.prev[:0], pixels...)
	e.rows++
	return nil
}

// Finish compresses the accumulated filtered rows, emits them as
// size-capped IDAT chunks, then writes IEND. It is an error to call
// Finish twice or before exactly header.Height rows have been written.
func (e *StreamEncoder) Finish() (int, error) {
	if e.done {
		return 0, ErrAlreadyFinished
	}
	if e.rows != int(e.header.Height) {
		return 0, ErrRowCountMismatch
	}
	e.done = true

	compressed := zlib.Wrap(e.buf, e.opts.CompressionLevel)
	pool.Put(e.buf)
	pool.Put(e.scratch)
	e.buf, e.scratch = nil, nil

	var out []byte
	for pos := 0; pos < len(compressed); pos += idatChunkSize {
		end := pos + idatChunkSize
		if end > len(compressed) {
			end = len(compressed)
		}
		out = chunk.WriteChunk(out, "IDAT", compressed[pos:end])
	}
	out = chunk.WriteChunk(out, "IEND", nil)

	return e.out.Write(out)
}
