package png

import (
	"io"

	"github.com/PhilipLudington/go-png/internal/adam7"
	"github.com/PhilipLudington/go-png/internal/chunk"
	"github.com/PhilipLudington/go-png/internal/filter"
	"github.com/PhilipLudington/go-png/internal/flate"
	"github.com/PhilipLudington/go-png/internal/pool"
	"github.com/PhilipLudington/go-png/internal/zlib"
)

// idatChunkSize is the maximum payload length of a single IDAT chunk;
// large streams are split across several (spec.md §4.8).
const idatChunkSize = 32768

// FilterStrategy selects how encode picks a scanline filter per row.
type FilterStrategy int

const (
	// FilterAdaptive runs all five filters per row and keeps whichever
	// minimizes the sum of absolute signed-byte values (spec.md §4.9).
	FilterAdaptive FilterStrategy = iota
	// FilterNone always emits unfiltered rows.
	FilterNone
	// FilterFixed applies a single named filter.Type to every row.
	FilterFixed
)

// EncoderOptions configures Encode/EncodeRaw. A nil *EncoderOptions
// means DefaultEncoderOptions().
type EncoderOptions struct {
	CompressionLevel flate.Level
	FilterStrategy   FilterStrategy
	// FixedFilter is the filter.Type used when FilterStrategy is
	// FilterFixed; ignored otherwise.
	FixedFilter filter.Type
	// Interlace requests Adam7 interlacing on the encoded stream.
	Interlace bool
}

// DefaultEncoderOptions returns the options Encode uses when called
// with a nil *EncoderOptions: default compression, adaptive filtering,
// no interlacing.
func DefaultEncoderOptions() *EncoderOptions {
	return &EncoderOptions{
		CompressionLevel: flate.LevelDefault,
		FilterStrategy:   FilterAdaptive,
	}
}

// MaxEncodedSize estimates an upper bound on the encoded size of an
// image described by h, for callers that want to preallocate an output
// buffer. It is a loose bound (the larger of the stored-block and the
// worst-case Huffman-coded deflate size of the filtered scanlines, plus
// zlib and chunk framing), not an exact size.
func MaxEncodedSize(h Header) (int, error) {
	if err := h.Validate(); err != nil {
		return 0, err
	}
	rowBytes := h.RowBytes()
	filtered := uint64(rowBytes+1) * uint64(h.Height)
	if h.Interlaced() {
		filtered = uint64(maxDecompressedSize(h))
	}
	if filtered > 1<<40 {
		return 0, ErrSizeOverflow
	}
	// Deflate overhead: stored blocks add 5 bytes per 65535-byte block;
	// Huffman blocks spend at most 9 bits per input byte (a fixed-code
	// literal) plus under 1 KiB of block header and end-of-block code.
	// On top come the 6-byte zlib header/trailer and chunk framing for
	// IHDR, PLTE (worst case), N IDATs, and IEND.
	storedBlocks := filtered/65535 + 1
	payload := filtered + storedBlocks*5
	if huffman := (filtered*9+7)/8 + 1024; huffman > payload {
		payload = huffman
	}
	deflateOverhead := payload - filtered + 6
	idatChunks := (filtered+deflateOverhead)/idatChunkSize + 1
	chunkOverhead := idatChunks*12 + 8 + (headerSize + 12) + (3*256 + 12) + 12
	total := filtered + deflateOverhead + chunkOverhead
	if total > 1<<40 {
		return 0, ErrSizeOverflow
	}
	return int(total), nil
}

// Encode writes img to out as a complete PNG stream, returning the
// number of bytes written.
func Encode(img *Image, opts *EncoderOptions, out io.Writer) (int, error) {
	return EncodeRaw(img.Header, img.Pixels, img.Palette, opts, out)
}

// EncodeRaw writes a PNG stream built from an already-validated header,
// a flat tightly-packed pixel buffer, and (for Indexed images) a
// palette, returning the number of bytes written.
func EncodeRaw(h Header, pixels []byte, palette Palette, opts *EncoderOptions, out io.Writer) (int, error) {
	if opts == nil {
		opts = DefaultEncoderOptions()
	}
	if err := h.Validate(); err != nil {
		return 0, err
	}
	if h.ColorType == Indexed && len(palette) == 0 {
		return 0, ErrMissingPlteForIndexed
	}
	if h.ColorType != Indexed && h.ColorType != Rgb && h.ColorType != Rgba && len(palette) != 0 {
		return 0, ErrPlteForNonIndexed
	}
	wantLen := int(h.Height) * h.RowBytes()
	if len(pixels) != wantLen {
		return 0, ErrDimensionsOverflow
	}

	header := h
	if opts.Interlace {
		header.InterlaceMethod = 1
	} else {
		header.InterlaceMethod = 0
	}

	filtered := filterScanlines(header, pixels, opts)
	compressed := zlib.Wrap(filtered, opts.CompressionLevel)

	buf := pool.Get(outputSize(header, palette, len(compressed)))[:0]

	buf = append(buf, chunk.Signature[:]...)
	buf = chunk.WriteChunk(buf, "IHDR", header.Encode())
	if len(palette) != 0 {
		buf = chunk.WriteChunk(buf, "PLTE", palette.Encode())
	}
	for pos := 0; pos < len(compressed); pos += idatChunkSize {
		end := pos + idatChunkSize
		if end > len(compressed) {
			end = len(compressed)
		}
		buf = chunk.WriteChunk(buf, "IDAT", compressed[pos:end])
	}
	buf = chunk.WriteChunk(buf, "IEND", nil)

	n, err := out.Write(buf)
	pool.Put(buf)
	return n, err
}

// outputSize computes the exact byte length of the PNG stream EncodeRaw
// is about to assemble, so its scratch buffer can be pulled from the
// pool at the size class that actually matches the output -- letting
// Put hand it back to the same bucket future same-sized calls draw
// from, instead of always starting from the smallest bucket.
func outputSize(h Header, palette Palette, compressedLen int) int {
	const chunkOverhead = 12 // 4-byte length + 4-byte type + 4-byte CRC
	size := len(chunk.Signature) + chunkOverhead + headerSize
	if len(palette) != 0 {
		size += chunkOverhead + len(palette)*3
	}
	idatChunks := (compressedLen + idatChunkSize - 1) / idatChunkSize
	size += idatChunks*chunkOverhead + compressedLen
	size += chunkOverhead // IEND, zero-length payload
	return size
}

// filterScanlines produces the pre-deflate byte stream: one filter-type
// byte followed by the filtered row, for every row of every interlace
// pass (a single pass when h is not interlaced).
func filterScanlines(h Header, pixels []byte, opts *EncoderOptions) []byte {
	bpp := h.FilterUnit()

	if !h.Interlaced() {
		return filterPlane(pixels, int(h.Height), h.RowBytes(), bpp, opts)
	}

	var out []byte
	for pass := 0; pass < adam7.NumPasses; pass++ {
		pw, ph := adam7.PassDimensions(int(h.Width), int(h.Height), pass)
		if pw == 0 || ph == 0 {
			continue
		}
		passRowBytes := rowBytesFor(h, pw)
		passBuf := make([]byte, ph*passRowBytes)
		adam7.Gather(passBuf, passRowBytes, pixels, h.RowBytes(), pass, int(h.Width), int(h.Height), int(h.BitDepth), h.SampleCount())
		out = append(out, filterPlane(passBuf, ph, passRowBytes, bpp, opts)...)
	}
	return out
}

func filterPlane(pixels []byte, height, rowBytes, bpp int, opts *EncoderOptions) []byte {
	out := make([]byte, 0, (rowBytes+1)*height)
	scratch := make([]byte, rowBytes)
	var prev []byte

	for y := 0; y < height; y++ {
		cur := pixels[y*rowBytes : (y+1)*rowBytes]

		var typ filter.Type
		var row []byte
		switch opts.FilterStrategy {
		case FilterNone:
			typ, row = filter.None, cur
		case FilterFixed:
			filter.Filter(opts.FixedFilter, scratch, cur, prev, bpp)
			typ, row = opts.FixedFilter, scratch
		default:
			typ, row = filter.SelectAdaptive(cur, prev, bpp, scratch)
		}

		out = append(out, byte(typ))
		out = append(out, row...)
		prev = cur
	}
	return out
}
