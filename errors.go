package png

import "errors"

// Error taxonomy, spec.md §7: every failure mode is a distinct value the
// caller can match on with errors.Is, even when several wrap the same
// underlying internal-package error.
var (
	// Signature and chunk framing.
	ErrInvalidSignature    = errors.New("png: signature does not match the PNG magic bytes")
	ErrMissingIhdr         = errors.New("png: first chunk is not IHDR")
	ErrMissingIdat         = errors.New("png: no IDAT chunk present")
	ErrMissingIend         = errors.New("png: last chunk is not IEND")
	ErrPrematureEnd        = errors.New("png: input ends before IEND")
	ErrDuplicateIhdr       = errors.New("png: more than one IHDR chunk")
	ErrChunkOrderViolation = errors.New("png: chunks are out of order")
	ErrInvalidChunkType    = errors.New("png: chunk type is not all ASCII letters")
	ErrInvalidChunkCRC     = errors.New("png: chunk CRC-32 does not match")
	ErrChunkTooLarge       = errors.New("png: chunk length exceeds 2^31-1")

	// Header.
	ErrInvalidIhdrLength         = errors.New("png: IHDR payload is not exactly 13 bytes")
	ErrInvalidWidth              = errors.New("png: width is zero or exceeds the maximum")
	ErrInvalidHeight             = errors.New("png: height is zero or exceeds the maximum")
	ErrInvalidBitDepth           = errors.New("png: bit depth is not one of 1, 2, 4, 8, 16")
	ErrInvalidColorType          = errors.New("png: color type byte is not a recognized value")
	ErrInvalidColorBitDepthCombo = errors.New("png: bit depth is not valid for this color type")
	ErrInvalidCompressionMethod  = errors.New("png: compression method is not 0")
	ErrInvalidFilterMethod       = errors.New("png: filter method is not 0")
	ErrInvalidInterlaceMethod    = errors.New("png: interlace method is not 0 or 1")
	ErrDimensionsOverflow        = errors.New("png: width*height*bytes-per-pixel overflows")

	// Palette.
	ErrMissingPlteForIndexed = errors.New("png: indexed color type requires a PLTE chunk")
	ErrInvalidPaletteSize    = errors.New("png: PLTE length is not a multiple of 3, or out of range")
	ErrPlteForNonIndexed     = errors.New("png: PLTE present for a color type that forbids it")
	ErrPlteAfterIdat         = errors.New("png: PLTE chunk appears after IDAT")

	// Compression (zlib/deflate), largely re-exported from internal/zlib
	// and internal/flate so callers never need to import those packages.
	ErrInvalidZlibHeader     = errors.New("png: zlib CMF/FLG header is invalid")
	ErrInvalidZlibChecksum   = errors.New("png: zlib Adler-32 trailer does not match")
	ErrDictNotSupported      = errors.New("png: zlib preset dictionaries are not supported")
	ErrInvalidBlockType      = errors.New("png: deflate block type is reserved")
	ErrInvalidStoredLength   = errors.New("png: deflate stored block LEN/NLEN mismatch")
	ErrInvalidHuffmanCode    = errors.New("png: no huffman code matches the input bits")
	ErrIncompleteTree        = errors.New("png: huffman code table could not be built")
	ErrInvalidDistance       = errors.New("png: back-reference distance exceeds bytes produced so far")
	ErrInvalidLengthCode     = errors.New("png: length or distance code out of range")
	ErrUnexpectedEndOfStream = errors.New("png: compressed stream ends before expected")
	ErrOutputBufferFull      = errors.New("png: decompressed output exceeds the configured limit")

	// Filtering.
	ErrInvalidFilterType = errors.New("png: scanline filter type byte is not 0-4")

	// Resource.
	ErrOutOfMemory  = errors.New("png: allocation would exceed a configured limit")
	ErrSizeOverflow = errors.New("png: a size computation overflowed")

	// Streaming.
	ErrInterlacedNotSupported = errors.New("png: interlaced input is not supported by the streaming decoder")
	ErrAlreadyFinished        = errors.New("png: Finish called more than once")
	ErrRowCountMismatch       = errors.New("png: wrong number of rows written before Finish")
)
