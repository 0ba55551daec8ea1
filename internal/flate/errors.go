package flate

import (
	"errors"

	"github.com/PhilipLudington/go-png/internal/bitio"
)

// Errors surfaced by Inflate/Deflate. The root package maps these onto
// its own documented error taxonomy.
var (
	ErrUnexpectedEnd     = bitio.ErrUnexpectedEnd
	ErrInvalidBlockType  = errors.New("flate: reserved block type 11")
	ErrInvalidStoredLen  = errors.New("flate: stored block LEN/NLEN mismatch")
	ErrInvalidCode       = errors.New("flate: no huffman code matches the input bits")
	ErrInvalidDistance   = errors.New("flate: back-reference distance exceeds bytes produced so far")
	ErrInvalidLengthCode = errors.New("flate: length or distance code out of range")
	ErrTooManyLitLen     = errors.New("flate: HLIT exceeds 286 literal/length codes")
	ErrTooManyDist       = errors.New("flate: HDIST exceeds 30 distance codes")
	ErrOutputTooLarge    = errors.New("flate: decompressed output exceeds the configured limit")
)
