package chunk

import (
	"encoding/binary"
	"errors"
)

// Signature is the 8-byte sequence every PNG stream begins with.
var Signature = [8]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

const headerSize = 8 // 4-byte length + 4-byte type, before data+CRC

var (
	ErrShortSignature  = errors.New("chunk: fewer than 8 bytes available")
	ErrBadSignature    = errors.New("chunk: signature does not match the PNG magic bytes")
	ErrTruncated       = errors.New("chunk: truncated chunk header or payload")
	ErrLengthTooLarge  = errors.New("chunk: declared length exceeds 2^31-1")
	ErrBadType         = errors.New("chunk: type bytes are not all ASCII letters")
	ErrCRCMismatch     = errors.New("chunk: CRC-32 does not match type+data")
	ErrFirstNotIHDR    = errors.New("chunk: first chunk is not IHDR")
	ErrLastNotIEND     = errors.New("chunk: last chunk is not IEND")
	ErrIENDNotEmpty    = errors.New("chunk: IEND chunk carries a nonzero-length payload")
	ErrIDATNotContig   = errors.New("chunk: IDAT chunks are not contiguous")
	ErrDuplicateIHDR   = errors.New("chunk: more than one IHDR chunk")
)

// Chunk is a single parsed PNG chunk: its 4-letter type and payload (CRC
// already validated).
type Chunk struct {
	Type string
	Data []byte
}

// IsCritical reports whether a chunk type is critical (first letter
// uppercase) per the PNG naming convention, spec.md §4.8.
func IsCritical(typ string) bool {
	return len(typ) == 4 && typ[0] >= 'A' && typ[0] <= 'Z'
}

// ReadSignature validates the leading 8-byte PNG signature and returns
// the bytes consumed.
func ReadSignature(data []byte) (int, error) {
	if len(data) < len(Signature) {
		return 0, ErrShortSignature
	}
	for i, b := range Signature {
		if data[i] != b {
			return 0, ErrBadSignature
		}
	}
	return len(Signature), nil
}

// ReadChunk parses one chunk (length, type, data, CRC) from the start of
// data and returns it along with the number of bytes consumed. skipped
// is true if this was an ancillary chunk whose CRC failed validation
// (spec.md §9's tolerance policy); critical-chunk CRC failures are
// always a fatal ErrCRCMismatch.
func ReadChunk(data []byte) (c Chunk, consumed int, skipped bool, err error) {
	if len(data) < headerSize {
		return Chunk{}, 0, false, ErrTruncated
	}
	length := binary.BigEndian.Uint32(data[0:4])
	if length > 1<<31-1 {
		return Chunk{}, 0, false, ErrLengthTooLarge
	}
	typ := string(data[4:8])
	if !validType(typ) {
		return Chunk{}, 0, false, ErrBadType
	}

	total := headerSize + int(length) + 4
	if total < 0 || len(data) < total {
		return Chunk{}, 0, false, ErrTruncated
	}
	payload := data[8 : 8+length]
	wantCRC := binary.BigEndian.Uint32(data[total-4 : total])

	h := NewCRC32Hash()
	h.Write(data[4:8])
	h.Write(payload)
	if h.Sum32() != wantCRC {
		if IsCritical(typ) {
			return Chunk{}, 0, false, ErrCRCMismatch
		}
		return Chunk{}, total, true, nil
	}

	return Chunk{Type: typ, Data: payload}, total, false, nil
}

func validType(typ string) bool {
	if len(typ) != 4 {
		return false
	}
	for _, c := range []byte(typ) {
		if !(c >= 'A' && c <= 'Z') && !(c >= 'a' && c <= 'z') {
			return false
		}
	}
	return true
}

// WriteChunk appends a chunk's wire encoding (length, type, data, CRC)
// to dst and returns the extended slice.
func WriteChunk(dst []byte, typ string, data []byte) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	dst = append(dst, lenBuf[:]...)
	dst = append(dst, typ...)
	dst = append(dst, data...)

	h := NewCRC32Hash()
	h.Write([]byte(typ))
	h.Write(data)
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], h.Sum32())
	return append(dst, crcBuf[:]...)
}

// ValidateOrder checks the structural chunk-order invariants from
// spec.md §4.8/§8: IHDR must be first, IEND must be last and empty,
// IDAT chunks must be contiguous, and IHDR must not repeat.
func ValidateOrder(chunks []Chunk) error {
	if len(chunks) == 0 || chunks[0].Type != "IHDR" {
		return ErrFirstNotIHDR
	}
	last := chunks[len(chunks)-1]
	if last.Type != "IEND" {
		return ErrLastNotIEND
	}
	if len(last.Data) != 0 {
		return ErrIENDNotEmpty
	}

	seenIDAT := false
	idatEnded := false
	ihdrCount := 0
	for _, c := range chunks {
		switch c.Type {
		case "IHDR":
			ihdrCount++
		case "IDAT":
			if idatEnded {
				return ErrIDATNotContig
			}
			seenIDAT = true
		default:
			if seenIDAT {
				idatEnded = true
			}
		}
	}
	if ihdrCount != 1 {
		return ErrDuplicateIHDR
	}
	return nil
}
