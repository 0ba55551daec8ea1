package zlib

import (
	"encoding/binary"

	"github.com/PhilipLudington/go-png/internal/flate"
)

// cmfDeflate is the whole CMF byte: compression method 8 (deflate) in the
// low nibble, with CINFO (high nibble) set to 7: a 32 KiB window, the largest RFC 1950
// allows and the one deflate's Matcher always uses.
const cmfDeflate = 0x78

// Wrap compresses raw at the given level and frames it as an RFC 1950
// zlib stream: a 2-byte header, the deflate payload, and a big-endian
// Adler-32 trailer over the uncompressed data.
func Wrap(raw []byte, level flate.Level) []byte {
	payload := flate.Deflate(raw, level)

	out := make([]byte, 0, 2+len(payload)+4)
	out = append(out, header(level)...)
	out = append(out, payload...)

	var trailer [4]byte
	binary.BigEndian.PutUint32(trailer[:], Adler32(raw))
	return append(out, trailer[:]...)
}

// header builds the 2-byte CMF/FLG pair: CMF is fixed (deflate, 32 KiB
// window); FLG's top 2 bits record the compression level as an FLEVEL
// hint, and its low 5 bits are chosen so that (CMF*256+FLG) mod 31 == 0.
func header(level flate.Level) []byte {
	var flevel byte
	switch level {
	case flate.LevelStore, flate.LevelFastest:
		flevel = 0
	case flate.LevelFast:
		flevel = 1
	case flate.LevelBest:
		flevel = 3
	default:
		flevel = 2
	}

	base := int(cmfDeflate)*256 + int(flevel)<<6
	fcheck := (31 - base%31) % 31
	return []byte{cmfDeflate, flevel<<6 | byte(fcheck)}
}

// Unwrap validates and strips the RFC 1950 header and trailer, and
// inflates the payload in between. maxOutput bounds the decompressed
// size (0 = unbounded); see flate.Inflate.
func Unwrap(data []byte, maxOutput int) ([]byte, error) {
	if len(data) < 2 {
		return nil, ErrHeaderTooShort
	}
	cmf, flg := data[0], data[1]
	if (int(cmf)*256+int(flg))%31 != 0 {
		return nil, ErrInvalidHeader
	}
	if cmf&0x0f != 8 {
		return nil, ErrUnsupportedCM
	}
	if cmf>>4 > 7 {
		return nil, ErrInvalidHeader
	}
	if flg&0x20 != 0 {
		return nil, ErrPresetDictionary
	}
	if len(data) < 6 {
		return nil, ErrTrailerTruncated
	}

	payload := data[2 : len(data)-4]
	raw, err := flate.Inflate(payload, maxOutput)
	if err != nil {
		return nil, err
	}

	want := binary.BigEndian.Uint32(data[len(data)-4:])
	if Adler32(raw) != want {
		return nil, ErrChecksumMismatch
	}
	return raw, nil
}
