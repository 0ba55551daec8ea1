package zlib

import "errors"

var (
	ErrHeaderTooShort   = errors.New("zlib: stream shorter than the 2-byte header")
	ErrInvalidHeader    = errors.New("zlib: CMF/FLG check bits invalid")
	ErrUnsupportedCM    = errors.New("zlib: compression method is not deflate (CM=8)")
	ErrPresetDictionary = errors.New("zlib: preset dictionaries are not supported")
	ErrTrailerTruncated = errors.New("zlib: stream shorter than header + Adler-32 trailer")
	ErrChecksumMismatch = errors.New("zlib: Adler-32 trailer does not match decompressed data")
)
