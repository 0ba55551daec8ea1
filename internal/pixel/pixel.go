// Package pixel computes PNG's row-byte layout and packs/unpacks
// sub-byte (1/2/4-bit) samples, high-bit-first, per spec.md §3's pixel
// buffer rules.
//
// No teacher file does this (WebP pixels are always 32-bit ARGB words);
// grounded directly on spec.md §3.
package pixel

// BytesPerPixel returns the number of bytes one pixel occupies, valid
// only for bitDepth >= 8.
func BytesPerPixel(bitDepth, sampleCount int) int {
	return sampleCount * (bitDepth / 8)
}

// RowBytes returns the tightly-packed byte length of one scanline of
// width pixels at the given bit depth and sample count (samples per
// pixel, e.g. 1 for grayscale/indexed, 4 for RGBA).
func RowBytes(width, bitDepth, sampleCount int) int {
	if bitDepth >= 8 {
		return width * BytesPerPixel(bitDepth, sampleCount)
	}
	bitsPerPixel := bitDepth * sampleCount
	return (width*bitsPerPixel + 7) / 8
}

// FilterUnit returns the "bpp" used by the filter predictors: bytes per
// pixel for bit_depth >= 8, else 1 (spec.md §4.9/§9's glossary entry).
func FilterUnit(bitDepth, sampleCount int) int {
	if bitDepth < 8 {
		return 1
	}
	if bpp := BytesPerPixel(bitDepth, sampleCount); bpp > 0 {
		return bpp
	}
	return 1
}

// GetSample reads the x'th sub-byte sample (bitDepth < 8, one sample per
// pixel: grayscale or indexed) from row, high-bit-first.
func GetSample(row []byte, x, bitDepth int) byte {
	bitPos := x * bitDepth
	byteIdx := bitPos / 8
	shift := 8 - bitDepth - bitPos%8
	mask := byte(1<<uint(bitDepth) - 1)
	return (row[byteIdx] >> uint(shift)) & mask
}

// SetSample writes the x'th sub-byte sample into row, high-bit-first,
// leaving the other bits of the containing byte untouched.
func SetSample(row []byte, x, bitDepth int, value byte) {
	bitPos := x * bitDepth
	byteIdx := bitPos / 8
	shift := 8 - bitDepth - bitPos%8
	mask := byte(1<<uint(bitDepth) - 1)
	row[byteIdx] = row[byteIdx]&^(mask<<uint(shift)) | (value&mask)<<uint(shift)
}
