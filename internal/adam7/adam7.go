// Package adam7 implements PNG's Adam7 interlacing: the seven-pass
// scatter (decode) and gather (encode) between a pass sub-image and the
// full image, for both byte-aligned and sub-byte pixel layouts.
//
// No teacher file does this (WebP has no interlacing); grounded directly
// on spec.md §4.10.
package adam7

import "github.com/PhilipLudington/go-png/internal/pixel"

// NumPasses is the number of Adam7 passes, numbered 0..6.
const NumPasses = 7

var xOrigin = [NumPasses]int{0, 4, 0, 2, 0, 1, 0}
var yOrigin = [NumPasses]int{0, 0, 4, 0, 2, 0, 1}
var xStride = [NumPasses]int{8, 8, 4, 4, 2, 2, 1}
var yStride = [NumPasses]int{8, 8, 8, 4, 4, 2, 2}

// PassDimensions returns the width and height of pass (0..6) of a
// width x height image, clamped to 0 when the image is too small for
// the pass to contain any pixel.
func PassDimensions(width, height, pass int) (passWidth, passHeight int) {
	passWidth = ceilDivClamped(width, xOrigin[pass], xStride[pass])
	passHeight = ceilDivClamped(height, yOrigin[pass], yStride[pass])
	return
}

func ceilDivClamped(total, origin, stride int) int {
	if total <= origin {
		return 0
	}
	return (total - origin + stride - 1) / stride
}

// Scatter copies one pass's pixels into their positions in the full
// image buffer. dst/dstRowBytes describe the full image; pass/
// passRowBytes describe the already-unfiltered pass sub-image.
func Scatter(dst []byte, dstRowBytes int, passBuf []byte, passRowBytes, passIdx, width, height, bitDepth, sampleCount int) {
	passWidth, passHeight := PassDimensions(width, height, passIdx)
	xo, yo, xs, ys := xOrigin[passIdx], yOrigin[passIdx], xStride[passIdx], yStride[passIdx]

	if bitDepth >= 8 {
		bpp := pixel.BytesPerPixel(bitDepth, sampleCount)
		for py := 0; py < passHeight; py++ {
			y := yo + py*ys
			srcRow := passBuf[py*passRowBytes : py*passRowBytes+passRowBytes]
			dstRow := dst[y*dstRowBytes : y*dstRowBytes+dstRowBytes]
			for px := 0; px < passWidth; px++ {
				x := xo + px*xs
				copy(dstRow[x*bpp:x*bpp+bpp], srcRow[px*bpp:px*bpp+bpp])
			}
		}
		return
	}

	for py := 0; py < passHeight; py++ {
		y := yo + py*ys
		srcRow := passBuf[py*passRowBytes : py*passRowBytes+passRowBytes]
		dstRow := dst[y*dstRowBytes : y*dstRowBytes+dstRowBytes]
		for px := 0; px < passWidth; px++ {
			x := xo + px*xs
			pixel.SetSample(dstRow, x, bitDepth, pixel.GetSample(srcRow, px, bitDepth))
		}
	}
}

// Gather is Scatter's inverse: it reads each pass pixel out of the full
// image buffer and packs it into the pass sub-image buffer.
func Gather(passBuf []byte, passRowBytes int, src []byte, srcRowBytes, passIdx, width, height, bitDepth, sampleCount int) {
	passWidth, passHeight := PassDimensions(width, height, passIdx)
	xo, yo, xs, ys := xOrigin[passIdx], yOrigin[passIdx], xStride[passIdx], yStride[passIdx]

	if bitDepth >= 8 {
		bpp := pixel.BytesPerPixel(bitDepth, sampleCount)
		for py := 0; py < passHeight; py++ {
			y := yo + py*ys
			srcRow := src[y*srcRowBytes : y*srcRowBytes+srcRowBytes]
			dstRow := passBuf[py*passRowBytes : py*passRowBytes+passRowBytes]
			for px := 0; px < passWidth; px++ {
				x := xo + px*xs
				copy(dstRow[px*bpp:px*bpp+bpp], srcRow[x*bpp:x*bpp+bpp])
			}
		}
		return
	}

	for py := 0; py < passHeight; py++ {
		y := yo + py*ys
		srcRow := src[y*srcRowBytes : y*srcRowBytes+srcRowBytes]
		dstRow := passBuf[py*passRowBytes : py*passRowBytes+passRowBytes]
		for px := 0; px < passWidth; px++ {
			x := xo + px*xs
			pixel.SetSample(dstRow, px, bitDepth, pixel.GetSample(srcRow, x, bitDepth))
		}
	}
}
