package adam7

import (
	"bytes"
	"testing"

	"github.com/PhilipLudington/go-png/internal/pixel"
)

func TestPassDimensionsSmallImage(t *testing.T) {
	// An 8x8 image: pass 0 gets exactly one pixel (origin 0,0, stride 8).
	w, h := PassDimensions(8, 8, 0)
	if w != 1 || h != 1 {
		t.Fatalf("pass 0 dims = %d,%d, want 1,1", w, h)
	}
	// Pass 6 (origin 0,1 stride 1,2): width 8, height ceil((8-1)/2)=4 -> wait height uses yOrigin=1,yStride=2
	w6, h6 := PassDimensions(8, 8, 6)
	if w6 != 8 || h6 != 4 {
		t.Fatalf("pass 6 dims = %d,%d, want 8,4", w6, h6)
	}
}

func TestPassDimensionsClampToZero(t *testing.T) {
	// A 1x1 image: passes whose origin is >= 1 get zero pixels.
	w, h := PassDimensions(1, 1, 1) // xOrigin=4
	if w != 0 {
		t.Fatalf("pass 1 width = %d, want 0 for a 1-pixel-wide image", w)
	}
	_ = h
}

func TestScatterGatherRoundTripByteAligned(t *testing.T) {
	const width, height, bitDepth, sampleCount = 8, 8, 8, 1
	full := make([]byte, height*width)
	for i := range full {
		full[i] = byte(i + 1)
	}

	rebuilt := make([]byte, len(full))
	for pass := 0; pass < NumPasses; pass++ {
		pw, ph := PassDimensions(width, height, pass)
		if pw == 0 || ph == 0 {
			continue
		}
		passRowBytes := pixel.RowBytes(pw, bitDepth, sampleCount)
		passBuf := make([]byte, ph*passRowBytes)
		Gather(passBuf, passRowBytes, full, width, pass, width, height, bitDepth, sampleCount)
		Scatter(rebuilt, width, passBuf, passRowBytes, pass, width, height, bitDepth, sampleCount)
	}

	if !bytes.Equal(rebuilt, full) {
		t.Fatalf("scatter(gather(x)) != x\ngot:  %v\nwant: %v", rebuilt, full)
	}
}

func TestScatterGatherRoundTripSubByte(t *testing.T) {
	const width, height, bitDepth, sampleCount = 8, 8, 1, 1
	rowBytes := pixel.RowBytes(width, bitDepth, sampleCount)
	full := make([]byte, height*rowBytes)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x+y)%2 == 0 {
				pixel.SetSample(full[y*rowBytes:(y+1)*rowBytes], x, bitDepth, 1)
			}
		}
	}

	rebuilt := make([]byte, len(full))
	for pass := 0; pass < NumPasses; pass++ {
		pw, ph := PassDimensions(width, height, pass)
		if pw == 0 || ph == 0 {
			continue
		}
		passRowBytes := pixel.RowBytes(pw, bitDepth, sampleCount)
		passBuf := make([]byte, ph*passRowBytes)
		Gather(passBuf, passRowBytes, full, rowBytes, pass, width, height, bitDepth, sampleCount)
		Scatter(rebuilt, rowBytes, passBuf, passRowBytes, pass, width, height, bitDepth, sampleCount)
	}

	if !bytes.Equal(rebuilt, full) {
		t.Fatalf("scatter(gather(x)) != x for sub-byte depth\ngot:  %v\nwant: %v", rebuilt, full)
	}
}
