package png

import (
	"bytes"
	"testing"

	"github.com/PhilipLudington/go-png/internal/chunk"
	"github.com/PhilipLudington/go-png/internal/flate"
	"github.com/PhilipLudington/go-png/internal/zlib"
)

func encodeDecode(t *testing.T, img *Image, opts *EncoderOptions) *Image {
	t.Helper()
	var buf bytes.Buffer
	if _, err := Encode(img, opts, &buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return got
}

func TestGrayscale8BitExactBytes(t *testing.T) {
	img := &Image{
		Header: Header{Width: 2, Height: 2, BitDepth: 8, ColorType: Grayscale},
		Pixels: []byte{0x00, 0x40, 0x80, 0xFF},
	}
	for _, strategy := range []FilterStrategy{FilterNone, FilterAdaptive} {
		got := encodeDecode(t, img, &EncoderOptions{CompressionLevel: flate.LevelDefault, FilterStrategy: strategy})
		if !bytes.Equal(got.Pixels, img.Pixels) {
			t.Fatalf("strategy %v: pixels = %v, want %v", strategy, got.Pixels, img.Pixels)
		}
	}
}

func TestRgba8BitExactBytes(t *testing.T) {
	pixels := make([]byte, 16)
	for i := range pixels {
		pixels[i] = byte(i * 17)
	}
	img := &Image{
		Header: Header{Width: 2, Height: 2, BitDepth: 8, ColorType: Rgba},
		Pixels: pixels,
	}
	got := encodeDecode(t, img, nil)
	if !bytes.Equal(got.Pixels, img.Pixels) {
		t.Fatalf("pixels = %v, want %v", got.Pixels, img.Pixels)
	}
	if got.Header.ColorType != Rgba || got.Header.Width != 2 || got.Header.Height != 2 {
		t.Fatalf("unexpected header: %+v", got.Header)
	}
}

func TestIndexed4x4WithPalette(t *testing.T) {
	palette := Palette{
		{R: 0xFF, G: 0x00, B: 0x00},
		{R: 0x00, G: 0xFF, B: 0x00},
		{R: 0x00, G: 0x00, B: 0xFF},
		{R: 0xFF, G: 0xFF, B: 0xFF},
	}
	pixels := []byte{
		0, 1, 2, 3,
		3, 2, 1, 0,
		0, 1, 2, 3,
		3, 2, 1, 0,
	}
	img := &Image{
		Header:  Header{Width: 4, Height: 4, BitDepth: 8, ColorType: Indexed},
		Pixels:  pixels,
		Palette: palette,
	}
	got := encodeDecode(t, img, nil)
	if !bytes.Equal(got.Pixels, img.Pixels) {
		t.Fatalf("pixels = %v, want %v", got.Pixels, img.Pixels)
	}
	if len(got.Palette) != len(palette) {
		t.Fatalf("palette len = %d, want %d", len(got.Palette), len(palette))
	}
	for i := range palette {
		if got.Palette[i] != palette[i] {
			t.Fatalf("palette[%d] = %+v, want %+v", i, got.Palette[i], palette[i])
		}
	}
}

func TestGrayscale1BitRows(t *testing.T) {
	// 8x2 1-bit grayscale: row 0 is 0xAA (10101010), row 1 is 0x55 (01010101).
	img := &Image{
		Header: Header{Width: 8, Height: 2, BitDepth: 1, ColorType: Grayscale},
		Pixels: []byte{0xAA, 0x55},
	}
	got := encodeDecode(t, img, nil)
	if !bytes.Equal(got.Pixels, img.Pixels) {
		t.Fatalf("pixels = %08b, want %08b", got.Pixels, img.Pixels)
	}
}

func TestAdam7InterlacedRoundTrip(t *testing.T) {
	const width, height = 8, 8
	pixels := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixels[y*width+x] = byte(y*8 + x)
		}
	}
	img := &Image{
		Header: Header{Width: width, Height: height, BitDepth: 8, ColorType: Grayscale},
		Pixels: pixels,
	}
	got := encodeDecode(t, img, &EncoderOptions{CompressionLevel: flate.LevelDefault, FilterStrategy: FilterAdaptive, Interlace: true})
	if !got.Header.Interlaced() {
		t.Fatalf("decoded header lost the interlace flag")
	}
	if !bytes.Equal(got.Pixels, img.Pixels) {
		t.Fatalf("pixels = %v, want %v", got.Pixels, img.Pixels)
	}
}

func TestZlibRoundTripAllLevelsMatchesAdler32(t *testing.T) {
	want := zlib.Adler32([]byte("hello world"))
	if want != 0x1A0B045D {
		t.Fatalf("adler32(\"hello world\") = %#x, want 0x1a0b045d", want)
	}

	levels := []flate.Level{flate.LevelStore, flate.LevelFastest, flate.LevelFast, flate.LevelDefault, flate.LevelBest}
	for _, lvl := range levels {
		wrapped := zlib.Wrap([]byte("hello world"), lvl)
		raw, err := zlib.Unwrap(wrapped, 0)
		if err != nil {
			t.Fatalf("level %v: Unwrap: %v", lvl, err)
		}
		if string(raw) != "hello world" {
			t.Fatalf("level %v: raw = %q, want %q", lvl, raw, "hello world")
		}
		if zlib.Adler32(raw) != want {
			t.Fatalf("level %v: adler32 mismatch", lvl)
		}
	}
}

func TestStreamDecoderRejectsInterlaced(t *testing.T) {
	img := &Image{
		Header: Header{Width: 8, Height: 8, BitDepth: 8, ColorType: Grayscale},
		Pixels: make([]byte, 64),
	}
	var buf bytes.Buffer
	if _, err := Encode(img, &EncoderOptions{CompressionLevel: flate.LevelDefault, Interlace: true}, &buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	d := NewStreamDecoder()
	if err := d.Feed(buf.Bytes()); err != ErrInterlacedNotSupported {
		t.Fatalf("Feed on interlaced stream = %v, want ErrInterlacedNotSupported", err)
	}
}

func TestStreamEncoderDecoderRoundTrip(t *testing.T) {
	h := Header{Width: 3, Height: 2, BitDepth: 8, ColorType: Rgb}
	rows := [][]byte{
		{1, 2, 3, 4, 5, 6, 7, 8, 9},
		{10, 20, 30, 40, 50, 60, 70, 80, 90},
	}

	var buf bytes.Buffer
	enc, err := NewStreamEncoder(h, nil, nil, &buf)
	if err != nil {
		t.Fatalf("NewStreamEncoder: %v", err)
	}
	for _, row := range rows {
		if err := enc.WriteRow(row); err != nil {
			t.Fatalf("WriteRow: %v", err)
		}
	}
	if _, err := enc.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if _, err := enc.Finish(); err != ErrAlreadyFinished {
		t.Fatalf("second Finish = %v, want ErrAlreadyFinished", err)
	}

	dec := NewStreamDecoder()
	if err := dec.Feed(buf.Bytes()); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	var got [][]byte
	for {
		row, ok := dec.NextRow()
		if !ok {
			break
		}
		got = append(got, append([]byte(nil), row...))
	}
	if len(got) != len(rows) {
		t.Fatalf("got %d rows, want %d", len(got), len(rows))
	}
	for i := range rows {
		if !bytes.Equal(got[i], rows[i]) {
			t.Fatalf("row %d = %v, want %v", i, got[i], rows[i])
		}
	}

	img, err := dec.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	var want []byte
	for _, row := range rows {
		want = append(want, row...)
	}
	if !bytes.Equal(img.Pixels, want) {
		t.Fatalf("assembled pixels = %v, want %v", img.Pixels, want)
	}
}

func TestStreamEncoderRejectsRowCountMismatch(t *testing.T) {
	h := Header{Width: 2, Height: 2, BitDepth: 8, ColorType: Grayscale}
	var buf bytes.Buffer
	enc, err := NewStreamEncoder(h, nil, nil, &buf)
	if err != nil {
		t.Fatalf("NewStreamEncoder: %v", err)
	}
	if err := enc.WriteRow([]byte{1, 2}); err != nil {
		t.Fatalf("WriteRow: %v", err)
	}
	if _, err := enc.Finish(); err != ErrRowCountMismatch {
		t.Fatalf("Finish = %v, want ErrRowCountMismatch", err)
	}
}

func TestDecodeHeaderDoesNotRequireIdat(t *testing.T) {
	img := &Image{
		Header: Header{Width: 5, Height: 5, BitDepth: 8, ColorType: Grayscale},
		Pixels: make([]byte, 25),
	}
	var buf bytes.Buffer
	if _, err := Encode(img, nil, &buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	h, err := DecodeHeader(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if h.Width != 5 || h.Height != 5 {
		t.Fatalf("header = %+v", h)
	}
}

func TestDecodeRejectsBadSignature(t *testing.T) {
	_, err := Decode([]byte("not a png"))
	if err != ErrInvalidSignature {
		t.Fatalf("Decode = %v, want ErrInvalidSignature", err)
	}
}

// TestStreamDecoderRejectsPlteForGrayscale mirrors
// TestDecodeRejectsPlteForGrayscale below: a PLTE chunk spliced into a
// grayscale stream must be rejected the same way by Feed as it is by
// Decode (spec.md §4.8).
func TestStreamDecoderRejectsPlteForGrayscale(t *testing.T) {
	data := plteSplicedGrayscaleStream(t)

	d := NewStreamDecoder()
	if err := d.Feed(data); err != ErrPlteForNonIndexed {
		t.Fatalf("Feed = %v, want ErrPlteForNonIndexed", err)
	}
}

func TestDecodeRejectsPlteForGrayscale(t *testing.T) {
	data := plteSplicedGrayscaleStream(t)

	if _, err := Decode(data); err != ErrPlteForNonIndexed {
		t.Fatalf("Decode = %v, want ErrPlteForNonIndexed", err)
	}
}

// plteSplicedGrayscaleStream encodes a valid grayscale image, then
// splices a well-formed PLTE chunk in right after IHDR -- the only way
// to exercise ErrPlteForNonIndexed, since neither encoder ever emits a
// palette for a color type that forbids one.
func plteSplicedGrayscaleStream(t *testing.T) []byte {
	t.Helper()
	img := &Image{
		Header: Header{Width: 2, Height: 2, BitDepth: 8, ColorType: Grayscale},
		Pixels: []byte{0x00, 0x40, 0x80, 0xFF},
	}
	var buf bytes.Buffer
	if _, err := Encode(img, nil, &buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	encoded := buf.Bytes()

	plte := chunk.WriteChunk(nil, "PLTE", Palette{{R: 1, G: 2, B: 3}}.Encode())

	ihdrEnd := len(chunk.Signature) + 12 + headerSize
	out := append([]byte(nil), encoded[:ihdrEnd]...)
	out = append(out, plte...)
	out = append(out, encoded[ihdrEnd:]...)
	return out
}

// TestStreamDecoderRejectsUnboundedIdat feeds a never-terminating IDAT
// stream far past any plausible decompressed size and checks Feed gives
// up with ErrOutOfMemory instead of accumulating input without bound
// (spec.md §5).
func TestStreamDecoderRejectsUnboundedIdat(t *testing.T) {
	h := Header{Width: 4, Height: 4, BitDepth: 8, ColorType: Grayscale}

	var buf bytes.Buffer
	buf.Write(chunk.Signature[:])
	buf.Write(chunk.WriteChunk(nil, "IHDR", h.Encode()))

	d := NewStreamDecoder()
	if err := d.Feed(buf.Bytes()); err != nil {
		t.Fatalf("Feed(signature+IHDR): %v", err)
	}

	limit := idatAccumLimit(h)
	oversized := make([]byte, limit+1)
	idat := chunk.WriteChunk(nil, "IDAT", oversized)
	if err := d.Feed(idat); err != ErrOutOfMemory {
		t.Fatalf("Feed(oversized IDAT) = %v, want ErrOutOfMemory", err)
	}
}
