// Package png provides a pure Go encoder and decoder for the PNG image
// format (ISO/IEC 15948), with no external compression or image library
// dependencies: the deflate/zlib, chunk, filter, and Adam7 layers are
// all implemented from scratch in internal packages.
//
// The package supports:
//   - All five PNG color types (Grayscale, RGB, Indexed, GrayscaleAlpha,
//     RGBA) at every valid bit depth (1, 2, 4, 8, 16)
//   - Adam7 interlacing on whole-buffer decode and encode
//   - Every compression level from Store through Best, and every filter
//     strategy including adaptive per-row selection
//   - Streaming decode and encode for bounded memory use
//
// Basic usage for decoding:
//
//	img, err := png.Decode(data)
//
// Basic usage for encoding:
//
//	n, err := png.Encode(img, nil, out)
package png
