package flate

import "github.com/PhilipLudington/go-png/internal/bitio"

// lzToken is one step of the LZ77-tokenized input: either a literal byte
// or a length/distance back-reference.
type lzToken struct {
	isMatch  bool
	literal  byte
	length   int
	distance int
}

// Deflate compresses src into an RFC 1951 bitstream at the given level.
// Store always emits stored blocks. Fastest and Fast emit a single fixed-
// Huffman block. Default and Best also build a per-input dynamic Huffman
// tree, which costs more time but compresses better on anything but
// small or already-incompressible input.
//
// No teacher file implements RFC 1951 block emission; this is grounded
// directly on spec.md's encoder algorithm, built on the lz77/huffman
// primitives above.
func Deflate(src []byte, level Level) []byte {
	if level == LevelStore {
		return deflateStored(src)
	}

	tokens := tokenize(src, level)
	if level == LevelDefault || level == LevelBest {
		return deflateDynamic(tokens)
	}
	return deflateFixed(tokens)
}

// tokenize runs LZ77 matching over src, producing a single flat token
// stream to be Huffman-coded by either block writer.
func tokenize(src []byte, level Level) []lzToken {
	m := NewMatcher(src, level)
	var tokens []lzToken
	for pos := 0; pos < len(src); {
		if dist, length, ok := m.Match(pos); ok {
			tokens = append(tokens, lzToken{isMatch: true, length: length, distance: dist})
			end := pos + length
			for ; pos < end; pos++ {
				m.Insert(pos)
			}
		} else {
			tokens = append(tokens, lzToken{literal: src[pos]})
			m.Insert(pos)
			pos++
		}
	}
	return tokens
}

// deflateStored emits one or more BTYPE=00 blocks, splitting at the
// 65535-byte stored-block length limit.
func deflateStored(src []byte) []byte {
	w := bitio.NewWriter()
	pos := 0
	for {
		chunk := len(src) - pos
		final := uint32(1)
		if chunk > 65535 {
			chunk = 65535
			final = 0
		}

		w.WriteBits(final, 1)
		w.WriteBits(0, 2)
		w.AlignToByte()

		length := uint16(chunk)
		nlen := ^length
		w.WriteBytes([]byte{byte(length), byte(length >> 8), byte(nlen), byte(nlen >> 8)})
		w.WriteBytes(src[pos : pos+chunk])

		pos += chunk
		if final == 1 {
			break
		}
	}
	return w.Flush()
}

// deflateFixed emits a single BTYPE=01 block using the RFC 1951 fixed
// Huffman trees.
func deflateFixed(tokens []lzToken) []byte {
	w := bitio.NewWriter()
	w.WriteBits(1, 1)
	w.WriteBits(1, 2)
	emitTokens(w, tokens, fixedLitLenCode, fixedDistCode)
	emitSymbol(w, fixedLitLenCode, 256)
	return w.Flush()
}

// deflateDynamic emits a single BTYPE=10 block with Huffman trees built
// from the actual symbol frequencies of tokens.
func deflateDynamic(tokens []lzToken) []byte {
	var litLenHist [NumLitLenCodes]uint32
	var distHist [NumDistCodes]uint32
	litLenHist[256] = 1 // end-of-block, always emitted exactly once
	for _, t := range tokens {
		if !t.isMatch {
			litLenHist[t.literal]++
			continue
		}
		code, _, _ := lengthCodeFor(t.length)
		litLenHist[code]++
		dcode, _, _ := distCodeFor(t.distance)
		distHist[dcode]++
	}

	litCode := buildHuffmanCode(litLenHist[:], MaxCodeLen)
	distCode := buildHuffmanCode(distHist[:], MaxCodeLen)
	if allZero(distCode.lengths) {
		// RFC 1951 requires at least one declared distance code even
		// when a block contains no back-references.
		distCode.lengths[0] = 1
		generateCanonicalCodes(distCode)
	}

	hlit := 257
	for i := NumLitLenCodes - 1; i >= 257; i-- {
		if litCode.lengths[i] != 0 {
			hlit = i + 1
			break
		}
	}
	hdist := 1
	for i := NumDistCodes - 1; i >= 1; i-- {
		if distCode.lengths[i] != 0 {
			hdist = i + 1
			break
		}
	}

	combined := make([]uint8, hlit+hdist)
	copy(combined, litCode.lengths[:hlit])
	copy(combined[hlit:], distCode.lengths[:hdist])
	clTokens := buildCodeLengthTokens(combined)

	var clHist [NumCodeLenCodes]uint32
	for _, tok := range clTokens {
		clHist[tok.code]++
	}
	clCode := buildHuffmanCode(clHist[:], 7)

	hclen := 4
	for i := NumCodeLenCodes - 1; i >= 4; i-- {
		if clCode.lengths[codeLengthOrder[i]] != 0 {
			hclen = i + 1
			break
		}
	}

	w := bitio.NewWriter()
	w.WriteBits(1, 1)
	w.WriteBits(2, 2)
	w.WriteBits(uint32(hlit-257), 5)
	w.WriteBits(uint32(hdist-1), 5)
	w.WriteBits(uint32(hclen-4), 4)
	for i := 0; i < hclen; i++ {
		w.WriteBits(uint32(clCode.lengths[codeLengthOrder[i]]), 3)
	}
	for _, tok := range clTokens {
		emitSymbol(w, clCode, int(tok.code))
		switch tok.code {
		case 16:
			w.WriteBits(uint32(tok.extra), 2)
		case 17:
			w.WriteBits(uint32(tok.extra), 3)
		case 18:
			w.WriteBits(uint32(tok.extra), 7)
		}
	}

	emitTokens(w, tokens, litCode, distCode)
	emitSymbol(w, litCode, 256)
	return w.Flush()
}

func allZero(lengths []uint8) bool {
	for _, l := range lengths {
		if l != 0 {
			return false
		}
	}
	return true
}

// emitTokens writes the literal/length/distance symbol stream for tokens
// using the given codes.
func emitTokens(w *bitio.Writer, tokens []lzToken, litCode, distCode *huffmanCode) {
	for _, t := range tokens {
		if !t.isMatch {
			emitSymbol(w, litCode, int(t.literal))
			continue
		}
		code, extraBits, extraVal := lengthCodeFor(t.length)
		emitSymbol(w, litCode, code)
		w.WriteBits(uint32(extraVal), extraBits)

		dcode, dExtraBits, dExtraVal := distCodeFor(t.distance)
		emitSymbol(w, distCode, dcode)
		w.WriteBits(uint32(dExtraVal), dExtraBits)
	}
}

func emitSymbol(w *bitio.Writer, hc *huffmanCode, symbol int) {
	w.WriteBits(uint32(hc.codes[symbol]), int(hc.lengths[symbol]))
}
