package flate

import "github.com/PhilipLudington/go-png/internal/bitio"

// Inflate decompresses an RFC 1951 deflate bitstream. maxOutput, if > 0,
// bounds the decompressed size so that corrupt or adversarial input
// cannot force unbounded allocation; pass 0 for no limit.
//
// No teacher file implements RFC 1951 block framing (VP8L has its own
// bitstream shape); this is grounded directly on spec.md's block state
// machine, built on the huffman/lz77 primitives above.
func Inflate(src []byte, maxOutput int) ([]byte, error) {
	r := bitio.NewReader(src)
	out := make([]byte, 0, 4096)

	for {
		final, err := r.ReadBits(1)
		if err != nil {
			return nil, err
		}
		btype, err := r.ReadBits(2)
		if err != nil {
			return nil, err
		}

		switch btype {
		case 0: // stored
			if err := inflateStored(r, &out, maxOutput); err != nil {
				return nil, err
			}
		case 1: // fixed Huffman
			if err := inflateBlock(r, fixedLitLenTable, fixedDistTable, &out, maxOutput); err != nil {
				return nil, err
			}
		case 2: // dynamic Huffman
			litTable, distTable, err := readDynamicTrees(r)
			if err != nil {
				return nil, err
			}
			if err := inflateBlock(r, litTable, distTable, &out, maxOutput); err != nil {
				return nil, err
			}
		default: // 3, reserved
			return nil, ErrInvalidBlockType
		}

		if final == 1 {
			break
		}
	}

	return out, nil
}

func inflateStored(r *bitio.Reader, out *[]byte, maxOutput int) error {
	r.AlignToByte()
	lenLo, err := r.ReadAlignedByte()
	if err != nil {
		return err
	}
	lenHi, err := r.ReadAlignedByte()
	if err != nil {
		return err
	}
	nlenLo, err := r.ReadAlignedByte()
	if err != nil {
		return err
	}
	nlenHi, err := r.ReadAlignedByte()
	if err != nil {
		return err
	}

	length := int(lenLo) | int(lenHi)<<8
	nlen := int(nlenLo) | int(nlenHi)<<8
	if nlen != length^0xffff {
		return ErrInvalidStoredLen
	}

	if maxOutput > 0 && len(*out)+length > maxOutput {
		return ErrOutputTooLarge
	}
	for i := 0; i < length; i++ {
		b, err := r.ReadAlignedByte()
		if err != nil {
			return err
		}
		*out = append(*out, b)
	}
	return nil
}

// inflateBlock runs the literal/length/distance symbol decode loop
// (spec.md §4.5) for a single fixed- or dynamic-Huffman block.
func inflateBlock(r *bitio.Reader, litTable, distTable huffmanTable, out *[]byte, maxOutput int) error {
	for {
		sym, nbits, ok := decodeSymbol(litTable, r.PeekBits(MaxCodeLen))
		if !ok {
			return ErrInvalidCode
		}
		if err := r.ConsumeBits(nbits); err != nil {
			return err
		}

		if sym < 256 {
			*out = append(*out, byte(sym))
			if maxOutput > 0 && len(*out) > maxOutput {
				return ErrOutputTooLarge
			}
			continue
		}
		if sym == 256 {
			return nil
		}

		idx := sym - 257
		if idx >= len(lengthBase) {
			return ErrInvalidLengthCode
		}
		extraBits, err := r.ReadBits(lengthExtraBits[idx])
		if err != nil {
			return err
		}
		length := lengthBase[idx] + int(extraBits)

		if distTable == nil {
			return ErrInvalidCode
		}
		dsym, dnbits, ok := decodeSymbol(distTable, r.PeekBits(MaxCodeLen))
		if !ok {
			return ErrInvalidCode
		}
		if err := r.ConsumeBits(dnbits); err != nil {
			return err
		}
		if dsym >= len(distBase) {
			return ErrInvalidLengthCode
		}
		dExtraBits, err := r.ReadBits(distExtraBits[dsym])
		if err != nil {
			return err
		}
		distance := distBase[dsym] + int(dExtraBits)

		if distance > len(*out) {
			return ErrInvalidDistance
		}
		if maxOutput > 0 && len(*out)+length > maxOutput {
			return ErrOutputTooLarge
		}

		start := len(*out) - distance
		for i := 0; i < length; i++ {
			*out = append(*out, (*out)[start+i])
		}
	}
}

// readDynamicTrees reads the HLIT/HDIST/HCLEN header and the code-length-
// coded literal/length and distance trees that follow it (spec.md §4.5).
func readDynamicTrees(r *bitio.Reader) (litTable, distTable huffmanTable, err error) {
	rawHlit, err := r.ReadBits(5)
	if err != nil {
		return nil, nil, err
	}
	rawHdist, err := r.ReadBits(5)
	if err != nil {
		return nil, nil, err
	}
	rawHclen, err := r.ReadBits(4)
	if err != nil {
		return nil, nil, err
	}

	hlit := int(rawHlit) + 257
	hdist := int(rawHdist) + 1
	hclen := int(rawHclen) + 4
	if hlit > 286 {
		return nil, nil, ErrTooManyLitLen
	}
	if hdist > 30 {
		return nil, nil, ErrTooManyDist
	}

	var clLengths [NumCodeLenCodes]int
	for i := 0; i < hclen; i++ {
		v, err := r.ReadBits(3)
		if err != nil {
			return nil, nil, err
		}
		clLengths[codeLengthOrder[i]] = int(v)
	}
	clTable, err := buildHuffmanTable(clLengths[:])
	if err != nil {
		return nil, nil, err
	}

	combined := make([]int, hlit+hdist)
	prev := 0
	for i := 0; i < len(combined); {
		sym, nbits, ok := decodeSymbol(clTable, r.PeekBits(MaxCodeLen))
		if !ok {
			return nil, nil, ErrInvalidCode
		}
		if err := r.ConsumeBits(nbits); err != nil {
			return nil, nil, err
		}

		switch {
		case sym < 16:
			combined[i] = sym
			prev = sym
			i++
		case sym == 16:
			extra, err := r.ReadBits(2)
			if err != nil {
				return nil, nil, err
			}
			repeat := 3 + int(extra)
			if i == 0 || i+repeat > len(combined) {
				return nil, nil, ErrInvalidCode
			}
			for k := 0; k < repeat; k++ {
				combined[i+k] = prev
			}
			i += repeat
		case sym == 17:
			extra, err := r.ReadBits(3)
			if err != nil {
				return nil, nil, err
			}
			repeat := 3 + int(extra)
			if i+repeat > len(combined) {
				return nil, nil, ErrInvalidCode
			}
			i += repeat
			prev = 0
		case sym == 18:
			extra, err := r.ReadBits(7)
			if err != nil {
				return nil, nil, err
			}
			repeat := 11 + int(extra)
			if i+repeat > len(combined) {
				return nil, nil, ErrInvalidCode
			}
			i += repeat
			prev = 0
		default:
			return nil, nil, ErrInvalidCode
		}
	}

	litLenLengths := make([]int, NumLitLenCodes)
	copy(litLenLengths, combined[:hlit])
	distLengths := make([]int, NumDistCodesWire)
	copy(distLengths, combined[hlit:])

	litTable, err = buildHuffmanTable(litLenLengths)
	if err != nil {
		return nil, nil, err
	}
	distTable, err = buildHuffmanTable(distLengths)
	if err == ErrEmptyCodeLengths {
		// No distance codes are used in this block at all; a valid block
		// that never emits a back-reference.
		distTable = nil
	} else if err != nil {
		return nil, nil, err
	}

	return litTable, distTable, nil
}
