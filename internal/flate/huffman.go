// Package flate implements the RFC 1951 compressor/decompressor used by
// the PNG IDAT stream: canonical Huffman coding, LZ77 hash-chain matching,
// and the inflate/deflate block state machines.
package flate

import "errors"

// MaxCodeLen is the longest Huffman code length RFC 1951 permits.
const MaxCodeLen = 15

// tableSize is the number of slots in a flat decode table: one per
// possible 15-bit lookahead value.
const tableSize = 1 << MaxCodeLen

// Errors returned while building a decode table from code lengths.
var (
	ErrOversubscribed   = errors.New("flate: oversubscribed huffman code")
	ErrEmptyCodeLengths = errors.New("flate: all code lengths are zero")
	ErrCodeTooLong      = errors.New("flate: code length exceeds 15 bits")
)

// huffmanTable is a flat decode table indexed by the next MaxCodeLen bits
// of the input (read LSB-first, i.e. already in the bit-reversed order the
// canonical construction below produces). A zero entry means "no code";
// otherwise the entry packs (codeLength<<9)|symbol.
type huffmanTable []uint16

// buildHuffmanTable constructs a flat canonical-Huffman decode table from
// an array of code lengths, one per symbol (0 meaning the symbol is
// absent from the code). It follows the standard canonical construction
// (count-by-length, then assign codes in increasing symbol order within
// each length) but, instead of building an explicit code tree, replicates
// each assigned code across every slot of the flat table whose low bits
// match that code -- the same "replicate across the table" trick used to
// fill the root table of a two-level Huffman table, just taken all the
// way to MaxCodeLen so no second level is ever needed.
//
// Building fails if the Kraft sum is oversubscribed; it succeeds for both
// complete and the RFC-1951-permitted incomplete trees (unused slots are
// simply left as the zero "no code" sentinel).
func buildHuffmanTable(codeLengths []int) (huffmanTable, error) {
	if len(codeLengths) == 0 {
		return nil, ErrEmptyCodeLengths
	}

	var count [MaxCodeLen + 1]int
	for _, cl := range codeLengths {
		if cl < 0 || cl > MaxCodeLen {
			return nil, ErrCodeTooLong
		}
		count[cl]++
	}
	if count[0] == len(codeLengths) {
		return nil, ErrEmptyCodeLengths
	}

	var offset [MaxCodeLen + 1]int
	for l := 1; l < MaxCodeLen; l++ {
		offset[l+1] = offset[l] + count[l]
	}

	sorted := make([]uint16, len(codeLengths)-count[0])
	var next [MaxCodeLen + 1]int
	copy(next[:], offset[:])
	for symbol, cl := range codeLengths {
		if cl > 0 {
			sorted[next[cl]] = uint16(symbol)
			next[cl]++
		}
	}

	table := make(huffmanTable, tableSize)

	var key uint32
	symbol := 0
	numOpen := 1
	for l, step := 1, 2; l <= MaxCodeLen; l, step = l+1, step<<1 {
		numOpen <<= 1
		numOpen -= count[l]
		if numOpen < 0 {
			return nil, ErrOversubscribed
		}
		for ; count[l] > 0; count[l]-- {
			entry := uint16(l<<9) | sorted[symbol]
			symbol++
			replicateValue(table[key:], step, tableSize, entry)
			key = getNextKey(key, l)
		}
	}

	return table, nil
}

// replicateValue fills table[0], table[step], ..., table[end-step] with v.
func replicateValue(table []uint16, step, end int, v uint16) {
	for i := end - step; i >= 0; i -= step {
		table[i] = v
	}
}

// getNextKey returns reverse(reverse(key, length) + 1, length); it
// produces the bit-reversed canonical code sequence used as the table
// index so that an LSB-first peek of the input directly selects the
// right slot without any run-time bit reversal.
func getNextKey(key uint32, length int) uint32 {
	step := uint32(1) << uint(length-1)
	for key&step != 0 {
		step >>= 1
	}
	if step != 0 {
		return (key & (step - 1)) + step
	}
	return key
}

// decodeSymbol looks up the next symbol given the next MaxCodeLen bits of
// lookahead (peek, LSB-first). It returns ok=false if no code matches.
func decodeSymbol(table huffmanTable, peek uint32) (symbol int, nbits int, ok bool) {
	entry := table[peek&(tableSize-1)]
	if entry == 0 {
		return 0, 0, false
	}
	return int(entry & 0x1ff), int(entry >> 9), true
}

// Fixed Huffman trees, RFC 1951 §3.2.6.
var (
	fixedLitLenLengths [288]int
	fixedDistLengths   [32]int
	fixedLitLenTable   huffmanTable
	fixedDistTable     huffmanTable
	fixedLitLenCode    *huffmanCode
	fixedDistCode      *huffmanCode
)

func init() {
	for i := 0; i < 144; i++ {
		fixedLitLenLengths[i] = 8
	}
	for i := 144; i < 256; i++ {
		fixedLitLenLengths[i] = 9
	}
	for i := 256; i < 280; i++ {
		fixedLitLenLengths[i] = 7
	}
	for i := 280; i < 288; i++ {
		fixedLitLenLengths[i] = 8
	}
	for i := range fixedDistLengths {
		fixedDistLengths[i] = 5
	}

	var err error
	fixedLitLenTable, err = buildHuffmanTable(fixedLitLenLengths[:])
	if err != nil {
		panic("flate: invalid fixed literal/length tree: " + err.Error())
	}
	fixedDistTable, err = buildHuffmanTable(fixedDistLengths[:])
	if err != nil {
		panic("flate: invalid fixed distance tree: " + err.Error())
	}

	fixedLitLenCode = codeFromLengths(fixedLitLenLengths[:])
	fixedDistCode = codeFromLengths(fixedDistLengths[:])
}

// codeFromLengths builds canonical bit-reversed codes for a known,
// fixed array of code lengths (used for the two RFC 1951 fixed trees,
// which are constants rather than something derived from a histogram).
func codeFromLengths(lengths []int) *huffmanCode {
	hc := &huffmanCode{lengths: make([]uint8, len(lengths)), codes: make([]uint16, len(lengths))}
	for i, l := range lengths {
		hc.lengths[i] = uint8(l)
	}
	generateCanonicalCodes(hc)
	return hc
}
