package flate

import (
	"container/heap"
	"sort"
)

// huffmanTreeToken is a single token in a code-length RLE sequence: code
// is a code-length-alphabet symbol (0..15 literal, 16/17/18 a repeat),
// extra carries the repeat count's extra-bits value.
type huffmanTreeToken struct {
	code  uint8
	extra uint8
}

// huffmanCode holds a complete Huffman code for encoding: for each symbol
// in the alphabet, the canonical code length and the bit-reversed
// codeword ready for the LSB-first bit writer.
type huffmanCode struct {
	lengths []uint8
	codes   []uint16
}

// huffmanTreeNode is an internal node (or leaf) used while building a
// Huffman tree from symbol frequencies.
type huffmanTreeNode struct {
	count uint32
	value int // symbol index for leaves, -1 for internal nodes
	left  int // pool index, -1 for none
	right int // pool index, -1 for none
}

type nodeHeap struct {
	pool    []huffmanTreeNode
	indices []int
}

func (h *nodeHeap) Len() int { return len(h.indices) }

func (h *nodeHeap) Less(i, j int) bool {
	a, b := h.pool[h.indices[i]], h.pool[h.indices[j]]
	if a.count != b.count {
		return a.count < b.count
	}
	return h.indices[i] < h.indices[j]
}

func (h *nodeHeap) Swap(i, j int) { h.indices[i], h.indices[j] = h.indices[j], h.indices[i] }

func (h *nodeHeap) Push(x any) { h.indices = append(h.indices, x.(int)) }

func (h *nodeHeap) Pop() any {
	old := h.indices
	n := len(old)
	idx := old[n-1]
	h.indices = old[:n-1]
	return idx
}

// buildHuffmanCode builds canonical Huffman codes from a symbol
// histogram. limit caps the maximum code length (15 for deflate's
// literal/length and distance alphabets, 7 for the code-length alphabet).
//
// Degenerate inputs: zero non-zero frequencies produces an empty code;
// one non-zero frequency produces a length-1 code for that symbol (and,
// per the Kraft inequality, an unused sibling code point).
func buildHuffmanCode(histogram []uint32, limit int) *huffmanCode {
	n := len(histogram)
	hc := &huffmanCode{
		lengths: make([]uint8, n),
		codes:   make([]uint16, n),
	}

	nonZero := 0
	var only int
	for i, c := range histogram {
		if c > 0 {
			nonZero++
			only = i
		}
	}

	switch nonZero {
	case 0:
		return hc
	case 1:
		hc.lengths[only] = 1
		generateCanonicalCodes(hc)
		return hc
	}

	extractCodeLengths(histogram, limit, hc.lengths)
	generateCanonicalCodes(hc)
	return hc
}

// extractCodeLengths builds a Huffman tree over histogram using a min-heap
// and writes each symbol's depth into codeLengths. If the resulting depth
// for any symbol would exceed limit, it re-runs with a raised floor on
// symbol counts (countMin doubles each retry) -- flattening low-frequency
// outliers until the tree fits within limit. This is a heap-built Huffman
// tree with a count-floor retry, not a package-merge construction; RFC 1951 does
// not require optimality, only that the Kraft inequality holds.
func extractCodeLengths(histogram []uint32, limit int, codeLengths []uint8) {
	numSymbols := len(histogram)
	anyNonZero := false
	for _, c := range histogram {
		if c != 0 {
			anyNonZero = true
			break
		}
	}
	if !anyNonZero {
		return
	}

	for countMin := uint32(1); ; countMin *= 2 {
		for i := range codeLengths {
			codeLengths[i] = 0
		}

		h := &nodeHeap{pool: make([]huffmanTreeNode, 0, 2*numSymbols+1)}
		for sym := 0; sym < numSymbols; sym++ {
			if histogram[sym] == 0 {
				continue
			}
			count := histogram[sym]
			if count < countMin {
				count = countMin
			}
			idx := len(h.pool)
			h.pool = append(h.pool, huffmanTreeNode{count: count, value: sym, left: -1, right: -1})
			h.indices = append(h.indices, idx)
		}

		if len(h.indices) == 1 {
			codeLengths[h.pool[h.indices[0]].value] = 1
			return
		}

		heap.Init(h)
		for h.Len() > 1 {
			l := heap.Pop(h).(int)
			r := heap.Pop(h).(int)
			parent := len(h.pool)
			h.pool = append(h.pool, huffmanTreeNode{
				count: h.pool[l].count + h.pool[r].count,
				value: -1,
				left:  l,
				right: r,
			})
			heap.Push(h, parent)
		}

		assignCodeLengths(h.pool, h.indices[0], 0, codeLengths)

		maxDepth := 0
		for _, cl := range codeLengths {
			if int(cl) > maxDepth {
				maxDepth = int(cl)
			}
		}
		if maxDepth <= limit {
			return
		}
	}
}

// assignCodeLengths walks the tree depth-first, setting each leaf's code
// length to its depth.
func assignCodeLengths(pool []huffmanTreeNode, nodeIdx, depth int, codeLengths []uint8) {
	node := &pool[nodeIdx]
	if node.value >= 0 {
		codeLengths[node.value] = uint8(depth)
		return
	}
	if node.left >= 0 {
		assignCodeLengths(pool, node.left, depth+1, codeLengths)
	}
	if node.right >= 0 {
		assignCodeLengths(pool, node.right, depth+1, codeLengths)
	}
}

// generateCanonicalCodes assigns canonical (shortest-codes-first,
// numerically increasing within a length) codes from hc.lengths, storing
// each one bit-reversed so it can be emitted directly, low bit first, by
// the LSB-first bit writer.
func generateCanonicalCodes(hc *huffmanCode) {
	type symLen struct {
		symbol int
		length uint8
	}
	var symbols []symLen
	for i, l := range hc.lengths {
		if l > 0 {
			symbols = append(symbols, symLen{i, l})
		}
	}
	if len(symbols) == 0 {
		return
	}
	sort.SliceStable(symbols, func(i, j int) bool {
		if symbols[i].length != symbols[j].length {
			return symbols[i].length < symbols[j].length
		}
		return symbols[i].symbol < symbols[j].symbol
	})

	code := uint32(0)
	prevLen := uint8(0)
	for _, s := range symbols {
		if s.length > prevLen {
			code <<= s.length - prevLen
			prevLen = s.length
		}
		hc.codes[s.symbol] = reverseBits(code, int(s.length))
		code++
	}
}

// reverseBits reverses the low nBits bits of v.
func reverseBits(v uint32, nBits int) uint16 {
	var r uint32
	for i := 0; i < nBits; i++ {
		r = (r << 1) | (v & 1)
		v >>= 1
	}
	return uint16(r)
}

// buildCodeLengthTokens encodes a code-length array into the RFC 1951
// §3.2.7 RLE token sequence: literal lengths 0..15, 16 (repeat previous
// length 3..6 times), 17 (repeat zero 3..10 times), 18 (repeat zero
// 11..138 times).
func buildCodeLengthTokens(codeLengths []uint8) []huffmanTreeToken {
	var tokens []huffmanTreeToken
	n := len(codeLengths)
	i := 0
	for i < n {
		value := codeLengths[i]
		k := i + 1
		for k < n && codeLengths[k] == value {
			k++
		}
		runs := k - i
		i = k

		if value == 0 {
			tokens = codeRepeatedZeros(tokens, runs)
		} else {
			tokens = codeRepeatedValues(tokens, runs, value)
		}
	}
	return tokens
}

func codeRepeatedZeros(tokens []huffmanTreeToken, n int) []huffmanTreeToken {
	for n >= 1 {
		switch {
		case n < 3:
			for ; n > 0; n-- {
				tokens = append(tokens, huffmanTreeToken{code: 0})
			}
		case n < 11:
			tokens = append(tokens, huffmanTreeToken{code: 17, extra: uint8(n - 3)})
			n = 0
		case n < 139:
			tokens = append(tokens, huffmanTreeToken{code: 18, extra: uint8(n - 11)})
			n = 0
		default:
			tokens = append(tokens, huffmanTreeToken{code: 18, extra: 127})
			n -= 138
		}
	}
	return tokens
}

func codeRepeatedValues(tokens []huffmanTreeToken, n int, value uint8) []huffmanTreeToken {
	tokens = append(tokens, huffmanTreeToken{code: value})
	n--
	for n >= 1 {
		switch {
		case n < 3:
			for ; n > 0; n-- {
				tokens = append(tokens, huffmanTreeToken{code: value})
			}
		case n < 7:
			tokens = append(tokens, huffmanTreeToken{code: 16, extra: uint8(n - 3)})
			n = 0
		default:
			tokens = append(tokens, huffmanTreeToken{code: 16, extra: 3})
			n -= 6
		}
	}
	return tokens
}
