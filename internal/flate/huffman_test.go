package flate

import "testing"

func TestBuildHuffmanTableRejectsAllZero(t *testing.T) {
	if _, err := buildHuffmanTable([]int{0, 0, 0}); err != ErrEmptyCodeLengths {
		t.Fatalf("err = %v, want ErrEmptyCodeLengths", err)
	}
}

func TestBuildHuffmanTableRejectsOversubscribed(t *testing.T) {
	// Three symbols all at length 1 can't satisfy the Kraft inequality.
	if _, err := buildHuffmanTable([]int{1, 1, 1}); err != ErrOversubscribed {
		t.Fatalf("err = %v, want ErrOversubscribed", err)
	}
}

func TestBuildHuffmanTableAllowsIncompleteTree(t *testing.T) {
	// A single symbol with a length-1 code leaves its sibling code point
	// unused; RFC 1951 permits this.
	table, err := buildHuffmanTable([]int{0, 1})
	if err != nil {
		t.Fatalf("buildHuffmanTable: %v", err)
	}
	sym, nbits, ok := decodeSymbol(table, 0)
	if !ok || sym != 1 || nbits != 1 {
		t.Fatalf("decodeSymbol(0) = %d, %d, %v; want 1, 1, true", sym, nbits, ok)
	}
}

func TestFixedTablesDecodeOwnEncodedLiterals(t *testing.T) {
	for _, sym := range []int{0, 1, 100, 143, 144, 200, 255} {
		code := fixedLitLenCode.codes[sym]
		nbits := int(fixedLitLenCode.lengths[sym])
		got, gotBits, ok := decodeSymbol(fixedLitLenTable, uint32(code))
		if !ok || got != sym || gotBits != nbits {
			t.Fatalf("symbol %d: decoded (%d, %d, %v), want (%d, %d, true)", sym, got, gotBits, ok, sym, nbits)
		}
	}
}

func TestGetNextKeyCanonicalSequence(t *testing.T) {
	// Three equal-length-2 codes starting from key 0 should visit the
	// bit-reversed sequence 0, 2, 1 (then 3 if a fourth code existed).
	k := uint32(0)
	want := []uint32{2, 1, 3}
	for _, w := range want {
		k = getNextKey(k, 2)
		if k != w {
			t.Fatalf("getNextKey = %d, want %d", k, w)
		}
	}
}
