package flate

// Alphabet sizes (RFC 1951 §3.2.5-3.2.7).
const (
	NumLitLenCodes   = 288 // literal (0-255), end-of-block (256), length (257-285, plus 2 unused)
	NumDistCodes     = 30
	NumDistCodesWire = 32 // distance alphabet as transmitted (2 unused slots)
	NumCodeLenCodes  = 19
)

// codeLengthOrder is the order in which code-length-alphabet code lengths
// are transmitted in a dynamic Huffman header (RFC 1951 §3.2.7). It front-
// loads the codes most likely to be used (16/17/18 and 0) so that trailing
// unused ones can be omitted.
var codeLengthOrder = [NumCodeLenCodes]int{
	16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15,
}

// lengthBase and lengthExtraBits give, for length code i (0-based, code
// value 257+i), the smallest length it represents and the number of
// extra bits that follow to select among a contiguous range.
var lengthBase = [29]int{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 13,
	15, 17, 19, 23, 27, 31, 35, 43, 51, 59,
	67, 83, 99, 115, 131, 163, 195, 227, 258,
}

var lengthExtraBits = [29]int{
	0, 0, 0, 0, 0, 0, 0, 0, 1, 1,
	1, 1, 2, 2, 2, 2, 3, 3, 3, 3,
	4, 4, 4, 4, 5, 5, 5, 5, 0,
}

// distBase and distExtraBits give, for distance code i (0-based), the
// smallest distance it represents and the number of extra bits.
var distBase = [30]int{
	1, 2, 3, 4, 5, 7, 9, 13, 17, 25,
	33, 49, 65, 97, 129, 193, 257, 385, 513, 769,
	1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
}

var distExtraBits = [30]int{
	0, 0, 0, 0, 1, 1, 2, 2, 3, 3,
	4, 4, 5, 5, 6, 6, 7, 7, 8, 8,
	9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
}

// lengthCodeFor returns the length code, extra-bit count, and extra-bits
// value for a raw match length in [3, 258].
func lengthCodeFor(length int) (code, extraBits, extraVal int) {
	for i := len(lengthBase) - 1; i >= 0; i-- {
		if length >= lengthBase[i] {
			return 257 + i, lengthExtraBits[i], length - lengthBase[i]
		}
	}
	return 257, 0, 0
}

// distCodeFor returns the distance code, extra-bit count, and extra-bits
// value for a raw match distance in [1, 32768].
func distCodeFor(distance int) (code, extraBits, extraVal int) {
	for i := len(distBase) - 1; i >= 0; i-- {
		if distance >= distBase[i] {
			return i, distExtraBits[i], distance - distBase[i]
		}
	}
	return 0, 0, 0
}
