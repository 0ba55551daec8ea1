package flate

// LZ77 hash-chain matcher, grounded on the WebP encoder's HashChain
// (internal/lossless/hashchain.go in the teacher): a per-hash head table
// plus a per-position prev chain, walked up to a quality-dependent budget
// looking for the longest match. WebP hashes pairs of whole ARGB pixels
// across an unbounded image; deflate hashes 3-byte windows within a fixed
// 32 KiB ring, so the hash function and position bookkeeping are rewritten
// for bytes, but the chain-walk-with-early-exit shape carries over.

const (
	WindowSize = 1 << 15 // 32768, the deflate sliding window
	windowMask = WindowSize - 1

	MinMatch = 3
	MaxMatch = 258

	hashBits  = 15
	hashSize  = 1 << hashBits
	hashShift = 32 - hashBits
)

// Level selects the LZ77 search effort, named exactly as spec.md's
// compression_level enumeration.
type Level int

const (
	LevelStore Level = iota
	LevelFastest
	LevelFast
	LevelDefault
	LevelBest
)

// maxChainLength returns the number of hash-chain predecessors to walk
// before giving up and keeping the best match found so far.
func maxChainLength(level Level) int {
	switch level {
	case LevelStore:
		return 0
	case LevelFastest:
		return 4
	case LevelFast:
		return 16
	case LevelBest:
		return 256
	default:
		return 64
	}
}

// hash3 computes a Knuth multiplicative hash over 3 consecutive bytes.
func hash3(b0, b1, b2 byte) uint32 {
	v := uint32(b0)<<16 | uint32(b1)<<8 | uint32(b2)
	return (v * 2654435761) >> hashShift
}

// Matcher finds LZ77 back-references within a single byte slice using a
// hash-chain keyed on 3-byte prefixes. A null chain entry is represented
// as -1 (the spec's null_pos = 0xFFFF is a wire-format detail of a
// fixed-width slot; internally a signed sentinel is the idiomatic Go
// equivalent).
type Matcher struct {
	data     []byte
	head     [hashSize]int32
	prev     [WindowSize]int32
	maxChain int
}

// NewMatcher creates a Matcher over data for the given compression level.
func NewMatcher(data []byte, level Level) *Matcher {
	m := &Matcher{data: data, maxChain: maxChainLength(level)}
	for i := range m.head {
		m.head[i] = -1
	}
	for i := range m.prev {
		m.prev[i] = -1
	}
	return m
}

// Insert records position pos in the hash chain so later calls to Match
// can find it as a candidate. Callers must insert every position they
// advance past, including ones skipped over by an accepted match.
func (m *Matcher) Insert(pos int) {
	if pos+MinMatch > len(m.data) {
		return
	}
	h := hash3(m.data[pos], m.data[pos+1], m.data[pos+2])
	m.prev[pos&windowMask] = m.head[h]
	m.head[h] = int32(pos)
}

// Match searches for the longest back-reference starting at pos. It returns
// ok=false if no match of length >= MinMatch exists within the window.
func (m *Matcher) Match(pos int) (distance, length int, ok bool) {
	if m.maxChain == 0 || pos+MinMatch > len(m.data) {
		return 0, 0, false
	}

	maxLen := len(m.data) - pos
	if maxLen > MaxMatch {
		maxLen = MaxMatch
	}

	limit := 0
	if pos > WindowSize {
		limit = pos - WindowSize
	}

	h := hash3(m.data[pos], m.data[pos+1], m.data[pos+2])
	cur := m.head[h]
	chain := m.maxChain
	bestLen := 0
	bestDist := 0

	for int(cur) >= limit && chain > 0 {
		candidate := int(cur)
		// Early reject: the byte just past the current best match must
		// agree before a full comparison is worth doing.
		if bestLen > 0 && candidate+bestLen < len(m.data) &&
			m.data[candidate+bestLen] != m.data[pos+bestLen] {
			cur = m.prev[candidate&windowMask]
			chain--
			continue
		}

		l := matchLength(m.data, candidate, pos, maxLen)
		if l > bestLen {
			bestLen = l
			bestDist = pos - candidate
			if l >= maxLen {
				break
			}
		}
		cur = m.prev[candidate&windowMask]
		chain--
	}

	if bestLen < MinMatch {
		return 0, 0, false
	}
	return bestDist, bestLen, true
}

// matchLength returns how many bytes starting at a and b agree, up to
// maxLen.
func matchLength(data []byte, a, b, maxLen int) int {
	n := 0
	for n < maxLen && data[a+n] == data[b+n] {
		n++
	}
	return n
}
