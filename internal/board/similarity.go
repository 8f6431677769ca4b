package board

import (
	"fmt"
	"hash/fnv"
	"math/bits"
	"strings"
)

// Matcher decides whether two normalized texts denote the same real-world
// item. Implementations must be symmetric, and must never match an empty
// form against anything (including another empty form).
type Matcher interface {
	IsDuplicate(a, b NormalizedText) bool
}

// Matcher strategy names accepted in configuration.
const (
	StrategyOverlap = "overlap"
	StrategySimhash = "simhash"
)

const (
	// DefaultOverlapThreshold is the token-overlap ratio at or above which
	// two texts are considered duplicates.
	DefaultOverlapThreshold = 0.6
	// DefaultSimhashMaxDistance is the Hamming distance at or below which
	// two simhashes are considered duplicates.
	DefaultSimhashMaxDistance = 10
)

// NewMatcher builds the matcher named by strategy. Zero threshold/distance
// values select the defaults.
func NewMatcher(strategy string, threshold float64, maxDistance int) (Matcher, error) {
	switch strategy {
	case "", StrategyOverlap:
		return NewOverlapMatcher(threshold), nil
	case StrategySimhash:
		return NewSimhashMatcher(maxDistance), nil
	default:
		return nil, fmt.Errorf("unknown similarity strategy %q", strategy)
	}
}

// OverlapMatcher declares a duplicate when the token-set intersection covers
// at least Threshold of the smaller set, or when one joined form is a
// substring of the other.
type OverlapMatcher struct {
	Threshold float64
}

func NewOverlapMatcher(threshold float64) *OverlapMatcher {
	if threshold <= 0 {
		threshold = DefaultOverlapThreshold
	}
	return &OverlapMatcher{Threshold: threshold}
}

func (m *OverlapMatcher) IsDuplicate(a, b NormalizedText) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return false
	}
	if strings.Contains(a.joined, b.joined) || strings.Contains(b.joined, a.joined) {
		return true
	}
	setA, setB := a.tokenSet(), b.tokenSet()
	smaller := len(setA)
	if len(setB) < smaller {
		smaller = len(setB)
	}
	common := 0
	for t := range setA {
		if setB[t] {
			common++
		}
	}
	return float64(common)/float64(smaller) >= m.Threshold
}

// SimhashMatcher declares a duplicate when the Hamming distance between the
// 64-bit simhashes of the two forms is at most MaxDistance.
type SimhashMatcher struct {
	MaxDistance int
}

func NewSimhashMatcher(maxDistance int) *SimhashMatcher {
	if maxDistance <= 0 {
		maxDistance = DefaultSimhashMaxDistance
	}
	return &SimhashMatcher{MaxDistance: maxDistance}
}

func (m *SimhashMatcher) IsDuplicate(a, b NormalizedText) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return false
	}
	return Hamming(Simhash64(a), Simhash64(b)) <= m.MaxDistance
}

// Simhash64 computes a small simhash over the normalized tokens: FNV-1a per
// token, weighted by token length.
func Simhash64(n NormalizedText) uint64 {
	if n.IsEmpty() {
		return 0
	}
	var vec [64]int64
	for _, tok := range n.tokens {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		v := h.Sum64()
		w := int64(1 + len(tok)/4)
		for i := 0; i < 64; i++ {
			if (v>>uint(i))&1 == 1 {
				vec[i] += w
			} else {
				vec[i] -= w
			}
		}
	}
	var out uint64
	for i := 0; i < 64; i++ {
		if vec[i] >= 0 {
			out |= 1 << uint(i)
		}
	}
	return out
}

// Hamming returns the bit distance between two simhashes.
func Hamming(a, b uint64) int { return bits.OnesCount64(a ^ b) }
