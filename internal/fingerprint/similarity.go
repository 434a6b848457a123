package fingerprint

import "math/bits"

// DefaultThreshold is the default duplicate-similarity cutoff (spec §4.5).
const DefaultThreshold = 0.85

// Similarity computes sim(a,b) = mean over i in [0, min(|a|,|b|)) of
// (32 - popcount(a[i] ^ b[i])) / 32, grounded on the Hamming-distance
// popcount comparison chromaprint-based duplicate scanners use. Range
// [0,1]. Fingerprints shorter than MinLength are not compared (0, false).
func Similarity(a, b []int32) (float64, bool) {
	if !Comparable(a) || !Comparable(b) {
		return 0, false
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var total int
	for i := 0; i < n; i++ {
		total += 32 - bits.OnesCount32(uint32(a[i])^uint32(b[i]))
	}
	return float64(total) / float64(32*n), true
}

// Breakdown is a human-readable trace of a fingerprint comparison.
type Breakdown struct {
	LenA       int
	LenB       int
	Compared   int
	Similarity float64
	Threshold  float64
	Duplicate  bool
}

// Explain builds a Breakdown for a pair at the given threshold.
func Explain(a, b []int32, threshold float64) Breakdown {
	sim, ok := Similarity(a, b)
	compared := len(a)
	if len(b) < compared {
		compared = len(b)
	}
	return Breakdown{
		LenA:       len(a),
		LenB:       len(b),
		Compared:   compared,
		Similarity: sim,
		Threshold:  threshold,
		Duplicate:  ok && sim >= threshold,
	}
}
