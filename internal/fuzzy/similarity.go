package fuzzy

import (
	"math"

	"github.com/hbollon/go-edlib"
)

// FieldSimilarity returns a 0-100 similarity score between two already
// normalized strings. Two empty strings are a perfect match (both unknown);
// exactly one empty is a total mismatch; otherwise Jaro-Winkler similarity
// is used, scaled to 0-100.
func FieldSimilarity(a, b string) float64 {
	if a == "" && b == "" {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	sim, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler)
	if err != nil {
		return 0
	}
	return sim * 100
}

// LevenshteinDistance exposes edit distance as a utility; neither Match nor
// the breakdown reporter uses it.
func LevenshteinDistance(a, b string) int {
	return edlib.LevenshteinDistance(a, b)
}

// DurationsMatch reports whether two track durations (in seconds) are close
// enough under cfg's absolute-seconds and percentage tolerances. A zero
// duration on either side (unknown) is treated as a match — spec §4.4:
// "missing duration never blocks a match on its own".
func DurationsMatch(a, b int, cfg Config) bool {
	if a <= 0 || b <= 0 {
		return true
	}
	diff := math.Abs(float64(a - b))
	if diff <= cfg.DurationTolSec {
		return true
	}
	avg := float64(a+b) / 2
	if avg == 0 {
		return true
	}
	pct := diff / avg * 100
	return pct <= cfg.DurationTolPct
}

// BitratesMatch reports whether two bitrates (kbps) are within cfg's
// tolerance; a zero bitrate on either side is treated as unknown and never
// blocks a match.
func BitratesMatch(a, b int, cfg Config) bool {
	if a <= 0 || b <= 0 {
		return true
	}
	return math.Abs(float64(a-b)) <= cfg.BitrateTolKbps
}

// TrackNumbersMatch reports whether two track numbers satisfy cfg's
// track-number gate.
func TrackNumbersMatch(a, b *int, cfg Config) bool {
	if !cfg.TrackNumberMustMatch {
		return true
	}
	if a == nil || b == nil || *a <= 0 || *b <= 0 {
		return cfg.IgnoreMissingTrackNum
	}
	return *a == *b
}
