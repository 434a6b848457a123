// Package fingerprint implements the acoustic-fingerprint matcher (C5) and
// generator (C6): parsing Chromaprint fingerprints, pairwise similarity,
// union-find group construction, and fpcalc-backed generation.
package fingerprint

import (
	"errors"
	"strconv"
	"strings"

	"github.com/fhinkel/music-janitor-core/internal/apperr"
)

var errEmptyFingerprint = errors.New("empty fingerprint")

// MinLength is the shortest fingerprint C5 will compare; shorter
// fingerprints are treated as absent rather than compared (spec §4.5).
const MinLength = 10

// Parse splits a comma-separated Chromaprint fingerprint string into its
// 32-bit tokens. Tokens are parsed as unsigned 32-bit integers but stored in
// a signed slot — overflow wrap is expected and harmless since comparison
// only ever XORs the underlying bit pattern.
func Parse(raw string) ([]int32, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperr.InvalidArgument("fingerprint.Parse", errEmptyFingerprint)
	}
	parts := strings.Split(raw, ",")
	out := make([]int32, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		u, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, apperr.InvalidArgument("fingerprint.Parse", err)
		}
		out = append(out, int32(uint32(u)))
	}
	return out, nil
}

// Comparable reports whether fp is long enough to be compared at all.
func Comparable(fp []int32) bool {
	return len(fp) >= MinLength
}
