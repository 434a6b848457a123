package resolve

import (
	"sort"

	"github.com/fhinkel/music-janitor-core/internal/catalog"
	"github.com/fhinkel/music-janitor-core/internal/dedupe"
)

// Config tunes the tie-breaker chain (spec §4.8).
type Config struct {
	// BitrateTolKbps is the noise margin for step 1: a winner's bitrate
	// must exceed the runner-up's by more than BitrateTolKbps/4.
	BitrateTolKbps int
	// PreferredDir enables step 3 when non-empty: members inside it are
	// kept over members outside it.
	PreferredDir string
}

const defaultBitrateTolKbps = 64

// Resolve applies the tie-breaker chain to every group and returns the
// resulting plan. Resolutions are produced in group_id order (spec §5).
// tracks must contain an entry for every TrackID referenced by groups;
// a group referencing an unknown id is deferred to manual review.
func Resolve(groups []dedupe.Group, tracks map[int64]*catalog.Track, cfg Config) Plan {
	if cfg.BitrateTolKbps <= 0 {
		cfg.BitrateTolKbps = defaultBitrateTolKbps
	}

	ordered := make([]dedupe.Group, len(groups))
	copy(ordered, groups)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	var plan Plan
	for _, g := range ordered {
		keep, reason, ok := chooseKeeper(g, tracks, cfg)
		if !ok {
			plan.ManualReview = append(plan.ManualReview, g)
			continue
		}
		for _, m := range g.Members {
			if m.TrackID == keep.TrackID {
				continue
			}
			plan.Resolutions = append(plan.Resolutions, Resolution{
				GroupID:        g.ID,
				FileToDelete:   m.FilePath,
				FileToKeep:     keep.FilePath,
				Similarity:     m.Similarity,
				Reason:         reason,
				FileToDeleteID: m.TrackID,
				FileToKeepID:   keep.TrackID,
			})
		}
	}
	return plan
}

// ApplyExclude drops any resolution whose file-to-delete id is in
// exclude (spec §4.8: "resolver drops any resolution whose file_to_delete
// is excluded").
func ApplyExclude(p Plan, exclude map[int64]bool) Plan {
	if len(exclude) == 0 {
		return p
	}
	out := Plan{ManualReview: p.ManualReview}
	for _, r := range p.Resolutions {
		if exclude[r.FileToDeleteID] {
			continue
		}
		out.Resolutions = append(out.Resolutions, r)
	}
	return out
}

func chooseKeeper(g dedupe.Group, tracks map[int64]*catalog.Track, cfg Config) (dedupe.GroupMember, string, bool) {
	if len(g.Members) < 2 {
		return dedupe.GroupMember{}, "", false
	}
	if m, ok := byBitrate(g, tracks, cfg); ok {
		return m, "higher bitrate", true
	}
	if m, ok := byMetadataRichness(g, tracks); ok {
		return m, "richer metadata", true
	}
	if m, ok := byPreferredDirectory(g, cfg); ok {
		return m, "preferred directory", true
	}
	return dedupe.GroupMember{}, "", false
}

type rankedMember struct {
	member dedupe.GroupMember
	rank   float64
}

// rankMembers scores every member with score, then sorts descending so
// the winner-vs-runner-up comparison is always cands[0] vs cands[1].
func rankMembers(g dedupe.Group, tracks map[int64]*catalog.Track, score func(*catalog.Track) float64) ([]rankedMember, bool) {
	cands := make([]rankedMember, 0, len(g.Members))
	for _, m := range g.Members {
		t, ok := tracks[m.TrackID]
		if !ok {
			return nil, false
		}
		cands = append(cands, rankedMember{member: m, rank: score(t)})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].rank > cands[j].rank })
	return cands, true
}

// byBitrate picks the highest-bitrate member, provided it beats the
// runner-up by more than bitrate_tol_kbps/4 (spec §4.8 step 1).
func byBitrate(g dedupe.Group, tracks map[int64]*catalog.Track, cfg Config) (dedupe.GroupMember, bool) {
	cands, ok := rankMembers(g, tracks, func(t *catalog.Track) float64 { return float64(t.BitRate) })
	if !ok {
		return dedupe.GroupMember{}, false
	}
	margin := float64(cfg.BitrateTolKbps) / 4
	if cands[0].rank-cands[1].rank > margin {
		return cands[0].member, true
	}
	return dedupe.GroupMember{}, false
}

// byMetadataRichness picks the member with strictly more non-empty
// metadata fields than the runner-up (spec §4.8 step 2).
func byMetadataRichness(g dedupe.Group, tracks map[int64]*catalog.Track) (dedupe.GroupMember, bool) {
	cands, ok := rankMembers(g, tracks, func(t *catalog.Track) float64 { return float64(richness(t)) })
	if !ok {
		return dedupe.GroupMember{}, false
	}
	if cands[0].rank > cands[1].rank {
		return cands[0].member, true
	}
	return dedupe.GroupMember{}, false
}

func richness(t *catalog.Track) int {
	n := 0
	if t.Title != nil && *t.Title != "" {
		n++
	}
	if t.Artist != nil && *t.Artist != "" {
		n++
	}
	if t.Album != nil && *t.Album != "" {
		n++
	}
	if t.Year != nil {
		n++
	}
	if t.TrackNumber != nil {
		n++
	}
	return n
}
