package dedupe

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/fhinkel/music-janitor-core/internal/catalog"
	"github.com/fhinkel/music-janitor-core/internal/fingerprint"
	"github.com/fhinkel/music-janitor-core/internal/fuzzy"
)

func trackCandidate(t *catalog.Track) fuzzy.Candidate {
	c := fuzzy.Candidate{
		Duration:    t.DurationSeconds,
		Bitrate:     t.BitRate,
		TrackNumber: t.TrackNumber,
	}
	if t.Title != nil {
		c.Title = *t.Title
	}
	if t.Artist != nil {
		c.Artist = *t.Artist
	}
	if t.Album != nil {
		c.Album = *t.Album
	}
	return c
}

type pairIdx struct{ i, j int }

// findFuzzyPairs runs C4 over every unordered pair of the snapshot, in
// parallel over the outer index, per spec §4.7 step 2 and §5's "C4
// pair-wise comparison (parallel over outer index)". Each worker runs
// under a conc.WaitGroup so a panic inside fuzzy.Match (e.g. on malformed
// candidate data) is caught rather than crashing the process; Wait's
// re-panic is itself caught here and turned into an error the caller can
// fold into the session's terminal error state (spec §7: "workers never
// panic the process; they translate to session error state").
func findFuzzyPairs(ctx context.Context, tracks []*catalog.Track, cfg fuzzy.Config) (pairs []pairIdx, err error) {
	n := len(tracks)
	if n < 2 {
		return nil, nil
	}
	candidates := make([]fuzzy.Candidate, n)
	for i, t := range tracks {
		candidates[i] = trackCandidate(t)
	}

	workers := runtime.NumCPU()
	if workers < 2 {
		workers = 2
	}
	rows := make(chan int, workers*2)
	var mu sync.Mutex
	wg := conc.NewWaitGroup()

	for w := 0; w < workers; w++ {
		wg.Go(func() {
			for i := range rows {
				select {
				case <-ctx.Done():
					return
				default:
				}
				var local []pairIdx
				for j := i + 1; j < n; j++ {
					d := fuzzy.Match(candidates[i], candidates[j], cfg)
					if d.Duplicate {
						local = append(local, pairIdx{i, j})
					}
				}
				if len(local) > 0 {
					mu.Lock()
					pairs = append(pairs, local...)
					mu.Unlock()
				}
			}
		})
	}

feed:
	for i := 0; i < n-1; i++ {
		select {
		case rows <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(rows)

	var catcher panics.Catcher
	catcher.Try(wg.Wait)
	if r := catcher.Recovered(); r != nil {
		return nil, r.AsError()
	}
	return pairs, nil
}

// findFingerprintGroups runs C5 over the fingerprinted subset of the
// snapshot and translates its local indices back into snapshot indices.
func findFingerprintGroups(ctx context.Context, tracks []*catalog.Track, threshold float64) ([]fingerprint.Group, error) {
	var fps [][]int32
	var origIndex []int
	for i, t := range tracks {
		if t.Fingerprint == nil {
			continue
		}
		fp, err := fingerprint.Parse(*t.Fingerprint)
		if err != nil || !fingerprint.Comparable(fp) {
			continue
		}
		fps = append(fps, fp)
		origIndex = append(origIndex, i)
	}
	groups, err := fingerprint.BuildGroups(ctx, fps, threshold)
	if err != nil {
		return nil, err
	}
	for gi := range groups {
		for k, localIdx := range groups[gi].Indices {
			groups[gi].Indices[k] = origIndex[localIdx]
		}
	}
	return groups, nil
}

// buildGroups merges fingerprint-clusters and fuzzy-duplicate-pairs into
// final groups: any two snapshot indices sharing membership in either
// signal end up in the same group (spec §4.7 step 2: "two groups sharing
// any member are unioned"). Members[0] is the lexicographically smallest
// file_path, and per-member similarity is fingerprint-derived when both
// members are fingerprinted, metadata-derived otherwise.
func buildGroups(tracks []*catalog.Track, fpGroups []fingerprint.Group, fuzzyPairs []pairIdx, fuzzyCfg fuzzy.Config) []Group {
	n := len(tracks)
	uf := newUnionFind(n)

	fpByIndex := make(map[int][]int32, n)
	for _, g := range fpGroups {
		for k := 1; k < len(g.Indices); k++ {
			uf.union(g.Indices[0], g.Indices[k])
		}
	}
	for idx, t := range tracks {
		if t.Fingerprint == nil {
			continue
		}
		if fp, err := fingerprint.Parse(*t.Fingerprint); err == nil && fingerprint.Comparable(fp) {
			fpByIndex[idx] = fp
		}
	}
	for _, p := range fuzzyPairs {
		uf.union(p.i, p.j)
	}

	buckets := make(map[int][]int)
	for i := 0; i < n; i++ {
		r := uf.find(i)
		buckets[r] = append(buckets[r], i)
	}

	candidates := make([]fuzzy.Candidate, n)
	for i, t := range tracks {
		candidates[i] = trackCandidate(t)
	}

	var groups []Group
	for _, indices := range buckets {
		if len(indices) < 2 {
			continue
		}
		sort.Slice(indices, func(a, b int) bool {
			return tracks[indices[a]].FilePath < tracks[indices[b]].FilePath
		})
		ref := indices[0]
		members := make([]GroupMember, len(indices))
		members[0] = GroupMember{TrackID: tracks[ref].ID, FilePath: tracks[ref].FilePath, Similarity: 1.0}
		for k := 1; k < len(indices); k++ {
			idx := indices[k]
			sim := memberSimilarity(tracks, fpByIndex, candidates, ref, idx, fuzzyCfg)
			members[k] = GroupMember{TrackID: tracks[idx].ID, FilePath: tracks[idx].FilePath, Similarity: sim}
		}
		groups = append(groups, Group{Members: members})
	}

	sort.Slice(groups, func(a, b int) bool {
		return groups[a].Members[0].FilePath < groups[b].Members[0].FilePath
	})
	for i := range groups {
		groups[i].ID = i + 1
	}
	return groups
}

func memberSimilarity(tracks []*catalog.Track, fpByIndex map[int][]int32, candidates []fuzzy.Candidate, ref, idx int, cfg fuzzy.Config) float64 {
	if fpRef, ok := fpByIndex[ref]; ok {
		if fpOther, ok2 := fpByIndex[idx]; ok2 {
			if sim, ok3 := fingerprint.Similarity(fpRef, fpOther); ok3 {
				return sim
			}
		}
	}
	d := fuzzy.Match(candidates[ref], candidates[idx], cfg)
	return d.SimilarityScore / 100
}
