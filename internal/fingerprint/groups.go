package fingerprint

import (
	"context"
	"runtime"
	"sort"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// Group is a cluster of fingerprinted tracks believed to be the same
// recording. Indices are positions into the slice passed to BuildGroups;
// Similarities[k] is the pair similarity between element 0 and element k
// (element 0 is always 1.0), per spec §4.5's per-group reporting rule.
type Group struct {
	Indices      []int
	Similarities []float64
}

// workerCount implements spec §4.5's min(20, max(2*cores, 8)) formula.
func workerCount() int {
	cores := runtime.NumCPU()
	w := 2 * cores
	if w < 8 {
		w = 8
	}
	if w > 20 {
		w = 20
	}
	return w
}

type pair struct{ i, j int }

// BuildGroups runs union-find over N fingerprinted tracks: all unordered
// pairs are compared across a fixed pool of workers, and any pair at or
// above threshold is unioned. Buckets of size >= 2 are returned as groups.
// Grounded on spec §4.5's four-step algorithm; the worker pool bound
// matches its formula. Workers run under a conc.WaitGroup so a panic in
// Similarity (e.g. on a malformed fingerprint) is caught instead of
// crashing the process and surfaces here as a returned error (spec §7:
// "workers never panic the process; they translate to session error
// state").
func BuildGroups(ctx context.Context, fps [][]int32, threshold float64) ([]Group, error) {
	n := len(fps)
	if n < 2 {
		return nil, nil
	}
	uf := newUnionFind(n)

	pairs := make(chan pair, 256)
	wg := conc.NewWaitGroup()
	workers := workerCount()
	for w := 0; w < workers; w++ {
		wg.Go(func() {
			for p := range pairs {
				if sim, ok := Similarity(fps[p.i], fps[p.j]); ok && sim >= threshold {
					uf.Union(p.i, p.j)
				}
			}
		})
	}

feed:
	for i := 0; i < n; i++ {
		if !Comparable(fps[i]) {
			continue
		}
		for j := i + 1; j < n; j++ {
			if !Comparable(fps[j]) {
				continue
			}
			select {
			case pairs <- pair{i, j}:
			case <-ctx.Done():
				break feed
			}
		}
	}
	close(pairs)

	var catcher panics.Catcher
	catcher.Try(wg.Wait)
	if r := catcher.Recovered(); r != nil {
		return nil, r.AsError()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	roots := uf.Roots()
	buckets := make(map[int][]int)
	for i, r := range roots {
		if !Comparable(fps[i]) {
			continue
		}
		buckets[r] = append(buckets[r], i)
	}

	var groups []Group
	for _, indices := range buckets {
		if len(indices) < 2 {
			continue
		}
		sort.Ints(indices)
		sims := make([]float64, len(indices))
		sims[0] = 1.0
		for k := 1; k < len(indices); k++ {
			sim, _ := Similarity(fps[indices[0]], fps[indices[k]])
			sims[k] = sim
		}
		groups = append(groups, Group{Indices: indices, Similarities: sims})
	}
	sort.Slice(groups, func(a, b int) bool { return groups[a].Indices[0] < groups[b].Indices[0] })
	return groups, nil
}
