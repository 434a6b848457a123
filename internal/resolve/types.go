// Package resolve implements the auto-resolver (C8): given a set of
// duplicate groups from C7, it applies a ranked tie-breaker chain to pick
// a keeper per group, producing a plan that a separate step can execute.
package resolve

import "github.com/fhinkel/music-janitor-core/internal/dedupe"

// Resolution is one delete/keep decision within a group (spec §4.8).
type Resolution struct {
	GroupID      int
	FileToDelete string
	FileToKeep   string
	Similarity   float64
	Reason       string

	// FileToDeleteID/FileToKeepID are not part of the spec's wire shape
	// but let Execute map a resolution back to a catalog row without a
	// second path lookup.
	FileToDeleteID int64
	FileToKeepID   int64
}

// Plan is the pure output of a resolve pass (spec §4.8: "the plan is a
// pure value; applying it is a separate step").
type Plan struct {
	Resolutions  []Resolution
	ManualReview []dedupe.Group
}
