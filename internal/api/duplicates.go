package api

import (
	"context"

	"github.com/fhinkel/music-janitor-core/internal/catalog"
	"github.com/fhinkel/music-janitor-core/internal/dedupe"
	"github.com/fhinkel/music-janitor-core/internal/fuzzy"
)

// DuplicateFile is one member of a DuplicateGroup (spec §6: "DuplicateFile
// = {file: Track, similarity: number|null}"). Similarity is nil for a
// group's reference member (Members[0]), which is never compared against
// itself.
type DuplicateFile struct {
	File       TrackView
	Similarity *float64
}

// DuplicateGroup is the wire shape of a dedupe.Group (spec §6).
type DuplicateGroup struct {
	GroupID              int
	Files                []DuplicateFile
	FileCount            int
	RepresentativeTitle  string
	RepresentativeArtist string
}

func viewGroup(ctx context.Context, store *catalog.Store, g dedupe.Group) (DuplicateGroup, error) {
	view := DuplicateGroup{GroupID: g.ID, FileCount: len(g.Members)}
	view.Files = make([]DuplicateFile, len(g.Members))
	for i, m := range g.Members {
		t, err := store.GetByID(ctx, m.TrackID)
		if err != nil {
			return DuplicateGroup{}, err
		}
		tv := NewTrackView(t)
		df := DuplicateFile{File: tv}
		if i > 0 {
			sim := m.Similarity
			df.Similarity = &sim
		}
		view.Files[i] = df
		if i == 0 {
			view.RepresentativeTitle = tv.Title
			view.RepresentativeArtist = tv.Artist
		}
	}
	return view, nil
}

// ListDuplicateGroups returns a page of the active profile's cached
// duplicate groups (spec §6: "GET /api/v1/duplicates?page&size"). It does
// not start a scan: callers must have a completed session (or a prior
// cached result) first.
func (a *API) ListDuplicateGroups(ctx context.Context, cfg fuzzy.Config, fpThreshold float64, page, size int) (Page[DuplicateGroup], error) {
	store, ok := a.Profiles.Store()
	if !ok {
		return Page[DuplicateGroup]{}, errNoActiveProfile
	}
	groups, ok := a.Dedupe.Cached(a.activeProfileID(), cfg, fpThreshold)
	if !ok {
		return Page[DuplicateGroup]{}, nil
	}
	paged := dedupe.Page(groups, page, size)
	views := make([]DuplicateGroup, len(paged))
	for i, g := range paged {
		v, err := viewGroup(ctx, store, g)
		if err != nil {
			return Page[DuplicateGroup]{}, err
		}
		views[i] = v
	}
	return Page[DuplicateGroup]{Items: views, Page: page, Size: size, Total: len(groups)}, nil
}

// CountDuplicateGroups returns the number of cached groups (spec §6: "GET
// /count").
func (a *API) CountDuplicateGroups(cfg fuzzy.Config, fpThreshold float64) int {
	groups, ok := a.Dedupe.Cached(a.activeProfileID(), cfg, fpThreshold)
	if !ok {
		return 0
	}
	return len(groups)
}

// GetDuplicateGroup returns one cached group by id (spec §6: "GET
// /:groupId").
func (a *API) GetDuplicateGroup(ctx context.Context, cfg fuzzy.Config, fpThreshold float64, groupID int) (DuplicateGroup, bool, error) {
	store, ok := a.Profiles.Store()
	if !ok {
		return DuplicateGroup{}, false, errNoActiveProfile
	}
	groups, ok := a.Dedupe.Cached(a.activeProfileID(), cfg, fpThreshold)
	if !ok {
		return DuplicateGroup{}, false, nil
	}
	for _, g := range groups {
		if g.ID == groupID {
			v, err := viewGroup(ctx, store, g)
			return v, true, err
		}
	}
	return DuplicateGroup{}, false, nil
}

// CompareResult is the shape of spec §6's "POST /compare" response.
type CompareResult struct {
	File1      TrackView
	File2      TrackView
	Similarity float64
	Breakdown  []fuzzy.Breakdown
}

// CompareFiles runs the C4 matcher over two tracks ad hoc, outside any
// scan session (spec §6: "POST /compare {fileId1,fileId2}").
func (a *API) CompareFiles(ctx context.Context, cfg fuzzy.Config, fileID1, fileID2 int64) (CompareResult, error) {
	store, ok := a.Profiles.Store()
	if !ok {
		return CompareResult{}, errNoActiveProfile
	}
	t1, err := store.GetByID(ctx, fileID1)
	if err != nil {
		return CompareResult{}, err
	}
	t2, err := store.GetByID(ctx, fileID2)
	if err != nil {
		return CompareResult{}, err
	}
	c1, c2 := candidateOf(t1), candidateOf(t2)
	d := fuzzy.Match(c1, c2, cfg)
	return CompareResult{
		File1:      NewTrackView(t1),
		File2:      NewTrackView(t2),
		Similarity: d.SimilarityScore,
		Breakdown:  fuzzy.ExplainMatch(c1, c2, cfg, d),
	}, nil
}

func candidateOf(t *catalog.Track) fuzzy.Candidate {
	c := fuzzy.Candidate{Duration: t.DurationSeconds, Bitrate: t.BitRate, TrackNumber: t.TrackNumber}
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

// DeleteGroupKeepOne deletes every member of a group except keepFileID
// (spec §6: "DELETE /:groupId/keep/:keepFileId").
func (a *API) DeleteGroupKeepOne(ctx context.Context, cfg fuzzy.Config, fpThreshold float64, groupID int, keepFileID int64) (BulkDeleteResult, error) {
	group, found, err := a.GetDuplicateGroup(ctx, cfg, fpThreshold, groupID)
	if err != nil {
		return BulkDeleteResult{}, err
	}
	if !found {
		return BulkDeleteResult{}, errGroupNotFound
	}
	var toDelete []int64
	for _, f := range group.Files {
		if f.File.ID != keepFileID {
			toDelete = append(toDelete, f.File.ID)
		}
	}
	return a.BulkDeleteTracks(ctx, toDelete), nil
}

// Refresh purges the active profile's cached scan result (spec §6: "POST
// /refresh", spec §4.7's cache-invalidation rule "an explicit refresh
// endpoint").
func (a *API) Refresh() {
	a.Dedupe.InvalidateProfile(a.activeProfileID())
}
