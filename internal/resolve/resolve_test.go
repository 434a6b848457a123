package resolve

import (
	"testing"

	"github.com/fhinkel/music-janitor-core/internal/catalog"
	"github.com/fhinkel/music-janitor-core/internal/dedupe"
)

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

func tr(id int64, path string, bitrate int) *catalog.Track {
	return &catalog.Track{ID: id, FilePath: path, BitRate: bitrate}
}

func TestResolveByBitrate(t *testing.T) {
	groups := []dedupe.Group{{
		ID: 1,
		Members: []dedupe.GroupMember{
			{TrackID: 1, FilePath: "/music/A.mp3", Similarity: 1.0},
			{TrackID: 2, FilePath: "/other/A.mp3", Similarity: 0.97},
		},
	}}
	tracks := map[int64]*catalog.Track{
		1: tr(1, "/music/A.mp3", 320),
		2: tr(2, "/other/A.mp3", 192),
	}
	plan := Resolve(groups, tracks, Config{})
	if len(plan.ManualReview) != 0 {
		t.Fatalf("expected no manual review, got %+v", plan.ManualReview)
	}
	if len(plan.Resolutions) != 1 {
		t.Fatalf("len(resolutions) = %d, want 1", len(plan.Resolutions))
	}
	r := plan.Resolutions[0]
	if r.FileToKeep != "/music/A.mp3" || r.FileToDelete != "/other/A.mp3" {
		t.Errorf("got keep=%q delete=%q, want keep=/music/A.mp3 delete=/other/A.mp3", r.FileToKeep, r.FileToDelete)
	}
	if r.Reason != "higher bitrate" {
		t.Errorf("reason = %q, want %q", r.Reason, "higher bitrate")
	}
}

func TestResolveDefersWhenBitrateWithinTolerance(t *testing.T) {
	groups := []dedupe.Group{{
		ID: 1,
		Members: []dedupe.GroupMember{
			{TrackID: 1, FilePath: "/x/a.mp3", Similarity: 1.0},
			{TrackID: 2, FilePath: "/y/a.mp3", Similarity: 1.0},
		},
	}}
	tracks := map[int64]*catalog.Track{
		1: tr(1, "/x/a.mp3", 256),
		2: tr(2, "/y/a.mp3", 256),
	}
	plan := Resolve(groups, tracks, Config{})
	if len(plan.Resolutions) != 0 {
		t.Fatalf("expected no resolutions, got %+v", plan.Resolutions)
	}
	if len(plan.ManualReview) != 1 {
		t.Fatalf("expected 1 group deferred to manual review, got %d", len(plan.ManualReview))
	}
}

func TestResolveByMetadataRichness(t *testing.T) {
	groups := []dedupe.Group{{
		ID: 1,
		Members: []dedupe.GroupMember{
			{TrackID: 1, FilePath: "/a/song.mp3"},
			{TrackID: 2, FilePath: "/b/song.mp3"},
		},
	}}
	richTrack := tr(1, "/a/song.mp3", 256)
	richTrack.Title = strp("Song")
	richTrack.Artist = strp("Artist")
	richTrack.Album = strp("Album")
	richTrack.Year = intp(2020)
	richTrack.TrackNumber = intp(3)

	sparseTrack := tr(2, "/b/song.mp3", 256)
	sparseTrack.Title = strp("Song")

	tracks := map[int64]*catalog.Track{1: richTrack, 2: sparseTrack}
	plan := Resolve(groups, tracks, Config{})
	if len(plan.Resolutions) != 1 {
		t.Fatalf("len(resolutions) = %d, want 1", len(plan.Resolutions))
	}
	if plan.Resolutions[0].FileToKeep != "/a/song.mp3" {
		t.Errorf("kept %q, want richer /a/song.mp3", plan.Resolutions[0].FileToKeep)
	}
	if plan.Resolutions[0].Reason != "richer metadata" {
		t.Errorf("reason = %q, want %q", plan.Resolutions[0].Reason, "richer metadata")
	}
}

func TestResolveByPreferredDirectory(t *testing.T) {
	groups := []dedupe.Group{{
		ID: 1,
		Members: []dedupe.GroupMember{
			{TrackID: 1, FilePath: "/library/keep/song.mp3"},
			{TrackID: 2, FilePath: "/inbox/song.mp3"},
		},
	}}
	tracks := map[int64]*catalog.Track{
		1: tr(1, "/library/keep/song.mp3", 256),
		2: tr(2, "/inbox/song.mp3", 256),
	}
	plan := Resolve(groups, tracks, Config{PreferredDir: "/library/keep"})
	if len(plan.Resolutions) != 1 {
		t.Fatalf("len(resolutions) = %d, want 1", len(plan.Resolutions))
	}
	if plan.Resolutions[0].FileToKeep != "/library/keep/song.mp3" {
		t.Errorf("kept %q, want preferred-dir file", plan.Resolutions[0].FileToKeep)
	}
	if plan.Resolutions[0].Reason != "preferred directory" {
		t.Errorf("reason = %q, want %q", plan.Resolutions[0].Reason, "preferred directory")
	}
}

func TestResolveGroupOfThreeYieldsOneKeepTwoDeletes(t *testing.T) {
	groups := []dedupe.Group{{
		ID: 1,
		Members: []dedupe.GroupMember{
			{TrackID: 1, FilePath: "/a.mp3"},
			{TrackID: 2, FilePath: "/b.mp3"},
			{TrackID: 3, FilePath: "/c.mp3"},
		},
	}}
	tracks := map[int64]*catalog.Track{
		1: tr(1, "/a.mp3", 320),
		2: tr(2, "/b.mp3", 128),
		3: tr(3, "/c.mp3", 128),
	}
	plan := Resolve(groups, tracks, Config{})
	if len(plan.Resolutions) != 2 {
		t.Fatalf("len(resolutions) = %d, want 2", len(plan.Resolutions))
	}
	for _, r := range plan.Resolutions {
		if r.FileToKeep != "/a.mp3" {
			t.Errorf("resolution %+v: keep != /a.mp3", r)
		}
	}
}

func TestResolveOrdersByGroupID(t *testing.T) {
	groups := []dedupe.Group{
		{ID: 2, Members: []dedupe.GroupMember{{TrackID: 3, FilePath: "/c1.mp3"}, {TrackID: 4, FilePath: "/c2.mp3"}}},
		{ID: 1, Members: []dedupe.GroupMember{{TrackID: 1, FilePath: "/a1.mp3"}, {TrackID: 2, FilePath: "/a2.mp3"}}},
	}
	tracks := map[int64]*catalog.Track{
		1: tr(1, "/a1.mp3", 320), 2: tr(2, "/a2.mp3", 128),
		3: tr(3, "/c1.mp3", 320), 4: tr(4, "/c2.mp3", 128),
	}
	plan := Resolve(groups, tracks, Config{})
	if len(plan.Resolutions) != 2 {
		t.Fatalf("len(resolutions) = %d, want 2", len(plan.Resolutions))
	}
	if plan.Resolutions[0].GroupID != 1 || plan.Resolutions[1].GroupID != 2 {
		t.Errorf("resolutions not in group_id order: %+v", plan.Resolutions)
	}
}

func TestApplyExcludeDropsMatchingResolutions(t *testing.T) {
	plan := Plan{Resolutions: []Resolution{
		{GroupID: 1, FileToDeleteID: 10, FileToDelete: "/x.mp3"},
		{GroupID: 2, FileToDeleteID: 20, FileToDelete: "/y.mp3"},
	}}
	filtered := ApplyExclude(plan, map[int64]bool{10: true})
	if len(filtered.Resolutions) != 1 || filtered.Resolutions[0].FileToDeleteID != 20 {
		t.Errorf("ApplyExclude result = %+v, want only id 20 retained", filtered.Resolutions)
	}
}

func TestResolveUnknownTrackDefersToManualReview(t *testing.T) {
	groups := []dedupe.Group{{
		ID: 1,
		Members: []dedupe.GroupMember{
			{TrackID: 1, FilePath: "/a.mp3"},
			{TrackID: 99, FilePath: "/missing.mp3"},
		},
	}}
	tracks := map[int64]*catalog.Track{1: tr(1, "/a.mp3", 320)}
	plan := Resolve(groups, tracks, Config{})
	if len(plan.Resolutions) != 0 || len(plan.ManualReview) != 1 {
		t.Errorf("expected unresolved group deferred, got resolutions=%+v manualReview=%d", plan.Resolutions, len(plan.ManualReview))
	}
}
