package resolve

import (
	"testing"

	"github.com/fhinkel/music-janitor-core/internal/dedupe"
)

func TestDirectoryConflictsGroupsByDirPair(t *testing.T) {
	groups := []dedupe.Group{
		{ID: 1, Members: []dedupe.GroupMember{
			{TrackID: 1, FilePath: "/library/song1.mp3"},
			{TrackID: 2, FilePath: "/inbox/song1.mp3"},
		}},
		{ID: 2, Members: []dedupe.GroupMember{
			{TrackID: 3, FilePath: "/inbox/song2.mp3"},
			{TrackID: 4, FilePath: "/library/song2.mp3"},
		}},
	}
	conflicts := DirectoryConflicts(groups)
	if len(conflicts) != 1 {
		t.Fatalf("len(conflicts) = %d, want 1 (same dir pair regardless of order)", len(conflicts))
	}
	if len(conflicts[0].Pairs) != 2 {
		t.Errorf("len(pairs) = %d, want 2", len(conflicts[0].Pairs))
	}
}

func TestPreviewDirectoryResolution(t *testing.T) {
	conflicts := DirectoryConflicts([]dedupe.Group{
		{ID: 1, Members: []dedupe.GroupMember{
			{TrackID: 1, FilePath: "/library/song1.mp3"},
			{TrackID: 2, FilePath: "/inbox/song1.mp3"},
		}},
		{ID: 2, Members: []dedupe.GroupMember{
			{TrackID: 3, FilePath: "/inbox/song2.mp3"},
			{TrackID: 4, FilePath: "/library/song2.mp3"},
		}},
	})
	files := PreviewDirectoryResolution(conflicts[0], "/library", "/inbox")
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2: %v", len(files), files)
	}
	want := map[string]bool{"/inbox/song1.mp3": true, "/inbox/song2.mp3": true}
	for _, f := range files {
		if !want[f] {
			t.Errorf("unexpected file %q in deletion preview", f)
		}
	}
}
