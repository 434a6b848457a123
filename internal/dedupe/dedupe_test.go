package dedupe

import (
	"context"
	"testing"
	"time"

	"github.com/fhinkel/music-janitor-core/internal/catalog"
	"github.com/fhinkel/music-janitor-core/internal/fuzzy"
)

type fakeSource struct {
	tracks []*catalog.Track
}

func (f *fakeSource) ListAll(ctx context.Context) ([]*catalog.Track, error) {
	return f.tracks, nil
}

func strp(s string) *string { return &s }

func track(id int64, path, title, artist, album string, duration int) *catalog.Track {
	return &catalog.Track{
		ID:              id,
		FilePath:        path,
		Title:           strp(title),
		Artist:          strp(artist),
		Album:           strp(album),
		DurationSeconds: duration,
	}
}

func TestControllerFindsFuzzyDuplicateGroup(t *testing.T) {
	tracks := []*catalog.Track{
		track(1, "/music/b.mp3", "Song", "Artist", "Album", 180),
		track(2, "/music/a.mp3", "Song", "Artist", "Album", 181),
		track(3, "/music/c.mp3", "Totally Different", "Other", "Other Album", 999),
	}
	ctrl := NewController(&fakeSource{tracks: tracks})

	session, err := ctrl.Start(context.Background(), "default", fuzzy.DefaultConfig(), DefaultFingerprintThreshold)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	var collected []Group
	for g := range session.Groups() {
		collected = append(collected, g)
	}
	groups, err := session.Wait()
	if err != nil {
		t.Fatalf("session error: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1: %+v", len(groups), groups)
	}
	if len(collected) != len(groups) {
		t.Errorf("streamed %d groups, finished with %d", len(collected), len(groups))
	}

	g := groups[0]
	if len(g.Members) != 2 {
		t.Fatalf("len(members) = %d, want 2", len(g.Members))
	}
	if g.Members[0].FilePath != "/music/a.mp3" {
		t.Errorf("Members[0].FilePath = %q, want lexicographically smallest /music/a.mp3", g.Members[0].FilePath)
	}
}

func TestControllerCacheInvalidatedByInvalidateProfile(t *testing.T) {
	tracks := []*catalog.Track{
		track(1, "/a.mp3", "Song", "Artist", "Album", 180),
		track(2, "/b.mp3", "Song", "Artist", "Album", 180),
	}
	ctrl := NewController(&fakeSource{tracks: tracks})
	cfg := fuzzy.DefaultConfig()

	s1, _ := ctrl.Start(context.Background(), "p1", cfg, DefaultFingerprintThreshold)
	drainGroups(s1)
	if _, err := s1.Wait(); err != nil {
		t.Fatalf("session 1: %v", err)
	}
	if _, ok := ctrl.Cached("p1", cfg, DefaultFingerprintThreshold); !ok {
		t.Fatal("expected cache to be populated after first scan")
	}

	ctrl.InvalidateProfile("p1")
	if _, ok := ctrl.Cached("p1", cfg, DefaultFingerprintThreshold); ok {
		t.Fatal("expected cache to be empty after InvalidateProfile")
	}
}

func TestSessionCancelStopsBeforeCompletion(t *testing.T) {
	tracks := make([]*catalog.Track, 0, 50)
	for i := 0; i < 50; i++ {
		tracks = append(tracks, track(int64(i), "/t.mp3", "Song", "Artist", "Album", 180))
	}
	ctrl := NewController(&fakeSource{tracks: tracks})
	session, err := ctrl.Start(context.Background(), "default", fuzzy.DefaultConfig(), DefaultFingerprintThreshold)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	session.Cancel()
	drainGroups(session)

	select {
	case <-session.done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not reach a terminal state within 2s of Cancel")
	}
	if st := session.State(); st != StateCancelled && st != StateCompleted {
		t.Errorf("state = %v, want cancelled (or completed if the race finished first)", st)
	}
}

func TestPagePagination(t *testing.T) {
	groups := []Group{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5}}
	page0 := Page(groups, 0, 2)
	if len(page0) != 2 || page0[0].ID != 1 {
		t.Errorf("page 0 = %+v, want groups 1,2", page0)
	}
	page2 := Page(groups, 2, 2)
	if len(page2) != 1 || page2[0].ID != 5 {
		t.Errorf("page 2 = %+v, want group 5", page2)
	}
	if Page(groups, 10, 2) != nil {
		t.Error("expected out-of-range page to return nil")
	}
}

func drainGroups(s *Session) {
	for range s.Groups() {
	}
}
