package api

import (
	"context"
	"testing"

	"github.com/fhinkel/music-janitor-core/internal/catalog"
	"github.com/fhinkel/music-janitor-core/internal/dedupe"
	"github.com/fhinkel/music-janitor-core/internal/fuzzy"
	"github.com/fhinkel/music-janitor-core/internal/resolve"
)

func insertTrackWithBitrate(t *testing.T, a *API, path, title, artist, album string, bitrate int) int64 {
	t.Helper()
	store, ok := a.Profiles.Store()
	if !ok {
		t.Fatal("no active store")
	}
	id, err := store.Insert(context.Background(), &catalog.Track{
		FilePath: path,
		Title:    strp(title),
		Artist:   strp(artist),
		Album:    strp(album),
		BitRate:  bitrate,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	return id
}

func TestAutoResolvePreviewAndExecute(t *testing.T) {
	a := newTestAPI(t)
	insertTrackWithBitrate(t, a, "/music/b.mp3", "Song", "Artist", "Album", 128)
	insertTrackWithBitrate(t, a, "/music/a.mp3", "Song", "Artist", "Album", 320)

	cfg := fuzzy.DefaultConfig()
	session, err := a.Dedupe.Start(context.Background(), "default", cfg, dedupe.DefaultFingerprintThreshold)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	for range session.Groups() {
	}
	if _, err := session.Wait(); err != nil {
		t.Fatalf("session: %v", err)
	}

	plan, err := a.PreviewAutoResolve(context.Background(), cfg, dedupe.DefaultFingerprintThreshold, resolve.Config{})
	if err != nil {
		t.Fatalf("PreviewAutoResolve: %v", err)
	}
	if len(plan.Resolutions) != 1 {
		t.Fatalf("len(Resolutions) = %d, want 1", len(plan.Resolutions))
	}
	if plan.Resolutions[0].FileToDelete != "/music/b.mp3" {
		t.Errorf("expected the lower-bitrate file deleted, got %+v", plan.Resolutions[0])
	}

	result, err := a.ExecuteAutoResolve(context.Background(), cfg, dedupe.DefaultFingerprintThreshold, resolve.Config{}, nil)
	if err != nil {
		t.Fatalf("ExecuteAutoResolve: %v", err)
	}
	if result.Deleted != 1 {
		t.Fatalf("Deleted = %d, want 1", result.Deleted)
	}

	page, err := a.ListTracks(context.Background(), 0, 20, nil)
	if err != nil {
		t.Fatalf("ListTracks: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("Total = %d, want 1 after auto-resolve", page.Total)
	}
}

func TestAutoResolveExcludesFileFromDeletion(t *testing.T) {
	a := newTestAPI(t)
	id1 := insertTrackWithBitrate(t, a, "/music/b.mp3", "Song", "Artist", "Album", 128)
	insertTrackWithBitrate(t, a, "/music/a.mp3", "Song", "Artist", "Album", 320)

	cfg := fuzzy.DefaultConfig()
	session, err := a.Dedupe.Start(context.Background(), "default", cfg, dedupe.DefaultFingerprintThreshold)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	for range session.Groups() {
	}
	if _, err := session.Wait(); err != nil {
		t.Fatalf("session: %v", err)
	}

	result, err := a.ExecuteAutoResolve(context.Background(), cfg, dedupe.DefaultFingerprintThreshold, resolve.Config{}, []int64{id1})
	if err != nil {
		t.Fatalf("ExecuteAutoResolve: %v", err)
	}
	if result.Deleted != 0 {
		t.Fatalf("Deleted = %d, want 0 when the only resolution is excluded", result.Deleted)
	}
}
