package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fhinkel/music-janitor-core/internal/catalog"
)

func TestIsAudioFile(t *testing.T) {
	scanner := &Scanner{
		extensions: map[string]bool{
			".mp3":  true,
			".flac": true,
			".m4a":  true,
		},
	}

	tests := []struct {
		path     string
		expected bool
	}{
		{"test.mp3", true},
		{"test.MP3", true},
		{"test.flac", true},
		{"test.m4a", true},
		{"test.txt", false},
		{"test.jpg", false},
		{"test", false},
		{".mp3", true},
	}

	for _, tt := range tests {
		if got := scanner.isAudioFile(tt.path); got != tt.expected {
			t.Errorf("isAudioFile(%s) = %v, want %v", tt.path, got, tt.expected)
		}
	}
}

func openTestCatalog(t *testing.T, dir string) *catalog.Store {
	t.Helper()
	db, err := catalog.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestScanDiscoversAudioFiles(t *testing.T) {
	tmpDir := t.TempDir()
	artistDir := filepath.Join(tmpDir, "Artist")
	albumDir := filepath.Join(artistDir, "Album")
	if err := os.MkdirAll(albumDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	testFiles := []string{
		filepath.Join(albumDir, "01 - Track One.mp3"),
		filepath.Join(albumDir, "02 - Track Two.flac"),
		filepath.Join(artistDir, "single.m4a"),
		filepath.Join(tmpDir, "README.txt"),
	}
	for _, path := range testFiles {
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	db := openTestCatalog(t, tmpDir)
	scanner := New(&Config{Store: db, Concurrency: 2})

	result, err := scanner.Scan(context.Background(), []string{tmpDir})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.FilesDiscovered != 3 {
		t.Errorf("FilesDiscovered = %d, want 3", result.FilesDiscovered)
	}

	n, err := db.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Errorf("catalog Count = %d, want 3", n)
	}
}

func TestScanIdempotent(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.mp3")
	if err := os.WriteFile(testFile, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	db := openTestCatalog(t, tmpDir)
	scanner := New(&Config{Store: db, Concurrency: 1})
	ctx := context.Background()

	result1, err := scanner.Scan(ctx, []string{tmpDir})
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	if result1.FilesDiscovered != 1 {
		t.Errorf("first scan FilesDiscovered = %d, want 1", result1.FilesDiscovered)
	}

	result2, err := scanner.Scan(ctx, []string{tmpDir})
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if result2.FilesDiscovered != 0 {
		t.Errorf("second scan FilesDiscovered = %d, want 0 (already catalogued)", result2.FilesDiscovered)
	}
	if result2.FilesSkipped != 1 {
		t.Errorf("second scan FilesSkipped = %d, want 1", result2.FilesSkipped)
	}

	n, err := db.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("catalog Count after two scans = %d, want 1", n)
	}
}
