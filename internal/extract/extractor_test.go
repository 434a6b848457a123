package extract

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExtractFallsBackToFilenameTitle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Some Song.mp3")
	if err := os.WriteFile(path, []byte("not a real mp3"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	track, err := Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if track.Title == nil || *track.Title != "Some Song" {
		t.Errorf("Title = %v, want \"Some Song\"", track.Title)
	}
	if track.FileType != "mp3" {
		t.Errorf("FileType = %q, want mp3", track.FileType)
	}
	if track.FileSizeBytes == 0 {
		t.Errorf("FileSizeBytes = 0, want > 0")
	}
}

func TestExtractNonexistentFileReturnsError(t *testing.T) {
	_, err := Extract(filepath.Join(t.TempDir(), "missing.mp3"))
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
}

func TestParseTrackNumber(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"3", 3},
		{"3/12", 3},
		{" 7 / 10 ", 7},
		{"", 0},
		{"not-a-number", 0},
	}
	for _, c := range cases {
		if got := parseTrackNumber(c.in); got != c.want {
			t.Errorf("parseTrackNumber(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}
