// Package extract implements the metadata extractor driver (C2): reading
// tags and an audio header from a file into a catalog.Track. Per spec
// §4.2, extraction never blocks beyond the I/O for a single file. A file
// that cannot be stat'd is reported as an error; every later failure
// degrades to a filename-derived Track rather than propagating an error.
package extract

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dhowden/tag"

	"github.com/fhinkel/music-janitor-core/internal/catalog"
	"github.com/fhinkel/music-janitor-core/internal/logging"
)

// Extract reads path into a catalog.Track. It always returns a non-nil
// Track; the only error it returns is when the file itself cannot be
// stat'd (it no longer exists, or isn't readable at all) — every other
// failure (corrupt tags, missing ffprobe, unsupported format) is absorbed
// and reflected as zero-valued fields on the returned Track.
func Extract(path string) (*catalog.Track, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	base := filepath.Base(path)
	titleFromFilename := strings.TrimSuffix(base, filepath.Ext(base))

	t := &catalog.Track{
		FilePath:        path,
		Title:           &titleFromFilename,
		FileSizeBytes:   info.Size(),
		FileType:        ext,
		LastModified:    info.ModTime(),
		DateAdded:       time.Now(),
	}

	if f, err := os.Open(path); err == nil {
		if m, tagErr := tag.ReadFrom(f); tagErr == nil {
			applyTags(t, m)
		} else {
			logging.Debug("extract: tag read failed for %s: %v", path, tagErr)
		}
		f.Close()
	}

	if header, err := readAudioHeader(path); err == nil {
		t.DurationSeconds = header.DurationSeconds
		t.SampleRate = header.SampleRate
		t.BitRate = header.BitRateKbps
	} else {
		logging.Debug("extract: audio header unavailable for %s: %v", path, err)
	}

	return t, nil
}

func applyTags(t *catalog.Track, m tag.Metadata) {
	if v := strings.TrimSpace(m.Title()); v != "" {
		t.Title = &v
	}
	if v := strings.TrimSpace(m.Artist()); v != "" {
		t.Artist = &v
	}
	if v := strings.TrimSpace(m.Album()); v != "" {
		t.Album = &v
	}
	if v := strings.TrimSpace(m.Genre()); v != "" {
		t.Genre = &v
	}
	if y := m.Year(); y > 0 {
		t.Year = &y
	}
	if track, _ := m.Track(); track > 0 {
		t.TrackNumber = &track
	}
}

// parseTrackNumber defensively parses a raw tag value of the form "n" or
// "n/N" into just n, returning 0 when the value can't be parsed. Extract
// does not call it: applyTags takes the track number from the typed
// dhowden/tag Track() accessor.
func parseTrackNumber(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if idx := strings.Index(raw, "/"); idx >= 0 {
		raw = raw[:idx]
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

// Available reports whether the external audio-header decoder (ffprobe) is
// reachable; exposed so callers (e.g. a doctor/diagnostics command) can
// report degraded extraction up front, per spec §4.2's "numeric fields...
// parsed defensively" and §7's ExtractionFailure handling.
func Available() bool {
	return ffprobeAvailable()
}
