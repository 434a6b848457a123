// Package catalog persists the audio-file catalog: one row per discovered
// track, unique by file path, mutated under explicit transactions.
package catalog

import (
	"fmt"
	"time"
)

// Track is one audio file known to the catalog.
type Track struct {
	ID                  int64
	FilePath            string
	Title               *string
	Artist              *string
	Album               *string
	Genre               *string
	TrackNumber         *int
	Year                *int
	DurationSeconds     int
	FileSizeBytes       int64
	BitRate             int
	SampleRate          int
	FileType            string
	LastModified        time.Time
	DateAdded           time.Time
	Fingerprint         *string // comma-separated signed 32-bit ints, Chromaprint raw
	FingerprintDuration *int    // seconds used by fpcalc
}

// FormattedDuration renders DurationSeconds as "m:ss", matching the wire
// shape's formattedDuration field (§6).
func (t *Track) FormattedDuration() string {
	m := t.DurationSeconds / 60
	s := t.DurationSeconds % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
