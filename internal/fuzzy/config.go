// Package fuzzy implements the fuzzy metadata matcher (C4): field
// normalization, Jaro-Winkler/Levenshtein similarity, and the duplicate
// decision described in spec §4.4.
package fuzzy

// Config tunes every aspect of fuzzy matching. Zero value is invalid; use
// DefaultConfig (Balanced preset) or one of Strict/Lenient.
type Config struct {
	TitleThreshold         float64 // 0-100
	ArtistThreshold        float64 // 0-100
	AlbumThreshold         float64 // 0-100
	DurationTolSec         float64
	DurationTolPct         float64
	BitrateTolKbps         float64
	MinFieldsToMatch       int // 1-4
	IgnoreCase             bool
	IgnorePunct            bool
	WordOrderSensitive     bool
	IgnoreArtistPrefixes   bool
	IgnoreFeaturing        bool
	IgnoreAlbumEditions    bool
	TrackNumberMustMatch   bool
	IgnoreMissingTrackNum  bool
}

// DefaultConfig is the Balanced preset — the default tuning for everyday
// duplicate detection.
func DefaultConfig() Config {
	return Config{
		TitleThreshold:        85,
		ArtistThreshold:       90,
		AlbumThreshold:        85,
		DurationTolSec:        10,
		DurationTolPct:        5,
		BitrateTolKbps:        64,
		MinFieldsToMatch:      2,
		IgnoreCase:            true,
		IgnorePunct:           true,
		WordOrderSensitive:    false,
		IgnoreArtistPrefixes:  true,
		IgnoreFeaturing:       false,
		IgnoreAlbumEditions:   true,
		TrackNumberMustMatch:  false,
		IgnoreMissingTrackNum: true,
	}
}

// StrictConfig requires near-exact matches on every field.
func StrictConfig() Config {
	c := DefaultConfig()
	c.TitleThreshold = 100
	c.ArtistThreshold = 100
	c.AlbumThreshold = 100
	c.DurationTolSec = 0
	c.DurationTolPct = 0
	c.MinFieldsToMatch = 4
	c.TrackNumberMustMatch = true
	return c
}

// LenientConfig relaxes thresholds for a broader, noisier sweep.
func LenientConfig() Config {
	c := DefaultConfig()
	c.TitleThreshold = 70
	c.ArtistThreshold = 75
	c.AlbumThreshold = 70
	c.DurationTolSec = 30
	c.DurationTolPct = 10
	c.MinFieldsToMatch = 2
	c.IgnoreFeaturing = true
	return c
}

// Preset names a built-in Config.
type Preset string

const (
	PresetStrict   Preset = "strict"
	PresetBalanced Preset = "balanced"
	PresetLenient  Preset = "lenient"
)

// Apply returns the Config for a named preset and true, or a zero Config
// and false for an unknown name (callers map that to InvalidArgument).
func Apply(p Preset) (Config, bool) {
	switch p {
	case PresetStrict:
		return StrictConfig(), true
	case PresetBalanced:
		return DefaultConfig(), true
	case PresetLenient:
		return LenientConfig(), true
	default:
		return Config{}, false
	}
}
