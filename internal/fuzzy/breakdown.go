package fuzzy

import "fmt"

// Breakdown is a human-readable trace of a single field comparison, used by
// the compare endpoint's reporter (spec §4.4, §6).
type Breakdown struct {
	Field    string
	ValueA   string
	ValueB   string
	LenA     int
	LenB     int
	Score    float64
	Required float64
	Pass     bool
}

// String renders a single field line, e.g.
// `title: "song" (len 4) vs "song" (len 4) -> 100.0% (>= 85.0, pass)`.
func (b Breakdown) String() string {
	verdict := "fail"
	if b.Pass {
		verdict = "pass"
	}
	return fmt.Sprintf("%s: %q (len %d) vs %q (len %d) -> %.1f%% (>= %.1f, %s)",
		b.Field, b.ValueA, b.LenA, b.ValueB, b.LenB, b.Score, b.Required, verdict)
}

// ExplainMatch builds the title, artist and album breakdown rows for a pair
// already scored by Match. It has no duration row and no verdict line;
// Summary renders the overall verdict.
func ExplainMatch(a, b Candidate, cfg Config, d Decision) []Breakdown {
	titleA, titleB := NormalizeTitle(a.Title, cfg), NormalizeTitle(b.Title, cfg)
	artistA, artistB := NormalizeArtist(a.Artist, cfg), NormalizeArtist(b.Artist, cfg)
	albumA, albumB := NormalizeAlbum(a.Album, cfg), NormalizeAlbum(b.Album, cfg)

	return []Breakdown{
		{
			Field: "title", ValueA: titleA, ValueB: titleB,
			LenA: len(titleA), LenB: len(titleB),
			Score: d.Scores.Title, Required: cfg.TitleThreshold,
			Pass: d.Scores.Title >= cfg.TitleThreshold,
		},
		{
			Field: "artist", ValueA: artistA, ValueB: artistB,
			LenA: len(artistA), LenB: len(artistB),
			Score: d.Scores.Artist, Required: cfg.ArtistThreshold,
			Pass: d.Scores.Artist >= cfg.ArtistThreshold,
		},
		{
			Field: "album", ValueA: albumA, ValueB: albumB,
			LenA: len(albumA), LenB: len(albumB),
			Score: d.Scores.Album, Required: cfg.AlbumThreshold,
			Pass: d.Scores.Album >= cfg.AlbumThreshold,
		},
	}
}

// Summary renders an overall trace line for a Decision: matching field
// count, the min-fields requirement, the track-number gate, and the final
// verdict.
func Summary(d Decision, cfg Config) string {
	return fmt.Sprintf("matching=%d/%d (need %d), track_number_gate=%v, similarity_score=%.1f%%, duplicate=%v",
		d.MatchingFields, 4, cfg.MinFieldsToMatch, d.TrackNumberGate, d.SimilarityScore, d.Duplicate)
}
