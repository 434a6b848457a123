package fuzzy

// Candidate is the minimal set of fields the matcher compares; callers
// project catalog.Track into this shape.
type Candidate struct {
	Title       string
	Artist      string
	Album       string
	Duration    int // seconds, 0 = unknown
	Bitrate     int // kbps, 0 = unknown
	TrackNumber *int
}

// FieldScores holds the per-field similarity percentages computed for a
// pair, before the duplicate decision is applied.
type FieldScores struct {
	Title         float64
	Artist        float64
	Album         float64
	DurationMatch bool
	BitrateMatch  bool
}

// Decision is the outcome of comparing two Candidates under a Config.
type Decision struct {
	Duplicate      bool
	MatchingFields int
	SimilarityScore float64
	Scores          FieldScores
	TrackNumberGate bool
}

// Match applies the normalization pipeline, per-field similarity, and the
// duplicate decision of spec §4.4 to a and b under cfg.
func Match(a, b Candidate, cfg Config) Decision {
	titleA, titleB := NormalizeTitle(a.Title, cfg), NormalizeTitle(b.Title, cfg)
	artistA, artistB := NormalizeArtist(a.Artist, cfg), NormalizeArtist(b.Artist, cfg)
	albumA, albumB := NormalizeAlbum(a.Album, cfg), NormalizeAlbum(b.Album, cfg)

	scores := FieldScores{
		Title:         FieldSimilarity(titleA, titleB),
		Artist:        FieldSimilarity(artistA, artistB),
		Album:         FieldSimilarity(albumA, albumB),
		DurationMatch: DurationsMatch(a.Duration, b.Duration, cfg),
		BitrateMatch:  BitratesMatch(a.Bitrate, b.Bitrate, cfg),
	}

	matching := 0
	if scores.Title >= cfg.TitleThreshold {
		matching++
	}
	if scores.Artist >= cfg.ArtistThreshold {
		matching++
	}
	if scores.Album >= cfg.AlbumThreshold {
		matching++
	}
	if scores.DurationMatch {
		matching++
	}

	gate := TrackNumbersMatch(a.TrackNumber, b.TrackNumber, cfg)
	duplicate := matching >= cfg.MinFieldsToMatch && gate

	d := Decision{
		Duplicate:       duplicate,
		MatchingFields:  matching,
		Scores:          scores,
		TrackNumberGate: gate,
	}
	if duplicate {
		d.SimilarityScore = (scores.Title + scores.Artist + scores.Album) / 3
	}
	return d
}
