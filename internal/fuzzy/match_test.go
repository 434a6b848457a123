package fuzzy

import "testing"

func TestMatchFeaturingStripped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IgnoreFeaturing = true

	a := Candidate{Title: "Song", Artist: "The Band feat. Guest", Album: "Hits", Duration: 180}
	b := Candidate{Title: "Song", Artist: "Band", Album: "Hits", Duration: 182}

	d := Match(a, b, cfg)

	if !d.Duplicate {
		t.Fatalf("expected duplicate=true, got false (%s)", Summary(d, cfg))
	}
	if d.Scores.Title != 100 {
		t.Errorf("title score = %v, want 100", d.Scores.Title)
	}
	if d.Scores.Artist != 100 {
		t.Errorf("artist score = %v, want 100", d.Scores.Artist)
	}
	if d.Scores.Album != 100 {
		t.Errorf("album score = %v, want 100", d.Scores.Album)
	}
	if !d.Scores.DurationMatch {
		t.Errorf("expected duration match within tolerance")
	}
	if d.MatchingFields != 4 {
		t.Errorf("matchingFields = %d, want 4", d.MatchingFields)
	}
	if d.SimilarityScore != 100 {
		t.Errorf("similarity_score = %v, want 100", d.SimilarityScore)
	}
}

func TestMatchNonMatchByMinFields(t *testing.T) {
	cfg := DefaultConfig()

	a := Candidate{Title: "Song", Artist: "X", Album: "A", Duration: 180}
	b := Candidate{Title: "Song!", Artist: "Y", Album: "B", Duration: 400}

	d := Match(a, b, cfg)

	if d.Duplicate {
		t.Fatalf("expected duplicate=false, got true (%s)", Summary(d, cfg))
	}
	if d.MatchingFields != 1 {
		t.Errorf("matchingFields = %d, want 1 (title only)", d.MatchingFields)
	}
	if d.SimilarityScore != 0 {
		t.Errorf("similarity_score = %v, want 0 for a non-duplicate", d.SimilarityScore)
	}
}

func TestMatchSymmetric(t *testing.T) {
	cfg := DefaultConfig()
	a := Candidate{Title: "Blue Monday", Artist: "New Order", Album: "Substance", Duration: 445}
	b := Candidate{Title: "Blue Monday (Remaster)", Artist: "New Order", Album: "Substance (Deluxe Edition)", Duration: 448}

	ab := Match(a, b, cfg)
	ba := Match(b, a, cfg)

	if ab.Duplicate != ba.Duplicate || ab.MatchingFields != ba.MatchingFields {
		t.Errorf("Match is not symmetric: ab=%+v ba=%+v", ab, ba)
	}
}

func TestMatchIdenticalIsAlwaysDuplicate(t *testing.T) {
	cfg := StrictConfig()
	a := Candidate{Title: "Same", Artist: "Same Artist", Album: "Same Album", Duration: 200, TrackNumber: intPtrFuzzy(3)}
	d := Match(a, a, cfg)
	if !d.Duplicate {
		t.Fatalf("expected identical candidates to match under strict config: %s", Summary(d, cfg))
	}
	if d.SimilarityScore != 100 {
		t.Errorf("similarity_score = %v, want 100 for identical candidates", d.SimilarityScore)
	}
}

func TestTrackNumberGateBlocks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TrackNumberMustMatch = true
	cfg.IgnoreMissingTrackNum = true

	a := Candidate{Title: "Song", Artist: "Artist", Album: "Album", Duration: 180, TrackNumber: intPtrFuzzy(1)}
	b := Candidate{Title: "Song", Artist: "Artist", Album: "Album", Duration: 180, TrackNumber: intPtrFuzzy(2)}

	d := Match(a, b, cfg)
	if d.Duplicate {
		t.Fatalf("expected track-number mismatch to block duplicate decision")
	}
	if d.TrackNumberGate {
		t.Errorf("expected TrackNumberGate = false")
	}
}

func TestApplyPreset(t *testing.T) {
	if _, ok := Apply(Preset("nonsense")); ok {
		t.Fatalf("expected unknown preset to fail")
	}
	if cfg, ok := Apply(PresetStrict); !ok || cfg.MinFieldsToMatch != 4 {
		t.Fatalf("strict preset mismatch: %+v", cfg)
	}
}

func intPtrFuzzy(n int) *int { return &n }
