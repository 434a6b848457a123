package fuzzy

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// albumEditionRe strips the edition/version suffix spec §4.4 names for
	// album normalization, e.g. "Hits (Deluxe Edition)" -> "Hits".
	albumEditionRe = regexp.MustCompile(`(?i)\s*[\(\[]\s*(deluxe|remastered|special|limited|extended|expanded|anniversary|collector'?s)(\s+(edition|version))?\s*[\)\]]`)
	featuringRe    = regexp.MustCompile(`(?i)\s*[\(\[]?\s*(feat\.?|ft\.?|featuring)\s+.+$`)
	whitespaceRe   = regexp.MustCompile(`\s+`)

	punctReplacer = strings.NewReplacer(
		".", "",
		",", "",
		"!", "",
		"?", "",
		"'", "",
		"’", "",
		"\"", "",
		":", "",
		";", "",
		"-", " ",
		"_", " ",
		"&", "and",
		"/", " ",
	)
)

// normalizeField applies the shared normalization pipeline (trim → Unicode
// NFC → case fold → punctuation fold → whitespace collapse) plus the
// field-specific steps cfg enables, grounded on the normalization teacher
// code applies before clustering tracks.
func normalizeField(s string, cfg Config, stripFeaturing, stripEdition, stripArtistPrefix bool) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	s = strings.TrimSpace(s)
	if cfg.IgnoreCase {
		s = strings.ToLower(s)
	}
	if stripFeaturing && cfg.IgnoreFeaturing {
		s = featuringRe.ReplaceAllString(s, "")
	}
	if stripEdition && cfg.IgnoreAlbumEditions {
		s = albumEditionRe.ReplaceAllString(s, "")
	}
	if cfg.IgnorePunct {
		s = punctReplacer.Replace(s)
	}
	if stripArtistPrefix && cfg.IgnoreArtistPrefixes {
		s = stripLeadingArticle(s)
	}
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// stripLeadingArticle drops a leading "the "/"a "/"an " so "The Beatles" and
// "Beatles" normalize to the same key, and folds a trailing " the" form (the
// comma is already gone by this point — punctuation folding runs first).
func stripLeadingArticle(s string) string {
	if strings.HasSuffix(s, " the") {
		return "the " + strings.TrimSuffix(s, " the")
	}
	for _, prefix := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(s, prefix) {
			return strings.TrimPrefix(s, prefix)
		}
	}
	return s
}

// NormalizeTitle normalizes a track title per cfg. Titles get no
// field-specific strip beyond case/punctuation — edition and featuring
// stripping apply only to album and artist respectively (spec §4.4).
func NormalizeTitle(title string, cfg Config) string {
	return normalizeField(title, cfg, false, false, false)
}

// NormalizeArtist normalizes an artist name per cfg.
func NormalizeArtist(artist string, cfg Config) string {
	return normalizeField(artist, cfg, true, false, true)
}

// NormalizeAlbum normalizes an album name per cfg.
func NormalizeAlbum(album string, cfg Config) string {
	return normalizeField(album, cfg, false, true, false)
}
