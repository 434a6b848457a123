// Package profile implements C9: active-profile selection, fuzzy-config
// tuning, and file-type filters, persisted as a named
// (database_path, enabled_file_types, fuzzy_config) triple per spec §3's
// Profile glossary entry. Exactly one profile is active per process;
// switching is atomic from the catalog store's perspective.
package profile

import (
	"strings"
	"time"

	"github.com/fhinkel/music-janitor-core/internal/fuzzy"
)

// Profile is a named bundle of catalog location, scan filters, and
// matcher tuning.
type Profile struct {
	ID               string
	Name             string
	Description      string
	DatabasePath     string
	EnabledFileTypes []string
	FuzzyConfig      fuzzy.Config
	CreatedDate      time.Time
	LastUsedDate     time.Time
}

func (p *Profile) clone() *Profile {
	cp := *p
	cp.EnabledFileTypes = append([]string(nil), p.EnabledFileTypes...)
	return &cp
}

// defaultFileTypes mirrors scan.DefaultExtensions with the leading dot
// stripped — EnabledFileTypes is the human-facing form persisted in the
// profiles file and exposed over the config API (spec §6:
// "GET/PUT /file-types").
var defaultFileTypes = []string{
	"mp3", "flac", "m4a", "aac", "ogg", "opus",
	"wav", "aiff", "aif", "wma", "ape", "wv", "mpc",
}

// ScanExtensions returns EnabledFileTypes rewritten with a leading dot,
// the form scan.Config.Extensions expects.
func (p *Profile) ScanExtensions() []string {
	exts := make([]string, len(p.EnabledFileTypes))
	for i, t := range p.EnabledFileTypes {
		if strings.HasPrefix(t, ".") {
			exts[i] = t
		} else {
			exts[i] = "." + t
		}
	}
	return exts
}
