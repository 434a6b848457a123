package api

import "github.com/fhinkel/music-janitor-core/internal/fuzzy"

// GetFuzzyConfig returns the active profile's matcher tuning (spec §6:
// "GET /config/fuzzy-search").
func (a *API) GetFuzzyConfig() (fuzzy.Config, error) {
	p, ok := a.Profiles.Active()
	if !ok {
		return fuzzy.Config{}, errNoActiveProfile
	}
	return p.FuzzyConfig, nil
}

// SetFuzzyConfig overwrites the active profile's matcher tuning (spec §6:
// "PUT /config/fuzzy-search"), invalidating any cached duplicate-scan
// result for it.
func (a *API) SetFuzzyConfig(cfg fuzzy.Config) error {
	p, ok := a.Profiles.Active()
	if !ok {
		return errNoActiveProfile
	}
	return a.Profiles.SetFuzzyConfig(p.ID, cfg)
}

// ApplyFuzzyPreset switches the active profile to one of the named
// presets (spec §6: "POST /fuzzy-search/preset").
func (a *API) ApplyFuzzyPreset(preset fuzzy.Preset) (fuzzy.Config, error) {
	p, ok := a.Profiles.Active()
	if !ok {
		return fuzzy.Config{}, errNoActiveProfile
	}
	return a.Profiles.ApplyFuzzyPreset(p.ID, preset)
}

// GetFileTypes returns the active profile's enabled file-type filter
// (spec §6: "GET /file-types").
func (a *API) GetFileTypes() ([]string, error) {
	p, ok := a.Profiles.Active()
	if !ok {
		return nil, errNoActiveProfile
	}
	return p.EnabledFileTypes, nil
}

// SetFileTypes overwrites the active profile's file-type filter (spec §6:
// "PUT /file-types"). Future scans only; the duplicate-scan cache is left
// untouched.
func (a *API) SetFileTypes(types []string) error {
	p, ok := a.Profiles.Active()
	if !ok {
		return errNoActiveProfile
	}
	return a.Profiles.SetFileTypes(p.ID, types)
}
