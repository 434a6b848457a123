package api

import (
	"context"

	"github.com/fhinkel/music-janitor-core/internal/profile"
)

// CreateProfile creates a new profile (spec §6: "profiles CRUD").
func (a *API) CreateProfile(id, name, description, databasePath string, enabledFileTypes []string) (*profile.Profile, error) {
	return a.Profiles.Create(id, name, description, databasePath, enabledFileTypes)
}

// DuplicateProfile copies an existing profile under a new id.
func (a *API) DuplicateProfile(sourceID, newID, newName string) (*profile.Profile, error) {
	return a.Profiles.Duplicate(sourceID, newID, newName)
}

// DeleteProfile removes a profile; the active profile cannot be deleted.
func (a *API) DeleteProfile(id string) error {
	return a.Profiles.Delete(id)
}

// GetProfile returns a single profile by id.
func (a *API) GetProfile(id string) (*profile.Profile, bool) {
	return a.Profiles.Get(id)
}

// ListProfiles returns every known profile.
func (a *API) ListProfiles() []*profile.Profile {
	return a.Profiles.List()
}

// ActiveProfile returns the currently active profile, if any.
func (a *API) ActiveProfile() (*profile.Profile, bool) {
	return a.Profiles.Active()
}

// ActivateProfile performs the atomic switch to profile id (spec §4.9).
func (a *API) ActivateProfile(ctx context.Context, id string) error {
	return a.Profiles.Activate(ctx, id)
}
