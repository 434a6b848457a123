package api

import (
	"errors"

	"github.com/fhinkel/music-janitor-core/internal/dedupe"
	"github.com/fhinkel/music-janitor-core/internal/profile"
)

// API wires together the profile manager and duplicate-scan controller
// that every operation in spec §6 ultimately reads or mutates. One API
// value is constructed per process (the same Application-owns-its-state
// shape C9's Manager follows) and handed to whatever thin transport a
// caller wants — a CLI command, a future HTTP handler — neither of which
// this package knows about.
type API struct {
	Profiles     *profile.Manager
	Dedupe       *dedupe.Controller
	Scans        *ScanManager
	Fingerprints *FingerprintManager
}

// New creates an API over an already-constructed profile manager and
// duplicate-scan controller.
func New(profiles *profile.Manager, dedupe *dedupe.Controller) *API {
	return &API{Profiles: profiles, Dedupe: dedupe, Scans: NewScanManager(), Fingerprints: NewFingerprintManager()}
}

var errNoActiveProfile = errors.New("no active profile")
var errGroupNotFound = errors.New("duplicate group not found")

func (a *API) activeProfileID() string {
	if p, ok := a.Profiles.Active(); ok {
		return p.ID
	}
	return ""
}
