package api

import "context"

// DatabaseInfo reports the active profile's catalog location and health
// (spec §6: "GET /database").
type DatabaseInfo struct {
	ProfileID    string
	DatabasePath string
	TrackCount   int
	Healthy      bool
	Err          string
}

// DatabaseInfoOf inspects the active profile's catalog: track count and
// integrity, per spec §6's database-info operation.
func (a *API) DatabaseInfoOf(ctx context.Context) (DatabaseInfo, error) {
	p, ok := a.Profiles.Active()
	if !ok {
		return DatabaseInfo{}, errNoActiveProfile
	}
	store, ok := a.Profiles.Store()
	if !ok {
		return DatabaseInfo{}, errNoActiveProfile
	}

	info := DatabaseInfo{ProfileID: p.ID, DatabasePath: p.DatabasePath}

	count, err := store.Count(ctx)
	if err != nil {
		return DatabaseInfo{}, err
	}
	info.TrackCount = count

	if err := store.CheckIntegrity(); err != nil {
		info.Err = err.Error()
		return info, nil
	}
	info.Healthy = true
	return info, nil
}
