package api

import (
	"context"

	"github.com/fhinkel/music-janitor-core/internal/catalog"
	"github.com/fhinkel/music-janitor-core/internal/fuzzy"
	"github.com/fhinkel/music-janitor-core/internal/resolve"
)

func (a *API) tracksByID(ctx context.Context, store *catalog.Store) (map[int64]*catalog.Track, error) {
	all, err := store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*catalog.Track, len(all))
	for _, t := range all {
		byID[t.ID] = t
	}
	return byID, nil
}

// PreviewAutoResolve runs the ranked tie-breaker chain over the active
// profile's cached duplicate groups and returns the resulting plan without
// deleting anything (spec §6: "POST /auto-resolve/preview").
func (a *API) PreviewAutoResolve(ctx context.Context, cfg fuzzy.Config, fpThreshold float64, resolveCfg resolve.Config) (resolve.Plan, error) {
	store, ok := a.Profiles.Store()
	if !ok {
		return resolve.Plan{}, errNoActiveProfile
	}
	groups, ok := a.Dedupe.Cached(a.activeProfileID(), cfg, fpThreshold)
	if !ok {
		return resolve.Plan{}, nil
	}
	tracks, err := a.tracksByID(ctx, store)
	if err != nil {
		return resolve.Plan{}, err
	}
	return resolve.Resolve(groups, tracks, resolveCfg), nil
}

// ExecuteAutoResolve previews a plan and applies it, optionally excluding
// some file ids from deletion first (spec §6: "POST /auto-resolve/execute
// {excludeFileIds?}").
func (a *API) ExecuteAutoResolve(ctx context.Context, cfg fuzzy.Config, fpThreshold float64, resolveCfg resolve.Config, excludeFileIDs []int64) (*resolve.Result, error) {
	plan, err := a.PreviewAutoResolve(ctx, cfg, fpThreshold, resolveCfg)
	if err != nil {
		return nil, err
	}
	if len(excludeFileIDs) > 0 {
		exclude := make(map[int64]bool, len(excludeFileIDs))
		for _, id := range excludeFileIDs {
			exclude[id] = true
		}
		plan = resolve.ApplyExclude(plan, exclude)
	}
	store, ok := a.Profiles.Store()
	if !ok {
		return nil, errNoActiveProfile
	}
	result := resolve.Execute(ctx, store, plan)
	if result.Deleted > 0 {
		a.Dedupe.InvalidateProfile(a.activeProfileID())
	}
	return result, nil
}
