// Package api is the Go-function adapter surface for spec §6: the same
// operations an HTTP/JSON + WebSocket layer would expose, called
// directly as typed methods instead of over the network. No listener is
// started here; a thin transport (HTTP handlers, a CLI) can wrap this
// package without touching any other internal package directly.
package api

import (
	"context"

	"github.com/dustin/go-humanize"

	"github.com/fhinkel/music-janitor-core/internal/catalog"
)

// TrackView is the camelCase-on-the-wire Track shape of spec §6, derived
// from catalog.Track. Pointer fields collapse to their zero value when
// nil, matching a JSON null on the wire once marshaled by a caller.
type TrackView struct {
	ID                int64
	FilePath          string
	Title             string
	Artist            string
	Album             string
	Genre             string
	TrackNumber       int
	Year              int
	DurationSeconds   int
	FileSizeBytes     int64
	BitRate           int
	SampleRate        int
	FileType          string
	FormattedDuration string
	FormattedFileSize string
}

// NewTrackView converts a catalog.Track into its wire shape.
func NewTrackView(t *catalog.Track) TrackView {
	v := TrackView{
		ID:                t.ID,
		FilePath:          t.FilePath,
		DurationSeconds:   t.DurationSeconds,
		FileSizeBytes:     t.FileSizeBytes,
		BitRate:           t.BitRate,
		SampleRate:        t.SampleRate,
		FileType:          t.FileType,
		FormattedDuration: t.FormattedDuration(),
		FormattedFileSize: humanize.IBytes(uint64(t.FileSizeBytes)),
	}
	if t.Title != nil {
		v.Title = *t.Title
	}
	if t.Artist != nil {
		v.Artist = *t.Artist
	}
	if t.Album != nil {
		v.Album = *t.Album
	}
	if t.Genre != nil {
		v.Genre = *t.Genre
	}
	if t.TrackNumber != nil {
		v.TrackNumber = *t.TrackNumber
	}
	if t.Year != nil {
		v.Year = *t.Year
	}
	return v
}

// Page is a generic paginated result, matching every `?page&size` list
// endpoint in spec §6.
type Page[T any] struct {
	Items []T
	Page  int
	Size  int
	Total int
}

// ListTracks returns a page of tracks, optionally narrowed by filters
// (spec §6: "GET /api/v1/music?page&size", "GET /search?q|title|artist|album").
func (a *API) ListTracks(ctx context.Context, page, size int, filters *catalog.Filters) (Page[TrackView], error) {
	store, ok := a.Profiles.Store()
	if !ok {
		return Page[TrackView]{}, errNoActiveProfile
	}
	if size <= 0 {
		size = 20
	}
	tracks, err := store.ListPage(ctx, page*size, size, filters)
	if err != nil {
		return Page[TrackView]{}, err
	}
	total, err := store.Count(ctx)
	if err != nil {
		return Page[TrackView]{}, err
	}
	items := make([]TrackView, len(tracks))
	for i, t := range tracks {
		items[i] = NewTrackView(t)
	}
	return Page[TrackView]{Items: items, Page: page, Size: size, Total: total}, nil
}

// GetTrack returns a single track by id.
func (a *API) GetTrack(ctx context.Context, id int64) (TrackView, error) {
	store, ok := a.Profiles.Store()
	if !ok {
		return TrackView{}, errNoActiveProfile
	}
	t, err := store.GetByID(ctx, id)
	if err != nil {
		return TrackView{}, err
	}
	return NewTrackView(t), nil
}

// UpdateTrack overwrites the mutable fields of an existing track (spec
// §6: "PUT /:id").
func (a *API) UpdateTrack(ctx context.Context, t *catalog.Track) error {
	store, ok := a.Profiles.Store()
	if !ok {
		return errNoActiveProfile
	}
	if err := store.Update(ctx, t); err != nil {
		return err
	}
	a.Dedupe.InvalidateProfile(a.activeProfileID())
	return nil
}

// DeleteTrack removes a single track (spec §6: "DELETE /:id").
func (a *API) DeleteTrack(ctx context.Context, id int64) error {
	store, ok := a.Profiles.Store()
	if !ok {
		return errNoActiveProfile
	}
	if err := store.Delete(ctx, id); err != nil {
		return err
	}
	a.Dedupe.InvalidateProfile(a.activeProfileID())
	return nil
}

// BulkDeleteResult reports the outcome of a bulk delete (spec §6: "PUT
// /bulk" is read as a bulk mutation; delete is the bulk operation this
// adapter exposes since it is the one every other bulk flow funnels
// through — auto-resolve execution and group/keep pruning both end in a
// batch of track deletes).
type BulkDeleteResult struct {
	Deleted int
	Errors  []error
}

// BulkDeleteTracks deletes every id, continuing past individual failures
// (spec §6: "PUT /bulk").
func (a *API) BulkDeleteTracks(ctx context.Context, ids []int64) BulkDeleteResult {
	store, ok := a.Profiles.Store()
	if !ok {
		return BulkDeleteResult{Errors: []error{errNoActiveProfile}}
	}
	var result BulkDeleteResult
	for _, id := range ids {
		if err := store.Delete(ctx, id); err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		result.Deleted++
	}
	if result.Deleted > 0 {
		a.Dedupe.InvalidateProfile(a.activeProfileID())
	}
	return result
}
