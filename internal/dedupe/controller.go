package dedupe

import (
	"context"
	"crypto/sha1"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/panics"

	"github.com/fhinkel/music-janitor-core/internal/apperr"
	"github.com/fhinkel/music-janitor-core/internal/catalog"
	"github.com/fhinkel/music-janitor-core/internal/events"
	"github.com/fhinkel/music-janitor-core/internal/fuzzy"
)

// DefaultFingerprintThreshold is C5's default duplicate-similarity cutoff.
const DefaultFingerprintThreshold = 0.85

// GroupBufferSize is the capacity of a session's group-delivery channel
// (spec §5: "a buffered channel of modest capacity (e.g. 64)").
const GroupBufferSize = 64

// Source is the subset of catalog.Store the controller needs: a snapshot
// read at scan start, so inserts observed mid-scan are ignored until the
// next scan (spec §5's snapshot-isolation ordering guarantee).
type Source interface {
	ListAll(ctx context.Context) ([]*catalog.Track, error)
}

// Controller owns every session and the per-profile result cache (spec
// §4.7's cache, keyed by profile id + active config fingerprint).
type Controller struct {
	source Source

	mu       sync.Mutex
	sessions map[string]*Session
	cache    map[cacheKey][]Group
}

type cacheKey struct {
	profileID         string
	configFingerprint string
}

// NewController creates a Controller reading snapshots from source.
func NewController(source Source) *Controller {
	return &Controller{
		source:   source,
		sessions: make(map[string]*Session),
		cache:    make(map[cacheKey][]Group),
	}
}

// configFingerprint hashes the tunable parameters that affect scan output,
// grounded on the sha1-identity pattern comparable duplicate scanners use
// to key their own result caches.
func configFingerprint(cfg fuzzy.Config, fpThreshold float64) string {
	raw := fmt.Sprintf("%+v|%v", cfg, fpThreshold)
	sum := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%x", sum)
}

// Start launches a new scan session for profileID under cfg. Starting a
// session clears any cached result for that profile (spec §4.7 step 1).
func (c *Controller) Start(ctx context.Context, profileID string, cfg fuzzy.Config, fpThreshold float64) (*Session, error) {
	if fpThreshold <= 0 {
		fpThreshold = DefaultFingerprintThreshold
	}
	c.InvalidateProfile(profileID)

	sessCtx, cancel := context.WithCancel(ctx)
	session := &Session{
		ID:        uuid.NewString(),
		profileID: profileID,
		progress:  events.NewBus[Progress](),
		groups:    make(chan Group, GroupBufferSize),
		cancel:    cancel,
		done:      make(chan struct{}),
		state:     StateRunning,
	}

	c.mu.Lock()
	c.sessions[session.ID] = session
	c.mu.Unlock()

	go c.runSupervised(sessCtx, session, cfg, fpThreshold)

	return session, nil
}

// runSupervised wraps run in a conc panics.Catcher: a panic anywhere in
// the session (including the worker pools run spawns) is caught here
// instead of crashing the process, and translated into the session's
// terminal error state (spec §7: "workers never panic the process; they
// translate to session error state").
func (c *Controller) runSupervised(ctx context.Context, session *Session, cfg fuzzy.Config, fpThreshold float64) {
	var catcher panics.Catcher
	catcher.Try(func() { c.run(ctx, session, cfg, fpThreshold) })
	if r := catcher.Recovered(); r != nil {
		session.finish(StateError, nil, apperr.Wrap(apperr.KindInternal, "dedupe.run", r.AsError()))
	}
}

func (c *Controller) run(ctx context.Context, session *Session, cfg fuzzy.Config, fpThreshold float64) {
	tracks, err := c.source.ListAll(ctx)
	if err != nil {
		session.finish(StateError, nil, apperr.Wrap(apperr.KindInternal, "dedupe.run", err))
		return
	}

	session.setProgress(0, 10)
	if ctx.Err() != nil {
		session.finish(StateCancelled, nil, nil)
		return
	}

	fpGroups, err := findFingerprintGroups(ctx, tracks, fpThreshold)
	if err != nil {
		if ctx.Err() != nil {
			session.finish(StateCancelled, nil, nil)
			return
		}
		session.finish(StateError, nil, apperr.Wrap(apperr.KindInternal, "dedupe.run", err))
		return
	}
	session.setProgress(len(fpGroups), 55)

	if ctx.Err() != nil {
		session.finish(StateCancelled, nil, nil)
		return
	}

	fuzzyPairs, err := findFuzzyPairs(ctx, tracks, cfg)
	if err != nil {
		if ctx.Err() != nil {
			session.finish(StateCancelled, nil, nil)
			return
		}
		session.finish(StateError, nil, apperr.Wrap(apperr.KindInternal, "dedupe.run", err))
		return
	}
	if ctx.Err() != nil {
		session.finish(StateCancelled, nil, nil)
		return
	}

	groups := buildGroups(tracks, fpGroups, fuzzyPairs, cfg)
	for _, g := range groups {
		select {
		case session.groups <- g:
		case <-ctx.Done():
			session.finish(StateCancelled, nil, nil)
			return
		}
	}

	key := cacheKey{profileID: session.profileID, configFingerprint: configFingerprint(cfg, fpThreshold)}
	c.mu.Lock()
	c.cache[key] = groups
	c.mu.Unlock()

	session.finish(StateCompleted, groups, nil)
}

// Session looks up a running or completed session by id.
func (c *Controller) Session(id string) (*Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	return s, ok
}

// Cached returns the full cached group set for profileID under cfg, if any
// scan has completed since the cache was last invalidated.
func (c *Controller) Cached(profileID string, cfg fuzzy.Config, fpThreshold float64) ([]Group, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	groups, ok := c.cache[cacheKey{profileID: profileID, configFingerprint: configFingerprint(cfg, fpThreshold)}]
	return groups, ok
}

// Page returns the (page, size) slice of groups (typically the result of
// Cached) — spec §4.7's pagination interface once a scan has completed.
func Page(groups []Group, page, size int) []Group {
	if size <= 0 {
		size = 20
	}
	start := page * size
	if start < 0 || start >= len(groups) {
		return nil
	}
	end := start + size
	if end > len(groups) {
		end = len(groups)
	}
	return groups[start:end]
}

// InvalidateProfile purges every cached result for profileID, regardless
// of config fingerprint. Called on profile switch, fuzzy-config change,
// any catalog insert/update/delete, and the explicit refresh operation
// (spec §4.7's cache-invalidation rules).
func (c *Controller) InvalidateProfile(profileID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.cache {
		if k.profileID == profileID {
			delete(c.cache, k)
		}
	}
}
