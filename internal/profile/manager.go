package profile

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/fhinkel/music-janitor-core/internal/apperr"
	"github.com/fhinkel/music-janitor-core/internal/catalog"
	"github.com/fhinkel/music-janitor-core/internal/dedupe"
	"github.com/fhinkel/music-janitor-core/internal/fuzzy"
	"github.com/fhinkel/music-janitor-core/internal/logging"
)

// CacheInvalidator is the subset of dedupe.Controller a profile switch or
// fuzzy-config change needs to talk to (spec §4.9: "Fuzzy config changes
// invalidate C7 caches").
type CacheInvalidator interface {
	InvalidateProfile(profileID string)
}

var _ CacheInvalidator = (*dedupe.Controller)(nil)

// Manager owns every known Profile, the one currently active catalog
// connection, and persists profiles to a TOML file (the
// `mp3org-profiles.properties` analogue named in spec §6's persistence
// note, rehomed as TOML per SPEC_FULL's domain stack). It is an explicit
// value constructed once per process (Design Notes §9), not a package
// singleton.
type Manager struct {
	path string
	ctrl CacheInvalidator

	mu       sync.Mutex
	profiles map[string]*Profile
	activeID string
	store    *catalog.Store
}

// NewManager loads profiles from path (if it exists) and returns a
// Manager with no active profile. Call Activate to open a catalog
// connection.
func NewManager(path string, ctrl CacheInvalidator) (*Manager, error) {
	m := &Manager{path: path, ctrl: ctrl, profiles: make(map[string]*Profile)}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "profile.load", err)
	}

	var raw map[string]map[string]interface{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return apperr.InvalidArgument("profile.load", err)
	}
	for id, fields := range raw {
		p := &Profile{}
		if err := mapstructure.Decode(fields, p); err != nil {
			return apperr.InvalidArgument("profile.load", err)
		}
		p.ID = id
		m.profiles[id] = p
	}
	return nil
}

// persist must be called with m.mu held.
func (m *Manager) persist() error {
	if m.path == "" {
		return nil
	}
	raw := make(map[string]*Profile, len(m.profiles))
	for id, p := range m.profiles {
		raw[id] = p
	}
	data, err := toml.Marshal(raw)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "profile.persist", err)
	}
	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperr.Wrap(apperr.KindInternal, "profile.persist", err)
		}
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return apperr.Wrap(apperr.KindInternal, "profile.persist", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return apperr.Wrap(apperr.KindInternal, "profile.persist", err)
	}
	return nil
}

// Create adds a new Profile and persists it. databasePath and
// enabledFileTypes may be empty, in which case an empty database path
// must be filled in before Activate and defaultFileTypes is used.
func (m *Manager) Create(id, name, description, databasePath string, enabledFileTypes []string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.profiles[id]; exists {
		return nil, apperr.Conflict("profile.Create", nil)
	}
	if len(enabledFileTypes) == 0 {
		enabledFileTypes = append([]string(nil), defaultFileTypes...)
	}
	p := &Profile{
		ID:               id,
		Name:             name,
		Description:      description,
		DatabasePath:     databasePath,
		EnabledFileTypes: enabledFileTypes,
		FuzzyConfig:      fuzzy.DefaultConfig(),
		CreatedDate:      time.Now(),
	}
	m.profiles[id] = p
	if err := m.persist(); err != nil {
		delete(m.profiles, id)
		return nil, err
	}
	return p.clone(), nil
}

// Duplicate copies an existing profile under a new id and name, carrying
// over its database path, file types, and fuzzy config (spec §6:
// "profiles CRUD + activate + duplicate").
func (m *Manager) Duplicate(sourceID, newID, newName string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	src, ok := m.profiles[sourceID]
	if !ok {
		return nil, apperr.NotFound("profile.Duplicate", nil)
	}
	if _, exists := m.profiles[newID]; exists {
		return nil, apperr.Conflict("profile.Duplicate", nil)
	}
	cp := src.clone()
	cp.ID = newID
	cp.Name = newName
	cp.CreatedDate = time.Now()
	cp.LastUsedDate = time.Time{}
	m.profiles[newID] = cp
	if err := m.persist(); err != nil {
		delete(m.profiles, newID)
		return nil, err
	}
	return cp.clone(), nil
}

// Delete removes a profile. The active profile cannot be deleted.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == m.activeID {
		return apperr.InvalidArgument("profile.Delete", nil)
	}
	if _, ok := m.profiles[id]; !ok {
		return apperr.NotFound("profile.Delete", nil)
	}
	delete(m.profiles, id)
	return m.persist()
}

// Get returns the profile with the given id.
func (m *Manager) Get(id string) (*Profile, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, false
	}
	return p.clone(), true
}

// List returns every known profile, ordered by id for reproducibility.
func (m *Manager) List() []*Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Active returns the currently active profile, if any.
func (m *Manager) Active() (*Profile, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activeID == "" {
		return nil, false
	}
	return m.profiles[m.activeID].clone(), true
}

// Store returns the catalog connection for the active profile.
func (m *Manager) Store() (*catalog.Store, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store, m.store != nil
}

// Activate performs the atomic profile switch of spec §4.9: quiesce
// pending writes (by closing the current connection, which drains
// in-flight statements before releasing it), close C1's connection,
// reopen against the new profile's database path, and invalidate (but
// do not eagerly rebuild) C7's cache — caches are rebuilt lazily on the
// next scan.
func (m *Manager) Activate(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[id]
	if !ok {
		return apperr.NotFound("profile.Activate", nil)
	}

	if m.store != nil {
		if err := m.store.Close(); err != nil {
			logging.Warn("profile: closing previous catalog connection: %v", err)
		}
		m.store = nil
	}

	store, err := catalog.Open(p.DatabasePath)
	if err != nil {
		return err
	}

	m.store = store
	m.activeID = id
	p.LastUsedDate = time.Now()
	if err := m.persist(); err != nil {
		return err
	}

	if m.ctrl != nil {
		m.ctrl.InvalidateProfile(id)
	}
	return nil
}

// SetFuzzyConfig updates id's fuzzy matcher tuning and invalidates any
// cached duplicate-scan results for it (spec §4.9: "Fuzzy config changes
// invalidate C7 caches").
func (m *Manager) SetFuzzyConfig(id string, cfg fuzzy.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return apperr.NotFound("profile.SetFuzzyConfig", nil)
	}
	p.FuzzyConfig = cfg
	if err := m.persist(); err != nil {
		return err
	}
	if m.ctrl != nil {
		m.ctrl.InvalidateProfile(id)
	}
	return nil
}

// ApplyFuzzyPreset resolves preset against fuzzy.Apply and applies it via
// SetFuzzyConfig (spec §6: "POST /fuzzy-search/preset {preset:
// strict|balanced|lenient}").
func (m *Manager) ApplyFuzzyPreset(id string, preset fuzzy.Preset) (fuzzy.Config, error) {
	cfg, ok := fuzzy.Apply(preset)
	if !ok {
		return fuzzy.Config{}, apperr.InvalidArgument("profile.ApplyFuzzyPreset", nil)
	}
	if err := m.SetFuzzyConfig(id, cfg); err != nil {
		return fuzzy.Config{}, err
	}
	return cfg, nil
}

// SetFileTypes updates id's enabled file-type filter. Per spec §4.9,
// file-type-filter changes affect future scans only — the duplicate-scan
// cache is deliberately left untouched.
func (m *Manager) SetFileTypes(id string, types []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return apperr.NotFound("profile.SetFileTypes", nil)
	}
	p.EnabledFileTypes = append([]string(nil), types...)
	return m.persist()
}

// Close closes the active catalog connection, if any.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return nil
	}
	err := m.store.Close()
	m.store = nil
	return err
}
