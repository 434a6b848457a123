package profile

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fhinkel/music-janitor-core/internal/fuzzy"
)

type fakeInvalidator struct {
	invalidated []string
}

func (f *fakeInvalidator) InvalidateProfile(profileID string) {
	f.invalidated = append(f.invalidated, profileID)
}

func newTestManager(t *testing.T) (*Manager, *fakeInvalidator) {
	t.Helper()
	inv := &fakeInvalidator{}
	m, err := NewManager(filepath.Join(t.TempDir(), "profiles.toml"), inv)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m, inv
}

func TestCreateAndGet(t *testing.T) {
	m, _ := newTestManager(t)
	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	p, err := m.Create("default", "Default", "my library", dbPath, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(p.EnabledFileTypes) == 0 {
		t.Error("expected default file types to be seeded")
	}
	got, ok := m.Get("default")
	if !ok {
		t.Fatal("expected profile to be retrievable")
	}
	if got.Name != "Default" || got.DatabasePath != dbPath {
		t.Errorf("got %+v", got)
	}
}

func TestCreateDuplicateIDConflicts(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.Create("default", "Default", "", "a.db", nil); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Create("default", "Other", "", "b.db", nil); err == nil {
		t.Error("expected conflict creating a profile with an existing id")
	}
}

func TestActivateOpensCatalogAndInvalidatesCache(t *testing.T) {
	m, inv := newTestManager(t)
	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	if _, err := m.Create("default", "Default", "", dbPath, nil); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := m.Activate(context.Background(), "default"); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	defer m.Close()

	if _, ok := m.Store(); !ok {
		t.Fatal("expected an open store after Activate")
	}
	active, ok := m.Active()
	if !ok || active.ID != "default" {
		t.Fatalf("Active() = %+v, %v", active, ok)
	}
	if active.LastUsedDate.IsZero() {
		t.Error("expected LastUsedDate to be set on activation")
	}
	if len(inv.invalidated) != 1 || inv.invalidated[0] != "default" {
		t.Errorf("expected cache invalidation on activation, got %v", inv.invalidated)
	}
}

func TestSetFuzzyConfigInvalidatesCache(t *testing.T) {
	m, inv := newTestManager(t)
	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	m.Create("default", "Default", "", dbPath, nil)
	m.Activate(context.Background(), "default")
	defer m.Close()
	inv.invalidated = nil

	strict := fuzzy.StrictConfig()
	if err := m.SetFuzzyConfig("default", strict); err != nil {
		t.Fatalf("SetFuzzyConfig: %v", err)
	}
	p, _ := m.Get("default")
	if p.FuzzyConfig.TitleThreshold != strict.TitleThreshold {
		t.Errorf("fuzzy config not persisted: %+v", p.FuzzyConfig)
	}
	if len(inv.invalidated) != 1 {
		t.Errorf("expected 1 invalidation from SetFuzzyConfig, got %v", inv.invalidated)
	}
}

func TestSetFileTypesDoesNotInvalidateCache(t *testing.T) {
	m, inv := newTestManager(t)
	m.Create("default", "Default", "", "a.db", nil)
	inv.invalidated = nil

	if err := m.SetFileTypes("default", []string{"flac"}); err != nil {
		t.Fatalf("SetFileTypes: %v", err)
	}
	if len(inv.invalidated) != 0 {
		t.Errorf("file-type changes should not invalidate the scan cache, got %v", inv.invalidated)
	}
	p, _ := m.Get("default")
	if len(p.EnabledFileTypes) != 1 || p.EnabledFileTypes[0] != "flac" {
		t.Errorf("EnabledFileTypes = %v, want [flac]", p.EnabledFileTypes)
	}
}

func TestDuplicateCopiesConfigUnderNewID(t *testing.T) {
	m, _ := newTestManager(t)
	m.Create("default", "Default", "", "a.db", []string{"mp3", "flac"})
	m.SetFuzzyConfig("default", fuzzy.StrictConfig())

	dup, err := m.Duplicate("default", "copy", "Copy")
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if dup.FuzzyConfig.TitleThreshold != fuzzy.StrictConfig().TitleThreshold {
		t.Errorf("duplicate did not carry over fuzzy config: %+v", dup.FuzzyConfig)
	}
	if len(dup.EnabledFileTypes) != 2 {
		t.Errorf("duplicate did not carry over file types: %v", dup.EnabledFileTypes)
	}
	if !dup.LastUsedDate.IsZero() {
		t.Error("a fresh duplicate should not inherit LastUsedDate")
	}
}

func TestDeleteActiveProfileFails(t *testing.T) {
	m, _ := newTestManager(t)
	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	m.Create("default", "Default", "", dbPath, nil)
	m.Activate(context.Background(), "default")
	defer m.Close()

	if err := m.Delete("default"); err == nil {
		t.Error("expected deleting the active profile to fail")
	}
}

func TestProfilesPersistAcrossManagers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	inv := &fakeInvalidator{}
	m1, err := NewManager(path, inv)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if _, err := m1.Create("default", "Default", "desc", "a.db", []string{"mp3"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	m2, err := NewManager(path, inv)
	if err != nil {
		t.Fatalf("NewManager (reload): %v", err)
	}
	reloaded, ok := m2.Get("default")
	if !ok {
		t.Fatal("expected profile to survive a reload from disk")
	}
	if reloaded.Name != "Default" || reloaded.Description != "desc" || reloaded.DatabasePath != "a.db" {
		t.Errorf("reloaded profile mismatch: %+v", reloaded)
	}
	if len(reloaded.EnabledFileTypes) != 1 || reloaded.EnabledFileTypes[0] != "mp3" {
		t.Errorf("reloaded file types mismatch: %v", reloaded.EnabledFileTypes)
	}
}

func TestScanExtensionsAddsDot(t *testing.T) {
	p := &Profile{EnabledFileTypes: []string{"mp3", ".flac"}}
	exts := p.ScanExtensions()
	if exts[0] != ".mp3" || exts[1] != ".flac" {
		t.Errorf("ScanExtensions() = %v", exts)
	}
}
