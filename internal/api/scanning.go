package api

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/fhinkel/music-janitor-core/internal/apperr"
	"github.com/fhinkel/music-janitor-core/internal/scan"
)

// ScanState is a directory-scan session's lifecycle state, mirroring the
// duplicate-scan controller's own State but kept distinct since the two
// sessions are unrelated processes (spec §6 exposes "scanning" sessions
// and "duplicate" sessions as separate resources).
type ScanState string

const (
	ScanStateRunning   ScanState = "running"
	ScanStateCompleted ScanState = "completed"
	ScanStateCancelled ScanState = "cancelled"
	ScanStateError     ScanState = "error"
)

// ScanStatus reports a scan session's progress (spec §6: "GET /status/:id").
type ScanStatus struct {
	SessionID string
	State     ScanState
	Progress  scan.Progress
	Result    *scan.Result
	Err       string
}

type scanSession struct {
	id     string
	cancel context.CancelFunc

	mu     sync.Mutex
	state  ScanState
	latest scan.Progress
	result *scan.Result
	err    error
}

func (s *scanSession) snapshot() ScanStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := ScanStatus{SessionID: s.id, State: s.state, Progress: s.latest, Result: s.result}
	if s.err != nil {
		st.Err = s.err.Error()
	}
	return st
}

// ScanManager runs directory-scan sessions (C3) on behalf of the API,
// tracking each by id the way dedupe.Controller tracks its own sessions
// (spec §6's "POST /scanning/start" returns a session id polled via
// "GET /status/:id" and stoppable via "POST /cancel/:id").
type ScanManager struct {
	mu       sync.Mutex
	sessions map[string]*scanSession
}

// NewScanManager creates an empty ScanManager.
func NewScanManager() *ScanManager {
	return &ScanManager{sessions: make(map[string]*scanSession)}
}

// StartScan launches a directory scan against the active profile's store
// under roots, returning the new session's id immediately.
func (a *API) StartScan(ctx context.Context, roots []string) (string, error) {
	store, ok := a.Profiles.Store()
	if !ok {
		return "", errNoActiveProfile
	}
	active, ok := a.Profiles.Active()
	if !ok {
		return "", errNoActiveProfile
	}

	sessCtx, cancel := context.WithCancel(ctx)
	sess := &scanSession{id: uuid.NewString(), cancel: cancel, state: ScanStateRunning}

	a.Scans.mu.Lock()
	a.Scans.sessions[sess.id] = sess
	a.Scans.mu.Unlock()

	scanner := scan.New(&scan.Config{
		Store:      store,
		Extensions: active.ScanExtensions(),
	})

	go func() {
		result, err := scanner.Scan(sessCtx, roots)
		sess.mu.Lock()
		defer sess.mu.Unlock()
		sess.result = result
		switch {
		case sessCtx.Err() != nil:
			sess.state = ScanStateCancelled
		case err != nil:
			sess.state = ScanStateError
			sess.err = err
		default:
			sess.state = ScanStateCompleted
			a.Dedupe.InvalidateProfile(a.activeProfileID())
		}
	}()

	return sess.id, nil
}

// ScanStatusOf returns the current status of a scan session by id.
func (a *API) ScanStatusOf(id string) (ScanStatus, bool) {
	a.Scans.mu.Lock()
	sess, ok := a.Scans.sessions[id]
	a.Scans.mu.Unlock()
	if !ok {
		return ScanStatus{}, false
	}
	return sess.snapshot(), true
}

// CancelScan requests cancellation of a running scan session.
func (a *API) CancelScan(id string) error {
	a.Scans.mu.Lock()
	sess, ok := a.Scans.sessions[id]
	a.Scans.mu.Unlock()
	if !ok {
		return apperr.NotFound("api.CancelScan", nil)
	}
	sess.cancel()
	return nil
}

// DirEntry is one item in a directory listing (spec §6: "GET /browse?path").
type DirEntry struct {
	Name  string
	Path  string
	IsDir bool
}

// Browse lists the immediate contents of path, for the directory picker a
// scan's roots are chosen from.
func (a *API) Browse(path string) ([]DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "api.Browse", err)
	}
	out := make([]DirEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, DirEntry{Name: e.Name(), Path: filepath.Join(path, e.Name()), IsDir: e.IsDir()})
	}
	return out, nil
}

// CreateDirectory makes a new directory (and any missing parents) at path
// (spec §6: "POST /create-directory").
func (a *API) CreateDirectory(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return apperr.Wrap(apperr.KindInternal, "api.CreateDirectory", err)
	}
	return nil
}
