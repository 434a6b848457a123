package api

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/fhinkel/music-janitor-core/internal/events"
	"github.com/fhinkel/music-janitor-core/internal/fingerprint"
)

// FingerprintStatus reports a fingerprint-generation run's progress (spec
// §6: "GET /fingerprints/status").
type FingerprintStatus struct {
	SessionID string
	Progress  fingerprint.GenProgress
	Result    *fingerprint.GenResult
	Err       string
}

type fingerprintSession struct {
	id     string
	mu     sync.Mutex
	latest fingerprint.GenProgress
	result *fingerprint.GenResult
	err    error
}

func (s *fingerprintSession) snapshot() FingerprintStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := FingerprintStatus{SessionID: s.id, Progress: s.latest, Result: s.result}
	if s.err != nil {
		st.Err = s.err.Error()
	}
	return st
}

// FingerprintManager tracks fingerprint-generation runs by session id, the
// same polling shape ScanManager gives directory scans (C6's Generator.Run
// blocks until done, so this wrapper is what makes it pollable).
type FingerprintManager struct {
	mu       sync.Mutex
	sessions map[string]*fingerprintSession
}

// NewFingerprintManager creates an empty FingerprintManager.
func NewFingerprintManager() *FingerprintManager {
	return &FingerprintManager{sessions: make(map[string]*fingerprintSession)}
}

// StartFingerprintGeneration launches a C6 fingerprinting run over the
// active profile's catalog, returning a session id immediately (spec §6:
// "POST /fingerprints/generate").
func (a *API) StartFingerprintGeneration(ctx context.Context) (string, error) {
	store, ok := a.Profiles.Store()
	if !ok {
		return "", errNoActiveProfile
	}

	sess := &fingerprintSession{id: uuid.NewString()}
	a.Fingerprints.mu.Lock()
	a.Fingerprints.sessions[sess.id] = sess
	a.Fingerprints.mu.Unlock()

	bus := events.NewBus[fingerprint.GenProgress]()
	progressCh, unsubscribe := bus.Subscribe(16)
	go func() {
		defer unsubscribe()
		for p := range progressCh {
			sess.mu.Lock()
			sess.latest = p
			sess.mu.Unlock()
		}
	}()

	gen := fingerprint.NewGenerator(&fingerprint.GeneratorConfig{Store: store, Progress: bus})

	go func() {
		result, err := gen.Run(ctx)
		bus.Close()
		sess.mu.Lock()
		sess.result = result
		sess.err = err
		sess.mu.Unlock()
	}()

	return sess.id, nil
}

// FingerprintStatusOf returns the current status of a fingerprinting
// session by id.
func (a *API) FingerprintStatusOf(id string) (FingerprintStatus, bool) {
	a.Fingerprints.mu.Lock()
	sess, ok := a.Fingerprints.sessions[id]
	a.Fingerprints.mu.Unlock()
	if !ok {
		return FingerprintStatus{}, false
	}
	return sess.snapshot(), true
}
