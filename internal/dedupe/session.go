package dedupe

import (
	"context"
	"sync"

	"github.com/fhinkel/music-janitor-core/internal/events"
)

// Session is one duplicate-scan run (spec §4.7's session protocol).
type Session struct {
	ID        string
	profileID string

	progress *events.Bus[Progress]
	// groups is a plain buffered channel, not an events.Bus: spec §5's
	// backpressure rule says group events are never dropped on overflow
	// (only progress updates coalesce), so a full buffer must block the
	// worker rather than discard a group.
	groups chan Group

	cancel context.CancelFunc
	done   chan struct{}

	mu          sync.Mutex
	state       State
	groupsFound int
	percent     float64
	err         error
	result      []Group
}

// Subscribe returns a channel of progress events for this session.
func (s *Session) Subscribe(buffer int) (<-chan Progress, func()) {
	return s.progress.Subscribe(buffer)
}

// Groups returns the channel each finalized group is delivered on — the
// progressive-delivery interface of spec §4.7 step 3. It is closed once
// the session reaches a terminal state.
func (s *Session) Groups() <-chan Group {
	return s.groups
}

// Cancel requests cancellation; the session's terminal state becomes
// StateCancelled once the worker observes it (bounded by spec §4.7's ≤1s
// requirement).
func (s *Session) Cancel() {
	s.cancel()
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot reports the session's current progress fields.
func (s *Session) Snapshot() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := Progress{SessionID: s.ID, State: s.state, GroupsFound: s.groupsFound, PercentComplete: s.percent}
	if s.err != nil {
		p.Err = s.err.Error()
	}
	return p
}

// Wait blocks until the session reaches a terminal state and returns its
// final group set (nil if cancelled or errored).
func (s *Session) Wait() ([]Group, error) {
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.err
}

func (s *Session) setProgress(found int, percent float64) {
	s.mu.Lock()
	s.groupsFound = found
	s.percent = percent
	s.mu.Unlock()
	s.progress.Publish(Progress{SessionID: s.ID, State: StateRunning, GroupsFound: found, PercentComplete: percent})
}

func (s *Session) finish(state State, result []Group, err error) {
	s.mu.Lock()
	s.state = state
	s.result = result
	s.err = err
	if state == StateCompleted {
		s.groupsFound = len(result)
		s.percent = 100
	}
	s.mu.Unlock()

	p := Progress{SessionID: s.ID, State: state, GroupsFound: len(result), PercentComplete: s.percent}
	if err != nil {
		p.Err = err.Error()
	}
	s.progress.Publish(p)
	close(s.groups)
	close(s.done)
}
