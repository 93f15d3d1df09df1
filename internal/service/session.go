package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/set-night/campusdesk/internal/domain"
)

type sessionEntry struct {
	mu       sync.Mutex
	messages []domain.Message
	state    domain.CallState
	touched  time.Time
	// removed is set once the entry has left the map; writers that raced
	// with the removal retry against a fresh entry.
	removed bool
}

// SessionStore keeps conversation histories in memory, keyed by chat session
// token or call identifier.
//
// Deleting a session wins over concurrent appends: an append that loses the
// race recreates a fresh session instead of writing into the deleted one.
type SessionStore struct {
	mu          sync.Mutex
	sessions    map[string]*sessionEntry
	maxMessages int
	idleTTL     time.Duration
	now         func() time.Time
}

// NewSessionStore creates a store that keeps at most maxMessages per
// session (oldest dropped first) and evicts sessions idle longer than
// idleTTL on Sweep. Zero disables the respective limit.
func NewSessionStore(maxMessages int, idleTTL time.Duration) *SessionStore {
	return &SessionStore{
		sessions:    make(map[string]*sessionEntry),
		maxMessages: maxMessages,
		idleTTL:     idleTTL,
		now:         time.Now,
	}
}

func (s *SessionStore) lookup(id string, create bool) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok && create {
		e = &sessionEntry{touched: s.now()}
		s.sessions[id] = e
	}
	return e
}

// Create starts an empty session, discarding any existing history for id.
func (s *SessionStore) Create(id string) {
	fresh := &sessionEntry{touched: s.now()}

	s.mu.Lock()
	old := s.sessions[id]
	s.sessions[id] = fresh
	s.mu.Unlock()

	if old != nil {
		old.retire()
	}
}

// Ensure creates the session if it does not exist and reports whether it did.
func (s *SessionStore) Ensure(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; ok {
		return false
	}
	s.sessions[id] = &sessionEntry{touched: s.now()}
	return true
}

// Append adds a message to the session, creating it when missing.
func (s *SessionStore) Append(id string, role domain.Role, content string) {
	for {
		e := s.lookup(id, true)
		e.mu.Lock()
		if e.removed {
			e.mu.Unlock()
			continue
		}
		e.messages = append(e.messages, domain.Message{Role: role, Content: content})
		if s.maxMessages > 0 && len(e.messages) > s.maxMessages {
			e.messages = slices.Clone(e.messages[len(e.messages)-s.maxMessages:])
		}
		e.touched = s.now()
		e.mu.Unlock()
		return
	}
}

// History returns a copy of the ordered history, empty for unknown ids.
func (s *SessionStore) History(id string) []domain.Message {
	e := s.lookup(id, false)
	if e == nil {
		return []domain.Message{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return []domain.Message{}
	}
	return slices.Clone(e.messages)
}

// End deletes the session and reports whether it existed.
func (s *SessionStore) End(id string) bool {
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		e.retire()
	}
	return ok
}

func (s *SessionStore) Exists(id string) bool {
	return s.lookup(id, false) != nil
}

// Info returns a snapshot of the session metadata.
func (s *SessionStore) Info(id string) (domain.SessionInfo, bool) {
	e := s.lookup(id, false)
	if e == nil {
		return domain.SessionInfo{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return domain.SessionInfo{}, false
	}
	return domain.SessionInfo{
		ID:           id,
		MessageCount: len(e.messages),
		State:        e.state,
		LastActivity: e.touched,
	}, true
}

// Transition feeds a call event into the state stored with the session.
// It does not create sessions: unknown ids yield ErrSessionNotFound.
func (s *SessionStore) Transition(id string, ev domain.CallEvent) (domain.CallState, error) {
	e := s.lookup(id, false)
	if e == nil {
		return domain.CallEnded, domain.NotFound("call transition", domain.ErrSessionNotFound)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return domain.CallEnded, domain.NotFound("call transition", domain.ErrSessionNotFound)
	}
	next, err := domain.NextCallState(e.state, ev)
	if err != nil {
		return e.state, domain.Internal("call transition", err)
	}
	e.state = next
	e.touched = s.now()
	return next, nil
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle longer than the configured TTL.
func (s *SessionStore) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, e := range s.sessions {
		e.mu.Lock()
		idle := now.Sub(e.touched) > s.idleTTL
		if idle {
			e.removed = true
			e.messages = nil
		}
		e.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *SessionStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Info("evicted idle sessions", "count", n, "remaining", s.Len())
			}
		}
	}
}

func (e *sessionEntry) retire() {
	e.mu.Lock()
	e.removed = true
	e.messages = nil
	e.mu.Unlock()
}
