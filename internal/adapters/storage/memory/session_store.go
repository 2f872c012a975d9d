package memory

import (
	"sync"
	"time"

	"github.com/Mozzzaic/banani-ai-test/internal/domain"
)

// DefaultSessionTTL is the inactivity window after which a session reads back empty.
const DefaultSessionTTL = 24 * time.Hour

type sessionRecord struct {
	state        domain.SessionState
	lastActivity time.Time
}

// SessionStore is an in-memory implementation of domain.SessionStore with
// sliding expiration. It is NOT persistent; state lives as long as the process.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[domain.SessionID]*sessionRecord
	ttl      time.Duration
	now      func() time.Time
}

type SessionStoreOption func(*SessionStore)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) SessionStoreOption {
	return func(s *SessionStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewSessionStore(ttl time.Duration, opts ...SessionStoreOption) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	s := &SessionStore{
		sessions: make(map[domain.SessionID]*sessionRecord),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the live state for id, or stores and returns a fresh empty one
// when the record is missing or expired. Every read refreshes the activity time.
func (s *SessionStore) Get(id domain.SessionID) domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, ok := s.sessions[id]
	if !ok || s.expired(rec, now) {
		rec = &sessionRecord{state: domain.EmptyState()}
		s.sessions[id] = rec
	}
	rec.lastActivity = now
	return rec.state.Clone()
}

// Update replaces the whole state of id.
func (s *SessionStore) Update(id domain.SessionID, state domain.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = &sessionRecord{state: state.Clone(), lastActivity: s.now()}
}

// Reset replaces the state of id with an empty one.
func (s *SessionStore) Reset(id domain.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = &sessionRecord{state: domain.EmptyState(), lastActivity: s.now()}
}

// Sweep deletes every record older than the TTL at now and returns how many
// were removed.
func (s *SessionStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, rec := range s.sessions {
		if s.expired(rec, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored records, expired ones included.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) expired(rec *sessionRecord, now time.Time) bool {
	return now.Sub(rec.lastActivity) > s.ttl
}
