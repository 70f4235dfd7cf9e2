package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jonboulle/clockwork"
)

// Session is an authenticated login
type Session struct {
	ID        string    `json:"-"`
	Identity  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserAgent string    `json:"ua,omitempty"`
}

// Expired reports whether the session is past its expiry at now
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// SessionStore keeps sessions in an expirable LRU
type SessionStore struct {
	cache *expirable.LRU[string, *Session]
	ttl   time.Duration
	clock clockwork.Clock
}

// NewSessionStore creates a store holding at most capacity sessions (0 means
// unbounded) for ttl each. clock may be nil.
func NewSessionStore(capacity int, ttl time.Duration, clock clockwork.Clock) *SessionStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if capacity < 0 {
		capacity = 0
	}
	return &SessionStore{
		cache: expirable.NewLRU[string, *Session](capacity, nil, ttl),
		ttl:   ttl,
		clock: clock,
	}
}

// TTL returns the session lifetime
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Create starts a session for identity
func (s *SessionStore) Create(identity, userAgent string) *Session {
	now := s.clock.Now().UTC()
	session := &Session{
		ID:        uuid.NewString(),
		Identity:  identity,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		UserAgent: userAgent,
	}
	s.cache.Add(session.ID, session)
	return session
}

// Get returns the live session for id
func (s *SessionStore) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	session, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	if session.Expired(s.clock.Now()) {
		s.cache.Remove(id)
		return nil, false
	}
	return session, true
}

// Delete destroys the session and reports whether it existed
func (s *SessionStore) Delete(id string) bool {
	return s.cache.Remove(id)
}

// Count returns the number of live sessions
func (s *SessionStore) Count() int {
	now := s.clock.Now()
	n := 0
	for _, session := range s.cache.Values() {
		if !session.Expired(now) {
			n++
		}
	}
	return n
}
