package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultSessionTTL = 12 * time.Hour

// Sessions is the anonymous identity provider: anyone may sign in and gets
// an opaque token, and mutations require a live token. There are no users or
// passwords; the token only proves the client went through sign-in.
type Sessions struct {
	mu      sync.Mutex
	entries map[string]time.Time
	ttl     time.Duration
}

func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Sessions{
		entries: make(map[string]time.Time),
		ttl:     ttl,
	}
}

// SignInAnonymously mints a new session token.
func (s *Sessions) SignInAnonymously() string {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	s.entries[token] = time.Now().UTC().Add(s.ttl)
	return token
}

// Valid reports whether the token belongs to a live session.
func (s *Sessions) Valid(token string) bool {
	if token == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.entries[token]
	if !ok {
		return false
	}
	if time.Now().UTC().After(expiry) {
		delete(s.entries, token)
		return false
	}
	return true
}

func (s *Sessions) prune() {
	now := time.Now().UTC()
	for token, expiry := range s.entries {
		if now.After(expiry) {
			delete(s.entries, token)
		}
	}
}
