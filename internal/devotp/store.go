// Package devotp keeps issued codes by identifier for the simulated-SMS
// surface (GET /api/dev/otp), used only when dev OTP mode is enabled.
package devotp

import (
	"context"
	"sync"
	"time"
)

// Store holds the latest plain code per identifier for dev-only retrieval.
// Not used in production.
type Store interface {
	// Put stores the code for identifier until expiresAt (zero = no expiry),
	// replacing any previous code for that identifier.
	Put(ctx context.Context, identifier, code string, expiresAt time.Time)
	// Get returns the code for identifier if present and not expired.
	Get(ctx context.Context, identifier string) (code string, ok bool)
}

type entry struct {
	code      string
	expiresAt time.Time
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu   sync.RWMutex
	m    map[string]entry
	nowF func() time.Time
}

// NewMemoryStore returns a new in-memory dev OTP store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:    make(map[string]entry),
		nowF: time.Now().UTC,
	}
}

// Put stores the code for identifier, overwriting the previous one.
func (s *MemoryStore) Put(ctx context.Context, identifier, code string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[identifier] = entry{code: code, expiresAt: expiresAt}
}

// Get returns the code for identifier if present and not expired.
func (s *MemoryStore) Get(ctx context.Context, identifier string) (string, bool) {
	s.mu.RLock()
	e, ok := s.m[identifier]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !e.expiresAt.IsZero() && !e.expiresAt.After(s.nowF()) {
		s.mu.Lock()
		delete(s.m, identifier)
		s.mu.Unlock()
		return "", false
	}
	return e.code, true
}
