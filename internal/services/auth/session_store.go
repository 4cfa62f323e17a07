package auth

import (
	"sync"
	"time"
)

// SessionStore tracks issued tokens so they can be revoked before expiry.
// Entries carry their own TTL; expired entries behave as absent.
type SessionStore interface {
	Put(token, userID string, ttl time.Duration)
	Get(token string) (userID string, ok bool)
	Delete(token string)
}

type sessionEntry struct {
	userID    string
	expiresAt time.Time
}

// MemorySessionStore is an in-process SessionStore. A janitor goroutine
// sweeps expired entries so the map does not grow unbounded.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]sessionEntry
	stop     chan struct{}
}

func NewMemorySessionStore() *MemorySessionStore {
	store := &MemorySessionStore{
		sessions: make(map[string]sessionEntry),
		stop:     make(chan struct{}),
	}
	go store.janitor()
	return store
}

func (s *MemorySessionStore) Put(token, userID string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = sessionEntry{
		userID:    userID,
		expiresAt: time.Now().Add(ttl),
	}
}

func (s *MemorySessionStore) Get(token string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[token]
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.userID, true
}

func (s *MemorySessionStore) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// Close stops the janitor goroutine
func (s *MemorySessionStore) Close() {
	close(s.stop)
}

func (s *MemorySessionStore) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for token, entry := range s.sessions {
				if now.After(entry.expiresAt) {
					delete(s.sessions, token)
				}
			}
			s.mu.Unlock()
		}
	}
}
