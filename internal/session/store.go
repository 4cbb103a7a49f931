// Package session keeps the active form of each chat between updates.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/UnknownOlympus/metrica/internal/form"
)

// ErrLockNotObtained is returned when another update for the same chat is still being processed.
var ErrLockNotObtained = errors.New("chat is busy")

// Store keeps at most one form session per chat. Sessions idle for longer than the store's TTL are forgotten.
type Store interface {
	Load(ctx context.Context, chatID int64) (form.Session, bool, error)
	Save(ctx context.Context, session form.Session) error
	Delete(ctx context.Context, chatID int64) error
}

type entry struct {
	session form.Session
	expires time.Time
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[int64]entry
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates a MemoryStore whose sessions expire after ttl without activity.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Load returns the chat's session if it has not expired.
func (s *MemoryStore) Load(_ context.Context, chatID int64) (form.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[chatID]
	if !ok {
		return form.Session{}, false, nil
	}
	if !s.now().Before(e.expires) {
		delete(s.sessions, chatID)
		return form.Session{}, false, nil
	}
	return e.session, true, nil
}

// Save stores the session and restarts its idle timer.
func (s *MemoryStore) Save(_ context.Context, session form.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ChatID] = entry{session: session, expires: s.now().Add(s.ttl)}
	return nil
}

// Delete forgets the chat's session.
func (s *MemoryStore) Delete(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, chatID)
	return nil
}

// Sweep drops expired sessions and reports how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for chatID, e := range s.sessions {
		if !now.Before(e.expires) {
			delete(s.sessions, chatID)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
