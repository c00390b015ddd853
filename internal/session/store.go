// Package session keeps per-browser tag logs keyed by a cookie-carried id.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/buyside/internal/core"
	"github.com/JonMunkholm/buyside/internal/logging"
)

// Session is one browser's state.
type Session struct {
	ID       string
	Tags     *core.TagLog
	Created  time.Time
	lastSeen time.Time
}

// Store holds sessions in memory. Sessions idle longer than the TTL are
// removed by Sweep.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	newLog   func() *core.TagLog
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates a store. newLog builds the tag log of each new session.
func NewStore(ttl time.Duration, newLog func() *core.TagLog) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		newLog:   newLog,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the session for id, creating a fresh one when id is empty,
// unknown or expired. The returned session's ID may differ from id.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if sess, ok := s.sessions[id]; ok && now.Sub(sess.lastSeen) <= s.ttl {
		sess.lastSeen = now
		return sess, false
	}
	delete(s.sessions, id)

	sess := &Session{
		ID:       uuid.NewString(),
		Tags:     s.newLog(),
		Created:  now,
		lastSeen: now,
	}
	s.sessions[sess.ID] = sess
	return sess, true
}

// Sweep removes idle sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run sweeps every interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	log := logging.FromContext(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Debug("sessions swept", "removed", n, "remaining", s.Len())
			}
		}
	}
}
