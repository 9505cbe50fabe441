package telegram

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"meal-catalog/internal/viewmodel"
)

// DefaultSessionTTL is how long an idle chat keeps its browsing state.
const DefaultSessionTTL = 30 * time.Minute

type session struct {
	vm       *viewmodel.ViewModel
	lastSeen time.Time
}

// Sessions maps each chat to its own view-model. A chat that stays idle
// longer than the TTL starts over with a fresh session.
type Sessions struct {
	mu       sync.Mutex
	newVM    func() *viewmodel.ViewModel
	ttl      time.Duration
	sessions map[int64]*session
}

// NewSessions creates a session registry. newVM builds the view-model for a
// chat that has none.
func NewSessions(newVM func() *viewmodel.ViewModel, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{
		newVM:    newVM,
		ttl:      ttl,
		sessions: make(map[int64]*session),
	}
}

// Get returns the chat's view-model, creating one if the chat has no live session.
func (s *Sessions) Get(chatID int64, now time.Time) *viewmodel.ViewModel {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[chatID]; ok {
		if now.Sub(sess.lastSeen) <= s.ttl {
			sess.lastSeen = now
			return sess.vm
		}
		sess.vm.Close()
	}

	sess := &session{vm: s.newVM(), lastSeen: now}
	s.sessions[chatID] = sess
	return sess.vm
}

// CleanupExpired closes sessions idle for longer than the TTL and returns
// how many were removed.
func (s *Sessions) CleanupExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			sess.vm.Close()
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Count returns the number of live sessions.
func (s *Sessions) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// CloseAll closes every session.
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.vm.Close()
		delete(s.sessions, id)
	}
}

// RunJanitor drops expired sessions every interval until ctx is done.
func (s *Sessions) RunJanitor(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.CleanupExpired(now); n > 0 {
				logger.Debug("expired chat sessions", "count", n)
			}
		}
	}
}
