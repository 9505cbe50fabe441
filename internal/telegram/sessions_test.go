package telegram

import (
	"context"
	"testing"
	"time"

	"meal-catalog/internal/viewmodel"

	"github.com/stretchr/testify/assert"
)

func newTestSessions(ttl time.Duration) *Sessions {
	repo := &stubRepo{}
	return NewSessions(func() *viewmodel.ViewModel { return viewmodel.New(repo, nil) }, ttl)
}

func TestSessionsGet(t *testing.T) {
	s := newTestSessions(time.Minute)
	defer s.CloseAll()
	now := time.Now()

	a := s.Get(1, now)
	assert.Same(t, a, s.Get(1, now.Add(30*time.Second)), "same chat within TTL reuses the session")
	assert.NotSame(t, a, s.Get(2, now))
	assert.Equal(t, 2, s.Count())

	// Last use was at +30s, so +80s is still within the TTL.
	assert.Same(t, a, s.Get(1, now.Add(80*time.Second)))
}

func TestSessionsExpiry(t *testing.T) {
	s := newTestSessions(time.Minute)
	defer s.CloseAll()
	now := time.Now()

	old := s.Get(1, now)
	fresh := s.Get(1, now.Add(2*time.Minute))
	assert.NotSame(t, old, fresh)

	old.SetCurrentLocation(1, 1, false)
	assert.Nil(t, old.CurrentLocation().Get(), "expired session is closed")

	s.Get(2, now.Add(2*time.Minute))
	assert.Equal(t, 0, s.CleanupExpired(now.Add(2*time.Minute)))
	assert.Equal(t, 2, s.CleanupExpired(now.Add(10*time.Minute)))
	assert.Equal(t, 0, s.Count())
}

func TestSessionsDefaultTTL(t *testing.T) {
	s := newTestSessions(0)
	assert.Equal(t, DefaultSessionTTL, s.ttl)
}

func TestSessionsCloseAll(t *testing.T) {
	s := newTestSessions(time.Minute)
	vm := s.Get(1, time.Now())
	s.CloseAll()

	assert.Equal(t, 0, s.Count())
	vm.SetCurrentLocation(1, 1, false)
	assert.Nil(t, vm.CurrentLocation().Get())
}

func TestSessionsRunJanitor(t *testing.T) {
	s := newTestSessions(time.Minute)
	s.Get(1, time.Now().Add(-time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunJanitor(ctx, 10*time.Millisecond, testLogger())
		close(done)
	}()

	assert.Eventually(t, func() bool { return s.Count() == 0 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop")
	}
}
