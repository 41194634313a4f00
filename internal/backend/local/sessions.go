package local

import (
	"context"
	"sync"
	"time"

	"github.com/ovaphlow/pitchfork/service-opofit/internal/backend"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/common"
	"github.com/ovaphlow/pitchfork/service-opofit/pkg/utilities"
)

type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]backend.Session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]backend.Session), now: time.Now}
}

// Create opens a session and drops the ones that have already expired.
func (s *SessionStore) Create(ctx context.Context, userID string, ttl time.Duration) (*backend.Session, error) {
	if err := checkCtx(ctx, "create session"); err != nil {
		return nil, err
	}
	now := s.now()
	sess := backend.Session{
		ID:        utilities.NewKSUID(),
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
	}
	s.mu.Lock()
	for id, old := range s.sessions {
		if old.Expired(now) {
			delete(s.sessions, id)
		}
	}
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return &sess, nil
}

// Get returns the session, dropping it if it has already expired.
func (s *SessionStore) Get(ctx context.Context, id string) (*backend.Session, error) {
	if err := checkCtx(ctx, "get session"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	if sess.Expired(s.now()) {
		delete(s.sessions, id)
		return nil, common.ErrNotFound
	}
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := checkCtx(ctx, "delete session"); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}
