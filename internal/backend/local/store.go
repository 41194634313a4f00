package local

import (
	"context"
	"sort"
	"sync"

	"github.com/ovaphlow/pitchfork/service-opofit/internal/backend"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/common"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/user/entity"
)

// DocumentStore is the in-memory users collection.
type DocumentStore struct {
	mu    sync.RWMutex
	users map[string]*entity.User
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{users: make(map[string]*entity.User)}
}

func (s *DocumentStore) Get(ctx context.Context, id string) (*entity.User, error) {
	if err := checkCtx(ctx, "get user"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u.Clone(), nil
}

func (s *DocumentStore) Put(ctx context.Context, u *entity.User) error {
	if err := checkCtx(ctx, "put user"); err != nil {
		return err
	}
	rec := u.Clone()
	rec.Email = backend.NormalizeEmail(rec.Email)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, other := range s.users {
		if id != rec.ID && other.Email == rec.Email {
			return common.ErrAlreadyExists
		}
	}
	s.users[rec.ID] = rec
	return nil
}

func (s *DocumentStore) UpdateData(ctx context.Context, id string, data entity.UserData) error {
	if err := checkCtx(ctx, "update user data"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.Data = data.Clone()
	return nil
}

func (s *DocumentStore) UpdateStatus(ctx context.Context, id string, status entity.Status) error {
	if err := checkCtx(ctx, "update user status"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.Status = status
	return nil
}

func (s *DocumentStore) List(ctx context.Context) ([]*entity.User, error) {
	if err := checkCtx(ctx, "list users"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]*entity.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Clone())
	}
	s.mu.RUnlock()
	sortUsers(out)
	return out, nil
}

func (s *DocumentStore) FindByEmail(ctx context.Context, email string) ([]*entity.User, error) {
	if err := checkCtx(ctx, "find user by email"); err != nil {
		return nil, err
	}
	email = backend.NormalizeEmail(email)
	s.mu.RLock()
	var out []*entity.User
	for _, u := range s.users {
		if u.Email == email {
			out = append(out, u.Clone())
		}
	}
	s.mu.RUnlock()
	sortUsers(out)
	return out, nil
}

// sortUsers orders by creation time, then id.
func sortUsers(us []*entity.User) {
	sort.Slice(us, func(i, j int) bool {
		if !us[i].CreatedAt.Equal(us[j].CreatedAt) {
			return us[i].CreatedAt.Before(us[j].CreatedAt)
		}
		return us[i].ID < us[j].ID
	})
}
