package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-opofit/internal/backend"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/common"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-opofit/pkg/utilities"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	ids, err := utilities.NewSnowflakeGenerator(1)
	require.NoError(t, err)
	return New(backend.BcryptHasher{Cost: bcrypt.MinCost}, ids)
}

func TestIdentity_CreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	id, err := b.Identity().CreateAccount(ctx, "Ana@Example.com ", "secreto1", "Ana")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := b.Identity().Authenticate(ctx, "ana@example.com", "secreto1")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = b.Identity().Authenticate(ctx, "ana@example.com", "wrong-pass")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = b.Identity().Authenticate(ctx, "nobody@example.com", "secreto1")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestIdentity_DuplicateAndWeakPassword(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	_, err := b.Identity().CreateAccount(ctx, "ana@example.com", "secreto1", "Ana")
	require.NoError(t, err)

	_, err = b.Identity().CreateAccount(ctx, "ANA@example.com", "otro-pass", "Ana 2")
	assert.ErrorIs(t, err, common.ErrAccountExists)

	_, err = b.Identity().CreateAccount(ctx, "bea@example.com", "123", "Bea")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestIdentity_CanceledContextIsUnavailable(t *testing.T) {
	b := newTestBackend(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Identity().CreateAccount(ctx, "ana@example.com", "secreto1", "Ana")
	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func sampleUser(id, email string, created time.Time) *entity.User {
	return &entity.User{
		ID:        id,
		FullName:  "User " + id,
		Email:     email,
		Phone:     "600000000",
		Status:    entity.StatusApproved,
		CreatedAt: created,
		Data: entity.UserData{
			Topics: []entity.Topic{{ID: 1, Title: "Tema 1", Status: entity.TopicNotStarted}},
			Tasks:  []entity.PlannerTask{{ID: "t1", Text: "Leer", Date: "2026-10-19"}},
		},
	}
}

func TestDocumentStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore()
	u := sampleUser("u1", "a@example.com", time.Now())
	require.NoError(t, s.Put(ctx, u))

	// mutating the caller's value after Put must not leak into the store
	u.Data.Tasks[0].Text = "changed"

	got, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Leer", got.Data.Tasks[0].Text)

	got.Data.Topics[0].Status = entity.TopicMastered
	again, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.TopicNotStarted, again.Data.Topics[0].Status)
}

func TestDocumentStore_Updates(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore()
	require.NoError(t, s.Put(ctx, sampleUser("u1", "a@example.com", time.Now())))

	require.NoError(t, s.UpdateStatus(ctx, "u1", entity.StatusRevoked))
	require.NoError(t, s.UpdateData(ctx, "u1", entity.UserData{Tasks: []entity.PlannerTask{}}))

	got, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRevoked, got.Status)
	assert.Empty(t, got.Data.Tasks)

	assert.ErrorIs(t, s.UpdateStatus(ctx, "missing", entity.StatusApproved), common.ErrNotFound)
	assert.ErrorIs(t, s.UpdateData(ctx, "missing", entity.UserData{}), common.ErrNotFound)
	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDocumentStore_EmailUniqueAcrossIDs(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore()
	require.NoError(t, s.Put(ctx, sampleUser("u1", "a@example.com", time.Now())))

	err := s.Put(ctx, sampleUser("u2", "A@example.com", time.Now()))
	assert.ErrorIs(t, err, common.ErrAlreadyExists)

	// same id is an upsert
	require.NoError(t, s.Put(ctx, sampleUser("u1", "a@example.com", time.Now())))
}

func TestDocumentStore_ListAndFind(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore()
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.Put(ctx, sampleUser("u2", "b@example.com", base.Add(time.Hour))))
	require.NoError(t, s.Put(ctx, sampleUser("u1", "a@example.com", base)))

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "u1", all[0].ID)
	assert.Equal(t, "u2", all[1].ID)

	found, err := s.FindByEmail(ctx, " B@EXAMPLE.com")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "u2", found[0].ID)

	none, err := s.FindByEmail(ctx, "c@example.com")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSessionStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore()

	sess, err := s.Create(ctx, "u1", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.UserID)

	got, err := s.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)

	require.NoError(t, s.Delete(ctx, sess.ID))
	require.NoError(t, s.Delete(ctx, sess.ID))
	_, err = s.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSessionStore_ExpiredIsGone(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	sess, err := s.Create(ctx, "u1", time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = s.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

type countingHasher struct {
	backend.BcryptHasher
	verifies int
}

func (c *countingHasher) Verify(hash, pw string) bool {
	c.verifies++
	return c.BcryptHasher.Verify(hash, pw)
}

func TestIdentity_UnknownEmailStillComparesHash(t *testing.T) {
	ctx := context.Background()
	h := &countingHasher{BcryptHasher: backend.BcryptHasher{Cost: bcrypt.MinCost}}
	p := NewIdentityProvider(h, nil)

	_, err := p.Authenticate(ctx, "nobody@example.com", "secreto1")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Equal(t, 1, h.verifies)
}

func TestSessionStore_CreatePurgesExpired(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	_, err := s.Create(ctx, "u1", time.Minute)
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	_, err = s.Create(ctx, "u2", time.Minute)
	require.NoError(t, err)

	assert.Len(t, s.sessions, 1)
}
