// Package backend defines the storage-and-identity capability the application
// runs on. A process picks one implementation at start: local (in-memory) or
// postgres (networked).
//
// Errors follow internal/common: ErrNotFound for absent records,
// ErrAccountExists / ErrAlreadyExists for uniqueness conflicts and
// ErrUnavailable for transport failures.
package backend

import (
	"context"
	"strings"
	"time"

	"github.com/ovaphlow/pitchfork/service-opofit/internal/user/entity"
)

// IdentityProvider owns credentials. It knows nothing about profiles.
type IdentityProvider interface {
	// CreateAccount registers credentials and returns the provider id.
	// Returns common.ErrAccountExists when the email already has an account.
	CreateAccount(ctx context.Context, email, password, displayName string) (string, error)
	// Authenticate checks credentials and returns the provider id.
	// Returns common.ErrInvalidCredentials on unknown email or wrong password.
	Authenticate(ctx context.Context, email, password string) (string, error)
}

// DocumentStore holds profile records keyed by User.ID.
type DocumentStore interface {
	Get(ctx context.Context, id string) (*entity.User, error)
	// Put writes the whole record, replacing any existing one with the same id.
	Put(ctx context.Context, u *entity.User) error
	UpdateData(ctx context.Context, id string, data entity.UserData) error
	UpdateStatus(ctx context.Context, id string, status entity.Status) error
	List(ctx context.Context) ([]*entity.User, error)
	FindByEmail(ctx context.Context, email string) ([]*entity.User, error)
}

// Session is one signed-in period of a user.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionStore tracks open sessions. Delete is idempotent.
type SessionStore interface {
	Create(ctx context.Context, userID string, ttl time.Duration) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// Backend bundles the three capabilities of one implementation.
type Backend interface {
	Identity() IdentityProvider
	Profiles() DocumentStore
	Sessions() SessionStore
	Close() error
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
