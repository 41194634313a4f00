// Package local is the in-process backend: identity, profiles and sessions
// live in mutex-guarded maps and are lost on restart. Records are copied on
// the way in and out so callers never share memory with the store.
package local

import (
	"context"

	"github.com/ovaphlow/pitchfork/service-opofit/internal/backend"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/common"
	"github.com/ovaphlow/pitchfork/service-opofit/pkg/utilities"
)

type Backend struct {
	identity *IdentityProvider
	profiles *DocumentStore
	sessions *SessionStore
}

var _ backend.Backend = (*Backend)(nil)

// New builds an empty local backend. Account ids come from ids.
func New(hasher backend.PasswordHasher, ids *utilities.SnowflakeGenerator) *Backend {
	if hasher == nil {
		hasher = backend.BcryptHasher{}
	}
	return &Backend{
		identity: NewIdentityProvider(hasher, ids),
		profiles: NewDocumentStore(),
		sessions: NewSessionStore(),
	}
}

func (b *Backend) Identity() backend.IdentityProvider { return b.identity }
func (b *Backend) Profiles() backend.DocumentStore    { return b.profiles }
func (b *Backend) Sessions() backend.SessionStore     { return b.sessions }
func (b *Backend) Close() error                       { return nil }

func checkCtx(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return common.Unavailable(op, err)
	}
	return nil
}
