package local

import (
	"context"
	"sync"

	"github.com/ovaphlow/pitchfork/service-opofit/internal/backend"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/common"
	"github.com/ovaphlow/pitchfork/service-opofit/pkg/utilities"
)

type account struct {
	id          string
	displayName string
	hash        string
}

// IdentityProvider keeps credentials keyed by normalized email.
type IdentityProvider struct {
	mu       sync.RWMutex
	accounts map[string]account
	hasher   backend.PasswordHasher
	guard    *backend.TimingGuard
	ids      *utilities.SnowflakeGenerator
}

func NewIdentityProvider(hasher backend.PasswordHasher, ids *utilities.SnowflakeGenerator) *IdentityProvider {
	return &IdentityProvider{
		accounts: make(map[string]account),
		hasher:   hasher,
		guard:    backend.NewTimingGuard(hasher),
		ids:      ids,
	}
}

func (p *IdentityProvider) CreateAccount(ctx context.Context, email, password, displayName string) (string, error) {
	if err := checkCtx(ctx, "create account"); err != nil {
		return "", err
	}
	if err := backend.CheckPassword(password); err != nil {
		return "", err
	}
	email = backend.NormalizeEmail(email)

	// hash outside the lock, bcrypt is slow
	hash, _, err := p.hasher.Hash(password)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.accounts[email]; exists {
		return "", common.ErrAccountExists
	}
	id := p.ids.Next()
	p.accounts[email] = account{id: id, displayName: displayName, hash: hash}
	return id, nil
}

func (p *IdentityProvider) Authenticate(ctx context.Context, email, password string) (string, error) {
	if err := checkCtx(ctx, "authenticate"); err != nil {
		return "", err
	}
	p.mu.RLock()
	acc, ok := p.accounts[backend.NormalizeEmail(email)]
	p.mu.RUnlock()
	if !ok {
		p.guard.VerifyMiss(password)
		return "", common.ErrInvalidCredentials
	}
	if !p.hasher.Verify(acc.hash, password) {
		return "", common.ErrInvalidCredentials
	}
	return acc.id, nil
}
