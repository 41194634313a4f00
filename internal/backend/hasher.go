package backend

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-opofit/internal/common"
)

// MinPasswordLength is the only password rule the identity providers apply.
const MinPasswordLength = 6

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (hash string, algo string, err error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", "", err
	}
	return string(h), fmt.Sprintf("bcrypt:%d", cost), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// CheckPassword applies the provider password rule.
func CheckPassword(pw string) error {
	if len(pw) < MinPasswordLength {
		return common.Validation(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	return nil
}

// TimingGuard spends one hash comparison on logins whose email has no
// account, so an unknown email takes as long as a wrong password.
type TimingGuard struct {
	hasher PasswordHasher
	once   sync.Once
	hash   string
}

func NewTimingGuard(h PasswordHasher) *TimingGuard {
	return &TimingGuard{hasher: h}
}

// VerifyMiss compares pw against a fixed dummy hash and discards the result.
func (g *TimingGuard) VerifyMiss(pw string) {
	g.once.Do(func() {
		g.hash, _, _ = g.hasher.Hash("no-such-account")
	})
	_ = g.hasher.Verify(g.hash, pw)
}
