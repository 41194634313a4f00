package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-opofit/internal/backend"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/common"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestIssuer_SignParse(t *testing.T) {
	iss, err := NewIssuer(testSecret)
	require.NoError(t, err)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok, err := iss.Sign(&backend.Session{ID: "s1", UserID: "u1", ExpiresAt: exp})
	require.NoError(t, err)

	h, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "s1", h.SessionID)
	assert.Equal(t, "u1", h.UserID)
	assert.True(t, h.ExpiresAt.Equal(exp))
}

func TestIssuer_RejectsExpired(t *testing.T) {
	iss, err := NewIssuer(testSecret)
	require.NoError(t, err)

	tok, err := iss.Sign(&backend.Session{ID: "s1", UserID: "u1", ExpiresAt: time.Now().Add(time.Minute)})
	require.NoError(t, err)

	iss.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = iss.Parse(tok)
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestIssuer_RejectsForeignSecret(t *testing.T) {
	a, err := NewIssuer(testSecret)
	require.NoError(t, err)
	b, err := NewIssuer("another-secret-of-enough-length")
	require.NoError(t, err)

	tok, err := a.Sign(&backend.Session{ID: "s1", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	_, err = b.Parse(tok)
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestIssuer_RejectsGarbageAndMissingClaims(t *testing.T) {
	iss, err := NewIssuer(testSecret)
	require.NoError(t, err)

	_, err = iss.Parse("not-a-token")
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)

	claims := jwt.RegisteredClaims{Issuer: DefaultIssuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = iss.Parse(raw)
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestNewIssuer_ShortSecret(t *testing.T) {
	_, err := NewIssuer("short")
	assert.Error(t, err)
}
