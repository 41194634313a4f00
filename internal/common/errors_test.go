package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsAreDistinct(t *testing.T) {
	caller := []error{
		ErrDuplicateEmail, ErrInvalidCredentials, ErrPendingApproval, ErrRevokedAccess,
		ErrProfileNotFound, ErrUnavailable, ErrUnauthorized,
	}
	messages := map[string]error{}
	for _, err := range caller {
		msg := Message(err)
		if prev, ok := messages[msg]; ok {
			t.Fatalf("%v and %v share message %q", prev, err, msg)
		}
		messages[msg] = err
	}
}

func TestDuplicateAccountIsDuplicateEmail(t *testing.T) {
	assert.True(t, errors.Is(ErrDuplicateAccount, ErrDuplicateEmail))
	assert.False(t, errors.Is(ErrDuplicateEmail, ErrDuplicateAccount))
	assert.Equal(t, "duplicate_email", Code(ErrDuplicateAccount))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrDuplicateAccount))
}

func TestWrappedErrorsMap(t *testing.T) {
	tests := []struct {
		err    error
		code   string
		status int
	}{
		{fmt.Errorf("login: %w", ErrPendingApproval), "pending_approval", http.StatusForbidden},
		{fmt.Errorf("login: %w", ErrRevokedAccess), "revoked_access", http.StatusForbidden},
		{Unavailable("get user", errors.New("dial tcp: refused")), "unavailable", http.StatusServiceUnavailable},
		{Validation("email is required"), "validation", http.StatusBadRequest},
		{ErrProfileNotFound, "profile_not_found", http.StatusNotFound},
		{errors.New("boom"), "internal", http.StatusInternalServerError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.code, Code(tc.err), tc.err.Error())
		assert.Equal(t, tc.status, HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestUnavailableDistinctFromProfileNotFound(t *testing.T) {
	err := Unavailable("get user", errors.New("timeout"))
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.False(t, errors.Is(err, ErrProfileNotFound))
	assert.NotEqual(t, Message(err), Message(ErrProfileNotFound))
	assert.Contains(t, err.Error(), "timeout")
}
