// Package common holds the sentinel errors shared by the identity gate, the
// profile store accessor and the storage backends. Callers match them with
// errors.Is.
package common

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// storage / provider level
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrAccountExists = errors.New("identity account already exists")

	// caller facing
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPendingApproval    = errors.New("pending approval")
	ErrRevokedAccess      = errors.New("access revoked")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrUnavailable        = errors.New("service unavailable")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrValidation         = errors.New("validation error")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrItemNotFound       = errors.New("item not found")

	// ErrDuplicateAccount is returned when the email passed the profile check
	// but the identity provider refused the account (concurrent registration).
	ErrDuplicateAccount = fmt.Errorf("%w: identity provider already holds this account", ErrDuplicateEmail)
)

type kind struct {
	err     error
	code    string
	message string
	status  int
}

// ordered: ErrDuplicateAccount must be matched before ErrDuplicateEmail
var kinds = []kind{
	{ErrDuplicateAccount, "duplicate_email", "This email is already registered. Please sign in instead.", http.StatusConflict},
	{ErrDuplicateEmail, "duplicate_email", "This email is already registered. Please sign in instead.", http.StatusConflict},
	{ErrInvalidCredentials, "invalid_credentials", "Incorrect email or password.", http.StatusUnauthorized},
	{ErrPendingApproval, "pending_approval", "Your access request is pending approval by an administrator.", http.StatusForbidden},
	{ErrRevokedAccess, "revoked_access", "Your access to the platform has been revoked. Please contact an administrator.", http.StatusForbidden},
	{ErrProfileNotFound, "profile_not_found", "Your user profile could not be found. Please check your credentials and try again.", http.StatusNotFound},
	{ErrUnavailable, "unavailable", "Could not reach the database. Please check your connection and try again.", http.StatusServiceUnavailable},
	{ErrUnauthorized, "unauthorized", "This action requires administrator privileges.", http.StatusForbidden},
	{ErrNotAuthenticated, "not_authenticated", "Please sign in to continue.", http.StatusUnauthorized},
	{ErrValidation, "validation", "Some of the submitted data is not valid.", http.StatusBadRequest},
	{ErrInvalidTransition, "invalid_transition", "That status change is not allowed.", http.StatusConflict},
	{ErrItemNotFound, "item_not_found", "The requested item does not exist.", http.StatusNotFound},
	{ErrNotFound, "not_found", "The requested record does not exist.", http.StatusNotFound},
}

func lookup(err error) (kind, bool) {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k, true
		}
	}
	return kind{}, false
}

// Code returns a stable machine-readable identifier for err.
func Code(err error) string {
	if k, ok := lookup(err); ok {
		return k.code
	}
	return "internal"
}

// Message returns the human-readable message shown to the user for err.
func Message(err error) string {
	if k, ok := lookup(err); ok {
		return k.message
	}
	return "Something went wrong. Please try again."
}

// HTTPStatus maps err to a response status code.
func HTTPStatus(err error) int {
	if k, ok := lookup(err); ok {
		return k.status
	}
	return http.StatusInternalServerError
}

// Unavailable wraps a transport/connectivity failure so it matches ErrUnavailable
// while keeping the cause in the message.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}

// Validation wraps a descriptive reason so it matches ErrValidation.
func Validation(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}
