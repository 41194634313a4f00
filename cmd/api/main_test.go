package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-opofit/internal/backend"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/backend/local"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/config"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/session"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/user"
	"github.com/ovaphlow/pitchfork/service-opofit/pkg/utilities"
)

func newUsers(t *testing.T) (*user.Service, *observer.ObservedLogs) {
	t.Helper()
	ids, err := utilities.NewSnowflakeGenerator(1)
	require.NoError(t, err)
	iss, err := session.NewIssuer("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	core, logs := observer.New(zap.InfoLevel)
	b := local.New(backend.BcryptHasher{Cost: bcrypt.MinCost}, ids)
	return user.NewService(b, iss, zap.New(core).Sugar()), logs
}

func TestProvisionAdmin_AlreadyProvisioned(t *testing.T) {
	users, _ := newUsers(t)
	ctx := context.Background()
	admin := config.Admin{Name: "Admin", Email: "admin@example.com", Password: "admin-pass"}

	require.NoError(t, provisionAdmin(ctx, users, admin, zap.NewNop().Sugar()))
	core, seen := observer.New(zap.InfoLevel)
	require.NoError(t, provisionAdmin(ctx, users, admin, zap.New(core).Sugar()))
	assert.Equal(t, 1, seen.FilterMessage("admin already provisioned").Len())
}

func TestProvisionAdmin_NonAdminOwnerIsNotReportedAsAdmin(t *testing.T) {
	users, svcLogs := newUsers(t)
	ctx := context.Background()
	_, err := users.Register(ctx, user.RegisterInput{
		FullName: "Ana",
		Email:    "admin@example.com",
		Password: "secreto1",
	})
	require.NoError(t, err)

	core, seen := observer.New(zap.InfoLevel)
	admin := config.Admin{Name: "Admin", Email: "admin@example.com", Password: "admin-pass"}
	require.NoError(t, provisionAdmin(ctx, users, admin, zap.New(core).Sugar()))

	assert.Zero(t, seen.FilterMessage("admin already provisioned").Len())
	assert.Equal(t, 1, svcLogs.FilterMessage("configured admin email belongs to a non-admin profile").Len())
}
