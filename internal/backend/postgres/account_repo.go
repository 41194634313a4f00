package postgres

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-opofit/internal/backend"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/common"
	"github.com/ovaphlow/pitchfork/service-opofit/pkg/utilities"
)

// AccountRepo is the identity provider over the accounts table.
type AccountRepo struct {
	db     *sqlx.DB
	hasher backend.PasswordHasher
	guard  *backend.TimingGuard
}

func NewAccountRepo(db *sqlx.DB, hasher backend.PasswordHasher) *AccountRepo {
	return &AccountRepo{db: db, hasher: hasher, guard: backend.NewTimingGuard(hasher)}
}

func (r *AccountRepo) CreateAccount(ctx context.Context, email, password, displayName string) (string, error) {
	if err := backend.CheckPassword(password); err != nil {
		return "", err
	}
	hash, algo, err := r.hasher.Hash(password)
	if err != nil {
		return "", err
	}
	const q = `INSERT INTO accounts (id, email, display_name, password_hash, password_algo)
		VALUES ($1, $2, $3, $4, $5)`
	id := utilities.NewUUID()
	if _, err := r.db.ExecContext(ctx, q, id, backend.NormalizeEmail(email), displayName, hash, algo); err != nil {
		return "", mapErr("create account", err, common.ErrAccountExists)
	}
	return id, nil
}

func (r *AccountRepo) Authenticate(ctx context.Context, email, password string) (string, error) {
	const q = `SELECT id, password_hash FROM accounts WHERE email=$1`
	var row struct {
		ID           string `db:"id"`
		PasswordHash string `db:"password_hash"`
	}
	if err := r.db.GetContext(ctx, &row, q, backend.NormalizeEmail(email)); err != nil {
		err = mapErr("authenticate", err, nil)
		if errors.Is(err, common.ErrNotFound) {
			r.guard.VerifyMiss(password)
			return "", common.ErrInvalidCredentials
		}
		return "", err
	}
	if !r.hasher.Verify(row.PasswordHash, password) {
		return "", common.ErrInvalidCredentials
	}
	return row.ID, nil
}
