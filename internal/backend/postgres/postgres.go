// Package postgres is the networked backend. Accounts, profiles and sessions
// live in PostgreSQL tables created by the embedded goose migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-opofit/internal/backend"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/common"
	"github.com/ovaphlow/pitchfork/service-opofit/pkg/database"
)

const uniqueViolation = "23505"

type Backend struct {
	db       *sqlx.DB
	accounts *AccountRepo
	users    *UserRepo
	sessions *SessionRepo
}

var _ backend.Backend = (*Backend)(nil)

// Open connects, runs migrations and returns a ready backend.
func Open(ctx context.Context, cfg database.Config, hasher backend.PasswordHasher) (*Backend, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return New(sqlx.NewDb(db, "postgres"), hasher), nil
}

// New wraps an existing connection pool. Migrations are the caller's concern.
func New(db *sqlx.DB, hasher backend.PasswordHasher) *Backend {
	if hasher == nil {
		hasher = backend.BcryptHasher{}
	}
	return &Backend{
		db:       db,
		accounts: NewAccountRepo(db, hasher),
		users:    NewUserRepo(db),
		sessions: NewSessionRepo(db),
	}
}

func (b *Backend) Identity() backend.IdentityProvider { return b.accounts }
func (b *Backend) Profiles() backend.DocumentStore    { return b.users }
func (b *Backend) Sessions() backend.SessionStore     { return b.sessions }
func (b *Backend) Close() error                       { return b.db.Close() }

// mapErr turns driver errors into the backend error vocabulary.
func mapErr(op string, err error, conflict error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && conflict != nil {
		return conflict
	}
	return common.Unavailable(op, err)
}

func affected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return common.Unavailable(op, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func jsonErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
