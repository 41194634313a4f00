package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-opofit/internal/backend"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/common"
	"github.com/ovaphlow/pitchfork/service-opofit/pkg/utilities"
)

type SessionRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSessionRepo(db *sqlx.DB) *SessionRepo {
	return &SessionRepo{db: db, now: time.Now}
}

// Create opens a session and purges the ones that have already expired.
func (r *SessionRepo) Create(ctx context.Context, userID string, ttl time.Duration) (*backend.Session, error) {
	now := r.now().UTC()
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now); err != nil {
		return nil, mapErr("purge sessions", err, nil)
	}
	sess := &backend.Session{
		ID:        utilities.NewKSUID(),
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
	}
	const q = `INSERT INTO sessions (id, user_id, expires_at) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, q, sess.ID, sess.UserID, sess.ExpiresAt); err != nil {
		return nil, mapErr("create session", err, nil)
	}
	return sess, nil
}

// Get returns only sessions that have not expired yet.
func (r *SessionRepo) Get(ctx context.Context, id string) (*backend.Session, error) {
	const q = `SELECT id, user_id, expires_at FROM sessions WHERE id=$1`
	var sess backend.Session
	row := r.db.QueryRowxContext(ctx, q, id)
	if err := row.Scan(&sess.ID, &sess.UserID, &sess.ExpiresAt); err != nil {
		return nil, mapErr("get session", err, nil)
	}
	if sess.Expired(r.now()) {
		return nil, common.ErrNotFound
	}
	return &sess, nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id=$1`, id); err != nil {
		return mapErr("delete session", err, nil)
	}
	return nil
}
