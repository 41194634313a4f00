package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-opofit/internal/backend"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/common"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/user/entity"
)

// UserRepo provides data access for the users table using sqlx.
// The study data document is stored as JSONB.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, full_name, email, phone, reason, status, is_admin, data, created_at`

type userRow struct {
	ID        string    `db:"id"`
	FullName  string    `db:"full_name"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	Reason    string    `db:"reason"`
	Status    string    `db:"status"`
	IsAdmin   bool      `db:"is_admin"`
	Data      []byte    `db:"data"`
	CreatedAt time.Time `db:"created_at"`
}

func (row userRow) toEntity() (*entity.User, error) {
	u := &entity.User{
		ID:        row.ID,
		FullName:  row.FullName,
		Email:     row.Email,
		Phone:     row.Phone,
		Reason:    row.Reason,
		Status:    entity.Status(row.Status),
		IsAdmin:   row.IsAdmin,
		CreatedAt: row.CreatedAt,
	}
	if len(row.Data) > 0 {
		if err := json.Unmarshal(row.Data, &u.Data); err != nil {
			return nil, jsonErr("decode user data", err)
		}
	}
	return u, nil
}

func (r *UserRepo) Get(ctx context.Context, id string) (*entity.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	var row userRow
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, mapErr("get user", err, nil)
	}
	return row.toEntity()
}

// Put upserts the whole record.
func (r *UserRepo) Put(ctx context.Context, u *entity.User) error {
	data, err := json.Marshal(u.Data)
	if err != nil {
		return jsonErr("encode user data", err)
	}
	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	const q = `INSERT INTO users (id, full_name, email, phone, reason, status, is_admin, data, created_at)
		VALUES (:id, :full_name, :email, :phone, :reason, :status, :is_admin, :data, :created_at)
		ON CONFLICT (id) DO UPDATE SET
		  full_name=EXCLUDED.full_name, email=EXCLUDED.email, phone=EXCLUDED.phone,
		  reason=EXCLUDED.reason, status=EXCLUDED.status, is_admin=EXCLUDED.is_admin,
		  data=EXCLUDED.data, updated_at=NOW()`
	params := map[string]any{
		"id":         u.ID,
		"full_name":  u.FullName,
		"email":      backend.NormalizeEmail(u.Email),
		"phone":      u.Phone,
		"reason":     u.Reason,
		"status":     string(u.Status),
		"is_admin":   u.IsAdmin,
		"data":       data,
		"created_at": created,
	}
	if _, err := r.db.NamedExecContext(ctx, q, params); err != nil {
		return mapErr("put user", err, common.ErrAlreadyExists)
	}
	return nil
}

func (r *UserRepo) UpdateData(ctx context.Context, id string, data entity.UserData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return jsonErr("encode user data", err)
	}
	const q = `UPDATE users SET data=$2, updated_at=NOW() WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, id, raw)
	if err != nil {
		return mapErr("update user data", err, nil)
	}
	return affected("update user data", res)
}

func (r *UserRepo) UpdateStatus(ctx context.Context, id string, status entity.Status) error {
	const q = `UPDATE users SET status=$2, updated_at=NOW() WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, id, string(status))
	if err != nil {
		return mapErr("update user status", err, nil)
	}
	return affected("update user status", res)
}

func (r *UserRepo) List(ctx context.Context) ([]*entity.User, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`
	return r.selectUsers(ctx, "list users", q)
}

// FindByEmail relies on citext for case-insensitive matching.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) ([]*entity.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email=$1 ORDER BY created_at, id`
	return r.selectUsers(ctx, "find user by email", q, backend.NormalizeEmail(email))
}

func (r *UserRepo) selectUsers(ctx context.Context, op, q string, args ...any) ([]*entity.User, error) {
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, mapErr(op, err, nil)
	}
	out := make([]*entity.User, 0, len(rows))
	for _, row := range rows {
		u, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}
