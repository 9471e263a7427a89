package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/festa-do-viso/internal/model"
)

// AdminRepo mirrors the 'admin_users' table.
type AdminRepo struct{ DB *sql.DB }

func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{DB: db} }

// GetByUsername fetches an admin by exact username.
func (r *AdminRepo) GetByUsername(ctx context.Context, username string) (*model.AdminCredential, error) {
	return r.get(ctx,
		"SELECT id,username,password_hash,created_at,last_access_at FROM admin_users WHERE username=? LIMIT 1",
		strings.TrimSpace(username))
}

// GetByID fetches an admin by id.
func (r *AdminRepo) GetByID(ctx context.Context, id uint64) (*model.AdminCredential, error) {
	return r.get(ctx,
		"SELECT id,username,password_hash,created_at,last_access_at FROM admin_users WHERE id=? LIMIT 1", id)
}

// TouchLastAccess records a successful login.
func (r *AdminRepo) TouchLastAccess(ctx context.Context, id uint64, at time.Time) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE admin_users SET last_access_at=? WHERE id=?", at, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAdminNotFound
	}
	return nil
}

func (r *AdminRepo) get(ctx context.Context, q string, arg any) (*model.AdminCredential, error) {
	var (
		a    model.AdminCredential
		last sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, q, arg).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt, &last)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	if last.Valid {
		t := last.Time.UTC()
		a.LastAccessAt = &t
	}
	return &a, nil
}
