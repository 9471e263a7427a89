package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo persists refresh token hashes for admins.  Raw tokens are
// never stored.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, adminID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (admin_id, token_hash, expires_at, created_at) VALUES (?,?,?,?)",
		adminID, tokenHash, exp.UTC(), time.Now().UTC())
	return err
}

// Consume revokes a live token and returns its admin ID.  The revoke is a
// conditional UPDATE, so of two concurrent calls with the same token only
// one succeeds; the other gets ErrTokenInvalid.
func (r *TokenRepo) Consume(ctx context.Context, tokenHash string) (adminID uint64, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=? WHERE token_hash=? AND revoked_at IS NULL AND expires_at > ?",
		now, tokenHash, now)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return 0, ErrTokenInvalid
	}
	err = tx.QueryRowContext(ctx,
		"SELECT admin_id FROM refresh_tokens WHERE token_hash=?", tokenHash).Scan(&adminID)
	return adminID, err
}

// RevokeAllForAdmin revokes all of an admin's active tokens.
func (r *TokenRepo) RevokeAllForAdmin(ctx context.Context, adminID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=? WHERE admin_id=? AND revoked_at IS NULL",
		time.Now().UTC(), adminID)
	return err
}
