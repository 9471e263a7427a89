package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/festa-do-viso/internal/database"
	"github.com/iliyamo/festa-do-viso/internal/model"
)

// ClaimRepo persists number claims.  Uniqueness of (sheet_id, number) is
// left entirely to the database index; Insert never checks first.
type ClaimRepo struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewClaimRepo(db *sql.DB, d database.Dialect) *ClaimRepo {
	return &ClaimRepo{db: db, dialect: d}
}

// Insert stores a claim and sets its ID.  A duplicate (sheet, number) yields
// ErrNumberTaken; a missing sheet yields ErrSheetNotFound.
func (r *ClaimRepo) Insert(ctx context.Context, c *model.Claim) error {
	const q = `INSERT INTO claims (sheet_id, number, name, contact, created_at)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.SheetID, c.Number, c.Name, c.Contact, c.CreatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return ErrNumberTaken
		case isForeignKeyViolation(err):
			return ErrSheetNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// OccupiedNumbers returns the claimed numbers of a sheet in ascending order.
func (r *ClaimRepo) OccupiedNumbers(ctx context.Context, sheetID uint64) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT number FROM claims WHERE sheet_id = ? ORDER BY number", sheetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]int, 0, model.SheetCapacity)
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// GetBySheetAndNumber returns the claim holding a number or ErrClaimNotFound.
func (r *ClaimRepo) GetBySheetAndNumber(ctx context.Context, sheetID uint64, number int) (*model.Claim, error) {
	const q = `SELECT id, sheet_id, number, name, contact, created_at
	           FROM claims WHERE sheet_id = ? AND number = ?`
	c, err := scanClaim(r.db.QueryRowContext(ctx, q, sheetID, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClaimNotFound
	}
	return c, err
}

// ListBySheet returns all claims on a sheet ordered by number.
func (r *ClaimRepo) ListBySheet(ctx context.Context, sheetID uint64) ([]*model.Claim, error) {
	const q = `SELECT id, sheet_id, number, name, contact, created_at
	           FROM claims WHERE sheet_id = ? ORDER BY number`
	rows, err := r.db.QueryContext(ctx, q, sheetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Claim, 0)
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByID removes a claim and returns the removed row.
func (r *ClaimRepo) DeleteByID(ctx context.Context, id uint64) (deleted *model.Claim, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	q := `SELECT id, sheet_id, number, name, contact, created_at
	      FROM claims WHERE id = ?` + r.dialect.ForUpdate()
	deleted, err = scanClaim(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM claims WHERE id = ?", id); err != nil {
		return nil, err
	}
	return deleted, nil
}

func scanClaim(sc rowScanner) (*model.Claim, error) {
	var c model.Claim
	if err := sc.Scan(&c.ID, &c.SheetID, &c.Number, &c.Name, &c.Contact, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}
