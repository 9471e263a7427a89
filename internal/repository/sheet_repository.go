package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/festa-do-viso/internal/database"
	"github.com/iliyamo/festa-do-viso/internal/model"
)

// SheetRepo encapsulates all database queries related to sheets.
type SheetRepo struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewSheetRepo constructs a SheetRepo with the provided DB handle.
func NewSheetRepo(db *sql.DB, d database.Dialect) *SheetRepo {
	return &SheetRepo{db: db, dialect: d}
}

// Create inserts a new sheet.  On success the sheet's ID field is populated
// with the auto-generated value.  CreatedAt must be set by the caller.
func (r *SheetRepo) Create(ctx context.Context, s *model.Sheet) error {
	const q = "INSERT INTO sheets (name, active, created_at) VALUES (?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, s.Name, s.Active, s.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByID fetches a sheet by its ID.  It returns ErrSheetNotFound if no row
// is found.  ClaimedCount is filled.
func (r *SheetRepo) GetByID(ctx context.Context, id uint64) (*model.Sheet, error) {
	const q = `SELECT s.id, s.name, s.active, s.created_at,
	                  (SELECT COUNT(*) FROM claims c WHERE c.sheet_id = s.id)
	           FROM sheets s WHERE s.id = ?`
	s, err := scanSheet(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSheetNotFound
		}
		return nil, err
	}
	return s, nil
}

// Exists reports whether a sheet with the given id exists.
func (r *SheetRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM sheets WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IsActive returns the active flag of a sheet or ErrSheetNotFound.
func (r *SheetRepo) IsActive(ctx context.Context, id uint64) (bool, error) {
	var active bool
	err := r.db.QueryRowContext(ctx, "SELECT active FROM sheets WHERE id = ?", id).Scan(&active)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrSheetNotFound
	}
	return active, err
}

// ListAll returns every sheet, newest first, with claim counts.
func (r *SheetRepo) ListAll(ctx context.Context) ([]*model.Sheet, error) {
	return r.list(ctx, false)
}

// ListActive returns active sheets only, newest first, with claim counts.
func (r *SheetRepo) ListActive(ctx context.Context) ([]*model.Sheet, error) {
	return r.list(ctx, true)
}

func (r *SheetRepo) list(ctx context.Context, activeOnly bool) ([]*model.Sheet, error) {
	q := `SELECT s.id, s.name, s.active, s.created_at, COUNT(c.id)
	      FROM sheets s LEFT JOIN claims c ON c.sheet_id = s.id`
	var args []any
	if activeOnly {
		q += " WHERE s.active = ?"
		args = append(args, true)
	}
	q += ` GROUP BY s.id, s.name, s.active, s.created_at
	       ORDER BY s.created_at DESC, s.id DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Sheet, 0)
	for rows.Next() {
		s, err := scanSheet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ToggleActive flips the active flag and returns the updated sheet.
func (r *SheetRepo) ToggleActive(ctx context.Context, id uint64) (s *model.Sheet, err error) {
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

	res, err := tx.ExecContext(ctx, "UPDATE sheets SET active = NOT active WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrSheetNotFound
	}
	const q = `SELECT s.id, s.name, s.active, s.created_at,
	                  (SELECT COUNT(*) FROM claims c WHERE c.sheet_id = s.id)
	           FROM sheets s WHERE s.id = ?`
	return scanSheet(tx.QueryRowContext(ctx, q, id))
}

// DeleteCascade removes a sheet together with its claims and winner records.
// It refuses with ErrLastSheet when the sheet is the only one left.  Every
// sheet row is locked before counting so two concurrent deletes cannot both
// pass the check.  The returned sheet is the row as it was before deletion.
func (r *SheetRepo) DeleteCascade(ctx context.Context, id uint64) (deleted *model.Sheet, err error) {
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

	rows, err := tx.QueryContext(ctx, "SELECT id FROM sheets"+r.dialect.ForUpdate())
	if err != nil {
		return nil, err
	}
	total, found := 0, false
	for rows.Next() {
		var sid uint64
		if err = rows.Scan(&sid); err != nil {
			rows.Close()
			return nil, err
		}
		total++
		if sid == id {
			found = true
		}
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if !found {
		return nil, ErrSheetNotFound
	}
	if total <= 1 {
		return nil, ErrLastSheet
	}

	const q = `SELECT s.id, s.name, s.active, s.created_at,
	                  (SELECT COUNT(*) FROM claims c WHERE c.sheet_id = s.id)
	           FROM sheets s WHERE s.id = ?`
	if deleted, err = scanSheet(tx.QueryRowContext(ctx, q, id)); err != nil {
		return nil, err
	}
	// Children first so the cascade does not depend on the FK action.
	if _, err = tx.ExecContext(ctx, "DELETE FROM winners WHERE sheet_id = ?", id); err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM claims WHERE sheet_id = ?", id); err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM sheets WHERE id = ?", id); err != nil {
		return nil, err
	}
	return deleted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSheet(sc rowScanner) (*model.Sheet, error) {
	var s model.Sheet
	if err := sc.Scan(&s.ID, &s.Name, &s.Active, &s.CreatedAt, &s.ClaimedCount); err != nil {
		return nil, err
	}
	s.CreatedAt = s.CreatedAt.UTC()
	return &s, nil
}
