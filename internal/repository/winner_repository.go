package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/festa-do-viso/internal/database"
	"github.com/iliyamo/festa-do-viso/internal/model"
)

// WinnerRepo persists draw results.
type WinnerRepo struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewWinnerRepo(db *sql.DB, d database.Dialect) *WinnerRepo {
	return &WinnerRepo{db: db, dialect: d}
}

const winnerColumns = `id, sheet_id, sheet_name, draw_date, winning_number,
	winner_name, winner_contact, created_at`

// Resolve looks up the claim holding number on sheetID and, when one exists,
// records it as the winner of the draw on drawDate.  Everything happens in
// one transaction: the sheet row and the claim row are read with locks so
// neither can vanish between the lookup and the insert.
//
// It returns (nil, nil) when nobody holds the number; nothing is written in
// that case.  ErrSheetNotFound and ErrWinnerExists are the other expected
// failures.
func (r *WinnerRepo) Resolve(ctx context.Context, sheetID uint64, drawDate time.Time, number int, now time.Time) (rec *model.WinnerRecord, err error) {
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

	lock := r.dialect.ForUpdate()
	date := drawDate.Format(model.DateLayout)

	var sheetName string
	err = tx.QueryRowContext(ctx, "SELECT name FROM sheets WHERE id = ?"+lock, sheetID).Scan(&sheetName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSheetNotFound
		}
		return nil, err
	}

	var existing uint64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM winners WHERE sheet_id = ? AND draw_date = ?", sheetID, date).Scan(&existing)
	switch {
	case err == nil:
		return nil, ErrWinnerExists
	case !errors.Is(err, sql.ErrNoRows):
		return nil, err
	}

	var name, contact string
	err = tx.QueryRowContext(ctx,
		"SELECT name, contact FROM claims WHERE sheet_id = ? AND number = ?"+lock,
		sheetID, number).Scan(&name, &contact)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rec = &model.WinnerRecord{
		SheetID:       sheetID,
		SheetName:     sheetName,
		DrawDate:      dateOnly(drawDate),
		WinningNumber: number,
		WinnerName:    name,
		WinnerContact: contact,
		CreatedAt:     now,
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO winners (sheet_id, sheet_name, draw_date, winning_number, winner_name, winner_contact, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.SheetID, rec.SheetName, date, rec.WinningNumber, rec.WinnerName, rec.WinnerContact, rec.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrWinnerExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	rec.ID = uint64(id)
	return rec, nil
}

// FindByDateAndSheet returns the recorded winner for a draw or
// ErrWinnerNotFound.
func (r *WinnerRepo) FindByDateAndSheet(ctx context.Context, sheetID uint64, drawDate time.Time) (*model.WinnerRecord, error) {
	q := "SELECT " + winnerColumns + " FROM winners WHERE sheet_id = ? AND draw_date = ?"
	w, err := scanWinner(r.db.QueryRowContext(ctx, q, sheetID, drawDate.Format(model.DateLayout)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWinnerNotFound
	}
	return w, err
}

// ListAll returns every winner record, latest draw first.
func (r *WinnerRepo) ListAll(ctx context.Context) ([]*model.WinnerRecord, error) {
	return r.query(ctx, "SELECT "+winnerColumns+" FROM winners ORDER BY draw_date DESC, created_at DESC, id DESC")
}

// ListBySheet returns the winner records of one sheet, latest draw first.
func (r *WinnerRepo) ListBySheet(ctx context.Context, sheetID uint64) ([]*model.WinnerRecord, error) {
	return r.query(ctx, "SELECT "+winnerColumns+
		" FROM winners WHERE sheet_id = ? ORDER BY draw_date DESC, created_at DESC, id DESC", sheetID)
}

// DeleteByID removes a winner record and returns the removed row.
func (r *WinnerRepo) DeleteByID(ctx context.Context, id uint64) (deleted *model.WinnerRecord, err error) {
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

	q := "SELECT " + winnerColumns + " FROM winners WHERE id = ?" + r.dialect.ForUpdate()
	deleted, err = scanWinner(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWinnerNotFound
		}
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM winners WHERE id = ?", id); err != nil {
		return nil, err
	}
	return deleted, nil
}

func (r *WinnerRepo) query(ctx context.Context, q string, args ...any) ([]*model.WinnerRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.WinnerRecord, 0)
	for rows.Next() {
		w, err := scanWinner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanWinner(sc rowScanner) (*model.WinnerRecord, error) {
	var w model.WinnerRecord
	if err := sc.Scan(&w.ID, &w.SheetID, &w.SheetName, &w.DrawDate, &w.WinningNumber,
		&w.WinnerName, &w.WinnerContact, &w.CreatedAt); err != nil {
		return nil, err
	}
	w.DrawDate = dateOnly(w.DrawDate)
	w.CreatedAt = w.CreatedAt.UTC()
	return &w, nil
}

// dateOnly drops the clock part, keeping the calendar date as UTC midnight.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
