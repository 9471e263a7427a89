package repository

import (
	"context"
	"database/sql"
)

// Counts is the raw material for the dashboard statistics.
type Counts struct {
	TotalSheets  int
	ActiveSheets int
	Claims       int
	ActiveClaims int // claims on active sheets
	Winners      int
}

// StatsRepo reads aggregate counts.
type StatsRepo struct{ db *sql.DB }

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// Counts reads every figure in a single statement so they describe the same
// snapshot of the data.
func (r *StatsRepo) Counts(ctx context.Context) (Counts, error) {
	const q = `SELECT
		(SELECT COUNT(*) FROM sheets),
		(SELECT COUNT(*) FROM sheets WHERE active = ?),
		(SELECT COUNT(*) FROM claims),
		(SELECT COUNT(*) FROM claims c JOIN sheets s ON s.id = c.sheet_id WHERE s.active = ?),
		(SELECT COUNT(*) FROM winners)`
	var c Counts
	err := r.db.QueryRowContext(ctx, q, true, true).Scan(
		&c.TotalSheets, &c.ActiveSheets, &c.Claims, &c.ActiveClaims, &c.Winners)
	return c, err
}
