package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/festa-do-viso/internal/utils"
)

// SeedOptions are the values inserted into an empty database.
type SeedOptions struct {
	AdminUsername string
	AdminPassword string
	BcryptCost    int
	SheetName     string
}

// SeedResult reports what Seed inserted.
type SeedResult struct {
	AdminCreated bool
	SheetCreated bool
}

// Seed inserts the default admin when no admin exists and a first sheet when
// no sheet exists.  Running it again on a populated database is a no-op.
func Seed(ctx context.Context, db *sql.DB, opts SeedOptions) (SeedResult, error) {
	var res SeedResult
	now := time.Now().UTC().Truncate(time.Millisecond)

	var admins int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&admins); err != nil {
		return res, fmt.Errorf("count admins: %w", err)
	}
	if admins == 0 && strings.TrimSpace(opts.AdminUsername) != "" {
		hash, err := utils.HashPassword(opts.AdminPassword, opts.BcryptCost)
		if err != nil {
			return res, fmt.Errorf("hash admin password: %w", err)
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO admin_users (username, password_hash, created_at) VALUES (?, ?, ?)`,
			strings.TrimSpace(opts.AdminUsername), hash, now); err != nil {
			return res, fmt.Errorf("insert admin: %w", err)
		}
		res.AdminCreated = true
	}

	var sheets int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sheets`).Scan(&sheets); err != nil {
		return res, fmt.Errorf("count sheets: %w", err)
	}
	if sheets == 0 {
		name := strings.TrimSpace(opts.SheetName)
		if name == "" {
			name = "Semana 1"
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO sheets (name, active, created_at) VALUES (?, ?, ?)`,
			name, true, now); err != nil {
			return res, fmt.Errorf("insert sheet: %w", err)
		}
		res.SheetCreated = true
	}
	return res, nil
}
