package database

import (
	"context"
	"database/sql"
	"fmt"
)

// The schema is kept as one statement per slice entry so both drivers can run
// it without multi-statement support.  Every statement is idempotent.

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS sheets (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name       VARCHAR(100)    NOT NULL,
		active     TINYINT(1)      NOT NULL DEFAULT 1,
		created_at DATETIME(3)     NOT NULL,
		KEY idx_sheets_created (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS claims (
		id         BIGINT UNSIGNED  NOT NULL AUTO_INCREMENT PRIMARY KEY,
		sheet_id   BIGINT UNSIGNED  NOT NULL,
		number     TINYINT UNSIGNED NOT NULL,
		name       VARCHAR(100)     NOT NULL,
		contact    CHAR(9)          NOT NULL,
		created_at DATETIME(3)      NOT NULL,
		UNIQUE KEY uq_claims_sheet_number (sheet_id, number),
		CONSTRAINT fk_claims_sheet FOREIGN KEY (sheet_id) REFERENCES sheets(id) ON DELETE CASCADE,
		CONSTRAINT chk_claims_number CHECK (number BETWEEN 1 AND 49)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS winners (
		id             BIGINT UNSIGNED  NOT NULL AUTO_INCREMENT PRIMARY KEY,
		sheet_id       BIGINT UNSIGNED  NOT NULL,
		sheet_name     VARCHAR(100)     NOT NULL,
		draw_date      DATE             NOT NULL,
		winning_number TINYINT UNSIGNED NOT NULL,
		winner_name    VARCHAR(100)     NOT NULL,
		winner_contact CHAR(9)          NOT NULL,
		created_at     DATETIME(3)      NOT NULL,
		UNIQUE KEY uq_winners_sheet_date (sheet_id, draw_date),
		KEY idx_winners_draw_date (draw_date),
		CONSTRAINT fk_winners_sheet FOREIGN KEY (sheet_id) REFERENCES sheets(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS admin_users (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		username       VARCHAR(64)     NOT NULL,
		password_hash  VARCHAR(255)    NOT NULL,
		created_at     DATETIME(3)     NOT NULL,
		last_access_at DATETIME(3)     NULL,
		UNIQUE KEY uq_admin_users_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		admin_id   BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64)        NOT NULL,
		expires_at DATETIME(3)     NOT NULL,
		revoked_at DATETIME(3)     NULL,
		created_at DATETIME(3)     NOT NULL,
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		CONSTRAINT fk_refresh_tokens_admin FOREIGN KEY (admin_id) REFERENCES admin_users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS sheets (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT     NOT NULL,
		active     BOOLEAN  NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sheets_created ON sheets(created_at)`,
	`CREATE TABLE IF NOT EXISTS claims (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		sheet_id   INTEGER  NOT NULL REFERENCES sheets(id) ON DELETE CASCADE,
		number     INTEGER  NOT NULL CHECK (number BETWEEN 1 AND 49),
		name       TEXT     NOT NULL,
		contact    TEXT     NOT NULL,
		created_at DATETIME NOT NULL,
		UNIQUE (sheet_id, number)
	)`,
	`CREATE TABLE IF NOT EXISTS winners (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		sheet_id       INTEGER  NOT NULL REFERENCES sheets(id) ON DELETE CASCADE,
		sheet_name     TEXT     NOT NULL,
		draw_date      DATE     NOT NULL,
		winning_number INTEGER  NOT NULL,
		winner_name    TEXT     NOT NULL,
		winner_contact TEXT     NOT NULL,
		created_at     DATETIME NOT NULL,
		UNIQUE (sheet_id, draw_date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_winners_draw_date ON winners(draw_date)`,
	`CREATE TABLE IF NOT EXISTS admin_users (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		username       TEXT     NOT NULL UNIQUE,
		password_hash  TEXT     NOT NULL,
		created_at     DATETIME NOT NULL,
		last_access_at DATETIME NULL
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		admin_id   INTEGER  NOT NULL REFERENCES admin_users(id) ON DELETE CASCADE,
		token_hash TEXT     NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL
	)`,
}

// Migrate creates any missing tables and indexes.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	stmts := mysqlSchema
	if d == SQLite {
		stmts = sqliteSchema
	}
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
