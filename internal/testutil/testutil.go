// Package testutil builds throwaway SQLite databases with the full schema
// for package tests.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/iliyamo/festa-do-viso/internal/database"
)

// SetupTestDB creates a fresh file-backed SQLite database with the full
// schema.  It is closed automatically when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "festa.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(context.Background(), db, database.SQLite); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// CreateTestSheet inserts a sheet directly and returns its id.
func CreateTestSheet(t *testing.T, db *sql.DB, name string, active bool) uint64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO sheets (name, active, created_at) VALUES (?, ?, ?)`,
		name, active, time.Now().UTC().Truncate(time.Millisecond))
	if err != nil {
		t.Fatalf("Failed to create test sheet: %v", err)
	}
	id, _ := res.LastInsertId()
	return uint64(id)
}

// AddTestClaim inserts a claim directly and returns its id.
func AddTestClaim(t *testing.T, db *sql.DB, sheetID uint64, number int, name, contact string) uint64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO claims (sheet_id, number, name, contact, created_at) VALUES (?, ?, ?, ?, ?)`,
		sheetID, number, name, contact, time.Now().UTC().Truncate(time.Millisecond))
	if err != nil {
		t.Fatalf("Failed to add test claim: %v", err)
	}
	id, _ := res.LastInsertId()
	return uint64(id)
}

// CountRows returns SELECT COUNT(*) for the given table and optional
// WHERE clause.
func CountRows(t *testing.T, db *sql.DB, table, where string, args ...any) int {
	t.Helper()
	q := "SELECT COUNT(*) FROM " + table
	if where != "" {
		q += " WHERE " + where
	}
	var n int
	if err := db.QueryRow(q, args...).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// SeedTestAdmin runs database.Seed with a fast bcrypt cost and returns the
// seeded admin's id.  Seed also adds the first sheet if the database has none.
func SeedTestAdmin(t *testing.T, db *sql.DB, username, password string) uint64 {
	t.Helper()
	res, err := database.Seed(context.Background(), db, database.SeedOptions{
		AdminUsername: username,
		AdminPassword: password,
		BcryptCost:    4,
	})
	if err != nil {
		t.Fatalf("Failed to seed test admin: %v", err)
	}
	if !res.AdminCreated {
		t.Fatal("Failed to seed test admin: an admin already exists")
	}
	var id uint64
	if err := db.QueryRow(`SELECT id FROM admin_users WHERE username = ?`, username).Scan(&id); err != nil {
		t.Fatalf("Failed to load test admin: %v", err)
	}
	return id
}
