package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/festa-do-viso/internal/database"
	"github.com/iliyamo/festa-do-viso/internal/model"
	"github.com/iliyamo/festa-do-viso/internal/testutil"
)

func newClaim(sheetID uint64, number int, name string) *model.Claim {
	return &model.Claim{SheetID: sheetID, Number: number, Name: name, Contact: "912345678",
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond)}
}

func TestClaimInsertEnforcesUniqueness(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	claims := NewClaimRepo(db, database.SQLite)
	sheetID := testutil.CreateTestSheet(t, db, "Semana 1", true)

	first := newClaim(sheetID, 7, "Maria Silva")
	if err := claims.Insert(ctx, first); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if first.ID == 0 {
		t.Error("expected ID to be set")
	}
	if err := claims.Insert(ctx, newClaim(sheetID, 7, "João")); !errors.Is(err, ErrNumberTaken) {
		t.Fatalf("expected ErrNumberTaken, got %v", err)
	}

	// Same number on another sheet is fine.
	other := testutil.CreateTestSheet(t, db, "Semana 2", true)
	if err := claims.Insert(ctx, newClaim(other, 7, "João")); err != nil {
		t.Fatalf("insert on other sheet: %v", err)
	}
}

func TestClaimInsertUnknownSheet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	claims := NewClaimRepo(db, database.SQLite)
	err := claims.Insert(context.Background(), newClaim(999, 1, "Maria Silva"))
	if !errors.Is(err, ErrSheetNotFound) {
		t.Fatalf("expected ErrSheetNotFound, got %v", err)
	}
}

func TestClaimLookups(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	claims := NewClaimRepo(db, database.SQLite)
	sheetID := testutil.CreateTestSheet(t, db, "Semana 1", true)
	for _, n := range []int{42, 3, 17} {
		testutil.AddTestClaim(t, db, sheetID, n, "Pessoa", "912345678")
	}

	nums, err := claims.OccupiedNumbers(ctx, sheetID)
	if err != nil {
		t.Fatalf("OccupiedNumbers: %v", err)
	}
	if len(nums) != 3 || nums[0] != 3 || nums[1] != 17 || nums[2] != 42 {
		t.Errorf("expected [3 17 42], got %v", nums)
	}

	c, err := claims.GetBySheetAndNumber(ctx, sheetID, 17)
	if err != nil || c.Number != 17 || c.Contact != "912345678" {
		t.Fatalf("GetBySheetAndNumber: %+v, %v", c, err)
	}
	if _, err := claims.GetBySheetAndNumber(ctx, sheetID, 18); !errors.Is(err, ErrClaimNotFound) {
		t.Errorf("expected ErrClaimNotFound, got %v", err)
	}

	list, err := claims.ListBySheet(ctx, sheetID)
	if err != nil || len(list) != 3 || list[0].Number != 3 {
		t.Fatalf("ListBySheet: %v, %v", list, err)
	}

	deleted, err := claims.DeleteByID(ctx, c.ID)
	if err != nil || deleted.Number != 17 {
		t.Fatalf("DeleteByID: %+v, %v", deleted, err)
	}
	if _, err := claims.DeleteByID(ctx, c.ID); !errors.Is(err, ErrClaimNotFound) {
		t.Errorf("expected ErrClaimNotFound on second delete, got %v", err)
	}
}

func TestSheetListOrderAndCounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	sheets := NewSheetRepo(db, database.SQLite)

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	names := []string{"Semana 1", "Semana 2", "Semana 3"}
	ids := make([]uint64, len(names))
	for i, name := range names {
		s := &model.Sheet{Name: name, Active: i != 1, CreatedAt: base.Add(time.Duration(i) * 24 * time.Hour)}
		if err := sheets.Create(ctx, s); err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids[i] = s.ID
	}
	testutil.AddTestClaim(t, db, ids[0], 1, "Maria Silva", "912345678")
	testutil.AddTestClaim(t, db, ids[0], 2, "João", "987654321")

	all, err := sheets.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 3 || all[0].Name != "Semana 3" || all[2].Name != "Semana 1" {
		t.Fatalf("expected newest first, got %+v", all)
	}
	if all[2].ClaimedCount != 2 || all[2].Available() != 47 {
		t.Errorf("expected 2 claimed on Semana 1, got %d", all[2].ClaimedCount)
	}
	if !all[2].CreatedAt.Equal(base) {
		t.Errorf("created_at round trip: got %s want %s", all[2].CreatedAt, base)
	}

	active, err := sheets.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 2 || active[0].Name != "Semana 3" || active[1].Name != "Semana 1" {
		t.Errorf("unexpected active list %+v", active)
	}
}

func TestSheetToggle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	sheets := NewSheetRepo(db, database.SQLite)
	id := testutil.CreateTestSheet(t, db, "Semana 1", true)

	s, err := sheets.ToggleActive(ctx, id)
	if err != nil || s.Active {
		t.Fatalf("expected inactive after toggle, got %+v, %v", s, err)
	}
	s, err = sheets.ToggleActive(ctx, id)
	if err != nil || !s.Active {
		t.Fatalf("expected active after second toggle, got %+v, %v", s, err)
	}
	if _, err := sheets.ToggleActive(ctx, 999); !errors.Is(err, ErrSheetNotFound) {
		t.Errorf("expected ErrSheetNotFound, got %v", err)
	}
	if active, err := sheets.IsActive(ctx, id); err != nil || !active {
		t.Errorf("IsActive: %v, %v", active, err)
	}
}

func TestSheetDeleteCascade(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	sheets := NewSheetRepo(db, database.SQLite)
	winners := NewWinnerRepo(db, database.SQLite)

	doomed := testutil.CreateTestSheet(t, db, "Semana 1", true)
	keep := testutil.CreateTestSheet(t, db, "Semana 2", true)
	testutil.AddTestClaim(t, db, doomed, 7, "Maria Silva", "912345678")
	testutil.AddTestClaim(t, db, doomed, 8, "João", "987654321")
	testutil.AddTestClaim(t, db, keep, 7, "Ana", "911111111")
	draw := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	if _, err := winners.Resolve(ctx, doomed, draw, 7, time.Now().UTC()); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	deleted, err := sheets.DeleteCascade(ctx, doomed)
	if err != nil {
		t.Fatalf("DeleteCascade: %v", err)
	}
	if deleted.Name != "Semana 1" || deleted.ClaimedCount != 2 {
		t.Errorf("unexpected deleted sheet %+v", deleted)
	}
	if n := testutil.CountRows(t, db, "claims", "sheet_id = ?", doomed); n != 0 {
		t.Errorf("expected claims removed, %d left", n)
	}
	if n := testutil.CountRows(t, db, "winners", "sheet_id = ?", doomed); n != 0 {
		t.Errorf("expected winners removed, %d left", n)
	}
	if n := testutil.CountRows(t, db, "claims", "sheet_id = ?", keep); n != 1 {
		t.Errorf("other sheet's claims touched: %d", n)
	}

	if _, err := sheets.DeleteCascade(ctx, keep); !errors.Is(err, ErrLastSheet) {
		t.Fatalf("expected ErrLastSheet, got %v", err)
	}
	if _, err := sheets.DeleteCascade(ctx, doomed); !errors.Is(err, ErrSheetNotFound) {
		t.Fatalf("expected ErrSheetNotFound, got %v", err)
	}
	if n := testutil.CountRows(t, db, "sheets", ""); n != 1 {
		t.Errorf("expected one sheet left, got %d", n)
	}
}

func TestWinnerResolve(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	winners := NewWinnerRepo(db, database.SQLite)
	sheetID := testutil.CreateTestSheet(t, db, "Semana 1", true)
	testutil.AddTestClaim(t, db, sheetID, 7, "Maria Silva", "912345678")
	draw := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 10, 16, 22, 5, 0, 0, time.UTC)

	rec, err := winners.Resolve(ctx, sheetID, draw, 8, now)
	if err != nil || rec != nil {
		t.Fatalf("expected no winner for free number, got %+v, %v", rec, err)
	}
	if n := testutil.CountRows(t, db, "winners", ""); n != 0 {
		t.Fatalf("no-winner draw must not write, found %d rows", n)
	}

	rec, err = winners.Resolve(ctx, sheetID, draw, 7, now)
	if err != nil || rec == nil {
		t.Fatalf("expected winner, got %+v, %v", rec, err)
	}
	if rec.SheetName != "Semana 1" || rec.WinnerName != "Maria Silva" || rec.WinnerContact != "912345678" || rec.ID == 0 {
		t.Errorf("unexpected record %+v", rec)
	}

	if _, err := winners.Resolve(ctx, sheetID, draw, 7, now); !errors.Is(err, ErrWinnerExists) {
		t.Errorf("expected ErrWinnerExists, got %v", err)
	}
	if _, err := winners.Resolve(ctx, sheetID, draw, 8, now); !errors.Is(err, ErrWinnerExists) {
		t.Errorf("expected ErrWinnerExists for a resolved date even with a free number, got %v", err)
	}
	if _, err := winners.Resolve(ctx, 999, draw, 7, now); !errors.Is(err, ErrSheetNotFound) {
		t.Errorf("expected ErrSheetNotFound, got %v", err)
	}

	found, err := winners.FindByDateAndSheet(ctx, sheetID, draw)
	if err != nil {
		t.Fatalf("FindByDateAndSheet: %v", err)
	}
	if found.ID != rec.ID || !found.DrawDate.Equal(draw) || found.WinningNumber != 7 {
		t.Errorf("unexpected lookup %+v", found)
	}
	if _, err := winners.FindByDateAndSheet(ctx, sheetID, draw.AddDate(0, 0, 7)); !errors.Is(err, ErrWinnerNotFound) {
		t.Errorf("expected ErrWinnerNotFound, got %v", err)
	}
}

func TestWinnerListAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	winners := NewWinnerRepo(db, database.SQLite)
	sheetID := testutil.CreateTestSheet(t, db, "Semana 1", true)
	testutil.AddTestClaim(t, db, sheetID, 7, "Maria Silva", "912345678")
	testutil.AddTestClaim(t, db, sheetID, 9, "João", "987654321")

	first := time.Date(2026, 10, 9, 0, 0, 0, 0, time.UTC)
	second := first.AddDate(0, 0, 7)
	if _, err := winners.Resolve(ctx, sheetID, first, 7, time.Now().UTC()); err != nil {
		t.Fatal(err)
	}
	latest, err := winners.Resolve(ctx, sheetID, second, 9, time.Now().UTC())
	if err != nil {
		t.Fatal(err)
	}

	all, err := winners.ListAll(ctx)
	if err != nil || len(all) != 2 || all[0].ID != latest.ID {
		t.Fatalf("expected latest draw first, got %+v, %v", all, err)
	}
	bySheet, err := winners.ListBySheet(ctx, sheetID)
	if err != nil || len(bySheet) != 2 {
		t.Fatalf("ListBySheet: %+v, %v", bySheet, err)
	}

	deleted, err := winners.DeleteByID(ctx, latest.ID)
	if err != nil || deleted.WinnerName != "João" {
		t.Fatalf("DeleteByID: %+v, %v", deleted, err)
	}
	if _, err := winners.DeleteByID(ctx, latest.ID); !errors.Is(err, ErrWinnerNotFound) {
		t.Errorf("expected ErrWinnerNotFound, got %v", err)
	}
}

func TestStatsCounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	active := testutil.CreateTestSheet(t, db, "Semana 1", true)
	inactive := testutil.CreateTestSheet(t, db, "Semana 0", false)
	testutil.AddTestClaim(t, db, active, 1, "Maria Silva", "912345678")
	testutil.AddTestClaim(t, db, inactive, 1, "João", "987654321")
	testutil.AddTestClaim(t, db, inactive, 2, "Ana", "911111111")
	if _, err := NewWinnerRepo(db, database.SQLite).Resolve(ctx, active, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), 1, time.Now().UTC()); err != nil {
		t.Fatal(err)
	}

	c, err := NewStatsRepo(db).Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	want := Counts{TotalSheets: 2, ActiveSheets: 1, Claims: 3, ActiveClaims: 1, Winners: 1}
	if c != want {
		t.Errorf("Counts = %+v, want %+v", c, want)
	}
}

func TestAdminAndTokens(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	admins := NewAdminRepo(db)
	tokens := NewTokenRepo(db)

	id := testutil.SeedTestAdmin(t, db, "admin", "admin123")
	a, err := admins.GetByUsername(ctx, " admin ")
	if err != nil || a.ID != id || a.LastAccessAt != nil {
		t.Fatalf("GetByUsername: %+v, %v", a, err)
	}
	at := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	if err := admins.TouchLastAccess(ctx, id, at); err != nil {
		t.Fatalf("TouchLastAccess: %v", err)
	}
	a, _ = admins.GetByID(ctx, id)
	if a.LastAccessAt == nil || !a.LastAccessAt.Equal(at) {
		t.Errorf("expected last access %s, got %v", at, a.LastAccessAt)
	}
	if _, err := admins.GetByUsername(ctx, "nobody"); !errors.Is(err, ErrAdminNotFound) {
		t.Errorf("expected ErrAdminNotFound, got %v", err)
	}

	for _, h := range []string{"a", "b"} {
		if err := tokens.StoreRefresh(ctx, id, h, time.Now().Add(time.Hour)); err != nil {
			t.Fatalf("StoreRefresh: %v", err)
		}
	}
	if err := tokens.RevokeAllForAdmin(ctx, id); err != nil {
		t.Fatalf("RevokeAllForAdmin: %v", err)
	}
	for _, h := range []string{"a", "b"} {
		if _, err := tokens.Consume(ctx, h); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("token %s survived RevokeAllForAdmin: %v", h, err)
		}
	}
}

func TestTokenConsumeOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	id := testutil.SeedTestAdmin(t, db, "admin", "admin123")
	tokens := NewTokenRepo(db)
	if err := tokens.StoreRefresh(ctx, id, "h1", time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := tokens.StoreRefresh(ctx, id, "old", time.Now().Add(-time.Minute)); err != nil {
		t.Fatal(err)
	}

	got, err := tokens.Consume(ctx, "h1")
	if err != nil || got != id {
		t.Fatalf("Consume = %d, %v", got, err)
	}
	if _, err := tokens.Consume(ctx, "h1"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("second Consume = %v", err)
	}
	if _, err := tokens.Consume(ctx, "old"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expired Consume = %v", err)
	}
	if _, err := tokens.Consume(ctx, "missing"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("unknown Consume = %v", err)
	}
}
