package service

import (
	"context"
	"time"

	"github.com/iliyamo/festa-do-viso/internal/model"
	"github.com/iliyamo/festa-do-viso/internal/repository"
)

// SheetStore is the persistence the sheet and claim services need.
type SheetStore interface {
	Create(ctx context.Context, s *model.Sheet) error
	GetByID(ctx context.Context, id uint64) (*model.Sheet, error)
	Exists(ctx context.Context, id uint64) (bool, error)
	IsActive(ctx context.Context, id uint64) (bool, error)
	ListAll(ctx context.Context) ([]*model.Sheet, error)
	ListActive(ctx context.Context) ([]*model.Sheet, error)
	ToggleActive(ctx context.Context, id uint64) (*model.Sheet, error)
	DeleteCascade(ctx context.Context, id uint64) (*model.Sheet, error)
}

// ClaimStore persists claims.  Insert must rely on a unique index for
// (sheet, number) and report a duplicate as repository.ErrNumberTaken.
type ClaimStore interface {
	Insert(ctx context.Context, c *model.Claim) error
	OccupiedNumbers(ctx context.Context, sheetID uint64) ([]int, error)
	GetBySheetAndNumber(ctx context.Context, sheetID uint64, number int) (*model.Claim, error)
	ListBySheet(ctx context.Context, sheetID uint64) ([]*model.Claim, error)
	DeleteByID(ctx context.Context, id uint64) (*model.Claim, error)
}

// WinnerStore persists draw results.  Resolve returns (nil, nil) when
// nobody holds the winning number.
type WinnerStore interface {
	Resolve(ctx context.Context, sheetID uint64, drawDate time.Time, number int, now time.Time) (*model.WinnerRecord, error)
	FindByDateAndSheet(ctx context.Context, sheetID uint64, drawDate time.Time) (*model.WinnerRecord, error)
	ListAll(ctx context.Context) ([]*model.WinnerRecord, error)
	ListBySheet(ctx context.Context, sheetID uint64) ([]*model.WinnerRecord, error)
	DeleteByID(ctx context.Context, id uint64) (*model.WinnerRecord, error)
}

// CountStore reads the aggregate counts in one snapshot.
type CountStore interface {
	Counts(ctx context.Context) (repository.Counts, error)
}

// AdminStore reads admin credentials.
type AdminStore interface {
	GetByUsername(ctx context.Context, username string) (*model.AdminCredential, error)
	GetByID(ctx context.Context, id uint64) (*model.AdminCredential, error)
	TouchLastAccess(ctx context.Context, id uint64, at time.Time) error
}

// TokenStore keeps hashed refresh tokens.
type TokenStore interface {
	StoreRefresh(ctx context.Context, adminID uint64, tokenHash string, exp time.Time) error
	Consume(ctx context.Context, tokenHash string) (uint64, error)
	RevokeAllForAdmin(ctx context.Context, adminID uint64) error
}

var (
	_ SheetStore  = (*repository.SheetRepo)(nil)
	_ ClaimStore  = (*repository.ClaimRepo)(nil)
	_ WinnerStore = (*repository.WinnerRepo)(nil)
	_ CountStore  = (*repository.StatsRepo)(nil)
	_ AdminStore  = (*repository.AdminRepo)(nil)
	_ TokenStore  = (*repository.TokenRepo)(nil)
)
