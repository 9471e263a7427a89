package service

import (
	"context"
	"errors"

	"github.com/iliyamo/festa-do-viso/internal/model"
	"github.com/iliyamo/festa-do-viso/internal/queue"
	"github.com/iliyamo/festa-do-viso/internal/repository"
)

// ClaimService allocates numbers to participants.  The decision between two
// racing claims for the same number is made by the store's unique index,
// never by a read before the write.
type ClaimService struct {
	base
	sheets        SheetStore
	claims        ClaimStore
	requireActive bool
}

// NewClaimService builds the allocation engine.  When requireActive is set,
// claims on inactive sheets are refused with ErrSheetInactive.
func NewClaimService(sheets SheetStore, claims ClaimStore, requireActive bool, opts ...Option) *ClaimService {
	return &ClaimService{base: newBase(opts), sheets: sheets, claims: claims, requireActive: requireActive}
}

// Allocate claims number on sheetID for a participant and returns the
// stored claim.
func (s *ClaimService) Allocate(ctx context.Context, sheetID uint64, number int, name, contact string) (*model.Claim, error) {
	if err := ValidateNumber(number); err != nil {
		return nil, err
	}
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	contact, err = NormalizeContact(contact)
	if err != nil {
		return nil, err
	}
	if s.requireActive {
		active, err := s.sheets.IsActive(ctx, sheetID)
		if err != nil {
			return nil, mapSheetErr("check sheet", err)
		}
		if !active {
			return nil, ErrSheetInactive
		}
	}

	c := &model.Claim{
		SheetID:   sheetID,
		Number:    number,
		Name:      name,
		Contact:   contact,
		CreatedAt: s.now(),
	}
	if err := s.claims.Insert(ctx, c); err != nil {
		switch {
		case errors.Is(err, repository.ErrNumberTaken):
			return nil, ErrAlreadyClaimed
		case errors.Is(err, repository.ErrSheetNotFound):
			return nil, ErrSheetNotFound
		}
		return nil, storageErr("insert claim", err)
	}

	ev := s.event(queue.ClaimAllocated)
	ev.SheetID, ev.ClaimID, ev.Number, ev.Name = c.SheetID, c.ID, c.Number, c.Name
	if sh, err := s.sheets.GetByID(ctx, sheetID); err == nil {
		ev.SheetName = sh.Name
	}
	s.publish(ctx, ev)
	return c, nil
}

// OccupiedNumbers lists the claimed numbers of a sheet in ascending order.
func (s *ClaimService) OccupiedNumbers(ctx context.Context, sheetID uint64) ([]int, error) {
	if err := s.requireSheet(ctx, sheetID); err != nil {
		return nil, err
	}
	nums, err := s.claims.OccupiedNumbers(ctx, sheetID)
	if err != nil {
		return nil, storageErr("occupied numbers", err)
	}
	return nums, nil
}

// IsAvailable reports whether number is still free on sheetID.
func (s *ClaimService) IsAvailable(ctx context.Context, sheetID uint64, number int) (bool, error) {
	c, err := s.ClaimFor(ctx, sheetID, number)
	if err != nil {
		return false, err
	}
	return c == nil, nil
}

// ClaimFor returns the claim holding number on sheetID, or nil if free.
func (s *ClaimService) ClaimFor(ctx context.Context, sheetID uint64, number int) (*model.Claim, error) {
	if err := ValidateNumber(number); err != nil {
		return nil, err
	}
	if err := s.requireSheet(ctx, sheetID); err != nil {
		return nil, err
	}
	c, err := s.claims.GetBySheetAndNumber(ctx, sheetID, number)
	if errors.Is(err, repository.ErrClaimNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get claim", err)
	}
	return c, nil
}

// ListClaims returns every claim on a sheet, ordered by number.
func (s *ClaimService) ListClaims(ctx context.Context, sheetID uint64) ([]*model.Claim, error) {
	if err := s.requireSheet(ctx, sheetID); err != nil {
		return nil, err
	}
	out, err := s.claims.ListBySheet(ctx, sheetID)
	if err != nil {
		return nil, storageErr("list claims", err)
	}
	return out, nil
}

// DeleteClaim removes a claim, freeing its number.
func (s *ClaimService) DeleteClaim(ctx context.Context, claimID uint64) error {
	c, err := s.claims.DeleteByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, repository.ErrClaimNotFound) {
			return ErrClaimNotFound
		}
		return storageErr("delete claim", err)
	}

	ev := s.event(queue.ClaimDeleted)
	ev.SheetID, ev.ClaimID, ev.Number = c.SheetID, c.ID, c.Number
	s.publish(ctx, ev)
	return nil
}

func (s *ClaimService) requireSheet(ctx context.Context, sheetID uint64) error {
	ok, err := s.sheets.Exists(ctx, sheetID)
	if err != nil {
		return storageErr("check sheet", err)
	}
	if !ok {
		return ErrSheetNotFound
	}
	return nil
}
