package service

import (
	"context"
	"errors"

	"github.com/iliyamo/festa-do-viso/internal/model"
	"github.com/iliyamo/festa-do-viso/internal/queue"
	"github.com/iliyamo/festa-do-viso/internal/repository"
)

// SheetService manages the lifecycle of sheets.  At least one sheet always
// exists: Delete refuses to remove the last one.
type SheetService struct {
	base
	sheets SheetStore
}

func NewSheetService(sheets SheetStore, opts ...Option) *SheetService {
	return &SheetService{base: newBase(opts), sheets: sheets}
}

// Create adds a new active sheet.
func (s *SheetService) Create(ctx context.Context, name string) (*model.Sheet, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	sh := &model.Sheet{Name: name, Active: true, CreatedAt: s.now()}
	if err := s.sheets.Create(ctx, sh); err != nil {
		return nil, storageErr("create sheet", err)
	}

	ev := s.event(queue.SheetCreated)
	ev.SheetID, ev.SheetName = sh.ID, sh.Name
	s.publish(ctx, ev)
	return sh, nil
}

// Get returns one sheet with its claim count.
func (s *SheetService) Get(ctx context.Context, id uint64) (*model.Sheet, error) {
	sh, err := s.sheets.GetByID(ctx, id)
	if err != nil {
		return nil, mapSheetErr("get sheet", err)
	}
	return sh, nil
}

// ToggleActive flips the active flag and returns the updated sheet.
func (s *SheetService) ToggleActive(ctx context.Context, id uint64) (*model.Sheet, error) {
	sh, err := s.sheets.ToggleActive(ctx, id)
	if err != nil {
		return nil, mapSheetErr("toggle sheet", err)
	}

	ev := s.event(queue.SheetToggled)
	active := sh.Active
	ev.SheetID, ev.SheetName, ev.Active = sh.ID, sh.Name, &active
	s.publish(ctx, ev)
	return sh, nil
}

// Delete removes a sheet with all its claims and winner records in one
// transaction.  Deleting the only sheet fails with ErrLastSheet.
func (s *SheetService) Delete(ctx context.Context, id uint64) error {
	sh, err := s.sheets.DeleteCascade(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrLastSheet) {
			return ErrLastSheet
		}
		return mapSheetErr("delete sheet", err)
	}

	ev := s.event(queue.SheetDeleted)
	ev.SheetID, ev.SheetName = sh.ID, sh.Name
	s.publish(ctx, ev)
	return nil
}

// ListAll returns every sheet, newest first.
func (s *SheetService) ListAll(ctx context.Context) ([]*model.Sheet, error) {
	out, err := s.sheets.ListAll(ctx)
	if err != nil {
		return nil, storageErr("list sheets", err)
	}
	return out, nil
}

// ListActive returns the active sheets, newest first.
func (s *SheetService) ListActive(ctx context.Context) ([]*model.Sheet, error) {
	out, err := s.sheets.ListActive(ctx)
	if err != nil {
		return nil, storageErr("list active sheets", err)
	}
	return out, nil
}

func mapSheetErr(op string, err error) error {
	if errors.Is(err, repository.ErrSheetNotFound) {
		return ErrSheetNotFound
	}
	return storageErr(op, err)
}
