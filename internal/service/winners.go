package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/festa-do-viso/internal/model"
	"github.com/iliyamo/festa-do-viso/internal/queue"
	"github.com/iliyamo/festa-do-viso/internal/repository"
)

// WinnerService resolves draws against the claims of a sheet.
type WinnerService struct {
	base
	sheets  SheetStore
	winners WinnerStore
}

func NewWinnerService(sheets SheetStore, winners WinnerStore, opts ...Option) *WinnerService {
	return &WinnerService{base: newBase(opts), sheets: sheets, winners: winners}
}

// Resolve records the draw of winningNumber on sheetID for drawDate.  When a
// participant holds the number the outcome is a winner and a record is
// persisted; otherwise the outcome is NoWinner and nothing is written.
// A second resolution of the same (sheet, date) fails with
// ErrAlreadyResolved.
func (s *WinnerService) Resolve(ctx context.Context, sheetID uint64, drawDate time.Time, winningNumber int) (model.Outcome, error) {
	if err := ValidateNumber(winningNumber); err != nil {
		return model.Outcome{}, err
	}
	if drawDate.IsZero() {
		return model.Outcome{}, ErrInvalidDate
	}
	y, m, d := drawDate.Date()
	drawDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	out := model.Outcome{
		Kind:          model.OutcomeNoWinner,
		SheetID:       sheetID,
		DrawDate:      drawDate,
		WinningNumber: winningNumber,
	}
	rec, err := s.winners.Resolve(ctx, sheetID, drawDate, winningNumber, s.now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSheetNotFound):
			return model.Outcome{}, ErrSheetNotFound
		case errors.Is(err, repository.ErrWinnerExists):
			return model.Outcome{}, ErrAlreadyResolved
		}
		return model.Outcome{}, storageErr("resolve draw", err)
	}
	if rec == nil {
		return out, nil
	}
	out.Kind = model.OutcomeWinner
	out.Winner = rec

	ev := s.event(queue.WinnerResolved)
	ev.SheetID, ev.SheetName, ev.WinnerID = rec.SheetID, rec.SheetName, rec.ID
	ev.Number, ev.Name, ev.DrawDate = rec.WinningNumber, rec.WinnerName, rec.DrawDate.Format(model.DateLayout)
	s.publish(ctx, ev)
	return out, nil
}

// FindByDateAndSheet returns the winner recorded for a draw, or nil.
// ErrSheetNotFound for an unknown sheet.
func (s *WinnerService) FindByDateAndSheet(ctx context.Context, sheetID uint64, drawDate time.Time) (*model.WinnerRecord, error) {
	if err := s.requireSheet(ctx, sheetID); err != nil {
		return nil, err
	}
	rec, err := s.winners.FindByDateAndSheet(ctx, sheetID, drawDate)
	if errors.Is(err, repository.ErrWinnerNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("find winner", err)
	}
	return rec, nil
}

// ListWinners returns every winner record, latest draw first.
func (s *WinnerService) ListWinners(ctx context.Context) ([]*model.WinnerRecord, error) {
	out, err := s.winners.ListAll(ctx)
	if err != nil {
		return nil, storageErr("list winners", err)
	}
	return out, nil
}

// ListWinnersBySheet returns the winner records of one sheet.
func (s *WinnerService) ListWinnersBySheet(ctx context.Context, sheetID uint64) ([]*model.WinnerRecord, error) {
	if err := s.requireSheet(ctx, sheetID); err != nil {
		return nil, err
	}
	out, err := s.winners.ListBySheet(ctx, sheetID)
	if err != nil {
		return nil, storageErr("list winners", err)
	}
	return out, nil
}

// DeleteWinner removes a winner record.
func (s *WinnerService) DeleteWinner(ctx context.Context, id uint64) error {
	rec, err := s.winners.DeleteByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrWinnerNotFound) {
			return ErrWinnerNotFound
		}
		return storageErr("delete winner", err)
	}

	ev := s.event(queue.WinnerDeleted)
	ev.SheetID, ev.SheetName, ev.WinnerID = rec.SheetID, rec.SheetName, rec.ID
	ev.DrawDate = rec.DrawDate.Format(model.DateLayout)
	s.publish(ctx, ev)
	return nil
}

func (s *WinnerService) requireSheet(ctx context.Context, sheetID uint64) error {
	ok, err := s.sheets.Exists(ctx, sheetID)
	if err != nil {
		return storageErr("check sheet", err)
	}
	if !ok {
		return ErrSheetNotFound
	}
	return nil
}
