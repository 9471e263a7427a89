package service

import (
	"errors"
	"fmt"
)

// Error kinds.  Every error returned by this package matches exactly one of
// them with errors.Is, except ErrInvalidCredentials which belongs to the
// login flow only.  A draw without a winner is not an error; see
// model.Outcome.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrStorage      = errors.New("storage failure")
)

var (
	ErrSheetNotFound  = fmt.Errorf("sheet %w", ErrNotFound)
	ErrClaimNotFound  = fmt.Errorf("claim %w", ErrNotFound)
	ErrWinnerNotFound = fmt.Errorf("winner %w", ErrNotFound)

	ErrInvalidNumber  = fmt.Errorf("%w: number must be between 1 and 49", ErrInvalidInput)
	ErrInvalidName    = fmt.Errorf("%w: name must have at least 3 characters", ErrInvalidInput)
	ErrNameTooLong    = fmt.Errorf("%w: name is too long", ErrInvalidInput)
	ErrInvalidContact = fmt.Errorf("%w: contact must be exactly 9 digits", ErrInvalidInput)
	ErrInvalidDate    = fmt.Errorf("%w: draw date must be YYYY-MM-DD", ErrInvalidInput)

	ErrAlreadyClaimed  = fmt.Errorf("%w: number already claimed", ErrConflict)
	ErrLastSheet       = fmt.Errorf("%w: cannot delete the last sheet", ErrConflict)
	ErrAlreadyResolved = fmt.Errorf("%w: draw already resolved for this sheet and date", ErrConflict)
	ErrSheetInactive   = fmt.Errorf("%w: sheet is not active", ErrConflict)

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
)

// storageErr wraps an unexpected repository error.  Storage failures are
// surfaced, never retried.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
