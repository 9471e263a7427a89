// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services to distinguish between different failure scenarios without
// inspecting driver errors.  Any other error returned by a repository is
// a storage failure.
package repository

import "errors"

// ErrSheetNotFound is returned when a sheet id does not exist, including
// when a claim references a sheet that was deleted concurrently.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrClaimNotFound is returned when no claim matches the lookup.
var ErrClaimNotFound = errors.New("claim not found")

// ErrWinnerNotFound is returned when no winner record matches the lookup.
var ErrWinnerNotFound = errors.New("winner not found")

// ErrAdminNotFound is returned when no admin matches the username or id.
var ErrAdminNotFound = errors.New("admin not found")

// ErrNumberTaken is returned when the (sheet, number) unique index rejects
// an insert.  Under concurrent claims exactly one insert succeeds and every
// other racer receives this error.
var ErrNumberTaken = errors.New("number already claimed")

// ErrWinnerExists is returned when a draw for the same (sheet, date) was
// already resolved.
var ErrWinnerExists = errors.New("draw already resolved")

// ErrLastSheet is returned when deleting the only remaining sheet.
var ErrLastSheet = errors.New("cannot delete the last sheet")

// ErrTokenInvalid is returned for unknown, revoked or expired refresh tokens.
var ErrTokenInvalid = errors.New("refresh token invalid")
