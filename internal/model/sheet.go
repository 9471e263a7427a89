package model

import "time"

// Numbers on a sheet run from MinNumber to MaxNumber inclusive.  Every
// sheet has the same fixed grid, so the capacity of a sheet is always
// SheetCapacity.
const (
    MinNumber     = 1
    MaxNumber     = 49
    SheetCapacity = MaxNumber - MinNumber + 1
)

// MinNameLength is the minimum number of characters (runes, after
// trimming) required for participant names and sheet names.
const MinNameLength = 3

// Sheet represents one raffle sheet (a "folha"), typically one per week.
// This struct corresponds to a row in the `sheets` table.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name, e.g. "Semana 1".
//  Active       – whether the sheet is open for display and claims.
//  CreatedAt    – timestamp when the sheet was created (UTC).
//  ClaimedCount – derived count of claims, filled by listing queries only.
type Sheet struct {
    ID           uint64    // sheets.id
    Name         string    // sheets.name
    Active       bool      // sheets.active
    CreatedAt    time.Time // sheets.created_at
    ClaimedCount int       // COUNT(claims) for list views
}

// Available returns how many numbers on the sheet are still free, based on
// ClaimedCount.
func (s Sheet) Available() int {
    n := SheetCapacity - s.ClaimedCount
    if n < 0 {
        return 0
    }
    return n
}
