package model

import "time"

// Claim is a participant's registration of one number on one sheet.  At
// most one claim exists per (SheetID, Number); the database enforces it
// with a unique index.  Claims are never updated, only inserted and
// (by an admin) deleted.
type Claim struct {
    ID        uint64    // claims.id
    SheetID   uint64    // claims.sheet_id
    Number    int       // claims.number (1..49)
    Name      string    // claims.name
    Contact   string    // claims.contact (9 digits)
    CreatedAt time.Time // claims.created_at
}
