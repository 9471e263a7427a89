package model

import "time"

// RoleAdmin is the only role issued in access tokens.
const RoleAdmin = "ADMIN"

// AdminCredential is an organizer account.  Only the bcrypt hash of the
// password is kept.  LastAccessAt is nil until the first successful login.
type AdminCredential struct {
    ID           uint64
    Username     string
    PasswordHash string
    CreatedAt    time.Time
    LastAccessAt *time.Time
}
