// Package queue defines the raffle events exchanged over the message broker,
// the publishers and consumers for each supported backend, and the weekly
// draw reminder.
package queue

import (
    "time"

    "github.com/google/uuid"
)

// EventType names what happened.
type EventType string

const (
    ClaimAllocated EventType = "claim.allocated"
    ClaimDeleted   EventType = "claim.deleted"
    SheetCreated   EventType = "sheet.created"
    SheetToggled   EventType = "sheet.toggled"
    SheetDeleted   EventType = "sheet.deleted"
    WinnerResolved EventType = "winner.resolved"
    WinnerDeleted  EventType = "winner.deleted"
    DrawReminder   EventType = "draw.reminder"
)

// RaffleEvent is published after a committed change (or by the reminder).
// It never carries a participant's contact number.
type RaffleEvent struct {
    ID           string    `json:"id"`
    Type         EventType `json:"type"`
    OccurredAt   time.Time `json:"occurred_at"`
    SheetID      uint64    `json:"sheet_id,omitempty"`
    SheetName    string    `json:"sheet_name,omitempty"`
    Active       *bool     `json:"active,omitempty"`
    ClaimID      uint64    `json:"claim_id,omitempty"`
    WinnerID     uint64    `json:"winner_id,omitempty"`
    Number       int       `json:"number,omitempty"`
    Name         string    `json:"name,omitempty"`
    DrawDate     string    `json:"draw_date,omitempty"`
    ActiveSheets int       `json:"active_sheets,omitempty"`
    FreeNumbers  int       `json:"free_numbers,omitempty"`
    Message      string    `json:"message,omitempty"`
}

// NewEvent returns an event of type t with a fresh id.
func NewEvent(t EventType, at time.Time) RaffleEvent {
    return RaffleEvent{ID: uuid.NewString(), Type: t, OccurredAt: at.UTC()}
}
