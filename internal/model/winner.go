package model

import "time"

// DateLayout is the wire and storage format of draw dates.
const DateLayout = "2006-01-02"

// WinnerRecord stores the result of a draw for a sheet.  The sheet name and
// the winner's name and contact are copied at resolution time so the record
// stays readable even if the claim is later removed.
type WinnerRecord struct {
    ID            uint64    // winners.id
    SheetID       uint64    // winners.sheet_id
    SheetName     string    // winners.sheet_name
    DrawDate      time.Time // winners.draw_date (calendar date, UTC midnight)
    WinningNumber int       // winners.winning_number
    WinnerName    string    // winners.winner_name
    WinnerContact string    // winners.winner_contact
    CreatedAt     time.Time // winners.created_at
}

// OutcomeKind distinguishes the two results of a draw resolution.
type OutcomeKind string

const (
    OutcomeWinner   OutcomeKind = "winner"
    OutcomeNoWinner OutcomeKind = "no_winner"
)

// Outcome is returned by a draw resolution.  When Kind is OutcomeWinner the
// Winner field holds the persisted record; for OutcomeNoWinner it is nil and
// nothing was written.
type Outcome struct {
    Kind          OutcomeKind
    SheetID       uint64
    DrawDate      time.Time
    WinningNumber int
    Winner        *WinnerRecord
}

// HasWinner reports whether the draw produced a winner.
func (o Outcome) HasWinner() bool { return o.Kind == OutcomeWinner && o.Winner != nil }
