package queue

import (
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "sync"
    "time"

    "github.com/dustin/go-humanize"
)

// EventLog appends one human-readable line per event to <Dir>/raffle.log.
type EventLog struct {
    Dir string
    Now func() time.Time

    mu sync.Mutex
}

// NewEventLog returns an EventLog writing under dir.
func NewEventLog(dir string) *EventLog {
    if dir == "" {
        dir = "logs"
    }
    return &EventLog{Dir: dir, Now: time.Now}
}

// Path is the log file location.
func (l *EventLog) Path() string { return filepath.Join(l.Dir, "raffle.log") }

// Handle satisfies Handler.
func (l *EventLog) Handle(ev RaffleEvent) error {
    l.mu.Lock()
    defer l.mu.Unlock()

    if err := os.MkdirAll(l.Dir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(l.Path(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatLine(ev, l.Now()) + "\n"); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatLine renders ev for the event log.  now is used for the relative
// age of the event.
func FormatLine(ev RaffleEvent, now time.Time) string {
    var b strings.Builder
    fmt.Fprintf(&b, "[%s] %s (%s)", ev.OccurredAt.Format(time.RFC3339), describe(ev),
        humanize.RelTime(ev.OccurredAt, now, "ago", "from now"))
    fmt.Fprintf(&b, " | id=%s", ev.ID)
    if ev.SheetID != 0 {
        fmt.Fprintf(&b, " | sheet_id=%d", ev.SheetID)
    }
    return b.String()
}

func describe(ev RaffleEvent) string {
    sheet := fmt.Sprintf("%q", ev.SheetName)
    switch ev.Type {
    case ClaimAllocated:
        return fmt.Sprintf("Number %d claimed by %s on %s", ev.Number, ev.Name, sheet)
    case ClaimDeleted:
        return fmt.Sprintf("Claim on number %d removed from sheet %d", ev.Number, ev.SheetID)
    case SheetCreated:
        return fmt.Sprintf("Sheet %s created", sheet)
    case SheetToggled:
        state := "inactive"
        if ev.Active != nil && *ev.Active {
            state = "active"
        }
        return fmt.Sprintf("Sheet %s is now %s", sheet, state)
    case SheetDeleted:
        return fmt.Sprintf("Sheet %s deleted", sheet)
    case WinnerResolved:
        return fmt.Sprintf("Draw %s on %s: number %d won by %s", ev.DrawDate, sheet, ev.Number, ev.Name)
    case WinnerDeleted:
        return fmt.Sprintf("Winner record for draw %s on sheet %d removed", ev.DrawDate, ev.SheetID)
    case DrawReminder:
        return fmt.Sprintf("Draw reminder: %s active %s, %s free %s",
            humanize.Comma(int64(ev.ActiveSheets)), plural(ev.ActiveSheets, "sheet", "sheets"),
            humanize.Comma(int64(ev.FreeNumbers)), plural(ev.FreeNumbers, "number", "numbers"))
    }
    return string(ev.Type)
}

func plural(n int, one, many string) string {
    if n == 1 {
        return one
    }
    return many
}
