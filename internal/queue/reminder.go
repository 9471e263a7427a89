package queue

import (
    "context"
    "fmt"
    "time"

    "github.com/dustin/go-humanize"
    "github.com/google/logger"

    "github.com/iliyamo/festa-do-viso/internal/model"
)

// ActiveSheetLister is the read-only view of the raffle the reminder needs.
type ActiveSheetLister interface {
    ListActive(ctx context.Context) ([]*model.Sheet, error)
}

// Reminder publishes a draw.reminder event once a week at a fixed local
// time when at least one sheet is active.  It never writes to the raffle.
type Reminder struct {
    Sheets  ActiveSheetLister
    Events  Publisher
    Weekday time.Weekday
    Hour    int
    Minute  int
    Loc     *time.Location
    Timeout time.Duration
    Now     func() time.Time
}

// NextRun returns the first instant strictly after from that falls on
// weekday at hour:minute in loc.
func NextRun(from time.Time, weekday time.Weekday, hour, minute int, loc *time.Location) time.Time {
    if loc == nil {
        loc = time.UTC
    }
    local := from.In(loc)
    days := (int(weekday) - int(local.Weekday()) + 7) % 7
    next := time.Date(local.Year(), local.Month(), local.Day()+days, hour, minute, 0, 0, loc)
    if !next.After(local) {
        next = time.Date(local.Year(), local.Month(), local.Day()+days+7, hour, minute, 0, 0, loc)
    }
    return next
}

// Run sleeps until each scheduled time and fires.  It returns when ctx is
// cancelled.
func (r *Reminder) Run(ctx context.Context) {
    now := r.now
    for {
        next := NextRun(now(), r.Weekday, r.Hour, r.Minute, r.Loc)
        logger.Infof("reminder: next draw reminder %s (%s)", humanize.Time(next), next.Format(time.RFC1123))
        if !sleep(ctx, next.Sub(now())) {
            return
        }
        fctx, cancel := context.WithTimeout(ctx, r.timeout())
        sent, err := r.Fire(fctx)
        cancel()
        switch {
        case err != nil:
            logger.Errorf("reminder: %v", err)
        case !sent:
            logger.Infof("reminder: no active sheets, nothing sent")
        }
    }
}

// Fire checks the active sheets and publishes the reminder when there is at
// least one.  It reports whether an event was published.
func (r *Reminder) Fire(ctx context.Context) (bool, error) {
    sheets, err := r.Sheets.ListActive(ctx)
    if err != nil {
        return false, fmt.Errorf("list active sheets: %w", err)
    }
    if len(sheets) == 0 {
        return false, nil
    }
    free := 0
    for _, s := range sheets {
        free += s.Available()
    }
    ev := NewEvent(DrawReminder, r.now())
    ev.ActiveSheets = len(sheets)
    ev.FreeNumbers = free
    ev.Message = fmt.Sprintf("O sorteio é hoje às %02d:%02d! %s folha(s) ativa(s), %s números livres.",
        r.Hour, r.Minute, humanize.Comma(int64(len(sheets))), humanize.Comma(int64(free)))
    if len(sheets) == 1 {
        ev.SheetID = sheets[0].ID
        ev.SheetName = sheets[0].Name
    }
    if err := r.Events.Publish(ctx, ev); err != nil {
        return false, fmt.Errorf("publish reminder: %w", err)
    }
    return true, nil
}

func (r *Reminder) now() time.Time {
    if r.Now != nil {
        return r.Now()
    }
    return time.Now()
}

func (r *Reminder) timeout() time.Duration {
    if r.Timeout > 0 {
        return r.Timeout
    }
    return 10 * time.Second
}
