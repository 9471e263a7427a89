package queue

import (
    "context"
    "errors"
    "os"
    "strings"
    "sync"
    "testing"
    "time"

    "github.com/iliyamo/festa-do-viso/internal/config"
    "github.com/iliyamo/festa-do-viso/internal/model"
)

type recordingPublisher struct {
    mu     sync.Mutex
    events []RaffleEvent
    err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev RaffleEvent) error {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.err != nil {
        return p.err
    }
    p.events = append(p.events, ev)
    return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fakeLister struct {
    sheets []*model.Sheet
    err    error
}

func (f fakeLister) ListActive(context.Context) ([]*model.Sheet, error) { return f.sheets, f.err }

func TestNextRun(t *testing.T) {
    lisbon, err := time.LoadLocation("Europe/Lisbon")
    if err != nil {
        t.Skipf("tzdata unavailable: %v", err)
    }
    tests := []struct {
        name string
        from time.Time
        want time.Time
    }{
        {"wednesday morning", time.Date(2026, 10, 14, 9, 0, 0, 0, lisbon), time.Date(2026, 10, 16, 22, 0, 0, 0, lisbon)},
        {"friday before draw", time.Date(2026, 10, 16, 21, 59, 0, 0, lisbon), time.Date(2026, 10, 16, 22, 0, 0, 0, lisbon)},
        {"friday at draw", time.Date(2026, 10, 16, 22, 0, 0, 0, lisbon), time.Date(2026, 10, 23, 22, 0, 0, 0, lisbon)},
        {"saturday", time.Date(2026, 10, 17, 1, 0, 0, 0, lisbon), time.Date(2026, 10, 23, 22, 0, 0, 0, lisbon)},
        {"dst change week", time.Date(2026, 10, 24, 12, 0, 0, 0, lisbon), time.Date(2026, 10, 30, 22, 0, 0, 0, lisbon)},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            got := NextRun(tt.from, time.Friday, 22, 0, lisbon)
            if !got.Equal(tt.want) {
                t.Errorf("NextRun(%s) = %s, want %s", tt.from, got, tt.want)
            }
        })
    }
}

func TestReminderFire(t *testing.T) {
    at := time.Date(2026, 10, 16, 21, 0, 0, 0, time.UTC)

    t.Run("no active sheets", func(t *testing.T) {
        pub := &recordingPublisher{}
        r := &Reminder{Sheets: fakeLister{}, Events: pub, Hour: 22, Now: func() time.Time { return at }}
        sent, err := r.Fire(context.Background())
        if err != nil || sent {
            t.Fatalf("expected nothing sent, got sent=%v err=%v", sent, err)
        }
        if len(pub.events) != 0 {
            t.Errorf("expected no events, got %d", len(pub.events))
        }
    })

    t.Run("active sheets", func(t *testing.T) {
        pub := &recordingPublisher{}
        sheets := []*model.Sheet{
            {ID: 1, Name: "Semana 1", Active: true, ClaimedCount: 9},
            {ID: 2, Name: "Semana 2", Active: true, ClaimedCount: 49},
        }
        r := &Reminder{Sheets: fakeLister{sheets: sheets}, Events: pub, Hour: 22, Now: func() time.Time { return at }}
        sent, err := r.Fire(context.Background())
        if err != nil || !sent {
            t.Fatalf("expected reminder sent, got sent=%v err=%v", sent, err)
        }
        ev := pub.events[0]
        if ev.Type != DrawReminder || ev.ActiveSheets != 2 || ev.FreeNumbers != 40 {
            t.Errorf("unexpected event: %+v", ev)
        }
        if !strings.Contains(ev.Message, "22:00") {
            t.Errorf("message missing draw time: %q", ev.Message)
        }
    })

    t.Run("list failure", func(t *testing.T) {
        r := &Reminder{Sheets: fakeLister{err: errors.New("db down")}, Events: &recordingPublisher{}}
        if _, err := r.Fire(context.Background()); err == nil {
            t.Fatal("expected error")
        }
    })
}

func TestReminderRunStopsOnCancel(t *testing.T) {
    ctx, cancel := context.WithCancel(context.Background())
    done := make(chan struct{})
    r := &Reminder{Sheets: fakeLister{}, Events: NopPublisher{}, Weekday: time.Friday, Hour: 22}
    go func() {
        r.Run(ctx)
        close(done)
    }()
    cancel()
    select {
    case <-done:
    case <-time.After(2 * time.Second):
        t.Fatal("Run did not return after cancel")
    }
}

func TestEventLogAppends(t *testing.T) {
    dir := t.TempDir()
    at := time.Date(2026, 10, 16, 22, 0, 0, 0, time.UTC)
    l := NewEventLog(dir)
    l.Now = func() time.Time { return at.Add(2 * time.Hour) }

    ev := NewEvent(ClaimAllocated, at)
    ev.SheetID, ev.SheetName, ev.Number, ev.Name = 1, "Semana 1", 7, "Maria Silva"
    if err := l.Handle(ev); err != nil {
        t.Fatalf("Handle: %v", err)
    }
    win := NewEvent(WinnerResolved, at)
    win.SheetID, win.SheetName, win.Number, win.Name, win.DrawDate = 1, "Semana 1", 7, "Maria Silva", "2026-10-16"
    if err := l.Handle(win); err != nil {
        t.Fatalf("Handle: %v", err)
    }

    data, err := os.ReadFile(l.Path())
    if err != nil {
        t.Fatalf("read log: %v", err)
    }
    lines := strings.Split(strings.TrimSpace(string(data)), "\n")
    if len(lines) != 2 {
        t.Fatalf("expected 2 lines, got %d: %q", len(lines), data)
    }
    if !strings.Contains(lines[0], `Number 7 claimed by Maria Silva on "Semana 1"`) || !strings.Contains(lines[0], "2 hours ago") {
        t.Errorf("unexpected first line: %q", lines[0])
    }
    if !strings.Contains(lines[1], "Draw 2026-10-16") {
        t.Errorf("unexpected second line: %q", lines[1])
    }
}

func TestDispatchRejectsGarbage(t *testing.T) {
    called := false
    err := dispatch([]byte("{not json"), func(RaffleEvent) error { called = true; return nil })
    if err == nil || called {
        t.Fatalf("expected unmarshal error without handler call, got err=%v called=%v", err, called)
    }
    err = dispatch([]byte(`{"id":"x","type":"sheet.created","sheet_name":"Semana 2"}`), func(ev RaffleEvent) error {
        if ev.Type != SheetCreated || ev.SheetName != "Semana 2" {
            t.Errorf("unexpected event %+v", ev)
        }
        return nil
    })
    if err != nil {
        t.Fatalf("dispatch: %v", err)
    }
}

func TestNewPublisher(t *testing.T) {
    p, err := NewPublisher(config.EventsConfig{Backend: config.EventsNone})
    if err != nil {
        t.Fatalf("NewPublisher: %v", err)
    }
    if _, ok := p.(NopPublisher); !ok {
        t.Errorf("expected NopPublisher, got %T", p)
    }
    if _, err := NewPublisher(config.EventsConfig{Backend: "carrier-pigeon"}); err == nil {
        t.Error("expected error for unknown backend")
    }
    kp, err := NewPublisher(config.EventsConfig{Backend: config.EventsKafka, KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "t"})
    if err != nil {
        t.Fatalf("NewPublisher kafka: %v", err)
    }
    _ = kp.Close()
}

func TestStartConsumerNone(t *testing.T) {
    if err := StartConsumer(context.Background(), config.EventsConfig{Backend: config.EventsNone}, nil); err != nil {
        t.Fatalf("expected nil for none backend, got %v", err)
    }
}
