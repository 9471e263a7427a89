// Package service holds the raffle core: claim allocation, sheet lifecycle,
// winner resolution and statistics, plus admin authentication.  Services
// depend on small store interfaces so they can run over any repository
// implementation.
package service

import (
	"context"
	"time"

	"github.com/google/logger"

	"github.com/iliyamo/festa-do-viso/internal/queue"
)

// EventPublisher receives events after a change is committed.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.RaffleEvent) error
}

// Option configures a service.
type Option func(*base)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(b *base) { b.clock = now }
}

// WithPublisher sets the event sink.  Without one, no events are emitted.
func WithPublisher(p EventPublisher) Option {
	return func(b *base) { b.events = p }
}

const publishTimeout = 3 * time.Second

type base struct {
	clock  func() time.Time
	events EventPublisher
}

func newBase(opts []Option) base {
	b := base{clock: time.Now}
	for _, o := range opts {
		o(&b)
	}
	return b
}

// now is UTC truncated to milliseconds, the precision of the DATETIME(3)
// columns.
func (b *base) now() time.Time {
	return b.clock().UTC().Truncate(time.Millisecond)
}

func (b *base) event(t queue.EventType) queue.RaffleEvent {
	return queue.NewEvent(t, b.now())
}

// publish sends ev and only logs failures: the change is already committed.
func (b *base) publish(ctx context.Context, ev queue.RaffleEvent) {
	if b.events == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := b.events.Publish(pctx, ev); err != nil {
		logger.Warningf("events: publish %s (%s) failed: %v", ev.Type, ev.ID, err)
	}
}
