package events

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Handler receives events. A returned error (or a panic) is logged and does
// not stop delivery to later subscribers.
type Handler func(Event) error

type subscription struct {
	id   uint64
	kind Kind
	fn   Handler
}

// Bus is a per-instance event bus. The zero value is not usable; call NewBus.
type Bus struct {
	log *zap.Logger

	mu       sync.Mutex
	subs     []subscription
	nextID   uint64
	queue    []Event
	draining bool
	closed   bool
}

var _ Publisher = (*Bus)(nil)

// NewBus returns an empty bus. A nil logger discards handler errors.
func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{log: log}
}

// Subscribe registers fn for events of kind; an empty kind receives every
// event. The returned function removes the subscription and is safe to call
// more than once.
func (b *Bus) Subscribe(kind Kind, fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || fn == nil {
		return func() {}
	}
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, kind: kind, fn: fn})
	return func() { b.remove(id) }
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers evs in order. See the package documentation for the
// reentrancy rules.
func (b *Bus) Publish(evs ...Event) {
	b.Enqueue(evs...)
	b.Flush()
}

// Enqueue appends evs to the delivery queue without delivering them. Callers
// holding a lock enqueue under it, so queue order follows lock order, and
// call Flush after releasing it.
func (b *Bus) Enqueue(evs ...Event) {
	if len(evs) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.queue = append(b.queue, evs...)
}

// Flush delivers queued events unless another caller is already doing so.
func (b *Bus) Flush() {
	b.mu.Lock()
	if b.closed || b.draining || len(b.queue) == 0 {
		b.mu.Unlock()
		return
	}
	b.draining = true
	b.mu.Unlock()

	b.drain()
}

func (b *Bus) drain() {
	for {
		b.mu.Lock()
		if len(b.queue) == 0 || b.closed {
			b.queue = nil
			b.draining = false
			b.mu.Unlock()
			return
		}
		ev := b.queue[0]
		b.queue = b.queue[1:]
		targets := make([]subscription, 0, len(b.subs))
		for _, s := range b.subs {
			if s.kind == "" || s.kind == ev.Kind {
				targets = append(targets, s)
			}
		}
		b.mu.Unlock()

		for _, s := range targets {
			b.deliver(s, ev)
		}
	}
}

func (b *Bus) deliver(s subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked",
				zap.String("kind", string(ev.Kind)),
				zap.Uint64("subscription", s.id),
				zap.String("panic", fmt.Sprint(r)))
		}
	}()
	if err := s.fn(ev); err != nil {
		b.log.Warn("event handler failed",
			zap.String("kind", string(ev.Kind)),
			zap.Uint64("subscription", s.id),
			zap.Error(err))
	}
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close drops every subscription and any queued events. Later publishes are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = nil
	b.queue = nil
}
