// Package remotetest provides a hand-driven clock and a scripted transport
// for exercising the remote engine deterministically.
package remotetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/five82/tablesync/internal/remote"
)

var (
	_ remote.Clock     = (*ManualClock)(nil)
	_ remote.Transport = (*Transport)(nil)
)

// ManualClock only moves when Advance is called. Due callbacks run
// synchronously on the goroutine calling Advance, earliest first.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	clock   *ManualClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// NewManualClock returns a clock starting at the Unix epoch.
func NewManualClock() *ManualClock {
	return &ManualClock{now: time.Unix(0, 0)}
}

func (c *ManualClock) AfterFunc(d time.Duration, f func()) remote.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every timer that comes due,
// including timers scheduled by the callbacks themselves.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *manualTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.compact()
			c.mu.Unlock()
			return
		}
		next.fired = true
		if next.at.After(c.now) {
			c.now = next.at
		}
		c.mu.Unlock()
		next.f()
	}
}

// Pending returns the number of timers that have neither fired nor been stopped.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (c *ManualClock) compact() {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	c.timers = live
}

// Call is one request captured by Transport, waiting for a reply.
type Call struct {
	Ctx     context.Context
	Request remote.Request
	reply   chan reply
}

type reply struct {
	body any
	err  error
}

// Respond completes the call successfully with body.
func (c *Call) Respond(body any) {
	c.reply <- reply{body: body}
}

// Fail completes the call with err.
func (c *Call) Fail(err error) {
	c.reply <- reply{err: err}
}

// Params returns the request payload as remote.Params. It panics when a
// parameter mapper replaced the payload with another type.
func (c *Call) Params() remote.Params {
	return c.Request.Payload.(remote.Params)
}

// Transport captures every Send. With Handler set it answers inline;
// otherwise each call is delivered on Calls and blocks until the test
// responds or the request context ends.
type Transport struct {
	Handler func(ctx context.Context, req remote.Request) (any, error)
	Calls   chan *Call

	mu       sync.Mutex
	requests []remote.Request
}

// NewTransport returns a Transport with a buffered Calls channel.
func NewTransport() *Transport {
	return &Transport{Calls: make(chan *Call, 64)}
}

func (t *Transport) Send(ctx context.Context, req remote.Request) (any, error) {
	t.mu.Lock()
	t.requests = append(t.requests, req)
	handler := t.Handler
	t.mu.Unlock()

	if handler != nil {
		return handler(ctx, req)
	}
	call := &Call{Ctx: ctx, Request: req, reply: make(chan reply, 1)}
	t.Calls <- call
	select {
	case r := <-call.reply:
		return r.body, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Next waits up to two seconds for the next captured call.
func (t *Transport) Next(tb testing.TB) *Call {
	tb.Helper()
	select {
	case call := <-t.Calls:
		return call
	case <-time.After(2 * time.Second):
		tb.Fatalf("timed out waiting for a transport call")
		return nil
	}
}

// Count returns how many requests were sent so far.
func (t *Transport) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.requests)
}

// Requests returns a copy of every request sent so far.
func (t *Transport) Requests() []remote.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]remote.Request(nil), t.requests...)
}

// Body builds a response in the default shape {data, total, draw, error}.
func Body(rows []any, total int, token uint64) map[string]any {
	return map[string]any{
		"data":  rows,
		"total": total,
		"draw":  token,
		"error": nil,
	}
}
