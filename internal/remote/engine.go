package remote

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/tablesync/internal/events"
	"github.com/five82/tablesync/internal/view"
)

// maxRecords bounds the per-token table; older settled tokens are forgotten.
const maxRecords = 64

// Sink receives settled outcomes. Every method is called with the shared
// lock held and must not try to acquire it.
type Sink interface {
	CommitLocked(token uint64, page Page)
	FailLocked(token uint64, err error)
	// DropLocked is called when the pre-send hook vetoes the request a
	// debounce window would have issued for q.
	DropLocked(q view.Query)
}

// Options wire an Engine into its owner.
type Options struct {
	Config    Config
	Transport Transport // default: NewClient(nil)
	Clock     Clock     // default: SystemClock
	Bus       events.Publisher
	Logger    *zap.Logger
	// Locker is shared with the Sink. Methods with a Locked suffix expect
	// the caller to hold it; callbacks from timers and transport goroutines
	// acquire it themselves.
	Locker sync.Locker
	Sink   Sink
}

type record struct {
	params  Params
	payload any
	status  Status
	attempt int
	cancel  context.CancelFunc
	retry   Timer
}

// Engine turns queries into a sequenced request/response protocol against a
// remote endpoint. Only the response for the latest issued token may commit.
type Engine struct {
	cfg       Config
	transport Transport
	clock     Clock
	bus       events.Publisher
	log       *zap.Logger
	mu        sync.Locker
	sink      Sink

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	latest      uint64
	records     map[uint64]*record
	debounce    Timer
	debounceGen uint64
	pending     view.Query
	closed      bool
}

// New validates the configuration and returns an idle engine.
func New(opts Options) (*Engine, error) {
	cfg := opts.Config.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if opts.Sink == nil {
		return nil, view.Errorf(view.KindConfig, "remote", "sink is required")
	}
	if opts.Bus == nil {
		return nil, view.Errorf(view.KindConfig, "remote", "event bus is required")
	}
	e := &Engine{
		cfg:       cfg,
		transport: opts.Transport,
		clock:     opts.Clock,
		bus:       opts.Bus,
		log:       opts.Logger,
		mu:        opts.Locker,
		sink:      opts.Sink,
		records:   make(map[uint64]*record),
	}
	if e.transport == nil {
		e.transport = NewClient(nil)
	}
	if e.clock == nil {
		e.clock = SystemClock{}
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.mu == nil {
		e.mu = &sync.Mutex{}
	}
	e.ctx, e.cancel = context.WithCancel(context.Background())
	return e, nil
}

// Config returns the effective configuration after defaults.
func (e *Engine) Config() Config { return e.cfg }

// DispatchLocked issues a request for q immediately. It reports false when
// the pre-send hook vetoed the request or the engine is closed.
func (e *Engine) DispatchLocked(q view.Query) (uint64, bool) {
	p, ok := e.PrepareLocked(q)
	if !ok {
		return 0, false
	}
	return e.SendLocked(p), true
}

// PrepareLocked builds the parameters for the next token and consults the
// pre-send hook. Nothing is issued until SendLocked is called with the
// result under the same lock hold.
func (e *Engine) PrepareLocked(q view.Query) (Params, bool) {
	if e.closed {
		return Params{}, false
	}
	p := NewParams(q, e.latest+1)
	if pre := e.cfg.Hooks.PreSend; pre != nil && !pre(p) {
		e.log.Debug("request vetoed", zap.Int("page", q.Page), zap.String("search", q.Search))
		return Params{}, false
	}
	return p, true
}

// SendLocked issues a prepared request, cancelling any pending debounce and
// superseding every in-flight token.
func (e *Engine) SendLocked(p Params) uint64 {
	if e.closed {
		return 0
	}
	e.stopDebounceLocked()
	return e.issueLocked(p)
}

// ScheduleLocked coalesces q into the debounce window. When the window
// elapses without another call, a request carrying the latest q is issued.
func (e *Engine) ScheduleLocked(q view.Query) {
	if e.closed {
		return
	}
	e.stopDebounceLocked()
	if e.cfg.Debounce <= 0 {
		e.flushScheduledLocked(q)
		return
	}
	e.pending = q
	gen := e.debounceGen
	e.debounce = e.clock.AfterFunc(e.cfg.Debounce, func() { e.fire(gen) })
}

// DebouncingLocked reports whether a debounce window is open.
func (e *Engine) DebouncingLocked() bool {
	return e.debounce != nil
}

// BusyLocked reports whether a debounce or request is outstanding.
func (e *Engine) BusyLocked() bool {
	if e.debounce != nil {
		return true
	}
	if rec, ok := e.records[e.latest]; ok {
		return rec.status.Active()
	}
	return false
}

// Latest returns the most recently issued token, zero before the first request.
func (e *Engine) Latest() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.latest
}

// Status returns the state of token, if it is still tracked.
func (e *Engine) Status(token uint64) (Status, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.records[token]
	if !ok {
		return 0, false
	}
	return rec.status, true
}

// CloseLocked cancels all outstanding work. Call Wait after releasing the
// lock to let in-flight transport goroutines drain.
func (e *Engine) CloseLocked() {
	if e.closed {
		return
	}
	e.closed = true
	e.stopDebounceLocked()
	for _, rec := range e.records {
		if rec.status.Active() {
			e.cancelRecordLocked(rec)
		}
	}
	e.cancel()
}

// Wait blocks until every transport goroutine has returned.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) stopDebounceLocked() {
	if e.debounce != nil {
		e.debounce.Stop()
		e.debounce = nil
	}
	e.debounceGen++
}

func (e *Engine) fire(gen uint64) {
	e.mu.Lock()
	if e.closed || gen != e.debounceGen || e.debounce == nil {
		e.mu.Unlock()
		return
	}
	e.debounce = nil
	e.flushScheduledLocked(e.pending)
	e.mu.Unlock()
	e.bus.Flush()
}

func (e *Engine) flushScheduledLocked(q view.Query) {
	p, ok := e.PrepareLocked(q)
	if !ok {
		e.sink.DropLocked(q)
		return
	}
	e.issueLocked(p)
}

func (e *Engine) issueLocked(params Params) uint64 {
	token := params.Token
	e.latest = token

	for tok, rec := range e.records {
		if tok != token && rec.status.Active() {
			e.cancelRecordLocked(rec)
			e.log.Debug("request superseded", zap.Uint64("token", tok), zap.Uint64("by", token))
		}
	}

	var payload any = params
	if mapper := e.cfg.Hooks.MapParams; mapper != nil {
		payload = mapper(params)
	}
	rec := &record{params: params, payload: payload, status: Pending}
	e.records[token] = rec
	if token > maxRecords {
		for tok := range e.records {
			if tok <= token-maxRecords {
				delete(e.records, tok)
			}
		}
	}
	e.startAttemptLocked(token, rec)
	return token
}

func (e *Engine) cancelRecordLocked(rec *record) {
	rec.status = Cancelled
	if rec.cancel != nil {
		rec.cancel()
	}
	if rec.retry != nil {
		rec.retry.Stop()
		rec.retry = nil
	}
}

func (e *Engine) startAttemptLocked(token uint64, rec *record) {
	rec.attempt++
	rec.status = Pending
	rec.retry = nil
	attempt := rec.attempt

	ctx, cancel := context.WithTimeout(e.ctx, e.cfg.Timeout)
	rec.cancel = cancel
	req := Request{
		URL:     e.cfg.URL,
		Method:  e.cfg.Method,
		Headers: e.cfg.Headers,
		Payload: rec.payload,
	}
	e.bus.Enqueue(events.Event{Kind: events.RequestStart, Payload: requestInfo(rec.params)})
	e.log.Debug("request sent",
		zap.Uint64("token", token),
		zap.Int("attempt", attempt),
		zap.Int("page", rec.params.Page),
		zap.String("search", rec.params.Search))

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer cancel()
		body, err := e.transport.Send(ctx, req)
		if err == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("request timed out after %s", e.cfg.Timeout)
		}
		e.complete(token, attempt, body, err)
	}()
}

func (e *Engine) complete(token uint64, attempt int, body any, sendErr error) {
	e.mu.Lock()
	rec := e.records[token]
	if e.closed || rec == nil || rec.status != Pending || rec.attempt != attempt || token != e.latest {
		e.mu.Unlock()
		e.log.Debug("discarding superseded response", zap.Uint64("token", token), zap.Int("attempt", attempt))
		return
	}

	var (
		page Page
		err  = view.Wrap(view.KindTransport, "send", sendErr)
	)
	if err == nil {
		var echoed uint64
		var hasEcho bool
		page, echoed, hasEcho, err = extract(body, e.cfg.Paths)
		if err == nil && hasEcho && echoed != e.latest {
			rec.status = RejectedStale
			e.mu.Unlock()
			e.log.Debug("discarding stale response", zap.Uint64("token", token), zap.Uint64("echoed", echoed))
			return
		}
	}

	e.bus.Enqueue(events.Event{Kind: events.RequestEnd, Payload: requestInfo(rec.params)})

	var onComplete func()
	var onError func()
	if err != nil {
		if e.failLocked(token, rec, err) {
			if hook := e.cfg.Hooks.OnError; hook != nil {
				onError = func() { hook(err) }
			}
		}
	} else {
		rec.status = Accepted
		page.Token = token
		page.Query = rec.params.Query()
		e.sink.CommitLocked(token, page)
		if hook := e.cfg.Hooks.OnComplete; hook != nil {
			onComplete = func() { hook(page) }
		}
	}
	e.mu.Unlock()
	e.bus.Flush()

	if onComplete != nil {
		onComplete()
	}
	if onError != nil {
		onError()
	}
}

// failLocked feeds the retry policy and reports whether the failure is terminal.
func (e *Engine) failLocked(token uint64, rec *record, err error) bool {
	rec.status = Failed
	rec.cancel = nil
	if rec.attempt < e.cfg.MaxRetries {
		delay := time.Duration(rec.attempt) * e.cfg.RetryBaseDelay
		attempt := rec.attempt
		rec.status = Retrying
		rec.retry = e.clock.AfterFunc(delay, func() { e.retry(token, attempt) })
		e.log.Warn("request attempt failed, retrying",
			zap.Uint64("token", token),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
		return false
	}
	rec.status = FailedTerminal
	e.log.Error("request failed",
		zap.Uint64("token", token),
		zap.Int("attempts", rec.attempt),
		zap.Error(err))
	e.sink.FailLocked(token, err)
	return true
}

func (e *Engine) retry(token uint64, attempt int) {
	e.mu.Lock()
	rec := e.records[token]
	if e.closed || rec == nil || rec.status != Retrying || rec.attempt != attempt || token != e.latest {
		e.mu.Unlock()
		return
	}
	e.startAttemptLocked(token, rec)
	e.mu.Unlock()
	e.bus.Flush()
}

func requestInfo(p Params) events.RequestInfo {
	info := events.RequestInfo{
		Token:   p.Token,
		Page:    p.Page,
		Search:  p.Search,
		SortDir: p.SortDir,
	}
	if p.SortBy != nil {
		info.SortBy = *p.SortBy
	}
	return info
}
