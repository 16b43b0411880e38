package state

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/five82/tablesync/internal/events"
	"github.com/five82/tablesync/internal/local"
	"github.com/five82/tablesync/internal/remote"
	"github.com/five82/tablesync/internal/selection"
	"github.com/five82/tablesync/internal/view"
)

const defaultPageSize = 10

// ViewState is the canonical description of the table view.
type ViewState struct {
	Page      int
	PageSize  int
	Sort      view.Sort
	Search    string
	Selection []string
	Rows      []any
	// RowIDs holds the selection id of each entry in Rows.
	RowIDs []string
	Total  int
}

// Query returns the part of the state that selects rows.
func (v ViewState) Query() view.Query {
	return view.Query{Page: v.Page, PageSize: v.PageSize, Search: v.Search, Sort: v.Sort}
}

// Snapshot is a point-in-time copy of the store for renderers and exporters.
type Snapshot struct {
	ViewState
	PageCount           int
	Loading             bool
	LastLoaded          time.Time
	LastError           error
	ConsecutiveFailures int // number of terminal failures since the last commit
}

// IsOffline returns true when the remote source has failed repeatedly.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Options configure a Store. Zero values pick the documented defaults.
type Options struct {
	Mode     Mode
	Columns  []view.Column
	PageSize int // default 10
	// Initial page, search and sort. They are applied without validation;
	// the first commit clamps the page into range.
	Initial view.Query

	// Rows is the local-mode collection.
	Rows []any

	// Remote configures the endpoint in remote mode. Transport and Clock
	// default to the HTTP client and the system clock.
	Remote    remote.Config
	Transport remote.Transport
	Clock     remote.Clock

	Selection selection.Mode
	// IDKey names the row field used as selection id. Remote mode defaults
	// to "id". Rows without the field fall back to their position.
	IDKey string
	// PruneSelection drops selected ids that are not on the committed page.
	PruneSelection bool

	Logger *zap.Logger
}

// Store owns the ViewState. All mutations, engine callbacks and commits are
// serialized by a single lock; events are queued under it and delivered
// after it is released.
//
// Mutations return once the state has changed, not once subscribers have
// seen it: if a transport callback is delivering events at the same moment,
// the mutation's own events are delivered by that goroutine and may arrive
// after the mutation returns. Order is preserved either way.
type Store struct {
	id      string
	mode    Mode
	columns []view.Column
	idKey   string
	prune   bool
	log     *zap.Logger
	bus     *events.Bus

	mu         sync.Mutex
	state      ViewState
	sel        *selection.Tracker
	local      *local.Engine
	remote     *remote.Engine
	// settled is the query in effect when the open debounce window began.
	settled    view.Query
	lastErr    error
	failures   int
	lastLoaded time.Time
	closed     bool
}

// New builds a Store. Misconfiguration (unknown mode, remote mode without an
// endpoint, invalid columns) is the only error New returns.
func New(opts Options) (*Store, error) {
	pageSize := opts.PageSize
	if pageSize == 0 {
		pageSize = defaultPageSize
	}
	if pageSize < 0 {
		return nil, view.Errorf(view.KindConfig, "new", "page size must be positive, got %d", pageSize)
	}
	for i, col := range opts.Columns {
		if strings.TrimSpace(col.Key) == "" {
			return nil, view.Errorf(view.KindConfig, "new", "column %d has no key", i)
		}
	}

	id := uuid.NewString()
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("instance", id), zap.String("mode", opts.Mode.String()))

	s := &Store{
		id:      id,
		mode:    opts.Mode,
		columns: slices.Clone(opts.Columns),
		idKey:   strings.TrimSpace(opts.IDKey),
		prune:   opts.PruneSelection,
		log:     log,
		bus:     events.NewBus(log),
		sel:     selection.New(opts.Selection),
	}
	s.state = ViewState{
		Page:     max(opts.Initial.Page, 1),
		PageSize: pageSize,
		Search:   opts.Initial.Search,
	}
	if sortCol := opts.Initial.Sort.Column; sortCol != "" {
		if _, ok := s.sortableColumn(sortCol); ok {
			dir := opts.Initial.Sort.Direction
			if dir == view.Unspecified {
				dir = view.Asc
			}
			s.state.Sort = view.Sort{Column: sortCol, Direction: dir}
		} else {
			log.Warn("ignoring initial sort on unknown column", zap.String("column", sortCol))
		}
	}

	switch opts.Mode {
	case Local:
		s.local = local.New(opts.Rows, s.columns)
		s.runLocalLocked()
		s.bus.Flush()
	case Remote:
		if s.idKey == "" {
			s.idKey = "id"
		}
		eng, err := remote.New(remote.Options{
			Config:    opts.Remote,
			Transport: opts.Transport,
			Clock:     opts.Clock,
			Bus:       s.bus,
			Logger:    log,
			Locker:    &s.mu,
			Sink:      s,
		})
		if err != nil {
			return nil, err
		}
		s.remote = eng
	default:
		return nil, view.Errorf(view.KindConfig, "new", "unknown mode %d", opts.Mode)
	}

	log.Debug("table store ready", zap.Int("page_size", pageSize), zap.Int("columns", len(s.columns)))
	return s, nil
}

// ID returns the instance id used to tag log lines.
func (s *Store) ID() string { return s.id }

// Mode returns the routing mode fixed at construction.
func (s *Store) Mode() Mode { return s.mode }

// Columns returns a copy of the configured columns.
func (s *Store) Columns() []view.Column { return slices.Clone(s.columns) }

// Remote returns the remote engine, or nil in local mode.
func (s *Store) Remote() *remote.Engine { return s.remote }

// Subscribe registers fn on the store's event bus. See events.Bus.Subscribe.
func (s *Store) Subscribe(kind events.Kind, fn events.Handler) (unsubscribe func()) {
	return s.bus.Subscribe(kind, fn)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ViewState:           s.state,
		PageCount:           view.PageCount(s.state.Total, s.state.PageSize),
		LastLoaded:          s.lastLoaded,
		LastError:           s.lastErr,
		ConsecutiveFailures: s.failures,
	}
	snap.Rows = slices.Clone(s.state.Rows)
	snap.RowIDs = slices.Clone(s.state.RowIDs)
	snap.Selection = s.sel.IDs()
	if s.remote != nil {
		snap.Loading = s.remote.BusyLocked()
	}
	return snap
}

// PageCount returns max(1, ceil(total/pageSize)).
func (s *Store) PageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return view.PageCount(s.state.Total, s.state.PageSize)
}

// Close cancels in-flight remote work, waits for it to drain and releases
// every subscription. The store ignores all calls afterwards.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.remote != nil {
		s.remote.CloseLocked()
	}
	s.mu.Unlock()

	if s.remote != nil {
		s.remote.Wait()
	}
	s.bus.Close()
	s.log.Debug("table store closed")
}

func (s *Store) sortableColumn(key string) (view.Column, bool) {
	for _, col := range s.columns {
		if col.Key == key {
			return col, col.Sortable
		}
	}
	return view.Column{}, false
}

func (s *Store) warnLocked(op, msg string) {
	s.log.Warn("mutation rejected", zap.String("op", op), zap.String("reason", msg))
	s.bus.Enqueue(events.Event{Kind: events.Warning, Payload: events.Warn{Op: op, Message: msg}})
}

func (s *Store) changeLocked(field string, old, next any) {
	s.bus.Enqueue(events.Event{Kind: events.StateChange, Payload: events.Change{Field: field, OldValue: old, NewValue: next}})
}

func (s *Store) setQueryLocked(q view.Query) {
	s.state.Page = q.Page
	s.state.PageSize = q.PageSize
	s.state.Search = q.Search
	s.state.Sort = q.Sort
}
