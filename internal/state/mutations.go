package state

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/five82/tablesync/internal/events"
	"github.com/five82/tablesync/internal/fieldpath"
	"github.com/five82/tablesync/internal/local"
	"github.com/five82/tablesync/internal/remote"
	"github.com/five82/tablesync/internal/view"
)

var _ remote.Sink = (*Store)(nil)

// mutate runs fn under the store lock and delivers the queued events once
// the lock is released.
func (s *Store) mutate(fn func() bool) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	ok := fn()
	s.mu.Unlock()
	s.bus.Flush()
	return ok
}

// SetPage moves to page n. Pages outside [1, PageCount] are rejected.
// Its events may reach subscribers after it returns; see Store.
func (s *Store) SetPage(n int) bool {
	return s.mutate(func() bool {
		if pc := view.PageCount(s.state.Total, s.state.PageSize); n < 1 || n > pc {
			s.warnLocked("setPage", fmt.Sprintf("page %d out of range 1..%d", n, pc))
			return false
		}
		q := s.state.Query()
		q.Page = n
		return s.applyLocked("page", s.state.Page, n, q, false)
	})
}

// SetPageSize changes the page size and returns to page 1.
// Its events may reach subscribers after it returns; see Store.
func (s *Store) SetPageSize(n int) bool {
	return s.mutate(func() bool {
		if n <= 0 {
			s.warnLocked("setPageSize", fmt.Sprintf("page size must be a positive integer, got %d", n))
			return false
		}
		q := s.state.Query()
		q.PageSize = n
		q.Page = 1
		return s.applyLocked("pageSize", s.state.PageSize, n, q, false)
	})
}

// SetSort sorts by column. An unspecified direction flips the current
// direction when column is already the sort column, otherwise sorts
// ascending. Returns to page 1.
// Its events may reach subscribers after it returns; see Store.
func (s *Store) SetSort(column string, dir view.Direction) bool {
	return s.mutate(func() bool {
		if _, ok := s.sortableColumn(column); !ok {
			s.warnLocked("setSort", fmt.Sprintf("unknown or unsortable column %q", column))
			return false
		}
		old := s.state.Sort
		next := view.Sort{Column: column, Direction: dir}
		if dir == view.Unspecified {
			next.Direction = view.Asc
			if old.Column == column && old.Direction != view.Unspecified {
				next.Direction = old.Direction.Flip()
			}
		}
		q := s.state.Query()
		q.Sort = next
		q.Page = 1
		return s.applyLocked("sort", old, next, q, false)
	})
}

// SetSearch changes the search term and returns to page 1. Remote mode
// dispatches after the debounce window; local mode filters immediately.
// Its events may reach subscribers after it returns; see Store.
func (s *Store) SetSearch(term string) bool {
	return s.mutate(func() bool {
		q := s.state.Query()
		q.Search = term
		q.Page = 1
		return s.applyLocked("search", s.state.Search, term, q, true)
	})
}

// Reload reconciles the current state again without changing it.
// Its events may reach subscribers after it returns; see Store.
func (s *Store) Reload() bool {
	return s.mutate(func() bool {
		if s.mode == Remote {
			_, ok := s.remote.DispatchLocked(s.state.Query())
			return ok
		}
		s.runLocalLocked()
		return true
	})
}

// SetRows replaces the local collection. It is rejected in remote mode.
// Its events may reach subscribers after it returns; see Store.
func (s *Store) SetRows(rows []any) bool {
	return s.mutate(func() bool {
		if s.mode != Local {
			s.warnLocked("setRows", "rows are owned by the remote source")
			return false
		}
		old := s.local.Len()
		s.local.SetRows(rows)
		s.changeLocked("rows", old, len(rows))
		s.runLocalLocked()
		return true
	})
}

// applyLocked commits q to the state and starts reconciliation. An immediate
// remote request vetoed by PreSend leaves the state untouched.
func (s *Store) applyLocked(field string, old, next any, q view.Query, debounce bool) bool {
	switch s.mode {
	case Remote:
		if debounce {
			if !s.remote.DebouncingLocked() {
				s.settled = s.state.Query()
			}
			s.setQueryLocked(q)
			s.changeLocked(field, old, next)
			s.remote.ScheduleLocked(q)
			return true
		}
		params, ok := s.remote.PrepareLocked(q)
		if !ok {
			s.log.Debug("mutation vetoed", zap.String("field", field))
			return false
		}
		s.setQueryLocked(q)
		s.changeLocked(field, old, next)
		s.remote.SendLocked(params)
	default:
		s.setQueryLocked(q)
		s.changeLocked(field, old, next)
		s.runLocalLocked()
	}
	return true
}

// runLocalLocked filters, sorts and paginates the local rows for the current
// state, clamping the page when the filtered set shrank below it.
func (s *Store) runLocalLocked() {
	res := s.local.Apply(s.state.Query())
	if pc := max(view.PageCount(res.Total, s.state.PageSize), 1); s.state.Page > pc {
		s.changeLocked("page", s.state.Page, pc)
		s.state.Page = pc
		res = s.local.Apply(s.state.Query())
	}

	ids := make([]string, len(res.Rows))
	for i, row := range res.Rows {
		ids[i] = s.rowID(row, res.Index[i])
	}
	s.loadLocked(res.Rows, res.Total, ids, s.state.Query())
}

// CommitLocked stores an accepted remote page. It is called by the remote
// engine with the store lock held.
func (s *Store) CommitLocked(token uint64, page remote.Page) {
	if s.closed {
		return
	}
	offset := min(page.Query.Offset(), math.MaxInt-len(page.Rows))
	ids := make([]string, len(page.Rows))
	for i, row := range page.Rows {
		ids[i] = s.rowID(row, offset+i)
	}
	s.failures = 0
	s.lastErr = nil
	s.loadLocked(page.Rows, page.Total, ids, page.Query)
	s.log.Debug("page committed",
		zap.Uint64("token", token),
		zap.Int("rows", len(page.Rows)),
		zap.Int("total", page.Total))

	if pc := max(view.PageCount(page.Total, s.state.PageSize), 1); s.state.Page > pc {
		s.changeLocked("page", s.state.Page, pc)
		s.state.Page = pc
		s.remote.DispatchLocked(s.state.Query())
	}
}

// DropLocked reverts a debounced search whose request was vetoed, so the
// state again describes the rows on screen.
func (s *Store) DropLocked(q view.Query) {
	if s.closed {
		return
	}
	prev := s.settled
	s.log.Debug("debounced request vetoed, reverting", zap.String("search", q.Search), zap.String("restored", prev.Search))
	if s.state.Search != prev.Search {
		s.changeLocked("search", s.state.Search, prev.Search)
	}
	if s.state.Page != prev.Page {
		s.changeLocked("page", s.state.Page, prev.Page)
	}
	s.setQueryLocked(prev)
}

// FailLocked records a terminal failure. Rows from the last commit stay in
// place.
func (s *Store) FailLocked(token uint64, err error) {
	if s.closed {
		return
	}
	s.lastErr = err
	s.failures++
	s.log.Error("request failed",
		zap.Uint64("token", token),
		zap.Int("consecutive_failures", s.failures),
		zap.Error(err))
	s.bus.Enqueue(events.Event{Kind: events.Error, Payload: events.Failure{
		Message: err.Error(),
		Page:    s.state.Page,
		Search:  s.state.Search,
		Err:     err,
	}})
}

func (s *Store) loadLocked(rows []any, total int, ids []string, q view.Query) {
	s.state.Rows = rows
	s.state.RowIDs = ids
	s.state.Total = total
	s.lastLoaded = time.Now()

	if s.prune {
		before := s.sel.IDs()
		if s.sel.Retain(ids) {
			s.changeLocked("selection", before, s.sel.IDs())
		}
	}

	s.bus.Enqueue(events.Event{Kind: events.DataLoaded, Payload: events.Loaded{
		Rows:    slices.Clone(rows),
		Total:   total,
		Page:    q.Page,
		Search:  q.Search,
		SortBy:  q.Sort.Column,
		SortDir: q.Sort.Direction,
	}})
}

// rowID returns the selection id for row: the id field when present,
// otherwise the row's position in the source.
func (s *Store) rowID(row any, pos int) string {
	if s.idKey != "" {
		if v, ok := fieldpath.Lookup(row, s.idKey); ok && v != nil {
			return local.Text(v)
		}
	}
	return strconv.Itoa(pos)
}
