// Package local implements the in-memory table engine: filter, then sort,
// then paginate. Every call is synchronous and pure with respect to the
// engine's row collection.
package local

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/five82/tablesync/internal/fieldpath"
	"github.com/five82/tablesync/internal/view"
)

// Engine holds the row collection and column definitions for local mode.
type Engine struct {
	rows    []any
	columns []view.Column
}

// New returns an engine over rows. The slice is copied.
func New(rows []any, columns []view.Column) *Engine {
	e := &Engine{columns: slices.Clone(columns)}
	e.SetRows(rows)
	return e
}

// SetRows replaces the row collection.
func (e *Engine) SetRows(rows []any) {
	e.rows = slices.Clone(rows)
}

// Len returns the size of the unfiltered collection.
func (e *Engine) Len() int { return len(e.rows) }

// Apply runs filter, sort and paginate for q.
func (e *Engine) Apply(q view.Query) view.Result {
	idx := e.filter(q.Search)
	e.sort(idx, q.Sort)
	total := len(idx)
	page := paginate(idx, q)

	out := view.Result{Total: total, Rows: make([]any, len(page)), Index: page}
	for i, src := range page {
		out.Rows[i] = e.rows[src]
	}
	return out
}

// filter returns source indices of rows where at least one searchable
// column's text contains term, compared case-insensitively.
func (e *Engine) filter(term string) []int {
	idx := make([]int, 0, len(e.rows))
	if term == "" {
		for i := range e.rows {
			idx = append(idx, i)
		}
		return idx
	}

	fold := cases.Fold()
	needle := fold.String(term)
	for i, row := range e.rows {
		for _, col := range e.columns {
			if !col.Searchable {
				continue
			}
			if strings.Contains(fold.String(Text(fieldpath.Get(row, col.Key))), needle) {
				idx = append(idx, i)
				break
			}
		}
	}
	return idx
}

func (e *Engine) sort(idx []int, s view.Sort) {
	if s.Column == "" {
		return
	}
	key := s.Column
	desc := s.Direction == view.Desc
	slices.SortStableFunc(idx, func(a, b int) int {
		c := Compare(fieldpath.Get(e.rows[a], key), fieldpath.Get(e.rows[b], key))
		if desc {
			return -c
		}
		return c
	})
}

func paginate(idx []int, q view.Query) []int {
	if q.PageSize <= 0 {
		return idx
	}
	start := q.Offset()
	if start < 0 || start >= len(idx) {
		return []int{}
	}
	end := len(idx)
	if q.PageSize < end-start {
		end = start + q.PageSize
	}
	return idx[start:end]
}

// Text is the string projection of a cell value used for searching and as
// the sort fallback. Nil projects to the empty string.
func Text(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case fmt.Stringer:
		return typed.String()
	}
	return fmt.Sprint(v)
}
