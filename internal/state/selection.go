package state

import "github.com/five82/tablesync/internal/selection"

// Select adds or removes id. In single mode selecting an id replaces the
// previous one.
// Its events may reach subscribers after it returns; see Store.
func (s *Store) Select(id string, selected bool) bool {
	return s.mutate(func() bool {
		before := s.sel.IDs()
		if !s.sel.Select(id, selected) {
			return false
		}
		s.changeLocked("selection", before, s.sel.IDs())
		return true
	})
}

// SelectAll selects or deselects every visible row. Selecting all is
// refused in single mode.
// Its events may reach subscribers after it returns; see Store.
func (s *Store) SelectAll(selected bool) bool {
	return s.mutate(func() bool {
		if selected && s.sel.Mode() == selection.Single {
			s.warnLocked("selectAll", "select all is not available in single selection mode")
			return false
		}
		before := s.sel.IDs()
		if !s.sel.SelectAll(s.state.RowIDs, selected) {
			return false
		}
		s.changeLocked("selection", before, s.sel.IDs())
		return true
	})
}

// ClearSelection empties the selection.
// Its events may reach subscribers after it returns; see Store.
func (s *Store) ClearSelection() bool {
	return s.mutate(func() bool {
		before := s.sel.IDs()
		if !s.sel.Clear() {
			return false
		}
		s.changeLocked("selection", before, s.sel.IDs())
		return true
	})
}

// IsSelected reports whether id is tracked.
func (s *Store) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Has(id)
}

// SelectedIDs returns every tracked id, including ids not on the current
// page.
func (s *Store) SelectedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.IDs()
}

// Selected returns the visible rows whose ids are tracked, in page order.
func (s *Store) Selected() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []any
	for i, id := range s.state.RowIDs {
		if s.sel.Has(id) {
			rows = append(rows, s.state.Rows[i])
		}
	}
	return rows
}
