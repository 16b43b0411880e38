package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tablesync/internal/view"
)

// handleKey processes keyboard input. Mutations go straight to the store;
// the resulting events bring a fresh snapshot back through Update.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}

	snap := m.store.Snapshot()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.table.SetStyles(m.theme.TableStyles())
		if m.onTheme != nil {
			m.onTheme(m.theme.Name)
		}

	case key.Matches(msg, m.keys.Reload):
		m.store.Reload()

	case key.Matches(msg, m.keys.NextPage):
		if snap.Page < snap.PageCount {
			m.store.SetPage(snap.Page + 1)
		}

	case key.Matches(msg, m.keys.PrevPage):
		if snap.Page > 1 {
			m.store.SetPage(snap.Page - 1)
		}

	case key.Matches(msg, m.keys.GrowPage):
		m.store.SetPageSize(snap.PageSize + pageSizeStep)

	case key.Matches(msg, m.keys.ShrinkPage):
		m.store.SetPageSize(snap.PageSize - pageSizeStep)

	case key.Matches(msg, m.keys.NextSort):
		if col, ok := m.nextSortColumn(snap.Sort.Column); ok {
			m.store.SetSort(col, view.Asc)
		}

	case key.Matches(msg, m.keys.FlipSort):
		if snap.Sort.Column != "" {
			m.store.SetSort(snap.Sort.Column, view.Unspecified)
		}

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(snap.Search)
		m.search.CursorEnd()
		return m, tea.Batch(m.search.Focus(), textinput.Blink)

	case key.Matches(msg, m.keys.ClearSearch):
		if snap.Search != "" {
			m.store.SetSearch("")
		}

	case key.Matches(msg, m.keys.ToggleSelect):
		if id, ok := m.currentID(); ok {
			m.store.Select(id, !m.store.IsSelected(id))
		}

	case key.Matches(msg, m.keys.SelectAll):
		m.store.SelectAll(!allSelected(snap.RowIDs, snap.Selection))

	case key.Matches(msg, m.keys.ClearSelect):
		m.store.ClearSelection()

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleSearchKey feeds the search box. Every edit updates the store's
// search term; remote stores debounce the requests.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.searching = false
		m.search.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.store.SetSearch("")
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		m.store.SetSearch(after)
	}
	return m, cmd
}

func allSelected(visible, selected []string) bool {
	if len(visible) == 0 {
		return false
	}
	set := make(map[string]bool, len(selected))
	for _, id := range selected {
		set[id] = true
	}
	for _, id := range visible {
		if !set[id] {
			return false
		}
	}
	return true
}
