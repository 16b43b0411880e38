package ui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/tablesync/internal/events"
	"github.com/five82/tablesync/internal/state"
	"github.com/five82/tablesync/internal/view"
)

func newTestModel(t *testing.T, n int) (Model, *state.Store) {
	t.Helper()
	rows := make([]any, n)
	for i := range rows {
		rows[i] = map[string]any{"id": i + 1, "name": fmt.Sprintf("row %02d", i+1)}
	}
	store, err := state.New(state.Options{
		Rows:    rows,
		Columns: []view.Column{view.NewColumn("id"), view.NewColumn("name")},
		IDKey:   "id",
	})
	require.NoError(t, err)
	t.Cleanup(store.Close)

	m := New(Options{Store: store})
	t.Cleanup(m.Close)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model), store
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func TestModel_Pagination(t *testing.T) {
	m, store := newTestModel(t, 25)

	m = press(t, m, runes("n"), runes("n"), runes("n"))
	assert.Equal(t, 3, store.Snapshot().Page, "stops at the last page")

	m = press(t, m, runes("p"))
	assert.Equal(t, 2, store.Snapshot().Page)

	m = press(t, m, runes("+"))
	snap := store.Snapshot()
	assert.Equal(t, 15, snap.PageSize)
	assert.Equal(t, 1, snap.Page)

	m = press(t, m, snapshotMsg(store.Snapshot()))
	assert.Contains(t, m.View(), "page 1/2")
}

func TestModel_SortKeys(t *testing.T) {
	m, store := newTestModel(t, 5)

	m = press(t, m, runes("s"))
	assert.Equal(t, view.Sort{Column: "id", Direction: view.Asc}, store.Snapshot().Sort)

	m = press(t, m, runes("S"))
	assert.Equal(t, view.Desc, store.Snapshot().Sort.Direction)

	press(t, m, runes("s"))
	assert.Equal(t, view.Sort{Column: "name", Direction: view.Asc}, store.Snapshot().Sort)
}

func TestModel_SearchUpdatesStorePerKeystroke(t *testing.T) {
	m, store := newTestModel(t, 25)

	m = press(t, m, runes("/"))
	require.True(t, m.searching)

	m = press(t, m, runes("2"), runes("2"))
	snap := store.Snapshot()
	assert.Equal(t, "22", snap.Search)
	assert.Equal(t, 1, snap.Total)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.searching)
	assert.Equal(t, "22", store.Snapshot().Search)

	m = press(t, m, runes("/"), tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.searching)
	assert.Equal(t, "", store.Snapshot().Search)
}

func TestModel_Selection(t *testing.T) {
	m, store := newTestModel(t, 5)

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Equal(t, []string{"1"}, store.SelectedIDs())

	m = press(t, m, snapshotMsg(store.Snapshot()), runes("a"))
	assert.Len(t, store.SelectedIDs(), 5)

	m = press(t, m, snapshotMsg(store.Snapshot()))
	assert.Contains(t, m.View(), "5 selected")

	press(t, m, runes("c"))
	assert.Empty(t, store.SelectedIDs())
}

func TestModel_EventsRefreshNotice(t *testing.T) {
	m, store := newTestModel(t, 5)

	assert.False(t, store.SetPageSize(0))
	m = press(t, m, storeEventMsg(events.Event{Kind: events.Warning, Payload: events.Warn{Op: "setPageSize", Message: "page size must be a positive integer, got 0"}}))
	assert.Contains(t, m.View(), "page size must be a positive integer")

	m = press(t, m, storeEventMsg(events.Event{Kind: events.Error, Payload: events.Failure{Message: "boom"}}))
	assert.True(t, m.noticeBad)
	m = press(t, m, storeEventMsg(events.Event{Kind: events.DataLoaded, Payload: events.Loaded{}}))
	assert.Empty(t, m.notice)
}

func TestModel_HelpAndQuit(t *testing.T) {
	m, _ := newTestModel(t, 3)

	m = press(t, m, runes("?"))
	assert.Contains(t, m.View(), "Keyboard Shortcuts")
	m = press(t, m, runes("x"))
	assert.False(t, m.showHelp)

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestBridge_DropsWhenFull(t *testing.T) {
	_, store := newTestModel(t, 3)
	b := newBridge(store)
	defer b.close()

	for range bridgeBuffer + 10 {
		require.NoError(t, b.handle(events.Event{Kind: events.StateChange}))
	}
	assert.Len(t, b.ch, bridgeBuffer)

	idle := newBridge(store)
	idle.close()
	assert.Nil(t, idle.wait()(), "closed bridge stops waiting")
	require.NoError(t, idle.handle(events.Event{Kind: events.StateChange}))
}

func TestCells(t *testing.T) {
	cols := []view.Column{view.NewColumn("name"), view.NewColumn("team.name"), view.NewColumn("missing")}
	row := map[string]any{"name": "Ada\nLovelace", "team": map[string]any{"name": "Engines"}}

	assert.Equal(t, []string{"Ada Lovelace", "Engines", ""}, Cells(row, cols))
	assert.Equal(t, []string{"Name", "Team Name", "Missing"}, Headers(cols))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "", truncate("abc", 0))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "abcdef", truncate("abcdef", 6))
	assert.Equal(t, "ab...", truncate("abcdefgh", 5))
	assert.True(t, strings.HasSuffix(truncate("héllo wörld", 8), "..."))
}

func TestThemeCycle(t *testing.T) {
	seen := map[string]bool{}
	name := ThemeNames()[0]
	for range ThemeNames() {
		seen[name] = true
		name = NextTheme(name)
	}
	assert.Len(t, seen, len(ThemeNames()))
	assert.Equal(t, "Nightfox", GetTheme("unknown").Name)
}

func TestModel_ThemeKeyReportsChoice(t *testing.T) {
	_, store := newTestModel(t, 3)
	var chosen []string
	m := New(Options{Store: store, ThemeName: "Nightfox", OnTheme: func(name string) {
		chosen = append(chosen, name)
	}})
	t.Cleanup(m.Close)

	m = press(t, m, runes("T"))
	assert.Equal(t, []string{NextTheme("Nightfox")}, chosen)
	assert.Equal(t, NextTheme("Nightfox"), m.theme.Name)
}
