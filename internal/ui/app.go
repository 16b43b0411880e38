package ui

import (
	"context"
	"slices"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tablesync/internal/events"
	"github.com/five82/tablesync/internal/state"
	"github.com/five82/tablesync/internal/view"
)

const (
	pageSizeStep = 5
	markerWidth  = 2
	minColWidth  = 6
	chromeHeight = 7 // header, box borders, table header, notice, command bar
)

// Options configures the UI.
type Options struct {
	Store     *state.Store
	Title     string
	ThemeName string
	// OnTheme is called with the new theme name after the user cycles themes.
	OnTheme func(name string)
}

// Model is the root application state for Bubble Tea.
type Model struct {
	store   *state.Store
	columns []view.Column
	title   string
	keys    keyMap
	theme   Theme
	events  *bridge
	onTheme func(string)

	// UI state
	width     int
	height    int
	ready     bool
	showHelp  bool
	searching bool
	notice    string
	noticeBad bool

	table    table.Model
	search   textinput.Model
	snapshot state.Snapshot
}

// New creates a new Bubble Tea model subscribed to opts.Store. Call Close
// once the program has exited.
func New(opts Options) Model {
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}
	title := opts.Title
	if title == "" {
		title = "tablesync"
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search"
	search.CharLimit = 256

	m := Model{
		store:   opts.Store,
		columns: opts.Store.Columns(),
		title:   title,
		keys:    DefaultKeyMap(),
		theme:   GetTheme(themeName),
		events:  newBridge(opts.Store),
		onTheme: opts.OnTheme,
		search:  search,
	}
	m.table = table.New(
		table.WithColumns(m.tableColumns(80)),
		table.WithFocused(true),
		table.WithStyles(m.theme.TableStyles()),
	)
	m.setSnapshot(opts.Store.Snapshot())
	return m
}

// Close unsubscribes the model from the store.
func (m Model) Close() {
	m.events.close()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		fetchSnapshotCmd(m.store),
		m.events.wait(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case storeEventMsg:
		m.handleEvent(events.Event(msg))
		return m, tea.Batch(fetchSnapshotCmd(m.store), m.events.wait())

	case snapshotMsg:
		m.setSnapshot(state.Snapshot(msg))
		return m, nil
	}

	return m, nil
}

func (m *Model) handleEvent(ev events.Event) {
	switch p := ev.Payload.(type) {
	case events.Warn:
		m.notice, m.noticeBad = p.Message, false
	case events.Failure:
		m.notice, m.noticeBad = p.Message, true
	case events.Loaded:
		if m.noticeBad {
			m.notice, m.noticeBad = "", false
		}
	}
}

func (m *Model) setSnapshot(snap state.Snapshot) {
	m.snapshot = snap
	selected := make(map[string]bool, len(snap.Selection))
	for _, id := range snap.Selection {
		selected[id] = true
	}

	rows := make([]table.Row, len(snap.Rows))
	for i, row := range snap.Rows {
		marker := " "
		if i < len(snap.RowIDs) && selected[snap.RowIDs[i]] {
			marker = "●"
		}
		rows[i] = append(table.Row{marker}, Cells(row, m.columns)...)
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m *Model) layout() {
	m.table.SetColumns(m.tableColumns(m.width))
	m.table.SetWidth(max(m.width-2, 0))
	m.table.SetHeight(max(m.height-chromeHeight, 3))
	m.search.Width = max(m.width-6, 10)
}

func (m Model) tableColumns(width int) []table.Column {
	cols := make([]table.Column, 0, len(m.columns)+1)
	cols = append(cols, table.Column{Title: "", Width: markerWidth})
	if len(m.columns) == 0 {
		return cols
	}
	// Each column carries one cell of padding on both sides.
	avail := width - 4 - markerWidth - 2*(len(m.columns)+1)
	w := max(avail/len(m.columns), minColWidth)
	for _, c := range m.columns {
		cols = append(cols, table.Column{Title: truncate(c.Label(), w), Width: w})
	}
	return cols
}

// currentID returns the selection id of the row under the cursor.
func (m Model) currentID() (string, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.snapshot.RowIDs) {
		return "", false
	}
	return m.snapshot.RowIDs[c], true
}

// nextSortColumn returns the sortable column after the current sort column.
func (m Model) nextSortColumn(current string) (string, bool) {
	sortable := make([]string, 0, len(m.columns))
	for _, c := range m.columns {
		if c.Sortable {
			sortable = append(sortable, c.Key)
		}
	}
	if len(sortable) == 0 {
		return "", false
	}
	i := slices.Index(sortable, current)
	return sortable[(i+1)%len(sortable)], true
}

// Messages

type snapshotMsg state.Snapshot

// Commands

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	m := New(opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
