package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.uber.org/zap"

	"github.com/five82/tablesync/internal/config"
	"github.com/five82/tablesync/internal/events"
	"github.com/five82/tablesync/internal/state"
	"github.com/five82/tablesync/internal/ui"
	"github.com/five82/tablesync/internal/view"
)

const defaultDumpTimeout = time.Minute

// DumpOptions select the page printed by Dump. Zero values keep the
// configured initial state.
type DumpOptions struct {
	ConfigPath string
	Verbose    bool
	Page       int
	PageSize   int
	Search     string
	SortBy     string
	SortDir    string
	Timeout    time.Duration
}

// Dump loads one page and writes it to w as a table.
func Dump(ctx context.Context, w io.Writer, opts DumpOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.Page > 0 {
		cfg.Initial.Page = opts.Page
	}
	if opts.PageSize > 0 {
		cfg.PageSize = opts.PageSize
	}
	if opts.Search != "" {
		cfg.Initial.Search = opts.Search
	}
	if opts.SortBy != "" {
		cfg.Initial.Sort = view.Sort{Column: opts.SortBy, Direction: view.ParseDirection(opts.SortDir)}
	}

	logger, err := NewLogger(cfg.LogFile, opts.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := OpenStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultDumpTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	snap, err := awaitLoad(ctx, store)
	if err != nil {
		logger.Error("dump failed", zap.Error(err))
		return err
	}
	logger.Info("dump complete", zap.Int("page", snap.Page), zap.Int("rows", len(snap.Rows)), zap.Int("total", snap.Total))
	_, err = fmt.Fprintln(w, RenderTable(snap, store.Columns()))
	return err
}

// awaitLoad reloads store and waits until it has settled on a page, following
// any page clamp the commit triggered.
func awaitLoad(ctx context.Context, store *state.Store) (state.Snapshot, error) {
	signals := make(chan error, 16)
	unsubscribe := store.Subscribe("", func(ev events.Event) error {
		var sig error
		switch p := ev.Payload.(type) {
		case events.Loaded:
		case events.Failure:
			sig = p.Err
			if sig == nil {
				sig = errors.New(p.Message)
			}
		default:
			return nil
		}
		select {
		case signals <- sig:
		default:
		}
		return nil
	})
	defer unsubscribe()

	if !store.Reload() {
		return state.Snapshot{}, errors.New("reload rejected")
	}
	for {
		select {
		case <-ctx.Done():
			return state.Snapshot{}, fmt.Errorf("wait for rows: %w", ctx.Err())
		case err := <-signals:
			if err != nil {
				return state.Snapshot{}, err
			}
			if snap := store.Snapshot(); !snap.Loading {
				return snap, nil
			}
		}
	}
}

// RenderTable renders snap as a bordered table followed by a status line.
// Selected rows are marked with a bullet.
func RenderTable(snap state.Snapshot, cols []view.Column) string {
	selected := make(map[string]bool, len(snap.Selection))
	for _, id := range snap.Selection {
		selected[id] = true
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(append([]string{""}, ui.Headers(cols)...)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for i, row := range snap.Rows {
		marker := ""
		if i < len(snap.RowIDs) && selected[snap.RowIDs[i]] {
			marker = "●"
		}
		t.Row(append([]string{marker}, ui.Cells(row, cols)...)...)
	}

	status := []string{
		fmt.Sprintf("page %d/%d", snap.Page, snap.PageCount),
		fmt.Sprintf("%d rows", snap.Total),
	}
	if snap.Sort.Column != "" {
		status = append(status, fmt.Sprintf("sort %s %s", snap.Sort.Column, snap.Sort.Direction))
	}
	if snap.Search != "" {
		status = append(status, fmt.Sprintf("search %q", snap.Search))
	}
	return t.Render() + "\n" + strings.Join(status, " · ")
}
