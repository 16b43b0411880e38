package app

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/tablesync/internal/config"
	"github.com/five82/tablesync/internal/prefs"
	"github.com/five82/tablesync/internal/state"
	"github.com/five82/tablesync/internal/ui"
	"github.com/five82/tablesync/internal/view"
)

// Options configure the interactive application.
type Options struct {
	ConfigPath string
	Verbose    bool
	ThemeName  string
	PrefsPath  string
}

// Run boots the table UI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
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
	logger.Info("tablesync started", zap.String("instance", store.ID()), zap.Stringer("mode", store.Mode()))

	// Remote stores start empty; local stores were computed by New.
	if store.Mode() == state.Remote {
		store.Reload()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Load(opts.PrefsPath).Theme
	}
	saveTheme := func(name string) {
		if err := prefs.Save(opts.PrefsPath, prefs.Prefs{Theme: name}); err != nil {
			logger.Warn("save prefs failed", zap.Error(err))
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return ui.Run(gctx, ui.Options{Store: store, ThemeName: themeName, OnTheme: saveTheme})
	})
	g.Go(func() error {
		return Refresh(gctx, store, cfg.RefreshInterval, logger)
	})
	return g.Wait()
}

// OpenStore builds the store described by cfg. Local stores without
// configured columns get one column per field of the first row.
func OpenStore(cfg config.Config, logger *zap.Logger) (*state.Store, error) {
	opts, err := cfg.StoreOptions()
	if err != nil {
		return nil, err
	}
	opts.Logger = logger
	if len(opts.Columns) == 0 {
		if opts.Mode == state.Remote {
			return nil, view.Errorf(view.KindConfig, "open", "remote mode needs at least one [[columns]] entry")
		}
		opts.Columns = deriveColumns(opts.Rows)
	}
	return state.New(opts)
}

func deriveColumns(rows []any) []view.Column {
	if len(rows) == 0 {
		return nil
	}
	first, ok := rows[0].(map[string]any)
	if !ok {
		return nil
	}
	keys := slices.Sorted(maps.Keys(first))
	cols := make([]view.Column, len(keys))
	for i, k := range keys {
		cols[i] = view.NewColumn(k)
	}
	return cols
}
