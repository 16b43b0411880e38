package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/five82/tablesync/internal/remote"
	"github.com/five82/tablesync/internal/selection"
	"github.com/five82/tablesync/internal/state"
	"github.com/five82/tablesync/internal/view"
)

// Config is the resolved tablesync configuration.
type Config struct {
	Mode            state.Mode
	PageSize        int
	LogFile         string
	RefreshInterval time.Duration
	Columns         []view.Column
	RowsFile        string
	Remote          remote.Config
	Selection       selection.Mode
	IDKey           string
	PruneSelection  bool
	Initial         view.Query
}

const (
	defaultConfigPath = "~/.config/tablesync/config.toml"
	defaultLogFile    = "~/.local/state/tablesync/tablesync.log"
	defaultPageSize   = 10
)

type rawColumn struct {
	Key        string `toml:"key" yaml:"key"`
	Title      string `toml:"title" yaml:"title"`
	Searchable *bool  `toml:"searchable" yaml:"searchable"`
	Sortable   *bool  `toml:"sortable" yaml:"sortable"`
}

type rawConfig struct {
	Mode           string      `toml:"mode" yaml:"mode"`
	PageSize       int         `toml:"page_size" yaml:"page_size"`
	LogFile        string      `toml:"log_file" yaml:"log_file"`
	RefreshSeconds int         `toml:"refresh_seconds" yaml:"refresh_seconds"`
	Columns        []rawColumn `toml:"columns" yaml:"columns"`
	Local          struct {
		RowsFile string `toml:"rows_file" yaml:"rows_file"`
	} `toml:"local" yaml:"local"`
	Remote struct {
		URL              string            `toml:"url" yaml:"url"`
		Method           string            `toml:"method" yaml:"method"`
		TimeoutMs        int               `toml:"timeout_ms" yaml:"timeout_ms"`
		MaxRetries       int               `toml:"max_retries" yaml:"max_retries"`
		RetryBaseDelayMs *int              `toml:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
		DebounceMs       *int              `toml:"debounce_ms" yaml:"debounce_ms"`
		Headers          map[string]string `toml:"headers" yaml:"headers"`
		Paths            struct {
			Rows  string `toml:"rows" yaml:"rows"`
			Total string `toml:"total" yaml:"total"`
			Error string `toml:"error" yaml:"error"`
			Token string `toml:"token" yaml:"token"`
		} `toml:"paths" yaml:"paths"`
	} `toml:"remote" yaml:"remote"`
	Selection struct {
		Mode  string `toml:"mode" yaml:"mode"`
		IDKey string `toml:"id_key" yaml:"id_key"`
		Prune bool   `toml:"prune" yaml:"prune"`
	} `toml:"selection" yaml:"selection"`
	Initial struct {
		Page    int    `toml:"page" yaml:"page"`
		Search  string `toml:"search" yaml:"search"`
		SortBy  string `toml:"sort_by" yaml:"sort_by"`
		SortDir string `toml:"sort_dir" yaml:"sort_dir"`
	} `toml:"initial" yaml:"initial"`
}

// Load locates and parses the tablesync config, falling back to defaults when
// missing. Files ending in .yaml or .yml are parsed as YAML, everything else
// as TOML.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{PageSize: defaultPageSize, LogFile: mustExpand(defaultLogFile)}, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if isYAML(resolved) {
		err = yaml.Unmarshal(bytes, &raw)
	} else {
		err = toml.Unmarshal(bytes, &raw)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg, err := raw.resolve(filepath.Dir(resolved))
	if err != nil {
		return Config{}, view.Wrap(view.KindConfig, "config", err)
	}
	return cfg, nil
}

func (raw rawConfig) resolve(baseDir string) (Config, error) {
	mode, err := state.ParseMode(raw.Mode)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Mode:           mode,
		PageSize:       raw.PageSize,
		Selection:      selection.ParseMode(raw.Selection.Mode),
		IDKey:          strings.TrimSpace(raw.Selection.IDKey),
		PruneSelection: raw.Selection.Prune,
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.PageSize < 0 {
		return Config{}, fmt.Errorf("page_size must be positive, got %d", cfg.PageSize)
	}
	if raw.RefreshSeconds < 0 {
		return Config{}, fmt.Errorf("refresh_seconds must not be negative, got %d", raw.RefreshSeconds)
	}
	cfg.RefreshInterval = time.Duration(raw.RefreshSeconds) * time.Second

	cfg.LogFile = strings.TrimSpace(raw.LogFile)
	if cfg.LogFile == "" {
		cfg.LogFile = defaultLogFile
	}
	cfg.LogFile = resolveRelative(baseDir, cfg.LogFile)

	for i, rc := range raw.Columns {
		key := strings.TrimSpace(rc.Key)
		if key == "" {
			return Config{}, fmt.Errorf("columns[%d]: key is required", i)
		}
		col := view.NewColumn(key)
		col.Title = strings.TrimSpace(rc.Title)
		if rc.Searchable != nil {
			col.Searchable = *rc.Searchable
		}
		if rc.Sortable != nil {
			col.Sortable = *rc.Sortable
		}
		cfg.Columns = append(cfg.Columns, col)
	}

	if rows := strings.TrimSpace(raw.Local.RowsFile); rows != "" {
		cfg.RowsFile = resolveRelative(baseDir, rows)
	}

	r := raw.Remote
	cfg.Remote = remote.Config{
		URL:        strings.TrimSpace(r.URL),
		Method:     r.Method,
		Headers:    r.Headers,
		Timeout:    time.Duration(r.TimeoutMs) * time.Millisecond,
		MaxRetries: r.MaxRetries,
		Paths: remote.Paths{
			Rows:  strings.TrimSpace(r.Paths.Rows),
			Total: strings.TrimSpace(r.Paths.Total),
			Error: strings.TrimSpace(r.Paths.Error),
			Token: strings.TrimSpace(r.Paths.Token),
		},
	}
	// An explicit zero means "no delay"; remote.Config treats zero as default.
	cfg.Remote.RetryBaseDelay = millis(r.RetryBaseDelayMs)
	cfg.Remote.Debounce = millis(r.DebounceMs)
	if mode == state.Remote && cfg.Remote.URL == "" {
		return Config{}, fmt.Errorf("remote mode requires remote.url")
	}

	in := raw.Initial
	dir := view.ParseDirection(in.SortDir)
	if strings.TrimSpace(in.SortDir) != "" && dir == view.Unspecified {
		return Config{}, fmt.Errorf("initial.sort_dir must be asc or desc, got %q", in.SortDir)
	}
	cfg.Initial = view.Query{
		Page:   in.Page,
		Search: in.Search,
		Sort:   view.Sort{Column: strings.TrimSpace(in.SortBy), Direction: dir},
	}
	return cfg, nil
}

// StoreOptions builds the state.Options for cfg, reading the local rows file
// when one is configured.
func (c Config) StoreOptions() (state.Options, error) {
	opts := state.Options{
		Mode:           c.Mode,
		Columns:        c.Columns,
		PageSize:       c.PageSize,
		Initial:        c.Initial,
		Remote:         c.Remote,
		Selection:      c.Selection,
		IDKey:          c.IDKey,
		PruneSelection: c.PruneSelection,
	}
	if c.Mode == state.Local && c.RowsFile != "" {
		rows, err := LoadRows(c.RowsFile)
		if err != nil {
			return state.Options{}, err
		}
		opts.Rows = rows
	}
	return opts, nil
}

func millis(ms *int) time.Duration {
	switch {
	case ms == nil:
		return 0
	case *ms <= 0:
		return -1
	default:
		return time.Duration(*ms) * time.Millisecond
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func resolveRelative(baseDir, path string) string {
	if strings.HasPrefix(path, "~") || filepath.IsAbs(path) {
		return mustExpand(path)
	}
	return filepath.Join(baseDir, path)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
