package app

import (
	"fmt"
	"io"

	"go.uber.org/zap/zapcore"

	"github.com/five82/tablesync/internal/config"
	"github.com/five82/tablesync/internal/logtail"
)

// LogsOptions select what Logs prints.
type LogsOptions struct {
	ConfigPath string
	Lines      int
	Level      string // minimum level; empty means debug
	Color      bool
}

// Logs writes the tail of the configured log file to w.
func Logs(w io.Writer, opts LogsOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	minLevel := zapcore.DebugLevel
	if opts.Level != "" {
		if err := minLevel.UnmarshalText([]byte(opts.Level)); err != nil {
			return fmt.Errorf("parse level: %w", err)
		}
	}

	lines, err := logtail.Read(cfg.LogFile, opts.Lines)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		_, err := fmt.Fprintf(w, "no log entries in %s\n", cfg.LogFile)
		return err
	}
	for _, line := range logtail.Format(lines, minLevel, opts.Color) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
