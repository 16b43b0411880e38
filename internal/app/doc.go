// Package app is the composition root of tablesync.
//
// # Overview
//
// It turns a config file into a running state.Store and hands the store to
// its consumers:
//
//	┌──────────────┐
//	│ config.Load  │
//	└──────┬───────┘
//	       │
//	┌──────▼───────┐     ┌──────────────┐
//	│  OpenStore   │────→│  NewLogger   │ JSON lines to log_file
//	└──────┬───────┘     └──────────────┘
//	       │
//	       ├──→ Run:  ui.Run + Refresh (errgroup, shared context), theme from prefs
//	       ├──→ Dump: awaitLoad → RenderTable (lipgloss/table)
//	       └──→ Logs: logtail.Read → logtail.Format
//
// # Components
//
//   - app.go: Run and OpenStore
//   - refresher.go: periodic Reload with exponential backoff on failures
//   - dump.go: one-shot page export
//   - logs.go: log file tail
//   - logger.go: zap logger construction
//
// # Refresh Backoff
//
// While the store reports consecutive terminal failures the refresh interval
// doubles per failure, capped at 30 seconds:
//
//	failures: 0    1    2    3     4+
//	wait:     2s   4s   8s   16s   30s   (with refresh_seconds = 2)
//
// The first successful commit resets the failure count and the interval.
//
// # Shutdown
//
// Run cancels the shared context when the UI exits, which stops the
// refresher. Deferred Store.Close then cancels in-flight requests and waits
// for their goroutines before the logger is synced.
package app
