// Package logtail reads and formats the tablesync log file.
//
// # Reading Log Files
//
// Read uses a ring buffer to extract the last maxLines from a file without
// holding the whole file in memory. A missing file yields no lines rather
// than an error, since the log only exists after the first run.
//
// # Formatting
//
// The logger writes zap JSON lines. Format turns them into
//
//	2026-10-16T10:00:00.000Z WARN  mutation rejected instance=… op=setPage
//
// with fields sorted by key, filters by minimum level and optionally colors
// the level with lipgloss. Non-JSON lines (panics, stray output) pass
// through untouched.
package logtail
