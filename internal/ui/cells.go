package ui

import (
	"strings"

	"github.com/five82/tablesync/internal/fieldpath"
	"github.com/five82/tablesync/internal/local"
	"github.com/five82/tablesync/internal/view"
)

// Headers returns the display title of every column.
func Headers(cols []view.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Label()
	}
	return out
}

// Cells projects row onto cols. Missing values render empty; multi-line
// values are flattened to one line.
func Cells(row any, cols []view.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		text := local.Text(fieldpath.Get(row, c.Key))
		out[i] = strings.Join(strings.Fields(text), " ")
	}
	return out
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
