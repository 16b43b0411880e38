package remote

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/five82/tablesync/internal/fieldpath"
	"github.com/five82/tablesync/internal/view"
)

// Page is a committed server response.
type Page struct {
	Rows  []any
	Total int
	Token uint64
	// Query is the query the request was issued for.
	Query view.Query
}

// extract pulls rows, total, error and the echoed token out of body.
// Missing paths are not failures by themselves: a missing total falls back to
// the number of rows and a missing token skips the echo check.
func extract(body any, paths Paths) (page Page, echoed uint64, hasEcho bool, err error) {
	if msg := errorText(fieldpath.Get(body, paths.Error)); msg != "" {
		return Page{}, 0, false, view.Errorf(view.KindTransport, "response", "server error: %s", msg)
	}

	rows, ok := fieldpath.Get(body, paths.Rows).([]any)
	if !ok {
		return Page{}, 0, false, view.Errorf(view.KindMalformed, "response", "rows at %q are not a list", paths.Rows)
	}
	page.Rows = rows

	page.Total = len(rows)
	if raw, ok := fieldpath.Lookup(body, paths.Total); ok && raw != nil {
		total, ok := toInt(raw)
		if !ok || total < 0 {
			return Page{}, 0, false, view.Errorf(view.KindMalformed, "response", "total at %q is not a non-negative integer", paths.Total)
		}
		page.Total = int(total)
	}

	if raw, ok := fieldpath.Lookup(body, paths.Token); ok && raw != nil {
		if tok, ok := toInt(raw); ok && tok >= 0 {
			echoed, hasEcho = uint64(tok), true
		}
	}
	return page, echoed, hasEcho, nil
}

func errorText(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case bool:
		if typed {
			return "true"
		}
		return ""
	}
	return fmt.Sprint(v)
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, false
		}
		return int64(f), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	}
	return 0, false
}
