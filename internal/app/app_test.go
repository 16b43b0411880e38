package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/five82/tablesync/internal/config"
	"github.com/five82/tablesync/internal/state"
	"github.com/five82/tablesync/internal/view"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func writeRows(t *testing.T, dir string, n int) {
	t.Helper()
	rows := make([]map[string]any, n)
	for i := range rows {
		rows[i] = map[string]any{"id": i + 1, "name": fmt.Sprintf("person %02d", i+1)}
	}
	data, err := json.Marshal(rows)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rows.json"), data, 0o600))
}

func TestDump_Local(t *testing.T) {
	path := writeConfig(t, `
page_size = 10

[local]
rows_file = "rows.json"
`)
	writeRows(t, filepath.Dir(path), 25)

	var out bytes.Buffer
	err := Dump(context.Background(), &out, DumpOptions{
		ConfigPath: path,
		Page:       3,
		SortBy:     "id",
		SortDir:    "desc",
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Name")
	assert.Contains(t, text, "person 05")
	assert.NotContains(t, text, "person 06")
	assert.Contains(t, text, "page 3/3 · 25 rows · sort id desc")
}

func TestDump_Remote(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		mu.Lock()
		seen = append(seen, q.Get("page")+"/"+q.Get("search"))
		mu.Unlock()
		token, _ := strconv.Atoi(q.Get("token"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data":  []any{map[string]any{"id": 7, "name": "remote row"}},
			"total": 11,
			"draw":  token,
			"error": nil,
		})
	}))
	defer srv.Close()

	path := writeConfig(t, fmt.Sprintf(`
mode = "remote"
page_size = 5

[[columns]]
key = "name"

[remote]
url = %q
debounce_ms = 0
`, srv.URL))

	var out bytes.Buffer
	err := Dump(context.Background(), &out, DumpOptions{ConfigPath: path, Page: 2, Search: "rem"})
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, []string{"2/rem"}, seen)
	mu.Unlock()
	assert.Contains(t, out.String(), "remote row")
	assert.Contains(t, out.String(), "page 2/3 · 11 rows · search \"rem\"")
}

func TestDump_RemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	path := writeConfig(t, fmt.Sprintf(`
mode = "remote"

[[columns]]
key = "name"

[remote]
url = %q
max_retries = 1
`, srv.URL))

	err := Dump(context.Background(), &bytes.Buffer{}, DumpOptions{ConfigPath: path, Timeout: 5 * time.Second})
	require.Error(t, err)
	assert.True(t, view.IsKind(err, view.KindTransport))
	assert.Contains(t, err.Error(), "503")
}

func TestOpenStore(t *testing.T) {
	cfg := config.Config{Mode: state.Remote}
	cfg.Remote.URL = "http://example.test"
	_, err := OpenStore(cfg, zap.NewNop())
	assert.True(t, view.IsKind(err, view.KindConfig), "remote mode without columns")

	store, err := OpenStore(config.Config{PageSize: 10}, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()
	assert.Empty(t, store.Columns())
}

func TestDeriveColumns(t *testing.T) {
	cols := deriveColumns([]any{map[string]any{"b": 1, "a": 2}})
	require.Len(t, cols, 2)
	assert.Equal(t, "a", cols[0].Key)
	assert.True(t, cols[1].Sortable)

	assert.Nil(t, deriveColumns(nil))
	assert.Nil(t, deriveColumns([]any{"scalar"}))
}

func TestRenderTable_MarksSelection(t *testing.T) {
	snap := state.Snapshot{
		ViewState: state.ViewState{
			Page:      1,
			PageSize:  10,
			Rows:      []any{map[string]any{"name": "a"}, map[string]any{"name": "b"}},
			RowIDs:    []string{"1", "2"},
			Selection: []string{"2"},
			Total:     2,
		},
		PageCount: 1,
	}
	out := RenderTable(snap, []view.Column{view.NewColumn("name")})

	lines := strings.Split(out, "\n")
	var rowB string
	for _, l := range lines {
		if strings.Contains(l, " b ") {
			rowB = l
		}
	}
	assert.Contains(t, rowB, "●")
	assert.True(t, strings.HasSuffix(out, "page 1/1 · 2 rows"))
}

func TestLogs(t *testing.T) {
	path := writeConfig(t, `log_file = "app.log"`)
	var out bytes.Buffer
	require.NoError(t, Logs(&out, LogsOptions{ConfigPath: path, Lines: 10}))
	assert.Contains(t, out.String(), "no log entries")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	logger, err := NewLogger(cfg.LogFile, true)
	require.NoError(t, err)
	logger.Debug("noise")
	logger.Warn("mutation rejected", zap.String("op", "setPage"))
	require.NoError(t, logger.Sync())

	out.Reset()
	require.NoError(t, Logs(&out, LogsOptions{ConfigPath: path, Lines: 10, Level: "warn"}))
	assert.Contains(t, out.String(), "WARN  mutation rejected op=setPage")
	assert.NotContains(t, out.String(), "noise")

	assert.Error(t, Logs(&out, LogsOptions{ConfigPath: path, Level: "loud"}))
}
