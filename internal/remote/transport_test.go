package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/tablesync/internal/view"
)

func TestClient_GetEncodesParamsAsQuery(t *testing.T) {
	var gotQuery map[string][]string
	var gotUserAgent, gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotUserAgent = r.Header.Get("User-Agent")
		gotHeader = r.Header.Get("X-Tenant")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":1}],"total":41,"draw":3,"error":null}`))
	}))
	t.Cleanup(server.Close)

	c := NewClient(nil)
	body, err := c.Send(context.Background(), Request{
		URL:     server.URL + "/rows?fixed=1",
		Method:  http.MethodGet,
		Headers: map[string]string{"X-Tenant": "acme"},
		Payload: NewParams(view.Query{Page: 2, PageSize: 10, Search: "ab"}, 3),
	})
	require.NoError(t, err)

	assert.Equal(t, "2", gotQuery["page"][0])
	assert.Equal(t, "10", gotQuery["pageSize"][0])
	assert.Equal(t, "ab", gotQuery["search"][0])
	assert.Equal(t, "asc", gotQuery["sortDir"][0])
	assert.Equal(t, "3", gotQuery["token"][0])
	assert.Equal(t, "1", gotQuery["fixed"][0])
	assert.NotContains(t, gotQuery, "sortBy", "null values are omitted")
	assert.True(t, strings.HasPrefix(gotUserAgent, "tablesync/"))
	assert.Equal(t, "acme", gotHeader)

	page, echoed, hasEcho, err := extract(body, DefaultPaths())
	require.NoError(t, err)
	assert.Equal(t, 41, page.Total)
	assert.Len(t, page.Rows, 1)
	assert.True(t, hasEcho)
	assert.Equal(t, uint64(3), echoed)
	assert.Equal(t, json.Number("1"), page.Rows[0].(map[string]any)["id"])
}

func TestClient_PostSendsJSONBody(t *testing.T) {
	var got map[string]any
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &got)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	t.Cleanup(server.Close)

	sortBy := "name"
	_, err := NewClient(nil).Send(context.Background(), Request{
		URL:     server.URL,
		Method:  http.MethodPost,
		Payload: Params{Page: 1, PageSize: 5, SortBy: &sortBy, SortDir: view.Desc, Token: 9},
	})
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "name", got["sortBy"])
	assert.Equal(t, "desc", got["sortDir"])
	assert.Equal(t, float64(9), got["token"])
}

func TestClient_HTTPErrorAndDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/broken":
			_, _ = w.Write([]byte("{not-json"))
		default:
			http.Error(w, "nope", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)

	c := NewClient(nil)
	_, err := c.Send(context.Background(), Request{URL: server.URL + "/broken"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")

	_, err = c.Send(context.Background(), Request{URL: server.URL + "/rows"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned status 500")
}

func TestClient_HonoursContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := NewClient(nil).Send(ctx, Request{URL: server.URL})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueryValues(t *testing.T) {
	values, err := queryValues(map[string]any{
		"a":      "x",
		"n":      3,
		"flag":   true,
		"skip":   nil,
		"nested": map[string]any{"k": 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "x", values.Get("a"))
	assert.Equal(t, "3", values.Get("n"))
	assert.Equal(t, "true", values.Get("flag"))
	assert.Equal(t, `{"k":1}`, values.Get("nested"))
	_, present := values["skip"]
	assert.False(t, present)

	_, err = queryValues([]int{1, 2})
	assert.Error(t, err)
}

func TestExtract(t *testing.T) {
	paths := Paths{Rows: "result.items", Total: "result.count", Error: "err", Token: "meta.draw"}

	page, echoed, hasEcho, err := extract(map[string]any{
		"result": map[string]any{"items": []any{1, 2}, "count": json.Number("12")},
		"meta":   map[string]any{"draw": "4"},
	}, paths)
	require.NoError(t, err)
	assert.Equal(t, 12, page.Total)
	assert.True(t, hasEcho)
	assert.Equal(t, uint64(4), echoed)

	page, _, hasEcho, err = extract(map[string]any{"result": map[string]any{"items": []any{1, 2, 3}}}, paths)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total, "missing total falls back to row count")
	assert.False(t, hasEcho)

	_, _, _, err = extract(map[string]any{"result": map[string]any{"items": "nope"}}, paths)
	assert.True(t, view.IsKind(err, view.KindMalformed))

	_, _, _, err = extract(map[string]any{"err": "db down", "result": map[string]any{"items": []any{}}}, paths)
	assert.True(t, view.IsKind(err, view.KindTransport))
	assert.Contains(t, err.Error(), "db down")

	_, _, _, err = extract(map[string]any{"result": map[string]any{"items": []any{}, "count": -1}}, paths)
	assert.True(t, view.IsKind(err, view.KindMalformed))

	_, _, _, err = extract(nil, paths)
	assert.True(t, view.IsKind(err, view.KindMalformed))
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{URL: " http://x ", Debounce: -1}.withDefaults()
	assert.Equal(t, "http://x", cfg.URL)
	assert.Equal(t, http.MethodGet, cfg.Method)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, DefaultRetryBaseDelay, cfg.RetryBaseDelay)
	assert.Equal(t, time.Duration(0), cfg.Debounce)
	assert.Equal(t, DefaultPaths(), cfg.Paths)
}
