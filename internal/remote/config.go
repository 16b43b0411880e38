package remote

import (
	"net/http"
	"strings"
	"time"

	"github.com/five82/tablesync/internal/view"
)

const (
	DefaultTimeout        = 30 * time.Second
	DefaultMaxRetries     = 3
	DefaultRetryBaseDelay = time.Second
	DefaultDebounce       = 300 * time.Millisecond
)

// Paths locate the interesting fields of a response body. Each is a dotted
// path resolved with package fieldpath.
type Paths struct {
	Rows  string
	Total string
	Error string
	Token string
}

// DefaultPaths matches the default response shape
// {data: [...], total: n, draw: token, error: null}.
func DefaultPaths() Paths {
	return Paths{Rows: "data", Total: "total", Error: "error", Token: "draw"}
}

// Params is the default outgoing request shape.
type Params struct {
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
	Search   string         `json:"search"`
	SortBy   *string        `json:"sortBy"`
	SortDir  view.Direction `json:"sortDir"`
	Token    uint64         `json:"token"`
}

// NewParams builds request parameters for q and token.
func NewParams(q view.Query, token uint64) Params {
	p := Params{
		Page:     q.Page,
		PageSize: q.PageSize,
		Search:   q.Search,
		SortDir:  q.Sort.Direction,
		Token:    token,
	}
	if p.SortDir == view.Unspecified {
		p.SortDir = view.Asc
	}
	if q.Sort.Column != "" {
		col := q.Sort.Column
		p.SortBy = &col
	}
	return p
}

// Query converts the parameters back into the query they were built from.
func (p Params) Query() view.Query {
	q := view.Query{
		Page:     p.Page,
		PageSize: p.PageSize,
		Search:   p.Search,
		Sort:     view.Sort{Direction: p.SortDir},
	}
	if p.SortBy != nil {
		q.Sort.Column = *p.SortBy
	}
	return q
}

// Hooks customize request construction and observe outcomes. Every field is
// optional; a nil hook keeps the default behaviour documented on the field.
type Hooks struct {
	// MapParams converts Params into the payload sent to the server.
	// Default: the Params value itself.
	MapParams func(Params) any
	// PreSend is consulted before a new token is issued. Returning false
	// vetoes the request: no token, no events, no state change.
	// Default: always send.
	PreSend func(Params) bool
	// OnComplete runs after a page was committed. Default: nothing.
	OnComplete func(Page)
	// OnError runs after a terminal failure. Default: nothing.
	OnError func(error)
}

// Config describes the remote endpoint and the sync policy.
type Config struct {
	URL            string
	Method         string
	Headers        map[string]string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	Debounce       time.Duration
	Paths          Paths
	Hooks          Hooks
}

// withDefaults fills zero values. Negative debounce or retry delay mean "none".
func (c Config) withDefaults() Config {
	c.URL = strings.TrimSpace(c.URL)
	c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
	if c.Method == "" {
		c.Method = http.MethodGet
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryBaseDelay == 0 {
		c.RetryBaseDelay = DefaultRetryBaseDelay
	} else if c.RetryBaseDelay < 0 {
		c.RetryBaseDelay = 0
	}
	if c.Debounce == 0 {
		c.Debounce = DefaultDebounce
	} else if c.Debounce < 0 {
		c.Debounce = 0
	}
	def := DefaultPaths()
	if c.Paths.Rows == "" {
		c.Paths.Rows = def.Rows
	}
	if c.Paths.Total == "" {
		c.Paths.Total = def.Total
	}
	if c.Paths.Error == "" {
		c.Paths.Error = def.Error
	}
	if c.Paths.Token == "" {
		c.Paths.Token = def.Token
	}
	return c
}

func (c Config) validate() error {
	if c.URL == "" {
		return view.Errorf(view.KindConfig, "remote", "endpoint url is required")
	}
	return nil
}
