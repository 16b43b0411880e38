package view

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Direction is the sort direction of a column.
type Direction string

const (
	// Unspecified asks SetSort to pick a direction: it flips the current
	// direction when the same column is sorted again and uses Asc otherwise.
	Unspecified Direction = ""
	Asc         Direction = "asc"
	Desc        Direction = "desc"
)

// ParseDirection normalizes user input. Unknown values return Unspecified.
func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Asc
	case "desc", "descending":
		return Desc
	}
	return Unspecified
}

// Flip returns the opposite direction. Unspecified flips to Asc.
func (d Direction) Flip() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

// Column describes one configured table column.
type Column struct {
	Key        string // dotted path into a row
	Title      string
	Searchable bool
	Sortable   bool
}

// NewColumn returns a searchable, sortable column with no explicit title.
func NewColumn(key string) Column {
	return Column{Key: key, Searchable: true, Sortable: true}
}

// Label returns the title, falling back to the key in title case with
// path separators as spaces ("team.first_name" becomes "Team First Name").
func (c Column) Label() string {
	if strings.TrimSpace(c.Title) != "" {
		return c.Title
	}
	words := strings.FieldsFunc(c.Key, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	return cases.Title(language.English).String(strings.Join(words, " "))
}

// Sort is the active ordering. An empty Column means unsorted.
type Sort struct {
	Column    string
	Direction Direction
}

// Query is the part of the view state that determines which rows are shown.
type Query struct {
	Page     int
	PageSize int
	Search   string
	Sort     Sort
}

// Offset returns the index of the first row of the page. It saturates at
// math.MaxInt instead of overflowing.
func (q Query) Offset() int {
	if q.Page < 1 || q.PageSize <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.PageSize {
		return math.MaxInt
	}
	return (q.Page - 1) * q.PageSize
}

// Result is what an engine produces for a Query.
type Result struct {
	Rows  []any
	Total int
	// Index holds, for local results, the position of each row in the
	// source collection. Remote results leave it nil.
	Index []int
}

// PageCount returns the number of pages needed for total rows, never less than one.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	n := total / pageSize
	if total%pageSize != 0 {
		n++
	}
	return n
}
