// Package events is the in-process publish/subscribe bus used to notify
// renderers, exporters and instrumentation about table lifecycle changes.
//
// Delivery is synchronous and ordered: events are delivered one at a time,
// in publish order, to subscribers in subscription order. A Publish issued
// from inside a handler (or concurrently from another goroutine) is queued
// and delivered by whichever caller is already draining the queue, so
// handlers never run in parallel and may safely call back into the table.
package events

import "github.com/five82/tablesync/internal/view"

// Kind identifies an event type.
type Kind string

const (
	RequestStart Kind = "requestStart"
	RequestEnd   Kind = "requestEnd"
	DataLoaded   Kind = "dataLoaded"
	Error        Kind = "error"
	StateChange  Kind = "stateChange"
	Warning      Kind = "warning"
)

// Event is one published notification. Payload holds one of the payload
// types below, matching Kind.
type Event struct {
	Kind    Kind
	Payload any
}

// RequestInfo is the payload of RequestStart and RequestEnd.
type RequestInfo struct {
	Token   uint64
	Page    int
	Search  string
	SortBy  string
	SortDir view.Direction
}

// Loaded is the payload of DataLoaded.
type Loaded struct {
	Rows    []any
	Total   int
	Page    int
	Search  string
	SortBy  string
	SortDir view.Direction
}

// Failure is the payload of Error.
type Failure struct {
	Message string
	Page    int
	Search  string
	Err     error
}

// Change is the payload of StateChange.
type Change struct {
	Field    string
	OldValue any
	NewValue any
}

// Warn is the payload of Warning; it reports a rejected mutation.
type Warn struct {
	Op      string
	Message string
}

// Publisher is implemented by *Bus.
type Publisher interface {
	Publish(evs ...Event)
	Enqueue(evs ...Event)
	Flush()
}
