// Package state owns the table's view state and routes every change to the
// engine that reconciles it.
//
// # Overview
//
// A Store holds exactly one ViewState (page, page size, sort, search,
// selection, rows, total). Callers change it through mutations (SetPage,
// SetPageSize, SetSort, SetSearch, Select, SelectAll, ClearSelection) and
// observe it through events or Snapshot.
//
// The mode is fixed at construction:
//
//	Local:  mutation → validate → local.Engine.Apply → commit → events
//	Remote: mutation → validate → remote.Engine (debounce, token, retry)
//	                                    ↓ (async)
//	                              CommitLocked / FailLocked → events
//
// # Concurrency Model
//
// One sync.Mutex guards the state. The remote engine shares it, so its timer
// and transport callbacks take the same lock before they compare tokens and
// commit; a response can never interleave with a mutation.
//
// Events are queued on the Store's events.Bus while the lock is held and
// delivered after it is released. Handlers may therefore call back into the
// Store, and they observe events in commit order.
//
// # Mutation Semantics
//
//   - Invalid input (page out of range, non-positive page size, unknown
//     sort column) is a no-op: the mutation returns false, a warning event
//     is published and the state is unchanged.
//   - A successful mutation publishes one stateChange and starts one
//     reconciliation. Local mode follows with dataLoaded immediately.
//   - SetPageSize, SetSort and SetSearch return to page 1.
//   - In remote mode SetSearch is debounced; the others dispatch at once
//     and cancel any pending debounce.
//   - A PreSend hook that vetoes an immediate request leaves the state as
//     it was. A veto of a debounced search reverts search and page to the
//     values the rows on screen were loaded for, with a stateChange each.
//   - A mutation's events are usually delivered before it returns. When
//     another goroutine is already draining the bus, that goroutine delivers
//     them instead, possibly after the mutation has returned.
//
// # Failures
//
// A terminal remote failure keeps the rows of the last commit, records
// LastError and publishes a single error event. ConsecutiveFailures resets
// on the next successful commit; Snapshot.IsOffline reports two or more.
//
// # Selection
//
// Selection ids are identities: the value of the IDKey field when the row has
// one, otherwise the row's index in the source collection (local) or its
// absolute position in the result set (remote). Ids survive pagination and
// re-sorting; with PruneSelection they are dropped once their row leaves the
// page.
package state
