// Package ui renders a state.Store as an interactive terminal table.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. It is a pure collaborator of the store:
// key presses call store mutations, and the store's events flow back in as
// messages that trigger a fresh Snapshot.
//
//	key press ──→ handleKey ──→ store.SetPage / SetSort / ...
//	                                  │ (events, possibly async)
//	bridge (buffered chan) ←──────────┘
//	   │
//	   └──→ storeEventMsg ──→ fetchSnapshotCmd ──→ snapshotMsg ──→ View
//
// Event handlers never block and never touch the Bubble Tea program
// directly; they only push into the bridge channel, which a command drains.
//
// # Package Structure
//
//   - app.go: Model, Init/Update, table layout, Run
//   - input.go: key handling and the search box
//   - bridge.go: store subscription feeding the update loop
//   - view.go: header, notice line and command bar
//   - help.go: help overlay
//   - keys.go: key bindings
//   - theme.go: color themes and lipgloss styles
//   - cells.go: row projection shared with the dump command
//
// # Search
//
// Each edit in the search box calls SetSearch. Local stores filter on every
// keystroke; remote stores debounce, so typing quickly issues one request.
package ui
