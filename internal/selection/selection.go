// Package selection tracks which rows the user has selected, independent of
// the page currently shown.
package selection

import (
	"slices"
	"strings"
)

// Mode controls how many rows may be selected at once.
type Mode int

const (
	Multi Mode = iota
	Single
)

// ParseMode maps "single" to Single and everything else to Multi.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), "single") {
		return Single
	}
	return Multi
}

func (m Mode) String() string {
	if m == Single {
		return "single"
	}
	return "multi"
}

// Tracker holds a set of row ids. It is not safe for concurrent use; the
// state store owns it and serializes access.
type Tracker struct {
	mode Mode
	ids  map[string]struct{}
}

// New returns an empty tracker.
func New(mode Mode) *Tracker {
	return &Tracker{mode: mode, ids: make(map[string]struct{})}
}

// Mode returns the configured selection mode.
func (t *Tracker) Mode() Mode { return t.mode }

// Select adds or removes id and reports whether the set changed. In Single
// mode selecting an id replaces any prior selection.
func (t *Tracker) Select(id string, selected bool) bool {
	_, had := t.ids[id]
	if !selected {
		if !had {
			return false
		}
		delete(t.ids, id)
		return true
	}
	if t.mode == Single {
		if had && len(t.ids) == 1 {
			return false
		}
		clear(t.ids)
		t.ids[id] = struct{}{}
		return true
	}
	if had {
		return false
	}
	t.ids[id] = struct{}{}
	return true
}

// SelectAll adds or removes every id in ids. In Single mode only a
// deselection is honoured; selecting many rows is refused and reports false.
func (t *Tracker) SelectAll(ids []string, selected bool) bool {
	if selected && t.mode == Single {
		return false
	}
	changed := false
	for _, id := range ids {
		_, had := t.ids[id]
		switch {
		case selected && !had:
			t.ids[id] = struct{}{}
			changed = true
		case !selected && had:
			delete(t.ids, id)
			changed = true
		}
	}
	return changed
}

// Clear empties the set and reports whether anything was removed.
func (t *Tracker) Clear() bool {
	if len(t.ids) == 0 {
		return false
	}
	clear(t.ids)
	return true
}

// Has reports whether id is selected.
func (t *Tracker) Has(id string) bool {
	_, ok := t.ids[id]
	return ok
}

// Len returns the number of tracked ids.
func (t *Tracker) Len() int { return len(t.ids) }

// IDs returns the tracked ids in sorted order.
func (t *Tracker) IDs() []string {
	out := make([]string, 0, len(t.ids))
	for id := range t.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Retain drops every tracked id not present in keep and reports whether
// anything was dropped.
func (t *Tracker) Retain(keep []string) bool {
	allowed := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		allowed[id] = struct{}{}
	}
	changed := false
	for id := range t.ids {
		if _, ok := allowed[id]; !ok {
			delete(t.ids, id)
			changed = true
		}
	}
	return changed
}
