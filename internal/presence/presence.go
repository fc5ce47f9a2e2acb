// Package presence holds the online-player roster. The roster is only
// ever mutated by two server-driven operations: a full sync that
// replaces it, and an incremental diff of joins and leaves. Both are
// pure: they return a new roster and never touch the input on failure.
package presence

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

var ErrMalformedPresence = errors.New("malformed presence payload")

// Meta is one session's metadata. A player with two browser tabs open
// has two metas under the same name.
type Meta struct {
	Color    string `json:"color"`
	OnlineAt string `json:"online_at"`
}

// Map is the roster, keyed by player name. Session order is preserved
// as delivered: the head of the list is the earliest surviving session.
type Map map[string][]Meta

type wireEntry struct {
	Metas []Meta `json:"metas"`
}

type wireDiff struct {
	Joins  map[string]wireEntry
	Leaves map[string]wireEntry
}

// SyncFull decodes a presence_state payload and replaces the roster.
// The result's key set is exactly the payload's key set; the current
// roster is only read to satisfy the common call shape and is returned
// untouched on decode failure.
func SyncFull(current Map, raw json.RawMessage) (Map, error) {
	entries, err := decodeEntries(raw)
	if err != nil {
		return current, err
	}
	return MergeFull(entries), nil
}

// SyncDiff decodes a presence_diff payload and applies its joins and
// leaves atomically against current. On decode failure current is
// returned untouched.
func SyncDiff(current Map, raw json.RawMessage) (Map, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return current, fmt.Errorf("%w: %v", ErrMalformedPresence, err)
	}
	var diff wireDiff
	for _, key := range []string{"joins", "leaves"} {
		sub, ok := fields[key]
		if !ok {
			return current, fmt.Errorf("%w: missing %q", ErrMalformedPresence, key)
		}
		entries, err := decodeEntries(sub)
		if err != nil {
			return current, err
		}
		if key == "joins" {
			diff.Joins = entries
		} else {
			diff.Leaves = entries
		}
	}
	return Merge(current, diff.Joins, diff.Leaves), nil
}

func decodeEntries(raw json.RawMessage) (map[string]wireEntry, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPresence, err)
	}
	entries := make(map[string]wireEntry, len(fields))
	for name, sub := range fields {
		var e wireEntry
		if err := json.Unmarshal(sub, &e); err != nil {
			return nil, fmt.Errorf("%w: entry %q: %v", ErrMalformedPresence, name, err)
		}
		if e.Metas == nil {
			return nil, fmt.Errorf("%w: entry %q missing metas", ErrMalformedPresence, name)
		}
		entries[name] = e
	}
	return entries, nil
}

// MergeFull builds a fresh roster from a full-state payload. Every name
// in the payload is present in the result; nothing else is.
func MergeFull(entries map[string]wireEntry) Map {
	next := make(Map, len(entries))
	for name, e := range entries {
		next[name] = slices.Clone(e.Metas)
	}
	return next
}

// Merge applies joins and leaves against current and returns the new
// roster. Joins extend a name's session list at the tail, so existing
// sessions keep their head position. Leaves remove sessions equal to
// the departed metadata; a name left with zero sessions is removed
// entirely.
func Merge(current Map, joins, leaves map[string]wireEntry) Map {
	next := make(Map, len(current))
	for name, metas := range current {
		next[name] = slices.Clone(metas)
	}

	for name, e := range joins {
		kept := next[name]
		for _, joined := range e.Metas {
			if !slices.Contains(kept, joined) {
				kept = append(kept, joined)
			}
		}
		next[name] = kept
	}

	for name, e := range leaves {
		kept := next[name][:0:0]
		for _, meta := range next[name] {
			if !slices.Contains(e.Metas, meta) {
				kept = append(kept, meta)
			}
		}
		if len(kept) == 0 {
			delete(next, name)
		} else {
			next[name] = kept
		}
	}
	return next
}

// First returns the display metadata for a name: the first session as
// delivered wins when a player has several. The second return is false
// for an unknown or session-less name.
func (m Map) First(name string) (Meta, bool) {
	metas := m[name]
	if len(metas) == 0 {
		return Meta{}, false
	}
	return metas[0], true
}

// Names lists roster names sorted for stable rendering.
func (m Map) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
