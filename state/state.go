// Package state tracks the cumulative set of listing identifiers observed
// across runs. The set only grows: there is no eviction or expiry, an
// accepted tradeoff at the scale of a single saved search.
package state

import "sort"

// Set is an unordered collection of listing identifiers.
type Set map[string]struct{}

// NewSet builds a set from the given identifiers.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts an identifier.
func (s Set) Add(id string) {
	s[id] = struct{}{}
}

// Has reports membership.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of identifiers.
func (s Set) Len() int {
	return len(s)
}

// SortedIDs returns the identifiers in lexical order, the stable shape used
// for serialization and diagnostics.
func (s Set) SortedIDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Diff returns the identifiers in current that are absent from seen. Neither
// input is modified.
func Diff(current, seen Set) Set {
	out := make(Set)
	for id := range current {
		if !seen.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Merge returns the union of seen and current. Neither input is modified;
// identifiers are never removed.
func Merge(seen, current Set) Set {
	out := make(Set, len(seen)+len(current))
	for id := range seen {
		out[id] = struct{}{}
	}
	for id := range current {
		out[id] = struct{}{}
	}
	return out
}
