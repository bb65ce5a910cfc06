// SPDX-License-Identifier: MPL-2.0

package pakref

import "sort"

type (
	// Set is a deduplicating container of partial references keyed by
	// identity (name plus repository). Inserting a second reference with
	// an identity already present replaces the stored entry: last write
	// wins, deterministically, never an error. The version constraint
	// text plays no part in membership.
	//
	// The zero value is ready to use. Set is not safe for concurrent
	// mutation; callers sharing one across goroutines own the locking.
	Set struct {
		entries map[Key]PartialRef
	}
)

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{}
}

// Add inserts the reference, replacing any entry with the same identity.
// It reports whether an existing entry was replaced.
func (s *Set) Add(ref PartialRef) bool {
	if s.entries == nil {
		s.entries = make(map[Key]PartialRef)
	}
	key := ref.Key()
	_, existed := s.entries[key]
	s.entries[key] = ref
	return existed
}

// Get returns the stored reference for the given identity.
func (s *Set) Get(key Key) (PartialRef, bool) {
	ref, ok := s.entries[key]
	return ref, ok
}

// Contains reports whether an entry with the given identity is present.
func (s *Set) Contains(key Key) bool {
	_, ok := s.entries[key]
	return ok
}

// Remove deletes the entry with the given identity, if present.
func (s *Set) Remove(key Key) {
	delete(s.entries, key)
}

// Clear removes all entries.
func (s *Set) Clear() {
	s.entries = nil
}

// Len returns the number of entries.
func (s *Set) Len() int {
	return len(s.entries)
}

// Refs returns the entries sorted by identity key, so iteration order is
// stable across parses of the same descriptor.
func (s *Set) Refs() []PartialRef {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	refs := make([]PartialRef, 0, len(keys))
	for _, k := range keys {
		refs = append(refs, s.entries[Key(k)])
	}
	return refs
}
