// SPDX-License-Identifier: MPL-2.0

package pakrepo

import (
	"sort"
	"sync"

	"packmule/pkg/pakfile"
	"packmule/pkg/pakref"
	"packmule/pkg/pakver"
)

type (
	// Entry is one package version known to the index: its resolved
	// reference plus the parsed descriptor it was loaded from.
	Entry struct {
		Ref  pakref.FullRef
		Meta *pakfile.Metadata
	}

	// Index is a thread-safe collection of available package versions.
	// Multiple resolver workers may match against one index while
	// repositories keep adding entries.
	Index struct {
		mu sync.RWMutex

		// byName groups entries by package name; versions of one package
		// living in different repositories share a slot.
		byName map[string][]Entry
	}
)

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{byName: make(map[string][]Entry)}
}

// Add registers a package version.
func (x *Index) Add(e Entry) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.byName[e.Ref.Name] = append(x.byName[e.Ref.Name], e)
}

// Match returns the best entry satisfying the partial reference: among
// all candidates the reference admits, the one with the highest version.
// The boolean is false when nothing satisfies the reference.
func (x *Index) Match(ref pakref.PartialRef) (Entry, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var best Entry
	found := false
	for _, e := range x.byName[ref.Name] {
		if !ref.SatisfiedBy(e.Ref) {
			continue
		}
		if !found || best.Ref.Version.Less(e.Ref.Version, pakver.InferNewest) {
			best = e
			found = true
		}
	}
	return best, found
}

// Versions returns all known versions of a package, newest first.
func (x *Index) Versions(name string) []pakver.Version {
	x.mu.RLock()
	defer x.mu.RUnlock()

	versions := make([]pakver.Version, 0, len(x.byName[name]))
	for _, e := range x.byName[name] {
		versions = append(versions, e.Ref.Version)
	}
	sort.Slice(versions, func(i, j int) bool {
		return versions[j].Less(versions[i], pakver.InferNewest)
	})
	return versions
}

// All returns every entry sorted by name, then by version descending.
func (x *Index) All() []Entry {
	x.mu.RLock()
	defer x.mu.RUnlock()

	names := make([]string, 0, len(x.byName))
	for name := range x.byName {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Entry
	for _, name := range names {
		entries := append([]Entry(nil), x.byName[name]...)
		sort.Slice(entries, func(i, j int) bool {
			return entries[j].Ref.Version.Less(entries[i].Ref.Version, pakver.InferNewest)
		})
		out = append(out, entries...)
	}
	return out
}

// Len returns the number of indexed package versions.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()

	n := 0
	for _, entries := range x.byName {
		n += len(entries)
	}
	return n
}
