// SPDX-License-Identifier: MPL-2.0

package pakrepo

import (
	"testing"

	"packmule/pkg/pakfile"
	"packmule/pkg/pakref"
	"packmule/pkg/pakver"
)

// indexEntry builds an index entry with an empty descriptor.
func indexEntry(name, version, repo string) Entry {
	ref := pakref.FullRef{Name: name, Version: pakver.MustParse(version), Repository: repo}
	return Entry{Ref: ref, Meta: &pakfile.Metadata{
		Name:                   name,
		Version:                ref.Version,
		Repository:             repo,
		RequiredManagerVersion: pakver.Requirement{Valid: true},
	}}
}

func TestIndexMatchPicksHighest(t *testing.T) {
	idx := NewIndex()
	idx.Add(indexEntry("toolkit", "1.0.0", ""))
	idx.Add(indexEntry("toolkit", "1.4.2", ""))
	idx.Add(indexEntry("toolkit", "2.0.0", ""))

	tests := []struct {
		name  string
		ref   pakref.PartialRef
		want  string
		found bool
	}{
		{
			name:  "unconstrained picks newest",
			ref:   pakref.PartialRef{Name: "toolkit"},
			want:  "2.0.0",
			found: true,
		},
		{
			name:  "range narrows the pick",
			ref:   pakref.PartialRef{Name: "toolkit", VersionRange: ">=1.0 & <2.0"},
			want:  "1.4.2",
			found: true,
		},
		{
			name:  "exact pin",
			ref:   pakref.PartialRef{Name: "toolkit", VersionRange: "=1.0.0"},
			want:  "1.0.0",
			found: true,
		},
		{
			name:  "nothing satisfies",
			ref:   pakref.PartialRef{Name: "toolkit", VersionRange: ">=3.0"},
			found: false,
		},
		{
			name:  "unknown package",
			ref:   pakref.PartialRef{Name: "missing"},
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := idx.Match(tt.ref)
			if ok != tt.found {
				t.Fatalf("Match(%q) found = %v, want %v", tt.ref, ok, tt.found)
			}
			if ok {
				if got := entry.Ref.Version.String(); got != tt.want {
					t.Errorf("Match(%q) = %s, want %s", tt.ref, got, tt.want)
				}
			}
		})
	}
}

func TestIndexMatchRepositoryPin(t *testing.T) {
	idx := NewIndex()
	idx.Add(indexEntry("toolkit", "1.0", "https://packs.example.com/main"))
	idx.Add(indexEntry("toolkit", "2.0", "https://packs.example.com/alt"))

	ref := pakref.PartialRef{Name: "toolkit", Repository: "https://packs.example.com/main"}
	entry, ok := idx.Match(ref)
	if !ok {
		t.Fatalf("Match with repository pin found nothing")
	}
	if got := entry.Ref.Version.String(); got != "1.0" {
		t.Errorf("repository pin selected %s, want the 1.0 from the pinned repository", got)
	}
}

func TestIndexVersionsNewestFirst(t *testing.T) {
	idx := NewIndex()
	idx.Add(indexEntry("toolkit", "1.0", ""))
	idx.Add(indexEntry("toolkit", "2.0", ""))
	idx.Add(indexEntry("toolkit", "1.5", ""))

	versions := idx.Versions("toolkit")
	want := []string{"2.0", "1.5", "1.0"}
	if len(versions) != len(want) {
		t.Fatalf("Versions() count = %d, want %d", len(versions), len(want))
	}
	for i, w := range want {
		if versions[i].String() != w {
			t.Errorf("Versions()[%d] = %s, want %s", i, versions[i], w)
		}
	}
}

func TestIndexAll(t *testing.T) {
	idx := NewIndex()
	idx.Add(indexEntry("zeta", "1.0", ""))
	idx.Add(indexEntry("alpha", "2.0", ""))
	idx.Add(indexEntry("alpha", "3.0", ""))

	all := idx.All()
	if idx.Len() != 3 || len(all) != 3 {
		t.Fatalf("Len() = %d, All() = %d, want 3", idx.Len(), len(all))
	}
	if all[0].Ref.Name != "alpha" || all[0].Ref.Version.String() != "3.0" {
		t.Errorf("All()[0] = %s, want alpha@3.0", all[0].Ref)
	}
	if all[2].Ref.Name != "zeta" {
		t.Errorf("All()[2] = %s, want zeta@1.0", all[2].Ref)
	}
}
