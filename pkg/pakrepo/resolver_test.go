// SPDX-License-Identifier: MPL-2.0

package pakrepo

import (
	"context"
	"errors"
	"testing"

	"packmule/pkg/pakfile"
	"packmule/pkg/pakver"
)

// parseMeta builds a Metadata from descriptor JSON, failing the test on
// parse errors.
func parseMeta(t *testing.T, doc string) *pakfile.Metadata {
	t.Helper()
	m := &pakfile.Metadata{}
	if err := pakfile.ParseJSON([]byte(doc), m); err != nil {
		t.Fatalf("ParseJSON(%s): %v", doc, err)
	}
	return m
}

// addPackage parses a descriptor and indexes it.
func addPackage(t *testing.T, idx *Index, doc string) {
	t.Helper()
	m := parseMeta(t, doc)
	idx.Add(Entry{Ref: m.FullRef(), Meta: m})
}

func newTestResolver(idx *Index) *Resolver {
	return &Resolver{
		Index:   idx,
		Manager: pakver.New(2, 0, 0, 0),
		App:     pakver.New(1, 8, 0, 0),
	}
}

func TestResolveTransitive(t *testing.T) {
	idx := NewIndex()
	addPackage(t, idx, `{"name":"base","version":"1.2.0"}`)
	addPackage(t, idx, `{"name":"middle","version":"2.0","dependencies":["base@>=1.0"]}`)

	root := parseMeta(t, `{"name":"app-pack","version":"1.0","dependencies":["middle"]}`)

	resolutions, err := newTestResolver(idx).Resolve(context.Background(), root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if len(resolutions) != 2 {
		t.Fatalf("resolution count = %d, want 2 (middle plus transitive base)", len(resolutions))
	}
	// Sorted by identity key: base before middle.
	if resolutions[0].Entry.Ref.Name != "base" || resolutions[1].Entry.Ref.Name != "middle" {
		t.Errorf("resolutions = [%s, %s], want [base, middle]",
			resolutions[0].Entry.Ref, resolutions[1].Entry.Ref)
	}
	if got := resolutions[0].Entry.Ref.Version.String(); got != "1.2.0" {
		t.Errorf("base resolved to %s, want 1.2.0", got)
	}
}

func TestResolveImportsWalkedToo(t *testing.T) {
	idx := NewIndex()
	addPackage(t, idx, `{"name":"artwork","version":"3.0"}`)

	root := parseMeta(t, `{"name":"app-pack","version":"1.0","imports":["artwork@=3.0"]}`)

	resolutions, err := newTestResolver(idx).Resolve(context.Background(), root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(resolutions) != 1 || resolutions[0].Entry.Ref.Name != "artwork" {
		t.Errorf("imports were not resolved: %v", resolutions)
	}
}

func TestResolveDeduplicatesSharedDependency(t *testing.T) {
	idx := NewIndex()
	addPackage(t, idx, `{"name":"base","version":"1.5"}`)
	addPackage(t, idx, `{"name":"left","version":"1.0","dependencies":["base@>=1.0"]}`)
	addPackage(t, idx, `{"name":"right","version":"1.0","dependencies":["base@>=1.2"]}`)

	root := parseMeta(t, `{"name":"app-pack","version":"1.0","dependencies":["left","right"]}`)

	resolutions, err := newTestResolver(idx).Resolve(context.Background(), root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(resolutions) != 3 {
		t.Errorf("resolution count = %d, want 3: shared base resolved once", len(resolutions))
	}
}

func TestResolveConflict(t *testing.T) {
	idx := NewIndex()
	addPackage(t, idx, `{"name":"base","version":"2.0"}`)
	addPackage(t, idx, `{"name":"left","version":"1.0","dependencies":["base@>=2.0"]}`)
	addPackage(t, idx, `{"name":"right","version":"1.0","dependencies":["base@<2.0"]}`)

	root := parseMeta(t, `{"name":"app-pack","version":"1.0","dependencies":["left","right"]}`)

	_, err := newTestResolver(idx).Resolve(context.Background(), root)
	if err == nil {
		t.Fatalf("expected conflict error")
	}
	if !errors.Is(err, ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}

func TestResolveUnresolved(t *testing.T) {
	idx := NewIndex()
	root := parseMeta(t, `{"name":"app-pack","version":"1.0","dependencies":["ghost@>=1.0"]}`)

	_, err := newTestResolver(idx).Resolve(context.Background(), root)
	if err == nil {
		t.Fatalf("expected unresolved error")
	}
	var unresolved *UnresolvedError
	if !errors.As(err, &unresolved) {
		t.Fatalf("error = %v, want UnresolvedError", err)
	}
	if unresolved.Ref.Name != "ghost" {
		t.Errorf("UnresolvedError.Ref.Name = %q, want ghost", unresolved.Ref.Name)
	}
}

func TestResolveManagerGate(t *testing.T) {
	idx := NewIndex()
	addPackage(t, idx, `{"name":"modern","version":"1.0","minimumManagerVersion":"3.0"}`)

	root := parseMeta(t, `{"name":"app-pack","version":"1.0","dependencies":["modern"]}`)

	// Resolver runs manager 2.0.0.0, below the declared minimum 3.0.
	_, err := newTestResolver(idx).Resolve(context.Background(), root)
	if !errors.Is(err, ErrIncompatible) {
		t.Errorf("error = %v, want ErrIncompatible", err)
	}
}

func TestResolveAppGate(t *testing.T) {
	idx := NewIndex()
	addPackage(t, idx, `{"name":"legacy","version":"1.0","compatibleAppVersion":"<1.5"}`)

	root := parseMeta(t, `{"name":"app-pack","version":"1.0","dependencies":["legacy"]}`)

	// Resolver runs app 1.8.0.0, outside the declared range.
	_, err := newTestResolver(idx).Resolve(context.Background(), root)
	if !errors.Is(err, ErrIncompatible) {
		t.Errorf("error = %v, want ErrIncompatible", err)
	}
}

func TestResolveGatesRootDescriptor(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "root demands a newer manager",
			doc:  `{"name":"root","version":"1.0","minimumManagerVersion":"99.0"}`,
		},
		{
			name: "root incompatible with the app",
			doc:  `{"name":"root","version":"1.0","compatibleAppVersion":"<1.5"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := parseMeta(t, tt.doc)

			// Even an empty-closure root must not resolve past its own gates.
			resolutions, err := newTestResolver(NewIndex()).Resolve(context.Background(), root)
			if !errors.Is(err, ErrIncompatible) {
				t.Fatalf("error = %v, want ErrIncompatible", err)
			}
			if resolutions != nil {
				t.Errorf("resolutions = %v, want nil on a gated root", resolutions)
			}

			var incompatible *IncompatibleError
			if !errors.As(err, &incompatible) {
				t.Fatalf("error = %v, want IncompatibleError", err)
			}
			if incompatible.Ref.Name != "root" {
				t.Errorf("IncompatibleError.Ref.Name = %q, want root", incompatible.Ref.Name)
			}
		})
	}
}

func TestResolveCanceledContext(t *testing.T) {
	idx := NewIndex()
	addPackage(t, idx, `{"name":"base","version":"1.0"}`)
	root := parseMeta(t, `{"name":"app-pack","version":"1.0","dependencies":["base"]}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestResolver(idx).Resolve(ctx, root); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
