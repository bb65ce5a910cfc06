// SPDX-License-Identifier: MPL-2.0

package pakrepo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"packmule/pkg/pakfile"
	"packmule/pkg/pakref"
	"packmule/pkg/pakver"
)

// Sentinel errors wrapped by the typed resolution errors below.
var (
	ErrUnresolved   = errors.New("unresolved package reference")
	ErrConflict     = errors.New("conflicting package references")
	ErrIncompatible = errors.New("incompatible package")
)

type (
	// Resolution pairs a requested partial reference with the index
	// entry selected for it.
	Resolution struct {
		// Requested is the partial reference that asked for the package.
		// When several references share one identity, the first one seen
		// is recorded.
		Requested pakref.PartialRef

		// Entry is the package version selected from the index.
		Entry Entry
	}

	// Resolver walks dependency and import sets against an index.
	// Manager is the running manager version and App the host
	// application version; both gate every selected package.
	Resolver struct {
		// Index supplies the available package versions.
		Index *Index

		// Manager is the running manager's own version (four components).
		Manager pakver.Version

		// App is the host application version packages declare
		// compatibility against.
		App pakver.Version

		// mu serializes Resolve calls that share this resolver.
		mu sync.Mutex
	}

	// UnresolvedError is returned when no indexed package satisfies a
	// reference. It wraps ErrUnresolved.
	UnresolvedError struct {
		Ref pakref.PartialRef
	}

	// ConflictError is returned when a second reference for an already
	// resolved identity rejects the version that was selected for it.
	// It wraps ErrConflict.
	ConflictError struct {
		Selected  pakref.FullRef
		Requested pakref.PartialRef
	}

	// IncompatibleError is returned when the root descriptor or a
	// selected package fails the manager-version or app-version gate.
	// It wraps ErrIncompatible.
	IncompatibleError struct {
		Ref    pakref.FullRef
		Reason string
	}
)

// Error implements the error interface.
func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("no available package satisfies %q", e.Ref)
}

// Unwrap returns ErrUnresolved so callers can use errors.Is.
func (e *UnresolvedError) Unwrap() error { return ErrUnresolved }

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("selected %s does not satisfy the additional reference %q", e.Selected, e.Requested)
}

// Unwrap returns ErrConflict so callers can use errors.Is.
func (e *ConflictError) Unwrap() error { return ErrConflict }

// Error implements the error interface.
func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("package %s is incompatible: %s", e.Ref, e.Reason)
}

// Unwrap returns ErrIncompatible so callers can use errors.Is.
func (e *IncompatibleError) Unwrap() error { return ErrIncompatible }

// Resolve computes the dependency closure of a root descriptor: its
// dependency and import sets, then transitively the sets of every
// selected package. Identities are resolved at most once; a later
// reference to an identity already selected must be satisfied by the
// selection or resolution fails with a ConflictError. The result is
// sorted by identity key.
func (r *Resolver) Resolve(ctx context.Context, root *pakfile.Metadata) ([]Resolution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// The root descriptor passes through the same compatibility gates
	// as every package it pulls in.
	if err := r.gate(root.FullRef(), root); err != nil {
		return nil, err
	}

	selected := make(map[pakref.Key]Resolution)
	queue := refsOf(root)

	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("resolution canceled: %w", ctx.Err())
		default:
		}

		ref := queue[0]
		queue = queue[1:]

		if prior, ok := selected[ref.Key()]; ok {
			if !ref.SatisfiedBy(prior.Entry.Ref) {
				return nil, &ConflictError{Selected: prior.Entry.Ref, Requested: ref}
			}
			continue
		}

		entry, ok := r.Index.Match(ref)
		if !ok {
			return nil, &UnresolvedError{Ref: ref}
		}
		if err := r.gate(entry.Ref, entry.Meta); err != nil {
			return nil, err
		}

		selected[ref.Key()] = Resolution{Requested: ref, Entry: entry}
		queue = append(queue, refsOf(entry.Meta)...)
	}

	out := make([]Resolution, 0, len(selected))
	for _, res := range selected {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Requested.Key() < out[j].Requested.Key()
	})
	return out, nil
}

// gate checks a descriptor's manager-version and app-version
// constraints, whether it is the root or a selected package.
func (r *Resolver) gate(ref pakref.FullRef, meta *pakfile.Metadata) error {
	req := meta.RequiredManagerVersion
	if !req.Valid {
		return &IncompatibleError{Ref: ref, Reason: "unparseable minimum manager version"}
	}
	if !req.SatisfiedBy(r.Manager) {
		return &IncompatibleError{
			Ref:    ref,
			Reason: fmt.Sprintf("requires manager %s or newer, running %s", req.Minimal, r.Manager),
		}
	}
	if !meta.CompatibleWithApp(r.App) {
		return &IncompatibleError{
			Ref:    ref,
			Reason: fmt.Sprintf("app version %s outside compatible range %q", r.App, meta.CompatibleAppVersion),
		}
	}
	return nil
}

// refsOf returns a descriptor's dependency and import references in
// stable order, dependencies first.
func refsOf(m *pakfile.Metadata) []pakref.PartialRef {
	refs := m.Dependencies.Refs()
	return append(refs, m.Imports.Refs()...)
}
