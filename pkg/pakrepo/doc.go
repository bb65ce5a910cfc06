// SPDX-License-Identifier: MPL-2.0

// Package pakrepo resolves partial package references against the
// packages actually available to the manager.
//
// An [Index] collects full references (with their parsed descriptors)
// from one or more repositories; [LoadDir] fills one from a directory of
// descriptor files and [GitFetcher] lists and fetches git-hosted
// packages by version tag. A [Resolver] walks a root descriptor's
// dependency and import sets against the index, deduplicating by
// identity key and gating on manager and host-application
// compatibility, and its result can be pinned to disk as a [LockFile].
//
// The value types in pkg/pakver, pkg/pakref, and pkg/pakfile are pure;
// the locking for shared indexes and resolver state lives here.
package pakrepo
