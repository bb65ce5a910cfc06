// SPDX-License-Identifier: MPL-2.0

// Package pakver implements scoped semantic versions for packmule packages.
//
// A [Version] carries one to four dot-separated numeric components
// (major.minor.build.revision). Components deeper than the deepest one
// written in the source text are *inferred*, not stored: an [Inference]
// policy maps each absent component to a concrete integer whenever two
// versions are ordered, equated, or hashed. The same policy drives the
// textual range mini-language evaluated by [Range] and the
// minimum-manager gate expressed by [Requirement].
//
// Key types:
//   - [Version]: immutable scoped version value
//   - [Scope]: deepest explicitly supplied component
//   - [Inference]: closed set of policies for absent components
//   - [Range]: ordered relation clauses, folded strictly left to right
//   - [Requirement]: minimal-version compatibility gate
package pakver
