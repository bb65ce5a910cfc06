// SPDX-License-Identifier: MPL-2.0

// Package pakref models package identity for packmule.
//
// A [PartialRef] names a package together with an acceptable version
// range and an optional source repository — a dependency or import entry
// that has not yet been resolved to one concrete version. A [FullRef] is
// the resolved form: exact name, exact version, known repository.
//
// Identity for set membership is the (name, repository) pair; the
// version text is a constraint, never part of the identity. [Set] keeps
// partial references deduplicated by that key.
package pakref
