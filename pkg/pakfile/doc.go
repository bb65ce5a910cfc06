// SPDX-License-Identifier: MPL-2.0

// Package pakfile parses packmule package descriptors.
//
// A descriptor is an HJSON or JSON document describing one package:
// identity (name and version), the version range of the host application
// it is compatible with, authorship fields, an optional install script,
// and two deduplicated sets of partial references (dependencies and
// imports). HJSON input is normalized to plain JSON first; a single JSON
// path then validates the document against an embedded CUE schema and
// populates a [Metadata].
//
// Parsing mutates only the Metadata passed in and is otherwise
// referentially transparent, so independent descriptors can be parsed
// from concurrent resolver workers.
package pakfile
