// SPDX-License-Identifier: MPL-2.0

package pakfile

import (
	"errors"
	"fmt"

	"packmule/pkg/pakref"
	"packmule/pkg/pakver"
)

// ErrInvalidDescriptor is the sentinel error wrapped by DescriptorError.
var ErrInvalidDescriptor = errors.New("invalid package descriptor")

type (
	// Metadata is a parsed package descriptor. Created empty (or reused)
	// by the caller and populated in one parse pass; the dependency and
	// import sets are cleared and rebuilt on every parse, never appended.
	Metadata struct {
		// Self identifies this package. Derived exactly once from
		// name/version/repository when the caller has not supplied it;
		// a Self already set before parsing is left untouched.
		Self pakref.PartialRef

		// Name is the package name. Mandatory.
		Name string

		// Version is the package's own version. Mandatory.
		Version pakver.Version

		// RequiredManagerVersion gates the running manager. A descriptor
		// without the field yields a valid requirement with a zero
		// minimum, which every manager satisfies.
		RequiredManagerVersion pakver.Requirement

		// CompatibleAppVersion is the range expression for host
		// application versions this package supports.
		CompatibleAppVersion string

		// Optional authorship and provenance fields.
		Description string
		Author      string
		ProjectURL  string
		License     string
		Repository  string

		// RawText is the descriptor document exactly as handed to the
		// parser.
		RawText string

		// Script is the install script handed to the script host.
		Script string

		// Dependencies are the packages this package needs installed.
		Dependencies pakref.Set

		// Imports are the packages whose content this package pulls into
		// its own installation, kept separate from Dependencies.
		Imports pakref.Set
	}

	// DescriptorError is the fatal parse failure for a descriptor:
	// malformed document or missing mandatory field. The descriptor is
	// unusable; no partially populated Metadata escapes. It wraps
	// ErrInvalidDescriptor for errors.Is.
	DescriptorError struct {
		// Reason says what made the descriptor unusable.
		Reason string

		// Cause is the underlying decode or validation error, if any.
		Cause error
	}
)

// Error implements the error interface.
func (e *DescriptorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid package descriptor: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("invalid package descriptor: %s", e.Reason)
}

// Unwrap returns the sentinel and cause chain for errors.Is and errors.As.
func (e *DescriptorError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrInvalidDescriptor, e.Cause}
	}
	return []error{ErrInvalidDescriptor}
}

// FullRef returns the package's own resolved reference.
func (m *Metadata) FullRef() pakref.FullRef {
	return pakref.FullRef{
		Name:       m.Name,
		Version:    m.Version,
		Repository: m.Repository,
	}
}

// CompatibleWithApp reports whether the host application version falls
// inside the descriptor's compatible range. A descriptor that declares
// no range is compatible with any host.
func (m *Metadata) CompatibleWithApp(app pakver.Version) bool {
	if m.CompatibleAppVersion == "" {
		return true
	}
	return app.InRange(m.CompatibleAppVersion, pakver.InferNewest)
}

// inferSelf derives Self from name/version/repository. Calling it on a
// Metadata whose Self is already set changes nothing.
func (m *Metadata) inferSelf() {
	if m.Self.Name != "" {
		return
	}
	m.Self = pakref.PartialRef{
		Name:         m.Name,
		VersionRange: m.Version.String(),
		Repository:   m.Repository,
	}
}
