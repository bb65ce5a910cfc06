// SPDX-License-Identifier: MPL-2.0

package pakref

import (
	"errors"
	"fmt"
	"strings"

	"packmule/pkg/pakver"
)

// ErrInvalidRef is the sentinel error wrapped by RefParseError.
var ErrInvalidRef = errors.New("invalid package reference")

// repoSeparator splits the reference body from its repository URL in the
// compact reference grammar "name[@versionRange][ from repository]".
const repoSeparator = " from "

type (
	// Key is the identity of a reference for set-membership purposes:
	// the package name plus, where specified, its repository. The version
	// text is a constraint and deliberately absent from the key.
	Key string

	// PartialRef names a package and an acceptable version range, not yet
	// resolved to one concrete version.
	PartialRef struct {
		// Name is the package name. Never empty in a parsed reference.
		Name string

		// VersionRange is the textual range expression accepted for this
		// package. Empty means any version.
		VersionRange string

		// Repository is the URL of the repository the package must come
		// from. Empty means any repository.
		Repository string
	}

	// FullRef is a package identity resolved to one concrete version.
	FullRef struct {
		// Name is the package name.
		Name string

		// Version is the resolved version point.
		Version pakver.Version

		// Repository is the URL of the repository the package came from.
		Repository string
	}

	// RefParseError is returned when reference text has no package name.
	// It wraps ErrInvalidRef for errors.Is.
	RefParseError struct {
		Text string
	}
)

// Error implements the error interface.
func (e *RefParseError) Error() string {
	return fmt.Sprintf("invalid package reference %q: expected name[@versionRange][ from repository]", e.Text)
}

// Unwrap returns ErrInvalidRef so callers can use errors.Is.
func (e *RefParseError) Unwrap() error { return ErrInvalidRef }

// ParsePartial parses the compact reference grammar
// "name[@versionRange][ from repository]". Formatting the result with
// String and re-parsing yields an equivalent reference, which is the
// round-trip contract set deduplication relies on.
func ParsePartial(text string) (PartialRef, error) {
	body, repo, _ := strings.Cut(text, repoSeparator)
	name, rng, _ := strings.Cut(body, "@")

	ref := PartialRef{
		Name:         strings.TrimSpace(name),
		VersionRange: strings.TrimSpace(rng),
		Repository:   strings.TrimSpace(repo),
	}
	if ref.Name == "" {
		return PartialRef{}, &RefParseError{Text: text}
	}
	return ref, nil
}

// String formats the reference back into the compact grammar.
func (r PartialRef) String() string {
	var sb strings.Builder
	sb.WriteString(r.Name)
	if r.VersionRange != "" {
		sb.WriteString("@")
		sb.WriteString(r.VersionRange)
	}
	if r.Repository != "" {
		sb.WriteString(repoSeparator)
		sb.WriteString(r.Repository)
	}
	return sb.String()
}

// Key returns the identity of the reference: name plus repository when
// one is specified.
func (r PartialRef) Key() Key {
	if r.Repository != "" {
		return Key(r.Name + repoSeparator + r.Repository)
	}
	return Key(r.Name)
}

// SatisfiedBy reports whether the full reference resolves this partial
// reference: equal name, version inside the range (an empty range admits
// any version), and, when the partial pins a repository, the same
// repository. Range evaluation uses newest inference, the default for
// free-standing version text.
func (r PartialRef) SatisfiedBy(full FullRef) bool {
	if r.Name != full.Name {
		return false
	}
	if r.Repository != "" && r.Repository != full.Repository {
		return false
	}
	if r.VersionRange == "" {
		return true
	}
	return full.Version.InRange(r.VersionRange, pakver.InferNewest)
}

// String formats the full reference as "name@version".
func (r FullRef) String() string {
	return r.Name + "@" + r.Version.String()
}

// Key returns the identity of the full reference, matching the key a
// partial reference with the same name and repository would produce.
func (r FullRef) Key() Key {
	if r.Repository != "" {
		return Key(r.Name + repoSeparator + r.Repository)
	}
	return Key(r.Name)
}
