// SPDX-License-Identifier: MPL-2.0

package pakver

type (
	// Requirement gates compatibility between a package and the running
	// manager: the package is usable when the manager's own version is at
	// least Minimal. Produced wherever a descriptor declares a
	// minimum-manager-version constraint; read-only afterward.
	Requirement struct {
		// Valid records whether the requirement text itself parsed.
		Valid bool

		// Minimal is the smallest manager version the package accepts.
		Minimal Version
	}
)

// ParseRequirement parses a minimum-version constraint. Malformed text
// yields an invalid Requirement with a zero Minimal; the caller decides
// whether an invalid requirement blocks the package.
func ParseRequirement(text string) Requirement {
	v, err := Parse(text)
	return Requirement{Valid: err == nil, Minimal: v}
}

// SatisfiedBy reports whether the given manager version meets the
// requirement. The manager version comes from a fixed four-component
// source, so absent components on both sides infer to zero.
func (r Requirement) SatisfiedBy(manager Version) bool {
	return r.Minimal.Compare(manager, InferZero) <= 0
}

// String formats the requirement's minimal version.
func (r Requirement) String() string {
	return r.Minimal.String()
}
