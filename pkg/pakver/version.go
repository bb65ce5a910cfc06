// SPDX-License-Identifier: MPL-2.0

package pakver

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidVersion is the sentinel error wrapped by VersionParseError.
var ErrInvalidVersion = errors.New("invalid version")

const (
	// ScopeMajor means only the major component was written explicitly.
	ScopeMajor Scope = iota
	// ScopeMinor means components down to the minor one were written.
	ScopeMinor
	// ScopeBuild means components down to the build one were written.
	ScopeBuild
	// ScopeRevision means all four components were written.
	ScopeRevision
)

const (
	// InferNewest maps an absent component to the maximum possible value.
	// This is the default for free-standing versions: "1.2" is read as the
	// newest version inside the 1.2 line.
	InferNewest Inference = iota
	// InferZero maps an absent component to zero. Used for versions derived
	// from fixed four-component sources, such as the running manager itself.
	InferZero
)

// maxComponent is the value InferNewest substitutes for absent components.
const maxComponent = math.MaxInt32

type (
	// Scope identifies the deepest version component that was explicitly
	// supplied. Components deeper than the scope were inferred, not stated.
	Scope int

	// Inference maps an absent version component to a concrete integer.
	// It is a closed enumeration: exactly the two policies above exist.
	// The policy is part of the comparison context — two versions may be
	// equal under InferZero ("1.2" vs "1.2.0.0") yet unequal under
	// InferNewest.
	Inference int

	// Version is an immutable scoped semantic version with one to four
	// numeric components. The zero value is version "0" at ScopeMajor.
	//
	// Ordering, equality, and hashing operate on the four-slot projection
	// produced by an Inference policy, never on the raw components, so
	// values constructed from differently precise text still compare
	// consistently.
	Version struct {
		// parts holds the component values; slots at or beyond depth are
		// meaningless and always zero.
		parts [4]int

		// depth is the number of leading explicit components (1..4).
		// 0 only in the zero value, which behaves like depth 1.
		depth int
	}

	// VersionParseError is returned when version text has no leading
	// integer component. It wraps ErrInvalidVersion for errors.Is.
	VersionParseError struct {
		Text string
	}
)

// versionRegex matches 1-4 dot-separated components. Inner groups are
// optional so a trailing separator with an empty final component is
// tolerated ("1.2." parses minor and leaves build unset). The pattern is
// unanchored at the end: trailing text beyond the grammar is simply
// unmatched and ignored.
var versionRegex = regexp.MustCompile(`^\s*(\d+)(?:\.(\d+)?(?:\.(\d+)?(?:\.(\d+)?)?)?)?`)

// Error implements the error interface.
func (e *VersionParseError) Error() string {
	return fmt.Sprintf("invalid version %q: expected 1-4 dot-separated integers", e.Text)
}

// Unwrap returns ErrInvalidVersion so callers can use errors.Is.
func (e *VersionParseError) Unwrap() error { return ErrInvalidVersion }

// New constructs a Version from explicit components. One to four
// components are honored; extras beyond the fourth are ignored and a
// call without components yields the zero version.
func New(components ...int) Version {
	var v Version
	for i, c := range components {
		if i == len(v.parts) {
			break
		}
		v.parts[i] = c
		v.depth = i + 1
	}
	return v
}

// Parse reads a version from text. The grammar accepts one to four
// dot-separated non-negative integers; on failure the zero version and a
// VersionParseError are returned. Parse never panics.
func Parse(text string) (Version, error) {
	m := versionRegex.FindStringSubmatch(text)
	if m == nil {
		return Version{}, &VersionParseError{Text: text}
	}

	var v Version
	for i, g := range m[1:] {
		if g == "" {
			continue
		}
		n, err := strconv.Atoi(g)
		if err != nil {
			// Only reachable on overflow; treat like absent digits.
			return Version{}, &VersionParseError{Text: text}
		}
		v.parts[i] = n
		v.depth = i + 1
	}
	return v, nil
}

// MustParse is Parse for trusted literals; it panics on malformed text.
func MustParse(text string) Version {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}

// Scope returns the deepest explicitly supplied component.
func (v Version) Scope() Scope {
	if v.depth == 0 {
		return ScopeMajor
	}
	return Scope(v.depth - 1)
}

// Major returns the major component.
func (v Version) Major() int { return v.parts[0] }

// Minor returns the minor component and whether it was explicit.
func (v Version) Minor() (int, bool) { return v.parts[1], v.depth >= 2 }

// Build returns the build component and whether it was explicit.
func (v Version) Build() (int, bool) { return v.parts[2], v.depth >= 3 }

// Revision returns the revision component and whether it was explicit.
func (v Version) Revision() (int, bool) { return v.parts[3], v.depth >= 4 }

// WithMinor returns a copy with the minor component set explicitly.
func (v Version) WithMinor(n int) Version { return v.with(1, n) }

// WithBuild returns a copy with the build component set explicitly.
// The minor component becomes explicit too (zero if it was absent).
func (v Version) WithBuild(n int) Version { return v.with(2, n) }

// WithRevision returns a copy with the revision component set explicitly.
// Shallower absent components become explicit zeros.
func (v Version) WithRevision(n int) Version { return v.with(3, n) }

func (v Version) with(i, n int) Version {
	v.parts[i] = n
	if v.depth < i+1 {
		v.depth = i + 1
	}
	return v
}

// Components returns the four-slot projection under the given inference
// policy. This projection — not the raw components — is what orders,
// equates, and hashes versions.
func (v Version) Components(inf Inference) [4]int {
	depth := v.depth
	if depth == 0 {
		depth = 1
	}
	out := v.parts
	for i := depth; i < len(out); i++ {
		out[i] = inf.absent()
	}
	return out
}

// Compare orders two versions lexicographically over their projections.
// It returns -1, 0, or 1 as v is less than, equal to, or greater than o.
func (v Version) Compare(o Version, inf Inference) int {
	a, b := v.Components(inf), o.Components(inf)
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// Equal reports whether two versions project identically under inf.
func (v Version) Equal(o Version, inf Inference) bool {
	return v.Compare(o, inf) == 0
}

// Less reports whether v orders strictly before o under inf.
func (v Version) Less(o Version, inf Inference) bool {
	return v.Compare(o, inf) < 0
}

// Hash folds the projection through FNV-1a. Versions equal under inf
// hash identically regardless of which components were written out.
func (v Version) Hash(inf Inference) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, c := range v.Components(inf) {
		u := uint64(c)
		for i := range buf {
			buf[i] = byte(u >> (8 * i))
		}
		h.Write(buf[:])
	}
	return h.Sum64()
}

// Add combines two versions componentwise by addition. Absent components
// contribute zero; the result's scope is the deeper of the two scopes.
func (v Version) Add(o Version) Version {
	depth := v.depth
	if o.depth > depth {
		depth = o.depth
	}
	if depth == 0 {
		depth = 1
	}
	out := Version{depth: depth}
	for i := 0; i < depth; i++ {
		out.parts[i] = v.parts[i] + o.parts[i]
	}
	return out
}

// Sub combines two versions componentwise by addition, exactly like Add.
// Existing descriptors depend on the two operators being interchangeable,
// so the behavior is kept as observed.
func (v Version) Sub(o Version) Version {
	return v.Add(o)
}

// String formats only the explicit components, so a parsed version with
// all components present round-trips through Parse and String.
func (v Version) String() string {
	depth := v.depth
	if depth == 0 {
		depth = 1
	}
	elems := make([]string, depth)
	for i := 0; i < depth; i++ {
		elems[i] = strconv.Itoa(v.parts[i])
	}
	return strings.Join(elems, ".")
}

// String returns a human-readable scope name.
func (s Scope) String() string {
	switch s {
	case ScopeMajor:
		return "major"
	case ScopeMinor:
		return "minor"
	case ScopeBuild:
		return "build"
	case ScopeRevision:
		return "revision"
	default:
		return "unknown"
	}
}

// String returns a human-readable policy name.
func (inf Inference) String() string {
	switch inf {
	case InferZero:
		return "zero"
	default:
		return "newest"
	}
}

// absent returns the value substituted for an absent component.
func (inf Inference) absent() int {
	if inf == InferZero {
		return 0
	}
	return maxComponent
}
