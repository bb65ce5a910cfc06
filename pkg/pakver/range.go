// SPDX-License-Identifier: MPL-2.0

package pakver

import (
	"regexp"
	"strings"
)

const (
	// OpOr folds a clause into the accumulator with logical OR (default).
	OpOr Operation = iota
	// OpAnd folds a clause into the accumulator with logical AND.
	OpAnd
)

const (
	// RelEqual matches versions that project identically (default).
	RelEqual Relation = iota
	// RelLess matches versions strictly below the clause version.
	RelLess
	// RelGreater matches versions strictly above the clause version.
	RelGreater
	// RelLessOrEqual matches versions at or below the clause version.
	RelLessOrEqual
	// RelGreaterOrEqual matches versions at or above the clause version.
	RelGreaterOrEqual
)

type (
	// Operation joins a clause with the running accumulator.
	Operation int

	// Relation compares a candidate version against a clause version.
	Relation int

	// Clause is one relation-prefixed version literal of a range
	// expression.
	Clause struct {
		Op      Operation
		Rel     Relation
		Version Version
	}

	// Range is a parsed range expression: an ordered clause list evaluated
	// strictly left to right as a running boolean accumulator seeded at
	// false. There is no operator precedence — "A | B & C" folds as
	// ((false | A) | B) & C, never as A | (B & C). Dependent range text
	// in the wild relies on this fold order, so it is fixed.
	Range struct {
		clauses []Clause
	}
)

// clauseRegex tokenizes one clause: optional operation, optional
// relation, then a dotted integer literal. Text that never reaches a
// literal produces no clause at all, which is how malformed fragments
// like ">abc" are skipped without failing the whole expression.
var clauseRegex = regexp.MustCompile(`([&|])?\s*(<=|>=|<|>|=)?\s*(\d+(?:\.\d+){0,3})`)

// ParseRange parses a textual range expression. Parsing cannot fail:
// fragments that do not form a clause are dropped and an expression with
// no valid clause yields a Range that matches nothing.
func ParseRange(expr string) Range {
	var r Range
	for _, m := range clauseRegex.FindAllStringSubmatch(strings.TrimSpace(expr), -1) {
		v, err := Parse(m[3])
		if err != nil {
			// Literal out of integer range; the clause contributes nothing.
			continue
		}
		r.clauses = append(r.clauses, Clause{
			Op:      parseOperation(m[1]),
			Rel:     parseRelation(m[2]),
			Version: v,
		})
	}
	return r
}

// Clauses returns the parsed clauses in evaluation order.
func (r Range) Clauses() []Clause { return r.clauses }

// Empty reports whether the range has no valid clause.
func (r Range) Empty() bool { return len(r.clauses) == 0 }

// Matches folds the clauses over v left to right with the accumulator
// seeded at false, applying each clause's relation under inf.
func (r Range) Matches(v Version, inf Inference) bool {
	acc := false
	for _, c := range r.clauses {
		test := c.Rel.holds(v.Compare(c.Version, inf))
		if c.Op == OpAnd {
			acc = acc && test
		} else {
			acc = acc || test
		}
	}
	return acc
}

// InRange reports whether v satisfies the range expression under inf.
func (v Version) InRange(expr string, inf Inference) bool {
	return ParseRange(expr).Matches(v, inf)
}

// holds evaluates the relation against a Compare result.
func (rel Relation) holds(cmp int) bool {
	switch rel {
	case RelLess:
		return cmp < 0
	case RelGreater:
		return cmp > 0
	case RelLessOrEqual:
		return cmp <= 0
	case RelGreaterOrEqual:
		return cmp >= 0
	default:
		return cmp == 0
	}
}

func parseOperation(tok string) Operation {
	if tok == "&" {
		return OpAnd
	}
	return OpOr
}

func parseRelation(tok string) Relation {
	switch tok {
	case "<":
		return RelLess
	case ">":
		return RelGreater
	case "<=":
		return RelLessOrEqual
	case ">=":
		return RelGreaterOrEqual
	default:
		return RelEqual
	}
}

// String returns a symbolic operation token.
func (op Operation) String() string {
	if op == OpAnd {
		return "&"
	}
	return "|"
}

// String returns a symbolic relation token.
func (rel Relation) String() string {
	switch rel {
	case RelLess:
		return "<"
	case RelGreater:
		return ">"
	case RelLessOrEqual:
		return "<="
	case RelGreaterOrEqual:
		return ">="
	default:
		return "="
	}
}
