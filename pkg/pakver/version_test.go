// SPDX-License-Identifier: MPL-2.0

package pakver

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		scope   Scope
		wantErr bool
	}{
		{
			name:  "major only",
			text:  "1",
			want:  "1",
			scope: ScopeMajor,
		},
		{
			name:  "major and minor",
			text:  "1.2",
			want:  "1.2",
			scope: ScopeMinor,
		},
		{
			name:  "three components",
			text:  "1.2.3",
			want:  "1.2.3",
			scope: ScopeBuild,
		},
		{
			name:  "four components",
			text:  "10.20.30.40",
			want:  "10.20.30.40",
			scope: ScopeRevision,
		},
		{
			name:  "trailing separator leaves deeper components unset",
			text:  "1.2.",
			want:  "1.2",
			scope: ScopeMinor,
		},
		{
			name:  "leading whitespace",
			text:  "  4.5",
			want:  "4.5",
			scope: ScopeMinor,
		},
		{
			name:  "trailing text beyond the grammar is ignored",
			text:  "1.2.3-beta",
			want:  "1.2.3",
			scope: ScopeBuild,
		},
		{
			name:    "no leading integer",
			text:    "abc",
			wantErr: true,
		},
		{
			name:    "empty",
			text:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse(tt.text)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %v", tt.text, v)
				}
				if !errors.Is(err, ErrInvalidVersion) {
					t.Errorf("Parse(%q) error = %v, want ErrInvalidVersion", tt.text, err)
				}
				if got := v.String(); got != "0" {
					t.Errorf("Parse(%q) failure value = %q, want zero version", tt.text, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.text, err)
			}
			if got := v.String(); got != tt.want {
				t.Errorf("Parse(%q).String() = %q, want %q", tt.text, got, tt.want)
			}
			if got := v.Scope(); got != tt.scope {
				t.Errorf("Parse(%q).Scope() = %v, want %v", tt.text, got, tt.scope)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, text := range []string{"0", "1", "1.2", "1.2.3", "1.2.3.4", "12.0.7.10000"} {
		v, err := Parse(text)
		if err != nil {
			t.Fatalf("Parse(%q): %v", text, err)
		}
		if got := v.String(); got != text {
			t.Errorf("round-trip %q -> %q", text, got)
		}
	}
}

func TestScopeInference(t *testing.T) {
	short := MustParse("1.2")
	long := MustParse("1.2.0.0")
	next := MustParse("1.3")

	if short.Scope() != ScopeMinor {
		t.Fatalf("Scope(1.2) = %v, want minor", short.Scope())
	}

	if !short.Equal(long, InferZero) {
		t.Errorf("under zero inference 1.2 should equal 1.2.0.0")
	}
	if !short.Equal(short, InferNewest) {
		t.Errorf("a version must equal itself under newest inference")
	}
	if short.Compare(long, InferNewest) <= 0 {
		t.Errorf("under newest inference 1.2 should be greater than 1.2.0.0")
	}
	if short.Compare(next, InferNewest) >= 0 {
		t.Errorf("under newest inference 1.2 should be less than 1.3")
	}
}

func TestCompareTotality(t *testing.T) {
	versions := []Version{
		MustParse("1"),
		MustParse("1.2"),
		MustParse("1.2.0.0"),
		MustParse("1.2.3"),
		MustParse("2.0"),
		MustParse("0.9.9.9"),
	}

	for _, inf := range []Inference{InferNewest, InferZero} {
		for _, a := range versions {
			for _, b := range versions {
				lt := a.Compare(b, inf) < 0
				eq := a.Equal(b, inf)
				gt := a.Compare(b, inf) > 0

				holds := 0
				for _, ok := range []bool{lt, eq, gt} {
					if ok {
						holds++
					}
				}
				if holds != 1 {
					t.Errorf("%s vs %s under %s: lt=%v eq=%v gt=%v, want exactly one",
						a, b, inf, lt, eq, gt)
				}
				if ab, ba := a.Compare(b, inf), b.Compare(a, inf); ab != -ba {
					t.Errorf("%s vs %s under %s: Compare not antisymmetric (%d, %d)",
						a, b, inf, ab, ba)
				}
			}
		}
	}
}

func TestHashAgreesWithEqual(t *testing.T) {
	pairs := []struct {
		a, b string
		inf  Inference
	}{
		{"1.2", "1.2.0.0", InferZero},
		{"1.2", "1.2", InferNewest},
		{"3.0.0", "3", InferZero},
	}
	for _, p := range pairs {
		a, b := MustParse(p.a), MustParse(p.b)
		if !a.Equal(b, p.inf) {
			t.Fatalf("%s and %s expected equal under %s", p.a, p.b, p.inf)
		}
		if a.Hash(p.inf) != b.Hash(p.inf) {
			t.Errorf("equal versions %s and %s hash differently under %s", p.a, p.b, p.inf)
		}
	}

	// Distinct projections should (for these fixtures) hash apart.
	if MustParse("1.2").Hash(InferNewest) == MustParse("1.3").Hash(InferNewest) {
		t.Errorf("1.2 and 1.3 hash identically under newest inference")
	}
}

func TestWithComponents(t *testing.T) {
	v := New(1)
	v2 := v.WithMinor(5)

	if got, ok := v.Minor(); ok || got != 0 {
		t.Errorf("WithMinor mutated the receiver: minor = %d, explicit = %v", got, ok)
	}
	if got, ok := v2.Minor(); !ok || got != 5 {
		t.Errorf("WithMinor(5) = %d (explicit %v), want 5", got, ok)
	}
	if v2.Scope() != ScopeMinor {
		t.Errorf("WithMinor scope = %v, want minor", v2.Scope())
	}

	v3 := v.WithRevision(7)
	if v3.Scope() != ScopeRevision {
		t.Errorf("WithRevision scope = %v, want revision", v3.Scope())
	}
	if got := v3.String(); got != "1.0.0.7" {
		t.Errorf("WithRevision String() = %q, want 1.0.0.7", got)
	}
}

func TestAddAndSub(t *testing.T) {
	a := MustParse("1.2.3")
	b := MustParse("0.1")

	sum := a.Add(b)
	if got := sum.String(); got != "1.3.3" {
		t.Errorf("Add = %q, want 1.3.3", got)
	}

	// Sub is intentionally the same componentwise addition as Add.
	diff := a.Sub(b)
	if !diff.Equal(sum, InferZero) {
		t.Errorf("Sub = %s, want same result as Add (%s)", diff, sum)
	}
}
