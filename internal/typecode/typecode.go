// Package typecode defines the column type lattice used throughout fread:
// DROP < BOOL8 < INT32 < INT64 < FLOAT64 < STRING, plus the sentinel
// "missing" values each type uses and the negate-to-flag-type-exception
// convention the parallel body reader relies on.
package typecode

import "math"

// Type is a column's currently inferred primitive, drawn from a total order.
// A negative Type value means "type exception observed during body read,
// reread required"; its magnitude (via Magnitude) is the new, wider type.
type Type int8

const (
	Drop Type = iota
	Bool8
	Int32
	Int64
	Float64
	String
)

// String is implemented manually (not via stringer) since the teacher's
// repo does not bring in a codegen dependency anywhere in the pack.
func (t Type) String() string {
	switch t.Magnitude() {
	case Drop:
		return "DROP"
	case Bool8:
		return "BOOL8"
	case Int32:
		return "INT32"
	case Int64:
		return "INT64"
	case Float64:
		return "FLOAT64"
	case String:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// Magnitude strips the type-exception sign, returning the plain type.
func (t Type) Magnitude() Type {
	if t < 0 {
		return -t
	}
	return t
}

// Negate marks t as a type exception: further parsing at the old type must
// stop and a reread at the new magnitude is required.
func Negate(t Type) Type {
	if t <= Drop {
		return t
	}
	return -t
}

// IsException reports whether t has been negated by a body-read type bump.
func (t Type) IsException() bool {
	return t < 0
}

// Wider returns the next type up the lattice from t, or String if t is
// already String (the ceiling; String never fails to represent a value).
func (t Type) Wider() Type {
	m := t.Magnitude()
	if m >= String {
		return String
	}
	return m + 1
}

// Sentinel "missing" values, one per concrete type (spec.md §4.1).
const (
	Bool8NA       byte  = 2 // outside {0,1}
	Int32NA       int32 = math.MinInt32
	Int64NA       int64 = math.MinInt64
	StringNAIndex int32 = math.MinInt32 // "NA-string" length marker
)

// Float64NA is a specific NaN bit pattern so NA floats are distinguishable
// from ordinary NaN parse results (spec.md §4.1).
var Float64NA = math.Float64frombits(0x7FF00000000007A2)

// IsFloatNA reports whether f is the sentinel NA float bit pattern.
func IsFloatNA(f float64) bool {
	return math.Float64bits(f) == math.Float64bits(Float64NA)
}
