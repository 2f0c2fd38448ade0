package types

import (
	"math"

	"golang.org/x/exp/constraints"
)

const (
	// Values whose magnitude is below this threshold are treated as zero
	// by normalization and matrix inversion.
	floatCmpEpsilon float32 = 1e-7
)

var (
	// Positive and negative float32 infinities.
	Inf    = float32(math.Inf(1))
	NegInf = float32(math.Inf(-1))
)

// Clamp v to the [lo, hi] range.
func Clamp[T constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Linearly interpolate between a and b.
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}

// Returns true if f is neither NaN nor an infinity.
func IsFinite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

// Returns the absolute value of f.
func Abs(f float32) float32 {
	return math.Float32frombits(math.Float32bits(f) &^ (1 << 31))
}

// Return the smaller of two values. If either argument is NaN the second
// argument is returned; SIMD min instructions behave the same way so the
// scalar and wide code paths agree on every input.
func Min(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// Return the larger of two values. NaN handling matches Min.
func Max(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// Compute a*b + c*d without allowing the compiler to fuse the operations.
// Every kernel that needs to agree bit-for-bit with its wide counterpart
// goes through these helpers.
func mulAdd(a, b, c, d float32) float32 {
	return float32(a*b) + float32(c*d)
}

// Compute a*b - c*d without fusing.
func mulSub(a, b, c, d float32) float32 {
	return float32(a*b) - float32(c*d)
}
