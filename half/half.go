// Package half packs float32 values into IEEE 754 binary16 (half precision)
// values.
//
// Encode rounds to the nearest representable half with ties going to the
// even mantissa. Finite values beyond the half range saturate to ±Inf and NaN
// stays NaN. Halves carry an 11-bit significand so values with more
// significant bits lose precision; the relative error of a normal value is at
// most 2^-11. EncodeDown and EncodeUp round in a fixed direction instead,
// which allows storing bounds that still enclose the original value.
package half

import (
	"math"

	"github.com/achilleasa/vmath/types"
	"github.com/ajroetker/go-highway/hwy"
)

// A binary16 value.
type Float16 = hwy.Float16

const (
	MaxValue = float32(65504)

	// Values below this magnitude are encoded as subnormal halves.
	minNormal = float32(1.0 / (1 << 14))

	// Spacing of subnormal halves.
	subnormalScale = float32(1 << 24)
)

// Encode f as a half rounding to nearest, ties to even.
func Encode(f float32) Float16 {
	if a := types.Abs(f); a < minNormal {
		// Scaling by a power of two is exact here so rounding the scaled
		// value to an integer rounds the subnormal mantissa correctly.
		k := math.RoundToEven(float64(a * subnormalScale))
		sign := uint16(math.Float32bits(f)>>16) & 0x8000
		return hwy.Float16FromBits(sign | uint16(k))
	}
	return hwy.Float32ToFloat16(f)
}

// Decode a half. Every half is exactly representable as a float32.
func Decode(h Float16) float32 {
	return hwy.Float16ToFloat32(h)
}

// Encode f as the largest half that is less than or equal to f.
func EncodeDown(f float32) Float16 {
	h := Encode(f)
	if Decode(h) > f {
		return nextDown(h)
	}
	return h
}

// Encode f as the smallest half that is greater than or equal to f.
func EncodeUp(f float32) Float16 {
	h := Encode(f)
	if Decode(h) < f {
		return nextUp(h)
	}
	return h
}

// Returns true if f survives an Encode/Decode round trip unchanged.
func IsExact(f float32) bool {
	return Decode(Encode(f)) == f
}

// Encode src into dst. dst must be at least as long as src.
func EncodeSlice(dst []Float16, src []float32) {
	for i, f := range src {
		dst[i] = Encode(f)
	}
}

// Decode src into dst. dst must be at least as long as src.
func DecodeSlice(dst []float32, src []Float16) {
	for i, h := range src {
		dst[i] = Decode(h)
	}
}

func nextUp(h Float16) Float16 {
	bits := h.Bits()
	switch {
	case h.IsNaN() || bits == uint16(hwy.Float16Inf):
		return h
	case bits == uint16(hwy.Float16NegZero):
		return hwy.Float16MinValue
	case bits&0x8000 != 0:
		return hwy.Float16FromBits(bits - 1)
	}
	return hwy.Float16FromBits(bits + 1)
}

func nextDown(h Float16) Float16 {
	bits := h.Bits()
	switch {
	case h.IsNaN() || bits == uint16(hwy.Float16NegInf):
		return h
	case bits == uint16(hwy.Float16Zero):
		return hwy.Float16FromBits(0x8001)
	case bits&0x8000 != 0:
		return hwy.Float16FromBits(bits + 1)
	}
	return hwy.Float16FromBits(bits - 1)
}

// A packed 3 component vector.
type Vec3 [3]Float16

// Pack v rounding each component to nearest.
func EncodeVec3(v types.Vec3) Vec3 {
	return Vec3{Encode(v[0]), Encode(v[1]), Encode(v[2])}
}

// Pack v rounding each component towards -Inf.
func EncodeVec3Down(v types.Vec3) Vec3 {
	return Vec3{EncodeDown(v[0]), EncodeDown(v[1]), EncodeDown(v[2])}
}

// Pack v rounding each component towards +Inf.
func EncodeVec3Up(v types.Vec3) Vec3 {
	return Vec3{EncodeUp(v[0]), EncodeUp(v[1]), EncodeUp(v[2])}
}

// Unpack the vector.
func (v Vec3) Decode() types.Vec3 {
	return types.XYZ(Decode(v[0]), Decode(v[1]), Decode(v[2]))
}

// Pack a box so that the decoded box encloses b.
func EncodeBox(b types.Box) (lo, hi Vec3) {
	return EncodeVec3Down(b.Min), EncodeVec3Up(b.Max)
}
