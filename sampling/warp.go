package sampling

import (
	"math"

	"github.com/achilleasa/vmath/types"
)

// Map a point in the unit square to a uniformly distributed direction.
func UniformSphere(u types.Vec2) types.Vec3 {
	z := 1 - 2*u[0]
	r := float32(math.Sqrt(float64(max(0, 1-z*z))))
	phi := 2 * math.Pi * float64(u[1])
	return types.XYZ(r*float32(math.Cos(phi)), r*float32(math.Sin(phi)), z)
}

// Map a point in the unit square to a uniformly distributed direction on the
// +Z hemisphere.
func UniformHemisphere(u types.Vec2) types.Vec3 {
	z := u[0]
	r := float32(math.Sqrt(float64(max(0, 1-z*z))))
	phi := 2 * math.Pi * float64(u[1])
	return types.XYZ(r*float32(math.Cos(phi)), r*float32(math.Sin(phi)), z)
}

// Map a point in the unit square to the unit disk preserving relative areas.
func ConcentricDisk(u types.Vec2) types.Vec2 {
	ox, oy := 2*u[0]-1, 2*u[1]-1
	if ox == 0 && oy == 0 {
		return types.Vec2{}
	}

	var r float32
	var theta float64
	if types.Abs(ox) > types.Abs(oy) {
		r = ox
		theta = math.Pi / 4 * float64(oy/ox)
	} else {
		r = oy
		theta = math.Pi/2 - math.Pi/4*float64(ox/oy)
	}
	return types.XY(r*float32(math.Cos(theta)), r*float32(math.Sin(theta)))
}

// Map a point in the unit square to a cosine weighted direction on the +Z
// hemisphere.
func CosineHemisphere(u types.Vec2) types.Vec3 {
	d := ConcentricDisk(u)
	z := float32(math.Sqrt(float64(max(0, 1-d[0]*d[0]-d[1]*d[1]))))
	return types.XYZ(d[0], d[1], z)
}
