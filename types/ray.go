package types

import "fmt"

// Primitive id reported by hits that did not hit anything.
const InvalidPrimitive int32 = -1

// A ray covering the parametric interval [TMin, TMax]. The direction does not
// need to be normalized; all distances are expressed in multiples of Dir.
type Ray struct {
	Origin Vec3
	Dir    Vec3
	TMin   float32
	TMax   float32
}

// Create a ray covering [0, +Inf).
func NewRay(origin, dir Vec3) Ray {
	return Ray{Origin: origin, Dir: dir, TMin: 0, TMax: Inf}
}

// Create a ray passing through two points; the segment between them maps to
// t in [0, 1].
func RayBetween(from, to Vec3) Ray {
	return Ray{Origin: from, Dir: to.Sub(from), TMin: 0, TMax: 1}
}

// Get the point at distance t.
func (r Ray) At(t float32) Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// Returns true if the ray can hit anything: the origin and direction must be
// finite, the direction must not be zero and the interval must not be empty
// or NaN. TMax may be +Inf.
func (r Ray) IsValid() bool {
	return r.Origin.IsFinite() && r.Dir.IsFinite() && !r.Dir.IsZero() &&
		r.TMin <= r.TMax && IsFinite(r.TMin)
}

func (r Ray) String() string {
	return fmt.Sprintf("ray{o: %v, d: %v, t: [%g, %g]}", r.Origin, r.Dir, r.TMin, r.TMax)
}

// A ray hit record. U and V are the barycentric weights of the second and
// third triangle vertex (W = 1 - U - V weighs the first one). For non
// triangle primitives U and V carry kernel specific parametric coordinates.
type Hit struct {
	T    float32
	Prim int32
	U, V float32

	// Unit geometric normal at the hit point.
	Normal Vec3
}

// Return a hit record representing a miss.
func NoHit() Hit {
	return Hit{T: Inf, Prim: InvalidPrimitive}
}

// Returns true if the record describes an actual hit.
func (h Hit) Valid() bool {
	return h.Prim != InvalidPrimitive
}

// Barycentric weight of the first triangle vertex.
func (h Hit) W() float32 {
	return 1 - h.U - h.V
}

// Returns true if h is closer than h2. Equal distances are resolved by
// preferring the lower primitive id so that results never depend on the
// order in which primitives were tested.
func (h Hit) Closer(h2 Hit) bool {
	if h.T != h2.T {
		return h.T < h2.T
	}
	return uint32(h.Prim) < uint32(h2.Prim)
}
