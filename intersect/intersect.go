// Package intersect implements the scalar ray intersection kernels. All
// kernels report distances in multiples of the ray direction and treat hits
// outside [TMin, TMax] as misses. Comparisons are written so that a NaN
// anywhere in the computation rejects the hit instead of producing one.
package intersect

import (
	"math"

	"github.com/achilleasa/vmath/types"
)

const (
	// Triangles whose determinant magnitude falls below this value are
	// considered parallel to the ray.
	DetEpsilon float32 = 1e-8

	// Planes whose normal is (nearly) perpendicular to the ray direction
	// are never hit.
	ParallelEpsilon float32 = 1e-8
)

// A ray with its direction reciprocal precomputed for repeated slab tests.
type PreparedRay struct {
	types.Ray
	InvDir types.Vec3
}

// Precompute the direction reciprocal for r.
func Prepare(r types.Ray) PreparedRay {
	return PreparedRay{Ray: r, InvDir: r.Dir.Recip()}
}

// Intersect a prepared ray with a box using the slab method. It returns the
// portion of the ray interval that lies inside the box. A zero direction
// component yields an infinite reciprocal so the ray either spans the whole
// slab or misses it entirely.
func Box(r *PreparedRay, b *types.Box) (tNear, tFar float32, hit bool) {
	tNear, tFar = r.TMin, r.TMax
	for axis := 0; axis < 3; axis++ {
		tNear, tFar = Slab(tNear, tFar, b.Min[axis], b.Max[axis], r.Origin[axis], r.InvDir[axis])
	}
	return tNear, tFar, tNear <= tFar
}

// Clip the interval [near, far] against the slab [lo, hi] along one axis
// for a ray with origin o and direction reciprocal inv. A zero direction
// component with the origin on one of the slab planes would evaluate to
// 0 * Inf = NaN; the ray then runs inside the slab and the axis leaves the
// interval untouched.
func Slab(near, far, lo, hi, o, inv float32) (float32, float32) {
	if types.Abs(inv) == types.Inf && (lo == o || hi == o) {
		return near, far
	}
	t0 := (lo - o) * inv
	t1 := (hi - o) * inv
	return types.Max(types.Min(t0, t1), near), types.Min(types.Max(t0, t1), far)
}

// Intersect a ray with a triangle using the Möller-Trumbore algorithm. The
// returned u and v are the barycentric weights of V1 and V2. Triangles seen
// from behind (ray direction along the triangle normal) are skipped when
// cullBackFaces is set.
func Triangle(r *types.Ray, tri *types.Triangle, cullBackFaces bool) (t, u, v float32, hit bool) {
	return TriangleEdges(r, tri.V0, tri.E1, tri.E2, cullBackFaces)
}

// Same as Triangle but operates on a vertex and two precomputed edges.
func TriangleEdges(r *types.Ray, v0, e1, e2 types.Vec3, cullBackFaces bool) (t, u, v float32, hit bool) {
	p := r.Dir.Cross(e2)
	det := e1.Dot(p)
	if cullBackFaces {
		if !(det >= DetEpsilon) {
			return 0, 0, 0, false
		}
	} else if !(types.Abs(det) >= DetEpsilon) {
		return 0, 0, 0, false
	}
	invDet := 1 / det

	s := r.Origin.Sub(v0)
	u = s.Dot(p) * invDet
	if !(u >= 0 && u <= 1) {
		return 0, 0, 0, false
	}

	q := s.Cross(e1)
	v = r.Dir.Dot(q) * invDet
	if !(v >= 0 && u+v <= 1) {
		return 0, 0, 0, false
	}

	t = e2.Dot(q) * invDet
	if !(t >= r.TMin && t <= r.TMax) {
		return 0, 0, 0, false
	}
	return t, u, v, true
}

// Intersect a ray with a sphere. The nearest root inside the ray interval is
// reported; rays starting inside the sphere hit the far side.
func Sphere(r *types.Ray, s *types.Sphere) (t float32, hit bool) {
	oc := r.Origin.Sub(s.Center)
	a := r.Dir.Dot(r.Dir)
	halfB := oc.Dot(r.Dir)
	c := oc.Dot(oc) - float32(s.Radius*s.Radius)

	disc := float32(halfB*halfB) - float32(a*c)
	if !(disc >= 0) || !(a > 0) {
		return 0, false
	}
	sq := float32(math.Sqrt(float64(disc)))

	t = (-halfB - sq) / a
	if t >= r.TMin && t <= r.TMax {
		return t, true
	}
	t = (-halfB + sq) / a
	if t >= r.TMin && t <= r.TMax {
		return t, true
	}
	return 0, false
}

// Intersect a ray with a plane. Rays (nearly) parallel to the plane never
// hit it.
func Plane(r *types.Ray, p *types.Plane) (t float32, hit bool) {
	denom := p.N.Dot(r.Dir)
	if !(types.Abs(denom) >= ParallelEpsilon) {
		return 0, false
	}
	t = (p.D - p.N.Dot(r.Origin)) / denom
	if !(t >= r.TMin && t <= r.TMax) {
		return 0, false
	}
	return t, true
}

// Intersect a ray with a triangle and fill in a hit record for primitive id.
func TriangleHit(r *types.Ray, tri *types.Triangle, id int32, cullBackFaces bool) (types.Hit, bool) {
	t, u, v, ok := Triangle(r, tri, cullBackFaces)
	if !ok {
		return types.NoHit(), false
	}
	return types.Hit{T: t, Prim: id, U: u, V: v, Normal: tri.Normal()}, true
}

// Intersect a ray with a sphere and fill in a hit record for primitive id.
// U and V hold the spherical (phi, theta) coordinates of the hit point
// mapped to [0, 1].
func SphereHit(r *types.Ray, s *types.Sphere, id int32) (types.Hit, bool) {
	t, ok := Sphere(r, s)
	if !ok {
		return types.NoHit(), false
	}
	n := r.At(t).Sub(s.Center).Normalize()
	phi := math.Atan2(float64(n[2]), float64(n[0]))
	theta := math.Acos(float64(types.Clamp(n[1], -1, 1)))
	return types.Hit{
		T:      t,
		Prim:   id,
		U:      float32((phi + math.Pi) / (2 * math.Pi)),
		V:      float32(theta / math.Pi),
		Normal: n,
	}, true
}

// Intersect a ray with a plane and fill in a hit record for primitive id.
func PlaneHit(r *types.Ray, p *types.Plane, id int32) (types.Hit, bool) {
	t, ok := Plane(r, p)
	if !ok {
		return types.NoHit(), false
	}
	return types.Hit{T: t, Prim: id, Normal: p.N}, true
}
