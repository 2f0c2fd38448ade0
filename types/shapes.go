package types

// A plane with unit normal N containing all points p where N·p = D.
type Plane struct {
	N Vec3
	D float32
}

// Create a plane from a normal and a distance from the origin along that
// normal. The normal is normalized; D is scaled accordingly.
func NewPlane(n Vec3, d float32) (Plane, error) {
	l := n.Len()
	if !(l >= floatCmpEpsilon) || !IsFinite(l) {
		return Plane{}, ErrZeroNormal
	}
	return Plane{N: n.Mul(1 / l), D: d / l}, nil
}

// Create a plane through point p with normal n.
func PlaneFromPoint(p, n Vec3) (Plane, error) {
	return NewPlane(n, n.Dot(p))
}

// Signed distance from p to the plane.
func (p Plane) Distance(pt Vec3) float32 {
	return p.N.Dot(pt) - p.D
}

type Sphere struct {
	Center Vec3
	Radius float32
}

// Create a sphere. A zero radius is allowed; negative (or NaN) radii are not.
func NewSphere(center Vec3, radius float32) (Sphere, error) {
	if !(radius >= 0) {
		return Sphere{}, ErrNegativeRadius
	}
	return Sphere{Center: center, Radius: radius}, nil
}

// Get the sphere bounding box.
func (s Sphere) Box() Box {
	r := Splat3(s.Radius)
	return Box{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}

// A triangle with precomputed edges and (unnormalized) geometric normal.
type Triangle struct {
	V0, V1, V2 Vec3

	// E1 = V1 - V0, E2 = V2 - V0, N = E1 x E2
	E1, E2 Vec3
	N      Vec3
}

// Create a triangle and precompute its edges and normal.
func NewTriangle(v0, v1, v2 Vec3) Triangle {
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)
	return Triangle{
		V0: v0, V1: v1, V2: v2,
		E1: e1, E2: e2,
		N: e1.Cross(e2),
	}
}

// Get the triangle bounding box.
func (t Triangle) Box() Box {
	return Box{
		Min: MinVec3(MinVec3(t.V0, t.V1), t.V2),
		Max: MaxVec3(MaxVec3(t.V0, t.V1), t.V2),
	}
}

// Get the triangle centroid.
func (t Triangle) Centroid() Vec3 {
	return t.V0.Add(t.V1).Add(t.V2).Mul(1.0 / 3.0)
}

// Get the triangle area.
func (t Triangle) Area() float32 {
	return 0.5 * t.N.Len()
}

// Get the unit normal. Degenerate triangles return the zero vector.
func (t Triangle) Normal() Vec3 {
	return t.N.Normalize()
}

// Returns true if all vertices are finite.
func (t Triangle) IsFinite() bool {
	return t.V0.IsFinite() && t.V1.IsFinite() && t.V2.IsFinite()
}

// Returns true if the triangle has zero area.
func (t Triangle) IsDegenerate() bool {
	return t.N.IsZero()
}

// Interpolate a point using barycentric weights w (for V0), u (V1), v (V2).
func (t Triangle) PointAt(u, v float32) Vec3 {
	return t.V0.Add(t.E1.Mul(u)).Add(t.E2.Mul(v))
}
