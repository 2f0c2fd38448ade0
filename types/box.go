package types

import "fmt"

// An axis-aligned bounding box. The empty box (see EmptyBox) uses inverted
// infinite bounds so that it acts as the identity for Union.
type Box struct {
	Min Vec3
	Max Vec3
}

// Return the empty box sentinel.
func EmptyBox() Box {
	return Box{
		Min: Vec3{Inf, Inf, Inf},
		Max: Vec3{NegInf, NegInf, NegInf},
	}
}

// Create a box from two arbitrary corners.
func NewBox(a, b Vec3) Box {
	return Box{Min: MinVec3(a, b), Max: MaxVec3(a, b)}
}

// Create the bounding box of a set of points.
func BoxFromPoints(points ...Vec3) Box {
	b := EmptyBox()
	for _, p := range points {
		b = b.Extend(p)
	}
	return b
}

// Returns true if the box encloses no points. Zero-volume boxes are not
// empty.
func (b Box) IsEmpty() bool {
	return !(b.Min[0] <= b.Max[0] && b.Min[1] <= b.Max[1] && b.Min[2] <= b.Max[2])
}

// Returns true if both corners are finite and ordered.
func (b Box) IsValid() bool {
	return b.Min.IsFinite() && b.Max.IsFinite() && !b.IsEmpty()
}

// Grow the box to include point p.
func (b Box) Extend(p Vec3) Box {
	return Box{Min: MinVec3(b.Min, p), Max: MaxVec3(b.Max, p)}
}

// Return the smallest box containing both b and b2.
func (b Box) Union(b2 Box) Box {
	return Box{Min: MinVec3(b.Min, b2.Min), Max: MaxVec3(b.Max, b2.Max)}
}

// Return the overlap of b and b2. Disjoint boxes produce the empty box.
func (b Box) Intersect(b2 Box) Box {
	out := Box{Min: MaxVec3(b.Min, b2.Min), Max: MinVec3(b.Max, b2.Max)}
	if out.IsEmpty() {
		return EmptyBox()
	}
	return out
}

// Returns true if b2 lies entirely inside b. Every box contains the empty
// box.
func (b Box) Contains(b2 Box) bool {
	if b2.IsEmpty() {
		return true
	}
	return b.Min[0] <= b2.Min[0] && b.Min[1] <= b2.Min[1] && b.Min[2] <= b2.Min[2] &&
		b.Max[0] >= b2.Max[0] && b.Max[1] >= b2.Max[1] && b.Max[2] >= b2.Max[2]
}

// Returns true if p lies inside the box or on its boundary.
func (b Box) ContainsPoint(p Vec3) bool {
	return b.Min[0] <= p[0] && p[0] <= b.Max[0] &&
		b.Min[1] <= p[1] && p[1] <= b.Max[1] &&
		b.Min[2] <= p[2] && p[2] <= b.Max[2]
}

// Get box extent along each axis.
func (b Box) Size() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Get box center.
func (b Box) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Half of the box surface area. SAH costs only use area ratios so the
// factor of two is irrelevant there.
func (b Box) HalfArea() float32 {
	if b.IsEmpty() {
		return 0
	}
	d := b.Max.Sub(b.Min)
	return d[0]*d[1] + d[1]*d[2] + d[2]*d[0]
}

// Get box surface area. The empty box has zero area.
func (b Box) SurfaceArea() float32 {
	return 2 * b.HalfArea()
}

// Get the axis with the largest extent.
func (b Box) LongestAxis() int {
	return b.Size().MaxAxis()
}

func (b Box) String() string {
	if b.IsEmpty() {
		return "[empty]"
	}
	return fmt.Sprintf("[%v - %v]", b.Min, b.Max)
}
