package bvh

import (
	"github.com/achilleasa/vmath/intersect"
	"github.com/achilleasa/vmath/types"
)

// A BVH over a list of axis aligned boxes. Hits report the entry distance
// and the normal of the entry face.
type BoxSet struct {
	Boxes []types.Box
	Tree  *Tree
}

// Build a BVH over boxes.
func NewBoxSet(boxes []types.Box, opts Options) (*BoxSet, error) {
	tree, err := Build(boxes, opts)
	if err != nil {
		return nil, err
	}
	return &BoxSet{Boxes: boxes, Tree: tree}, nil
}

// Intersect a ray with box prim.
func (s *BoxSet) IntersectPrimitive(r *types.Ray, prim uint32) (types.Hit, bool) {
	pr := intersect.Prepare(*r)
	tNear, _, hit := intersect.Box(&pr, &s.Boxes[prim])
	if !hit {
		return types.NoHit(), false
	}
	return types.Hit{T: tNear, Prim: int32(prim), Normal: boxNormal(&s.Boxes[prim], r.At(tNear))}, true
}

// Find the closest box hit by r.
func (s *BoxSet) Intersect(r types.Ray, stats *TraversalStats) types.Hit {
	return s.Tree.Nearest(r, s, stats)
}

// Returns true if r hits any box.
func (s *BoxSet) Occluded(r types.Ray, stats *TraversalStats) bool {
	return s.Tree.Any(r, s, stats)
}

// Get the normal of the box face closest to p.
func boxNormal(b *types.Box, p types.Vec3) types.Vec3 {
	c := b.Center()
	ext := b.Size().Mul(0.5)

	axis, best := 0, float32(-1)
	for i := 0; i < 3; i++ {
		if !(ext[i] > 0) {
			continue
		}
		if d := types.Abs(p[i]-c[i]) / ext[i]; d > best {
			axis, best = i, d
		}
	}

	var n types.Vec3
	if p[axis] < c[axis] {
		n[axis] = -1
	} else {
		n[axis] = 1
	}
	return n
}

// A BVH over a list of spheres.
type SphereSet struct {
	Spheres []types.Sphere
	Tree    *Tree
}

// Build a BVH over spheres. Centroids are the sphere centers.
func NewSphereSet(spheres []types.Sphere, opts Options) (*SphereSet, error) {
	boxes := make([]types.Box, len(spheres))
	centers := make([]types.Vec3, len(spheres))
	for i := range spheres {
		boxes[i] = spheres[i].Box()
		centers[i] = spheres[i].Center
	}
	tree, err := BuildWithCentroids(boxes, centers, opts)
	if err != nil {
		return nil, err
	}
	return &SphereSet{Spheres: spheres, Tree: tree}, nil
}

// Intersect a ray with sphere prim.
func (s *SphereSet) IntersectPrimitive(r *types.Ray, prim uint32) (types.Hit, bool) {
	return intersect.SphereHit(r, &s.Spheres[prim], int32(prim))
}

// Find the closest sphere hit by r.
func (s *SphereSet) Intersect(r types.Ray, stats *TraversalStats) types.Hit {
	return s.Tree.Nearest(r, s, stats)
}

// Returns true if r hits any sphere.
func (s *SphereSet) Occluded(r types.Ray, stats *TraversalStats) bool {
	return s.Tree.Any(r, s, stats)
}
