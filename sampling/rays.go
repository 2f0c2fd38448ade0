package sampling

import (
	"github.com/achilleasa/vmath/types"
)

// Generate n rays that start on a sphere enclosing bounds and point towards
// random locations inside bounds. About one in four rays aims at a random
// direction instead so ray sets also contain misses.
func RandomRays(g *Generator, bounds types.Box, n int) []types.Ray {
	center, radius := enclosingSphere(bounds)
	rays := make([]types.Ray, n)
	for i := range rays {
		origin := center.Add(UniformSphere(g.Vec2()).Mul(radius))
		var target types.Vec3
		if g.IntN(4) == 0 {
			target = origin.Add(UniformSphere(g.Vec2()))
		} else {
			target = g.InBox(bounds)
		}
		rays[i] = types.NewRay(origin, target.Sub(origin))
	}
	return rays
}

// Generate n rays like RandomRays but using the Halton sequence (dimensions
// 0-4 for the origin and target) so the set depends on n alone.
func HaltonRays(bounds types.Box, n int) []types.Ray {
	center, radius := enclosingSphere(bounds)
	size := bounds.Size()
	rays := make([]types.Ray, n)
	for i := range rays {
		idx := uint64(i + 1)
		origin := center.Add(UniformSphere(types.XY(Halton(idx, 0), Halton(idx, 1))).Mul(radius))
		target := bounds.Min.Add(size.MulVec(types.XYZ(Halton(idx, 2), Halton(idx, 3), Halton(idx, 4))))
		rays[i] = types.NewRay(origin, target.Sub(origin))
	}
	return rays
}

// Get a sphere that encloses b with some margin.
func enclosingSphere(b types.Box) (types.Vec3, float32) {
	if b.IsEmpty() {
		return types.Vec3{}, 1
	}
	radius := b.Size().Len()
	if radius == 0 {
		radius = 1
	}
	return b.Center(), radius
}
