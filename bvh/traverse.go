package bvh

import (
	"github.com/achilleasa/vmath/intersect"
	"github.com/achilleasa/vmath/types"
)

// The traversal stack lives on the goroutine stack for trees up to this
// depth.
const fixedStackSize = 64

// A PrimitiveTester intersects a ray with a single primitive referenced by
// a tree. Implementations must report misses for hits outside
// [r.TMin, r.TMax].
type PrimitiveTester interface {
	IntersectPrimitive(r *types.Ray, prim uint32) (types.Hit, bool)
}

// Test a ray against the primitive slots [first, first+count) of a leaf and
// update best with any closer hit. r.TMax is clamped to best.T on entry.
// Returns true if best was updated.
type leafFunc func(r *types.Ray, first, count uint32, best *types.Hit, stats *TraversalStats) bool

type stackEntry struct {
	node  uint32
	tNear float32
}

// Find the closest primitive hit by r. Ties in distance are resolved in
// favor of the lowest primitive id. Returns types.NoHit() if nothing is hit
// or the ray is invalid. stats may be nil.
func (t *Tree) Nearest(r types.Ray, tester PrimitiveTester, stats *TraversalStats) types.Hit {
	return t.traverse(r, false, t.testerLeaf(tester, false), stats)
}

// Returns true if r hits any primitive. stats may be nil.
func (t *Tree) Any(r types.Ray, tester PrimitiveTester, stats *TraversalStats) bool {
	return t.traverse(r, true, t.testerLeaf(tester, true), stats).Valid()
}

// Test r against every primitive in [0, n) without using the tree. It
// produces the same result as Nearest and is used as a reference.
func BruteForce(r types.Ray, n int, tester PrimitiveTester) types.Hit {
	best := types.NoHit()
	if !r.IsValid() {
		return best
	}
	for prim := 0; prim < n; prim++ {
		if h, ok := tester.IntersectPrimitive(&r, uint32(prim)); ok && h.Closer(best) {
			best = h
		}
	}
	return best
}

func (t *Tree) testerLeaf(tester PrimitiveTester, anyHit bool) leafFunc {
	return func(r *types.Ray, first, count uint32, best *types.Hit, stats *TraversalStats) bool {
		updated := false
		for _, prim := range t.Indices[first : first+count] {
			stats.PrimitiveTests++
			h, ok := tester.IntersectPrimitive(r, prim)
			if ok && h.Closer(*best) {
				*best = h
				updated = true
				if anyHit {
					break
				}
			}
		}
		return updated
	}
}

// Run a query over the node layout selected for the tree.
func (t *Tree) traverse(r types.Ray, anyHit bool, leaf leafFunc, stats *TraversalStats) types.Hit {
	if stats == nil {
		stats = &TraversalStats{}
	}
	stats.Queries++

	var best types.Hit
	if t.Layout == LayoutCompact && len(t.CompactNodes) != 0 {
		best = traverse(t.CompactNodes, t.Depth, r, anyHit, leaf, stats)
	} else {
		best = traverse(t.Nodes, t.Depth, r, anyHit, leaf, stats)
	}
	if best.Valid() {
		stats.Hits++
	}
	return best
}

// Depth first traversal with an explicit stack. Both children of an internal
// node are tested against the ray; the nearer one is visited first and the
// other is pushed along with its entry distance so it can be skipped once a
// closer hit is known. Equal entry distances visit the left child first.
func traverse[N nodeLayout](nodes []N, depth int, r types.Ray, anyHit bool, leaf leafFunc, stats *TraversalStats) types.Hit {
	best := types.NoHit()
	if len(nodes) == 0 || !r.IsValid() {
		return best
	}

	pr := intersect.Prepare(r)
	rootBox := nodes[0].Bounds()
	stats.BoxTests++
	tNear, _, hit := intersect.Box(&pr, &rootBox)
	if !hit {
		return best
	}

	var fixed [fixedStackSize]stackEntry
	stack := fixed[:0]
	if depth+1 > fixedStackSize {
		stack = make([]stackEntry, 0, depth+1)
	}
	stack = append(stack, stackEntry{node: 0, tNear: tNear})

	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// A closer hit has been found since this node was pushed
		if e.tNear > pr.TMax {
			continue
		}

		node := nodes[e.node]
		stats.Nodes++
		if node.IsLeaf() {
			stats.Leaves++
			first, count := node.GetPrimitives()
			if leaf(&pr.Ray, first, count, &best, stats) {
				if anyHit {
					return best
				}
				pr.TMax = best.T
			}
			continue
		}

		left, right := node.Children()
		lbox, rbox := nodes[left].Bounds(), nodes[right].Bounds()
		stats.BoxTests += 2
		lNear, _, lHit := intersect.Box(&pr, &lbox)
		rNear, _, rHit := intersect.Box(&pr, &rbox)

		switch {
		case lHit && rHit:
			if rNear < lNear {
				stack = append(stack, stackEntry{left, lNear}, stackEntry{right, rNear})
			} else {
				stack = append(stack, stackEntry{right, rNear}, stackEntry{left, lNear})
			}
		case lHit:
			stack = append(stack, stackEntry{left, lNear})
		case rHit:
			stack = append(stack, stackEntry{right, rNear})
		}
	}
	return best
}
