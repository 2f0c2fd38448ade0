package bvh

import (
	"cmp"
	"slices"

	"github.com/achilleasa/vmath/types"
)

// A split candidate along one axis. For the binned strategy pos is the last
// bin that goes left; for the sweep strategy it is the number of primitives
// that go left.
type splitScore struct {
	axis  int
	pos   int
	cost  float32
	valid bool
}

// Per bin accumulators for the binned strategy.
type bin struct {
	box   types.Box
	count int
}

// Map a centroid coordinate to one of n bins. The same mapping is used for
// scoring and partitioning so both always agree.
func binIndex(c, cmin, scale float32, n int) int {
	b := int((c - cmin) * scale)
	if b >= n {
		return n - 1
	}
	if b < 0 {
		return 0
	}
	return b
}

// Scale factor for binIndex.
func binScale(extent float32, n int) float32 {
	return float32(n) / extent
}

// Score all split candidates along the given axis and return the best one.
func (b *builder) scoreAxis(axis, start, end int, node, centroids types.Box) splitScore {
	if b.opts.Strategy == Sweep {
		return b.sweepAxis(axis, start, end, node)
	}
	return b.binAxis(axis, start, end, node, centroids)
}

// Calculate SAH cost of a split:
// TraversalCost + (A_L/A)*N_L*IntersectionCost + (A_R/A)*N_R*IntersectionCost.
//
// Nodes with zero area use a probability of 1 for both children.
func (b *builder) sahCost(area, leftArea float32, leftCount int, rightArea float32, rightCount int) float32 {
	pl, pr := float32(1), float32(1)
	if area > 0 {
		pl = leftArea / area
		pr = rightArea / area
	}
	return b.opts.TraversalCost +
		pl*float32(leftCount)*b.opts.IntersectionCost +
		pr*float32(rightCount)*b.opts.IntersectionCost
}

// Binned SAH: drop centroids into Buckets equally sized bins along the
// centroid bounds and evaluate the Buckets-1 planes between them.
func (b *builder) binAxis(axis, start, end int, node, centroids types.Box) splitScore {
	best := splitScore{axis: axis}
	cmin := centroids.Min[axis]
	extent := centroids.Max[axis] - cmin
	if !(extent > 0) {
		return best
	}

	n := b.opts.Buckets
	bins := b.bins[axis][:n]
	for i := range bins {
		bins[i] = bin{box: types.EmptyBox()}
	}

	scale := binScale(extent, n)
	for _, id := range b.indices[start:end] {
		bi := binIndex(b.centroids[id][axis], cmin, scale, n)
		bins[bi].box = bins[bi].box.Union(b.boxes[id])
		bins[bi].count++
	}

	// Right-to-left sweep to collect the area of everything right of
	// each plane.
	rightArea := b.areas[axis][:n]
	acc := types.EmptyBox()
	for i := n - 1; i > 0; i-- {
		acc = acc.Union(bins[i].box)
		rightArea[i] = acc.HalfArea()
	}

	area := node.HalfArea()
	total := end - start
	acc = types.EmptyBox()
	leftCount := 0
	for i := 0; i < n-1; i++ {
		acc = acc.Union(bins[i].box)
		leftCount += bins[i].count
		rightCount := total - leftCount
		if leftCount == 0 || rightCount == 0 {
			continue
		}

		cost := b.sahCost(area, acc.HalfArea(), leftCount, rightArea[i+1], rightCount)
		if !best.valid || cost < best.cost {
			best = splitScore{axis: axis, pos: i, cost: cost, valid: true}
		}
	}
	return best
}

// Full sweep SAH: sort the range by centroid along the axis and evaluate a
// split between every pair of neighbors. The sorted order is kept in the
// per-axis scratch buffer so the winning axis can be copied back.
func (b *builder) sweepAxis(axis, start, end int, node types.Box) splitScore {
	best := splitScore{axis: axis}
	n := end - start
	order := b.order[axis][:n]
	copy(order, b.indices[start:end])
	slices.SortFunc(order, func(i, j uint32) int {
		if c := cmp.Compare(b.centroids[i][axis], b.centroids[j][axis]); c != 0 {
			return c
		}
		return cmp.Compare(i, j)
	})

	// rightArea[k] holds the area of primitives [k, n).
	rightArea := b.areas[axis][:n]
	acc := types.EmptyBox()
	for k := n - 1; k > 0; k-- {
		acc = acc.Union(b.boxes[order[k]])
		rightArea[k] = acc.HalfArea()
	}

	area := node.HalfArea()
	acc = types.EmptyBox()
	for k := 1; k < n; k++ {
		acc = acc.Union(b.boxes[order[k-1]])
		cost := b.sahCost(area, acc.HalfArea(), k, rightArea[k], n-k)
		if !best.valid || cost < best.cost {
			best = splitScore{axis: axis, pos: k, cost: cost, valid: true}
		}
	}
	return best
}

// Evaluate all three axes and pick the cheapest split. Ties go to the lowest
// axis. Ranges with at least ParallelThreshold primitives score the axes
// concurrently; the results are reduced in axis order either way.
func (b *builder) findSplit(start, end int, node, centroids types.Box) splitScore {
	var scores [3]splitScore
	if end-start >= b.opts.ParallelThreshold {
		for axis := 0; axis < 3; axis++ {
			go func(axis int) {
				b.scoreChan <- b.scoreAxis(axis, start, end, node, centroids)
			}(axis)
		}
		for pending := 3; pending > 0; pending-- {
			s := <-b.scoreChan
			scores[s.axis] = s
		}
	} else {
		for axis := 0; axis < 3; axis++ {
			scores[axis] = b.scoreAxis(axis, start, end, node, centroids)
		}
	}

	best := splitScore{}
	for _, s := range scores {
		if s.valid && (!best.valid || s.cost < best.cost) {
			best = s
		}
	}
	return best
}

// Reorder the index range so that primitives left of the split come first
// and return the index of the first primitive on the right side.
func (b *builder) applySplit(s splitScore, start, end int, centroids types.Box) int {
	if b.opts.Strategy == Sweep {
		copy(b.indices[start:end], b.order[s.axis][:end-start])
		return start + s.pos
	}

	n := b.opts.Buckets
	cmin := centroids.Min[s.axis]
	scale := binScale(centroids.Max[s.axis]-cmin, n)

	// Lomuto style in-place partition
	mid := start
	for i := start; i < end; i++ {
		id := b.indices[i]
		if binIndex(b.centroids[id][s.axis], cmin, scale, n) <= s.pos {
			b.indices[i], b.indices[mid] = b.indices[mid], id
			mid++
		}
	}
	return mid
}
