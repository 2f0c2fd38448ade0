package bvh

import (
	"fmt"
	"time"

	"github.com/achilleasa/vmath/log"
	"github.com/achilleasa/vmath/types"
)

// A pending range of primitives. Ranges are processed depth first; parent
// is the node whose child pointer must be patched once the range has been
// assigned a node index.
type buildTask struct {
	start, end int
	depth      int
	parent     int
	right      bool
}

type builder struct {
	logger log.Logger
	opts   Options

	boxes     []types.Box
	centroids []types.Vec3

	// The primitive index permutation that gets reordered in place.
	indices []uint32

	// Bvh nodes stored as a contiguous list
	nodes []Node

	// A channel for receiving per-axis score results.
	scoreChan chan splitScore

	// Per-axis scratch space so axes can be scored concurrently.
	bins  [3][]bin
	areas [3][]float32
	order [3][]uint32

	stats BuildStats
}

// Construct a BVH over a set of primitive bounding boxes. The centroid of
// each box is used to partition the primitives.
//
// The returned tree references primitives by their index in boxes. An empty
// input yields an empty tree unless opts.RequireNonEmpty is set.
func Build(boxes []types.Box, opts Options) (*Tree, error) {
	centroids := make([]types.Vec3, len(boxes))
	for i := range boxes {
		centroids[i] = boxes[i].Center()
	}
	return build(boxes, centroids, nil, opts)
}

// Construct a BVH using caller supplied centroids. Both slices must have the
// same length.
func BuildWithCentroids(boxes []types.Box, centroids []types.Vec3, opts Options) (*Tree, error) {
	if len(boxes) != len(centroids) {
		return nil, fmt.Errorf("%w: got %d boxes and %d centroids", ErrInvalidOptions, len(boxes), len(centroids))
	}
	return build(boxes, centroids, nil, opts)
}

// Construct a BVH skipping the primitives flagged in degenerate. Skipped
// primitives are reported in BuildStats.Degenerate.
func build(boxes []types.Box, centroids []types.Vec3, degenerate []bool, opts Options) (*Tree, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	b := &builder{
		logger:    log.New("bvh"),
		opts:      opts,
		boxes:     boxes,
		centroids: centroids,
		scoreChan: make(chan splitScore, 3),
		stats: BuildStats{
			Primitives: len(boxes),
		},
	}

	start := time.Now()
	if err := b.collect(degenerate); err != nil {
		return nil, err
	}
	if len(b.indices) == 0 && opts.RequireNonEmpty {
		return nil, ErrEmptyInput
	}

	b.allocScratch()
	b.partition()
	b.stats.BuildTime = time.Since(start)

	tree := b.tree()
	b.logger.Debugf(
		"BVH tree build time: %d ms, maxDepth: %d, nodes: %d, leafs: %d",
		b.stats.BuildTime.Nanoseconds()/1e6,
		b.stats.MaxDepth, b.stats.Nodes, b.stats.Leaves,
	)
	return tree, nil
}

// Fill the index list with the primitives that take part in the build.
// Malformed primitives are either rejected or skipped depending on the
// configured policy.
func (b *builder) collect(degenerate []bool) error {
	var malformed MalformedError
	b.indices = make([]uint32, 0, len(b.boxes))
	for i := range b.boxes {
		id := uint32(i)
		if !wellFormed(b.boxes[i], b.centroids[i]) {
			malformed.add(id)
			continue
		}
		if degenerate != nil && degenerate[i] {
			b.stats.Degenerate++
			continue
		}
		b.indices = append(b.indices, id)
	}

	if malformed.Count == 0 {
		return nil
	}
	if b.opts.InvalidPrimitives == Reject {
		return &malformed
	}

	b.stats.Filtered = malformed.Count
	b.logger.Warningf("skipped %d malformed primitive(s) (first: %v)", malformed.Count, malformed.Primitives)
	return nil
}

// A primitive is usable if its box is finite and not inverted and its
// centroid is finite.
func wellFormed(box types.Box, centroid types.Vec3) bool {
	return box.Min.IsFinite() && box.Max.IsFinite() && centroid.IsFinite() &&
		box.Min[0] <= box.Max[0] && box.Min[1] <= box.Max[1] && box.Min[2] <= box.Max[2]
}

func (b *builder) allocScratch() {
	n := len(b.indices)
	for axis := 0; axis < 3; axis++ {
		if b.opts.Strategy == Sweep {
			b.order[axis] = make([]uint32, n)
			b.areas[axis] = make([]float32, n)
		} else {
			b.bins[axis] = make([]bin, b.opts.Buckets)
			b.areas[axis] = make([]float32, b.opts.Buckets)
		}
	}
	b.nodes = make([]Node, 0, max(0, 2*n/b.opts.MaxLeafSize))
}

// Partition the primitive list into a tree. Ranges are processed from an
// explicit stack so that very unbalanced trees cannot exhaust the goroutine
// stack. The left child of every node is emitted right after its parent.
func (b *builder) partition() {
	if len(b.indices) == 0 {
		return
	}

	stack := []buildTask{{start: 0, end: len(b.indices), parent: -1}}
	for len(stack) > 0 {
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		nodeIndex := len(b.nodes)
		if task.parent >= 0 {
			if task.right {
				b.nodes[task.parent].RData = int32(nodeIndex)
			} else {
				b.nodes[task.parent].LData = int32(nodeIndex)
			}
		}
		if task.depth > b.stats.MaxDepth {
			b.stats.MaxDepth = task.depth
		}

		// Calculate bounding box and centroid bounds for node
		box, centroids := types.EmptyBox(), types.EmptyBox()
		for _, id := range b.indices[task.start:task.end] {
			box = box.Union(b.boxes[id])
			centroids = centroids.Extend(b.centroids[id])
		}

		var node Node
		node.SetBox(box)
		b.nodes = append(b.nodes, node)

		count := task.end - task.start
		if count <= b.opts.MaxLeafSize {
			b.createLeaf(nodeIndex, task.start, count)
			continue
		}

		mid := b.split(task.start, task.end, box, centroids)
		b.stats.Nodes++

		// Push right first so the left child gets the next node slot
		stack = append(stack,
			buildTask{start: mid, end: task.end, depth: task.depth + 1, parent: nodeIndex, right: true},
			buildTask{start: task.start, end: mid, depth: task.depth + 1, parent: nodeIndex},
		)
	}
}

// Pick a split for a range that is too large for a leaf and partition it.
// Leaves can never exceed MaxLeafSize so the range is split even when SAH
// considers a leaf cheaper. When no candidate exists (all centroids
// coincide) the range is split at its median in index order.
func (b *builder) split(start, end int, box, centroids types.Box) int {
	best := b.findSplit(start, end, box, centroids)
	if !best.valid {
		b.stats.MedianSplits++
		return start + (end-start)/2
	}

	if best.cost >= float32(end-start)*b.opts.IntersectionCost {
		b.stats.ForcedSplits++
	}
	return b.applySplit(best, start, end, centroids)
}

// Setup the node at nodeIndex as a leaf covering count primitive slots.
func (b *builder) createLeaf(nodeIndex, start, count int) {
	b.nodes[nodeIndex].SetPrimitives(uint32(start), uint32(count))

	// update stats
	b.stats.Nodes++
	b.stats.Leaves++
	if count > b.stats.MaxLeafPrims {
		b.stats.MaxLeafPrims = count
	}
}

// Assemble the tree from the builder state.
func (b *builder) tree() *Tree {
	t := &Tree{
		Nodes:       b.nodes,
		Indices:     b.indices,
		Bounds:      types.EmptyBox(),
		Depth:       b.stats.MaxDepth,
		MaxLeafSize: b.opts.MaxLeafSize,
		Layout:      b.opts.Layout,
	}
	if len(t.Nodes) != 0 {
		t.Bounds = t.Nodes[0].Bounds()
	}
	b.stats.Cost = t.sahCost(b.opts.TraversalCost, b.opts.IntersectionCost)
	t.Stats = b.stats
	if t.Layout == LayoutCompact {
		t.Compact()
	}
	return t
}
