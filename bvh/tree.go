package bvh

import (
	"fmt"

	"github.com/achilleasa/vmath/types"
)

// A flattened BVH. Nodes are stored depth first with the root at index 0 and
// the left child of each internal node immediately after it. Leaves refer to
// contiguous ranges of Indices which in turn hold the ids of the primitives
// the tree was built from.
//
// A tree is never modified after Build returns so it can be shared by any
// number of concurrent queries.
type Tree struct {
	Nodes []Node

	// Half float copy of Nodes; only populated for the compact layout.
	CompactNodes []CompactNode

	Indices []uint32

	Bounds      types.Box
	Depth       int
	MaxLeafSize int
	Layout      Layout

	Stats BuildStats
}

// Get the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.Nodes)
}

// Returns true if the tree has no nodes.
func (t *Tree) Empty() bool {
	return len(t.Nodes) == 0
}

// Populate the compact node list from the full nodes and switch traversal to
// the compact layout.
func (t *Tree) Compact() {
	t.CompactNodes = make([]CompactNode, len(t.Nodes))
	for i := range t.Nodes {
		t.CompactNodes[i] = NewCompactNode(t.Nodes[i])
	}
	t.Layout = LayoutCompact
}

// Calculate the SAH cost of the whole tree relative to the root box.
func (t *Tree) sahCost(traversalCost, intersectionCost float32) float32 {
	if len(t.Nodes) == 0 {
		return 0
	}

	rootArea := t.Nodes[0].Bounds().HalfArea()
	var cost float32
	for _, n := range t.Nodes {
		p := float32(1)
		if rootArea > 0 {
			p = n.Bounds().HalfArea() / rootArea
		}
		if n.IsLeaf() {
			_, count := n.GetPrimitives()
			cost += p * float32(count) * intersectionCost
		} else {
			cost += p * traversalCost
		}
	}
	return cost
}

// Check the structural invariants of the tree against the boxes it was built
// from:
//
//   - the box of each leaf equals the union of its primitive boxes and the
//     box of each internal node equals the union of its children,
//   - the left child of each internal node directly follows it,
//   - no leaf holds more than MaxLeafSize primitives,
//   - Indices holds each primitive at most once and every slot is covered
//     by exactly one leaf,
//   - compact nodes (if present) enclose their full precision counterparts.
func (t *Tree) Validate(boxes []types.Box) error {
	if len(t.Nodes) == 0 {
		if len(t.Indices) != 0 {
			return fmt.Errorf("%w: empty tree with %d indices", ErrInvalidTree, len(t.Indices))
		}
		return nil
	}

	expIndices := t.Stats.Primitives - t.Stats.Filtered - t.Stats.Degenerate
	if len(t.Indices) != expIndices {
		return fmt.Errorf("%w: expected %d indices; got %d", ErrInvalidTree, expIndices, len(t.Indices))
	}

	seen := make([]bool, len(boxes))
	for slot, id := range t.Indices {
		if int(id) >= len(boxes) {
			return fmt.Errorf("%w: slot %d references primitive %d out of %d", ErrInvalidTree, slot, id, len(boxes))
		}
		if seen[id] {
			return fmt.Errorf("%w: primitive %d referenced more than once", ErrInvalidTree, id)
		}
		seen[id] = true
	}

	covered := 0
	visited := make([]bool, len(t.Nodes))
	if _, err := t.validateNode(0, boxes, visited, &covered); err != nil {
		return err
	}
	if covered != len(t.Indices) {
		return fmt.Errorf("%w: leaves cover %d of %d index slots", ErrInvalidTree, covered, len(t.Indices))
	}
	for i, v := range visited {
		if !v {
			return fmt.Errorf("%w: node %d is unreachable", ErrInvalidTree, i)
		}
	}

	if t.CompactNodes != nil {
		if len(t.CompactNodes) != len(t.Nodes) {
			return fmt.Errorf("%w: expected %d compact nodes; got %d", ErrInvalidTree, len(t.Nodes), len(t.CompactNodes))
		}
		for i, cn := range t.CompactNodes {
			n := t.Nodes[i]
			if cn.LData != n.LData || cn.RData != n.RData {
				return fmt.Errorf("%w: compact node %d links differ from node", ErrInvalidTree, i)
			}
			if !cn.Bounds().Contains(n.Bounds()) {
				return fmt.Errorf("%w: compact node %d box %v does not enclose %v", ErrInvalidTree, i, cn.Bounds(), n.Bounds())
			}
		}
	}
	return nil
}

// Walk the subtree rooted at index and return the union of the primitive
// boxes it contains.
func (t *Tree) validateNode(index uint32, boxes []types.Box, visited []bool, covered *int) (types.Box, error) {
	if int(index) >= len(t.Nodes) {
		return types.Box{}, fmt.Errorf("%w: node index %d out of range", ErrInvalidTree, index)
	}
	if visited[index] {
		return types.Box{}, fmt.Errorf("%w: node %d reachable more than once", ErrInvalidTree, index)
	}
	visited[index] = true

	node := t.Nodes[index]
	var union types.Box
	if node.IsLeaf() {
		first, count := node.GetPrimitives()
		if count == 0 || int(count) > t.MaxLeafSize {
			return union, fmt.Errorf("%w: leaf %d holds %d primitives (max %d)", ErrInvalidTree, index, count, t.MaxLeafSize)
		}
		if int(first+count) > len(t.Indices) {
			return union, fmt.Errorf("%w: leaf %d range [%d, %d) out of range", ErrInvalidTree, index, first, first+count)
		}
		union = types.EmptyBox()
		for _, id := range t.Indices[first : first+count] {
			union = union.Union(boxes[id])
		}
		*covered += int(count)
	} else {
		left, right := node.Children()
		if left != index+1 {
			return union, fmt.Errorf("%w: left child of node %d is %d", ErrInvalidTree, index, left)
		}
		lbox, err := t.validateNode(left, boxes, visited, covered)
		if err != nil {
			return union, err
		}
		rbox, err := t.validateNode(right, boxes, visited, covered)
		if err != nil {
			return union, err
		}
		union = lbox.Union(rbox)
	}

	if node.Bounds() != union {
		return union, fmt.Errorf("%w: node %d box %v; expected %v", ErrInvalidTree, index, node.Bounds(), union)
	}
	return union, nil
}
