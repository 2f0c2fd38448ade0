package bvh

import (
	"github.com/achilleasa/vmath/types"
	"github.com/achilleasa/vmath/wide"
)

// Find the closest hit for every ray in a packet. The packet traverses the
// tree as a unit: a node is visited if any active ray hits its box and
// leaves are only tested by the rays that hit them. Each ray shrinks its
// own interval as hits are found, so the result of every lane matches
// Intersect for the same ray.
//
// hits must hold at least p.Len() entries. The packet is not modified.
func (m *MeshBVH) IntersectPacket(p *wide.Packet, hits []types.Hit, stats *TraversalStats) {
	if stats == nil {
		stats = &TraversalStats{}
	}

	n := p.Len()
	stats.Queries += n
	hits = hits[:n]

	// Work on a copy of the packet whose TMax lanes track the closest hit.
	work := *p
	work.TMax = append([]float32(nil), p.TMax...)

	active := make([]bool, n)
	anyActive := false
	for i := range hits {
		hits[i] = types.NoHit()
		active[i] = p.Ray(i).IsValid()
		anyActive = anyActive || active[i]
	}
	if m.tree.Empty() || !anyActive {
		return
	}

	nodes := m.tree.Nodes
	tNear := make([]float32, n)
	laneHit := make([]bool, n)
	leaf := m.leafFunc(false)

	var fixed [fixedStackSize]uint32
	stack := fixed[:0]
	if m.tree.Depth+1 > fixedStackSize {
		stack = make([]uint32, 0, m.tree.Depth+1)
	}
	stack = append(stack, 0)

	for len(stack) > 0 {
		index := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		box := m.nodeBounds(index)
		m.engine.Packet(&work, &box, tNear)
		stats.BoxTests += n

		visit := false
		for i := range laneHit {
			laneHit[i] = active[i] && tNear[i] != types.Inf
			visit = visit || laneHit[i]
		}
		if !visit {
			continue
		}

		stats.Nodes++
		node := nodes[index]
		if node.IsLeaf() {
			stats.Leaves++
			first, count := node.GetPrimitives()
			for i, ok := range laneHit {
				if !ok {
					continue
				}
				r := work.Ray(i)
				if leaf(&r, first, count, &hits[i], stats) {
					work.TMax[i] = hits[i].T
				}
			}
			continue
		}

		// Visit the child closer to the rays first. The packet is ordered
		// by the direction of its first active ray along the axis that
		// separates the children the most.
		left, right := node.Children()
		if m.rightFirst(left, right, &work, laneHit) {
			stack = append(stack, left, right)
		} else {
			stack = append(stack, right, left)
		}
	}

	for i := range hits {
		if hits[i].Valid() {
			stats.Hits++
		}
	}
}

// Get the box of a node from the layout used by the tree.
func (m *MeshBVH) nodeBounds(index uint32) types.Box {
	if m.tree.Layout == LayoutCompact && len(m.tree.CompactNodes) != 0 {
		return m.tree.CompactNodes[index].Bounds()
	}
	return m.tree.Nodes[index].Bounds()
}

func (m *MeshBVH) rightFirst(left, right uint32, p *wide.Packet, laneHit []bool) bool {
	lc := m.tree.Nodes[left].Bounds().Center()
	rc := m.tree.Nodes[right].Bounds().Center()
	axis := rc.Sub(lc).Abs().MaxAxis()

	lane := 0
	for i, ok := range laneHit {
		if ok {
			lane = i
			break
		}
	}

	var dir float32
	switch axis {
	case 0:
		dir = p.DX[lane]
	case 1:
		dir = p.DY[lane]
	default:
		dir = p.DZ[lane]
	}
	return (rc[axis] < lc[axis]) == (dir > 0)
}
