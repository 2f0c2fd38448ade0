package bvh

import (
	"fmt"

	"github.com/achilleasa/vmath/intersect"
	"github.com/achilleasa/vmath/types"
	"github.com/achilleasa/vmath/wide"
)

// A BVH over an indexed triangle mesh. Triangle data is copied into SOA form
// in leaf order when the mesh is built so each leaf can be tested with a
// single call to the wide triangle kernel. The input buffers are never
// modified.
type MeshBVH struct {
	Vertices []types.Vec3
	Faces    []uint32

	tree *Tree
	opts Options

	// Triangles by face id.
	tris []types.Triangle

	// Triangles in tree.Indices order.
	leafTris *wide.TriangleSOA

	engine wide.Engine
}

// Build a BVH over the triangle mesh defined by vertices and faces (three
// vertex indices per triangle). Zero area triangles are left out of the
// tree; triangles with non-finite vertices are handled according to
// opts.InvalidPrimitives.
func NewMeshBVH(vertices []types.Vec3, faces []uint32, opts Options) (*MeshBVH, error) {
	m, err := newMesh(vertices, faces, opts)
	if err != nil {
		return nil, err
	}

	boxes := make([]types.Box, len(m.tris))
	centroids := make([]types.Vec3, len(m.tris))
	degenerate := make([]bool, len(m.tris))
	for i := range m.tris {
		boxes[i] = m.tris[i].Box()
		centroids[i] = m.tris[i].Centroid()
		degenerate[i] = m.tris[i].IsFinite() && m.tris[i].IsDegenerate()
	}

	if m.tree, err = build(boxes, centroids, degenerate, opts); err != nil {
		return nil, err
	}
	m.cacheLeafTriangles()
	return m, nil
}

// Wrap a previously built tree (e.g. one loaded from disk) around a mesh.
// The tree is validated against the mesh before use. The node layout is
// taken from opts.
func RestoreMeshBVH(vertices []types.Vec3, faces []uint32, tree *Tree, opts Options) (*MeshBVH, error) {
	m, err := newMesh(vertices, faces, opts)
	if err != nil {
		return nil, err
	}
	// The caller's tree is shared; switch layouts on a copy.
	restored := *tree
	if opts.Layout == LayoutCompact && restored.CompactNodes == nil {
		restored.Compact()
	} else {
		restored.Layout = opts.Layout
	}
	m.tree = &restored
	if err = m.Validate(); err != nil {
		return nil, err
	}
	m.cacheLeafTriangles()
	return m, nil
}

func newMesh(vertices []types.Vec3, faces []uint32, opts Options) (*MeshBVH, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(faces)%3 != 0 {
		return nil, fmt.Errorf("%w: index count %d is not a multiple of 3", ErrInvalidMesh, len(faces))
	}
	for i, vi := range faces {
		if int(vi) >= len(vertices) {
			return nil, fmt.Errorf("%w: index %d references vertex %d out of %d", ErrInvalidMesh, i, vi, len(vertices))
		}
	}

	width, err := wide.ParseWidth(opts.LaneWidth)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOptions, err)
	}
	engine, err := wide.New(width)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOptions, err)
	}

	tris := make([]types.Triangle, len(faces)/3)
	for i := range tris {
		tris[i] = types.NewTriangle(vertices[faces[3*i]], vertices[faces[3*i+1]], vertices[faces[3*i+2]])
	}

	return &MeshBVH{
		Vertices: vertices,
		Faces:    faces,
		opts:     opts,
		tris:     tris,
		engine:   engine,
	}, nil
}

func (m *MeshBVH) cacheLeafTriangles() {
	m.leafTris = &wide.TriangleSOA{}
	m.leafTris.Grow(len(m.tree.Indices))
	for _, id := range m.tree.Indices {
		m.leafTris.Append(&m.tris[id])
	}
}

// Get the tree.
func (m *MeshBVH) Tree() *Tree {
	return m.tree
}

// Get the mesh triangles indexed by face id.
func (m *MeshBVH) Triangles() []types.Triangle {
	return m.tris
}

// Get the bounds of the triangles in the tree.
func (m *MeshBVH) Bounds() types.Box {
	return m.tree.Bounds
}

// Get the engine used for leaf tests.
func (m *MeshBVH) Engine() wide.Engine {
	return m.engine
}

// Get the options the mesh was built with.
func (m *MeshBVH) Options() Options {
	return m.opts
}

// Check the tree invariants against the triangle boxes.
func (m *MeshBVH) Validate() error {
	boxes := make([]types.Box, len(m.tris))
	for i := range m.tris {
		boxes[i] = m.tris[i].Box()
	}
	return m.tree.Validate(boxes)
}

// Intersect a ray with triangle prim using the scalar kernel.
func (m *MeshBVH) IntersectPrimitive(r *types.Ray, prim uint32) (types.Hit, bool) {
	h, ok := intersect.TriangleHit(r, &m.tris[prim], int32(prim), m.opts.CullBackFaces)
	if !ok || h.T == types.Inf {
		return types.NoHit(), false
	}
	return h, true
}

// Find the closest triangle hit by r.
func (m *MeshBVH) Intersect(r types.Ray, stats *TraversalStats) types.Hit {
	return m.tree.traverse(r, false, m.leafFunc(false), stats)
}

// Returns true if r hits any triangle.
func (m *MeshBVH) Occluded(r types.Ray, stats *TraversalStats) bool {
	return m.tree.traverse(r, true, m.leafFunc(true), stats).Valid()
}

// Test a ray against every triangle without using the tree.
func (m *MeshBVH) BruteForce(r types.Ray) types.Hit {
	return BruteForce(r, len(m.tris), m)
}

// Build a leaf test that runs the wide triangle kernel over the leaf's slot
// range and reduces the lanes in slot order.
func (m *MeshBVH) leafFunc(anyHit bool) leafFunc {
	var (
		fixed   [3 * 16]float32
		scratch []float32
	)
	if m.tree.MaxLeafSize <= 16 {
		scratch = fixed[:]
	} else {
		scratch = make([]float32, 3*m.tree.MaxLeafSize)
	}
	stride := len(scratch) / 3
	t, u, v := scratch[:stride], scratch[stride:2*stride], scratch[2*stride:]

	return func(r *types.Ray, first, count uint32, best *types.Hit, stats *TraversalStats) bool {
		tris := m.leafTris.Slice(int(first), int(first+count))
		m.engine.Triangles(r, &tris, m.opts.CullBackFaces, t, u, v)
		stats.PrimitiveTests += int(count)

		updated := false
		for k := 0; k < int(count); k++ {
			if t[k] == types.Inf {
				continue
			}
			id := m.tree.Indices[first+uint32(k)]
			h := types.Hit{T: t[k], Prim: int32(id), U: u[k], V: v[k], Normal: m.tris[id].Normal()}
			if h.Closer(*best) {
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
