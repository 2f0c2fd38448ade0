package reader

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/achilleasa/vmath/asset"
	"github.com/achilleasa/vmath/log"
	"github.com/achilleasa/vmath/types"
	"github.com/qmuntal/gltf"
)

type gltfReader struct {
	logger log.Logger
	doc    *gltf.Document
	mesh   *asset.Mesh
}

// Create a new gltf/glb mesh reader.
func newGltfReader() *gltfReader {
	return &gltfReader{
		logger: log.New("gltf reader"),
	}
}

// Read the triangle primitives of all meshes referenced by the default
// scene, transformed to world space, into a single mesh. Documents without
// scenes have their meshes read untransformed. Buffers must be embedded
// (glb or data URIs).
func (r *gltfReader) Read(res *asset.Resource) (*asset.Mesh, error) {
	r.logger.Noticef(`parsing mesh from "%s"`, res.Path())
	start := time.Now()

	r.doc = &gltf.Document{}
	if err := gltf.NewDecoder(res).Decode(r.doc); err != nil {
		return nil, fmt.Errorf("gltf reader: could not decode %s: %w", res.Path(), err)
	}
	r.mesh = &asset.Mesh{Name: res.Path()}

	if len(r.doc.Scenes) == 0 {
		for index := range r.doc.Meshes {
			if err := r.appendMesh(index, types.Ident4()); err != nil {
				return nil, err
			}
		}
	} else {
		sceneIndex := 0
		if r.doc.Scene != nil {
			sceneIndex = *r.doc.Scene
		}
		if sceneIndex >= len(r.doc.Scenes) {
			return nil, fmt.Errorf("gltf reader: default scene %d out of range", sceneIndex)
		}
		for _, nodeIndex := range r.doc.Scenes[sceneIndex].Nodes {
			if err := r.appendNode(nodeIndex, types.Ident4(), 0); err != nil {
				return nil, err
			}
		}
	}

	r.logger.Noticef("parsed %d vertices and %d triangles in %d ms", len(r.mesh.Vertices), r.mesh.TriangleCount(), time.Since(start).Nanoseconds()/1e6)
	return r.mesh, nil
}

// Append the meshes of a node and its children.
func (r *gltfReader) appendNode(nodeIndex int, parent types.Mat4, depth int) error {
	if nodeIndex < 0 || nodeIndex >= len(r.doc.Nodes) {
		return fmt.Errorf("gltf reader: node %d out of range", nodeIndex)
	}
	// glTF node graphs are trees; a deep chain means a cycle.
	if depth > len(r.doc.Nodes) {
		return fmt.Errorf("gltf reader: node hierarchy contains a cycle at node %d", nodeIndex)
	}

	node := r.doc.Nodes[nodeIndex]
	world := parent.Mul(nodeTransform(node))
	if node.Mesh != nil {
		if err := r.appendMesh(*node.Mesh, world); err != nil {
			return err
		}
	}
	for _, child := range node.Children {
		if err := r.appendNode(child, world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Get the local transform of a node. Nodes either specify a column-major
// matrix or translation, rotation and scale.
func nodeTransform(node *gltf.Node) types.Mat4 {
	var m types.Mat4
	for c := 0; c < 4; c++ {
		for row := 0; row < 4; row++ {
			m[row*4+c] = float32(node.Matrix[c*4+row])
		}
	}
	if m != (types.Mat4{}) && m != types.Ident4() {
		return m
	}

	t := types.XYZ(float32(node.Translation[0]), float32(node.Translation[1]), float32(node.Translation[2]))
	q := types.Quat{
		V: types.XYZ(float32(node.Rotation[0]), float32(node.Rotation[1]), float32(node.Rotation[2])),
		W: float32(node.Rotation[3]),
	}
	if q.V.IsZero() && q.W == 0 {
		q = types.QuatIdent()
	}
	s := types.XYZ(float32(node.Scale[0]), float32(node.Scale[1]), float32(node.Scale[2]))
	if s.IsZero() {
		s = types.Splat3(1)
	}
	return types.Translate4(t).Mul(q.Mat4()).Mul(types.Scale4(s))
}

// Append the triangle primitives of a mesh. Other primitive modes are
// skipped.
func (r *gltfReader) appendMesh(meshIndex int, world types.Mat4) error {
	if meshIndex < 0 || meshIndex >= len(r.doc.Meshes) {
		return fmt.Errorf("gltf reader: mesh %d out of range", meshIndex)
	}

	m := r.doc.Meshes[meshIndex]
	for primIndex, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			r.logger.Warningf(`skipping non-triangle primitive %d of mesh "%s"`, primIndex, m.Name)
			continue
		}

		posIndex, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := r.readPositions(posIndex)
		if err != nil {
			return fmt.Errorf("gltf reader: mesh %q primitive %d: %w", m.Name, primIndex, err)
		}

		var indices []uint32
		if prim.Indices != nil {
			if indices, err = r.readIndices(*prim.Indices); err != nil {
				return fmt.Errorf("gltf reader: mesh %q primitive %d: %w", m.Name, primIndex, err)
			}
		} else {
			indices = make([]uint32, len(positions)-len(positions)%3)
			for i := range indices {
				indices[i] = uint32(i)
			}
		}
		if len(indices)%3 != 0 {
			return fmt.Errorf("gltf reader: mesh %q primitive %d: index count %d is not a multiple of 3", m.Name, primIndex, len(indices))
		}

		for i := range positions {
			positions[i] = world.MulPoint(positions[i])
		}
		r.mesh.Append(&asset.Mesh{Vertices: positions, Faces: indices})
	}
	return nil
}

// Get the bytes referenced by an accessor together with the element stride.
func (r *gltfReader) accessorData(accessorIndex int, elemSize int) (*gltf.Accessor, []byte, int, error) {
	if accessorIndex < 0 || accessorIndex >= len(r.doc.Accessors) {
		return nil, nil, 0, fmt.Errorf("accessor %d out of range", accessorIndex)
	}
	accessor := r.doc.Accessors[accessorIndex]
	if accessor.BufferView == nil {
		return nil, nil, 0, fmt.Errorf("accessor %d has no buffer view", accessorIndex)
	}

	viewIndex := *accessor.BufferView
	if viewIndex < 0 || viewIndex >= len(r.doc.BufferViews) {
		return nil, nil, 0, fmt.Errorf("accessor %d: buffer view %d out of range", accessorIndex, viewIndex)
	}
	view := r.doc.BufferViews[viewIndex]
	if view.Buffer < 0 || view.Buffer >= len(r.doc.Buffers) {
		return nil, nil, 0, fmt.Errorf("buffer view %d: buffer %d out of range", viewIndex, view.Buffer)
	}
	buffer := r.doc.Buffers[view.Buffer]
	if buffer.Data == nil {
		return nil, nil, 0, fmt.Errorf("buffer %d is not embedded (uri %q)", view.Buffer, buffer.URI)
	}

	stride := view.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	start := view.ByteOffset + accessor.ByteOffset
	if start < 0 || start > len(buffer.Data) {
		return nil, nil, 0, fmt.Errorf("accessor %d starts outside buffer %d", accessorIndex, view.Buffer)
	}
	if accessor.Count > 0 {
		if end := start + (accessor.Count-1)*stride + elemSize; end > len(buffer.Data) {
			return nil, nil, 0, fmt.Errorf("accessor %d reads past the end of buffer %d", accessorIndex, view.Buffer)
		}
	}
	return accessor, buffer.Data[start:], stride, nil
}

func (r *gltfReader) readPositions(accessorIndex int) ([]types.Vec3, error) {
	if accessorIndex < 0 || accessorIndex >= len(r.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIndex)
	}
	accessor := r.doc.Accessors[accessorIndex]
	if accessor.Type != gltf.AccessorVec3 || accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC3 positions; got %v / %v", accessor.Type, accessor.ComponentType)
	}

	_, data, stride, err := r.accessorData(accessorIndex, 12)
	if err != nil {
		return nil, err
	}

	positions := make([]types.Vec3, accessor.Count)
	for i := range positions {
		offset := i * stride
		for j := 0; j < 3; j++ {
			positions[i][j] = math.Float32frombits(binary.LittleEndian.Uint32(data[offset+4*j:]))
		}
	}
	return positions, nil
}

func (r *gltfReader) readIndices(accessorIndex int) ([]uint32, error) {
	if accessorIndex < 0 || accessorIndex >= len(r.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIndex)
	}
	accessor := r.doc.Accessors[accessorIndex]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices; got %v", accessor.Type)
	}

	var elemSize int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		elemSize = 1
	case gltf.ComponentUshort:
		elemSize = 2
	case gltf.ComponentUint:
		elemSize = 4
	default:
		return nil, fmt.Errorf("unsupported index component type %v", accessor.ComponentType)
	}

	_, data, stride, err := r.accessorData(accessorIndex, elemSize)
	if err != nil {
		return nil, err
	}

	indices := make([]uint32, accessor.Count)
	for i := range indices {
		offset := i * stride
		switch elemSize {
		case 1:
			indices[i] = uint32(data[offset])
		case 2:
			indices[i] = uint32(binary.LittleEndian.Uint16(data[offset:]))
		default:
			indices[i] = binary.LittleEndian.Uint32(data[offset:])
		}
	}
	return indices, nil
}
