package asset

import (
	"errors"
	"fmt"

	"github.com/achilleasa/vmath/bvh"
)

// The version of the compiled mesh format. Bump when the Compiled layout or
// the node encoding changes.
const CompiledVersion = 1

var ErrVersionMismatch = errors.New("asset: compiled mesh version mismatch")

// A mesh together with a prebuilt BVH, ready to be persisted with the writer
// package and restored without rebuilding.
type Compiled struct {
	Version int
	Mesh    Mesh
	Options bvh.Options
	Tree    *bvh.Tree
}

// Build a BVH for mesh.
func Compile(mesh *Mesh, opts bvh.Options) (*Compiled, *bvh.MeshBVH, error) {
	if err := mesh.Validate(); err != nil {
		return nil, nil, err
	}
	accel, err := bvh.NewMeshBVH(mesh.Vertices, mesh.Faces, opts)
	if err != nil {
		return nil, nil, err
	}
	return &Compiled{
		Version: CompiledVersion,
		Mesh:    *mesh,
		Options: opts,
		Tree:    accel.Tree(),
	}, accel, nil
}

// Wrap the stored tree around the stored mesh. The tree is validated against
// the mesh geometry. The options stored at compile time are used unless
// overrides are specified; only settings that do not affect the tree shape
// (layout, lane width and culling) are taken from the overrides.
func (c *Compiled) Restore(overrides *bvh.Options) (*bvh.MeshBVH, error) {
	if c.Version != CompiledVersion {
		return nil, fmt.Errorf("%w: expected %d; got %d", ErrVersionMismatch, CompiledVersion, c.Version)
	}
	if c.Tree == nil {
		return nil, fmt.Errorf("%w: %q has no tree", ErrInvalidMesh, c.Mesh.Name)
	}

	opts := c.Options
	if overrides != nil {
		opts.Layout = overrides.Layout
		opts.LaneWidth = overrides.LaneWidth
		opts.CullBackFaces = overrides.CullBackFaces
	}
	return bvh.RestoreMeshBVH(c.Mesh.Vertices, c.Mesh.Faces, c.Tree, opts)
}
