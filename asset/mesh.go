package asset

import (
	"errors"
	"fmt"

	"github.com/achilleasa/vmath/types"
)

var ErrInvalidMesh = errors.New("asset: invalid mesh")

// An indexed triangle mesh. Faces holds three vertex indices per triangle.
type Mesh struct {
	Name     string
	Vertices []types.Vec3
	Faces    []uint32
}

// Get the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces) / 3
}

// Get the bounding box of the referenced vertices.
func (m *Mesh) Bounds() types.Box {
	b := types.EmptyBox()
	for _, vi := range m.Faces {
		b = b.Extend(m.Vertices[vi])
	}
	return b
}

// Append the triangles of another mesh, re-basing its indices.
func (m *Mesh) Append(other *Mesh) {
	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, other.Vertices...)
	for _, vi := range other.Faces {
		m.Faces = append(m.Faces, base+vi)
	}
}

// Check that the face list is made of triangles and only references existing
// vertices.
func (m *Mesh) Validate() error {
	if len(m.Faces)%3 != 0 {
		return fmt.Errorf("%w: %q has %d indices which is not a multiple of 3", ErrInvalidMesh, m.Name, len(m.Faces))
	}
	for i, vi := range m.Faces {
		if int(vi) >= len(m.Vertices) {
			return fmt.Errorf("%w: %q index %d references vertex %d out of %d", ErrInvalidMesh, m.Name, i, vi, len(m.Vertices))
		}
	}
	return nil
}
