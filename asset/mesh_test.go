package asset

import (
	"errors"
	"io"
	"testing"

	"github.com/achilleasa/vmath/bvh"
	"github.com/achilleasa/vmath/log"
	"github.com/achilleasa/vmath/types"
)

func init() {
	log.SetSink(io.Discard)
}

func quad(z float32) *Mesh {
	return &Mesh{
		Name: "quad",
		Vertices: []types.Vec3{
			types.XYZ(-1, -1, z), types.XYZ(1, -1, z), types.XYZ(1, 1, z), types.XYZ(-1, 1, z),
		},
		Faces: []uint32{0, 1, 2, 0, 2, 3},
	}
}

func TestMeshAppend(t *testing.T) {
	m := quad(0)
	m.Append(quad(5))

	if m.TriangleCount() != 4 || len(m.Vertices) != 8 {
		t.Fatalf("expected 4 triangles and 8 vertices; got %d and %d", m.TriangleCount(), len(m.Vertices))
	}
	if m.Faces[6] != 4 || m.Faces[11] != 7 {
		t.Fatalf("expected appended indices to be rebased; got %v", m.Faces[6:])
	}
	expBounds := types.NewBox(types.XYZ(-1, -1, 0), types.XYZ(1, 1, 5))
	if m.Bounds() != expBounds {
		t.Fatalf("expected bounds %v; got %v", expBounds, m.Bounds())
	}
}

func TestMeshValidate(t *testing.T) {
	type spec struct {
		faces  []uint32
		expErr error
	}
	specs := []spec{
		{[]uint32{0, 1, 2}, nil},
		{[]uint32{0, 1}, ErrInvalidMesh},
		{[]uint32{0, 1, 4}, ErrInvalidMesh},
	}

	for index, s := range specs {
		m := quad(0)
		m.Faces = s.faces
		if err := m.Validate(); !errors.Is(err, s.expErr) {
			t.Fatalf("[spec %d] expected error %v; got %v", index, s.expErr, err)
		}
	}
}

func TestCompileAndRestore(t *testing.T) {
	compiled, accel, err := Compile(quad(0), bvh.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if compiled.Version != CompiledVersion || compiled.Tree != accel.Tree() {
		t.Fatalf("expected compiled mesh to carry the built tree")
	}

	overrides := bvh.DefaultOptions()
	overrides.Layout = bvh.LayoutCompact
	overrides.LaneWidth = "1"
	restored, err := compiled.Restore(&overrides)
	if err != nil {
		t.Fatal(err)
	}
	if restored.Tree().Layout != bvh.LayoutCompact {
		t.Fatalf("expected restored tree to use the compact layout; got %s", restored.Tree().Layout)
	}

	r := types.NewRay(types.XYZ(0.5, 0.25, 3), types.XYZ(0, 0, -1))
	if exp, got := accel.Intersect(r, nil), restored.Intersect(r, nil); !exp.Valid() || exp != got {
		t.Fatalf("expected restored hit %+v; got %+v", exp, got)
	}

	compiled.Version++
	if _, err = compiled.Restore(nil); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch; got %v", err)
	}
}

func TestCompileInvalidMesh(t *testing.T) {
	m := quad(0)
	m.Faces = append(m.Faces, 9, 9, 9)
	if _, _, err := Compile(m, bvh.DefaultOptions()); !errors.Is(err, ErrInvalidMesh) {
		t.Fatalf("expected ErrInvalidMesh; got %v", err)
	}
}
