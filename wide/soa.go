package wide

import (
	"github.com/achilleasa/vmath/intersect"
	"github.com/achilleasa/vmath/types"
)

// A list of boxes stored as one slice per component.
type BoxSOA struct {
	MinX, MinY, MinZ []float32
	MaxX, MaxY, MaxZ []float32
}

// Convert a list of boxes to SOA form.
func NewBoxSOA(boxes []types.Box) *BoxSOA {
	soa := &BoxSOA{}
	soa.Grow(len(boxes))
	for _, b := range boxes {
		soa.Append(b)
	}
	return soa
}

// Reserve capacity for n additional boxes.
func (s *BoxSOA) Grow(n int) {
	s.MinX = grow(s.MinX, n)
	s.MinY = grow(s.MinY, n)
	s.MinZ = grow(s.MinZ, n)
	s.MaxX = grow(s.MaxX, n)
	s.MaxY = grow(s.MaxY, n)
	s.MaxZ = grow(s.MaxZ, n)
}

// Append a box.
func (s *BoxSOA) Append(b types.Box) {
	s.MinX = append(s.MinX, b.Min[0])
	s.MinY = append(s.MinY, b.Min[1])
	s.MinZ = append(s.MinZ, b.Min[2])
	s.MaxX = append(s.MaxX, b.Max[0])
	s.MaxY = append(s.MaxY, b.Max[1])
	s.MaxZ = append(s.MaxZ, b.Max[2])
}

// Get the number of boxes.
func (s *BoxSOA) Len() int {
	return len(s.MinX)
}

// Get box at index i.
func (s *BoxSOA) Box(i int) types.Box {
	return types.Box{
		Min: types.XYZ(s.MinX[i], s.MinY[i], s.MinZ[i]),
		Max: types.XYZ(s.MaxX[i], s.MaxY[i], s.MaxZ[i]),
	}
}

// Return a view of the boxes in [from, to). The view shares storage with s.
func (s *BoxSOA) Slice(from, to int) BoxSOA {
	return BoxSOA{
		MinX: s.MinX[from:to], MinY: s.MinY[from:to], MinZ: s.MinZ[from:to],
		MaxX: s.MaxX[from:to], MaxY: s.MaxY[from:to], MaxZ: s.MaxZ[from:to],
	}
}

// A list of triangles stored as a vertex and two edges, one slice per
// component.
type TriangleSOA struct {
	V0X, V0Y, V0Z []float32
	E1X, E1Y, E1Z []float32
	E2X, E2Y, E2Z []float32
}

// Convert a list of triangles to SOA form.
func NewTriangleSOA(tris []types.Triangle) *TriangleSOA {
	soa := &TriangleSOA{}
	soa.Grow(len(tris))
	for i := range tris {
		soa.Append(&tris[i])
	}
	return soa
}

// Reserve capacity for n additional triangles.
func (s *TriangleSOA) Grow(n int) {
	s.V0X, s.V0Y, s.V0Z = grow(s.V0X, n), grow(s.V0Y, n), grow(s.V0Z, n)
	s.E1X, s.E1Y, s.E1Z = grow(s.E1X, n), grow(s.E1Y, n), grow(s.E1Z, n)
	s.E2X, s.E2Y, s.E2Z = grow(s.E2X, n), grow(s.E2Y, n), grow(s.E2Z, n)
}

// Append a triangle.
func (s *TriangleSOA) Append(t *types.Triangle) {
	s.V0X = append(s.V0X, t.V0[0])
	s.V0Y = append(s.V0Y, t.V0[1])
	s.V0Z = append(s.V0Z, t.V0[2])
	s.E1X = append(s.E1X, t.E1[0])
	s.E1Y = append(s.E1Y, t.E1[1])
	s.E1Z = append(s.E1Z, t.E1[2])
	s.E2X = append(s.E2X, t.E2[0])
	s.E2Y = append(s.E2Y, t.E2[1])
	s.E2Z = append(s.E2Z, t.E2[2])
}

// Get the number of triangles.
func (s *TriangleSOA) Len() int {
	return len(s.V0X)
}

// Get the vertex and edges of triangle i.
func (s *TriangleSOA) At(i int) (v0, e1, e2 types.Vec3) {
	return types.XYZ(s.V0X[i], s.V0Y[i], s.V0Z[i]),
		types.XYZ(s.E1X[i], s.E1Y[i], s.E1Z[i]),
		types.XYZ(s.E2X[i], s.E2Y[i], s.E2Z[i])
}

// Return a view of the triangles in [from, to). The view shares storage
// with s.
func (s *TriangleSOA) Slice(from, to int) TriangleSOA {
	return TriangleSOA{
		V0X: s.V0X[from:to], V0Y: s.V0Y[from:to], V0Z: s.V0Z[from:to],
		E1X: s.E1X[from:to], E1Y: s.E1Y[from:to], E1Z: s.E1Z[from:to],
		E2X: s.E2X[from:to], E2Y: s.E2Y[from:to], E2Z: s.E2Z[from:to],
	}
}

// A packet of rays stored in SOA form. The reciprocal direction is
// precomputed the same way intersect.Prepare does it.
type Packet struct {
	OX, OY, OZ []float32
	DX, DY, DZ []float32
	IX, IY, IZ []float32
	TMin, TMax []float32
}

// Pack a list of rays.
func NewPacket(rays []types.Ray) *Packet {
	p := &Packet{}
	p.Reset(rays)
	return p
}

// Replace the packet contents with rays, reusing storage.
func (p *Packet) Reset(rays []types.Ray) {
	n := len(rays)
	p.OX, p.OY, p.OZ = resize(p.OX, n), resize(p.OY, n), resize(p.OZ, n)
	p.DX, p.DY, p.DZ = resize(p.DX, n), resize(p.DY, n), resize(p.DZ, n)
	p.IX, p.IY, p.IZ = resize(p.IX, n), resize(p.IY, n), resize(p.IZ, n)
	p.TMin, p.TMax = resize(p.TMin, n), resize(p.TMax, n)
	for i := range rays {
		p.Set(i, rays[i])
	}
}

// Overwrite ray i.
func (p *Packet) Set(i int, r types.Ray) {
	inv := r.Dir.Recip()
	p.OX[i], p.OY[i], p.OZ[i] = r.Origin[0], r.Origin[1], r.Origin[2]
	p.DX[i], p.DY[i], p.DZ[i] = r.Dir[0], r.Dir[1], r.Dir[2]
	p.IX[i], p.IY[i], p.IZ[i] = inv[0], inv[1], inv[2]
	p.TMin[i], p.TMax[i] = r.TMin, r.TMax
}

// Get the number of rays in the packet.
func (p *Packet) Len() int {
	return len(p.OX)
}

// Get ray i.
func (p *Packet) Ray(i int) types.Ray {
	return types.Ray{
		Origin: types.XYZ(p.OX[i], p.OY[i], p.OZ[i]),
		Dir:    types.XYZ(p.DX[i], p.DY[i], p.DZ[i]),
		TMin:   p.TMin[i],
		TMax:   p.TMax[i],
	}
}

// Get ray i with its precomputed reciprocal direction.
func (p *Packet) Prepared(i int) intersect.PreparedRay {
	return intersect.PreparedRay{
		Ray:    p.Ray(i),
		InvDir: types.XYZ(p.IX[i], p.IY[i], p.IZ[i]),
	}
}

func grow(s []float32, n int) []float32 {
	if cap(s)-len(s) >= n {
		return s
	}
	out := make([]float32, len(s), len(s)+n)
	copy(out, s)
	return out
}

func resize(s []float32, n int) []float32 {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]float32, n)
}
