package wide

import (
	"github.com/achilleasa/vmath/intersect"
	"github.com/achilleasa/vmath/types"
	"github.com/ajroetker/go-highway/hwy"
)

type vec = hwy.Vec[float32]

// nativeEngine runs the kernels on go-highway vectors using as many lanes as
// the running CPU provides. Min/max steps are expressed as compare+select so
// NaN lanes resolve exactly like the scalar kernels on every target.
type nativeEngine struct {
	lanes int
	name  string
}

func newNativeEngine() Engine {
	lanes := hwy.MaxLanes[float32]()
	if lanes < 1 {
		return scalarEngine{}
	}
	return nativeEngine{
		lanes: lanes,
		name:  "hwy-" + hwy.CurrentLevel().String(),
	}
}

func (e nativeEngine) Name() string { return e.name }
func (e nativeEngine) Width() int   { return e.lanes }

// A block of consecutive elements processed as one vector.
type span struct {
	off  int
	tail bool
	mask hwy.Mask[float32]
}

func (s span) load(src []float32) vec {
	if s.tail {
		return hwy.MaskLoad(s.mask, src[s.off:])
	}
	return hwy.Load(src[s.off:])
}

func (s span) store(v vec, dst []float32) {
	if s.tail {
		hwy.MaskStore(s.mask, v, dst[s.off:])
		return
	}
	hwy.Store(v, dst[s.off:])
}

func forEachSpan(n int, fn func(s span)) {
	hwy.ProcessWithTail[float32](n,
		func(off int) {
			fn(span{off: off})
		},
		func(off, count int) {
			fn(span{off: off, tail: true, mask: hwy.TailMask[float32](count)})
		},
	)
}

func (e nativeEngine) Boxes(r *intersect.PreparedRay, boxes *BoxSOA, tNear []float32) {
	ox, oy, oz := hwy.Set(r.Origin[0]), hwy.Set(r.Origin[1]), hwy.Set(r.Origin[2])
	ix, iy, iz := hwy.Set(r.InvDir[0]), hwy.Set(r.InvDir[1]), hwy.Set(r.InvDir[2])
	tMin, tMax := hwy.Set(r.TMin), hwy.Set(r.TMax)
	inf := hwy.Set(types.Inf)

	forEachSpan(boxes.Len(), func(s span) {
		near, far := tMin, tMax
		near, far = slabVec(near, far, s.load(boxes.MinX), s.load(boxes.MaxX), ox, ix)
		near, far = slabVec(near, far, s.load(boxes.MinY), s.load(boxes.MaxY), oy, iy)
		near, far = slabVec(near, far, s.load(boxes.MinZ), s.load(boxes.MaxZ), oz, iz)
		s.store(hwy.IfThenElse(hwy.LessEqual(near, far), near, inf), tNear)
	})
}

func (e nativeEngine) Packet(p *Packet, b *types.Box, tNear []float32) {
	minX, minY, minZ := hwy.Set(b.Min[0]), hwy.Set(b.Min[1]), hwy.Set(b.Min[2])
	maxX, maxY, maxZ := hwy.Set(b.Max[0]), hwy.Set(b.Max[1]), hwy.Set(b.Max[2])
	inf := hwy.Set(types.Inf)

	forEachSpan(p.Len(), func(s span) {
		near, far := s.load(p.TMin), s.load(p.TMax)
		near, far = slabVec(near, far, minX, maxX, s.load(p.OX), s.load(p.IX))
		near, far = slabVec(near, far, minY, maxY, s.load(p.OY), s.load(p.IY))
		near, far = slabVec(near, far, minZ, maxZ, s.load(p.OZ), s.load(p.IZ))
		s.store(hwy.IfThenElse(hwy.LessEqual(near, far), near, inf), tNear)
	})
}

func (e nativeEngine) Triangles(r *types.Ray, tris *TriangleSOA, cullBackFaces bool, t, u, v []float32) {
	ox, oy, oz := hwy.Set(r.Origin[0]), hwy.Set(r.Origin[1]), hwy.Set(r.Origin[2])
	dx, dy, dz := hwy.Set(r.Dir[0]), hwy.Set(r.Dir[1]), hwy.Set(r.Dir[2])
	tMin, tMax := hwy.Set(r.TMin), hwy.Set(r.TMax)
	zero, one := hwy.Zero[float32](), hwy.Set[float32](1)
	eps := hwy.Set(intersect.DetEpsilon)
	inf := hwy.Set(types.Inf)

	forEachSpan(tris.Len(), func(s span) {
		e1x, e1y, e1z := s.load(tris.E1X), s.load(tris.E1Y), s.load(tris.E1Z)
		e2x, e2y, e2z := s.load(tris.E2X), s.load(tris.E2Y), s.load(tris.E2Z)

		px, py, pz := cross(dx, dy, dz, e2x, e2y, e2z)
		det := dot(e1x, e1y, e1z, px, py, pz)
		var valid hwy.Mask[float32]
		if cullBackFaces {
			valid = hwy.GreaterEqual(det, eps)
		} else {
			valid = hwy.GreaterEqual(hwy.Abs(det), eps)
		}
		invDet := hwy.Div(one, det)

		sx := hwy.Sub(ox, s.load(tris.V0X))
		sy := hwy.Sub(oy, s.load(tris.V0Y))
		sz := hwy.Sub(oz, s.load(tris.V0Z))
		lu := hwy.Mul(dot(sx, sy, sz, px, py, pz), invDet)
		valid = hwy.MaskAnd(valid, hwy.MaskAnd(hwy.GreaterEqual(lu, zero), hwy.LessEqual(lu, one)))

		qx, qy, qz := cross(sx, sy, sz, e1x, e1y, e1z)
		lv := hwy.Mul(dot(dx, dy, dz, qx, qy, qz), invDet)
		valid = hwy.MaskAnd(valid, hwy.MaskAnd(hwy.GreaterEqual(lv, zero), hwy.LessEqual(hwy.Add(lu, lv), one)))

		lt := hwy.Mul(dot(e2x, e2y, e2z, qx, qy, qz), invDet)
		valid = hwy.MaskAnd(valid, hwy.MaskAnd(hwy.GreaterEqual(lt, tMin), hwy.LessEqual(lt, tMax)))

		s.store(hwy.IfThenElse(valid, lt, inf), t)
		s.store(lu, u)
		s.store(lv, v)
	})
}

// Lanes with an infinite reciprocal and the origin on a slab plane keep
// their interval, matching intersect.Slab.
func slabVec(near, far, lo, hi, o, inv vec) (vec, vec) {
	onPlane := hwy.MaskAnd(
		hwy.Equal(hwy.Abs(inv), hwy.Set(types.Inf)),
		hwy.MaskOr(hwy.Equal(lo, o), hwy.Equal(hi, o)),
	)
	t0 := hwy.Mul(hwy.Sub(lo, o), inv)
	t1 := hwy.Mul(hwy.Sub(hi, o), inv)
	tLo := hwy.IfThenElse(hwy.LessThan(t0, t1), t0, t1)
	tHi := hwy.IfThenElse(hwy.GreaterThan(t0, t1), t0, t1)
	near = hwy.IfThenElse(onPlane, near, hwy.IfThenElse(hwy.GreaterThan(tLo, near), tLo, near))
	far = hwy.IfThenElse(onPlane, far, hwy.IfThenElse(hwy.LessThan(tHi, far), tHi, far))
	return near, far
}

func dot(ax, ay, az, bx, by, bz vec) vec {
	return hwy.Add(hwy.Add(hwy.Mul(ax, bx), hwy.Mul(ay, by)), hwy.Mul(az, bz))
}

func cross(ax, ay, az, bx, by, bz vec) (vec, vec, vec) {
	return hwy.Sub(hwy.Mul(ay, bz), hwy.Mul(az, by)),
		hwy.Sub(hwy.Mul(az, bx), hwy.Mul(ax, bz)),
		hwy.Sub(hwy.Mul(ax, by), hwy.Mul(ay, bx))
}
