package wide

import (
	"fmt"

	"github.com/achilleasa/vmath/intersect"
	"github.com/achilleasa/vmath/types"
)

const maxLanes = 16

type lanes [maxLanes]float32
type laneMask [maxLanes]bool

// laneEngine processes fixed-size groups of 4, 8 or 16 elements. Each kernel
// stage runs over all lanes of the group before the next stage starts so the
// compiler sees the same data flow a SIMD implementation would use.
type laneEngine struct {
	width int
}

func (e laneEngine) Name() string { return fmt.Sprintf("lanes-%d", e.width) }
func (e laneEngine) Width() int   { return e.width }

func (e laneEngine) Boxes(r *intersect.PreparedRay, boxes *BoxSOA, tNear []float32) {
	total := boxes.Len()
	for off := 0; off < total; off += e.width {
		n := min(e.width, total-off)

		var near, far lanes
		for i := 0; i < n; i++ {
			near[i], far[i] = r.TMin, r.TMax
		}
		slab(&near, &far, boxes.MinX[off:], boxes.MaxX[off:], r.Origin[0], r.InvDir[0], n)
		slab(&near, &far, boxes.MinY[off:], boxes.MaxY[off:], r.Origin[1], r.InvDir[1], n)
		slab(&near, &far, boxes.MinZ[off:], boxes.MaxZ[off:], r.Origin[2], r.InvDir[2], n)
		store(tNear[off:], &near, &far, n)
	}
}

func (e laneEngine) Packet(p *Packet, b *types.Box, tNear []float32) {
	total := p.Len()
	for off := 0; off < total; off += e.width {
		n := min(e.width, total-off)

		var near, far lanes
		copy(near[:n], p.TMin[off:off+n])
		copy(far[:n], p.TMax[off:off+n])
		slabPacket(&near, &far, b.Min[0], b.Max[0], p.OX[off:], p.IX[off:], n)
		slabPacket(&near, &far, b.Min[1], b.Max[1], p.OY[off:], p.IY[off:], n)
		slabPacket(&near, &far, b.Min[2], b.Max[2], p.OZ[off:], p.IZ[off:], n)
		store(tNear[off:], &near, &far, n)
	}
}

func (e laneEngine) Triangles(r *types.Ray, tris *TriangleSOA, cullBackFaces bool, t, u, v []float32) {
	total := tris.Len()
	ox, oy, oz := r.Origin[0], r.Origin[1], r.Origin[2]
	dx, dy, dz := r.Dir[0], r.Dir[1], r.Dir[2]

	for off := 0; off < total; off += e.width {
		n := min(e.width, total-off)
		v0x, v0y, v0z := tris.V0X[off:off+n], tris.V0Y[off:off+n], tris.V0Z[off:off+n]
		e1x, e1y, e1z := tris.E1X[off:off+n], tris.E1Y[off:off+n], tris.E1Z[off:off+n]
		e2x, e2y, e2z := tris.E2X[off:off+n], tris.E2Y[off:off+n], tris.E2Z[off:off+n]

		var (
			px, py, pz lanes
			qx, qy, qz lanes
			sx, sy, sz lanes
			det, inv   lanes
			lu, lv, lt lanes
			valid      laneMask
		)

		// p = dir x e2; det = e1 . p
		for i := 0; i < n; i++ {
			px[i] = float32(dy*e2z[i]) - float32(dz*e2y[i])
			py[i] = float32(dz*e2x[i]) - float32(dx*e2z[i])
			pz[i] = float32(dx*e2y[i]) - float32(dy*e2x[i])
		}
		for i := 0; i < n; i++ {
			det[i] = float32(e1x[i]*px[i]) + float32(e1y[i]*py[i]) + float32(e1z[i]*pz[i])
		}
		for i := 0; i < n; i++ {
			if cullBackFaces {
				valid[i] = det[i] >= intersect.DetEpsilon
			} else {
				valid[i] = types.Abs(det[i]) >= intersect.DetEpsilon
			}
			inv[i] = 1 / det[i]
		}

		// s = origin - v0; u = (s . p) / det
		for i := 0; i < n; i++ {
			sx[i], sy[i], sz[i] = ox-v0x[i], oy-v0y[i], oz-v0z[i]
		}
		for i := 0; i < n; i++ {
			lu[i] = (float32(sx[i]*px[i]) + float32(sy[i]*py[i]) + float32(sz[i]*pz[i])) * inv[i]
			valid[i] = valid[i] && lu[i] >= 0 && lu[i] <= 1
		}

		// q = s x e1; v = (dir . q) / det
		for i := 0; i < n; i++ {
			qx[i] = float32(sy[i]*e1z[i]) - float32(sz[i]*e1y[i])
			qy[i] = float32(sz[i]*e1x[i]) - float32(sx[i]*e1z[i])
			qz[i] = float32(sx[i]*e1y[i]) - float32(sy[i]*e1x[i])
		}
		for i := 0; i < n; i++ {
			lv[i] = (float32(dx*qx[i]) + float32(dy*qy[i]) + float32(dz*qz[i])) * inv[i]
			valid[i] = valid[i] && lv[i] >= 0 && lu[i]+lv[i] <= 1
		}

		// t = (e2 . q) / det
		for i := 0; i < n; i++ {
			lt[i] = (float32(e2x[i]*qx[i]) + float32(e2y[i]*qy[i]) + float32(e2z[i]*qz[i])) * inv[i]
			valid[i] = valid[i] && lt[i] >= r.TMin && lt[i] <= r.TMax
		}

		for i := 0; i < n; i++ {
			if !valid[i] {
				lt[i] = types.Inf
			}
			t[off+i], u[off+i], v[off+i] = lt[i], lu[i], lv[i]
		}
	}
}

func slab(near, far *lanes, lo, hi []float32, o, inv float32, n int) {
	for i := 0; i < n; i++ {
		near[i], far[i] = intersect.Slab(near[i], far[i], lo[i], hi[i], o, inv)
	}
}

func slabPacket(near, far *lanes, lo, hi float32, o, inv []float32, n int) {
	for i := 0; i < n; i++ {
		near[i], far[i] = intersect.Slab(near[i], far[i], lo, hi, o[i], inv[i])
	}
}

func store(dst []float32, near, far *lanes, n int) {
	for i := 0; i < n; i++ {
		if near[i] <= far[i] {
			dst[i] = near[i]
		} else {
			dst[i] = types.Inf
		}
	}
}
