package wide

import (
	"errors"
	"math"
	"testing"

	"github.com/achilleasa/vmath/intersect"
	"github.com/achilleasa/vmath/sampling"
	"github.com/achilleasa/vmath/types"
)

func randomVec(g *sampling.Generator, lo, hi float32) types.Vec3 {
	return types.XYZ(g.Range(lo, hi), g.Range(lo, hi), g.Range(lo, hi))
}

func testRays(g *sampling.Generator, n int) []types.Ray {
	nan := float32(math.NaN())
	rays := []types.Ray{
		// Axis aligned rays exercise the infinite reciprocal path
		types.NewRay(types.XYZ(0, 0, -20), types.XYZ(0, 0, 1)),
		types.NewRay(types.XYZ(0, -20, 0), types.XYZ(0, 1, 0)),
		types.NewRay(types.XYZ(-20, 0.5, 0.5), types.XYZ(1, 0, 0)),
		types.NewRay(types.XYZ(0, 0, 0), types.XYZ(float32(math.Copysign(0, -1)), 0, 1)),
		// Origins on box faces with a zero direction component across them
		types.NewRay(types.XYZ(0, 0.5, -20), types.XYZ(0, 0, 1)),
		types.NewRay(types.XYZ(1, 0.5, -20), types.XYZ(float32(math.Copysign(0, -1)), 0, 1)),
		types.NewRay(types.XYZ(-3, 0, -20), types.XYZ(0, 0, 1)),
		types.NewRay(types.XYZ(0, 2, -20), types.XYZ(0, 0, 1)),
		types.NewRay(types.XYZ(-20, 0.5, 0), types.XYZ(1, 0, 0)),
		// Broken rays must behave the same on every engine
		types.NewRay(types.XYZ(nan, 0, 0), types.XYZ(0, 0, 1)),
		types.NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, 0)),
		{Origin: types.XYZ(0, 0, -20), Dir: types.XYZ(0, 0, 1), TMin: 5, TMax: 1},
	}
	for len(rays) < n {
		o := randomVec(g, -20, 20)
		target := randomVec(g, -5, 5)
		rays = append(rays, types.NewRay(o, target.Sub(o)))
	}
	return rays
}

func engines(t testing.TB) []Engine {
	var out []Engine
	for _, w := range Widths() {
		e, err := New(w)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, e)
	}
	return out
}

func sameBits(a, b float32) bool {
	return math.Float32bits(a) == math.Float32bits(b)
}

func TestEngineBoxes(t *testing.T) {
	g := sampling.NewGenerator(1)

	// Use a count that is not a multiple of any width to exercise tails
	var boxes []types.Box
	for i := 0; i < 37; i++ {
		c := randomVec(g, -10, 10)
		boxes = append(boxes, types.NewBox(c, c.Add(randomVec(g, 0, 3))))
	}
	// Flat box
	boxes = append(boxes, types.NewBox(types.XYZ(0, 0, 0), types.XYZ(1, 1, 0)))
	soa := NewBoxSOA(boxes)

	exp := make([]float32, soa.Len())
	got := make([]float32, soa.Len())
	for rayIndex, ray := range testRays(g, 64) {
		pr := intersect.Prepare(ray)
		for i := range boxes {
			near, _, hit := intersect.Box(&pr, &boxes[i])
			if !hit {
				near = types.Inf
			}
			exp[i] = near
		}

		for _, e := range engines(t) {
			e.Boxes(&pr, soa, got)
			for i := range exp {
				if !sameBits(exp[i], got[i]) {
					t.Fatalf("[ray %d, box %d] expected engine %s to report %v; got %v", rayIndex, i, e.Name(), exp[i], got[i])
				}
			}
		}
	}
}

func TestEngineTriangles(t *testing.T) {
	g := sampling.NewGenerator(2)

	var tris []types.Triangle
	for i := 0; i < 45; i++ {
		v0 := randomVec(g, -10, 10)
		tris = append(tris, types.NewTriangle(v0, v0.Add(randomVec(g, -4, 4)), v0.Add(randomVec(g, -4, 4))))
	}
	tris = append(tris,
		types.NewTriangle(types.XYZ(0, 0, 0), types.XYZ(1, 0, 0), types.XYZ(0, 1, 0)),
		types.NewTriangle(types.XYZ(0, 0, 0), types.XYZ(1, 1, 1), types.XYZ(2, 2, 2)),
	)
	soa := NewTriangleSOA(tris)

	n := soa.Len()
	expT, expU, expV := make([]float32, n), make([]float32, n), make([]float32, n)
	gotT, gotU, gotV := make([]float32, n), make([]float32, n), make([]float32, n)

	for _, cull := range []bool{false, true} {
		for rayIndex, ray := range testRays(g, 64) {
			hits := 0
			for i := range tris {
				tHit, u, v, hit := intersect.Triangle(&ray, &tris[i], cull)
				if !hit {
					tHit = types.Inf
				} else {
					hits++
				}
				expT[i], expU[i], expV[i] = tHit, u, v
			}

			for _, e := range engines(t) {
				e.Triangles(&ray, soa, cull, gotT, gotU, gotV)
				for i := range expT {
					if !sameBits(expT[i], gotT[i]) {
						t.Fatalf("[ray %d, tri %d, cull %t] expected engine %s to report t = %v; got %v", rayIndex, i, cull, e.Name(), expT[i], gotT[i])
					}
					if expT[i] == types.Inf {
						continue
					}
					if !sameBits(expU[i], gotU[i]) || !sameBits(expV[i], gotV[i]) {
						t.Fatalf("[ray %d, tri %d] expected engine %s to report (u, v) = (%v, %v); got (%v, %v)", rayIndex, i, e.Name(), expU[i], expV[i], gotU[i], gotV[i])
					}
				}
			}
		}
	}
}

func TestEnginePacket(t *testing.T) {
	g := sampling.NewGenerator(3)
	rays := testRays(g, 53)
	packet := NewPacket(rays)

	box := types.NewBox(types.XYZ(-3, -2, -1), types.XYZ(1, 2, 3))
	exp := make([]float32, packet.Len())
	got := make([]float32, packet.Len())
	for i, ray := range rays {
		pr := intersect.Prepare(ray)
		near, _, hit := intersect.Box(&pr, &box)
		if !hit {
			near = types.Inf
		}
		exp[i] = near
	}

	// Rays 6 and 7 start on the x and y faces of box
	if exp[6] != 19 || exp[7] != 19 {
		t.Fatalf("expected rays on the faces of the box to enter it at t = 19; got %v and %v", exp[6], exp[7])
	}

	for _, e := range engines(t) {
		e.Packet(packet, &box, got)
		for i := range exp {
			if !sameBits(exp[i], got[i]) {
				t.Fatalf("[ray %d] expected engine %s to report %v; got %v", i, e.Name(), exp[i], got[i])
			}
		}
	}
}

func TestParseWidth(t *testing.T) {
	type spec struct {
		in  string
		exp Width
	}
	specs := []spec{
		{"1", W1},
		{"4", W4},
		{"8", W8},
		{"16", W16},
		{"native", Native},
	}
	for index, s := range specs {
		w, err := ParseWidth(s.in)
		if err != nil || w != s.exp {
			t.Fatalf("[spec %d] expected width %v; got %v (err: %v)", index, s.exp, w, err)
		}
	}

	if _, err := ParseWidth("3"); !errors.Is(err, ErrUnsupportedWidth) {
		t.Fatalf("expected ErrUnsupportedWidth; got %v", err)
	}
	if _, err := New(Width(32)); !errors.Is(err, ErrUnsupportedWidth) {
		t.Fatalf("expected ErrUnsupportedWidth; got %v", err)
	}
}

func BenchmarkTriangles(b *testing.B) {
	g := sampling.NewGenerator(4)
	var tris []types.Triangle
	for i := 0; i < 256; i++ {
		v0 := randomVec(g, -10, 10)
		tris = append(tris, types.NewTriangle(v0, v0.Add(randomVec(g, -1, 1)), v0.Add(randomVec(g, -1, 1))))
	}
	soa := NewTriangleSOA(tris)
	ray := types.NewRay(types.XYZ(0, 0, -20), types.XYZ(0.01, 0.02, 1))
	tOut, uOut, vOut := make([]float32, len(tris)), make([]float32, len(tris)), make([]float32, len(tris))

	for _, e := range engines(b) {
		b.Run(e.Name(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				e.Triangles(&ray, soa, false, tOut, uOut, vOut)
			}
		})
	}
}
