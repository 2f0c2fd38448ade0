package intersect

import (
	"math"
	"testing"

	"github.com/achilleasa/vmath/types"
)

func TestBoxSlab(t *testing.T) {
	box := types.NewBox(types.XYZ(-1, -1, -1), types.XYZ(1, 1, 1))

	type spec struct {
		ray     types.Ray
		expHit  bool
		expNear float32
		expFar  float32
	}
	specs := []spec{
		{types.NewRay(types.XYZ(0, 0, 5), types.XYZ(0, 0, -1)), true, 4, 6},
		// Direction not normalized; t is measured in direction units
		{types.NewRay(types.XYZ(0, 0, 5), types.XYZ(0, 0, -2)), true, 2, 3},
		// Origin inside the box
		{types.NewRay(types.XYZ(0, 0, 0), types.XYZ(1, 0, 0)), true, 0, 1},
		// Parallel to a slab, outside of it
		{types.NewRay(types.XYZ(0, 2, 5), types.XYZ(0, 0, -1)), false, 0, 0},
		// Pointing away
		{types.NewRay(types.XYZ(0, 0, 5), types.XYZ(0, 0, 1)), false, 0, 0},
		// Interval ends before the box
		{types.Ray{Origin: types.XYZ(0, 0, 5), Dir: types.XYZ(0, 0, -1), TMin: 0, TMax: 3}, false, 0, 0},
		// Negative zero direction components behave like positive zeros
		{types.NewRay(types.XYZ(0.5, 0.5, 5), types.XYZ(float32(math.Copysign(0, -1)), 0, -1)), true, 4, 6},
		// Origin on a face plane with a zero direction component along its axis
		{types.NewRay(types.XYZ(-1, 0.25, 5), types.XYZ(0, 0, -1)), true, 4, 6},
		{types.NewRay(types.XYZ(1, 0.25, 5), types.XYZ(0, 0, -1)), true, 4, 6},
		{types.NewRay(types.XYZ(-1, 0.25, 5), types.XYZ(float32(math.Copysign(0, -1)), 0, -1)), true, 4, 6},
		{types.NewRay(types.XYZ(-1, 1, 5), types.XYZ(0, 0, -1)), true, 4, 6},
		// Running along an edge but outside the other slab
		{types.NewRay(types.XYZ(-1, 2, 5), types.XYZ(0, 0, -1)), false, 0, 0},
	}

	for index, s := range specs {
		pr := Prepare(s.ray)
		tNear, tFar, hit := Box(&pr, &box)
		if hit != s.expHit {
			t.Fatalf("[spec %d] expected hit to be %t; got %t", index, s.expHit, hit)
		}
		if !hit {
			continue
		}
		if tNear != s.expNear || tFar != s.expFar {
			t.Fatalf("[spec %d] expected interval [%f, %f]; got [%f, %f]", index, s.expNear, s.expFar, tNear, tFar)
		}
	}
}

func TestFlatBoxSlab(t *testing.T) {
	// Zero thickness along z; the ray travels inside the z = 0 plane
	box := types.NewBox(types.XYZ(0, 0, 0), types.XYZ(1, 1, 0))
	pr := Prepare(types.NewRay(types.XYZ(-2, 0.5, 0), types.XYZ(1, 0, 0)))

	tNear, tFar, hit := Box(&pr, &box)
	if !hit {
		t.Fatal("expected ray inside the plane of a flat box to hit it")
	}
	if tNear != 2 || tFar != 3 {
		t.Fatalf("expected interval [2, 3]; got [%f, %f]", tNear, tFar)
	}

	pr = Prepare(types.NewRay(types.XYZ(-2, 0.5, 0.5), types.XYZ(1, 0, 0)))
	if _, _, hit = Box(&pr, &box); hit {
		t.Fatal("expected ray above a flat box to miss it")
	}
}

func TestTriangle(t *testing.T) {
	tri := types.NewTriangle(types.XYZ(0, 0, 0), types.XYZ(1, 0, 0), types.XYZ(0, 1, 0))
	ray := types.NewRay(types.XYZ(0.25, 0.25, 1), types.XYZ(0, 0, -1))

	tHit, u, v, hit := Triangle(&ray, &tri, false)
	if !hit {
		t.Fatal("expected ray to hit triangle")
	}
	if tHit != 1 {
		t.Fatalf("expected t = 1; got %f", tHit)
	}
	if w := 1 - u - v; w != 0.5 || u != 0.25 || v != 0.25 {
		t.Fatalf("expected barycentrics (0.5, 0.25, 0.25); got (%f, %f, %f)", w, u, v)
	}

	// Front facing so culling keeps the hit
	if _, _, _, hit = Triangle(&ray, &tri, true); !hit {
		t.Fatal("expected front facing hit with back-face culling")
	}

	back := types.NewRay(types.XYZ(0.25, 0.25, -1), types.XYZ(0, 0, 1))
	if _, _, _, hit = Triangle(&back, &tri, false); !hit {
		t.Fatal("expected two-sided test to hit back face")
	}
	if _, _, _, hit = Triangle(&back, &tri, true); hit {
		t.Fatal("expected back-face culling to reject hit")
	}
}

func TestTriangleMisses(t *testing.T) {
	tri := types.NewTriangle(types.XYZ(0, 0, 0), types.XYZ(1, 0, 0), types.XYZ(0, 1, 0))
	nan := float32(math.NaN())

	specs := []types.Ray{
		// Outside the edges
		types.NewRay(types.XYZ(0.75, 0.75, 1), types.XYZ(0, 0, -1)),
		types.NewRay(types.XYZ(-0.1, 0.5, 1), types.XYZ(0, 0, -1)),
		// Parallel to the triangle plane
		types.NewRay(types.XYZ(0.25, 0.25, 0), types.XYZ(1, 0, 0)),
		// Behind the origin
		types.NewRay(types.XYZ(0.25, 0.25, -1), types.XYZ(0, 0, -1)),
		// Interval too short
		{Origin: types.XYZ(0.25, 0.25, 1), Dir: types.XYZ(0, 0, -1), TMin: 0, TMax: 0.5},
		// NaN direction
		types.NewRay(types.XYZ(0.25, 0.25, 1), types.XYZ(nan, 0, -1)),
	}

	for index, r := range specs {
		if _, _, _, hit := Triangle(&r, &tri, false); hit {
			t.Fatalf("[spec %d] expected %v to miss", index, r)
		}
	}

	degenerate := types.NewTriangle(types.XYZ(0, 0, 0), types.XYZ(1, 1, 0), types.XYZ(2, 2, 0))
	r := types.NewRay(types.XYZ(1, 1, 1), types.XYZ(0, 0, -1))
	if _, _, _, hit := Triangle(&r, &degenerate, false); hit {
		t.Fatal("expected degenerate triangle to never be hit")
	}
}

func TestSphere(t *testing.T) {
	s, _ := types.NewSphere(types.XYZ(0, 0, 0), 1)

	type spec struct {
		ray    types.Ray
		expHit bool
		expT   float32
	}
	specs := []spec{
		{types.NewRay(types.XYZ(0, 0, 5), types.XYZ(0, 0, -1)), true, 4},
		{types.NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1)), true, 1},
		{types.NewRay(types.XYZ(0, 2, 5), types.XYZ(0, 0, -1)), false, 0},
		{types.NewRay(types.XYZ(0, 0, 5), types.XYZ(0, 0, 1)), false, 0},
	}

	for index, sp := range specs {
		tHit, hit := Sphere(&sp.ray, &s)
		if hit != sp.expHit {
			t.Fatalf("[spec %d] expected hit to be %t; got %t", index, sp.expHit, hit)
		}
		if hit && tHit != sp.expT {
			t.Fatalf("[spec %d] expected t = %f; got %f", index, sp.expT, tHit)
		}
	}

	h, ok := SphereHit(&specs[0].ray, &s, 3)
	if !ok || h.Prim != 3 || h.Normal != types.XYZ(0, 0, 1) {
		t.Fatalf("expected hit on primitive 3 with +Z normal; got %+v", h)
	}
}

func TestPlane(t *testing.T) {
	p, _ := types.NewPlane(types.XYZ(0, 1, 0), 2)

	r := types.NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 1, 0))
	if tHit, hit := Plane(&r, &p); !hit || tHit != 2 {
		t.Fatalf("expected hit at t = 2; got %f (hit: %t)", tHit, hit)
	}

	r = types.NewRay(types.XYZ(0, 0, 0), types.XYZ(1, 0, 0))
	if _, hit := Plane(&r, &p); hit {
		t.Fatal("expected parallel ray to miss")
	}

	r = types.NewRay(types.XYZ(0, 0, 0), types.XYZ(0, -1, 0))
	if _, hit := Plane(&r, &p); hit {
		t.Fatal("expected ray pointing away to miss")
	}
}

func BenchmarkBox(b *testing.B) {
	box := types.NewBox(types.XYZ(-1, -1, -1), types.XYZ(1, 1, 1))
	pr := Prepare(types.NewRay(types.XYZ(0.1, 0.2, 5), types.XYZ(0.01, 0.02, -1)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Box(&pr, &box)
	}
}

func BenchmarkTriangle(b *testing.B) {
	tri := types.NewTriangle(types.XYZ(0, 0, 0), types.XYZ(1, 0, 0), types.XYZ(0, 1, 0))
	r := types.NewRay(types.XYZ(0.25, 0.25, 1), types.XYZ(0, 0, -1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Triangle(&r, &tri, false)
	}
}
