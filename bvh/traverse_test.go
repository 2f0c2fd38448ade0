package bvh

import (
	"math"
	"testing"

	"github.com/achilleasa/vmath/sampling"
	"github.com/achilleasa/vmath/types"
)

func TestBoxSetMatchesBruteForce(t *testing.T) {
	g := sampling.NewGenerator(1000)
	boxes := randomBoxes(g, 1000)

	for _, layout := range []Layout{LayoutFull, LayoutCompact} {
		opts := DefaultOptions()
		opts.Layout = layout
		set, err := NewBoxSet(boxes, opts)
		if err != nil {
			t.Fatal(err)
		}
		if err = set.Tree.Validate(boxes); err != nil {
			t.Fatal(err)
		}

		rays := sampling.RandomRays(g.Split(1), set.Tree.Bounds, 1000)
		var stats TraversalStats
		hits := 0
		for i, r := range rays {
			exp := BruteForce(r, len(boxes), set)
			got := set.Intersect(r, &stats)
			if got != exp {
				t.Fatalf("[%s ray %d] expected hit %+v; got %+v", layout, i, exp, got)
			}
			if occluded := set.Occluded(r, nil); occluded != exp.Valid() {
				t.Fatalf("[%s ray %d] expected occluded to be %t", layout, i, exp.Valid())
			}
			if exp.Valid() {
				hits++
			}
		}

		if hits == 0 {
			t.Fatalf("[%s] expected some rays to hit", layout)
		}
		if stats.Queries != len(rays) || stats.Hits != hits {
			t.Fatalf("[%s] expected %d queries and %d hits; got %+v", layout, len(rays), hits, stats)
		}
		if stats.PrimitiveTests >= len(rays)*len(boxes)/10 {
			t.Fatalf("[%s] expected traversal to prune most primitive tests; got %d", layout, stats.PrimitiveTests)
		}
	}
}

func TestSphereSetMatchesBruteForce(t *testing.T) {
	g := sampling.NewGenerator(77)
	spheres := make([]types.Sphere, 500)
	for i := range spheres {
		s, err := types.NewSphere(g.InBox(types.NewBox(types.Splat3(-20), types.Splat3(20))), g.Range(0.1, 1.5))
		if err != nil {
			t.Fatal(err)
		}
		spheres[i] = s
	}

	opts := DefaultOptions()
	opts.Strategy = Sweep
	set, err := NewSphereSet(spheres, opts)
	if err != nil {
		t.Fatal(err)
	}

	for i, r := range sampling.RandomRays(g, set.Tree.Bounds, 500) {
		exp := BruteForce(r, len(spheres), set)
		if got := set.Intersect(r, nil); got != exp {
			t.Fatalf("[ray %d] expected hit %+v; got %+v", i, exp, got)
		}
	}
}

func TestTraversalInvalidRays(t *testing.T) {
	set, err := NewBoxSet(cornerBoxes(), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	nan := float32(math.NaN())
	type spec struct {
		ray types.Ray
		exp bool
	}
	specs := []spec{
		{types.NewRay(types.XYZ(-1.5, 0.5, -5), types.XYZ(0, 0, 1)), true},
		{types.NewRay(types.XYZ(nan, 0.5, -5), types.XYZ(0, 0, 1)), false},
		{types.NewRay(types.XYZ(-1.5, 0.5, -5), types.XYZ(0, nan, 1)), false},
		{types.NewRay(types.XYZ(-1.5, 0.5, -5), types.XYZ(0, 0, 0)), false},
		{types.Ray{Origin: types.XYZ(-1.5, 0.5, -5), Dir: types.XYZ(0, 0, 1), TMin: 2, TMax: 1}, false},
		{types.Ray{Origin: types.XYZ(-1.5, 0.5, -5), Dir: types.XYZ(0, 0, 1), TMin: 0, TMax: 2}, false},
	}

	for index, s := range specs {
		h := set.Intersect(s.ray, nil)
		if h.Valid() != s.exp {
			t.Fatalf("[spec %d] expected hit to be %t; got %+v", index, s.exp, h)
		}
		if !s.exp && (h.T != types.Inf || h.Prim != types.InvalidPrimitive) {
			t.Fatalf("[spec %d] expected no hit sentinel; got %+v", index, h)
		}
	}

	// The first hit along +Z from x=-1.5 is the box at z in [-2, -1]
	h := set.Intersect(specs[0].ray, nil)
	if h.Prim != 0 || h.T != 3 || h.Normal != types.XYZ(0, 0, -1) {
		t.Fatalf("expected hit on box 0 at t=3 with normal -Z; got %+v", h)
	}
}

func TestTraversalTieBreak(t *testing.T) {
	// Two identical boxes: the lower id always wins
	box := types.NewBox(types.XYZ(-1, -1, -1), types.XYZ(1, 1, 1))
	boxes := []types.Box{
		types.NewBox(types.XYZ(5, 5, 5), types.XYZ(6, 6, 6)),
		box,
		box,
	}

	opts := DefaultOptions()
	opts.MaxLeafSize = 1
	set, err := NewBoxSet(boxes, opts)
	if err != nil {
		t.Fatal(err)
	}

	r := types.NewRay(types.XYZ(0, 0, 5), types.XYZ(0, 0, -1))
	if h := set.Intersect(r, nil); h.Prim != 1 || h.T != 4 {
		t.Fatalf("expected hit on box 1 at t=4; got %+v", h)
	}
}

func TestTraversalDeepTree(t *testing.T) {
	// Boxes of exponentially growing size produce a very unbalanced tree
	// that can outgrow the fixed traversal stack.
	boxes := make([]types.Box, 100)
	for i := range boxes {
		size := float32(math.Pow(1.5, float64(i)))
		boxes[i] = types.NewBox(types.XYZ(size, 0, 0), types.XYZ(size*1.2, 1, 1))
	}

	opts := DefaultOptions()
	opts.MaxLeafSize = 1
	opts.Strategy = Sweep
	set, err := NewBoxSet(boxes, opts)
	if err != nil {
		t.Fatal(err)
	}
	if err = set.Tree.Validate(boxes); err != nil {
		t.Fatal(err)
	}

	g := sampling.NewGenerator(5)
	for i := 0; i < 200; i++ {
		target := boxes[g.IntN(len(boxes))].Center()
		r := types.RayBetween(types.XYZ(target[0], 0.5, -10), target)
		exp := BruteForce(r, len(boxes), set)
		if got := set.Intersect(r, nil); got != exp {
			t.Fatalf("[ray %d] expected hit %+v; got %+v (depth %d)", i, exp, got, set.Tree.Depth)
		}
	}
}

func BenchmarkBoxSetIntersect(b *testing.B) {
	g := sampling.NewGenerator(1)
	set, err := NewBoxSet(randomBoxes(g, 100000), DefaultOptions())
	if err != nil {
		b.Fatal(err)
	}
	rays := sampling.RandomRays(g, set.Tree.Bounds, 4096)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		set.Intersect(rays[i%len(rays)], nil)
	}
}
