package bvh

import (
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/achilleasa/vmath/log"
	"github.com/achilleasa/vmath/sampling"
	"github.com/achilleasa/vmath/types"
)

func init() {
	log.SetSink(io.Discard)
}

func cornerBoxes() []types.Box {
	return []types.Box{
		types.NewBox(types.XYZ(-2, 0, -2), types.XYZ(-1, 1, -1)),
		types.NewBox(types.XYZ(1, 0, -2), types.XYZ(2, 1, -1)),
		types.NewBox(types.XYZ(-2, 0, 1), types.XYZ(-1, 1, 2)),
		types.NewBox(types.XYZ(1, 0, 1), types.XYZ(2, 1, 2)),
	}
}

func TestBuildLeafSize(t *testing.T) {
	type spec struct {
		maxLeafSize int
		strategy    Strategy
		expNodes    int
		expLeaves   int
	}

	specs := []spec{
		{1, Binned, 7, 4},
		{2, Binned, 3, 2},
		{4, Binned, 1, 1},
		{1, Sweep, 7, 4},
		{2, Sweep, 3, 2},
	}

	boxes := cornerBoxes()
	for index, s := range specs {
		opts := DefaultOptions()
		opts.MaxLeafSize = s.maxLeafSize
		opts.Strategy = s.strategy

		tree, err := Build(boxes, opts)
		if err != nil {
			t.Fatalf("[spec %d] %v", index, err)
		}
		if tree.Len() != s.expNodes {
			t.Fatalf("[spec %d] expected bvh tree to have %d nodes; got %d", index, s.expNodes, tree.Len())
		}
		if tree.Stats.Leaves != s.expLeaves {
			t.Fatalf("[spec %d] expected %d leaves; got %d", index, s.expLeaves, tree.Stats.Leaves)
		}
		if err = tree.Validate(boxes); err != nil {
			t.Fatalf("[spec %d] %v", index, err)
		}
		if exp := types.NewBox(types.XYZ(-2, 0, -2), types.XYZ(2, 1, 2)); tree.Bounds != exp {
			t.Fatalf("[spec %d] expected root box %v; got %v", index, exp, tree.Bounds)
		}
	}
}

func TestBuildSinglePrimitive(t *testing.T) {
	box := types.NewBox(types.XYZ(1, 2, 3), types.XYZ(4, 5, 6))
	tree, err := Build([]types.Box{box}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	if tree.Len() != 1 || !tree.Nodes[0].IsLeaf() {
		t.Fatalf("expected a single leaf; got %d nodes", tree.Len())
	}
	if tree.Nodes[0].Bounds() != box {
		t.Fatalf("expected root box %v; got %v", box, tree.Nodes[0].Bounds())
	}
	if first, count := tree.Nodes[0].GetPrimitives(); first != 0 || count != 1 {
		t.Fatalf("expected leaf range [0, 1); got first %d count %d", first, count)
	}
}

func TestBuildEmpty(t *testing.T) {
	tree, err := Build(nil, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !tree.Empty() || !tree.Bounds.IsEmpty() {
		t.Fatalf("expected empty tree; got %d nodes", tree.Len())
	}
	if err = tree.Validate(nil); err != nil {
		t.Fatal(err)
	}
	if h := tree.Nearest(types.NewRay(types.XYZ(0, 0, 0), types.XYZ(1, 0, 0)), &BoxSet{}, nil); h.Valid() {
		t.Fatalf("expected no hit from empty tree; got %v", h)
	}

	opts := DefaultOptions()
	opts.RequireNonEmpty = true
	if _, err = Build(nil, opts); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput; got %v", err)
	}
}

func TestBuildMalformed(t *testing.T) {
	nan := float32(math.NaN())
	boxes := []types.Box{
		types.NewBox(types.XYZ(0, 0, 0), types.XYZ(1, 1, 1)),
		{Min: types.XYZ(nan, 0, 0), Max: types.XYZ(1, 1, 1)},
		types.NewBox(types.XYZ(2, 0, 0), types.XYZ(3, 1, 1)),
		{Min: types.XYZ(0, 0, 0), Max: types.XYZ(types.Inf, 1, 1)},
		{Min: types.XYZ(5, 0, 0), Max: types.XYZ(4, 1, 1)},
	}

	_, err := Build(boxes, DefaultOptions())
	var malformed *MalformedError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected a *MalformedError; got %v", err)
	}
	if !errors.Is(err, ErrMalformedPrimitive) {
		t.Fatalf("expected error to wrap ErrMalformedPrimitive")
	}
	if malformed.Count != 3 {
		t.Fatalf("expected 3 malformed primitives; got %d", malformed.Count)
	}
	for i, exp := range []uint32{1, 3, 4} {
		if malformed.Primitives[i] != exp {
			t.Fatalf("expected malformed primitive %d at position %d; got %d", exp, i, malformed.Primitives[i])
		}
	}

	opts := DefaultOptions()
	opts.InvalidPrimitives = Filter
	opts.MaxLeafSize = 1
	tree, err := Build(boxes, opts)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Stats.Filtered != 3 || len(tree.Indices) != 2 {
		t.Fatalf("expected 3 filtered primitives and 2 indices; got %d and %d", tree.Stats.Filtered, len(tree.Indices))
	}
	if !tree.Bounds.Min.IsFinite() || !tree.Bounds.Max.IsFinite() {
		t.Fatalf("expected finite root box; got %v", tree.Bounds)
	}
	if err = tree.Validate(boxes); err != nil {
		t.Fatal(err)
	}
}

func TestBuildCoincidentCentroids(t *testing.T) {
	boxes := make([]types.Box, 37)
	for i := range boxes {
		boxes[i] = types.NewBox(types.XYZ(-1, -1, -1), types.XYZ(1, 1, 1))
	}

	for _, strategy := range []Strategy{Binned, Sweep} {
		opts := DefaultOptions()
		opts.Strategy = strategy
		tree, err := Build(boxes, opts)
		if err != nil {
			t.Fatal(err)
		}
		if err = tree.Validate(boxes); err != nil {
			t.Fatalf("[%s] %v", strategy, err)
		}
		if tree.Stats.MaxLeafPrims > opts.MaxLeafSize {
			t.Fatalf("[%s] expected leaves with at most %d primitives; got %d", strategy, opts.MaxLeafSize, tree.Stats.MaxLeafPrims)
		}
		if strategy == Binned && tree.Stats.MedianSplits == 0 {
			t.Fatalf("expected binned build to fall back to median splits")
		}
	}
}

func TestBuildDeterminism(t *testing.T) {
	boxes := randomBoxes(sampling.NewGenerator(3), 5000)

	for _, strategy := range []Strategy{Binned, Sweep} {
		opts := DefaultOptions()
		opts.Strategy = strategy
		opts.ParallelThreshold = 256

		t1, err := Build(boxes, opts)
		if err != nil {
			t.Fatal(err)
		}
		opts.ParallelThreshold = len(boxes) + 1
		t2, err := Build(boxes, opts)
		if err != nil {
			t.Fatal(err)
		}

		if t1.Len() != t2.Len() {
			t.Fatalf("[%s] expected identical node counts; got %d and %d", strategy, t1.Len(), t2.Len())
		}
		for i := range t1.Nodes {
			if t1.Nodes[i] != t2.Nodes[i] {
				t.Fatalf("[%s] node %d differs between builds: %v vs %v", strategy, i, t1.Nodes[i], t2.Nodes[i])
			}
		}
		for i := range t1.Indices {
			if t1.Indices[i] != t2.Indices[i] {
				t.Fatalf("[%s] index slot %d differs between builds", strategy, i)
			}
		}
		if err = t1.Validate(boxes); err != nil {
			t.Fatalf("[%s] %v", strategy, err)
		}
	}
}

func TestBuildCentroidMismatch(t *testing.T) {
	if _, err := BuildWithCentroids(cornerBoxes(), nil, DefaultOptions()); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("expected ErrInvalidOptions; got %v", err)
	}
}

func TestValidateDetectsCorruption(t *testing.T) {
	boxes := cornerBoxes()
	opts := DefaultOptions()
	opts.MaxLeafSize = 1
	tree, err := Build(boxes, opts)
	if err != nil {
		t.Fatal(err)
	}

	tree.Nodes[0].Max[1] += 1
	if err = tree.Validate(boxes); !errors.Is(err, ErrInvalidTree) {
		t.Fatalf("expected ErrInvalidTree for loose root box; got %v", err)
	}
	tree.Nodes[0].Max[1] -= 1

	tree.Indices[0] = tree.Indices[1]
	if err = tree.Validate(boxes); !errors.Is(err, ErrInvalidTree) {
		t.Fatalf("expected ErrInvalidTree for duplicate index; got %v", err)
	}
}

func TestOptions(t *testing.T) {
	type spec struct {
		mutate func(*Options)
		valid  bool
	}

	specs := []spec{
		{func(o *Options) {}, true},
		{func(o *Options) { o.MaxLeafSize = 0 }, false},
		{func(o *Options) { o.TraversalCost = -1 }, false},
		{func(o *Options) { o.IntersectionCost = 0 }, false},
		{func(o *Options) { o.Buckets = 1 }, false},
		{func(o *Options) { o.Buckets = 1; o.Strategy = Sweep }, true},
		{func(o *Options) { o.Strategy = "median" }, false},
		{func(o *Options) { o.InvalidPrimitives = "ignore" }, false},
		{func(o *Options) { o.Layout = "tiny" }, false},
	}

	for index, s := range specs {
		opts := DefaultOptions()
		s.mutate(&opts)
		err := opts.Validate()
		if s.valid && err != nil {
			t.Fatalf("[spec %d] expected options to be valid; got %v", index, err)
		} else if !s.valid && !errors.Is(err, ErrInvalidOptions) {
			t.Fatalf("[spec %d] expected ErrInvalidOptions; got %v", index, err)
		}
	}
}

func TestLoadOptions(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "bvh.toml")
	err := os.WriteFile(path, []byte(`
max-leaf-size = 8
traversal-cost = 0.5
strategy = "sweep"
invalid-primitives = "filter"
node-layout = "compact"
lane-width = "8"
`), 0644)
	if err != nil {
		t.Fatal(err)
	}

	opts, err := LoadOptions(path)
	if err != nil {
		t.Fatal(err)
	}
	if opts.MaxLeafSize != 8 || opts.TraversalCost != 0.5 || opts.Strategy != Sweep ||
		opts.InvalidPrimitives != Filter || opts.Layout != LayoutCompact || opts.LaneWidth != "8" {
		t.Fatalf("unexpected options %+v", opts)
	}
	if opts.Buckets != DefaultOptions().Buckets {
		t.Fatalf("expected missing keys to keep their defaults; got buckets %d", opts.Buckets)
	}

	path = filepath.Join(dir, "bad.toml")
	if err = os.WriteFile(path, []byte("max-leaf-size = 4\nleaf-size = 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err = LoadOptions(path); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("expected ErrInvalidOptions for unknown key; got %v", err)
	}
}

func TestStatsTables(t *testing.T) {
	tree, err := Build(cornerBoxes(), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if tree.Stats.Table() == "" || tree.MemoryTable() == "" {
		t.Fatal("expected non-empty tables")
	}

	var total TraversalStats
	total.Add(TraversalStats{Queries: 1, Nodes: 3, BoxTests: 5})
	total.Add(TraversalStats{Queries: 1, Nodes: 1, BoxTests: 1})
	if total.Queries != 2 || total.Nodes != 4 || total.BoxTests != 6 {
		t.Fatalf("unexpected merged stats %+v", total)
	}
	if total.Table() == "" {
		t.Fatal("expected non-empty traversal table")
	}
}

// Generate n non-overlapping unit boxes on a jittered grid.
func randomBoxes(g *sampling.Generator, n int) []types.Box {
	side := int(math.Ceil(math.Cbrt(float64(n))))
	cells := make([]int, side*side*side)
	for i := range cells {
		cells[i] = i
	}
	g.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })

	boxes := make([]types.Box, n)
	for i := range boxes {
		c := cells[i]
		cell := types.XYZ(float32(c%side), float32((c/side)%side), float32(c/(side*side))).Mul(2)
		lo := cell.Add(types.XYZ(g.Range(0, 0.9), g.Range(0, 0.9), g.Range(0, 0.9)))
		boxes[i] = types.NewBox(lo, lo.Add(types.Splat3(1)))
	}
	return boxes
}

func BenchmarkBuildBinned(b *testing.B) {
	benchmarkBuild(b, Binned)
}

func BenchmarkBuildSweep(b *testing.B) {
	benchmarkBuild(b, Sweep)
}

func benchmarkBuild(b *testing.B, strategy Strategy) {
	boxes := randomBoxes(sampling.NewGenerator(1), 50000)
	opts := DefaultOptions()
	opts.Strategy = strategy

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Build(boxes, opts); err != nil {
			b.Fatal(err)
		}
	}
}
