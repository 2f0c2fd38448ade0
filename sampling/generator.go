// Package sampling provides seeded random generators, low-discrepancy
// sequences and helpers for generating query rays.
//
// There is no package-level random state. Every consumer owns a Generator;
// two generators created with the same seed produce identical sequences.
package sampling

import (
	"math/rand/v2"

	"github.com/achilleasa/vmath/types"
)

// Mixed into the seed to derive the second PCG state word.
const streamSalt uint64 = 0x9e3779b97f4a7c15

// A deterministic pseudo-random generator. Generators are not safe for
// concurrent use; use Split to derive independent per-worker generators.
type Generator struct {
	seed   uint64
	stream uint64
	rng    *rand.Rand
}

// Create a generator for the given seed.
func NewGenerator(seed uint64) *Generator {
	return newGenerator(seed, 0)
}

func newGenerator(seed, stream uint64) *Generator {
	return &Generator{
		seed:   seed,
		stream: stream,
		rng:    rand.New(rand.NewPCG(seed, (stream+1)*streamSalt)),
	}
}

// Get the seed this generator was created with.
func (g *Generator) Seed() uint64 {
	return g.seed
}

// Derive an independent generator. Calling Split with the same stream id on
// generators with the same seed yields identical generators regardless of
// how many values either parent has produced.
func (g *Generator) Split(stream uint64) *Generator {
	return newGenerator(g.seed, mix64(mix64(g.stream)+stream+1))
}

// The splitmix64 finalizer. It is a bijection so distinct stream ids of the
// same parent always map to distinct child streams.
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Get a uniformly distributed value in [0, 1).
func (g *Generator) Float32() float32 {
	return g.rng.Float32()
}

// Get a uniformly distributed value in [lo, hi).
func (g *Generator) Range(lo, hi float32) float32 {
	return lo + (hi-lo)*g.rng.Float32()
}

// Get a uniformly distributed value in [0, n).
func (g *Generator) IntN(n int) int {
	return g.rng.IntN(n)
}

// Get a uniformly distributed 32-bit value.
func (g *Generator) Uint32() uint32 {
	return g.rng.Uint32()
}

// Get a point in the unit square.
func (g *Generator) Vec2() types.Vec2 {
	return types.XY(g.rng.Float32(), g.rng.Float32())
}

// Get a point inside box b.
func (g *Generator) InBox(b types.Box) types.Vec3 {
	return types.XYZ(
		g.Range(b.Min[0], b.Max[0]),
		g.Range(b.Min[1], b.Max[1]),
		g.Range(b.Min[2], b.Max[2]),
	)
}

// Shuffle n elements using the provided swap function.
func (g *Generator) Shuffle(n int, swap func(i, j int)) {
	g.rng.Shuffle(n, swap)
}
