package sampling

import (
	"math"
	"math/bits"

	"github.com/achilleasa/vmath/types"
)

// Largest float32 below 1. Sequence values are clamped to it so every sample
// lies in [0, 1).
const oneMinusEpsilon = float32(0x1.fffffep-1)

var primes = [...]uint32{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53}

// Mirror the base-b digits of i around the radix point.
func RadicalInverse(base uint32, i uint64) float32 {
	if base == 2 {
		return min(float32(bits.Reverse64(i))*0x1p-64, oneMinusEpsilon)
	}

	b := uint64(base)
	invBase := 1 / float64(base)
	var reversed uint64
	invBaseN := 1.0
	for i > 0 {
		next := i / b
		digit := i - next*b
		reversed = reversed*b + digit
		invBaseN *= invBase
		i = next
	}
	return min(float32(float64(reversed)*invBaseN), oneMinusEpsilon)
}

// Base-2 radical inverse of i with its bits XOR-ed with scramble. A zero
// scramble gives the plain van der Corput sequence.
func VanDerCorput(i uint32, scramble uint32) float32 {
	r := bits.Reverse32(i) ^ scramble
	return min(float32(r)*float32(1.0/(1<<32)), oneMinusEpsilon)
}

// Get the i-th sample of the Halton sequence in the given dimension. The
// dimension selects the prime base; up to len(primes) dimensions are
// supported and higher dimensions wrap around.
func Halton(i uint64, dim int) float32 {
	return RadicalInverse(primes[dim%len(primes)], i)
}

// Get the i-th point of the 2D Halton sequence (bases 2 and 3).
func Halton2(i uint64) types.Vec2 {
	return types.XY(Halton(i, 0), Halton(i, 1))
}

// Get the i-th of n points of the Hammersley set.
func Hammersley(i, n uint32) types.Vec2 {
	return types.XY(float32(i)/float32(n), VanDerCorput(i, 0))
}

// The R2 sequence uses the plastic constant to produce well spaced points
// for any prefix length.
const (
	r2A1 = 1 / 1.32471795724474602596
	r2A2 = 1 / (1.32471795724474602596 * 1.32471795724474602596)
)

// Get the i-th point of the R2 sequence.
func R2(i uint64) types.Vec2 {
	x := 0.5 + r2A1*float64(i)
	y := 0.5 + r2A2*float64(i)
	return types.XY(
		min(float32(x-math.Floor(x)), oneMinusEpsilon),
		min(float32(y-math.Floor(y)), oneMinusEpsilon),
	)
}

// Generate nx*ny jittered samples, one per stratum of an nx by ny grid,
// in row-major stratum order.
func Stratified(g *Generator, nx, ny int) []types.Vec2 {
	out := make([]types.Vec2, 0, nx*ny)
	dx, dy := 1/float32(nx), 1/float32(ny)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			out = append(out, types.XY(
				min((float32(x)+g.Float32())*dx, oneMinusEpsilon),
				min((float32(y)+g.Float32())*dy, oneMinusEpsilon),
			))
		}
	}
	return out
}
