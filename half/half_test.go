package half

import (
	"math"
	"testing"

	"github.com/achilleasa/vmath/sampling"
	"github.com/achilleasa/vmath/types"
	"github.com/ajroetker/go-highway/hwy"
)

func TestRoundTripRepresentable(t *testing.T) {
	for bits := 0; bits <= 0xFFFF; bits++ {
		h := hwy.Float16FromBits(uint16(bits))
		if h.IsNaN() {
			continue
		}
		f := Decode(h)
		if got := Encode(f); got != h {
			t.Fatalf("expected %v (0x%04x) to encode to 0x%04x; got 0x%04x", f, bits, bits, got.Bits())
		}
		if !IsExact(f) {
			t.Fatalf("expected %v to be exactly representable", f)
		}
	}
}

func TestRounding(t *testing.T) {
	minSub := math.Ldexp(1, -24)
	type spec struct {
		in  float32
		exp float32
	}
	specs := []spec{
		// Ties round to even
		{1 + 1.0/2048, 1},
		{1 + 3.0/2048, 1 + 2.0/1024},
		{1 + 1.0/2048 + 1.0/8192, 1 + 1.0/1024},
		{65519, 65504},
		// Tie with the overflow value
		{65520, types.Inf},
		{1e6, types.Inf},
		{-1e6, types.NegInf},
		// Subnormal tie, rounds to even
		{float32(minSub / 2), 0},
		{math.Float32frombits(math.Float32bits(float32(minSub/2)) + 1), float32(minSub)},
		{float32(minSub * 1.5), float32(minSub * 2)},
		{float32(minSub * 2.5), float32(minSub * 2)},
		{1e-10, 0},
	}

	for index, s := range specs {
		if got := Decode(Encode(s.in)); got != s.exp {
			t.Fatalf("[spec %d] expected %v to encode as %v; got %v", index, s.in, s.exp, got)
		}
	}

	negZero := Encode(float32(math.Copysign(0, -1)))
	if negZero != hwy.Float16NegZero {
		t.Fatalf("expected negative zero to keep its sign; got 0x%04x", negZero.Bits())
	}
	if !Encode(float32(math.NaN())).IsNaN() {
		t.Fatal("expected NaN to encode as NaN")
	}
}

func TestDirectedRounding(t *testing.T) {
	g := sampling.NewGenerator(7)
	values := []float32{0, 0.1, -0.1, 1e-7, -1e-7, 65504, 70000, -70000, 3.14159}
	for i := 0; i < 1000; i++ {
		values = append(values, g.Range(-1000, 1000))
	}

	for _, f := range values {
		lo, hi := Decode(EncodeDown(f)), Decode(EncodeUp(f))
		if !(lo <= f && f <= hi) {
			t.Fatalf("expected [%v, %v] to enclose %v", lo, hi, f)
		}
		if IsExact(f) && (lo != f || hi != f) {
			t.Fatalf("expected exact value %v to round to itself; got [%v, %v]", f, lo, hi)
		}
	}

	if got := Decode(EncodeDown(70000)); got != MaxValue {
		t.Fatalf("expected EncodeDown to clamp to %v; got %v", MaxValue, got)
	}
	if got := Decode(EncodeDown(1e-9)); got != 0 {
		t.Fatalf("expected EncodeDown of a tiny positive value to give 0; got %v", got)
	}
	if got := Decode(EncodeDown(-1e-9)); got >= 0 {
		t.Fatalf("expected EncodeDown of a tiny negative value to be negative; got %v", got)
	}
}

func TestEncodeBox(t *testing.T) {
	b := types.NewBox(types.XYZ(-0.3, 0.1, 1000.7), types.XYZ(0.3, 0.2, 1001.3))
	lo, hi := EncodeBox(b)
	decoded := types.Box{Min: lo.Decode(), Max: hi.Decode()}
	if !decoded.Contains(b) {
		t.Fatalf("expected decoded box %v to contain %v", decoded, b)
	}
}

func TestSlices(t *testing.T) {
	src := []float32{0, 1, -2, 0.5, 65504}
	packed := make([]Float16, len(src))
	EncodeSlice(packed, src)
	out := make([]float32, len(src))
	DecodeSlice(out, packed)
	for i := range src {
		if out[i] != src[i] {
			t.Fatalf("[index %d] expected %v; got %v", i, src[i], out[i])
		}
	}
}
