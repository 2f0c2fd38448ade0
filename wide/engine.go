// Package wide provides batched intersection kernels over SOA data. Every
// engine produces bit-identical results to the scalar kernels in package
// intersect; engines only differ in how many lanes they process at once.
package wide

import (
	"errors"
	"fmt"

	"github.com/achilleasa/vmath/intersect"
	"github.com/achilleasa/vmath/types"
	"github.com/ajroetker/go-highway/hwy"
)

var ErrUnsupportedWidth = errors.New("wide: unsupported lane width")

// The number of lanes an engine processes per step.
type Width int

// Supported widths. Native selects the best width for the running CPU.
const (
	Native Width = 0
	W1     Width = 1
	W4     Width = 4
	W8     Width = 8
	W16    Width = 16
)

// An Engine runs the intersection kernels over many elements at a time.
//
// Missed lanes report +Inf in the distance output. Output slices must be at
// least as long as the input.
type Engine interface {
	// Name of the engine, e.g. "lanes-8" or "hwy-avx2".
	Name() string

	// Lanes processed per step.
	Width() int

	// Intersect one ray with each box, writing the clipped entry distance.
	Boxes(r *intersect.PreparedRay, boxes *BoxSOA, tNear []float32)

	// Intersect one ray with each triangle, writing the hit distance and the
	// barycentric weights of the second and third vertex. The weights of
	// missed lanes are unspecified.
	Triangles(r *types.Ray, tris *TriangleSOA, cullBackFaces bool, t, u, v []float32)

	// Intersect each ray in the packet with one box, writing the clipped
	// entry distance per ray.
	Packet(p *Packet, b *types.Box, tNear []float32)
}

// Create an engine for the requested width.
func New(w Width) (Engine, error) {
	switch w {
	case Native:
		return newNativeEngine(), nil
	case W1:
		return scalarEngine{}, nil
	case W4, W8, W16:
		return laneEngine{width: int(w)}, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnsupportedWidth, w)
}

// Return the engine that is expected to perform best on this CPU.
func Default() Engine {
	return newNativeEngine()
}

// Return the list of widths accepted by New.
func Widths() []Width {
	return []Width{W1, W4, W8, W16, Native}
}

// Parse a width as accepted by command line flags: 1, 4, 8, 16 or native.
func ParseWidth(s string) (Width, error) {
	switch s {
	case "native", "":
		return Native, nil
	case "1":
		return W1, nil
	case "4":
		return W4, nil
	case "8":
		return W8, nil
	case "16":
		return W16, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedWidth, s)
}

func (w Width) String() string {
	if w == Native {
		return fmt.Sprintf("native(%d)", hwy.MaxLanes[float32]())
	}
	return fmt.Sprintf("%d", int(w))
}

// The width-1 engine calls the scalar kernels directly.
type scalarEngine struct{}

func (scalarEngine) Name() string { return "scalar" }
func (scalarEngine) Width() int   { return 1 }

func (scalarEngine) Boxes(r *intersect.PreparedRay, boxes *BoxSOA, tNear []float32) {
	for i := 0; i < boxes.Len(); i++ {
		b := boxes.Box(i)
		near, _, hit := intersect.Box(r, &b)
		if !hit {
			near = types.Inf
		}
		tNear[i] = near
	}
}

func (scalarEngine) Triangles(r *types.Ray, tris *TriangleSOA, cullBackFaces bool, t, u, v []float32) {
	for i := 0; i < tris.Len(); i++ {
		v0, e1, e2 := tris.At(i)
		ti, ui, vi, hit := intersect.TriangleEdges(r, v0, e1, e2, cullBackFaces)
		if !hit {
			ti = types.Inf
		}
		t[i], u[i], v[i] = ti, ui, vi
	}
}

func (scalarEngine) Packet(p *Packet, b *types.Box, tNear []float32) {
	for i := 0; i < p.Len(); i++ {
		r := p.Prepared(i)
		near, _, hit := intersect.Box(&r, b)
		if !hit {
			near = types.Inf
		}
		tNear[i] = near
	}
}
