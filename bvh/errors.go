package bvh

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput         = errors.New("bvh: no primitives to build from")
	ErrMalformedPrimitive = errors.New("bvh: malformed primitive")
	ErrInvalidOptions     = errors.New("bvh: invalid options")
	ErrInvalidMesh        = errors.New("bvh: invalid mesh")
	ErrInvalidTree        = errors.New("bvh: tree invariant violated")
)

// The maximum number of offending primitive ids kept by MalformedError.
const maxReportedPrimitives = 16

// MalformedError is returned by the builder when the input contains boxes or
// centroids with NaN/Inf components (or inverted boxes) and the invalid
// primitive policy is set to reject.
type MalformedError struct {
	// Total number of malformed primitives.
	Count int

	// The ids of the first few malformed primitives.
	Primitives []uint32
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: %d primitive(s) have non-finite or inverted bounds (first: %v)", ErrMalformedPrimitive.Error(), e.Count, e.Primitives)
}

func (e *MalformedError) Unwrap() error {
	return ErrMalformedPrimitive
}

func (e *MalformedError) add(id uint32) {
	e.Count++
	if len(e.Primitives) < maxReportedPrimitives {
		e.Primitives = append(e.Primitives, id)
	}
}
