package types

import "errors"

var (
	ErrSingularMatrix = errors.New("types: singular matrix")
	ErrZeroNormal     = errors.New("types: plane normal has zero length")
	ErrNegativeRadius = errors.New("types: sphere radius is negative")
)
