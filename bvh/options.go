package bvh

import (
	"fmt"
	"math"
	"strings"

	"github.com/BurntSushi/toml"
)

// The split search strategy.
type Strategy string

const (
	// Bin centroids into a fixed number of buckets per axis and evaluate
	// the planes between buckets.
	Binned Strategy = "binned"

	// Sort centroids along each axis and evaluate every split position.
	Sweep Strategy = "sweep"
)

// What to do with primitives whose bounds contain NaN/Inf values.
type InvalidPolicy string

const (
	// Fail the build with a *MalformedError.
	Reject InvalidPolicy = "reject"

	// Leave the primitives out of the tree and report them in BuildStats.
	Filter InvalidPolicy = "filter"
)

// The node representation used by traversal.
type Layout string

const (
	// 32-byte nodes with float32 bounds.
	LayoutFull Layout = "full"

	// 20-byte nodes with half-float bounds rounded outwards.
	LayoutCompact Layout = "compact"
)

// Build options. The zero value is not usable; start from DefaultOptions.
type Options struct {
	// Ranges with at most this many primitives become leaves. Larger
	// ranges are always split so no leaf exceeds this size.
	MaxLeafSize int `toml:"max-leaf-size"`

	// SAH cost of visiting an internal node.
	TraversalCost float32 `toml:"traversal-cost"`

	// SAH cost of testing a single primitive.
	IntersectionCost float32 `toml:"intersection-cost"`

	// Number of bins per axis for the binned strategy.
	Buckets int `toml:"buckets"`

	Strategy Strategy `toml:"strategy"`

	InvalidPrimitives InvalidPolicy `toml:"invalid-primitives"`

	// Ranges with at least this many primitives evaluate the three split
	// axes concurrently.
	ParallelThreshold int `toml:"parallel-threshold"`

	// Fail with ErrEmptyInput instead of returning an empty tree.
	RequireNonEmpty bool `toml:"require-non-empty"`

	Layout Layout `toml:"node-layout"`

	// Mesh specific settings.
	CullBackFaces bool   `toml:"cull-back-faces"`
	LaneWidth     string `toml:"lane-width"`
}

// Get the default build options.
func DefaultOptions() Options {
	return Options{
		MaxLeafSize:       4,
		TraversalCost:     1,
		IntersectionCost:  1,
		Buckets:           16,
		Strategy:          Binned,
		InvalidPrimitives: Reject,
		ParallelThreshold: 4096,
		Layout:            LayoutFull,
		LaneWidth:         "native",
	}
}

// Check options for consistency.
func (o Options) Validate() error {
	switch {
	case o.MaxLeafSize < 1:
		return fmt.Errorf("%w: max leaf size must be at least 1; got %d", ErrInvalidOptions, o.MaxLeafSize)
	case !validCost(o.TraversalCost):
		return fmt.Errorf("%w: traversal cost must be a finite non-negative value; got %v", ErrInvalidOptions, o.TraversalCost)
	case !validCost(o.IntersectionCost) || o.IntersectionCost == 0:
		return fmt.Errorf("%w: intersection cost must be a finite positive value; got %v", ErrInvalidOptions, o.IntersectionCost)
	case o.Strategy == Binned && o.Buckets < 2:
		return fmt.Errorf("%w: binned strategy requires at least 2 buckets; got %d", ErrInvalidOptions, o.Buckets)
	case o.Strategy != Binned && o.Strategy != Sweep:
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidOptions, o.Strategy)
	case o.InvalidPrimitives != Reject && o.InvalidPrimitives != Filter:
		return fmt.Errorf("%w: unknown invalid primitive policy %q", ErrInvalidOptions, o.InvalidPrimitives)
	case o.Layout != LayoutFull && o.Layout != LayoutCompact:
		return fmt.Errorf("%w: unknown node layout %q", ErrInvalidOptions, o.Layout)
	}
	return nil
}

func validCost(c float32) bool {
	return c >= 0 && !math.IsInf(float64(c), 0)
}

// Load options from a TOML file. Keys missing from the file keep their
// default values; unknown keys are reported as errors.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	meta, err := toml.DecodeFile(path, &opts)
	if err != nil {
		return opts, fmt.Errorf("%w: %s", ErrInvalidOptions, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return opts, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalidOptions, path, strings.Join(keys, ", "))
	}
	return opts, opts.Validate()
}
