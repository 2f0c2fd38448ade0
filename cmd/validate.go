package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"
)

// Check the tree invariants and compare traversal results against brute
// force intersection for a sampled ray set.
func Validate(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}
	if ctx.NArg() != 1 {
		return errors.New("missing mesh file argument")
	}

	opts, err := buildOptions(ctx)
	if err != nil {
		return err
	}
	accel, _, err := loadMeshBVH(ctx.Args().First(), opts)
	if err != nil {
		return err
	}
	if err = accel.Validate(); err != nil {
		return err
	}
	logger.Noticef("tree invariants hold for %d nodes", accel.Tree().Len())

	rays, err := sampleRays(ctx, accel.Bounds())
	if err != nil {
		return err
	}

	var mismatches, hits int
	for i, r := range rays {
		exp := accel.BruteForce(r)
		got := accel.Intersect(r, nil)
		if got != exp || accel.Occluded(r, nil) != exp.Valid() {
			mismatches++
			if mismatches <= 10 {
				logger.Warningf("ray %d (%s): expected %+v; got %+v", i, r, exp, got)
			}
		}
		if exp.Valid() {
			hits++
		}
	}

	if mismatches != 0 {
		return fmt.Errorf("%d of %d rays disagree with brute force", mismatches, len(rays))
	}
	logger.Noticef("%d rays (%d hits) match brute force", len(rays), hits)
	return nil
}
