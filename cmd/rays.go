package cmd

import (
	"fmt"
	"math"

	"github.com/achilleasa/vmath/sampling"
	"github.com/achilleasa/vmath/types"
	"github.com/urfave/cli"
)

// Flags selecting the sampled ray set.
var RayFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "rays, n",
		Value: 100000,
		Usage: "number of rays to sample",
	},
	cli.StringFlag{
		Name:  "source",
		Value: "random",
		Usage: "ray source (random, halton or camera)",
	},
	cli.Uint64Flag{
		Name:  "seed",
		Value: 1,
		Usage: "generator seed",
	},
}

// Sample the ray set selected by the ray flags around bounds.
func sampleRays(ctx *cli.Context, bounds types.Box) ([]types.Ray, error) {
	n := ctx.Int("rays")
	if n <= 0 {
		return nil, fmt.Errorf("ray count must be positive; got %d", n)
	}
	g := sampling.NewGenerator(ctx.Uint64("seed"))

	switch ctx.String("source") {
	case "random":
		return sampling.RandomRays(g, bounds, n), nil
	case "halton":
		return sampling.HaltonRays(bounds, n), nil
	case "camera":
		side := int(math.Ceil(math.Sqrt(float64(n))))
		cam := sampling.NewCamera(float32(math.Pi / 4))
		if err := cam.SetupProjection(1); err != nil {
			return nil, err
		}
		if err := cam.Frame(bounds, types.XYZ(1, 1, 1)); err != nil {
			return nil, err
		}
		return cam.Rays(side, side, g)[:n], nil
	}
	return nil, fmt.Errorf("unknown ray source %q", ctx.String("source"))
}
