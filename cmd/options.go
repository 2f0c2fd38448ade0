package cmd

import (
	"path/filepath"
	"strings"

	"github.com/achilleasa/vmath/asset"
	"github.com/achilleasa/vmath/asset/reader"
	"github.com/achilleasa/vmath/bvh"
	"github.com/urfave/cli"
)

// Flags shared by all commands that build or restore a mesh BVH.
var BuildFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config, c",
		Usage: "load build options from a TOML file; other flags override its values",
	},
	cli.IntFlag{
		Name:  "leaf-size",
		Value: bvh.DefaultOptions().MaxLeafSize,
		Usage: "max primitives per leaf",
	},
	cli.StringFlag{
		Name:  "strategy",
		Value: string(bvh.DefaultOptions().Strategy),
		Usage: "split search strategy (binned or sweep)",
	},
	cli.IntFlag{
		Name:  "buckets",
		Value: bvh.DefaultOptions().Buckets,
		Usage: "number of bins per axis for the binned strategy",
	},
	cli.StringFlag{
		Name:  "invalid",
		Value: string(bvh.DefaultOptions().InvalidPrimitives),
		Usage: "policy for primitives with non-finite bounds (reject or filter)",
	},
	cli.StringFlag{
		Name:  "layout",
		Value: string(bvh.DefaultOptions().Layout),
		Usage: "node layout (full or compact)",
	},
	cli.StringFlag{
		Name:  "lane-width",
		Value: bvh.DefaultOptions().LaneWidth,
		Usage: "leaf test lane width (1, 4, 8, 16 or native)",
	},
	cli.BoolFlag{
		Name:  "cull",
		Usage: "cull back-facing triangles",
	},
}

// Assemble build options from the optional config file and flag overrides.
func buildOptions(ctx *cli.Context) (bvh.Options, error) {
	opts := bvh.DefaultOptions()
	if path := ctx.String("config"); path != "" {
		var err error
		if opts, err = bvh.LoadOptions(path); err != nil {
			return opts, err
		}
	}

	if ctx.IsSet("leaf-size") {
		opts.MaxLeafSize = ctx.Int("leaf-size")
	}
	if ctx.IsSet("strategy") {
		opts.Strategy = bvh.Strategy(ctx.String("strategy"))
	}
	if ctx.IsSet("buckets") {
		opts.Buckets = ctx.Int("buckets")
	}
	if ctx.IsSet("invalid") {
		opts.InvalidPrimitives = bvh.InvalidPolicy(ctx.String("invalid"))
	}
	if ctx.IsSet("layout") {
		opts.Layout = bvh.Layout(ctx.String("layout"))
	}
	if ctx.IsSet("lane-width") {
		opts.LaneWidth = ctx.String("lane-width")
	}
	if ctx.IsSet("cull") {
		opts.CullBackFaces = ctx.Bool("cull")
	}
	return opts, opts.Validate()
}

// Load a mesh BVH either by restoring a compiled zip file or by reading and
// building a mesh from an obj/gltf/glb file.
func loadMeshBVH(path string, opts bvh.Options) (*bvh.MeshBVH, *asset.Compiled, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		compiled, err := reader.ReadCompiled(path)
		if err != nil {
			return nil, nil, err
		}
		accel, err := compiled.Restore(&opts)
		return accel, compiled, err
	}

	mesh, err := reader.ReadMesh(path)
	if err != nil {
		return nil, nil, err
	}
	compiled, accel, err := asset.Compile(mesh, opts)
	return accel, compiled, err
}
