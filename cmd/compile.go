package cmd

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/achilleasa/vmath/asset"
	"github.com/achilleasa/vmath/asset/reader"
	"github.com/achilleasa/vmath/asset/writer"
	"github.com/urfave/cli"
)

// Compile meshes into zip files containing the mesh and its BVH.
func CompileMesh(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}
	if ctx.NArg() == 0 {
		return errors.New("missing mesh file argument")
	}
	if ctx.String("out") != "" && ctx.NArg() != 1 {
		return errors.New("--out can only be used with a single mesh file")
	}

	opts, err := buildOptions(ctx)
	if err != nil {
		return err
	}

	for _, meshFile := range ctx.Args() {
		mesh, err := reader.ReadMesh(meshFile)
		if err != nil {
			return err
		}

		compiled, accel, err := asset.Compile(mesh, opts)
		if err != nil {
			return err
		}

		zipFile := ctx.String("out")
		if zipFile == "" {
			zipFile = strings.TrimSuffix(meshFile, filepath.Ext(meshFile)) + ".zip"
		}
		if err = writer.WriteCompiled(compiled, zipFile); err != nil {
			return err
		}

		logger.Noticef("compiled %q (%d triangles) into %q\n%s%s", meshFile, mesh.TriangleCount(), zipFile, accel.Tree().Stats.Table(), accel.Tree().MemoryTable())
	}
	return nil
}
