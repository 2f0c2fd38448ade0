package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/vmath/cmd"
	"github.com/urfave/cli"
)

func withFlags(sets ...[]cli.Flag) []cli.Flag {
	var flags []cli.Flag
	for _, set := range sets {
		flags = append(flags, set...)
	}
	return flags
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "vmath"
	app.Usage = "build and query bounding volume hierarchies over triangle meshes"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "set log level explicitly (debug, info, notice, warning, error)",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "build a BVH for a mesh and store both in a zip archive",
			Description: `
Read a triangle mesh from a wavefront obj, gltf or glb file, build a BVH over
its triangles and write the mesh together with the tree to a zip archive that
can be supplied to the other commands without rebuilding.`,
			ArgsUsage: "mesh1.obj mesh2.glb ...",
			Flags: withFlags(cmd.BuildFlags, []cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Usage: "output file when compiling a single mesh",
				},
			}),
			Action: cmd.CompileMesh,
		},
		{
			Name:      "info",
			Usage:     "display statistics for compiled meshes",
			ArgsUsage: "mesh1.zip mesh2.zip ...",
			Action:    cmd.ShowInfo,
		},
		{
			Name:  "bench",
			Usage: "benchmark ray queries",
			Description: `
Time nearest and any hit queries against a mesh for each lane width and then
run the same rays as a batch and as packets on a pool of workers.`,
			ArgsUsage: "mesh.{obj,gltf,glb,zip}",
			Flags: withFlags(cmd.BuildFlags, cmd.RayFlags, []cli.Flag{
				cli.IntFlag{
					Name:  "workers",
					Usage: "number of batch workers (0 uses all cpus)",
				},
				cli.IntFlag{
					Name:  "packet-size",
					Value: 8,
					Usage: "rays per packet",
				},
			}),
			Action: cmd.Bench,
		},
		{
			Name:      "validate",
			Usage:     "check tree invariants and compare ray queries with brute force",
			ArgsUsage: "mesh.{obj,gltf,glb,zip}",
			Flags:     withFlags(cmd.BuildFlags, cmd.RayFlags),
			Action:    cmd.Validate,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
