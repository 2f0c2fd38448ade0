package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/achilleasa/vmath/bvh"
	"github.com/achilleasa/vmath/types"
	"github.com/achilleasa/vmath/wide"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

type benchResult struct {
	engine string
	mode   string
	rays   int
	hits   int
	time   time.Duration
}

// Time nearest-hit and any-hit queries for each lane width, followed by
// batched and packet queries on the worker pool.
func Bench(ctx *cli.Context) error {
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
	rays, err := sampleRays(ctx, accel.Bounds())
	if err != nil {
		return err
	}

	widths := wide.Widths()
	if ctx.IsSet("lane-width") {
		w, err := wide.ParseWidth(opts.LaneWidth)
		if err != nil {
			return err
		}
		widths = []wide.Width{w}
	}

	var (
		results []benchResult
		stats   bvh.TraversalStats
		hits    = make([]types.Hit, len(rays))
	)
	for _, w := range widths {
		opts.LaneWidth = w.String()
		if w == wide.Native {
			opts.LaneWidth = "native"
		}
		mesh, err := bvh.RestoreMeshBVH(accel.Vertices, accel.Faces, accel.Tree(), opts)
		if err != nil {
			return err
		}
		name := mesh.Engine().Name()

		stats = bvh.TraversalStats{}
		start := time.Now()
		for i, r := range rays {
			hits[i] = mesh.Intersect(r, &stats)
		}
		results = append(results, benchResult{name, "nearest", len(rays), stats.Hits, time.Since(start)})

		occluded := 0
		start = time.Now()
		for _, r := range rays {
			if mesh.Occluded(r, nil) {
				occluded++
			}
		}
		results = append(results, benchResult{name, "any", len(rays), occluded, time.Since(start)})
	}
	traversal := stats

	q := bvh.NewBatchQuerier(accel, ctx.Int("workers"))
	defer q.Close()

	batchStats := bvh.TraversalStats{}
	start := time.Now()
	q.Intersect(rays, hits, &batchStats)
	results = append(results, benchResult{accel.Engine().Name(), fmt.Sprintf("batch x%d", q.Workers()), len(rays), batchStats.Hits, time.Since(start)})

	packetSize := ctx.Int("packet-size")
	batchStats = bvh.TraversalStats{}
	start = time.Now()
	q.IntersectPackets(rays, packetSize, hits, &batchStats)
	results = append(results, benchResult{accel.Engine().Name(), fmt.Sprintf("packets(%d) x%d", packetSize, q.Workers()), len(rays), batchStats.Hits, time.Since(start)})

	logger.Noticef("benchmark results for %d %s rays\n%s%s", len(rays), ctx.String("source"), benchTable(results), traversal.Table())
	return nil
}

func benchTable(results []benchResult) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Engine", "Query", "Rays", "Hits", "Time", "Mrays/s"})
	for _, r := range results {
		table.Append([]string{
			r.engine,
			r.mode,
			fmt.Sprint(r.rays),
			fmt.Sprint(r.hits),
			r.time.String(),
			fmt.Sprintf("%.2f", float64(r.rays)/r.time.Seconds()/1e6),
		})
	}
	table.Render()
	return buf.String()
}
