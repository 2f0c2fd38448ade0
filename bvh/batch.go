package bvh

import (
	"sync"

	"github.com/achilleasa/vmath/types"
	"github.com/achilleasa/vmath/wide"
	"github.com/ajroetker/go-highway/hwy/contrib/workerpool"
)

// The number of rays a worker grabs at a time.
const defaultBatchSize = 64

// A Scene answers nearest and any hit queries for single rays. It is
// implemented by MeshBVH, BoxSet and SphereSet.
type Scene interface {
	Intersect(r types.Ray, stats *TraversalStats) types.Hit
	Occluded(r types.Ray, stats *TraversalStats) bool
}

// A BatchQuerier shards ordered ray batches across a pool of persistent
// workers. Results are written by ray index so the output order always
// matches the input order regardless of scheduling.
type BatchQuerier struct {
	scene     Scene
	pool      *workerpool.Pool
	batchSize int

	statsMu sync.Mutex
}

// Create a querier for scene. A non positive worker count uses one worker
// per CPU.
func NewBatchQuerier(scene Scene, workers int) *BatchQuerier {
	return &BatchQuerier{
		scene:     scene,
		pool:      workerpool.New(workers),
		batchSize: defaultBatchSize,
	}
}

// Get the number of workers.
func (q *BatchQuerier) Workers() int {
	return q.pool.NumWorkers()
}

// Shut down the worker pool. Queries issued after Close run on the calling
// goroutine.
func (q *BatchQuerier) Close() {
	q.pool.Close()
}

// Find the closest hit for each ray. hits must hold at least len(rays)
// entries. stats may be nil.
func (q *BatchQuerier) Intersect(rays []types.Ray, hits []types.Hit, stats *TraversalStats) {
	q.pool.ParallelForAtomicBatched(len(rays), q.batchSize, func(start, end int) {
		var local TraversalStats
		for i := start; i < end; i++ {
			hits[i] = q.scene.Intersect(rays[i], &local)
		}
		q.mergeStats(stats, local)
	})
}

// Run an any hit query for each ray. occluded must hold at least len(rays)
// entries. stats may be nil.
func (q *BatchQuerier) Occluded(rays []types.Ray, occluded []bool, stats *TraversalStats) {
	q.pool.ParallelForAtomicBatched(len(rays), q.batchSize, func(start, end int) {
		var local TraversalStats
		for i := start; i < end; i++ {
			occluded[i] = q.scene.Occluded(rays[i], &local)
		}
		q.mergeStats(stats, local)
	})
}

// Find the closest hit for each ray, tracing groups of packetSize
// consecutive rays as packets. Requires a MeshBVH scene; other scenes fall
// back to Intersect.
func (q *BatchQuerier) IntersectPackets(rays []types.Ray, packetSize int, hits []types.Hit, stats *TraversalStats) {
	mesh, ok := q.scene.(*MeshBVH)
	if !ok || packetSize < 1 {
		q.Intersect(rays, hits, stats)
		return
	}

	packets := (len(rays) + packetSize - 1) / packetSize
	q.pool.ParallelFor(packets, func(start, end int) {
		var (
			local  TraversalStats
			packet wide.Packet
		)
		for pi := start; pi < end; pi++ {
			from := pi * packetSize
			to := min(from+packetSize, len(rays))
			packet.Reset(rays[from:to])
			mesh.IntersectPacket(&packet, hits[from:to], &local)
		}
		q.mergeStats(stats, local)
	})
}

func (q *BatchQuerier) mergeStats(stats *TraversalStats, local TraversalStats) {
	if stats == nil {
		return
	}
	q.statsMu.Lock()
	stats.Add(local)
	q.statsMu.Unlock()
}
