// Package pool fans per-item extraction across a bounded set of workers and
// reassembles results in original input order.
package pool

import (
	"context"
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/venue-scout/internal/types"
)

// WorkFunc processes one sub-item end to end. Failures are reported in the
// WorkResult's Err, never by aborting siblings.
type WorkFunc func(ctx context.Context, item types.WorkItem) types.WorkResult

// Pool runs WorkItems with bounded parallelism.
type Pool struct {
	maxWorkers int
	verbose    bool
}

// New creates a pool. maxWorkers <= 0 means available hardware parallelism.
func New(maxWorkers int, verbose bool) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = runtime.GOMAXPROCS(0)
	}
	return &Pool{maxWorkers: maxWorkers, verbose: verbose}
}

// ProcessAll processes every URL and returns exactly len(urls) results in
// input order, regardless of completion timing. Work is partitioned into
// contiguous, roughly equal chunks, one per worker, so diagnostics correlate
// with a worker index. There is no early cancellation on first failure; the
// pool finishes when all workers finish.
func (p *Pool) ProcessAll(ctx context.Context, urls []string, fn WorkFunc) []types.WorkResult {
	if len(urls) == 0 {
		return nil
	}

	items := make([]types.WorkItem, len(urls))
	for i, u := range urls {
		items[i] = types.WorkItem{Index: i, URL: u}
	}

	workers := p.maxWorkers
	if len(items) < workers {
		workers = len(items)
	}

	if p.verbose {
		log.Printf("[POOL] processing %d items with %d workers", len(items), workers)
	}

	results := make([]types.WorkResult, len(items))

	g, gCtx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		chunk := chunkBounds(len(items), workers, w)
		worker := w
		g.Go(func() error {
			for i := chunk.start; i < chunk.end; i++ {
				item := items[i]
				// Each worker owns a disjoint index range, so results can
				// be written without locking.
				results[item.Index] = fn(gCtx, item)
				if p.verbose && results[item.Index].Err != nil {
					log.Printf("[POOL] worker %d item %d failed: %v", worker, item.Index, results[item.Index].Err)
				}
			}
			return nil
		})
	}
	// Workers never return errors; item failures live in their WorkResults.
	_ = g.Wait()

	return results
}

type bounds struct {
	start, end int
}

// chunkBounds splits n items into `workers` contiguous chunks, giving the
// first n%workers chunks one extra item.
func chunkBounds(n, workers, w int) bounds {
	base := n / workers
	extra := n % workers

	start := w*base + min(w, extra)
	size := base
	if w < extra {
		size++
	}
	return bounds{start: start, end: start + size}
}
