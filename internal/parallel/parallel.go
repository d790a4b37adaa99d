// Package parallel runs kernel task ranges on a bounded set of goroutines.
package parallel

import (
	"context"
	"runtime"

	"github.com/born-ml/mathengine/internal/grid"
	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64, // Typical cache line aware chunk.
	}
}

// Sequential returns a configuration that runs everything on the calling goroutine.
func Sequential() Config {
	return Config{NumWorkers: 1, MinChunkSize: 1}
}

func (cfg Config) workers() int {
	if cfg.NumWorkers < 1 {
		return 1
	}
	return cfg.NumWorkers
}

// chunks splits [0, n) into contiguous ranges of at least minChunk items,
// one per worker at most, and runs f on each range.
func chunks(n, minChunk int, cfg Config, f func(start, end int)) {
	if n <= 0 {
		return
	}
	if !cfg.Enabled || cfg.workers() == 1 || n < minChunk {
		f(0, n)
		return
	}

	chunkSize := max((n+cfg.workers()-1)/cfg.workers(), minChunk)

	var g errgroup.Group
	g.SetLimit(cfg.workers())
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			f(start, end)
			return nil
		})
	}
	_ = g.Wait() // Range bodies never fail.
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	chunks(n, max(cfg.MinChunkSize, 1), cfg, func(start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	})
}

// ForBatch optimized for batch*rows iteration pattern.
func ForBatch(batch, rows int, f func(b, r int), cfg Config) {
	n := batch * rows
	For(n, func(k int) {
		f(k/rows, k%rows)
	}, cfg)
}

// Launch runs body for every task identifier of the padded launch, including the
// identifiers past launch.Tasks(). Workgroups are the unit of scheduling: a goroutine
// always runs whole workgroups. Bodies must bounds-check their own coordinates and
// write only the outputs those coordinates own.
func Launch(launch grid.Launch, body func(task int), cfg Config) {
	size := launch.WorkgroupSize()
	minGroups := max(cfg.MinChunkSize/size, 1)
	chunks(launch.Workgroups(), minGroups, cfg, func(first, last int) {
		for wg := first; wg < last; wg++ {
			start, end := launch.Workgroup(wg)
			for task := start; task < end; task++ {
				body(task)
			}
		}
	})
}

// ForContext executes f(ctx, i) for i in [0, n) on at most cfg.NumWorkers goroutines
// and returns the first error. Once ctx is cancelled or an iteration fails, no new
// iterations are started.
func ForContext(ctx context.Context, n int, f func(ctx context.Context, i int) error, cfg Config) error {
	g, gctx := errgroup.WithContext(ctx)
	if cfg.Enabled {
		g.SetLimit(cfg.workers())
	} else {
		g.SetLimit(1)
	}
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return f(gctx, i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
