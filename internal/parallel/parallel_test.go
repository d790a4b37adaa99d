package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/born-ml/mathengine/internal/grid"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestForBatch(t *testing.T) {
	cfg := DefaultConfig()

	batch, rows := 4, 8
	results := make([][]bool, batch)
	for b := range results {
		results[b] = make([]bool, rows)
	}

	ForBatch(batch, rows, func(b, r int) {
		results[b][r] = true
	}, cfg)

	for b := 0; b < batch; b++ {
		for r := 0; r < rows; r++ {
			if !results[b][r] {
				t.Errorf("Missing result at [%d][%d]", b, r)
			}
		}
	}
}

func TestFor_Sequential(t *testing.T) {
	cfg := Config{Enabled: false}

	var counter int64
	For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != 100 {
		t.Errorf("Expected 100, got %d", counter)
	}
}

func TestFor_SmallChunk(t *testing.T) {
	// Small work units fall back to sequential.
	cfg := DefaultConfig()

	var counter int64
	n := cfg.MinChunkSize - 1

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestLaunchVisitsPaddedRangeOnce(t *testing.T) {
	for _, cfg := range []Config{DefaultConfig(), Sequential(), {Enabled: true, NumWorkers: 3, MinChunkSize: 1}} {
		launch := grid.NewLaunch(1001, 64)
		visits := make([]int32, launch.Workgroups()*launch.WorkgroupSize())

		Launch(launch, func(task int) {
			atomic.AddInt32(&visits[task], 1)
		}, cfg)

		for task, n := range visits {
			if n != 1 {
				t.Fatalf("cfg %+v: task %d ran %d times", cfg, task, n)
			}
		}
	}
}

func TestForContext(t *testing.T) {
	var counter int64
	err := ForContext(context.Background(), 50, func(_ context.Context, _ int) error {
		atomic.AddInt64(&counter, 1)
		return nil
	}, DefaultConfig())
	if err != nil {
		t.Fatalf("ForContext: %v", err)
	}
	if counter != 50 {
		t.Errorf("Expected 50, got %d", counter)
	}
}

func TestForContext_FirstError(t *testing.T) {
	errBoom := errors.New("boom")
	err := ForContext(context.Background(), 10, func(_ context.Context, i int) error {
		if i == 3 {
			return errBoom
		}
		return nil
	}, Sequential())
	if !errors.Is(err, errBoom) {
		t.Errorf("Expected boom, got %v", err)
	}
}

func TestForContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var counter int64
	err := ForContext(ctx, 10, func(_ context.Context, _ int) error {
		atomic.AddInt64(&counter, 1)
		return nil
	}, DefaultConfig())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if counter != 0 {
		t.Errorf("Expected no iterations, got %d", counter)
	}
}

func BenchmarkLaunch(b *testing.B) {
	cfg := DefaultConfig()
	launch := grid.NewLaunch(1<<16, 256)
	out := make([]float32, launch.Tasks())

	for i := 0; i < b.N; i++ {
		Launch(launch, func(task int) {
			if task < len(out) {
				out[task] = float32(task)
			}
		}, cfg)
	}
}
