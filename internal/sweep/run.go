package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/born-ml/mathengine/internal/parallel"
	"github.com/born-ml/mathengine/internal/tensor"
)

// Options controls a sweep run.
type Options struct {
	// Seed seeds the trial generator. Trial i draws from PCG(Seed, i).
	Seed uint64
	// Count overrides the TestCount parameter when positive.
	Count int
	// Tolerance overrides the case tolerance when non-negative.
	Tolerance float64
	// Parallel controls how many trials run at once.
	Parallel parallel.Config
}

// DefaultOptions returns options that run trials sequentially with the case tolerance.
func DefaultOptions() Options {
	return Options{Tolerance: -1, Parallel: parallel.Sequential()}
}

// Result summarizes a sweep of one operation.
type Result struct {
	Op        string
	Params    Params
	Trials    int
	Failed    int
	MaxDiff   float64
	Tolerance float64
	// Skipped is set when either backend declined the operation.
	Skipped bool
	// Declined names the backend that declined, if any.
	Declined string
}

// OK reports whether every trial stayed within tolerance.
func (r Result) OK() bool {
	return r.Skipped || r.Failed == 0
}

// Run sweeps c over params, comparing got against want. A decline from either backend
// ends the sweep with Skipped set and no error. Cancelling ctx stops scheduling trials.
func Run(ctx context.Context, c Case, params Params, got, want tensor.Backend, opts Options) (Result, error) {
	res := Result{Op: c.Op, Params: params, Tolerance: c.Tolerance}
	if opts.Tolerance >= 0 {
		res.Tolerance = opts.Tolerance
	}

	count := opts.Count
	if count <= 0 {
		n, err := params.Int("TestCount")
		switch {
		case errors.Is(err, ErrMissing):
			count = 1
		case err != nil:
			return res, err
		default:
			count = n
		}
	}

	var (
		mu       sync.Mutex
		declined string
	)
	diffs := make([]float64, count)

	err := parallel.ForContext(ctx, count, func(ctx context.Context, i int) error {
		rng := rand.New(rand.NewPCG(opts.Seed, uint64(i))) //nolint:gosec // G115: i is non-negative.
		run, err := c.Prepare(rng, params)
		if err != nil {
			return fmt.Errorf("%s: trial %d: %w", c.Op, i, err)
		}

		outputs := make([][]float32, 0, 2)
		for _, b := range []tensor.Backend{got, want} {
			out, err := run(b)
			if tensor.IsUnsupported(err) {
				mu.Lock()
				declined = b.Name()
				mu.Unlock()
				return errDeclined
			}
			if err != nil {
				return fmt.Errorf("%s: trial %d: %s: %w", c.Op, i, b.Name(), err)
			}
			outputs = append(outputs, out)
		}
		diffs[i] = MaxAbsDiff(outputs[0], outputs[1])
		return nil
	}, opts.Parallel)

	if errors.Is(err, errDeclined) {
		res.Skipped = true
		res.Declined = declined
		return res, nil
	}
	if err != nil {
		return res, err
	}

	res.Trials = count
	for _, d := range diffs {
		res.MaxDiff = math.Max(res.MaxDiff, d)
		if d > res.Tolerance {
			res.Failed++
		}
	}
	return res, nil
}

var errDeclined = errors.New("declined")

// MaxAbsDiff returns the largest absolute element difference. Buffers of different
// lengths, or a NaN on either side where the other is not NaN, give +Inf.
func MaxAbsDiff(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var worst float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		if math.IsNaN(x) || math.IsNaN(y) {
			if math.IsNaN(x) != math.IsNaN(y) {
				return math.Inf(1)
			}
			continue
		}
		worst = math.Max(worst, math.Abs(x-y))
	}
	return worst
}
