// Package backendtest holds the conformance suite every backend package runs from its
// own tests. The suite sweeps each operation against the reference kernels and checks
// the dropout, accumulation and contract behavior the sweeps cannot see.
package backendtest

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/born-ml/mathengine/internal/random"
	"github.com/born-ml/mathengine/internal/reference"
	"github.com/born-ml/mathengine/internal/sweep"
	"github.com/born-ml/mathengine/internal/tensor"
)

// Option adjusts the suite for a backend.
type Option func(*suite)

// WithTolerance replaces the tolerance used for op.
func WithTolerance(op string, tolerance float64) Option {
	return func(s *suite) {
		s.tolerances[op] = tolerance
	}
}

// WithSeed sets the sweep seed.
func WithSeed(seed uint64) Option {
	return func(s *suite) {
		s.seed = seed
	}
}

type suite struct {
	backend    tensor.Backend
	want       tensor.Backend
	tolerances map[string]float64
	seed       uint64
}

func (s *suite) tolerance(op string) float64 {
	if tol, ok := s.tolerances[op]; ok {
		return tol
	}
	c, _ := sweep.Lookup(op)
	return c.Tolerance
}

// Run runs the whole conformance suite against b.
func Run(t *testing.T, b tensor.Backend, opts ...Option) {
	s := &suite{
		backend:    b,
		want:       reference.New(),
		tolerances: make(map[string]float64),
		seed:       1,
	}
	for _, opt := range opts {
		opt(s)
	}

	t.Run("Sweeps", s.sweeps)
	t.Run("Accumulate", s.accumulate)
	t.Run("DropoutExample", s.dropoutExample)
	t.Run("DropoutStatistics", s.dropoutStatistics)
	t.Run("MatrixDropoutSharesMask", s.matrixDropoutSharesMask)
	t.Run("SpatialDropoutLayout", s.spatialDropoutLayout)
	t.Run("Contracts", s.contracts)
}

// skipDeclined skips the test when err is a decline and fails it on any other error.
func skipDeclined(t *testing.T, err error) {
	t.Helper()
	if tensor.IsUnsupported(err) {
		t.Skipf("declined: %v", err)
	}
	require.NoError(t, err)
}

func (s *suite) sweeps(t *testing.T) {
	for _, c := range sweep.Cases() {
		t.Run(c.Op, func(t *testing.T) {
			regimes := []string{c.Params}
			if !testing.Short() {
				regimes = append(regimes, c.Large...)
			}

			opts := sweep.DefaultOptions()
			opts.Seed = s.seed
			opts.Tolerance = s.tolerance(c.Op)

			for _, regime := range regimes {
				res, err := sweep.Run(context.Background(), c, sweep.MustParse(regime), s.backend, s.want, opts)
				require.NoError(t, err)
				if res.Skipped {
					t.Skipf("declined by %s", res.Declined)
				}
				assert.Zero(t, res.Failed, "%s: %d of %d trials exceed %g (max diff %g)",
					regime, res.Failed, res.Trials, res.Tolerance, res.MaxDiff)
			}
		})
	}
}

func (s *suite) accumulate(t *testing.T) {
	first := []float32{1, 2, 3, 4}
	second := []float32{5, 6}

	t.Run("TransposedAddsIntoResult", func(t *testing.T) {
		result := []float32{10, 20}
		skipDeclined(t, s.backend.MultiplyTransposedMatrixByMatrix(1, first, 2, 2, second, 1, result, len(result)))
		assert.InDeltaSlice(t, []float32{33, 54}, result, 1e-5)
	})

	t.Run("PlainOverwritesResult", func(t *testing.T) {
		result := []float32{99, 99}
		skipDeclined(t, s.backend.MultiplyMatrixByMatrix(1, first, 2, 2, second, 1, result, len(result)))
		assert.InDeltaSlice(t, []float32{17, 39}, result, 1e-5)
	})

	t.Run("ByTransposedOverwritesResult", func(t *testing.T) {
		result := []float32{99, 99, 99, 99}
		skipDeclined(t, s.backend.MultiplyMatrixByTransposedMatrix(1, first, 2, 2, first, 2, result, len(result)))
		assert.InDeltaSlice(t, []float32{5, 11, 11, 25}, result, 1e-5)
	})
}

func (s *suite) dropoutExample(t *testing.T) {
	input := []float32{1, 1, 1, 1}
	result := make([]float32, 4)
	skipDeclined(t, s.backend.RandomMatrixDropout(input, 1, 4, result, 42, 0.5))

	block, _ := random.New(42).Next()
	threshold := random.Threshold(0.5)
	for i, v := range result {
		want := float32(0)
		if random.Keep(block[i], threshold) {
			want = 2
		}
		assert.InDelta(t, want, v, s.tolerance("RandomMatrixDropout"), "lane %d", i)
	}
}

func (s *suite) dropoutStatistics(t *testing.T) {
	const width = 100_000
	input := make([]float32, width)
	for i := range input {
		input[i] = 1
	}
	tol := s.tolerance("RandomMatrixDropout")

	for _, forwardRate := range []float32{0.1, 0.5, 0.9} {
		result := make([]float32, width)
		skipDeclined(t, s.backend.RandomMatrixDropout(input, 1, width, result, random.DefaultSeed, forwardRate))

		scaled := 1 / forwardRate
		kept := 0
		for i, v := range result {
			if v == 0 {
				continue
			}
			kept++
			if !assert.InDelta(t, scaled, v, tol, "element %d at forward rate %v", i, forwardRate) {
				return
			}
		}

		dist := distuv.Binomial{N: width, P: float64(forwardRate)}
		assert.LessOrEqual(t, math.Abs(float64(kept)-dist.Mean()), 5*dist.StdDev(),
			"kept %d of %d at forward rate %v", kept, width, forwardRate)
	}
}

func (s *suite) matrixDropoutSharesMask(t *testing.T) {
	const height, width = 5, 37
	input := make([]float32, height*width)
	for i := range input {
		input[i] = 1
	}
	result := make([]float32, len(input))
	skipDeclined(t, s.backend.RandomMatrixDropout(input, height, width, result, 7, 0.5))

	for row := 1; row < height; row++ {
		assert.Equal(t, result[:width], result[row*width:(row+1)*width], "row %d", row)
	}
}

func (s *suite) spatialDropoutLayout(t *testing.T) {
	const (
		objectCount     = 6
		objectSize      = 10
		maskObjectCount = 3
		maskObjectSize  = 4
		rows            = objectSize / maskObjectSize
		sentinel        = float32(-7)
	)
	input := make([]float32, objectCount*objectSize)
	for i := range input {
		input[i] = 1
	}
	result := make([]float32, len(input))
	for i := range result {
		result[i] = sentinel
	}
	skipDeclined(t, s.backend.RandomSpatialDropout(input, result, objectCount, objectSize,
		maskObjectCount, maskObjectSize, 11, 0.5))

	for obj := 0; obj < objectCount; obj++ {
		object := result[obj*objectSize : (obj+1)*objectSize]
		pattern := object[:maskObjectSize]
		for row := 1; row < rows; row++ {
			assert.Equal(t, pattern, object[row*maskObjectSize:(row+1)*maskObjectSize], "object %d row %d", obj, row)
		}
		for i := rows * maskObjectSize; i < objectSize; i++ {
			assert.Equal(t, sentinel, object[i], "object %d tail element %d was written", obj, i)
		}
		pack := result[(obj%maskObjectCount)*objectSize:][:maskObjectSize]
		assert.Equal(t, pack, pattern, "object %d differs from its pack", obj)
	}
}

// violates runs f and requires it to panic with a *tensor.ContractError for op.
func violates(t *testing.T, op string, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "%s did not panic", op)
		ce, ok := r.(*tensor.ContractError)
		require.True(t, ok, "panic value %T is not a *tensor.ContractError", r)
		assert.Equal(t, op, ce.Op)
	}()
	f()
}

func (s *suite) contracts(t *testing.T) {
	b := s.backend
	sentinel := []float32{-1, -1, -1, -1}
	fresh := func() []float32 { return append([]float32(nil), sentinel...) }

	t.Run("ResultCapacity", func(t *testing.T) {
		result := fresh()
		violates(t, "MultiplyMatrixByMatrix", func() {
			_ = b.MultiplyMatrixByMatrix(1, make([]float32, 4), 2, 2, make([]float32, 4), 2, result, 3)
		})
		assert.Equal(t, sentinel, result)
	})

	t.Run("NonPositiveDimension", func(t *testing.T) {
		result := fresh()
		violates(t, "MultiplyTransposedMatrixByMatrix", func() {
			_ = b.MultiplyTransposedMatrixByMatrix(0, make([]float32, 4), 2, 2, make([]float32, 4), 2, result, 4)
		})
		assert.Equal(t, sentinel, result)
	})

	t.Run("ShortVector", func(t *testing.T) {
		result := fresh()
		violates(t, "SetVectorToMatrixRows", func() {
			_ = b.SetVectorToMatrixRows(result, 2, 2, []float32{1})
		})
		assert.Equal(t, sentinel, result)
	})

	t.Run("ShortOperand", func(t *testing.T) {
		result := fresh()
		violates(t, "VectorAdd", func() {
			_ = b.VectorAdd(make([]float32, 4), make([]float32, 2), result)
		})
		assert.Equal(t, sentinel, result)
	})

	for _, rate := range []float32{0, -0.5, 1.5, float32(math.NaN())} {
		result := fresh()
		violates(t, "RandomMatrixDropout", func() {
			_ = b.RandomMatrixDropout(make([]float32, 4), 1, 4, result, 1, rate)
		})
		assert.Equal(t, sentinel, result, "forward rate %v", rate)
	}

	t.Run("MaskLargerThanObject", func(t *testing.T) {
		result := fresh()
		violates(t, "RandomSpatialDropout", func() {
			_ = b.RandomSpatialDropout(make([]float32, 4), result, 2, 2, 1, 3, 1, 0.5)
		})
		assert.Equal(t, sentinel, result)
	})
}
