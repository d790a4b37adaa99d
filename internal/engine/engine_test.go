package engine

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/mathengine/internal/dropout"
	"github.com/born-ml/mathengine/internal/parallel"
	"github.com/born-ml/mathengine/internal/reference"
	"github.com/born-ml/mathengine/internal/tensor"
)

// noSums is a backend without a SumMatrixRows kernel.
type noSums struct {
	*reference.Backend
}

func (n noSums) Name() string { return "NoSums" }

func (n noSums) SumMatrixRows(_ int, _, _ []float32, _, _ int) error {
	return tensor.Unsupported(n.Name(), "SumMatrixRows")
}

func debugLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestRegistry(t *testing.T) {
	names := Names()
	assert.Subset(t, names, []string{"cpu", "grid", "reference"})
	assert.IsNonDecreasing(t, names)

	assert.PanicsWithValue(t, "engine: backend already registered: cpu", func() {
		Register("cpu", func(Config) (tensor.Backend, error) { return reference.New(), nil })
	})

	_, err := Open("tpu", DefaultConfig())
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

var errNoDevice = errors.New("no device")

func TestRegistry_FactoryError(t *testing.T) {
	if !slices.Contains(Names(), "test-broken") {
		Register("test-broken", func(Config) (tensor.Backend, error) { return nil, errNoDevice })
	}

	_, err := Open("test-broken", DefaultConfig())
	assert.ErrorIs(t, err, errNoDevice)
	assert.NotErrorIs(t, err, ErrUnknownBackend)
}

// releasable counts Release calls.
type releasable struct {
	*reference.Backend
	released int
}

func (r *releasable) Release() { r.released++ }

func TestRelease(t *testing.T) {
	r := &releasable{Backend: reference.New()}
	Release(r)
	assert.Equal(t, 1, r.released)

	New(r, nil).Release()
	assert.Equal(t, 2, r.released)

	assert.NotPanics(t, func() { Release(reference.New()) })
}

func TestOpen(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.WorkgroupSize = 32
	cfg.ElementTasks = true
	cfg.Logger = debugLogger(&buf)

	e, err := Open("grid", cfg)
	require.NoError(t, err)
	assert.Equal(t, "Grid(wg=32,element)", e.Name())
	assert.Equal(t, tensor.Grid, e.Device())
	assert.Contains(t, buf.String(), "backend opened")

	e, err = Open("cpu", cfg)
	require.NoError(t, err)
	assert.Equal(t, tensor.CPU, e.Backend().Device())
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("BORN_GRID_WORKGROUP", "64")
	t.Setenv("BORN_GRID_ELEMENT_TASKS", "1")
	t.Setenv("BORN_NUM_THREADS", "1")

	cfg := ConfigFromEnv()
	assert.Equal(t, 64, cfg.WorkgroupSize)
	assert.True(t, cfg.ElementTasks)
	assert.Equal(t, 1, cfg.Parallel.NumWorkers)
	assert.False(t, cfg.Parallel.Enabled)
}

func TestMathEngine_DispatchLogging(t *testing.T) {
	var buf bytes.Buffer
	e := New(noSums{reference.New()}, debugLogger(&buf))

	result := make([]float32, 3)
	require.NoError(t, e.VectorAdd([]float32{1, 2, 3}, []float32{1, 1, 1}, result))
	assert.Equal(t, []float32{2, 3, 4}, result)
	assert.Contains(t, buf.String(), "msg=dispatch op=VectorAdd backend=NoSums")

	buf.Reset()
	err := e.SumMatrixRows(1, make([]float32, 2), make([]float32, 4), 2, 2)
	assert.True(t, tensor.IsUnsupported(err))
	assert.ErrorIs(t, err, tensor.ErrUnsupported)
	assert.Contains(t, buf.String(), "msg=declined op=SumMatrixRows")
}

func TestMathEngine_QuietAtInfo(t *testing.T) {
	var buf bytes.Buffer
	e := New(reference.New(), slog.New(slog.NewTextHandler(&buf, nil)))
	require.NoError(t, e.VectorFill(make([]float32, 4), 1))
	assert.Empty(t, buf.String())
}

func TestMathEngine_ContractPanicPassesThrough(t *testing.T) {
	e := New(reference.New(), nil)
	assert.Panics(t, func() {
		_ = e.SetVectorToMatrixRows(make([]float32, 4), 2, 2, []float32{1})
	})
}

func TestMathEngine_Dropout(t *testing.T) {
	input := make([]float32, 2*3*4)
	for i := range input {
		input[i] = 1
	}
	blob := tensor.NewBlobDesc()
	blob.BatchLength, blob.BatchWidth, blob.Channels = 2, 3, 4

	for _, name := range []string{"cpu", "grid", "reference"} {
		e, err := Open(name, DefaultConfig())
		require.NoError(t, err)

		for _, spatial := range []bool{false, true} {
			desc, err := dropout.NewDesc(0.5, spatial, false, blob, 42)
			require.NoError(t, err)

			want := make([]float32, len(input))
			require.NoError(t, dropout.Apply(reference.New(), desc, input, want))

			got := make([]float32, len(input))
			require.NoError(t, e.Dropout(desc, input, got))
			assert.Equal(t, want, got, "%s spatial=%v", name, spatial)
		}
	}
}

func TestTolerances(t *testing.T) {
	tol := Tolerances()
	assert.Len(t, tol, 12)
	assert.Equal(t, 1e-3, tol["MultiplyTransposedMatrixByMatrix"])
	assert.Equal(t, 1e-3, tol["SumMatrixRows"])
	assert.Zero(t, tol["SetVectorToMatrixRows"])
	assert.Zero(t, tol["RandomMatrixDropout"])

	ops := Ops()
	assert.Len(t, ops, 12)
	assert.Equal(t, "MultiplyMatrixByMatrix", ops[0])
}

func TestVerify(t *testing.T) {
	got, err := NewBackend("grid", DefaultConfig())
	require.NoError(t, err)

	results, err := Verify(context.Background(), got, reference.New(), VerifyOptions{
		Count:    3,
		Seed:     9,
		Parallel: parallel.DefaultConfig(),
	})
	require.NoError(t, err)
	require.Len(t, results, 12)
	for _, res := range results {
		assert.True(t, res.OK(), "%s max diff %g", res.Op, res.MaxDiff)
		assert.Equal(t, 3, res.Trials)
	}
}

func TestVerify_Selection(t *testing.T) {
	results, err := Verify(context.Background(), noSums{reference.New()}, reference.New(), VerifyOptions{
		Ops:    []string{"SumMatrixRows", "VectorAdd"},
		Params: "TestCount = 2; VectorSize = (1..16);",
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].Skipped)
	assert.Equal(t, "NoSums", results[0].Declined)
	assert.Equal(t, 2, results[1].Trials)
	assert.Contains(t, results[1].Params.String(), "VectorSize = (1..16);")
	assert.Contains(t, results[1].Params.String(), "TestCount = 2;")

	_, err = Verify(context.Background(), reference.New(), reference.New(), VerifyOptions{Ops: []string{"Conv2D"}})
	assert.ErrorIs(t, err, ErrUnknownOp)

	_, err = Verify(context.Background(), reference.New(), reference.New(), VerifyOptions{Params: "Height = ("})
	assert.Error(t, err)
}
