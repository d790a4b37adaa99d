package sweep

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/mathengine/internal/parallel"
	"github.com/born-ml/mathengine/internal/reference"
	"github.com/born-ml/mathengine/internal/tensor"
)

// decliner is a reference backend that has no spatial dropout kernel.
type decliner struct {
	*reference.Backend
}

func (d decliner) Name() string { return "Decliner" }

func (d decliner) RandomSpatialDropout(_, _ []float32, _, _, _, _, _ int, _ float32) error {
	return tensor.Unsupported(d.Name(), "RandomSpatialDropout")
}

// skewed is a reference backend whose vector fill is off by a constant.
type skewed struct {
	*reference.Backend
}

func (s skewed) VectorFill(result []float32, value float32) error {
	return s.Backend.VectorFill(result, value+0.5)
}

func TestCases(t *testing.T) {
	cases := Cases()
	require.Len(t, cases, 12)

	seen := make(map[string]bool)
	for _, c := range cases {
		assert.False(t, seen[c.Op], "duplicate case %s", c.Op)
		seen[c.Op] = true

		_, err := Parse(c.Params)
		require.NoError(t, err, c.Op)
		for _, large := range c.Large {
			_, err := Parse(large)
			require.NoError(t, err, c.Op)
		}

		got, ok := Lookup(c.Op)
		require.True(t, ok)
		assert.Equal(t, c.Op, got.Op)
	}

	_, ok := Lookup("Conv2D")
	assert.False(t, ok)
}

func TestRun_ReferenceAgainstItself(t *testing.T) {
	opts := DefaultOptions()
	opts.Count = 5
	opts.Parallel = parallel.DefaultConfig()

	for _, c := range Cases() {
		res, err := Run(context.Background(), c, MustParse(c.Params), reference.New(), reference.New(), opts)
		require.NoError(t, err, c.Op)
		assert.True(t, res.OK(), c.Op)
		assert.Equal(t, 5, res.Trials, c.Op)
		assert.Zero(t, res.MaxDiff, c.Op)
		assert.Equal(t, c.Tolerance, res.Tolerance, c.Op)
	}
}

func TestRun_TestCountParameter(t *testing.T) {
	c, _ := Lookup("VectorAdd")
	res, err := Run(context.Background(), c, MustParse("VectorSize = (1..8); Values = (-1..1); TestCount = 7;"),
		reference.New(), reference.New(), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 7, res.Trials)

	res, err = Run(context.Background(), c, MustParse("VectorSize = (1..8); Values = (-1..1);"),
		reference.New(), reference.New(), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Trials)
}

func TestRun_Decline(t *testing.T) {
	c, _ := Lookup("RandomSpatialDropout")
	res, err := Run(context.Background(), c, MustParse(c.Params), decliner{reference.New()}, reference.New(), DefaultOptions())
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.True(t, res.OK())
	assert.Equal(t, "Decliner", res.Declined)
}

func TestRun_DetectsDivergence(t *testing.T) {
	c, _ := Lookup("VectorFill")
	opts := DefaultOptions()
	opts.Count = 4

	res, err := Run(context.Background(), c, MustParse(c.Params), skewed{reference.New()}, reference.New(), opts)
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Equal(t, 4, res.Failed)
	assert.InDelta(t, 0.5, res.MaxDiff, 1e-4)

	opts.Tolerance = 1
	res, err = Run(context.Background(), c, MustParse(c.Params), skewed{reference.New()}, reference.New(), opts)
	require.NoError(t, err)
	assert.True(t, res.OK())
}

func TestRun_MissingParameter(t *testing.T) {
	c, _ := Lookup("MultiplyMatrixByMatrix")
	_, err := Run(context.Background(), c, MustParse("Height = (1..5);"), reference.New(), reference.New(), DefaultOptions())
	assert.ErrorIs(t, err, ErrMissing)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, _ := Lookup("VectorAdd")
	_, err := Run(ctx, c, MustParse(c.Params), reference.New(), reference.New(), DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMaxAbsDiff(t *testing.T) {
	nan := float32(math.NaN())
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"equal", []float32{1, 2}, []float32{1, 2}, 0},
		{"diff", []float32{1, 2}, []float32{1.5, 0}, 2},
		{"length", []float32{1}, []float32{1, 2}, math.Inf(1)},
		{"both nan", []float32{nan}, []float32{nan}, 0},
		{"one nan", []float32{nan}, []float32{1}, math.Inf(1)},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaxAbsDiff(tt.a, tt.b))
		})
	}
}
