package grid

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/mathengine/internal/backend/backendtest"
	"github.com/born-ml/mathengine/internal/backend/cpu"
	"github.com/born-ml/mathengine/internal/parallel"
	"github.com/born-ml/mathengine/internal/tensor"
)

func TestGridBackend_New(t *testing.T) {
	g := New()
	assert.Equal(t, "Grid(wg=256)", g.Name())
	assert.Equal(t, tensor.Grid, g.Device())
	assert.Equal(t, DefaultWorkgroupSize, g.WorkgroupSize())

	g = New(WithWorkgroupSize(0), WithElementTasks(true))
	assert.Equal(t, 1, g.WorkgroupSize())
	assert.Equal(t, "Grid(wg=1,element)", g.Name())
}

func TestGridBackend_Conformance(t *testing.T) {
	backendtest.Run(t, New())
}

func TestGridBackend_ConformanceElementTasks(t *testing.T) {
	if testing.Short() {
		t.Skip("covered by the block task suite in short mode")
	}
	backendtest.Run(t, New(WithElementTasks(true), WithWorkgroupSize(64)))
}

// partitions returns grid backends that differ only in how work is split.
func partitions() []tensor.Backend {
	return []tensor.Backend{
		New(),
		New(WithElementTasks(true)),
		New(WithWorkgroupSize(1)),
		New(WithWorkgroupSize(7), WithElementTasks(true)),
		New(WithWorkgroupSize(64), WithConfig(parallel.Sequential())),
		New(WithWorkgroupSize(3), WithConfig(parallel.Config{Enabled: true, NumWorkers: 16, MinChunkSize: 1})),
	}
}

// TestMatrixDropout_PartitionInvariance checks that the output depends only on the
// seed and the rate, never on task granularity, workgroup size or worker count.
func TestMatrixDropout_PartitionInvariance(t *testing.T) {
	shapes := []struct{ height, width int }{
		{1, 1}, {1, 4}, {1, 5}, {3, 7}, {17, 255}, {2, 1029},
	}
	for _, shape := range shapes {
		input := make([]float32, shape.height*shape.width)
		for i := range input {
			input[i] = float32(i%13) - 6
		}

		want := make([]float32, len(input))
		require.NoError(t, cpu.New().RandomMatrixDropout(input, shape.height, shape.width, want, 42, 0.5))

		for _, b := range partitions() {
			got := make([]float32, len(input))
			require.NoError(t, b.RandomMatrixDropout(input, shape.height, shape.width, got, 42, 0.5))
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("%s %dx%d mismatch (-cpu +grid):\n%s", b.Name(), shape.height, shape.width, diff)
			}
		}
	}
}

func TestSpatialDropout_PartitionInvariance(t *testing.T) {
	const (
		objectCount     = 9
		objectSize      = 23
		maskObjectCount = 3
		maskObjectSize  = 5
	)
	input := make([]float32, objectCount*objectSize)
	for i := range input {
		input[i] = float32(i%11) * 0.5
	}

	want := make([]float32, len(input))
	require.NoError(t, cpu.New().RandomSpatialDropout(input, want, objectCount, objectSize,
		maskObjectCount, maskObjectSize, 195948557, 0.6))

	for _, b := range partitions() {
		got := make([]float32, len(input))
		require.NoError(t, b.RandomSpatialDropout(input, got, objectCount, objectSize,
			maskObjectCount, maskObjectSize, 195948557, 0.6))
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s mismatch (-cpu +grid):\n%s", b.Name(), diff)
		}
	}
}

// TestGridBackend_ExactParity checks the kernels whose numerics are exact.
func TestGridBackend_ExactParity(t *testing.T) {
	const batch, height, width = 3, 17, 29
	matrix := make([]float32, batch*height*width)
	for i := range matrix {
		matrix[i] = float32(i%31) - 15
	}
	vector := make([]float32, width)
	for i := range vector {
		vector[i] = float32(i) * 0.25
	}

	c := cpu.New()
	for _, b := range partitions() {
		want := make([]float32, len(matrix))
		got := make([]float32, len(matrix))
		require.NoError(t, c.AddVectorToMatrixRows(batch, matrix, want, height, width, vector))
		require.NoError(t, b.AddVectorToMatrixRows(batch, matrix, got, height, width, vector))
		assert.Empty(t, cmp.Diff(want, got), "%s AddVectorToMatrixRows", b.Name())

		want = make([]float32, batch*width)
		got = make([]float32, batch*width)
		require.NoError(t, c.SumMatrixRows(batch, want, matrix, height, width))
		require.NoError(t, b.SumMatrixRows(batch, got, matrix, height, width))
		assert.Empty(t, cmp.Diff(want, got), "%s SumMatrixRows", b.Name())
	}
}

func BenchmarkMatrixDropout(b *testing.B) {
	const height, width = 256, 4096
	input := make([]float32, height*width)
	result := make([]float32, len(input))
	for _, g := range []*GridBackend{New(), New(WithElementTasks(true))} {
		b.Run(g.Name(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = g.RandomMatrixDropout(input, height, width, result, i, 0.5)
			}
		})
	}
}
