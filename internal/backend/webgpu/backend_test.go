//go:build windows

package webgpu

import (
	"math"
	"testing"

	"github.com/born-ml/mathengine/internal/backend/backendtest"
	"github.com/born-ml/mathengine/internal/reference"
	"github.com/born-ml/mathengine/internal/tensor"
)

// newTestBackend returns a backend or skips the test when no adapter is present.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	backend, err := New()
	if err != nil {
		t.Logf("WebGPU not available: %v", err)
		t.Skip("WebGPU not available on this system")
	}
	t.Cleanup(backend.Release)
	return backend
}

func TestIsAvailable(t *testing.T) {
	t.Logf("WebGPU available: %v", IsAvailable())
}

func TestNew(t *testing.T) {
	backend := newTestBackend(t)

	if backend.Name() != "WebGPU" {
		t.Errorf("Expected name 'WebGPU', got '%s'", backend.Name())
	}
	if backend.Device() != tensor.WebGPU {
		t.Errorf("Expected device WebGPU, got %v", backend.Device())
	}
}

// TestConformance runs the shared suite. Division on the GPU is not correctly
// rounded, so kept dropout values may differ from x/p by a few ulps.
func TestConformance(t *testing.T) {
	backendtest.Run(t, newTestBackend(t),
		backendtest.WithTolerance("RandomMatrixDropout", 1e-5),
		backendtest.WithTolerance("RandomSpatialDropout", 1e-5),
	)
}

func TestSumMatrixRowsDeclined(t *testing.T) {
	backend := newTestBackend(t)

	err := backend.SumMatrixRows(1, make([]float32, 2), make([]float32, 4), 2, 2)
	if !tensor.IsUnsupported(err) {
		t.Fatalf("expected an unsupported error, got %v", err)
	}
}

// TestLargeDispatch covers launches that need more than 65535 workgroups in x.
func TestLargeDispatch(t *testing.T) {
	if testing.Short() {
		t.Skip("large dispatch")
	}
	backend := newTestBackend(t)

	const height, width = 1089536, 64
	vector := make([]float32, width)
	for i := range vector {
		vector[i] = float32(i)
	}
	result := make([]float32, height*width)
	if err := backend.SetVectorToMatrixRows(result, height, width, vector); err != nil {
		t.Fatal(err)
	}
	for _, row := range []int{0, 1, 65535, height - 1} {
		for col := 0; col < width; col++ {
			if got := result[row*width+col]; got != vector[col] {
				t.Fatalf("result[%d][%d] = %v, want %v", row, col, got, vector[col])
			}
		}
	}
}

func TestUnitsPerBinding(t *testing.T) {
	tests := []struct {
		unitSize int
		limit    uint64
		want     int
	}{
		{1, defaultMaxBinding, defaultMaxBinding / 4},
		{64, defaultMaxBinding, 524288},
		{48, defaultMaxBinding, 699050},
		{64, 256, 1},
		{65, 256, 0},
		{0, 256, 0},
	}
	for _, tt := range tests {
		if got := unitsPerBinding(tt.unitSize, tt.limit); got != tt.want {
			t.Errorf("unitsPerBinding(%d, %d) = %d, want %d", tt.unitSize, tt.limit, got, tt.want)
		}
	}

	// The largest broadcast shape needs more than one launch under the default limit.
	if per := unitsPerBinding(64, defaultMaxBinding); per >= 1089536 {
		t.Errorf("1089536 rows of 64 fit in one binding of %d bytes", defaultMaxBinding)
	}
}

func ramp(n int, scale float32) []float32 {
	data := make([]float32, n)
	for i := range data {
		data[i] = float32(i%13)*scale - 3
	}
	return data
}

func assertClose(t *testing.T, op string, want, got []float32, tol float64) {
	t.Helper()
	for i := range want {
		if math.Abs(float64(want[i]-got[i])) > tol {
			t.Fatalf("%s: element %d = %v, want %v", op, i, got[i], want[i])
		}
	}
}

// TestSplitLaunches shrinks the binding limit so every operation runs as several
// launches, and compares the stitched result with the reference kernels.
func TestSplitLaunches(t *testing.T) {
	backend := newTestBackend(t)
	backend.maxBinding = 1024 // 256 floats per binding.
	ref := reference.New()

	t.Run("SetVectorToMatrixRows", func(t *testing.T) {
		const height, width = 37, 24
		vector := ramp(width, 1)
		want, got := make([]float32, height*width), make([]float32, height*width)
		_ = ref.SetVectorToMatrixRows(want, height, width, vector)
		if err := backend.SetVectorToMatrixRows(got, height, width, vector); err != nil {
			t.Fatal(err)
		}
		assertClose(t, "SetVectorToMatrixRows", want, got, 0)
	})

	t.Run("AddVectorToMatrixRows", func(t *testing.T) {
		const batch, height, width = 3, 11, 20
		matrix, vector := ramp(batch*height*width, 0.5), ramp(width, 2)
		want, got := make([]float32, len(matrix)), make([]float32, len(matrix))
		_ = ref.AddVectorToMatrixRows(batch, matrix, want, height, width, vector)
		if err := backend.AddVectorToMatrixRows(batch, matrix, got, height, width, vector); err != nil {
			t.Fatal(err)
		}
		assertClose(t, "AddVectorToMatrixRows", want, got, 0)
	})

	t.Run("Vector", func(t *testing.T) {
		const n = 1000
		first, second := ramp(n, 1), ramp(n, 0.25)
		want, got := make([]float32, n), make([]float32, n)
		_ = ref.VectorEltwiseMultiply(first, second, want)
		if err := backend.VectorEltwiseMultiply(first, second, got); err != nil {
			t.Fatal(err)
		}
		assertClose(t, "VectorEltwiseMultiply", want, got, 0)

		_ = ref.VectorMultiply(first, want, 1.5)
		if err := backend.VectorMultiply(first, got, 1.5); err != nil {
			t.Fatal(err)
		}
		assertClose(t, "VectorMultiply", want, got, 0)
	})

	t.Run("MultiplyTransposedMatrixByMatrix", func(t *testing.T) {
		const batch, height, width, secondWidth = 5, 6, 7, 8
		first, second := ramp(batch*height*width, 0.5), ramp(batch*height*secondWidth, 0.25)
		want, got := ramp(batch*width*secondWidth, 1), ramp(batch*width*secondWidth, 1)
		_ = ref.MultiplyTransposedMatrixByMatrix(batch, first, height, width, second, secondWidth, want, len(want))
		if err := backend.MultiplyTransposedMatrixByMatrix(batch, first, height, width, second, secondWidth, got, len(got)); err != nil {
			t.Fatal(err)
		}
		assertClose(t, "MultiplyTransposedMatrixByMatrix", want, got, 1e-3)
	})

	t.Run("RandomMatrixDropout", func(t *testing.T) {
		const height, width = 40, 30
		first := ramp(height*width, 1)
		want, got := make([]float32, len(first)), make([]float32, len(first))
		_ = ref.RandomMatrixDropout(first, height, width, want, 42, 0.5)
		if err := backend.RandomMatrixDropout(first, height, width, got, 42, 0.5); err != nil {
			t.Fatal(err)
		}
		assertClose(t, "RandomMatrixDropout", want, got, 1e-5)
	})

	t.Run("RandomSpatialDropout", func(t *testing.T) {
		const objects, objectSize, maskCount, maskSize = 20, 34, 3, 8
		input := ramp(objects*objectSize, 1)
		want, got := ramp(len(input), -1), ramp(len(input), -1)
		_ = ref.RandomSpatialDropout(input, want, objects, objectSize, maskCount, maskSize, 7, 0.6)
		if err := backend.RandomSpatialDropout(input, got, objects, objectSize, maskCount, maskSize, 7, 0.6); err != nil {
			t.Fatal(err)
		}
		assertClose(t, "RandomSpatialDropout", want, got, 1e-5)
	})
}

func TestOversizeUnitDeclined(t *testing.T) {
	backend := newTestBackend(t)
	backend.maxBinding = 64 // 16 floats.

	result := make([]float32, 4*32)
	err := backend.SetVectorToMatrixRows(result, 4, 32, make([]float32, 32))
	if !tensor.IsUnsupported(err) {
		t.Fatalf("expected an unsupported error for a 128-byte row, got %v", err)
	}

	// Rows that fit still run.
	if err := backend.SetVectorToMatrixRows(result, 8, 16, make([]float32, 16)); err != nil {
		t.Fatal(err)
	}
}

func TestPackParams(t *testing.T) {
	tests := []struct {
		words int
		size  int
	}{
		{0, 0},
		{1, 16},
		{4, 16},
		{5, 32},
		{12, 48},
	}
	for _, tt := range tests {
		params := packParams(make([]uint32, tt.words)...)
		if len(params) != tt.size {
			t.Errorf("packParams(%d words) = %d bytes, want %d", tt.words, len(params), tt.size)
		}
	}

	params := packParams(1, 0x01020304)
	if params[0] != 1 || params[4] != 4 || params[7] != 1 {
		t.Errorf("packParams is not little-endian: %v", params[:8])
	}
}

func TestDispatchSize(t *testing.T) {
	tests := []struct {
		workgroups int
		x, y       uint32
	}{
		{1, 1, 1},
		{65535, 65535, 1},
		{65536, 65535, 2},
		{272384, 65535, 5},
	}
	for _, tt := range tests {
		x, y := dispatchSize(tt.workgroups)
		if x != tt.x || y != tt.y {
			t.Errorf("dispatchSize(%d) = (%d, %d), want (%d, %d)", tt.workgroups, x, y, tt.x, tt.y)
		}
		if int(x)*int(y) < tt.workgroups {
			t.Errorf("dispatchSize(%d) covers only %d workgroups", tt.workgroups, int(x)*int(y))
		}
	}
}
