package cpu

import (
	"testing"

	"github.com/born-ml/mathengine/internal/backend/backendtest"
	"github.com/born-ml/mathengine/internal/parallel"
	"github.com/born-ml/mathengine/internal/random"
	"github.com/born-ml/mathengine/internal/tensor"
)

// TestCPUBackend_New tests backend creation.
func TestCPUBackend_New(t *testing.T) {
	backend := New()
	if backend == nil {
		t.Fatal("New() returned nil")
	}
	if backend.Name() != "CPU" {
		t.Errorf("Expected name 'CPU', got '%s'", backend.Name())
	}
	if backend.Device() != tensor.CPU {
		t.Errorf("Expected device CPU, got %v", backend.Device())
	}
}

// TestCPUBackend_Conformance runs the shared backend suite.
func TestCPUBackend_Conformance(t *testing.T) {
	backendtest.Run(t, New())
}

func fourWorkers() parallel.Config {
	return parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}
}

// TestCPUBackend_ParallelConformance runs the shared suite with batches and rows
// spread over goroutines.
func TestCPUBackend_ParallelConformance(t *testing.T) {
	if testing.Short() {
		t.Skip("parallel conformance")
	}
	backendtest.Run(t, New(WithParallel(fourWorkers())))
}

// TestCPUBackend_ParallelMatchesSequential checks that batched kernels give
// bit-identical results on one goroutine and on several.
func TestCPUBackend_ParallelMatchesSequential(t *testing.T) {
	const batch, height, width, inner = 9, 7, 5, 6
	fill := func(n int, scale float32) []float32 {
		data := make([]float32, n)
		for i := range data {
			data[i] = float32(i%11)*scale - 2
		}
		return data
	}
	seq, par := New(), New(WithParallel(fourWorkers()))

	first, second := fill(batch*height*inner, 0.5), fill(batch*inner*width, 0.25)
	want, got := make([]float32, batch*height*width), make([]float32, batch*height*width)
	_ = seq.MultiplyMatrixByMatrix(batch, first, height, inner, second, width, want, len(want))
	_ = par.MultiplyMatrixByMatrix(batch, first, height, inner, second, width, got, len(got))
	assertSame(t, "MultiplyMatrixByMatrix", want, got)

	matrix, vector := fill(batch*height*width, 1), fill(width, 3)
	_ = seq.AddVectorToMatrixRows(batch, matrix, want, height, width, vector)
	_ = par.AddVectorToMatrixRows(batch, matrix, got, height, width, vector)
	assertSame(t, "AddVectorToMatrixRows", want, got)

	sumsWant, sumsGot := make([]float32, batch*width), make([]float32, batch*width)
	_ = seq.SumMatrixRows(batch, sumsWant, matrix, height, width)
	_ = par.SumMatrixRows(batch, sumsGot, matrix, height, width)
	assertSame(t, "SumMatrixRows", sumsWant, sumsGot)
}

func assertSame(t *testing.T, op string, want, got []float32) {
	t.Helper()
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("%s: element %d = %v, want %v", op, i, got[i], want[i])
		}
	}
}

// TestKeepMask checks that the sequential mask matches per-position lookups.
func TestKeepMask(t *testing.T) {
	tests := []struct {
		name        string
		n           int
		seed        int
		forwardRate float32
	}{
		{"single lane", 1, 42, 0.5},
		{"one block", 4, 42, 0.5},
		{"partial block", 7, 3, 0.3},
		{"many blocks", 1031, random.DefaultSeed, 0.8},
		{"keep all", 9, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mask := keepMask(tt.n, tt.seed, tt.forwardRate)
			if len(mask) != tt.n {
				t.Fatalf("len(mask) = %d, want %d", len(mask), tt.n)
			}
			threshold := random.Threshold(tt.forwardRate)
			for i, keep := range mask {
				block := random.At(tt.seed, uint64(i/random.BlockSize))
				want := random.Keep(block[i%random.BlockSize], threshold)
				if keep != want {
					t.Errorf("mask[%d] = %v, want %v", i, keep, want)
				}
			}
		})
	}
}

// TestCPUBackend_DropoutScaling checks kept values are exactly x/p.
func TestCPUBackend_DropoutScaling(t *testing.T) {
	backend := New()
	input := []float32{0.3, -1.7, 2.5, 9, 0.1, -0.25, 3, 4}
	result := make([]float32, len(input))
	const forwardRate = float32(0.7)

	if err := backend.RandomMatrixDropout(input, 2, 4, result, 5, forwardRate); err != nil {
		t.Fatalf("RandomMatrixDropout: %v", err)
	}

	mask := keepMask(4, 5, forwardRate)
	for i, v := range result {
		want := float32(0)
		if mask[i%4] {
			want = input[i] / forwardRate
		}
		if v != want {
			t.Errorf("result[%d] = %v, want %v", i, v, want)
		}
	}
}
