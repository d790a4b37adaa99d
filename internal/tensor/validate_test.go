package tensor

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractViolation(t *testing.T, fn func()) *ContractError {
	t.Helper()
	var got *ContractError
	func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			err, ok := r.(*ContractError)
			require.True(t, ok, "panic value %T is not *ContractError", r)
			got = err
		}()
		fn()
	}()
	return got
}

func TestUnsupported(t *testing.T) {
	err := Unsupported("WebGPU", "SumMatrixRows")
	assert.True(t, IsUnsupported(err))
	assert.True(t, errors.Is(err, ErrUnsupported))
	assert.Equal(t, "WebGPU: SumMatrixRows: operation not supported by backend", err.Error())

	assert.True(t, IsUnsupported(fmt.Errorf("engine: %w", err)))
	assert.False(t, IsUnsupported(errors.New("device lost")))
	assert.False(t, IsUnsupported(nil))
}

func TestChecks_Accept(t *testing.T) {
	buf := make([]float32, 64)
	checks := map[string]func(){
		"MultiplyMatrixByMatrix": func() {
			CheckMultiplyMatrixByMatrix("t", 2, buf, 2, 3, buf, 4, buf, 16)
		},
		"MultiplyTransposedMatrixByMatrix": func() {
			CheckMultiplyTransposedMatrixByMatrix("t", 2, buf, 2, 3, buf, 4, buf, 24)
		},
		"MultiplyMatrixByTransposedMatrix": func() {
			CheckMultiplyMatrixByTransposedMatrix("t", 2, buf, 2, 3, buf, 4, buf, 16)
		},
		"SetVectorToMatrixRows": func() { CheckSetVectorToMatrixRows("t", buf, 8, 8, buf) },
		"AddVectorToMatrixRows": func() { CheckAddVectorToMatrixRows("t", 2, buf, buf, 4, 8, buf) },
		"SumMatrixRows":         func() { CheckSumMatrixRows("t", 2, buf, buf, 4, 8) },
		"VectorBinary":          func() { CheckVectorBinary("t", "VectorAdd", buf, buf, buf[:10]) },
		"MatrixDropout":         func() { CheckMatrixDropout("t", buf, 8, 8, buf, 1) },
		"SpatialDropout":        func() { CheckSpatialDropout("t", buf, buf, 4, 16, 2, 16, 0.5) },
	}
	for name, fn := range checks {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, fn)
		})
	}
}

func TestChecks_Reject(t *testing.T) {
	buf := make([]float32, 16)
	tests := []struct {
		name   string
		op     string
		reason string
		fn     func()
	}{
		{"zero batch", "MultiplyMatrixByMatrix", "batch size must be positive, got 0", func() {
			CheckMultiplyMatrixByMatrix("t", 0, buf, 2, 2, buf, 2, buf, 4)
		}},
		{"short capacity", "MultiplyMatrixByMatrix", "result capacity 3 is smaller than 4", func() {
			CheckMultiplyMatrixByMatrix("t", 1, buf, 2, 2, buf, 2, buf, 3)
		}},
		{"short second", "MultiplyMatrixByTransposedMatrix", "second has 16 elements, need 20", func() {
			CheckMultiplyMatrixByTransposedMatrix("t", 1, buf, 2, 4, buf, 5, buf, 16)
		}},
		{"short vector", "SetVectorToMatrixRows", "vector has 3 elements, need 4", func() {
			CheckSetVectorToMatrixRows("t", buf, 4, 4, buf[:3])
		}},
		{"short first", "VectorMultiply", "first has 2 elements, need 4", func() {
			CheckVectorUnary("t", "VectorMultiply", buf[:2], buf[:4])
		}},
		{"zero rate", "RandomMatrixDropout", "forward rate 0 must be in (0, 1]", func() {
			CheckMatrixDropout("t", buf, 4, 4, buf, 0)
		}},
		{"mask wider than object", "RandomSpatialDropout", "mask object size 8 exceeds input object size 4", func() {
			CheckSpatialDropout("t", buf, buf, 4, 4, 1, 8, 0.5)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := contractViolation(t, tt.fn)
			require.NotNil(t, err, "no contract violation")
			assert.Equal(t, "t", err.Backend)
			assert.Equal(t, tt.op, err.Op)
			assert.Equal(t, tt.reason, err.Reason)
		})
	}
}

func TestCheckMatrixDropout_NaNRate(t *testing.T) {
	buf := make([]float32, 4)
	err := contractViolation(t, func() {
		CheckMatrixDropout("t", buf, 2, 2, buf, float32(math.NaN()))
	})
	require.NotNil(t, err)
	assert.Equal(t, "RandomMatrixDropout", err.Op)
}
