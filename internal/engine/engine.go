package engine

import (
	"context"
	"log/slog"

	"github.com/born-ml/mathengine/internal/dropout"
	"github.com/born-ml/mathengine/internal/tensor"
)

// MathEngine dispatches the operation catalogue to one backend and logs every call.
// It implements tensor.Backend itself, so it can stand in wherever a backend is expected.
type MathEngine struct {
	backend tensor.Backend
	log     *slog.Logger
}

// New wraps b. A nil logger means slog.Default().
func New(b tensor.Backend, log *slog.Logger) *MathEngine {
	if log == nil {
		log = slog.Default()
	}
	return &MathEngine{backend: b, log: log}
}

// Backend returns the wrapped backend.
func (e *MathEngine) Backend() tensor.Backend {
	return e.backend
}

// Name returns the backend name.
func (e *MathEngine) Name() string {
	return e.backend.Name()
}

// Device returns the backend device.
func (e *MathEngine) Device() tensor.Device {
	return e.backend.Device()
}

// Release frees the wrapped backend's device resources.
func (e *MathEngine) Release() {
	Release(e.backend)
}

func (e *MathEngine) dispatch(op string, err error) error {
	if !e.log.Enabled(context.Background(), slog.LevelDebug) {
		return err
	}
	switch {
	case tensor.IsUnsupported(err):
		e.log.Debug("declined", "op", op, "backend", e.backend.Name())
	case err != nil:
		e.log.Debug("failed", "op", op, "backend", e.backend.Name(), "error", err)
	default:
		e.log.Debug("dispatch", "op", op, "backend", e.backend.Name())
	}
	return err
}

// MultiplyMatrixByMatrix computes result = first * second for each batch item.
func (e *MathEngine) MultiplyMatrixByMatrix(batchSize int, first []float32, firstHeight, firstWidth int,
	second []float32, secondWidth int, result []float32, resultCapacity int) error {
	return e.dispatch("MultiplyMatrixByMatrix", e.backend.MultiplyMatrixByMatrix(batchSize, first, firstHeight, firstWidth,
		second, secondWidth, result, resultCapacity))
}

// MultiplyTransposedMatrixByMatrix computes result = first^T * second for each batch item.
func (e *MathEngine) MultiplyTransposedMatrixByMatrix(batchSize int, first []float32, firstHeight, firstWidth int,
	second []float32, secondWidth int, result []float32, resultCapacity int) error {
	return e.dispatch("MultiplyTransposedMatrixByMatrix", e.backend.MultiplyTransposedMatrixByMatrix(batchSize, first,
		firstHeight, firstWidth, second, secondWidth, result, resultCapacity))
}

// MultiplyMatrixByTransposedMatrix computes result = first * second^T for each batch item.
func (e *MathEngine) MultiplyMatrixByTransposedMatrix(batchSize int, first []float32, firstHeight, firstWidth int,
	second []float32, secondHeight int, result []float32, resultCapacity int) error {
	return e.dispatch("MultiplyMatrixByTransposedMatrix", e.backend.MultiplyMatrixByTransposedMatrix(batchSize, first,
		firstHeight, firstWidth, second, secondHeight, result, resultCapacity))
}

// SetVectorToMatrixRows copies vector into every row of result.
func (e *MathEngine) SetVectorToMatrixRows(result []float32, height, width int, vector []float32) error {
	return e.dispatch("SetVectorToMatrixRows", e.backend.SetVectorToMatrixRows(result, height, width, vector))
}

// AddVectorToMatrixRows adds vector to every row of matrix.
func (e *MathEngine) AddVectorToMatrixRows(batchSize int, matrix, result []float32, height, width int, vector []float32) error {
	return e.dispatch("AddVectorToMatrixRows", e.backend.AddVectorToMatrixRows(batchSize, matrix, result, height, width, vector))
}

// SumMatrixRows adds the rows of each batch item into one row of result.
func (e *MathEngine) SumMatrixRows(batchSize int, result, matrix []float32, height, width int) error {
	return e.dispatch("SumMatrixRows", e.backend.SumMatrixRows(batchSize, result, matrix, height, width))
}

// VectorFill sets every element of result to value.
func (e *MathEngine) VectorFill(result []float32, value float32) error {
	return e.dispatch("VectorFill", e.backend.VectorFill(result, value))
}

// VectorAdd computes result = first + second.
func (e *MathEngine) VectorAdd(first, second, result []float32) error {
	return e.dispatch("VectorAdd", e.backend.VectorAdd(first, second, result))
}

// VectorEltwiseMultiply computes result = first * second element by element.
func (e *MathEngine) VectorEltwiseMultiply(first, second, result []float32) error {
	return e.dispatch("VectorEltwiseMultiply", e.backend.VectorEltwiseMultiply(first, second, result))
}

// VectorMultiply scales first by multiplier.
func (e *MathEngine) VectorMultiply(first, result []float32, multiplier float32) error {
	return e.dispatch("VectorMultiply", e.backend.VectorMultiply(first, result, multiplier))
}

// RandomMatrixDropout zeroes columns of first with a mask shared by all rows.
func (e *MathEngine) RandomMatrixDropout(first []float32, firstHeight, firstWidth int, result []float32,
	seed int, forwardRate float32) error {
	return e.dispatch("RandomMatrixDropout", e.backend.RandomMatrixDropout(first, firstHeight, firstWidth, result,
		seed, forwardRate))
}

// RandomSpatialDropout zeroes whole channels, one mask per pack of objects.
func (e *MathEngine) RandomSpatialDropout(input, result []float32, inputObjectCount, inputObjectSize,
	maskObjectCount, maskObjectSize, seed int, forwardRate float32) error {
	return e.dispatch("RandomSpatialDropout", e.backend.RandomSpatialDropout(input, result, inputObjectCount,
		inputObjectSize, maskObjectCount, maskObjectSize, seed, forwardRate))
}

// Dropout applies the dropout described by desc, picking the matrix or spatial kernel
// from its geometry.
func (e *MathEngine) Dropout(desc *dropout.Desc, input, output []float32) error {
	if desc.IsIdentity() {
		e.log.Debug("dropout is identity", "backend", e.backend.Name())
	}
	return dropout.Apply(e, desc, input, output)
}

var _ tensor.Backend = (*MathEngine)(nil)
