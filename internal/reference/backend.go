package reference

import "github.com/born-ml/mathengine/internal/tensor"

// Backend exposes the naive kernels through the dispatch interface so they can be
// registered and compared like any other backend.
type Backend struct{}

// New returns the reference backend.
func New() *Backend {
	return &Backend{}
}

// Name returns the backend name.
func (r *Backend) Name() string {
	return "Reference"
}

// Device returns the compute device.
func (r *Backend) Device() tensor.Device {
	return tensor.CPU
}

// MultiplyMatrixByMatrix checks the call and runs MultiplyMatrixByMatrix.
func (r *Backend) MultiplyMatrixByMatrix(batchSize int, first []float32, firstHeight, firstWidth int,
	second []float32, secondWidth int, result []float32, resultCapacity int) error {
	tensor.CheckMultiplyMatrixByMatrix(r.Name(), batchSize, first, firstHeight, firstWidth,
		second, secondWidth, result, resultCapacity)
	MultiplyMatrixByMatrix(batchSize, first, firstHeight, firstWidth, second, secondWidth, result)
	return nil
}

// MultiplyTransposedMatrixByMatrix checks the call and runs MultiplyTransposedMatrixByMatrix.
func (r *Backend) MultiplyTransposedMatrixByMatrix(batchSize int, first []float32, firstHeight, firstWidth int,
	second []float32, secondWidth int, result []float32, resultCapacity int) error {
	tensor.CheckMultiplyTransposedMatrixByMatrix(r.Name(), batchSize, first, firstHeight, firstWidth,
		second, secondWidth, result, resultCapacity)
	MultiplyTransposedMatrixByMatrix(batchSize, first, firstHeight, firstWidth, second, secondWidth, result)
	return nil
}

// MultiplyMatrixByTransposedMatrix checks the call and runs MultiplyMatrixByTransposedMatrix.
func (r *Backend) MultiplyMatrixByTransposedMatrix(batchSize int, first []float32, firstHeight, firstWidth int,
	second []float32, secondHeight int, result []float32, resultCapacity int) error {
	tensor.CheckMultiplyMatrixByTransposedMatrix(r.Name(), batchSize, first, firstHeight, firstWidth,
		second, secondHeight, result, resultCapacity)
	MultiplyMatrixByTransposedMatrix(batchSize, first, firstHeight, firstWidth, second, secondHeight, result)
	return nil
}

// SetVectorToMatrixRows checks the call and runs SetVectorToMatrixRows.
func (r *Backend) SetVectorToMatrixRows(result []float32, height, width int, vector []float32) error {
	tensor.CheckSetVectorToMatrixRows(r.Name(), result, height, width, vector)
	SetVectorToMatrixRows(result, height, width, vector)
	return nil
}

// AddVectorToMatrixRows checks the call and runs AddVectorToMatrixRows.
func (r *Backend) AddVectorToMatrixRows(batchSize int, matrix, result []float32, height, width int, vector []float32) error {
	tensor.CheckAddVectorToMatrixRows(r.Name(), batchSize, matrix, result, height, width, vector)
	AddVectorToMatrixRows(batchSize, matrix, result, height, width, vector)
	return nil
}

// SumMatrixRows checks the call and runs SumMatrixRows.
func (r *Backend) SumMatrixRows(batchSize int, result, matrix []float32, height, width int) error {
	tensor.CheckSumMatrixRows(r.Name(), batchSize, result, matrix, height, width)
	SumMatrixRows(batchSize, result, matrix, height, width)
	return nil
}

// VectorFill runs VectorFill. Any length is accepted.
func (r *Backend) VectorFill(result []float32, value float32) error {
	VectorFill(result, value)
	return nil
}

// VectorAdd checks the call and runs VectorAdd.
func (r *Backend) VectorAdd(first, second, result []float32) error {
	tensor.CheckVectorBinary(r.Name(), "VectorAdd", first, second, result)
	VectorAdd(first, second, result)
	return nil
}

// VectorEltwiseMultiply checks the call and runs VectorEltwiseMultiply.
func (r *Backend) VectorEltwiseMultiply(first, second, result []float32) error {
	tensor.CheckVectorBinary(r.Name(), "VectorEltwiseMultiply", first, second, result)
	VectorEltwiseMultiply(first, second, result)
	return nil
}

// VectorMultiply checks the call and runs VectorMultiply.
func (r *Backend) VectorMultiply(first, result []float32, multiplier float32) error {
	tensor.CheckVectorUnary(r.Name(), "VectorMultiply", first, result)
	VectorMultiply(first, result, multiplier)
	return nil
}

// RandomMatrixDropout checks the call and runs RandomMatrixDropout.
func (r *Backend) RandomMatrixDropout(first []float32, firstHeight, firstWidth int, result []float32,
	seed int, forwardRate float32) error {
	tensor.CheckMatrixDropout(r.Name(), first, firstHeight, firstWidth, result, forwardRate)
	RandomMatrixDropout(first, firstHeight, firstWidth, result, seed, forwardRate)
	return nil
}

// RandomSpatialDropout checks the call and runs RandomSpatialDropout.
func (r *Backend) RandomSpatialDropout(input, result []float32, inputObjectCount, inputObjectSize,
	maskObjectCount, maskObjectSize, seed int, forwardRate float32) error {
	tensor.CheckSpatialDropout(r.Name(), input, result, inputObjectCount, inputObjectSize,
		maskObjectCount, maskObjectSize, forwardRate)
	RandomSpatialDropout(input, result, inputObjectCount, inputObjectSize, maskObjectCount, maskObjectSize, seed, forwardRate)
	return nil
}

var _ tensor.Backend = (*Backend)(nil)
