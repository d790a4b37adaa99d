package tensor

import "fmt"

// Precondition checks shared by every backend. Each check panics with a *ContractError
// naming the backend and operation, so all backends reject a bad call the same way.

type contract struct {
	backend string
	op      string
}

func (c contract) fail(format string, args ...any) {
	panic(&ContractError{Backend: c.backend, Op: c.op, Reason: fmt.Sprintf(format, args...)})
}

func (c contract) positive(name string, v int) {
	if v <= 0 {
		c.fail("%s must be positive, got %d", name, v)
	}
}

func (c contract) length(name string, buf []float32, want int) {
	if len(buf) < want {
		c.fail("%s has %d elements, need %d", name, len(buf), want)
	}
}

func (c contract) result(result []float32, resultCapacity, want int) {
	if resultCapacity < want {
		c.fail("result capacity %d is smaller than %d", resultCapacity, want)
	}
	c.length("result", result, want)
}

func (c contract) rate(forwardRate float32) {
	// NaN fails both comparisons.
	if !(forwardRate > 0 && forwardRate <= 1) {
		c.fail("forward rate %v must be in (0, 1]", forwardRate)
	}
}

// CheckMultiplyMatrixByMatrix validates a batched first x second product.
func CheckMultiplyMatrixByMatrix(backend string, batchSize int, first []float32, firstHeight, firstWidth int,
	second []float32, secondWidth int, result []float32, resultCapacity int) {
	c := contract{backend, "MultiplyMatrixByMatrix"}
	c.positive("batch size", batchSize)
	c.positive("first height", firstHeight)
	c.positive("first width", firstWidth)
	c.positive("second width", secondWidth)
	c.length("first", first, Shape{batchSize, firstHeight, firstWidth}.NumElements())
	c.length("second", second, Shape{batchSize, firstWidth, secondWidth}.NumElements())
	c.result(result, resultCapacity, Shape{batchSize, firstHeight, secondWidth}.NumElements())
}

// CheckMultiplyTransposedMatrixByMatrix validates a batched first^T x second product.
func CheckMultiplyTransposedMatrixByMatrix(backend string, batchSize int, first []float32, firstHeight, firstWidth int,
	second []float32, secondWidth int, result []float32, resultCapacity int) {
	c := contract{backend, "MultiplyTransposedMatrixByMatrix"}
	c.positive("batch size", batchSize)
	c.positive("first height", firstHeight)
	c.positive("first width", firstWidth)
	c.positive("second width", secondWidth)
	c.length("first", first, Shape{batchSize, firstHeight, firstWidth}.NumElements())
	c.length("second", second, Shape{batchSize, firstHeight, secondWidth}.NumElements())
	c.result(result, resultCapacity, Shape{batchSize, firstWidth, secondWidth}.NumElements())
}

// CheckMultiplyMatrixByTransposedMatrix validates a batched first x second^T product.
func CheckMultiplyMatrixByTransposedMatrix(backend string, batchSize int, first []float32, firstHeight, firstWidth int,
	second []float32, secondHeight int, result []float32, resultCapacity int) {
	c := contract{backend, "MultiplyMatrixByTransposedMatrix"}
	c.positive("batch size", batchSize)
	c.positive("first height", firstHeight)
	c.positive("first width", firstWidth)
	c.positive("second height", secondHeight)
	c.length("first", first, Shape{batchSize, firstHeight, firstWidth}.NumElements())
	c.length("second", second, Shape{batchSize, secondHeight, firstWidth}.NumElements())
	c.result(result, resultCapacity, Shape{batchSize, firstHeight, secondHeight}.NumElements())
}

// CheckSetVectorToMatrixRows validates a row broadcast.
func CheckSetVectorToMatrixRows(backend string, result []float32, height, width int, vector []float32) {
	c := contract{backend, "SetVectorToMatrixRows"}
	c.positive("height", height)
	c.positive("width", width)
	c.length("vector", vector, width)
	c.length("result", result, Shape{height, width}.NumElements())
}

// CheckAddVectorToMatrixRows validates a batched row broadcast addition.
func CheckAddVectorToMatrixRows(backend string, batchSize int, matrix, result []float32, height, width int, vector []float32) {
	c := contract{backend, "AddVectorToMatrixRows"}
	c.positive("batch size", batchSize)
	c.positive("height", height)
	c.positive("width", width)
	c.length("matrix", matrix, Shape{batchSize, height, width}.NumElements())
	c.length("vector", vector, width)
	c.length("result", result, Shape{batchSize, height, width}.NumElements())
}

// CheckSumMatrixRows validates a batched row reduction.
func CheckSumMatrixRows(backend string, batchSize int, result, matrix []float32, height, width int) {
	c := contract{backend, "SumMatrixRows"}
	c.positive("batch size", batchSize)
	c.positive("height", height)
	c.positive("width", width)
	c.length("matrix", matrix, Shape{batchSize, height, width}.NumElements())
	c.length("result", result, Shape{batchSize, width}.NumElements())
}

// CheckVectorUnary validates an element-wise operation reading first and writing result.
func CheckVectorUnary(backend, op string, first, result []float32) {
	c := contract{backend, op}
	c.length("first", first, len(result))
}

// CheckVectorBinary validates an element-wise operation reading first and second and writing result.
func CheckVectorBinary(backend, op string, first, second, result []float32) {
	c := contract{backend, op}
	c.length("first", first, len(result))
	c.length("second", second, len(result))
}

// CheckMatrixDropout validates RandomMatrixDropout arguments.
func CheckMatrixDropout(backend string, first []float32, firstHeight, firstWidth int, result []float32, forwardRate float32) {
	c := contract{backend, "RandomMatrixDropout"}
	c.positive("first height", firstHeight)
	c.positive("first width", firstWidth)
	c.rate(forwardRate)
	c.length("first", first, Shape{firstHeight, firstWidth}.NumElements())
	c.length("result", result, Shape{firstHeight, firstWidth}.NumElements())
}

// CheckSpatialDropout validates RandomSpatialDropout arguments.
func CheckSpatialDropout(backend string, input, result []float32, inputObjectCount, inputObjectSize,
	maskObjectCount, maskObjectSize int, forwardRate float32) {
	c := contract{backend, "RandomSpatialDropout"}
	c.positive("input object count", inputObjectCount)
	c.positive("input object size", inputObjectSize)
	c.positive("mask object count", maskObjectCount)
	c.positive("mask object size", maskObjectSize)
	if maskObjectSize > inputObjectSize {
		c.fail("mask object size %d exceeds input object size %d", maskObjectSize, inputObjectSize)
	}
	c.rate(forwardRate)
	c.length("input", input, Shape{inputObjectCount, inputObjectSize}.NumElements())
	c.length("result", result, Shape{inputObjectCount, inputObjectSize}.NumElements())
}
