package tensor

// Backend defines the operation catalogue that all compute backends must implement.
// Backends operate on caller-allocated dense float32 buffers in row-major order
// and never reallocate or resize them.
//
// Implementations:
//   - CPU: sequential reference loops, GEMM through gonum BLAS
//   - Grid: GPU-style launch of independent tasks over a padded grid
//   - WebGPU: WGSL compute shaders (windows)
//
// Every operation returns nil on success. The only error a backend returns is one
// wrapping ErrUnsupported, meaning the backend has no kernel for the operation;
// callers skip such combinations instead of treating them as failures.
// Shape or length mismatches are contract violations and panic with a *ContractError
// before anything is written.
type Backend interface {
	// Metadata.
	Name() string   // Backend name (e.g., "CPU", "Grid").
	Device() Device // Device type.

	// MultiplyMatrixByMatrix computes result[b] = first[b] * second[b] for every batch element.
	// first is batch x firstHeight x firstWidth, second is batch x firstWidth x secondWidth,
	// result is batch x firstHeight x secondWidth and is overwritten.
	MultiplyMatrixByMatrix(batchSize int, first []float32, firstHeight, firstWidth int,
		second []float32, secondWidth int, result []float32, resultCapacity int) error

	// MultiplyTransposedMatrixByMatrix computes result[b] += first[b]^T * second[b].
	// first is batch x firstHeight x firstWidth, second is batch x firstHeight x secondWidth,
	// result is batch x firstWidth x secondWidth. The product is added to the existing
	// contents of result; zero it first for a fresh product.
	MultiplyTransposedMatrixByMatrix(batchSize int, first []float32, firstHeight, firstWidth int,
		second []float32, secondWidth int, result []float32, resultCapacity int) error

	// MultiplyMatrixByTransposedMatrix computes result[b] = first[b] * second[b]^T.
	// first is batch x firstHeight x firstWidth, second is batch x secondHeight x firstWidth,
	// result is batch x firstHeight x secondHeight and is overwritten.
	MultiplyMatrixByTransposedMatrix(batchSize int, first []float32, firstHeight, firstWidth int,
		second []float32, secondHeight int, result []float32, resultCapacity int) error

	// SetVectorToMatrixRows copies vector into every row of the height x width result.
	SetVectorToMatrixRows(result []float32, height, width int, vector []float32) error

	// AddVectorToMatrixRows computes result = matrix + vector for every row of every batch element.
	AddVectorToMatrixRows(batchSize int, matrix, result []float32, height, width int, vector []float32) error

	// SumMatrixRows writes the column sums of each height x width matrix into result[b].
	SumMatrixRows(batchSize int, result, matrix []float32, height, width int) error

	// Element-wise operations over len(result) values.
	VectorFill(result []float32, value float32) error
	VectorAdd(first, second, result []float32) error
	VectorEltwiseMultiply(first, second, result []float32) error
	VectorMultiply(first, result []float32, multiplier float32) error

	// RandomMatrixDropout applies inverted dropout to a firstHeight x firstWidth matrix.
	// The keep decision for element (row, col) is lane col%4 of the generator block col/4,
	// so every row shares the same mask. Kept values are divided by forwardRate.
	RandomMatrixDropout(first []float32, firstHeight, firstWidth int, result []float32,
		seed int, forwardRate float32) error

	// RandomSpatialDropout applies inverted dropout where one decision is shared by every
	// position of a mask object. Each input object of inputObjectSize values is split into
	// rows of maskObjectSize; the decision for (obj, row, col) is taken at logical position
	// (obj%maskObjectCount)*maskObjectSize + col.
	RandomSpatialDropout(input, result []float32, inputObjectCount, inputObjectSize,
		maskObjectCount, maskObjectSize, seed int, forwardRate float32) error
}
