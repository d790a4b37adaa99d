package cpu

import (
	"github.com/born-ml/mathengine/internal/tensor"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// general wraps a rows x cols row-major block of data starting at offset.
func general(data []float32, offset, rows, cols int) blas32.General {
	return blas32.General{
		Rows:   rows,
		Cols:   cols,
		Stride: cols,
		Data:   data[offset : offset+rows*cols],
	}
}

// MultiplyMatrixByMatrix computes result[b] = first[b] @ second[b].
// Shapes: [B, M, K] @ [B, K, N] -> [B, M, N].
func (cpu *CPUBackend) MultiplyMatrixByMatrix(batchSize int, first []float32, firstHeight, firstWidth int,
	second []float32, secondWidth int, result []float32, resultCapacity int) error {
	tensor.CheckMultiplyMatrixByMatrix(cpu.Name(), batchSize, first, firstHeight, firstWidth,
		second, secondWidth, result, resultCapacity)

	cpu.forEachBatch(batchSize, func(b int) {
		a := general(first, b*firstHeight*firstWidth, firstHeight, firstWidth)
		s := general(second, b*firstWidth*secondWidth, firstWidth, secondWidth)
		c := general(result, b*firstHeight*secondWidth, firstHeight, secondWidth)
		blas32.Gemm(blas.NoTrans, blas.NoTrans, 1, a, s, 0, c)
	})
	return nil
}

// MultiplyTransposedMatrixByMatrix computes result[b] += first[b]^T @ second[b].
// Shapes: [B, K, M]^T @ [B, K, N] -> [B, M, N], K = firstHeight.
// Accumulates into result (beta = 1).
func (cpu *CPUBackend) MultiplyTransposedMatrixByMatrix(batchSize int, first []float32, firstHeight, firstWidth int,
	second []float32, secondWidth int, result []float32, resultCapacity int) error {
	tensor.CheckMultiplyTransposedMatrixByMatrix(cpu.Name(), batchSize, first, firstHeight, firstWidth,
		second, secondWidth, result, resultCapacity)

	cpu.forEachBatch(batchSize, func(b int) {
		a := general(first, b*firstHeight*firstWidth, firstHeight, firstWidth)
		s := general(second, b*firstHeight*secondWidth, firstHeight, secondWidth)
		c := general(result, b*firstWidth*secondWidth, firstWidth, secondWidth)
		blas32.Gemm(blas.Trans, blas.NoTrans, 1, a, s, 1, c)
	})
	return nil
}

// MultiplyMatrixByTransposedMatrix computes result[b] = first[b] @ second[b]^T.
// Shapes: [B, M, K] @ [B, N, K]^T -> [B, M, N].
func (cpu *CPUBackend) MultiplyMatrixByTransposedMatrix(batchSize int, first []float32, firstHeight, firstWidth int,
	second []float32, secondHeight int, result []float32, resultCapacity int) error {
	tensor.CheckMultiplyMatrixByTransposedMatrix(cpu.Name(), batchSize, first, firstHeight, firstWidth,
		second, secondHeight, result, resultCapacity)

	cpu.forEachBatch(batchSize, func(b int) {
		a := general(first, b*firstHeight*firstWidth, firstHeight, firstWidth)
		s := general(second, b*secondHeight*firstWidth, secondHeight, firstWidth)
		c := general(result, b*firstHeight*secondHeight, firstHeight, secondHeight)
		blas32.Gemm(blas.NoTrans, blas.Trans, 1, a, s, 0, c)
	})
	return nil
}
