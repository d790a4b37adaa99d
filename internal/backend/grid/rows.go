package grid

import "github.com/born-ml/mathengine/internal/tensor"

// SetVectorToMatrixRows copies vector into every row, one task per element.
func (g *GridBackend) SetVectorToMatrixRows(result []float32, height, width int, vector []float32) error {
	tensor.CheckSetVectorToMatrixRows(g.Name(), result, height, width, vector)

	g.run2D(height, width, func(row, col int) {
		result[row*width+col] = vector[col]
	})
	return nil
}

// AddVectorToMatrixRows computes result = matrix + vector, one task per element.
func (g *GridBackend) AddVectorToMatrixRows(batchSize int, matrix, result []float32, height, width int, vector []float32) error {
	tensor.CheckAddVectorToMatrixRows(g.Name(), batchSize, matrix, result, height, width, vector)

	g.run2D(batchSize*height, width, func(row, col int) {
		index := row*width + col
		result[index] = matrix[index] + vector[col]
	})
	return nil
}

// SumMatrixRows writes column sums, one task per output column reducing top to bottom.
func (g *GridBackend) SumMatrixRows(batchSize int, result, matrix []float32, height, width int) error {
	tensor.CheckSumMatrixRows(g.Name(), batchSize, result, matrix, height, width)

	g.run2D(batchSize, width, func(b, col int) {
		column := matrix[b*height*width+col:]
		var sum float32
		for i := 0; i < height; i++ {
			sum += column[i*width]
		}
		result[b*width+col] = sum
	})
	return nil
}
