package cpu

import (
	"github.com/born-ml/mathengine/internal/parallel"
	"github.com/born-ml/mathengine/internal/tensor"
)

// SetVectorToMatrixRows copies vector into every row of result.
func (cpu *CPUBackend) SetVectorToMatrixRows(result []float32, height, width int, vector []float32) error {
	tensor.CheckSetVectorToMatrixRows(cpu.Name(), result, height, width, vector)

	vector = vector[:width]
	for i := 0; i < height; i++ {
		copy(result[i*width:(i+1)*width], vector)
	}
	return nil
}

// AddVectorToMatrixRows computes result = matrix + vector for every row.
func (cpu *CPUBackend) AddVectorToMatrixRows(batchSize int, matrix, result []float32, height, width int, vector []float32) error {
	tensor.CheckAddVectorToMatrixRows(cpu.Name(), batchSize, matrix, result, height, width, vector)

	vector = vector[:width]
	parallel.ForBatch(batchSize, height, func(b, i int) {
		r := b*height + i
		src := matrix[r*width : (r+1)*width]
		dst := result[r*width : (r+1)*width]
		for j, v := range vector {
			dst[j] = src[j] + v
		}
	}, cpu.parallel)
	return nil
}

// SumMatrixRows writes the column sums of each matrix into result[b].
// Rows are added in order, top to bottom.
func (cpu *CPUBackend) SumMatrixRows(batchSize int, result, matrix []float32, height, width int) error {
	tensor.CheckSumMatrixRows(cpu.Name(), batchSize, result, matrix, height, width)

	cpu.forEachBatch(batchSize, func(b int) {
		dst := result[b*width : (b+1)*width]
		copy(dst, matrix[b*height*width:b*height*width+width])
		for i := 1; i < height; i++ {
			row := matrix[(b*height+i)*width : (b*height+i+1)*width]
			for j, v := range row {
				dst[j] += v
			}
		}
	})
	return nil
}
