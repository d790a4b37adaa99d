package grid

import "github.com/born-ml/mathengine/internal/tensor"

// MultiplyMatrixByMatrix computes result[b] = first[b] @ second[b], one task per output element.
func (g *GridBackend) MultiplyMatrixByMatrix(batchSize int, first []float32, firstHeight, firstWidth int,
	second []float32, secondWidth int, result []float32, resultCapacity int) error {
	tensor.CheckMultiplyMatrixByMatrix(g.Name(), batchSize, first, firstHeight, firstWidth,
		second, secondWidth, result, resultCapacity)

	g.run3D(batchSize, firstHeight, secondWidth, func(b, i, j int) {
		a := first[(b*firstHeight+i)*firstWidth:][:firstWidth]
		s := second[b*firstWidth*secondWidth+j:]
		var sum float32
		for k, v := range a {
			sum += v * s[k*secondWidth]
		}
		result[(b*firstHeight+i)*secondWidth+j] = sum
	})
	return nil
}

// MultiplyTransposedMatrixByMatrix computes result[b] += first[b]^T @ second[b],
// one task per output element reducing over firstHeight.
func (g *GridBackend) MultiplyTransposedMatrixByMatrix(batchSize int, first []float32, firstHeight, firstWidth int,
	second []float32, secondWidth int, result []float32, resultCapacity int) error {
	tensor.CheckMultiplyTransposedMatrixByMatrix(g.Name(), batchSize, first, firstHeight, firstWidth,
		second, secondWidth, result, resultCapacity)

	g.run3D(batchSize, firstWidth, secondWidth, func(b, i, j int) {
		a := first[b*firstHeight*firstWidth+i:]
		s := second[b*firstHeight*secondWidth+j:]
		var sum float32
		for k := 0; k < firstHeight; k++ {
			sum += a[k*firstWidth] * s[k*secondWidth]
		}
		result[(b*firstWidth+i)*secondWidth+j] += sum
	})
	return nil
}

// MultiplyMatrixByTransposedMatrix computes result[b] = first[b] @ second[b]^T,
// one task per output element.
func (g *GridBackend) MultiplyMatrixByTransposedMatrix(batchSize int, first []float32, firstHeight, firstWidth int,
	second []float32, secondHeight int, result []float32, resultCapacity int) error {
	tensor.CheckMultiplyMatrixByTransposedMatrix(g.Name(), batchSize, first, firstHeight, firstWidth,
		second, secondHeight, result, resultCapacity)

	g.run3D(batchSize, firstHeight, secondHeight, func(b, i, j int) {
		a := first[(b*firstHeight+i)*firstWidth:][:firstWidth]
		s := second[(b*secondHeight+j)*firstWidth:][:firstWidth]
		var sum float32
		for k, v := range a {
			sum += v * s[k]
		}
		result[(b*firstHeight+i)*secondHeight+j] = sum
	})
	return nil
}
