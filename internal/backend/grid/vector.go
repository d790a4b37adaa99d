package grid

import "github.com/born-ml/mathengine/internal/tensor"

// VectorFill sets every element of result to value.
func (g *GridBackend) VectorFill(result []float32, value float32) error {
	g.run(len(result), func(i int) {
		if i < len(result) {
			result[i] = value
		}
	})
	return nil
}

// VectorAdd computes result = first + second.
func (g *GridBackend) VectorAdd(first, second, result []float32) error {
	tensor.CheckVectorBinary(g.Name(), "VectorAdd", first, second, result)

	g.run(len(result), func(i int) {
		if i < len(result) {
			result[i] = first[i] + second[i]
		}
	})
	return nil
}

// VectorEltwiseMultiply computes result = first * second element-wise.
func (g *GridBackend) VectorEltwiseMultiply(first, second, result []float32) error {
	tensor.CheckVectorBinary(g.Name(), "VectorEltwiseMultiply", first, second, result)

	g.run(len(result), func(i int) {
		if i < len(result) {
			result[i] = first[i] * second[i]
		}
	})
	return nil
}

// VectorMultiply computes result = first * multiplier.
func (g *GridBackend) VectorMultiply(first, result []float32, multiplier float32) error {
	tensor.CheckVectorUnary(g.Name(), "VectorMultiply", first, result)

	g.run(len(result), func(i int) {
		if i < len(result) {
			result[i] = first[i] * multiplier
		}
	})
	return nil
}
