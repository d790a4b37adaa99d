package cpu

import "github.com/born-ml/mathengine/internal/tensor"

// VectorFill sets every element of result to value.
func (cpu *CPUBackend) VectorFill(result []float32, value float32) error {
	for i := range result {
		result[i] = value
	}
	return nil
}

// VectorAdd computes result = first + second.
func (cpu *CPUBackend) VectorAdd(first, second, result []float32) error {
	tensor.CheckVectorBinary(cpu.Name(), "VectorAdd", first, second, result)

	first, second = first[:len(result)], second[:len(result)]
	for i := range result {
		result[i] = first[i] + second[i]
	}
	return nil
}

// VectorEltwiseMultiply computes result = first * second element-wise.
func (cpu *CPUBackend) VectorEltwiseMultiply(first, second, result []float32) error {
	tensor.CheckVectorBinary(cpu.Name(), "VectorEltwiseMultiply", first, second, result)

	first, second = first[:len(result)], second[:len(result)]
	for i := range result {
		result[i] = first[i] * second[i]
	}
	return nil
}

// VectorMultiply computes result = first * multiplier.
func (cpu *CPUBackend) VectorMultiply(first, result []float32, multiplier float32) error {
	tensor.CheckVectorUnary(cpu.Name(), "VectorMultiply", first, result)

	first = first[:len(result)]
	for i := range result {
		result[i] = first[i] * multiplier
	}
	return nil
}
