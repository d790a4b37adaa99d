//go:build windows

package webgpu

import (
	taskgrid "github.com/born-ml/mathengine/internal/grid"
	"github.com/born-ml/mathengine/internal/random"
	"github.com/born-ml/mathengine/internal/tensor"
)

// gemm dispatches gemmShader over batch x height x width outputs. Batch items are
// the unit of splitting: aBatch and sBatch are the per-item sizes of first and second.
func (b *Backend) gemm(op string, batch, height, width, inner int, first, second, result []float32,
	aBatch, aRow, aInner, sBatch, sInner, sCol int, accumulate bool) error {
	acc := uint32(0)
	if accumulate {
		acc = 1
	}
	plane := height * width
	return b.split(op, batch, max(aBatch, sBatch, plane), func(lo, hi int) error {
		n := (hi - lo) * plane
		return b.run(kernel{
			name:     "gemm",
			code:     gemmShader,
			inputs:   [][]float32{first[lo*aBatch : hi*aBatch], second[lo*sBatch : hi*sBatch]},
			output:   result[lo*plane : hi*plane],
			preserve: accumulate,
			params: []uint32{
				u32(height), u32(width), u32(inner), u32(n),
				u32(aBatch), u32(aRow), u32(aInner), acc,
				u32(sBatch), u32(sInner), u32(sCol), 0,
			},
			tasks: n,
		})
	})
}

// MultiplyMatrixByMatrix computes result[b] = first[b] @ second[b].
func (b *Backend) MultiplyMatrixByMatrix(batchSize int, first []float32, firstHeight, firstWidth int,
	second []float32, secondWidth int, result []float32, resultCapacity int) error {
	tensor.CheckMultiplyMatrixByMatrix(b.Name(), batchSize, first, firstHeight, firstWidth,
		second, secondWidth, result, resultCapacity)

	return b.gemm("MultiplyMatrixByMatrix", batchSize, firstHeight, secondWidth, firstWidth,
		first[:batchSize*firstHeight*firstWidth], second[:batchSize*firstWidth*secondWidth], result,
		firstHeight*firstWidth, firstWidth, 1,
		firstWidth*secondWidth, secondWidth, 1,
		false)
}

// MultiplyTransposedMatrixByMatrix computes result[b] += first[b]^T @ second[b].
func (b *Backend) MultiplyTransposedMatrixByMatrix(batchSize int, first []float32, firstHeight, firstWidth int,
	second []float32, secondWidth int, result []float32, resultCapacity int) error {
	tensor.CheckMultiplyTransposedMatrixByMatrix(b.Name(), batchSize, first, firstHeight, firstWidth,
		second, secondWidth, result, resultCapacity)

	return b.gemm("MultiplyTransposedMatrixByMatrix", batchSize, firstWidth, secondWidth, firstHeight,
		first[:batchSize*firstHeight*firstWidth], second[:batchSize*firstHeight*secondWidth], result,
		firstHeight*firstWidth, 1, firstWidth,
		firstHeight*secondWidth, secondWidth, 1,
		true)
}

// MultiplyMatrixByTransposedMatrix computes result[b] = first[b] @ second[b]^T.
func (b *Backend) MultiplyMatrixByTransposedMatrix(batchSize int, first []float32, firstHeight, firstWidth int,
	second []float32, secondHeight int, result []float32, resultCapacity int) error {
	tensor.CheckMultiplyMatrixByTransposedMatrix(b.Name(), batchSize, first, firstHeight, firstWidth,
		second, secondHeight, result, resultCapacity)

	return b.gemm("MultiplyMatrixByTransposedMatrix", batchSize, firstHeight, secondHeight, firstWidth,
		first[:batchSize*firstHeight*firstWidth], second[:batchSize*secondHeight*firstWidth], result,
		firstHeight*firstWidth, firstWidth, 1,
		secondHeight*firstWidth, 1, firstWidth,
		false)
}

// SetVectorToMatrixRows copies vector into every row.
func (b *Backend) SetVectorToMatrixRows(result []float32, height, width int, vector []float32) error {
	tensor.CheckSetVectorToMatrixRows(b.Name(), result, height, width, vector)

	return b.split("SetVectorToMatrixRows", height, width, func(lo, hi int) error {
		n := (hi - lo) * width
		return b.run(kernel{
			name:   "setRows",
			code:   setRowsShader,
			inputs: [][]float32{vector[:width]},
			output: result[lo*width : hi*width],
			params: []uint32{u32(width), u32(n)},
			tasks:  n,
		})
	})
}

// AddVectorToMatrixRows computes result = matrix + vector for every row.
func (b *Backend) AddVectorToMatrixRows(batchSize int, matrix, result []float32, height, width int, vector []float32) error {
	tensor.CheckAddVectorToMatrixRows(b.Name(), batchSize, matrix, result, height, width, vector)

	return b.split("AddVectorToMatrixRows", batchSize*height, width, func(lo, hi int) error {
		n := (hi - lo) * width
		return b.run(kernel{
			name:   "addRows",
			code:   addRowsShader,
			inputs: [][]float32{matrix[lo*width : hi*width], vector[:width]},
			output: result[lo*width : hi*width],
			params: []uint32{u32(width), u32(n)},
			tasks:  n,
		})
	})
}

// SumMatrixRows is not implemented on WebGPU.
func (b *Backend) SumMatrixRows(int, []float32, []float32, int, int) error {
	return tensor.Unsupported(b.Name(), "SumMatrixRows")
}

// VectorFill sets every element of result to value.
func (b *Backend) VectorFill(result []float32, value float32) error {
	return b.split("VectorFill", len(result), 1, func(lo, hi int) error {
		return b.run(kernel{
			name:   "fill",
			code:   fillShader,
			output: result[lo:hi],
			params: []uint32{u32(hi - lo), f32(value)},
			tasks:  hi - lo,
		})
	})
}

// VectorAdd computes result = first + second.
func (b *Backend) VectorAdd(first, second, result []float32) error {
	tensor.CheckVectorBinary(b.Name(), "VectorAdd", first, second, result)
	return b.binary("VectorAdd", "add", addShader, first, second, result)
}

// VectorEltwiseMultiply computes result = first * second element-wise.
func (b *Backend) VectorEltwiseMultiply(first, second, result []float32) error {
	tensor.CheckVectorBinary(b.Name(), "VectorEltwiseMultiply", first, second, result)
	return b.binary("VectorEltwiseMultiply", "mul", mulShader, first, second, result)
}

func (b *Backend) binary(op, name, code string, first, second, result []float32) error {
	return b.split(op, len(result), 1, func(lo, hi int) error {
		return b.run(kernel{
			name:   name,
			code:   code,
			inputs: [][]float32{first[lo:hi], second[lo:hi]},
			output: result[lo:hi],
			params: []uint32{u32(hi - lo)},
			tasks:  hi - lo,
		})
	})
}

// VectorMultiply computes result = first * multiplier.
func (b *Backend) VectorMultiply(first, result []float32, multiplier float32) error {
	tensor.CheckVectorUnary(b.Name(), "VectorMultiply", first, result)

	return b.split("VectorMultiply", len(result), 1, func(lo, hi int) error {
		return b.run(kernel{
			name:   "scale",
			code:   scaleShader,
			inputs: [][]float32{first[lo:hi]},
			output: result[lo:hi],
			params: []uint32{u32(hi - lo), f32(multiplier)},
			tasks:  hi - lo,
		})
	})
}

// RandomMatrixDropout applies inverted dropout with one mask shared by every row,
// one invocation per generator block of a row.
func (b *Backend) RandomMatrixDropout(first []float32, firstHeight, firstWidth int, result []float32,
	seed int, forwardRate float32) error {
	tensor.CheckMatrixDropout(b.Name(), first, firstHeight, firstWidth, result, forwardRate)

	key, counter := random.New(seed).Words()
	blocks := taskgrid.Blocks(firstWidth, random.BlockSize)
	threshold := random.Threshold(forwardRate)
	// Every row shares the mask, so rows split freely.
	return b.split("RandomMatrixDropout", firstHeight, firstWidth, func(lo, hi int) error {
		tasks := (hi - lo) * blocks
		return b.run(kernel{
			name:   "matrixDropout",
			code:   matrixDropoutShader,
			inputs: [][]float32{first[lo*firstWidth : hi*firstWidth]},
			output: result[lo*firstWidth : hi*firstWidth],
			params: []uint32{
				u32(firstWidth), u32(blocks), u32(tasks), threshold,
				key[0], key[1], counter[2], counter[3],
				f32(forwardRate),
			},
			tasks: tasks,
		})
	})
}

// RandomSpatialDropout applies inverted dropout with decisions shared across the rows
// of each object. Values past the last whole mask row of an object keep their contents.
func (b *Backend) RandomSpatialDropout(input, result []float32, inputObjectCount, inputObjectSize,
	maskObjectCount, maskObjectSize, seed int, forwardRate float32) error {
	tensor.CheckSpatialDropout(b.Name(), input, result, inputObjectCount, inputObjectSize,
		maskObjectCount, maskObjectSize, forwardRate)

	key, counter := random.New(seed).Words()
	threshold := random.Threshold(forwardRate)
	rows := inputObjectSize / maskObjectSize
	// Split on whole groups of maskObjectCount objects so each launch starts at pack 0.
	group := min(maskObjectCount, inputObjectCount)
	groups := taskgrid.Blocks(inputObjectCount, group)
	return b.split("RandomSpatialDropout", groups, group*inputObjectSize, func(lo, hi int) error {
		first, last := lo*group, min(hi*group, inputObjectCount)
		tasks := (last - first) * rows * maskObjectSize
		return b.run(kernel{
			name:     "spatialDropout",
			code:     spatialDropoutShader,
			inputs:   [][]float32{input[first*inputObjectSize : last*inputObjectSize]},
			output:   result[first*inputObjectSize : last*inputObjectSize],
			preserve: inputObjectSize%maskObjectSize != 0,
			params: []uint32{
				u32(inputObjectSize), u32(maskObjectCount), u32(maskObjectSize), u32(rows),
				key[0], key[1], counter[2], counter[3],
				u32(tasks), threshold, f32(forwardRate), 0,
			},
			tasks: tasks,
		})
	})
}
