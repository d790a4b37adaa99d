// Package reference contains simple, obviously correct versions of every kernel in
// the operation catalogue. They are used to verify the optimized backends and are
// never used for production dispatch.
package reference

import (
	"github.com/born-ml/mathengine/internal/random"
	"github.com/born-ml/mathengine/internal/tensor"
)

// MultiplyMatrixByMatrix overwrites result[b] with first[b] * second[b].
func MultiplyMatrixByMatrix(batchSize int, first []float32, firstHeight, firstWidth int,
	second []float32, secondWidth int, result []float32) {
	fs := tensor.Shape{batchSize, firstHeight, firstWidth}.ComputeStrides()
	ss := tensor.Shape{batchSize, firstWidth, secondWidth}.ComputeStrides()
	rs := tensor.Shape{batchSize, firstHeight, secondWidth}.ComputeStrides()
	for b := 0; b < batchSize; b++ {
		for i := 0; i < firstHeight; i++ {
			for j := 0; j < secondWidth; j++ {
				var sum float32
				for k := 0; k < firstWidth; k++ {
					sum += first[b*fs[0]+i*fs[1]+k] * second[b*ss[0]+k*ss[1]+j]
				}
				result[b*rs[0]+i*rs[1]+j] = sum
			}
		}
	}
}

// MultiplyTransposedMatrixByMatrix adds first[b]^T * second[b] into result[b].
func MultiplyTransposedMatrixByMatrix(batchSize int, first []float32, firstHeight, firstWidth int,
	second []float32, secondWidth int, result []float32) {
	fs := tensor.Shape{batchSize, firstHeight, firstWidth}.ComputeStrides()
	ss := tensor.Shape{batchSize, firstHeight, secondWidth}.ComputeStrides()
	rs := tensor.Shape{batchSize, firstWidth, secondWidth}.ComputeStrides()
	for b := 0; b < batchSize; b++ {
		for i := 0; i < firstWidth; i++ {
			for j := 0; j < secondWidth; j++ {
				for k := 0; k < firstHeight; k++ {
					result[b*rs[0]+i*rs[1]+j] += first[b*fs[0]+k*fs[1]+i] * second[b*ss[0]+k*ss[1]+j]
				}
			}
		}
	}
}

// MultiplyMatrixByTransposedMatrix overwrites result[b] with first[b] * second[b]^T.
func MultiplyMatrixByTransposedMatrix(batchSize int, first []float32, firstHeight, firstWidth int,
	second []float32, secondHeight int, result []float32) {
	fs := tensor.Shape{batchSize, firstHeight, firstWidth}.ComputeStrides()
	ss := tensor.Shape{batchSize, secondHeight, firstWidth}.ComputeStrides()
	rs := tensor.Shape{batchSize, firstHeight, secondHeight}.ComputeStrides()
	for b := 0; b < batchSize; b++ {
		for i := 0; i < firstHeight; i++ {
			for j := 0; j < secondHeight; j++ {
				var sum float32
				for k := 0; k < firstWidth; k++ {
					sum += first[b*fs[0]+i*fs[1]+k] * second[b*ss[0]+j*ss[1]+k]
				}
				result[b*rs[0]+i*rs[1]+j] = sum
			}
		}
	}
}

// SetVectorToMatrixRows copies vector into each of the height rows of result.
func SetVectorToMatrixRows(result []float32, height, width int, vector []float32) {
	for i := 0; i < height; i++ {
		for j := 0; j < width; j++ {
			result[i*width+j] = vector[j]
		}
	}
}

// AddVectorToMatrixRows writes matrix + vector for every row of every batch element.
func AddVectorToMatrixRows(batchSize int, matrix, result []float32, height, width int, vector []float32) {
	for r := 0; r < batchSize*height; r++ {
		for j := 0; j < width; j++ {
			result[r*width+j] = matrix[r*width+j] + vector[j]
		}
	}
}

// SumMatrixRows writes the column sums of each matrix into result.
func SumMatrixRows(batchSize int, result, matrix []float32, height, width int) {
	in := tensor.Shape{batchSize, height, width}
	out := tensor.Shape{batchSize, width}
	for b := 0; b < batchSize; b++ {
		for j := 0; j < width; j++ {
			var sum float32
			for i := 0; i < height; i++ {
				sum += matrix[in.Offset(b, i, j)]
			}
			result[out.Offset(b, j)] = sum
		}
	}
}

// VectorFill sets every element of result to value.
func VectorFill(result []float32, value float32) {
	for i := range result {
		result[i] = value
	}
}

// VectorAdd writes first + second.
func VectorAdd(first, second, result []float32) {
	for i := range result {
		result[i] = first[i] + second[i]
	}
}

// VectorEltwiseMultiply writes first * second element-wise.
func VectorEltwiseMultiply(first, second, result []float32) {
	for i := range result {
		result[i] = first[i] * second[i]
	}
}

// VectorMultiply writes first * multiplier.
func VectorMultiply(first, result []float32, multiplier float32) {
	for i := range result {
		result[i] = first[i] * multiplier
	}
}

// KeepAt reports whether the element at logical position pos is kept for seed and forwardRate.
// Each call builds its own stream and jumps straight to the block holding pos.
func KeepAt(seed, pos int, forwardRate float32) bool {
	block := random.At(seed, uint64(pos/random.BlockSize)) //nolint:gosec // G115: pos is non-negative.
	return random.Keep(block[pos%random.BlockSize], random.Threshold(forwardRate))
}

// RandomMatrixDropout evaluates each element of a matrix dropout independently.
func RandomMatrixDropout(first []float32, firstHeight, firstWidth int, result []float32, seed int, forwardRate float32) {
	for row := 0; row < firstHeight; row++ {
		for col := 0; col < firstWidth; col++ {
			index := row*firstWidth + col
			if KeepAt(seed, col, forwardRate) {
				result[index] = first[index] / forwardRate
			} else {
				result[index] = 0
			}
		}
	}
}

// RandomSpatialDropout evaluates each element of a spatial dropout independently.
// The trailing inputObjectSize % maskObjectSize values of each object are left untouched.
func RandomSpatialDropout(input, result []float32, inputObjectCount, inputObjectSize,
	maskObjectCount, maskObjectSize, seed int, forwardRate float32) {
	rows := inputObjectSize / maskObjectSize
	// An object viewed as rows x maskObjectSize, plus a tail this loop never reaches.
	layout := tensor.Shape{inputObjectCount, inputObjectSize}
	for obj := 0; obj < inputObjectCount; obj++ {
		pack := obj % maskObjectCount
		for row := 0; row < rows; row++ {
			for col := 0; col < maskObjectSize; col++ {
				index := layout.Offset(obj, row*maskObjectSize+col)
				if KeepAt(seed, pack*maskObjectSize+col, forwardRate) {
					result[index] = input[index] / forwardRate
				} else {
					result[index] = 0
				}
			}
		}
	}
}
