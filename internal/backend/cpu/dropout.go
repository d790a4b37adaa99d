package cpu

import (
	"github.com/born-ml/mathengine/internal/random"
	"github.com/born-ml/mathengine/internal/tensor"
)

// keepMask draws n keep decisions from a single stream walked block by block.
// Position i of the mask is lane i%4 of block i/4, the same value a parallel task
// obtains by skipping straight to that block.
func keepMask(n, seed int, forwardRate float32) []bool {
	threshold := random.Threshold(forwardRate)
	mask := make([]bool, n)

	stream := random.New(seed)
	for start := 0; start < n; start += random.BlockSize {
		var block random.Block
		block, stream = stream.Next()
		for j := 0; j < random.BlockSize && start+j < n; j++ {
			mask[start+j] = random.Keep(block[j], threshold)
		}
	}
	return mask
}

// RandomMatrixDropout applies inverted dropout with one mask shared by every row.
func (cpu *CPUBackend) RandomMatrixDropout(first []float32, firstHeight, firstWidth int, result []float32,
	seed int, forwardRate float32) error {
	tensor.CheckMatrixDropout(cpu.Name(), first, firstHeight, firstWidth, result, forwardRate)

	mask := keepMask(firstWidth, seed, forwardRate)
	for row := 0; row < firstHeight; row++ {
		src := first[row*firstWidth : (row+1)*firstWidth]
		dst := result[row*firstWidth : (row+1)*firstWidth]
		for col, keep := range mask {
			if keep {
				dst[col] = src[col] / forwardRate
			} else {
				dst[col] = 0
			}
		}
	}
	return nil
}

// RandomSpatialDropout applies inverted dropout with one decision per mask position,
// shared by every row of the object and by every object in the same pack.
func (cpu *CPUBackend) RandomSpatialDropout(input, result []float32, inputObjectCount, inputObjectSize,
	maskObjectCount, maskObjectSize, seed int, forwardRate float32) error {
	tensor.CheckSpatialDropout(cpu.Name(), input, result, inputObjectCount, inputObjectSize,
		maskObjectCount, maskObjectSize, forwardRate)

	mask := keepMask(maskObjectCount*maskObjectSize, seed, forwardRate)
	rows := inputObjectSize / maskObjectSize
	for obj := 0; obj < inputObjectCount; obj++ {
		packMask := mask[(obj%maskObjectCount)*maskObjectSize:][:maskObjectSize]
		for row := 0; row < rows; row++ {
			offset := obj*inputObjectSize + row*maskObjectSize
			src := input[offset : offset+maskObjectSize]
			dst := result[offset : offset+maskObjectSize]
			for col, keep := range packMask {
				if keep {
					dst[col] = src[col] / forwardRate
				} else {
					dst[col] = 0
				}
			}
		}
	}
	return nil
}
