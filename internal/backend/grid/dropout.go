package grid

import (
	taskgrid "github.com/born-ml/mathengine/internal/grid"
	"github.com/born-ml/mathengine/internal/random"
	"github.com/born-ml/mathengine/internal/tensor"
)

// RandomMatrixDropout applies inverted dropout with one mask shared by every row.
//
// By default each task owns one generator block of one row: it skips its stream to
// block col and writes up to four consecutive columns, stopping at the row width.
// With element tasks each task owns a single element and reads lane col%4 of block col/4.
func (g *GridBackend) RandomMatrixDropout(first []float32, firstHeight, firstWidth int, result []float32,
	seed int, forwardRate float32) error {
	tensor.CheckMatrixDropout(g.Name(), first, firstHeight, firstWidth, result, forwardRate)

	threshold := random.Threshold(forwardRate)

	if g.elementTasks {
		g.run2D(firstHeight, firstWidth, func(row, col int) {
			generated := random.At(seed, uint64(col/random.BlockSize)) //nolint:gosec // G115: col is non-negative.
			index := row*firstWidth + col
			if random.Keep(generated[col%random.BlockSize], threshold) {
				result[index] = first[index] / forwardRate
			} else {
				result[index] = 0
			}
		})
		return nil
	}

	blocks := taskgrid.Blocks(firstWidth, random.BlockSize)
	g.run2D(firstHeight, blocks, func(row, col int) {
		stream := random.New(seed).Skip(uint64(col)) //nolint:gosec // G115: col is non-negative.
		generated, _ := stream.Next()
		col *= random.BlockSize
		index := row*firstWidth + col

		for j := 0; j < random.BlockSize && col+j < firstWidth; j++ {
			if random.Keep(generated[j], threshold) {
				result[index+j] = first[index+j] / forwardRate
			} else {
				result[index+j] = 0
			}
		}
	})
	return nil
}

// RandomSpatialDropout applies inverted dropout with decisions shared across the rows
// of each object, one task per element of the obj x rows x maskObjectSize space.
// The trailing inputObjectSize % maskObjectSize values of each object are not covered
// by the launch and keep their previous contents.
func (g *GridBackend) RandomSpatialDropout(input, result []float32, inputObjectCount, inputObjectSize,
	maskObjectCount, maskObjectSize, seed int, forwardRate float32) error {
	tensor.CheckSpatialDropout(g.Name(), input, result, inputObjectCount, inputObjectSize,
		maskObjectCount, maskObjectSize, forwardRate)

	threshold := random.Threshold(forwardRate)

	g.run3D(inputObjectCount, inputObjectSize/maskObjectSize, maskObjectSize, func(obj, row, col int) {
		pack := obj % maskObjectCount
		index := obj*inputObjectSize + row*maskObjectSize + col
		position := pack*maskObjectSize + col

		stream := random.New(seed).Skip(uint64(position / random.BlockSize)) //nolint:gosec // G115: position is non-negative.
		generated, _ := stream.Next()
		if random.Keep(generated[position%random.BlockSize], threshold) {
			result[index] = input[index] / forwardRate
		} else {
			result[index] = 0
		}
	})
	return nil
}
