package dropout

import "github.com/born-ml/mathengine/internal/tensor"

// Apply runs the dropout described by d on backend b, reading input and writing output.
// Both buffers must hold at least d.Input().BlobSize() values. A zero dropout rate
// copies input to output without drawing any random values.
func Apply(b tensor.Backend, d *Desc, input, output []float32) error {
	size := d.input.BlobSize()
	if len(input) < size || len(output) < size {
		panic(&tensor.ContractError{
			Backend: b.Name(),
			Op:      "Dropout",
			Reason:  "buffers are shorter than the blob size",
		})
	}

	if d.IsIdentity() {
		copy(output[:size], input[:size])
		return nil
	}

	g := d.geometry
	if d.isSpatial {
		return b.RandomSpatialDropout(input, output, d.input.ObjectCount(), d.input.ObjectSize(),
			g.BatchWidth, g.ObjectSize, d.seed, d.ForwardRate())
	}
	return b.RandomMatrixDropout(input, g.BatchLength, g.MaskSize, output, d.seed, d.ForwardRate())
}
