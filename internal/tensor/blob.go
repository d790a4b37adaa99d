package tensor

import "fmt"

// BlobDesc describes the seven-dimensional layout used by sequence and image data.
//
// The dimensions, from outermost to innermost, are:
// BatchLength x BatchWidth x ListSize x Height x Width x Depth x Channels.
// BatchLength is the sequence dimension, BatchWidth the batch dimension.
// An "object" is one Height x Width x Depth x Channels block.
type BlobDesc struct {
	BatchLength int
	BatchWidth  int
	ListSize    int
	Height      int
	Width       int
	Depth       int
	Channels    int
}

// NewBlobDesc returns a descriptor with every dimension set to 1.
func NewBlobDesc() BlobDesc {
	return BlobDesc{1, 1, 1, 1, 1, 1, 1}
}

// ObjectCount returns the number of objects: BatchLength * BatchWidth * ListSize.
func (d BlobDesc) ObjectCount() int {
	return d.BatchLength * d.BatchWidth * d.ListSize
}

// ObjectSize returns the number of values in one object: Height * Width * Depth * Channels.
func (d BlobDesc) ObjectSize() int {
	return d.Height * d.Width * d.Depth * d.Channels
}

// BlobSize returns the total number of values described.
func (d BlobDesc) BlobSize() int {
	return d.Shape().NumElements()
}

// Shape returns the descriptor as a seven-dimensional Shape.
func (d BlobDesc) Shape() Shape {
	return Shape{d.BatchLength, d.BatchWidth, d.ListSize, d.Height, d.Width, d.Depth, d.Channels}
}

// Validate checks that all dimensions are positive.
func (d BlobDesc) Validate() error {
	if err := d.Shape().Validate(); err != nil {
		return fmt.Errorf("blob desc: %w", err)
	}
	return nil
}
