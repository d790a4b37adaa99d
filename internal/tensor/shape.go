package tensor

import "fmt"

// Shape represents the dimensions of a dense buffer.
// A buffer described by a shape holds exactly NumElements values in row-major order.
type Shape []int

// NumElements returns the total number of elements described by the shape.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// Offset returns the flat row-major index of the given coordinates.
// Panics if the number of coordinates differs from the rank or a coordinate is out of range.
func (s Shape) Offset(coords ...int) int {
	if len(coords) != len(s) {
		panic(fmt.Sprintf("shape: offset: got %d coordinates for rank %d", len(coords), len(s)))
	}
	offset := 0
	for i, c := range coords {
		if c < 0 || c >= s[i] {
			panic(fmt.Sprintf("shape: offset: coordinate %d out of range [0, %d) at dim %d", c, s[i], i))
		}
		offset = offset*s[i] + c
	}
	return offset
}
