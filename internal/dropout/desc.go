// Package dropout resolves a dropout layer configuration into a call of one of the
// two dropout kernels.
//
// A Desc fixes the rate, the mask sharing mode and the seed for a given input layout.
// Non-spatial dropout draws one decision per value of a BatchWidth slice and shares it
// across the sequence (or across every object in batchwise mode). Spatial dropout draws
// one decision per channel and shares it across all spatial positions of an object.
package dropout

import (
	"errors"
	"fmt"

	"github.com/born-ml/mathengine/internal/tensor"
)

// ErrRate reports a dropout rate outside [0, 1).
var ErrRate = errors.New("dropout: rate must be in [0, 1)")

// Geometry is the mask layout derived from a Desc.
type Geometry struct {
	// ObjectSize is the number of values one mask row covers: Channels when spatial,
	// otherwise the full object size.
	ObjectSize int
	// BatchLength is the number of objects that share one mask.
	BatchLength int
	// BatchWidth is the number of independent mask rows.
	BatchWidth int
	// MaskSize is BatchWidth * ObjectSize.
	MaskSize int
}

// Desc is an immutable dropout configuration.
type Desc struct {
	input       tensor.BlobDesc
	dropoutRate float32
	isSpatial   bool
	isBatchwise bool
	seed        int
	geometry    Geometry
}

// NewDesc creates a dropout descriptor for inputs laid out as input.
func NewDesc(dropoutRate float32, isSpatial, isBatchwise bool, input tensor.BlobDesc, seed int) (*Desc, error) {
	// NaN fails both comparisons.
	if !(dropoutRate >= 0 && dropoutRate < 1) {
		return nil, fmt.Errorf("%w: got %v", ErrRate, dropoutRate)
	}
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("dropout: %w", err)
	}

	g := Geometry{ObjectSize: input.ObjectSize(), BatchLength: input.BatchLength}
	if isSpatial {
		g.ObjectSize = input.Channels
	}
	if isBatchwise {
		g.BatchLength = input.ObjectCount()
	}
	g.BatchWidth = input.ObjectCount() / g.BatchLength
	g.MaskSize = g.BatchWidth * g.ObjectSize

	return &Desc{
		input:       input,
		dropoutRate: dropoutRate,
		isSpatial:   isSpatial,
		isBatchwise: isBatchwise,
		seed:        seed,
		geometry:    g,
	}, nil
}

// Input returns the input layout.
func (d *Desc) Input() tensor.BlobDesc { return d.input }

// DropoutRate returns the probability of dropping a value.
func (d *Desc) DropoutRate() float32 { return d.dropoutRate }

// ForwardRate returns the probability of keeping a value, 1 - DropoutRate.
func (d *Desc) ForwardRate() float32 { return 1 - d.dropoutRate }

// IsSpatial reports whether whole channels are dropped.
func (d *Desc) IsSpatial() bool { return d.isSpatial }

// IsBatchwise reports whether every object shares one mask.
func (d *Desc) IsBatchwise() bool { return d.isBatchwise }

// Seed returns the generator seed.
func (d *Desc) Seed() int { return d.seed }

// Geometry returns the mask layout.
func (d *Desc) Geometry() Geometry { return d.geometry }

// IsIdentity reports whether the descriptor keeps every value unchanged.
func (d *Desc) IsIdentity() bool { return d.dropoutRate == 0 }

func (d *Desc) String() string {
	mode := "matrix"
	if d.isSpatial {
		mode = "spatial"
	}
	return fmt.Sprintf("dropout(rate=%v, %s, batchwise=%v, seed=%d, mask=%dx%d)",
		d.dropoutRate, mode, d.isBatchwise, d.seed, d.geometry.BatchLength, d.geometry.MaskSize)
}
