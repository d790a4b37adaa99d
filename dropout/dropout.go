// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dropout describes a dropout layer over a blob and applies it on any backend.
//
// Example:
//
//	blob := tensor.NewBlobDesc()
//	blob.BatchWidth, blob.Channels = 32, 128
//	desc, err := dropout.NewDesc(0.1, false, false, blob, random.DefaultSeed)
//	if err != nil {
//	    return err
//	}
//	err = dropout.Apply(cpu.New(), desc, x, y)
package dropout

import (
	"github.com/born-ml/mathengine/internal/dropout"
	"github.com/born-ml/mathengine/tensor"
)

// Desc is a validated dropout configuration.
type Desc = dropout.Desc

// Geometry is the mask layout derived from a Desc.
type Geometry = dropout.Geometry

// ErrRate reports a dropout rate outside [0, 1).
var ErrRate = dropout.ErrRate

// NewDesc validates the configuration and derives its mask geometry.
func NewDesc(dropoutRate float32, isSpatial, isBatchwise bool, input tensor.BlobDesc, seed int) (*Desc, error) {
	return dropout.NewDesc(dropoutRate, isSpatial, isBatchwise, input, seed)
}

// Apply runs d on b, reading input and writing output.
func Apply(b tensor.Backend, d *Desc, input, output []float32) error {
	return dropout.Apply(b, d, input, output)
}
