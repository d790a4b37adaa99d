// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/mathengine/internal/tensor"

// Backend is the kernel catalogue implemented by every compute backend.
//
// Implementations:
//   - backend/cpu: sequential loops with a BLAS matrix product
//   - backend/grid: GPU-style task launches on goroutines
//   - backend/webgpu: WGSL compute shaders (Windows)
type Backend = tensor.Backend

// Device identifies where a backend executes.
type Device = tensor.Device

// Devices.
const (
	CPU    = tensor.CPU
	Grid   = tensor.Grid
	WebGPU = tensor.WebGPU
)

// Shape describes the dimensions of a dense buffer.
type Shape = tensor.Shape

// BlobDesc describes the seven-dimensional blob layout.
type BlobDesc = tensor.BlobDesc

// ContractError is the panic value raised on a violated precondition.
type ContractError = tensor.ContractError

// ErrUnsupported is wrapped by every error that declines an operation.
var ErrUnsupported = tensor.ErrUnsupported

// NewBlobDesc returns a descriptor with every dimension set to 1.
func NewBlobDesc() BlobDesc {
	return tensor.NewBlobDesc()
}

// IsUnsupported reports whether err declines an operation.
func IsUnsupported(err error) bool {
	return tensor.IsUnsupported(err)
}
