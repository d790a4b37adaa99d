//go:build windows

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU backend, running each kernel as a WGSL
// compute shader.
//
// Dropout shaders evaluate the same Philox stream as the CPU backend, so masks
// agree bit for bit. SumMatrixRows is declined.
//
// Example:
//
//	gpu, err := webgpu.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gpu.Release()
package webgpu

import (
	internalwebgpu "github.com/born-ml/mathengine/internal/backend/webgpu"
	"github.com/born-ml/mathengine/tensor"
)

// Backend represents the WebGPU backend implementation.
type Backend = internalwebgpu.Backend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new WebGPU backend.
//
// Call Release when done to free GPU resources.
// Returns an error if WebGPU initialization fails (e.g., no compatible GPU).
func New() (*Backend, error) {
	return internalwebgpu.New()
}

// IsAvailable reports whether a WebGPU adapter can be obtained on this system.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
