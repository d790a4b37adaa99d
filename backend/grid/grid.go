// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package grid provides a backend that runs every kernel as a GPU-style launch:
// a flat range of task ids padded to the workgroup size and spread over goroutines.
//
// Results match the CPU backend. Dropout masks are identical for any workgroup
// size and worker count.
//
// Example:
//
//	b := grid.New(grid.WithWorkgroupSize(64))
//	_ = b.RandomMatrixDropout(x, rows, cols, y, seed, 0.8)
package grid

import (
	internalgrid "github.com/born-ml/mathengine/internal/backend/grid"
	"github.com/born-ml/mathengine/internal/parallel"
	"github.com/born-ml/mathengine/tensor"
)

// Backend represents the grid backend implementation.
type Backend = internalgrid.GridBackend

// Option configures a Backend.
type Option = internalgrid.Option

// DefaultWorkgroupSize is the number of tasks per workgroup unless overridden.
const DefaultWorkgroupSize = internalgrid.DefaultWorkgroupSize

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a grid backend.
func New(opts ...Option) *Backend {
	return internalgrid.New(opts...)
}

// WithWorkgroupSize sets the number of tasks per workgroup.
func WithWorkgroupSize(n int) Option {
	return internalgrid.WithWorkgroupSize(n)
}

// WithWorkers caps the number of goroutines used per launch. Zero or less means one per CPU.
func WithWorkers(n int) Option {
	cfg := parallel.DefaultConfig()
	if n > 0 {
		cfg.NumWorkers = n
		cfg.Enabled = n > 1
	}
	return internalgrid.WithConfig(cfg)
}

// WithElementTasks launches one dropout task per element instead of one per Philox block.
func WithElementTasks(enabled bool) Option {
	return internalgrid.WithElementTasks(enabled)
}
