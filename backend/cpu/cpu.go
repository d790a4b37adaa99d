// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/mathengine/internal/backend/cpu"
	"github.com/born-ml/mathengine/internal/parallel"
	"github.com/born-ml/mathengine/tensor"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// Option configures a Backend.
type Option = internalcpu.Option

// New creates a new CPU backend. Without options it runs on the calling goroutine.
func New(opts ...Option) *Backend {
	return internalcpu.New(opts...)
}

// WithWorkers spreads batch items and matrix rows over up to n goroutines.
// Zero or less means one per CPU.
func WithWorkers(n int) Option {
	cfg := parallel.DefaultConfig()
	if n > 0 {
		cfg.NumWorkers = n
		cfg.Enabled = n > 1
	}
	return internalcpu.WithParallel(cfg)
}
