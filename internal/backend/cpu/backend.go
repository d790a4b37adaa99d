// Package cpu implements the sequential CPU backend.
//
// Kernels run as ordinary loops on the calling goroutine. The GEMM family goes
// through gonum BLAS.
package cpu

import (
	"github.com/born-ml/mathengine/internal/parallel"
	"github.com/born-ml/mathengine/internal/tensor"
)

// CPUBackend implements the operation catalogue on the CPU.
type CPUBackend struct {
	device   tensor.Device
	parallel parallel.Config
}

// Option configures a CPUBackend.
type Option func(*CPUBackend)

// WithParallel spreads batch items and matrix rows over goroutines as cfg allows.
// Each item writes a disjoint part of the result, so results do not depend on cfg.
func WithParallel(cfg parallel.Config) Option {
	return func(cpu *CPUBackend) {
		cpu.parallel = cfg
	}
}

// New creates a new CPU backend. Without options every kernel runs on the calling goroutine.
func New(opts ...Option) *CPUBackend {
	cpu := &CPUBackend{
		device:   tensor.CPU,
		parallel: parallel.Sequential(),
	}
	for _, opt := range opts {
		opt(cpu)
	}
	return cpu
}

// forEachBatch runs f for every batch item. A batch item is a whole GEMM or
// reduction, so any batch of two or more is worth a goroutine.
func (cpu *CPUBackend) forEachBatch(batchSize int, f func(b int)) {
	cfg := cpu.parallel
	cfg.MinChunkSize = 1
	parallel.For(batchSize, f, cfg)
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Compile-time check that CPUBackend implements the catalogue.
var _ tensor.Backend = (*CPUBackend)(nil)
