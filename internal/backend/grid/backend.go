// Package grid implements a backend that executes every kernel the way a GPU does:
// the iteration space is flattened into task identifiers, padded up to a multiple of
// the workgroup size, and each task runs the same kernel body independently.
//
// Tasks share no mutable state. Each body bounds-checks its coordinates, writes only
// the output elements it owns, and builds its own random stream from the seed, so the
// result does not depend on the workgroup size, the number of workers, or the order
// in which tasks run.
package grid

import (
	"fmt"

	"github.com/born-ml/mathengine/internal/parallel"
	"github.com/born-ml/mathengine/internal/tensor"
)

// DefaultWorkgroupSize matches the 256-invocation workgroups of the WebGPU shaders.
const DefaultWorkgroupSize = 256

// Option configures a GridBackend.
type Option func(*GridBackend)

// WithConfig sets the worker pool configuration.
func WithConfig(cfg parallel.Config) Option {
	return func(g *GridBackend) {
		g.cfg = cfg
	}
}

// WithWorkgroupSize sets the number of tasks per workgroup. Values below 1 mean 1.
func WithWorkgroupSize(size int) Option {
	return func(g *GridBackend) {
		g.workgroupSize = max(size, 1)
	}
}

// WithElementTasks makes matrix dropout launch one task per element instead of one
// task per generator block.
func WithElementTasks(enabled bool) Option {
	return func(g *GridBackend) {
		g.elementTasks = enabled
	}
}

// GridBackend implements the operation catalogue as padded parallel launches.
type GridBackend struct {
	cfg           parallel.Config
	workgroupSize int
	elementTasks  bool
}

// New creates a grid backend with the default worker pool and workgroup size.
func New(opts ...Option) *GridBackend {
	g := &GridBackend{
		cfg:           parallel.DefaultConfig(),
		workgroupSize: DefaultWorkgroupSize,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name returns the backend name.
func (g *GridBackend) Name() string {
	if g.elementTasks {
		return fmt.Sprintf("Grid(wg=%d,element)", g.workgroupSize)
	}
	return fmt.Sprintf("Grid(wg=%d)", g.workgroupSize)
}

// Device returns the compute device.
func (g *GridBackend) Device() tensor.Device {
	return tensor.Grid
}

// WorkgroupSize returns the number of tasks per workgroup.
func (g *GridBackend) WorkgroupSize() int {
	return g.workgroupSize
}

// Compile-time check that GridBackend implements the catalogue.
var _ tensor.Backend = (*GridBackend)(nil)
