//go:build windows

// Package webgpu implements the operation catalogue with WGSL compute shaders.
// Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO WebGPU bindings.
//
// Every call uploads its operands, dispatches one shader and reads the result back
// before returning, so callers keep working with plain []float32 buffers.
package webgpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/born-ml/mathengine/internal/tensor"
)

var errNoQueue = errors.New("webgpu: device has no queue")

// Backend implements the catalogue on a GPU through WebGPU.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	info     wgpu.AdapterInfo

	// Compiled shaders and pipelines, keyed by kernel name.
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	staging *BufferPool

	// Largest storage binding, in bytes. Launches are split to stay under it.
	maxBinding uint64

	// Serializes submissions; a readback must see only its own dispatch.
	submitMu sync.Mutex
}

// New creates a new WebGPU backend.
// Returns an error if WebGPU is not available or initialization fails.
func New() (backend *Backend, err error) {
	// wgpu panics when the native library cannot be loaded.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	b := &Backend{
		shaders:    make(map[string]*wgpu.ShaderModule),
		pipelines:  make(map[string]*wgpu.ComputePipeline),
		maxBinding: defaultMaxBinding,
	}
	if err := b.open(); err != nil {
		b.Release()
		return nil, err
	}
	b.staging = NewBufferPool(b.device)
	return b, nil
}

// open acquires instance, adapter, device and queue in order. On failure the
// handles acquired so far stay on b for Release.
func (b *Backend) open() error {
	b.instance = wgpu.CreateInstance(nil)

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("webgpu: request adapter: %w", err)
	}
	b.adapter = adapter
	b.info = adapter.GetInfo()

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("webgpu: request device: %w", err)
	}
	b.device = device

	if b.queue = device.GetQueue(); b.queue == nil {
		return errNoQueue
	}
	return nil
}

// Release frees every GPU resource held by the backend. It is safe to call twice.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.staging != nil {
		b.staging.Clear()
		b.staging = nil
	}
	for name, p := range b.pipelines {
		p.Release()
		delete(b.pipelines, name)
	}
	for name, s := range b.shaders {
		s.Release()
		delete(b.shaders, name)
	}

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "WebGPU"
}

// Device returns the compute device.
func (b *Backend) Device() tensor.Device {
	return tensor.WebGPU
}

// AdapterInfo describes the GPU the backend runs on.
func (b *Backend) AdapterInfo() wgpu.AdapterInfo {
	return b.info
}

// IsAvailable reports whether a WebGPU adapter can be obtained.
func IsAvailable() (available bool) {
	defer func() {
		if recover() != nil {
			available = false
		}
	}()

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()
	return true
}

// Compile-time check that Backend implements the catalogue.
var _ tensor.Backend = (*Backend)(nil)
