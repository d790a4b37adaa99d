//go:build windows

package webgpu

import (
	"math/bits"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

const (
	// Smallest pooled buffer; requests below it are rounded up.
	minPooledSize = 256
	// Max idle buffers kept per size class.
	maxPerClass = 8
)

// poolKey identifies interchangeable buffers.
type poolKey struct {
	size  uint64
	usage wgpu.BufferUsage
}

// BufferPool recycles GPU buffers by power-of-two size class and usage flags.
// The backend uses it for readback staging buffers, which every call needs and
// which are never bound to a shader.
type BufferPool struct {
	device *wgpu.Device

	idle map[poolKey][]*wgpu.Buffer
	mu   sync.Mutex

	// Statistics
	hits      uint64
	misses    uint64
	released  uint64
	discarded uint64
}

// NewBufferPool creates a new buffer pool for the given device.
func NewBufferPool(device *wgpu.Device) *BufferPool {
	return &BufferPool{
		device: device,
		idle:   make(map[poolKey][]*wgpu.Buffer),
	}
}

// sizeClass rounds size up to the next power of two, at least minPooledSize.
func sizeClass(size uint64) uint64 {
	if size <= minPooledSize {
		return minPooledSize
	}
	return 1 << bits.Len64(size-1)
}

// Acquire returns a buffer of at least size bytes with exactly the given usage,
// and the size it was created with.
func (p *BufferPool) Acquire(size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, uint64) {
	key := poolKey{size: sizeClass(size), usage: usage}

	p.mu.Lock()
	defer p.mu.Unlock()

	if free := p.idle[key]; len(free) > 0 {
		buffer := free[len(free)-1]
		p.idle[key] = free[:len(free)-1]
		p.hits++
		return buffer, key.size
	}

	p.misses++
	buffer := p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: usage,
		Size:  key.size,
	})
	return buffer, key.size
}

// Release returns a buffer obtained from Acquire. Buffers beyond the per-class
// limit are destroyed.
func (p *BufferPool) Release(buffer *wgpu.Buffer, size uint64, usage wgpu.BufferUsage) {
	key := poolKey{size: sizeClass(size), usage: usage}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.released++
	if len(p.idle[key]) >= maxPerClass {
		buffer.Release()
		return
	}
	p.idle[key] = append(p.idle[key], buffer)
}

// Discard destroys a buffer obtained from Acquire whose state is unknown, such as
// one that failed to map. It never returns to the pool.
func (p *BufferPool) Discard(buffer *wgpu.Buffer) {
	p.mu.Lock()
	p.discarded++
	p.mu.Unlock()

	buffer.Release()
}

// Discarded returns the number of buffers destroyed through Discard.
func (p *BufferPool) Discarded() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.discarded
}

// Clear destroys all idle buffers.
func (p *BufferPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key, free := range p.idle {
		for _, buffer := range free {
			buffer.Release()
		}
		delete(p.idle, key)
	}
}

// Stats returns pool hits, misses, releases and the number of idle buffers.
func (p *BufferPool) Stats() (hits, misses, released uint64, idle int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, free := range p.idle {
		idle += len(free)
	}
	return p.hits, p.misses, p.released, idle
}
