//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/born-ml/mathengine/internal/grid"
	"github.com/born-ml/mathengine/internal/tensor"
)

const (
	// workgroupSize matches @workgroup_size in every shader.
	workgroupSize = 256
	// maxWorkgroupsPerDim is the WebGPU limit on one dispatch dimension.
	maxWorkgroupsPerDim = 65535
	// defaultMaxBinding is the maxStorageBufferBindingSize every WebGPU device
	// guarantees. It is also below the guaranteed maxBufferSize.
	defaultMaxBinding = 128 << 20
)

// compileShader compiles WGSL shader code into a ShaderModule.
// Results are cached in the Backend's shaders map.
func (b *Backend) compileShader(name, code string) *wgpu.ShaderModule {
	b.mu.RLock()
	if shader, exists := b.shaders[name]; exists {
		b.mu.RUnlock()
		return shader
	}
	b.mu.RUnlock()

	shader := b.device.CreateShaderModuleWGSL(code)

	b.mu.Lock()
	b.shaders[name] = shader
	b.mu.Unlock()

	return shader
}

// getOrCreatePipeline returns a cached ComputePipeline or creates a new one.
func (b *Backend) getOrCreatePipeline(name, code string) *wgpu.ComputePipeline {
	b.mu.RLock()
	if pipeline, exists := b.pipelines[name]; exists {
		b.mu.RUnlock()
		return pipeline
	}
	b.mu.RUnlock()

	// Auto layout (nil layout).
	pipeline := b.device.CreateComputePipelineSimple(nil, b.compileShader(name, code), "main")

	b.mu.Lock()
	b.pipelines[name] = pipeline
	b.mu.Unlock()

	return pipeline
}

// floatBytes views a float32 slice as bytes.
func floatBytes(data []float32) []byte {
	//nolint:gosec // unsafe.Slice for zero-copy conversion of a float32 slice
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*4)
}

// createBuffer creates a storage buffer holding data.
func (b *Backend) createBuffer(data []float32, usage wgpu.BufferUsage) *wgpu.Buffer {
	src := floatBytes(data)
	size := uint64(len(src))

	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	copy(unsafe.Slice((*byte)(mappedPtr), size), src)
	buffer.Unmap()

	return buffer
}

// createUniformBuffer creates a uniform buffer with proper alignment.
// Uniform buffers require 16-byte alignment for struct fields.
func (b *Backend) createUniformBuffer(data []byte) *wgpu.Buffer {
	size := uint64(len(data))
	alignedSize := (size + 15) &^ 15

	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:             alignedSize,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, alignedSize)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	copy(unsafe.Slice((*byte)(mappedPtr), alignedSize), data)
	buffer.Unmap()

	return buffer
}

// packParams lays out shader parameters as consecutive little-endian u32 words,
// padded to a 16-byte boundary.
func packParams(words ...uint32) []byte {
	params := make([]byte, (len(words)*4+15)&^15)
	for i, w := range words {
		binary.LittleEndian.PutUint32(params[i*4:], w)
	}
	return params
}

// u32 converts a dimension for a shader parameter.
func u32(n int) uint32 {
	return uint32(n) //nolint:gosec // G115: dimensions are validated positive and fit in u32.
}

// f32 encodes a float parameter as its bit pattern.
func f32(v float32) uint32 {
	return math.Float32bits(v)
}

// dispatchSize spreads workgroups over x and y so neither exceeds the per-dimension
// limit. Shaders recover the flat workgroup index as wid.y*nwg.x + wid.x.
func dispatchSize(workgroups int) (x, y uint32) {
	if workgroups <= maxWorkgroupsPerDim {
		return u32(workgroups), 1
	}
	return maxWorkgroupsPerDim, u32((workgroups + maxWorkgroupsPerDim - 1) / maxWorkgroupsPerDim)
}

// unitsPerBinding returns how many units of unitSize float32 values fit in a
// binding of limit bytes.
func unitsPerBinding(unitSize int, limit uint64) int {
	if unitSize <= 0 {
		return 0
	}
	return int(limit / (uint64(unitSize) * 4)) //nolint:gosec // G115: bounded by limit.
}

// split calls f on consecutive unit ranges [first, last) whose operands fit in one
// storage binding. An operation whose single unit is larger than a binding is declined.
func (b *Backend) split(op string, units, unitSize int, f func(first, last int) error) error {
	per := unitsPerBinding(unitSize, b.maxBinding)
	if per == 0 {
		return fmt.Errorf("%w: %d bytes per unit exceed the %d byte binding limit",
			tensor.Unsupported(b.Name(), op), unitSize*4, b.maxBinding)
	}
	for first := 0; first < units; first += per {
		if err := f(first, min(first+per, units)); err != nil {
			return err
		}
	}
	return nil
}

// kernel describes one dispatch: the shader, its read-only inputs, the output buffer
// contents, and the parameter words.
type kernel struct {
	name   string
	code   string
	inputs [][]float32
	// output is uploaded when preserve is set, so elements the shader does not
	// write keep their values. Otherwise the output buffer starts zeroed.
	output   []float32
	preserve bool
	params   []uint32
	tasks    int
}

// run uploads the operands, dispatches k.tasks invocations and copies the output
// buffer back into k.output.
func (b *Backend) run(k kernel) error {
	if k.tasks == 0 || len(k.output) == 0 {
		return nil
	}
	pipeline := b.getOrCreatePipeline(k.name, k.code)

	entries := make([]wgpu.BindGroupEntry, 0, len(k.inputs)+2)
	for i, in := range k.inputs {
		buffer := b.createBuffer(in, wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
		defer buffer.Release()
		entries = append(entries, wgpu.BufferBindingEntry(u32(i), buffer, 0, uint64(len(in)*4)))
	}

	outputSize := uint64(len(k.output) * 4)
	var output *wgpu.Buffer
	if k.preserve {
		output = b.createBuffer(k.output, wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc|wgpu.BufferUsageCopyDst)
	} else {
		output = b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
			Size:  outputSize,
		})
	}
	defer output.Release()
	entries = append(entries, wgpu.BufferBindingEntry(u32(len(k.inputs)), output, 0, outputSize))

	params := packParams(k.params...)
	bufferParams := b.createUniformBuffer(params)
	defer bufferParams.Release()
	entries = append(entries, wgpu.BufferBindingEntry(u32(len(k.inputs)+1), bufferParams, 0, uint64(len(params))))

	bindGroup := b.device.CreateBindGroupSimple(pipeline.GetBindGroupLayout(0), entries)
	defer bindGroup.Release()

	launch := grid.NewLaunch(k.tasks, workgroupSize)
	x, y := dispatchSize(launch.Workgroups())

	b.submitMu.Lock()
	defer b.submitMu.Unlock()

	encoder := b.device.CreateCommandEncoder(nil)
	computePass := encoder.BeginComputePass(nil)
	computePass.SetPipeline(pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)
	computePass.DispatchWorkgroups(x, y, 1)
	computePass.End()
	b.queue.Submit(encoder.Finish(nil))

	return b.readBuffer(output, k.output)
}

// readBuffer copies src into dst through a pooled staging buffer, since storage
// buffers can't be mapped directly. A staging buffer that failed to map is
// destroyed rather than pooled.
func (b *Backend) readBuffer(src *wgpu.Buffer, dst []float32) error {
	size := uint64(len(dst) * 4)
	usage := wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst
	staging, _ := b.staging.Acquire(size, usage)

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src, 0, staging, 0, size)
	b.queue.Submit(encoder.Finish(nil))

	if err := staging.MapAsync(b.device, wgpu.MapModeRead, 0, size); err != nil {
		b.staging.Discard(staging)
		return fmt.Errorf("webgpu: failed to map staging buffer: %w", err)
	}
	mappedPtr := staging.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	copy(floatBytes(dst), unsafe.Slice((*byte)(mappedPtr), size))
	staging.Unmap()

	b.staging.Release(staging, size, usage)
	return nil
}
