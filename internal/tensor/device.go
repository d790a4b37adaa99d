package tensor

// Device represents the execution target of a backend.
type Device int

// Supported compute devices.
const (
	// CPU runs kernels as ordinary loops on the calling goroutine.
	CPU Device = iota
	// Grid runs kernels as GPU-style launches of independent tasks on goroutines.
	Grid
	// WebGPU runs kernels as WGSL compute shaders.
	WebGPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case Grid:
		return "Grid"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}
