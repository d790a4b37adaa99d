package tensor

import (
	"slices"
	"testing"
)

func TestBlobDesc(t *testing.T) {
	d := BlobDesc{BatchLength: 2, BatchWidth: 3, ListSize: 1, Height: 4, Width: 5, Depth: 1, Channels: 6}

	if got := d.ObjectCount(); got != 6 {
		t.Errorf("ObjectCount() = %d, want 6", got)
	}
	if got := d.ObjectSize(); got != 120 {
		t.Errorf("ObjectSize() = %d, want 120", got)
	}
	if got := d.BlobSize(); got != 720 {
		t.Errorf("BlobSize() = %d, want 720", got)
	}
	if got := d.Shape(); !slices.Equal(got, Shape{2, 3, 1, 4, 5, 1, 6}) {
		t.Errorf("Shape() = %v", got)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestNewBlobDesc(t *testing.T) {
	d := NewBlobDesc()
	if d.BlobSize() != 1 {
		t.Errorf("NewBlobDesc().BlobSize() = %d, want 1", d.BlobSize())
	}

	d.Depth = 0
	if err := d.Validate(); err == nil {
		t.Error("Validate() accepted a zero dimension")
	}
}

func TestDeviceString(t *testing.T) {
	tests := map[Device]string{CPU: "CPU", Grid: "Grid", WebGPU: "WebGPU", Device(42): "Unknown"}
	for d, want := range tests {
		if got := d.String(); got != want {
			t.Errorf("Device(%d).String() = %q, want %q", int(d), got, want)
		}
	}
}
