//go:build debug

package debug

import (
	"testing"
)

func TestCheckAllocation(t *testing.T) {
	EnableAllocationTracking()
	defer DisableAllocationTracking()

	buffer := make([]float32, 128)
	CheckAllocation(buffer, "test_buffer")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for nil buffer")
		}
	}()
	CheckAllocation(nil, "nil_buffer")
}

func TestCheckAllocationZeroCapacity(t *testing.T) {
	EnableAllocationTracking()
	defer DisableAllocationTracking()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for zero capacity buffer")
		}
	}()

	var buffer []float32
	CheckAllocation(buffer, "zero_cap_buffer")
}

func TestFrameTracking(t *testing.T) {
	EnableAllocationTracking()
	defer DisableAllocationTracking()

	StartFrame()

	buffer := make([]float32, 128)
	CheckAllocation(buffer, "frame_buffer")

	allocs, bytes := EndFrame()

	if allocs != 1 {
		t.Errorf("Expected 1 allocation in frame, got %d", allocs)
	}
	if bytes != 128*4 { // 128 float32s * 4 bytes each
		t.Errorf("Expected %d bytes in frame, got %d", 128*4, bytes)
	}
}

func TestVerifyBufferReuse(t *testing.T) {
	EnableAllocationTracking()
	defer DisableAllocationTracking()

	buffer := make([]float32, 128)

	ptr1 := VerifyBufferReuse(buffer, "reuse_test", 0)
	if ptr1 == 0 {
		t.Error("Expected non-zero pointer")
	}

	ptr2 := VerifyBufferReuse(buffer, "reuse_test", ptr1)
	if ptr2 != ptr1 {
		t.Error("Expected same pointer")
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for reallocated buffer")
		}
	}()

	newBuffer := make([]float32, 128)
	VerifyBufferReuse(newBuffer, "reuse_test", ptr1)
}
