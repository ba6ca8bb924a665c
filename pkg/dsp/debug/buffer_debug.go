//go:build debug

// Package debug guards the render path against accidental per-block
// allocation: CheckAllocation panics if a buffer handed to it is nil or
// unallocated, and StartFrame/EndFrame count how many tracked-buffer
// checks (CheckAllocation calls) a block makes. Compiled out entirely without the 'debug' build tag.
package debug

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

// AllocationTracker tracks buffer allocations to help detect unwanted
// allocations in the audio processing path.
type AllocationTracker struct {
	allocations map[string]*AllocationInfo
	mu          sync.RWMutex
	enabled     atomic.Bool
	totalAllocs atomic.Uint64
	totalBytes  atomic.Uint64
	frameAllocs atomic.Uint64
	frameBytes  atomic.Uint64
}

// AllocationInfo records how a single named buffer has been used.
type AllocationInfo struct {
	Name       string
	Size       int
	Capacity   int
	Count      uint64
	TotalBytes uint64
}

var globalTracker = &AllocationTracker{
	allocations: make(map[string]*AllocationInfo),
}

// EnableAllocationTracking enables global allocation tracking.
func EnableAllocationTracking() {
	globalTracker.enabled.Store(true)
}

// DisableAllocationTracking disables global allocation tracking.
func DisableAllocationTracking() {
	globalTracker.enabled.Store(false)
}

// CheckAllocation verifies that buffer is pre-allocated and tracks its
// usage. Called at the start of a render-path function (pkg/dsp/bus,
// pkg/dsp/effects, pkg/synth's ensureBuffers) for every buffer it reuses
// across blocks.
func CheckAllocation(buffer []float32, name string) {
	if !globalTracker.enabled.Load() {
		return
	}

	if buffer == nil {
		panic(fmt.Sprintf("Buffer %s is nil", name))
	}
	if cap(buffer) == 0 {
		panic(fmt.Sprintf("Buffer %s is not pre-allocated (capacity is 0)", name))
	}

	trackAllocation(name, len(buffer), cap(buffer))
}

func trackAllocation(name string, size, capacity int) {
	globalTracker.mu.Lock()
	defer globalTracker.mu.Unlock()

	info, exists := globalTracker.allocations[name]
	if !exists {
		info = &AllocationInfo{Name: name, Size: size, Capacity: capacity}
		globalTracker.allocations[name] = info
	}

	info.Count++
	info.TotalBytes += uint64(size * 4) // float32 is 4 bytes

	globalTracker.totalAllocs.Add(1)
	globalTracker.totalBytes.Add(uint64(size * 4))
	globalTracker.frameAllocs.Add(1)
	globalTracker.frameBytes.Add(uint64(size * 4))
}

// StartFrame marks the beginning of a new audio processing frame.
func StartFrame() {
	globalTracker.frameAllocs.Store(0)
	globalTracker.frameBytes.Store(0)
}

// EndFrame marks the end of an audio processing frame and returns how many
// tracked-buffer touches (and bytes) occurred since StartFrame.
func EndFrame() (allocations uint64, bytes uint64) {
	return globalTracker.frameAllocs.Load(), globalTracker.frameBytes.Load()
}

// VerifyBufferReuse checks that buffer's backing array is the same one
// returned by the previous call (expectedPtr), panicking if it moved —
// evidence the caller reallocated instead of reusing its buffer.
func VerifyBufferReuse(buffer []float32, name string, expectedPtr uintptr) uintptr {
	if !globalTracker.enabled.Load() {
		return 0
	}

	ptr := uintptr(0)
	if len(buffer) > 0 {
		ptr = uintptr(unsafe.Pointer(&buffer[0]))
	}

	if expectedPtr != 0 && ptr != expectedPtr {
		panic(fmt.Sprintf("Buffer %s was reallocated! Expected ptr %x, got %x",
			name, expectedPtr, ptr))
	}

	return ptr
}
