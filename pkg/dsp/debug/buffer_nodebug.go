//go:build !debug

// Package debug guards the render path against accidental per-block
// allocation. This file supplies zero-overhead no-ops for a release build.
package debug

// EnableAllocationTracking is a no-op when not in debug mode.
func EnableAllocationTracking() {}

// DisableAllocationTracking is a no-op when not in debug mode.
func DisableAllocationTracking() {}

// CheckAllocation is a no-op when not in debug mode.
func CheckAllocation(buffer []float32, name string) {}

// StartFrame is a no-op when not in debug mode.
func StartFrame() {}

// EndFrame returns zero counts when not in debug mode.
func EndFrame() (allocations uint64, bytes uint64) {
	return 0, 0
}

// VerifyBufferReuse is a no-op when not in debug mode.
func VerifyBufferReuse(buffer []float32, name string, expectedPtr uintptr) uintptr {
	return 0
}
