// Package debug guards the render path against accidental per-block
// allocation.
//
// pkg/dsp/bus, pkg/dsp/effects, and pkg/synth's ensureBuffers each call
// CheckAllocation on every buffer they reuse across render blocks; in a
// debug build (-tags debug) this panics the first time a buffer turns out
// to be nil or unallocated, catching a reused-buffer bug before it ships
// as an audible glitch. StartFrame/EndFrame and VerifyBufferReuse give a
// test finer-grained allocation bookkeeping when it wants it.
//
// Without the 'debug' tag every function in this package is a no-op.
package debug
