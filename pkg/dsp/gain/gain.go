// Package gain provides the decibel/linear conversions and buffer-gain
// helpers the engine needs at its edges: the side-chain compressor reports
// gain reduction in dB (spec §4.11) and the effects chain's side-chain
// publishes it back in linear form as its Gain param, and the synth's final output stage needs a
// hard clamp (spec §4.12) to protect a host from runaway resonance.
package gain

import "math"

// MinDB is treated as effectively silent; DbToLinear floors to 0 there
// instead of underflowing toward it.
const MinDB = -200.0

// LinearToDb converts a linear amplitude value to decibels.
// Returns MinDB for values <= 0.
func LinearToDb(linear float64) float64 {
	if linear <= 0 {
		return MinDB
	}
	return 20.0 * math.Log10(linear)
}

// DbToLinear converts a decibel value to linear amplitude.
// Values <= MinDB return 0.
func DbToLinear(db float64) float64 {
	if db <= MinDB {
		return 0
	}
	return math.Pow(10.0, db/20.0)
}

// ApplyBuffer scales an entire buffer in place by a linear gain factor.
func ApplyBuffer(buffer []float32, gain float32) {
	for i := range buffer {
		buffer[i] *= gain
	}
}

// HardClip clamps a sample to +-threshold.
func HardClip(input, threshold float32) float32 {
	if input > threshold {
		return threshold
	}
	if input < -threshold {
		return -threshold
	}
	return input
}

// HardClipBuffer clamps an entire buffer in place to +-threshold.
func HardClipBuffer(buffer []float32, threshold float32) {
	for i := range buffer {
		buffer[i] = HardClip(buffer[i], threshold)
	}
}
