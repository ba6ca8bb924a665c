// Package dynamics provides dynamics processing for the side-chain
// compression spec §4.11 describes: a compressor that watches an input
// signal's peak, ramps an internal linear gain toward a target whenever
// that peak crosses a threshold, and snaps to unity once settled there.
package dynamics

import (
	"math"

	"github.com/attilammagyar/js80p-sub000/pkg/dsp/envelope"
)

// Compressor implements spec §4.11's side-chain model in the linear
// domain: gain ramps toward min(1, thresholdGain/peak/ratio) over
// attackTime whenever the tracked peak exceeds thresholdGain, and ramps
// back toward unity over releaseTime once it no longer does. A "fast
// bypass" skips the ramp entirely once gain has settled at exactly unity,
// so a quiet passage doesn't pay for a ramp that has nothing left to do.
type Compressor struct {
	sampleRate float64

	thresholdGain float64 // linear, not dB
	ratio         float64
	attackTime    float64 // seconds
	releaseTime   float64 // seconds

	peaks *envelope.PeakTracker

	gain float64 // current linear gain, 0..1
}

// NewCompressor creates a compressor at unity gain with a -20dB threshold,
// 4:1 ratio, 5ms attack and 50ms release - the same defaults the teacher's
// generic compressor shipped, re-expressed in the side-chain model's own
// linear terms.
func NewCompressor(sampleRate float64) *Compressor {
	c := &Compressor{
		sampleRate:    sampleRate,
		thresholdGain: dbToLinear(-20.0),
		ratio:         4.0,
		attackTime:    0.005,
		releaseTime:   0.050,
		peaks:         envelope.NewPeakTracker(sampleRate),
		gain:          1.0,
	}
	c.peaks.SetHoldTime(0)
	c.peaks.SetDecayTime(c.releaseTime)
	return c
}

func dbToLinear(db float64) float64 { return math.Pow(10, db/20) }

// SetThreshold sets the level, in dB, above which the side-chain starts
// ramping gain down.
func (c *Compressor) SetThreshold(dB float64) { c.thresholdGain = dbToLinear(dB) }

// SetRatio sets the compression ratio (1.0 = no compression, higher =
// more aggressive).
func (c *Compressor) SetRatio(ratio float64) { c.ratio = math.Max(1.0, ratio) }

// SetAttack sets how long, in seconds, the gain ramp takes to reach its
// target once the peak crosses the threshold.
func (c *Compressor) SetAttack(seconds float64) { c.attackTime = math.Max(0.0001, seconds) }

// SetRelease sets how long, in seconds, the gain ramp takes to return to
// unity once the peak falls back under the threshold, and retunes the
// peak tracker's own decay to match.
func (c *Compressor) SetRelease(seconds float64) {
	c.releaseTime = math.Max(0.001, seconds)
	c.peaks.SetDecayTime(c.releaseTime)
}

// GetGainReduction reports the most recently applied gain reduction in
// dB, for metering.
func (c *Compressor) GetGainReduction() float64 {
	if c.gain <= 0 {
		return 96.0
	}
	return -20.0 * math.Log10(c.gain)
}

// targetGain is spec §4.11's min(1, thresholdGain/peak/ratio): the gain
// that would bring peak down to thresholdGain/ratio above the threshold,
// clamped so it never exceeds unity.
func (c *Compressor) targetGain(peak float64) float64 {
	if peak <= c.thresholdGain || peak <= 0 {
		return 1.0
	}
	target := c.thresholdGain / peak / c.ratio
	if target > 1.0 {
		return 1.0
	}
	return target
}

// ProcessBuffer ducks input by tracking its peak and ramping an internal
// gain toward the target every sample, applying that gain to the same
// position in output (input and output may be the same slice, matching
// the teacher's in-place ProcessBuffer convention).
func (c *Compressor) ProcessBuffer(input, output []float32) {
	attackStep := 1.0 / (c.attackTime * c.sampleRate)
	releaseStep := 1.0 / (c.releaseTime * c.sampleRate)

	for i, sample := range input {
		peak := c.peaks.Update(float64(sample))
		target := c.targetGain(peak)

		if c.gain == 1.0 && target >= 1.0 {
			// Fast bypass: already settled at unity with nothing pulling
			// it down this sample.
			output[i] = sample
			continue
		}

		if target < c.gain {
			c.gain -= attackStep
			if c.gain < target {
				c.gain = target
			}
		} else {
			c.gain += releaseStep
			if c.gain > target {
				c.gain = target
			}
		}

		output[i] = sample * float32(c.gain)
	}
}

// Reset clears the tracked peak and returns gain to unity.
func (c *Compressor) Reset() {
	c.peaks.Reset()
	c.gain = 1.0
}
