package envelope

import "math"

// PeakTracker implements spec §4.11's decay-and-hold peak estimator used by
// side-chain compression: "peak_tracker.update(peak_i, i, N, T) keeps peak
// for hold_samples, then exponentially decays." A newly observed sample
// that exceeds the tracked peak replaces it immediately (instantaneous
// attack); once the input falls back under the tracked peak, the tracker
// holds that peak for holdSamples before letting it decay exponentially,
// so a side-chain compressor doesn't chase every zero-crossing of a
// periodic signal.
type PeakTracker struct {
	sampleRate float64

	holdSamples int
	decayCoef   float64

	peak     float64
	holdLeft int
}

// NewPeakTracker creates a tracker with a 10ms hold and 100ms decay.
// dynamics.Compressor replaces both through SetHoldTime/SetDecayTime with
// its own values: no hold, and a decay equal to its release time.
func NewPeakTracker(sampleRate float64) *PeakTracker {
	t := &PeakTracker{sampleRate: sampleRate}
	t.SetHoldTime(0.010)
	t.SetDecayTime(0.100)
	return t
}

// SetHoldTime sets how long, in seconds, a peak is held before it starts
// decaying.
func (t *PeakTracker) SetHoldTime(seconds float64) {
	t.holdSamples = int(math.Max(0, seconds) * t.sampleRate)
}

// SetDecayTime sets the exponential decay time constant, in seconds, used
// once the hold window has elapsed.
func (t *PeakTracker) SetDecayTime(seconds float64) {
	seconds = math.Max(0.0001, seconds)
	t.decayCoef = math.Exp(-1.0 / (seconds * t.sampleRate))
}

// Update observes one signed input sample and returns the tracked peak
// after folding it in.
func (t *PeakTracker) Update(sample float64) float64 {
	level := math.Abs(sample)
	if level >= t.peak {
		t.peak = level
		t.holdLeft = t.holdSamples
		return t.peak
	}
	if t.holdLeft > 0 {
		t.holdLeft--
	} else {
		t.peak *= t.decayCoef
	}
	return t.peak
}

// Process tracks an entire block of N samples and returns the peak at the
// end of it - spec's peak_tracker.update(peak_i, i, N, T) applied sample
// by sample across the block.
func (t *PeakTracker) Process(buffer []float32) float64 {
	peak := t.peak
	for _, sample := range buffer {
		peak = t.Update(float64(sample))
	}
	return peak
}

// Peak returns the currently tracked peak without observing a new sample.
func (t *PeakTracker) Peak() float64 { return t.peak }

// Reset clears the tracked peak and hold counter.
func (t *PeakTracker) Reset() {
	t.peak = 0
	t.holdLeft = 0
}
