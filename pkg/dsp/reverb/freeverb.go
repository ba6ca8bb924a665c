// Package reverb implements the shared effects chain's reverb stage (spec
// §4's `filter->filter->volume->overdrive->distortion->chorus->echo->
// reverb->volume` order).
package reverb

import "math"

const (
	numCombs     = 8
	numAllpasses = 4
	fixedGain    = 0.015
	scaleDamping = 0.4
	scaleRoom    = 0.28
	offsetRoom   = 0.7
	initialRoom  = 0.5
	initialDamp  = 0.5
	initialWet   = 1.0 / 3.0
	initialDry   = 0.0
	initialWidth = 1.0
	stereoSpread = 23

	freezeRoom = 1.0
	freezeDamp = 0.0
)

// comb tuning values, in samples at 44.1kHz, from Jezar at Dreampoint's
// Freeverb.
var combTuning = [numCombs]int{
	1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617,
}

var allpassTuning = [numAllpasses]int{
	556, 441, 341, 225,
}

// comb is a feedback comb filter with a one-pole lowpass in the feedback
// path, giving the reverb's decay a frequency-dependent damping curve
// instead of a flat exponential one.
type comb struct {
	buffer      []float32
	index       int
	feedback    float64
	filterStore float32
	damp1       float64
	damp2       float64
}

func newComb(delaySamples int) *comb {
	return &comb{
		buffer:   make([]float32, delaySamples),
		feedback: 0.5,
		damp1:    0.5,
		damp2:    0.5,
	}
}

func (c *comb) setFeedback(feedback float64) { c.feedback = math.Max(0.0, math.Min(1.0, feedback)) }

func (c *comb) setDamping(damping float64) {
	c.damp1 = damping
	c.damp2 = 1.0 - damping
}

func (c *comb) process(input float32) float32 {
	output := c.buffer[c.index]
	c.filterStore = float32(float64(output)*c.damp2 + float64(c.filterStore)*c.damp1)
	c.buffer[c.index] = input + float32(c.feedback)*c.filterStore
	c.index++
	if c.index >= len(c.buffer) {
		c.index = 0
	}
	return output
}

func (c *comb) reset() {
	for i := range c.buffer {
		c.buffer[i] = 0
	}
	c.index = 0
	c.filterStore = 0
}

// allpass is a fixed-feedback allpass diffuser: y[n] = -x[n] + w[n-D],
// with w[n] = x[n] + feedback*w[n-D] held in its buffer, run in series after the parallel combs to smear their
// output into a denser, less metallic tail.
type allpass struct {
	buffer   []float32
	index    int
	feedback float64
}

func newAllpass(delaySamples int) *allpass {
	return &allpass{buffer: make([]float32, delaySamples), feedback: 0.5}
}

func (a *allpass) process(input float32) float32 {
	bufOut := a.buffer[a.index]
	output := -input + bufOut
	a.buffer[a.index] = input + float32(a.feedback)*bufOut
	a.index++
	if a.index >= len(a.buffer) {
		a.index = 0
	}
	return output
}

func (a *allpass) reset() {
	for i := range a.buffer {
		a.buffer[i] = 0
	}
	a.index = 0
}

// Freeverb is the effects chain's reverb stage: 8 parallel damped combs per
// channel feeding 4 series allpass diffusers, the classic Freeverb topology.
type Freeverb struct {
	combL [numCombs]*comb
	combR [numCombs]*comb

	allpassL [numAllpasses]*allpass
	allpassR [numAllpasses]*allpass

	gain       float64
	roomSize   float64
	damping    float64
	wetLevel   float64
	dryLevel   float64
	width      float64
	frozen     bool
	sampleRate float64

	wet1  float64
	wet2  float64
	dry   float64
}

// NewFreeverb builds a Freeverb instance with its comb/allpass delay lines
// scaled from the reference 44.1kHz tunings to sampleRate.
func NewFreeverb(sampleRate float64) *Freeverb {
	f := &Freeverb{
		gain:       fixedGain,
		roomSize:   initialRoom,
		damping:    initialDamp,
		wetLevel:   initialWet,
		dryLevel:   initialDry,
		width:      initialWidth,
		sampleRate: sampleRate,
	}

	scale := sampleRate / 44100.0
	for i := 0; i < numCombs; i++ {
		f.combL[i] = newComb(int(float64(combTuning[i]) * scale))
		f.combR[i] = newComb(int(float64(combTuning[i]+stereoSpread) * scale))
	}
	for i := 0; i < numAllpasses; i++ {
		f.allpassL[i] = newAllpass(int(float64(allpassTuning[i]) * scale))
		f.allpassR[i] = newAllpass(int(float64(allpassTuning[i]+stereoSpread) * scale))
		f.allpassL[i].feedback = 0.5
		f.allpassR[i].feedback = 0.5
	}

	f.update()
	return f
}

func (f *Freeverb) SetRoomSize(size float64) {
	f.roomSize = math.Max(0.0, math.Min(1.0, size))
	f.update()
}

func (f *Freeverb) SetDamping(damping float64) {
	f.damping = math.Max(0.0, math.Min(1.0, damping))
	f.update()
}

func (f *Freeverb) SetWetLevel(level float64) {
	f.wetLevel = math.Max(0.0, math.Min(1.0, level))
	f.update()
}

func (f *Freeverb) SetDryLevel(level float64) {
	f.dryLevel = math.Max(0.0, math.Min(1.0, level))
	f.update()
}

func (f *Freeverb) SetWidth(width float64) {
	f.width = math.Max(0.0, math.Min(1.0, width))
	f.update()
}

// SetFrozen holds the reverb in an infinite-decay, zero-damping state,
// useful for pad-style sustain.
func (f *Freeverb) SetFrozen(frozen bool) {
	f.frozen = frozen
	f.update()
}

func (f *Freeverb) update() {
	f.wet1 = f.wetLevel * (f.width/2.0 + 0.5)
	f.wet2 = f.wetLevel * ((1.0 - f.width) / 2.0)
	f.dry = f.dryLevel

	roomSize, damping := f.roomSize, f.damping
	if f.frozen {
		roomSize, damping = freezeRoom, freezeDamp
	}

	feedback := roomSize*scaleRoom + offsetRoom
	damp1 := damping * scaleDamping

	for i := 0; i < numCombs; i++ {
		f.combL[i].setFeedback(feedback)
		f.combR[i].setFeedback(feedback)
		f.combL[i].setDamping(damp1)
		f.combR[i].setDamping(damp1)
	}
}

// ProcessStereo runs one stereo sample pair through the reverb.
func (f *Freeverb) ProcessStereo(inputL, inputR float32) (outputL, outputR float32) {
	input := (inputL + inputR) * float32(f.gain)

	var outL, outR float32
	for i := 0; i < numCombs; i++ {
		outL += f.combL[i].process(input)
		outR += f.combR[i].process(input)
	}
	for i := 0; i < numAllpasses; i++ {
		outL = f.allpassL[i].process(outL)
		outR = f.allpassR[i].process(outR)
	}

	outputL = outL*float32(f.wet1) + outR*float32(f.wet2) + inputL*float32(f.dry)
	outputR = outR*float32(f.wet1) + outL*float32(f.wet2) + inputR*float32(f.dry)
	return outputL, outputR
}

// Reset clears every comb and allpass delay line.
func (f *Freeverb) Reset() {
	for i := 0; i < numCombs; i++ {
		f.combL[i].reset()
		f.combR[i].reset()
	}
	for i := 0; i < numAllpasses; i++ {
		f.allpassL[i].reset()
		f.allpassR[i].reset()
	}
}
