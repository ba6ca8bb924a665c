// Package oscillator implements the voice engine's per-voice and per-LFO
// tone generator: a band-limited wavetable oscillator with an optional
// one-octave-down subharmonic layer, driven by param.Param frequency and
// level inputs so it can sit anywhere in the modulation graph.
package oscillator

import (
	"math"

	"github.com/attilammagyar/js80p-sub000/pkg/dsp/interpolation"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/param"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/signal"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/wavetable"
)

// EventSyncPhase resets the oscillator's phase to 0 mid-block, used for
// hard sync and note retriggering.
const EventSyncPhase signal.EventType = signal.EventUser

// Oscillator is a signal.Renderer producing one band-limited waveform per
// channel, optionally layered with a subharmonic copy one octave below.
type Oscillator struct {
	base signal.Base

	sampleRate float64
	bank       *wavetable.Bank
	subBank    *wavetable.Bank
	interp     wavetable.Interpolation

	Frequency *param.Param // Hz
	SubLevel  *param.Param // 0..1, amplitude of the subharmonic layer

	phase    float64
	subPhase float64
}

// New creates an Oscillator producing shape at the given sample rate.
// lowestFreq sets the bottom of the wavetable octave ladder; MIDI note 0
// (~8 Hz) is a reasonable value for subtractive voices.
func New(sampleRate float64, shape wavetable.Shape, lowestFreq float64) *Oscillator {
	o := &Oscillator{
		base:       signal.NewBase(1),
		sampleRate: sampleRate,
		bank:       wavetable.NewBank(shape, sampleRate, lowestFreq),
		subBank:    wavetable.NewBank(shape, sampleRate, lowestFreq/2),
		interp:     wavetable.InterpolationCubic,
		Frequency:  param.New("frequency", lowestFreq, sampleRate/2, 440.0, param.ScaleLog, false),
		SubLevel:   param.New("sub_level", 0.0, 1.0, 0.0, param.ScaleLinear, false),
	}
	return o
}

// SetInterpolation switches between cubic (default) and cheaper linear
// table reads.
func (o *Oscillator) SetInterpolation(method wavetable.Interpolation) {
	o.interp = method
}

// Sync resets the oscillator's phase to 0 at the given sample offset
// within the next block produced.
func (o *Oscillator) Sync(offset int) {
	o.base.Schedule(signal.Event{Type: EventSyncPhase, Offset: offset})
}

// Produce renders (or returns the cached) block for round.
func (o *Oscillator) Produce(round signal.Round, sampleCount int) [][]float32 {
	return o.base.Produce(o, round, sampleCount)
}

// InitializeRendering implements signal.Renderer. An oscillator is never
// silent on its own; muting happens downstream via an envelope or gain.
func (o *Oscillator) InitializeRendering(round signal.Round, sampleCount int) bool {
	return false
}

// HandleEvent implements signal.Handler.
func (o *Oscillator) HandleEvent(e signal.Event) {
	if e.Type == EventSyncPhase {
		o.phase = 0
		o.subPhase = 0
	}
}

// Render implements signal.Renderer.
func (o *Oscillator) Render(round signal.Round, firstSample, lastSample int, buffers [][]float32) {
	freq := o.Frequency.BlockValue(round)
	subLevel := o.SubLevel.BlockValue(round)

	low, high, blend := o.bank.TableAndBlend(freq)
	phaseInc := freq / o.sampleRate

	var subLow, subHigh *wavetable.Table
	var subBlend float32
	var subPhaseInc float64
	if subLevel > 0 {
		subLow, subHigh, subBlend = o.subBank.TableAndBlend(freq / 2)
		subPhaseInc = phaseInc / 2
	}

	out := buffers[0]
	for i := firstSample; i < lastSample; i++ {
		sample := interpolation.Linear(low.At(o.phase, o.interp), high.At(o.phase, o.interp), blend)

		if subLevel > 0 {
			subSample := interpolation.Linear(subLow.At(o.subPhase, o.interp), subHigh.At(o.subPhase, o.interp), subBlend)
			sample += subSample * float32(subLevel)
		}

		out[i] = sample

		o.phase += phaseInc
		if o.phase >= 1.0 {
			o.phase -= math.Floor(o.phase)
		}
		if subLevel > 0 {
			o.subPhase += subPhaseInc
			if o.subPhase >= 1.0 {
				o.subPhase -= math.Floor(o.subPhase)
			}
		}
	}
}

// FinalizeRendering implements signal.Renderer.
func (o *Oscillator) FinalizeRendering(round signal.Round, sampleCount int) {}

// Reset zeroes the oscillator's phase accumulators.
func (o *Oscillator) Reset() {
	o.phase = 0
	o.subPhase = 0
}
