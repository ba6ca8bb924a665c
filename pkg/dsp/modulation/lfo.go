// Package modulation provides modulation effects (LFOs and chorus) and the
// control-rate sources (LFO, Macro, MidiController) that drive
// param.Param.
package modulation

import (
	"math"

	"github.com/attilammagyar/js80p-sub000/pkg/dsp/param"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/signal"
)

// Waveform represents the LFO waveform shape
type Waveform int

const (
	// WaveformSine produces a sine wave
	WaveformSine Waveform = iota
	// WaveformTriangle produces a triangle wave
	WaveformTriangle
	// WaveformSquare produces a square wave
	WaveformSquare
	// WaveformSawtooth produces a sawtooth wave (ramp up)
	WaveformSawtooth
	// WaveformRandom produces random values (sample & hold noise)
	WaveformRandom
)

// LFO implements a low-frequency oscillator for modulation. Its rate, depth
// and DC offset are param.Param values rather than bare floats, so an LFO can
// itself be modulated by another LFO, a macro or a MIDI controller -
// including, transitively, by another LFO that this one feeds. Ratio breaks
// such cycles with a one-block-delay fallback: a reentrant call while this
// LFO is mid-evaluation returns its last computed value instead of
// recursing.
type LFO struct {
	sampleRate float64

	Frequency *param.Param // Hz, 0.01-20, log scale
	Depth     *param.Param // 0-1
	Offset    *param.Param // -1 to 1, linear

	waveform Waveform
	phase    float64

	syncEnabled bool
	syncPhase   float64

	currentRandom float64
	randomCounter int
	randomPeriod  int

	evaluating   bool
	hasCache     bool
	cachedRound  signal.Round
	cachedSample int
	cachedValue  float64
}

// NewLFO creates a new LFO
func NewLFO(sampleRate float64) *LFO {
	l := &LFO{
		sampleRate: sampleRate,
		Frequency:  param.New("freq", 0.01, 20.0, 1.0, param.ScaleLog, false),
		Depth:      param.New("depth", 0.0, 1.0, 1.0, param.ScaleLinear, false),
		Offset:     param.New("offset", -1.0, 1.0, 0.0, param.ScaleLinear, false),
		waveform:   WaveformSine,
	}
	l.updateRandomPeriod()
	return l
}

// SetFrequency sets the LFO frequency in Hz
func (l *LFO) SetFrequency(hz float64) {
	l.Frequency.SetPlain(math.Max(0.01, math.Min(20.0, hz)))
	l.updateRandomPeriod()
}

// SetWaveform sets the LFO waveform
func (l *LFO) SetWaveform(waveform Waveform) {
	l.waveform = waveform
	if waveform == WaveformRandom {
		l.updateRandomPeriod()
		l.currentRandom = 2.0*randFloat() - 1.0
		l.randomCounter = 0
	}
}

// SetDepth sets the modulation depth (0-1)
func (l *LFO) SetDepth(depth float64) { l.Depth.SetPlain(math.Max(0.0, math.Min(1.0, depth))) }

// SetOffset sets the DC offset (-1 to 1)
func (l *LFO) SetOffset(offset float64) { l.Offset.SetPlain(math.Max(-1.0, math.Min(1.0, offset))) }

// SetPhase sets the current phase (0-1)
func (l *LFO) SetPhase(phase float64) {
	l.phase = phase - math.Floor(phase) // Wrap to 0-1
}

// EnableSync enables sync with configurable reset phase
func (l *LFO) EnableSync(enabled bool, resetPhase float64) {
	l.syncEnabled = enabled
	l.syncPhase = math.Max(0.0, math.Min(1.0, resetPhase))
}

// Sync resets the LFO phase (for tempo sync or note retrigger)
func (l *LFO) Sync() {
	if l.syncEnabled {
		l.phase = l.syncPhase
	}
}

func (l *LFO) updateRandomPeriod() {
	freq := l.Frequency.Plain()
	if freq > 0 {
		l.randomPeriod = int(l.sampleRate / freq)
	} else {
		l.randomPeriod = int(l.sampleRate)
	}
}

// generateWaveform generates the raw waveform value for current phase
func (l *LFO) generateWaveform() float64 {
	switch l.waveform {
	case WaveformSine:
		return math.Sin(2.0 * math.Pi * l.phase)

	case WaveformTriangle:
		if l.phase < 0.5 {
			return 4.0*l.phase - 1.0
		}
		return 3.0 - 4.0*l.phase

	case WaveformSquare:
		if l.phase < 0.5 {
			return 1.0
		}
		return -1.0

	case WaveformSawtooth:
		return 2.0*l.phase - 1.0

	case WaveformRandom:
		if l.randomCounter >= l.randomPeriod {
			l.randomCounter = 0
			l.currentRandom = 2.0*randFloat() - 1.0
		}
		l.randomCounter++
		return l.currentRandom

	default:
		return 0.0
	}
}

// Process generates the next LFO sample, using the Frequency/Depth/Offset
// params' local values.
func (l *LFO) Process() float64 {
	return l.advance(l.Frequency.Plain(), l.Depth.Plain(), l.Offset.Plain())
}

func (l *LFO) advance(freq, depth, offset float64) float64 {
	wave := l.generateWaveform()
	output := wave*depth + offset

	l.phase += freq / l.sampleRate
	if l.phase >= 1.0 {
		l.phase -= 1.0
	}

	return math.Max(-1.0, math.Min(1.0, output))
}

// ProcessBuffer fills a buffer with LFO values
func (l *LFO) ProcessBuffer(output []float64) {
	for i := range output {
		output[i] = l.Process()
	}
}

// GetPhase returns the current phase (0-1)
func (l *LFO) GetPhase() float64 {
	return l.phase
}

// Reset resets the LFO state
func (l *LFO) Reset() {
	l.phase = 0.0
	l.randomCounter = 0
	l.currentRandom = 0.0
	l.hasCache = false
}

// Ratio implements param.ValueSource, so an LFO can drive another Param
// directly. The bipolar waveform is mapped into [0, 1]. Calling Ratio twice
// for the same (round, sampleIndex) returns the cached value rather than
// advancing the phase twice; a reentrant call that arrives while this LFO is
// still resolving its own Frequency/Depth/Offset params (an LFO graph cycle)
// also returns the cached value instead of recursing.
func (l *LFO) Ratio(round signal.Round, sampleIndex int) float64 {
	if l.hasCache && l.cachedRound == round && l.cachedSample == sampleIndex {
		return l.cachedValue
	}
	if l.evaluating {
		return l.cachedValue
	}

	l.evaluating = true
	freq := l.Frequency.ValueAt(round, sampleIndex)
	depth := l.Depth.ValueAt(round, sampleIndex)
	offset := l.Offset.ValueAt(round, sampleIndex)
	value := l.advance(freq, depth, offset)
	l.evaluating = false

	ratio := clamp01((value + 1.0) / 2.0)

	l.cachedRound = round
	l.cachedSample = sampleIndex
	l.cachedValue = ratio
	l.hasCache = true

	return ratio
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Simple random number generator (can be replaced with better RNG)
var randState uint32 = 1

func randFloat() float64 {
	// Simple linear congruential generator
	randState = randState*1664525 + 1013904223
	return float64(randState) / float64(1<<32)
}
