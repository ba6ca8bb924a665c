// Package param implements the synthesis engine's atomic-ratio parameters:
// lock-free audio-thread reads, block- or sample-accurate re-evaluation,
// log-scale value mapping and a fixed modulation-source precedence order.
package param

import (
	"math"
	"sync/atomic"

	"github.com/attilammagyar/js80p-sub000/pkg/dsp/signal"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/utility"
)

// Scale selects how a Param's ratio in [0, 1] maps onto its plain value
// range. ScaleLog is used for frequency- and time-like parameters, where
// equal ratio steps should feel like equal multiplicative steps.
type Scale int

const (
	ScaleLinear Scale = iota
	ScaleLog
)

// ValueSource supplies a ratio in [0, 1] for a given sample within a round.
// Envelopes, LFOs, macros and MIDI controllers all implement this so any
// of them can drive a Param.
type ValueSource interface {
	Ratio(round signal.Round, sampleIndex int) float64
}

// Param is a single synthesis parameter. Its ratio is stored atomically so
// it can be read from the audio thread without locking while a control
// thread sets new values, schedules ramps, or binds a modulation source.
//
// When more than one modulation source is bound, ratioAt resolves them in
// a fixed precedence: envelope, then LFO, then macro, then MIDI controller,
// then the param's own locally scheduled value.
type Param struct {
	Name           string
	Min, Max       float64
	scale          Scale
	sampleAccurate bool

	ratioBits   uint64
	changeIndex uint64

	rampTarget uint64
	rampStep   uint64
	rampLeft   int64

	envelopeSrc, lfoSrc, macroSrc, midiSrc ValueSource
}

// New creates a Param over [min, max] starting at defaultValue.
// sampleAccurate selects whether the local (unbound) ratio advances its
// ramp once per sample, rather than being frozen for the whole block.
func New(name string, min, max, defaultValue float64, scale Scale, sampleAccurate bool) *Param {
	p := &Param{Name: name, Min: min, Max: max, scale: scale, sampleAccurate: sampleAccurate}
	p.SetPlain(defaultValue)
	return p
}

// Ratio returns the param's current local ratio in [0, 1]. This ignores
// any bound modulation source; use ValueAt/BlockValue to resolve those.
func (p *Param) Ratio() float64 {
	return math.Float64frombits(atomic.LoadUint64(&p.ratioBits))
}

// SetRatio sets the local ratio directly, cancelling any in-flight ramp.
func (p *Param) SetRatio(ratio float64) {
	ratio = clamp01(ratio)
	atomic.StoreUint64(&p.ratioBits, math.Float64bits(ratio))
	atomic.AddUint64(&p.changeIndex, 1)
	atomic.StoreInt64(&p.rampLeft, 0)
}

// SetPlain sets the local value in plain (denormalized) units.
func (p *Param) SetPlain(value float64) { p.SetRatio(p.toRatio(value)) }

// Plain returns the local value in plain units, ignoring bound sources.
func (p *Param) Plain() float64 { return p.fromRatio(p.Ratio()) }

// ChangeIndex is a monotonically increasing counter bumped on every local
// value change, letting callers detect "did this param change" without
// comparing floats.
func (p *Param) ChangeIndex() uint64 { return atomic.LoadUint64(&p.changeIndex) }

// ScheduleRamp linearly ramps the local ratio to targetRatio over
// durationSamples, avoiding zipper noise on MIDI CC jumps and scheduled
// automation. A non-positive duration behaves like SetRatio.
func (p *Param) ScheduleRamp(targetRatio float64, durationSamples int) {
	targetRatio = clamp01(targetRatio)
	if durationSamples <= 0 {
		p.SetRatio(targetRatio)
		return
	}
	step := (targetRatio - p.Ratio()) / float64(durationSamples)
	atomic.StoreUint64(&p.rampTarget, math.Float64bits(targetRatio))
	atomic.StoreUint64(&p.rampStep, math.Float64bits(step))
	atomic.StoreInt64(&p.rampLeft, int64(durationSamples))
	atomic.AddUint64(&p.changeIndex, 1)
}

// AdvanceRamp advances an in-flight local ramp by one sample. Sample-
// accurate params call this once per sample; block-evaluated params only
// need it once per block, which BlockValue does for them.
func (p *Param) AdvanceRamp() {
	left := atomic.LoadInt64(&p.rampLeft)
	if left <= 0 {
		return
	}
	left--
	var next float64
	if left <= 0 {
		next = math.Float64frombits(atomic.LoadUint64(&p.rampTarget))
	} else {
		step := math.Float64frombits(atomic.LoadUint64(&p.rampStep))
		next = clamp01(p.Ratio() + step)
	}
	atomic.StoreUint64(&p.ratioBits, math.Float64bits(next))
	atomic.StoreInt64(&p.rampLeft, left)
	atomic.AddUint64(&p.changeIndex, 1)
}

// BindEnvelope, BindLFO, BindMacro and BindMidiController attach a
// modulation source. Only one of each kind can be bound at a time; binding
// again replaces the previous source.
func (p *Param) BindEnvelope(s ValueSource)       { p.envelopeSrc = s }
func (p *Param) BindLFO(s ValueSource)            { p.lfoSrc = s }
func (p *Param) BindMacro(s ValueSource)          { p.macroSrc = s }
func (p *Param) BindMidiController(s ValueSource) { p.midiSrc = s }

// UnbindEnvelope, UnbindLFO, UnbindMacro and UnbindMidiController detach a
// previously bound source, falling back to the next one in precedence
// order (or the local value, if none remain).
func (p *Param) UnbindEnvelope()       { p.envelopeSrc = nil }
func (p *Param) UnbindLFO()            { p.lfoSrc = nil }
func (p *Param) UnbindMacro()          { p.macroSrc = nil }
func (p *Param) UnbindMidiController() { p.midiSrc = nil }

// HasSource reports whether any modulation source is currently bound.
func (p *Param) HasSource() bool {
	return p.envelopeSrc != nil || p.lfoSrc != nil || p.macroSrc != nil || p.midiSrc != nil
}

// ValueAt resolves the parameter's plain value for one sample within the
// current round, honoring the envelope > lfo > macro > midiController >
// local precedence.
func (p *Param) ValueAt(round signal.Round, sampleIndex int) float64 {
	return p.fromRatio(p.ratioAt(round, sampleIndex))
}

// BlockValue resolves the parameter's plain value once for an entire
// block, used by block-evaluated params that accept a little modulation
// lag in exchange for not re-resolving every sample.
func (p *Param) BlockValue(round signal.Round) float64 {
	return p.ValueAt(round, 0)
}

func (p *Param) ratioAt(round signal.Round, sampleIndex int) float64 {
	switch {
	case p.envelopeSrc != nil:
		return p.envelopeSrc.Ratio(round, sampleIndex)
	case p.lfoSrc != nil:
		return p.lfoSrc.Ratio(round, sampleIndex)
	case p.macroSrc != nil:
		return p.macroSrc.Ratio(round, sampleIndex)
	case p.midiSrc != nil:
		return p.midiSrc.Ratio(round, sampleIndex)
	default:
		if p.sampleAccurate {
			p.AdvanceRamp()
		}
		return p.Ratio()
	}
}

// toRatio and fromRatio delegate to utility.Unscale/ScaleParameter(Exp),
// the teacher's own linear and exponential normalized<->plain mapping
// functions, so log- and linear-scale params share the same round-trip
// math every other VST parameter mapping in the pack uses. Round-trips
// within +/-0.003 for any plain value strictly between min and max.
func (p *Param) toRatio(plain float64) float64 {
	if p.scale == ScaleLog {
		if p.Min <= 0 || p.Max <= 0 || p.Max <= p.Min {
			return 0
		}
		if plain < p.Min {
			plain = p.Min
		}
		return clamp01(utility.UnscaleParameterExp(plain, p.Min, p.Max))
	}
	if p.Max <= p.Min {
		return 0
	}
	return clamp01(utility.UnscaleParameter(plain, p.Min, p.Max))
}

func (p *Param) fromRatio(ratio float64) float64 {
	if p.scale == ScaleLog {
		if p.Min <= 0 || p.Max <= 0 || p.Max <= p.Min {
			return p.Min
		}
		return utility.ScaleParameterExp(ratio, p.Min, p.Max)
	}
	return utility.ScaleParameter(ratio, p.Min, p.Max)
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
