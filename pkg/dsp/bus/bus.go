// Package bus sums a pool of voices into the modulator and carrier mix
// buses the effects chain consumes, replacing the teacher's VST3 I/O-bus
// negotiation layer with a plain summing mixer (spec §4.10).
package bus

import (
	"math"

	"github.com/attilammagyar/js80p-sub000/pkg/dsp/debug"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/mix"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/signal"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/voice"
)

// activeNote identifies one currently-sounding (channel, note) pair, for
// publishing to a tuning collaborator (an MTS-ESP client, a scale-table
// refresher) that needs to know which notes to keep fresh frequencies for.
type activeNote struct {
	Channel, Note uint8
}

// Mixer renders every active voice in a pool once per block, one voice at
// a time: each voice is rendered end to end (modulator, then carrier)
// before the next one starts, and there is no separate pass that renders
// every voice's oscillators first. It sums modulator output scaled by ModulatorAddVolume
// and carrier output into one mix buffer, and tracks both buses' peaks.
type Mixer struct {
	voices []*voice.Voice

	modulatorMix []float32
	carrierMix   []float32
	mixOut       []float32

	modulatorPeak float64
	carrierPeak   float64
	peakDecay     float64

	active []activeNote
}

// New creates a Mixer over the given voice pool.
func New(voices []*voice.Voice, sampleRate float64) *Mixer {
	return &Mixer{
		voices:    voices,
		peakDecay: math.Exp(-1.0 / (sampleRate * 0.3)), // ~300ms decay-to-0 time constant
	}
}

func (m *Mixer) ensureBuffers(n int) {
	if cap(m.modulatorMix) < n {
		m.modulatorMix = make([]float32, n)
		m.carrierMix = make([]float32, n)
		m.mixOut = make([]float32, n)
	}
	m.modulatorMix = m.modulatorMix[:n]
	m.carrierMix = m.carrierMix[:n]
	m.mixOut = m.mixOut[:n]

	debug.CheckAllocation(m.mixOut, "bus.mixOut")
}

// Render produces one block's summed output across every active voice.
// The returned slice is owned by the Mixer and is only valid until the
// next Render call.
func (m *Mixer) Render(round signal.Round, sampleCount int) []float32 {
	m.ensureBuffers(sampleCount)
	for i := range m.modulatorMix {
		m.modulatorMix[i] = 0
		m.carrierMix[i] = 0
	}

	m.active = m.active[:0]

	for _, v := range m.voices {
		if !v.IsActive() {
			continue
		}

		modOut, carOut := v.Render(round, sampleCount)

		addVolume := float32(v.ModulatorAddVolume().BlockValue(round))
		for i := 0; i < sampleCount; i++ {
			m.modulatorMix[i] += modOut[i] * addVolume
			m.carrierMix[i] += carOut[i]
		}

		m.active = append(m.active, activeNote{Channel: v.Channel(), Note: v.Note()})
	}

	mix.Sum([][]float32{m.modulatorMix, m.carrierMix}, m.mixOut)

	m.updatePeak(&m.modulatorPeak, m.modulatorMix, sampleCount)
	m.updatePeak(&m.carrierPeak, m.carrierMix, sampleCount)

	return m.mixOut
}

// updatePeak applies a decaying peak tracker with no hold window: the
// running peak decays exponentially over the block, and is replaced by the
// block's own peak when that is higher. It is a bus-metering update of its
// own; the effects chain's side-chain compression uses
// envelope.PeakTracker instead.
func (m *Mixer) updatePeak(peak *float64, buf []float32, sampleCount int) {
	blockPeak := 0.0
	for i := 0; i < sampleCount; i++ {
		v := math.Abs(float64(buf[i]))
		if v > blockPeak {
			blockPeak = v
		}
	}
	decayed := *peak * math.Pow(m.peakDecay, float64(sampleCount))
	if blockPeak > decayed {
		*peak = blockPeak
	} else {
		*peak = decayed
	}
}

// ModulatorPeak and CarrierPeak report each bus's current decaying peak
// level (linear, 0-1+).
func (m *Mixer) ModulatorPeak() float64 { return m.modulatorPeak }
func (m *Mixer) CarrierPeak() float64   { return m.carrierPeak }

// ActiveNotes reports the (channel, note) pairs sounding in the most
// recent Render call, for a tuning collaborator that needs to know which
// notes to keep frequencies fresh for.
func (m *Mixer) ActiveNotes() []struct{ Channel, Note uint8 } {
	out := make([]struct{ Channel, Note uint8 }, len(m.active))
	for i, a := range m.active {
		out[i] = struct{ Channel, Note uint8 }{a.Channel, a.Note}
	}
	return out
}
