package synth

import (
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/param"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/signal"
	"github.com/attilammagyar/js80p-sub000/pkg/midi"
)

// ControllerKind and ControllerID alias pkg/midi's synthetic controller
// vocabulary (CC/pitch-wheel/channel-pressure/macro/LFO/envelope/computed-
// peak/MIDI-learn, spec §6): the wire-level enumeration lives in pkg/midi
// alongside the rest of the MIDI event surface, while the routing that
// resolves an index to an actual macro/LFO/envelope/peak lives here, since
// only Synth has the pool of those objects to resolve against.
type ControllerKind = midi.SyntheticControllerKind

const (
	ControllerNone            = midi.SyntheticNone
	ControllerCC              = midi.SyntheticCC // Index is the MIDI CC number, 0..127
	ControllerPitchWheel      = midi.SyntheticPitchWheel
	ControllerChannelPressure = midi.SyntheticChannelPressure
	ControllerMacro           = midi.SyntheticMacro // Index is 0..29 (macros 1..30)
	ControllerLFO             = midi.SyntheticLFO   // Index is 0..7 (LFO 1..8)
	ControllerEnvelope        = midi.SyntheticEnvelope
	ControllerComputedPeak    = midi.SyntheticComputedPeak
	ControllerMidiLearn       = midi.SyntheticMidiLearn
)

// ControllerID names one modulation source a param can be bound to via
// ASSIGN_CONTROLLER.
type ControllerID = midi.SyntheticControllerID

// ccAdapter wraps a modulation.MidiController-shaped source so a raw CC,
// pitch wheel or channel-pressure value can be bound through the same
// param.ValueSource slot a Macro or LFO would use.
type ccAdapter struct {
	value float64
}

func (c *ccAdapter) Ratio(round signal.Round, sampleIndex int) float64 { return c.value }

// peakAdapter exposes one of the bus's tracked peaks as a read-only
// modulation source, the "computed-peak feedback controller" spec §6
// names (e.g. routing the carrier bus's own loudness into a param).
type peakAdapter struct {
	read func() float64
}

func (p *peakAdapter) Ratio(round signal.Round, sampleIndex int) float64 {
	v := p.read()
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// learnBinding remembers which param is awaiting MIDI-learn, so the next
// incoming CC on any channel completes the binding instead of being
// applied normally (spec §4.12 "midi-learn (next incoming CC wins)").
type learnBinding struct {
	paramName string
}

// unbindAll detaches every modulation source currently bound to p, so a
// fresh AssignController call starts from a clean slate.
func unbindAll(p *param.Param) {
	p.UnbindEnvelope()
	p.UnbindLFO()
	p.UnbindMacro()
	p.UnbindMidiController()
}
