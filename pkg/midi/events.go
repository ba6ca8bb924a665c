// Package midi is the host-facing wire layer: the VST3/LV2/AU front end
// (out of this module's scope per the spec's front-end boundary) decodes
// raw MIDI bytes into these typed events before handing them to
// Synth.ScheduleMidiEvent. It is deliberately a different shape from
// pkg/dsp/signal's internal Event (type/offset/number/number2): that one
// carries sample-accurate modulation state between signal producers inside
// a block, this one carries the fixed vocabulary a MIDI byte stream can
// actually produce (note numbers, CC numbers, 14-bit pitch bend) across the
// host/engine boundary.
package midi

import "fmt"

// Event is anything schedulable on a Synth's event queue: a sample offset
// within the block it targets, the originating channel, and a
// human-readable form for logging.
type Event interface {
	Channel() uint8
	SampleOffset() int32
	String() string
}

// BaseEvent carries the fields every concrete event shares.
type BaseEvent struct {
	EventChannel uint8
	Offset       int32
}

func (e BaseEvent) Channel() uint8      { return e.EventChannel }
func (e BaseEvent) SampleOffset() int32 { return e.Offset }

type NoteOnEvent struct {
	BaseEvent
	NoteNumber uint8
	Velocity   uint8
}

func (e NoteOnEvent) String() string {
	return fmt.Sprintf("NoteOn{ch:%d, note:%d, vel:%d, offset:%d}",
		e.EventChannel, e.NoteNumber, e.Velocity, e.Offset)
}

type NoteOffEvent struct {
	BaseEvent
	NoteNumber uint8
	Velocity   uint8
}

func (e NoteOffEvent) String() string {
	return fmt.Sprintf("NoteOff{ch:%d, note:%d, vel:%d, offset:%d}",
		e.EventChannel, e.NoteNumber, e.Velocity, e.Offset)
}

type ControlChangeEvent struct {
	BaseEvent
	Controller uint8
	Value      uint8
}

func (e ControlChangeEvent) String() string {
	return fmt.Sprintf("CC{ch:%d, ctrl:%d, val:%d, offset:%d}",
		e.EventChannel, e.Controller, e.Value, e.Offset)
}

// The four CC numbers dispatchMidi (pkg/synth/midi.go) actually recognizes:
// sustain pedal and the three panic/reset variants a host sends on
// all-notes-off. Every other CC number reaches applyControlChange as a
// plain 0-127 value routed to whatever the CC-learn binding points at.
const (
	CCSustain     uint8 = 64
	CCAllSoundOff uint8 = 120
	CCResetAll    uint8 = 121
	CCAllNotesOff uint8 = 123
)

// PitchBendEvent carries the MIDI 14-bit pitch wheel position, -8192 to
// 8191 with 0 at center.
type PitchBendEvent struct {
	BaseEvent
	Value int16
}

func (e PitchBendEvent) String() string {
	return fmt.Sprintf("PitchBend{ch:%d, val:%d, offset:%d}",
		e.EventChannel, e.Value, e.Offset)
}

// NormalizedValue maps the wheel position onto [-1, 1].
func (e PitchBendEvent) NormalizedValue() float64 {
	return float64(e.Value) / 8192.0
}

type PolyPressureEvent struct {
	BaseEvent
	NoteNumber uint8
	Pressure   uint8
}

func (e PolyPressureEvent) String() string {
	return fmt.Sprintf("PolyPressure{ch:%d, note:%d, pressure:%d, offset:%d}",
		e.EventChannel, e.NoteNumber, e.Pressure, e.Offset)
}

type ChannelPressureEvent struct {
	BaseEvent
	Pressure uint8
}

func (e ChannelPressureEvent) String() string {
	return fmt.Sprintf("ChannelPressure{ch:%d, pressure:%d, offset:%d}",
		e.EventChannel, e.Pressure, e.Offset)
}

// NoteToFrequency converts a MIDI note number to Hz under equal temperament,
// tuned to tuningA4 (440Hz if zero). Called once per voice allocation
// (pkg/dsp/voice/tuning.go), so the fast power-of-two approximation below
// keeps it off the standard library's libm path on the audio thread.
func NoteToFrequency(note uint8, tuningA4 float64) float64 {
	if tuningA4 == 0 {
		tuningA4 = 440.0
	}
	return tuningA4 * pow2((float64(note)-69.0)/12.0)
}

// pow2 approximates 2^x with a sixth-order Taylor expansion of the
// fractional part, accurate to within the cent-level tuning error a synth
// voice can't hear, without a transcendental libm call.
func pow2(x float64) float64 {
	if x >= 0 {
		whole := int(x)
		frac := x - float64(whole)
		fracPow := 1.0 + frac*(0.693147+frac*(0.240227+frac*(0.055504+
			frac*(0.009618+frac*(0.001333+frac*0.000154)))))
		return float64(uint64(1)<<uint(whole)) * fracPow
	}
	return 1.0 / pow2(-x)
}
