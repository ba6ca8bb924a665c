package modulation

import "github.com/attilammagyar/js80p-sub000/pkg/dsp/signal"

// Channels is the number of MPE channels a MidiController fans its value out
// across (one slot per MIDI channel, channel 0 doubling as the MPE "master"
// channel).
const Channels = 16

// MidiController holds the last value a MIDI CC (or a Macro built on top of
// one) published per MPE channel, along with a per-channel change index so
// dependents can tell whether a channel's value actually moved.
type MidiController struct {
	values       [Channels]float64
	changeIndex  [Channels]uint64
	assignments  int
	activeChannel int
}

// NewMidiController creates a MidiController with every channel defaulting
// to the MIDI-standard centered value (0.5 in the controller's own 0-1
// range).
func NewMidiController() *MidiController {
	m := &MidiController{}
	for ch := range m.values {
		m.values[ch] = 0.5
	}
	return m
}

// Change publishes a new value on one channel, bumping that channel's
// change index.
func (m *MidiController) Change(channel int, value float64) {
	if channel < 0 || channel >= Channels {
		return
	}
	m.values[channel] = value
	m.changeIndex[channel]++
}

// ChangeAllChannels publishes the same value across every MPE channel, as a
// non-MPE controller message would.
func (m *MidiController) ChangeAllChannels(value float64) {
	for ch := 0; ch < Channels; ch++ {
		m.Change(ch, value)
	}
}

// Value returns the last published value on a channel.
func (m *MidiController) Value(channel int) float64 {
	if channel < 0 || channel >= Channels {
		return 0
	}
	return m.values[channel]
}

// ChangeIndex returns a channel's change index, for dirty-checking against a
// previously observed value without comparing floats.
func (m *MidiController) ChangeIndex(channel int) uint64 {
	if channel < 0 || channel >= Channels {
		return 0
	}
	return m.changeIndex[channel]
}

// SetActiveChannel selects which channel Ratio reads from. Monophonic
// bindings stay on channel 0; per-voice MPE bindings point this at the
// voice's assigned channel.
func (m *MidiController) SetActiveChannel(channel int) {
	if channel < 0 || channel >= Channels {
		return
	}
	m.activeChannel = channel
}

// Assigned and Released reference-count how many params currently bind this
// controller, so a host-facing MIDI-learn UI can tell an assigned
// controller from an idle one.
func (m *MidiController) Assigned() { m.assignments++ }

func (m *MidiController) Released() {
	if m.assignments > 0 {
		m.assignments--
	}
}

// IsAssigned reports whether any param currently binds this controller.
func (m *MidiController) IsAssigned() bool { return m.assignments != 0 }

// Ratio implements param.ValueSource over the active channel's last
// published value, already normalized to [0, 1] by the MIDI/macro layer
// that calls Change.
func (m *MidiController) Ratio(round signal.Round, sampleIndex int) float64 {
	return clamp01(m.values[m.activeChannel])
}
