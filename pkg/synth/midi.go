package synth

import "github.com/attilammagyar/js80p-sub000/pkg/midi"

// pitchWheelCC and channelPressureCC are sentinel keys into ccSources,
// parked above the real 0..127 CC range so a pitch-wheel or
// channel-pressure binding can reuse the same ccAdapter/ccSources plumbing
// as an ordinary controller change.
const (
	pitchWheelCC      uint8 = 128
	channelPressureCC uint8 = 129
)

// dispatchMidi drains every event scheduled within [0, sampleCount) of the
// current block and applies it, in (offset ascending, insertion order)
// per spec §5.
func (s *Synth) dispatchMidi(sampleCount int) {
	events := s.midiEvents.GetEventsInRange(0, int32(sampleCount))
	for _, e := range events {
		s.applyMidiEvent(e)
	}
	s.midiEvents.RemoveProcessedEvents(int32(sampleCount - 1))
}

func (s *Synth) applyMidiEvent(e midi.Event) {
	t := s.currentSample + int64(e.SampleOffset())

	switch ev := e.(type) {
	case midi.NoteOnEvent:
		if ev.Velocity == 0 {
			s.allocator.NoteOff(t, ev.Channel(), ev.NoteNumber, 0)
			return
		}
		s.allocator.NoteOn(t, ev.Channel(), ev.NoteNumber, ev.Velocity)
	case midi.NoteOffEvent:
		s.allocator.NoteOff(t, ev.Channel(), ev.NoteNumber, ev.Velocity)
	case midi.PitchBendEvent:
		s.ccSourceFor(pitchWheelCC).value = (ev.NormalizedValue() + 1.0) / 2.0
	case midi.ChannelPressureEvent:
		s.ccSourceFor(channelPressureCC).value = float64(ev.Pressure) / 127.0
	case midi.PolyPressureEvent:
		// Per-note aftertouch has no dedicated per-voice modulation input
		// in this module's architecture yet; silently ignored, matching
		// spec §7's "unsupported MIDI CC -> silently ignored" handling for
		// controller surfaces this engine does not wire.
	case midi.ControlChangeEvent:
		s.applyControlChange(t, ev)
	}
}

func (s *Synth) applyControlChange(t int64, ev midi.ControlChangeEvent) {
	switch ev.Controller {
	case midi.CCSustain:
		s.allocator.SetSustainPedal(t, ev.Value >= 64)
		return
	case midi.CCAllNotesOff, midi.CCAllSoundOff:
		s.allocator.Reset()
		return
	case midi.CCResetAll:
		s.allocator.Reset()
		for _, p := range s.registry.All() {
			unbindAll(p)
		}
		return
	}

	value := float64(ev.Value) / 127.0

	if len(s.learnQueue) > 0 {
		for _, learned := range s.learnQueue {
			if p := s.registry.ByName(learned.paramName); p != nil {
				unbindAll(p)
				p.BindMidiController(s.ccSourceFor(ev.Controller))
			}
		}
		s.learnQueue = s.learnQueue[:0]
	}

	s.ccSourceFor(ev.Controller).value = value
}
