package voice

import "github.com/attilammagyar/js80p-sub000/pkg/midi"

// NoteTuning resolves a (channel, note) pair to a frequency in Hz, keeping
// the voice engine decoupled from how that frequency is determined:
// standard equal temperament, a custom per-channel tuning table, or an
// external continuous-tuning source (MTS-ESP and similar). Only this
// interface is in scope; wiring an actual MTS-ESP client is a host-side
// concern.
type NoteTuning interface {
	Frequency(channel, note uint8) float64
}

// StandardTuning is 12-tone equal temperament anchored at a configurable
// A4 frequency (440Hz concert pitch, or 432Hz and other alternate
// tunings), identical across all channels.
type StandardTuning struct {
	A4 float64
}

// NewStandardTuning creates a StandardTuning anchored at a4Hz (440.0 for
// concert pitch).
func NewStandardTuning(a4Hz float64) *StandardTuning {
	return &StandardTuning{A4: a4Hz}
}

func (s *StandardTuning) Frequency(channel, note uint8) float64 {
	return midi.NoteToFrequency(note, s.A4)
}

// TableTuning holds an independent 128-note frequency table per MIDI
// channel, letting each channel retune independently (MPE per-note pitch,
// microtonal scales assigned per channel).
type TableTuning struct {
	tables [16][128]float64
}

// NewTableTuning creates a TableTuning with every channel preloaded from
// base (typically a StandardTuning snapshot).
func NewTableTuning(base NoteTuning) *TableTuning {
	t := &TableTuning{}
	for ch := 0; ch < 16; ch++ {
		for note := 0; note < 128; note++ {
			t.tables[ch][note] = base.Frequency(uint8(ch), uint8(note))
		}
	}
	return t
}

// SetFrequency overrides a single (channel, note) entry, used by
// continuous-tuning sources that push updated frequencies per note-on or
// per block.
func (t *TableTuning) SetFrequency(channel, note uint8, freq float64) {
	if int(channel) >= len(t.tables) || int(note) >= len(t.tables[0]) {
		return
	}
	t.tables[channel][note] = freq
}

func (t *TableTuning) Frequency(channel, note uint8) float64 {
	if int(channel) >= len(t.tables) || int(note) >= len(t.tables[0]) {
		return 0
	}
	return t.tables[channel][note]
}
