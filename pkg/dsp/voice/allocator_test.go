package voice

import (
	"testing"

	"github.com/attilammagyar/js80p-sub000/pkg/dsp/wavetable"
)

func newTestVoices(n int) []*Voice {
	tuning := NewStandardTuning(440.0)
	voices := make([]*Voice, n)
	for i := range voices {
		voices[i] = New(48000, wavetable.ShapeSaw, tuning)
	}
	return voices
}

func TestPolyAllocatorGivesDistinctVoicesToDistinctNotes(t *testing.T) {
	voices := newTestVoices(4)
	a := NewAllocator(voices)

	a.NoteOn(0, 0, 60, 100)
	a.NoteOn(0, 0, 64, 100)

	active := a.ActiveVoiceCount()
	if active != 2 {
		t.Fatalf("expected 2 active voices, got %d", active)
	}
}

func TestSameChannelNoteOnTwoChannelsDoesNotCollide(t *testing.T) {
	voices := newTestVoices(4)
	a := NewAllocator(voices)

	a.NoteOn(0, 0, 60, 100)
	a.NoteOn(0, 1, 60, 100)

	if a.ActiveVoiceCount() != 2 {
		t.Fatalf("expected note 60 on two different channels to use two voices, got %d active", a.ActiveVoiceCount())
	}
}

func TestPolyAllocatorNoteOffReleasesTheRightVoice(t *testing.T) {
	voices := newTestVoices(2)
	a := NewAllocator(voices)

	a.NoteOn(0, 0, 60, 100)
	a.NoteOn(0, 0, 64, 100)
	a.NoteOff(0, 0, 60, 0)

	for _, v := range voices {
		if v.State.Note == 60 && !v.State.IsReleased {
			t.Fatalf("expected the voice holding note 60 to be released")
		}
	}
}

func TestStealingWhenPoolExhausted(t *testing.T) {
	voices := newTestVoices(1)
	a := NewAllocator(voices)
	a.SetStealingMode(StealOldest)

	a.NoteOn(0, 0, 60, 100)
	a.NoteOn(100, 0, 64, 100)

	if voices[0].State.Note != 64 {
		t.Fatalf("expected the single voice to be stolen for the newer note, got note %v", voices[0].State.Note)
	}
}

func TestStealNoneIgnoresNewNoteWhenFull(t *testing.T) {
	voices := newTestVoices(1)
	a := NewAllocator(voices)
	a.SetStealingMode(StealNone)

	a.NoteOn(0, 0, 60, 100)
	a.NoteOn(100, 0, 64, 100)

	if voices[0].State.Note != 60 {
		t.Fatalf("expected StealNone to leave the original note playing, got %v", voices[0].State.Note)
	}
}

func TestSustainPedalDefersNoteOff(t *testing.T) {
	voices := newTestVoices(1)
	a := NewAllocator(voices)

	a.NoteOn(0, 0, 60, 100)
	a.SetSustainPedal(0, true)
	a.NoteOff(10, 0, 60, 0)

	if voices[0].State.IsReleased {
		t.Fatalf("expected sustain pedal to defer the release")
	}

	a.SetSustainPedal(20, false)
	if !voices[0].State.IsReleased {
		t.Fatalf("expected releasing the pedal to flush the deferred note off")
	}
}

func TestMonoModeRetriggersStackTopOnRelease(t *testing.T) {
	voices := newTestVoices(1)
	a := NewAllocator(voices)
	a.SetMode(ModeMono)

	a.NoteOn(0, 0, 60, 100)
	a.NoteOn(10, 0, 64, 100)
	a.NoteOff(20, 0, 64, 0)

	if voices[0].State.Note != 60 {
		t.Fatalf("expected mono mode to fall back to note 60 after releasing note 64, got %v", voices[0].State.Note)
	}
}

func TestLegatoModeGlidesWithoutRetriggeringEnvelope(t *testing.T) {
	voices := newTestVoices(1)
	a := NewAllocator(voices)
	a.SetMode(ModeLegato)
	a.SetGlideTime(0.05, 48000)

	a.NoteOn(0, 0, 60, 100)
	stage := voices[0].Carrier.AmpEnv.Stage()

	a.NoteOn(10, 0, 64, 100)

	if voices[0].Carrier.AmpEnv.Stage() != stage {
		t.Fatalf("expected legato note-on to glide, not retrigger the amplitude envelope")
	}
	if voices[0].State.Note != 64 {
		t.Fatalf("expected legato glide target to update the voice's note")
	}
}

func TestUnisonModeDrivesEveryVoiceWithSameNote(t *testing.T) {
	voices := newTestVoices(3)
	a := NewAllocator(voices)
	a.SetMode(ModeUnison)

	a.NoteOn(0, 0, 60, 100)

	for i, v := range voices {
		if v.State.Note != 60 {
			t.Fatalf("expected voice %d to play note 60 in unison mode, got %v", i, v.State.Note)
		}
	}
}

func TestResetStopsAllVoices(t *testing.T) {
	voices := newTestVoices(2)
	a := NewAllocator(voices)

	a.NoteOn(0, 0, 60, 100)
	a.NoteOn(0, 0, 64, 100)
	a.Reset()

	if a.ActiveVoiceCount() != 0 {
		t.Fatalf("expected Reset to stop every voice")
	}
}
