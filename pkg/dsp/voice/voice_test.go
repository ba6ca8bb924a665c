package voice

import (
	"testing"

	"github.com/attilammagyar/js80p-sub000/pkg/dsp/signal"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/wavetable"
)

func TestNoteOnTriggersEnvelopesAndSetsFrequency(t *testing.T) {
	tuning := NewStandardTuning(440.0)
	v := New(48000, wavetable.ShapeSaw, tuning)

	v.NoteOn(0, 1, 69, 0, 100, 69, true)

	if !v.State.IsOn {
		t.Fatalf("expected voice to be on after NoteOn")
	}
	if v.State.CachedNoteFrequency < 439 || v.State.CachedNoteFrequency > 441 {
		t.Fatalf("expected A4 (440Hz) for note 69, got %v", v.State.CachedNoteFrequency)
	}
	if !v.Modulator.AmpEnv.IsActive() || !v.Carrier.AmpEnv.IsActive() {
		t.Fatalf("expected both envelopes triggered after NoteOn")
	}
}

func TestRenderProducesNonSilentCarrierOutput(t *testing.T) {
	tuning := NewStandardTuning(440.0)
	v := New(48000, wavetable.ShapeSaw, tuning)
	v.Carrier.AmpEnv.SetAttack(0.0)
	v.Modulator.AmpEnv.SetAttack(0.0)

	v.NoteOn(0, 1, 69, 0, 100, 69, true)

	_, carOut := v.Render(signal.Round(1), 64)

	var energy float64
	for _, s := range carOut {
		energy += float64(s) * float64(s)
	}
	if energy == 0 {
		t.Fatalf("expected non-zero carrier output after note on")
	}
}

func TestNoteOffStartsReleaseAndEventuallyDecays(t *testing.T) {
	tuning := NewStandardTuning(440.0)
	v := New(48000, wavetable.ShapeSaw, tuning)
	v.Carrier.AmpEnv.SetAttack(0)
	v.Carrier.AmpEnv.SetDecay(0)
	v.Carrier.AmpEnv.SetRelease(0.001)
	v.Modulator.AmpEnv.SetAttack(0)
	v.Modulator.AmpEnv.SetDecay(0)
	v.Modulator.AmpEnv.SetRelease(0.001)

	v.NoteOn(0, 1, 69, 0, 100, 69, true)
	v.Render(signal.Round(1), 16)

	v.NoteOff(16, 1, 69, 0)
	if !v.State.IsReleased {
		t.Fatalf("expected IsReleased after NoteOff")
	}

	for round := signal.Round(2); round < signal.Round(50); round++ {
		v.Render(round, 16)
	}

	if !v.HasDecayedBeforeNoteOff() {
		t.Fatalf("expected envelopes to have decayed to idle after enough release blocks")
	}
}

func TestCancelNoteSmoothlyForcesQuickRelease(t *testing.T) {
	tuning := NewStandardTuning(440.0)
	v := New(48000, wavetable.ShapeSaw, tuning)
	v.NoteOn(0, 1, 69, 0, 100, 69, true)

	v.CancelNoteSmoothly(0)

	if !v.State.IsReleased {
		t.Fatalf("expected CancelNoteSmoothly to mark the voice released")
	}

	for round := signal.Round(1); round < signal.Round(20); round++ {
		v.Render(round, 64)
	}
	if !v.HasDecayedBeforeNoteOff() {
		t.Fatalf("expected the forced short release to have decayed well within 20 blocks")
	}
}

func TestGlideToChangesTargetNoteWithoutRetriggering(t *testing.T) {
	tuning := NewStandardTuning(440.0)
	v := New(48000, wavetable.ShapeSaw, tuning)
	v.NoteOn(0, 1, 69, 0, 100, 69, true)

	stageBefore := v.Carrier.AmpEnv.Stage()
	v.GlideTo(72, 0, 480)

	if v.Carrier.AmpEnv.Stage() != stageBefore {
		t.Fatalf("expected GlideTo not to retrigger the amplitude envelope")
	}
	if v.State.Note != 72 {
		t.Fatalf("expected note to update to the glide target, got %v", v.State.Note)
	}
}

func TestDeterministicInaccuracySeedVariesByNoteID(t *testing.T) {
	tuning := NewStandardTuning(440.0)
	v1 := New(48000, wavetable.ShapeSaw, tuning)
	v2 := New(48000, wavetable.ShapeSaw, tuning)

	v1.NoteOn(0, 1, 69, 0, 100, 69, true)
	v2.NoteOn(0, 2, 69, 0, 100, 69, true)

	if v1.State.InaccuracySeed == v2.State.InaccuracySeed {
		t.Fatalf("expected different note IDs to draw different inaccuracy seeds")
	}
}

func TestStandardTuningA440(t *testing.T) {
	tuning := NewStandardTuning(440.0)
	freq := tuning.Frequency(0, 69)
	if freq < 439.9 || freq > 440.1 {
		t.Fatalf("expected A4 = 440Hz, got %v", freq)
	}
}

func TestTableTuningOverridePerChannel(t *testing.T) {
	base := NewStandardTuning(440.0)
	table := NewTableTuning(base)

	table.SetFrequency(2, 60, 250.0)

	if table.Frequency(2, 60) != 250.0 {
		t.Fatalf("expected overridden frequency on channel 2")
	}
	if table.Frequency(0, 60) == 250.0 {
		t.Fatalf("expected channel 0 to keep its base tuning")
	}
}
