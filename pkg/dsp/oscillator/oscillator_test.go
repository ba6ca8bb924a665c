package oscillator

import (
	"testing"

	"github.com/attilammagyar/js80p-sub000/pkg/dsp/wavetable"
)

func TestProduceIsDeterministicPerRound(t *testing.T) {
	o := New(48000, wavetable.ShapeSaw, 20)
	o.Frequency.SetPlain(220)

	first := o.Produce(1, 64)
	firstCopy := append([]float32(nil), first[0]...)

	second := o.Produce(1, 64)
	for i := range firstCopy {
		if second[0][i] != firstCopy[i] {
			t.Fatalf("sample %d changed across repeated Produce for the same round", i)
		}
	}
}

func TestSyncResetsPhase(t *testing.T) {
	o := New(48000, wavetable.ShapeSine, 20)
	o.Frequency.SetPlain(440)

	o.Produce(1, 256)
	o.Sync(0)
	out := o.Produce(2, 1)

	if out[0][0] > 0.05 {
		t.Fatalf("expected sample near 0 right after phase sync, got %v", out[0][0])
	}
}

func TestSubLayerAddsEnergyWhenEnabled(t *testing.T) {
	o := New(48000, wavetable.ShapeSaw, 20)
	o.Frequency.SetPlain(220)
	o.SubLevel.SetPlain(1.0)

	out := o.Produce(1, 128)
	var energy float64
	for _, s := range out[0] {
		energy += float64(s) * float64(s)
	}
	if energy == 0 {
		t.Fatalf("expected non-zero energy with sub layer enabled")
	}
}
