package distortion

import "testing"

func TestWavefolderIdentityAtZeroGain(t *testing.T) {
	w := NewWavefolder()
	for _, x := range []float64{-1.5, -0.3, 0, 0.3, 1.5, 2.7} {
		if got := w.Process(x); got != x {
			t.Fatalf("expected identity at zero gain for %v, got %v", x, got)
		}
	}
}

func TestWavefolderFoldsPastUnity(t *testing.T) {
	w := NewWavefolder()
	w.SetGain(1.0)

	out := w.Process(1.9)
	if out > 1.01 {
		t.Fatalf("expected folded output to stay near [-1,1], got %v", out)
	}
}

func TestADAAConvergesToShapeOnConstantInput(t *testing.T) {
	adaa := NewADAA(func(x float64) float64 {
		if x > 1 {
			return 1
		}
		if x < -1 {
			return -1
		}
		return x
	}, HardClipAntiderivative)

	var last float64
	for i := 0; i < 100; i++ {
		last = adaa.Process(0.5)
	}
	if last < 0.49 || last > 0.51 {
		t.Fatalf("expected ADAA output to settle near shape(0.5)=0.5, got %v", last)
	}
}
