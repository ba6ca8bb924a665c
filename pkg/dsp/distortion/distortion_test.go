package distortion

import (
	"math"
	"testing"
)

func TestDistortionCreation(t *testing.T) {
	d := NewDistortion(TypeTanh)
	if d == nil {
		t.Fatal("Failed to create distortion")
	}
	if len(d.table) != lutPoints {
		t.Errorf("Expected %d table points, got %d", lutPoints, len(d.table))
	}
}

func TestAntiderivativeTableIsMonotoneForPositiveShape(t *testing.T) {
	// tanh is positive over (0, inf), so its antiderivative must be
	// strictly increasing.
	d := NewDistortion(TypeTanh)
	for i := 1; i < len(d.table); i++ {
		if d.table[i] < d.table[i-1] {
			t.Fatalf("antiderivative table not monotone at index %d", i)
		}
	}
}

func TestLookupFIsEven(t *testing.T) {
	d := NewDistortion(TypeHarmonic)
	for _, x := range []float64{0.25, 1.0, 3.5, 7.9} {
		pos := d.lookupF(x)
		neg := d.lookupF(-x)
		if math.Abs(pos-neg) > 1e-9 {
			t.Errorf("F(%v)=%v should equal F(%v)=%v (even antiderivative)", x, pos, -x, neg)
		}
	}
}

func TestProcessConvergesToShapeOnConstantInput(t *testing.T) {
	d := NewDistortion(TypeTanh)
	var last float64
	for i := 0; i < 200; i++ {
		last = d.Process(0.5)
	}
	want := d.shape(0.5)
	if math.Abs(last-want) > 0.01 {
		t.Errorf("expected ADAA output to settle near shape(0.5)=%v, got %v", want, last)
	}
}

func TestBitCrushIsStaircase(t *testing.T) {
	d := NewDistortion(TypeBitCrush)
	d.SetBitDepth(2) // 5 levels: -1, -0.5, 0, 0.5, 1
	levels := map[float64]bool{}
	for x := -1.0; x <= 1.0; x += 0.01 {
		levels[bitCrushShape(x, 2)] = true
	}
	if len(levels) > 5 {
		t.Errorf("expected a small number of quantization levels, got %d", len(levels))
	}
}

func TestDelayFeedbackStaysBelowIdentity(t *testing.T) {
	for _, x := range []float64{0.1, 0.5, 1.0, 3.0, 7.0} {
		y := delayFeedbackShape(x)
		if y >= x {
			t.Errorf("delayFeedbackShape(%v) = %v should be strictly below x", x, y)
		}
		yNeg := delayFeedbackShape(-x)
		if yNeg <= -x {
			t.Errorf("delayFeedbackShape(%v) = %v should be strictly above -x", -x, yNeg)
		}
	}
	if delayFeedbackShape(0) != 0 {
		t.Errorf("delayFeedbackShape(0) should be 0")
	}
}

func TestDelayFeedbackIteratedConvergesToZero(t *testing.T) {
	x := 1.0
	for i := 0; i < 1000; i++ {
		x = delayFeedbackShape(x)
	}
	if math.Abs(x) > 1e-6 {
		t.Errorf("iterated delay-feedback shaping should converge to 0, got %v after 1000 iterations", x)
	}
}

func TestSetTypeRecomputesCachedAntiderivative(t *testing.T) {
	d := NewDistortion(TypeTanh)
	d.Process(0.5) // establishes prevInput/prevF against TypeTanh's table

	d.SetType(TypeHarmonic)
	want := d.lookupF(d.prevInput)
	if math.Abs(d.prevF-want) > 1e-12 {
		t.Errorf("cached F(x_prev) should be recomputed against the new table: got %v, want %v", d.prevF, want)
	}
}

func BenchmarkDistortionProcess(b *testing.B) {
	d := NewDistortion(TypeTanh)
	x := 0.0
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = d.Process(math.Sin(float64(i) * 0.01))
		_ = x
	}
}
