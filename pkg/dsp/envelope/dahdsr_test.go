package envelope

import "testing"

func TestDAHDSRReachesSustainLevel(t *testing.T) {
	e := New(1000)
	e.SetDelay(0)
	e.SetAttack(0.01)
	e.SetHold(0)
	e.SetDecay(0.01)
	e.SetSustain(0.4)
	e.SetRelease(0.1)
	e.Trigger()

	var last float32
	for i := 0; i < 200; i++ {
		last = e.Next()
	}
	if last < 0.39 || last > 0.41 {
		t.Fatalf("expected envelope to settle near sustain 0.4, got %v", last)
	}
	if e.Stage() != DAHDSRSustain {
		t.Fatalf("expected sustain stage, got %v", e.Stage())
	}
}

func TestDAHDSRReleaseReturnsToIdle(t *testing.T) {
	e := New(1000)
	e.SetAttack(0.001)
	e.SetDecay(0.001)
	e.SetSustain(0.5)
	e.SetRelease(0.01)
	e.Trigger()
	for i := 0; i < 50; i++ {
		e.Next()
	}
	e.Release()
	for i := 0; i < 50; i++ {
		e.Next()
	}
	if e.Stage() != DAHDSRIdle {
		t.Fatalf("expected idle after release completes, got %v", e.Stage())
	}
	if e.IsActive() {
		t.Fatalf("expected IsActive false once idle")
	}
}

func TestDAHDSRMonotonicDuringAttack(t *testing.T) {
	e := New(1000)
	e.SetDelay(0)
	e.SetAttack(0.05)
	e.Trigger()

	prev := float32(-1)
	for i := 0; i < 40; i++ {
		v := e.Next()
		if v < prev {
			t.Fatalf("expected monotonically non-decreasing attack, sample %d went from %v to %v", i, prev, v)
		}
		prev = v
	}
}

func TestSustainRetargetAvoidsDiscontinuity(t *testing.T) {
	e := New(1000)
	e.SetAttack(0.001)
	e.SetDecay(0.05)
	e.SetSustain(0.8)
	e.Trigger()
	for i := 0; i < 10; i++ {
		e.Next()
	}
	before := e.value

	e.SetSustain(0.2)
	after := e.value

	if before != after {
		t.Fatalf("expected retargeting sustain not to jump the current value: before=%v after=%v", before, after)
	}
}
