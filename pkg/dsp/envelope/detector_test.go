package envelope

import (
	"math"
	"testing"
)

func TestPeakTrackerCreation(t *testing.T) {
	sampleRate := 48000.0
	p := NewPeakTracker(sampleRate)
	if p == nil {
		t.Fatal("Failed to create peak tracker")
	}
	if p.sampleRate != sampleRate {
		t.Errorf("Sample rate mismatch: got %f, want %f", p.sampleRate, sampleRate)
	}
	if p.Peak() != 0 {
		t.Errorf("New tracker should start at zero peak, got %f", p.Peak())
	}
}

func TestPeakTrackerInstantAttack(t *testing.T) {
	sampleRate := 48000.0
	p := NewPeakTracker(sampleRate)

	peak := p.Update(0.8)
	if peak != 0.8 {
		t.Errorf("Expected immediate jump to 0.8, got %f", peak)
	}

	// A louder sample replaces the tracked peak immediately too.
	peak = p.Update(-0.95)
	if peak != 0.95 {
		t.Errorf("Expected abs(-0.95) = 0.95, got %f", peak)
	}
}

func TestPeakTrackerHold(t *testing.T) {
	sampleRate := 48000.0
	p := NewPeakTracker(sampleRate)
	p.SetHoldTime(0.005) // 5ms
	p.SetDecayTime(0.010)

	p.Update(1.0)

	holdSamples := int(0.005 * sampleRate)
	for i := 0; i < holdSamples; i++ {
		peak := p.Update(0.0)
		if peak < 0.999 {
			t.Errorf("Peak decayed during hold window at sample %d: got %f", i, peak)
			break
		}
	}
}

func TestPeakTrackerDecaysAfterHold(t *testing.T) {
	sampleRate := 48000.0
	p := NewPeakTracker(sampleRate)
	p.SetHoldTime(0.001)
	p.SetDecayTime(0.010)

	p.Update(1.0)

	var peak float64
	for i := 0; i < int(0.040*sampleRate); i++ {
		peak = p.Update(0.0)
	}

	if peak > 0.1 {
		t.Errorf("Peak did not decay after hold window: got %f", peak)
	}
}

func TestPeakTrackerProcess(t *testing.T) {
	sampleRate := 48000.0
	p := NewPeakTracker(sampleRate)

	buffer := make([]float32, 256)
	buffer[50] = 0.6
	buffer[51] = -0.9

	peak := p.Process(buffer)
	if math.Abs(peak-float64(float32(0.9))) > 1e-9 {
		t.Errorf("Expected block peak 0.9, got %f", peak)
	}
}

func TestPeakTrackerReset(t *testing.T) {
	p := NewPeakTracker(48000.0)
	p.Update(1.0)
	p.Reset()

	if p.Peak() != 0 {
		t.Errorf("Reset should clear tracked peak, got %f", p.Peak())
	}
}

func BenchmarkPeakTrackerProcess(b *testing.B) {
	p := NewPeakTracker(48000.0)
	buffer := make([]float32, 1024)
	for i := range buffer {
		buffer[i] = float32(math.Sin(float64(i) * 0.1))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Process(buffer)
	}
}
