package reverb

import (
	"math"
	"testing"
)

func TestFreeverbCreation(t *testing.T) {
	reverb := NewFreeverb(44100)

	if reverb == nil {
		t.Fatal("Failed to create Freeverb instance")
	}
	if reverb.roomSize != initialRoom {
		t.Errorf("Expected initial room size %f, got %f", initialRoom, reverb.roomSize)
	}
	if reverb.damping != initialDamp {
		t.Errorf("Expected initial damping %f, got %f", initialDamp, reverb.damping)
	}
}

func TestFreeverbParameterRanges(t *testing.T) {
	reverb := NewFreeverb(44100)

	reverb.SetRoomSize(2.0)
	if reverb.roomSize != 1.0 {
		t.Errorf("Room size should be clamped to 1.0, got %f", reverb.roomSize)
	}
	reverb.SetRoomSize(-1.0)
	if reverb.roomSize != 0.0 {
		t.Errorf("Room size should be clamped to 0.0, got %f", reverb.roomSize)
	}

	reverb.SetDamping(2.0)
	if reverb.damping != 1.0 {
		t.Errorf("Damping should be clamped to 1.0, got %f", reverb.damping)
	}
	reverb.SetDamping(-1.0)
	if reverb.damping != 0.0 {
		t.Errorf("Damping should be clamped to 0.0, got %f", reverb.damping)
	}
}

func TestFreeverbProcessing(t *testing.T) {
	reverb := NewFreeverb(44100)

	outL, outR := reverb.ProcessStereo(0.0, 0.0)
	if outL != 0.0 || outR != 0.0 {
		t.Error("Reverb should output silence for silent input initially")
	}

	outL, outR = reverb.ProcessStereo(1.0, 1.0)
	if math.IsNaN(float64(outL)) || math.IsNaN(float64(outR)) {
		t.Error("Reverb output should not be NaN")
	}

	hasReverb := false
	for i := 0; i < 2000; i++ {
		outL, outR = reverb.ProcessStereo(0.0, 0.0)
		if outL != 0.0 || outR != 0.0 {
			hasReverb = true
			break
		}
	}
	if !hasReverb {
		t.Error("Reverb should produce a tail after impulse")
	}
}

func TestFreeverbReset(t *testing.T) {
	reverb := NewFreeverb(44100)

	reverb.ProcessStereo(1.0, 1.0)
	for i := 0; i < 100; i++ {
		reverb.ProcessStereo(0.0, 0.0)
	}

	reverb.Reset()

	outL, outR := reverb.ProcessStereo(0.0, 0.0)
	if outL != 0.0 || outR != 0.0 {
		t.Error("Reverb should output silence after reset")
	}
}

func TestFreeverbFrozen(t *testing.T) {
	reverb := NewFreeverb(44100)

	reverb.ProcessStereo(1.0, 1.0)
	reverb.SetFrozen(true)

	var lastOut float32
	for i := 0; i < 10000; i++ {
		outL, _ := reverb.ProcessStereo(0.0, 0.0)
		if i == 9999 {
			lastOut = outL
		}
	}
	if lastOut == 0.0 {
		t.Error("Frozen reverb should sustain indefinitely")
	}
}

func TestFreeverbStereoWidth(t *testing.T) {
	reverb := NewFreeverb(44100)

	reverb.SetWidth(0.0)
	reverb.ProcessStereo(1.0, 0.0)

	var outL, outR float32
	for i := 0; i < 3000; i++ {
		outL, outR = reverb.ProcessStereo(0.0, 0.0)
	}
	if diff := math.Abs(float64(outL - outR)); diff > 0.001 {
		t.Errorf("With width=0, outputs should be nearly identical, got difference: %f", diff)
	}

	reverb.SetWidth(1.0)
	reverb.Reset()

	reverb.ProcessStereo(1.0, 0.0)
	for i := 0; i < 3000; i++ {
		outL, outR = reverb.ProcessStereo(0.0, 0.0)
	}
	if diff := math.Abs(float64(outL - outR)); diff < 0.001 {
		t.Error("With width=1, outputs should be different for stereo input")
	}
}

func TestFreeverbDifferentSampleRates(t *testing.T) {
	sampleRates := []float64{44100, 48000, 88200, 96000}

	for _, sr := range sampleRates {
		reverb := NewFreeverb(sr)

		outL, outR := reverb.ProcessStereo(1.0, 1.0)
		if math.IsNaN(float64(outL)) || math.IsNaN(float64(outR)) {
			t.Errorf("Reverb at %fHz produced NaN output", sr)
		}

		expectedScaling := sr / 44100.0
		actualDelay := len(reverb.combL[0].buffer)
		expectedDelay := int(float64(combTuning[0]) * expectedScaling)

		if math.Abs(float64(actualDelay-expectedDelay)) > 1.0 {
			t.Errorf("At %fHz, expected delay ~%d samples, got %d", sr, expectedDelay, actualDelay)
		}
	}
}

func BenchmarkFreeverbStereo(b *testing.B) {
	reverb := NewFreeverb(44100)

	inputL := make([]float32, 512)
	inputR := make([]float32, 512)
	outputL := make([]float32, 512)
	outputR := make([]float32, 512)

	for i := range inputL {
		inputL[i] = float32(i%100) / 100.0
		inputR[i] = inputL[i]
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := 0; j < 512; j++ {
			outputL[j], outputR[j] = reverb.ProcessStereo(inputL[j], inputR[j])
		}
	}
}
