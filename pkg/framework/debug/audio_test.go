package debug

import (
	"math"
	"strings"
	"testing"
)

func TestAudioAnalyzer(t *testing.T) {
	t.Run("BasicAnalysis", func(t *testing.T) {
		analyzer := NewAudioAnalyzer()

		buffer := make([]float32, 1000)
		for i := range buffer {
			buffer[i] = 0.5 * float32(math.Sin(2*math.Pi*440*float64(i)/48000))
		}

		result := analyzer.Analyze(buffer)

		if result.Peak < 0.49 || result.Peak > 0.51 {
			t.Errorf("Peak incorrect: %f", result.Peak)
		}

		expectedRMS := 0.5 / math.Sqrt(2)
		if math.Abs(float64(result.RMS)-expectedRMS) > 0.01 {
			t.Errorf("RMS incorrect: %f, expected ~%f", result.RMS, expectedRMS)
		}

		if result.Silent {
			t.Error("Should not be silent")
		}
	})

	t.Run("Clipping", func(t *testing.T) {
		analyzer := NewAudioAnalyzer()

		buffer := []float32{0.5, 0.99, 1.0, -0.99, -1.0, 0.5}
		result := analyzer.Analyze(buffer)

		if !result.Clipping {
			t.Error("Should detect clipping")
		}
		if result.ClippedSamples != 4 { // ±0.99 and ±1.0
			t.Errorf("Wrong clipped sample count: %d", result.ClippedSamples)
		}
	})

	t.Run("DCOffset", func(t *testing.T) {
		analyzer := NewAudioAnalyzer()

		buffer := make([]float32, 100)
		for i := range buffer {
			buffer[i] = 0.3
		}

		result := analyzer.Analyze(buffer)
		if math.Abs(float64(result.DC)-0.3) > 0.001 {
			t.Errorf("DC offset incorrect: %f", result.DC)
		}
	})

	t.Run("Silence", func(t *testing.T) {
		analyzer := NewAudioAnalyzer()

		buffer := make([]float32, 100) // all zeros
		result := analyzer.Analyze(buffer)

		if !result.Silent {
			t.Error("Should detect silence")
		}
		if result.Peak != 0 {
			t.Error("Peak should be 0")
		}
	})

	t.Run("NaN", func(t *testing.T) {
		analyzer := NewAudioAnalyzer()

		buffer := []float32{1.0, float32(math.NaN()), 0.5, float32(math.NaN())}
		result := analyzer.Analyze(buffer)

		if !result.HasNaN {
			t.Error("Should detect NaN")
		}
		if result.NaNCount != 2 {
			t.Errorf("Wrong NaN count: %d", result.NaNCount)
		}
	})
}

func TestCheckBuffer(t *testing.T) {
	t.Run("NoIssues", func(t *testing.T) {
		buffer := []float32{0.1, 0.2, -0.1, -0.2}
		issues := CheckBuffer(buffer, "test")
		if len(issues) != 0 {
			t.Errorf("Should have no issues, got: %v", issues)
		}
	})

	t.Run("MultipleIssues", func(t *testing.T) {
		buffer := []float32{
			float32(math.NaN()), // NaN
			1.5,                 // over 1.0
			0.3, 0.3, 0.3,       // DC offset
		}

		issues := CheckBuffer(buffer, "test")

		hasNaN, hasPeak, hasDC := false, false, false
		for _, issue := range issues {
			if strings.Contains(issue, "NaN") {
				hasNaN = true
			}
			if strings.Contains(issue, "Peak exceeds") {
				hasPeak = true
			}
			if strings.Contains(issue, "DC offset") {
				hasDC = true
			}
		}

		if !hasNaN || !hasPeak || !hasDC {
			t.Error("Missing expected issues")
		}
	})
}

func BenchmarkAnalyzer(b *testing.B) {
	analyzer := NewAudioAnalyzer()
	buffer := make([]float32, 512)
	for i := range buffer {
		buffer[i] = float32(math.Sin(2 * math.Pi * float64(i) / 100))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = analyzer.Analyze(buffer)
	}
}
