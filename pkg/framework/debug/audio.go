// Package debug is the module's audio-thread-safe debug logger: a leveled,
// file/line-annotated writer that internal/debug wraps behind a
// //go:build debug switch so voice allocation, stealing, and MIDI-learn
// traces cost nothing in a release build.
package debug

import (
	"fmt"
	"math"
)

// AudioAnalyzer runs the sanity checks internal/debug.CheckOutput applies
// to every rendered stereo block in a debug build: clipping, DC offset,
// silence, and NaN detection.
type AudioAnalyzer struct {
	detectClipping    bool
	detectDC          bool
	detectSilence     bool
	detectNaN         bool
	clippingThreshold float32
	dcThreshold       float32
	silenceThreshold  float32
}

// NewAudioAnalyzer creates an analyzer with every check enabled, thresholds
// tuned for a normalized [-1, 1] signal.
func NewAudioAnalyzer() *AudioAnalyzer {
	return &AudioAnalyzer{
		detectClipping:    true,
		detectDC:          true,
		detectSilence:     true,
		detectNaN:         true,
		clippingThreshold: 0.99,
		dcThreshold:       0.01,
		silenceThreshold:  0.0001,
	}
}

// AnalysisResult holds one buffer's worth of sanity-check findings.
type AnalysisResult struct {
	Peak           float32
	RMS            float32
	DC             float32
	Clipping       bool
	ClippedSamples int
	Silent         bool
	HasNaN         bool
	NaNCount       int
}

// Analyze computes peak, RMS, DC offset and clipping/silence/NaN flags
// over buffer in one pass.
func (a *AudioAnalyzer) Analyze(buffer []float32) AnalysisResult {
	result := AnalysisResult{}
	if len(buffer) == 0 {
		return result
	}

	var sum, sumSquares float64

	for _, sample := range buffer {
		if a.detectNaN && math.IsNaN(float64(sample)) {
			result.HasNaN = true
			result.NaNCount++
			continue
		}

		absSample := sample
		if absSample < 0 {
			absSample = -absSample
		}
		if absSample > result.Peak {
			result.Peak = absSample
		}
		if a.detectClipping && absSample >= a.clippingThreshold {
			result.Clipping = true
			result.ClippedSamples++
		}

		sum += float64(sample)
		sumSquares += float64(sample * sample)
	}

	result.RMS = float32(math.Sqrt(sumSquares / float64(len(buffer))))
	result.DC = float32(sum / float64(len(buffer)))
	if a.detectSilence && result.RMS < a.silenceThreshold {
		result.Silent = true
	}

	return result
}

// CheckBuffer runs a fresh AudioAnalyzer over buffer and renders every
// flagged condition as a one-line issue string prefixed with name.
func CheckBuffer(buffer []float32, name string) []string {
	var issues []string

	analyzer := NewAudioAnalyzer()
	result := analyzer.Analyze(buffer)

	if result.HasNaN {
		issues = append(issues, fmt.Sprintf("%s: Contains %d NaN values", name, result.NaNCount))
	}
	if result.Clipping {
		issues = append(issues, fmt.Sprintf("%s: Clipping detected (%d samples)", name, result.ClippedSamples))
	}
	if math.Abs(float64(result.DC)) > float64(analyzer.dcThreshold) {
		issues = append(issues, fmt.Sprintf("%s: DC offset detected (%.3f)", name, result.DC))
	}
	if result.Peak > 1.0 {
		issues = append(issues, fmt.Sprintf("%s: Peak exceeds 1.0 (%.3f)", name, result.Peak))
	}

	return issues
}
