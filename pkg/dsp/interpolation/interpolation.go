// Package interpolation holds the two sample-reconstruction kernels the
// oscillator's wavetable lookup needs (spec §4.1): a cheap linear blend
// between adjacent frames for the wavetable's own interpolation mode, and a
// Catmull-Rom cubic blend for band-limited table interpolation where a
// sharper reconstruction is worth the extra taps.
package interpolation

// Linear interpolates between two samples. frac is the fractional position
// between y0 and y1 (0.0 to 1.0).
func Linear(y0, y1, frac float32) float32 {
	return y0 + (y1-y0)*frac
}

// Cubic performs 4-point Catmull-Rom interpolation. frac is the fractional
// position between y1 and y2 (0.0 to 1.0).
func Cubic(y0, y1, y2, y3, frac float32) float32 {
	c0 := y1
	c1 := 0.5 * (y2 - y0)
	c2 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	c3 := 0.5 * (y3 - y0 + 3*(y1-y2))

	return ((c3*frac+c2)*frac+c1)*frac + c0
}
