package distortion

import "math"

// Wavefolder reflects a signal back on itself past +/-1 instead of
// clipping it, the "West Coast" style folding distortion. Folding is
// applied through ADAA so raising the fold amount doesn't introduce
// extra aliasing beyond what the fold itself adds harmonically.
type Wavefolder struct {
	adaa *ADAA
	gain float64 // fold amount; 0 is the identity (edge case: no folding)
}

// NewWavefolder creates a Wavefolder with folding disabled (identity).
func NewWavefolder() *Wavefolder {
	w := &Wavefolder{}
	w.adaa = NewADAA(w.fold, w.foldAntiderivative)
	return w
}

// SetGain sets the fold amount. 0 passes the signal through unchanged.
func (w *Wavefolder) SetGain(gain float64) {
	if gain < 0 {
		gain = 0
	}
	w.gain = gain
}

// Process folds one sample. With gain at 0 this is the identity function,
// matching the distortion/wavefolder identity invariant.
func (w *Wavefolder) Process(x float64) float64 {
	if w.gain == 0 {
		return x
	}
	return w.adaa.Process(x)
}

// ProcessBuffer folds a buffer in place.
func (w *Wavefolder) ProcessBuffer(buffer []float64) {
	for i := range buffer {
		buffer[i] = w.Process(buffer[i])
	}
}

// Reset clears the ADAA history.
func (w *Wavefolder) Reset() { w.adaa.Reset() }

func (w *Wavefolder) fold(x float64) float64 {
	return triangleFold(x * (1 + w.gain))
}

func (w *Wavefolder) foldAntiderivative(x float64) float64 {
	return triangleFoldAntiderivative(x*(1+w.gain)) / (1 + w.gain)
}

// triangleFold maps x onto a period-4, zero-mean triangle wave through
// [-1, 1]: the classic reflective fold.
func triangleFold(x float64) float64 {
	u := math.Mod(x+1, 4)
	if u < 0 {
		u += 4
	}
	if u < 2 {
		return u - 1
	}
	return 3 - u
}

// triangleFoldIndefinite is the antiderivative of the canonical [0,4)
// triangle segment, anchored so triangleFoldIndefinite(0) == 0.
func triangleFoldIndefinite(u float64) float64 {
	if u < 2 {
		return u*u/2 - u
	}
	return 3*u - u*u/2 - 4
}

// triangleFoldAntiderivative is the true antiderivative of triangleFold.
// Because triangleFold is periodic with zero mean, its antiderivative is
// itself periodic, so no running accumulator across periods is needed:
// evaluating the canonical segment at x mod 4 is exactly continuous at
// every fold boundary.
func triangleFoldAntiderivative(x float64) float64 {
	u := math.Mod(x+1, 4)
	if u < 0 {
		u += 4
	}
	const anchor = -0.5 // triangleFoldIndefinite(1)
	return triangleFoldIndefinite(u) - anchor
}
