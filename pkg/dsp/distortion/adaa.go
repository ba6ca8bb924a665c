package distortion

import "math"

// Antiderivative is the closed-form antiderivative of a waveshaping
// function, with respect to its input.
type Antiderivative func(x float64) float64

// adaaEpsilon is the minimum sample-to-sample input delta below which the
// first-order difference quotient becomes numerically unstable; ADAA falls
// back to evaluating the shaper directly at the midpoint in that case.
const adaaEpsilon = 1e-6

// ADAA applies first-order antiderivative anti-aliasing to a nonlinear
// waveshaping curve. Rather than evaluating shape(x) every sample, it
// evaluates the slope of the curve's antiderivative between consecutive
// samples, which suppresses the aliasing a directly-sampled nonlinearity
// folds back into the audible band.
type ADAA struct {
	shape          func(x float64) float64
	antiderivative Antiderivative

	lastInput          float64
	lastAntiderivative float64
	initialized        bool
}

// NewADAA wraps shape with its antiderivative.
func NewADAA(shape func(x float64) float64, antiderivative Antiderivative) *ADAA {
	return &ADAA{shape: shape, antiderivative: antiderivative}
}

// Process runs one sample through the ADAA-wrapped curve.
func (a *ADAA) Process(x float64) float64 {
	fx := a.antiderivative(x)

	if !a.initialized {
		a.lastInput = x
		a.lastAntiderivative = fx
		a.initialized = true
		return a.shape(x)
	}

	denom := x - a.lastInput
	var out float64
	if math.Abs(denom) < adaaEpsilon {
		out = a.shape((x + a.lastInput) / 2)
	} else {
		out = (fx - a.lastAntiderivative) / denom
	}

	a.lastInput = x
	a.lastAntiderivative = fx
	return out
}

// ProcessBuffer runs ADAA over a buffer in place.
func (a *ADAA) ProcessBuffer(buffer []float64) {
	for i := range buffer {
		buffer[i] = a.Process(buffer[i])
	}
}

// Reset clears the one-sample history, restarting the difference quotient
// as if the next sample were the first ever processed.
func (a *ADAA) Reset() {
	a.initialized = false
}

// HardClipAntiderivative is the closed-form antiderivative of a
// hard-clip-at-unity curve, for driving it through ADAA.
func HardClipAntiderivative(x float64) float64 {
	if x > 1 {
		return x - 0.5
	}
	if x < -1 {
		return -x - 0.5
	}
	return x * x / 2
}

// SoftClipAntiderivative is the closed-form antiderivative of tanh,
// log(cosh(x)), for driving a soft-clip curve through ADAA.
func SoftClipAntiderivative(x float64) float64 {
	return math.Log(math.Cosh(x))
}
