// Package filter implements the spec's BiquadFilter model (§4.4): a
// second-order IIR section whose coefficients are resolved once per block
// along the constant-coefficient fast path, stored with a1/a2 negated so
// the per-sample recurrence is addition-only, and classified into a
// no-op/silent/gain-only policy before a single sample is touched.
package filter

import (
	"math"

	"github.com/attilammagyar/js80p-sub000/pkg/dsp/signal"
)

// Coefficients is one resolved biquad tuple. A1 and A2 are the negated
// denominator taps (spec §3's BiquadFilterSharedBuffers): the recurrence
// becomes
//
//	y[n] = B0*x[n] + B1*x[n-1] + B2*x[n-2] + A1*y[n-1] + A2*y[n-2]
//
// i.e. additions only, never a subtraction against a1/a2.
type Coefficients struct {
	B0, B1, B2, A1, A2 float64
}

// noOpCoefficients is the identity tuple (1,0,0,0,0): y[n] = x[n].
func noOpCoefficients() Coefficients { return Coefficients{B0: 1} }

// silentCoefficients collapses every tap to zero.
func silentCoefficients() Coefficients { return Coefficients{} }

// gainOnlyCoefficients reduces the section to a flat per-sample multiplier
// (b0 = 10^(gain/20), every other tap zero), skipping the two-pole
// recurrence's frequency shaping entirely.
func gainOnlyCoefficients(gainDB float64) Coefficients {
	return Coefficients{B0: math.Pow(10, gainDB/20)}
}

// normalize divides a raw Audio-EQ-Cookbook derivation's taps by a0 and
// negates a1/a2, turning the textbook form into the stored representation
// Biquad.Process expects.
func normalize(b0, b1, b2, a0, a1, a2 float64) Coefficients {
	invA0 := 1 / a0
	return Coefficients{
		B0: b0 * invA0,
		B1: b1 * invA0,
		B2: b2 * invA0,
		A1: -a1 * invA0,
		A2: -a2 * invA0,
	}
}

// cookbookAlpha returns the cos(omega)/alpha pair the Audio EQ Cookbook
// formulas share across every filter type.
func cookbookAlpha(sampleRate, frequency, q float64) (cosOmega, alpha float64) {
	omega := 2 * math.Pi * frequency / sampleRate
	sinOmega, cosOmega := math.Sincos(omega)
	return cosOmega, sinOmega / (2 * q)
}

func lowpassCoefficients(sampleRate, frequency, q float64) Coefficients {
	cosOmega, alpha := cookbookAlpha(sampleRate, frequency, q)
	b0 := (1 - cosOmega) / 2
	b1 := 1 - cosOmega
	b2 := (1 - cosOmega) / 2
	return normalize(b0, b1, b2, 1+alpha, -2*cosOmega, 1-alpha)
}

func highpassCoefficients(sampleRate, frequency, q float64) Coefficients {
	cosOmega, alpha := cookbookAlpha(sampleRate, frequency, q)
	b0 := (1 + cosOmega) / 2
	b1 := -(1 + cosOmega)
	b2 := (1 + cosOmega) / 2
	return normalize(b0, b1, b2, 1+alpha, -2*cosOmega, 1-alpha)
}

func bandpassCoefficients(sampleRate, frequency, q float64) Coefficients {
	cosOmega, alpha := cookbookAlpha(sampleRate, frequency, q)
	return normalize(alpha, 0, -alpha, 1+alpha, -2*cosOmega, 1-alpha)
}

func notchCoefficients(sampleRate, frequency, q float64) Coefficients {
	cosOmega, alpha := cookbookAlpha(sampleRate, frequency, q)
	return normalize(1, -2*cosOmega, 1, 1+alpha, -2*cosOmega, 1-alpha)
}

func allpassCoefficients(sampleRate, frequency, q float64) Coefficients {
	cosOmega, alpha := cookbookAlpha(sampleRate, frequency, q)
	return normalize(1-alpha, -2*cosOmega, 1+alpha, 1+alpha, -2*cosOmega, 1-alpha)
}

func peakingCoefficients(sampleRate, frequency, q, gainDB float64) Coefficients {
	cosOmega, alpha := cookbookAlpha(sampleRate, frequency, q)
	a := math.Pow(10, gainDB/40)
	b0 := 1 + alpha*a
	b1 := -2 * cosOmega
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a2 := 1 - alpha/a
	return normalize(b0, b1, b2, a0, b1, a2)
}

func lowShelfCoefficients(sampleRate, frequency, q, gainDB float64) Coefficients {
	cosOmega, alpha := cookbookAlpha(sampleRate, frequency, q)
	a := math.Pow(10, gainDB/40)
	sqrtAAlpha := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) - (a-1)*cosOmega + sqrtAAlpha)
	b1 := 2 * a * ((a - 1) - (a+1)*cosOmega)
	b2 := a * ((a + 1) - (a-1)*cosOmega - sqrtAAlpha)
	a0 := (a + 1) + (a-1)*cosOmega + sqrtAAlpha
	a1 := -2 * ((a - 1) + (a+1)*cosOmega)
	a2 := (a + 1) + (a-1)*cosOmega - sqrtAAlpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

func highShelfCoefficients(sampleRate, frequency, q, gainDB float64) Coefficients {
	cosOmega, alpha := cookbookAlpha(sampleRate, frequency, q)
	a := math.Pow(10, gainDB/40)
	sqrtAAlpha := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) + (a-1)*cosOmega + sqrtAAlpha)
	b1 := -2 * a * ((a - 1) + (a+1)*cosOmega)
	b2 := a * ((a + 1) + (a-1)*cosOmega - sqrtAAlpha)
	a0 := (a + 1) - (a-1)*cosOmega + sqrtAAlpha
	a1 := 2 * ((a - 1) - (a+1)*cosOmega)
	a2 := (a + 1) - (a-1)*cosOmega - sqrtAAlpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

// Biquad is the per-channel delay-line state a resolved Coefficients tuple
// is run against. The coefficients themselves live outside the struct
// (a Filter resolves one Coefficients value per block, or shares one via
// SharedBuffers) so several channels - or several filters sharing
// identical constant bindings - can apply the same tuple without
// recomputing it.
type Biquad struct {
	x1, x2 []float64 // input delay line, per channel
	y1, y2 []float64 // output delay line, per channel
}

// NewBiquad allocates delay-line state for the given channel count.
func NewBiquad(channels int) *Biquad {
	return &Biquad{
		x1: make([]float64, channels),
		x2: make([]float64, channels),
		y1: make([]float64, channels),
		y2: make([]float64, channels),
	}
}

// Reset clears every channel's delay-line state.
func (b *Biquad) Reset() {
	for i := range b.x1 {
		b.x1[i], b.x2[i], b.y1[i], b.y2[i] = 0, 0, 0, 0
	}
}

// Process runs the direct-form-I recurrence (x1, x2, y1, y2 history; not a
// transposed form) for one channel
// against a single coefficient tuple - the constant-coefficient fast path
// spec §4.4 calls for when frequency/Q/gain are all block-constant. The
// degenerate no-op/silent/gain-only tuples flow through this exact same
// loop: a no-op tuple reproduces the input exactly (1*x + 0 == x in
// IEEE-754), and a silent tuple zeroes the output, while both still thread
// real delay-line state through so a later policy transition back to
// PolicyNormal sees continuous history, per §4.4's "updates state as if it
// had processed it".
func (b *Biquad) Process(buffer []float32, channel int, c Coefficients) {
	x1, x2 := b.x1[channel], b.x2[channel]
	y1, y2 := b.y1[channel], b.y2[channel]

	for i, sample := range buffer {
		x0 := float64(sample)
		y0 := c.B0*x0 + c.B1*x1 + c.B2*x2 + c.A1*y1 + c.A2*y2

		x2, x1 = x1, x0
		y2, y1 = y1, y0

		buffer[i] = float32(y0)
	}

	b.x1[channel], b.x2[channel] = x1, x2
	b.y1[channel], b.y2[channel] = y1, y2
}

// ProcessMulti runs Process across every channel of a multi-channel block
// against one shared coefficient tuple.
func (b *Biquad) ProcessMulti(buffers [][]float32, c Coefficients) {
	for ch, buffer := range buffers {
		if ch < len(b.x1) {
			b.Process(buffer, ch, c)
		}
	}
}

// SharedBuffers is spec §3's BiquadFilterSharedBuffers: when two or more
// Filters are bound to identical constant-over-the-block frequency/Q/gain
// parameters, they can point at the same SharedBuffers so only the first
// one to render in a given round actually derives the coefficients and
// policy; every other Filter sharing it this round reuses the cached
// result instead of re-deriving it.
type SharedBuffers struct {
	round  signal.Round
	ready  bool
	coeffs Coefficients
	policy Policy
}

// Resolve returns the coefficients and policy for round, invoking derive
// only the first time this SharedBuffers is asked about that round.
func (s *SharedBuffers) Resolve(round signal.Round, derive func() (Coefficients, Policy)) (Coefficients, Policy) {
	if s.ready && s.round == round {
		return s.coeffs, s.policy
	}
	s.coeffs, s.policy = derive()
	s.round = round
	s.ready = true
	return s.coeffs, s.policy
}
