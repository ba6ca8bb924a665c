package filter

import (
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/param"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/signal"
)

// Type selects which Biquad design equation a Filter's coefficients come
// from every block.
type Type int

const (
	TypeNone Type = iota
	TypeLowpass
	TypeHighpass
	TypeBandpass
	TypeNotch
	TypeAllpass
	TypePeaking
	TypeLowShelf
	TypeHighShelf
)

// Policy records what a Filter's current block of coefficients actually
// does, so callers can skip work a full biquad evaluation wouldn't justify.
type Policy int

const (
	// PolicyNormal means the full addition-only recurrence is needed.
	PolicyNormal Policy = iota
	// PolicyNoOp means this block's coefficients reduce to an identity
	// pass-through (cutoff past Nyquist, zero-dB shelf/peak, ...).
	PolicyNoOp
	// PolicySilent means this block's coefficients reduce to zero
	// (cutoff beyond the signal's usable range for this filter type).
	PolicySilent
	// PolicyGainOnly means the filter reduces to a flat per-sample
	// multiplier this block; Process still runs the full two-pole
	// recurrence with these coefficients, so the state stays continuous.
	PolicyGainOnly
)

// Boundary constants from spec §4.4's per-type policy table. These are not
// user-visible parameters - per spec §9's open question on this exact
// point, the literal thresholds are preserved rather than inferred, since
// changing them changes which marginal configuration counts as "silent".
const (
	noOpGainEpsilonDB  = 0.05 // peaking/shelf gain within this of 0dB is no-op
	gainOnlyQThreshold = 0.1  // peaking Q at/below this collapses to gain-only
	wideQThreshold     = 0.1  // band-pass/notch Q at/below this is maximally wide
)

// Filter wraps a Biquad with param-driven frequency/Q/gain controls,
// resolving one Coefficients tuple and Policy per block (the "shared
// coefficients" fast path of spec §4.4: every channel, and every Filter
// pointed at the same Shared, reuses that block's tuple instead of each
// deriving its own).
type Filter struct {
	biquad     *Biquad
	sampleRate float64

	Type      Type
	Frequency *param.Param // Hz
	Q         *param.Param
	GainDB    *param.Param // used by peaking/shelf types only

	// Shared, if set, makes UpdateCoefficients resolve through a
	// BiquadFilterSharedBuffers instead of deriving its own tuple - the
	// first Filter to render in a round computes it, every other Filter
	// sharing this pointer within the same round reuses it.
	Shared *SharedBuffers

	coeffs Coefficients
	policy Policy
}

// NewFilter creates a Filter for the given channel count and sample rate,
// defaulting to a wide-open lowpass.
func NewFilter(sampleRate float64, channels int) *Filter {
	return &Filter{
		biquad:     NewBiquad(channels),
		sampleRate: sampleRate,
		Type:       TypeLowpass,
		Frequency:  param.New("frequency", 20.0, sampleRate/2, sampleRate/2, param.ScaleLog, false),
		Q:          param.New("q", 0.1, 20.0, 0.7071, param.ScaleLog, false),
		GainDB:     param.New("gain_db", -24.0, 24.0, 0.0, param.ScaleLinear, false),
	}
}

// Reset clears the underlying biquad's delay-line state.
func (f *Filter) Reset() { f.biquad.Reset() }

// Policy reports the policy chosen by the most recent UpdateCoefficients
// call, for callers deciding whether to skip downstream work.
func (f *Filter) Policy() Policy { return f.policy }

// noOpFrequency is the per-type cutoff past which a filter's effect on an
// audible signal is indistinguishable from a pass-through: the smaller of
// Nyquist and the param's own configured maximum.
func (f *Filter) noOpFrequency() float64 {
	nyquist := f.sampleRate / 2
	if f.Frequency.Max < nyquist {
		return f.Frequency.Max
	}
	return nyquist
}

// derive resolves Frequency/Q/GainDB for round and classifies the result
// against spec §4.4's per-type boundary table before deriving any
// coefficients a normal render would actually need.
func (f *Filter) derive(round signal.Round) (Coefficients, Policy) {
	freq := f.Frequency.ValueAt(round, 0)
	q := f.Q.ValueAt(round, 0)
	gainDB := f.GainDB.ValueAt(round, 0)
	nyquist := f.sampleRate / 2
	noOp := f.noOpFrequency()

	switch f.Type {
	case TypeNone:
		return noOpCoefficients(), PolicyNoOp

	case TypeLowpass:
		if freq >= noOp {
			return noOpCoefficients(), PolicyNoOp
		}
		return lowpassCoefficients(f.sampleRate, freq, q), PolicyNormal

	case TypeHighpass:
		if freq <= 0 {
			return noOpCoefficients(), PolicyNoOp
		}
		if freq >= nyquist {
			return silentCoefficients(), PolicySilent
		}
		return highpassCoefficients(f.sampleRate, freq, q), PolicyNormal

	case TypeBandpass:
		if q <= wideQThreshold {
			return noOpCoefficients(), PolicyNoOp
		}
		if freq >= nyquist {
			return silentCoefficients(), PolicySilent
		}
		return bandpassCoefficients(f.sampleRate, freq, q), PolicyNormal

	case TypeNotch:
		if freq >= noOp {
			return noOpCoefficients(), PolicyNoOp
		}
		if q <= wideQThreshold {
			return silentCoefficients(), PolicySilent
		}
		return notchCoefficients(f.sampleRate, freq, q), PolicyNormal

	case TypeAllpass:
		return allpassCoefficients(f.sampleRate, freq, q), PolicyNormal

	case TypePeaking:
		if gainDB > -noOpGainEpsilonDB && gainDB < noOpGainEpsilonDB {
			return noOpCoefficients(), PolicyNoOp
		}
		if freq >= noOp {
			return noOpCoefficients(), PolicyNoOp
		}
		if q <= gainOnlyQThreshold {
			return gainOnlyCoefficients(gainDB), PolicyGainOnly
		}
		return peakingCoefficients(f.sampleRate, freq, q, gainDB), PolicyNormal

	case TypeLowShelf:
		if gainDB > -noOpGainEpsilonDB && gainDB < noOpGainEpsilonDB {
			return noOpCoefficients(), PolicyNoOp
		}
		if freq >= noOp {
			return gainOnlyCoefficients(gainDB), PolicyGainOnly
		}
		return lowShelfCoefficients(f.sampleRate, freq, q, gainDB), PolicyNormal

	case TypeHighShelf:
		if gainDB > -noOpGainEpsilonDB && gainDB < noOpGainEpsilonDB {
			return noOpCoefficients(), PolicyNoOp
		}
		if freq >= noOp {
			return noOpCoefficients(), PolicyNoOp
		}
		return highShelfCoefficients(f.sampleRate, freq, q, gainDB), PolicyNormal
	}

	return noOpCoefficients(), PolicyNoOp
}

// UpdateCoefficients resolves this block's policy and coefficients, either
// directly or (when Shared is set) through the BiquadFilterSharedBuffers
// every co-bound Filter points at. Call this once per block before
// Process; every channel processed afterwards shares the result.
func (f *Filter) UpdateCoefficients(round signal.Round) {
	derive := func() (Coefficients, Policy) { return f.derive(round) }
	if f.Shared != nil {
		f.coeffs, f.policy = f.Shared.Resolve(round, derive)
		return
	}
	f.coeffs, f.policy = derive()
}

// Process applies the filter in place to every channel's buffer, running
// the same addition-only recurrence regardless of policy - a no-op tuple
// reproduces the input exactly, a silent tuple zeroes it, and a gain-only
// tuple degenerates to a flat multiply - so delay-line state always
// advances consistently across policy transitions (spec §4.4).
func (f *Filter) Process(buffers [][]float32) {
	f.biquad.ProcessMulti(buffers, f.coeffs)
}
