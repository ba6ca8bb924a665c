package modulation

import (
	"math"

	"github.com/attilammagyar/js80p-sub000/pkg/dsp/param"
)

// DistortionCurve selects how a Macro's distortion stage shapes its input
// before scaling, independently for the lower and upper half of the
// waveform.
type DistortionCurve int

const (
	CurveSmoothSmooth DistortionCurve = iota
	CurveSmoothSharp
	CurveSharpSmooth
	CurveSharpSharp
)

func curveSegment(curve DistortionCurve, negative bool) bool {
	sharpLower := curve == CurveSharpSmooth || curve == CurveSharpSharp
	sharpUpper := curve == CurveSmoothSharp || curve == CurveSharpSharp
	if negative {
		return sharpLower
	}
	return sharpUpper
}

func shapeSegment(sharp bool, x float64) float64 {
	if sharp {
		if x >= 0 {
			return math.Pow(x, 3)
		}
		return -math.Pow(-x, 3)
	}
	return math.Tanh(x * 1.5) / math.Tanh(1.5)
}

// combine linearly blends a toward b, weighted aWeight*a + (1-aWeight)*b,
// with one multiplication folded away.
func combine(aWeight, a, b float64) float64 {
	return aWeight*(a-b) + b
}

// distort reshapes number through the selected curve's segment functions,
// blended toward the identity by level. Below a noise floor it is the
// identity outright, matching the original's early-out.
func distort(level float64, number float64, curve DistortionCurve) float64 {
	if level < 0.0001 {
		return number
	}
	sharp := curveSegment(curve, number < 0)
	shaped := shapeSegment(sharp, number)
	return combine(level, shaped, number)
}

// randomize nudges number by a deterministic pseudo-random offset derived
// from its own value, blended toward the identity by level.
func randomize(level float64, number float64) float64 {
	if level < 0.000001 {
		return number
	}
	h := math.Sin(number*12.9898) * 43758.5453
	noise := 2.0*(h-math.Floor(h)) - 1.0
	return combine(level, number+noise*0.5, number)
}

// Macro is a user-facing modulation controller: it reshapes a 0-1 input
// through a midpoint bend, a distortion curve and a randomizer, then scales
// the result into a [min, max] output range and publishes it as a
// MidiController value. Macro.distortion_curve is its own selectable curve
// (see DistortionCurve) matching the original's ByteParam-selectable
// distortion bank rather than a single fixed shape.
type Macro struct {
	*MidiController

	Midpoint   *param.Param
	Input      *param.Param
	Min        *param.Param
	Max        *param.Param
	Scale      *param.Param
	Distortion *param.Param
	Randomness *param.Param

	DistortionCurveSelect DistortionCurve

	isUpdating bool

	midpointSeen, inputSeen, minSeen, maxSeen   [Channels]uint64
	scaleSeen, distortionSeen, randomnessSeen   [Channels]uint64
}

// NewMacro creates a Macro named for diagnostics/MIDI-learn display, with
// inputDefault as the input param's starting value.
func NewMacro(name string, inputDefault float64) *Macro {
	return &Macro{
		MidiController: NewMidiController(),
		Midpoint:       param.New(name+"MID", 0.0, 1.0, 0.5, param.ScaleLinear, false),
		Input:          param.New(name+"IN", 0.0, 1.0, inputDefault, param.ScaleLinear, false),
		Min:            param.New(name+"MIN", 0.0, 1.0, 0.0, param.ScaleLinear, false),
		Max:            param.New(name+"MAX", 0.0, 1.0, 1.0, param.ScaleLinear, false),
		Scale:          param.New(name+"AMT", 0.0, 1.0, 1.0, param.ScaleLinear, false),
		Distortion:     param.New(name+"DST", 0.0, 1.0, 0.0, param.ScaleLinear, false),
		Randomness:     param.New(name+"RND", 0.0, 1.0, 0.0, param.ScaleLinear, false),
	}
}

// Update recomputes the macro's published value for one MPE channel and
// pushes it into the embedded MidiController. It is a no-op while already
// inside Update for this instance (the macro's own inputs can themselves be
// bound to other macros; without this guard a macro-to-macro cycle would
// recurse forever) and a no-op when nothing this channel cares about has
// changed since the last call.
func (m *Macro) Update(channel int) {
	if m.isUpdating {
		return
	}
	m.isUpdating = true
	defer func() { m.isUpdating = false }()

	if !m.updateSeen(channel) {
		return
	}

	midpoint := m.Midpoint.Plain()
	input := m.Input.Plain()

	var shifted float64
	if input < 0.5 {
		shifted = 2.0 * input * midpoint
	} else {
		shifted = midpoint + (2.0*input-1.0)*(1.0-midpoint)
	}

	minValue := m.Min.Plain()
	computed := randomize(
		m.Randomness.Plain(),
		distort(m.Distortion.Plain(), shifted, m.DistortionCurveSelect),
	)

	m.Change(channel, minValue+computed*m.Scale.Plain()*(m.Max.Plain()-minValue))
}

func (m *Macro) updateSeen(channel int) bool {
	dirty := false
	dirty = updateSeenIndex(channel, m.Midpoint.ChangeIndex(), &m.midpointSeen) || dirty
	dirty = updateSeenIndex(channel, m.Input.ChangeIndex(), &m.inputSeen) || dirty
	dirty = updateSeenIndex(channel, m.Min.ChangeIndex(), &m.minSeen) || dirty
	dirty = updateSeenIndex(channel, m.Max.ChangeIndex(), &m.maxSeen) || dirty
	dirty = updateSeenIndex(channel, m.Scale.ChangeIndex(), &m.scaleSeen) || dirty
	dirty = updateSeenIndex(channel, m.Distortion.ChangeIndex(), &m.distortionSeen) || dirty
	dirty = updateSeenIndex(channel, m.Randomness.ChangeIndex(), &m.randomnessSeen) || dirty
	return dirty
}

func updateSeenIndex(channel int, current uint64, seen *[Channels]uint64) bool {
	if channel < 0 || channel >= Channels || seen[channel] == current {
		return false
	}
	seen[channel] = current
	return true
}
