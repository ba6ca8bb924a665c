package envelope

import (
	"math"

	"github.com/attilammagyar/js80p-sub000/pkg/dsp/signal"
)

// Shape selects the easing curve a DAHDSR stage uses to travel from its
// start value to its target value. The library offers twelve variants
// spanning linear through sharply exponential in both directions.
type Shape int

const (
	ShapeLinear Shape = iota
	ShapeExpo2
	ShapeExpo3
	ShapeExpo4
	ShapeExpo6
	ShapeExpo9
	ShapeLog2
	ShapeLog3
	ShapeLog4
	ShapeLog6
	ShapeLog9
	ShapeSCurve
)

// shapeFn maps a stage-progress ratio in [0, 1] to an eased ratio.
func shapeFn(s Shape, ratio float64) float64 {
	switch s {
	case ShapeExpo2:
		return math.Pow(ratio, 2)
	case ShapeExpo3:
		return math.Pow(ratio, 3)
	case ShapeExpo4:
		return math.Pow(ratio, 4)
	case ShapeExpo6:
		return math.Pow(ratio, 6)
	case ShapeExpo9:
		return math.Pow(ratio, 9)
	case ShapeLog2:
		return 1 - math.Pow(1-ratio, 2)
	case ShapeLog3:
		return 1 - math.Pow(1-ratio, 3)
	case ShapeLog4:
		return 1 - math.Pow(1-ratio, 4)
	case ShapeLog6:
		return 1 - math.Pow(1-ratio, 6)
	case ShapeLog9:
		return 1 - math.Pow(1-ratio, 9)
	case ShapeSCurve:
		return ratio * ratio * (3 - 2*ratio)
	default:
		return ratio
	}
}

// DAHDSRStage is one phase of the Delay-Attack-Hold-Decay-Sustain-Release
// lifecycle.
type DAHDSRStage int

const (
	DAHDSRIdle DAHDSRStage = iota
	DAHDSRDelay
	DAHDSRAttack
	DAHDSRHold
	DAHDSRDecay
	DAHDSRSustain
	DAHDSRRelease
)

// DAHDSR is a six-stage envelope generator with independently shaped
// attack, decay and release segments and a sustain level that can be
// re-targeted mid-decay without a discontinuity.
type DAHDSR struct {
	sampleRate float64

	delay, attack, hold, decay, release float64 // seconds
	sustainLevel                        float64

	attackShape, decayShape, releaseShape Shape

	stage           DAHDSRStage
	stageSamples    int
	stageElapsed    int
	stageStartValue float64
	stageTarget     float64
	value           float64
}

// New creates a DAHDSR with sensible defaults and linear shaping.
func New(sampleRate float64) *DAHDSR {
	return &DAHDSR{
		sampleRate:    sampleRate,
		attack:        0.01,
		decay:         0.1,
		sustainLevel:  0.7,
		release:       0.3,
		attackShape:   ShapeLinear,
		decayShape:    ShapeLinear,
		releaseShape:  ShapeLinear,
		stage:         DAHDSRIdle,
	}
}

func durationSamples(seconds, sampleRate float64) int {
	n := int(seconds * sampleRate)
	if n < 1 {
		n = 1
	}
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SetDelay, SetAttack, SetHold, SetDecay and SetRelease set each stage's
// duration in seconds; zero-length stages are skipped entirely.
func (e *DAHDSR) SetDelay(seconds float64)   { e.delay = math.Max(0, seconds) }
func (e *DAHDSR) SetAttack(seconds float64)  { e.attack = math.Max(0, seconds) }
func (e *DAHDSR) SetHold(seconds float64)    { e.hold = math.Max(0, seconds) }
func (e *DAHDSR) SetDecay(seconds float64)   { e.decay = math.Max(0, seconds) }
func (e *DAHDSR) SetRelease(seconds float64) { e.release = math.Max(0, seconds) }

// SetShapes sets the easing curve used for each of the three moving
// stages.
func (e *DAHDSR) SetShapes(attack, decay, release Shape) {
	e.attackShape = attack
	e.decayShape = decay
	e.releaseShape = release
}

// SetSustain updates the sustain level. If the envelope is currently
// decaying toward the old level, the running value is re-anchored with
// the adjusted-initial-value formula so the curve bends smoothly toward
// the new target instead of jumping: solving
// last = iv*(1-shaped) + shaped*target for iv keeps the eased curve
// passing through the current value at the current stage progress.
func (e *DAHDSR) SetSustain(level float64) {
	level = clamp01(level)
	if e.stage == DAHDSRDecay && e.stageSamples > 0 {
		ratio := float64(e.stageElapsed) / float64(e.stageSamples)
		eased := shapeFn(e.decayShape, ratio)
		e.stageTarget = level
		e.stageStartValue = adjustedInitialValue(e.value, eased, level)
	} else if e.stage == DAHDSRSustain {
		e.value = level
	}
	e.sustainLevel = level
}

// adjustedInitialValue recovers a fictitious stage start value so that,
// continuing to apply the same shape curve at the same elapsed ratio,
// the eased interpolation passes through last exactly.
func adjustedInitialValue(last, shaped, target float64) float64 {
	if shaped >= 1 {
		return last
	}
	return (last - shaped*target) / (1 - shaped)
}

// Trigger starts the envelope from Delay (note on / retrigger).
func (e *DAHDSR) Trigger() {
	e.enterStage(DAHDSRDelay)
}

// Release starts the release stage (note off). A no-op while idle.
func (e *DAHDSR) Release() {
	if e.stage != DAHDSRIdle {
		e.enterStage(DAHDSRRelease)
	}
}

// Reset immediately silences the envelope and returns it to idle.
func (e *DAHDSR) Reset() {
	e.stage = DAHDSRIdle
	e.value = 0
	e.stageSamples = 0
	e.stageElapsed = 0
}

// IsActive reports whether the envelope is generating non-idle output.
func (e *DAHDSR) IsActive() bool { return e.stage != DAHDSRIdle }

// Stage returns the current lifecycle stage.
func (e *DAHDSR) Stage() DAHDSRStage { return e.stage }

// Value returns the envelope's last generated sample without advancing it,
// used by voice stealing to compare voices by current loudness.
func (e *DAHDSR) Value() float64 { return e.value }

// ApplyInaccuracy scales attack/decay/release by a per-voice factor,
// mimicking the slight timing drift real analog envelope generators show
// between otherwise identical voices. Voices pass a factor drawn
// uniformly from [0.1, 1.0] (mean 0.55, stdev about 0.26); the draw is
// flat, not concentrated around the mean.
func (e *DAHDSR) ApplyInaccuracy(factor float64) {
	if factor <= 0 {
		return
	}
	e.attack *= factor
	e.decay *= factor
	e.release *= factor
}

func (e *DAHDSR) enterStage(stage DAHDSRStage) {
	e.stage = stage
	e.stageElapsed = 0

	switch stage {
	case DAHDSRDelay:
		if e.delay <= 0 {
			e.enterStage(DAHDSRAttack)
			return
		}
		e.stageSamples = durationSamples(e.delay, e.sampleRate)
		e.stageStartValue, e.stageTarget = 0, 0
	case DAHDSRAttack:
		if e.attack <= 0 {
			e.value = 1.0
			e.enterStage(DAHDSRHold)
			return
		}
		e.stageSamples = durationSamples(e.attack, e.sampleRate)
		e.stageStartValue = e.value
		e.stageTarget = 1.0
	case DAHDSRHold:
		e.value = 1.0
		if e.hold <= 0 {
			e.enterStage(DAHDSRDecay)
			return
		}
		e.stageSamples = durationSamples(e.hold, e.sampleRate)
		e.stageStartValue, e.stageTarget = 1.0, 1.0
	case DAHDSRDecay:
		if e.decay <= 0 {
			e.value = e.sustainLevel
			e.enterStage(DAHDSRSustain)
			return
		}
		e.stageSamples = durationSamples(e.decay, e.sampleRate)
		e.stageStartValue = e.value
		e.stageTarget = e.sustainLevel
	case DAHDSRSustain:
		e.stageSamples = 0
		e.value = e.sustainLevel
	case DAHDSRRelease:
		if e.release <= 0 {
			e.value = 0
			e.enterStage(DAHDSRIdle)
			return
		}
		e.stageSamples = durationSamples(e.release, e.sampleRate)
		e.stageStartValue = e.value
		e.stageTarget = 0.0
	case DAHDSRIdle:
		e.value = 0
		e.stageSamples = 0
	}
}

func (e *DAHDSR) currentShape() Shape {
	switch e.stage {
	case DAHDSRAttack:
		return e.attackShape
	case DAHDSRDecay:
		return e.decayShape
	case DAHDSRRelease:
		return e.releaseShape
	default:
		return ShapeLinear
	}
}

// Next generates the next envelope sample, advancing state and moving to
// the next stage when the current one completes.
func (e *DAHDSR) Next() float32 {
	switch e.stage {
	case DAHDSRIdle:
		return 0
	case DAHDSRSustain:
		e.value = e.sustainLevel
		return float32(e.value)
	case DAHDSRDelay:
		e.value = 0
	case DAHDSRHold:
		e.value = 1.0
	default: // Attack, Decay, Release
		ratio := float64(e.stageElapsed+1) / float64(e.stageSamples)
		if ratio > 1 {
			ratio = 1
		}
		eased := shapeFn(e.currentShape(), ratio)
		e.value = e.stageStartValue + (e.stageTarget-e.stageStartValue)*eased
	}

	e.stageElapsed++
	if e.stageElapsed >= e.stageSamples {
		e.advanceToNextStage()
	}

	return float32(e.value)
}

func (e *DAHDSR) advanceToNextStage() {
	switch e.stage {
	case DAHDSRDelay:
		e.enterStage(DAHDSRAttack)
	case DAHDSRAttack:
		e.enterStage(DAHDSRHold)
	case DAHDSRHold:
		e.enterStage(DAHDSRDecay)
	case DAHDSRDecay:
		e.enterStage(DAHDSRSustain)
	case DAHDSRRelease:
		e.enterStage(DAHDSRIdle)
	}
}

// Process fills buffer with envelope values - no allocations.
func (e *DAHDSR) Process(buffer []float32) {
	for i := range buffer {
		buffer[i] = e.Next()
	}
}

// ProcessMultiply multiplies buffer by envelope values - no allocations.
func (e *DAHDSR) ProcessMultiply(buffer []float32) {
	for i := range buffer {
		buffer[i] *= e.Next()
	}
}

// Ratio implements param.ValueSource, letting a DAHDSR drive a Param
// directly as its highest-precedence modulation source.
func (e *DAHDSR) Ratio(round signal.Round, sampleIndex int) float64 {
	return float64(e.Next())
}
