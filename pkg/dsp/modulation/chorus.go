package modulation

import (
	"math"

	"github.com/attilammagyar/js80p-sub000/pkg/dsp/delay"
)

// Chorus is the effects chain's multi-voice chorus stage (spec §4's
// `distortion->chorus->echo` stage order): each voice reads its own
// delay.Line at an LFO-modulated tap time and the voices are panned across
// the stereo field, the classic "thickening" chorus topology.
type Chorus struct {
	sampleRate float64

	rate     float64
	depth    float64
	delay    float64
	mix      float64
	feedback float64
	spread   float64
	voices   int

	linesL []*delay.Line
	linesR []*delay.Line
	lfos   []*LFO

	feedbackL float32
	feedbackR float32
}

// NewChorus builds a 2-voice chorus at its default rate/depth/delay.
func NewChorus(sampleRate float64) *Chorus {
	c := &Chorus{
		sampleRate: sampleRate,
		rate:       0.5,
		depth:      2.0,
		delay:      20.0,
		mix:        0.5,
		feedback:   0.0,
		spread:     1.0,
	}
	c.SetVoices(2)
	return c
}

func (c *Chorus) SetRate(hz float64) {
	c.rate = math.Max(0.01, math.Min(10.0, hz))
	for _, lfo := range c.lfos {
		lfo.SetFrequency(c.rate)
	}
}

func (c *Chorus) SetDepth(ms float64) { c.depth = math.Max(0.0, math.Min(10.0, ms)) }

func (c *Chorus) SetDelay(ms float64) {
	c.delay = math.Max(1.0, math.Min(50.0, ms))
	c.rebuildLines()
}

func (c *Chorus) SetMix(mix float64) { c.mix = math.Max(0.0, math.Min(1.0, mix)) }

func (c *Chorus) SetFeedback(feedback float64) { c.feedback = math.Max(0.0, math.Min(0.5, feedback)) }

func (c *Chorus) SetSpread(spread float64) { c.spread = math.Max(0.0, math.Min(1.0, spread)) }

// SetVoices rebuilds the LFO/delay-line pairs, clamped to 1-4 voices, each
// LFO phase-offset by its position in the voice count so the voices don't
// all sweep in lockstep.
func (c *Chorus) SetVoices(voices int) {
	c.voices = max(1, min(4, voices))

	c.lfos = make([]*LFO, c.voices)
	for i := 0; i < c.voices; i++ {
		c.lfos[i] = NewLFO(c.sampleRate)
		c.lfos[i].SetFrequency(c.rate)
		c.lfos[i].SetWaveform(WaveformSine)
		c.lfos[i].SetPhase(float64(i) / float64(c.voices))
	}

	c.rebuildLines()
}

func (c *Chorus) rebuildLines() {
	maxDelaySeconds := (c.delay + c.depth) * 1.2 / 1000.0

	c.linesL = make([]*delay.Line, c.voices)
	c.linesR = make([]*delay.Line, c.voices)
	for i := 0; i < c.voices; i++ {
		c.linesL[i] = delay.New(maxDelaySeconds, c.sampleRate)
		c.linesR[i] = delay.New(maxDelaySeconds, c.sampleRate)
	}

	c.feedbackL = 0
	c.feedbackR = 0
}

// ProcessStereo runs one stereo sample pair through every voice and sums
// their panned output into the wet mix.
func (c *Chorus) ProcessStereo(inputL, inputR float32) (outputL, outputR float32) {
	outputL = inputL * float32(1.0-c.mix)
	outputR = inputR * float32(1.0-c.mix)

	delayInputL := inputL + c.feedbackL*float32(c.feedback)
	delayInputR := inputR + c.feedbackR*float32(c.feedback)

	var wetL, wetR float32
	for v := 0; v < c.voices; v++ {
		lfo := c.lfos[v].Process()
		delayMs := c.delay + c.depth*lfo
		delaySamples := math.Max(1.0, delayMs*c.sampleRate/1000.0)

		sampleL := c.linesL[v].Process(delayInputL, delaySamples)
		sampleR := c.linesR[v].Process(delayInputR, delaySamples)

		if c.voices > 1 {
			pan := (float64(v)/float64(c.voices-1) - 0.5) * c.spread
			panAngle := (pan + 0.5) * math.Pi / 2
			panL := float32(math.Cos(panAngle))
			panR := float32(math.Sin(panAngle))
			wetL += sampleL * panL / float32(c.voices)
			wetR += sampleR * panR / float32(c.voices)
		} else {
			wetL += sampleL
			wetR += sampleR
		}
	}

	c.feedbackL = wetL
	c.feedbackR = wetR

	outputL += wetL * float32(c.mix)
	outputR += wetR * float32(c.mix)

	return outputL, outputR
}

// Reset clears every voice's delay line, LFO phase and feedback state.
func (c *Chorus) Reset() {
	for _, line := range c.linesL {
		line.Reset()
	}
	for _, line := range c.linesR {
		line.Reset()
	}
	for _, lfo := range c.lfos {
		lfo.Reset()
	}
	c.feedbackL = 0
	c.feedbackR = 0
}
