// Package effects implements the shared effects chain every voice's mixed
// output passes through before reaching the output buffer: a fixed-order
// filter -> filter -> volume -> overdrive -> distortion -> chorus -> echo
// -> reverb -> volume chain (spec §4.11), with most stages compressed by a
// side-chain whose detector is the stage's own wet output, not its input.
package effects

import (
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/debug"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/delay"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/distortion"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/dynamics"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/filter"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/gain"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/modulation"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/param"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/reverb"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/signal"
)

// SideChain applies gain reduction to a wet signal derived from that same
// wet signal's own peak; the stage's input (its pre-effect signal) is not
// used as the detector. Every chain stage embeds one. Gain publishes the compressor's
// last-applied linear gain so a meter or another param can read it.
type SideChain struct {
	compressor *dynamics.Compressor
	Gain       *param.Param // 0-1, last applied linear gain (for metering)
}

func newSideChain(sampleRate float64) *SideChain {
	c := dynamics.NewCompressor(sampleRate)
	c.SetThreshold(-18.0)
	c.SetRatio(3.0)
	c.SetAttack(0.003)
	c.SetRelease(0.120)
	return &SideChain{
		compressor: c,
		Gain:       param.New("gain", 0.0, 1.0, 1.0, param.ScaleLinear, false),
	}
}

// Duck compresses wet in place, using wet itself (the effect's output, not
// the signal that entered the effect) as the detector signal, and
// publishes the resulting gain.
func (s *SideChain) Duck(wet []float32) {
	s.compressor.ProcessBuffer(wet, wet)
	s.Gain.SetPlain(gain.DbToLinear(-s.compressor.GetGainReduction()))
}

// ReverbTuning selects one of ten room-size/damping/width presets a
// Freeverb-style reverb can be configured with (spec §4.11's "reverb
// selects one of ten tunings").
type ReverbTuning int

const (
	ReverbSmallRoom ReverbTuning = iota
	ReverbMediumHall
	ReverbLargeHall
	ReverbCathedral
	ReverbPlate
	ReverbChamber
	ReverbAmbience
	ReverbVocalHall
	ReverbDrumRoom
	ReverbInfinite
)

type reverbParams struct{ roomSize, damping, width float64 }

var reverbTunings = map[ReverbTuning]reverbParams{
	ReverbSmallRoom:  {0.3, 0.75, 0.5},
	ReverbMediumHall: {0.6, 0.5, 0.75},
	ReverbLargeHall:  {0.85, 0.3, 1.0},
	ReverbCathedral:  {0.95, 0.1, 1.0},
	ReverbPlate:      {0.5, 0.85, 0.3},
	ReverbChamber:    {0.45, 0.6, 0.6},
	ReverbAmbience:   {0.15, 0.9, 0.4},
	ReverbVocalHall:  {0.7, 0.45, 0.85},
	ReverbDrumRoom:   {0.25, 0.7, 0.2},
	ReverbInfinite:   {1.0, 0.02, 1.0},
}

// Echo is a stereo feedback delay with a shared high-shelf damping filter
// in the feedback path, keeping repeats from brightening indefinitely.
type Echo struct {
	lineL, lineR *delay.Line
	Damping      *filter.Filter

	Time     *param.Param // seconds
	Feedback *param.Param // 0-1
	Wet      *param.Param
	Dry      *param.Param

	sampleRate float64
	fbL, fbR   float32
}

func newEcho(sampleRate float64) *Echo {
	damping := filter.NewFilter(sampleRate, 2)
	damping.Type = filter.TypeHighShelf
	damping.Frequency.SetPlain(4000)
	damping.GainDB.SetPlain(-9)

	return &Echo{
		lineL:      delay.New(2.0, sampleRate),
		lineR:      delay.New(2.0, sampleRate),
		Damping:    damping,
		Time:       param.New("echo_time", 0.01, 2.0, 0.35, param.ScaleLog, false),
		Feedback:   param.New("echo_feedback", 0.0, 0.95, 0.35, param.ScaleLinear, false),
		Wet:        param.New("echo_wet", 0.0, 1.0, 0.0, param.ScaleLinear, false),
		Dry:        param.New("echo_dry", 0.0, 1.0, 1.0, param.ScaleLinear, false),
		sampleRate: sampleRate,
	}
}

func (e *Echo) render(round signal.Round, left, right []float32) {
	e.Damping.UpdateCoefficients(round)

	delaySamples := e.Time.BlockValue(round) * e.sampleRate
	feedback := float32(e.Feedback.BlockValue(round))
	wet := float32(e.Wet.BlockValue(round))
	dry := float32(e.Dry.BlockValue(round))

	damped := [][]float32{{e.fbL}, {e.fbR}}

	for i := range left {
		inL, inR := left[i], right[i]

		damped[0][0] = e.fbL
		damped[1][0] = e.fbR
		e.Damping.Process(damped)

		tapL := e.lineL.Process(inL+damped[0][0]*feedback, delaySamples)
		tapR := e.lineR.Process(inR+damped[1][0]*feedback, delaySamples)

		e.fbL, e.fbR = tapL, tapR

		left[i] = inL*dry + tapL*wet
		right[i] = inR*dry + tapR*wet
	}
}

// Chain is the effects chain applied to the synth's final stereo mix:
// filter_1 -> filter_2 -> volume_1 -> overdrive -> distortion -> chorus ->
// echo -> reverb -> volume_3 (spec §4.11's fixed processing order).
type Chain struct {
	Filter1, Filter2 *filter.Filter
	Volume1, Volume3 *param.Param

	Overdrive     *distortion.Distortion
	OverdriveSide *SideChain
	OverdriveWet  *param.Param

	Distortion     *distortion.Distortion
	DistortionSide *SideChain
	DistortionWet  *param.Param

	Chorus     *modulation.Chorus
	ChorusSide *SideChain
	ChorusWet  *param.Param

	Echo *Echo

	Reverb     *reverb.Freeverb
	ReverbSide *SideChain
	ReverbWet  *param.Param
	ReverbDry  *param.Param
	ReverbTune ReverbTuning

	sampleRate float64

	wetL, wetR []float32
}

// New builds the effects chain at sampleRate.
func New(sampleRate float64) *Chain {
	c := &Chain{
		Filter1:        filter.NewFilter(sampleRate, 2),
		Filter2:        filter.NewFilter(sampleRate, 2),
		Volume1:        param.New("volume_1", 0.0, 2.0, 1.0, param.ScaleLinear, false),
		Volume3:        param.New("volume_3", 0.0, 2.0, 1.0, param.ScaleLinear, false),
		Overdrive:      distortion.NewDistortion(distortion.TypeTanh),
		OverdriveSide:  newSideChain(sampleRate),
		OverdriveWet:   param.New("overdrive_wet", 0.0, 1.0, 0.0, param.ScaleLinear, false),
		Distortion:     distortion.NewDistortion(distortion.TypeHarmonic),
		DistortionSide: newSideChain(sampleRate),
		DistortionWet:  param.New("distortion_wet", 0.0, 1.0, 0.0, param.ScaleLinear, false),
		Chorus:         modulation.NewChorus(sampleRate),
		ChorusSide:     newSideChain(sampleRate),
		ChorusWet:      param.New("chorus_wet", 0.0, 1.0, 0.0, param.ScaleLinear, false),
		Echo:           newEcho(sampleRate),
		Reverb:         reverb.NewFreeverb(sampleRate),
		ReverbSide:     newSideChain(sampleRate),
		ReverbWet:      param.New("reverb_wet", 0.0, 1.0, 0.0, param.ScaleLinear, false),
		ReverbDry:      param.New("reverb_dry", 0.0, 1.0, 1.0, param.ScaleLinear, false),
		ReverbTune:     ReverbMediumHall,
		sampleRate:     sampleRate,
	}
	c.Filter1.Type = filter.TypeNone
	c.Filter2.Type = filter.TypeNone
	c.Overdrive.SetDrive(2.5)
	c.applyReverbTuning()
	return c
}

// SetReverbTuning selects one of the ten fixed reverb presets.
func (c *Chain) SetReverbTuning(t ReverbTuning) {
	c.ReverbTune = t
	c.applyReverbTuning()
}

func (c *Chain) applyReverbTuning() {
	p, ok := reverbTunings[c.ReverbTune]
	if !ok {
		p = reverbTunings[ReverbMediumHall]
	}
	c.Reverb.SetRoomSize(p.roomSize)
	c.Reverb.SetDamping(p.damping)
	c.Reverb.SetWidth(p.width)
	c.Reverb.SetWetLevel(1.0)
	c.Reverb.SetDryLevel(0.0)
}

func (c *Chain) ensureBuffers(n int) {
	if cap(c.wetL) < n {
		c.wetL = make([]float32, n)
		c.wetR = make([]float32, n)
	}
	c.wetL = c.wetL[:n]
	c.wetR = c.wetR[:n]

	debug.CheckAllocation(c.wetL, "effects.wetL")
	debug.CheckAllocation(c.wetR, "effects.wetR")
}

// Render runs left/right in place through the fixed chain for one block.
func (c *Chain) Render(round signal.Round, left, right []float32) {
	c.ensureBuffers(len(left))

	c.Filter1.UpdateCoefficients(round)
	c.Filter1.Process([][]float32{left, right})
	c.Filter2.UpdateCoefficients(round)
	c.Filter2.Process([][]float32{left, right})

	volume1 := float32(c.Volume1.BlockValue(round))
	for i := range left {
		left[i] *= volume1
		right[i] *= volume1
	}

	c.renderOverdrive(round, left, right)
	c.renderDistortion(round, left, right)
	c.renderChorus(round, left, right)
	c.Echo.render(round, left, right)
	c.renderReverb(round, left, right)

	volume3 := float32(c.Volume3.BlockValue(round))
	for i := range left {
		left[i] *= volume3
		right[i] *= volume3
	}
}

func (c *Chain) renderOverdrive(round signal.Round, left, right []float32) {
	wet := float32(c.OverdriveWet.BlockValue(round))
	if wet <= 0 {
		return
	}
	for i := range left {
		c.wetL[i] = float32(c.Overdrive.Process(float64(left[i])))
		c.wetR[i] = float32(c.Overdrive.Process(float64(right[i])))
	}
	c.OverdriveSide.Duck(c.wetL[:len(left)])
	c.OverdriveSide.Duck(c.wetR[:len(right)])
	for i := range left {
		left[i] = left[i]*(1-wet) + c.wetL[i]*wet
		right[i] = right[i]*(1-wet) + c.wetR[i]*wet
	}
}

func (c *Chain) renderDistortion(round signal.Round, left, right []float32) {
	wet := float32(c.DistortionWet.BlockValue(round))
	if wet <= 0 {
		return
	}
	for i := range left {
		c.wetL[i] = float32(c.Distortion.Process(float64(left[i])))
		c.wetR[i] = float32(c.Distortion.Process(float64(right[i])))
	}
	c.DistortionSide.Duck(c.wetL[:len(left)])
	c.DistortionSide.Duck(c.wetR[:len(right)])
	for i := range left {
		left[i] = left[i]*(1-wet) + c.wetL[i]*wet
		right[i] = right[i]*(1-wet) + c.wetR[i]*wet
	}
}

func (c *Chain) renderChorus(round signal.Round, left, right []float32) {
	wet := float32(c.ChorusWet.BlockValue(round))
	if wet <= 0 {
		return
	}
	for i := range left {
		c.wetL[i], c.wetR[i] = c.Chorus.ProcessStereo(left[i], right[i])
	}
	c.ChorusSide.Duck(c.wetL[:len(left)])
	c.ChorusSide.Duck(c.wetR[:len(right)])
	for i := range left {
		left[i] = left[i]*(1-wet) + c.wetL[i]*wet
		right[i] = right[i]*(1-wet) + c.wetR[i]*wet
	}
}

func (c *Chain) renderReverb(round signal.Round, left, right []float32) {
	wet := float32(c.ReverbWet.BlockValue(round))
	dry := float32(c.ReverbDry.BlockValue(round))
	if wet <= 0 {
		return
	}
	for i := range left {
		c.wetL[i], c.wetR[i] = c.Reverb.ProcessStereo(left[i], right[i])
	}
	c.ReverbSide.Duck(c.wetL[:len(left)])
	c.ReverbSide.Duck(c.wetR[:len(right)])
	for i := range left {
		left[i] = left[i]*dry + c.wetL[i]*wet
		right[i] = right[i]*dry + c.wetR[i]*wet
	}
}
