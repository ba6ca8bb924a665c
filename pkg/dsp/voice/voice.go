// Package voice ties an oscillator, its filters and (for the carrier) a
// wavefolder to a note lifecycle, and allocates/steals voices across a
// fixed-size pool the way a polyphonic synth's front end does.
package voice

import (
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/distortion"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/envelope"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/filter"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/oscillator"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/param"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/signal"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/wavetable"
)

// Stage is the filter_1 -> oscillator -> filter_2 tree shared by the
// modulator and the carrier (spec "Voice (Modulator/Carrier)" §4.9).
// FilterIn conditions the incoming modulation signal (the modulator's
// output feeding the carrier's FM/AM input) before it reaches the
// oscillator; FilterOut is the stage's own subtractive filter.
type Stage struct {
	FilterIn  *filter.Filter
	Osc       *oscillator.Oscillator
	FilterOut *filter.Filter
	AmpEnv    *envelope.DAHDSR

	FMLevel *param.Param // Hz per unit of incoming modulation signal
	AMLevel *param.Param // 0-1, ring-mod depth of the incoming signal

	sampleRate float64
	baseFreq   float64

	modBuf    []float32
	envBuf    []float32
	filteredMod []float32
}

func newStage(sampleRate float64, shape wavetable.Shape) *Stage {
	return &Stage{
		FilterIn:  filter.NewFilter(sampleRate, 1),
		Osc:       oscillator.New(sampleRate, shape, 8.0),
		FilterOut: filter.NewFilter(sampleRate, 1),
		AmpEnv:    envelope.New(sampleRate),
		FMLevel:   param.New("fm", 0.0, 2000.0, 0.0, param.ScaleLinear, false),
		AMLevel:   param.New("am", 0.0, 1.0, 0.0, param.ScaleLinear, false),
		sampleRate: sampleRate,
	}
}

func (s *Stage) ensureBuffers(n int) {
	if cap(s.modBuf) < n {
		s.modBuf = make([]float32, n)
		s.filteredMod = make([]float32, n)
	}
	s.modBuf = s.modBuf[:n]
	s.filteredMod = s.filteredMod[:n]
	if cap(s.envBuf) < n {
		s.envBuf = make([]float32, n)
	}
	s.envBuf = s.envBuf[:n]
}

// render produces this stage's output for one block. modulationIn is the
// upstream stage's audio (nil for the modulator, the modulator's output for
// the carrier); it is filtered by FilterIn, then applied as FM (frequency
// offset, block-rate) and AM (amplitude scaling) to this stage's own
// oscillator before FilterOut and the amplitude envelope are applied.
func (s *Stage) render(round signal.Round, sampleCount int, modulationIn []float32) []float32 {
	s.ensureBuffers(sampleCount)

	fmHz := 0.0
	amDepth := 0.0

	if modulationIn != nil {
		copy(s.modBuf, modulationIn[:sampleCount])
		s.FilterIn.UpdateCoefficients(round)
		s.FilterIn.Process([][]float32{s.modBuf})

		var sum float32
		for _, v := range s.modBuf {
			sum += v
		}
		avgMod := float64(sum) / float64(sampleCount)

		fmHz = avgMod * s.FMLevel.BlockValue(round)
		amDepth = s.AMLevel.BlockValue(round)
	}

	baseFreq := s.Osc.Frequency.BlockValue(round)
	if fmHz != 0 {
		s.Osc.Frequency.SetPlain(baseFreq + fmHz)
	}

	oscBuf := s.Osc.Produce(round, sampleCount)
	out := oscBuf[0][:sampleCount]

	if fmHz != 0 {
		s.Osc.Frequency.SetPlain(baseFreq)
	}

	s.FilterOut.UpdateCoefficients(round)
	s.FilterOut.Process([][]float32{out})

	if amDepth > 0 && modulationIn != nil {
		for i := 0; i < sampleCount; i++ {
			out[i] *= 1.0 + float32(amDepth)*s.modBuf[i]
		}
	}

	s.AmpEnv.Process(s.envBuf)
	for i := 0; i < sampleCount; i++ {
		out[i] *= s.envBuf[i]
	}

	return out
}

// Carrier is a Stage plus the post-filter distortion/wavefolder the spec
// reserves for the carrier only.
type Carrier struct {
	Stage
	Wavefolder *distortion.Wavefolder
	DriveLevel *param.Param // 0-1, dry/wet of the wavefolder stage
}

func newCarrier(sampleRate float64, shape wavetable.Shape) *Carrier {
	return &Carrier{
		Stage:      *newStage(sampleRate, shape),
		Wavefolder: distortion.NewWavefolder(),
		DriveLevel: param.New("drive", 0.0, 1.0, 0.0, param.ScaleLinear, false),
	}
}

func (c *Carrier) render(round signal.Round, sampleCount int, modulationIn []float32) []float32 {
	out := c.Stage.render(round, sampleCount, modulationIn)
	drive := c.DriveLevel.BlockValue(round)
	if drive > 0 {
		for i := 0; i < sampleCount; i++ {
			folded := float32(c.Wavefolder.Process(float64(out[i])))
			out[i] = out[i]*float32(1-drive) + folded*float32(drive)
		}
	}
	return out
}

// State carries a voice's note-identity bookkeeping: spec §4.9's
// {note_id, channel, note, velocity, is_on, is_released, start_time,
// inaccuracy_seed, cached_note_frequency}.
type State struct {
	NoteID               uint64
	Channel              uint8
	Note                 uint8
	Velocity             uint8
	IsOn                 bool
	IsReleased           bool
	StartTime            int64
	InaccuracySeed       uint64
	CachedNoteFrequency  float64
}

// Voice is one polyphonic slot: a modulator stage feeding a carrier stage's
// FM/AM inputs, both gated by their own DAHDSR envelope.
type Voice struct {
	Modulator Stage
	Carrier   Carrier
	State     State

	sampleRate           float64
	modulatorAddVolume   *param.Param
	tuning               NoteTuning
}

// New creates a Voice at sampleRate using shape for both the modulator and
// the carrier oscillator.
func New(sampleRate float64, shape wavetable.Shape, tuning NoteTuning) *Voice {
	return &Voice{
		Modulator:          *newStage(sampleRate, shape),
		Carrier:            *newCarrier(sampleRate, shape),
		sampleRate:         sampleRate,
		modulatorAddVolume: param.New("mod_add", 0.0, 1.0, 0.0, param.ScaleLinear, false),
		tuning:             tuning,
	}
}

func (v *Voice) resolveFrequency(channel, note uint8) float64 {
	if v.tuning != nil {
		return v.tuning.Frequency(channel, note)
	}
	return 440.0
}

// NoteOn activates the voice for a new note (spec §4.9 note_on). The
// oscillators always start at note's own frequency: previousNote is
// accepted but not used, so NoteOn never starts a glide from the previous
// note. Any glide comes only from later GlideTo calls by the allocator.
func (v *Voice) NoteOn(t int64, noteID uint64, note, channel, velocity uint8, previousNote uint8, syncInaccuracy bool) {
	freq := v.resolveFrequency(channel, note)

	v.State = State{
		NoteID:              noteID,
		Channel:             channel,
		Note:                note,
		Velocity:            velocity,
		IsOn:                true,
		IsReleased:          false,
		StartTime:           t,
		CachedNoteFrequency: freq,
	}

	seed := splitmix64(noteID ^ uint64(note)<<8 ^ uint64(channel)<<16 ^ uint64(t))
	v.State.InaccuracySeed = seed

	modSeed := seed
	carSeed := seed
	if !syncInaccuracy {
		carSeed = splitmix64(seed)
	}

	v.Modulator.AmpEnv.ApplyInaccuracy(drawInaccuracy(&modSeed))
	v.Carrier.AmpEnv.ApplyInaccuracy(drawInaccuracy(&carSeed))

	v.Modulator.Osc.Frequency.SetPlain(freq)
	v.Carrier.Osc.Frequency.SetPlain(freq)
	v.Modulator.Osc.Reset()
	v.Carrier.Osc.Reset()

	v.Modulator.AmpEnv.Trigger()
	v.Carrier.AmpEnv.Trigger()
}

// Retrigger re-starts the envelopes for a new note on an already-sounding
// voice, keeping the oscillator phase running (spec §4.9 retrigger).
func (v *Voice) Retrigger(t int64, noteID uint64, note, channel, velocity uint8) {
	freq := v.resolveFrequency(channel, note)

	v.State.NoteID = noteID
	v.State.Note = note
	v.State.Channel = channel
	v.State.Velocity = velocity
	v.State.IsOn = true
	v.State.IsReleased = false
	v.State.StartTime = t
	v.State.CachedNoteFrequency = freq

	v.Modulator.Osc.Frequency.SetPlain(freq)
	v.Carrier.Osc.Frequency.SetPlain(freq)

	v.Modulator.AmpEnv.Trigger()
	v.Carrier.AmpEnv.Trigger()
}

// GlideTo changes the voice's target note without retriggering envelopes
// (spec §4.9 glide_to), used by mono/legato portamento.
func (v *Voice) GlideTo(note, channel uint8, durationSamples int) {
	freq := v.resolveFrequency(channel, note)
	v.State.Note = note
	v.State.Channel = channel
	v.State.CachedNoteFrequency = freq

	v.Modulator.Osc.Frequency.ScheduleRamp(v.Modulator.Osc.Frequency.Ratio(), 0) // no-op placeholder for a zero ramp
	targetRatio := frequencyRatio(v.Modulator.Osc.Frequency, freq)
	v.Modulator.Osc.Frequency.ScheduleRamp(targetRatio, durationSamples)
	v.Carrier.Osc.Frequency.ScheduleRamp(frequencyRatio(v.Carrier.Osc.Frequency, freq), durationSamples)
}

func frequencyRatio(p *param.Param, plain float64) float64 {
	saved := p.Plain()
	p.SetPlain(plain)
	r := p.Ratio()
	p.SetPlain(saved)
	return r
}

// NoteOff transitions the voice's envelopes to RELEASE (spec §4.9
// note_off).
func (v *Voice) NoteOff(t int64, noteID uint64, note uint8, velocity uint8) {
	v.State.IsReleased = true
	v.Modulator.AmpEnv.Release()
	v.Carrier.AmpEnv.Release()
}

// CancelNoteSmoothly hard-stops the voice via a short release fade rather
// than waiting out its normal release stage (spec §4.9
// cancel_note_smoothly), used when a voice must be reclaimed immediately.
func (v *Voice) CancelNoteSmoothly(t int64) {
	v.Modulator.AmpEnv.SetRelease(0.005)
	v.Carrier.AmpEnv.SetRelease(0.005)
	v.Modulator.AmpEnv.Release()
	v.Carrier.AmpEnv.Release()
	v.State.IsReleased = true
}

// HasDecayedBeforeNoteOff reports whether both envelopes have fully settled
// to idle, the condition the voice GC uses to reclaim a slot (spec §4.9
// has_decayed_before_note_off).
func (v *Voice) HasDecayedBeforeNoteOff() bool {
	return !v.Modulator.AmpEnv.IsActive() && !v.Carrier.AmpEnv.IsActive()
}

// IsActive reports whether the voice is currently producing sound.
func (v *Voice) IsActive() bool {
	return v.State.IsOn && !v.HasDecayedBeforeNoteOff()
}

// Stop immediately silences the voice and frees it for reuse.
func (v *Voice) Stop() {
	v.Modulator.AmpEnv.Reset()
	v.Carrier.AmpEnv.Reset()
	v.State.IsOn = false
}

// Render produces this block's modulator and carrier output buffers. The
// caller (the bus) is responsible for scaling the modulator output by
// modulator_add_volume and summing both into the mix (spec §4.10).
func (v *Voice) Render(round signal.Round, sampleCount int) (modOut, carOut []float32) {
	modOut = v.Modulator.render(round, sampleCount, nil)
	carOut = v.Carrier.render(round, sampleCount, modOut)
	return modOut, carOut
}

// ModulatorAddVolume is the level at which the modulator's own signal is
// additionally summed into the bus alongside the carrier (spec §4.10).
func (v *Voice) ModulatorAddVolume() *param.Param { return v.modulatorAddVolume }

// Age returns how long, in samples at v's sample rate, this voice has been
// sounding since its last NoteOn/Retrigger, used by the oldest-voice
// stealing strategy.
func (v *Voice) Age(now int64) int64 {
	if now < v.State.StartTime {
		return 0
	}
	return now - v.State.StartTime
}

// Amplitude reports the carrier envelope's last generated value, used by
// the quietest-voice stealing strategy.
func (v *Voice) Amplitude() float64 { return v.Carrier.AmpEnv.Value() }

// Note, Channel and Velocity expose the voice's current note identity.
func (v *Voice) Note() uint8     { return v.State.Note }
func (v *Voice) Channel() uint8  { return v.State.Channel }
func (v *Voice) Velocity() uint8 { return v.State.Velocity }
func (v *Voice) NoteID() uint64  { return v.State.NoteID }

func drawInaccuracy(seed *uint64) float64 {
	*seed = splitmix64(*seed)
	u := float64(*seed>>11) / float64(1<<53)
	return 0.1 + 0.9*u
}

func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	z := x
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}
