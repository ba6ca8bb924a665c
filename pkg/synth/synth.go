// Package synth is the top-level orchestrator: it owns every param, voice,
// LFO, macro and the effects chain, drains control messages at the top of
// each block, dispatches MIDI, and clips the final stereo output (spec
// §4.12).
package synth

import (
	"fmt"
	"sync/atomic"

	"github.com/attilammagyar/js80p-sub000/internal/debug"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/bus"
	dspdebug "github.com/attilammagyar/js80p-sub000/pkg/dsp/debug"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/effects"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/gain"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/modulation"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/param"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/signal"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/voice"
	"github.com/attilammagyar/js80p-sub000/pkg/dsp/wavetable"
	"github.com/attilammagyar/js80p-sub000/pkg/midi"
)

const (
	numMacros        = midi.NumMacros
	numLFOs          = midi.NumLFOs
	samplesBetweenGC = 4096
)

// clipLimit is the final hard-clamp spec §4.12 applies to protect a host
// from runaway filter resonance or misconfigured distortion.
const clipLimit = 2.8

// Synth is the engine's single top-level object: a fixed voice pool behind
// an allocator, a summing bus, the shared effects chain, a param registry,
// and the control-message/MIDI plumbing that feeds them.
type Synth struct {
	sampleRate float64
	blockSize  int
	bpm        float64

	voices    []*voice.Voice
	allocator *voice.Allocator
	bus       *bus.Mixer
	effects   *effects.Chain
	tuning    *voice.TableTuning

	registry    *ParamRegistry
	queue       *MessageQueue
	macros      [numMacros]*modulation.Macro
	lfos        [numLFOs]*modulation.LFO
	ccSources   map[uint8]*ccAdapter
	learnQueue  []learnBinding

	midiEvents *midi.EventQueue

	samplesSinceGC int
	currentSample  int64

	dirty uint32 // atomic bool: set by the control thread, read/cleared by the host

	left, right []float32
}

// New creates a Synth with numVoices polyphony at sampleRate, all params at
// their defaults and no effects engaged.
func New(sampleRate float64, numVoices int) *Synth {
	tuning := voice.NewTableTuning(voice.NewStandardTuning(440.0))

	voices := make([]*voice.Voice, numVoices)
	for i := range voices {
		voices[i] = voice.New(sampleRate, wavetable.ShapeSaw, tuning)
	}

	s := &Synth{
		sampleRate: sampleRate,
		bpm:        120.0,
		voices:     voices,
		allocator:  voice.NewAllocator(voices),
		bus:        bus.New(voices, sampleRate),
		effects:    effects.New(sampleRate),
		tuning:     tuning,
		registry:   NewParamRegistry(),
		queue:      NewMessageQueue(),
		ccSources:  make(map[uint8]*ccAdapter),
		midiEvents: midi.NewEventQueue(),
	}

	for i := range s.macros {
		s.macros[i] = modulation.NewMacro(fmt.Sprintf("MC%02d", i+1), 0.5)
	}
	for i := range s.lfos {
		s.lfos[i] = modulation.NewLFO(sampleRate)
	}

	s.registerParams()
	return s
}

// SetSampleRate propagates a new sample rate to every voice and the
// effects chain idempotently (spec §6's set_sample_rate contract). Voices
// are rebuilt since their oscillators/filters are constructed around a
// fixed sample rate; currently sounding notes are dropped, matching a host
// resetting the engine on a rate change.
func (s *Synth) SetSampleRate(sampleRate float64) {
	if sampleRate == s.sampleRate || sampleRate <= 0 {
		return
	}
	s.sampleRate = sampleRate
	for i, v := range s.voices {
		_ = v
		s.voices[i] = voice.New(sampleRate, wavetable.ShapeSaw, s.tuning)
	}
	s.allocator = voice.NewAllocator(s.voices)
	s.bus = bus.New(s.voices, sampleRate)
	s.effects = effects.New(sampleRate)
	for i := range s.lfos {
		s.lfos[i] = modulation.NewLFO(sampleRate)
	}
	s.registry = NewParamRegistry()
	s.registerParams()
}

// SetBlockSize records the host's block size. GenerateSamples does not
// read it: each call renders the sample count it is given. It
// also resizes the debug-build render profiler's expected-duration basis,
// so a CPU-load report stays meaningful across a host block-size change.
func (s *Synth) SetBlockSize(n int) {
	s.blockSize = n
	debug.ConfigureRenderProfiler(s.sampleRate, n)
}

// RenderStats reports the render path's profiled CPU load in a debug
// build, or an explanatory message in a release build.
func (s *Synth) RenderStats() string { return debug.RenderStats() }

// SetBPM records a new tempo (non-positive values are ignored). No child
// of the Synth is tempo-synced, so the value is only stored and reported
// back through BPM.
func (s *Synth) SetBPM(bpm float64) {
	if bpm <= 0 {
		return
	}
	s.bpm = bpm
}

// BPM returns the last tempo set via SetBPM.
func (s *Synth) BPM() float64 { return s.bpm }

// PushMessage enqueues a control-thread message for the audio thread to
// apply at the top of its next block. It reports false if the queue was
// full, in which case the message is dropped and the dirty flag is left
// untouched (spec §7).
func (s *Synth) PushMessage(m ControlMessage) bool {
	return s.queue.Push(m)
}

// IsDirty reports whether any control message has been applied since the
// last ClearDirtyFlag call.
func (s *Synth) IsDirty() bool { return atomic.LoadUint32(&s.dirty) != 0 }

// ClearDirtyFlag resets the dirty flag.
func (s *Synth) ClearDirtyFlag() { atomic.StoreUint32(&s.dirty, 0) }

func (s *Synth) markDirty() { atomic.StoreUint32(&s.dirty, 1) }

// Registry exposes the param registry for host introspection (name/ID
// lookup, display formatting).
func (s *Synth) Registry() *ParamRegistry { return s.registry }

// ScheduleMidiEvent queues e for dispatch during the block containing its
// sample offset (spec §4.12 "events scheduled ahead of the block").
func (s *Synth) ScheduleMidiEvent(e midi.Event) { s.midiEvents.Add(e) }

// CollectActiveNotes reports every (channel, note) pair currently sounding,
// for a tuning collaborator that needs to keep per-note frequencies fresh
// (spec §6 collect_active_notes).
func (s *Synth) CollectActiveNotes() []struct{ Channel, Note uint8 } {
	return s.bus.ActiveNotes()
}

// UpdateNoteTuning overrides the frequency used for (channel, note)'s next
// trigger. Values <= 0 are rejected (spec §6).
func (s *Synth) UpdateNoteTuning(channel, note uint8, freq float64) error {
	if freq <= 0 {
		return fmt.Errorf("update note tuning: frequency must be positive, got %v", freq)
	}
	s.tuning.SetFrequency(channel, note, freq)
	return nil
}

// GenerateSamples is the audio-thread entry point: it drains pending
// control messages, dispatches MIDI events scheduled within this block,
// renders sampleCount frames through the voice pool, the bus and the
// effects chain, and returns the clipped stereo result. The returned
// slices are owned by the Synth and only valid until the next call.
func (s *Synth) GenerateSamples(round signal.Round, sampleCount int) (left, right []float32) {
	if s.sampleRate <= 0 || sampleCount <= 0 {
		return nil, nil
	}

	s.drainMessages()
	s.dispatchMidi(sampleCount)

	debug.RenderTiming("ProcessAudio", func() {
		mono := s.bus.Render(round, sampleCount)

		s.ensureBuffers(sampleCount)
		copy(s.left, mono)
		copy(s.right, mono)

		s.effects.Render(round, s.left, s.right)
	})

	gain.HardClipBuffer(s.left[:sampleCount], clipLimit)
	gain.HardClipBuffer(s.right[:sampleCount], clipLimit)

	debug.CheckOutput(s.left[:sampleCount], s.right[:sampleCount])

	s.currentSample += int64(sampleCount)
	s.samplesSinceGC += sampleCount
	if s.samplesSinceGC >= samplesBetweenGC {
		s.samplesSinceGC = 0
		before := s.allocator.ActiveVoiceCount()
		s.allocator.CollectGarbage()
		after := s.allocator.ActiveVoiceCount()
		if before != after {
			debug.GCSwept(before - after)
		}
	}

	return s.left, s.right
}

func (s *Synth) ensureBuffers(n int) {
	if cap(s.left) < n {
		s.left = make([]float32, n)
		s.right = make([]float32, n)
	}
	s.left = s.left[:n]
	s.right = s.right[:n]

	dspdebug.CheckAllocation(s.left, "synth.left")
	dspdebug.CheckAllocation(s.right, "synth.right")
}

func (s *Synth) drainMessages() {
	for _, m := range s.queue.Drain() {
		s.applyMessage(m)
	}
}

func (s *Synth) applyMessage(m ControlMessage) {
	switch m.Type {
	case SetParam:
		p := s.registry.ByName(m.ParamName)
		if p == nil {
			return
		}
		ratio := m.Number
		if ratio < 0 {
			ratio = 0
		} else if ratio > 1 {
			ratio = 1
		}
		p.SetRatio(ratio)
		s.markDirty()
	case AssignController:
		p := s.registry.ByName(m.ParamName)
		if p == nil {
			return
		}
		s.assignController(p, m.Controller)
		s.markDirty()
	case RefreshParam:
		if s.registry.ByName(m.ParamName) != nil {
			s.markDirty()
		}
	case Clear:
		s.allocator.Reset()
		s.markDirty()
	case ClearDirtyFlag:
		s.ClearDirtyFlag()
	}
}

// assignController binds p to one of the modulation sources named by id,
// or detaches every source when id.Kind is ControllerNone (spec §4.12
// ASSIGN_CONTROLLER).
func (s *Synth) assignController(p *param.Param, id ControllerID) {
	unbindAll(p)

	switch id.Kind {
	case ControllerNone:
		return
	case ControllerCC:
		src := s.ccSourceFor(uint8(id.Index))
		p.BindMidiController(src)
	case ControllerPitchWheel:
		p.BindMidiController(s.ccSourceFor(pitchWheelCC))
	case ControllerChannelPressure:
		p.BindMidiController(s.ccSourceFor(channelPressureCC))
	case ControllerMacro:
		if id.Index >= 0 && id.Index < numMacros {
			p.BindMacro(s.macros[id.Index])
		}
	case ControllerLFO:
		if id.Index >= 0 && id.Index < numLFOs {
			p.BindLFO(s.lfos[id.Index])
		}
	case ControllerEnvelope:
		if src := s.envelopeSourceFor(id.Index); src != nil {
			p.BindEnvelope(src)
		}
	case ControllerComputedPeak:
		p.BindMidiController(&peakAdapter{read: s.peakReaderFor(id.Index)})
	case ControllerMidiLearn:
		s.learnQueue = append(s.learnQueue, learnBinding{paramName: p.Name})
	}
}

// envelopeSourceFor exposes one of the voice pool's envelopes as a
// modulation source, the "envelope 1..12" synthetic controller space. Only
// the first voice's modulator/carrier amplitude envelopes are wired
// (indices 0 and 1); the remaining synthetic indices are reserved but
// unbound, matching spec §7's "unknown param id -> ignored" for the ones
// this module's two-envelope-per-voice architecture has no backing source
// for yet.
func (s *Synth) envelopeSourceFor(index int) param.ValueSource {
	if len(s.voices) == 0 {
		return nil
	}
	switch index {
	case 0:
		return s.voices[0].Modulator.AmpEnv
	case 1:
		return s.voices[0].Carrier.AmpEnv
	default:
		return nil
	}
}

// peakReaderFor resolves which bus peak a ControllerComputedPeak index
// reads: 0 is the modulator bus, 1 is the carrier bus.
func (s *Synth) peakReaderFor(index int) func() float64 {
	switch index {
	case 1:
		return s.bus.CarrierPeak
	default:
		return s.bus.ModulatorPeak
	}
}

func (s *Synth) ccSourceFor(cc uint8) *ccAdapter {
	src, ok := s.ccSources[cc]
	if !ok {
		src = &ccAdapter{value: 0.5}
		s.ccSources[cc] = src
	}
	return src
}
