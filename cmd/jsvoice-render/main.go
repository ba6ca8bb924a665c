// Command jsvoice-render renders a fixed MIDI-like script through a Synth
// and writes the result to a WAV file. It is a stand-in for the real
// MIDI/host front-end (out of scope per spec), just enough of one to give
// the orchestrator a runnable entry point.
package main

import (
	"fmt"
	"os"

	"github.com/attilammagyar/js80p-sub000/pkg/dsp/signal"
	"github.com/attilammagyar/js80p-sub000/pkg/midi"
	"github.com/attilammagyar/js80p-sub000/pkg/synth"
)

const (
	sampleRate = 44100.0
	blockSize  = 256
	numVoices  = 16
)

// scriptEvent schedules one MIDI event at an absolute sample offset
// (resolved against the running sample clock as the render loop advances).
type scriptEvent struct {
	atSample int64
	event    midi.Event
}

func main() {
	path := "jsvoice-render.wav"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	s := synth.New(sampleRate, numVoices)
	s.SetBlockSize(blockSize)

	script := buildArpeggioScript()

	const durationSeconds = 6.0
	totalFrames := int(durationSeconds * sampleRate)

	left := make([]float32, 0, totalFrames)
	right := make([]float32, 0, totalFrames)

	var rendered int64
	var round signal.Round = 1

	for rendered < int64(totalFrames) {
		n := blockSize
		if remaining := int64(totalFrames) - rendered; remaining < int64(n) {
			n = int(remaining)
		}

		for len(script) > 0 && script[0].atSample < rendered+int64(n) {
			offset := script[0].atSample - rendered
			if offset < 0 {
				offset = 0
			}
			s.ScheduleMidiEvent(offsetEvent(script[0].event, int32(offset)))
			script = script[1:]
		}

		l, r := s.GenerateSamples(round, n)
		left = append(left, l...)
		right = append(right, r...)

		rendered += int64(n)
		round++
	}

	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jsvoice-render: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := writeWAV(f, sampleRate, left, right); err != nil {
		fmt.Fprintf(os.Stderr, "jsvoice-render: write wav: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %v (%.1fs)\n", path, durationSeconds)
}

// offsetEvent rewrites e's sample offset for re-scheduling within the
// current block, since the script above tracks its events' offsets
// against the whole render rather than a single block.
func offsetEvent(e midi.Event, offset int32) midi.Event {
	switch ev := e.(type) {
	case midi.NoteOnEvent:
		ev.Offset = offset
		return ev
	case midi.NoteOffEvent:
		ev.Offset = offset
		return ev
	case midi.ControlChangeEvent:
		ev.Offset = offset
		return ev
	default:
		return e
	}
}

// buildArpeggioScript writes a simple ascending-descending C major
// arpeggio across the modulator/carrier voice pool, each note roughly a
// quarter note at 120bpm.
func buildArpeggioScript() []scriptEvent {
	const stepSamples = int64(sampleRate * 0.5)
	notes := []uint8{60, 64, 67, 72, 67, 64, 60}

	var script []scriptEvent
	for i, note := range notes {
		on := int64(i) * stepSamples
		off := on + stepSamples - int64(sampleRate*0.05)

		script = append(script, scriptEvent{
			atSample: on,
			event: midi.NoteOnEvent{
				BaseEvent:  midi.BaseEvent{EventChannel: 0, Offset: 0},
				NoteNumber: note,
				Velocity:   100,
			},
		})
		script = append(script, scriptEvent{
			atSample: off,
			event: midi.NoteOffEvent{
				BaseEvent:  midi.BaseEvent{EventChannel: 0, Offset: 0},
				NoteNumber: note,
				Velocity:   0,
			},
		})
	}

	return script
}
