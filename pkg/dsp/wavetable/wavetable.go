// Package wavetable builds band-limited wavetable banks: one cycle per
// octave, each holding only the harmonics that stay below Nyquist for that
// octave's frequency range, so an Oscillator can play any classic shape
// without aliasing.
package wavetable

import (
	"math"

	"github.com/attilammagyar/js80p-sub000/pkg/dsp/interpolation"
)

const tableSize = 2048

// Shape is a classic analog waveform to synthesize additively.
type Shape int

const (
	ShapeSine Shape = iota
	ShapeSaw
	ShapeSquare
	ShapeTriangle
)

// Interpolation selects how a Table is read at a fractional phase.
type Interpolation int

const (
	InterpolationLinear Interpolation = iota
	InterpolationCubic
)

// Table is one band-limited wavetable cycle, stored with a repeated guard
// sample at the end so linear interpolation's i+1 read never goes out of
// bounds; cubic interpolation wraps its indices instead.
type Table struct {
	samples     []float32
	maxHarmonic int
}

// At reads the table at a fractional phase in [0, 1) using the given
// interpolation method.
func (t *Table) At(phase float64, method Interpolation) float32 {
	n := len(t.samples) - 1
	pos := phase * float64(n)
	i := int(pos)
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	frac := float32(pos - float64(i))

	if method == InterpolationLinear {
		return interpolation.Linear(t.samples[i], t.samples[i+1], frac)
	}

	get := func(idx int) float32 {
		idx = ((idx % n) + n) % n
		return t.samples[idx]
	}
	return interpolation.Cubic(get(i-1), get(i), get(i+1), get(i+2), frac)
}

func buildTable(shape Shape, maxHarmonic int) *Table {
	if maxHarmonic < 1 {
		maxHarmonic = 1
	}
	samples := make([]float32, tableSize+1)
	for i := 0; i < tableSize; i++ {
		phase := float64(i) / float64(tableSize)
		var sum float64
		switch shape {
		case ShapeSine:
			sum = math.Sin(2 * math.Pi * phase)
		case ShapeSaw:
			for h := 1; h <= maxHarmonic; h++ {
				sum += math.Sin(2*math.Pi*float64(h)*phase) / float64(h)
			}
			sum *= 2 / math.Pi
		case ShapeSquare:
			for h := 1; h <= maxHarmonic; h += 2 {
				sum += math.Sin(2*math.Pi*float64(h)*phase) / float64(h)
			}
			sum *= 4 / math.Pi
		case ShapeTriangle:
			sign := 1.0
			for h := 1; h <= maxHarmonic; h += 2 {
				sum += sign * math.Sin(2*math.Pi*float64(h)*phase) / float64(h*h)
				sign = -sign
			}
			sum *= 8 / (math.Pi * math.Pi)
		}
		samples[i] = float32(sum)
	}
	samples[tableSize] = samples[0]
	return &Table{samples: samples, maxHarmonic: maxHarmonic}
}

// Bank holds one Table per octave, covering [baseFreq*2^i, baseFreq*2^(i+1))
// each, built so the highest octave's table still holds at least its
// fundamental below Nyquist.
type Bank struct {
	shape    Shape
	tables   []*Table
	baseFreq float64
}

// NewBank builds a full octave ladder of tables for shape, from baseFreq up
// to the sample rate's Nyquist frequency.
func NewBank(shape Shape, sampleRate, baseFreq float64) *Bank {
	if baseFreq <= 0 {
		baseFreq = 20.0
	}
	nyquist := sampleRate / 2
	b := &Bank{shape: shape, baseFreq: baseFreq}

	f := baseFreq
	for f < nyquist {
		maxHarmonic := int(nyquist / (2 * f))
		b.tables = append(b.tables, buildTable(shape, maxHarmonic))
		f *= 2
	}
	if len(b.tables) == 0 {
		b.tables = append(b.tables, buildTable(shape, 1))
	}
	return b
}

// TableAndBlend returns the table whose octave contains freq, the next
// table up, and a blend weight in [0, 1) for crossfading smoothly into it
// as freq approaches the octave boundary. This is the dual-table design
// that avoids an audible timbre jump when a glide or LFO sweeps a note
// across an octave edge.
func (b *Bank) TableAndBlend(freq float64) (low, high *Table, blend float32) {
	if freq < b.baseFreq {
		freq = b.baseFreq
	}
	octave := math.Log2(freq / b.baseFreq)
	idx := int(octave)
	if idx >= len(b.tables)-1 {
		last := b.tables[len(b.tables)-1]
		return last, last, 0
	}
	if idx < 0 {
		idx = 0
	}
	frac := octave - float64(idx)
	return b.tables[idx], b.tables[idx+1], float32(frac)
}
