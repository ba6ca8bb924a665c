// Package delay provides the circular buffer behind the effects chain's
// echo stage (spec §4's `chorus->echo->reverb` stage order): a ring buffer
// written once per sample and read back at a variable, linearly
// interpolated offset so the tap time can be modulated without clicks.
package delay

// Line is a single-channel delay line with linear-interpolated fractional
// read offsets.
type Line struct {
	buffer     []float32
	writePos   int
	sampleRate float64
}

// New allocates a delay line long enough to hold maxDelaySeconds at
// sampleRate.
func New(maxDelaySeconds, sampleRate float64) *Line {
	bufferSize := int(maxDelaySeconds*sampleRate) + 1
	return &Line{
		buffer:     make([]float32, bufferSize),
		sampleRate: sampleRate,
	}
}

// Reset clears the delay buffer.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}

func (d *Line) write(sample float32) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read returns the sample delaySamples behind the current write position,
// linearly interpolated between the two nearest integer offsets.
func (d *Line) Read(delaySamples float64) float32 {
	bufLen := len(d.buffer)
	readPos := float64(d.writePos) - delaySamples
	if readPos < 0 {
		readPos += float64(bufLen)
	}

	readIdx := int(readPos)
	frac := float32(readPos - float64(readIdx))

	s1 := d.buffer[readIdx]
	s2 := d.buffer[(readIdx+1)%bufLen]
	return s1*(1.0-frac) + s2*frac
}

// Process writes input into the line and returns the tap delaySamples
// behind it, in one call - the shape the echo stage's per-sample feedback
// loop needs (it has to read the old tap before writing the new,
// feedback-carrying sample).
func (d *Line) Process(input float32, delaySamples float64) float32 {
	output := d.Read(delaySamples)
	d.write(input)
	return output
}
