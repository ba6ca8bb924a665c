package debug

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Profiler accumulates timing statistics for named sections of the render
// path, keyed by section name (e.g. "ProcessAudio").
type Profiler struct {
	mu           sync.RWMutex
	measurements map[string]*Measurement
}

// Measurement holds timing statistics for a single profiled section.
type Measurement struct {
	name      string
	count     uint64
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	lastTime  time.Duration
}

// NewProfiler creates an empty profiler.
func NewProfiler() *Profiler {
	return &Profiler{measurements: make(map[string]*Measurement)}
}

// Start begins timing a named section and returns a function that stops
// the clock and records the elapsed time.
func (p *Profiler) Start(name string) func() {
	start := time.Now()
	return func() {
		p.record(name, time.Since(start))
	}
}

// Time measures fn's execution time under name.
func (p *Profiler) Time(name string, fn func()) {
	stop := p.Start(name)
	defer stop()
	fn()
}

func (p *Profiler) record(name string, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, exists := p.measurements[name]
	if !exists {
		m = &Measurement{name: name, minTime: elapsed, maxTime: elapsed}
		p.measurements[name] = m
	}

	m.count++
	m.totalTime += elapsed
	m.lastTime = elapsed
	if elapsed < m.minTime {
		m.minTime = elapsed
	}
	if elapsed > m.maxTime {
		m.maxTime = elapsed
	}
}

// GetMeasurement returns a copy of the named section's statistics.
func (p *Profiler) GetMeasurement(name string) (*Measurement, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	m, exists := p.measurements[name]
	if !exists {
		return nil, false
	}
	copy := *m
	return &copy, true
}

// Average returns the mean time for this measurement.
func (m *Measurement) Average() time.Duration {
	if m.count == 0 {
		return 0
	}
	return m.totalTime / time.Duration(m.count)
}

// AudioProcessProfiler tracks how much of each render block's wall-clock
// budget the render+effects stage actually consumes, so internal/debug can
// surface a CPU-load percentage through the "stats" REPL command.
type AudioProcessProfiler struct {
	*Profiler
	bufferSize     int
	sampleRate     float64
	cpuLoadPercent atomic.Uint64
}

// NewAudioProcessProfiler creates a profiler sized to sampleRate and
// bufferSize, the basis for UpdateCPULoad's expected-buffer-duration
// calculation.
func NewAudioProcessProfiler(sampleRate float64, bufferSize int) *AudioProcessProfiler {
	return &AudioProcessProfiler{
		Profiler:   NewProfiler(),
		sampleRate: sampleRate,
		bufferSize: bufferSize,
	}
}

// UpdateCPULoad recomputes the CPU load percentage from the "ProcessAudio"
// measurement recorded by Time, relative to how long one buffer's worth of
// audio takes to play back.
func (a *AudioProcessProfiler) UpdateCPULoad() {
	m, exists := a.GetMeasurement("ProcessAudio")
	if !exists || m.count == 0 {
		return
	}

	bufferDuration := time.Duration(float64(a.bufferSize) / a.sampleRate * float64(time.Second))
	cpuLoad := float64(m.Average()) / float64(bufferDuration) * 100.0
	a.cpuLoadPercent.Store(uint64(cpuLoad * 100))
}

// GetCPULoad returns the most recently computed CPU load percentage.
func (a *AudioProcessProfiler) GetCPULoad() float64 {
	return float64(a.cpuLoadPercent.Load()) / 100.0
}

// AudioReport renders the profiled render-path timing as a human-readable
// summary for the "stats" REPL command.
func (a *AudioProcessProfiler) AudioReport() string {
	m, exists := a.GetMeasurement("ProcessAudio")
	if !exists {
		return "no render timing recorded yet"
	}

	return fmt.Sprintf(
		"Render path:\n  Sample Rate:  %.0f Hz\n  Buffer Size:  %d samples\n  Count:        %d\n  Average:      %v\n  Min:          %v\n  Max:          %v\n  CPU Load:     %.2f%%\n",
		a.sampleRate, a.bufferSize, m.count, m.Average(), m.minTime, m.maxTime, a.GetCPULoad(),
	)
}
