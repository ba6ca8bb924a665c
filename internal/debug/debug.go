// Package debug carries the render path's diagnostic logging. Log calls
// compile to a no-op (see log_nodebug.go) unless built with -tags debug,
// so the audio thread never allocates or writes in a release build.
package debug

// VoiceAllocated logs a voice being claimed for a note.
func VoiceAllocated(voiceIndex int, channel, note uint8, noteID uint64) {
	voiceAllocated(voiceIndex, channel, note, noteID)
}

// VoiceStolen logs a voice being reclaimed mid-note.
func VoiceStolen(voiceIndex int, fromChannel, fromNote uint8) {
	voiceStolen(voiceIndex, fromChannel, fromNote)
}

// GCSwept logs a garbage-collection sweep reclaiming finished voices.
func GCSwept(reclaimed int) {
	gcSwept(reclaimed)
}

// MidiLearned logs a MIDI-learn binding being captured.
func MidiLearned(controllerID uint32, paramName string) {
	midiLearned(controllerID, paramName)
}

// ConfigureRenderProfiler sizes the render-path profiler to a sample rate
// and block size, called from Synth.SetBlockSize.
func ConfigureRenderProfiler(sampleRate float64, blockSize int) {
	configureRenderProfiler(sampleRate, blockSize)
}

// RenderTiming measures fn's execution time under name. In a release
// build it just calls fn().
func RenderTiming(name string, fn func()) {
	renderTiming(name, fn)
}

// RenderStats reports the render path's profiled CPU load, or a message
// explaining why none is available.
func RenderStats() string {
	return renderStats()
}

// CheckOutput runs clipping/NaN/DC-offset sanity checks on a rendered
// stereo block and logs anything suspicious. A release build is a no-op.
func CheckOutput(left, right []float32) {
	checkOutput(left, right)
}
