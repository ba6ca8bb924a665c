//go:build !debug

package debug

func voiceAllocated(voiceIndex int, channel, note uint8, noteID uint64) {}

func voiceStolen(voiceIndex int, fromChannel, fromNote uint8) {}

func gcSwept(reclaimed int) {}

func midiLearned(controllerID uint32, paramName string) {}

func configureRenderProfiler(sampleRate float64, blockSize int) {}

func renderTiming(name string, fn func()) { fn() }

func renderStats() string { return "profiling disabled (build without -tags debug)" }

func checkOutput(left, right []float32) {}
