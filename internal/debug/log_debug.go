//go:build debug

package debug

import (
	"os"

	"github.com/attilammagyar/js80p-sub000/pkg/framework/debug"
)

var logger = debug.New(os.Stderr, "jsvoice", debug.DefaultFlags)

func init() {
	logger.SetLevel(debug.LogLevelDebug)
}

func voiceAllocated(voiceIndex int, channel, note uint8, noteID uint64) {
	logger.Debug("voice %d allocated: ch=%d note=%d id=%d", voiceIndex, channel, note, noteID)
}

func voiceStolen(voiceIndex int, fromChannel, fromNote uint8) {
	logger.Debug("voice %d stolen from ch=%d note=%d", voiceIndex, fromChannel, fromNote)
}

func gcSwept(reclaimed int) {
	logger.Debug("voice gc reclaimed %d voices", reclaimed)
}

func midiLearned(controllerID uint32, paramName string) {
	logger.Debug("midi-learn bound controller %d to %s", controllerID, paramName)
}

var renderProfiler *debug.AudioProcessProfiler

func configureRenderProfiler(sampleRate float64, blockSize int) {
	renderProfiler = debug.NewAudioProcessProfiler(sampleRate, blockSize)
}

func renderTiming(name string, fn func()) {
	if renderProfiler == nil {
		fn()
		return
	}
	renderProfiler.Time(name, fn)
	renderProfiler.UpdateCPULoad()
}

func renderStats() string {
	if renderProfiler == nil {
		return "render profiler not configured"
	}
	return renderProfiler.AudioReport()
}

func checkOutput(left, right []float32) {
	for _, issue := range debug.CheckBuffer(left, "left") {
		logger.Warn("%s", issue)
	}
	for _, issue := range debug.CheckBuffer(right, "right") {
		logger.Warn("%s", issue)
	}
}
