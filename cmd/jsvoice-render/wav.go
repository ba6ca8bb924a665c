package main

import (
	"encoding/binary"
	"io"
)

// writeWAV emits a canonical 16-bit PCM stereo RIFF/WAVE stream: a "RIFF"
// container holding a "fmt " chunk (PCM, 2 channels, sampleRate) and a
// "data" chunk of interleaved left/right samples.
func writeWAV(w io.Writer, sampleRate int, left, right []float32) error {
	const (
		bitsPerSample = 16
		numChannels   = 2
	)

	frameCount := len(left)
	if len(right) < frameCount {
		frameCount = len(right)
	}

	dataSize := frameCount * numChannels * (bitsPerSample / 8)
	byteRate := sampleRate * numChannels * (bitsPerSample / 8)
	blockAlign := numChannels * (bitsPerSample / 8)

	if _, err := io.WriteString(w, "RIFF"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(36+dataSize)); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "WAVE"); err != nil {
		return err
	}

	if _, err := io.WriteString(w, "fmt "); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(16)); err != nil {
		return err
	}
	fields := []interface{}{
		uint16(1), // PCM
		uint16(numChannels),
		uint32(sampleRate),
		uint32(byteRate),
		uint16(blockAlign),
		uint16(bitsPerSample),
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(w, "data"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(dataSize)); err != nil {
		return err
	}

	for i := 0; i < frameCount; i++ {
		if err := binary.Write(w, binary.LittleEndian, floatToPCM16(left[i])); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, floatToPCM16(right[i])); err != nil {
			return err
		}
	}

	return nil
}

func floatToPCM16(v float32) int16 {
	const scale = 32767.0
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	return int16(v * scale)
}
