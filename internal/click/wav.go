package click

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/Conceptual-Machines/metrome-api/internal/metrum"
)

const (
	wavHeaderSize = 44
	bitsPerSample = 16
	numChannels   = 1
)

// WriteWAV writes mono 16-bit PCM samples as a RIFF/WAVE stream
func WriteWAV(w io.Writer, samples []int16, sampleRate uint32) error {
	blockAlign := uint16(numChannels * bitsPerSample / 8)
	dataLen := uint32(len(samples)) * uint32(blockAlign)

	var header [wavHeaderSize]byte
	copy(header[0:], "RIFF")
	binary.LittleEndian.PutUint32(header[4:], 36+dataLen)
	copy(header[8:], "WAVE")
	copy(header[12:], "fmt ")
	binary.LittleEndian.PutUint32(header[16:], 16)
	binary.LittleEndian.PutUint16(header[20:], 1)
	binary.LittleEndian.PutUint16(header[22:], numChannels)
	binary.LittleEndian.PutUint32(header[24:], sampleRate)
	binary.LittleEndian.PutUint32(header[28:], sampleRate*uint32(blockAlign))
	binary.LittleEndian.PutUint16(header[32:], blockAlign)
	binary.LittleEndian.PutUint16(header[34:], bitsPerSample)
	copy(header[36:], "data")
	binary.LittleEndian.PutUint32(header[40:], dataLen)

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, samples); err != nil {
		return fmt.Errorf("write wav data: %w", err)
	}
	return nil
}

// Render turns a score into WAV bytes using profile
func Render(score *metrum.Score, profile Profile) ([]byte, error) {
	m, err := NewMetronome(profile)
	if err != nil {
		return nil, err
	}
	samples := m.Buffer(score.Beats())

	var buf bytes.Buffer
	buf.Grow(wavHeaderSize + 2*len(samples))
	if err := WriteWAV(&buf, samples, m.SampleRate); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteClickTrack renders score and writes it to path
func WriteClickTrack(score *metrum.Score, profile Profile, path string) (int, error) {
	data, err := Render(score, profile)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("write click track: %w", err)
	}
	return len(data), nil
}
