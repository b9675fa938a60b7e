package click

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/Conceptual-Machines/metrome-api/internal/metrum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Profile)
		wantErr string
	}{
		{"default", func(_ *Profile) {}, ""},
		{"zero sample rate", func(p *Profile) { p.SampleRate = 0 }, "sample rate"},
		{"zero frequency", func(p *Profile) { p.Strong.FrequencyHz = 0 }, "strong click: frequency"},
		{"negative length", func(p *Profile) { p.Weak.LengthMs = -1 }, "weak click: length"},
		{"loud amplitude", func(p *Profile) { p.Weak.Amplitude = 1.5 }, "weak click: amplitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultProfile()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewMetronome_ClickLengths(t *testing.T) {
	m, err := NewMetronome(DefaultProfile())
	require.NoError(t, err)

	assert.InDelta(t, 1764, len(m.Strong), 1)
	assert.InDelta(t, 1323, len(m.Weak), 1)
	assert.Equal(t, int16(0), m.Strong[0], "sine burst starts at zero")
}

func TestMetronome_Buffer(t *testing.T) {
	m := &Metronome{
		SampleRate: 8,
		Strong:     []int16{9, 9},
		Weak:       []int16{1, 1},
	}
	beats := []metrum.Duration{{Ms: 500, Strong: true}, {Ms: 375}, {Ms: 250}}

	assert.Equal(t, []int16{9, 9, 0, 0, 1, 1, 0, 1, 1}, m.Buffer(beats))
}

func TestMetronome_BufferTruncatesLastClick(t *testing.T) {
	m := &Metronome{
		SampleRate: 8,
		Strong:     []int16{9, 9, 9, 9},
		Weak:       []int16{1, 1, 1, 1},
	}
	beats := []metrum.Duration{{Ms: 250, Strong: true}, {Ms: 125}}

	assert.Equal(t, []int16{9, 9, 1}, m.Buffer(beats))
}

func TestMetronome_BufferEmptyScore(t *testing.T) {
	m, err := NewMetronome(DefaultProfile())
	require.NoError(t, err)

	assert.Empty(t, m.Buffer(nil))
}

func TestWriteWAV_Header(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWAV(&buf, []int16{1, -1, 256}, 44100))

	data := buf.Bytes()
	require.Len(t, data, 44+6)
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, uint32(36+6), binary.LittleEndian.Uint32(data[4:]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, "fmt ", string(data[12:16]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[20:]), "PCM format")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[22:]), "mono")
	assert.Equal(t, uint32(44100), binary.LittleEndian.Uint32(data[24:]))
	assert.Equal(t, uint32(88200), binary.LittleEndian.Uint32(data[28:]))
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(data[34:]))
	assert.Equal(t, "data", string(data[36:40]))
	assert.Equal(t, uint32(6), binary.LittleEndian.Uint32(data[40:]))
	assert.Equal(t, []byte{0x01, 0x00, 0xff, 0xff, 0x00, 0x01}, data[44:])
}

func TestRender_SampleCountMatchesScoreLength(t *testing.T) {
	score, err := metrum.Parse("| qx4 |")
	require.NoError(t, err)

	data, err := Render(score, DefaultProfile())
	require.NoError(t, err)

	// 2000 ms at 44.1 kHz, two bytes per sample
	assert.Len(t, data, 44+88200*2)
}

func TestWriteClickTrack(t *testing.T) {
	score, err := metrum.Parse("| q |%2")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "click.wav")
	n, err := WriteClickTrack(score, DefaultProfile(), path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(n), info.Size())
	assert.Equal(t, 44+44100*2, n)
}
