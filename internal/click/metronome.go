package click

import (
	"fmt"
	"math"

	"github.com/Conceptual-Machines/metrome-api/internal/metrum"
)

const (
	DefaultSampleRate = 44100
	// decay time constants per click length; the tail ends near -40dB
	decayConstants = 4.6
)

// Click describes one synthesized metronome tick
type Click struct {
	FrequencyHz float64 `yaml:"frequency_hz" json:"frequency_hz"`
	LengthMs    float64 `yaml:"length_ms" json:"length_ms"`
	Amplitude   float64 `yaml:"amplitude" json:"amplitude"`
}

// Profile holds everything needed to render a click track
type Profile struct {
	SampleRate uint32 `yaml:"sample_rate" json:"sample_rate"`
	Strong     Click  `yaml:"strong" json:"strong"`
	Weak       Click  `yaml:"weak" json:"weak"`
}

// DefaultProfile is a high tick on the strong beat and a lower, quieter one
// on weak beats
func DefaultProfile() Profile {
	return Profile{
		SampleRate: DefaultSampleRate,
		Strong:     Click{FrequencyHz: 1760, LengthMs: 40, Amplitude: 0.9},
		Weak:       Click{FrequencyHz: 880, LengthMs: 30, Amplitude: 0.6},
	}
}

func (c Click) validate(name string) error {
	if c.FrequencyHz <= 0 {
		return fmt.Errorf("%s click: frequency must be positive", name)
	}
	if c.LengthMs <= 0 {
		return fmt.Errorf("%s click: length must be positive", name)
	}
	if c.Amplitude <= 0 || c.Amplitude > 1 {
		return fmt.Errorf("%s click: amplitude must be in (0, 1]", name)
	}
	return nil
}

// Validate rejects profiles that cannot be rendered
func (p Profile) Validate() error {
	if p.SampleRate == 0 {
		return fmt.Errorf("sample rate must be positive")
	}
	if err := p.Strong.validate("strong"); err != nil {
		return err
	}
	return p.Weak.validate("weak")
}

// Metronome holds the rendered strong and weak click samples
type Metronome struct {
	SampleRate uint32
	Strong     []int16
	Weak       []int16
}

// NewMetronome synthesizes both clicks as exponentially decaying sine bursts
func NewMetronome(p Profile) (*Metronome, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Metronome{
		SampleRate: p.SampleRate,
		Strong:     synthesize(p.Strong, p.SampleRate),
		Weak:       synthesize(p.Weak, p.SampleRate),
	}, nil
}

func synthesize(c Click, sampleRate uint32) []int16 {
	n := int(metrum.MsToSamples(float32(c.LengthMs), sampleRate))
	if n == 0 {
		n = 1
	}
	samples := make([]int16, n)
	rate := float64(sampleRate)
	for i := range samples {
		t := float64(i) / rate
		envelope := math.Exp(-decayConstants * float64(i) / float64(n))
		v := c.Amplitude * envelope * math.Sin(2*math.Pi*c.FrequencyHz*t)
		samples[i] = int16(v * math.MaxInt16)
	}
	return samples
}

// Buffer lays out one click per beat. Each click starts at the cumulative
// sample offset of the beats before it; clicks running past the end of the
// track are cut off.
func (m *Metronome) Buffer(beats []metrum.Duration) []int16 {
	var total float32
	for _, b := range beats {
		total += b.Ms
	}
	buf := make([]int16, metrum.MsToSamples(total, m.SampleRate))

	position := 0
	for _, b := range beats {
		sample := m.Weak
		if b.Strong {
			sample = m.Strong
		}
		if position < len(buf) {
			copy(buf[position:], sample)
		}
		position += int(metrum.MsToSamples(b.Ms, m.SampleRate))
	}
	return buf
}
