package metrum

import (
	"fmt"
	"math"
)

const msPerMinute = 60.0 * 1000.0

// Tempo says how many Beat note values are played per minute, e.g. 140
// quarter notes per minute.
type Tempo struct {
	Beat     NoteValue
	NumBeats uint16
}

// DefaultTempo is the tempo in effect before any tempo directive: 1/4=120
var DefaultTempo = NewTempo(1, 4, 120)

func NewTempo(num, den, numBeats uint16) Tempo {
	return Tempo{Beat: NoteValue{Num: num, Den: den}, NumBeats: numBeats}
}

func (t Tempo) String() string {
	return fmt.Sprintf("%s=%d", t.Beat, t.NumBeats)
}

// WholesPerMin calculates how many whole notes fit in a minute
func (t Tempo) WholesPerMin() float32 {
	return t.Beat.Float() * float32(t.NumBeats)
}

// DurationOfWhole is the length of a whole note in milliseconds
func (t Tempo) DurationOfWhole() float32 {
	return msPerMinute / t.WholesPerMin()
}

// RelativeTo derives the tempo of a metric modulation such as "q=h": ratio1
// keeps the rate it had under t, and ratio2 becomes the counted beat. Both
// tokens are expected to be dot-applied ratios. The derived beats per minute
// are truncated toward zero. A rate below one beat per minute fails with
// ZeroTempo and one above 65535 fails with RatioOverflow; neither is
// clamped, so "w=65535 1/32=q" is rejected.
func (t Tempo) RelativeTo(ratio1, ratio2 Token) (Tempo, error) {
	if ratio1.Kind != KindRatio || ratio2.Kind != KindRatio {
		return Tempo{}, newError(NonRatio)
	}
	rate := t.WholesPerMin() / ratio1.Value.Float()
	if rate < 1 {
		return Tempo{}, newError(ZeroTempo)
	}
	if rate > math.MaxUint16 {
		return Tempo{}, newError(RatioOverflow)
	}
	return Tempo{Beat: ratio2.Value, NumBeats: uint16(rate)}, nil
}

// DotMultiplier is the factor applied to a note value carrying numDots dots
func DotMultiplier(numDots int) float32 {
	multiplier := float32(1.0)
	for i := 0; i < numDots; i++ {
		multiplier += 0.5 / (float32(i) + 1.0)
	}
	return multiplier
}

// DurationMs converts a ratio to milliseconds under tempo. Any other token
// fails with NonRatioToDuration.
func (t Token) DurationMs(tempo Tempo, numDots int) (float32, error) {
	if t.Kind != KindRatio {
		return 0, newError(NonRatioToDuration)
	}
	duration := tempo.DurationOfWhole() * t.Value.Float()
	return duration * DotMultiplier(numDots), nil
}

// ApplyDots returns the exact ratio of a dotted note value, e.g. 1/4 with one
// dot is 3/8.
func (t Token) ApplyDots(numDots int) (Token, error) {
	if t.Kind != KindRatio {
		return Token{}, newError(NonRatio)
	}
	top := uint64(t.Value.Num)
	newTop := top
	bottom := uint64(t.Value.Den)
	divisor := uint64(2)
	for i := 0; i < numDots; i++ {
		if top%divisor != 0 {
			newTop *= 2
			top *= 2
			bottom *= 2
		}
		newTop += top / divisor
		divisor *= 2
		if newTop > math.MaxUint16 || bottom > math.MaxUint16 {
			return Token{}, newError(RatioOverflow)
		}
	}
	return NewRatio(uint16(newTop), uint16(bottom)), nil
}

// MsToSamples returns the number of samples covering durationMs at sampleRate.
// The result saturates at 0 and math.MaxUint32.
func MsToSamples(durationMs float32, sampleRate uint32) uint32 {
	samples := durationMs / 1000.0 * float32(sampleRate)
	switch {
	case !(samples > 0):
		return 0
	case samples >= float32(math.MaxUint32):
		return math.MaxUint32
	}
	return uint32(samples)
}
