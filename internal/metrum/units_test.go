package metrum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTempo_DurationOfWhole(t *testing.T) {
	tests := []struct {
		tempo    Tempo
		expected float32
	}{
		{NewTempo(1, 4, 120), 2000},
		{NewTempo(1, 1, 60), 1000},
		{NewTempo(1, 2, 60), 2000},
		{NewTempo(1, 4, 60), 4000},
		{NewTempo(1, 8, 60), 8000},
	}

	for _, tt := range tests {
		t.Run(tt.tempo.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.tempo.DurationOfWhole())
		})
	}
}

func TestTempo_RelativeTo(t *testing.T) {
	tests := []struct {
		name     string
		tempo    Tempo
		ratio1   Token
		ratio2   Token
		expected Tempo
	}{
		{"quarter to two quarters", NewTempo(1, 4, 120), NewRatio(1, 4), NewRatio(2, 4), NewTempo(2, 4, 120)},
		{"half tempo, quarter to dotted quarter", NewTempo(1, 2, 60), NewRatio(1, 4), NewRatio(3, 8), NewTempo(3, 8, 120)},
		{"quarter to half", NewTempo(1, 4, 120), NewRatio(1, 4), NewRatio(1, 2), NewTempo(1, 2, 120)},
		{"truncates toward zero", NewTempo(1, 4, 100), NewRatio(3, 8), NewRatio(1, 4), NewTempo(1, 4, 66)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.tempo.RelativeTo(tt.ratio1, tt.ratio2)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTempo_RelativeToRejectsNonRatios(t *testing.T) {
	_, err := DefaultTempo.RelativeTo(NewNumber(4), NewRatio(1, 4))
	assert.ErrorIs(t, err, NonRatio)

	_, err = DefaultTempo.RelativeTo(NewRatio(1, 4), Dot)
	assert.ErrorIs(t, err, NonRatio)
}

func TestTempo_RelativeToBelowOneBeat(t *testing.T) {
	_, err := NewTempo(1, 32, 1).RelativeTo(NewRatio(16, 1), NewRatio(1, 4))
	assert.ErrorIs(t, err, ZeroTempo)
}

func TestTempo_RelativeToAboveMaxBeats(t *testing.T) {
	// w=65535 then 1/32=q: the 1/32 note would run at 2097120 per minute
	_, err := NewTempo(1, 1, 65535).RelativeTo(NewRatio(1, 32), NewRatio(1, 4))
	assert.ErrorIs(t, err, RatioOverflow)

	_, err = Parse("w=65535 1/32=q q")
	assert.ErrorIs(t, err, RatioOverflow)
}

func TestToken_DurationMs(t *testing.T) {
	tests := []struct {
		tempo    Tempo
		ratio    Token
		numDots  int
		expected float32
	}{
		{NewTempo(1, 4, 120), NewRatio(1, 4), 0, 500},
		{NewTempo(1, 4, 120), NewRatio(1, 4), 1, 750},
		{NewTempo(1, 4, 60), NewRatio(1, 4), 0, 1000},
		{NewTempo(1, 4, 60), NewRatio(1, 4), 2, 1750},
		{NewTempo(1, 4, 240), NewRatio(1, 4), 0, 250},
		{NewTempo(1, 4, 120), NewRatio(5, 4), 0, 2500},
		{NewTempo(1, 4, 120), NewRatio(10, 8), 0, 2500},
	}

	for _, tt := range tests {
		t.Run(tt.tempo.String()+" "+tt.ratio.String(), func(t *testing.T) {
			got, err := tt.ratio.DurationMs(tt.tempo, tt.numDots)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-3)
		})
	}
}

func TestToken_DurationMsRejectsNonRatio(t *testing.T) {
	_, err := Barline.DurationMs(DefaultTempo, 0)
	assert.ErrorIs(t, err, NonRatioToDuration)
}

func TestDotMultiplier(t *testing.T) {
	assert.Equal(t, float32(1), DotMultiplier(0))
	assert.Equal(t, float32(1.5), DotMultiplier(1))
	assert.Equal(t, float32(1.75), DotMultiplier(2))
}

func TestToken_ApplyDots(t *testing.T) {
	tests := []struct {
		ratio    Token
		numDots  int
		expected Token
	}{
		{NewRatio(1, 4), 0, NewRatio(1, 4)},
		{NewRatio(1, 4), 1, NewRatio(3, 8)},
		{NewRatio(1, 4), 2, NewRatio(7, 16)},
		{NewRatio(3, 8), 1, NewRatio(9, 16)},
		{NewRatio(2, 4), 1, NewRatio(3, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.ratio.String(), func(t *testing.T) {
			got, err := tt.ratio.ApplyDots(tt.numDots)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestToken_ApplyDotsErrors(t *testing.T) {
	_, err := NewNumber(4).ApplyDots(1)
	assert.ErrorIs(t, err, NonRatio)

	_, err = NewRatio(1, 4).ApplyDots(20)
	assert.ErrorIs(t, err, RatioOverflow)
}

func TestMsToSamples(t *testing.T) {
	tests := []struct {
		ms         float32
		sampleRate uint32
		expected   uint32
	}{
		{1000, 44100, 44100},
		{500, 44100, 22050},
		{2000, 44100, 88200},
		{0.01, 44100, 0},
		{0, 44100, 0},
		{-5, 44100, 0},
		// 65535 whole notes at 1/1=1
		{65535 * 60000, 44100, math.MaxUint32},
		{1e12, 192000, math.MaxUint32},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, MsToSamples(tt.ms, tt.sampleRate))
	}
}
