package metrum

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_SingleTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected Token
	}{
		{".", Dot},
		{"=", Equal},
		{"|", Barline},
		{"w", NewRatio(1, 1)},
		{"h", NewRatio(1, 2)},
		{"q", NewRatio(1, 4)},
		{"e", NewRatio(1, 8)},
		{"s", NewRatio(1, 16)},
		{"t", NewRatio(1, 32)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := Scan(tt.input)
			require.NoError(t, err)
			require.Len(t, tokens, 1)
			assert.Equal(t, tt.expected, tokens[0])
		})
	}
}

func TestScan_Sequences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{"number", "123", []Token{NewNumber(123)}},
		{"spaced numbers", "1 2 3", []Token{NewNumber(1), NewNumber(2), NewNumber(3)}},
		{"ratio", "1/2", []Token{NewRatio(1, 2)}},
		{"two ratios", "1/2 1/2", []Token{NewRatio(1, 2), NewRatio(1, 2)}},
		{"note repeat", "x2", []Token{NewNoteRepeat(2)}},
		{"note repeats", "x2 x5", []Token{NewNoteRepeat(2), NewNoteRepeat(5)}},
		{"bar repeat", "%2", []Token{NewBarRepeat(2)}},
		{"mixed repeats", "x2 %5", []Token{NewNoteRepeat(2), NewBarRepeat(5)}},
		{"line breaks and tabs", "|\tq\r\nq|\n", []Token{Barline, NewRatio(1, 4), NewRatio(1, 4), Barline}},
		{
			name:  "tempo directive",
			input: "q.=80 | qx4 |%2",
			expected: []Token{
				NewRatio(1, 4), Dot, Equal, NewNumber(80),
				Barline, NewRatio(1, 4), NewNoteRepeat(4), Barline, NewBarRepeat(2),
			},
		},
		{"max u16", "65535", []Token{NewNumber(65535)}},
		{"empty", "", []Token{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Scan(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tokens)
		})
	}
}

func TestScan_InvalidScores(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenError
	}{
		{"i", TokenError{Code: InvalidCharacter, Char: 'i'}},
		{"ul", TokenError{Code: InvalidCharacter, Char: 'u'}},
		{"q ♩", TokenError{Code: InvalidCharacter, Char: '♩'}},
		{"/", TokenError{Code: LeadingSlash}},
		{"/8", TokenError{Code: LeadingSlash}},
		{"1/2/4", TokenError{Code: LeadingSlash}},
		{"1 /2", TokenError{Code: LeadingSlash}},
		{"1/ 2", TokenError{Code: IncompleteRatio}},
		{"3/", TokenError{Code: IncompleteRatio}},
		{"x 1", TokenError{Code: MissingRepetition, Char: 'x'}},
		{"qx", TokenError{Code: MissingRepetition, Char: 'x'}},
		{"% 1", TokenError{Code: MissingRepetition, Char: '%'}},
		{"|q|%1", TokenError{Code: NotEnoughRepeats}},
		{"qx1", TokenError{Code: NotEnoughRepeats}},
		{"qx0", TokenError{Code: NotEnoughRepeats}},
		{"0", TokenError{Code: Zero}},
		{"0/4", TokenError{Code: Zero}},
		{"1/0", TokenError{Code: Zero}},
		{"q=00", TokenError{Code: Zero}},
		{"65536", TokenError{Code: NumberTooLarge}},
		{"qx70000", TokenError{Code: NumberTooLarge}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := Scan(tt.input)
			require.Error(t, err)
			assert.Nil(t, tokens)

			var merr *MetrumError
			require.True(t, errors.As(err, &merr))
			assert.Equal(t, KindToken, merr.Kind())
			assert.Equal(t, tt.expected.Code.String(), merr.Code())
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestScan_FirstErrorWins(t *testing.T) {
	_, err := Scan("q / i")
	assert.ErrorIs(t, err, TokenError{Code: LeadingSlash})
	assert.NotErrorIs(t, err, TokenError{Code: InvalidCharacter})
}

func TestTokenError_IsMatchesAnyCharacter(t *testing.T) {
	_, err := Scan("qz")
	assert.ErrorIs(t, err, TokenError{Code: InvalidCharacter})
	assert.ErrorIs(t, err, TokenError{Code: InvalidCharacter, Char: 'z'})
	assert.NotErrorIs(t, err, TokenError{Code: InvalidCharacter, Char: 'y'})
	assert.Equal(t, "Invalid character 'z'", err.Error())
}

func TestToken_String(t *testing.T) {
	tokens := []Token{Barline, NewRatio(3, 8), Dot, Equal, NewNumber(90), NewNoteRepeat(3), NewBarRepeat(2)}
	var got []string
	for _, tok := range tokens {
		got = append(got, tok.String())
	}
	assert.Equal(t, []string{"|", "3/8", ".", "=", "90", "x3", "%2"}, got)
}
