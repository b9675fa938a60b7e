package metrum

import (
	"fmt"
	"math"
	"unicode"
)

// TokenKind is the variant of a Token
type TokenKind uint8

const (
	KindBarline TokenKind = iota + 1
	KindRatio
	KindNoteRepeat
	KindBarRepeat
	KindNumber
	KindEqual
	KindDot
)

// NoteValue is a fraction of a whole note, e.g. 1/4 for a quarter note
type NoteValue struct {
	Num uint16
	Den uint16
}

func (v NoteValue) Float() float32 {
	return float32(v.Num) / float32(v.Den)
}

func (v NoteValue) String() string {
	return fmt.Sprintf("%d/%d", v.Num, v.Den)
}

// Token is one notation symbol. Value is set for ratios, Count for note
// repeats, bar repeats and numbers.
type Token struct {
	Kind  TokenKind
	Value NoteValue
	Count uint16
}

var (
	Barline = Token{Kind: KindBarline}
	Equal   = Token{Kind: KindEqual}
	Dot     = Token{Kind: KindDot}
)

func NewRatio(num, den uint16) Token {
	return Token{Kind: KindRatio, Value: NoteValue{Num: num, Den: den}}
}

func NewNoteRepeat(n uint16) Token {
	return Token{Kind: KindNoteRepeat, Count: n}
}

func NewBarRepeat(n uint16) Token {
	return Token{Kind: KindBarRepeat, Count: n}
}

func NewNumber(n uint16) Token {
	return Token{Kind: KindNumber, Count: n}
}

func (t Token) String() string {
	switch t.Kind {
	case KindBarline:
		return "|"
	case KindRatio:
		return t.Value.String()
	case KindNoteRepeat:
		return fmt.Sprintf("x%d", t.Count)
	case KindBarRepeat:
		return fmt.Sprintf("%%%d", t.Count)
	case KindNumber:
		return fmt.Sprintf("%d", t.Count)
	case KindEqual:
		return "="
	case KindDot:
		return "."
	}
	return "?"
}

var noteLetters = map[rune]NoteValue{
	'w': {1, 1},
	'h': {1, 2},
	'q': {1, 4},
	'e': {1, 8},
	's': {1, 16},
	't': {1, 32},
}

type scanner struct {
	input []rune
	pos   int
}

func (s *scanner) peek() (rune, bool) {
	if s.pos >= len(s.input) {
		return 0, false
	}
	return s.input[s.pos], true
}

func (s *scanner) peekDigit() bool {
	r, ok := s.peek()
	return ok && r >= '0' && r <= '9'
}

// number reads a run of ASCII digits; ok is false when none were present
func (s *scanner) number() (n uint16, ok bool, err error) {
	var value uint32
	for s.peekDigit() {
		ok = true
		value = value*10 + uint32(s.input[s.pos]-'0')
		s.pos++
		if value > math.MaxUint16 {
			return 0, true, newError(TokenError{Code: NumberTooLarge})
		}
	}
	return uint16(value), ok, nil
}

func (s *scanner) repeat(marker rune) (uint16, error) {
	n, ok, err := s.number()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, newError(TokenError{Code: MissingRepetition, Char: marker})
	}
	if n <= 1 {
		return 0, newError(TokenError{Code: NotEnoughRepeats})
	}
	return n, nil
}

// numberOrRatio is entered with the cursor on the first digit
func (s *scanner) numberOrRatio() (Token, error) {
	top, _, err := s.number()
	if err != nil {
		return Token{}, err
	}
	if top == 0 {
		return Token{}, newError(TokenError{Code: Zero})
	}
	if r, ok := s.peek(); !ok || r != '/' {
		return NewNumber(top), nil
	}
	s.pos++
	bottom, ok, err := s.number()
	if err != nil {
		return Token{}, err
	}
	if !ok {
		return Token{}, newError(TokenError{Code: IncompleteRatio})
	}
	if bottom == 0 {
		return Token{}, newError(TokenError{Code: Zero})
	}
	return NewRatio(top, bottom), nil
}

// Scan tokenizes a score. The first invalid construct aborts the scan and is
// returned as a *MetrumError wrapping a TokenError.
func Scan(text string) ([]Token, error) {
	s := &scanner{input: []rune(text)}
	tokens := make([]Token, 0, len(s.input)/2)

	for {
		curr, ok := s.peek()
		if !ok {
			return tokens, nil
		}

		if curr >= '0' && curr <= '9' {
			tok, err := s.numberOrRatio()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			continue
		}

		s.pos++
		if unicode.IsSpace(curr) {
			continue
		}
		if value, isNote := noteLetters[curr]; isNote {
			tokens = append(tokens, Token{Kind: KindRatio, Value: value})
			continue
		}

		switch curr {
		case '.':
			tokens = append(tokens, Dot)
		case '=':
			tokens = append(tokens, Equal)
		case '|':
			tokens = append(tokens, Barline)
		case 'x', '%':
			n, err := s.repeat(curr)
			if err != nil {
				return nil, err
			}
			if curr == 'x' {
				tokens = append(tokens, NewNoteRepeat(n))
			} else {
				tokens = append(tokens, NewBarRepeat(n))
			}
		case '/':
			return nil, newError(TokenError{Code: LeadingSlash})
		default:
			return nil, newError(TokenError{Code: InvalidCharacter, Char: curr})
		}
	}
}
