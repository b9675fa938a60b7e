package metrum

import "fmt"

// TokenErrorCode identifies why the scanner rejected a score
type TokenErrorCode uint8

const (
	Zero TokenErrorCode = iota + 1
	InvalidCharacter
	MissingRepetition
	IncompleteRatio
	LeadingSlash
	NotEnoughRepeats
	NumberTooLarge
)

var tokenErrorNames = map[TokenErrorCode]string{
	Zero:              "Zero",
	InvalidCharacter:  "InvalidCharacter",
	MissingRepetition: "MissingRepetition",
	IncompleteRatio:   "IncompleteRatio",
	LeadingSlash:      "LeadingSlash",
	NotEnoughRepeats:  "NotEnoughRepeats",
	NumberTooLarge:    "NumberTooLarge",
}

func (c TokenErrorCode) String() string {
	if name, ok := tokenErrorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("TokenErrorCode(%d)", uint8(c))
}

// TokenError is a lexer failure. Char is set for InvalidCharacter and
// MissingRepetition.
type TokenError struct {
	Code TokenErrorCode
	Char rune
}

func (e TokenError) Error() string {
	switch e.Code {
	case Zero:
		return "Note values and tempo numbers cannot be zero"
	case InvalidCharacter:
		return fmt.Sprintf("Invalid character '%c'", e.Char)
	case MissingRepetition:
		return fmt.Sprintf("A number of repetitions must follow '%c'", e.Char)
	case IncompleteRatio:
		return "A ratio must have a number after '/'"
	case LeadingSlash:
		return "A ratio cannot start with '/'"
	case NotEnoughRepeats:
		return "The number of repetitions must be greater than 1"
	case NumberTooLarge:
		return "Number is too large"
	}
	return e.Code.String()
}

// Is matches another TokenError with the same code. A target without a
// character matches any character.
func (e TokenError) Is(target error) bool {
	t, ok := target.(TokenError)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Char == 0 || t.Char == e.Char)
}

func (TokenError) metrumCause() {}

// ParseError is a builder failure at the token-sequence level
type ParseError uint8

const (
	MissingTempoSpecifier ParseError = iota + 1
	StrayNumber
	StrayDot
	StrayEqual
	NothingToRepeat
	MisplacedBarRepeat
)

var parseErrorNames = map[ParseError]string{
	MissingTempoSpecifier: "MissingTempoSpecifier",
	StrayNumber:           "Number",
	StrayDot:              "Dot",
	StrayEqual:            "Equal",
	NothingToRepeat:       "NothingToRepeat",
	MisplacedBarRepeat:    "BarRepeat",
}

func (e ParseError) String() string {
	if name, ok := parseErrorNames[e]; ok {
		return name
	}
	return fmt.Sprintf("ParseError(%d)", uint8(e))
}

func (e ParseError) Error() string {
	switch e {
	case MissingTempoSpecifier:
		return "A number or a note value must come after '=' when specifying tempo"
	case StrayNumber:
		return "A number is only allowed after '=' when specifying tempo"
	case StrayDot:
		return "A dot must come right after a note value"
	case StrayEqual:
		return "'=' must come right after a note value"
	case NothingToRepeat:
		return "There is nothing to repeat"
	case MisplacedBarRepeat:
		return "A bar repeat must come right after a barline"
	}
	return e.String()
}

func (ParseError) metrumCause() {}

// ConversionError is a failure of the tempo and duration arithmetic
type ConversionError uint8

const (
	NonRatioToDuration ConversionError = iota + 1
	NonRatio
	ZeroTempo
	RatioOverflow
)

var conversionErrorNames = map[ConversionError]string{
	NonRatioToDuration: "NonRatioToDuration",
	NonRatio:           "NonRatio",
	ZeroTempo:          "ZeroTempo",
	RatioOverflow:      "RatioOverflow",
}

func (e ConversionError) String() string {
	if name, ok := conversionErrorNames[e]; ok {
		return name
	}
	return fmt.Sprintf("ConversionError(%d)", uint8(e))
}

func (e ConversionError) Error() string {
	switch e {
	case NonRatioToDuration:
		return "Cannot convert a non ratio to a duration"
	case NonRatio:
		return "Tempo conversion requires two note values"
	case ZeroTempo:
		return "Tempo change results in less than one beat per minute"
	case RatioOverflow:
		return "Dotted note value is too large"
	}
	return e.String()
}

func (ConversionError) metrumCause() {}

// cause is implemented only by TokenError, ParseError and ConversionError
type cause interface {
	error
	metrumCause()
}

// ErrorKind tells which stage produced a MetrumError
type ErrorKind string

const (
	KindToken      ErrorKind = "token"
	KindParse      ErrorKind = "parse"
	KindConversion ErrorKind = "conversion"
)

// MetrumError is the single error type returned by Scan, Build and Parse
type MetrumError struct {
	cause cause
}

func newError(c cause) *MetrumError {
	return &MetrumError{cause: c}
}

func (e *MetrumError) Error() string {
	return e.cause.Error()
}

func (e *MetrumError) Unwrap() error {
	return e.cause
}

// Kind reports the stage that failed
func (e *MetrumError) Kind() ErrorKind {
	switch e.cause.(type) {
	case TokenError:
		return KindToken
	case ParseError:
		return KindParse
	default:
		return KindConversion
	}
}

// Code is the variant name, e.g. "MissingRepetition" or "NothingToRepeat"
func (e *MetrumError) Code() string {
	switch c := e.cause.(type) {
	case TokenError:
		return c.Code.String()
	case ParseError:
		return c.String()
	case ConversionError:
		return c.String()
	}
	return ""
}
