package metrum

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTooManyBeats is returned by BuildLimited when repeats expand a score
// past its beat limit
var ErrTooManyBeats = errors.New("score expands to too many beats")

// Duration is how long a beat lasts in milliseconds and whether it is the
// strong beat of its bar.
type Duration struct {
	Ms     float32 `json:"ms"`
	Strong bool    `json:"strong"`
}

// Weak returns a copy of d that is never the strong beat
func (d Duration) Weak() Duration {
	return Duration{Ms: d.Ms}
}

// Bar holds durations in play order
type Bar struct {
	Durations []Duration `json:"durations"`
}

func (b Bar) clone() Bar {
	return Bar{Durations: append([]Duration(nil), b.Durations...)}
}

// TotalDuration is the sum of the bar's durations in milliseconds
func (b Bar) TotalDuration() float32 {
	var total float32
	for _, d := range b.Durations {
		total += d.Ms
	}
	return total
}

// Score represents rhythm as bars of durations; the click track renderer
// consumes it.
type Score struct {
	Bars []Bar `json:"bars"`
}

// TotalDuration calculates the length of the whole score in milliseconds
func (s *Score) TotalDuration() float32 {
	var total float32
	for _, bar := range s.Bars {
		total += bar.TotalDuration()
	}
	return total
}

// Beats flattens the score into play order
func (s *Score) Beats() []Duration {
	beats := make([]Duration, 0, s.NumBeats())
	for _, bar := range s.Bars {
		beats = append(beats, bar.Durations...)
	}
	return beats
}

func (s *Score) NumBeats() int {
	n := 0
	for _, bar := range s.Bars {
		n += len(bar.Durations)
	}
	return n
}

func (s *Score) String() string {
	var sb strings.Builder
	for _, bar := range s.Bars {
		sb.WriteString("|")
		for _, d := range bar.Durations {
			fmt.Fprintf(&sb, " %g", d.Ms)
		}
		sb.WriteString(" ")
	}
	sb.WriteString("|")
	return sb.String()
}

// Parse scans and builds a score in one step
func Parse(text string) (*Score, error) {
	tokens, err := Scan(text)
	if err != nil {
		return nil, err
	}
	return Build(tokens)
}

type builder struct {
	tokens []Token
	pos    int

	tempo Tempo
	bars  []Bar
	bar   Bar

	beats    int
	maxBeats int

	// kind of the previously processed token; tokens consumed as lookahead
	// (dots, '=' and its operand) do not count
	last    TokenKind
	hasLast bool
}

// Build folds a token sequence into a Score starting at DefaultTempo. The
// first invalid construct aborts the build.
func Build(tokens []Token) (*Score, error) {
	return BuildLimited(tokens, 0)
}

// BuildLimited is Build with a cap on the number of beats the score may
// expand to. The check runs before repeats are expanded, so an oversized
// score fails with ErrTooManyBeats without being allocated. maxBeats <= 0
// means no limit.
func BuildLimited(tokens []Token, maxBeats int) (*Score, error) {
	b := &builder{tokens: tokens, tempo: DefaultTempo, bars: []Bar{}, maxBeats: maxBeats}
	for b.pos < len(b.tokens) {
		curr := b.next()
		if err := b.step(curr); err != nil {
			return nil, err
		}
		b.last, b.hasLast = curr.Kind, true
	}
	if len(b.bar.Durations) > 0 {
		b.bars = append(b.bars, b.bar)
	}
	return &Score{Bars: b.bars}, nil
}

func (b *builder) next() Token {
	t := b.tokens[b.pos]
	b.pos++
	return t
}

func (b *builder) peekIs(kind TokenKind) bool {
	return b.pos < len(b.tokens) && b.tokens[b.pos].Kind == kind
}

func (b *builder) countDots() int {
	n := 0
	for b.peekIs(KindDot) {
		b.pos++
		n++
	}
	return n
}

// grow reserves n more beats
func (b *builder) grow(n int) error {
	if b.maxBeats > 0 && b.beats+n > b.maxBeats {
		return fmt.Errorf("%w: more than %d", ErrTooManyBeats, b.maxBeats)
	}
	b.beats += n
	return nil
}

func (b *builder) step(curr Token) error {
	switch curr.Kind {
	case KindBarline:
		if len(b.bar.Durations) > 0 {
			b.bars = append(b.bars, b.bar)
			b.bar = Bar{}
		}
	case KindRatio:
		return b.ratio(curr)
	case KindNoteRepeat:
		return b.noteRepeat(curr.Count)
	case KindBarRepeat:
		return b.barRepeat(curr.Count)
	case KindNumber:
		return newError(StrayNumber)
	case KindEqual:
		return newError(StrayEqual)
	case KindDot:
		return newError(StrayDot)
	}
	return nil
}

func (b *builder) ratio(curr Token) error {
	numDots := b.countDots()
	if !b.peekIs(KindEqual) {
		ms, err := curr.DurationMs(b.tempo, numDots)
		if err != nil {
			return err
		}
		if err := b.grow(1); err != nil {
			return err
		}
		b.bar.Durations = append(b.bar.Durations, Duration{
			Ms:     ms,
			Strong: len(b.bar.Durations) == 0,
		})
		return nil
	}

	b.pos++
	if b.pos >= len(b.tokens) {
		return newError(MissingTempoSpecifier)
	}
	operand := b.next()
	switch operand.Kind {
	case KindNumber:
		b.tempo = Tempo{Beat: curr.Value, NumBeats: operand.Count}
	case KindRatio:
		dots := b.countDots()
		left, err := curr.ApplyDots(numDots)
		if err != nil {
			return err
		}
		right, err := operand.ApplyDots(dots)
		if err != nil {
			return err
		}
		tempo, err := b.tempo.RelativeTo(left, right)
		if err != nil {
			return err
		}
		b.tempo = tempo
	default:
		return newError(MissingTempoSpecifier)
	}
	return nil
}

func (b *builder) noteRepeat(n uint16) error {
	if len(b.bar.Durations) == 0 {
		return newError(NothingToRepeat)
	}
	if err := b.grow(int(n) - 1); err != nil {
		return err
	}
	last := b.bar.Durations[len(b.bar.Durations)-1].Weak()
	for i := uint16(1); i < n; i++ {
		b.bar.Durations = append(b.bar.Durations, last)
	}
	return nil
}

func (b *builder) barRepeat(n uint16) error {
	if !b.hasLast {
		return newError(NothingToRepeat)
	}
	if b.last != KindBarline {
		return newError(MisplacedBarRepeat)
	}
	if len(b.bars) == 0 {
		return newError(NothingToRepeat)
	}
	last := b.bars[len(b.bars)-1]
	if err := b.grow(len(last.Durations) * (int(n) - 1)); err != nil {
		return err
	}
	for i := uint16(1); i < n; i++ {
		b.bars = append(b.bars, last.clone())
	}
	return nil
}
