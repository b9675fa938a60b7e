package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Conceptual-Machines/metrome-api/internal/click"
	"github.com/Conceptual-Machines/metrome-api/internal/logger"
	"github.com/Conceptual-Machines/metrome-api/internal/metrics"
	"github.com/Conceptual-Machines/metrome-api/internal/metrum"
)

var ErrScoreTooLarge = errors.New("score is too large")

// Limits bounds what a single request may parse and render. Zero fields are
// unlimited.
type Limits struct {
	MaxBytes         int // score source size
	MaxBeats         int // beats after repeats are expanded
	MaxRenderSeconds int // rendered click track length
}

// ParseResult is a parsed score plus the numbers reported about it
type ParseResult struct {
	Score    *metrum.Score
	Tokens   int
	Bars     int
	Beats    int
	TotalMs  float32
	Duration time.Duration
}

// RenderResult is a rendered click track
type RenderResult struct {
	*ParseResult
	WAV        []byte
	SampleRate uint32
}

// ScoreService parses and renders score sources
type ScoreService struct {
	limits   Limits
	recorder metrics.Recorder
}

// NewScoreService creates a score service. A nil recorder disables metrics.
func NewScoreService(limits Limits, recorder metrics.Recorder) *ScoreService {
	if recorder == nil {
		recorder = metrics.Multi{}
	}
	return &ScoreService{limits: limits, recorder: recorder}
}

func (s *ScoreService) checkSize(source string) error {
	if s.limits.MaxBytes > 0 && len(source) > s.limits.MaxBytes {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrScoreTooLarge, len(source), s.limits.MaxBytes)
	}
	return nil
}

func (s *ScoreService) checkLength(totalMs float32) error {
	maxMs := float64(s.limits.MaxRenderSeconds) * 1000
	if s.limits.MaxRenderSeconds > 0 && float64(totalMs) > maxMs {
		return fmt.Errorf("%w: %.0f s of audio (limit %d s)", ErrScoreTooLarge, float64(totalMs)/1000, s.limits.MaxRenderSeconds)
	}
	return nil
}

// Parse scans and builds source. Notation errors are returned as
// *metrum.MetrumError.
func (s *ScoreService) Parse(ctx context.Context, source string) (*ParseResult, error) {
	if err := s.checkSize(source); err != nil {
		return nil, err
	}

	start := time.Now()
	tokens, err := metrum.Scan(source)
	if err != nil {
		s.recordFailure(ctx, err, 0, time.Since(start))
		return nil, err
	}
	logger.Debug("Score scanned", logger.Fields{"tokens": len(tokens), "bytes": len(source)})

	score, err := metrum.BuildLimited(tokens, s.limits.MaxBeats)
	if errors.Is(err, metrum.ErrTooManyBeats) {
		logger.Warn("Score expands past beat limit", logger.Fields{
			"bytes":     len(source),
			"tokens":    len(tokens),
			"max_beats": s.limits.MaxBeats,
		})
		return nil, fmt.Errorf("%w: %w", ErrScoreTooLarge, err)
	}
	if err != nil {
		s.recordFailure(ctx, err, len(tokens), time.Since(start))
		return nil, err
	}

	result := &ParseResult{
		Score:    score,
		Tokens:   len(tokens),
		Bars:     len(score.Bars),
		Beats:    score.NumBeats(),
		TotalMs:  score.TotalDuration(),
		Duration: time.Since(start),
	}

	s.recorder.RecordScoreParse(ctx, metrics.ParseOutcome{
		Success:  true,
		Tokens:   result.Tokens,
		Bars:     result.Bars,
		Beats:    result.Beats,
		TotalMs:  float64(result.TotalMs),
		Duration: result.Duration,
	})
	logger.LogScoreParse(ctx, result.Bars, result.Beats, result.TotalMs, result.Duration, logger.Fields{
		"tokens": result.Tokens,
	})

	return result, nil
}

func (s *ScoreService) recordFailure(ctx context.Context, err error, tokens int, elapsed time.Duration) {
	outcome := metrics.ParseOutcome{Tokens: tokens, Duration: elapsed}
	var merr *metrum.MetrumError
	if errors.As(err, &merr) {
		outcome.ErrorKind = string(merr.Kind())
		outcome.ErrorCode = merr.Code()
	}
	s.recorder.RecordScoreParse(ctx, outcome)

	logger.Warn("Score rejected", logger.Fields{
		"error":      err.Error(),
		"error_kind": outcome.ErrorKind,
		"error_code": outcome.ErrorCode,
	})
}

// Render parses source and renders its click track with profile
func (s *ScoreService) Render(ctx context.Context, source string, profile click.Profile) (*RenderResult, error) {
	parsed, err := s.Parse(ctx, source)
	if err != nil {
		return nil, err
	}
	return s.RenderParsed(ctx, parsed, profile)
}

// RenderParsed renders an already parsed score. Scores longer than
// MaxRenderSeconds fail with ErrScoreTooLarge before any audio is allocated.
func (s *ScoreService) RenderParsed(ctx context.Context, parsed *ParseResult, profile click.Profile) (*RenderResult, error) {
	if err := s.checkLength(parsed.TotalMs); err != nil {
		return nil, err
	}

	start := time.Now()
	wav, err := click.Render(parsed.Score, profile)
	if err != nil {
		logger.Error("Click track render failed", err, nil)
		return nil, fmt.Errorf("failed to render click track: %w", err)
	}
	s.recorder.RecordRender(ctx, len(wav), time.Since(start))

	return &RenderResult{
		ParseResult: parsed,
		WAV:         wav,
		SampleRate:  profile.SampleRate,
	}, nil
}
