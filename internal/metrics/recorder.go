package metrics

import (
	"context"
	"time"
)

// ParseOutcome describes one score parse for metrics
type ParseOutcome struct {
	Success   bool
	ErrorKind string // "token", "parse" or "conversion" when Success is false
	ErrorCode string
	Tokens    int
	Bars      int
	Beats     int
	TotalMs   float64
	Duration  time.Duration
}

// Recorder receives domain metrics from the score services
type Recorder interface {
	RecordScoreParse(ctx context.Context, outcome ParseOutcome)
	RecordRender(ctx context.Context, sizeBytes int, duration time.Duration)
}

// Multi fans out every record call to all recorders
type Multi []Recorder

func (m Multi) RecordScoreParse(ctx context.Context, outcome ParseOutcome) {
	for _, r := range m {
		r.RecordScoreParse(ctx, outcome)
	}
}

func (m Multi) RecordRender(ctx context.Context, sizeBytes int, duration time.Duration) {
	for _, r := range m {
		r.RecordRender(ctx, sizeBytes, duration)
	}
}
