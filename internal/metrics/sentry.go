package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	// HTTP status code threshold for considering a request successful
	successStatusCodeThreshold = http.StatusBadRequest
)

// SentryMetrics handles custom metrics for Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // Always enabled if Sentry is configured
	}
}

// RecordAPIRequest records API request metrics
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetTag("success", fmt.Sprintf("%t", statusCode < successStatusCodeThreshold))

	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("endpoint", endpoint)
	span.SetData("status_code", statusCode)

	if statusCode < successStatusCodeThreshold {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("API Request: %s", endpoint)
}

// RecordScoreParse records a score parse as a span; rejected scores are
// tagged with the failing stage and variant
func (m *SentryMetrics) RecordScoreParse(ctx context.Context, outcome ParseOutcome) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "score.parse")
	defer span.Finish()

	span.SetTag("success", fmt.Sprintf("%t", outcome.Success))
	if !outcome.Success {
		span.SetTag("error_kind", outcome.ErrorKind)
		span.SetTag("error_code", outcome.ErrorCode)
	}

	span.SetData("tokens", outcome.Tokens)
	span.SetData("bars", outcome.Bars)
	span.SetData("beats", outcome.Beats)
	span.SetData("total_ms", outcome.TotalMs)
	span.SetData("duration_us", outcome.Duration.Microseconds())

	if outcome.Success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInvalidArgument
	}
	span.Description = fmt.Sprintf("Score Parse: %t", outcome.Success)
}

// RecordRender records click-track rendering
func (m *SentryMetrics) RecordRender(ctx context.Context, sizeBytes int, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "score.render")
	defer span.Finish()

	span.SetData("size_bytes", sizeBytes)
	span.SetData("duration_ms", duration.Milliseconds())
	span.Status = sentry.SpanStatusOK
	span.Description = "Click Track Render"
}
