package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	mu     sync.Mutex
	inputs []*cloudwatch.PutMetricDataInput
}

func (f *fakePutter) PutMetricData(_ context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func (f *fakePutter) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, in := range f.inputs {
		for _, d := range in.MetricData {
			names = append(names, aws.ToString(d.MetricName))
		}
	}
	return names
}

func newTestClient() (*Client, *fakePutter) {
	putter := &fakePutter{}
	return &Client{client: putter, enabled: true, environment: "test"}, putter
}

func TestClient_DisabledOutsideProduction(t *testing.T) {
	c, err := NewClient(context.Background(), "development")
	require.NoError(t, err)
	assert.False(t, c.enabled)

	// no client configured; must not panic
	c.RecordAPIRequest("/health", 200, time.Millisecond)
	c.RecordRender(context.Background(), 10, time.Millisecond)
}

func TestClient_RecordScoreParse(t *testing.T) {
	c, putter := newTestClient()

	c.RecordScoreParse(context.Background(), ParseOutcome{Success: true, Beats: 4, TotalMs: 2000})
	c.RecordScoreParse(context.Background(), ParseOutcome{Success: false, ErrorKind: "token"})

	assert.Equal(t, []string{"ScoresParsed", "ScoreBeats", "ScoreLength", "ScoresRejected"}, putter.names())
}

func TestClient_RecordAPIRequest(t *testing.T) {
	c, putter := newTestClient()

	c.RecordAPIRequest("/api/v1/scores/parse", 200, 3*time.Millisecond)
	c.RecordAPIRequest("/api/v1/scores/parse", 503, 3*time.Millisecond)

	assert.Equal(t, []string{"APIRequests", "APILatency", "APIErrors", "APILatency"}, putter.names())
}

type countingRecorder struct {
	parses, renders int
}

func (c *countingRecorder) RecordScoreParse(context.Context, ParseOutcome) { c.parses++ }

func (c *countingRecorder) RecordRender(context.Context, int, time.Duration) { c.renders++ }

func TestMulti_FansOut(t *testing.T) {
	a, b := &countingRecorder{}, &countingRecorder{}
	m := Multi{a, b, NewSentryMetrics()}

	m.RecordScoreParse(context.Background(), ParseOutcome{Success: true})
	m.RecordRender(context.Background(), 100, time.Millisecond)

	assert.Equal(t, 1, a.parses)
	assert.Equal(t, 1, b.renders)
}
