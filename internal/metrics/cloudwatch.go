package metrics

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	namespace                = "Metrome/API"
	httpStatusServerError    = 500
	cloudwatchTimeoutSeconds = 5
)

// metricPutter is the part of the CloudWatch client we use
type metricPutter interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Client wraps CloudWatch client for custom metrics
type Client struct {
	client      metricPutter
	enabled     bool
	environment string
	async       bool
}

// NewClient creates a new CloudWatch metrics client
func NewClient(ctx context.Context, environment string) (*Client, error) {
	// Only enable in production
	if environment != "production" {
		log.Printf("📊 CloudWatch Metrics: DISABLED (environment: %s)", environment)
		return &Client{
			enabled:     false,
			environment: environment,
		}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("⚠️  Failed to load AWS config for CloudWatch: %v", err)
		return &Client{enabled: false}, nil
	}

	client := cloudwatch.NewFromConfig(cfg)
	log.Printf("📊 CloudWatch Metrics: ✅ ENABLED (namespace: %s)", namespace)

	return &Client{
		client:      client,
		enabled:     true,
		environment: environment,
		async:       true,
	}, nil
}

func (m *Client) dispatch(fn func(ctx context.Context)) {
	if m == nil || !m.enabled {
		return
	}
	if m.async {
		go fn(context.Background())
		return
	}
	fn(context.Background())
}

func (m *Client) envDimension() types.Dimension {
	return types.Dimension{
		Name:  aws.String("Environment"),
		Value: aws.String(m.environment),
	}
}

// RecordAPIRequest records an API request metric
func (m *Client) RecordAPIRequest(endpoint string, statusCode int, duration time.Duration) {
	m.dispatch(func(ctx context.Context) {
		metricName := "APIRequests"
		if statusCode >= httpStatusServerError {
			metricName = "APIErrors"
		}

		dimensions := []types.Dimension{
			{
				Name:  aws.String("Endpoint"),
				Value: aws.String(endpoint),
			},
			m.envDimension(),
		}

		if err := m.putMetric(ctx, metricName, 1, types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record %s metric: %v", metricName, err)
		}

		latencyMs := float64(duration.Milliseconds())
		if err := m.putMetric(ctx, "APILatency", latencyMs, types.StandardUnitMilliseconds, dimensions); err != nil {
			log.Printf("Failed to record APILatency metric: %v", err)
		}
	})
}

// RecordScoreParse records accepted and rejected scores and the size of
// accepted ones
func (m *Client) RecordScoreParse(_ context.Context, outcome ParseOutcome) {
	m.dispatch(func(ctx context.Context) {
		if !outcome.Success {
			dimensions := []types.Dimension{
				{
					Name:  aws.String("ErrorKind"),
					Value: aws.String(outcome.ErrorKind),
				},
				m.envDimension(),
			}
			if err := m.putMetric(ctx, "ScoresRejected", 1, types.StandardUnitCount, dimensions); err != nil {
				log.Printf("Failed to record ScoresRejected metric: %v", err)
			}
			return
		}

		dimensions := []types.Dimension{m.envDimension()}
		if err := m.putMetric(ctx, "ScoresParsed", 1, types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record ScoresParsed metric: %v", err)
		}
		if err := m.putMetric(ctx, "ScoreBeats", float64(outcome.Beats), types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record ScoreBeats metric: %v", err)
		}
		if err := m.putMetric(ctx, "ScoreLength", outcome.TotalMs, types.StandardUnitMilliseconds, dimensions); err != nil {
			log.Printf("Failed to record ScoreLength metric: %v", err)
		}
	})
}

// RecordRender records the size and duration of a click-track render
func (m *Client) RecordRender(_ context.Context, sizeBytes int, duration time.Duration) {
	m.dispatch(func(ctx context.Context) {
		dimensions := []types.Dimension{m.envDimension()}
		if err := m.putMetric(ctx, "RenderBytes", float64(sizeBytes), types.StandardUnitBytes, dimensions); err != nil {
			log.Printf("Failed to record RenderBytes metric: %v", err)
		}
		durationMs := float64(duration.Milliseconds())
		if err := m.putMetric(ctx, "RenderDuration", durationMs, types.StandardUnitMilliseconds, dimensions); err != nil {
			log.Printf("Failed to record RenderDuration metric: %v", err)
		}
	})
}

// putMetric sends a metric to CloudWatch
func (m *Client) putMetric(
	ctx context.Context,
	metricName string,
	value float64,
	unit types.StandardUnit,
	dimensions []types.Dimension,
) error {
	if !m.enabled || m.client == nil {
		return nil
	}

	// Create context with timeout for CloudWatch call
	timeout := time.Duration(cloudwatchTimeoutSeconds) * time.Second
	cwCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err := m.client.PutMetricData(cwCtx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(metricName),
				Value:      aws.Float64(value),
				Unit:       unit,
				Timestamp:  aws.Time(time.Now()),
				Dimensions: dimensions,
			},
		},
	})

	return err
}
