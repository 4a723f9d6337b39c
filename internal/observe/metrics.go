// Package observe provides the weather server's observability primitives:
// OpenTelemetry metrics, the slog logger, and the MCP tool middleware that
// ties them together.
//
// Instruments are created from whatever [metric.MeterProvider] is passed to
// [NewMetrics]. Without [InitProvider] the global provider is a no-op, so
// recording is always safe and free when metrics are disabled.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name for all weather metrics.
const meterName = "github.com/HendryAvila/weather-mcp"

// Metrics holds the metric instruments. Safe for concurrent use.
type Metrics struct {
	// ToolCalls counts tool invocations by tool and status ("ok" / "error").
	ToolCalls metric.Int64Counter

	// ToolDuration tracks tool execution latency.
	ToolDuration metric.Float64Histogram

	// FetchRequests counts upstream API requests by outcome status.
	FetchRequests metric.Int64Counter

	// FetchDuration tracks upstream API latency.
	FetchDuration metric.Float64Histogram
}

// latencyBuckets are histogram boundaries in seconds, sized for a remote
// API with a 30s timeout.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ToolCalls, err = m.Int64Counter("weather.tool.calls",
		metric.WithDescription("Total tool invocations by tool name and status."),
	); err != nil {
		return nil, err
	}
	if met.ToolDuration, err = m.Float64Histogram("weather.tool.duration",
		metric.WithDescription("Latency of MCP tool execution."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.FetchRequests, err = m.Int64Counter("weather.fetch.requests",
		metric.WithDescription("Total upstream weather API requests by outcome."),
	); err != nil {
		return nil, err
	}
	if met.FetchDuration, err = m.Float64Histogram("weather.fetch.duration",
		metric.WithDescription("Latency of upstream weather API requests."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordFetch records one upstream request. It satisfies nws.Recorder.
func (m *Metrics) RecordFetch(ctx context.Context, status string, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.FetchRequests.Add(ctx, 1, attrs)
	m.FetchDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordToolCall records one tool invocation.
func (m *Metrics) RecordToolCall(ctx context.Context, tool, status string, elapsed time.Duration) {
	m.ToolCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("status", status),
	))
	m.ToolDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("tool", tool),
	))
}
