package observe

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// counterValue sums the data points of an Int64 counter that carry attr.
func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string, attr attribute.KeyValue) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s has type %T, want Sum[int64]", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value(attr.Key); ok && v.Emit() == attr.Value.Emit() {
					total += dp.Value
				}
			}
		}
	}
	return total
}

// ─── Metrics ────────────────────────────────────────────────────────────────

func TestRecordFetch(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordFetch(ctx, "ok", 120*time.Millisecond)
	m.RecordFetch(ctx, "ok", 80*time.Millisecond)
	m.RecordFetch(ctx, "timeout", 30*time.Second)

	if got := counterValue(t, reader, "weather.fetch.requests", attribute.String("status", "ok")); got != 2 {
		t.Errorf("ok fetches = %d, want 2", got)
	}
	if got := counterValue(t, reader, "weather.fetch.requests", attribute.String("status", "timeout")); got != 1 {
		t.Errorf("timeout fetches = %d, want 1", got)
	}
}

// ─── Logger ─────────────────────────────────────────────────────────────────

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LogConfig
		wantErr bool
	}{
		{"defaults", LogConfig{}, false},
		{"json debug", LogConfig{Level: "debug", Format: "json"}, false},
		{"warning alias", LogConfig{Level: "WARNING"}, false},
		{"bad level", LogConfig{Level: "loud"}, true},
		{"bad format", LogConfig{Format: "xml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLogger(io.Discard, tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewLogger(%+v) error = %v, wantErr %v", tt.cfg, err, tt.wantErr)
			}
		})
	}
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, LogConfig{Level: "warn", Format: "json"})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("expected JSON warn line, got: %s", out)
	}
}

// ─── ToolMiddleware ─────────────────────────────────────────────────────────

func callTool(name string) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	return req
}

func TestToolMiddleware_AssignsCallIDAndRecords(t *testing.T) {
	m, reader := newTestMetrics(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	var seenID string
	handler := ToolMiddleware(m, logger)(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		seenID = CallID(ctx)
		return mcp.NewToolResultText("done"), nil
	})

	if _, err := handler(context.Background(), callTool("get_alerts")); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if len(seenID) != 36 {
		t.Errorf("call ID = %q, want a UUID", seenID)
	}
	if !strings.Contains(buf.String(), "call_id="+seenID) {
		t.Errorf("log line missing call ID: %s", buf.String())
	}
	if got := counterValue(t, reader, "weather.tool.calls", attribute.String("status", "ok")); got != 1 {
		t.Errorf("ok tool calls = %d, want 1", got)
	}
}

func TestToolMiddleware_CountsErrors(t *testing.T) {
	m, reader := newTestMetrics(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mw := ToolMiddleware(m, logger)

	failing := mw(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, errors.New("boom")
	})
	errorResult := mw(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("bad input"), nil
	})

	if _, err := failing(context.Background(), callTool("get_forecast")); err == nil {
		t.Fatal("expected error to pass through")
	}
	if _, err := errorResult(context.Background(), callTool("get_forecast")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := counterValue(t, reader, "weather.tool.calls", attribute.String("status", "error")); got != 2 {
		t.Errorf("error tool calls = %d, want 2", got)
	}
}

func TestCallID_EmptyWithoutMiddleware(t *testing.T) {
	if id := CallID(context.Background()); id != "" {
		t.Errorf("CallID = %q, want empty", id)
	}
}
