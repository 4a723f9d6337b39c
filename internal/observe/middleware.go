package observe

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type callIDKey struct{}

// CallID returns the ID assigned to the current tool call, or "".
func CallID(ctx context.Context) string {
	id, _ := ctx.Value(callIDKey{}).(string)
	return id
}

// WithCallID returns ctx carrying the given call ID.
func WithCallID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, callIDKey{}, id)
}

// ToolMiddleware wraps every tool handler so that each call:
//
//  1. Gets a fresh call ID in its context (see [CallID]).
//  2. Is counted and timed in m.
//  3. Is logged on completion with its tool name, call ID, and outcome.
//
// A handler that returns a Go error or an error result counts as "error".
func ToolMiddleware(m *Metrics, logger *slog.Logger) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := time.Now()
			id := uuid.NewString()
			ctx = WithCallID(ctx, id)

			result, err := next(ctx, req)

			elapsed := time.Since(start)
			status := "ok"
			if err != nil || (result != nil && result.IsError) {
				status = "error"
			}
			m.RecordToolCall(ctx, req.Params.Name, status, elapsed)

			attrs := []any{
				slog.String("tool", req.Params.Name),
				slog.String("call_id", id),
				slog.Duration("duration", elapsed),
			}
			switch {
			case err != nil:
				logger.ErrorContext(ctx, "tool call failed", append(attrs, slog.Any("error", err))...)
			case status == "error":
				logger.WarnContext(ctx, "tool returned error result", attrs...)
			default:
				logger.InfoContext(ctx, "tool call", attrs...)
			}
			return result, err
		}
	}
}
