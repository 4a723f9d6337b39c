// Package tools implements the weather MCP tool handlers.
//
// Each tool is a struct holding its dependencies, injected via its
// constructor (DIP):
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a text result
//
// Upstream and storage failures never surface as Go errors. Fetch failures
// become fixed "Unable to fetch ..." text, and store failures become MCP
// error results, so the host always gets a well-formed response.
package tools

import (
	"context"
	"fmt"

	"github.com/HendryAvila/weather-mcp/internal/nws"
	"github.com/mark3labs/mcp-go/mcp"
)

// header prefixes every successful response.
const header = "[Weather MCP Server]"

// Fetcher is the subset of nws.Client the tools need.
type Fetcher interface {
	FetchJSON(ctx context.Context, url string, v any) nws.Result
	AlertsURL(region string) string
	PointsURL(lat, lon float64) string
}

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// floatArg extracts a required number argument. ok is false when the key is
// missing or not a number.
func floatArg(req mcp.CallToolRequest, key string) (v float64, ok bool) {
	v, ok = req.GetArguments()[key].(float64)
	return v, ok
}

// stringArg extracts a required string argument. An empty string is a
// valid value; only a missing or non-string key fails.
func stringArg(req mcp.CallToolRequest, key string) (v string, ok bool) {
	v, ok = req.GetArguments()[key].(string)
	return v, ok
}

// storeError builds the error result for a failed memory read or write.
func storeError(action string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("failed to %s: %v", action, err))
}

// unableMessage renders a failed fetch. By default the failure class is
// hidden; with detailed set, it is appended in parentheses.
func unableMessage(msg string, res nws.Result, detailed bool) string {
	if !detailed || res.OK() {
		return msg
	}
	switch res.Status {
	case nws.StatusHTTPError:
		return fmt.Sprintf("%s (HTTP %d)", msg, res.StatusCode)
	default:
		return fmt.Sprintf("%s (%s)", msg, res.Status)
	}
}

// orDefault dereferences s, falling back when it is nil.
func orDefault(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
