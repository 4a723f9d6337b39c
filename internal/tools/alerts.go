package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/weather-mcp/internal/memory"
	"github.com/HendryAvila/weather-mcp/internal/nws"
	"github.com/mark3labs/mcp-go/mcp"
)

// AlertsTool handles the get_alerts MCP tool.
type AlertsTool struct {
	store    memory.Store
	fetcher  Fetcher
	detailed bool
}

// NewAlertsTool creates an AlertsTool with its dependencies.
func NewAlertsTool(store memory.Store, fetcher Fetcher) *AlertsTool {
	return &AlertsTool{store: store, fetcher: fetcher}
}

// SetDetailedErrors makes fetch failures report their cause.
func (t *AlertsTool) SetDetailedErrors(on bool) {
	t.detailed = on
}

// Definition returns the MCP tool definition for get_alerts.
func (t *AlertsTool) Definition() mcp.Tool {
	return mcp.NewTool("get_alerts",
		mcp.WithDescription("Get weather alerts for a US state."),
		mcp.WithTitleAnnotation("Weather Alerts"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("state",
			mcp.Required(),
			mcp.Description("Two-letter US state code (e.g. CA, NY)"),
		),
	)
}

// Handle processes the get_alerts tool call.
// The search is recorded before the fetch, so it lands in the history
// even when the API is unreachable.
func (t *AlertsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, ok := stringArg(req, "state")
	if !ok {
		return mcp.NewToolResultError("'state' is required"), nil
	}

	if err := t.store.Update(ctx, func(doc *memory.Document) error {
		doc.RecordAlertsSearch(state)
		return nil
	}); err != nil {
		return storeError("record search", err), nil
	}

	var data nws.AlertsResponse
	res := t.fetcher.FetchJSON(ctx, t.fetcher.AlertsURL(state), &data)
	if !res.OK() || data.Features == nil {
		return mcp.NewToolResultText(unableMessage("Unable to fetch alerts", res, t.detailed)), nil
	}

	if len(data.Features) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No active alerts for %s", state)), nil
	}

	alerts := make([]string, 0, len(data.Features))
	for _, feature := range data.Features {
		alerts = append(alerts, formatAlert(feature.Properties))
	}

	return mcp.NewToolResultText(
		fmt.Sprintf("%s Alerts for %s\n", header, state) + strings.Join(alerts, "\n---\n"),
	), nil
}

func formatAlert(p nws.AlertProperties) string {
	return fmt.Sprintf("\nEvent: %s\nArea: %s\nSeverity: %s\nDescription: %s\n",
		orDefault(p.Event, "Unknown"),
		orDefault(p.AreaDesc, "Unknown"),
		orDefault(p.Severity, "Unknown"),
		orDefault(p.Description, "No description"),
	)
}
