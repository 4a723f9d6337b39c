package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/weather-mcp/internal/memory"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultHistoryLimit applies when limit is missing or not positive.
const defaultHistoryLimit = 10

// historyTimeLayout is the minute-resolution form shown in history lines.
const historyTimeLayout = "2006-01-02 15:04"

// ─── get_history ────────────────────────────────────────────────────────────

// GetHistoryTool handles the get_history MCP tool.
type GetHistoryTool struct {
	store memory.Store
}

// NewGetHistoryTool creates a GetHistoryTool with its dependencies.
func NewGetHistoryTool(store memory.Store) *GetHistoryTool {
	return &GetHistoryTool{store: store}
}

// Definition returns the MCP tool definition for get_history.
func (t *GetHistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("get_history",
		mcp.WithDescription("Get recent search history."),
		mcp.WithTitleAnnotation("Search History"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
		mcp.WithNumber("limit",
			mcp.Description("Number of recent searches to show (default: 10)"),
		),
	)
}

// Handle processes the get_history tool call.
func (t *GetHistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := intArg(req, "limit", defaultHistoryLimit)
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	doc, err := t.store.Load(ctx)
	if err != nil {
		return storeError("load history", err), nil
	}

	if len(doc.Searches) == 0 {
		return mcp.NewToolResultText(header + " No search history yet"), nil
	}

	recent := doc.RecentSearches(limit)
	lines := make([]string, 0, len(recent))
	for _, s := range recent {
		lines = append(lines, "• "+formatSearch(s))
	}

	return mcp.NewToolResultText(header + " Recent Searches:\n\n" + strings.Join(lines, "\n")), nil
}

// formatSearch renders one history line without the bullet.
func formatSearch(s memory.SearchRecord) string {
	when := s.Timestamp
	if ts, err := memory.ParseTimestamp(s.Timestamp); err == nil {
		when = ts.Format(historyTimeLayout)
	}

	if s.Type == memory.SearchAlerts {
		return fmt.Sprintf("%s: Alerts for %s", when, s.State)
	}
	return fmt.Sprintf("%s: Forecast for %s", when, s.Location)
}

// ─── clear_history ──────────────────────────────────────────────────────────

// ClearHistoryTool handles the clear_history MCP tool.
type ClearHistoryTool struct {
	store memory.Store
}

// NewClearHistoryTool creates a ClearHistoryTool with its dependencies.
func NewClearHistoryTool(store memory.Store) *ClearHistoryTool {
	return &ClearHistoryTool{store: store}
}

// Definition returns the MCP tool definition for clear_history.
func (t *ClearHistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("clear_history",
		mcp.WithDescription("Clear all search history."),
		mcp.WithTitleAnnotation("Clear History"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// Handle processes the clear_history tool call. Favorites are kept.
func (t *ClearHistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := t.store.Update(ctx, func(doc *memory.Document) error {
		doc.ClearSearches()
		return nil
	}); err != nil {
		return storeError("clear history", err), nil
	}
	return mcp.NewToolResultText(header + " Search history cleared"), nil
}
