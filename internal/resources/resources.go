// Package resources implements the weather MCP resource handlers.
//
// Resources are read-only text documents addressed by weather:// URIs.
package resources

import (
	"context"
	"fmt"

	"github.com/HendryAvila/weather-mcp/internal/memory"
	"github.com/mark3labs/mcp-go/mcp"
)

// Resource URIs.
const (
	InfoURI  = "weather://info"
	StatsURI = "weather://stats"
)

const serverInfo = `
Weather MCP Server v1.0
=======================
Data Source: National Weather Service API
Coverage: United States only
Last Updated: October 2025

Available Tools:
- get_alerts: Weather alerts by state
- get_forecast: 5-day forecast by coordinates
- save_favorite: Save favorite locations
- get_favorites: View saved locations
- get_history: View search history
- clear_history: Clear search history

This server remembers your favorite locations and search history.
`

// Handler manages the weather resource endpoints.
type Handler struct {
	store memory.Store
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(store memory.Store) *Handler {
	return &Handler{store: store}
}

// InfoResource returns the MCP resource definition for the server description.
func (h *Handler) InfoResource() mcp.Resource {
	return mcp.NewResource(
		InfoURI,
		"Weather Server Info",
		mcp.WithResourceDescription("Information about this weather server"),
		mcp.WithMIMEType(mimeText),
	)
}

// HandleInfo returns the static server description.
func (h *Handler) HandleInfo(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return textResource(req.Params.URI, serverInfo), nil
}

// StatsResource returns the MCP resource definition for usage statistics.
func (h *Handler) StatsResource() mcp.Resource {
	return mcp.NewResource(
		StatsURI,
		"Weather Usage Statistics",
		mcp.WithResourceDescription("Get usage statistics"),
		mcp.WithMIMEType(mimeText),
	)
}

// HandleStats returns the current search and favorite counts.
// A store failure is reported in the resource body.
func (h *Handler) HandleStats(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	doc, err := h.store.Load(ctx)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	text := fmt.Sprintf("\nUsage Statistics\n================\nTotal searches: %d\nFavorite locations: %d\n",
		len(doc.Searches), len(doc.Favorites))
	return textResource(req.Params.URI, text), nil
}
