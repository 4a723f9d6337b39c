package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/weather-mcp/internal/memory"
	"github.com/HendryAvila/weather-mcp/internal/nws"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── save_favorite ──────────────────────────────────────────────────────────

// SaveFavoriteTool handles the save_favorite MCP tool.
type SaveFavoriteTool struct {
	store memory.Store
}

// NewSaveFavoriteTool creates a SaveFavoriteTool with its dependencies.
func NewSaveFavoriteTool(store memory.Store) *SaveFavoriteTool {
	return &SaveFavoriteTool{store: store}
}

// Definition returns the MCP tool definition for save_favorite.
func (t *SaveFavoriteTool) Definition() mcp.Tool {
	return mcp.NewTool("save_favorite",
		mcp.WithDescription("Save a location as favorite for quick access."),
		mcp.WithTitleAnnotation("Save Favorite"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name for this favorite location"),
		),
		mcp.WithNumber("latitude",
			mcp.Required(),
			mcp.Description("Latitude of the location"),
		),
		mcp.WithNumber("longitude",
			mcp.Required(),
			mcp.Description("Longitude of the location"),
		),
	)
}

// Handle processes the save_favorite tool call.
// Names are unique and case-sensitive; a duplicate leaves the stored
// coordinates untouched.
func (t *SaveFavoriteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, ok := stringArg(req, "name")
	if !ok {
		return mcp.NewToolResultError("'name' is required"), nil
	}
	lat, ok := floatArg(req, "latitude")
	if !ok {
		return mcp.NewToolResultError("'latitude' is required and must be a number"), nil
	}
	lon, ok := floatArg(req, "longitude")
	if !ok {
		return mcp.NewToolResultError("'longitude' is required and must be a number"), nil
	}

	var added bool
	if err := t.store.Update(ctx, func(doc *memory.Document) error {
		added = doc.AddFavorite(name, lat, lon)
		return nil
	}); err != nil {
		return storeError("save favorite", err), nil
	}

	if !added {
		return mcp.NewToolResultText(fmt.Sprintf("Location '%s' already saved as favorite", name)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s Saved '%s' to favorites", header, name)), nil
}

// ─── get_favorites ──────────────────────────────────────────────────────────

// GetFavoritesTool handles the get_favorites MCP tool.
type GetFavoritesTool struct {
	store memory.Store
}

// NewGetFavoritesTool creates a GetFavoritesTool with its dependencies.
func NewGetFavoritesTool(store memory.Store) *GetFavoritesTool {
	return &GetFavoritesTool{store: store}
}

// Definition returns the MCP tool definition for get_favorites.
func (t *GetFavoritesTool) Definition() mcp.Tool {
	return mcp.NewTool("get_favorites",
		mcp.WithDescription("Get all saved favorite locations."),
		mcp.WithTitleAnnotation("List Favorites"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// Handle processes the get_favorites tool call.
func (t *GetFavoritesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := t.store.Load(ctx)
	if err != nil {
		return storeError("load favorites", err), nil
	}

	if len(doc.Favorites) == 0 {
		return mcp.NewToolResultText(header + " No favorite locations saved yet"), nil
	}

	lines := make([]string, 0, len(doc.Favorites))
	for _, fav := range doc.Favorites {
		lines = append(lines, fmt.Sprintf("• %s (%s, %s)",
			fav.Name, nws.FormatCoord(fav.Latitude), nws.FormatCoord(fav.Longitude)))
	}

	return mcp.NewToolResultText(header + " Your Favorite Locations:\n\n" + strings.Join(lines, "\n")), nil
}
