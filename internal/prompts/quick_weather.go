// Package prompts implements the weather MCP prompt handlers.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/weather-mcp/internal/memory"
	"github.com/HendryAvila/weather-mcp/internal/nws"
	"github.com/mark3labs/mcp-go/mcp"
)

// noFavorites stands in for the list when nothing is saved.
const noFavorites = "(no favorite locations saved yet)"

// QuickWeatherPrompt handles the quick_weather_prompt MCP prompt.
// It asks the user which of their saved locations to check.
type QuickWeatherPrompt struct {
	store memory.Store
}

// NewQuickWeatherPrompt creates a QuickWeatherPrompt.
func NewQuickWeatherPrompt(store memory.Store) *QuickWeatherPrompt {
	return &QuickWeatherPrompt{store: store}
}

// Definition returns the MCP prompt definition for registration.
func (p *QuickWeatherPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("quick_weather_prompt",
		mcp.WithPromptDescription("Template for quick weather checks"),
	)
}

// Handle processes the quick_weather_prompt request.
func (p *QuickWeatherPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	doc, err := p.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading favorites: %w", err)
	}

	favorites := noFavorites
	if len(doc.Favorites) > 0 {
		lines := make([]string, 0, len(doc.Favorites))
		for _, fav := range doc.Favorites {
			lines = append(lines, fmt.Sprintf("• %s (%s, %s)",
				fav.Name, nws.FormatCoord(fav.Latitude), nws.FormatCoord(fav.Longitude)))
		}
		favorites = strings.Join(lines, "\n")
	}

	return &mcp.GetPromptResult{
		Description: "Quick weather check",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"I'd like to check the weather. Here are my favorite locations:\n" +
						favorites + "\n\n" +
						"Which location would you like to check?",
				),
			},
		},
	}, nil
}
